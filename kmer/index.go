// estalign: aligning cDNA and EST reads to genomic sequences.
// Copyright (c) 2017-2020 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/estalign/blob/master/LICENSE.txt>.

// Package kmer implements the oligo index over a set of reads, and the
// seed finder that scans a genomic target for exact oligo matches.
package kmer

import (
	"sync"

	"github.com/exascience/estalign/config"
	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/dna"
	"github.com/exascience/estalign/utils"
)

// A Source is a read to be indexed. Clip bounds are inclusive and
// refer to the read as stored.
type Source struct {
	Seq                dna.Seq
	Clone              utils.Symbol
	ClipStart, ClipEnd coords.Read
}

// usable returns the number of bases in the clipped region.
func (s *Source) usable() int {
	return coords.ReadLength(s.ClipStart, s.ClipEnd)
}

// An Anchor is the start of an indexed window in a read.
type Anchor struct {
	Read int32
	Pos  coords.Read
}

// Stats describes a built index.
type Stats struct {
	Reads        int
	Indexed      int
	SkippedShort int
	Windows      int
	Oligos       int
	Repeats      int
}

// An Index maps oligo codes to the windows of reads they occur in.
//
// An Index is populated once and then read concurrently. Lookup and
// Add may be called by multiple goroutines.
type Index struct {
	K     int
	reads []Source

	lock  sync.RWMutex
	table map[uint64][]Anchor
}

// NewIndex returns an empty index over the given reads.
func NewIndex(reads []Source, k int) *Index {
	return &Index{K: k, reads: reads, table: make(map[uint64][]Anchor)}
}

// windows returns the start positions of the windows of a read that
// are indexed, or nil if the read is too short.
func windows(s *Source, cfg config.Seed) []coords.Read {
	k := cfg.K
	if len(s.Seq) < k || s.usable() < k+cfg.ClipMargin {
		return nil
	}
	stride := cfg.Stride
	if s.usable() < cfg.DenseBelow {
		stride = 1
	}
	last := s.ClipEnd - coords.Read(k) + 1
	var result []coords.Read
	for p := s.ClipStart; p <= last; p += coords.Read(stride) {
		result = append(result, p)
	}
	if result[len(result)-1] != last {
		result = append(result, last)
	}
	return result
}

// Add indexes the windows of one read. It reports false when the read
// is too short to be indexed.
func (idx *Index) Add(read int, cfg config.Seed) (windowCount int, ok bool) {
	s := &idx.reads[read]
	starts := windows(s, cfg)
	if starts == nil {
		return 0, false
	}
	idx.lock.Lock()
	// no defer in the hot path
	for _, p := range starts {
		code, ok := dna.Code(s.Seq[p : int(p)+idx.K])
		if !ok {
			continue
		}
		idx.table[code] = append(idx.table[code], Anchor{Read: int32(read), Pos: p})
		windowCount++
	}
	idx.lock.Unlock()
	return windowCount, true
}

// dropRepeats removes oligos with more than max anchors.
func (idx *Index) dropRepeats(max int) (repeats int) {
	idx.lock.Lock()
	defer idx.lock.Unlock()
	for code, anchors := range idx.table {
		if len(anchors) > max {
			delete(idx.table, code)
			repeats++
		}
	}
	return repeats
}

// Build indexes all reads. Reads that are too short, or whose usable
// region is too narrow, are skipped and counted.
func Build(reads []Source, cfg config.Seed) (*Index, Stats) {
	idx := NewIndex(reads, cfg.K)
	stats := Stats{Reads: len(reads)}
	for i := range reads {
		n, ok := idx.Add(i, cfg)
		if !ok {
			stats.SkippedShort++
			continue
		}
		stats.Indexed++
		stats.Windows += n
	}
	if cfg.MaxOccurrences > 0 {
		stats.Repeats = idx.dropRepeats(cfg.MaxOccurrences)
	}
	stats.Oligos = idx.Len()
	return idx, stats
}

// Lookup returns the anchors of an oligo code. The result must not be
// modified.
func (idx *Index) Lookup(code uint64) []Anchor {
	idx.lock.RLock()
	anchors := idx.table[code]
	idx.lock.RUnlock()
	return anchors
}

// Len returns the number of distinct oligos in the index.
func (idx *Index) Len() int {
	idx.lock.RLock()
	defer idx.lock.RUnlock()
	return len(idx.table)
}

// Read returns an indexed read.
func (idx *Index) Read(read int) *Source {
	return &idx.reads[read]
}
