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

// Package hits implements candidate alignments between reads and a
// genomic target, and the ordered pipeline of passes that turns raw
// seed hits into clean per-read exon alignments.
package hits

import (
	"fmt"
	"sort"

	psort "github.com/exascience/pargo/sort"

	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/utils"
)

// A Hit is a gapless local alignment of a read to the forward strand
// of a genomic target. All coordinates are inclusive. Read coordinates
// refer to the oriented read: the read itself when Reverse is false,
// and its reverse complement when Reverse is true. ClipTop and ClipEnd
// bound the usable region of the oriented read.
type Hit struct {
	Read    int
	Clone   utils.Symbol
	Reverse bool

	A1, A2 coords.Genomic
	X1, X2 coords.Read

	ClipTop, ClipEnd coords.Read

	// number of non-ambiguous edits inside the hit
	Errors int
}

func (h *Hit) String() string {
	strand := "+"
	if h.Reverse {
		strand = "-"
	}
	return fmt.Sprintf("read %v%v [%v,%v] ~ [%v,%v]", h.Read, strand, h.A1, h.A2, h.X1, h.X2)
}

// Length returns the number of genomic bases covered by a hit.
func (h *Hit) Length() int {
	return coords.Length(h.A1, h.A2)
}

// ReadLength returns the number of read bases covered by a hit.
func (h *Hit) ReadLength() int {
	return coords.ReadLength(h.X1, h.X2)
}

// Diagonal returns the diagonal of the start of a hit.
func (h *Hit) Diagonal() int {
	return coords.Diagonal(h.A1, h.X1)
}

// EndDiagonal returns the diagonal of the end of a hit. It differs from
// Diagonal when the hit absorbed indels.
func (h *Hit) EndDiagonal() int {
	return coords.Diagonal(h.A2, h.X2)
}

// Valid reports whether the coordinates of a hit are consistent.
func (h *Hit) Valid() bool {
	return h.A1 <= h.A2 && h.ClipTop <= h.X1 && h.X1 <= h.X2 && h.X2 <= h.ClipEnd
}

type (
	// By is a less function for hits.
	By func(h1, h2 *Hit) bool

	hitSorter struct {
		hits []Hit
		by   By
	}
)

func (s hitSorter) SequentialSort(i, j int) {
	hits, by := s.hits[i:j], s.by
	sort.SliceStable(hits, func(i, j int) bool {
		return by(&hits[i], &hits[j])
	})
}

func (s hitSorter) NewTemp() psort.StableSorter {
	return hitSorter{make([]Hit, len(s.hits)), s.by}
}

func (s hitSorter) Len() int {
	return len(s.hits)
}

func (s hitSorter) Less(i, j int) bool {
	return s.by(&s.hits[i], &s.hits[j])
}

func (s hitSorter) Assign(p psort.StableSorter) func(i, j, len int) {
	dst, src := s.hits, p.(hitSorter).hits
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// ParallelStableSort sorts hits with a parallel stable sort.
func (by By) ParallelStableSort(hits []Hit) {
	psort.StableSort(hitSorter{hits, by})
}

// ReadLess orders hits by read, strand, read start, and genomic start.
func ReadLess(h1, h2 *Hit) bool {
	switch {
	case h1.Read != h2.Read:
		return h1.Read < h2.Read
	case h1.Reverse != h2.Reverse:
		return !h1.Reverse
	case h1.X1 != h2.X1:
		return h1.X1 < h2.X1
	default:
		return h1.A1 < h2.A1
	}
}

// GenomicLess orders hits by read and genomic start.
func GenomicLess(h1, h2 *Hit) bool {
	switch {
	case h1.Read != h2.Read:
		return h1.Read < h2.Read
	case h1.A1 != h2.A1:
		return h1.A1 < h2.A1
	default:
		return h1.X1 < h2.X1
	}
}

// ForEachRead calls f for each maximal run of hits of the same read.
// hits must be sorted by read.
func ForEachRead(hits []Hit, f func(read int, group []Hit)) {
	for i := 0; i < len(hits); {
		j := i + 1
		for j < len(hits) && hits[j].Read == hits[i].Read {
			j++
		}
		f(hits[i].Read, hits[i:j])
		i = j
	}
}

// AlignedLength returns the number of read bases covered by hits.
func AlignedLength(hits []Hit) (n int) {
	for i := range hits {
		n += hits[i].ReadLength()
	}
	return n
}
