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

package hits

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/utils"
)

// A readSpan summarizes the hits of one read.
type readSpan struct {
	read    int
	group   []Hit
	a1, a2  coords.Genomic
	reverse bool
	aligned int
}

func newReadSpan(read int, group []Hit) readSpan {
	s := readSpan{read: read, group: group, a1: group[0].A1, a2: group[0].A2, reverse: group[0].Reverse}
	for i := range group {
		s.a1 = coords.MinGenomic(s.a1, group[i].A1)
		s.a2 = coords.MaxGenomic(s.a2, group[i].A2)
	}
	s.aligned = coverage(group)
	return s
}

// clonePairs returns the reads with hits of all clones that have
// exactly two such reads, ordered by their first read.
func clonePairs(hits []Hit) (pairs [][2]readSpan) {
	byClone := make(map[utils.Symbol][]readSpan)
	var clones []utils.Symbol
	ForEachRead(hits, func(read int, group []Hit) {
		clone := group[0].Clone
		if clone == nil {
			return
		}
		if _, ok := byClone[clone]; !ok {
			clones = append(clones, clone)
		}
		byClone[clone] = append(byClone[clone], newReadSpan(read, group))
	})
	for _, clone := range clones {
		if spans := byClone[clone]; len(spans) == 2 {
			pairs = append(pairs, [2]readSpan{spans[0], spans[1]})
		}
	}
	return pairs
}

// leftRight orders the two reads of a clone by genomic position.
func leftRight(pair [2]readSpan) (left, right readSpan) {
	l, r := pair[0], pair[1]
	if r.a1 < l.a1 || (r.a1 == l.a1 && r.a2 < l.a2) {
		l, r = r, l
	}
	return l, r
}

// facing reports whether the reads of a clone point toward each other:
// the left read runs forward and the right read runs backward.
func facing(left, right readSpan) bool {
	return !left.reverse && right.reverse
}

// BackToBack resolves clones whose two reads do not face each other on
// the genome, either because they point away from each other or
// because they share an orientation. Only the read with more aligned
// bases is kept. Ties go to the read with more hits, then to the
// lexically smaller read id.
func BackToBack(run *Run) HitsFilter {
	return func(hits []Hit) []Hit {
		drop := bitset.New(uint(len(run.Reads)))
		for _, pair := range clonePairs(hits) {
			left, right := leftRight(pair)
			if facing(left, right) {
				continue
			}
			a, b := pair[0], pair[1]
			switch {
			case a.aligned != b.aligned:
				if a.aligned < b.aligned {
					a, b = b, a
				}
			case len(a.group) != len(b.group):
				if len(a.group) < len(b.group) {
					a, b = b, a
				}
			case run.Reads[b.read].ID < run.Reads[a.read].ID:
				a, b = b, a
			}
			drop.Set(uint(b.read))
		}
		return keepReads(hits, drop.Complement())
	}
}

// exonEnds returns the genomic ends of the hits of a read that are
// followed by another hit after a gap.
func exonEnds(group []Hit) (ends []coords.Genomic) {
	for i := 0; i+1 < len(group); i++ {
		if group[i+1].A1 > group[i].A2+1 {
			ends = append(ends, group[i].A2)
		}
	}
	return ends
}

// trimRight removes the part of the hits of a read beyond genomic
// position c.
func trimRight(group []Hit, c coords.Genomic) []Hit {
	result := group[:0]
	for _, h := range group {
		if h.A1 > c {
			continue
		}
		if h.A2 > c {
			h.X2 -= coords.Read(h.A2 - c)
			h.A2 = c
			if h.X2 < h.X1 {
				continue
			}
		}
		result = append(result, h)
	}
	return result
}

// trimLeft removes the part of the hits of a read before genomic
// position c.
func trimLeft(group []Hit, c coords.Genomic) []Hit {
	result := group[:0]
	for _, h := range group {
		if h.A2 < c {
			continue
		}
		if h.A1 < c {
			h.X1 += coords.Read(c - h.A1)
			h.A1 = c
			if h.X1 > h.X2 {
				continue
			}
		}
		result = append(result, h)
	}
	return result
}

// doubleReadCut returns where the territory of two overlapping reads of
// a clone is split: the exon end nearest to the middle of the overlap,
// or the middle itself.
func doubleReadCut(left, right readSpan) (cut coords.Genomic, ok bool) {
	o1, o2 := right.a1, coords.MinGenomic(left.a2, right.a2)
	if o1 > o2 {
		return 0, false
	}
	mid := o1 + (o2-o1)/2
	cut = mid
	best := -1
	for _, group := range [][]Hit{left.group, right.group} {
		for _, e := range exonEnds(group) {
			if e < o1 || e > o2 {
				continue
			}
			d := abs(int(e - mid))
			if best < 0 || d < best || (d == best && e < cut) {
				best, cut = d, e
			}
		}
	}
	if cut < left.a1 || cut >= right.a2 {
		return 0, false
	}
	return cut, true
}

// DoubleRead splits the genomic territory of the two reads of a clone
// when they overlap, so that neither claims the part of the other.
func DoubleRead(run *Run) HitsFilter {
	return func(hits []Hit) []Hit {
		pairs := clonePairs(hits)
		if len(pairs) == 0 {
			return hits
		}
		cuts := make(map[int]func([]Hit) []Hit)
		for _, pair := range pairs {
			left, right := leftRight(pair)
			if !facing(left, right) {
				continue
			}
			cut, ok := doubleReadCut(left, right)
			if !ok {
				continue
			}
			cuts[left.read] = func(group []Hit) []Hit { return trimRight(group, cut) }
			cuts[right.read] = func(group []Hit) []Hit { return trimLeft(group, cut+1) }
		}
		result := make([]Hit, 0, len(hits))
		ForEachRead(hits, func(read int, group []Hit) {
			if trim, ok := cuts[read]; ok {
				group = trim(append([]Hit(nil), group...))
			}
			result = append(result, group...)
		})
		return result
	}
}
