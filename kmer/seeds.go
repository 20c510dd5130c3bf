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

package kmer

import (
	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/dna"
	"github.com/exascience/estalign/hits"
)

// Search scans the forward strand of a genomic target for windows that
// occur in the index. Each window is looked up by its own code, giving
// forward hits, and by the code of its reverse complement, giving
// reverse hits. The result is ordered by genomic position, then by
// strand, then by anchor order.
func Search(genome dna.Seq, idx *Index) []hits.Hit {
	k := idx.K
	var result []hits.Hit
	for a := 0; a+k <= len(genome); a++ {
		code, ok := dna.Code(genome[a : a+k])
		if !ok {
			continue
		}
		result = idx.appendHits(result, idx.Lookup(code), coords.Genomic(a), false)
		rc := dna.ReverseComplementCode(code, k)
		result = idx.appendHits(result, idx.Lookup(rc), coords.Genomic(a), true)
	}
	return result
}

func (idx *Index) appendHits(result []hits.Hit, anchors []Anchor, a coords.Genomic, reverse bool) []hits.Hit {
	k := coords.Read(idx.K)
	for _, anchor := range anchors {
		s := idx.Read(int(anchor.Read))
		x := anchor.Pos
		clipTop, clipEnd := s.ClipStart, s.ClipEnd
		if reverse {
			n := len(s.Seq)
			x = x.Flip(n) - k + 1
			clipTop, clipEnd = s.ClipEnd.Flip(n), s.ClipStart.Flip(n)
		}
		result = append(result, hits.Hit{
			Read:    int(anchor.Read),
			Clone:   s.Clone,
			Reverse: reverse,
			A1:      a,
			A2:      a + coords.Genomic(k) - 1,
			X1:      x,
			X2:      x + k - 1,
			ClipTop: clipTop,
			ClipEnd: clipEnd,
		})
	}
	return result
}
