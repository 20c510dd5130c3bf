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
)

func diagonalLess(h1, h2 *Hit) bool {
	switch {
	case h1.Read != h2.Read:
		return h1.Read < h2.Read
	case h1.Reverse != h2.Reverse:
		return !h1.Reverse
	case h1.Diagonal() != h2.Diagonal():
		return h1.Diagonal() < h2.Diagonal()
	default:
		return h1.X1 < h2.X1
	}
}

// Dedup chains raw seeds of the same read, strand, and diagonal that
// touch or overlap into single hits. It records the number of raw hits
// per read in run.RawHits.
func Dedup(run *Run) HitsFilter {
	return func(hits []Hit) []Hit {
		run.RawHits = make([]int, len(run.Reads))
		for i := range hits {
			run.RawHits[hits[i].Read]++
		}
		By(diagonalLess).ParallelStableSort(hits)
		result := hits[:0]
		for _, h := range hits {
			if n := len(result); n > 0 {
				last := &result[n-1]
				if last.Read == h.Read && last.Reverse == h.Reverse &&
					last.Diagonal() == h.Diagonal() && h.X1 <= last.X2+1 {
					if h.X2 > last.X2 {
						last.X2, last.A2 = h.X2, h.A2
					}
					continue
				}
			}
			result = append(result, h)
		}
		By(ReadLess).ParallelStableSort(result)
		return result
	}
}

// DiscardMultiple keeps only the hits of reads with at least
// MinRawHits raw seed hits.
func DiscardMultiple(run *Run) HitsFilter {
	min := run.Config.Filter.MinRawHits
	if min <= 1 {
		return nil
	}
	return func(hits []Hit) []Hit {
		counts := run.RawHits
		if len(counts) != len(run.Reads) {
			counts = make([]int, len(run.Reads))
			for i := range hits {
				counts[hits[i].Read]++
			}
		}
		keep := bitset.New(uint(len(run.Reads)))
		for read, n := range counts {
			if n >= min {
				keep.Set(uint(read))
			}
		}
		return keepReads(hits, keep)
	}
}

// keepReads removes the hits of reads that are not in keep.
func keepReads(hits []Hit, keep *bitset.BitSet) []Hit {
	result := hits[:0]
	for _, h := range hits {
		if keep.Test(uint(h.Read)) {
			result = append(result, h)
		}
	}
	return result
}

// dominantStrand returns true when the reverse strand dominates the
// hits of one read.
func dominantStrand(group []Hit) (reverse bool) {
	sum := 0
	longest := -1
	for i := range group {
		h := &group[i]
		n := h.Length()
		if h.Reverse {
			sum -= n
		} else {
			sum += n
		}
		if n > longest || (n == longest && !h.Reverse) {
			longest, reverse = n, h.Reverse
		}
	}
	switch {
	case sum > 0:
		return false
	case sum < 0:
		return true
	default:
		return reverse
	}
}

// Orientation keeps for each read only the hits on its dominant
// strand, which is the sign of the sum of signed hit lengths. Ties go
// to the strand of the longest hit, then to the forward strand.
func Orientation(_ *Run) HitsFilter {
	return func(hits []Hit) []Hit {
		result := hits[:0]
		ForEachRead(hits, func(_ int, group []Hit) {
			reverse := dominantStrand(group)
			for _, h := range group {
				if h.Reverse == reverse {
					result = append(result, h)
				}
			}
		})
		return result
	}
}

// coverage returns the number of oriented read bases covered by hits.
func coverage(group []Hit) int {
	var covered bitset.BitSet
	for i := range group {
		for x := group[i].X1; x <= group[i].X2; x++ {
			covered.Set(uint(x))
		}
	}
	return int(covered.Count())
}

// Weak drops the hits of reads whose aligned fraction of their usable
// length is below the coverage threshold for their length.
func Weak(run *Run) HitsFilter {
	return func(hits []Hit) []Hit {
		keep := bitset.New(uint(len(run.Reads)))
		ForEachRead(hits, func(read int, group []Hit) {
			usable := run.Reads[read].Usable()
			if float64(coverage(group)) >= run.Config.Filter.MinCoverage(usable)*float64(usable) {
				keep.Set(uint(read))
			}
		})
		return keepReads(hits, keep)
	}
}
