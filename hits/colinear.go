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

// Colinear reports whether hit g may follow hit h in the alignment of
// one read. Consecutive hits may overlap by at most tolerance bases in
// both coordinates, must advance their starts, and may be separated by
// at most maxIntron genomic bases.
func Colinear(h, g *Hit, tolerance, maxIntron int) bool {
	return h.Reverse == g.Reverse &&
		g.X1 > h.X1 && g.A1 > h.A1 &&
		int(g.A1-h.A2) >= -tolerance &&
		int(g.X1-h.X2) >= -tolerance &&
		int(g.A1-h.A2)-1 <= maxIntron
}

// bestChain returns the colinear chain of hits with the largest number
// of aligned read bases. group must be sorted with ReadLess. Ties go
// to the chain that ends first and uses the earliest predecessors.
func bestChain(group []Hit, tolerance, maxIntron int) []Hit {
	n := len(group)
	if n <= 1 {
		return group
	}
	best := make([]int, n)
	prev := make([]int, n)
	end := 0
	for i := range group {
		best[i], prev[i] = group[i].ReadLength(), -1
		for j := 0; j < i; j++ {
			if Colinear(&group[j], &group[i], tolerance, maxIntron) {
				if total := best[j] + group[i].ReadLength(); total > best[i] {
					best[i], prev[i] = total, j
				}
			}
		}
		if best[i] > best[end] {
			end = i
		}
	}
	var chain []int
	for i := end; i >= 0; i = prev[i] {
		chain = append(chain, i)
	}
	result := group[:0]
	for k := len(chain) - 1; k >= 0; k-- {
		result = append(result, group[chain[k]])
	}
	return result
}

// Colinearity keeps for each read the colinear chain of hits with the
// most aligned bases.
func Colinearity(run *Run) HitsFilter {
	tolerance := run.Config.Filter.ColinearTolerance
	maxIntron := run.Config.Filter.MaxIntronLength
	return func(hits []Hit) []Hit {
		result := hits[:0]
		ForEachRead(hits, func(_ int, group []Hit) {
			result = append(result, bestChain(group, tolerance, maxIntron)...)
		})
		return result
	}
}
