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
	"bytes"

	"github.com/exascience/pargo/parallel"

	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/dna"
	"github.com/exascience/estalign/tracker"
)

// extendHit extends a hit in both directions, as far as the clip bounds
// of its read and the tracker allow. back and forward select the jump
// tables of the two walks.
func (run *Run) extendHit(h *Hit, backLimit, forwardLimit int, back, forward tracker.Bias) {
	q := run.Query(h.Read, h.Reverse)
	if backLimit > 0 && h.A1 > 0 {
		r := run.TrackerFor(back).ExtendBackward(q, h.X1-1, h.A1-1, backLimit)
		h.X1 -= coords.Read(r.ShortSteps)
		h.A1 -= coords.Genomic(r.LongSteps)
		h.Errors += r.Errors()
	}
	if forwardLimit > 0 && int(h.A2)+1 < len(run.Genome) {
		r := run.TrackerFor(forward).Extend(q, h.X2+1, h.A2+1, forwardLimit)
		h.X2 += coords.Read(r.ShortSteps)
		h.A2 += coords.Genomic(r.LongSteps)
		h.Errors += r.Errors()
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// extensionBias returns the jump table bias for extending h toward g,
// the next hit of the same read. A diagonal shift of at most drift
// between them is an indel the extension is bound to meet: extra
// genome bases are a deletion, extra read bases an insertion.
func extensionBias(h, g *Hit, drift int) tracker.Bias {
	if h.Reverse != g.Reverse {
		return tracker.Neutral
	}
	switch d := g.Diagonal() - h.EndDiagonal(); {
	case d == 0 || abs(d) > drift:
		return tracker.Neutral
	case d > 0:
		return tracker.DeletionBias
	default:
		return tracker.InsertionBias
	}
}

// biases returns the backward and forward extension biases of the hits
// of one read, from their neighbours in read order on the same strand.
func biases(group []Hit, drift int) (back, forward []tracker.Bias) {
	back = make([]tracker.Bias, len(group))
	forward = make([]tracker.Bias, len(group))
	for i := range group {
		h := &group[i]
		prev, next := -1, -1
		for j := range group {
			g := &group[j]
			if j == i || g.Reverse != h.Reverse {
				continue
			}
			if g.X1 > h.X1 && (next < 0 || g.X1 < group[next].X1) {
				next = j
			}
			if g.X1 < h.X1 && (prev < 0 || g.X1 > group[prev].X1) {
				prev = j
			}
		}
		if next >= 0 {
			forward[i] = extensionBias(h, &group[next], drift)
		}
		if prev >= 0 {
			back[i] = extensionBias(&group[prev], h, drift)
		}
	}
	return back, forward
}

// mergeable reports whether two hits of the same read overlap in both
// coordinates on nearly the same diagonal.
func mergeable(h, g *Hit, drift int) bool {
	return h.Reverse == g.Reverse &&
		g.X1 <= h.X2 && h.X1 <= g.X2 &&
		g.A1 <= h.A2 && h.A1 <= g.A2 &&
		abs(h.Diagonal()-g.Diagonal()) <= drift
}

// merge merges the overlapping hits of one read until no more hits can
// be merged. The result is sorted with ReadLess.
func merge(group []Hit, drift int) []Hit {
	for merged := true; merged; {
		merged = false
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				h, g := &group[i], &group[j]
				if !mergeable(h, g, drift) {
					continue
				}
				if g.X1 < h.X1 || (g.X1 == h.X1 && g.A1 < h.A1) {
					h.X1, h.A1 = g.X1, g.A1
				}
				if g.X2 > h.X2 || (g.X2 == h.X2 && g.A2 > h.A2) {
					h.X2, h.A2 = g.X2, g.A2
				}
				if g.Errors > h.Errors {
					h.Errors = g.Errors
				}
				group = append(group[:j], group[j+1:]...)
				j--
				merged = true
			}
		}
	}
	By(ReadLess).ParallelStableSort(group)
	return group
}

// findOligo returns the first start position of oligo in genome[low:high+len(oligo)],
// scanning from high down to low when leftward is set, and from low up
// to high otherwise.
func findOligo(genome, oligo dna.Seq, low, high int, leftward bool) (int, bool) {
	k := len(oligo)
	if low < 0 {
		low = 0
	}
	if high > len(genome)-k {
		high = len(genome) - k
	}
	if leftward {
		for a := high; a >= low; a-- {
			if bytes.Equal(genome[a:a+k], oligo) {
				return a, true
			}
		}
		return 0, false
	}
	for a := low; a <= high; a++ {
		if bytes.Equal(genome[a:a+k], oligo) {
			return a, true
		}
	}
	return 0, false
}

func unambiguous(oligo dna.Seq) bool {
	for _, b := range oligo {
		if dna.IsAmbiguous(b) {
			return false
		}
	}
	return true
}

// rescueLeft looks for the exon aligning to the read stretch [s, e]
// that ends right before hit h, upstream of h on the genome.
func (run *Run) rescueLeft(h *Hit, s, e coords.Read, lowA coords.Genomic) (Hit, bool) {
	f := run.Config.Filter
	k := coords.Read(f.RescueK)
	read := run.Reads[h.Read].Oriented(h.Reverse)
	oligo := read[e-k+1 : e+1]
	if !unambiguous(oligo) {
		return Hit{}, false
	}
	high := int(h.A1) - run.Config.Intron.MinIntronLength - int(k)
	low := int(h.A1) - f.MaxIntronLength - int(k)
	if low < int(lowA) {
		low = int(lowA)
	}
	a, ok := findOligo(run.Genome, oligo, low, high, true)
	if !ok {
		return Hit{}, false
	}
	g := *h
	g.X1, g.X2 = e-k+1, e
	g.A1, g.A2 = coords.Genomic(a), coords.Genomic(a)+coords.Genomic(k)-1
	g.Errors = 0
	run.extendHit(&g, int(g.X1-s), 0, tracker.Neutral, tracker.Neutral)
	return g, true
}

// rescueRight looks for the exon aligning to the read stretch [s, e]
// that starts right after hit h, downstream of h on the genome.
func (run *Run) rescueRight(h *Hit, s, e coords.Read) (Hit, bool) {
	f := run.Config.Filter
	k := coords.Read(f.RescueK)
	read := run.Reads[h.Read].Oriented(h.Reverse)
	oligo := read[s : s+k]
	if !unambiguous(oligo) {
		return Hit{}, false
	}
	low := int(h.A2) + 1 + run.Config.Intron.MinIntronLength
	high := int(h.A2) + f.MaxIntronLength
	a, ok := findOligo(run.Genome, oligo, low, high, false)
	if !ok {
		return Hit{}, false
	}
	g := *h
	g.X1, g.X2 = s, s+k-1
	g.A1, g.A2 = coords.Genomic(a), coords.Genomic(a)+coords.Genomic(k)-1
	g.Errors = 0
	run.extendHit(&g, 0, int(e-g.X2), tracker.Neutral, tracker.Neutral)
	return g, true
}

// rescueRound tries to find one missing exon per uncovered stretch of
// the hits of one read on one strand, sorted by read position.
func (run *Run) rescueRound(strand []Hit) (found []Hit) {
	minLength := run.Config.Filter.RescueMinLength
	for i := range strand {
		h := &strand[i]
		s, lowA := h.ClipTop, coords.Genomic(0)
		if i > 0 {
			s, lowA = strand[i-1].X2+1, strand[i-1].A2+1
		}
		if e := h.X1 - 1; coords.ReadLength(s, e) >= minLength {
			if g, ok := run.rescueLeft(h, s, e, lowA); ok {
				found = append(found, g)
			}
		}
	}
	if n := len(strand); n > 0 {
		h := &strand[n-1]
		if s := h.X2 + 1; coords.ReadLength(s, h.ClipEnd) >= minLength {
			if g, ok := run.rescueRight(h, s, h.ClipEnd); ok {
				found = append(found, g)
			}
		}
	}
	return found
}

// rescue adds hits for exons that no seed found.
func (run *Run) rescue(group []Hit) []Hit {
	drift := run.Config.Filter.MaxIndelDrift
	for round := 0; round < run.Config.Filter.RescueRounds; round++ {
		var found []Hit
		for i := 0; i < len(group); {
			j := i + 1
			for j < len(group) && group[j].Reverse == group[i].Reverse {
				j++
			}
			found = append(found, run.rescueRound(group[i:j])...)
			i = j
		}
		if len(found) == 0 {
			break
		}
		n := len(group)
		group = merge(append(group, found...), drift)
		if len(group) == n {
			// everything found was already covered
			break
		}
	}
	return group
}

// Extend extends every hit up to the clip bounds of its read, merges
// overlapping hits, and rescues exons that no seed found. A hit that
// is followed by another hit of its read on a nearby diagonal extends
// toward it with the jump table of the indel between them. Reads are
// processed in parallel.
func Extend(run *Run) HitsFilter {
	return func(hits []Hit) []Hit {
		var groups [][]Hit
		ForEachRead(hits, func(_ int, group []Hit) {
			groups = append(groups, append([]Hit(nil), group...))
		})
		if len(groups) == 0 {
			return hits[:0]
		}
		drift := run.Config.Filter.MaxIndelDrift
		parallel.Range(0, len(groups), 0, func(low, high int) {
			for g := low; g < high; g++ {
				group := groups[g]
				back, forward := biases(group, drift)
				for i := range group {
					h := &group[i]
					run.extendHit(h, int(h.X1-h.ClipTop), int(h.ClipEnd-h.X2), back[i], forward[i])
				}
				groups[g] = run.rescue(merge(group, drift))
			}
		})
		result := hits[:0]
		for _, group := range groups {
			result = append(result, group...)
		}
		return result
	}
}
