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

// Package intron verifies candidate introns between adjacent hits of a
// read, and slides intron boundaries to canonical splice motifs within
// the window where the read cannot tell them apart.
package intron

import (
	"fmt"

	"github.com/exascience/estalign/config"
	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/dna"
	"github.com/exascience/estalign/hits"
)

// State is the outcome of checking a pair of adjacent hits.
type State uint8

// Hit pairs are Unchecked when their genomic gap does not exceed their
// read gap by enough to be an intron. Such pairs are parts of one exon
// separated by an indel.
const (
	Unchecked State = iota
	Confirmed
	NoIntron
)

func (s State) String() string {
	switch s {
	case Unchecked:
		return "unchecked"
	case Confirmed:
		return "confirmed"
	case NoIntron:
		return "no-intron"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// An Intron is the result of checking a pair of adjacent hits of a
// read. A1 and A2 are the inclusive genomic bounds of the intron after
// sliding. Packed holds the bounds before sliding, at the leftmost
// position of the ambiguous window.
type Intron struct {
	Read    int
	State   State
	A1, A2  coords.Genomic
	Packed  [2]coords.Genomic
	Motif   string
	Slid    bool
	Reverse bool

	// Window holds the read positions z1 and z3 between which the last
	// exon base before the intron can be placed without changing the
	// number of mismatches.
	Window [2]coords.Read
}

// Length returns the number of bases in an intron.
func (in *Intron) Length() int {
	return coords.Length(in.A1, in.A2)
}

// A Detector checks introns against one genomic target.
type Detector struct {
	Config config.Intron
	Genome dna.Seq
	Motifs []Motif
}

// New returns a Detector for the given genome.
func New(cfg config.Intron, genome dna.Seq) *Detector {
	return &Detector{Config: cfg, Genome: genome, Motifs: Motifs()}
}

// junction describes the read positions around the split of a hit pair.
type junction struct {
	read      dna.Seq
	genome    dna.Seq
	d1, d2    int
	low, high int
}

// costs returns, for each split p in [j.low, j.high], the mismatches of
// the read in [j.low, j.high+1] when the bases up to p align on d1 and
// the bases after p align on d2.
func (j *junction) costs() []int {
	n := j.high - j.low + 1
	left := make([]int, n+1)  // left[i]: mismatches on d1 in [low, low+i)
	right := make([]int, n+1) // right[i]: mismatches on d2 in [low+i, high+1]
	for i := 0; i < n; i++ {
		x := j.low + i
		left[i+1] = left[i]
		if !dna.Compatible(j.read[x], j.genome[x+j.d1]) {
			left[i+1]++
		}
	}
	for i := n; i >= 1; i-- {
		x := j.low + i
		right[i-1] = right[i]
		if !dna.Compatible(j.read[x], j.genome[x+j.d2]) {
			right[i-1]++
		}
	}
	result := make([]int, n)
	for i := range result {
		// split after p = low+i: [low, p] on d1, [p+1, high+1] on d2
		result[i] = left[i+1] + right[i]
	}
	return result
}

// flankErrors counts mismatches in the flanks of an intron when the
// last exon base before it is at read position p.
func (j *junction) flankErrors(p, flank int) (left, right int) {
	for x := p; x > p-flank && x >= 0; x-- {
		if a := x + j.d1; a >= 0 && !dna.Compatible(j.read[x], j.genome[a]) {
			left++
		}
	}
	for x := p + 1; x <= p+flank && x < len(j.read); x++ {
		if a := x + j.d2; a < len(j.genome) && !dna.Compatible(j.read[x], j.genome[a]) {
			right++
		}
	}
	return left, right
}

// window returns the run of splits with the fewest mismatches, as read
// positions [z1, z3]. Splits tie when the genome bases on both
// diagonals are equal, or when the read base agrees with both or with
// neither of them, as for ambiguous read bases. Of several runs, the
// one nearest to the split p0 of the hits wins, the leftmost on ties.
func (j *junction) window(costs []int, p0 int) (z1, z3 int) {
	best := costs[0]
	for _, c := range costs {
		if c < best {
			best = c
		}
	}
	distance := -1
	for i := 0; i < len(costs); {
		if costs[i] != best {
			i++
			continue
		}
		k := i
		for k+1 < len(costs) && costs[k+1] == best {
			k++
		}
		low, high := j.low+i, j.low+k
		d := 0
		if p0 < low {
			d = low - p0
		} else if p0 > high {
			d = p0 - high
		}
		if distance < 0 || d < distance {
			z1, z3, distance = low, high, d
		}
		i = k + 1
	}
	return z1, z3
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Detect checks the adjacent hits h and g of one oriented read, with h
// before g. For a confirmed intron, h and g are adjusted to meet at the
// junction. transcriptReverse tells on which genomic strand the
// transcript lies.
func (d *Detector) Detect(read dna.Seq, h, g *hits.Hit, transcriptReverse bool) Intron {
	result := Intron{Read: h.Read, Reverse: transcriptReverse}
	d1, d2 := h.EndDiagonal(), g.Diagonal()
	if d2-d1 < d.Config.MinIntronLength {
		return result
	}
	slack := d.Config.JunctionSlack
	j := junction{read: read, genome: d.Genome, d1: d1, d2: d2}
	// the split p keeps at least one base on each side
	j.low = maxInt(minInt(int(h.X2), int(g.X1)-1)-slack, int(h.X1))
	j.high = minInt(maxInt(int(h.X2), int(g.X1)-1)+slack, int(g.X2)-1)
	j.low = maxInt(j.low, int(h.A1)-d1)
	j.high = minInt(j.high, int(g.A2)-d2-1)
	j.low = maxInt(j.low, -d1)
	j.high = minInt(j.high, len(d.Genome)-d2-2)
	if j.low > j.high {
		result.State = NoIntron
		return result
	}
	z1, z3 := j.window(j.costs(), int(h.X2))
	result.Window = [2]coords.Read{coords.Read(z1), coords.Read(z3)}
	result.Packed = [2]coords.Genomic{coords.Genomic(z1 + 1 + d1), coords.Genomic(z1 + d2)}
	p := z1
	if d.Config.NoSlide {
		result.Motif = d.motifAt(z1, d1, d2, transcriptReverse)
	} else {
		p, result.Motif = d.slide(z1, z3, int(h.X2), d1, d2, transcriptReverse)
	}
	left, right := j.flankErrors(p, d.Config.FlankLength)
	// the hits meet at the split either way, and keep a gap between
	// them without an intron
	h.X2, h.A2 = coords.Read(p), coords.Genomic(p+d1)
	g.X1, g.A1 = coords.Read(p+1), coords.Genomic(p+1+d2)
	if left > d.Config.FlankErrors || right > d.Config.FlankErrors {
		result.State = NoIntron
		result.Motif = ""
		result.A1, result.A2 = result.Packed[0], result.Packed[1]
		return result
	}
	result.State = Confirmed
	result.Slid = p != z1
	result.A1, result.A2 = coords.Genomic(p+1+d1), coords.Genomic(p+d2)
	return result
}

func (d *Detector) motifAt(p, d1, d2 int, reverse bool) string {
	for _, m := range d.Motifs {
		if m.matches(d.Genome, p+1+d1, p+d2, reverse) {
			return m.Name
		}
	}
	return ""
}

// slide returns the split in [z1, z3] that carries the highest
// priority motif, preferring positions near the original split p0 and
// to the left. Without any motif, the split is packed left.
func (d *Detector) slide(z1, z3, p0, d1, d2 int, reverse bool) (int, string) {
	p0 = maxInt(z1, minInt(p0, z3))
	candidates := []int{p0}
	for delta := 1; p0-delta >= z1 || p0+delta <= z3; delta++ {
		if p := p0 - delta; p >= z1 {
			candidates = append(candidates, p)
		}
		if p := p0 + delta; p <= z3 {
			candidates = append(candidates, p)
		}
	}
	for _, m := range d.Motifs {
		for _, p := range candidates {
			if m.matches(d.Genome, p+1+d1, p+d2, reverse) {
				return p, m.Name
			}
		}
	}
	return z1, ""
}

// DetectRead checks all adjacent hit pairs of one read, sorted by read
// position, and adjusts them to confirmed junctions. It returns one
// Intron per pair.
func (d *Detector) DetectRead(read dna.Seq, group []hits.Hit, transcriptReverse bool) []Intron {
	if len(group) < 2 {
		return nil
	}
	result := make([]Intron, 0, len(group)-1)
	for i := 0; i+1 < len(group); i++ {
		result = append(result, d.Detect(read, &group[i], &group[i+1], transcriptReverse))
	}
	return result
}
