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

package gene

import (
	"fmt"
	"sort"

	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/intervals"
)

// Kind is the type of a splice segment.
type Kind uint8

// Segment kinds.
const (
	Exon Kind = iota
	Intron
	Gap
	FirstExon
	LastExon
	AlternativeExon
	AlternativeIntron
)

var kindNames = [...]string{
	Exon:              "Exon",
	Intron:            "Intron",
	Gap:               "Gap",
	FirstExon:         "First_exon",
	LastExon:          "Last_exon",
	AlternativeExon:   "Alternative_exon",
	AlternativeIntron: "Alternative_intron",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsExon reports whether k is one of the exon kinds.
func (k Kind) IsExon() bool {
	return k == Exon || k == FirstExon || k == LastExon || k == AlternativeExon
}

// IsIntron reports whether k is one of the intron kinds.
func (k Kind) IsIntron() bool {
	return k == Intron || k == AlternativeIntron
}

// A Segment is a typed genomic interval of a transcript.
type Segment struct {
	Kind   Kind
	A1, A2 coords.Genomic

	// MRNA1 and MRNA2 are the transcript offsets of A1 and A2. They
	// are only set for exons and gaps.
	MRNA1, MRNA2 coords.MRNA

	Branch int

	// index of the first supporting read in Gene.Reads, or -1
	Read    int
	Support int

	// introns are confirmed by their splice junction, first and last
	// exons by trans-splice and polyA evidence
	Confirmed bool
}

// Length returns the number of bases in a segment.
func (s *Segment) Length() int {
	return coords.Length(s.A1, s.A2)
}

// A Branch is one transcript path through a zone. Branches that fork
// from another branch share its upstream introns.
type Branch struct {
	ID     int
	Parent int

	A1, A2  coords.Genomic
	Introns []intervals.Interval

	// indices into Gene.Reads
	Reads []int

	// Segments is the splice chain of the branch in genomic order.
	Segments []Segment

	BeginConfirmed, EndConfirmed bool

	coverage []intervals.Interval
}

func (b *Branch) span() intervals.Interval {
	return intervals.Interval{Start: b.A1, End: b.A2}
}

func (b *Branch) hasIntron(in intervals.Interval) bool {
	for _, j := range b.Introns {
		if j == in {
			return true
		}
	}
	return false
}

// covered returns the positions covered by the reads of a branch as
// sorted, disjoint intervals.
func (b *Branch) covered() []intervals.Interval {
	cover := append([]intervals.Interval(nil), b.coverage...)
	intervals.ParallelSortByStart(cover)
	return intervals.ParallelFlatten(cover, 0)
}

// overlapLength returns the number of positions of in that lie in the
// sorted, disjoint intervals cover.
func overlapLength(cover []intervals.Interval, in intervals.Interval) (n int) {
	for _, c := range intervals.Intersect(cover, in.Start, in.End) {
		n += overlap(c, in)
	}
	return n
}

// compatible reports whether a read can extend a branch. Exons of the
// read may enter an intron of the branch by at most tolerance
// positions, and the other way around. Two different introns that
// overlap always conflict. A genomic gap without an intron in the read
// never conflicts.
func (b *Branch) compatible(m *model, tolerance int) bool {
	for _, in := range b.Introns {
		if m.hasIntron(in) {
			continue
		}
		if overlapLength(m.exons, in) > tolerance {
			return false
		}
		for _, j := range m.introns {
			if overlap(j, in) > 0 {
				return false
			}
		}
	}
	if len(m.introns) == 0 {
		return true
	}
	cover := b.covered()
	for _, in := range m.introns {
		if !b.hasIntron(in) && overlapLength(cover, in) > tolerance {
			return false
		}
	}
	return true
}

// addIntron inserts an intron in genomic order. A slice shared with
// another branch is never written to.
func addIntron(introns []intervals.Interval, in intervals.Interval) []intervals.Interval {
	i := sort.Search(len(introns), func(i int) bool {
		return introns[i].Start > in.Start || (introns[i].Start == in.Start && introns[i].End >= in.End)
	})
	if i < len(introns) && introns[i] == in {
		return introns
	}
	if i == len(introns) {
		return append(introns, in)
	}
	result := make([]intervals.Interval, 0, len(introns)+1)
	result = append(result, introns[:i]...)
	result = append(result, in)
	return append(result, introns[i:]...)
}

func (b *Branch) add(m *model, read int) {
	b.A1 = coords.MinGenomic(b.A1, m.span.Start)
	b.A2 = coords.MaxGenomic(b.A2, m.span.End)
	for _, in := range m.introns {
		b.Introns = addIntron(b.Introns, in)
	}
	b.coverage = append(b.coverage, m.exons...)
	b.Reads = append(b.Reads, read)
}

// fork returns a new branch for a read that contradicts parent. The new
// branch shares the introns of parent upstream of the read.
func fork(parent *Branch, id int, m *model, read int) *Branch {
	k := 0
	for k < len(parent.Introns) && parent.Introns[k].End < m.span.Start {
		k++
	}
	b := &Branch{ID: id, Parent: parent.ID, A1: m.span.Start, A2: m.span.End}
	if k > 0 {
		b.A1 = parent.A1
		b.Introns = parent.Introns[:k:k]
		for _, c := range parent.coverage {
			if c.Start < m.span.Start {
				c.End = coords.MinGenomic(c.End, m.span.Start-1)
				b.coverage = append(b.coverage, c)
			}
		}
	}
	b.add(m, read)
	return b
}

// foldBranches assigns the reads of a zone, sorted by genomic start, to
// branches. A read joins the first branch it is compatible with, or
// forks a new branch from the first branch it overlaps.
func foldBranches(models []*model, tolerance int) (branches []*Branch) {
	for i, m := range models {
		var target *Branch
		for _, b := range branches {
			if b.compatible(m, tolerance) {
				target = b
				break
			}
		}
		if target != nil {
			target.add(m, i)
			continue
		}
		if len(branches) == 0 {
			b := &Branch{Parent: -1, A1: m.span.Start, A2: m.span.End}
			b.add(m, i)
			branches = append(branches, b)
			continue
		}
		parent := branches[0]
		for _, b := range branches {
			if overlap(b.span(), m.span) > 0 {
				parent = b
				break
			}
		}
		branches = append(branches, fork(parent, len(branches), m, i))
	}
	return branches
}

// mainBranch returns the branch with the most reads, the earliest on
// ties.
func mainBranch(branches []*Branch) int {
	best := 0
	for i, b := range branches {
		if len(b.Reads) > len(branches[best].Reads) {
			best = i
		}
	}
	return best
}

// chain computes the splice segments of a branch in genomic order:
// introns, exons where reads cover the branch, and gaps elsewhere.
func (b *Branch) chain() {
	covered := b.covered()
	b.Segments = b.Segments[:0]
	exonic := func(start, end coords.Genomic) {
		for _, c := range intervals.Intersect(covered, start, end) {
			b.Segments = append(b.Segments, Segment{
				Kind:   Exon,
				A1:     coords.MaxGenomic(c.Start, start),
				A2:     coords.MinGenomic(c.End, end),
				Branch: b.ID,
			})
		}
		for _, gap := range intervals.Gaps(covered, start, end) {
			b.Segments = append(b.Segments, Segment{Kind: Gap, A1: gap.Start, A2: gap.End, Branch: b.ID})
		}
	}
	next := b.A1
	for _, in := range b.Introns {
		if in.Start > next {
			exonic(next, in.Start-1)
		}
		b.Segments = append(b.Segments, Segment{Kind: Intron, A1: in.Start, A2: in.End, Branch: b.ID, Confirmed: true})
		next = in.End + 1
	}
	if next <= b.A2 {
		exonic(next, b.A2)
	}
	sort.SliceStable(b.Segments, func(i, j int) bool {
		return b.Segments[i].A1 < b.Segments[j].A1
	})
}

// assignMRNA sets transcript offsets on the exons and gaps of a branch,
// counting from the 5' end of the transcript.
func (b *Branch) assignMRNA(reverse bool) {
	var offset coords.MRNA
	visit := func(s *Segment) {
		if s.Kind.IsIntron() {
			return
		}
		if reverse {
			s.MRNA2 = offset
			s.MRNA1 = coords.ToMRNA(s.A1, s.A2, offset, true)
			offset = s.MRNA1 + 1
		} else {
			s.MRNA1 = offset
			s.MRNA2 = coords.ToMRNA(s.A2, s.A1, offset, false)
			offset = s.MRNA2 + 1
		}
	}
	if reverse {
		for i := len(b.Segments) - 1; i >= 0; i-- {
			visit(&b.Segments[i])
		}
	} else {
		for i := range b.Segments {
			visit(&b.Segments[i])
		}
	}
}
