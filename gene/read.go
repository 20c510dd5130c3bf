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
	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/hits"
	"github.com/exascience/estalign/intervals"
	"github.com/exascience/estalign/intron"
)

// A Read is the clean alignment of one read, as input for gene
// assembly.
type Read struct {
	ID    string
	Clone string

	// Reverse is the genomic strand of the transcript, which differs
	// from the strand of the hits for 3' reads.
	Reverse bool

	// read length, to map oriented positions back to the read as stored
	Length int

	// Hits are sorted by genomic position. Introns[i] is the outcome of
	// checking Hits[i] against Hits[i+1].
	Hits    []hits.Hit
	Introns []intron.Intron

	// TransSplice names the trans-splice leader found at the 5' end of
	// the transcript, at genomic position TransSpliceAt.
	TransSplice   string
	TransSpliceAt coords.Genomic

	// PolyA reports a polyA tail starting after genomic position PolyAAt.
	PolyA   bool
	PolyAAt coords.Genomic
}

// model is the exon/intron structure of one read.
type model struct {
	read    *Read
	index   int
	span    intervals.Interval
	exons   []intervals.Interval
	introns []intervals.Interval
	aligned int
}

func hitInterval(h *hits.Hit) intervals.Interval {
	return intervals.Interval{Start: h.A1, End: h.A2}
}

// newModel joins hits separated by indels into single exons. Hits
// separated by a confirmed intron become separate exons, and hits that
// are separated by a genomic gap without an intron leave that gap
// uncovered.
func newModel(r *Read, index int) model {
	m := model{read: r, index: index}
	cur := hitInterval(&r.Hits[0])
	m.aligned = r.Hits[0].Length()
	for i := 1; i < len(r.Hits); i++ {
		next := &r.Hits[i]
		m.aligned += next.Length()
		state := intron.Unchecked
		if i-1 < len(r.Introns) {
			state = r.Introns[i-1].State
		}
		switch {
		case state == intron.Confirmed:
			in := r.Introns[i-1]
			m.exons = append(m.exons, cur)
			m.introns = append(m.introns, intervals.Interval{Start: in.A1, End: in.A2})
			cur = hitInterval(next)
		case state == intron.NoIntron && next.A1 > cur.End+1:
			m.exons = append(m.exons, cur)
			cur = hitInterval(next)
		default:
			cur.End = coords.MaxGenomic(cur.End, next.A2)
		}
	}
	m.exons = append(m.exons, cur)
	m.span = intervals.Interval{Start: m.exons[0].Start, End: m.exons[len(m.exons)-1].End}
	return m
}

func (m *model) hasIntron(in intervals.Interval) bool {
	for _, j := range m.introns {
		if j == in {
			return true
		}
	}
	return false
}

func (m *model) overlapsExon(a1, a2 coords.Genomic) bool {
	return intervals.Overlap(m.exons, a1, a2)
}

// readSpan returns the aligned region of the read as stored. For reads
// aligned on the reverse strand, the start is larger than the end.
func (m *model) readSpan() (x1, x2 coords.Read) {
	first, last := &m.read.Hits[0], &m.read.Hits[len(m.read.Hits)-1]
	x1, x2 = first.X1, last.X2
	if first.Reverse {
		x1, x2 = x1.Flip(m.read.Length), x2.Flip(m.read.Length)
	}
	return x1, x2
}

// overlap returns the number of positions shared by two intervals.
func overlap(i, j intervals.Interval) int {
	start, end := coords.MaxGenomic(i.Start, j.Start), coords.MinGenomic(i.End, j.End)
	if start > end {
		return 0
	}
	return coords.Length(start, end)
}
