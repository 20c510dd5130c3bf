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

// Package tracker extends seed matches between a short sequence (a
// read) and a long sequence (a genomic target) while tolerating
// sequencing errors.
//
// The walk compares both sequences base by base. On a mismatch it
// consults a priority-ordered jump table, and takes the first jump
// whose lookahead region matches within tolerance. True single-base
// errors are common in EST data, while indels are rarer and are only
// accepted when the bases after them confirm the realignment. Many
// edits in a short span mean the sequences have diverged, for example
// at an exon boundary, and end the walk.
package tracker

import (
	"github.com/exascience/estalign/config"
	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/dna"
)

// An Edit records one difference between the short and the long
// sequence.
type Edit struct {
	ShortPos coords.Read
	LongPos  coords.Genomic
	Kind     EditKind

	// the short sequence is reverse complemented
	Reverse bool
}

// A Query is a pair of sequences to walk.
type Query struct {
	Short   dna.Seq
	Long    dna.Seq
	Reverse bool
}

// A Result describes how far a walk got.
type Result struct {
	// number of short and long bases covered by the walk
	ShortSteps, LongSteps int

	Edits []Edit

	// the walk stopped because the sequences diverged
	Diverged bool
}

// Errors returns the number of edits that are not ambiguous bases.
func (r Result) Errors() (n int) {
	for _, e := range r.Edits {
		if e.Kind != Ambiguous {
			n++
		}
	}
	return n
}

// A Tracker walks queries with a given jump table.
type Tracker struct {
	Table Table

	// DivergenceEdits edits within DivergenceSpan short bases end a walk.
	DivergenceEdits int
	DivergenceSpan  int
}

// New returns a Tracker with the jump table for the given bias.
func New(cfg config.Tracker, bias Bias) *Tracker {
	return &Tracker{
		Table:           TableFor(bias),
		DivergenceEdits: cfg.DivergenceEdits,
		DivergenceSpan:  cfg.DivergenceSpan,
	}
}

// walker maps walk steps to sequence positions in one direction.
type walker struct {
	q              Query
	sOrigin        int
	lOrigin        int
	dir            int
	sAvail, lAvail int
}

func (w *walker) shortAt(i int) byte { return w.q.Short[w.sOrigin+w.dir*i] }
func (w *walker) longAt(j int) byte  { return w.q.Long[w.lOrigin+w.dir*j] }

// mismatches counts incompatible bases in the n steps starting at
// (i, j), as far as both sequences reach.
func (w *walker) mismatches(i, j, n int) (count int) {
	for k := 0; k < n && i+k < w.sAvail && j+k < w.lAvail; k++ {
		if !dna.Compatible(w.shortAt(i+k), w.longAt(j+k)) {
			count++
		}
	}
	return count
}

type step struct{ i, j int }

// Extend walks forward, starting with short[x] against long[a], for
// at most maxLen short bases.
func (t *Tracker) Extend(q Query, x coords.Read, a coords.Genomic, maxLen int) Result {
	w := walker{
		q:       q,
		sOrigin: int(x),
		lOrigin: int(a),
		dir:     1,
		sAvail:  len(q.Short) - int(x),
		lAvail:  len(q.Long) - int(a),
	}
	return t.walk(&w, maxLen)
}

// ExtendBackward walks backward, starting with short[x] against
// long[a], for at most maxLen short bases.
func (t *Tracker) ExtendBackward(q Query, x coords.Read, a coords.Genomic, maxLen int) Result {
	w := walker{
		q:       q,
		sOrigin: int(x),
		lOrigin: int(a),
		dir:     -1,
		sAvail:  int(x) + 1,
		lAvail:  int(a) + 1,
	}
	return t.walk(&w, maxLen)
}

func (t *Tracker) walk(w *walker, maxLen int) (result Result) {
	if w.sAvail > maxLen {
		w.sAvail = maxLen
	}
	if w.sAvail <= 0 || w.lAvail <= 0 {
		return result
	}
	var steps []step // walk position of each edit
	var errs []int   // indices into steps of non-ambiguous edits
	record := func(i, j int, kind EditKind) {
		result.Edits = append(result.Edits, Edit{
			ShortPos: coords.Read(w.sOrigin + w.dir*i),
			LongPos:  coords.Genomic(w.lOrigin + w.dir*j),
			Kind:     kind,
			Reverse:  w.q.Reverse,
		})
		steps = append(steps, step{i, j})
	}
	i, j := 0, 0
	for i < w.sAvail && j < w.lAvail {
		s, l := w.shortAt(i), w.longAt(j)
		if dna.IsAmbiguous(s) || dna.IsAmbiguous(l) {
			record(i, j, Ambiguous)
			i++
			j++
			continue
		}
		if s == l {
			i++
			j++
			continue
		}
		jump, ok := t.Table.first(func(jump Jump) bool {
			return w.mismatches(i+jump.DShort, j+jump.DLong, jump.Lookahead) <= jump.Tolerance
		})
		if !ok {
			break
		}
		errs = append(errs, len(steps))
		record(i, j, jump.Kind)
		if n := len(errs); n >= t.DivergenceEdits {
			first := steps[errs[n-t.DivergenceEdits]]
			if i-first.i < t.DivergenceSpan {
				cut := errs[n-t.DivergenceEdits]
				result.Edits = result.Edits[:cut]
				result.Diverged = true
				i, j = first.i, first.j
				break
			}
		}
		i += jump.DShort
		j += jump.DLong
	}
	if i > w.sAvail {
		i = w.sAvail
	}
	if j > w.lAvail {
		j = w.lAvail
	}
	result.ShortSteps, result.LongSteps = i, j
	return result
}
