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

package tracker

import (
	"testing"

	"github.com/exascience/estalign/config"
	"github.com/exascience/estalign/dna"
)

// no two adjacent bases are equal
const long40 = "ACGTACTGATCGATGCTAGCATCGTAGCTACGATCAGTCA"

func complement(s string) string {
	b := []byte(s)
	for i, c := range b {
		b[i] = dna.Complement(c)
	}
	return string(b)
}

func newTestTracker(bias Bias) *Tracker {
	return New(config.Default().Tracker, bias)
}

func TestExtend(t *testing.T) {
	tests := []struct {
		name       string
		short      string
		shortSteps int
		longSteps  int
		kinds      []EditKind
		errors     int
	}{
		{"exact", long40, 40, 40, nil, 0},
		{"substitution", long40[:10] + "A" + long40[11:], 40, 40, []EditKind{Substitution}, 1},
		{"insertion", long40[:15] + "G" + long40[15:], 41, 40, []EditKind{Insertion}, 1},
		{"deletion", long40[:20] + long40[21:], 39, 40, []EditKind{Deletion}, 1},
		{"ambiguous", long40[:5] + "N" + long40[6:], 40, 40, []EditKind{Ambiguous}, 0},
	}
	tr := newTestTracker(Neutral)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Query{Short: dna.Seq(tt.short), Long: dna.Seq(long40)}
			r := tr.Extend(q, 0, 0, 1000)
			if r.ShortSteps != tt.shortSteps || r.LongSteps != tt.longSteps {
				t.Errorf("steps = %v/%v, want %v/%v", r.ShortSteps, r.LongSteps, tt.shortSteps, tt.longSteps)
			}
			if len(r.Edits) != len(tt.kinds) {
				t.Fatalf("edits = %v, want kinds %v", r.Edits, tt.kinds)
			}
			for i, e := range r.Edits {
				if e.Kind != tt.kinds[i] {
					t.Errorf("edit %v kind = %v, want %v", i, e.Kind, tt.kinds[i])
				}
			}
			if r.Errors() != tt.errors {
				t.Errorf("Errors() = %v, want %v", r.Errors(), tt.errors)
			}
			if r.Diverged {
				t.Error("unexpected divergence")
			}
		})
	}
}

func TestExtendEditPositions(t *testing.T) {
	tr := newTestTracker(Neutral)
	q := Query{Short: dna.Seq(long40[:15] + "G" + long40[15:]), Long: dna.Seq(long40)}
	r := tr.Extend(q, 0, 0, 1000)
	if len(r.Edits) != 1 || r.Edits[0].ShortPos != 15 || r.Edits[0].LongPos != 15 {
		t.Errorf("insertion edit = %v", r.Edits)
	}
	q = Query{Short: dna.Seq(long40[:20] + long40[21:]), Long: dna.Seq(long40), Reverse: true}
	r = tr.Extend(q, 0, 0, 1000)
	if len(r.Edits) != 1 || r.Edits[0].ShortPos != 20 || r.Edits[0].LongPos != 20 || !r.Edits[0].Reverse {
		t.Errorf("deletion edit = %v", r.Edits)
	}
}

func TestExtendMaxLen(t *testing.T) {
	tr := newTestTracker(Neutral)
	q := Query{Short: dna.Seq(long40), Long: dna.Seq(long40)}
	if r := tr.Extend(q, 5, 5, 10); r.ShortSteps != 10 || r.LongSteps != 10 {
		t.Errorf("steps = %v/%v, want 10/10", r.ShortSteps, r.LongSteps)
	}
	if r := tr.Extend(q, 5, 5, 0); r.ShortSteps != 0 || len(r.Edits) != 0 {
		t.Error("empty extension failed")
	}
}

func TestExtendDivergence(t *testing.T) {
	tr := newTestTracker(Neutral)
	q := Query{Short: dna.Seq(long40[:20] + complement(long40[20:])), Long: dna.Seq(long40)}
	r := tr.Extend(q, 0, 0, 1000)
	if !r.Diverged {
		t.Fatal("divergence not detected")
	}
	if r.ShortSteps < 20 || r.ShortSteps >= 30 {
		t.Errorf("divergence cut at %v", r.ShortSteps)
	}
	for _, e := range r.Edits {
		if int(e.ShortPos) >= r.ShortSteps {
			t.Errorf("edit %v beyond cut %v", e, r.ShortSteps)
		}
	}
}

func TestExtendBackward(t *testing.T) {
	tr := newTestTracker(Neutral)
	q := Query{Short: dna.Seq(long40), Long: dna.Seq(long40)}
	if r := tr.ExtendBackward(q, 39, 39, 1000); r.ShortSteps != 40 || len(r.Edits) != 0 {
		t.Errorf("exact backward extension = %v", r)
	}
	q = Query{Short: dna.Seq(long40[:10] + "A" + long40[11:]), Long: dna.Seq(long40)}
	r := tr.ExtendBackward(q, 39, 39, 1000)
	if r.ShortSteps != 40 || len(r.Edits) != 1 || r.Edits[0].ShortPos != 10 {
		t.Errorf("backward substitution = %v", r)
	}
	q = Query{Short: dna.Seq(complement(long40[:20]) + long40[20:]), Long: dna.Seq(long40)}
	r = tr.ExtendBackward(q, 39, 39, 1000)
	if !r.Diverged || r.ShortSteps < 20 || r.ShortSteps >= 30 {
		t.Errorf("backward divergence = %v", r)
	}
}

func TestExtendBias(t *testing.T) {
	// an extra C before a run of A's is a substitution or an insertion
	long := long40[:10] + "AAAAAAAAAAAA"
	q := Query{Short: dna.Seq(long40[:10] + "C" + "AAAAAAAAAAAA"), Long: dna.Seq(long)}
	tests := []struct {
		bias                  Bias
		kind                  EditKind
		shortSteps, longSteps int
	}{
		{Neutral, Substitution, 22, 22},
		{InsertionBias, Insertion, 23, 22},
		{DeletionBias, Substitution, 22, 22},
	}
	for _, tt := range tests {
		r := newTestTracker(tt.bias).Extend(q, 0, 0, 1000)
		if len(r.Edits) != 1 || r.Edits[0].Kind != tt.kind || r.Edits[0].ShortPos != 10 {
			t.Errorf("bias %v: edits = %v", tt.bias, r.Edits)
		}
		if r.ShortSteps != tt.shortSteps || r.LongSteps != tt.longSteps {
			t.Errorf("bias %v: steps = %v/%v", tt.bias, r.ShortSteps, r.LongSteps)
		}
	}
}

func TestExtendDivergenceAmbiguous(t *testing.T) {
	tr := newTestTracker(Neutral)
	short := []byte(long40)
	for _, x := range []int{10, 11, 13, 14, 16} {
		short[x] = dna.Complement(short[x])
	}
	for _, x := range []int{12, 15} {
		short[x] = 'N'
	}
	r := tr.Extend(Query{Short: dna.Seq(short), Long: dna.Seq(long40)}, 0, 0, 1000)
	if !r.Diverged || r.ShortSteps != 10 || len(r.Edits) != 0 {
		t.Errorf("divergence with ambiguous bases = %v", r)
	}
	short = []byte(long40)
	for _, x := range []int{10, 12, 14, 16} {
		short[x] = dna.Complement(short[x])
	}
	for _, x := range []int{11, 13, 15} {
		short[x] = 'N'
	}
	r = tr.Extend(Query{Short: dna.Seq(short), Long: dna.Seq(long40)}, 0, 0, 1000)
	if r.Diverged || r.ShortSteps != 40 || r.Errors() != 4 || len(r.Edits) != 7 {
		t.Errorf("ambiguous bases counted as errors = %v", r)
	}
}

func TestTablesAreFresh(t *testing.T) {
	a := TableFor(Neutral)
	a[0].Lookahead = 99
	if NeutralTable()[0].Lookahead == 99 {
		t.Error("tables share state")
	}
	if InsertionTable()[0].Kind != Insertion || DeletionTable()[0].Kind != Deletion {
		t.Error("biased tables failed")
	}
	if last := NeutralTable()[len(NeutralTable())-1]; last.Lookahead != 0 || last.Kind != Substitution {
		t.Error("neutral table does not end with a forced substitution")
	}
}
