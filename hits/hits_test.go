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
	"math/rand"
	"testing"

	"github.com/exascience/estalign/config"
	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/dna"
	"github.com/exascience/estalign/tracker"
	"github.com/exascience/estalign/utils"
)

func randomSeq(seed int64, n int) dna.Seq {
	r := rand.New(rand.NewSource(seed))
	seq := make(dna.Seq, n)
	for i := range seq {
		seq[i] = "ACGT"[r.Intn(4)]
	}
	return seq
}

func readInfo(id string, seq dna.Seq, clone string) ReadInfo {
	var symbol utils.Symbol
	if clone != "" {
		symbol = utils.Intern(clone)
	}
	return NewReadInfo(id, seq, symbol, 0, coords.Read(len(seq)-1), false)
}

func testRun(genome dna.Seq, reads ...ReadInfo) *Run {
	return NewRun(config.Default(), "target", genome, reads)
}

func hit(read int, reverse bool, a1, x1, length int) Hit {
	return Hit{
		Read:    read,
		Reverse: reverse,
		A1:      coords.Genomic(a1),
		A2:      coords.Genomic(a1 + length - 1),
		X1:      coords.Read(x1),
		X2:      coords.Read(x1 + length - 1),
		ClipTop: 0,
		ClipEnd: 999,
	}
}

func TestDedup(t *testing.T) {
	run := testRun(randomSeq(1, 100), readInfo("r0", randomSeq(2, 50), ""), readInfo("r1", randomSeq(3, 50), ""))
	hits := []Hit{hit(0, false, 12, 2, 12), hit(0, false, 10, 0, 12), hit(0, false, 24, 14, 12), hit(0, false, 60, 20, 12), hit(1, true, 5, 5, 12)}
	result := Dedup(run)(hits)
	if len(result) != 3 {
		t.Fatalf("Dedup = %v", result)
	}
	if result[0].A1 != 10 || result[0].A2 != 35 || result[0].X2 != 25 {
		t.Errorf("chained hit = %v", &result[0])
	}
	if run.RawHits[0] != 4 || run.RawHits[1] != 1 {
		t.Error("raw hit counts failed")
	}
}

func TestDiscardMultiple(t *testing.T) {
	run := testRun(randomSeq(1, 100), readInfo("r0", randomSeq(2, 50), ""), readInfo("r1", randomSeq(3, 50), ""))
	run.RawHits = []int{3, 2}
	hits := []Hit{hit(0, false, 10, 0, 12), hit(1, false, 10, 0, 12)}
	if result := DiscardMultiple(run)(hits); len(result) != 1 || result[0].Read != 0 {
		t.Error("DiscardMultiple failed")
	}
}

func TestOrientation(t *testing.T) {
	hits := []Hit{
		hit(0, false, 10, 0, 20), hit(0, true, 50, 0, 12), hit(0, true, 80, 20, 12),
		hit(1, false, 10, 0, 20), hit(1, true, 50, 0, 20),
	}
	result := Orientation(nil)(hits)
	if len(result) != 3 || !result[0].Reverse || !result[1].Reverse || result[2].Reverse {
		t.Errorf("Orientation = %v", result)
	}
}

func TestColinearity(t *testing.T) {
	run := testRun(randomSeq(1, 1000), readInfo("r0", randomSeq(2, 100), ""))
	hits := []Hit{
		hit(0, false, 100, 0, 30),
		hit(0, false, 50, 10, 15),  // genomic order conflicts with the first hit
		hit(0, false, 200, 30, 30), // exon after a 70 base intron
		hit(0, false, 240, 50, 20), // overlaps the previous hit by 20 read bases
		hit(0, false, 400, 60, 40),
	}
	By(ReadLess).ParallelStableSort(hits)
	result := Colinearity(run)(hits)
	if len(result) != 4 || result[0].A1 != 100 || result[3].A1 != 400 {
		t.Fatalf("Colinearity = %v", result)
	}
	tol := config.DefaultColinearTolerance
	for i := 1; i < len(result); i++ {
		h, g := &result[i-1], &result[i]
		if int(g.A1-h.A2) < -tol || int(g.X1-h.X2) < -tol {
			t.Errorf("hits %v and %v are not colinear", h, g)
		}
	}
}

func TestWeak(t *testing.T) {
	run := testRun(randomSeq(1, 1000), readInfo("r0", randomSeq(2, 40), ""), readInfo("r1", randomSeq(3, 40), ""))
	hits := []Hit{hit(0, false, 10, 0, 19), hit(1, false, 10, 0, 12), hit(1, false, 40, 12, 12)}
	result := Weak(run)(hits)
	if len(result) != 2 || result[0].Read != 1 {
		t.Errorf("Weak = %v", result)
	}
}

func TestBackToBack(t *testing.T) {
	run := testRun(randomSeq(1, 1000),
		readInfo("a5", randomSeq(2, 60), "clone1"), readInfo("a3", randomSeq(3, 60), "clone1"),
		readInfo("b5", randomSeq(4, 60), "clone2"), readInfo("b3", randomSeq(5, 60), "clone2"))
	hits := []Hit{
		// clone1 faces: forward on the left, reverse on the right
		hit(0, false, 100, 0, 50), hit(1, true, 300, 0, 50),
		// clone2 points away: reverse on the left, forward on the right
		hit(2, true, 500, 0, 40), hit(3, false, 700, 0, 50),
	}
	for i := range hits {
		hits[i].Clone = run.Reads[hits[i].Read].Clone
	}
	result := BackToBack(run)(hits)
	if len(result) != 3 || result[2].Read != 3 {
		t.Errorf("BackToBack = %v", result)
	}
}

func TestDoubleRead(t *testing.T) {
	run := testRun(randomSeq(1, 1000), readInfo("a5", randomSeq(2, 200), "clone1"), readInfo("a3", randomSeq(3, 200), "clone1"))
	hits := []Hit{
		hit(0, false, 100, 0, 50), hit(0, false, 200, 50, 60),
		hit(1, true, 130, 0, 20), hit(1, true, 200, 20, 100),
	}
	for i := range hits {
		hits[i].Clone = run.Reads[hits[i].Read].Clone
	}
	result := DoubleRead(run)(hits)
	// overlap [130, 259], middle 194, nearest exon ends 149
	var left, right []Hit
	for _, h := range result {
		if !h.Valid() {
			t.Errorf("invalid hit %v", &h)
		}
		if h.Read == 0 {
			left = append(left, h)
		} else {
			right = append(right, h)
		}
	}
	if len(left) != 1 || left[0].A2 != 149 {
		t.Errorf("left read = %v", left)
	}
	if len(right) != 1 || right[0].A1 != 200 {
		t.Errorf("right read = %v", right)
	}
}

func TestExtendRescuesExon(t *testing.T) {
	genome := randomSeq(7, 300)
	read := append(append(dna.Seq(nil), genome[50:80]...), genome[150:190]...)
	read[20] = dna.Complement(read[20])
	run := testRun(genome, readInfo("r0", read, ""))
	hits := []Hit{hit(0, false, 160, 40, 12)}
	hits[0].ClipEnd = 69
	result := Extend(run)(hits)
	if len(result) != 2 {
		t.Fatalf("Extend = %v", result)
	}
	first, second := &result[0], &result[1]
	if first.A1 != 50 || first.X1 != 0 || first.Errors != 1 {
		t.Errorf("rescued exon = %v", first)
	}
	if first.A2 < 75 || first.A2 > 82 {
		t.Errorf("rescued exon end = %v", first)
	}
	if second.A2 != 189 || second.X2 != 69 {
		t.Errorf("extended exon = %v", second)
	}
	if second.A1 < 145 || second.A1 > 152 {
		t.Errorf("extended exon start = %v", second)
	}
}

func TestExtensionBias(t *testing.T) {
	h := hit(0, false, 0, 0, 20)
	tests := []struct {
		name string
		g    Hit
		bias tracker.Bias
	}{
		{"deletion", hit(0, false, 41, 40, 20), tracker.DeletionBias},
		{"insertion", hit(0, false, 39, 40, 20), tracker.InsertionBias},
		{"same diagonal", hit(0, false, 40, 40, 20), tracker.Neutral},
		{"intron", hit(0, false, 100, 20, 20), tracker.Neutral},
		{"other strand", hit(0, true, 41, 40, 20), tracker.Neutral},
	}
	for _, tt := range tests {
		if bias := extensionBias(&h, &tt.g, 4); bias != tt.bias {
			t.Errorf("%v: bias = %v, want %v", tt.name, bias, tt.bias)
		}
	}
	group := []Hit{hit(0, false, 41, 40, 20), h, hit(0, false, 200, 80, 20)}
	back, forward := biases(group, 4)
	if forward[1] != tracker.DeletionBias || back[0] != tracker.DeletionBias {
		t.Errorf("biases = %v, %v", back, forward)
	}
	if back[1] != tracker.Neutral || forward[0] != tracker.Neutral || back[2] != tracker.Neutral {
		t.Errorf("biases = %v, %v", back, forward)
	}
	run := testRun(randomSeq(1, 10))
	for _, bias := range []tracker.Bias{tracker.Neutral, tracker.InsertionBias, tracker.DeletionBias} {
		if run.TrackerFor(bias) == nil {
			t.Fatalf("no tracker for bias %v", bias)
		}
	}
	if run.TrackerFor(tracker.InsertionBias).Table[0].Kind != tracker.Insertion ||
		run.TrackerFor(tracker.DeletionBias).Table[0].Kind != tracker.Deletion {
		t.Error("biased trackers failed")
	}
}

func TestExtendAcrossDeletion(t *testing.T) {
	genome := randomSeq(11, 200)
	// the read skips genome base 30
	read := append(append(dna.Seq(nil), genome[0:30]...), genome[31:70]...)
	run := testRun(genome, readInfo("r0", read, ""))
	hits := []Hit{hit(0, false, 0, 0, 12), hit(0, false, 50, 49, 12)}
	for i := range hits {
		hits[i].ClipEnd = 68
	}
	result := Extend(run)(hits)
	if len(result) != 1 {
		t.Fatalf("Extend = %v", result)
	}
	if h := &result[0]; h.X1 != 0 || h.A1 != 0 || h.X2 != 68 || h.A2 != 69 {
		t.Errorf("merged hit = %v", h)
	}
}

func TestPipelineCounts(t *testing.T) {
	run := testRun(randomSeq(1, 100), readInfo("r0", randomSeq(2, 50), ""))
	result := DefaultPipeline().Run(run, []Hit{hit(0, false, 10, 0, 12)})
	if len(result) != 0 {
		t.Error("single seed survived")
	}
	if len(run.Counts) != len(DefaultPipeline()) || run.Counts[0].Name != "dedup" || run.Counts[1].Hits != 0 {
		t.Errorf("counts = %v", run.Counts)
	}
}
