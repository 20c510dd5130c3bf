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

package intron

import (
	"math/rand"
	"testing"

	"github.com/exascience/estalign/config"
	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/dna"
	"github.com/exascience/estalign/hits"
)

// junctionGenome returns exon1 [0,19], intron [20,39], exon2 [40,59]
// with the given bases at both sides of both intron boundaries.
func junctionGenome(exon1Last, intronStart, intronEnd, exon2First string) dna.Seq {
	r := rand.New(rand.NewSource(42))
	g := make(dna.Seq, 60)
	for i := range g {
		g[i] = "ACGT"[r.Intn(4)]
	}
	copy(g[20-len(exon1Last):], exon1Last)
	copy(g[20:], intronStart)
	copy(g[40-len(intronEnd):], intronEnd)
	copy(g[40:], exon2First)
	return g
}

func spliced(g dna.Seq) dna.Seq {
	return append(append(dna.Seq(nil), g[:20]...), g[40:]...)
}

func exonHits() (h, g hits.Hit) {
	h = hits.Hit{A1: 0, A2: 19, X1: 0, X2: 19, ClipTop: 0, ClipEnd: 39}
	g = hits.Hit{A1: 40, A2: 59, X1: 20, X2: 39, ClipTop: 0, ClipEnd: 39}
	return h, g
}

func TestDetectCanonical(t *testing.T) {
	genome := junctionGenome("C", "GT", "AG", "A")
	h, g := exonHits()
	in := New(config.Default().Intron, genome).Detect(spliced(genome), &h, &g, false)
	if in.State != Confirmed || in.A1 != 20 || in.A2 != 39 || in.Motif != "GT-AG" || in.Slid {
		t.Errorf("intron = %+v", in)
	}
	if in.Window != [2]coords.Read{19, 19} {
		t.Errorf("window = %v", in.Window)
	}
	if h.A2 != 19 || g.A1 != 40 || h.X2 != 19 || g.X1 != 20 {
		t.Error("hit adjustment failed")
	}
}

func TestDetectOverlappingHits(t *testing.T) {
	genome := junctionGenome("C", "GT", "AG", "A")
	h, g := exonHits()
	// extensions that ran past the junction
	h.A2, h.X2 = 22, 22
	g.A1, g.X1 = 37, 17
	in := New(config.Default().Intron, genome).Detect(spliced(genome), &h, &g, false)
	if in.State != Confirmed || in.A1 != 20 || in.A2 != 39 {
		t.Errorf("intron = %+v", in)
	}
	if h.X2 != 19 || g.X1 != 20 {
		t.Error("hits do not meet at the junction")
	}
}

func TestDetectSlides(t *testing.T) {
	// the last exon base equals the last intron base, so the junction
	// can be placed after read position 18 or 19
	genome := junctionGenome("TG", "GT", "AG", "A")
	h, g := exonHits()
	h.A2, h.X2 = 18, 18
	g.A1, g.X1 = 39, 19
	in := New(config.Default().Intron, genome).Detect(spliced(genome), &h, &g, false)
	if in.Window != [2]coords.Read{18, 19} {
		t.Fatalf("window = %v", in.Window)
	}
	if in.Packed != [2]coords.Genomic{19, 38} {
		t.Errorf("packed = %v", in.Packed)
	}
	if in.State != Confirmed || in.A1 != 20 || in.A2 != 39 || in.Motif != "GT-AG" || !in.Slid {
		t.Errorf("intron = %+v", in)
	}
	if p := int(in.A1) - 1; p < int(in.Window[0]) || p > int(in.Window[1]) {
		t.Error("slide left the ambiguous window")
	}
}

func TestDetectNoSlide(t *testing.T) {
	genome := junctionGenome("TG", "GT", "AG", "A")
	h, g := exonHits()
	cfg := config.Default().Intron
	cfg.NoSlide = true
	in := New(cfg, genome).Detect(spliced(genome), &h, &g, false)
	if in.State != Confirmed || in.A1 != 19 || in.A2 != 38 || in.Slid {
		t.Errorf("intron = %+v", in)
	}
}

func TestDetectReverseStrand(t *testing.T) {
	genome := junctionGenome("A", "CT", "AC", "G")
	h, g := exonHits()
	in := New(config.Default().Intron, genome).Detect(spliced(genome), &h, &g, true)
	if in.State != Confirmed || in.Motif != "GT-AG" || !in.Reverse {
		t.Errorf("intron = %+v", in)
	}
	h, g = exonHits()
	in = New(config.Default().Intron, genome).Detect(spliced(genome), &h, &g, false)
	if in.Motif == "GT-AG" {
		t.Error("reverse motif accepted on the forward strand")
	}
}

func TestDetectFlankFailure(t *testing.T) {
	genome := junctionGenome("C", "GT", "AG", "A")
	read := spliced(genome)
	read[22] = dna.Complement(read[22])
	read[25] = dna.Complement(read[25])
	h, g := exonHits()
	in := New(config.Default().Intron, genome).Detect(read, &h, &g, false)
	if in.State != NoIntron {
		t.Errorf("intron = %+v", in)
	}
	if h.X2 != 19 || g.X1 != 20 {
		t.Error("hits do not meet at the split")
	}
}

func TestDetectFlankSubstitution(t *testing.T) {
	genome := junctionGenome("C", "GT", "AG", "A")
	read := spliced(genome)
	read[16] = dna.Complement(read[16])
	h, g := exonHits()
	// extensions that ran past the junction
	h.A2, h.X2 = 22, 22
	g.A1, g.X1 = 37, 17
	in := New(config.Default().Intron, genome).Detect(read, &h, &g, false)
	if in.State != NoIntron || in.Motif != "" {
		t.Errorf("intron = %+v", in)
	}
	if h.X2 != 19 || h.A2 != 19 || g.X1 != 20 || g.A1 != 40 {
		t.Error("hits do not meet at the split")
	}
	cfg := config.Default().Intron
	cfg.FlankErrors = 1
	h, g = exonHits()
	in = New(cfg, genome).Detect(read, &h, &g, false)
	if in.State != Confirmed || in.A1 != 20 || in.A2 != 39 {
		t.Errorf("tolerant intron = %+v", in)
	}
}

func TestDetectAmbiguousJunction(t *testing.T) {
	genome := junctionGenome("C", "GT", "AG", "A")
	read := spliced(genome)
	read[19] = 'N'
	h, g := exonHits()
	in := New(config.Default().Intron, genome).Detect(read, &h, &g, false)
	if in.State != Confirmed || in.A1 != 20 || in.A2 != 39 || in.Motif != "GT-AG" {
		t.Errorf("intron = %+v", in)
	}
	if in.Window[0] > 18 || in.Window[1] != 19 {
		t.Errorf("window = %v", in.Window)
	}
	if h.X2 != 19 || g.X1 != 20 {
		t.Error("hits do not meet at the junction")
	}
}

func TestDetectSmallGap(t *testing.T) {
	genome := junctionGenome("C", "GT", "AG", "A")
	h := hits.Hit{A1: 0, A2: 19, X1: 0, X2: 19}
	g := hits.Hit{A1: 23, A2: 40, X1: 20, X2: 37}
	in := New(config.Default().Intron, genome).Detect(genome, &h, &g, false)
	if in.State != Unchecked {
		t.Errorf("state = %v", in.State)
	}
}

func TestMotifs(t *testing.T) {
	m := Motifs()
	if m[0].Name != "GT-AG" {
		t.Error("canonical motif is not first")
	}
	m[0].Name = "changed"
	if Motifs()[0].Name != "GT-AG" {
		t.Error("motif lists share state")
	}
	if start, end := Motifs()[2].genomic(true); start != "GT" || end != "AT" {
		t.Error("reverse AT-AC failed")
	}
}
