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

package engine

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/exascience/estalign/config"
	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/dna"
	"github.com/exascience/estalign/emit"
	"github.com/exascience/estalign/gene"
	"github.com/exascience/estalign/hits"
	"github.com/exascience/estalign/intron"
	"github.com/exascience/estalign/store"
)

const sl1 = "GGTTTAATTACCCAAGTTTGAG"

// testGenome returns exon1 [0,19], a GT-AG intron [20,39], and exon2
// [40,59]. The intron also has an AG at [23,24], for an alternative
// acceptor site.
func testGenome() dna.Seq {
	r := rand.New(rand.NewSource(7))
	g := make(dna.Seq, 60)
	for i := range g {
		g[i] = "ACGT"[r.Intn(4)]
	}
	copy(g[20:], "GT")
	copy(g[23:], "AGC")
	copy(g[38:], "AG")
	g[19] = 'C'
	g[40] = 'A'
	return g
}

func join(parts ...dna.Seq) (result dna.Seq) {
	for _, p := range parts {
		result = append(result, p...)
	}
	return result
}

func substitute(seq dna.Seq, pos int) dna.Seq {
	seq[pos] = dna.Complement(seq[pos])
	return seq
}

// testStore holds 5 reads spanning exon1 and exon2, with one
// substitution each outside the exon flanks.
func testStore(genome dna.Seq) *store.Memory {
	m := store.NewMemory()
	m.AddTarget("chr1", append(dna.Seq(nil), genome...))
	for i, pos := range []int{2, 6, 9, 29, 30} {
		id := "est" + string(rune('1'+i))
		m.AddRead(id, substitute(join(genome[0:20], genome[40:60]), pos))
	}
	return m
}

func alignAll(t *testing.T, st store.Store) (*emit.Collector, Stats) {
	var c emit.Collector
	stats, err := New(config.Default(), st).AlignStore(&c)
	if err != nil {
		t.Fatal(err)
	}
	return &c, stats
}

func TestRoundTrip(t *testing.T) {
	c, stats := alignAll(t, testStore(testGenome()))
	if len(c.Genes) != 1 {
		t.Fatalf("%v genes, stats %+v", len(c.Genes), stats)
	}
	g := c.Genes[0]
	if len(g.Branches) != 1 {
		t.Fatalf("%v branches", len(g.Branches))
	}
	chain := g.Branches[0].Segments
	if len(chain) != 3 {
		t.Fatalf("chain %+v", chain)
	}
	if !chain[0].Kind.IsExon() || chain[0].A1 != 0 || chain[0].A2 != 19 {
		t.Errorf("exon1 = %+v", chain[0])
	}
	if chain[1].Kind != gene.Intron || chain[1].A1 != 20 || chain[1].A2 != 39 || !chain[1].Confirmed {
		t.Errorf("intron = %+v", chain[1])
	}
	if !chain[2].Kind.IsExon() || chain[2].A1 != 40 || chain[2].A2 != 59 {
		t.Errorf("exon2 = %+v", chain[2])
	}
	if len(g.AssembledFrom) != 5 || g.Summary.AlternativeExons != 0 {
		t.Errorf("assembled from %v reads, summary %+v", len(g.AssembledFrom), g.Summary)
	}
	if stats.Aligned != 5 || stats.ConfirmedIntrons != 5 {
		t.Errorf("stats %+v", stats)
	}
}

func TestAlternativeAcceptor(t *testing.T) {
	genome := testGenome()
	st := store.NewMemory()
	st.AddTarget("chr1", append(dna.Seq(nil), genome...))
	for i, pos := range []int{2, 6, 30} {
		st.AddRead("main"+string(rune('1'+i)), substitute(join(genome[0:20], genome[40:60]), pos))
	}
	for i, pos := range []int{4, 45} {
		st.AddRead("alt"+string(rune('1'+i)), substitute(join(genome[0:20], genome[25:60]), pos))
	}
	c, _ := alignAll(t, st)
	if len(c.Genes) != 1 {
		t.Fatalf("%v genes", len(c.Genes))
	}
	g := c.Genes[0]
	if len(g.Branches) != 2 {
		t.Fatalf("%v branches", len(g.Branches))
	}
	main, alt := g.Branches[g.Main], g.Branches[1-g.Main]
	if len(main.Reads) != 3 || len(alt.Reads) != 2 {
		t.Error("read distribution failed")
	}
	if len(alt.Introns) != 1 || alt.Introns[0].Start != 20 || alt.Introns[0].End != 24 {
		t.Errorf("alternative introns %v", alt.Introns)
	}
	if g.Summary.AlternativeIntrons != 1 || g.Summary.AlternativeExons != 1 {
		t.Errorf("summary %+v", g.Summary)
	}
}

func TestTransSplice(t *testing.T) {
	genome := testGenome()
	st := store.NewMemory()
	st.AddTarget("chr1", append(dna.Seq(nil), genome...))
	st.AddRead("est1", join(dna.Seq(sl1), genome[0:20], genome[40:60]))
	if err := st.SetClipBounds("est1", 22, 61); err != nil {
		t.Fatal(err)
	}
	if err := st.SetTransSplice("est1", store.Motif{Name: "SL1", Pos: 22}); err != nil {
		t.Fatal(err)
	}
	st.AddRead("est2", join(genome[0:20], genome[40:60]))
	c, _ := alignAll(t, st)
	if len(c.Genes) != 1 {
		t.Fatalf("%v genes", len(c.Genes))
	}
	g := c.Genes[0]
	if !g.BeginConfirmed || len(g.TransplicedTo) != 1 || g.TransplicedTo[0] != "SL1" {
		t.Error("trans-splice evidence failed")
	}
	first := g.Branches[g.Main].Segments[0]
	if first.Kind != gene.FirstExon || !first.Confirmed {
		t.Errorf("first exon = %+v", first)
	}
}

// mainIntron returns the intron of the single branch of the only gene.
func mainIntron(t *testing.T, c *emit.Collector) (*gene.Gene, gene.Segment) {
	if len(c.Genes) != 1 {
		t.Fatalf("%v genes", len(c.Genes))
	}
	g := c.Genes[0]
	if len(g.Branches) != 1 {
		t.Fatalf("%v branches", len(g.Branches))
	}
	for _, s := range g.Branches[0].Segments {
		if s.Kind.IsIntron() {
			return g, s
		}
	}
	t.Fatal("no intron")
	return g, gene.Segment{}
}

func TestAmbiguousJunction(t *testing.T) {
	genome := testGenome()
	st := store.NewMemory()
	st.AddTarget("chr1", append(dna.Seq(nil), genome...))
	for i, pos := range []int{2, 6, 9, 30} {
		st.AddRead("est"+string(rune('1'+i)), substitute(join(genome[0:20], genome[40:60]), pos))
	}
	read := join(genome[0:20], genome[40:60])
	read[19] = 'N'
	st.AddRead("est5", read)
	c, stats := alignAll(t, st)
	g, in := mainIntron(t, c)
	if in.A1 != 20 || in.A2 != 39 || !in.Confirmed || len(g.Reads) != 5 {
		t.Errorf("intron %+v from %v reads", in, len(g.Reads))
	}
	if stats.ConfirmedIntrons != 5 || stats.NoIntrons != 0 {
		t.Errorf("stats %+v", stats)
	}
}

func TestUnconfirmedJunction(t *testing.T) {
	genome := testGenome()
	st := testStore(genome)
	// substitutions in the flank of exon1
	read := join(genome[0:20], genome[40:60])
	substitute(read, 14)
	substitute(read, 16)
	st.AddRead("est6", read)
	c, stats := alignAll(t, st)
	g, in := mainIntron(t, c)
	if in.A1 != 20 || in.A2 != 39 || len(g.Reads) != 6 {
		t.Errorf("intron %+v from %v reads", in, len(g.Reads))
	}
	if g.Summary.GapLength != 0 || g.Summary.AlternativeExons != 0 {
		t.Errorf("summary %+v", g.Summary)
	}
	if stats.NoIntrons != 1 {
		t.Errorf("stats %+v", stats)
	}
}

func TestReverseStrand(t *testing.T) {
	forward := testGenome()
	st := store.NewMemory()
	st.AddTarget("chr1", dna.ReverseComplement(forward))
	for i, pos := range []int{2, 6, 9, 29, 30} {
		st.AddRead("est"+string(rune('1'+i)), substitute(join(forward[0:20], forward[40:60]), pos))
	}
	c, _ := alignAll(t, st)
	g, in := mainIntron(t, c)
	if !g.Reverse {
		t.Error("gene not on the reverse strand")
	}
	if in.A1 != 20 || in.A2 != 39 || !in.Confirmed {
		t.Errorf("intron = %+v", in)
	}
	for _, r := range g.Reads {
		if len(r.Introns) != 1 || r.Introns[0].Motif != "GT-AG" {
			t.Errorf("read %v introns %+v", r.ID, r.Introns)
		}
	}
	if len(g.AssembledFrom) != 5 {
		t.Errorf("assembled from %v reads", len(g.AssembledFrom))
	}
}

func TestIdempotence(t *testing.T) {
	format := func() []byte {
		var out bytes.Buffer
		if _, err := New(config.Default(), testStore(testGenome())).AlignStore(emit.NewAceWriter(&out)); err != nil {
			t.Fatal(err)
		}
		return out.Bytes()
	}
	first, second := format(), format()
	if len(first) == 0 || !bytes.Equal(first, second) {
		t.Error("alignment is not reproducible")
	}
}

func TestHitInvariants(t *testing.T) {
	cfg := config.Default()
	a := New(cfg, testStore(testGenome()))
	ids, _ := a.Store.Reads()
	batch, err := a.Prepare(ids)
	if err != nil {
		t.Fatal(err)
	}
	result, err := a.AlignTarget(batch, "chr1")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Hits) == 0 {
		t.Fatal("no hits")
	}
	for i := range result.Hits {
		if !result.Hits[i].Valid() {
			t.Errorf("invalid hit %v", &result.Hits[i])
		}
	}
	hits.ForEachRead(result.Hits, func(_ int, group []hits.Hit) {
		for i := 1; i < len(group); i++ {
			if !hits.Colinear(&group[i-1], &group[i], cfg.Filter.ColinearTolerance, cfg.Filter.MaxIntronLength) {
				t.Errorf("hits not colinear: %v %v", &group[i-1], &group[i])
			}
		}
	})
	for _, in := range result.Introns {
		if in.State == intron.Confirmed && (in.A1 > in.A2 || in.A2 >= 60) {
			t.Errorf("intron out of bounds: %+v", in)
		}
	}
}

type failingStore struct {
	*store.Memory
	bad string
}

func (f failingStore) ClipBounds(id string) (start, end coords.Read, err error) {
	if id == f.bad {
		return 0, 0, &store.Error{Op: "clip bounds", ID: id, Err: errors.New("connection lost")}
	}
	return f.Memory.ClipBounds(id)
}

func TestSkips(t *testing.T) {
	genome := testGenome()
	m := testStore(genome)
	m.AddRead("short", append(dna.Seq(nil), genome[0:15]...))
	m.AddTarget("chr2", dna.Seq("NNNNNNNNNNNNNNNNNNNNNNNN"))
	c, stats := alignAll(t, failingStore{Memory: m, bad: "est1"})
	if stats.StoreErrors != 1 || stats.SkippedShort != 1 || stats.Targets != 2 {
		t.Errorf("stats %+v", stats)
	}
	if len(c.Genes) != 1 || len(c.Genes[0].Reads) != 4 {
		t.Error("batch did not continue past skipped reads")
	}
}

func TestMissingTarget(t *testing.T) {
	a := New(config.Default(), testStore(testGenome()))
	ids, _ := a.Store.Reads()
	batch, err := a.Prepare(ids)
	if err != nil {
		t.Fatal(err)
	}
	var c emit.Collector
	stats, err := a.AlignAll(batch, []string{"chrX", "chr1"}, &c)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TargetErrors != 1 || len(c.Genes) != 1 {
		t.Errorf("stats %+v", stats)
	}
	if _, err := a.AlignTarget(batch, "chrX"); !errors.Is(err, store.ErrNotFound) {
		t.Error("missing target not reported")
	}
}
