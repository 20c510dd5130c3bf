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

// Package gene assembles the clean alignments of reads on one genomic
// target into gene models.
//
// Reads are grouped into zones per transcript strand. Within a zone,
// reads are folded into transcript branches: a read that contradicts
// the introns of every branch starts a new branch, which shares the
// upstream introns of the branch it forks from. The branch with the
// most reads is the main branch, and segments that only occur in other
// branches are alternative.
package gene

import (
	"sort"

	"github.com/google/uuid"
	"github.com/grailbio/base/log"

	"github.com/exascience/estalign/config"
	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/intervals"
)

// modelNamespace is the namespace for name-based gene model ids.
var modelNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ExaScience/estalign/gene"))

// An Assembly row records which region of a read supports a gene.
// X1 > X2 for reads aligned on the reverse strand.
type Assembly struct {
	A1, A2 coords.Genomic
	Read   string
	X1, X2 coords.Read
	Branch int
}

// Summary counts the segments of a gene.
type Summary struct {
	Exons              int
	AlternativeExons   int
	Introns            int
	AlternativeIntrons int

	// GapLength counts the positions of the main branch that no read
	// covers, outside its introns. CoveredLength counts the positions
	// its reads cover.
	GapLength     int
	CoveredLength int
}

// A Gene is the model assembled from one zone.
type Gene struct {
	Name    string
	ID      uuid.UUID
	Target  string
	Reverse bool

	A1, A2 coords.Genomic

	Reads  []*Read
	Clones []string

	Branches []*Branch
	Main     int

	// Segments holds the distinct segments of all branches, classified
	// against the main branch, in genomic order.
	Segments []Segment

	AssembledFrom []Assembly

	BeginConfirmed, EndConfirmed bool
	TransplicedTo                []string

	Summary Summary
}

// Stats counts the outcome of assembling one target.
type Stats struct {
	Reads        int
	Zones        int
	Conflicts    int
	DroppedReads int
}

func absDiff(a, b coords.Genomic) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// confirmEnds sets the begin and end confirmation of the branches of a
// gene from trans-splice and polyA evidence of its reads.
func (g *Gene) confirmEnds(cfg config.Assembly) {
	motifs := make(map[string]bool)
	for _, b := range g.Branches {
		five, three := b.A1, b.A2
		if g.Reverse {
			five, three = three, five
		}
		for _, r := range g.Reads {
			if r.TransSplice != "" && absDiff(r.TransSpliceAt, five) <= cfg.TransSpliceTolerance {
				b.BeginConfirmed = true
				motifs[r.TransSplice] = true
			}
			if r.PolyA && absDiff(r.PolyAAt, three) <= cfg.PolyATolerance {
				b.EndConfirmed = true
			}
		}
		g.BeginConfirmed = g.BeginConfirmed || b.BeginConfirmed
		g.EndConfirmed = g.EndConfirmed || b.EndConfirmed
	}
	for motif := range motifs {
		g.TransplicedTo = append(g.TransplicedTo, motif)
	}
	sort.Strings(g.TransplicedTo)
}

// markTerminalExons types the first and last exon of a branch in
// transcript order.
func (b *Branch) markTerminalExons(reverse bool) {
	first, last := -1, -1
	for i := range b.Segments {
		if b.Segments[i].Kind == Exon {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 || first == last {
		return
	}
	if reverse {
		first, last = last, first
	}
	b.Segments[first].Kind = FirstExon
	b.Segments[first].Confirmed = b.BeginConfirmed
	b.Segments[last].Kind = LastExon
	b.Segments[last].Confirmed = b.EndConfirmed
}

// support sets the supporting reads of a segment.
func (g *Gene) support(s *Segment, models []*model) {
	s.Read = -1
	s.Support = 0
	in := intervals.Interval{Start: s.A1, End: s.A2}
	for i, m := range models {
		var ok bool
		switch {
		case s.Kind.IsIntron():
			ok = m.hasIntron(in)
		case s.Kind.IsExon():
			ok = m.overlapsExon(s.A1, s.A2)
		}
		if ok {
			if s.Read < 0 {
				s.Read = i
			}
			s.Support++
		}
	}
}

type segmentKey struct {
	a1, a2 coords.Genomic
	intron bool
	gap    bool
}

func keyOf(s *Segment) segmentKey {
	return segmentKey{a1: s.A1, a2: s.A2, intron: s.Kind.IsIntron(), gap: s.Kind == Gap}
}

// classify merges the segments of all branches. Segments of the main
// branch keep their kind, other segments become alternative.
func (g *Gene) classify() {
	seen := make(map[segmentKey]bool)
	add := func(s Segment, alternative bool) {
		key := keyOf(&s)
		if seen[key] {
			return
		}
		seen[key] = true
		if alternative {
			switch {
			case s.Kind.IsExon():
				s.Kind = AlternativeExon
			case s.Kind.IsIntron():
				s.Kind = AlternativeIntron
			}
		}
		g.Segments = append(g.Segments, s)
	}
	for _, s := range g.Branches[g.Main].Segments {
		add(s, false)
	}
	for i, b := range g.Branches {
		if i == g.Main {
			continue
		}
		for _, s := range b.Segments {
			add(s, true)
		}
	}
	sort.SliceStable(g.Segments, func(i, j int) bool {
		si, sj := &g.Segments[i], &g.Segments[j]
		if si.A1 != sj.A1 {
			return si.A1 < sj.A1
		}
		return si.A2 < sj.A2
	})
	main := g.Branches[g.Main]
	g.Summary = Summary{CoveredLength: intervals.Covered(main.covered())}
	for i := range g.Segments {
		s := &g.Segments[i]
		switch {
		case s.Kind == AlternativeExon:
			g.Summary.AlternativeExons++
			g.Summary.Exons++
		case s.Kind.IsExon():
			g.Summary.Exons++
		case s.Kind == AlternativeIntron:
			g.Summary.AlternativeIntrons++
			g.Summary.Introns++
		case s.Kind == Intron:
			g.Summary.Introns++
		case s.Kind == Gap && s.Branch == main.ID:
			g.Summary.GapLength += s.Length()
		}
	}
}

func newGene(target string, z *Zone, cfg config.Assembly) *Gene {
	g := &Gene{
		Target:  target,
		Reverse: z.Reverse,
		A1:      z.Start,
		A2:      z.End,
		Clones:  z.Clones,
	}
	g.Name = target + "." + z.Clones[0]
	g.ID = uuid.NewSHA1(modelNamespace, []byte(g.Name))
	for _, m := range z.models {
		g.Reads = append(g.Reads, m.read)
	}
	g.Branches = foldBranches(z.models, cfg.OverhangTolerance)
	g.Main = mainBranch(g.Branches)
	for _, b := range g.Branches {
		for _, read := range b.Reads {
			m := z.models[read]
			x1, x2 := m.readSpan()
			g.AssembledFrom = append(g.AssembledFrom, Assembly{
				A1: m.span.Start, A2: m.span.End,
				Read: m.read.ID, X1: x1, X2: x2,
				Branch: b.ID,
			})
		}
	}
	sort.SliceStable(g.AssembledFrom, func(i, j int) bool {
		return g.AssembledFrom[i].A1 < g.AssembledFrom[j].A1
	})
	g.confirmEnds(cfg)
	for _, b := range g.Branches {
		b.chain()
		b.markTerminalExons(g.Reverse)
		b.assignMRNA(g.Reverse)
		for i := range b.Segments {
			g.support(&b.Segments[i], z.models)
		}
	}
	g.classify()
	return g
}

// Assemble builds the gene models of one target from the clean
// alignments of its reads. Reads without hits are ignored. Genes are
// returned in genomic order.
func Assemble(target string, reads []*Read, cfg config.Assembly) ([]*Gene, Stats) {
	var models []*model
	for _, r := range reads {
		if len(r.Hits) == 0 {
			continue
		}
		m := newModel(r, len(models))
		models = append(models, &m)
	}
	stats := Stats{Reads: len(models)}
	if len(models) == 0 {
		return nil, stats
	}
	zones, conflicts, dropped := buildZones(models, cfg)
	stats.Zones, stats.Conflicts, stats.DroppedReads = len(zones), conflicts, dropped
	genes := make([]*Gene, 0, len(zones))
	for _, z := range zones {
		genes = append(genes, newGene(target, z, cfg))
	}
	log.Debug.Printf("%v: %v reads assembled into %v genes", target, len(models), len(genes))
	return genes, stats
}
