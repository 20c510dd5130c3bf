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
	"sort"

	"github.com/grailbio/base/log"

	"github.com/exascience/estalign/config"
	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/intervals"
)

// A Zone is a strand-tagged genomic region with the reads that make up
// one gene.
type Zone struct {
	Reverse bool
	intervals.Interval
	Clones []string

	models []*model
}

// sortModels sorts by genomic start, then end, then read id.
func sortModels(models []*model) {
	sort.Slice(models, func(i, j int) bool {
		mi, mj := models[i], models[j]
		switch {
		case mi.span.Start != mj.span.Start:
			return mi.span.Start < mj.span.Start
		case mi.span.End != mj.span.End:
			return mi.span.End < mj.span.End
		default:
			return mi.read.ID < mj.read.ID
		}
	})
}

// linkOverlaps connects reads on the same strand whose spans are at
// most gap positions apart.
func linkOverlaps(g graph, models []*model, gap int) {
	sorted := append([]*model(nil), models...)
	sortModels(sorted)
	for _, reverse := range []bool{false, true} {
		var cur intervals.Interval
		curNode := -1
		for _, m := range sorted {
			if m.read.Reverse != reverse {
				continue
			}
			if curNode >= 0 && cur.Extend(m.span, gap) {
				g.addEdge(curNode, m.index)
				continue
			}
			cur, curNode = m.span, m.index
		}
	}
}

// linkClones connects reads of the same clone on the same strand within
// maxSpan positions of each other.
func linkClones(g graph, models []*model, maxSpan int) {
	clones := make(map[string][]*model)
	for _, m := range models {
		clones[m.read.Clone] = append(clones[m.read.Clone], m)
	}
	for _, members := range clones {
		for i, m := range members {
			for _, n := range members[i+1:] {
				if m.read.Reverse != n.read.Reverse {
					continue
				}
				span := intervals.Interval{
					Start: coords.MinGenomic(m.span.Start, n.span.Start),
					End:   coords.MaxGenomic(m.span.End, n.span.End),
				}
				if span.Length() <= maxSpan {
					g.addEdge(m.index, n.index)
				}
			}
		}
	}
}

type claim struct {
	zone    *Zone
	aligned int
	reads   int
	first   string
}

func (c claim) better(d claim) bool {
	switch {
	case c.aligned != d.aligned:
		return c.aligned > d.aligned
	case c.reads != d.reads:
		return c.reads > d.reads
	default:
		return c.first < d.first
	}
}

// resolveConflicts keeps every clone in a single zone: the zone where
// the clone has the most aligned bases, then the most reads, then the
// lexically smallest read. The clone's reads are removed from all other
// zones. It returns the number of conflicts.
func resolveConflicts(zones []*Zone) (conflicts, dropped int) {
	claims := make(map[string][]claim)
	for _, z := range zones {
		byClone := make(map[string]*claim)
		for _, m := range z.models {
			c := byClone[m.read.Clone]
			if c == nil {
				c = &claim{zone: z, first: m.read.ID}
				byClone[m.read.Clone] = c
			}
			c.aligned += m.aligned
			c.reads++
			if m.read.ID < c.first {
				c.first = m.read.ID
			}
		}
		for clone, c := range byClone {
			claims[clone] = append(claims[clone], *c)
		}
	}
	clones := make([]string, 0, len(claims))
	for clone := range claims {
		clones = append(clones, clone)
	}
	sort.Strings(clones)
	for _, clone := range clones {
		cs := claims[clone]
		if len(cs) < 2 {
			continue
		}
		conflicts++
		best := cs[0]
		for _, c := range cs[1:] {
			if c.better(best) {
				best = c
			}
		}
		for _, c := range cs {
			if c.zone == best.zone {
				continue
			}
			kept := c.zone.models[:0]
			for _, m := range c.zone.models {
				if m.read.Clone == clone {
					dropped++
					continue
				}
				kept = append(kept, m)
			}
			c.zone.models = kept
		}
		log.Printf("clone %v aligns to %v zones, kept the zone at %v-%v", clone, len(cs), best.zone.Start+1, best.zone.End+1)
	}
	return conflicts, dropped
}

// update recomputes the span and clones of a zone from its reads.
func (z *Zone) update() {
	sortModels(z.models)
	z.Interval = z.models[0].span
	clones := make(map[string]bool)
	z.Clones = z.Clones[:0]
	for _, m := range z.models {
		if m.span.End > z.End {
			z.End = m.span.End
		}
		if !clones[m.read.Clone] {
			clones[m.read.Clone] = true
			z.Clones = append(z.Clones, m.read.Clone)
		}
	}
	sort.Strings(z.Clones)
}

// buildZones groups reads into zones: reads on the same strand whose
// spans overlap or lie within ZoneGap positions are joined, reads of
// the same clone are joined, and the join is transitive.
func buildZones(models []*model, cfg config.Assembly) (zones []*Zone, conflicts, dropped int) {
	g := newGraph(len(models))
	linkOverlaps(g, models, cfg.ZoneGap)
	linkClones(g, models, cfg.MaxCloneSpan)
	reps := g.cluster()
	byRep := make(map[int]*Zone)
	for _, m := range models {
		rep := reps[m.index]
		z := byRep[rep]
		if z == nil {
			z = &Zone{Reverse: m.read.Reverse}
			byRep[rep] = z
			zones = append(zones, z)
		}
		z.models = append(z.models, m)
	}
	for _, z := range zones {
		z.update()
	}
	conflicts, dropped = resolveConflicts(zones)
	kept := zones[:0]
	for _, z := range zones {
		if len(z.models) == 0 {
			continue
		}
		z.update()
		kept = append(kept, z)
	}
	zones = kept
	sort.Slice(zones, func(i, j int) bool {
		zi, zj := zones[i], zones[j]
		switch {
		case zi.Start != zj.Start:
			return zi.Start < zj.Start
		case zi.End != zj.End:
			return zi.End < zj.End
		default:
			return !zi.Reverse && zj.Reverse
		}
	})
	return zones, conflicts, dropped
}
