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

import "github.com/grailbio/base/log"

type (
	// A HitsFilter transforms the candidate hits of a run. The hits
	// passed to a HitsFilter are sorted with ReadLess, and a HitsFilter
	// returns its result sorted the same way. It may reuse the memory of
	// its argument.
	HitsFilter func(hits []Hit) []Hit

	// A Filter receives the run and returns a HitsFilter for it, or nil
	// if there is nothing to do.
	Filter func(run *Run) HitsFilter
)

// A Pass is a named filter.
type Pass struct {
	Name   string
	Filter Filter
}

// A PassCount records the number of candidate hits after a pass.
type PassCount struct {
	Name string
	Hits int
}

// A Pipeline is an ordered sequence of passes.
type Pipeline []Pass

// DefaultPipeline returns the passes from raw seeds to clean per-read
// exon alignments, in their fixed order.
func DefaultPipeline() Pipeline {
	return Pipeline{
		{"dedup", Dedup},
		{"discard-multiple", DiscardMultiple},
		{"extend", Extend},
		{"orientation", Orientation},
		{"colinearity", Colinearity},
		{"weak", Weak},
		{"back-to-back", BackToBack},
		{"double-read", DoubleRead},
	}
}

// Compose returns a HitsFilter that applies the given filters in
// order. Filters that return nil for the run are skipped.
func Compose(run *Run, filters ...Filter) HitsFilter {
	var hitsFilters []HitsFilter
	for _, f := range filters {
		if f != nil {
			if hf := f(run); hf != nil {
				hitsFilters = append(hitsFilters, hf)
			}
		}
	}
	if len(hitsFilters) == 0 {
		return nil
	}
	return func(hits []Hit) []Hit {
		for _, hf := range hitsFilters {
			hits = hf(hits)
		}
		return hits
	}
}

// Run applies the passes to raw seed hits, and records the number of
// candidates after each pass in run.Counts.
func (p Pipeline) Run(run *Run, hits []Hit) []Hit {
	By(ReadLess).ParallelStableSort(hits)
	for _, pass := range p {
		if hf := Compose(run, pass.Filter); hf != nil {
			hits = hf(hits)
		}
		run.Counts = append(run.Counts, PassCount{Name: pass.Name, Hits: len(hits)})
		log.Debug.Printf("%v: %v hits after %v", run.Target, len(hits), pass.Name)
	}
	return hits
}
