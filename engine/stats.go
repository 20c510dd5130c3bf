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
	"github.com/dustin/go-humanize"
	"github.com/grailbio/base/log"
)

// Stats counts what happened to reads, introns, and genes. Skips and
// failures are counted, never fatal.
type Stats struct {
	Targets      int
	TargetErrors int

	Reads        int
	StoreErrors  int
	MissingReads int
	SkippedShort int
	Indexed      int
	Repeats      int

	RawHits int
	Aligned int

	Introns          int
	ConfirmedIntrons int
	NoIntrons        int

	Genes        int
	Conflicts    int
	DroppedReads int
}

// Add adds the per-target counts of s to the receiver.
func (stats *Stats) Add(s Stats) {
	stats.Targets += s.Targets
	stats.TargetErrors += s.TargetErrors
	stats.RawHits += s.RawHits
	stats.Aligned += s.Aligned
	stats.Introns += s.Introns
	stats.ConfirmedIntrons += s.ConfirmedIntrons
	stats.NoIntrons += s.NoIntrons
	stats.Genes += s.Genes
	stats.Conflicts += s.Conflicts
	stats.DroppedReads += s.DroppedReads
}

func count(n int) string {
	return humanize.Comma(int64(n))
}

// Log prints the counters.
func (stats *Stats) Log() {
	log.Printf("Reads: %v, indexed %v, too short %v, missing %v, store errors %v.",
		count(stats.Reads), count(stats.Indexed), count(stats.SkippedShort), count(stats.MissingReads), count(stats.StoreErrors))
	log.Printf("Targets: %v, failed %v. Raw hits: %v, aligned reads: %v.",
		count(stats.Targets), count(stats.TargetErrors), count(stats.RawHits), count(stats.Aligned))
	log.Printf("Introns: %v checked, %v confirmed, %v rejected.",
		count(stats.Introns), count(stats.ConfirmedIntrons), count(stats.NoIntrons))
	log.Printf("Genes: %v, clone conflicts %v, reads dropped %v.",
		count(stats.Genes), count(stats.Conflicts), count(stats.DroppedReads))
}
