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
	"github.com/exascience/estalign/config"
	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/dna"
	"github.com/exascience/estalign/tracker"
	"github.com/exascience/estalign/utils"
)

// A ReadInfo holds what a run knows about one read. Clip bounds refer
// to the read as stored.
type ReadInfo struct {
	ID                 string
	Seq                dna.Seq
	Clone              utils.Symbol
	ClipStart, ClipEnd coords.Read
	ThreePrime         bool

	rc dna.Seq
}

// NewReadInfo returns a ReadInfo that owns the reverse complement of
// the given sequence.
func NewReadInfo(id string, seq dna.Seq, clone utils.Symbol, clipStart, clipEnd coords.Read, threePrime bool) ReadInfo {
	return ReadInfo{
		ID:         id,
		Seq:        seq,
		Clone:      clone,
		ClipStart:  clipStart,
		ClipEnd:    clipEnd,
		ThreePrime: threePrime,
		rc:         dna.ReverseComplement(seq),
	}
}

// Oriented returns the read, or its reverse complement.
func (r *ReadInfo) Oriented(reverse bool) dna.Seq {
	if reverse {
		return r.rc
	}
	return r.Seq
}

// Clip returns the clip bounds in the oriented frame.
func (r *ReadInfo) Clip(reverse bool) (top, end coords.Read) {
	if reverse {
		n := len(r.Seq)
		return r.ClipEnd.Flip(n), r.ClipStart.Flip(n)
	}
	return r.ClipStart, r.ClipEnd
}

// Usable returns the number of bases in the clipped region.
func (r *ReadInfo) Usable() int {
	return coords.ReadLength(r.ClipStart, r.ClipEnd)
}

// A Run carries the context of one alignment run against a target.
// The passes of a pipeline only read from a Run, except for the
// per-pass bookkeeping.
type Run struct {
	Config config.Config
	Target string
	Genome dna.Seq
	Reads  []ReadInfo

	// one tracker per jump table bias
	Trackers [3]*tracker.Tracker

	// raw seed hits per read, recorded before deduplication
	RawHits []int

	// candidate counts after each pass
	Counts []PassCount
}

// NewRun returns a Run with trackers for the neutral, insertion and
// deletion jump tables.
func NewRun(cfg config.Config, target string, genome dna.Seq, reads []ReadInfo) *Run {
	run := &Run{
		Config: cfg,
		Target: target,
		Genome: genome,
		Reads:  reads,
	}
	for _, bias := range []tracker.Bias{tracker.Neutral, tracker.InsertionBias, tracker.DeletionBias} {
		run.Trackers[bias] = tracker.New(cfg.Tracker, bias)
	}
	return run
}

// TrackerFor returns the tracker with the jump table for the given bias.
func (run *Run) TrackerFor(bias tracker.Bias) *tracker.Tracker {
	return run.Trackers[bias]
}

// Query returns the tracker query of a read against the target.
func (run *Run) Query(read int, reverse bool) tracker.Query {
	return tracker.Query{
		Short:   run.Reads[read].Oriented(reverse),
		Long:    run.Genome,
		Reverse: reverse,
	}
}
