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

// Package engine aligns a batch of reads against genomic targets, from
// seed search to assembled genes.
//
// Each target is aligned start to finish by one run, and runs share
// nothing but the read batch and its index. AlignAll runs targets in
// parallel and delivers their results in target order.
package engine

import (
	"sort"

	"github.com/exascience/pargo/pipeline"
	"github.com/grailbio/base/log"

	"github.com/exascience/estalign/config"
	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/emit"
	"github.com/exascience/estalign/gene"
	"github.com/exascience/estalign/hits"
	"github.com/exascience/estalign/intron"
	"github.com/exascience/estalign/kmer"
	"github.com/exascience/estalign/store"
	"github.com/exascience/estalign/utils"
)

// An Aligner aligns reads from a store against its targets.
type Aligner struct {
	Config   config.Config
	Store    store.Store
	Pipeline hits.Pipeline

	// Progress, if not nil, is called after each target is delivered.
	Progress func(target string)
}

// New returns an Aligner with the default hit pipeline.
func New(cfg config.Config, st store.Store) *Aligner {
	return &Aligner{Config: cfg, Store: st, Pipeline: hits.DefaultPipeline()}
}

// A Result is the outcome of aligning a batch against one target.
type Result struct {
	Target string

	// clean hits, sorted by read
	Hits    []hits.Hit
	Introns []intron.Intron
	Counts  []hits.PassCount
	Genes   []*gene.Gene
	Stats   Stats
}

func absRead(x coords.Read) int {
	if x < 0 {
		return int(-x)
	}
	return int(x)
}

// evidence maps the trans-splice and polyA annotations of a read to
// genomic positions, when they are within tolerance of the aligned
// ends of the read. group holds the hits of the read in genomic order.
func evidence(r *gene.Read, info *hits.ReadInfo, ann annotation, group []hits.Hit, cfg config.Assembly) {
	first, last := &group[0], &group[len(group)-1]
	n := len(info.Seq)
	// aligned ends in the read as stored, with their genomic positions
	start, startA := first.X1, first.A1
	end, endA := last.X2, last.A2
	if first.Reverse {
		start, startA = last.X2.Flip(n), last.A2
		end, endA = first.X1.Flip(n), first.A1
	}
	if ann.hasTrans && absRead(start-ann.trans.Pos) <= cfg.TransSpliceTolerance {
		r.TransSplice, r.TransSpliceAt = ann.trans.Name, startA
	}
	if ann.hasPolyA {
		switch {
		case absRead(ann.polyA-1-end) <= cfg.PolyATolerance:
			r.PolyA, r.PolyAAt = true, endA
		case absRead(ann.polyA-start) <= cfg.PolyATolerance:
			// a polyT run in front of a read from the 3' end of a clone
			r.PolyA, r.PolyAAt = true, startA
		}
	}
}

// AlignTarget aligns the batch against one target.
func (a *Aligner) AlignTarget(batch *Batch, target string) (*Result, error) {
	genome, ok, err := a.Store.Target(target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &store.Error{Op: "target", ID: target, Err: store.ErrNotFound}
	}
	result := &Result{Target: target}
	result.Stats.Targets = 1
	raw := kmer.Search(genome, batch.Index)
	result.Stats.RawHits = len(raw)
	run := hits.NewRun(a.Config, target, genome, batch.Reads)
	result.Hits = a.Pipeline.Run(run, raw)
	result.Counts = run.Counts
	detector := intron.New(a.Config.Intron, genome)
	var reads []*gene.Read
	hits.ForEachRead(result.Hits, func(read int, group []hits.Hit) {
		info := &batch.Reads[read]
		reverse := group[0].Reverse
		transcriptReverse := reverse != info.ThreePrime
		introns := detector.DetectRead(info.Oriented(reverse), group, transcriptReverse)
		for _, in := range introns {
			result.Stats.Introns++
			switch in.State {
			case intron.Confirmed:
				result.Stats.ConfirmedIntrons++
			case intron.NoIntron:
				result.Stats.NoIntrons++
			}
		}
		result.Introns = append(result.Introns, introns...)
		r := &gene.Read{
			ID:      info.ID,
			Clone:   utils.SymbolName(info.Clone),
			Reverse: transcriptReverse,
			Length:  len(info.Seq),
			Hits:    append([]hits.Hit(nil), group...),
			Introns: introns,
		}
		evidence(r, info, batch.annotations[read], group, a.Config.Assembly)
		reads = append(reads, r)
	})
	result.Stats.Aligned = len(reads)
	genes, stats := gene.Assemble(target, reads, a.Config.Assembly)
	result.Genes = genes
	result.Stats.Genes = len(genes)
	result.Stats.Conflicts = stats.Conflicts
	result.Stats.DroppedReads = stats.DroppedReads
	log.Debug.Printf("%v: %v raw hits, %v reads aligned, %v genes", target, len(raw), len(reads), len(genes))
	return result, nil
}

// AlignAll aligns the batch against the given targets in parallel and
// sends the genes to the emitter in target order. Targets that cannot
// be fetched are logged and counted. Only emitter errors stop the run.
func (a *Aligner) AlignAll(batch *Batch, targets []string, emitter emit.Emitter) (Stats, error) {
	sorted := append([]string(nil), targets...)
	sort.Strings(sorted)
	stats := batch.Stats
	var p pipeline.Pipeline
	p.Source(sorted)
	p.Add(
		pipeline.LimitedPar(a.Config.Workers, pipeline.Receive(func(_ int, data interface{}) interface{} {
			targets := data.([]string)
			results := make([]*Result, len(targets))
			for i, target := range targets {
				result, err := a.AlignTarget(batch, target)
				if err != nil {
					log.Error.Printf("%v, target %v skipped", err, target)
					result = &Result{Target: target, Stats: Stats{TargetErrors: 1}}
				}
				results[i] = result
			}
			return results
		})),
		pipeline.StrictOrd(pipeline.Receive(func(_ int, data interface{}) interface{} {
			for _, result := range data.([]*Result) {
				stats.Add(result.Stats)
				for _, g := range result.Genes {
					if err := emitter.Emit(g); err != nil {
						p.SetErr(err)
						return data
					}
				}
				if a.Progress != nil {
					a.Progress(result.Target)
				}
			}
			return data
		})),
	)
	p.Run()
	if err := p.Err(); err != nil {
		return stats, err
	}
	return stats, emitter.Flush()
}

// AlignStore prepares all reads of the store and aligns them against
// all of its targets.
func (a *Aligner) AlignStore(emitter emit.Emitter) (Stats, error) {
	ids, err := a.Store.Reads()
	if err != nil {
		return Stats{}, err
	}
	targets, err := a.Store.Targets()
	if err != nil {
		return Stats{}, err
	}
	batch, err := a.Prepare(ids)
	if err != nil {
		return Stats{}, err
	}
	return a.AlignAll(batch, targets, emitter)
}
