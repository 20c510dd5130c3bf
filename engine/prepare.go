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
	"github.com/exascience/pargo/pipeline"
	"github.com/grailbio/base/log"

	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/hits"
	"github.com/exascience/estalign/kmer"
	"github.com/exascience/estalign/store"
	"github.com/exascience/estalign/utils"
)

// annotation holds the end evidence of a read, in the read as stored.
type annotation struct {
	polyA    coords.Read
	hasPolyA bool
	trans    store.Motif
	hasTrans bool
}

// A Batch is a set of reads with their index, shared by the runs
// against all targets. A Batch is read-only once prepared.
type Batch struct {
	Reads []hits.ReadInfo
	Index *kmer.Index
	Stats Stats

	annotations []annotation
}

type fetched struct {
	info       hits.ReadInfo
	annotation annotation
	missing    bool
	err        error
}

func fetch(st store.Store, id string) (f fetched) {
	seq, ok, err := st.Sequence(id)
	if err != nil {
		f.err = err
		return f
	}
	if !ok {
		f.missing = true
		return f
	}
	clipStart, clipEnd, err := st.ClipBounds(id)
	if err != nil {
		f.err = err
		return f
	}
	clone, err := st.CloneGroup(id)
	if err != nil {
		f.err = err
		return f
	}
	if clone == "" {
		clone = id
	}
	threePrime, err := st.ThreePrime(id)
	if err != nil {
		f.err = err
		return f
	}
	if f.annotation.polyA, f.annotation.hasPolyA, err = st.PolyAPosition(id); err != nil {
		f.err = err
		return f
	}
	if f.annotation.trans, f.annotation.hasTrans, err = st.TransSpliceSite(id); err != nil {
		f.err = err
		return f
	}
	f.info = hits.NewReadInfo(id, seq, utils.Intern(clone), clipStart, clipEnd, threePrime)
	return f
}

// Prepare fetches the given reads from the store and indexes them.
// Reads the store cannot deliver are logged, counted, and left out.
func (a *Aligner) Prepare(ids []string) (*Batch, error) {
	batch := &Batch{}
	batch.Stats.Reads = len(ids)
	var p pipeline.Pipeline
	p.Source(ids)
	p.Add(
		pipeline.LimitedPar(a.Config.Workers, pipeline.Receive(func(_ int, data interface{}) interface{} {
			ids := data.([]string)
			result := make([]fetched, len(ids))
			for i, id := range ids {
				result[i] = fetch(a.Store, id)
			}
			return result
		})),
		pipeline.StrictOrd(pipeline.Receive(func(_ int, data interface{}) interface{} {
			for _, f := range data.([]fetched) {
				switch {
				case f.err != nil:
					log.Error.Printf("%v, read skipped", f.err)
					batch.Stats.StoreErrors++
				case f.missing:
					batch.Stats.MissingReads++
				default:
					batch.Reads = append(batch.Reads, f.info)
					batch.annotations = append(batch.annotations, f.annotation)
				}
			}
			return data
		})),
	)
	p.Run()
	if err := p.Err(); err != nil {
		return nil, err
	}
	sources := make([]kmer.Source, len(batch.Reads))
	for i := range batch.Reads {
		r := &batch.Reads[i]
		sources[i] = kmer.Source{Seq: r.Seq, Clone: r.Clone, ClipStart: r.ClipStart, ClipEnd: r.ClipEnd}
	}
	index, stats := kmer.Build(sources, a.Config.Seed)
	batch.Index = index
	batch.Stats.Indexed = stats.Indexed
	batch.Stats.SkippedShort = stats.SkippedShort
	batch.Stats.Repeats = stats.Repeats
	log.Printf("Indexed %v of %v reads, %v oligos.", count(stats.Indexed), count(len(ids)), count(stats.Oligos))
	return batch, nil
}
