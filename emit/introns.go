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

package emit

import (
	"io"
	"sort"
	"strconv"

	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/gene"
	"github.com/exascience/estalign/internal"
	"github.com/exascience/estalign/intron"
)

// An IntronRecord is a confirmed intron with the number of reads that
// support it.
type IntronRecord struct {
	Target  string
	A1, A2  coords.Genomic
	Reverse bool
	Motif   string
	Gene    string
	Support int
}

// An IntronWriter writes the confirmed introns of genes as
// tab-separated lines: target, start, end (1-based, inclusive),
// strand, motif, supporting reads, and gene.
type IntronWriter struct {
	w *internal.Writer

	// Alter only exports introns that are not on the main branch of
	// their gene.
	Alter bool

	// NonSliding exports introns at their packed-left position.
	NonSliding bool
}

// NewIntronWriter returns an IntronWriter on top of w.
func NewIntronWriter(w io.Writer, alter, nonSliding bool) *IntronWriter {
	return &IntronWriter{w: internal.NewWriter(w), Alter: alter, NonSliding: nonSliding}
}

// Introns returns the confirmed intron records of g in genomic order.
// Introns without a known splice motif are exported with motif "-".
// With alter, introns of the main branch are left out.
func Introns(g *gene.Gene, alter, nonSliding bool) []IntronRecord {
	type key struct{ a1, a2 coords.Genomic }
	main := make(map[key]bool)
	if alter && len(g.Branches) > 0 {
		for _, in := range g.Branches[g.Main].Introns {
			main[key{in.Start, in.End}] = true
		}
	}
	records := make(map[key]*IntronRecord)
	var result []*IntronRecord
	for _, r := range g.Reads {
		for _, in := range r.Introns {
			if in.State != intron.Confirmed || main[key{in.A1, in.A2}] {
				continue
			}
			a1, a2 := in.A1, in.A2
			if nonSliding {
				a1, a2 = in.Packed[0], in.Packed[1]
			}
			k := key{a1, a2}
			rec := records[k]
			if rec == nil {
				rec = &IntronRecord{Target: g.Target, A1: a1, A2: a2, Reverse: g.Reverse, Motif: in.Motif, Gene: g.Name}
				records[k] = rec
				result = append(result, rec)
			}
			rec.Support++
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].A1 != result[j].A1 {
			return result[i].A1 < result[j].A1
		}
		return result[i].A2 < result[j].A2
	})
	out := make([]IntronRecord, len(result))
	for i, rec := range result {
		out[i] = *rec
	}
	return out
}

// Format appends the tab-separated line of rec to out.
func (rec *IntronRecord) Format(out []byte) []byte {
	out = append(append(out, rec.Target...), '\t')
	out = append(strconv.AppendInt(out, int64(rec.A1)+1, 10), '\t')
	out = append(strconv.AppendInt(out, int64(rec.A2)+1, 10), '\t')
	if rec.Reverse {
		out = append(out, "-\t"...)
	} else {
		out = append(out, "+\t"...)
	}
	if rec.Motif == "" {
		out = append(out, "-\t"...)
	} else {
		out = append(append(out, rec.Motif...), '\t')
	}
	out = append(strconv.AppendInt(out, int64(rec.Support), 10), '\t')
	return append(append(out, rec.Gene...), '\n')
}

// Emit writes the introns of g.
func (w *IntronWriter) Emit(g *gene.Gene) error {
	buf := internal.ReserveByteBuffer()
	defer func() { internal.ReleaseByteBuffer(buf) }()
	for _, rec := range Introns(g, w.Alter, w.NonSliding) {
		buf = rec.Format(buf[:0])
		w.w.Write(buf)
	}
	return nil
}

// Flush flushes the underlying writer and reports the first write
// error.
func (w *IntronWriter) Flush() error {
	return w.w.Err()
}
