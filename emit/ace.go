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
	"strconv"

	"github.com/exascience/estalign/gene"
	"github.com/exascience/estalign/internal"
)

// An AceWriter writes genes as Transcribed_gene records. Positions are
// 1-based and inclusive.
type AceWriter struct {
	w *internal.Writer
}

// NewAceWriter returns an AceWriter on top of w.
func NewAceWriter(w io.Writer) *AceWriter {
	return &AceWriter{w: internal.NewWriter(w)}
}

func appendQuoted(out []byte, s string) []byte {
	return append(strconv.AppendQuote(out, s), '\n')
}

func appendPair(out []byte, a, b int) []byte {
	out = append(strconv.AppendInt(out, int64(a)+1, 10), ' ')
	return strconv.AppendInt(out, int64(b)+1, 10)
}

func appendCount(out []byte, tag string, n int) []byte {
	out = append(append(out, tag...), ' ')
	return append(strconv.AppendInt(out, int64(n), 10), '\n')
}

// FormatGene appends the ace record of g to out.
func FormatGene(out []byte, g *gene.Gene) []byte {
	out = appendQuoted(append(out, "Transcribed_gene : "...), g.Name)
	out = appendQuoted(append(out, "Model_id "...), g.ID.String())
	out = appendQuoted(append(out, "Genomic_sequence "...), g.Target)
	if g.Reverse {
		out = append(out, "Strand Reverse\n"...)
	} else {
		out = append(out, "Strand Forward\n"...)
	}
	out = append(appendPair(append(out, "Covers "...), int(g.A1), int(g.A2)), '\n')
	for i := range g.Segments {
		s := &g.Segments[i]
		out = appendPair(append(out, "Splicing "...), int(s.A1), int(s.A2))
		out = append(append(out, ' '), s.Kind.String()...)
		if !s.Kind.IsIntron() {
			out = appendPair(append(out, ' '), int(s.MRNA1), int(s.MRNA2))
		}
		if s.Confirmed {
			out = append(out, " Confirmed"...)
		}
		out = append(out, '\n')
	}
	for _, a := range g.AssembledFrom {
		out = appendPair(append(out, "Assembled_from "...), int(a.A1), int(a.A2))
		out = strconv.AppendQuote(append(out, ' '), a.Read)
		out = append(appendPair(append(out, ' '), int(a.X1), int(a.X2)), '\n')
	}
	out = appendCount(out, "Possible_exons", g.Summary.Exons)
	out = appendCount(out, "Alternative_exons", g.Summary.AlternativeExons)
	out = appendCount(out, "Confirmed_introns", g.Summary.Introns)
	out = appendCount(out, "Alternative_confirmed_introns", g.Summary.AlternativeIntrons)
	out = appendCount(out, "Total_gap_length", g.Summary.GapLength)
	for _, motif := range g.TransplicedTo {
		out = appendQuoted(append(out, "Transpliced_to "...), motif)
	}
	if g.BeginConfirmed {
		out = append(out, "Begin_confirmed\n"...)
	}
	if g.EndConfirmed {
		out = append(out, "End_confirmed\nPolyA\n"...)
	}
	return append(out, '\n')
}

// Emit writes the record of g.
func (w *AceWriter) Emit(g *gene.Gene) error {
	buf := internal.ReserveByteBuffer()
	defer func() { internal.ReleaseByteBuffer(buf) }()
	buf = FormatGene(buf, g)
	w.w.Write(buf)
	return nil
}

// Flush flushes the underlying writer and reports the first write
// error.
func (w *AceWriter) Flush() error {
	return w.w.Err()
}
