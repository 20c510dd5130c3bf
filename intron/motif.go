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

package intron

import "github.com/exascience/estalign/dna"

// A Motif is a pair of splice site dinucleotides, as read on the
// transcript strand.
type Motif struct {
	Name     string
	Donor    string
	Acceptor string
}

// Motifs returns a fresh list of splice motifs in priority order: the
// canonical GT-AG, the GC-AG variant, and the U12-type AT-AC.
func Motifs() []Motif {
	return []Motif{
		{Name: "GT-AG", Donor: "GT", Acceptor: "AG"},
		{Name: "GC-AG", Donor: "GC", Acceptor: "AG"},
		{Name: "AT-AC", Donor: "AT", Acceptor: "AC"},
	}
}

func reverseComplement(s string) string {
	return string(dna.ReverseComplement(dna.Seq(s)))
}

// genomic returns the dinucleotides expected at the start and the end
// of the intron on the forward genomic strand.
func (m Motif) genomic(reverse bool) (start, end string) {
	if reverse {
		return reverseComplement(m.Acceptor), reverseComplement(m.Donor)
	}
	return m.Donor, m.Acceptor
}

// matches reports whether the genomic intron [a1, a2] carries the motif.
func (m Motif) matches(genome dna.Seq, a1, a2 int, reverse bool) bool {
	if a1 < 0 || a2 >= len(genome) || a2-a1 < 3 {
		return false
	}
	start, end := m.genomic(reverse)
	return string(genome[a1:a1+2]) == start && string(genome[a2-1:a2+1]) == end
}
