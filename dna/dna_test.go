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

package dna

import "testing"

func TestCompatible(t *testing.T) {
	if !Compatible('A', 'a') {
		t.Error("Compatible case failed")
	}
	if !Compatible('N', 'G') || !Compatible('R', 'A') || !Compatible('Y', 'T') {
		t.Error("Compatible ambiguity failed")
	}
	if Compatible('R', 'C') {
		t.Error("Compatible R/C failed")
	}
	if Compatible('-', 'A') || Compatible('-', '-') {
		t.Error("Compatible gap failed")
	}
	if IsAmbiguous('A') || !IsAmbiguous('N') || !IsAmbiguous('-') {
		t.Error("IsAmbiguous failed")
	}
}

func TestReverseComplement(t *testing.T) {
	if string(ReverseComplement(Seq("GATTACA"))) != "TGTAATC" {
		t.Error("ReverseComplement 1 failed")
	}
	if string(ReverseComplement(Seq("ACGRN"))) != "NYCGT" {
		t.Error("ReverseComplement 2 failed")
	}
	if string(NormalizeSeq([]byte("acgu"))) != "ACGT" {
		t.Error("NormalizeSeq failed")
	}
}

func TestCode(t *testing.T) {
	oligo := []byte("ACGTTGCAAC")
	code, ok := Code(oligo)
	if !ok {
		t.Fatal("Code failed")
	}
	rc, ok := Code(ReverseComplement(oligo))
	if !ok {
		t.Fatal("Code of reverse complement failed")
	}
	if ReverseComplementCode(code, len(oligo)) != rc {
		t.Error("ReverseComplementCode failed")
	}
	if _, ok := Code([]byte("ACGNA")); ok {
		t.Error("Code with ambiguity failed")
	}
	if Mismatches([]byte("ACGT"), []byte("ACNA")) != 1 {
		t.Error("Mismatches failed")
	}
}
