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

import "github.com/shenwei356/kmers"

// A Seq is a nucleotide sequence in upper-case IUPAC letters.
type Seq []byte

// NormalizeSeq converts a sequence in place to upper case with U
// replaced by T, and returns it.
func NormalizeSeq(s []byte) Seq {
	for i, b := range s {
		s[i] = Normalize(b)
	}
	return s
}

// ReverseComplement returns a freshly allocated reverse complement of
// the given sequence.
func ReverseComplement(s Seq) Seq {
	n := len(s)
	rc := make(Seq, n)
	for i, b := range s {
		rc[n-1-i] = Complement(b)
	}
	return rc
}

// Mismatches counts the positions in which a[i] and b[i] are not
// compatible, over the shorter of both slices.
func Mismatches(a, b []byte) (n int) {
	if len(b) < len(a) {
		a = a[:len(b)]
	}
	for i, x := range a {
		if !Compatible(x, b[i]) {
			n++
		}
	}
	return n
}

// Code returns the 2-bit code of an oligo. The result is not ok when
// the oligo contains bases outside A, C, G, T, or is longer than 32
// bases.
func Code(oligo []byte) (code uint64, ok bool) {
	for _, b := range oligo {
		if IsAmbiguous(b) {
			return 0, false
		}
	}
	code, err := kmers.Encode(oligo)
	return code, err == nil
}

// ReverseComplementCode returns the code of the reverse complement of
// the oligo with the given code and length.
func ReverseComplementCode(code uint64, k int) (rc uint64) {
	for i := 0; i < k; i++ {
		rc = (rc << 2) | (3 - code&3)
		code >>= 2
	}
	return rc
}
