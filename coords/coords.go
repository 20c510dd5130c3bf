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

// Package coords defines the coordinate spaces used by the aligner.
//
// All coordinates are 0-based. Genomic coordinates always refer to the
// forward strand of the target. Read coordinates refer to the oriented
// read, which is the read itself for forward hits and its reverse
// complement for reverse hits. MRNA coordinates are offsets into an
// assembled transcript, counted from its 5' end.
//
// Conversions between these spaces are explicit functions, so that a
// value of one space cannot silently be used as another.
package coords

// Genomic is a position on the forward strand of a genomic target.
type Genomic int32

// Read is a position in an oriented read.
type Read int32

// MRNA is an offset into an assembled transcript.
type MRNA int32

// Flip converts between the original and the reverse complemented
// frame of a read of the given length.
func (x Read) Flip(length int) Read {
	return Read(length-1) - x
}

// Flip converts between the forward and the reverse strand of a target
// of the given length.
func (a Genomic) Flip(length int) Genomic {
	return Genomic(length-1) - a
}

// Diagonal returns the offset between a genomic and a read position
// that are aligned to each other.
func Diagonal(a Genomic, x Read) int {
	return int(a) - int(x)
}

// OnDiagonal returns the genomic position aligned to x on diagonal d.
func OnDiagonal(x Read, d int) Genomic {
	return Genomic(int(x) + d)
}

// ReadOnDiagonal returns the read position aligned to a on diagonal d.
func ReadOnDiagonal(a Genomic, d int) Read {
	return Read(int(a) - d)
}

// ToMRNA converts a genomic position inside an exon into an mRNA
// offset, given the genomic position and mRNA offset of the exon's 5'
// end. On the reverse strand mRNA offsets grow as genomic positions
// decrease.
func ToMRNA(a, exon5 Genomic, offset5 MRNA, reverse bool) MRNA {
	if reverse {
		return offset5 + MRNA(exon5-a)
	}
	return offset5 + MRNA(a-exon5)
}

// Length returns the number of positions in the inclusive interval
// [a1, a2].
func Length(a1, a2 Genomic) int {
	return int(a2-a1) + 1
}

// ReadLength returns the number of positions in the inclusive interval
// [x1, x2].
func ReadLength(x1, x2 Read) int {
	return int(x2-x1) + 1
}

// MinGenomic returns the smaller of two genomic positions.
func MinGenomic(a, b Genomic) Genomic {
	if a < b {
		return a
	}
	return b
}

// MaxGenomic returns the larger of two genomic positions.
func MaxGenomic(a, b Genomic) Genomic {
	if a > b {
		return a
	}
	return b
}

// MinRead returns the smaller of two read positions.
func MinRead(a, b Read) Read {
	if a < b {
		return a
	}
	return b
}

// MaxRead returns the larger of two read positions.
func MaxRead(a, b Read) Read {
	if a > b {
		return a
	}
	return b
}
