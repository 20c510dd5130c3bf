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

// Package dna implements the nucleotide alphabet used throughout
// estalign: IUPAC ambiguity masks, complements, and the 2-bit oligo
// codes used by the k-mer index.
package dna

// Base masks. Ambiguity codes are bitwise unions of these.
const (
	MaskA = 1
	MaskC = 2
	MaskG = 4
	MaskT = 8
)

// Gap is the alignment gap symbol. It matches nothing.
const Gap = '-'

var (
	maskTable       [256]byte
	complementTable [256]byte
	upperTable      [256]byte
)

func setBase(upper byte, mask byte, complement byte) {
	lower := upper + ('a' - 'A')
	maskTable[upper], maskTable[lower] = mask, mask
	complementTable[upper], complementTable[lower] = complement, complement
	upperTable[upper], upperTable[lower] = upper, upper
}

func init() {
	for i := range upperTable {
		upperTable[i] = byte(i)
		complementTable[i] = byte(i)
	}
	setBase('A', MaskA, 'T')
	setBase('C', MaskC, 'G')
	setBase('G', MaskG, 'C')
	setBase('T', MaskT, 'A')
	setBase('U', MaskT, 'A')
	setBase('R', MaskA|MaskG, 'Y')
	setBase('Y', MaskC|MaskT, 'R')
	setBase('S', MaskC|MaskG, 'S')
	setBase('W', MaskA|MaskT, 'W')
	setBase('K', MaskG|MaskT, 'M')
	setBase('M', MaskA|MaskC, 'K')
	setBase('B', MaskC|MaskG|MaskT, 'V')
	setBase('D', MaskA|MaskG|MaskT, 'H')
	setBase('H', MaskA|MaskC|MaskT, 'D')
	setBase('V', MaskA|MaskC|MaskG, 'B')
	setBase('N', MaskA|MaskC|MaskG|MaskT, 'N')
	upperTable['U'], upperTable['u'] = 'T', 'T'
}

// Mask returns the 4-bit IUPAC mask of a base, or 0 for gaps and
// unknown symbols.
func Mask(base byte) byte {
	return maskTable[base]
}

// Compatible reports whether two bases can denote the same
// nucleotide under IUPAC ambiguity rules.
func Compatible(a, b byte) bool {
	return maskTable[a]&maskTable[b] != 0
}

// IsAmbiguous reports whether a base does not denote exactly one
// nucleotide. Gaps and unknown symbols are ambiguous.
func IsAmbiguous(base byte) bool {
	switch maskTable[base] {
	case MaskA, MaskC, MaskG, MaskT:
		return false
	default:
		return true
	}
}

// Complement returns the IUPAC complement of a base. Unknown symbols
// are returned unchanged.
func Complement(base byte) byte {
	return complementTable[base]
}

// Normalize converts a base to upper case and U to T.
func Normalize(base byte) byte {
	return upperTable[base]
}
