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

package tracker

import "fmt"

// EditKind classifies an edit between the short and the long sequence.
type EditKind uint8

// Edit kinds. Insertions are bases present in the short sequence
// only, deletions are bases present in the long sequence only.
const (
	Substitution EditKind = iota
	Insertion
	Deletion
	DoubleInsertion
	DoubleDeletion
	Ambiguous
)

func (k EditKind) String() string {
	switch k {
	case Substitution:
		return "substitution"
	case Insertion:
		return "insertion"
	case Deletion:
		return "deletion"
	case DoubleInsertion:
		return "double-insertion"
	case DoubleDeletion:
		return "double-deletion"
	case Ambiguous:
		return "ambiguous"
	default:
		return fmt.Sprintf("EditKind(%d)", uint8(k))
	}
}

// A Jump resolves a mismatch by resuming the walk DShort bases further
// in the short sequence and DLong bases further in the long sequence.
// It is only taken when the next Lookahead bases after the jump match
// with at most Tolerance mismatches.
type Jump struct {
	DShort, DLong int
	Lookahead     int
	Tolerance     int
	Kind          EditKind
}

// A Table is a priority-ordered list of jumps. The first jump whose
// lookahead matches is taken.
type Table []Jump

// Bias selects a jump table.
type Bias uint8

// Biases toward the edit type that prior context makes likely.
const (
	Neutral Bias = iota
	InsertionBias
	DeletionBias
)

var (
	substitution    = Jump{DShort: 1, DLong: 1, Lookahead: 6, Kind: Substitution}
	insertion       = Jump{DShort: 1, DLong: 0, Lookahead: 8, Kind: Insertion}
	deletion        = Jump{DShort: 0, DLong: 1, Lookahead: 8, Kind: Deletion}
	doubleInsertion = Jump{DShort: 2, DLong: 0, Lookahead: 10, Kind: DoubleInsertion}
	doubleDeletion  = Jump{DShort: 0, DLong: 2, Lookahead: 10, Kind: DoubleDeletion}
	sloppy          = Jump{DShort: 1, DLong: 1, Lookahead: 5, Tolerance: 1, Kind: Substitution}
	forced          = Jump{DShort: 1, DLong: 1, Kind: Substitution}
)

// NeutralTable returns a fresh table that prefers substitutions, then
// single and double indels, and finally forces a substitution.
func NeutralTable() Table {
	return Table{substitution, insertion, deletion, doubleInsertion, doubleDeletion, sloppy, forced}
}

// InsertionTable returns a fresh table that tries insertions first.
func InsertionTable() Table {
	return Table{insertion, doubleInsertion, substitution, deletion, doubleDeletion, sloppy, forced}
}

// DeletionTable returns a fresh table that tries deletions first.
func DeletionTable() Table {
	return Table{deletion, doubleDeletion, substitution, insertion, doubleInsertion, sloppy, forced}
}

// TableFor returns a fresh table for the given bias.
func TableFor(bias Bias) Table {
	switch bias {
	case InsertionBias:
		return InsertionTable()
	case DeletionBias:
		return DeletionTable()
	default:
		return NeutralTable()
	}
}

// first returns the first jump accepted by ok.
func (t Table) first(ok func(Jump) bool) (Jump, bool) {
	for _, j := range t {
		if ok(j) {
			return j, true
		}
	}
	return Jump{}, false
}
