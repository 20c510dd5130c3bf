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

// Package store defines how the aligner obtains read and target
// sequences together with their per-read annotations, and provides an
// in-memory store, a file-backed store, and a caching wrapper.
//
// All lookups are pure. Absence of optional data, such as a polyA
// site, is reported with ok == false and is not an error. Failures to
// reach the data are reported as *Error values.
package store

import (
	"errors"
	"fmt"

	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/dna"
)

// ErrNotFound is wrapped by an *Error when an identifier is unknown.
var ErrNotFound = errors.New("not found")

// An Error reports a failed store operation on an identifier.
type Error struct {
	Op  string
	ID  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v, while looking up %v of %v", e.Err, e.Op, e.ID)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func notFound(op, id string) error {
	return &Error{Op: op, ID: id, Err: ErrNotFound}
}

// A Motif is a named sequence feature at a position of a read, given
// in the original read frame.
type Motif struct {
	Name string
	Pos  coords.Read
}

// A Store supplies reads, targets, and per-read annotations. All read
// positions are 0-based and refer to the read as stored, not to its
// reverse complement.
type Store interface {
	// Sequence returns the bases of a read.
	Sequence(id string) (seq dna.Seq, ok bool, err error)

	// ClipBounds returns the inclusive usable region of a read. Reads
	// without vector clipping are usable over their whole length.
	ClipBounds(id string) (start, end coords.Read, err error)

	// PolyAPosition returns the first base of the polyA tail of a read.
	PolyAPosition(id string) (pos coords.Read, ok bool, err error)

	// TransSpliceSite returns the trans-splice leader found on a read.
	TransSpliceSite(id string) (motif Motif, ok bool, err error)

	// CloneGroup returns the clone a read was sequenced from. Reads
	// without clone information form a clone of their own.
	CloneGroup(id string) (clone string, err error)

	// ThreePrime reports whether a read was sequenced from the 3' end
	// of its clone.
	ThreePrime(id string) (bool, error)

	// Reads returns the identifiers of all reads.
	Reads() ([]string, error)

	// Targets returns the identifiers of all genomic targets.
	Targets() ([]string, error)

	// Target returns the forward strand of a genomic target.
	Target(id string) (seq dna.Seq, ok bool, err error)
}
