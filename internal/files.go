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

package internal

import (
	"io"
	"os"
)

// Close closes c, and stores the resulting error in err unless err
// already holds an earlier error. Use it in deferred calls.
func Close(c io.Closer, err *error) {
	if nerr := c.Close(); *err == nil {
		*err = nerr
	}
}

// Create creates a file, or returns os.Stdout for "-" or "/dev/stdout".
// The returned closer does not close os.Stdout.
func Create(filename string) (io.WriteCloser, error) {
	switch filename {
	case "", "-", "/dev/stdout":
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(filename)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
