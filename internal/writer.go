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

import "bufio"

// A Writer is a buffered writer that remembers the first error and the
// number of bytes written so far. Write calls after an error are
// ignored, so that callers only need to check Err once.
type Writer struct {
	w      *bufio.Writer
	offset int
	err    error
}

// NewWriter returns a Writer on top of the given writer.
func NewWriter(w interface{ Write([]byte) (int, error) }) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes b.
func (w *Writer) Write(b []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(b)
	w.offset += n
	w.err = err
}

// WriteString writes s.
func (w *Writer) WriteString(s string) {
	if w.err != nil {
		return
	}
	n, err := w.w.WriteString(s)
	w.offset += n
	w.err = err
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int {
	return w.offset
}

// Err flushes the buffer and returns the first error encountered.
func (w *Writer) Err() error {
	if w.err == nil {
		w.err = w.w.Flush()
	}
	return w.err
}
