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

// Package emit writes assembled gene models.
package emit

import "github.com/exascience/estalign/gene"

// An Emitter receives the genes of a run, target by target in target
// order, and genes in genomic order within a target.
type Emitter interface {
	Emit(g *gene.Gene) error
	Flush() error
}

// A Collector keeps all genes in memory.
type Collector struct {
	Genes []*gene.Gene
}

// Emit appends g to the collected genes.
func (c *Collector) Emit(g *gene.Gene) error {
	c.Genes = append(c.Genes, g)
	return nil
}

// Flush does nothing.
func (c *Collector) Flush() error {
	return nil
}

// Multi sends every gene to all emitters.
type Multi []Emitter

// Emit sends g to all emitters, and stops at the first error.
func (m Multi) Emit(g *gene.Gene) error {
	for _, e := range m {
		if err := e.Emit(g); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes all emitters, and returns the first error.
func (m Multi) Flush() (err error) {
	for _, e := range m {
		if nerr := e.Flush(); err == nil {
			err = nerr
		}
	}
	return err
}
