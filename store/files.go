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

package store

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/exascience/pargo/pipeline"
	"github.com/grailbio/base/log"

	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/dna"
	"github.com/exascience/estalign/fasta"
	"github.com/exascience/estalign/internal"
	"github.com/exascience/estalign/utils"
)

// Files is a Store backed by a FASTA file of reads, an optional
// metadata file, and a genome in FASTA or .elfasta format.
//
// The metadata file is tab separated, one read per line, with the
// columns read, clone, clip start, clip end, polyA site,
// trans-splice leader, and end ("5" or "3"). Positions are 1-based and
// inclusive. A trans-splice leader is written as name:position. A "-"
// marks a missing value. Lines starting with # are comments.
type Files struct {
	*Memory
	mapped *fasta.MappedFasta
}

// A metadata record parsed from one line of a metadata file.
type metadata struct {
	read, clone        string
	clipStart, clipEnd coords.Read
	hasClip            bool
	polyA              coords.Read
	hasPolyA           bool
	transSplice        Motif
	hasTransSplice     bool
	threePrime         bool
}

func parsePosition(field string) (pos coords.Read, ok bool, err error) {
	if field == "-" || field == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(field, 10, 32)
	if err != nil {
		return 0, false, err
	}
	if n < 1 {
		return 0, false, fmt.Errorf("invalid 1-based position %v", n)
	}
	return coords.Read(n - 1), true, nil
}

func parseMetadata(line string) (m metadata, err error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 7 {
		return m, fmt.Errorf("expected 7 fields, got %v", len(fields))
	}
	m.read = fields[0]
	if fields[1] != "-" {
		m.clone = fields[1]
	}
	start, okStart, err := parsePosition(fields[2])
	if err != nil {
		return m, err
	}
	end, okEnd, err := parsePosition(fields[3])
	if err != nil {
		return m, err
	}
	if okStart != okEnd {
		return m, fmt.Errorf("incomplete clip bounds %v %v", fields[2], fields[3])
	}
	if okStart && end < start {
		return m, fmt.Errorf("empty clip bounds %v %v", fields[2], fields[3])
	}
	m.clipStart, m.clipEnd, m.hasClip = start, end, okStart
	if m.polyA, m.hasPolyA, err = parsePosition(fields[4]); err != nil {
		return m, err
	}
	if fields[5] != "-" {
		colon := strings.LastIndexByte(fields[5], ':')
		if colon <= 0 {
			return m, fmt.Errorf("invalid trans-splice leader %v", fields[5])
		}
		pos, ok, err := parsePosition(fields[5][colon+1:])
		if err != nil {
			return m, err
		}
		if !ok {
			return m, fmt.Errorf("missing trans-splice position in %v", fields[5])
		}
		m.transSplice, m.hasTransSplice = Motif{Name: fields[5][:colon], Pos: pos}, true
	}
	switch fields[6] {
	case "3":
		m.threePrime = true
	case "5", "-":
	default:
		return m, fmt.Errorf("invalid read end %v", fields[6])
	}
	return m, nil
}

func (m *Memory) apply(meta metadata) error {
	if err := m.SetClone(meta.read, meta.clone); err != nil {
		return err
	}
	if meta.hasClip {
		if err := m.SetClipBounds(meta.read, meta.clipStart, meta.clipEnd); err != nil {
			return err
		}
	}
	if meta.hasPolyA {
		if err := m.SetPolyA(meta.read, meta.polyA); err != nil {
			return err
		}
	}
	if meta.hasTransSplice {
		if err := m.SetTransSplice(meta.read, meta.transSplice); err != nil {
			return err
		}
	}
	return m.SetThreePrime(meta.read, meta.threePrime)
}

func readLines(filename string) (lines []string, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer internal.Close(f, &err)
	in, err := utils.HandleGzip(bufio.NewReader(f))
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" && line[0] != '#' {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// LoadMetadata parses a metadata file and applies it to the reads of
// the store. Lines are parsed in parallel and applied in file order.
func (m *Memory) LoadMetadata(filename string) error {
	lines, err := readLines(filename)
	if err != nil {
		return fmt.Errorf("%w, while reading metadata file %v", err, filename)
	}
	var p pipeline.Pipeline
	p.Source(lines)
	p.Add(
		pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
			batch := data.([]string)
			records := make([]metadata, 0, len(batch))
			for _, line := range batch {
				meta, err := parseMetadata(line)
				if err != nil {
					p.SetErr(fmt.Errorf("%w, while parsing metadata line %q", err, line))
					return records
				}
				records = append(records, meta)
			}
			return records
		})),
		pipeline.StrictOrd(pipeline.Receive(func(_ int, data interface{}) interface{} {
			for _, meta := range data.([]metadata) {
				if err := m.apply(meta); err != nil {
					p.SetErr(err)
					break
				}
			}
			return data
		})),
	)
	p.Run()
	if err := p.Err(); err != nil {
		return fmt.Errorf("%w, while loading metadata file %v", err, filename)
	}
	return nil
}

// OpenFiles loads reads, optional metadata, and a genome. An .elfasta
// genome is memory mapped, any other genome is parsed as FASTA.
func OpenFiles(readsFile, metadataFile, genomeFile string) (*Files, error) {
	reads, err := fasta.ParseFile(readsFile)
	if err != nil {
		return nil, err
	}
	files := &Files{Memory: NewMemory()}
	for _, id := range reads.Names {
		files.AddRead(id, reads.Seqs[id])
	}
	if metadataFile != "" {
		if err := files.LoadMetadata(metadataFile); err != nil {
			return nil, err
		}
	}
	isElfasta, err := fasta.IsElfasta(genomeFile)
	if err != nil {
		return nil, err
	}
	if isElfasta {
		files.mapped = fasta.OpenElfasta(genomeFile)
	} else {
		genome, err := fasta.ParseFile(genomeFile)
		if err != nil {
			return nil, err
		}
		for _, id := range genome.Names {
			files.AddTarget(id, genome.Seqs[id])
		}
	}
	log.Debug.Printf("Loaded %v reads from %v.", len(reads.Names), readsFile)
	return files, nil
}

// Targets implements Store.
func (f *Files) Targets() ([]string, error) {
	if f.mapped == nil {
		return f.Memory.Targets()
	}
	names, err := f.mapped.Names()
	if err != nil {
		return nil, &Error{Op: "targets", ID: "genome", Err: err}
	}
	return append([]string(nil), names...), nil
}

// Target implements Store. Mapped targets are read-only.
func (f *Files) Target(id string) (dna.Seq, bool, error) {
	if f.mapped == nil {
		return f.Memory.Target(id)
	}
	seq, ok, err := f.mapped.Seq(id)
	if err != nil {
		return nil, false, &Error{Op: "target", ID: id, Err: err}
	}
	return seq, ok, nil
}

// Close releases a mapped genome.
func (f *Files) Close() error {
	if f.mapped == nil {
		return nil
	}
	return f.mapped.Close()
}
