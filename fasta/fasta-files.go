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

// Package fasta reads FASTA files of reads and genomic targets, and
// stores genomic targets in mmappable .elfasta files.
package fasta

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/exascience/estalign/dna"
	"github.com/exascience/estalign/internal"
	"github.com/exascience/estalign/utils"
)

// Fasta is the parsed content of a FASTA file. Names lists the
// sequence names in file order.
type Fasta struct {
	Names []string
	Seqs  map[string]dna.Seq
}

func contigFromHeader(b []byte) string {
	i := 1
	for ; i < len(b); i++ {
		if c := b[i]; c >= '!' && c <= '~' {
			break
		}
	}
	j := i + 1
	for ; j < len(b); j++ {
		if c := b[j]; c < '!' || c > '~' {
			break
		}
	}
	if i >= len(b) {
		return ""
	}
	return string(b[i:j])
}

// Parse sequentially parses FASTA content. Bases are converted to
// upper case, and U is converted to T.
func Parse(r io.Reader) (*Fasta, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<30)
	result := &Fasta{Seqs: make(map[string]dna.Seq)}
	var contig string
	var seq []byte
	flush := func() error {
		if contig == "" {
			return nil
		}
		if _, dup := result.Seqs[contig]; dup {
			return fmt.Errorf("duplicate fasta entry %v", contig)
		}
		result.Names = append(result.Names, contig)
		result.Seqs[contig] = dna.NormalizeSeq(seq)
		return nil
	}
	for scanner.Scan() {
		b := scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		if b[0] == '>' {
			if err := flush(); err != nil {
				return nil, err
			}
			contig = contigFromHeader(b)
			if contig == "" {
				return nil, errors.New("invalid fasta file - empty header")
			}
			seq = nil
			continue
		}
		if contig == "" {
			return nil, errors.New("invalid fasta file - missing first header")
		}
		seq = append(seq, b...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return result, nil
}

// ParseFile parses a FASTA file, which may be gzip compressed.
func ParseFile(filename string) (result *Fasta, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer internal.Close(f, &err)
	in, err := utils.HandleGzip(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w, while opening fasta file %v", err, filename)
	}
	result, err = Parse(in)
	if err != nil {
		return nil, fmt.Errorf("%w, while parsing fasta file %v", err, filename)
	}
	return result, nil
}

type offsetTableEntry struct {
	contig string
	offset int
}

// ElfastaMagic is the magic byte sequence that every .elfasta file starts with.
var ElfastaMagic = []byte{0x31, 0xFA, 0x57, 0xA1} // 31FA57A1 => ELFASTA1

// IsElfasta reports whether the given file starts with ElfastaMagic.
func IsElfasta(filename string) (ok bool, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return false, err
	}
	defer internal.Close(f, &err)
	magic := make([]byte, len(ElfastaMagic))
	if _, err := io.ReadFull(f, magic); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, err
	}
	for i, b := range ElfastaMagic {
		if magic[i] != b {
			return false, nil
		}
	}
	return true, nil
}

// ToElfasta stores fasta data into an mmappable .elfasta file.
func ToElfasta(fasta *Fasta, filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer internal.Close(file, &err)
	names := append([]string(nil), fasta.Names...)
	sort.Strings(names)
	w := internal.NewWriter(file)
	w.Write(ElfastaMagic)
	var offsetTable []offsetTableEntry
	for _, contig := range names {
		w.WriteString(contig)
		w.WriteString("\t")
		offsetTable = append(offsetTable, offsetTableEntry{contig: contig, offset: w.Offset()})
		w.Write(make([]byte, 2*binary.MaxVarintLen64))
	}
	w.WriteString("\n")
	offsetMap := make(map[string]int)
	for _, contig := range names {
		offsetMap[contig] = w.Offset()
		w.Write(fasta.Seqs[contig])
	}
	if err = w.Err(); err != nil {
		return err
	}
	size := w.Offset()
	if size == 0 {
		return nil
	}
	data, err := unix.Mmap(int(file.Fd()), 0, size, unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return err
	}
	for _, entry := range offsetTable {
		binary.PutVarint(data[entry.offset:entry.offset+binary.MaxVarintLen64], int64(offsetMap[entry.contig]))
		binary.PutVarint(data[entry.offset+binary.MaxVarintLen64:entry.offset+2*binary.MaxVarintLen64], int64(len(fasta.Seqs[entry.contig])))
	}
	return unix.Munmap(data)
}

// MappedFasta represents the contents of an .elfasta file.
type MappedFasta struct {
	wait  sync.WaitGroup
	err   error
	names []string
	fasta map[string][]byte
	data  []byte
	file  *os.File
}

// OpenElfasta opens a .elfasta file. The file is mapped in the
// background. Errors are reported by Names, Seq, and Close.
func OpenElfasta(filename string) (result *MappedFasta) {
	result = new(MappedFasta)
	result.wait.Add(1)
	go func() {
		defer result.wait.Done()
		result.err = result.open(filename)
	}()
	return result
}

func (fasta *MappedFasta) open(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return err
	}
	data, err := unix.Mmap(int(file.Fd()), 0, int(stat.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		_ = file.Close()
		return err
	}
	fail := func(format string, v ...interface{}) error {
		_ = unix.Munmap(data)
		_ = file.Close()
		return fmt.Errorf(format, v...)
	}
	if len(data) <= len(ElfastaMagic) {
		return fail("%v is not a .elfasta file - too short", filename)
	}
	for i, b := range ElfastaMagic {
		if data[i] != b {
			return fail("%v is not a .elfasta file - invalid magic byte sequence", filename)
		}
	}
	seqs := make(map[string][]byte)
	var names []string
	index := len(ElfastaMagic)
	for index < len(data) && data[index] != '\n' {
		start := index
		for ; index < len(data) && data[index] != '\t'; index++ {
		}
		if index+2*binary.MaxVarintLen64 >= len(data) {
			return fail("truncated offset table in elfasta file %v", filename)
		}
		contig := string(data[start:index])
		index++
		offset, n := binary.Varint(data[index : index+binary.MaxVarintLen64])
		if n <= 0 {
			return fail("bad number of bytes while parsing offset in elfasta file %v", filename)
		}
		size, n := binary.Varint(data[index+binary.MaxVarintLen64 : index+2*binary.MaxVarintLen64])
		if n <= 0 {
			return fail("bad number of bytes while parsing size in elfasta file %v", filename)
		}
		if offset+size > int64(len(data)) {
			return fail("sequence %v out of bounds in elfasta file %v", contig, filename)
		}
		seqs[contig] = data[int(offset):int(offset+size)]
		names = append(names, contig)
		index += 2 * binary.MaxVarintLen64
	}
	fasta.names = names
	fasta.fasta = seqs
	fasta.data = data
	fasta.file = file
	return nil
}

// Close closes the .elfasta file.
func (fasta *MappedFasta) Close() error {
	fasta.wait.Wait()
	if fasta.err != nil {
		return fasta.err
	}
	err := unix.Munmap(fasta.data)
	fasta.data = nil
	if nerr := fasta.file.Close(); err == nil {
		err = nerr
	}
	fasta.file = nil
	fasta.fasta = nil
	return err
}

// Names returns the sequence names in the .elfasta file, sorted.
func (fasta *MappedFasta) Names() ([]string, error) {
	fasta.wait.Wait()
	return fasta.names, fasta.err
}

// Seq fetches a sequence for the given contig from the .elfasta
// file. The result is read-only.
func (fasta *MappedFasta) Seq(contig string) (dna.Seq, bool, error) {
	fasta.wait.Wait()
	if fasta.err != nil {
		return nil, false, fasta.err
	}
	seq, ok := fasta.fasta[contig]
	return seq, ok, nil
}
