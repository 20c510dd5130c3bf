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
	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/dna"
)

type readEntry struct {
	seq            dna.Seq
	clone          string
	clipSet        bool
	clipStart      coords.Read
	clipEnd        coords.Read
	polyA          coords.Read
	hasPolyA       bool
	transSplice    Motif
	hasTransSplice bool
	threePrime     bool
}

// Memory is a Store that keeps everything in memory. It must be fully
// populated before it is read concurrently.
type Memory struct {
	readIDs   []string
	reads     map[string]*readEntry
	targetIDs []string
	targets   map[string]dna.Seq
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		reads:   make(map[string]*readEntry),
		targets: make(map[string]dna.Seq),
	}
}

// AddRead adds or replaces a read. The sequence is normalized in place.
func (m *Memory) AddRead(id string, seq dna.Seq) {
	if entry, ok := m.reads[id]; ok {
		entry.seq = dna.NormalizeSeq(seq)
		return
	}
	m.readIDs = append(m.readIDs, id)
	m.reads[id] = &readEntry{seq: dna.NormalizeSeq(seq)}
}

// AddTarget adds or replaces a genomic target. The sequence is
// normalized in place.
func (m *Memory) AddTarget(id string, seq dna.Seq) {
	if _, ok := m.targets[id]; !ok {
		m.targetIDs = append(m.targetIDs, id)
	}
	m.targets[id] = dna.NormalizeSeq(seq)
}

func (m *Memory) entry(op, id string) (*readEntry, error) {
	if entry, ok := m.reads[id]; ok {
		return entry, nil
	}
	return nil, notFound(op, id)
}

// SetClone records the clone of a read.
func (m *Memory) SetClone(id, clone string) error {
	entry, err := m.entry("clone", id)
	if err == nil {
		entry.clone = clone
	}
	return err
}

// SetClipBounds records the inclusive usable region of a read.
func (m *Memory) SetClipBounds(id string, start, end coords.Read) error {
	entry, err := m.entry("clip bounds", id)
	if err == nil {
		entry.clipSet, entry.clipStart, entry.clipEnd = true, start, end
	}
	return err
}

// SetPolyA records the polyA site of a read.
func (m *Memory) SetPolyA(id string, pos coords.Read) error {
	entry, err := m.entry("polyA", id)
	if err == nil {
		entry.hasPolyA, entry.polyA = true, pos
	}
	return err
}

// SetTransSplice records the trans-splice leader of a read.
func (m *Memory) SetTransSplice(id string, motif Motif) error {
	entry, err := m.entry("trans-splice site", id)
	if err == nil {
		entry.hasTransSplice, entry.transSplice = true, motif
	}
	return err
}

// SetThreePrime records whether a read is a 3' read.
func (m *Memory) SetThreePrime(id string, threePrime bool) error {
	entry, err := m.entry("orientation", id)
	if err == nil {
		entry.threePrime = threePrime
	}
	return err
}

// Sequence implements Store.
func (m *Memory) Sequence(id string) (dna.Seq, bool, error) {
	if entry, ok := m.reads[id]; ok {
		return entry.seq, true, nil
	}
	return nil, false, nil
}

// ClipBounds implements Store. Recorded bounds are clamped to the read.
func (m *Memory) ClipBounds(id string) (start, end coords.Read, err error) {
	entry, err := m.entry("clip bounds", id)
	if err != nil {
		return 0, 0, err
	}
	last := coords.Read(len(entry.seq) - 1)
	if !entry.clipSet {
		return 0, last, nil
	}
	return coords.MaxRead(entry.clipStart, 0), coords.MinRead(entry.clipEnd, last), nil
}

// PolyAPosition implements Store.
func (m *Memory) PolyAPosition(id string) (coords.Read, bool, error) {
	entry, err := m.entry("polyA", id)
	if err != nil {
		return 0, false, err
	}
	return entry.polyA, entry.hasPolyA, nil
}

// TransSpliceSite implements Store.
func (m *Memory) TransSpliceSite(id string) (Motif, bool, error) {
	entry, err := m.entry("trans-splice site", id)
	if err != nil {
		return Motif{}, false, err
	}
	return entry.transSplice, entry.hasTransSplice, nil
}

// CloneGroup implements Store.
func (m *Memory) CloneGroup(id string) (string, error) {
	entry, err := m.entry("clone", id)
	if err != nil {
		return "", err
	}
	if entry.clone == "" {
		return id, nil
	}
	return entry.clone, nil
}

// ThreePrime implements Store.
func (m *Memory) ThreePrime(id string) (bool, error) {
	entry, err := m.entry("orientation", id)
	if err != nil {
		return false, err
	}
	return entry.threePrime, nil
}

// Reads implements Store. Reads are returned in insertion order.
func (m *Memory) Reads() ([]string, error) {
	return append([]string(nil), m.readIDs...), nil
}

// Targets implements Store. Targets are returned in insertion order.
func (m *Memory) Targets() ([]string, error) {
	return append([]string(nil), m.targetIDs...), nil
}

// Target implements Store.
func (m *Memory) Target(id string) (dna.Seq, bool, error) {
	seq, ok := m.targets[id]
	return seq, ok, nil
}
