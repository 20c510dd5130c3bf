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
	"sync"

	psync "github.com/exascience/pargo/sync"

	"github.com/exascience/estalign/coords"
	"github.com/exascience/estalign/dna"
	"github.com/exascience/estalign/internal"
)

const (
	readTag uint8 = iota
	targetTag
)

type cacheKey struct {
	tag uint8
	id  string
}

func (k cacheKey) Hash() uint64 {
	return internal.KeyHash(k.tag, k.id)
}

type cachedRead struct {
	seq            dna.Seq
	clipStart      coords.Read
	clipEnd        coords.Read
	polyA          coords.Read
	hasPolyA       bool
	transSplice    Motif
	hasTransSplice bool
	clone          string
	threePrime     bool
}

type cachedTarget struct {
	seq dna.Seq
	ok  bool
}

// Cached is a Store that remembers the reads and targets fetched from
// another Store. A read is fetched from the underlying store with all
// its annotations at once. Failed lookups are not cached.
//
// It is safe for multiple goroutines to use a Cached store
// concurrently.
type Cached struct {
	store Store
	mutex sync.RWMutex
	cache *psync.Map
}

// NewCached returns a Cached store on top of the given store.
func NewCached(store Store) *Cached {
	return &Cached{store: store, cache: psync.NewMap(0)}
}

func (c *Cached) fetchRead(id string) (*cachedRead, bool, error) {
	seq, ok, err := c.store.Sequence(id)
	if err != nil || !ok {
		return nil, ok, err
	}
	entry := &cachedRead{seq: seq}
	if entry.clipStart, entry.clipEnd, err = c.store.ClipBounds(id); err != nil {
		return nil, false, err
	}
	if entry.polyA, entry.hasPolyA, err = c.store.PolyAPosition(id); err != nil {
		return nil, false, err
	}
	if entry.transSplice, entry.hasTransSplice, err = c.store.TransSpliceSite(id); err != nil {
		return nil, false, err
	}
	if entry.clone, err = c.store.CloneGroup(id); err != nil {
		return nil, false, err
	}
	if entry.threePrime, err = c.store.ThreePrime(id); err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

// read returns the cached entry of a read. A nil entry means the read
// does not exist.
func (c *Cached) read(id string) (*cachedRead, error) {
	c.mutex.RLock()
	cache := c.cache
	c.mutex.RUnlock()
	key := cacheKey{readTag, id}
	if value, ok := cache.Load(key); ok {
		return value.(*cachedRead), nil
	}
	entry, ok, err := c.fetchRead(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		entry = nil
	}
	value, _ := cache.LoadOrStore(key, entry)
	return value.(*cachedRead), nil
}

func (c *Cached) existing(op, id string) (*cachedRead, error) {
	entry, err := c.read(id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, notFound(op, id)
	}
	return entry, nil
}

// Invalidate drops the cached data of a read or target.
func (c *Cached) Invalidate(id string) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	c.cache.Delete(cacheKey{readTag, id})
	c.cache.Delete(cacheKey{targetTag, id})
}

// Purge drops all cached data.
func (c *Cached) Purge() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.cache = psync.NewMap(0)
}

// Sequence implements Store.
func (c *Cached) Sequence(id string) (dna.Seq, bool, error) {
	entry, err := c.read(id)
	if err != nil || entry == nil {
		return nil, false, err
	}
	return entry.seq, true, nil
}

// ClipBounds implements Store.
func (c *Cached) ClipBounds(id string) (start, end coords.Read, err error) {
	entry, err := c.existing("clip bounds", id)
	if err != nil {
		return 0, 0, err
	}
	return entry.clipStart, entry.clipEnd, nil
}

// PolyAPosition implements Store.
func (c *Cached) PolyAPosition(id string) (coords.Read, bool, error) {
	entry, err := c.existing("polyA", id)
	if err != nil {
		return 0, false, err
	}
	return entry.polyA, entry.hasPolyA, nil
}

// TransSpliceSite implements Store.
func (c *Cached) TransSpliceSite(id string) (Motif, bool, error) {
	entry, err := c.existing("trans-splice site", id)
	if err != nil {
		return Motif{}, false, err
	}
	return entry.transSplice, entry.hasTransSplice, nil
}

// CloneGroup implements Store.
func (c *Cached) CloneGroup(id string) (string, error) {
	entry, err := c.existing("clone", id)
	if err != nil {
		return "", err
	}
	return entry.clone, nil
}

// ThreePrime implements Store.
func (c *Cached) ThreePrime(id string) (bool, error) {
	entry, err := c.existing("orientation", id)
	if err != nil {
		return false, err
	}
	return entry.threePrime, nil
}

// Reads implements Store. The list of reads is not cached.
func (c *Cached) Reads() ([]string, error) {
	return c.store.Reads()
}

// Targets implements Store. The list of targets is not cached.
func (c *Cached) Targets() ([]string, error) {
	return c.store.Targets()
}

// Target implements Store.
func (c *Cached) Target(id string) (dna.Seq, bool, error) {
	c.mutex.RLock()
	cache := c.cache
	c.mutex.RUnlock()
	key := cacheKey{targetTag, id}
	if value, ok := cache.Load(key); ok {
		target := value.(cachedTarget)
		return target.seq, target.ok, nil
	}
	seq, ok, err := c.store.Target(id)
	if err != nil {
		return nil, false, err
	}
	value, _ := cache.LoadOrStore(key, cachedTarget{seq, ok})
	target := value.(cachedTarget)
	return target.seq, target.ok, nil
}
