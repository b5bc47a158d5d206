// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ident

import (
	"sync"
	"unique"
)

// Table is an unbounded identifier table. It is safe for concurrent use.
//
// Keys are canonicalized with unique.Handle so that the map is keyed by a
// pointer-sized handle rather than by the full content.
type Table struct {
	mu    sync.RWMutex
	index map[unique.Handle[string]]ID
	byID  map[ID]unique.Handle[string]
	last  ID
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		index: make(map[unique.Handle[string]]ID),
		byID:  make(map[ID]unique.Handle[string]),
	}
}

// CanonicalIdentifierFor returns the ID for the given content, creating one if
// the content has not been seen before.
func (t *Table) CanonicalIdentifierFor(units []uint16) ID {
	h := unique.Make(Key(units))

	t.mu.RLock()
	id, ok := t.index[h]
	t.mu.RUnlock()
	if ok {
		return id
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Double-check after acquiring write lock
	if id, ok := t.index[h]; ok {
		return id
	}

	if t.last == maxID {
		panic(ErrExhausted)
	}
	t.last++
	t.index[h] = t.last
	t.byID[t.last] = h
	return t.last
}

// Lookup returns the content registered under id.
func (t *Table) Lookup(id ID) (string, bool) {
	t.mu.RLock()
	h, ok := t.byID[id]
	t.mu.RUnlock()
	if !ok {
		return "", false
	}
	return Text(h.Value()), true
}

// Len returns the number of registered identifiers.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.index)
}

// Sweep drops every identifier for which live returns false and reports how
// many were dropped. Strings still holding a dropped ID keep comparing
// correctly: the ID is not reused, and content that is requested again gets a
// fresh ID.
func (t *Table) Sweep(live func(ID) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for id, h := range t.byID {
		if live(id) {
			continue
		}
		delete(t.byID, id)
		delete(t.index, h)
		n++
	}
	return n
}
