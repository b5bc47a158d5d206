// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ident

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/alex60217101990/strval/v1/logging"
)

// LRUTable is an identifier table holding at most a fixed number of entries.
// The least recently requested content is evicted first. It is safe for
// concurrent use.
type LRUTable struct {
	mu     sync.Mutex
	cache  *lru.Cache[string, ID]
	byID   map[ID]string
	last   ID
	logger logging.Logger
}

// LRUOpt configures an LRUTable.
type LRUOpt func(*LRUTable)

// WithLogger sets the logger used to report evictions.
func WithLogger(logger logging.Logger) LRUOpt {
	return func(t *LRUTable) {
		t.logger = logger
	}
}

// NewLRUTable returns a table bounded to size entries.
func NewLRUTable(size int, opts ...LRUOpt) (*LRUTable, error) {
	t := &LRUTable{
		byID:   make(map[ID]string),
		logger: logging.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}

	cache, err := lru.NewWithEvict(size, t.onEvict)
	if err != nil {
		return nil, fmt.Errorf("identifier table: %w", err)
	}
	t.cache = cache
	return t, nil
}

// onEvict runs with t.mu held, from inside cache.Add.
func (t *LRUTable) onEvict(key string, id ID) {
	delete(t.byID, id)
	t.logger.Debug("Evicted identifier %v (%d code units).", id, len(key)/2)
}

// CanonicalIdentifierFor returns the ID for the given content, creating one if
// the content is not currently in the table.
func (t *LRUTable) CanonicalIdentifierFor(units []uint16) ID {
	key := Key(units)

	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.cache.Get(key); ok {
		return id
	}

	if t.last == maxID {
		panic(ErrExhausted)
	}
	t.last++
	t.byID[t.last] = key
	t.cache.Add(key, t.last)
	return t.last
}

// Lookup returns the content registered under id, if it is still resident.
func (t *LRUTable) Lookup(id ID) (string, bool) {
	t.mu.Lock()
	key, ok := t.byID[id]
	t.mu.Unlock()
	if !ok {
		return "", false
	}
	return Text(key), true
}

// Len returns the number of resident identifiers.
func (t *LRUTable) Len() int {
	return t.cache.Len()
}
