// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package value

import (
	"sync/atomic"

	"github.com/alex60217101990/strval/v1/ident"
)

// IdentifierTable hands out canonical identifiers. Equal content must always
// map to the same ID for as long as the table retains the entry.
type IdentifierTable interface {
	CanonicalIdentifierFor(units []uint16) ident.ID
}

// Runtime groups the strings of one interpreter instance: they share an
// identifier table and a set of counters.
type Runtime struct {
	ids   IdentifierTable
	stats Stats
}

// Opt is a configuration option for a Runtime.
type Opt func(*Runtime)

// WithIdentifierTable sets the identifier table. The default is an unbounded
// ident.Table.
func WithIdentifierTable(t IdentifierTable) Opt {
	return func(rt *Runtime) {
		rt.ids = t
	}
}

// NewRuntime returns a runtime with the given options applied.
func NewRuntime(opts ...Opt) *Runtime {
	rt := &Runtime{}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.ids == nil {
		rt.ids = ident.NewTable()
	}
	return rt
}

// Identifiers returns the runtime's identifier table.
func (rt *Runtime) Identifiers() IdentifierTable {
	return rt.ids
}

// Stats returns the runtime's counters.
func (rt *Runtime) Stats() *Stats {
	return &rt.stats
}

// Stats counts the work done by the strings of a runtime. All fields may be
// read concurrently.
type Stats struct {
	Flattens        atomic.Uint64
	FlattenedUnits  atomic.Uint64
	Classifications atomic.Uint64
	Identifiers     atomic.Uint64
	Compares        atomic.Uint64

	// One counter per exit of Equal.
	EqualIdentity     atomic.Uint64
	EqualHashMismatch atomic.Uint64
	EqualIdentifier   atomic.Uint64
	EqualNumeric      atomic.Uint64
	EqualContent      atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Flattens          uint64 `json:"flattens"`
	FlattenedUnits    uint64 `json:"flattened_units"`
	Classifications   uint64 `json:"classifications"`
	Identifiers       uint64 `json:"identifiers"`
	Compares          uint64 `json:"compares"`
	EqualIdentity     uint64 `json:"equal_identity"`
	EqualHashMismatch uint64 `json:"equal_hash_mismatch"`
	EqualIdentifier   uint64 `json:"equal_identifier"`
	EqualNumeric      uint64 `json:"equal_numeric"`
	EqualContent      uint64 `json:"equal_content"`
}

// Snapshot copies the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Flattens:          s.Flattens.Load(),
		FlattenedUnits:    s.FlattenedUnits.Load(),
		Classifications:   s.Classifications.Load(),
		Identifiers:       s.Identifiers.Load(),
		Compares:          s.Compares.Load(),
		EqualIdentity:     s.EqualIdentity.Load(),
		EqualHashMismatch: s.EqualHashMismatch.Load(),
		EqualIdentifier:   s.EqualIdentifier.Load(),
		EqualNumeric:      s.EqualNumeric.Load(),
		EqualContent:      s.EqualContent.Load(),
	}
}
