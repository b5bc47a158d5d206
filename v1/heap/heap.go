// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package heap implements a small mark-sweep collector for string values.
//
// The heap keeps every tracked *value.String in a cell of a segmented arena.
// A collection marks everything reachable from the registered roots through
// String.Trace, then destroys every unmarked tracked string with
// String.Destroy and returns its cell to the freelist. When an identifier
// sweeper is configured, identifiers that no marked string holds are dropped
// from the table afterwards.
//
// All strings of a runtime whose identifier table is swept must be tracked by
// the same heap; an untracked string holding an identifier does not keep it
// alive.
package heap

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/alex60217101990/strval/v1/ident"
	"github.com/alex60217101990/strval/v1/logging"
	"github.com/alex60217101990/strval/v1/value"
)

const (
	// SegmentSize defines how many cells fit in one segment.
	SegmentSize = 512

	// MaxSegments limits the number of tracked strings to 2M.
	MaxSegments = 4096
)

type cell struct {
	s    *value.String
	next int32
}

// IdentifierSweeper drops identifiers for which live returns false.
// *ident.Table implements it.
type IdentifierSweeper interface {
	Sweep(live func(ident.ID) bool) int
}

// Heap tracks strings and reclaims the unreachable ones.
type Heap struct {
	segments [MaxSegments]*[SegmentSize]cell
	segCount atomic.Int32
	cellCnt  atomic.Int32

	// freeHead is the head of the freelist, -1 when empty.
	freeHead atomic.Int32

	// smu protects segment allocation.
	smu sync.Mutex

	// mutator excludes collections while strings are being built or read.
	mutator sync.Mutex

	// mu protects index and roots and serializes collections.
	mu    sync.Mutex
	index map[*value.String]int32
	roots map[*value.String]int

	ids    IdentifierSweeper
	logger logging.Logger

	collections atomic.Uint64
	freedTotal  atomic.Uint64

	stop chan struct{}
	done chan struct{}
}

// Opt is a configuration option for the heap.
type Opt func(*Heap)

// WithLogger sets the logger used to report collections.
func WithLogger(logger logging.Logger) Opt {
	return func(h *Heap) {
		h.logger = logger
	}
}

// WithIdentifierSweeper makes every collection sweep dead identifiers from t.
func WithIdentifierSweeper(t IdentifierSweeper) Opt {
	return func(h *Heap) {
		h.ids = t
	}
}

// New returns an empty heap. Segments are allocated on first use.
func New(opts ...Opt) *Heap {
	h := &Heap{
		index:  make(map[*value.String]int32),
		roots:  make(map[*value.String]int),
		logger: logging.NewNoOpLogger(),
	}
	h.freeHead.Store(-1)

	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Heap) extend() {
	newIdx := h.segCount.Load()
	if newIdx >= MaxSegments {
		panic("heap: maximum segments exceeded")
	}
	h.segments[newIdx] = new([SegmentSize]cell)
	h.segCount.Add(1)
}

func (h *Heap) getCell(idx int32) *cell {
	return &h.segments[idx/SegmentSize][idx%SegmentSize]
}

func (h *Heap) alloc() int32 {
	for {
		oldFree := h.freeHead.Load()
		if oldFree == -1 {
			break
		}
		c := h.getCell(oldFree)
		if h.freeHead.CompareAndSwap(oldFree, c.next) {
			c.next = -1
			return oldFree
		}
	}

	idx := h.cellCnt.Add(1) - 1
	if segIdx := idx / SegmentSize; segIdx >= h.segCount.Load() {
		h.smu.Lock()
		if segIdx >= h.segCount.Load() {
			h.extend()
		}
		h.smu.Unlock()
	}

	c := h.getCell(idx)
	c.next = -1
	return idx
}

func (h *Heap) free(idx int32) {
	c := h.getCell(idx)
	c.s = nil
	for {
		oldHead := h.freeHead.Load()
		c.next = oldHead
		if h.freeHead.CompareAndSwap(oldHead, idx) {
			return
		}
	}
}

// Track puts s under the heap's management. Tracking a string twice is a
// no-op.
func (h *Heap) Track(s *value.String) {
	if s == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.index[s]; ok {
		return
	}
	idx := h.alloc()
	h.getCell(idx).s = s
	h.index[s] = idx
}

// Tracked reports whether s is managed by the heap.
func (h *Heap) Tracked(s *value.String) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.index[s]
	return ok
}

// AddRoot registers s as a root. Roots are counted: a string added twice
// stays a root until it is removed twice.
func (h *Heap) AddRoot(s *value.String) {
	if s == nil {
		return
	}
	h.mu.Lock()
	h.roots[s]++
	h.mu.Unlock()
}

// RemoveRoot drops one registration of s as a root.
func (h *Heap) RemoveRoot(s *value.String) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n := h.roots[s]; n > 1 {
		h.roots[s] = n - 1
	} else {
		delete(h.roots, s)
	}
}

// CollectStats describes the outcome of one collection.
type CollectStats struct {
	Marked      int           `json:"marked"`
	Buffers     int           `json:"buffers"`
	Identifiers int           `json:"identifiers"`
	Freed       int           `json:"freed"`
	SweptIDs    int           `json:"swept_identifiers"`
	Duration    time.Duration `json:"duration"`
}

// marker implements value.Tracer for one collection.
type marker struct {
	seen    map[*value.String]struct{}
	buffers map[*value.Buffer]struct{}
	ids     map[ident.ID]struct{}
	stack   []*value.String
}

func (m *marker) MarkString(s *value.String) {
	if _, ok := m.seen[s]; !ok {
		m.stack = append(m.stack, s)
	}
}

func (m *marker) MarkBuffer(b *value.Buffer) {
	m.buffers[b] = struct{}{}
}

func (m *marker) MarkIdentifier(id ident.ID) {
	m.ids[id] = struct{}{}
}

func (m *marker) drain() {
	for len(m.stack) > 0 {
		s := m.stack[len(m.stack)-1]
		m.stack = m.stack[:len(m.stack)-1]
		if _, ok := m.seen[s]; ok {
			continue
		}
		m.seen[s] = struct{}{}
		s.Trace(m)
	}
}

// Mutate runs fn with collections held off. Strings created inside fn need
// not be rooted until fn returns, and fn may flatten or classify tracked
// strings without racing the background collector. fn must not call Collect.
func (h *Heap) Mutate(fn func() error) error {
	h.mutator.Lock()
	defer h.mutator.Unlock()
	return fn()
}

// Collect runs one mark-sweep cycle. It waits for any running Mutate call to
// finish.
func (h *Heap) Collect() CollectStats {
	h.mutator.Lock()
	defer h.mutator.Unlock()

	start := time.Now()

	h.mu.Lock()
	defer h.mu.Unlock()

	m := &marker{
		seen:    make(map[*value.String]struct{}, len(h.index)),
		buffers: make(map[*value.Buffer]struct{}),
		ids:     make(map[ident.ID]struct{}),
	}
	for s := range h.roots {
		m.MarkString(s)
	}
	m.drain()

	var freed int
	limit := h.cellCnt.Load()
	for i := range limit {
		c := h.getCell(i)
		if c.s == nil {
			continue
		}
		if _, ok := m.seen[c.s]; ok {
			continue
		}
		c.s.Destroy()
		delete(h.index, c.s)
		h.free(i)
		freed++
	}

	stats := CollectStats{
		Marked:      len(m.seen),
		Buffers:     len(m.buffers),
		Identifiers: len(m.ids),
		Freed:       freed,
	}
	if h.ids != nil {
		stats.SweptIDs = h.ids.Sweep(func(id ident.ID) bool {
			_, ok := m.ids[id]
			return ok
		})
	}
	stats.Duration = time.Since(start)

	h.collections.Add(1)
	h.freedTotal.Add(uint64(freed))

	h.logger.WithFields(map[string]any{
		"marked":    stats.Marked,
		"freed":     stats.Freed,
		"swept_ids": stats.SweptIDs,
		"duration":  stats.Duration,
	}).Debug("heap collection finished")

	return stats
}

// Stats is a point-in-time view of the heap.
type Stats struct {
	Live        int    `json:"live"`
	Roots       int    `json:"roots"`
	Cells       int    `json:"cells"`
	Segments    int    `json:"segments"`
	Collections uint64 `json:"collections"`
	Freed       uint64 `json:"freed"`
}

// Stats reports the current heap counters.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	live, roots := len(h.index), len(h.roots)
	h.mu.Unlock()

	return Stats{
		Live:        live,
		Roots:       roots,
		Cells:       int(h.cellCnt.Load()),
		Segments:    int(h.segCount.Load()),
		Collections: h.collections.Load(),
		Freed:       h.freedTotal.Load(),
	}
}

// StartCollector runs Collect every interval in a background goroutine until
// StopCollector is called. Starting a running collector is a no-op.
func (h *Heap) StartCollector(interval time.Duration) {
	if interval <= 0 {
		return
	}
	h.smu.Lock()
	defer h.smu.Unlock()
	if h.stop != nil {
		return
	}
	stop, done := make(chan struct{}), make(chan struct{})
	h.stop, h.done = stop, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				h.Collect()
			case <-stop:
				return
			}
		}
	}()
}

// StopCollector stops the background collector and waits for it to exit.
func (h *Heap) StopCollector() {
	h.smu.Lock()
	stop, done := h.stop, h.done
	h.stop, h.done = nil, nil
	h.smu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}
