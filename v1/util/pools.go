// Copyright 2025 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package util

import (
	"sync"
)

// SyncPool is a typed wrapper around sync.Pool that hands out *T values.
type SyncPool[T any] struct {
	pool sync.Pool
}

// NewSyncPool returns a pool whose New function allocates a zero T.
func NewSyncPool[T any]() *SyncPool[T] {
	return &SyncPool[T]{
		pool: sync.Pool{
			New: func() any {
				return new(T)
			},
		},
	}
}

// Get returns a *T from the pool. The value is not reset; callers that need a
// clean value must reset it themselves.
func (p *SyncPool[T]) Get() *T {
	return p.pool.Get().(*T)
}

// Put returns x to the pool. Nil values are ignored.
func (p *SyncPool[T]) Put(x *T) {
	if x != nil {
		p.pool.Put(x)
	}
}

// SlicePool is a pool of *[]T sharing a common initial capacity.
type SlicePool[T any] struct {
	pool sync.Pool
	size int
}

// NewSlicePool returns a pool of slices pre-allocated with capacity size.
func NewSlicePool[T any](size int) *SlicePool[T] {
	p := &SlicePool[T]{size: size}
	p.pool.New = func() any {
		s := make([]T, 0, size)
		return &s
	}
	return p
}

// Get returns a slice of the given length. The contents are unspecified when
// the slice is recycled.
func (p *SlicePool[T]) Get(length int) *[]T {
	s := p.pool.Get().(*[]T)
	if cap(*s) < length {
		*s = make([]T, length, max(length, p.size))
	} else {
		*s = (*s)[:length]
	}
	return s
}

// Put returns s to the pool.
func (p *SlicePool[T]) Put(s *[]T) {
	if s != nil {
		p.pool.Put(s)
	}
}

// Cap returns the initial capacity of slices allocated by the pool.
func (p *SlicePool[T]) Cap() int {
	return p.size
}
