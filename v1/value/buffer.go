// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package value

import (
	"sync/atomic"
	"unicode/utf16"
	"unicode/utf8"
)

// Buffer is a shared, immutable array of UTF-16 code units.
//
// A buffer is reference counted: every flat string holding it retains it once,
// and external holders may Retain and Release it as well. When the count drops
// from one to zero the buffer is freed and its storage recycled. A buffer that
// was never retained is simply left to the garbage collector.
type Buffer struct {
	units  []uint16
	pooled *[]uint16
	refs   atomic.Int32
	freed  atomic.Bool
}

// NewBuffer returns a buffer holding a copy of units.
func NewBuffer(units []uint16) *Buffer {
	b := allocBuffer(len(units))
	copy(b.units, units)
	return b
}

// NewBufferString returns a buffer holding the UTF-16 encoding of s. Invalid
// UTF-8 sequences are encoded as U+FFFD.
func NewBufferString(s string) *Buffer {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}

	b := allocBuffer(n)
	dst := b.units[:0]
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		dst = utf16.AppendRune(dst, r)
		s = s[size:]
	}
	return b
}

// allocBuffer returns an unretained buffer of exactly n units with
// unspecified contents.
func allocBuffer(n int) *Buffer {
	if n == 0 {
		return &Buffer{}
	}
	units, pooled := getUnits(n)
	return &Buffer{units: units, pooled: pooled}
}

// Len returns the number of code units.
func (b *Buffer) Len() int {
	return len(b.units)
}

// Units returns the code units. The slice must not be modified and is only
// valid while the buffer is retained.
func (b *Buffer) Units() []uint16 {
	return b.units
}

// Refs returns the current reference count.
func (b *Buffer) Refs() int {
	return int(b.refs.Load())
}

// Freed reports whether the buffer has been freed.
func (b *Buffer) Freed() bool {
	return b.freed.Load()
}

// Retain adds a reference.
func (b *Buffer) Retain() {
	if b.freed.Load() {
		panic(precondition("retain", "buffer already freed"))
	}
	b.refs.Add(1)
}

// Release drops a reference, freeing the buffer when it was the last one.
func (b *Buffer) Release() {
	n := b.refs.Add(-1)
	switch {
	case n > 0:
		return
	case n < 0:
		panic(precondition("release", "buffer released more often than retained"))
	}

	if !b.freed.CompareAndSwap(false, true) {
		panic(precondition("release", "buffer freed twice"))
	}
	pooled := b.pooled
	b.units, b.pooled = nil, nil
	putUnits(pooled)
}
