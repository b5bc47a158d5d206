// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package value

import (
	"sync"
	"testing"
	"unicode/utf16"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestNewBufferCopies(t *testing.T) {
	src := []uint16{'a', 'b', 'c'}
	b := NewBuffer(src)
	src[0] = 'z'

	if diff := cmp.Diff([]uint16{'a', 'b', 'c'}, b.Units()); diff != "" {
		t.Fatalf("buffer must own a copy (-want +got):\n%s", diff)
	}
}

func TestNewBufferString(t *testing.T) {
	tests := []string{"", "ascii", "ünïcödé", "😀 astral", "\xff invalid"}

	for _, in := range tests {
		b := NewBufferString(in)
		want := utf16.Encode([]rune(in))
		if diff := cmp.Diff(want, b.Units(), cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("%q: units mismatch (-want +got):\n%s", in, diff)
		}
	}
}

func TestBufferRefCount(t *testing.T) {
	b := NewBufferString("data")
	if b.Refs() != 0 {
		t.Fatalf("expected new buffer unretained, got %d", b.Refs())
	}

	b.Retain()
	b.Retain()
	b.Release()
	if b.Freed() {
		t.Fatal("buffer freed while still retained")
	}
	b.Release()
	if !b.Freed() {
		t.Fatal("expected buffer freed after last release")
	}
	if b.Len() != 0 {
		t.Fatal("freed buffer must drop its storage")
	}

	mustPanicPrecondition(t, "release", b.Release)
	mustPanicPrecondition(t, "retain", b.Retain)
}

func TestBufferConcurrentRetainRelease(t *testing.T) {
	b := NewBufferString("shared")
	b.Retain()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				b.Retain()
				b.Release()
			}
		}()
	}
	wg.Wait()

	if b.Refs() != 1 || b.Freed() {
		t.Fatalf("expected one reference left, got %d (freed=%v)", b.Refs(), b.Freed())
	}
	b.Release()
	if !b.Freed() {
		t.Fatal("expected buffer freed")
	}
}

func TestUnitClass(t *testing.T) {
	tests := map[int]int{
		1:     minUnitClass,
		16:    minUnitClass,
		17:    5,
		32:    5,
		33:    6,
		65536: 16,
		65537: 17,
	}
	for n, want := range tests {
		if got := unitClass(n); got != want {
			t.Errorf("unitClass(%d): expected %d, got %d", n, want, got)
		}
	}
}

func TestLargeBufferNotPooled(t *testing.T) {
	units, pooled := getUnits(1<<maxUnitClass + 1)
	if pooled != nil {
		t.Fatal("expected oversized buffer to bypass the pools")
	}
	if len(units) != 1<<maxUnitClass+1 {
		t.Fatalf("unexpected length %d", len(units))
	}
}

func TestPutUnitsRejectsForeignCapacity(t *testing.T) {
	odd := make([]uint16, 20, 24)
	putUnits(&odd)

	for range 8 {
		units, p := getUnits(20)
		if cap(units) != unitPools[unitClass(20)].Cap() {
			t.Fatalf("pooled slice with capacity %d", cap(units))
		}
		putUnits(p)
	}
}
