// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package value

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		input   string
		subtype Subtype
		index   uint32
	}{
		{"0", ArrayIndex, 0},
		{"1", ArrayIndex, 1},
		{"42", ArrayIndex, 42},
		{"4294967294", ArrayIndex, 4294967294},
		{"4294967295", UnsignedInteger, NotAnIndex},
		{"4294967296", UnsignedInteger, NotAnIndex},
		{"18446744073709551615", UnsignedInteger, NotAnIndex},
		{"18446744073709551616", UnsignedInteger, NotAnIndex},
		{"123456789012345678901234567890", UnsignedInteger, NotAnIndex},
		{"01", Regular, NotAnIndex},
		{"00", Regular, NotAnIndex},
		{"-1", Regular, NotAnIndex},
		{"+1", Regular, NotAnIndex},
		{"4.2", Regular, NotAnIndex},
		{"1e3", Regular, NotAnIndex},
		{" 1", Regular, NotAnIndex},
		{"1 ", Regular, NotAnIndex},
		{"", Regular, NotAnIndex},
		{"abc", Regular, NotAnIndex},
		{"١٢", Regular, NotAnIndex}, // non-ASCII digits
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rt := NewRuntime()
			s := rt.FromString(tt.input)

			if got := s.Subtype(); got != tt.subtype {
				t.Fatalf("expected subtype %v, got %v", tt.subtype, got)
			}
			if got := s.AsArrayIndex(); got != tt.index {
				t.Fatalf("expected index %d, got %d", tt.index, got)
			}
		})
	}
}

func TestClassifyRope(t *testing.T) {
	rt := NewRuntime()
	s := Concat(Concat(rt.FromString("1"), rt.FromString("2")), rt.FromString("3"))

	if !s.IsRope() || s.Classified() {
		t.Fatal("expected unclassified rope")
	}
	if s.AsArrayIndex() != 123 {
		t.Fatalf("expected index 123, got %d", s.AsArrayIndex())
	}
	if s.IsRope() {
		t.Fatal("classification must flatten")
	}
}

func TestArrayIndexHashIsValue(t *testing.T) {
	rt := NewRuntime()
	if got := rt.FromString("7").Hash(); got != 7 {
		t.Fatalf("expected hash 7, got %d", got)
	}
}

func TestClassifyOnce(t *testing.T) {
	rt := NewRuntime()
	s := rt.FromString("hello")

	s.Hash()
	s.Subtype()
	s.AsArrayIndex()
	s.MakeIdentifier()

	if got := rt.Stats().Classifications.Load(); got != 1 {
		t.Fatalf("expected one classification, got %d", got)
	}
}

func TestHashStable(t *testing.T) {
	rt := NewRuntime()
	inputs := []string{"", "a", "hello world", "18446744073709551616", "😀", string(make([]byte, 1000))}

	for _, in := range inputs {
		s := rt.FromString(in)
		h1 := s.Hash()
		h2 := s.Hash()
		if h1 != h2 {
			t.Fatalf("%q: hash changed between calls: %x != %x", in, h1, h2)
		}

		independent := rt.FromString(in)
		if independent.Hash() != h1 {
			t.Fatalf("%q: independent string hashes differently", in)
		}

		// Same content built as a rope.
		if runes := []rune(in); len(runes) > 1 {
			r := Concat(rt.FromString(string(runes[:1])), rt.FromString(string(runes[1:])))
			if r.Hash() != h1 {
				t.Fatalf("%q: rope hashes differently", in)
			}
		}
	}
}

func TestHashUnitsMatchesRegularHash(t *testing.T) {
	rt := NewRuntime()
	s := rt.FromString("property")
	if s.Hash() != HashUnits(s.Units()) {
		t.Fatal("regular hash must equal HashUnits of the content")
	}
}

func TestHashUnitsChunking(t *testing.T) {
	units := make([]uint16, 3*hashChunk+7)
	for i := range units {
		units[i] = uint16(i)
	}
	if HashUnits(units) == HashUnits(units[:len(units)-1]) {
		t.Fatal("expected prefix to hash differently")
	}
}

func TestToUint32(t *testing.T) {
	tests := []struct {
		input string
		want  uint32
		ok    bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{"4294967295", 4294967295, true},
		{"4294967296", NotAnIndex, false},
		{"", 0, true},
		{"  17  ", 17, true},
		{"017", 17, true},
		{"0x1F", 31, true},
		{"0XfF", 255, true},
		{"1e3", 1000, true},
		{"3.0", 3, true},
		{"3.5", NotAnIndex, false},
		{"-1", NotAnIndex, false},
		{"-0", 0, true},
		{"Infinity", NotAnIndex, false},
		{"inf", NotAnIndex, false},
		{"nan", NotAnIndex, false},
		{"1_000", NotAnIndex, false},
		{"abc", NotAnIndex, false},
		{"0x", NotAnIndex, false},
		{"\uFEFF8", 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rt := NewRuntime()
			got, ok := rt.FromString(tt.input).ToUint32()
			if ok != tt.ok || got != tt.want {
				t.Fatalf("expected (%d, %v), got (%d, %v)", tt.want, tt.ok, got, ok)
			}
		})
	}
}

func TestSubtypeString(t *testing.T) {
	for st, want := range map[Subtype]string{
		Unknown:         "unknown",
		Regular:         "regular",
		UnsignedInteger: "unsigned-integer",
		ArrayIndex:      "array-index",
		Subtype(99):     "invalid",
	} {
		if got := st.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}
