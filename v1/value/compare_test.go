// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package value

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alex60217101990/strval/v1/ident"
)

// representations returns the same content as a flat string, a two-leaf rope
// and a three-leaf rope.
func representations(rt *Runtime, s string) map[string]*String {
	r := []rune(s)
	out := map[string]*String{"flat": rt.FromString(s)}
	if len(r) >= 2 {
		out["rope2"] = Concat(rt.FromString(string(r[:1])), rt.FromString(string(r[1:])))
	}
	if len(r) >= 3 {
		out["rope3"] = Concat(Concat(rt.FromString(string(r[:1])), rt.FromString(string(r[1:2]))), rt.FromString(string(r[2:])))
	}
	return out
}

func TestEqualIndependentOfRepresentation(t *testing.T) {
	inputs := []string{"", "x", "foobar", "12345", "4294967296", "Grüße😀"}

	for _, in := range inputs {
		rt := NewRuntime()
		as := representations(rt, in)
		bs := representations(rt, in)
		for an, a := range as {
			for bn, b := range bs {
				if !Equal(a, b) {
					t.Errorf("%q: expected %s == %s", in, an, bn)
				}
				if !Equal(b, a) {
					t.Errorf("%q: expected %s == %s (symmetric)", in, bn, an)
				}
			}
		}
	}
}

func TestEqualDifferentContent(t *testing.T) {
	rt := NewRuntime()
	pairs := [][2]string{
		{"foo", "bar"},
		{"foo", "foo "},
		{"", "a"},
		{"1", "01"},
		{"42", "43"},
		{"18446744073709551616", "18446744073709551617"},
	}

	for _, p := range pairs {
		a := Concat(rt.FromString(""), rt.FromString(p[0]))
		b := rt.FromString(p[1])
		if Equal(a, b) || Equal(b, a) {
			t.Errorf("expected %q != %q", p[0], p[1])
		}
	}
}

func TestEqualReflexive(t *testing.T) {
	rt := NewRuntime()
	s := Concat(rt.FromString("a"), rt.FromString("b"))

	if !Equal(s, s) {
		t.Fatal("expected string to equal itself")
	}
	if !s.IsRope() {
		t.Fatal("identity check must not flatten")
	}
	if got := rt.Stats().EqualIdentity.Load(); got != 1 {
		t.Fatalf("expected identity path, got %d", got)
	}
}

func TestEqualPaths(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want StatsSnapshot
	}{
		{
			name: "hash mismatch",
			a:    "foo",
			b:    "bar",
			want: StatsSnapshot{EqualHashMismatch: 1},
		},
		{
			name: "array index",
			a:    "123",
			b:    "123",
			want: StatsSnapshot{EqualNumeric: 1},
		},
		{
			name: "unsigned integer",
			a:    "99999999999",
			b:    "99999999999",
			want: StatsSnapshot{EqualNumeric: 1},
		},
		{
			name: "unsigned integer beyond 64 bits",
			a:    "99999999999999999999999",
			b:    "99999999999999999999999",
			want: StatsSnapshot{EqualContent: 1},
		},
		{
			name: "regular content",
			a:    "property",
			b:    "property",
			want: StatsSnapshot{EqualContent: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := NewRuntime()
			a, b := rt.FromString(tt.a), rt.FromString(tt.b)
			a.Hash()
			b.Hash()

			if got, want := Equal(a, b), tt.a == tt.b; got != want {
				t.Fatalf("expected %v, got %v", want, got)
			}

			got := rt.Stats().Snapshot()
			got.Classifications, got.Flattens, got.FlattenedUnits = 0, 0, 0
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("unexpected equality path (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEqualAfterInterning(t *testing.T) {
	rt := NewRuntime()
	x := rt.FromString("123")
	y := rt.FromString("123")

	if x.Buffer() == y.Buffer() {
		t.Fatal("expected independent buffers")
	}
	if !Equal(x, y) {
		t.Fatal("expected equal before interning")
	}
	if got := rt.Stats().EqualIdentifier.Load(); got != 0 {
		t.Fatalf("expected no identifier comparisons before interning, got %d", got)
	}

	x.MakeIdentifier()
	y.MakeIdentifier()

	if !Equal(x, y) {
		t.Fatal("expected equal after interning")
	}
	if got := rt.Stats().EqualIdentifier.Load(); got != 1 {
		t.Fatalf("expected identifier path after interning, got %d", got)
	}
}

func TestEqualInternedRegularStrings(t *testing.T) {
	rt := NewRuntime()
	a := Concat(rt.FromString("len"), rt.FromString("gth"))
	b := rt.FromString("length")

	a.MakeIdentifier()
	b.MakeIdentifier()
	if !Equal(a, b) {
		t.Fatal("expected equal")
	}

	snap := rt.Stats().Snapshot()
	if snap.EqualIdentifier != 1 || snap.EqualContent != 0 {
		t.Fatalf("expected identifier path only, got %+v", snap)
	}
}

func TestEqualAcrossRuntimesComparesContent(t *testing.T) {
	rt1, rt2 := NewRuntime(), NewRuntime()
	a, b := rt1.FromString("name"), rt2.FromString("name")
	c := rt2.FromString("other")
	a.MakeIdentifier()
	b.MakeIdentifier()
	c.MakeIdentifier()

	// Both tables start numbering at the same ID.
	if a.Identifier() != b.Identifier() {
		t.Fatalf("expected matching first IDs, got %v and %v", a.Identifier(), b.Identifier())
	}
	if !Equal(a, b) {
		t.Fatal("expected equal")
	}
	if got := rt1.Stats().EqualIdentifier.Load(); got != 0 {
		t.Fatal("identifiers from different runtimes must not be compared")
	}
}

func TestEqualPreconditions(t *testing.T) {
	rt := NewRuntime()
	s := rt.FromString("x")
	dead := rt.FromString("x")
	dead.Hash()
	dead.Destroy()

	mustPanicPrecondition(t, "equal", func() { Equal(s, nil) })
	mustPanicPrecondition(t, "equal", func() { Equal(s, dead) })
}

func TestCompare(t *testing.T) {
	rt := NewRuntime()
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "a", -1},
		{"a", "", 1},
		{"abc", "abd", -1},
		{"abd", "abc", 1},
		{"ab", "abc", -1},
		{"foobar", "foobar", 0},
		{"10", "9", -1},
		{"Z", "a", -1},
		// Code unit order puts surrogates (U+D800..) before U+E000..U+FFFF.
		{"😀", "�", -1},
	}

	for _, tt := range tests {
		a := Concat(rt.FromString(""), rt.FromString(tt.a))
		b := rt.FromString(tt.b)
		if got := Compare(a, b); got != tt.want {
			t.Errorf("Compare(%q, %q): expected %d, got %d", tt.a, tt.b, tt.want, got)
		}
		if got := Less(a, b); got != (tt.want < 0) {
			t.Errorf("Less(%q, %q): expected %v", tt.a, tt.b, tt.want < 0)
		}
	}
}

func TestCompareFlattensRope(t *testing.T) {
	rt := NewRuntime()
	a := rt.FromString("foo")
	b := rt.FromString("bar")
	c := Concat(a, b)

	if !c.IsRope() || c.Len() != 6 {
		t.Fatalf("expected rope of length 6, got rope=%v len=%d", c.IsRope(), c.Len())
	}
	if got := Compare(c, rt.FromString("foobar")); got != 0 {
		t.Fatalf("expected equal ordering, got %d", got)
	}
	if c.IsRope() {
		t.Fatal("expected comparison to flatten the rope")
	}
	if got := c.String(); got != "foobar" {
		t.Fatalf("expected %q, got %q", "foobar", got)
	}
}

func TestSortStrings(t *testing.T) {
	rt := NewRuntime()
	words := []string{"pear", "apple", "fig", "banana", "apple"}
	ss := make([]*String, 0, len(words))
	for i, w := range words {
		if i%2 == 0 {
			ss = append(ss, rt.FromString(w))
		} else {
			ss = append(ss, Concat(rt.FromString(w[:1]), rt.FromString(w[1:])))
		}
	}

	slices.SortFunc(ss, Compare)

	got := make([]string, len(ss))
	for i, s := range ss {
		got[i] = s.String()
	}
	want := []string{"apple", "apple", "banana", "fig", "pear"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestMakeIdentifier(t *testing.T) {
	rt := NewRuntime()
	a := Concat(rt.FromString("ke"), rt.FromString("y"))
	b := rt.FromString("key")
	c := rt.FromString("other")

	if a.Identifier() != ident.None {
		t.Fatal("expected no identifier before interning")
	}

	ida := a.MakeIdentifier()
	if a.IsRope() {
		t.Fatal("interning must flatten")
	}
	if again := a.MakeIdentifier(); again != ida {
		t.Fatalf("expected idempotent identifier, got %v then %v", ida, again)
	}
	if got := rt.Stats().Identifiers.Load(); got != 1 {
		t.Fatalf("expected one table request, got %d", got)
	}

	if idb := b.MakeIdentifier(); idb != ida {
		t.Fatalf("expected equal content to share identifier, got %v and %v", ida, idb)
	}
	if idc := c.MakeIdentifier(); idc == ida {
		t.Fatal("expected different content to get a different identifier")
	}

	tbl := rt.Identifiers().(*ident.Table)
	if text, ok := tbl.Lookup(ida); !ok || text != "key" {
		t.Fatalf("expected lookup to return %q, got %q (%v)", "key", text, ok)
	}
}

type countingTable struct {
	calls int
	inner *ident.Table
}

func (c *countingTable) CanonicalIdentifierFor(units []uint16) ident.ID {
	c.calls++
	return c.inner.CanonicalIdentifierFor(units)
}

func TestMakeIdentifierUsesConfiguredTable(t *testing.T) {
	tbl := &countingTable{inner: ident.NewTable()}
	rt := NewRuntime(WithIdentifierTable(tbl))

	s := rt.FromString("x")
	s.MakeIdentifier()
	s.MakeIdentifier()
	rt.FromString("x").MakeIdentifier()

	if tbl.calls != 2 {
		t.Fatalf("expected 2 table requests, got %d", tbl.calls)
	}
}
