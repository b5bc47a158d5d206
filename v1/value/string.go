// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package value

import (
	"encoding/json"
	"math"
	"unicode"
	"unicode/utf16"

	"github.com/alex60217101990/strval/v1/ident"
)

// MaxLength is the largest number of code units a string may hold.
const MaxLength = math.MaxInt32

// kind tags the representation held by a String.
type kind uint8

const (
	kindFlat kind = iota
	kindRope
	kindDead
)

// String is a script string value. See the package documentation for the
// representation and the concurrency rules.
type String struct {
	rt *Runtime

	// Flat payload.
	buf *Buffer
	id  ident.ID

	// Rope payload.
	left, right *String

	length int

	// Classification cache, valid when subtype != Unknown. For ArrayIndex the
	// hash is the index itself. num holds the numeric value of numeric
	// subtypes when numExact is set.
	hash     uint64
	num      uint64
	numExact bool
	subtype  Subtype

	kind kind
}

// FromBuffer returns a flat string holding buf. The string retains buf.
func (rt *Runtime) FromBuffer(buf *Buffer) *String {
	if buf == nil {
		panic(precondition("from buffer", "nil buffer"))
	}
	buf.Retain()
	return &String{rt: rt, buf: buf, length: buf.Len(), kind: kindFlat}
}

// FromString returns a flat string holding the UTF-16 encoding of s.
func (rt *Runtime) FromString(s string) *String {
	return rt.FromBuffer(NewBufferString(s))
}

// FromUnits returns a flat string holding a copy of units.
func (rt *Runtime) FromUnits(units []uint16) *String {
	return rt.FromBuffer(NewBuffer(units))
}

// Concat returns the rope left+right in constant time. Neither operand's
// content is read. Both operands must belong to the same runtime.
func Concat(left, right *String) *String {
	switch {
	case left == nil || right == nil:
		panic(precondition("concat", "nil operand"))
	case left.rt != right.rt:
		panic(precondition("concat", "operands belong to different runtimes"))
	case left.kind == kindDead || right.kind == kindDead:
		panic(precondition("concat", "operand has been destroyed"))
	case left.length > MaxLength-right.length:
		panic(precondition("concat", "result exceeds maximum string length"))
	}
	return &String{
		rt:     left.rt,
		left:   left,
		right:  right,
		length: left.length + right.length,
		kind:   kindRope,
	}
}

// Runtime returns the runtime s belongs to.
func (s *String) Runtime() *Runtime {
	return s.rt
}

// Len returns the number of UTF-16 code units. It never flattens.
func (s *String) Len() int {
	return s.length
}

// IsRope reports whether s is still an unflattened concatenation.
func (s *String) IsRope() bool {
	return s.kind == kindRope
}

// Destroyed reports whether Destroy has been called on s.
func (s *String) Destroyed() bool {
	return s.kind == kindDead
}

// Buffer returns the flat buffer of s, flattening it first.
func (s *String) Buffer() *Buffer {
	s.flatten()
	return s.buf
}

// Units returns the code units of s, flattening it first. The slice must not
// be modified and is valid until s is destroyed.
func (s *String) Units() []uint16 {
	s.flatten()
	return s.buf.units
}

// At returns the code unit at index i, flattening s first.
func (s *String) At(i int) uint16 {
	return s.Units()[i]
}

// String returns s as Go text. Unpaired surrogates become U+FFFD.
func (s *String) String() string {
	return string(utf16.Decode(s.Units()))
}

// MarshalJSON encodes s as a JSON string.
func (s *String) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// StartsWithUpper reports whether the first character of s is an upper case
// letter. Ropes are inspected without flattening.
func (s *String) StartsWithUpper() bool {
	if s.length == 0 {
		return false
	}
	n := s
	for n.kind == kindRope {
		if n.left.length > 0 {
			n = n.left
		} else {
			n = n.right
		}
	}
	if n.kind == kindDead {
		panic(precondition("starts with upper", "string has been destroyed"))
	}

	units := n.buf.units
	r := rune(units[0])
	if utf16.IsSurrogate(r) && len(units) > 1 {
		r = utf16.DecodeRune(r, rune(units[1]))
	}
	return unicode.IsUpper(r)
}

// flatten turns a rope into a flat string in place. It allocates one buffer
// of exactly Len() units and walks the tree left to right with an explicit
// stack, so the depth of the rope is not limited by the goroutine stack.
// Length, classification and hash are left untouched.
func (s *String) flatten() {
	switch s.kind {
	case kindFlat:
		return
	case kindDead:
		panic(precondition("flatten", "string has been destroyed"))
	}

	buf := allocBuffer(s.length)
	dst := buf.units

	sp := getStack()
	stack := append(*sp, s)
	off := 0
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.kind {
		case kindRope:
			stack = append(stack, n.right, n.left)
		case kindFlat:
			off += copy(dst[off:], n.buf.units)
		default:
			panic(precondition("flatten", "rope operand has been destroyed"))
		}
	}
	*sp = stack
	putStack(sp)

	if off != s.length {
		panic(precondition("flatten", "rope length does not match its leaves"))
	}

	buf.Retain()
	s.buf = buf
	s.left, s.right = nil, nil
	s.kind = kindFlat

	s.rt.stats.Flattens.Add(1)
	s.rt.stats.FlattenedUnits.Add(uint64(s.length))
}
