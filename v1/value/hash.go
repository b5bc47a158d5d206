// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package value

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Subtype classifies the content of a string.
type Subtype uint8

const (
	// Unknown means the string has not been classified yet.
	Unknown Subtype = iota
	// Regular is any content that is not a canonical decimal integer.
	Regular
	// UnsignedInteger is a canonical decimal integer too large to be an
	// array index.
	UnsignedInteger
	// ArrayIndex is a canonical decimal integer in [0, NotAnIndex).
	ArrayIndex
)

func (t Subtype) String() string {
	switch t {
	case Unknown:
		return "unknown"
	case Regular:
		return "regular"
	case UnsignedInteger:
		return "unsigned-integer"
	case ArrayIndex:
		return "array-index"
	}
	return "invalid"
}

// NotAnIndex is returned by AsArrayIndex for strings that are not array
// indices. It is itself not a valid index.
const NotAnIndex = math.MaxUint32

// Hash returns the content hash of s, classifying it on first use.
func (s *String) Hash() uint64 {
	s.classify()
	return s.hash
}

// Subtype returns the classification of s, classifying it on first use.
func (s *String) Subtype() Subtype {
	s.classify()
	return s.subtype
}

// Classified reports whether s has been classified. It never triggers
// classification.
func (s *String) Classified() bool {
	return s.subtype != Unknown
}

// AsArrayIndex returns the array index denoted by s, or NotAnIndex.
func (s *String) AsArrayIndex() uint32 {
	s.classify()
	if s.subtype == ArrayIndex {
		return uint32(s.hash)
	}
	return NotAnIndex
}

// classify computes the hash and subtype once. It flattens s first.
func (s *String) classify() {
	if s.subtype != Unknown {
		return
	}
	s.flatten()

	units := s.buf.units
	v, canonical, exact := parseCanonicalDecimal(units)
	switch {
	case canonical && exact && v < NotAnIndex:
		s.subtype = ArrayIndex
		s.hash = v
		s.num, s.numExact = v, true
	case canonical:
		s.subtype = UnsignedInteger
		s.hash = HashUnits(units)
		s.num, s.numExact = v, exact
	default:
		s.subtype = Regular
		s.hash = HashUnits(units)
	}

	s.rt.stats.Classifications.Add(1)
}

// parseCanonicalDecimal reports whether units is the canonical decimal form of
// an unsigned integer: ASCII digits only, no sign, no surrounding space and no
// leading zero unless the value is zero. exact is false when the value does
// not fit in 64 bits, in which case v is meaningless.
func parseCanonicalDecimal(units []uint16) (v uint64, canonical, exact bool) {
	if len(units) == 0 {
		return 0, false, false
	}
	if units[0] == '0' && len(units) > 1 {
		return 0, false, false
	}

	exact = true
	for _, u := range units {
		d := uint64(u) - '0'
		if d > 9 {
			return 0, false, false
		}
		if !exact {
			continue
		}
		if v > (math.MaxUint64-d)/10 {
			exact = false
			continue
		}
		v = v*10 + d
	}
	return v, true, exact
}

// hashChunk is the number of code units hashed per digest write.
const hashChunk = 256

// HashUnits returns the hash used for regular and unsigned-integer strings.
// It is xxhash64 over the little-endian encoding of the code units.
func HashUnits(units []uint16) uint64 {
	var scratch [2 * hashChunk]byte
	d := xxhash.New()
	for len(units) > 0 {
		n := min(len(units), hashChunk)
		for i, u := range units[:n] {
			binary.LittleEndian.PutUint16(scratch[2*i:], u)
		}
		_, _ = d.Write(scratch[:2*n])
		units = units[n:]
	}
	return d.Sum64()
}
