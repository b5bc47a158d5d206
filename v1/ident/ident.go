// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package ident implements canonical identifier tables for string values.
//
// A table maps string content to a single ID shared by every string with that
// content, so that comparing two interned strings reduces to comparing IDs.
// IDs are never reused: once content has been assigned an ID, that ID denotes
// that content for the lifetime of the table, even after the entry has been
// evicted or swept.
package ident

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
)

// ID is a handle to a canonical identifier.
type ID uint32

// None is the zero ID. It never denotes an identifier.
const None ID = 0

// maxID is the last ID a table hands out.
const maxID ID = math.MaxUint32

// ErrExhausted is the panic value of a table that has handed out every ID.
var ErrExhausted = errors.New("ident: identifier space exhausted")

func (id ID) String() string {
	if id == None {
		return "<none>"
	}
	return "#" + strconv.FormatUint(uint64(id), 10)
}

// Key encodes UTF-16 code units into a map key. The encoding is lossless, so
// unpaired surrogates never collide with other content.
func Key(units []uint16) string {
	var sb strings.Builder
	sb.Grow(2 * len(units))
	for _, u := range units {
		sb.WriteByte(byte(u))
		sb.WriteByte(byte(u >> 8))
	}
	return sb.String()
}

// Units decodes a key produced by Key.
func Units(key string) []uint16 {
	units := make([]uint16, len(key)/2)
	for i := range units {
		units[i] = uint16(key[2*i]) | uint16(key[2*i+1])<<8
	}
	return units
}

// Text decodes a key produced by Key into Go text.
func Text(key string) string {
	return string(utf16.Decode(Units(key)))
}
