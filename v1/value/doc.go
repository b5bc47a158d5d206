// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package value implements the string values of a script runtime.
//
// A *String is either flat, holding a shared reference-counted Buffer of
// UTF-16 code units, or a rope: the unresolved concatenation of two other
// strings. Concatenation is O(1) and never touches content. The first
// operation that needs contiguous content (hashing, comparison, conversion to
// Go text) flattens the rope in place into a single buffer.
//
// Strings look immutable but fill internal caches on first use: the flattened
// buffer, the content hash, the subtype classification and the canonical
// identifier. Because of these cache fills a *String must not be used from
// more than one goroutine at a time without external synchronization.
//
// Basic usage:
//
//	rt := value.NewRuntime()
//	s := value.Concat(rt.FromString("foo"), rt.FromString("bar")) // rope, Len() == 6
//	value.Equal(s, rt.FromString("foobar"))                      // true, s is now flat
//	rt.FromString("42").AsArrayIndex()                           // 42
package value
