// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package value

import (
	"slices"

	"github.com/alex60217101990/strval/v1/ident"
)

// Equal reports whether a and b have the same content. Cheap checks run
// first: identity, cached hashes, shared canonical identifiers and numeric
// classification. Only when all of those are inconclusive are the code units
// compared. The representation of either operand does not affect the result.
func Equal(a, b *String) bool {
	switch {
	case a == nil || b == nil:
		panic(precondition("equal", "nil operand"))
	case a.kind == kindDead || b.kind == kindDead:
		panic(precondition("equal", "operand has been destroyed"))
	}

	st := &a.rt.stats
	if a == b {
		st.EqualIdentity.Add(1)
		return true
	}

	if a.Hash() != b.Hash() {
		st.EqualHashMismatch.Add(1)
		return false
	}

	// IDs from different runtimes come from different tables.
	if a.rt == b.rt && a.id != ident.None && a.id == b.id {
		st.EqualIdentifier.Add(1)
		return true
	}

	if a.subtype >= UnsignedInteger && a.subtype == b.subtype && a.numExact && b.numExact {
		st.EqualNumeric.Add(1)
		return a.num == b.num
	}

	st.EqualContent.Add(1)
	return slices.Equal(a.buf.units, b.buf.units)
}

// Compare orders a and b lexicographically by code unit and returns -1, 0 or
// +1. Both operands are flattened; no cached metadata is consulted.
func Compare(a, b *String) int {
	if a == nil || b == nil {
		panic(precondition("compare", "nil operand"))
	}
	a.rt.stats.Compares.Add(1)
	return slices.Compare(a.Units(), b.Units())
}

// Less reports whether a orders before b. It is suitable for sort functions.
func Less(a, b *String) bool {
	return Compare(a, b) < 0
}
