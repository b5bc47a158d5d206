// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package value

import (
	"github.com/alex60217101990/strval/v1/ident"
)

// MakeIdentifier interns s in its runtime's identifier table and returns the
// canonical ID. Repeated calls return the stored ID without consulting the
// table. Strings with equal content that are both interned share the ID.
func (s *String) MakeIdentifier() ident.ID {
	if s.id != ident.None {
		return s.id
	}
	s.classify()
	s.id = s.rt.ids.CanonicalIdentifierFor(s.buf.units)
	s.rt.stats.Identifiers.Add(1)
	return s.id
}

// Identifier returns the canonical ID of s, or ident.None when s has not been
// interned.
func (s *String) Identifier() ident.ID {
	return s.id
}
