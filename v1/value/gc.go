// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package value

import (
	"github.com/alex60217101990/strval/v1/ident"
)

// Tracer receives the references reported by String.Trace.
type Tracer interface {
	MarkString(*String)
	MarkBuffer(*Buffer)
	MarkIdentifier(ident.ID)
}

// Trace reports what s keeps reachable: both children of a rope, or the
// buffer and canonical identifier of a flat string. Destroyed strings report
// nothing.
func (s *String) Trace(t Tracer) {
	switch s.kind {
	case kindRope:
		t.MarkString(s.left)
		t.MarkString(s.right)
	case kindFlat:
		t.MarkBuffer(s.buf)
		if s.id != ident.None {
			t.MarkIdentifier(s.id)
		}
	}
}

// Destroy releases what s owns: the buffer reference of a flat string, or the
// two children of a rope. Destroying the children themselves is left to the
// collector. Any later use of s that needs its content panics. Destroying
// twice is a no-op.
func (s *String) Destroy() {
	switch s.kind {
	case kindDead:
		return
	case kindFlat:
		s.buf.Release()
	}
	s.buf = nil
	s.id = ident.None
	s.left, s.right = nil, nil
	s.kind = kindDead
}
