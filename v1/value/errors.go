// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package value

// PreconditionError reports misuse of the package by the embedding runtime:
// nil operands, mixing runtimes, use after Destroy, unbalanced Release. It is
// raised with panic and is never returned as an error value.
type PreconditionError struct {
	Op      string
	Message string
}

func (e *PreconditionError) Error() string {
	return "strval: " + e.Op + ": " + e.Message
}

func precondition(op, msg string) *PreconditionError {
	return &PreconditionError{Op: op, Message: msg}
}
