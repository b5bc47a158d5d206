// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alex60217101990/strval/v1/util"
)

var (
	errEmptyExpr  = errors.New("empty expression")
	errIncomplete = errors.New("incomplete expression")
)

// parseExpr splits a concatenation such as `"a" + "b" + 42` into its
// operands. String operands use JSON string syntax; number operands keep
// their source text. errIncomplete is returned when more input could complete
// the expression.
func parseExpr(src string) ([]string, error) {
	var parts []string
	expectOperand := true

	for i := skipSpace(src, 0); i < len(src); i = skipSpace(src, i) {
		if !expectOperand {
			if src[i] != '+' {
				return nil, fmt.Errorf("offset %d: expected '+', found %q", i, src[i])
			}
			i++
			expectOperand = true
			continue
		}

		part, next, err := scanOperand(src, i)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
		i = next
		expectOperand = false
	}

	switch {
	case len(parts) == 0 && expectOperand:
		return nil, errEmptyExpr
	case expectOperand:
		return nil, errIncomplete
	}
	return parts, nil
}

func skipSpace(src string, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == '\n' || src[i] == '\r') {
		i++
	}
	return i
}

func scanOperand(src string, i int) (string, int, error) {
	if src[i] == '"' {
		j := i + 1
		for ; j < len(src); j++ {
			if src[j] == '\\' {
				j++
				continue
			}
			if src[j] == '"' {
				break
			}
		}
		if j >= len(src) {
			return "", 0, errIncomplete
		}
		var s string
		if err := util.UnmarshalJSON([]byte(src[i:j+1]), &s); err != nil {
			return "", 0, fmt.Errorf("offset %d: invalid string literal: %w", i, err)
		}
		return s, j + 1, nil
	}

	j := i
	for j < len(src) {
		c := src[j]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			break
		}
		// '+' ends the operand unless it is an exponent sign.
		if c == '+' && (j == i || (src[j-1] != 'e' && src[j-1] != 'E')) {
			break
		}
		j++
	}
	lit := src[i:j]
	if lit == "" {
		return "", 0, fmt.Errorf("offset %d: expected operand", i)
	}
	if _, err := strconv.ParseFloat(lit, 64); err != nil {
		return "", 0, fmt.Errorf("offset %d: unexpected %q", i, lit)
	}
	return lit, j, nil
}
