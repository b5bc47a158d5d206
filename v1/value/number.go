// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package value

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ToUint32 converts s to a uint32 using script number semantics. ok is false
// unless the numeric value of s is exactly representable as a uint32.
//
// Numeric subtypes are answered from the classification cache; other content
// is parsed: surrounding white space is ignored, empty content is zero, a
// 0x or 0X prefix introduces hexadecimal digits, and anything else must be a
// decimal literal.
func (s *String) ToUint32() (uint32, bool) {
	s.classify()
	switch s.subtype {
	case ArrayIndex:
		return uint32(s.hash), true
	case UnsignedInteger:
		if s.numExact && s.num <= math.MaxUint32 {
			return uint32(s.num), true
		}
		return NotAnIndex, false
	}

	d, ok := stringToNumber(s.String())
	if !ok || d < 0 || d > math.MaxUint32 || d != math.Trunc(d) {
		return NotAnIndex, false
	}
	return uint32(d), true
}

func stringToNumber(text string) (float64, bool) {
	text = strings.TrimFunc(text, isScriptSpace)
	if text == "" {
		return 0, true
	}

	if len(text) > 2 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X') {
		u, err := strconv.ParseUint(text[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		return float64(u), true
	}

	// ParseFloat also accepts spellings such as "inf", "nan", hex floats and
	// digit separators that are not script number literals.
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c >= '0' && c <= '9', c == '.', c == 'e', c == 'E', c == '+', c == '-':
		default:
			return 0, false
		}
	}

	d, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return d, true
}

func isScriptSpace(r rune) bool {
	return r == '\uFEFF' || unicode.IsSpace(r)
}
