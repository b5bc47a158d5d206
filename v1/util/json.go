// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"sigs.k8s.io/yaml"
)

// UnmarshalJSON parses the JSON encoded data and stores the result in the value
// pointed to by x. Numbers are decoded as json.Number.
func UnmarshalJSON(bs []byte, x any) error {
	decoder := NewJSONDecoder(bytes.NewReader(bs))
	if err := decoder.Decode(x); err != nil {
		return err
	}

	// Since decoder.Decode validates only the first json structure in bytes,
	// check if decoder has more bytes to consume to validate whole input bytes.
	tok, err := decoder.Token()
	if tok != nil {
		return fmt.Errorf("error: invalid character '%s' after top-level value", tok)
	}
	if err != nil && err != io.EOF {
		return err
	}
	return nil
}

// NewJSONDecoder returns a new decoder that reads from r.
//
// This function is intended to be used in place of the standard [json.NewDecoder]
// when [json.Number] is required.
func NewJSONDecoder(r io.Reader) *json.Decoder {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	return decoder
}

// MarshalIndentJSON encodes x as two-space indented JSON using a pooled buffer.
func MarshalIndentJSON(x any) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(x); err != nil {
		return nil, err
	}

	return bytes.Clone(buf.Bytes()), nil
}

// MarshalYAML encodes x as YAML. The value goes through its JSON encoding
// first so that json struct tags and MarshalJSON methods are honoured.
func MarshalYAML(x any) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(x); err != nil {
		return nil, err
	}
	return yaml.JSONToYAML(buf.Bytes())
}
