// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	fieldLogger := logger.WithFields(map[string]any{"context": "contextvalue"})
	fieldLogger.WithFields(map[string]any{"extra": 1}).Info("blah")
	logger.Info("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), buf.String())
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if first["context"] != "contextvalue" || first["extra"] != float64(1) || first["msg"] != "blah" {
		t.Fatalf("unexpected entry %v", first)
	}

	var second map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}
	if _, ok := second["context"]; ok {
		t.Fatal("fields must not leak into the parent logger")
	}
}

func TestLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)

	logger.SetLevel(Warn)
	if logger.GetLevel() != Warn {
		t.Fatalf("expected warn, got %v", logger.GetLevel())
	}

	logger.Info("hidden %d", 1)
	logger.Debug("hidden")
	logger.Warn("shown %s", "warn")
	logger.Error("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("unexpected output below level:\n%s", out)
	}
	if strings.Count(out, "shown") != 2 {
		t.Fatalf("expected two entries:\n%s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"error":   Error,
		"WARN":    Warn,
		"warning": Warn,
		"":        Info,
		"info":    Info,
		"debug":   Debug,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got != want || got.String() != want.String() {
			t.Fatalf("%q: expected %v, got %v", in, want, got)
		}
	}

	if _, err := ParseLevel("trace"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNoOpLogger(t *testing.T) {
	logger := NewNoOpLogger()
	logger.SetLevel(Debug)
	if logger.GetLevel() != Debug {
		t.Fatal("expected level to be stored")
	}
	var l Logger = logger.WithFields(map[string]any{"a": 1})
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
}
