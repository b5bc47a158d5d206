// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/alex60217101990/strval/v1/metrics"
	"github.com/alex60217101990/strval/v1/util"
	"github.com/alex60217101990/strval/v1/value"
)

const (
	historyFile = ".strval_history"
	promptMain  = "> "
	promptCont  = "| "

	replHelp = `Enter a concatenation such as "foo" + "bar" + 42 to inspect it.
Commands:
  :gc       run the heap collector
  :stats    print runtime counters
  :metrics  print counters in Prometheus text format
  :help     show this message
  :quit     exit`
)

func newReplCommand() *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "repl",
		Short: "Inspect concatenation expressions interactively",
		Args:  cobra.NoArgs,
		PreRunE: func(*cobra.Command, []string) error {
			return validateFormat(format)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			s := &session{env: e, out: cmd.OutOrStdout(), format: format}
			return s.run()
		},
	}

	c.Flags().StringVarP(&format, "format", "f", formatTable, "set output format: table, json or yaml")
	return c
}

// session holds the REPL state. The last result stays a heap root until the
// next one replaces it.
type session struct {
	env    *env
	out    io.Writer
	format string
	last   *value.String
}

func (s *session) run() error {
	fmt.Fprintln(s.out, "strval repl. Type :help for commands.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		src, ok := readExpr(ln)
		if !ok {
			fmt.Fprintln(s.out)
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if exit := s.handle(src); exit {
			return nil
		}
	}
}

// readExpr reads lines until they form a complete expression.
func readExpr(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, err := parseExpr(src); errors.Is(err, errIncomplete) {
			continue
		}
		return src, true
	}
}

// handle evaluates one input and reports whether the session should end.
func (s *session) handle(src string) bool {
	line := strings.TrimSpace(src)
	if strings.HasPrefix(line, ":") {
		return s.command(strings.ToLower(line))
	}

	if err := s.eval(line); err != nil {
		fmt.Fprintln(s.out, "error:", err)
	}
	return false
}

func (s *session) command(line string) bool {
	switch line {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Fprintln(s.out, replHelp)
	case ":gc":
		stats := s.env.heap.Collect()
		fmt.Fprintf(s.out, "marked %d, freed %d, swept %d identifiers in %v\n",
			stats.Marked, stats.Freed, stats.SweptIDs, stats.Duration)
	case ":stats":
		bs, err := util.MarshalIndentJSON(map[string]any{
			"runtime": s.env.rt.Stats().Snapshot(),
			"heap":    s.env.heap.Stats(),
		})
		if err != nil {
			fmt.Fprintln(s.out, "error:", err)
			break
		}
		_, _ = s.out.Write(bs)
	case ":metrics":
		if err := writeMetrics(s.out, s.env); err != nil {
			fmt.Fprintln(s.out, "error:", err)
		}
	default:
		fmt.Fprintln(s.out, "unknown command. Type :help for commands.")
	}
	return false
}

func (s *session) eval(src string) error {
	parts, err := parseExpr(src)
	if err != nil {
		return err
	}

	var r report
	_ = s.env.heap.Mutate(func() error {
		result := s.env.build(parts)
		s.env.heap.AddRoot(result)
		if s.last != nil {
			s.env.heap.RemoveRoot(s.last)
		}
		s.last = result
		r = inspect(result, len(parts), false)
		return nil
	})
	return writeReport(s.out, r, s.format)
}

func writeMetrics(w io.Writer, e *env) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(metrics.New(e.rt, e.heap)); err != nil {
		return err
	}
	mfs, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
