// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/alex60217101990/strval/v1/ident"
	"github.com/alex60217101990/strval/v1/util"
	"github.com/alex60217101990/strval/v1/value"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

type inspectParams struct {
	format string
	intern bool
	expr   bool
}

func newInspectCommand() *cobra.Command {
	var params inspectParams

	c := &cobra.Command{
		Use:   "inspect [flags] PART...",
		Short: "Concatenate parts and report the resulting string",
		Long: `Concatenate parts into a rope and report its representation, length and
classification before and after flattening.

With --expr a single argument is read as an expression such as '"a" + "b" + 42'.`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(*cobra.Command, []string) error {
			return validateFormat(params.format)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			parts := args
			if params.expr {
				if len(args) != 1 {
					return fmt.Errorf("--expr takes exactly one argument")
				}
				if parts, err = parseExpr(args[0]); err != nil {
					return err
				}
			}

			var r report
			if err := e.heap.Mutate(func() error {
				s := e.build(parts)
				e.heap.AddRoot(s)
				r = inspect(s, len(parts), params.intern)
				return nil
			}); err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), r, params.format)
		},
	}

	c.Flags().StringVarP(&params.format, "format", "f", formatTable, "set output format: table, json or yaml")
	c.Flags().BoolVar(&params.intern, "intern", false, "intern the result as an identifier")
	c.Flags().BoolVar(&params.expr, "expr", false, "read the argument as a concatenation expression")
	return c
}

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

type state struct {
	Representation string  `json:"representation"`
	Length         int     `json:"length"`
	Classified     bool    `json:"classified"`
	Subtype        string  `json:"subtype,omitempty"`
	Hash           string  `json:"hash,omitempty"`
	ArrayIndex     *uint32 `json:"array_index,omitempty"`
	Identifier     string  `json:"identifier,omitempty"`
}

type report struct {
	Text            string              `json:"text"`
	Parts           int                 `json:"parts"`
	Before          state               `json:"before"`
	After           state               `json:"after"`
	StartsWithUpper bool                `json:"starts_with_upper"`
	Uint32          *uint32             `json:"uint32,omitempty"`
	Stats           value.StatsSnapshot `json:"stats"`
}

func describe(s *value.String) state {
	st := state{
		Representation: "flat",
		Length:         s.Len(),
		Classified:     s.Classified(),
	}
	if s.IsRope() {
		st.Representation = "rope"
	}
	if st.Classified {
		st.Subtype = s.Subtype().String()
		st.Hash = fmt.Sprintf("0x%016x", s.Hash())
		if idx := s.AsArrayIndex(); idx != value.NotAnIndex {
			st.ArrayIndex = &idx
		}
	}
	if id := s.Identifier(); id != ident.None {
		st.Identifier = id.String()
	}
	return st
}

// inspect records s before and after classification. StartsWithUpper is
// asked first since it does not flatten.
func inspect(s *value.String, parts int, intern bool) report {
	r := report{
		Parts:  parts,
		Before: describe(s),
	}
	r.StartsWithUpper = s.StartsWithUpper()

	s.AsArrayIndex()
	if intern {
		s.MakeIdentifier()
	}
	r.After = describe(s)
	r.Text = s.String()
	if n, ok := s.ToUint32(); ok {
		r.Uint32 = &n
	}
	r.Stats = s.Runtime().Stats().Snapshot()
	return r
}

func writeReport(w io.Writer, r report, format string) error {
	switch format {
	case formatJSON:
		bs, err := util.MarshalIndentJSON(r)
		if err != nil {
			return err
		}
		_, err = w.Write(bs)
		return err
	case formatYAML:
		bs, err := util.MarshalYAML(r)
		if err != nil {
			return err
		}
		_, err = w.Write(bs)
		return err
	}

	fmt.Fprintf(w, "text: %q\n", r.Text)

	table := tablewriter.NewWriter(w)
	table.Header("Field", "Before", "After")
	rows := [][]string{
		{"representation", r.Before.Representation, r.After.Representation},
		{"length", strconv.Itoa(r.Before.Length), strconv.Itoa(r.After.Length)},
		{"classified", strconv.FormatBool(r.Before.Classified), strconv.FormatBool(r.After.Classified)},
		{"subtype", orDash(r.Before.Subtype), orDash(r.After.Subtype)},
		{"hash", orDash(r.Before.Hash), orDash(r.After.Hash)},
		{"array index", indexOrDash(r.Before.ArrayIndex), indexOrDash(r.After.ArrayIndex)},
		{"identifier", orDash(r.Before.Identifier), orDash(r.After.Identifier)},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "parts: %d, starts with upper: %v, uint32: %s\n",
		r.Parts, r.StartsWithUpper, indexOrDash(r.Uint32))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func indexOrDash(p *uint32) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatUint(uint64(*p), 10)
}
