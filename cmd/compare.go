// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alex60217101990/strval/v1/util"
	"github.com/alex60217101990/strval/v1/value"
)

type compareParams struct {
	format string
	intern bool
}

func newCompareCommand() *cobra.Command {
	var params compareParams

	c := &cobra.Command{
		Use:   "compare [flags] A B",
		Short: "Compare two strings and report which check decided equality",
		Args:  cobra.ExactArgs(2),
		PreRunE: func(*cobra.Command, []string) error {
			if params.format != formatTable && params.format != formatJSON {
				return fmt.Errorf("unknown format %q", params.format)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			var res comparison
			if err := e.heap.Mutate(func() error {
				a, b := e.build([]string{args[0]}), e.build([]string{args[1]})
				e.heap.AddRoot(a)
				e.heap.AddRoot(b)
				res = compareStrings(a, b, params.intern)
				return nil
			}); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if params.format == formatJSON {
				bs, err := util.MarshalIndentJSON(res)
				if err != nil {
					return err
				}
				_, err = out.Write(bs)
				return err
			}
			fmt.Fprintf(out, "equal: %v (decided by %s)\n", res.Equal, res.Path)
			fmt.Fprintf(out, "order: %d\n", res.Order)
			return nil
		},
	}

	c.Flags().StringVarP(&params.format, "format", "f", formatTable, "set output format: table or json")
	c.Flags().BoolVar(&params.intern, "intern", false, "intern both strings before comparing")
	return c
}

type comparison struct {
	Equal bool   `json:"equal"`
	Path  string `json:"path"`
	Order int    `json:"order"`
}

func compareStrings(a, b *value.String, intern bool) comparison {
	if intern {
		a.MakeIdentifier()
		b.MakeIdentifier()
	}

	stats := a.Runtime().Stats()
	before := stats.Snapshot()
	eq := value.Equal(a, b)
	path := equalPath(before, stats.Snapshot())

	return comparison{
		Equal: eq,
		Path:  path,
		Order: value.Compare(a, b),
	}
}

// equalPath names the Equal exit counted between two snapshots.
func equalPath(before, after value.StatsSnapshot) string {
	switch {
	case after.EqualIdentity > before.EqualIdentity:
		return "identity"
	case after.EqualHashMismatch > before.EqualHashMismatch:
		return "hash mismatch"
	case after.EqualIdentifier > before.EqualIdentifier:
		return "identifier"
	case after.EqualNumeric > before.EqualNumeric:
		return "numeric"
	case after.EqualContent > before.EqualContent:
		return "content"
	}
	return "unknown"
}
