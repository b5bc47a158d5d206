// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alex60217101990/strval/v1/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of strval",
		Long:  "Show version and build information for strval.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			generateCmdOutput(cmd.OutOrStdout())
		},
	}
}

func generateCmdOutput(out io.Writer) {
	fmt.Fprintln(out, "Version: "+version.Version)
	fmt.Fprintln(out, "Build Commit: "+version.Vcs)
	fmt.Fprintln(out, "Build Timestamp: "+version.Timestamp)
	fmt.Fprintln(out, "Go Version: "+version.GoVersion)
	fmt.Fprintln(out, "Platform: "+version.Platform)
}
