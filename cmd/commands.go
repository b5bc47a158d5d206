// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package cmd implements the strval command line tool.
package cmd

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/alex60217101990/strval/v1/config"
	"github.com/alex60217101990/strval/v1/heap"
	"github.com/alex60217101990/strval/v1/logging"
	"github.com/alex60217101990/strval/v1/value"
)

// RootCommand is the base CLI command that all subcommands are added to.
var RootCommand = NewRootCommand()

// NewRootCommand returns the root command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          path.Base(os.Args[0]),
		Short:        "Inspect script engine string values",
		Long:         "Build flat and rope strings, inspect their classification and compare them.",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "set path of configuration file")
	flags.String("identifiers.kind", config.TableMap, "identifier table kind: map or lru")
	flags.Int("identifiers.size", 4096, "capacity of an lru identifier table")
	flags.Duration("heap.collect_interval", 0, "run the heap collector periodically (0 disables it)")
	flags.String("log.level", "info", "set log level: error, warn, info or debug")
	flags.String("log.format", config.FormatText, "set log format: text or json")

	root.AddCommand(
		newInspectCommand(),
		newCompareCommand(),
		newReplCommand(),
		newVersionCommand(),
	)
	return root
}

// env is what a subcommand needs to build and manage strings.
type env struct {
	cfg    *config.Config
	logger logging.Logger
	rt     *value.Runtime
	heap   *heap.Heap
}

func newEnv(cmd *cobra.Command) (*env, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configFile, cmd.Root().PersistentFlags())
	if err != nil {
		return nil, err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, err
	}
	logger.SetOutput(cmd.ErrOrStderr())

	rt, err := cfg.NewRuntime(logger)
	if err != nil {
		return nil, fmt.Errorf("create runtime: %w", err)
	}

	logger.WithFields(map[string]any{
		"identifiers": cfg.Identifiers.Kind,
		"interval":    cfg.Heap.CollectInterval,
	}).Debug("runtime ready")

	return &env{
		cfg:    cfg,
		logger: logger,
		rt:     rt,
		heap:   cfg.NewHeap(rt, logger),
	}, nil
}

func (e *env) Close() {
	e.heap.StopCollector()
}

// build turns parts into a string: a flat string for one part, otherwise a
// left-leaning rope. Every created string is tracked by the heap. Callers run
// it inside heap.Mutate and root the result before leaving.
func (e *env) build(parts []string) *value.String {
	var s *value.String
	for _, p := range parts {
		leaf := e.rt.FromString(p)
		e.heap.Track(leaf)
		if s == nil {
			s = leaf
			continue
		}
		s = value.Concat(s, leaf)
		e.heap.Track(s)
	}
	if s == nil {
		s = e.rt.FromString("")
		e.heap.Track(s)
	}
	return s
}
