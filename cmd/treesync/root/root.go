// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Root command treesync plans (and optionally applies) a one-shot
// comparison of configured source roots against a target tree.
//
// Usage:
//
//	treesync run --config /path/to/job.yaml
package root

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codeactual/treesync/internal/sync"
)

// NewCommand returns the treesync root command. It carries no Run of its
// own; every mode of operation is a sub-command (run, review).
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "treesync",
		Short: "Plan and apply a declarative directory-tree sync",
		Example: strings.Join([]string{
			"treesync run --config /path/to/job.yaml",
			"treesync review --config /path/to/job.yaml",
		}, "\n"),
	}
}

// NewLogger builds the zap logger shared by every sub-command. Verbose
// selects development-mode (human-readable, debug-level) output over the
// default JSON production encoder.
func NewLogger(verbose bool) *zap.Logger {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %s\n", err)
		os.Exit(1)
	}
	return logger
}

// ReadJob reads and resolves the job file named by configPath, exiting the
// process on configuration error (spec.md §7 taxonomy item 1).
func ReadJob(configPath string) sync.Job {
	job, err := sync.ReadJobFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read job file [%s]: %s\n", configPath, err)
		os.Exit(1)
	}
	return job
}
