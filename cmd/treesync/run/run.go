// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Sub-command run plans a job and, for BACKUP/SYNC modes, applies it.
//
// Usage:
//
//	treesync run --config /path/to/job.yaml
package run

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/structs"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cage_time "github.com/codeactual/treesync/internal/cage/time"
	"github.com/codeactual/treesync/internal/sync"
	root_cmd "github.com/codeactual/treesync/cmd/treesync/root"
)

// NewCommand returns the run sub-command.
func NewCommand() *cobra.Command {
	var configPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Plan (and, for BACKUP/SYNC, apply) a job",
		Example: strings.Join([]string{
			"treesync run --config /path/to/job.yaml",
		}, "\n"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(configPath, verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "viper-readable job file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable development-mode logging")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runJob(configPath string, verbose bool) error {
	runID := ksuid.New()
	start := time.Now()

	logger := root_cmd.NewLogger(verbose)
	defer logger.Sync() //nolint:errcheck

	log := sync.ZapLogger{Base: logger, Tag: "run"}
	log.Log(sync.LogMessage, fmt.Sprintf("run %s starting", runID))

	job := root_cmd.ReadJob(configPath)
	fs := sync.OSFilesystem{}

	logger.Debug("resolved job", zap.String("runId", runID.String()), zap.Any("job", structs.Map(job)))

	plan, err := sync.BuildPlan(job, fs, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run %s: configuration error: %s\n", runID, err)
		os.Exit(1)
	}

	if job.Mode.IsSync() && job.MoveDetectionEnabled {
		if err := sync.DetectMoves(fs, job.CleanPath, plan, log); err != nil {
			return err
		}
	}

	if job.CSVOutputPath != "" {
		f, err := os.Create(job.CSVOutputPath) // #nosec G304
		if err != nil {
			return err
		}
		w := sync.NewCSVWriter(f)
		if err := sync.WritePlanRows(plan, w); err != nil {
			f.Close() //nolint:errcheck
			return err
		}
		if err := w.Flush(); err != nil {
			f.Close() //nolint:errcheck
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	summary := plan.Summary()
	log.Log(sync.LogMessage, fmt.Sprintf(
		"scan complete: new=%d mod=%d same=%d skip=%d remove=%d move=%d",
		summary.New, summary.Mod, summary.Same, summary.Skip, summary.Remove, summary.Move,
	))

	if job.Mode.Applies() {
		progress := func(sent, total int64) {
			log.Log(sync.LogDetails, fmt.Sprintf("progress: %d/%d bytes", sent, total))
		}
		if err := sync.Apply(fs, job, plan, log, progress); err != nil {
			fmt.Fprintf(os.Stderr, "run %s: apply failed: %s\n", runID, err)
			os.Exit(1)
		}
	}

	log.Log(sync.LogMessage, fmt.Sprintf("run %s finished in %s", runID, cage_time.DurationShort(time.Since(start))))

	return nil
}
