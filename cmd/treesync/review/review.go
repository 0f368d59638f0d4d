// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Sub-command review plans a job without applying it and displays the
// resulting classifications in an interactive table, for REVIEW and
// SYNCREVIEW modes.
//
// Usage:
//
//	treesync review --config /path/to/job.yaml
package review

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/gdamore/tcell"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"

	root_cmd "github.com/codeactual/treesync/cmd/treesync/root"
	"github.com/codeactual/treesync/internal/sync"
)

// NewCommand returns the review sub-command.
func NewCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Plan a job and browse its classifications interactively",
		Example: strings.Join([]string{
			"treesync review --config /path/to/job.yaml",
		}, "\n"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reviewJob(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "viper-readable job file")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func reviewJob(configPath string) error {
	logger := root_cmd.NewLogger(false)
	defer logger.Sync() //nolint:errcheck

	log := sync.ZapLogger{Base: logger, Tag: "review"}

	job := root_cmd.ReadJob(configPath)
	fs := sync.OSFilesystem{}

	plan, err := sync.BuildPlan(job, fs, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %s\n", err)
		os.Exit(1)
	}

	if job.Mode.IsSync() && job.MoveDetectionEnabled {
		if err := sync.DetectMoves(fs, job.CleanPath, plan, log); err != nil {
			return err
		}
	}

	return Browse(plan)
}

// planRow is a flattened row of plan content, shaped for table display.
type planRow struct {
	root, name, size, status, sourceDir, targetDir string
}

func rowsFromPlan(plan *sync.Plan) []planRow {
	var rows []planRow

	folders := make([]string, 0, len(plan.ScanFiles))
	for folder := range plan.ScanFiles {
		folders = append(folders, folder)
	}
	sort.Strings(folders)

	for _, folder := range folders {
		for _, e := range plan.ScanFiles[folder] {
			if e.Classification.Internal() {
				continue
			}
			rows = append(rows, planRow{
				name: e.Name, size: strconv.FormatInt(e.Size, 10),
				status: e.Classification.String(), sourceDir: e.SourceDir, targetDir: e.TargetDir,
			})
		}
	}

	for _, e := range plan.SkipFiles {
		rows = append(rows, planRow{name: e.Name, size: strconv.FormatInt(e.Size, 10), status: "SKIP", sourceDir: e.SourceDir})
	}

	dirs := make([]string, 0, len(plan.RemoveMap))
	for dir := range plan.RemoveMap {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	for _, dir := range dirs {
		for _, e := range plan.RemoveMap[dir] {
			if e.Classification.Internal() {
				continue
			}
			rows = append(rows, planRow{
				name: e.Name, size: strconv.FormatInt(e.Size, 10),
				status: e.Classification.String(), sourceDir: dir, targetDir: e.TargetDir,
			})
		}
	}

	return rows
}

// Browse renders plan as a scrollable table and blocks until the user quits
// with 'q' or Ctrl-C.
func Browse(plan *sync.Plan) error {
	rows := rowsFromPlan(plan)

	table := tview.NewTable().SetBorders(false).SetFixed(1, 0).SetSelectable(true, false)

	headers := []string{"Name", "Size", "Status", "Source", "Target"}
	for col, h := range headers {
		table.SetCell(0, col, tview.NewTableCell(h).SetTextColor(tcell.ColorYellow).SetSelectable(false))
	}

	for r, row := range rows {
		table.SetCell(r+1, 0, tview.NewTableCell(row.name))
		table.SetCell(r+1, 1, tview.NewTableCell(row.size))
		table.SetCell(r+1, 2, tview.NewTableCell(row.status))
		table.SetCell(r+1, 3, tview.NewTableCell(row.sourceDir))
		table.SetCell(r+1, 4, tview.NewTableCell(row.targetDir))
	}

	summary := plan.Summary()
	footer := tview.NewTextView().SetText(fmt.Sprintf(
		"new=%d mod=%d same=%d skip=%d remove=%d move=%d  (q to quit)",
		summary.New, summary.Mod, summary.Same, summary.Skip, summary.Remove, summary.Move,
	))

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(table, 0, 1, true).
		AddItem(footer, 1, 0, false)

	app := tview.NewApplication().SetRoot(layout, true).SetFocus(table)
	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return event
	})

	return app.Run()
}
