// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sync

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// RowSink is the external collaborator CSV rows are written through
// (spec.md §6). The core only ever produces []string rows; how they reach
// disk is someone else's concern.
type RowSink interface {
	WriteRow(fields []string) error
}

// csvHeader matches spec.md §6 exactly, including its two "Source" columns.
var csvHeader = []string{"Source", "File", "Size", "Status", "Source", "Target"}

// WritePlanRows emits the header plus one row per non-internal plan entry
// (spec.md §6). Scan-result rows come first in root/folder order, then skip
// rows, then remove-map rows, giving deterministic output for a fixed plan.
func WritePlanRows(plan *Plan, sink RowSink) error {
	if err := sink.WriteRow(csvHeader); err != nil {
		return errors.WithStack(err)
	}

	folders := make([]string, 0, len(plan.ScanFiles))
	for folder := range plan.ScanFiles {
		folders = append(folders, folder)
	}
	sort.Strings(folders)

	for _, folder := range folders {
		r := rootOwning(plan.Roots, folder)
		rootID := ""
		if r != nil {
			rootID = r.ID
		}
		for _, e := range plan.ScanFiles[folder] {
			if e.Classification.Internal() {
				continue
			}
			if err := sink.WriteRow([]string{
				rootID, e.Name, strconv.FormatInt(e.Size, 10), e.Classification.String(), e.SourceDir, e.TargetDir,
			}); err != nil {
				return errors.WithStack(err)
			}
		}
	}

	for _, e := range plan.SkipFiles {
		r := rootOwning(plan.Roots, e.SourceDir)
		rootID := ""
		if r != nil {
			rootID = r.ID
		}
		if err := sink.WriteRow([]string{
			rootID, e.Name, strconv.FormatInt(e.Size, 10), "SKIP", e.SourceDir, "",
		}); err != nil {
			return errors.WithStack(err)
		}
	}

	removeDirs := make([]string, 0, len(plan.RemoveMap))
	for dir := range plan.RemoveMap {
		removeDirs = append(removeDirs, dir)
	}
	sort.Strings(removeDirs)

	for _, dir := range removeDirs {
		for _, e := range plan.RemoveMap[dir] {
			if e.Classification.Internal() {
				continue
			}
			r := rootOwning(plan.Roots, dir)
			rootID := ""
			if r != nil {
				rootID = r.ID
			}
			moveTarget := ""
			if e.Classification == ClassMove {
				moveTarget = e.TargetDir
			}
			if err := sink.WriteRow([]string{
				rootID, e.Name, strconv.FormatInt(e.Size, 10), e.Classification.String(), dir, moveTarget,
			}); err != nil {
				return errors.WithStack(err)
			}
		}
	}

	return nil
}

// CSVWriter adapts encoding/csv to RowSink. encoding/csv quotes a field
// whenever it contains a comma, a quote, a newline, or leading whitespace, a
// superset of spec.md §6's comma-only rule; every comma-only case it
// specifies is still quoted, so the wider trigger set is additive, not a
// behavior gap.
type CSVWriter struct {
	w *csv.Writer
}

var _ RowSink = (*CSVWriter)(nil)

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

func (c *CSVWriter) WriteRow(fields []string) error {
	if err := c.w.Write(fields); err != nil {
		return errors.Wrapf(err, "failed to write CSV row %v", fields)
	}
	return nil
}

func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return errors.WithStack(c.w.Error())
}
