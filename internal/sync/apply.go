// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sync

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	cage_time "github.com/codeactual/treesync/internal/cage/time"
)

// copyRetries bounds transient I/O retries during the NEW/MOD copy step
// (spec.md §4.H, §7 taxonomy item 3).
const copyRetries = 9

// capacityHeadroom is the fraction of free space a run is allowed to
// consume (spec.md §4.H pre-check).
const capacityHeadroom = 0.95

// ProgressFunc receives cumulative bytes copied against the preflight total,
// invoked at each 20% step (spec.md §4.H "Progress").
type ProgressFunc func(sent, total int64)

// CapacityError reports that a run's projected NEW+MOD transfer would
// exceed the allowed fraction of free space on the target device.
type CapacityError struct {
	TotalBytes int64
	FreeBytes  uint64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("projected transfer of %d bytes exceeds %.0f%% of %d free bytes", e.TotalBytes, capacityHeadroom*100, e.FreeBytes)
}

// Apply implements spec.md §4.H. It assumes plan has already been through
// BuildPlan (and DetectMoves, where applicable) and that job.Mode.Applies()
// is true; the caller is expected to have already branched on mode, mirroring
// the CSV-only path for REVIEW/SYNCREVIEW.
func Apply(fs Filesystem, job Job, plan *Plan, log Logger, progress ProgressFunc) error {
	start := time.Now()

	totalBytes, needsClean := preflightTotals(plan)
	if needsClean && job.CleanPath == "" {
		return errors.New("clean_path is required for REMOVE or MOD operations")
	}

	if job.TargetPath != "" {
		free, err := fs.FreeBytes(job.TargetPath)
		if err != nil {
			return errors.Wrapf(err, "failed to determine free space for [%s]", job.TargetPath)
		}
		if float64(totalBytes) > capacityHeadroom*float64(free) {
			return &CapacityError{TotalBytes: totalBytes, FreeBytes: free}
		}
	}

	var sent int64
	lastStep := int64(-1)
	emit := func() {
		if progress == nil || totalBytes == 0 {
			return
		}
		step := sent * 5 / totalBytes // 20% granularity
		if step != lastStep {
			lastStep = step
			progress(sent, totalBytes)
		}
	}

	folders := make([]string, 0, len(plan.ScanFiles))
	for folder := range plan.ScanFiles {
		folders = append(folders, folder)
	}
	sort.Strings(folders)

	for _, folder := range folders {
		entries := plan.ScanFiles[folder]
		for i := range entries {
			e := &entries[i]
			if e.Classification != ClassNew && e.Classification != ClassMod {
				continue
			}

			targetPath := filepath.Join(e.TargetDir, e.Name)

			if e.Classification == ClassMod {
				if err := quarantine(fs, job, e.TargetDir, targetPath, e.Name); err != nil {
					return errors.Wrapf(err, "failed to quarantine prior version of [%s]", targetPath)
				}
			}

			if err := fs.EnsureDir(e.TargetDir); err != nil {
				return errors.Wrapf(err, "failed to create target folder [%s]", e.TargetDir)
			}

			sourcePath := filepath.Join(folder, e.Name)
			if err := copyWithRetry(fs, sourcePath, targetPath, log); err != nil {
				return errors.Wrapf(err, "failed to copy [%s] to [%s]", sourcePath, targetPath)
			}

			sent += e.Size
			emit()
		}
	}

	removeDirs := make([]string, 0, len(plan.RemoveMap))
	for dir := range plan.RemoveMap {
		removeDirs = append(removeDirs, dir)
	}
	sort.Strings(removeDirs)

	for _, dir := range removeDirs {
		for _, e := range plan.RemoveMap[dir] {
			sourcePath := filepath.Join(e.SourceDir, e.Name)

			switch e.Classification {
			case ClassMove:
				if err := fs.EnsureDir(e.TargetDir); err != nil {
					return errors.Wrapf(err, "failed to create move destination [%s]", e.TargetDir)
				}
				destPath := filepath.Join(e.TargetDir, e.Name)
				if err := fs.Rename(sourcePath, destPath); err != nil {
					return errors.Wrapf(err, "failed to move [%s] to [%s]", sourcePath, destPath)
				}
			case ClassRemove:
				if err := quarantine(fs, job, dir, sourcePath, e.Name); err != nil {
					return errors.Wrapf(err, "failed to quarantine [%s]", sourcePath)
				}
			}
		}
	}

	for _, r := range plan.Roots {
		if r.Parent != -1 || r.TargetPath == "" {
			continue
		}
		if _, err := fs.RemoveEmptyDirs(r.TargetPath); err != nil {
			return errors.Wrapf(err, "failed to prune empty folders under [%s]", r.TargetPath)
		}
	}

	if log != nil {
		log.Log(LogMessage, fmt.Sprintf("apply finished in %s", cage_time.DurationShort(time.Since(start))))
	}

	return nil
}

// preflightTotals sums NEW+MOD bytes and reports whether any REMOVE or MOD
// operation is present (spec.md §4.H pre-checks).
func preflightTotals(plan *Plan) (total int64, needsClean bool) {
	for _, entries := range plan.ScanFiles {
		for _, e := range entries {
			switch e.Classification {
			case ClassNew:
				total += e.Size
			case ClassMod:
				total += e.Size
				needsClean = true
			}
		}
	}
	for _, entries := range plan.RemoveMap {
		for _, e := range entries {
			if e.Classification == ClassRemove {
				needsClean = true
			}
		}
	}
	return total, needsClean
}

// copyWithRetry implements spec.md §4.H step 1's "up to 9 retries on
// exception" for the NEW/MOD copy.
func copyWithRetry(fs Filesystem, src, dst string, log Logger) error {
	var lastErr error
	for attempt := 0; attempt <= copyRetries; attempt++ {
		if attempt > 0 && log != nil {
			log.Log(LogWarning, fmt.Sprintf("retry %d/%d copying [%s]", attempt, copyRetries, src))
		}
		lastErr = fs.CopyFile(src, dst)
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

// quarantine implements spec.md §4.H "clean_file": relocate targetPath
// (named name, logically found under targetDir) into clean_path, mirroring
// targetDir's position relative to job.TargetPath, de-duplicating the
// destination filename with a "-NNN" suffix on collision.
func quarantine(fs Filesystem, job Job, targetDir, targetPath, name string) error {
	exists, err := fs.Exists(targetPath)
	if err != nil {
		return errors.Wrapf(err, "failed to check existence of [%s]", targetPath)
	}
	if !exists {
		return nil
	}

	rel, err := filepath.Rel(job.TargetPath, targetDir)
	if err != nil {
		rel = filepath.Base(targetDir)
	}
	destDir := filepath.Join(job.CleanPath, rel)

	if err := fs.EnsureDir(destDir); err != nil {
		return errors.Wrapf(err, "failed to create quarantine folder [%s]", destDir)
	}

	destName, err := dedupeName(fs, destDir, name)
	if err != nil {
		return err
	}

	return fs.Rename(targetPath, filepath.Join(destDir, destName))
}

// dedupeName implements spec.md §8 invariant 5: append "-001", "-002", ...
// before the extension until an unused name is found.
func dedupeName(fs Filesystem, destDir, name string) (string, error) {
	exists, err := fs.Exists(filepath.Join(destDir, name))
	if err != nil {
		return "", errors.Wrapf(err, "failed to check existence of [%s]", filepath.Join(destDir, name))
	}
	if !exists {
		return name, nil
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s-%03d%s", base, n, ext)
		exists, err := fs.Exists(filepath.Join(destDir, candidate))
		if err != nil {
			return "", errors.Wrapf(err, "failed to check existence of [%s]", candidate)
		}
		if !exists {
			return candidate, nil
		}
	}
}
