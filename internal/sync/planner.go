// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sync

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ConfigError accumulates every configuration problem found during
// validation (spec.md §7 taxonomy item 1): the run aborts once any are
// present, but every problem is reported, not just the first.
type ConfigError struct {
	Messages []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%d configuration error(s): %s", len(e.Messages), strings.Join(e.Messages, "; "))
}

func (e *ConfigError) add(format string, args ...interface{}) {
	e.Messages = append(e.Messages, fmt.Sprintf(format, args...))
}

func (e *ConfigError) any() bool {
	return len(e.Messages) > 0
}

// BuildPlan runs the full scan-planner sequence of spec.md §4.F and returns
// the resulting Plan, or a *ConfigError if validation fails.
func BuildPlan(job Job, fs Filesystem, log Logger) (*Plan, error) {
	cfgErr := &ConfigError{}

	roots := make([]*SourceRoot, 0, len(job.SourceRoots))
	for _, rc := range job.SourceRoots {
		path, err := NormalizePath(rc.Path)
		if err != nil {
			cfgErr.add("root [%s]: failed to normalize path [%s]: %s", rc.ID, rc.Path, err)
			continue
		}

		exists, err := fs.Exists(path)
		if err != nil {
			cfgErr.add("root [%s]: failed to check existence of [%s]: %s", rc.ID, path, err)
			continue
		}
		if !exists {
			cfgErr.add("root [%s]: path does not exist: %s", rc.ID, path)
			continue
		}

		roots = append(roots, &SourceRoot{
			ID:                  rc.ID,
			Path:                path,
			DefaultFilePolarity: rc.DefaultFilePolarity,
			ExcludeFolderRules:  ParseFolderSetRules(rc.ExcludeFolderRules, path, nil),
			FolderTagRules:      ParseFolderSetRules(rc.FolderTagRules, path, nil),
			IncludeFileRules:    ParseFileSetRules(rc.IncludeFileRules, nil),
			ExcludeFileRules:    ParseFileSetRules(rc.ExcludeFileRules, nil),
		})
	}

	if job.Mode.Applies() || job.Mode == ModeSyncReview {
		if job.CleanPath == "" {
			cfgErr.add("clean_path is required for mode %s", job.Mode)
		}
	}
	if job.Mode.Applies() && job.TargetPath != "" && job.CleanPath != "" {
		targetDevice, err := DeviceOf(job.TargetPath)
		if err != nil {
			cfgErr.add("failed to determine device of target_path [%s]: %s", job.TargetPath, err)
		}
		cleanDevice, err := DeviceOf(job.CleanPath)
		if err != nil {
			cfgErr.add("failed to determine device of clean_path [%s]: %s", job.CleanPath, err)
		}
		if targetDevice != "" && cleanDevice != "" && targetDevice != cleanDevice {
			cfgErr.add("clean_path [%s] and target_path [%s] must reside on the same device", job.CleanPath, job.TargetPath)
		}
	}

	if cfgErr.any() {
		return nil, cfgErr
	}

	buildHierarchy(roots)
	assignTargets(roots, job.TargetPath)

	targetByPath := map[string][]*SourceRoot{}
	if job.TargetPath != "" {
		for _, r := range roots {
			targetByPath[r.TargetPath] = append(targetByPath[r.TargetPath], r)
		}
		for target, owners := range targetByPath {
			if len(owners) > 1 {
				var ids []string
				for _, o := range owners {
					ids = append(ids, o.ID)
				}
				cfgErr.add("roots %s all map to target path [%s]", strings.Join(ids, ", "), target)
			}
		}
	}
	if cfgErr.any() {
		return nil, cfgErr
	}

	globalExclude := ParseFolderSetRules(job.GlobalExcludeRules, "", nil)

	childPaths := map[string]bool{}
	for _, r := range roots {
		for _, ci := range r.Children {
			childPaths[roots[ci].Path] = true
		}
	}

	plan := &Plan{
		Roots:     roots,
		ScanFiles: map[string][]FileEntry{},
		RemoveMap: map[string][]FileEntry{},
	}

	for _, r := range roots {
		excluded := map[string]bool{}
		for p := range childPaths {
			if IsUnder(r.Path, p, true) {
				excluded[p] = true
			}
		}
		if job.TargetPath != "" {
			excluded[mustNormalize(job.TargetPath)] = true
		}
		if job.CleanPath != "" {
			excluded[mustNormalize(job.CleanPath)] = true
		}

		if len(globalExclude) > 0 {
			matched, err := BuildFolderSet(fs, r.Path, globalExclude, nil, excluded)
			if err != nil {
				return nil, errors.Wrapf(err, "root [%s]: failed to materialize global exclude rules", r.ID)
			}
			for _, p := range matched.Folders {
				excluded[p] = true
			}
		}
		if len(r.ExcludeFolderRules) > 0 {
			matched, err := BuildFolderSet(fs, r.Path, r.ExcludeFolderRules, nil, excluded)
			if err != nil {
				return nil, errors.Wrapf(err, "root [%s]: failed to materialize exclude_folder_rules", r.ID)
			}
			for _, p := range matched.Folders {
				excluded[p] = true
			}
		}

		scanned, err := BuildFolderSet(fs, r.Path, nil, r.FolderTagRules, excluded)
		if err != nil {
			return nil, errors.Wrapf(err, "root [%s]: failed to build folder set", r.ID)
		}

		for _, folder := range scanned.Folders {
			r.ScanFolders = append(r.ScanFolders, ScanFolder{Path: folder, Tags: scanned.Tags[folder]})
		}

		for _, sf := range r.ScanFolders {
			files, err := BuildFileSet(fs, sf.Path, sf.Tags, r.DefaultFilePolarity, r.IncludeFileRules, r.ExcludeFileRules)
			if err != nil {
				return nil, errors.Wrapf(err, "root [%s]: failed to build file set for folder [%s]", r.ID, sf.Path)
			}

			targetDir := rootTargetDir(r, sf.Path)

			var entries []FileEntry
			for _, f := range files {
				class, err := classifyFile(fs, targetDir, f.Name, f.Size)
				if err != nil {
					return nil, err
				}
				entries = append(entries, FileEntry{
					Name:           f.Name,
					Size:           f.Size,
					Classification: class,
					SourceDir:      sf.Path,
					TargetDir:      targetDir,
				})
			}
			plan.ScanFiles[sf.Path] = entries
		}
	}

	if job.LogSkippedFiles {
		if err := collectSkips(fs, job, plan, log); err != nil {
			return nil, err
		}
	}

	if job.Mode.IsSync() {
		if err := collectRemoves(fs, job, plan, log); err != nil {
			return nil, err
		}
	}

	return plan, nil
}

func mustNormalize(p string) string {
	n, err := NormalizePath(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return n
}

// rootTargetDir maps a source folder under r to its mirrored location under
// r.TargetPath (spec.md §4.F step 6). Returns "" when the root carries no
// target (REVIEW without a target path).
func rootTargetDir(r *SourceRoot, sourceFolder string) string {
	if r.TargetPath == "" {
		return ""
	}
	rel, err := filepath.Rel(r.Path, sourceFolder)
	if err != nil || rel == "." {
		return r.TargetPath
	}
	return filepath.Join(r.TargetPath, rel)
}

// classifyFile implements spec.md §4.F step 6.
func classifyFile(fs Filesystem, targetDir, name string, sourceSize int64) (Classification, error) {
	if targetDir == "" {
		return ClassNew, nil
	}

	targetPath := filepath.Join(targetDir, name)
	exists, err := fs.Exists(targetPath)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to check target [%s]", targetPath)
	}
	if !exists {
		return ClassNew, nil
	}

	targetSize, err := fs.Size(targetPath)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to size target [%s]", targetPath)
	}
	if targetSize == sourceSize {
		return ClassSame, nil
	}
	return ClassMod, nil
}

// collectSkips implements spec.md §4.F step 7: a rule-blind walk of every
// top root's source path, recording files absent from the already-computed
// scan results.
func collectSkips(fs Filesystem, job Job, plan *Plan, log Logger) error {
	scanned := map[string]bool{}
	for folder, entries := range plan.ScanFiles {
		for _, e := range entries {
			scanned[filepath.Join(folder, e.Name)] = true
		}
	}

	for _, r := range plan.Roots {
		if r.Parent != -1 {
			continue
		}

		paths, err := fs.Walk(r.Path, true, true, false)
		if err != nil {
			return errors.Wrapf(err, "root [%s]: failed to walk for skip accounting", r.ID)
		}

		for _, p := range paths {
			if job.TargetPath != "" && IsUnder(mustNormalize(job.TargetPath), p, false) {
				continue
			}
			if job.CleanPath != "" && IsUnder(mustNormalize(job.CleanPath), p, false) {
				continue
			}
			if scanned[p] {
				continue
			}

			sz, err := fs.Size(p)
			if err != nil {
				return errors.Wrapf(err, "failed to size skipped file [%s]", p)
			}

			entry := FileEntry{
				Name:           filepath.Base(p),
				Size:           sz,
				Classification: ClassSkip,
				SourceDir:      filepath.Dir(p),
			}
			plan.SkipFiles = append(plan.SkipFiles, entry)
			if log != nil {
				log.Log(LogDetails, fmt.Sprintf("skip [%s]", p))
			}
		}
	}

	return nil
}

// collectRemoves implements spec.md §4.F step 8: a rule-blind walk of every
// top root's computed target tree, recording files absent from source scan
// results as candidates for quarantine.
func collectRemoves(fs Filesystem, job Job, plan *Plan, log Logger) error {
	scannedByTargetDir := map[string]map[string]bool{}
	for folder, entries := range plan.ScanFiles {
		r := rootOwning(plan.Roots, folder)
		if r == nil {
			continue
		}
		targetDir := rootTargetDir(r, folder)
		set, ok := scannedByTargetDir[targetDir]
		if !ok {
			set = map[string]bool{}
			scannedByTargetDir[targetDir] = set
		}
		for _, e := range entries {
			set[e.Name] = true
		}
	}

	for _, r := range plan.Roots {
		if r.Parent != -1 || r.TargetPath == "" {
			continue
		}

		paths, err := fs.Walk(r.TargetPath, true, true, false)
		if err != nil {
			return errors.Wrapf(err, "root [%s]: failed to walk target for remove accounting", r.ID)
		}

		for _, p := range paths {
			if job.CleanPath != "" && IsUnder(mustNormalize(job.CleanPath), p, false) {
				continue
			}

			dir := filepath.Dir(p)
			name := filepath.Base(p)
			if scannedByTargetDir[dir][name] {
				continue
			}

			sz, err := fs.Size(p)
			if err != nil {
				return errors.Wrapf(err, "failed to size remove candidate [%s]", p)
			}

			entry := FileEntry{
				Name:           name,
				Size:           sz,
				Classification: ClassRemove,
				SourceDir:      dir,
			}
			plan.RemoveMap[dir] = append(plan.RemoveMap[dir], entry)
			if log != nil {
				log.Log(LogDetails, fmt.Sprintf("remove [%s]", p))
			}
		}
	}

	return nil
}

// rootOwning returns the root whose source tree contains folder, preferring
// the most specific (deepest) match.
func rootOwning(roots []*SourceRoot, folder string) *SourceRoot {
	var best *SourceRoot
	bestLen := -1
	for _, r := range roots {
		if !IsUnder(r.Path, folder, true) {
			continue
		}
		if len(r.Path) > bestLen {
			bestLen = len(r.Path)
			best = r
		}
	}
	return best
}
