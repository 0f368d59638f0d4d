// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sync

import (
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// cleanKey identifies a clean-area file by the same (name, size) pair the
// move detector matches on.
type cleanKey struct {
	name string
	size int64
}

// DetectMoves implements spec.md §4.G. It runs only for SYNC/SYNCREVIEW with
// move detection enabled; callers are expected to guard that, mirroring
// BuildPlan's own mode checks, so this function itself stays unconditional
// and testable in isolation.
func DetectMoves(fs Filesystem, cleanPath string, plan *Plan, log Logger) error {
	cleanInventory := map[cleanKey]string{}
	if cleanPath != "" {
		paths, err := fs.Walk(cleanPath, true, true, false)
		if err != nil {
			return errors.Wrapf(err, "failed to walk clean_path [%s] for move detection", cleanPath)
		}
		for _, p := range paths {
			sz, err := fs.Size(p)
			if err != nil {
				return errors.Wrapf(err, "failed to size clean entry [%s]", p)
			}
			key := cleanKey{name: filepath.Base(p), size: sz}
			if _, exists := cleanInventory[key]; !exists {
				cleanInventory[key] = filepath.Dir(p)
			}
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
			entry := &entries[i]
			if entry.Classification != ClassNew {
				continue
			}

			destDir := entry.TargetDir

			if found := rewriteRemoveAsMove(plan, entry.Name, entry.Size, destDir); found {
				entry.Classification = ClassInternalMoved
				if log != nil {
					log.Log(LogDetails, "move detected: remove/new pair "+entry.Name)
				}
				continue
			}

			key := cleanKey{name: entry.Name, size: entry.Size}
			cleanDir, hit := cleanInventory[key]
			if !hit {
				continue
			}
			delete(cleanInventory, key)

			plan.RemoveMap[cleanDir] = append(plan.RemoveMap[cleanDir], FileEntry{
				Name:           entry.Name,
				Size:           entry.Size,
				Classification: ClassMove,
				SourceDir:      cleanDir,
				TargetDir:      destDir,
			})
			entry.Classification = ClassInternalMoved
			if log != nil {
				log.Log(LogDetails, "move detected: clean-area hit "+entry.Name)
			}
		}
	}

	return nil
}

// rewriteRemoveAsMove searches plan's REMOVE map, in folder-iteration order,
// for a REMOVE entry matching (name, size); on the first hit it rewrites
// that entry to MOVE with the given destination and reports success.
func rewriteRemoveAsMove(plan *Plan, name string, size int64, destDir string) bool {
	dirs := make([]string, 0, len(plan.RemoveMap))
	for dir := range plan.RemoveMap {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		entries := plan.RemoveMap[dir]
		for i := range entries {
			e := &entries[i]
			if e.Classification != ClassRemove {
				continue
			}
			if e.Name == name && e.Size == size {
				e.Classification = ClassMove
				e.TargetDir = destDir
				return true
			}
		}
	}

	return false
}
