// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sync

import "fmt"

// Mode selects how far a run carries its plan (spec.md §3).
type Mode int

const (
	ModeReview Mode = iota + 1
	ModeSyncReview
	ModeBackup
	ModeSync
)

func (m Mode) String() string {
	switch m {
	case ModeReview:
		return "REVIEW"
	case ModeSyncReview:
		return "SYNCREVIEW"
	case ModeBackup:
		return "BACKUP"
	case ModeSync:
		return "SYNC"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// IsSync reports whether m carries SYNC-only semantics (REMOVE collection,
// move detection, quarantine) per spec.md §4.F step 8 and §4.G.
func (m Mode) IsSync() bool {
	return m == ModeSync || m == ModeSyncReview
}

// Applies reports whether m executes the plan against disk (spec.md §4.H),
// as opposed to only writing a CSV report.
func (m Mode) Applies() bool {
	return m == ModeBackup || m == ModeSync
}

// Classification is the label attached to a (folder, name) pair in the plan
// (spec.md §3, GLOSSARY). The INTERNAL_ prefixed values never reach a CSV
// row or execution step; they exist only to let the move detector retire an
// entry in place (spec.md §9 design notes).
type Classification int

const (
	ClassNew Classification = iota + 1
	ClassMod
	ClassSame
	ClassSkip
	ClassRemove
	ClassMove
	ClassInternalMoved
	ClassInternalCleaned
)

func (c Classification) String() string {
	switch c {
	case ClassNew:
		return "NEW"
	case ClassMod:
		return "MOD"
	case ClassSame:
		return "SAME"
	case ClassSkip:
		return "SKIP"
	case ClassRemove:
		return "REMOVE"
	case ClassMove:
		return "MOVE"
	case ClassInternalMoved:
		return "*INTERNAL_MOVED"
	case ClassInternalCleaned:
		return "*INTERNAL_CLEANED"
	default:
		return fmt.Sprintf("Classification(%d)", int(c))
	}
}

// Internal reports whether c is one of the sentinel classifications the move
// detector uses to retire an entry without deleting it from its slice
// (spec.md §6: "classification begins with *").
func (c Classification) Internal() bool {
	return c == ClassInternalMoved || c == ClassInternalCleaned
}

// Polarity is a file-set's default disposition before include/exclude rules
// are applied (spec.md §3, §4.D).
type Polarity int

const (
	PolarityInclude Polarity = iota + 1
	PolarityExclude
)

// FileEntry is one (name, size, classification) row inside a folder's scan
// results, or a synthetic entry in the plan's global remove map (spec.md
// §3). TargetDir is the mirrored target folder for scan entries and the
// destination folder for MOVE entries; REMOVE entries leave it empty.
type FileEntry struct {
	Name           string
	Size           int64
	Classification Classification
	SourceDir      string
	TargetDir      string
}

// RootConfig is the externally supplied, pre-resolution description of one
// source root (spec.md §3 SourceRoot, before rule strings are parsed and
// before hierarchy/target assignment run).
type RootConfig struct {
	ID                  string
	Path                string
	ExcludeFolderRules  []string
	FolderTagRules      []string
	IncludeFileRules    []string
	ExcludeFileRules    []string
	DefaultFilePolarity Polarity
}

// Job is the immutable input to a run (spec.md §3). Every field is resolved
// (rule-block references expanded, paths yet to be normalized) by the
// caller before BuildPlan is invoked.
type Job struct {
	Mode                 Mode
	TargetPath            string
	CleanPath             string
	SourceRoots           []RootConfig
	GlobalExcludeRules    []string
	LogSkippedFiles       bool
	MoveDetectionEnabled  bool
	CSVOutputPath         string
}

// Plan is the output of a scan (spec.md §3, §4.F). ScanFiles is keyed by
// source folder path; the entries it holds already exclude SKIP/REMOVE
// rows, which live in the two global slices instead.
type Plan struct {
	Roots      []*SourceRoot
	ScanFiles  map[string][]FileEntry
	SkipFiles  []FileEntry
	RemoveMap  map[string][]FileEntry
}

// Summary tallies classifications across every entry the plan holds,
// skipping internal sentinels (spec.md §8 S1-S6 scenario assertions are
// phrased in terms of counts like these).
type Summary struct {
	New, Mod, Same, Skip, Remove, Move int
}

func (p *Plan) Summary() Summary {
	var s Summary
	tally := func(c Classification) {
		switch c {
		case ClassNew:
			s.New++
		case ClassMod:
			s.Mod++
		case ClassSame:
			s.Same++
		case ClassSkip:
			s.Skip++
		case ClassRemove:
			s.Remove++
		case ClassMove:
			s.Move++
		}
	}

	for _, entries := range p.ScanFiles {
		for _, e := range entries {
			tally(e.Classification)
		}
	}
	for _, e := range p.SkipFiles {
		tally(e.Classification)
	}
	for _, entries := range p.RemoveMap {
		for _, e := range entries {
			tally(e.Classification)
		}
	}

	return s
}
