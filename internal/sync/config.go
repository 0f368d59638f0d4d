// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sync

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// RootFile is one source root as it appears in a job file, before rule-block
// references are resolved (spec.md §6: "the rules fields accept either
// inline strings/lists or references to named rule blocks").
type RootFile struct {
	ID                  string
	Path                string
	ExcludeFolderRules  []string
	ExcludeFolderRef    string
	FolderTagRules      []string
	FolderTagRef        string
	IncludeFileRules    []string
	IncludeFileRef      string
	ExcludeFileRules    []string
	ExcludeFileRef      string
	DefaultFilePolarity string
}

// JobFile is the raw, viper-unmarshaled shape of a job configuration file.
// ReadJobFile resolves it into a Job the core consumes.
type JobFile struct {
	Mode                 string
	TargetPath            string
	CleanPath             string
	SourceRoots           []RootFile
	GlobalExcludeRules    []string
	GlobalExcludeRef      string
	LogSkippedFiles       bool
	MoveDetectionEnabled  bool
	CSVOutputPath         string

	// RuleBlocks holds named, reusable rule lists referenced by *Ref fields
	// above (spec.md §6 rule-block references).
	RuleBlocks map[string][]string

	// DefaultPolarity names the fallback default_file_polarity for any root
	// that omits one (supplemented feature: original source's per-root
	// default_file_polarity fallback).
	DefaultPolarity string
}

// ReadJobFile reads a viper-compatible config file (YAML/TOML/JSON, selected
// by extension) and resolves it into a Job.
func ReadJobFile(path string) (Job, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Job{}, errors.Wrapf(err, "failed to read job file [%s]", path)
	}

	var jf JobFile
	if err := v.Unmarshal(&jf); err != nil {
		return Job{}, errors.Wrapf(err, "failed to unmarshal job file [%s]", path)
	}

	return ResolveJobFile(jf)
}

// ResolveJobFile resolves rule-block references and default-polarity
// fallbacks, turning the raw file shape into a Job (spec.md §6).
func ResolveJobFile(jf JobFile) (Job, error) {
	cfgErr := &ConfigError{}

	mode, err := parseMode(jf.Mode)
	if err != nil {
		cfgErr.add("%s", err)
	}

	resolve := func(inline []string, ref string) []string {
		if ref == "" {
			return inline
		}
		block, ok := jf.RuleBlocks[ref]
		if !ok {
			cfgErr.add("unresolved rule block reference [%s]", ref)
			return inline
		}
		return append(append([]string{}, inline...), block...)
	}

	job := Job{
		Mode:                 mode,
		TargetPath:           jf.TargetPath,
		CleanPath:            jf.CleanPath,
		GlobalExcludeRules:   resolve(jf.GlobalExcludeRules, jf.GlobalExcludeRef),
		LogSkippedFiles:      jf.LogSkippedFiles,
		MoveDetectionEnabled: jf.MoveDetectionEnabled,
		CSVOutputPath:        jf.CSVOutputPath,
	}

	defaultPolarity := PolarityInclude
	if strings.EqualFold(jf.DefaultPolarity, "EXCLUDE") {
		defaultPolarity = PolarityExclude
	}

	seenIDs := map[string]bool{}
	for _, rf := range jf.SourceRoots {
		if rf.ID == "" {
			cfgErr.add("a source root is missing an id")
			continue
		}
		if seenIDs[rf.ID] {
			cfgErr.add("duplicate source root id [%s]", rf.ID)
			continue
		}
		seenIDs[rf.ID] = true

		polarity := defaultPolarity
		switch strings.ToUpper(rf.DefaultFilePolarity) {
		case "INCLUDE":
			polarity = PolarityInclude
		case "EXCLUDE":
			polarity = PolarityExclude
		case "":
		default:
			cfgErr.add("root [%s]: invalid default_file_polarity [%s]", rf.ID, rf.DefaultFilePolarity)
		}

		job.SourceRoots = append(job.SourceRoots, RootConfig{
			ID:                  rf.ID,
			Path:                rf.Path,
			DefaultFilePolarity: polarity,
			ExcludeFolderRules:  resolve(rf.ExcludeFolderRules, rf.ExcludeFolderRef),
			FolderTagRules:      resolve(rf.FolderTagRules, rf.FolderTagRef),
			IncludeFileRules:    resolve(rf.IncludeFileRules, rf.IncludeFileRef),
			ExcludeFileRules:    resolve(rf.ExcludeFileRules, rf.ExcludeFileRef),
		})
	}

	if len(job.SourceRoots) == 0 {
		cfgErr.add("source_roots must not be empty")
	}

	if cfgErr.any() {
		return Job{}, cfgErr
	}

	return job, nil
}

func parseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "REVIEW":
		return ModeReview, nil
	case "SYNCREVIEW":
		return ModeSyncReview, nil
	case "BACKUP":
		return ModeBackup, nil
	case "SYNC":
		return ModeSync, nil
	default:
		return 0, errors.Errorf("invalid mode [%s]", s)
	}
}
