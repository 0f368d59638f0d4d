// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sync

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	cage_zap "github.com/codeactual/treesync/internal/cage/log/zap"
)

// FileSetConditionKind is the tagged-variant discriminant for a single
// conjunctive condition inside a FileSetRule (spec.md §3, §4.B).
type FileSetConditionKind int

const (
	FileCondNameGlob FileSetConditionKind = iota + 1
	FileCondNameRegex
	FileCondHasTag
	FileCondNotHasTag
	FileCondNoTags
	FileCondParentNameGlob
	FileCondSizeGT
	FileCondSizeLT
)

// FileSetCondition is one AND-ed term of a FileSetRule.
type FileSetCondition struct {
	Kind  FileSetConditionKind
	Glob  string
	Regex *regexp.Regexp
	Tag   string
	Bytes int64
}

// FileSetRule is an ordered conjunction of conditions; a file-set is a
// disjunction of FileSetRule values (spec.md §3).
type FileSetRule struct {
	Conditions []FileSetCondition
	Raw        string
}

// ParseFileSetRule parses one pipe-delimited file-set rule string (spec.md §4.B).
func ParseFileSetRule(raw string) (FileSetRule, error) {
	rule := FileSetRule{Raw: raw}

	for _, part := range splitPipe(raw) {
		cond, err := parseFileSetCondition(part)
		if err != nil {
			return FileSetRule{}, errors.Wrapf(err, "file-set rule [%s]", raw)
		}
		rule.Conditions = append(rule.Conditions, cond)
	}

	return rule, nil
}

func parseFileSetCondition(part string) (FileSetCondition, error) {
	if strings.EqualFold(strings.TrimSpace(part), "NO_TAG") {
		return FileSetCondition{Kind: FileCondNoTags}, nil
	}

	key, value, hasKey := splitKeyValue(part)
	if hasKey {
		switch strings.ToUpper(key) {
		case "REGEX":
			re, err := regexp.Compile(value)
			if err != nil {
				return FileSetCondition{}, errors.Wrapf(err, "failed to compile regex [%s]", value)
			}
			return FileSetCondition{Kind: FileCondNameRegex, Regex: re}, nil
		case "TAG":
			return FileSetCondition{Kind: FileCondHasTag, Tag: strings.ToUpper(value)}, nil
		case "NTAG":
			return FileSetCondition{Kind: FileCondNotHasTag, Tag: strings.ToUpper(value)}, nil
		case "NO_TAG":
			return FileSetCondition{Kind: FileCondNoTags}, nil
		case "PARENT":
			return FileSetCondition{Kind: FileCondParentNameGlob, Glob: strings.ToLower(value)}, nil
		case "SIZE_GT":
			bytes, err := ParseBytes(value)
			if err != nil {
				return FileSetCondition{}, errors.Wrapf(err, "failed to parse SIZE_GT")
			}
			return FileSetCondition{Kind: FileCondSizeGT, Bytes: bytes}, nil
		case "SIZE_LT":
			bytes, err := ParseBytes(value)
			if err != nil {
				return FileSetCondition{}, errors.Wrapf(err, "failed to parse SIZE_LT")
			}
			return FileSetCondition{Kind: FileCondSizeLT, Bytes: bytes}, nil
		}
	}

	if looksLikeGlob(part) {
		return FileSetCondition{Kind: FileCondNameGlob, Glob: part}, nil
	}

	re, err := regexp.Compile(part)
	if err != nil {
		return FileSetCondition{}, errors.Wrapf(err, "failed to compile condition [%s] as glob or regex", part)
	}
	return FileSetCondition{Kind: FileCondNameRegex, Regex: re}, nil
}

// splitKeyValue splits a "KEY:VALUE" or "KEY=VALUE" condition part at the
// first colon or equals sign, whichever comes first.
func splitKeyValue(part string) (key, value string, ok bool) {
	colon := strings.Index(part, ":")
	equals := strings.Index(part, "=")

	sep := -1
	switch {
	case colon == -1:
		sep = equals
	case equals == -1:
		sep = colon
	default:
		if colon < equals {
			sep = colon
		} else {
			sep = equals
		}
	}

	if sep == -1 {
		return "", "", false
	}

	return strings.TrimSpace(part[:sep]), strings.TrimSpace(part[sep+1:]), true
}

// ParseFileSetRules parses a list of rule strings, logging and dropping any
// that fail to parse (spec.md §4.B, §7 rule-parse warnings).
func ParseFileSetRules(raws []string, log *zap.Logger) []FileSetRule {
	rules := make([]FileSetRule, 0, len(raws))
	for _, raw := range raws {
		rule, err := ParseFileSetRule(raw)
		if err != nil {
			if log != nil {
				log.Warn("dropped unparsable file-set rule", cage_zap.Tag("rule"), zap.String("rule", raw), zap.Error(err))
			}
			continue
		}
		rules = append(rules, rule)
	}
	return rules
}

// fileSizer retrieves a file's size lazily; Matches calls it at most once per
// rule evaluation for a given file (spec.md §4.D: "SIZE_* retrieve the file
// size lazily").
type fileSizer func() (int64, bool)

// Matches reports whether every condition in rule is satisfied for the file
// named name inside folder parentDir, which carries the given tag set.
func (rule FileSetRule) Matches(name, parentDir string, tags map[string]bool, size fileSizer) bool {
	var cachedSize int64
	var sizeKnown, sizeErr bool

	getSize := func() (int64, bool) {
		if !sizeKnown {
			cachedSize, sizeErr = size()
			sizeKnown = true
		}
		return cachedSize, sizeErr
	}

	for _, cond := range rule.Conditions {
		switch cond.Kind {
		case FileCondNameGlob:
			ok, err := doublestar.Match(cond.Glob, name)
			if err != nil || !ok {
				return false
			}
		case FileCondNameRegex:
			if !cond.Regex.MatchString(name) {
				return false
			}
		case FileCondHasTag:
			if !tags[cond.Tag] {
				return false
			}
		case FileCondNotHasTag:
			if tags[cond.Tag] {
				return false
			}
		case FileCondNoTags:
			if len(tags) > 0 {
				return false
			}
		case FileCondParentNameGlob:
			ok, err := doublestar.Match(cond.Glob, strings.ToLower(filepath.Base(parentDir)))
			if err != nil || !ok {
				return false
			}
		case FileCondSizeGT:
			sz, ok := getSize()
			if !ok || sz <= cond.Bytes {
				return false
			}
		case FileCondSizeLT:
			sz, ok := getSize()
			if !ok || sz > cond.Bytes {
				return false
			}
		default:
			return false
		}
	}

	return true
}
