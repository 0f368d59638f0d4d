// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sync

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	cage_zap "github.com/codeactual/treesync/internal/cage/log/zap"
)

// FolderSetConditionKind is the tagged-variant discriminant for a parsed
// FolderSetRule condition (spec.md §3, §4.B).
type FolderSetConditionKind int

const (
	// FolderCondPath matches an exact, existing directory path.
	FolderCondPath FolderSetConditionKind = iota + 1
	// FolderCondNameGlob matches the folder's basename against a filemask.
	FolderCondNameGlob
	// FolderCondNameRegex matches the folder's basename against a regex,
	// falling back to a lowercased trailing-path-segment comparison.
	FolderCondNameRegex
	// FolderCondPathSuffix matches when the folder's lowercased path ends
	// with a lowercased trailing segment.
	FolderCondPathSuffix
	// FolderCondAlways always matches; used for TAG-only rules with no
	// other condition (spec.md §4.B).
	FolderCondAlways
)

// FolderSetRule is a single parsed folder-selection/tagging rule (spec.md §3).
type FolderSetRule struct {
	Kind FolderSetConditionKind

	// Path holds the resolved directory for FolderCondPath.
	Path string

	// Glob holds the filemask for FolderCondNameGlob.
	Glob string

	// Regex holds the compiled pattern for FolderCondNameRegex.
	Regex *regexp.Regexp

	// Suffix holds the lowercased, leading-separator form used by
	// FolderCondNameRegex (as a fallback) and FolderCondPathSuffix.
	Suffix string

	// Recurse controls whether a match also selects/tags every descendant
	// and halts further rule evaluation in that subtree. Default true.
	Recurse bool

	// Tag, if non-empty, is applied (uppercased) to matching folders.
	Tag string

	// Raw is the original rule string, kept for diagnostics.
	Raw string
}

// ParseFolderSetRule parses one pipe-delimited folder-set rule string
// (spec.md §4.B). root is the folder-set's origin, used to resolve
// root-relative PATH conditions.
func ParseFolderSetRule(raw, root string) (FolderSetRule, error) {
	rule := FolderSetRule{Recurse: true, Raw: raw}

	var condition string
	haveCondition := false

	for _, part := range splitPipe(raw) {
		upper := strings.ToUpper(part)
		switch {
		case upper == "RECURSE":
			rule.Recurse = true
		case upper == "NORECURSE":
			rule.Recurse = false
		case strings.HasPrefix(upper, "TAG=") && len(upper) > len("TAG="):
			rule.Tag = strings.ToUpper(strings.TrimPrefix(part, part[:4]))
		case !haveCondition:
			condition = part
			haveCondition = true
		default:
			return FolderSetRule{}, errors.Errorf("folder-set rule [%s] has more than one condition", raw)
		}
	}

	if !haveCondition {
		if rule.Tag == "" {
			return FolderSetRule{}, errors.Errorf("folder-set rule [%s] has no condition", raw)
		}
		rule.Kind = FolderCondAlways
		return rule, nil
	}

	if resolved, ok := resolveFolderPathCondition(condition, root); ok {
		rule.Kind = FolderCondPath
		rule.Path = resolved
		return rule, nil
	}

	if looksLikeGlob(condition) {
		rule.Kind = FolderCondNameGlob
		rule.Glob = condition
		return rule, nil
	}

	suffix := lowerSuffixForm(condition)

	if re, err := regexp.Compile(condition); err == nil {
		rule.Kind = FolderCondNameRegex
		rule.Regex = re
		rule.Suffix = suffix
		return rule, nil
	}

	rule.Kind = FolderCondPathSuffix
	rule.Suffix = suffix
	return rule, nil
}

// resolveFolderPathCondition attempts to interpret condition as an absolute
// or root-relative path that names an existing directory at or under root.
func resolveFolderPathCondition(condition, root string) (string, bool) {
	if !strings.ContainsAny(condition, `/\`) {
		return "", false
	}

	candidate := condition
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(root, candidate)
	}

	normalized, err := NormalizePath(candidate)
	if err != nil {
		return "", false
	}

	info, err := os.Stat(normalized)
	if err != nil || !info.IsDir() {
		return "", false
	}

	if normalized != root && !IsUnder(root, normalized, false) {
		return "", false
	}

	return normalized, true
}

// ParseFolderSetRules parses a list of rule strings, logging and dropping any
// that fail to parse (spec.md §4.B, §7 rule-parse warnings).
func ParseFolderSetRules(raws []string, root string, log *zap.Logger) []FolderSetRule {
	rules := make([]FolderSetRule, 0, len(raws))
	for _, raw := range raws {
		rule, err := ParseFolderSetRule(raw, root)
		if err != nil {
			if log != nil {
				log.Warn("dropped unparsable folder-set rule", cage_zap.Tag("rule"), zap.String("rule", raw), zap.Error(err))
			}
			continue
		}
		rules = append(rules, rule)
	}
	return rules
}

// folderMatchResult describes a single rule's verdict against a folder path.
type folderMatchResult struct {
	Matched bool
	Recurse bool
	Tag     string
}

// Evaluate reports whether rule matches path, and if so, whether the match
// recurses and which tag (if any) it carries.
func (rule FolderSetRule) Evaluate(path string) folderMatchResult {
	base := filepath.Base(path)

	matched := false
	switch rule.Kind {
	case FolderCondAlways:
		matched = true
	case FolderCondPath:
		matched = rule.Path == path
	case FolderCondNameGlob:
		ok, err := doublestar.Match(rule.Glob, base)
		matched = err == nil && ok
	case FolderCondNameRegex:
		if rule.Regex.MatchString(base) {
			matched = true
		} else if strings.HasSuffix(strings.ToLower(path), rule.Suffix) {
			matched = true
		}
	case FolderCondPathSuffix:
		matched = strings.HasSuffix(strings.ToLower(path), rule.Suffix)
	}

	if !matched {
		return folderMatchResult{}
	}

	return folderMatchResult{Matched: true, Recurse: rule.Recurse, Tag: rule.Tag}
}
