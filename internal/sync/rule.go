// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sync implements the declarative directory-tree synchronizer core:
// rule parsing (§4.B), folder/file set materialization (§4.C, §4.D), the
// scan planner (§4.F), move detection (§4.G), and the apply engine (§4.H).
package sync

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// invalidFilenameChars matches characters that cannot appear in a filemask,
// the same set the rule language uses to tell a glob from a regex/path
// fragment apart (spec.md §4.B).
var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|\x00-\x1F]`)

// looksLikeGlob reports whether s could be a filemask: it contains none of
// the characters that are illegal in a single path component.
func looksLikeGlob(s string) bool {
	return !invalidFilenameChars.MatchString(s)
}

// splitPipe splits a rule string on "|", trims whitespace, and drops empty
// parts.
func splitPipe(s string) []string {
	raw := strings.Split(s, "|")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// byteSizeSuffixes maps a case-insensitive unit suffix to its byte multiplier.
var byteSizeSuffixes = []struct {
	suffix string
	mult   int64
}{
	{"GB", 1024 * 1024 * 1024},
	{"MB", 1024 * 1024},
	{"KB", 1024},
	{"B", 1},
}

// ParseBytes parses a byte-size string such as "10MB", "512", or "2GB" into
// its integer byte count. Suffixes are case-insensitive; a bare number is
// interpreted as bytes.
func ParseBytes(s string) (int64, error) {
	trimmed := strings.TrimSpace(s)
	upper := strings.ToUpper(trimmed)

	for _, unit := range byteSizeSuffixes {
		if strings.HasSuffix(upper, unit.suffix) {
			numPart := strings.TrimSpace(trimmed[:len(trimmed)-len(unit.suffix)])
			if numPart == "" {
				continue
			}
			n, err := strconv.ParseFloat(numPart, 64)
			if err != nil {
				return 0, errors.Wrapf(err, "failed to parse byte size [%s]", s)
			}
			return int64(n * float64(unit.mult)), nil
		}
	}

	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse byte size [%s]", s)
	}
	return n, nil
}

// lowerSuffixForm normalizes a folder-rule condition into the lowercased,
// leading-separator form used for PATH_SUFFIX and NAME_REGEX fallback
// matching (spec.md §4.B "lastly").
func lowerSuffixForm(s string) string {
	sep := string(filepath.Separator)
	normalized := strings.ReplaceAll(s, "/", sep)
	normalized = strings.ReplaceAll(normalized, `\`, sep)
	normalized = strings.ToLower(normalized)
	if !strings.HasPrefix(normalized, sep) {
		normalized = sep + normalized
	}
	return normalized
}
