// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sync

import "path/filepath"

// ScannedFile is one immediate file under an in-scope folder, already
// filtered per spec.md §4.D but not yet classified against the target tree.
type ScannedFile struct {
	Name string
	Size int64
}

// BuildFileSet implements spec.md §4.D: list folder's immediate files and
// keep those whose include/exclude disposition, pivoted on polarity,
// resolves to "included".
func BuildFileSet(fs Filesystem, folder string, tags map[string]bool, polarity Polarity, includeRules, excludeRules []FileSetRule) ([]ScannedFile, error) {
	paths, err := fs.Walk(folder, false, true, false)
	if err != nil {
		return nil, err
	}

	out := make([]ScannedFile, 0, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)

		sizer := func(path string) fileSizer {
			return func() (int64, bool) {
				sz, err := fs.Size(path)
				if err != nil {
					return 0, false
				}
				return sz, true
			}
		}(p)

		if !fileIncluded(name, folder, tags, polarity, includeRules, excludeRules, sizer) {
			continue
		}

		sz, err := fs.Size(p)
		if err != nil {
			return nil, err
		}
		out = append(out, ScannedFile{Name: name, Size: sz})
	}

	return out, nil
}

// fileIncluded evaluates the two-sided include/exclude disposition
// described in spec.md §4.D, pivoted on the folder's default polarity.
func fileIncluded(name, folder string, tags map[string]bool, polarity Polarity, includeRules, excludeRules []FileSetRule, size fileSizer) bool {
	matchesAny := func(rules []FileSetRule) bool {
		for _, rule := range rules {
			if rule.Matches(name, folder, tags, size) {
				return true
			}
		}
		return false
	}

	switch polarity {
	case PolarityExclude:
		included := matchesAny(includeRules)
		if included && matchesAny(excludeRules) {
			return false
		}
		return included
	default: // PolarityInclude
		excluded := matchesAny(excludeRules)
		if excluded && matchesAny(includeRules) {
			return true
		}
		return !excluded
	}
}
