// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sync

import "sort"

// FolderSetResult is component C's output: the ordered set of in-scope
// folders under a root, plus their accumulated tag sets (spec.md §4.C).
type FolderSetResult struct {
	Folders []string
	Tags    map[string]map[string]bool
}

// BuildFolderSet implements spec.md §4.C: a recursive-descent walk from
// root, filtered by selectRules (folder-selection) and excluded set,
// followed by a separate pass applying tagRules.
//
// excluded holds absolute, normalized paths; a folder under it is never
// emitted, matching every descendant too.
func BuildFolderSet(fs Filesystem, root string, selectRules, tagRules []FolderSetRule, excluded map[string]bool) (FolderSetResult, error) {
	result := FolderSetResult{Tags: map[string]map[string]bool{}}

	if err := walkFolderSelection(fs, root, selectRules, excluded, &result.Folders); err != nil {
		return FolderSetResult{}, err
	}

	emitted := make(map[string]bool, len(result.Folders))
	for _, p := range result.Folders {
		emitted[p] = true
	}

	applyFolderTags(fs, root, tagRules, emitted, result.Folders, result.Tags)

	sort.Strings(result.Folders)
	return result, nil
}

// walkFolderSelection performs step 2/3 of spec.md §4.C.
func walkFolderSelection(fs Filesystem, folder string, rules []FolderSetRule, excluded map[string]bool, emitted *[]string) error {
	if excluded[folder] {
		return nil
	}

	if len(rules) == 0 {
		*emitted = append(*emitted, folder)
		return descendAll(fs, folder, excluded, emitted)
	}

	for _, rule := range rules {
		match := rule.Evaluate(folder)
		if !match.Matched {
			continue
		}

		*emitted = append(*emitted, folder)
		if match.Recurse {
			return descendAll(fs, folder, excluded, emitted)
		}
		return descendChildren(fs, folder, rules, excluded, emitted)
	}

	// No rule matched: folder itself is not emitted, but children are still
	// evaluated independently (spec.md §4.C step 3).
	return descendChildren(fs, folder, rules, excluded, emitted)
}

// descendAll emits every descendant folder unconditionally, subject only to
// exclusion (the "recurse=true" branch of spec.md §4.C step 3, and the
// no-selection-rules branch of step 2).
func descendAll(fs Filesystem, folder string, excluded map[string]bool, emitted *[]string) error {
	children, err := fs.Walk(folder, false, false, true)
	if err != nil {
		return err
	}
	for _, child := range children {
		if excluded[child] {
			continue
		}
		*emitted = append(*emitted, child)
		if err := descendAll(fs, child, excluded, emitted); err != nil {
			return err
		}
	}
	return nil
}

// descendChildren re-enters rule evaluation independently for each
// immediate child folder.
func descendChildren(fs Filesystem, folder string, rules []FolderSetRule, excluded map[string]bool, emitted *[]string) error {
	children, err := fs.Walk(folder, false, false, true)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := walkFolderSelection(fs, child, rules, excluded, emitted); err != nil {
			return err
		}
	}
	return nil
}

// applyFolderTags implements spec.md §4.C step 4: a tag-only pass over
// already-emitted folders, independent of why a folder was selected.
func applyFolderTags(fs Filesystem, root string, tagRules []FolderSetRule, emitted map[string]bool, folders []string, tags map[string]map[string]bool) {
	descendants := childrenIndex(folders)

	for _, rule := range tagRules {
		if rule.Tag == "" {
			continue
		}
		for _, folder := range folders {
			match := rule.Evaluate(folder)
			if !match.Matched {
				continue
			}

			addTag(tags, folder, rule.Tag)
			if match.Recurse {
				for _, desc := range descendants[folder] {
					addTag(tags, desc, rule.Tag)
				}
			}
		}
	}
}

func addTag(tags map[string]map[string]bool, folder, tag string) {
	set, ok := tags[folder]
	if !ok {
		set = map[string]bool{}
		tags[folder] = set
	}
	set[tag] = true
}

// childrenIndex maps every emitted folder to the emitted folders under it,
// used to fan a recursive tag out to descendants (spec.md §4.C step 4).
func childrenIndex(folders []string) map[string][]string {
	idx := make(map[string][]string, len(folders))
	for _, candidate := range folders {
		for _, ancestor := range folders {
			if ancestor == candidate {
				continue
			}
			if IsUnder(ancestor, candidate, false) {
				idx[ancestor] = append(idx[ancestor], candidate)
			}
		}
	}
	return idx
}
