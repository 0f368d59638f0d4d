// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sync

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// NormalizePath resolves p to an absolute, canonical form: symlink-free where
// possible, using the OS path separator, with no trailing separator (except
// for a bare root).
func NormalizePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errors.Wrapf(err, "failed to get absolute path of [%s]", p)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// The path may not exist yet (e.g. a quarantine destination about to be
		// created), so fall back to the lexical form rather than failing.
		resolved = abs
	}

	return filepath.Clean(resolved), nil
}

// IsUnder reports whether child lies strictly inside root. If sameIsUnder is
// true, root itself also counts as "under" root.
//
// It compares normalized paths component-by-component so that a path like
// "/a/bc" is never mistaken for being under "/a/b".
func IsUnder(root, child string, sameIsUnder bool) bool {
	root = filepath.Clean(root)
	child = filepath.Clean(child)

	if root == child {
		return sameIsUnder
	}

	rel, err := filepath.Rel(root, child)
	if err != nil {
		return false
	}

	if rel == "." {
		return sameIsUnder
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

