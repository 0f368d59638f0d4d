// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sync

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	cage_file "github.com/codeactual/treesync/internal/cage/os/file"
)

// Filesystem is the abstract collaborator the planner and apply engine
// consume for every disk interaction (spec.md §6). The underlying
// directory-walk, size, and copy primitives are treated as external,
// so this interface is the seam tests substitute a fake for.
type Filesystem interface {
	Exists(path string) (bool, error)
	IsDir(path string) (bool, error)
	IsFile(path string) (bool, error)
	Size(path string) (int64, error)

	// Walk lists the immediate or recursive contents of dir. At least one of
	// wantFiles/wantFolders must be true. Returned paths are absolute,
	// normalized, and lexicographically sorted.
	Walk(dir string, recurse, wantFiles, wantFolders bool) ([]string, error)

	EnsureDir(path string) error
	CopyFile(src, dst string) error
	Rename(src, dst string) error

	// RemoveEmptyDirs recursively prunes every folder under root (root
	// included only if it becomes empty) that contains no files, directly or
	// in any descendant. It returns the paths it removed, deepest first.
	RemoveEmptyDirs(root string) ([]string, error)

	// FreeBytes returns the free space available on the device identified by
	// DeviceOf(path).
	FreeBytes(path string) (uint64, error)
}

// OSFilesystem is the real Filesystem backed by the local operating system.
type OSFilesystem struct{}

var _ Filesystem = OSFilesystem{}

func (OSFilesystem) Exists(path string) (bool, error) {
	ok, _, err := cage_file.Exists(path)
	return ok, err
}

func (OSFilesystem) IsDir(path string) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to stat [%s]", path)
	}
	return fi.IsDir(), nil
}

func (OSFilesystem) IsFile(path string) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to stat [%s]", path)
	}
	return !fi.IsDir(), nil
}

func (OSFilesystem) Size(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to stat [%s]", path)
	}
	return fi.Size(), nil
}

func (OSFilesystem) Walk(dir string, recurse, wantFiles, wantFolders bool) ([]string, error) {
	var out []string

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read dir [%s]", dir)
	}

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if wantFolders {
				out = append(out, full)
			}
			if recurse {
				children, err := OSFilesystem{}.Walk(full, recurse, wantFiles, wantFolders)
				if err != nil {
					return nil, err
				}
				out = append(out, children...)
			}
		} else if wantFiles {
			out = append(out, full)
		}
	}

	sort.Strings(out)
	return out, nil
}

func (OSFilesystem) EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Wrapf(err, "failed to create dir [%s]", path)
	}
	return nil
}

func (OSFilesystem) CopyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304
	if err != nil {
		return errors.Wrapf(err, "failed to open source file [%s]", src)
	}
	defer in.Close() //nolint:errcheck

	out, err := os.Create(dst) // #nosec G304
	if err != nil {
		return errors.Wrapf(err, "failed to create target file [%s]", dst)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close() //nolint:errcheck
		return errors.Wrapf(err, "failed to copy [%s] to [%s]", src, dst)
	}

	if err := out.Close(); err != nil {
		return errors.Wrapf(err, "failed to close target file [%s]", dst)
	}

	return nil
}

func (OSFilesystem) Rename(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return errors.Wrapf(err, "failed to rename [%s] to [%s]", src, dst)
	}
	return nil
}

func (fs OSFilesystem) RemoveEmptyDirs(root string) ([]string, error) {
	isDir, err := fs.IsDir(root)
	if err != nil || !isDir {
		return nil, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read dir [%s]", root)
	}

	var removed []string
	empty := true

	for _, entry := range entries {
		full := filepath.Join(root, entry.Name())
		if entry.IsDir() {
			children, err := fs.RemoveEmptyDirs(full)
			if err != nil {
				return removed, err
			}
			removed = append(removed, children...)

			stillExists, err := fs.Exists(full)
			if err != nil {
				return removed, err
			}
			if stillExists {
				empty = false
			}
		} else {
			empty = false
		}
	}

	if empty {
		if err := cage_file.RemoveAllSafer(root); err != nil {
			return removed, errors.Wrapf(err, "failed to remove empty dir [%s]", root)
		}
		removed = append(removed, root)
	}

	return removed, nil
}
