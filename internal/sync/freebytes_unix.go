// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

//go:build !windows
// +build !windows

package sync

import (
	"syscall"

	"github.com/pkg/errors"
)

// FreeBytes returns the free space on the device backing path, via statfs.
func (OSFilesystem) FreeBytes(path string) (uint64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, errors.Wrapf(err, "failed to statfs [%s]", path)
	}
	return uint64(stat.Bavail) * uint64(stat.Bsize), nil //nolint:unconvert
}
