// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

//go:build !windows
// +build !windows

package sync

import (
	"fmt"
	"syscall"

	"github.com/pkg/errors"
)

// DeviceOf returns an opaque identifier for the device (filesystem volume)
// backing path, derived from the POSIX stat st_dev field.
//
// It is used to decide whether a REMOVE can be satisfied with a rename
// (same device) or must be refused as a cross-device configuration error
// (spec.md §4.A, §8 invariant 6).
func DeviceOf(path string) (string, error) {
	var stat syscall.Stat_t
	if err := syscall.Stat(path, &stat); err != nil {
		return "", errors.Wrapf(err, "failed to stat [%s] for device id", path)
	}
	return fmt.Sprintf("dev:%d", stat.Dev), nil
}
