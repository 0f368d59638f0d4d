// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

//go:build windows
// +build windows

package sync

import "path/filepath"

// DeviceOf returns the drive letter (volume name) backing path, e.g. "C:".
//
// Windows paths on different drive letters are always a different device;
// this is a coarser approximation than the POSIX st_dev comparison but
// matches what the rest of the ecosystem (e.g. os.path.splitdrive in the
// reference implementation) treats as "device" on this platform.
func DeviceOf(path string) (string, error) {
	return filepath.VolumeName(filepath.Clean(path)), nil
}
