// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

//go:build windows
// +build windows

package sync

import (
	"syscall"
	"unsafe"

	"github.com/pkg/errors"
)

var (
	kernel32             = syscall.NewLazyDLL("kernel32.dll")
	getDiskFreeSpaceExProc = kernel32.NewProc("GetDiskFreeSpaceExW")
)

// FreeBytes returns the free space on the device backing path, via
// GetDiskFreeSpaceEx.
func (OSFilesystem) FreeBytes(path string) (uint64, error) {
	device, err := DeviceOf(path)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	root := device + `\`

	ptr, err := syscall.UTF16PtrFromString(root)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to convert path [%s]", root)
	}

	var freeBytesAvailable uint64
	ret, _, callErr := getDiskFreeSpaceExProc.Call(
		uintptr(unsafe.Pointer(ptr)),
		uintptr(unsafe.Pointer(&freeBytesAvailable)),
		0,
		0,
	)
	if ret == 0 {
		return 0, errors.Wrapf(callErr, "failed to query free space for [%s]", root)
	}

	return freeBytesAvailable, nil
}
