// Copyright (C) 2019 The CodeActual Go Environment Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package io provides small helpers shared across the cage packages.
package io

import (
	"fmt"
	"io"
	"os"
)

// CloseOrStderr closes c and writes a message to stderr if the close fails.
//
// It exists so that deferred Close calls, which commonly discard their error,
// at least surface a failure instead of silently swallowing it.
func CloseOrStderr(c io.Closer, name string) {
	if err := c.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close [%s]: %s\n", name, err)
	}
}
