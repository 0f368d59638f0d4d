// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package treesync contains sub-packages which provide the CLI commands (cmd/treesync/*),
// the core rule engine/planner/apply engine (internal/sync), and the internal "standard
// library" (internal/cage/*) adapted from the CodeActual Go environment.
package treesync

// expand godoc content for the base import path
import (
	_ "github.com/codeactual/treesync/cmd/treesync/review"
	_ "github.com/codeactual/treesync/cmd/treesync/root"
	_ "github.com/codeactual/treesync/cmd/treesync/run"
	_ "github.com/codeactual/treesync/internal/sync"
)
