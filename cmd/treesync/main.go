// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"github.com/pkg/errors"

	"github.com/codeactual/treesync/cmd/treesync/review"
	"github.com/codeactual/treesync/cmd/treesync/root"
	"github.com/codeactual/treesync/cmd/treesync/run"
)

func main() {
	rootCmd := root.NewCommand()
	rootCmd.AddCommand(run.NewCommand())
	rootCmd.AddCommand(review.NewCommand())
	if err := rootCmd.Execute(); err != nil {
		panic(errors.Wrap(err, "failed to execute command"))
	}
}
