// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sync_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/codeactual/treesync/internal/sync"
)

type PathSuite struct {
	suite.Suite

	root string
}

func (s *PathSuite) SetupTest() {
	s.root = s.T().TempDir()
}

func (s *PathSuite) TestNormalizePathResolvesAbs() {
	t := s.T()

	normalized, err := sync.NormalizePath(s.root)
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(normalized))
}

func (s *PathSuite) TestIsUnderRejectsLexicalPrefix() {
	t := s.T()

	a := filepath.Join(s.root, "a")
	b := filepath.Join(s.root, "b")

	require.True(t, sync.IsUnder(a, filepath.Join(a, "child"), false))
	require.False(t, sync.IsUnder(a, b, false))
	require.False(t, sync.IsUnder(a+"-extra", a, false))
}

func (s *PathSuite) TestIsUnderSameIsUnderFlag() {
	t := s.T()

	require.False(t, sync.IsUnder(s.root, s.root, false))
	require.True(t, sync.IsUnder(s.root, s.root, true))
}

func (s *PathSuite) TestParseBytes() {
	t := s.T()

	cases := map[string]int64{
		"0":     0,
		"512":   512,
		"1KB":   1024,
		"2MB":   2 * 1024 * 1024,
		"1GB":   1024 * 1024 * 1024,
		"10B":   10,
	}

	for in, want := range cases {
		got, err := sync.ParseBytes(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := sync.ParseBytes("not-a-size")
	require.Error(t, err)
}

func TestPathSuite(t *testing.T) {
	suite.Run(t, new(PathSuite))
}
