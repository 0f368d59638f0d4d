// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sync_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/codeactual/treesync/internal/sync"
)

type FolderSetSuite struct {
	suite.Suite

	root    string
	private string
	public  string
}

func (s *FolderSetSuite) SetupTest() {
	t := s.T()

	s.root = t.TempDir()
	s.private = filepath.Join(s.root, "private")
	s.public = filepath.Join(s.root, "public")
	require.NoError(t, os.MkdirAll(filepath.Join(s.private, "sub"), 0755))
	require.NoError(t, os.MkdirAll(s.public, 0755))
}

func (s *FolderSetSuite) TestNoRulesEmitsEverything() {
	t := s.T()

	result, err := sync.BuildFolderSet(sync.OSFilesystem{}, s.root, nil, nil, nil)
	require.NoError(t, err)
	require.Contains(t, result.Folders, s.root)
	require.Contains(t, result.Folders, s.private)
	require.Contains(t, result.Folders, s.public)
	require.Contains(t, result.Folders, filepath.Join(s.private, "sub"))
}

func (s *FolderSetSuite) TestTagRecursionCoversDescendants() {
	t := s.T()

	rule, err := sync.ParseFolderSetRule("private|RECURSE|TAG=PRIV", s.root)
	require.NoError(t, err)

	result, err := sync.BuildFolderSet(sync.OSFilesystem{}, s.root, nil, []sync.FolderSetRule{rule}, nil)
	require.NoError(t, err)

	require.True(t, result.Tags[s.private]["PRIV"])
	require.True(t, result.Tags[filepath.Join(s.private, "sub")]["PRIV"])
	require.False(t, result.Tags[s.public]["PRIV"])
}

func (s *FolderSetSuite) TestExclusionStopsDescent() {
	t := s.T()

	excluded := map[string]bool{s.private: true}

	result, err := sync.BuildFolderSet(sync.OSFilesystem{}, s.root, nil, nil, excluded)
	require.NoError(t, err)

	require.NotContains(t, result.Folders, s.private)
	require.NotContains(t, result.Folders, filepath.Join(s.private, "sub"))
	require.Contains(t, result.Folders, s.public)
}

func TestFolderSetSuite(t *testing.T) {
	suite.Run(t, new(FolderSetSuite))
}
