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

type FileSetSuite struct {
	suite.Suite

	folder string
	fs     sync.OSFilesystem
}

func (s *FileSetSuite) SetupTest() {
	t := s.T()

	s.folder = t.TempDir()
	s.fs = sync.OSFilesystem{}

	require.NoError(t, os.WriteFile(filepath.Join(s.folder, "keep.txt"), []byte("1"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(s.folder, "drop.log"), []byte("22"), 0644))
}

func (s *FileSetSuite) TestIncludePolarityExcludeOverridesByDefault() {
	t := s.T()

	exclude, err := sync.ParseFileSetRule("*.log")
	require.NoError(t, err)

	files, err := sync.BuildFileSet(s.fs, s.folder, nil, sync.PolarityInclude, nil, []sync.FileSetRule{exclude})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "keep.txt", files[0].Name)
}

func (s *FileSetSuite) TestIncludeRuleReincludesOverExclude() {
	t := s.T()

	exclude, err := sync.ParseFileSetRule("*.log")
	require.NoError(t, err)
	include, err := sync.ParseFileSetRule("drop.log")
	require.NoError(t, err)

	files, err := sync.BuildFileSet(s.fs, s.folder, nil, sync.PolarityInclude, []sync.FileSetRule{include}, []sync.FileSetRule{exclude})
	require.NoError(t, err)
	require.Len(t, files, 2, "an explicit include rule overrides a matching exclude rule")
}

func (s *FileSetSuite) TestExcludePolarityNothingIncludedByDefault() {
	t := s.T()

	files, err := sync.BuildFileSet(s.fs, s.folder, nil, sync.PolarityExclude, nil, nil)
	require.NoError(t, err)
	require.Empty(t, files)
}

func (s *FileSetSuite) TestExcludePolarityIncludeRuleAdmitsFile() {
	t := s.T()

	include, err := sync.ParseFileSetRule("keep.txt")
	require.NoError(t, err)

	files, err := sync.BuildFileSet(s.fs, s.folder, nil, sync.PolarityExclude, []sync.FileSetRule{include}, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "keep.txt", files[0].Name)
}

func TestFileSetSuite(t *testing.T) {
	suite.Run(t, new(FileSetSuite))
}
