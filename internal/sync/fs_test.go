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

type FsSuite struct {
	suite.Suite

	root string
	fs   sync.OSFilesystem
}

func (s *FsSuite) SetupTest() {
	t := s.T()
	s.root = t.TempDir()
	s.fs = sync.OSFilesystem{}

	require.NoError(t, os.MkdirAll(filepath.Join(s.root, "a", "b"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(s.root, "a", "one.txt"), []byte("1"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(s.root, "a", "b", "two.txt"), []byte("22"), 0644))
}

func (s *FsSuite) TestWalkRecursiveFilesOnly() {
	t := s.T()

	paths, err := s.fs.Walk(s.root, true, true, false)
	require.NoError(t, err)
	require.Len(t, paths, 2)
}

func (s *FsSuite) TestWalkNonRecursiveFoldersOnly() {
	t := s.T()

	paths, err := s.fs.Walk(s.root, false, false, true)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(s.root, "a")}, paths)
}

func (s *FsSuite) TestCopyFileAndSize() {
	t := s.T()

	src := filepath.Join(s.root, "a", "one.txt")
	dst := filepath.Join(s.root, "copy.txt")

	require.NoError(t, s.fs.CopyFile(src, dst))

	size, err := s.fs.Size(dst)
	require.NoError(t, err)
	require.EqualValues(t, 1, size)
}

func (s *FsSuite) TestRemoveEmptyDirs() {
	t := s.T()

	emptyDir := filepath.Join(s.root, "a", "empty")
	require.NoError(t, os.MkdirAll(emptyDir, 0755))

	removed, err := s.fs.RemoveEmptyDirs(s.root)
	require.NoError(t, err)
	require.Contains(t, removed, emptyDir)

	exists, err := s.fs.Exists(filepath.Join(s.root, "a"))
	require.NoError(t, err)
	require.True(t, exists, "non-empty ancestor must survive")
}

func TestFsSuite(t *testing.T) {
	suite.Run(t, new(FsSuite))
}
