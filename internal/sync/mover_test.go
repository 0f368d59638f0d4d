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

type MoverSuite struct {
	suite.Suite

	sourceRoot string
	targetRoot string
	cleanPath  string
	fs         sync.OSFilesystem
}

func (s *MoverSuite) SetupTest() {
	t := s.T()

	s.sourceRoot = t.TempDir()
	s.targetRoot = t.TempDir()
	s.cleanPath = t.TempDir()
	s.fs = sync.OSFilesystem{}

	// Source now has the file under images/items/, seeded target has it
	// directly under images/ (spec.md §8 S5 scenario).
	require.NoError(t, os.MkdirAll(filepath.Join(s.sourceRoot, "images", "items"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(s.sourceRoot, "images", "items", "heart-pillow.jpg"), []byte("jpgdata!!"), 0644))

	require.NoError(t, os.MkdirAll(filepath.Join(s.targetRoot, "images"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(s.targetRoot, "images", "heart-pillow.jpg"), []byte("jpgdata!!"), 0644))
}

func (s *MoverSuite) job() sync.Job {
	return sync.Job{
		Mode:                 sync.ModeSync,
		TargetPath:           s.targetRoot,
		CleanPath:            s.cleanPath,
		MoveDetectionEnabled: true,
		SourceRoots: []sync.RootConfig{
			{ID: "main", Path: s.sourceRoot, DefaultFilePolarity: sync.PolarityInclude},
		},
	}
}

func (s *MoverSuite) TestRemoveAndNewBecomeMove() {
	t := s.T()

	plan, err := sync.BuildPlan(s.job(), s.fs, sync.NopLogger{})
	require.NoError(t, err)

	require.NoError(t, sync.DetectMoves(s.fs, s.cleanPath, plan, sync.NopLogger{}))

	summary := plan.Summary()
	require.Equal(t, 0, summary.New, "the NEW entry must be retired to INTERNAL_MOVED")
	require.GreaterOrEqual(t, summary.Move, 1)

	found := false
	for _, entries := range plan.RemoveMap {
		for _, e := range entries {
			if e.Classification == sync.ClassMove && e.Name == "heart-pillow.jpg" {
				found = true
				require.Equal(t, filepath.Join(s.targetRoot, "images", "items"), e.TargetDir)
			}
		}
	}
	require.True(t, found)
}

func TestMoverSuite(t *testing.T) {
	suite.Run(t, new(MoverSuite))
}
