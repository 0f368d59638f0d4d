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

type SectionSuite struct {
	suite.Suite

	parentSrc string
	childSrc  string
	target    string
}

func (s *SectionSuite) SetupTest() {
	t := s.T()

	s.parentSrc = t.TempDir()
	s.childSrc = filepath.Join(s.parentSrc, "nested")
	require.NoError(t, os.MkdirAll(s.childSrc, 0755))
	s.target = t.TempDir()
}

func (s *SectionSuite) TestHierarchyAndSingleTopRootTarget() {
	t := s.T()

	job := sync.Job{
		Mode:       sync.ModeReview,
		TargetPath: s.target,
		SourceRoots: []sync.RootConfig{
			{ID: "parent", Path: s.parentSrc, DefaultFilePolarity: sync.PolarityInclude},
			{ID: "child", Path: s.childSrc, DefaultFilePolarity: sync.PolarityInclude},
		},
	}

	plan, err := sync.BuildPlan(job, sync.OSFilesystem{}, sync.NopLogger{})
	require.NoError(t, err)
	require.Len(t, plan.Roots, 2)

	var parent, child *sync.SourceRoot
	for _, r := range plan.Roots {
		switch r.ID {
		case "parent":
			parent = r
		case "child":
			child = r
		}
	}
	require.NotNil(t, parent)
	require.NotNil(t, child)

	require.Equal(t, s.target, parent.TargetPath, "lone top root maps directly to target_path")
	require.Equal(t, filepath.Join(s.target, "nested"), child.TargetPath, "nested root mirrors its relative position under its top ancestor's target")
}

func (s *SectionSuite) TestMultipleTopRootsNestUnderBasename() {
	t := s.T()

	otherSrc := s.T().TempDir()

	job := sync.Job{
		Mode:       sync.ModeReview,
		TargetPath: s.target,
		SourceRoots: []sync.RootConfig{
			{ID: "a", Path: s.parentSrc, DefaultFilePolarity: sync.PolarityInclude},
			{ID: "b", Path: otherSrc, DefaultFilePolarity: sync.PolarityInclude},
		},
	}

	plan, err := sync.BuildPlan(job, sync.OSFilesystem{}, sync.NopLogger{})
	require.NoError(t, err)

	for _, r := range plan.Roots {
		require.Equal(t, filepath.Join(s.target, filepath.Base(r.Path)), r.TargetPath)
	}
}

func TestSectionSuite(t *testing.T) {
	suite.Run(t, new(SectionSuite))
}
