// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sync_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/codeactual/treesync/internal/sync"
)

type ConfigSuite struct {
	suite.Suite
}

func (s *ConfigSuite) TestRuleBlockReferenceResolved() {
	t := s.T()

	jf := sync.JobFile{
		Mode:       "REVIEW",
		TargetPath: "/tmp/target",
		RuleBlocks: map[string][]string{
			"common_excludes": {"*.log", "*.tmp"},
		},
		SourceRoots: []sync.RootFile{
			{ID: "main", Path: "/tmp/source", ExcludeFileRef: "common_excludes", ExcludeFileRules: []string{"*.bak"}},
		},
	}

	job, err := sync.ResolveJobFile(jf)
	require.NoError(t, err)
	require.Len(t, job.SourceRoots, 1)
	require.ElementsMatch(t, []string{"*.bak", "*.log", "*.tmp"}, job.SourceRoots[0].ExcludeFileRules)
}

func (s *ConfigSuite) TestUnresolvedReferenceIsConfigError() {
	t := s.T()

	jf := sync.JobFile{
		Mode: "REVIEW",
		SourceRoots: []sync.RootFile{
			{ID: "main", Path: "/tmp/source", ExcludeFileRef: "missing"},
		},
	}

	_, err := sync.ResolveJobFile(jf)
	require.Error(t, err)
}

func (s *ConfigSuite) TestDefaultPolarityFallback() {
	t := s.T()

	jf := sync.JobFile{
		Mode:            "REVIEW",
		DefaultPolarity: "EXCLUDE",
		SourceRoots: []sync.RootFile{
			{ID: "main", Path: "/tmp/source"},
		},
	}

	job, err := sync.ResolveJobFile(jf)
	require.NoError(t, err)
	require.Equal(t, sync.PolarityExclude, job.SourceRoots[0].DefaultFilePolarity)
}

func (s *ConfigSuite) TestDuplicateRootIDIsConfigError() {
	t := s.T()

	jf := sync.JobFile{
		Mode: "REVIEW",
		SourceRoots: []sync.RootFile{
			{ID: "main", Path: "/tmp/a"},
			{ID: "main", Path: "/tmp/b"},
		},
	}

	_, err := sync.ResolveJobFile(jf)
	require.Error(t, err)
}

func (s *ConfigSuite) TestInvalidModeIsConfigError() {
	t := s.T()

	jf := sync.JobFile{
		Mode: "BOGUS",
		SourceRoots: []sync.RootFile{
			{ID: "main", Path: "/tmp/a"},
		},
	}

	_, err := sync.ResolveJobFile(jf)
	require.Error(t, err)
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}
