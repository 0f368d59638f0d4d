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

type FolderRuleSuite struct {
	suite.Suite

	root    string
	private string
}

func (s *FolderRuleSuite) SetupTest() {
	t := s.T()

	s.root = t.TempDir()
	s.private, _ = sync.NormalizePath(filepath.Join(s.root, "private"))
	require.NoError(t, os.MkdirAll(s.private, 0755))
}

func (s *FolderRuleSuite) TestNameGlobMatch() {
	t := s.T()

	rule, err := sync.ParseFolderSetRule("private*|TAG=PRIV", s.root)
	require.NoError(t, err)
	require.Equal(t, sync.FolderCondNameGlob, rule.Kind)
	require.Equal(t, "PRIV", rule.Tag)

	result := rule.Evaluate(s.private)
	require.True(t, result.Matched)
	require.True(t, result.Recurse)
	require.Equal(t, "PRIV", result.Tag)
}

func (s *FolderRuleSuite) TestNoRecurseModifier() {
	t := s.T()

	rule, err := sync.ParseFolderSetRule("private|NORECURSE", s.root)
	require.NoError(t, err)

	result := rule.Evaluate(s.private)
	require.True(t, result.Matched)
	require.False(t, result.Recurse)
}

func (s *FolderRuleSuite) TestBareNameIsNotPathCondition() {
	t := s.T()

	rule, err := sync.ParseFolderSetRule("private", s.root)
	require.NoError(t, err)

	// "private" has no path separator so it cannot resolve to PATH; it is
	// interpreted as a NAME_GLOB instead (spec.md §4.B condition order).
	require.Equal(t, sync.FolderCondNameGlob, rule.Kind)
}

func (s *FolderRuleSuite) TestAlwaysConditionRequiresTag() {
	t := s.T()

	_, err := sync.ParseFolderSetRule("RECURSE", s.root)
	require.Error(t, err)

	rule, err := sync.ParseFolderSetRule("TAG=ROOT", s.root)
	require.NoError(t, err)
	require.Equal(t, sync.FolderCondAlways, rule.Kind)
	require.True(t, rule.Evaluate(s.root).Matched)
}

func (s *FolderRuleSuite) TestMultipleConditionsIsParseError() {
	t := s.T()

	_, err := sync.ParseFolderSetRule("private|other", s.root)
	require.Error(t, err)
}

func (s *FolderRuleSuite) TestParseFolderSetRulesDropsUnparsable() {
	t := s.T()

	rules := sync.ParseFolderSetRules([]string{"private", "private|other"}, s.root, nil)
	require.Len(t, rules, 1)
}

func TestFolderRuleSuite(t *testing.T) {
	suite.Run(t, new(FolderRuleSuite))
}
