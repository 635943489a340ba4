/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oppia.dev/depgraph/fs/fstest"
	"oppia.dev/depgraph/match"
	"oppia.dev/depgraph/model"
)

func table() model.RouteTable {
	return model.RouteTable{Routes: []model.Route{
		{Path: "splash", PageModule: "splash.module.ts"},
		{Path: "learn/:topicId", PageModule: "topic-viewer.module.ts"},
		{Path: "learn/:topicId", PathMatch: "full", PageModule: "topic-viewer-full.module.ts"},
	}}
}

func TestRegisterUrlMatchesWildcardSegment(t *testing.T) {
	m := match.New(table(), []string{"http://localhost:8181/"}, nil)
	m.SetGoldenFilePath("golden.json")
	m.RegisterUrl("http://localhost:8181/learn/fractions")

	memfs := fstest.NewMemFS(nil)
	err := m.CompareAndOutputModules(memfs, []string{"topic-viewer.module.ts", "topic-viewer-full.module.ts"})
	require.NoError(t, err)
}

func TestRegisterUrlIgnoresUnknownHost(t *testing.T) {
	m := match.New(table(), []string{"http://localhost:8181/"}, nil)
	m.SetGoldenFilePath("golden.json")
	m.RegisterUrl("http://example.com/learn/fractions")

	memfs := fstest.NewMemFS(nil)
	err := m.CompareAndOutputModules(memfs, nil)
	require.NoError(t, err)
}

func TestRegisterUrlNoRouteMatchRecordsError(t *testing.T) {
	m := match.New(table(), []string{"http://localhost:8181/"}, nil)
	m.SetGoldenFilePath("golden.json")
	m.RegisterUrl("http://localhost:8181/does-not-exist")

	memfs := fstest.NewMemFS(nil)
	err := m.CompareAndOutputModules(memfs, nil)
	require.Error(t, err)
	var mismatch *match.MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Len(t, mismatch.RegistrationErrors, 1)
}

func TestCompareAndOutputModulesDetectsGoldenDivergence(t *testing.T) {
	m := match.New(table(), []string{"http://localhost:8181/"}, nil)
	m.SetGoldenFilePath("golden.json")
	m.RegisterUrl("http://localhost:8181/splash")

	memfs := fstest.NewMemFS(nil)
	err := m.CompareAndOutputModules(memfs, []string{"splash.module.ts", "never-collected.module.ts"})
	require.Error(t, err)
	var mismatch *match.MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []string{"never-collected.module.ts"}, mismatch.MissingFromRun)
}

func TestCompareAndOutputModulesWritesGeneratedManifest(t *testing.T) {
	m := match.New(table(), []string{"http://localhost:8181/"}, nil)
	m.SetGoldenFilePath("golden.json")
	m.RegisterUrl("http://localhost:8181/splash")

	memfs := fstest.NewMemFS(nil)
	err := m.CompareAndOutputModules(memfs, []string{"splash.module.ts"})
	require.NoError(t, err)

	data, err := memfs.ReadFile("golden-generated.txt")
	require.NoError(t, err)
	assert.Contains(t, string(data), "splash.module.ts")
}

func TestPathMatchFullRejectsExtraSegments(t *testing.T) {
	m := match.New(model.RouteTable{Routes: []model.Route{
		{Path: "learn", PathMatch: "full", PageModule: "learn.module.ts"},
	}}, []string{"http://localhost:8181/"}, nil)
	m.SetGoldenFilePath("golden.json")
	m.RegisterUrl("http://localhost:8181/learn/extra")

	memfs := fstest.NewMemFS(nil)
	err := m.CompareAndOutputModules(memfs, nil)
	require.Error(t, err)
}
