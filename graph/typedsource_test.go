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

package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oppia.dev/depgraph/ast"
	"oppia.dev/depgraph/config"
	"oppia.dev/depgraph/fs/fstest"
	"oppia.dev/depgraph/graph"
	"oppia.dev/depgraph/model"
	"oppia.dev/depgraph/resolve"
)

func TestTypedSourceEdgesStaticAndDynamicImports(t *testing.T) {
	memfs := fstest.NewMemFS(map[string]string{
		"a.ts": "import { b } from './b';\nconst c = import('./c');\nconst d = require('./d');",
		"b.ts": "",
		"c.ts": "",
		"d.ts": "",
	})
	cfg := &config.Config{RootDir: "."}
	facade, err := ast.New(memfs, cfg)
	require.NoError(t, err)
	r := resolve.New(memfs, cfg)

	src, err := facade.Load("a.ts")
	require.NoError(t, err)

	deps, err := graph.TypedSourceEdges(facade, r, src, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b.ts", "c.ts", "d.ts"}, deps)
}

func TestTypedSourceEdgesMainpageSibling(t *testing.T) {
	memfs := fstest.NewMemFS(map[string]string{
		"page.import.ts":   "",
		"page.mainpage.html": "",
	})
	cfg := &config.Config{RootDir: "."}
	facade, err := ast.New(memfs, cfg)
	require.NoError(t, err)
	r := resolve.New(memfs, cfg)

	src, err := facade.Load("page.import.ts")
	require.NoError(t, err)

	deps, err := graph.TypedSourceEdges(facade, r, src, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"page.mainpage.html"}, deps)
}

func TestTypedSourceEdgesComponentTemplate(t *testing.T) {
	memfs := fstest.NewMemFS(map[string]string{
		"a.ts":        "",
		"a.template.html": "",
	})
	cfg := &config.Config{RootDir: "."}
	facade, err := ast.New(memfs, cfg)
	require.NoError(t, err)
	r := resolve.New(memfs, cfg)

	src, err := facade.Load("a.ts")
	require.NoError(t, err)

	infos := []model.FrameworkInfo{{
		Kind:             model.FrameworkComponent,
		File:             "a.ts",
		TemplateFilePath: "a.template.html",
	}}
	deps, err := graph.TypedSourceEdges(facade, r, src, infos)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.template.html"}, deps)
}

func TestTypedSourceEdgesFailsFastOnMissingTarget(t *testing.T) {
	memfs := fstest.NewMemFS(map[string]string{
		"a.ts": "import { b } from './missing';",
	})
	cfg := &config.Config{RootDir: "."}
	facade, err := ast.New(memfs, cfg)
	require.NoError(t, err)
	r := resolve.New(memfs, cfg)

	src, err := facade.Load("a.ts")
	require.NoError(t, err)

	_, err = graph.TypedSourceEdges(facade, r, src, nil)
	require.Error(t, err)
	var target *graph.UnresolvedTargetError
	assert.ErrorAs(t, err, &target)
}
