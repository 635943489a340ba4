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
	"oppia.dev/depgraph/resolve"
)

func TestBuildSeedsManualOverridesAndWalksImports(t *testing.T) {
	memfs := fstest.NewMemFS(map[string]string{
		"a.ts": "import { b } from './b';",
		"b.ts": "",
		"c.ts": "",
	})
	cfg := &config.Config{
		RootDir:           ".",
		IncludeExtensions: []string{".ts"},
		ManualDependencyOverrides: map[string][]string{
			"a.ts": {"c.ts"},
		},
	}
	facade, err := ast.New(memfs, cfg)
	require.NoError(t, err)
	r := resolve.New(memfs, cfg)

	result, err := graph.Build(facade, r, cfg)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"c.ts", "b.ts"}, result.Graph.Deps("a.ts"))
	assert.Contains(t, result.Infos, "a.ts")
}
