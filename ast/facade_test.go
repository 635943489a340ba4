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

package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ts "github.com/tree-sitter/go-tree-sitter"

	"oppia.dev/depgraph/ast"
	"oppia.dev/depgraph/config"
	"oppia.dev/depgraph/fs/fstest"
)

func TestEnumerateFiles(t *testing.T) {
	memfs := fstest.NewMemFS(map[string]string{
		"core/templates/pages/a.ts":    "export const a = 1;",
		"core/templates/pages/a.spec.ts": "export const s = 1;",
		"core/templates/pages/a.html":  "<div></div>",
		"node_modules/dep/index.ts":    "export const d = 1;",
	})
	cfg := &config.Config{
		RootDir:                  ".",
		IncludeExtensions:        []string{".ts", ".html"},
		InternalExcludePatterns:  []string{"node_modules/**"},
	}
	facade, err := ast.New(memfs, cfg)
	require.NoError(t, err)

	files, err := facade.EnumerateFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"core/templates/pages/a.html",
		"core/templates/pages/a.spec.ts",
		"core/templates/pages/a.ts",
	}, files)
}

func TestLoadCachesParsedSource(t *testing.T) {
	memfs := fstest.NewMemFS(map[string]string{
		"a.ts": "import { x } from './b';",
	})
	cfg := &config.Config{RootDir: "."}
	facade, err := ast.New(memfs, cfg)
	require.NoError(t, err)

	src1, err := facade.Load("a.ts")
	require.NoError(t, err)
	require.NotNil(t, src1.Tree)

	src2, err := facade.Load("a.ts")
	require.NoError(t, err)
	assert.Same(t, src1, src2)
}

func TestQueryCursorFindsImportSpecifiers(t *testing.T) {
	memfs := fstest.NewMemFS(map[string]string{
		"a.ts": "import { x } from './b';\nexport { y } from './c';",
	})
	cfg := &config.Config{RootDir: "."}
	facade, err := ast.New(memfs, cfg)
	require.NoError(t, err)

	src, err := facade.Load("a.ts")
	require.NoError(t, err)

	var specs []string
	err = facade.QueryCursor("imports", src.Tree.RootNode(), src.Content, func(captures map[string][]ts.Node) {
		for _, n := range captures["import.spec"] {
			specs = append(specs, n.Utf8Text(src.Content))
		}
		for _, n := range captures["reexport.spec"] {
			specs = append(specs, n.Utf8Text(src.Content))
		}
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"'./b'", "'./c'"}, specs)
}

func TestEvalLiteralString(t *testing.T) {
	memfs := fstest.NewMemFS(map[string]string{
		"a.ts": "const x = 'hello';",
	})
	facade, err := ast.New(memfs, &config.Config{RootDir: "."})
	require.NoError(t, err)
	src, err := facade.Load("a.ts")
	require.NoError(t, err)

	value := findFirst(t, src, "string")
	got, err := ast.EvalLiteral(value, src.Content, src.Path)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestEvalLiteralConcatenation(t *testing.T) {
	memfs := fstest.NewMemFS(map[string]string{
		"a.ts": "const x = 'a' + 'b' + 'c';",
	})
	facade, err := ast.New(memfs, &config.Config{RootDir: "."})
	require.NoError(t, err)
	src, err := facade.Load("a.ts")
	require.NoError(t, err)

	value := findFirst(t, src, "binary_expression")
	got, err := ast.EvalLiteral(value, src.Content, src.Path)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestEvalLiteralTemplateSubstitutionFails(t *testing.T) {
	memfs := fstest.NewMemFS(map[string]string{
		"a.ts": "const x = `a${b}c`;",
	})
	facade, err := ast.New(memfs, &config.Config{RootDir: "."})
	require.NoError(t, err)
	src, err := facade.Load("a.ts")
	require.NoError(t, err)

	value := findFirst(t, src, "template_string")
	_, err = ast.EvalLiteral(value, src.Content, src.Path)
	require.Error(t, err)
	var evalErr *ast.EvalError
	assert.ErrorAs(t, err, &evalErr)
}

// findFirst walks the parsed tree depth-first for the first node of the
// given kind, failing the test if none is found.
func findFirst(t *testing.T, src *ast.Source, kind string) ts.Node {
	t.Helper()
	var found *ts.Node
	var walk func(n ts.Node)
	walk = func(n ts.Node) {
		if found != nil {
			return
		}
		if n.Kind() == kind {
			found = &n
			return
		}
		count := n.ChildCount()
		for i := uint(0); i < count; i++ {
			if c := n.Child(i); c != nil {
				walk(*c)
			}
		}
	}
	walk(src.Tree.RootNode())
	require.NotNil(t, found, "no %s node found", kind)
	return *found
}
