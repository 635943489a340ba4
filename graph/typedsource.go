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

// Package graph implements the Typed-Source and HTML Edge Extractors
// (spec §4.D/§4.E) and the Edge-Set Builder that orchestrates them
// (spec §4.F), generalizing the teacher's trace.traceModule/trace.html
// walks from "collect script tags" to "collect dependency-graph edges".
package graph

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"oppia.dev/depgraph/ast"
	"oppia.dev/depgraph/model"
	"oppia.dev/depgraph/resolve"
)

// UnresolvedTargetError reports a module specifier that resolved to a
// path with no file on disk — a codebase invariant violation, not a
// recoverable condition (spec §4.D Failure semantics).
type UnresolvedTargetError struct {
	Target string
	File   string
}

func (e *UnresolvedTargetError) Error() string {
	return "graph: " + e.File + " references missing file " + e.Target
}

// TypedSourceEdges computes the outgoing edges of a .ts/.js file: static
// and dynamic import/require targets, its Component FrameworkInfo
// templates, and the `.import.ts` -> `.mainpage.html` sibling rule.
func TypedSourceEdges(facade *ast.Facade, r *resolve.Resolver, src *ast.Source, infos []model.FrameworkInfo) ([]string, error) {
	var deps []string

	if src.Tree != nil {
		var queryErr error
		err := facade.QueryCursor("imports", src.Tree.RootNode(), src.Content, func(captures map[string][]ts.Node) {
			if queryErr != nil {
				return
			}
			for _, capName := range []string{"import.spec", "reexport.spec", "dynamicImport.spec", "require.spec"} {
				for _, node := range captures[capName] {
					spec, err := ast.EvalLiteral(node, src.Content, src.Path)
					if err != nil {
						queryErr = err
						return
					}
					target, ok := r.Resolve(spec, src.Path)
					if target == "" && !ok {
						continue // external or genuinely unresolvable: not an edge
					}
					if !ok {
						queryErr = &UnresolvedTargetError{Target: target, File: src.Path}
						return
					}
					deps = append(deps, target)
				}
			}
		})
		if err != nil {
			return nil, err
		}
		if queryErr != nil {
			return nil, queryErr
		}
	}

	for _, info := range infos {
		if info.Kind == model.FrameworkComponent && info.TemplateFilePath != "" {
			if !r.Exists(info.TemplateFilePath) {
				return nil, &UnresolvedTargetError{Target: info.TemplateFilePath, File: src.Path}
			}
			deps = append(deps, info.TemplateFilePath)
		}
	}

	if sibling, ok := mainpageSibling(src.Path); ok {
		if r.Exists(sibling) {
			deps = append(deps, sibling)
		}
	}

	return dedupe(deps), nil
}

// mainpageSibling implements spec §4.D rule 5: a `.import.ts` file's
// sibling of the same basename ending `.mainpage.html`.
func mainpageSibling(path string) (string, bool) {
	const suffix = ".import.ts"
	if len(path) <= len(suffix) || path[len(path)-len(suffix):] != suffix {
		return "", false
	}
	base := path[:len(path)-len(suffix)]
	return base + ".mainpage.html", true
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
