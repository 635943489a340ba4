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

// Package routes implements the Route Registry (spec §4.H): parsing one
// or more routing modules' route-object trees into an ordered
// path -> page-module table, resolving lazy `loadChildren` imports and
// `AppConstants.*` path constants along the way.
package routes

import (
	"fmt"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"oppia.dev/depgraph/ast"
	"oppia.dev/depgraph/model"
	"oppia.dev/depgraph/resolve"
)

// ParseError wraps a routing-shape failure with the file it occurred in
// (spec §4.H step 2: "Any other shape is an error").
type ParseError struct {
	File string
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("routes: cannot parse route entry %q in %s", e.Text, e.File)
}

// Registry accumulates the ordered Route -> page-module table.
type Registry struct {
	facade    *ast.Facade
	resolver  *resolve.Resolver
	constants map[string]ts.Node // top-level AppConstants.* fields, by name
	constSrc  *ast.Source

	order  []model.Route
	lookup map[routeKey]string
	seen   map[string]struct{} // visited loadChildren targets, cycle guard
}

type routeKey struct {
	path      string
	pathMatch string
}

// New creates a Registry. constantsFile is the well-known constants
// module path consulted for AppConstants.* route paths; it may be
// empty if the repo has none.
func New(facade *ast.Facade, r *resolve.Resolver, constantsFile string) (*Registry, error) {
	reg := &Registry{
		facade:   facade,
		resolver: r,
		lookup:   make(map[routeKey]string),
		seen:     make(map[string]struct{}),
	}
	if constantsFile != "" {
		src, err := facade.Load(constantsFile)
		if err != nil {
			return nil, err
		}
		reg.constSrc = src
		reg.constants = findDeclarator(src.Tree.RootNode(), src.Content, "AppConstants")
	}
	return reg, nil
}

// AddManualOverride seeds the registry with a manual route override
// (spec §4.H: "the initial entries are the manual overrides").
func (reg *Registry) AddManualOverride(path, pathMatch, pageModule string) {
	reg.addRoute(path, pathMatch, pageModule)
}

func (reg *Registry) addRoute(path, pathMatch, pageModule string) {
	key := routeKey{path: path, pathMatch: pathMatch}
	if _, exists := reg.lookup[key]; exists {
		return // first definition wins, spec §4.H step 4
	}
	reg.lookup[key] = pageModule
	reg.order = append(reg.order, model.Route{Path: path, PathMatch: pathMatch, PageModule: pageModule})
}

// Table returns the accumulated route table in first-seen order.
func (reg *Registry) Table() model.RouteTable {
	return model.RouteTable{Routes: reg.order}
}

// ProcessRoutingFile locates the configured routing module's argument
// (spec §4.H step 1) and parses its route tree.
func (reg *Registry) ProcessRoutingFile(file string) error {
	return reg.processRoutingFile(file, "")
}

// processRoutingFile parses file's route tree, prefixing every route path
// with prefix: the full path of the route that lazily loads file, or ""
// for a configured routing file.
func (reg *Registry) processRoutingFile(file, prefix string) error {
	if _, visited := reg.seen[file]; visited {
		return nil
	}
	reg.seen[file] = struct{}{}

	src, err := reg.facade.Load(file)
	if err != nil {
		return err
	}
	if src.Tree == nil {
		return nil
	}
	decls := findAllDeclarators(src.Tree.RootNode(), src.Content)

	arrayNode, ok := routerArgument(src.Tree.RootNode(), src.Content, decls)
	if !ok {
		return nil
	}
	elements := ast.ArrayElements(arrayNode)
	return reg.parseElements(elements, src, prefix, file)
}

// routerArgument implements spec §4.H step 1: prefer a `routes`
// variable declared anywhere in the file; otherwise the first argument of
// `RouterModule.forRoot`/`forChild`, resolving an identifier argument
// to its initializer in the same file.
func routerArgument(root ts.Node, content []byte, decls map[string]ts.Node) (ts.Node, bool) {
	if v, ok := decls["routes"]; ok {
		return resolveToArray(v, content, decls)
	}

	var found *ts.Node
	walkAll(root, func(n ts.Node) bool {
		if found != nil {
			return false
		}
		if n.Kind() != "call_expression" {
			return true
		}
		fn := n.ChildByFieldName("function")
		if fn == nil || fn.Kind() != "member_expression" {
			return true
		}
		obj := fn.ChildByFieldName("object")
		prop := fn.ChildByFieldName("property")
		if obj == nil || prop == nil || obj.Utf8Text(content) != "RouterModule" {
			return true
		}
		name := prop.Utf8Text(content)
		if name != "forRoot" && name != "forChild" {
			return true
		}
		args := n.ChildByFieldName("arguments")
		if args == nil || args.NamedChildCount() == 0 {
			return true
		}
		arg := args.NamedChild(0)
		found = arg
		return false
	})
	if found == nil {
		return ts.Node{}, false
	}
	return resolveToArray(*found, content, decls)
}

// resolveToArray implements the "if the argument is an identifier,
// resolve it to its initializer in the same file; if it is an array
// literal, use it directly" rule of spec §4.H step 1.
func resolveToArray(n ts.Node, content []byte, decls map[string]ts.Node) (ts.Node, bool) {
	if n.Kind() == "identifier" {
		if v, ok := decls[n.Utf8Text(content)]; ok {
			return resolveToArray(v, content, decls)
		}
		return ts.Node{}, false
	}
	if n.Kind() == "array" {
		return n, true
	}
	return ts.Node{}, false
}

func (reg *Registry) parseElements(elements []ts.Node, src *ast.Source, prefix, module string) error {
	for _, el := range elements {
		if el.Kind() != "object" {
			continue
		}
		fields := ast.ObjectFields(el, src.Content)

		pathNode, hasPath := fields["path"]
		if !hasPath {
			continue
		}
		p, err := reg.evalPath(pathNode, src)
		if err != nil {
			return err
		}
		fullPath := joinRoutePath(prefix, p)

		pathMatch := ""
		if pmNode, ok := fields["pathMatch"]; ok {
			pathMatch, err = ast.EvalLiteral(pmNode, src.Content, src.Path)
			if err != nil {
				return err
			}
		}

		childModule := module
		if lcNode, ok := fields["loadChildren"]; ok {
			target, err := reg.extractLoadChildrenTarget(lcNode, src)
			if err != nil {
				return err
			}
			reg.addRoute(fullPath, pathMatch, target)
			childModule = target
			if err := reg.processRoutingFile(target, fullPath); err != nil {
				return err
			}
		} else if _, ok := fields["component"]; ok {
			reg.addRoute(fullPath, pathMatch, childModule)
		}

		if childrenNode, ok := fields["children"]; ok {
			if err := reg.parseElements(ast.ArrayElements(childrenNode), src, fullPath, childModule); err != nil {
				return err
			}
		}
	}
	return nil
}

// evalPath implements spec §4.H step 2's `path` rule: a literal, or
// (on literal-evaluation failure) an AppConstants.* access chain.
func (reg *Registry) evalPath(node ts.Node, src *ast.Source) (string, error) {
	if v, err := ast.EvalLiteral(node, src.Content, src.Path); err == nil {
		return v, nil
	}
	chain := memberChain(node, src.Content)
	if len(chain) < 2 || chain[0] != "AppConstants" {
		return "", &ParseError{File: src.Path, Text: node.Utf8Text(src.Content)}
	}
	return reg.walkConstantsChain(chain[1:], src)
}

func (reg *Registry) walkConstantsChain(segments []string, routeSrc *ast.Source) (string, error) {
	if reg.constSrc == nil {
		return "", &ParseError{File: routeSrc.Path, Text: "AppConstants." + strings.Join(segments, ".")}
	}
	fields := reg.constants
	var cur ts.Node
	for i, seg := range segments {
		v, ok := fields[seg]
		if !ok {
			return "", &ParseError{File: routeSrc.Path, Text: "AppConstants." + strings.Join(segments, ".")}
		}
		cur = v
		if i < len(segments)-1 {
			fields = ast.ObjectFields(cur, reg.constSrc.Content)
		}
	}
	return ast.EvalLiteral(cur, reg.constSrc.Content, reg.constSrc.Path)
}

// extractLoadChildrenTarget implements spec §4.H step 2's `loadChildren`
// rule: find the first `import(X)` call anywhere inside the function
// body and resolve its argument.
func (reg *Registry) extractLoadChildrenTarget(node ts.Node, src *ast.Source) (string, error) {
	var importCall *ts.Node
	walkAll(node, func(n ts.Node) bool {
		if importCall != nil {
			return false
		}
		if n.Kind() != "call_expression" {
			return true
		}
		fn := n.ChildByFieldName("function")
		if fn == nil || fn.Kind() != "import" {
			return true
		}
		importCall = &n
		return false
	})
	if importCall == nil {
		return "", &ParseError{File: src.Path, Text: node.Utf8Text(src.Content)}
	}
	args := importCall.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return "", &ParseError{File: src.Path, Text: node.Utf8Text(src.Content)}
	}
	specNode := args.NamedChild(0)
	spec, err := ast.EvalLiteral(*specNode, src.Content, src.Path)
	if err != nil {
		return "", err
	}
	target, ok := reg.resolver.Resolve(spec, src.Path)
	if !ok {
		return "", &ParseError{File: src.Path, Text: spec}
	}
	return target, nil
}

// joinRoutePath concatenates a parent prefix and a child path segment,
// treating an empty child path as "no additional segment" rather than
// introducing a stray "/".
func joinRoutePath(prefix, p string) string {
	prefix = strings.Trim(prefix, "/")
	p = strings.Trim(p, "/")
	switch {
	case prefix == "":
		return p
	case p == "":
		return prefix
	default:
		return prefix + "/" + p
	}
}

// memberChain flattens a (possibly nested) member_expression into its
// dotted identifier chain, e.g. `AppConstants.FOO.BAR` -> ["AppConstants","FOO","BAR"].
func memberChain(node ts.Node, content []byte) []string {
	switch node.Kind() {
	case "identifier":
		return []string{node.Utf8Text(content)}
	case "member_expression":
		obj := node.ChildByFieldName("object")
		prop := node.ChildByFieldName("property")
		if obj == nil || prop == nil {
			return nil
		}
		return append(memberChain(*obj, content), prop.Utf8Text(content))
	default:
		return nil
	}
}

// findDeclarator returns the object-literal fields of a `<name> = {...}`
// variable declarator found anywhere in the tree (or nil if none is found).
func findDeclarator(root ts.Node, content []byte, name string) map[string]ts.Node {
	decls := findAllDeclarators(root, content)
	if v, ok := decls[name]; ok && v.Kind() == "object" {
		return ast.ObjectFields(v, content)
	}
	return nil
}

// findAllDeclarators walks the whole tree collecting every
// `variable_declarator`'s name -> initializer-value mapping.
func findAllDeclarators(root ts.Node, content []byte) map[string]ts.Node {
	out := make(map[string]ts.Node)
	walkAll(root, func(n ts.Node) bool {
		if n.Kind() != "variable_declarator" {
			return true
		}
		nameNode := n.ChildByFieldName("name")
		valueNode := n.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil {
			return true
		}
		out[nameNode.Utf8Text(content)] = *valueNode
		return true
	})
	return out
}

// walkAll performs a pre-order traversal of the tree rooted at n,
// calling visit on every node; visit returns false to stop descending
// into that node's children (used to short-circuit once a match is
// found).
func walkAll(n ts.Node, visit func(ts.Node) bool) {
	if !visit(n) {
		return
	}
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		if c := n.Child(i); c != nil {
			walkAll(*c, visit)
		}
	}
}
