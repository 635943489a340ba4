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

// Package ast implements the AST Facade (spec §4.B): deterministic file
// enumeration, lazy cached source loading, and a small literal-expression
// evaluator, all wrapping the tree-sitter TypeScript grammar the way the
// teacher's trace.QueryManager wraps tree-sitter for imports.
package ast

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	ignore "github.com/sabhiram/go-gitignore"
	ts "github.com/tree-sitter/go-tree-sitter"
	"github.com/bmatcuk/doublestar/v4"

	"oppia.dev/depgraph/config"
	"oppia.dev/depgraph/fs"
)

// EvalError is a precise literal-evaluation failure: the node text and the
// file it appears in (spec §4.B: "throwing a precise error with the node
// text and file path on failure").
type EvalError struct {
	File string
	Text string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("ast: cannot evaluate literal expression %q in %s", e.Text, e.File)
}

// Source is a parsed, cached file: its raw bytes and (for .ts/.js files)
// its tree-sitter tree.
type Source struct {
	Path    string
	Content []byte
	Tree    *ts.Tree
}

// Facade enumerates a repo and lazily loads/parses its source files. It is
// the single owner of parsed trees; callers never parse files themselves.
type Facade struct {
	fsys fs.FileSystem
	cfg  *config.Config

	qm *queryManager

	mu    sync.Mutex
	cache map[string]*Source
}

// New creates a Facade for the given repo configuration, using the shared
// process-wide query manager (spec §4.B invariant: enumeration/parsing are
// deterministic and stable given the same filesystem snapshot, so a shared
// cache across calls is safe).
func New(fsys fs.FileSystem, cfg *config.Config) (*Facade, error) {
	qm, err := globalQueryManager()
	if err != nil {
		return nil, err
	}
	return &Facade{fsys: fsys, cfg: cfg, qm: qm, cache: make(map[string]*Source)}, nil
}

// EnumerateFiles walks the repo root for every file whose extension is in
// cfg.IncludeExtensions, excluding .gitignore patterns and the fixed set
// of analyzer-internal paths. The result is sorted for determinism across
// runs (spec §4.B invariant).
func (f *Facade) EnumerateFiles() ([]string, error) {
	gi := ignore.CompileIgnoreLines(append(
		append([]string{}, f.cfg.GitignorePatterns...),
		f.cfg.InternalExcludePatterns...,
	)...)

	seen := make(map[string]struct{})
	var out []string
	for _, ext := range f.cfg.IncludeExtensions {
		pattern := "**/*" + ext
		matches, err := doublestar.Glob(f.fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("ast: enumerating %s: %w", pattern, err)
		}
		for _, m := range matches {
			if gi.MatchesPath(m) {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Load lazily reads and (for .ts/.js) parses a file, caching the result.
func (f *Facade) Load(path string) (*Source, error) {
	f.mu.Lock()
	if src, ok := f.cache[path]; ok {
		f.mu.Unlock()
		return src, nil
	}
	f.mu.Unlock()

	content, err := f.fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ast: reading %s: %w", path, err)
	}

	src := &Source{Path: path, Content: content}
	if strings.HasSuffix(path, ".ts") || strings.HasSuffix(path, ".js") {
		parser := getParser()
		defer putParser(parser)
		tree := parser.Parse(content, nil)
		if tree == nil {
			return nil, fmt.Errorf("ast: failed to parse %s", path)
		}
		src.Tree = tree
	}

	f.mu.Lock()
	f.cache[path] = src
	f.mu.Unlock()
	return src, nil
}

// EvalLiteral evaluates a node known to be a constant literal string, a
// template string without substitutions, or a `+` concatenation of such
// (spec §4.B / Design Notes §9). filePath is only used for error context.
func EvalLiteral(node ts.Node, content []byte, filePath string) (string, error) {
	switch node.Kind() {
	case "string":
		return unquote(node.Utf8Text(content)), nil
	case "template_string":
		text := node.Utf8Text(content)
		if strings.Contains(text, "${") {
			return "", &EvalError{File: filePath, Text: text}
		}
		return strings.TrimSuffix(strings.TrimPrefix(text, "`"), "`"), nil
	case "binary_expression":
		opNode := node.ChildByFieldName("operator")
		leftNode := node.ChildByFieldName("left")
		rightNode := node.ChildByFieldName("right")
		if opNode == nil || leftNode == nil || rightNode == nil || opNode.Utf8Text(content) != "+" {
			return "", &EvalError{File: filePath, Text: node.Utf8Text(content)}
		}
		left, err := EvalLiteral(*leftNode, content, filePath)
		if err != nil {
			return "", err
		}
		right, err := EvalLiteral(*rightNode, content, filePath)
		if err != nil {
			return "", err
		}
		return left + right, nil
	case "parenthesized_expression":
		inner := node.NamedChild(0)
		if inner == nil {
			return "", &EvalError{File: filePath, Text: node.Utf8Text(content)}
		}
		return EvalLiteral(*inner, content, filePath)
	default:
		return "", &EvalError{File: filePath, Text: node.Utf8Text(content)}
	}
}

func unquote(text string) string {
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}

// ObjectFields shallow-walks a tree-sitter `object` node's direct `pair`
// children, returning key -> value-node. Nested objects (e.g. a route's
// `children` array of objects) are not descended into; callers recurse
// explicitly via ArrayElements/ObjectFields on the returned value nodes,
// which keeps recursion depth under caller control (needed by the Route
// Registry's nested `children` walk, spec §4.H).
func ObjectFields(node ts.Node, content []byte) map[string]ts.Node {
	fields := make(map[string]ts.Node)
	n := node.NamedChildCount()
	for i := uint(0); i < n; i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() != "pair" {
			continue
		}
		keyNode := child.ChildByFieldName("key")
		valNode := child.ChildByFieldName("value")
		if keyNode == nil || valNode == nil {
			continue
		}
		key := strings.Trim(keyNode.Utf8Text(content), `'"`)
		fields[key] = *valNode
	}
	return fields
}

// ArrayElements shallow-walks a tree-sitter `array` node's direct named
// children (its elements).
func ArrayElements(node ts.Node) []ts.Node {
	var out []ts.Node
	n := node.NamedChildCount()
	for i := uint(0); i < n; i++ {
		if c := node.NamedChild(i); c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// QueryCursor compiles and runs a named embedded query against root,
// invoking visit once per match with a map of capture name -> node. The
// framework and typed-source extractors (C, D) walk trees through it
// (the Route Registry uses its own tree walk), mirroring the teacher's own match-then-dispatch loop in
// trace/imports.go.
func (f *Facade) QueryCursor(queryName string, root ts.Node, content []byte, visit func(captures map[string][]ts.Node)) error {
	query, err := f.qm.get(queryName)
	if err != nil {
		return err
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	names := query.CaptureNames()
	matches := cursor.Matches(query, root, content)
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		captures := make(map[string][]ts.Node)
		for _, c := range match.Captures {
			name := names[c.Index]
			captures[name] = append(captures[name], c.Node)
		}
		visit(captures)
	}
	return nil
}
