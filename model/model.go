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

// Package model holds the shared data types read and written by every
// stage of the dependency-graph analyzer: FrameworkInfo, DependencyGraph,
// RootFilesMap, and Route. Ownership of the values is described where each
// type is produced; no package other than the owner mutates them.
package model

import "strings"

// Kind classifies a tracked file by extension. Only TypedSource, Source,
// and Markup files carry outgoing edges; Stylesheet and Opaque files are
// terminal nodes, present only if referenced.
type Kind int

const (
	KindOpaque Kind = iota
	KindTypedSource
	KindSource
	KindMarkup
	KindStylesheet
)

// ClassifyPath returns the Kind implied by a repo-relative file path's
// extension suffix.
func ClassifyPath(path string) Kind {
	switch {
	case strings.HasSuffix(path, ".ts"):
		return KindTypedSource
	case strings.HasSuffix(path, ".js"):
		return KindSource
	case strings.HasSuffix(path, ".html"):
		return KindMarkup
	case strings.HasSuffix(path, ".css"):
		return KindStylesheet
	default:
		return KindOpaque
	}
}

// FrameworkKind is the closed tagged-variant of recognized annotations.
// Unknown decorator callees never produce a FrameworkInfo.
type FrameworkKind int

const (
	FrameworkModule FrameworkKind = iota
	FrameworkComponent
	FrameworkDirective
	FrameworkPipe
)

// FrameworkInfo describes one framework annotation found on a class
// declaration. A single file may contribute more than one FrameworkInfo
// (e.g. a module and a component declared in the same file). Owned
// exclusively by the Edge-Set Builder (package graph); Root Projector and
// Route Registry only read it.
type FrameworkInfo struct {
	Kind             FrameworkKind
	File             string // file this class declaration lives in
	ClassName        string
	Selector         string // Component/Directive selector, or Pipe's `name`
	TemplateFilePath string // Component's resolved templateUrl, if any
}

// IsModule reports whether this info marks its File as an `angularModule`
// per spec §4.G.
func (fi FrameworkInfo) IsModule() bool { return fi.Kind == FrameworkModule }

// FrameworkInfoMap maps a file to the (possibly empty, possibly
// multi-element) list of FrameworkInfo values it contributes. Spec files
// are present with an empty slice by convention; they are never emitters.
type FrameworkInfoMap map[string][]FrameworkInfo

// HasModule reports whether any FrameworkInfo for `file` is a Module.
func (m FrameworkInfoMap) HasModule(file string) bool {
	for _, fi := range m[file] {
		if fi.IsModule() {
			return true
		}
	}
	return false
}

// DependencyGraph maps a file to its ordered, deduplicated outgoing
// edges, preserving first-discovery order for deterministic output.
// Owned exclusively by the Edge-Set Builder (package graph).
type DependencyGraph struct {
	edges map[string][]string
	index map[string]map[string]int // file -> (target -> position), for O(1) membership
}

// NewDependencyGraph returns an empty graph ready for Add calls.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		edges: make(map[string][]string),
		index: make(map[string]map[string]int),
	}
}

// Add records an edge file -> dep, deduplicating against prior calls for
// the same file while preserving first-seen order.
func (g *DependencyGraph) Add(file, dep string) {
	if g.index[file] == nil {
		g.index[file] = make(map[string]int)
	}
	if _, seen := g.index[file][dep]; seen {
		return
	}
	g.index[file][dep] = len(g.edges[file])
	g.edges[file] = append(g.edges[file], dep)
}

// AddAll records file -> dep for every dep in deps, in order.
func (g *DependencyGraph) AddAll(file string, deps []string) {
	for _, d := range deps {
		g.Add(file, d)
	}
}

// Deps returns the ordered, deduplicated dependency list for file. The
// returned slice must not be mutated by callers.
func (g *DependencyGraph) Deps(file string) []string {
	return g.edges[file]
}

// Files returns every file that has at least one recorded outgoing edge.
// Order is not guaranteed; callers that need determinism should sort.
func (g *DependencyGraph) Files() []string {
	files := make([]string, 0, len(g.edges))
	for f := range g.edges {
		files = append(files, f)
	}
	return files
}

// AllFiles returns the union of every file that appears as a source or
// as a target anywhere in the graph.
func (g *DependencyGraph) AllFiles() []string {
	seen := make(map[string]struct{})
	var out []string
	for f, deps := range g.edges {
		if _, ok := seen[f]; !ok {
			seen[f] = struct{}{}
			out = append(out, f)
		}
		for _, d := range deps {
			if _, ok := seen[d]; !ok {
				seen[d] = struct{}{}
				out = append(out, d)
			}
		}
	}
	return out
}

// ReverseEdges computes, for every target file, the ordered-unique list of
// files that depend on it (first-seen order across a stable iteration of
// Files()). This is the raw reverse index that the roots package's
// Projector.refs filters.
func (g *DependencyGraph) ReverseEdges() map[string][]string {
	rev := make(map[string][]string)
	revIndex := make(map[string]map[string]int)
	files := g.Files()
	// Stable order: callers of ReverseEdges that care about determinism
	// should pass a graph whose Files() iteration order doesn't matter,
	// since we sort the source file list before walking it.
	sortStrings(files)
	for _, f := range files {
		for _, dep := range g.Deps(f) {
			if revIndex[dep] == nil {
				revIndex[dep] = make(map[string]int)
			}
			if _, seen := revIndex[dep][f]; seen {
				continue
			}
			revIndex[dep][f] = len(rev[dep])
			rev[dep] = append(rev[dep], f)
		}
	}
	return rev
}

func sortStrings(s []string) {
	// small insertion sort avoids importing sort for one call site; kept
	// here because DependencyGraph is on the hot path for every file in
	// the repo and this file is otherwise import-light.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// RootFilesMap maps a file to the set of root files that transitively
// depend on it. Owned exclusively by the Root Projector (package roots).
type RootFilesMap map[string][]string

// Route pairs a route path pattern with the page-module file it targets.
// Stored in an ordered collection by the Route Registry; first-match-wins
// is NOT assumed by the matcher, which accumulates all matches.
type Route struct {
	Path       string
	PathMatch  string // "" or "full"
	PageModule string
}

// RouteTable is the Route Registry's read-only, ordered output.
type RouteTable struct {
	Routes []Route
}
