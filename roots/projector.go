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

// Package roots implements the Root Projector (spec §4.G): a two-pass
// reverse-reachability walk that, for every file in the dependency
// graph, projects the set of "roots" -- page modules or unreferenced
// entry files -- that transitively depend on it.
package roots

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"oppia.dev/depgraph/model"
)

const refsCacheSize = 4096

// Projector holds the read-only inputs of a single projection run.
type Projector struct {
	graph             *model.DependencyGraph
	infos             model.FrameworkInfoMap
	pageModules       map[string]struct{}
	whitelist         map[string]struct{}
	acceptanceTestDir string

	reverse map[string][]string
}

// New builds a Projector. pageModules is the page-module set `P`
// (spec §4.G Inputs); whitelist is the small fixed set of always-valid
// root files; acceptanceTestDir excludes its own `.spec.ts` files from
// the frontendTestFile exception (they are end-to-end tests instead).
func New(graph *model.DependencyGraph, infos model.FrameworkInfoMap, pageModules, whitelist map[string]struct{}, acceptanceTestDir string) *Projector {
	return &Projector{
		graph:             graph,
		infos:             infos,
		pageModules:       pageModules,
		whitelist:         whitelist,
		acceptanceTestDir: acceptanceTestDir,
		reverse:           graph.ReverseEdges(),
	}
}

func (p *Projector) isAngularModule(file string) bool {
	return p.infos.HasModule(file)
}

func (p *Projector) isFrontendTestFile(file string) bool {
	if !strings.HasSuffix(file, ".spec.ts") {
		return false
	}
	if p.acceptanceTestDir != "" && strings.HasPrefix(file, p.acceptanceTestDir+"/") {
		return false
	}
	return true
}

// refs computes Refs(x, ignoreModules) using cache as its memoization
// table (spec §4.G: "results... are memoized").
func (p *Projector) refs(cache *lru.Cache[refsKey, []string], x string, ignoreModules bool) []string {
	key := refsKey{x: x, ignoreModules: ignoreModules}
	if v, ok := cache.Get(key); ok {
		return v
	}
	var out []string
	for _, k := range p.reverse[x] {
		if p.isFrontendTestFile(k) {
			continue
		}
		if ignoreModules && p.isAngularModule(k) {
			continue
		}
		out = append(out, k)
	}
	cache.Add(key, out)
	return out
}

type refsKey struct {
	x             string
	ignoreModules bool
}

// r computes R(x, ignoreModules, visited) per spec §4.G.
func (p *Projector) r(cache *lru.Cache[refsKey, []string], x string, ignoreModules bool, visited map[string]struct{}) []string {
	if _, ok := visited[x]; ok {
		return nil
	}
	visited[x] = struct{}{}

	refs := p.refs(cache, x, ignoreModules)
	if len(refs) == 0 {
		return []string{x}
	}
	if _, ok := p.pageModules[x]; ok {
		return []string{x}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, ref := range refs {
		for _, root := range p.r(cache, ref, ignoreModules, visited) {
			if _, ok := seen[root]; ok {
				continue
			}
			seen[root] = struct{}{}
			out = append(out, root)
		}
	}
	return out
}

// ValidationError lists every emitted root that belongs to none of the
// page-module set, the whitelist, or the frontendTestFile exception
// (spec §4.G Validation).
type ValidationError struct {
	Offenders []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("roots: invalid root files: %s", strings.Join(e.Offenders, ", "))
}

// Project runs the two-pass projection over every file that appears in
// the dependency graph (as source or target), returning the validated
// RootFilesMap.
func (p *Projector) Project() (model.RootFilesMap, error) {
	files := p.graph.AllFiles()

	pass1Cache, _ := lru.New[refsKey, []string](refsCacheSize)
	pass1 := make(map[string][]string, len(files))
	for _, f := range files {
		pass1[f] = p.r(pass1Cache, f, true, make(map[string]struct{}))
	}

	pass2Cache, _ := lru.New[refsKey, []string](refsCacheSize)
	result := make(model.RootFilesMap, len(files))
	offendersSeen := make(map[string]struct{})
	var offenders []string

	for _, f := range files {
		seen := make(map[string]struct{})
		var expanded []string
		for _, root := range pass1[f] {
			for _, finalRoot := range p.r(pass2Cache, root, false, make(map[string]struct{})) {
				if _, ok := seen[finalRoot]; ok {
					continue
				}
				seen[finalRoot] = struct{}{}
				expanded = append(expanded, finalRoot)

				if !p.isValidRoot(finalRoot) {
					if _, ok := offendersSeen[finalRoot]; !ok {
						offendersSeen[finalRoot] = struct{}{}
						offenders = append(offenders, finalRoot)
					}
				}
			}
		}
		result[f] = expanded
	}

	if len(offenders) > 0 {
		return nil, &ValidationError{Offenders: offenders}
	}
	return result, nil
}

func (p *Projector) isValidRoot(root string) bool {
	if _, ok := p.pageModules[root]; ok {
		return true
	}
	if _, ok := p.whitelist[root]; ok {
		return true
	}
	if p.isFrontendTestFile(root) {
		return true
	}
	return false
}
