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

package graph

import (
	"runtime"
	"strings"
	"sync"

	"oppia.dev/depgraph/ast"
	"oppia.dev/depgraph/config"
	"oppia.dev/depgraph/framework"
	"oppia.dev/depgraph/model"
	"oppia.dev/depgraph/resolve"
)

// Result is the Edge-Set Builder's single output: the fully-seeded
// dependency graph and the framework-info map it was built against.
type Result struct {
	Graph *model.DependencyGraph
	Infos model.FrameworkInfoMap
}

// Build implements the Edge-Set Builder (spec §4.F): discovers files
// once, builds the framework-info map by invoking the Framework Symbol
// Extractor on every non-spec typed/untyped file, then builds the
// dependency graph by dispatching the Typed-Source or HTML extractor
// per file extension, seeded with the manual-override table. File
// processing within each stage fans out over a bounded worker pool
// (grounded on the teacher's TraceBatch goroutine-pool shape), but
// results are merged into the graph in a fixed file order so the
// output is independent of goroutine scheduling.
func Build(facade *ast.Facade, r *resolve.Resolver, cfg *config.Config) (*Result, error) {
	files, err := facade.EnumerateFiles()
	if err != nil {
		return nil, err
	}

	infos, err := buildFrameworkInfoMap(facade, r, files)
	if err != nil {
		return nil, err
	}

	graph := model.NewDependencyGraph()
	for file, deps := range cfg.ManualDependencyOverrides {
		graph.AddAll(file, deps)
	}

	edgesByFile, err := buildEdges(facade, r, files, infos)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if deps, ok := edgesByFile[file]; ok {
			graph.AddAll(file, deps)
		}
	}

	return &Result{Graph: graph, Infos: infos}, nil
}

func isSpecFile(file string) bool {
	return strings.HasSuffix(file, ".spec.ts")
}

func workerCount() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}

func buildFrameworkInfoMap(facade *ast.Facade, r *resolve.Resolver, files []string) (model.FrameworkInfoMap, error) {
	type job struct {
		file  string
		infos []model.FrameworkInfo
		err   error
	}
	jobs := make([]job, len(files))
	for i, f := range files {
		jobs[i].file = f
	}

	sem := make(chan struct{}, workerCount())
	var wg sync.WaitGroup
	for i := range jobs {
		file := jobs[i].file
		if !(strings.HasSuffix(file, ".ts") || strings.HasSuffix(file, ".js")) || isSpecFile(file) {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, file string) {
			defer wg.Done()
			defer func() { <-sem }()
			src, err := facade.Load(file)
			if err != nil {
				jobs[i].err = err
				return
			}
			infos, err := framework.Extract(facade, r, src)
			if err != nil {
				jobs[i].err = err
				return
			}
			jobs[i].infos = infos
		}(i, file)
	}
	wg.Wait()

	out := make(model.FrameworkInfoMap, len(files))
	for _, j := range jobs {
		if j.err != nil {
			return nil, j.err
		}
		out[j.file] = j.infos
	}
	return out, nil
}

func buildEdges(facade *ast.Facade, r *resolve.Resolver, files []string, infos model.FrameworkInfoMap) (map[string][]string, error) {
	type job struct {
		file string
		deps []string
		err  error
	}
	jobs := make([]job, len(files))
	for i, f := range files {
		jobs[i].file = f
	}

	sem := make(chan struct{}, workerCount())
	var wg sync.WaitGroup
	for i := range jobs {
		kind := model.ClassifyPath(jobs[i].file)
		if kind != model.KindTypedSource && kind != model.KindSource && kind != model.KindMarkup {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			file := jobs[i].file
			switch model.ClassifyPath(file) {
			case model.KindTypedSource, model.KindSource:
				src, err := facade.Load(file)
				if err != nil {
					jobs[i].err = err
					return
				}
				deps, err := TypedSourceEdges(facade, r, src, infos[file])
				if err != nil {
					jobs[i].err = err
					return
				}
				jobs[i].deps = deps
			case model.KindMarkup:
				src, err := facade.Load(file)
				if err != nil {
					jobs[i].err = err
					return
				}
				deps, err := HTMLEdges(r, file, src.Content, infos)
				if err != nil {
					jobs[i].err = err
					return
				}
				jobs[i].deps = deps
			}
		}(i)
	}
	wg.Wait()

	out := make(map[string][]string, len(files))
	for _, j := range jobs {
		if j.err != nil {
			return nil, j.err
		}
		if j.deps != nil {
			out[j.file] = j.deps
		}
	}
	return out, nil
}
