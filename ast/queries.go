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

package ast

import (
	"embed"
	"fmt"
	"path"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	tsTypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

//go:embed queries/typescript/*.scm
var queryFiles embed.FS

var language = ts.NewLanguage(tsTypescript.LanguageTypescript())

var tsParserPool = sync.Pool{
	New: func() any {
		parser := ts.NewParser()
		if err := parser.SetLanguage(language); err != nil {
			panic("ast: failed to set typescript language: " + err.Error())
		}
		return parser
	},
}

func getParser() *ts.Parser {
	return tsParserPool.Get().(*ts.Parser)
}

func putParser(p *ts.Parser) {
	p.Reset()
	tsParserPool.Put(p)
}

// queryManager owns the compiled, embedded .scm queries the extractors
// run against a parsed tree. One process-wide instance, built once by
// globalQueryManager, is shared the way the teacher's trace.QueryManager
// is shared; newQueryManager compiles the named embedded queries.
type queryManager struct {
	mu      sync.Mutex
	queries map[string]*ts.Query
}

func newQueryManager(names ...string) (*queryManager, error) {
	qm := &queryManager{queries: make(map[string]*ts.Query)}
	for _, name := range names {
		queryPath := path.Join("queries", "typescript", name+".scm")
		data, err := queryFiles.ReadFile(queryPath)
		if err != nil {
			return nil, fmt.Errorf("ast: reading embedded query %s: %w", queryPath, err)
		}
		q, err := ts.NewQuery(language, string(data))
		if err != nil {
			return nil, fmt.Errorf("ast: compiling query %s: %w", name, err)
		}
		qm.queries[name] = q
	}
	return qm, nil
}

func (qm *queryManager) get(name string) (*ts.Query, error) {
	qm.mu.Lock()
	defer qm.mu.Unlock()
	q, ok := qm.queries[name]
	if !ok {
		return nil, fmt.Errorf("ast: query not found: %s", name)
	}
	return q, nil
}

func (qm *queryManager) Close() {
	qm.mu.Lock()
	defer qm.mu.Unlock()
	for _, q := range qm.queries {
		q.Close()
	}
	qm.queries = nil
}

var (
	globalQM     *queryManager
	globalQMOnce sync.Once
	globalQMErr  error
)

func globalQueryManager() (*queryManager, error) {
	globalQMOnce.Do(func() {
		globalQM, globalQMErr = newQueryManager("imports", "decorators")
	})
	return globalQM, globalQMErr
}
