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

// Package match implements the URL -> Module Matcher (spec §4.I): for
// every crawled URL, finds the routes it satisfies and accumulates the
// corresponding page-module set, then diffs that set against a golden
// manifest.
package match

import (
	"fmt"
	"path"
	"strings"

	"oppia.dev/depgraph/fs"
	"oppia.dev/depgraph/model"
)

// Matcher accumulates the page-module set implied by a sequence of
// registered URLs against a fixed route table.
type Matcher struct {
	table        model.RouteTable
	hostPrefixes []string
	excluded     map[string]map[string]struct{} // goldenPath -> pageModule -> excluded

	goldenPath string

	collected      []string
	collectedSet   map[string]struct{}
	errs           []string
	errSeen        map[string]struct{}
}

// New creates a Matcher for a fixed route table. hostPrefixes are the
// known `http://<host>:<port>/` prefixes registerUrl strips; excluded
// is the per-golden-path module exclusion list (spec §4.I registerUrl).
func New(table model.RouteTable, hostPrefixes []string, excluded map[string]map[string]struct{}) *Matcher {
	return &Matcher{
		table:        table,
		hostPrefixes: hostPrefixes,
		excluded:     excluded,
		collectedSet: make(map[string]struct{}),
		errSeen:      make(map[string]struct{}),
	}
}

// SetGoldenFilePath installs the manifest path for this run.
func (m *Matcher) SetGoldenFilePath(p string) {
	m.goldenPath = p
}

// RegisterUrl strips a known host prefix (ignoring the URL entirely if
// none matches) and records every page module any route matches,
// subject to the active golden path's exclusion list. A URL matching
// no route records a deduplicated error.
func (m *Matcher) RegisterUrl(u string) {
	stripped, ok := m.stripHostPrefix(u)
	if !ok {
		return
	}

	matched := false
	for _, route := range m.table.Routes {
		if !matchRoute(route, stripped) {
			continue
		}
		matched = true
		if m.isExcluded(route.PageModule) {
			continue
		}
		if _, seen := m.collectedSet[route.PageModule]; seen {
			continue
		}
		m.collectedSet[route.PageModule] = struct{}{}
		m.collected = append(m.collected, route.PageModule)
	}

	if !matched {
		msg := fmt.Sprintf("no route matches URL %q", u)
		if _, seen := m.errSeen[msg]; !seen {
			m.errSeen[msg] = struct{}{}
			m.errs = append(m.errs, msg)
		}
	}
}

func (m *Matcher) isExcluded(pageModule string) bool {
	byModule, ok := m.excluded[m.goldenPath]
	if !ok {
		return false
	}
	_, excluded := byModule[pageModule]
	return excluded
}

func (m *Matcher) stripHostPrefix(u string) (string, bool) {
	for _, prefix := range m.hostPrefixes {
		if strings.HasPrefix(u, prefix) {
			return "/" + strings.TrimPrefix(u, prefix), true
		}
	}
	return "", false
}

// matchRoute implements spec §4.I's match algorithm.
func matchRoute(r model.Route, u string) bool {
	if r.Path == u {
		return true
	}

	segments := splitSegments(u)
	if len(segments) == 0 {
		return false
	}

	parts := strings.Split(r.Path, "/")
	if len(parts) > len(segments) {
		return false
	}
	if r.PathMatch == "full" && len(parts) < len(segments) {
		return false
	}

	for i, part := range parts {
		if strings.HasPrefix(part, ":") {
			continue
		}
		if part != segments[i] {
			return false
		}
	}
	return true
}

func splitSegments(u string) []string {
	trimmed := strings.Trim(u, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// MismatchError reports every accumulated registration error plus any
// divergence between the collected and golden module sets (spec §4.I
// compareAndOutputModules).
type MismatchError struct {
	RegistrationErrors []string
	MissingFromGolden  []string // collected but not in golden
	MissingFromRun     []string // in golden but never collected
}

func (e *MismatchError) Error() string {
	var b strings.Builder
	b.WriteString("match: url-to-module comparison failed")
	for _, m := range e.RegistrationErrors {
		b.WriteString("; " + m)
	}
	for _, m := range e.MissingFromGolden {
		b.WriteString(fmt.Sprintf("; collected module %q is not in the golden manifest", m))
	}
	for _, m := range e.MissingFromRun {
		b.WriteString(fmt.Sprintf("; golden module %q was never collected", m))
	}
	return b.String()
}

// CompareAndOutputModules writes the collected set to a generated
// manifest alongside the golden file (always written, independent of
// pass/fail), then fails if any registration errors accumulated or the
// collected and golden sets diverge.
func (m *Matcher) CompareAndOutputModules(fsys fs.FileSystem, golden []string) error {
	generatedPath := generatedManifestPath(m.goldenPath)
	data := []byte(strings.Join(m.collected, "\n"))
	if len(m.collected) > 0 {
		data = append(data, '\n')
	}
	if err := fsys.WriteFile(generatedPath, data, 0o644); err != nil {
		return err
	}

	goldenSet := make(map[string]struct{}, len(golden))
	for _, g := range golden {
		goldenSet[g] = struct{}{}
	}

	var missingFromGolden []string
	for _, c := range m.collected {
		if _, ok := goldenSet[c]; !ok {
			missingFromGolden = append(missingFromGolden, c)
		}
	}
	var missingFromRun []string
	for _, g := range golden {
		if _, ok := m.collectedSet[g]; !ok {
			missingFromRun = append(missingFromRun, g)
		}
	}

	if len(m.errs) > 0 || len(missingFromGolden) > 0 || len(missingFromRun) > 0 {
		return &MismatchError{
			RegistrationErrors: m.errs,
			MissingFromGolden:  missingFromGolden,
			MissingFromRun:     missingFromRun,
		}
	}
	return nil
}

// generatedManifestPath implements spec §6's "generated sibling of the
// golden manifest, with suffix -generated.txt".
func generatedManifestPath(goldenPath string) string {
	ext := path.Ext(goldenPath)
	base := strings.TrimSuffix(goldenPath, ext)
	return base + "-generated.txt"
}
