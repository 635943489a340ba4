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

// Package config loads the analyzer's repo-wide configuration: tsconfig
// path aliases, the frozen virtual-alias and host-builtin tables, the
// manual-overrides tables, and the well-known filesystem locations the
// rest of the analyzer treats as implicit inputs.
package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"oppia.dev/depgraph/fs"
)

// VirtualAliases is the frozen set of bundler-defined virtual aliases
// (spec §6). A trailing "/*" is never present here; resolve.Resolver
// strips it from configured tsconfig aliases before comparing against
// both tables uniformly.
var VirtualAliases = map[string]string{
	"assets/constants":                     "assets/constants.ts",
	"assets/rich_text_component_definitions": "assets/rich_text_components_definitions.ts",
	"assets":                                "assets",
	"core/templates":                        "core/templates",
	"extensions":                            "extensions",
}

// HostBuiltins is the frozen set of host stdlib modules always treated as
// repo-external (spec §6).
var HostBuiltins = map[string]struct{}{
	"fs":             {},
	"path":           {},
	"console":        {},
	"child_process":  {},
}

// DefaultBareRoot is the fixed default root a surviving bare specifier
// (step 4 of 4.A) is joined onto before being re-rooted onto the repo.
const DefaultBareRoot = "core/templates"

// VendoredLibraryRoot is the directory under which a bare specifier's
// first path segment is checked to decide library-externality (step 1 of
// 4.A).
const VendoredLibraryRoot = "third_party/static"

// Config is the analyzer's fully loaded, read-only configuration.
type Config struct {
	RootDir string

	// TSConfigPaths is compilerOptions.paths from tsconfig.json, alias
	// pattern -> candidate targets (first entry that resolves wins).
	TSConfigPaths map[string][]string

	// GitignorePatterns extends the enumeration exclusion list (spec §4.B).
	GitignorePatterns []string

	// ManualDependencyOverrides maps a file to dependencies the analyzer
	// cannot infer and must be told about (spec glossary: manual override).
	ManualDependencyOverrides map[string][]string

	// ManualRouteOverrides maps a partial Route key to a page-module file,
	// merged as the initial entries of the Route Registry's output.
	ManualRouteOverrides []ManualRoute

	// RootWhitelist is the small fixed set of always-valid root files
	// (documentation, CI-suite manifests, "run all tests" anchors).
	RootWhitelist map[string]struct{}

	// RoutingFiles are the one or more typed source files exporting a
	// route table (spec §4.H: "a main root and a lightweight root").
	RoutingFiles []string

	// ConstantsModulePath is the well-known constants module consulted
	// when a route's path is an AppConstants.* access chain.
	ConstantsModulePath string

	// CISuiteDir is the directory of CI test-suite JSON configs whose
	// `suites[].module` fields extend RootWhitelist.
	CISuiteDir string

	// AcceptanceTestDir holds frontend spec files that are end-to-end,
	// not unit, tests (spec §4.G frontendTestFile exception).
	AcceptanceTestDir string

	// IncludeExtensions are the extensions the AST Facade enumerates.
	IncludeExtensions []string

	// InternalExcludePatterns are analyzer-internal paths excluded from
	// enumeration regardless of .gitignore content.
	InternalExcludePatterns []string
}

// ManualRoute is one entry of the route-registry manual-override table: a
// partial Route key (path is required; pathMatch optional) mapped
// directly to a page module.
type ManualRoute struct {
	Path       string
	PathMatch  string
	PageModule string
}

// tsconfigFile models the subset of tsconfig.json the resolver consults.
type tsconfigFile struct {
	CompilerOptions struct {
		Paths map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// Default returns the Config for rootDir with the frozen/manual tables
// the analyzer ships with and the well-known file locations from spec §6,
// then layers in whatever tsconfig.json and .gitignore it finds on disk.
func Default(fsys fs.FileSystem, rootDir string) (*Config, error) {
	cfg := &Config{
		RootDir: rootDir,
		ManualDependencyOverrides: map[string][]string{
			// The route table's object literal cannot be statically
			// resolved to file edges by the extractors below it (it is
			// consumed by an external route-table collaborator), so its
			// dependency on the constants module is declared here.
			"core/templates/pages/oppia-root/routing/app.routing.module.ts": {
				"assets/constants.ts",
			},
		},
		ManualRouteOverrides: []ManualRoute{
			{Path: "splash", PageModule: "core/templates/pages/splash-page/splash-page.import.ts"},
		},
		RootWhitelist: map[string]struct{}{
			"core/templates/tests/karma-test-runner.html": {},
			"core/templates/utility/hashes.ts":            {},
		},
		RoutingFiles: []string{
			"core/templates/pages/oppia-root/routing/app.routing.module.ts",
			"core/templates/pages/oppia-root/routing/lazy.routing.module.ts",
		},
		ConstantsModulePath: "assets/constants.ts",
		CISuiteDir:          "core/tests/test-suites",
		AcceptanceTestDir:   "core/tests/puppeteer-acceptance-tests",
		IncludeExtensions:   []string{".ts", ".js", ".html", ".css"},
		InternalExcludePatterns: []string{
			"node_modules/**",
			"third_party/generated/**",
			".git/**",
		},
	}

	if err := cfg.loadTSConfig(fsys); err != nil {
		return nil, err
	}
	if err := cfg.loadGitignore(fsys); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadTSConfig(fsys fs.FileSystem) error {
	p := filepath.Join(c.RootDir, "tsconfig.json")
	data, err := fsys.ReadFile(p)
	if err != nil {
		// A missing tsconfig.json is not an error: the alias table is
		// left empty, so only the frozen virtual aliases apply.
		c.TSConfigPaths = map[string][]string{}
		return nil
	}
	var parsed tsconfigFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parsing %s: %w", p, err)
	}
	c.TSConfigPaths = parsed.CompilerOptions.Paths
	return nil
}

func (c *Config) loadGitignore(fsys fs.FileSystem) error {
	p := filepath.Join(c.RootDir, ".gitignore")
	data, err := fsys.ReadFile(p)
	if err != nil {
		c.GitignorePatterns = nil
		return nil
	}
	c.GitignorePatterns = splitNonCommentLines(string(data))
	return nil
}

func splitNonCommentLines(content string) []string {
	var lines []string
	start := 0
	for i := 0; i <= len(content); i++ {
		if i == len(content) || content[i] == '\n' {
			line := content[start:i]
			line = trimCR(line)
			if line != "" && line[0] != '#' {
				lines = append(lines, line)
			}
			start = i + 1
		}
	}
	return lines
}

func trimCR(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\r' {
		return s[:len(s)-1]
	}
	return s
}

// SuiteWhitelist reads every JSON file under CISuiteDir, collecting
// `suites[].module` values to extend the root whitelist (spec §6).
func (c *Config) SuiteWhitelist(fsys fs.FileSystem) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	dir := filepath.Join(c.RootDir, c.CISuiteDir)
	if !fsys.Exists(dir) {
		return out, nil
	}
	pattern := filepath.ToSlash(filepath.Join(dir, "*.json"))
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("config: globbing CI suite dir %s: %w", dir, err)
	}
	for _, m := range matches {
		data, err := fsys.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("config: reading suite file %s: %w", m, err)
		}
		var parsed struct {
			Suites []struct {
				Module string `json:"module"`
			} `json:"suites"`
		}
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("config: parsing suite file %s: %w", m, err)
		}
		for _, s := range parsed.Suites {
			if s.Module != "" {
				out[s.Module] = struct{}{}
			}
		}
	}
	return out, nil
}
