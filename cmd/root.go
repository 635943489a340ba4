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

// Package cmd wires the analyzer's pipeline (Edge-Set Builder -> Root
// Projector, with the Route Registry feeding the page-module set) into
// a cobra CLI, generalizing the teacher's root-command shape
// (persistent flags bound through viper, a single analysis entry
// point) from "generate an import map" to "project root files."
package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"oppia.dev/depgraph/ast"
	"oppia.dev/depgraph/config"
	"oppia.dev/depgraph/fs"
	"oppia.dev/depgraph/graph"
	"oppia.dev/depgraph/internal/diagnostics"
	"oppia.dev/depgraph/resolve"
	"oppia.dev/depgraph/roots"
	"oppia.dev/depgraph/routes"
)

// RootCmd is the analyzer's entry point. With no flags it behaves
// exactly as spec §6 describes: no arguments, implicit current-
// directory repository. --root/--write-dir are additive overrides.
var RootCmd = &cobra.Command{
	Use:   "depgraph",
	Short: "Project root files for a static dependency graph",
	Long:  `depgraph computes, for every tracked file in a web codebase, the set of root files that transitively depend on it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(fs.NewOSFileSystem(), viper.GetString("root"), viper.GetString("write-dir"))
	},
}

func init() {
	RootCmd.Flags().String("root", ".", "repository root to analyze")
	RootCmd.Flags().String("write-dir", "", "directory to write JSON artifacts into (default: repository root)")
	_ = viper.BindPFlag("root", RootCmd.Flags().Lookup("root"))
	_ = viper.BindPFlag("write-dir", RootCmd.Flags().Lookup("write-dir"))
}

// Execute runs the root command, returning any fatal error (main exits
// nonzero on it).
func Execute() error {
	return RootCmd.Execute()
}

// Run executes the full pipeline once against fsys: build the
// framework-info map and dependency graph (4.F), parse the route
// table (4.H) to derive the page-module set, project roots (4.G), and
// write the JSON artifacts spec §6 names. Returns a non-nil error on
// any fatal condition (resolution, extraction, or validation error).
func Run(fsys fs.FileSystem, rootDir, writeDir string) error {
	if writeDir == "" {
		writeDir = rootDir
	}

	cfg, err := config.Default(fsys, rootDir)
	if err != nil {
		diagnostics.Fatal(err)
		return err
	}

	facade, err := ast.New(fsys, cfg)
	if err != nil {
		diagnostics.Fatal(err)
		return err
	}
	resolver := resolve.New(fsys, cfg)

	result, err := graph.Build(facade, resolver, cfg)
	if err != nil {
		diagnostics.Fatal(err)
		return err
	}

	if err := writeJSON(fsys, filepath.Join(writeDir, "dependencies-mapping.json"), dependenciesMapping(result)); err != nil {
		return err
	}

	reg, err := routes.New(facade, resolver, cfg.ConstantsModulePath)
	if err != nil {
		diagnostics.Fatal(err)
		return err
	}
	for _, mo := range cfg.ManualRouteOverrides {
		reg.AddManualOverride(mo.Path, mo.PathMatch, mo.PageModule)
	}
	for _, rf := range cfg.RoutingFiles {
		if err := reg.ProcessRoutingFile(rf); err != nil {
			diagnostics.Fatal(err)
			return err
		}
	}
	table := reg.Table()

	pageModules := make(map[string]struct{})
	for _, route := range table.Routes {
		pageModules[route.PageModule] = struct{}{}
	}

	whitelist := make(map[string]struct{}, len(cfg.RootWhitelist))
	for k := range cfg.RootWhitelist {
		whitelist[k] = struct{}{}
	}
	suiteWhitelist, err := cfg.SuiteWhitelist(fsys)
	if err != nil {
		diagnostics.Fatal(err)
		return err
	}
	for k := range suiteWhitelist {
		whitelist[k] = struct{}{}
	}

	projector := roots.New(result.Graph, result.Infos, pageModules, whitelist, cfg.AcceptanceTestDir)
	rootFiles, err := projector.Project()
	if err != nil {
		diagnostics.Fatal(err)
		return err
	}

	if err := writeJSON(fsys, filepath.Join(writeDir, "dependency-graph.json"), rootFiles); err != nil {
		return err
	}
	if err := writeJSON(fsys, filepath.Join(writeDir, "root-files-mapping.json"), rootFiles); err != nil {
		return err
	}

	diagnostics.Info("analyzed %d files, %d page modules, %d routes", len(result.Graph.AllFiles()), len(pageModules), len(table.Routes))
	return nil
}

func dependenciesMapping(result *graph.Result) map[string][]string {
	out := make(map[string][]string)
	files := result.Graph.Files()
	sort.Strings(files)
	for _, f := range files {
		out[f] = result.Graph.Deps(f)
	}
	return out
}

func writeJSON(fsys fs.FileSystem, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cmd: marshaling %s: %w", path, err)
	}
	if err := fsys.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cmd: writing %s: %w", path, err)
	}
	return nil
}
