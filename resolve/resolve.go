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

// Package resolve implements the Path & Alias Resolver (spec §4.A):
// turning an import specifier plus the file it appears in into a
// repo-relative path, or "" when the specifier is library-external.
// A specifier whose resolved path does not exist is returned as that
// path, flagged as not existing.
package resolve

import (
	"path"
	"strings"

	"oppia.dev/depgraph/config"
	"oppia.dev/depgraph/fs"
)

// Resolver resolves import specifiers against a repo root and a set of
// configured aliases. It never throws: library-external (or empty)
// specifiers yield ("", false), which callers treat as "no edge"; a
// specifier whose resolved path does not exist yields (path, false).
type Resolver struct {
	fsys fs.FileSystem
	cfg  *config.Config
}

// New creates a Resolver for the given repo configuration.
func New(fsys fs.FileSystem, cfg *config.Config) *Resolver {
	return &Resolver{fsys: fsys, cfg: cfg}
}

// Resolve implements the five-step algorithm of spec §4.A. fromFile is a
// repo-relative path; spec is the raw specifier text as it appears in
// source. The second return value reports whether the returned path
// exists; it is false with an empty path for a library-external
// specifier, and false with the resolved path when nothing exists there.
func (r *Resolver) Resolve(spec, fromFile string) (string, bool) {
	if spec == "" {
		return "", false
	}

	// Step 1: repo-external library detection.
	if r.isLibraryExternal(spec) {
		return "", false
	}

	var joined string
	switch {
	case r.matchesAlias(spec):
		// Step 2: configured/virtual alias rewrite.
		joined = r.rewriteAlias(spec)
	case strings.HasPrefix(spec, "."):
		// Step 3: relative to the directory of fromFile.
		joined = path.Join(path.Dir(fromFile), spec)
	default:
		// Step 4: bare specifier surviving step 1, joined onto the
		// fixed default root and re-rooted onto the repo.
		joined = path.Join(config.DefaultBareRoot, spec)
	}
	joined = path.Clean(joined)

	// Step 5: extensionless lookup, preferring .ts over .js.
	return r.withExtension(joined)
}

// isLibraryExternal implements step 1: a specifier is library-external
// iff it does not begin with "." AND its first path segment names either
// a known host built-in module or a directory under the vendored-library
// root.
func (r *Resolver) isLibraryExternal(spec string) bool {
	if strings.HasPrefix(spec, ".") {
		return false
	}
	if strings.HasPrefix(spec, "/") {
		return false
	}
	first := firstSegment(spec)
	if _, ok := config.HostBuiltins[first]; ok {
		return true
	}
	vendoredDir := path.Join(config.VendoredLibraryRoot, first)
	return r.fsys.Exists(path.Join(r.cfg.RootDir, vendoredDir))
}

// matchesAlias reports whether spec matches a configured tsconfig path
// alias or a frozen virtual alias (spec §4.A step 2).
func (r *Resolver) matchesAlias(spec string) bool {
	for prefix := range r.cfg.TSConfigPaths {
		if aliasMatches(strings.TrimSuffix(prefix, "/*"), spec) {
			return true
		}
	}
	for prefix := range config.VirtualAliases {
		if aliasMatches(prefix, spec) {
			return true
		}
	}
	return false
}

// rewriteAlias rewrites spec's matched alias prefix to its target,
// preferring a configured tsconfig path over the virtual-alias table so
// project-local configuration can shadow the frozen defaults.
func (r *Resolver) rewriteAlias(spec string) string {
	for prefix, targets := range r.cfg.TSConfigPaths {
		trimmedPrefix := strings.TrimSuffix(prefix, "/*")
		if aliasMatches(trimmedPrefix, spec) && len(targets) > 0 {
			target := strings.TrimSuffix(targets[0], "/*")
			return rewritePrefix(trimmedPrefix, target, spec)
		}
	}
	for prefix, target := range config.VirtualAliases {
		if aliasMatches(prefix, spec) {
			return rewritePrefix(prefix, target, spec)
		}
	}
	return spec
}

func aliasMatches(prefix, spec string) bool {
	if prefix == spec {
		return true
	}
	return strings.HasPrefix(spec, prefix+"/")
}

func rewritePrefix(prefix, target, spec string) string {
	if spec == prefix {
		return target
	}
	rest := strings.TrimPrefix(spec, prefix+"/")
	return path.Join(target, rest)
}

// withExtension implements step 5: if joined already has an extension, or
// neither joined+".ts" nor joined+".js" exists, return joined unchanged;
// otherwise append the first extension (preferring .ts) that resolves to
// an existing file on disk.
func (r *Resolver) withExtension(joined string) (string, bool) {
	if path.Ext(joined) != "" {
		return joined, r.exists(joined)
	}
	for _, ext := range []string{".ts", ".js"} {
		candidate := joined + ext
		if r.exists(candidate) {
			return candidate, true
		}
	}
	// Neither extension resolves; return unchanged per spec step 5, but
	// report non-existence so typed-source edge extraction can fail fast
	// where the spec requires it and silently drop the edge elsewhere.
	return joined, r.exists(joined)
}

func (r *Resolver) exists(relPath string) bool {
	return r.fsys.Exists(path.Join(r.cfg.RootDir, relPath))
}

// Exists reports whether a repo-relative path resolves to a file on disk.
// Exported so other components (the HTML and typed-source edge
// extractors, the route registry) can apply the same existence check
// without duplicating the root-join logic.
func (r *Resolver) Exists(relPath string) bool {
	return r.exists(relPath)
}

func firstSegment(spec string) string {
	if i := strings.IndexByte(spec, '/'); i >= 0 {
		return spec[:i]
	}
	return spec
}
