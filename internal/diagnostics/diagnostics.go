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

// Package diagnostics renders the analyzer's fatal and informational
// output, one line per diagnostic (spec §6: "Diagnostics are printed on
// stderr, one error per line, with file context").
package diagnostics

import (
	"github.com/pterm/pterm"

	"oppia.dev/depgraph/framework"
	"oppia.dev/depgraph/graph"
	"oppia.dev/depgraph/match"
	"oppia.dev/depgraph/roots"
	"oppia.dev/depgraph/routes"
)

// Fatal renders err as one or more stderr lines, splitting out the
// batched error kinds (validation offenders, URL-match errors) into
// one line per offender instead of a single blob.
func Fatal(err error) {
	switch e := err.(type) {
	case *framework.ErrNoObjectArgument:
		pterm.Error.Printfln("extraction error: %s", e.Error())
	case *graph.UnresolvedTargetError:
		pterm.Error.Printfln("resolution error: %s references missing file %s", e.File, e.Target)
	case *routes.ParseError:
		pterm.Error.Printfln("extraction error: %s in %s", e.Text, e.File)
	case *roots.ValidationError:
		for _, offender := range e.Offenders {
			pterm.Error.Printfln("validation error: invalid root file %s", offender)
		}
	case *match.MismatchError:
		for _, m := range e.RegistrationErrors {
			pterm.Error.Printfln("url-match error: %s", m)
		}
		for _, m := range e.MissingFromGolden {
			pterm.Error.Printfln("url-match error: collected module %s is not in the golden manifest", m)
		}
		for _, m := range e.MissingFromRun {
			pterm.Error.Printfln("url-match error: golden module %s was never collected", m)
		}
	default:
		pterm.Error.Printfln("%s", err.Error())
	}
}

// Warning prints a single recoverable-condition notice (spec §7:
// library-external specifiers, extensionless-unknown paths, and
// optional decorator fields are recoverable, not fatal).
func Warning(format string, args ...any) {
	pterm.Warning.Printfln(format, args...)
}

// Info prints a single informational progress line.
func Info(format string, args ...any) {
	pterm.Info.Printfln(format, args...)
}
