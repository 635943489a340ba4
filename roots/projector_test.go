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

package roots_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oppia.dev/depgraph/model"
	"oppia.dev/depgraph/roots"
)

func TestProjectSimpleChainRootsAtPageModule(t *testing.T) {
	g := model.NewDependencyGraph()
	g.Add("page.module.ts", "service.ts")
	g.Add("other.module.ts", "service.ts")

	infos := model.FrameworkInfoMap{
		"page.module.ts":  {{Kind: model.FrameworkModule, File: "page.module.ts"}},
		"other.module.ts": {{Kind: model.FrameworkModule, File: "other.module.ts"}},
	}
	// Both modules are registered page modules here, so Pass 2's expansion
	// of "service.ts" resolves cleanly to two valid roots instead of
	// tripping the orphan-module check exercised separately below.
	pageModules := map[string]struct{}{"page.module.ts": {}, "other.module.ts": {}}

	p := roots.New(g, infos, pageModules, nil, "")
	result, err := p.Project()
	require.NoError(t, err)

	assert.Equal(t, []string{"page.module.ts"}, result["page.module.ts"])
	assert.ElementsMatch(t, []string{"page.module.ts", "other.module.ts"}, result["service.ts"])
}

func TestProjectCycleIsCutNotInfinite(t *testing.T) {
	g := model.NewDependencyGraph()
	g.Add("a.ts", "b.ts")
	g.Add("b.ts", "a.ts")

	infos := model.FrameworkInfoMap{}
	pageModules := map[string]struct{}{}

	p := roots.New(g, infos, pageModules, nil, "")
	result, err := p.Project()
	require.NoError(t, err)
	// Neither file in the cycle is ever reached from outside it, so the
	// cycle-cut recursion terminates with no roots for either -- the
	// point of the test is that Project() returns instead of looping.
	assert.Empty(t, result["a.ts"])
}

func TestProjectInvalidRootFailsValidation(t *testing.T) {
	g := model.NewDependencyGraph()
	g.Add("orphan-consumer.ts", "leaf.ts")

	infos := model.FrameworkInfoMap{}
	pageModules := map[string]struct{}{}

	p := roots.New(g, infos, pageModules, nil, "")
	_, err := p.Project()
	require.Error(t, err)
	var verr *roots.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Offenders, "orphan-consumer.ts")
}

func TestProjectFrontendTestFileIsAllowedAsItsOwnRoot(t *testing.T) {
	g := model.NewDependencyGraph()
	g.Add("widget.spec.ts", "widget.ts")

	infos := model.FrameworkInfoMap{}
	pageModules := map[string]struct{}{}
	// widget.ts has no page-module consumer other than its own spec, so
	// it is whitelisted here purely to isolate the behavior under test:
	// that widget.spec.ts is valid as its own root without appearing in
	// P or the whitelist.
	whitelist := map[string]struct{}{"widget.ts": {}}

	p := roots.New(g, infos, pageModules, whitelist, "")
	result, err := p.Project()
	require.NoError(t, err)
	assert.Equal(t, []string{"widget.spec.ts"}, result["widget.spec.ts"])
}
