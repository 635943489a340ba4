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

package framework_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oppia.dev/depgraph/ast"
	"oppia.dev/depgraph/config"
	"oppia.dev/depgraph/framework"
	"oppia.dev/depgraph/fs/fstest"
	"oppia.dev/depgraph/model"
	"oppia.dev/depgraph/resolve"
)

func load(t *testing.T, files map[string]string, path string) (*ast.Facade, *resolve.Resolver, *ast.Source) {
	t.Helper()
	memfs := fstest.NewMemFS(files)
	cfg := &config.Config{RootDir: "."}
	facade, err := ast.New(memfs, cfg)
	require.NoError(t, err)
	src, err := facade.Load(path)
	require.NoError(t, err)
	r := resolve.New(memfs, cfg)
	return facade, r, src
}

func TestExtractComponentFields(t *testing.T) {
	facade, r, src := load(t, map[string]string{
		"widget.component.ts": `
			@Component({
				selector: 'oppia-widget',
				templateUrl: './widget.html',
			})
			class WidgetComponent {}
		`,
		"widget.html": "<div></div>",
	}, "widget.component.ts")

	infos, err := framework.Extract(facade, r, src)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, model.FrameworkComponent, infos[0].Kind)
	assert.Equal(t, "WidgetComponent", infos[0].ClassName)
	assert.Equal(t, "oppia-widget", infos[0].Selector)
	assert.Equal(t, "widget.html", infos[0].TemplateFilePath)
}

func TestExtractPipeUsesNameField(t *testing.T) {
	facade, r, src := load(t, map[string]string{
		"truncate.pipe.ts": `
			@Pipe({ name: 'truncate' })
			class TruncatePipe {}
		`,
	}, "truncate.pipe.ts")

	infos, err := framework.Extract(facade, r, src)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, model.FrameworkPipe, infos[0].Kind)
	assert.Equal(t, "truncate", infos[0].Selector)
}

func TestExtractNgModuleHasNoSelector(t *testing.T) {
	facade, r, src := load(t, map[string]string{
		"widget.module.ts": `
			@NgModule({ declarations: [] })
			class WidgetModule {}
		`,
	}, "widget.module.ts")

	infos, err := framework.Extract(facade, r, src)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, model.FrameworkModule, infos[0].Kind)
	assert.Equal(t, "WidgetModule", infos[0].ClassName)
	assert.Empty(t, infos[0].Selector)
}

func TestExtractNoObjectArgumentFails(t *testing.T) {
	facade, r, src := load(t, map[string]string{
		"widget.component.ts": `
			@Component(someConfigVariable)
			class WidgetComponent {}
		`,
	}, "widget.component.ts")

	_, err := framework.Extract(facade, r, src)
	require.Error(t, err)
	var noObj *framework.ErrNoObjectArgument
	require.ErrorAs(t, err, &noObj)
	assert.Equal(t, "WidgetComponent", noObj.ClassName)
}

func TestExtractUnrecognizedDecoratorIgnored(t *testing.T) {
	facade, r, src := load(t, map[string]string{
		"helper.ts": `
			@Injectable()
			class Helper {}
		`,
	}, "helper.ts")

	infos, err := framework.Extract(facade, r, src)
	require.NoError(t, err)
	assert.Empty(t, infos)
}
