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

// Package framework implements the Framework Symbol Extractor (spec
// §4.C): for each class declaration's decorators, emit a FrameworkInfo
// for the closed {Module, Component, Directive, Pipe} vocabulary.
// Unrecognized decorator callees are silently ignored.
package framework

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"

	"oppia.dev/depgraph/ast"
	"oppia.dev/depgraph/model"
	"oppia.dev/depgraph/resolve"
)

// Extract returns every FrameworkInfo declared in src (a loaded, parsed
// .ts or .js Source). Spec files contribute an empty slice by convention
// and are never emitters, so callers should simply skip invoking Extract
// for them rather than special-casing an empty result.
func Extract(facade *ast.Facade, r *resolve.Resolver, src *ast.Source) ([]model.FrameworkInfo, error) {
	if src.Tree == nil {
		return nil, nil
	}

	var infos []model.FrameworkInfo
	var extractErr error

	err := facade.QueryCursor("decorators", src.Tree.RootNode(), src.Content, func(captures map[string][]ts.Node) {
		if extractErr != nil {
			return
		}
		classNames := captures["class.name"]
		decoratorNames := captures["decorator.name"]
		decoratorArgs := captures["decorator.args"]
		if len(classNames) == 0 || len(decoratorNames) == 0 || len(decoratorArgs) == 0 {
			return
		}
		className := classNames[0].Utf8Text(src.Content)
		calleeName := decoratorNames[0].Utf8Text(src.Content)
		argsNode := decoratorArgs[0]

		info, err := buildInfo(r, src, className, calleeName, argsNode)
		if err != nil {
			extractErr = err
			return
		}
		if info != nil {
			infos = append(infos, *info)
		}
	})
	if err != nil {
		return nil, err
	}
	if extractErr != nil {
		return nil, extractErr
	}
	return infos, nil
}

func buildInfo(r *resolve.Resolver, src *ast.Source, className, calleeName string, argsNode ts.Node) (*model.FrameworkInfo, error) {
	if argsNode.Kind() != "object" {
		switch calleeName {
		case "NgModule", "Component", "Directive", "Pipe":
			return nil, &ErrNoObjectArgument{ClassName: className, File: src.Path}
		default:
			return nil, nil
		}
	}
	fields := ast.ObjectFields(argsNode, src.Content)

	switch calleeName {
	case "NgModule":
		return &model.FrameworkInfo{
			Kind:      model.FrameworkModule,
			File:      src.Path,
			ClassName: className,
		}, nil
	case "Component":
		info := &model.FrameworkInfo{
			Kind:      model.FrameworkComponent,
			File:      src.Path,
			ClassName: className,
		}
		if selNode, ok := fields["selector"]; ok {
			sel, err := ast.EvalLiteral(selNode, src.Content, src.Path)
			if err != nil {
				return nil, err
			}
			info.Selector = sel
		}
		if tplNode, ok := fields["templateUrl"]; ok {
			tplSpec, err := ast.EvalLiteral(tplNode, src.Content, src.Path)
			if err != nil {
				return nil, err
			}
			// Resolution failure is reported by the Typed-Source Edge
			// Extractor when it later tries to add the component->template
			// edge; here we just record the best-effort resolved path.
			resolved, _ := r.Resolve(tplSpec, src.Path)
			info.TemplateFilePath = resolved
		}
		return info, nil
	case "Directive":
		info := &model.FrameworkInfo{
			Kind:      model.FrameworkDirective,
			File:      src.Path,
			ClassName: className,
		}
		if selNode, ok := fields["selector"]; ok {
			sel, err := ast.EvalLiteral(selNode, src.Content, src.Path)
			if err != nil {
				return nil, err
			}
			info.Selector = sel
		}
		return info, nil
	case "Pipe":
		info := &model.FrameworkInfo{
			Kind:      model.FrameworkPipe,
			File:      src.Path,
			ClassName: className,
		}
		// Note: the Pipe's selector is sourced from `name`, not `selector`.
		if nameNode, ok := fields["name"]; ok {
			sel, err := ast.EvalLiteral(nameNode, src.Content, src.Path)
			if err != nil {
				return nil, err
			}
			info.Selector = sel
		}
		return info, nil
	default:
		return nil, nil
	}
}

// ErrNoObjectArgument is returned (wrapped with class/file context) when a
// recognized decorator's sole argument is not an object literal (spec
// §4.C: "No object argument on class X in F").
type ErrNoObjectArgument struct {
	ClassName string
	File      string
}

func (e *ErrNoObjectArgument) Error() string {
	return fmt.Sprintf("No object argument on class %s in %s.", e.ClassName, e.File)
}
