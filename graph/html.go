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
	"sort"
	"strings"

	"golang.org/x/net/html"

	"oppia.dev/depgraph/model"
	"oppia.dev/depgraph/resolve"
)

// HTMLEdges computes the outgoing edges of an .html file per spec §4.E:
// selector edges against every other file's Component/Directive/Pipe
// FrameworkInfo, `@load(...)` directive targets, and CSS `<link>`/
// `<preload>` references. Uses golang.org/x/net/html -- the teacher's own
// comment on this parser choice ("fast parsing instead of tree-sitter")
// applies unchanged here.
func HTMLEdges(r *resolve.Resolver, htmlPath string, content []byte, infos model.FrameworkInfoMap) ([]string, error) {
	root, err := html.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, err
	}

	var deps []string
	selectorForms := make(map[string]struct{})
	var textBlobs []string
	var walkErr error

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if walkErr != nil {
			return
		}
		if n.Type == html.ElementNode {
			forms := elementSelectorForms(n)
			for _, f := range forms {
				selectorForms[f] = struct{}{}
			}
			for _, attr := range n.Attr {
				textBlobs = append(textBlobs, attr.Val)
			}
			if link, ok := cssLinkTarget(n); ok {
				target := "core" + link
				if !r.Exists(target) {
					walkErr = &UnresolvedTargetError{Target: target, File: htmlPath}
					return
				}
				deps = append(deps, target)
			}
		}
		if n.Type == html.TextNode {
			textBlobs = append(textBlobs, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
			if walkErr != nil {
				return
			}
		}
	}
	walk(root)
	if walkErr != nil {
		return nil, walkErr
	}

	infoFiles := make([]string, 0, len(infos))
	for file := range infos {
		infoFiles = append(infoFiles, file)
	}
	sort.Strings(infoFiles)
	for _, file := range infoFiles {
		if file == htmlPath {
			continue
		}
		for _, info := range infos[file] {
			switch info.Kind {
			case model.FrameworkComponent, model.FrameworkDirective:
				if info.Selector == "" {
					continue
				}
				// The parser lowercases tag and attribute names.
				if _, ok := selectorForms[strings.ToLower(info.Selector)]; ok {
					deps = append(deps, file)
				}
			case model.FrameworkPipe:
				if info.Selector == "" {
					continue
				}
				for _, blob := range textBlobs {
					if strings.Contains(blob, "|") && strings.Contains(blob, info.Selector) {
						deps = append(deps, file)
						break
					}
				}
			}
		}
	}

	for _, blob := range textBlobs {
		for _, line := range strings.Split(blob, "\n") {
			if !strings.Contains(line, "@load") {
				continue
			}
			spec, ok := loadDirectiveArg(line)
			if !ok {
				continue
			}
			target, ok := r.Resolve(spec, htmlPath)
			if target == "" && !ok {
				continue
			}
			if !ok {
				return nil, &UnresolvedTargetError{Target: target, File: htmlPath}
			}
			deps = append(deps, target)
		}
	}

	return dedupe(deps), nil
}

// elementSelectorForms returns the candidate selector strings an
// element satisfies: its tag name, plus one "[attrName]" form per
// attribute once bound-attribute brackets/parens are stripped (spec
// §4.E binding-attribute normalization).
func elementSelectorForms(n *html.Node) []string {
	forms := []string{n.Data}
	for _, attr := range n.Attr {
		name := normalizeAttrName(attr.Key)
		forms = append(forms, "["+name+"]")
	}
	return forms
}

func normalizeAttrName(name string) string {
	if len(name) >= 2 && name[0] == '[' && name[len(name)-1] == ']' {
		return name[1 : len(name)-1]
	}
	if len(name) >= 2 && name[0] == '(' && name[len(name)-1] == ')' {
		return name[1 : len(name)-1]
	}
	return name
}

// cssLinkTarget returns the href of a <link>/<preload> element whose
// href ends in ".css" and begins with "/templates/css" (spec §4.E CSS
// references).
func cssLinkTarget(n *html.Node) (string, bool) {
	if n.Data != "link" && n.Data != "preload" {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Key != "href" {
			continue
		}
		if strings.HasSuffix(attr.Val, ".css") && strings.HasPrefix(attr.Val, "/templates/css") {
			return attr.Val, true
		}
	}
	return "", false
}

// loadDirectiveArg extracts the first comma-separated argument between
// the first "(" and its matching ")" on a line containing "@load",
// stripping one layer of surrounding quotes (spec §4.E Load directives).
func loadDirectiveArg(line string) (string, bool) {
	open := strings.IndexByte(line, '(')
	if open < 0 {
		return "", false
	}
	depth := 0
	close := -1
	for i := open; i < len(line); i++ {
		switch line[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				close = i
			}
		}
		if close >= 0 {
			break
		}
	}
	if close < 0 {
		return "", false
	}
	inner := line[open+1 : close]
	first := inner
	if idx := strings.IndexByte(inner, ','); idx >= 0 {
		first = inner[:idx]
	}
	first = strings.TrimSpace(first)
	if len(first) >= 2 {
		quote := first[0]
		if (quote == '\'' || quote == '"' || quote == '`') && first[len(first)-1] == quote {
			first = first[1 : len(first)-1]
		}
	}
	if first == "" {
		return "", false
	}
	return first, true
}
