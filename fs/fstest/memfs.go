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

// Package fstest provides an in-memory fs.FileSystem for unit tests,
// avoiding real filesystem fixtures for the analyzer's component tests.
package fstest

import (
	"bytes"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"
)

// MemFS is an in-memory implementation of oppia.dev/depgraph/fs.FileSystem.
type MemFS struct {
	files map[string][]byte
}

// NewMemFS builds a MemFS from a map of repo-relative path -> content.
func NewMemFS(files map[string]string) *MemFS {
	m := &MemFS{files: make(map[string][]byte, len(files))}
	for p, content := range files {
		m.files[path.Clean(p)] = []byte(content)
	}
	return m
}

func (m *MemFS) WriteFile(name string, data []byte, _ iofs.FileMode) error {
	m.files[path.Clean(name)] = append([]byte(nil), data...)
	return nil
}

func (m *MemFS) ReadFile(name string) ([]byte, error) {
	data, ok := m.files[path.Clean(name)]
	if !ok {
		return nil, &iofs.PathError{Op: "read", Path: name, Err: iofs.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

func (m *MemFS) Remove(name string) error {
	delete(m.files, path.Clean(name))
	return nil
}

func (m *MemFS) MkdirAll(string, iofs.FileMode) error { return nil }

func (m *MemFS) TempDir() string { return os.TempDir() }

func (m *MemFS) Stat(name string) (iofs.FileInfo, error) {
	clean := path.Clean(name)
	if data, ok := m.files[clean]; ok {
		return memFileInfo{name: path.Base(clean), size: int64(len(data))}, nil
	}
	if m.isDir(clean) {
		return memFileInfo{name: path.Base(clean), dir: true}, nil
	}
	return nil, &iofs.PathError{Op: "stat", Path: name, Err: iofs.ErrNotExist}
}

func (m *MemFS) Exists(p string) bool {
	clean := path.Clean(p)
	if _, ok := m.files[clean]; ok {
		return true
	}
	return m.isDir(clean)
}

func (m *MemFS) isDir(clean string) bool {
	prefix := clean + "/"
	if clean == "." {
		return len(m.files) > 0
	}
	for f := range m.files {
		if strings.HasPrefix(f, prefix) {
			return true
		}
	}
	return false
}

func (m *MemFS) ReadDir(name string) ([]iofs.DirEntry, error) {
	clean := path.Clean(name)
	seen := make(map[string]bool)
	var entries []iofs.DirEntry
	prefix := clean + "/"
	if clean == "." {
		prefix = ""
	}
	for f, data := range m.files {
		if !strings.HasPrefix(f, prefix) {
			continue
		}
		rest := strings.TrimPrefix(f, prefix)
		parts := strings.SplitN(rest, "/", 2)
		base := parts[0]
		if base == "" || seen[base] {
			continue
		}
		seen[base] = true
		isDir := len(parts) > 1
		size := int64(0)
		if !isDir {
			size = int64(len(data))
		}
		entries = append(entries, memDirEntry{name: base, dir: isDir, size: size})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (m *MemFS) Open(name string) (iofs.File, error) {
	data, err := m.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return &memFile{Reader: bytes.NewReader(data), info: memFileInfo{name: path.Base(name), size: int64(len(data))}}, nil
}

type memFile struct {
	*bytes.Reader
	info memFileInfo
}

func (f *memFile) Stat() (iofs.FileInfo, error) { return f.info, nil }
func (f *memFile) Close() error                 { return nil }

var _ io.Reader = (*memFile)(nil)

type memFileInfo struct {
	name string
	size int64
	dir  bool
}

func (i memFileInfo) Name() string       { return i.name }
func (i memFileInfo) Size() int64        { return i.size }
func (i memFileInfo) Mode() iofs.FileMode {
	if i.dir {
		return iofs.ModeDir
	}
	return 0
}
func (i memFileInfo) ModTime() time.Time { return time.Time{} }
func (i memFileInfo) IsDir() bool        { return i.dir }
func (i memFileInfo) Sys() any           { return nil }

type memDirEntry struct {
	name string
	dir  bool
	size int64
}

func (e memDirEntry) Name() string { return e.name }
func (e memDirEntry) IsDir() bool  { return e.dir }
func (e memDirEntry) Type() iofs.FileMode {
	if e.dir {
		return iofs.ModeDir
	}
	return 0
}
func (e memDirEntry) Info() (iofs.FileInfo, error) {
	return memFileInfo{name: e.name, dir: e.dir, size: e.size}, nil
}
