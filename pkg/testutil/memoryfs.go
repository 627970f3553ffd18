// Package testutil provides test doubles shared across packages.
package testutil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/toolup/pkg/types"
)

// MemoryFS implements types.FS with in-memory storage, including
// enough symlink behavior for the pointer maintenance code.
type MemoryFS struct {
	mu    sync.RWMutex
	nodes map[string]*node
}

type node struct {
	data       []byte
	mode       fs.FileMode
	modTime    time.Time
	isDir      bool
	isLink     bool
	linkTarget string
}

// NewMemoryFS creates an in-memory filesystem with just the root
// directory.
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		nodes: map[string]*node{
			"/": {mode: 0755 | fs.ModeDir, modTime: time.Now(), isDir: true},
		},
	}
}

var _ types.FS = (*MemoryFS)(nil)

func clean(path string) string {
	if !filepath.IsAbs(path) {
		path = "/" + path
	}
	return filepath.Clean(path)
}

func (m *MemoryFS) lookup(path string) (*node, error) {
	n, ok := m.nodes[clean(path)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return n, nil
}

// resolve follows symlinks to the final node.
func (m *MemoryFS) resolve(path string) (*node, error) {
	for range [16]struct{}{} {
		n, err := m.lookup(path)
		if err != nil {
			return nil, err
		}
		if !n.isLink {
			return n, nil
		}
		path = n.linkTarget
	}
	return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrInvalid}
}

func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, err := m.resolve(name)
	if err != nil {
		return nil, err
	}
	return fileInfo{name: filepath.Base(clean(name)), node: n}, nil
}

func (m *MemoryFS) Lstat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	return fileInfo{name: filepath.Base(clean(name)), node: n}, nil
}

func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, err := m.resolve(name)
	if err != nil {
		return nil, err
	}
	if n.isDir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	return append([]byte(nil), n.data...), nil
}

func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := clean(name)
	parent, err := m.lookup(filepath.Dir(path))
	if err != nil || !parent.isDir {
		return &fs.PathError{Op: "write", Path: name, Err: fs.ErrNotExist}
	}
	m.nodes[path] = &node{data: append([]byte(nil), data...), mode: perm, modTime: time.Now()}
	return nil
}

func (m *MemoryFS) MkdirAll(path string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	full := clean(path)
	parts := strings.Split(full, "/")
	cur := "/"
	for _, part := range parts {
		if part == "" {
			continue
		}
		cur = filepath.Join(cur, part)
		if n, ok := m.nodes[cur]; ok {
			if !n.isDir {
				return &fs.PathError{Op: "mkdir", Path: cur, Err: fs.ErrExist}
			}
			continue
		}
		m.nodes[cur] = &node{mode: perm | fs.ModeDir, modTime: time.Now(), isDir: true}
	}
	return nil
}

func (m *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dir := clean(name)
	n, err := m.resolve(dir)
	if err != nil {
		return nil, err
	}
	if !n.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	var entries []fs.DirEntry
	for path, child := range m.nodes {
		if path != dir && filepath.Dir(path) == dir {
			entries = append(entries, dirEntry{name: filepath.Base(path), node: child})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (m *MemoryFS) Symlink(oldname, newname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := clean(newname)
	if _, ok := m.nodes[path]; ok {
		return &fs.PathError{Op: "symlink", Path: newname, Err: fs.ErrExist}
	}
	m.nodes[path] = &node{mode: 0777 | fs.ModeSymlink, modTime: time.Now(), isLink: true, linkTarget: clean(oldname)}
	return nil
}

func (m *MemoryFS) Readlink(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, err := m.lookup(name)
	if err != nil {
		return "", err
	}
	if !n.isLink {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrInvalid}
	}
	return n.linkTarget, nil
}

func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := clean(name)
	n, ok := m.nodes[path]
	if !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	if n.isDir {
		for other := range m.nodes {
			if other != path && filepath.Dir(other) == path {
				return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrInvalid}
			}
		}
	}
	delete(m.nodes, path)
	return nil
}

func (m *MemoryFS) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	full := clean(path)
	for other := range m.nodes {
		if other == full || strings.HasPrefix(other, full+"/") {
			delete(m.nodes, other)
		}
	}
	return nil
}

func (m *MemoryFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	from, to := clean(oldpath), clean(newpath)
	n, ok := m.nodes[from]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	moved := map[string]*node{to: n}
	for other, child := range m.nodes {
		if strings.HasPrefix(other, from+"/") {
			moved[to+strings.TrimPrefix(other, from)] = child
		}
	}
	for other := range m.nodes {
		if other == from || strings.HasPrefix(other, from+"/") {
			delete(m.nodes, other)
		}
	}
	for path, child := range moved {
		m.nodes[path] = child
	}
	return nil
}

// Exists reports whether a path is present, following symlinks.
func (m *MemoryFS) Exists(name string) bool {
	_, err := m.Stat(name)
	return err == nil
}

type fileInfo struct {
	name string
	node *node
}

func (f fileInfo) Name() string       { return f.name }
func (f fileInfo) Size() int64        { return int64(len(f.node.data)) }
func (f fileInfo) Mode() fs.FileMode  { return f.node.mode }
func (f fileInfo) ModTime() time.Time { return f.node.modTime }
func (f fileInfo) IsDir() bool        { return f.node.isDir }
func (f fileInfo) Sys() interface{}   { return nil }

type dirEntry struct {
	name string
	node *node
}

func (d dirEntry) Name() string      { return d.name }
func (d dirEntry) IsDir() bool       { return d.node.isDir }
func (d dirEntry) Type() fs.FileMode { return d.node.mode.Type() }
func (d dirEntry) Info() (fs.FileInfo, error) {
	return fileInfo{name: d.name, node: d.node}, nil
}
