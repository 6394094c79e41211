package testutil

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/archstep/archstep/pkg/types"
)

// MemoryFS implements types.FS with in-memory storage
type MemoryFS struct {
	mu    sync.Mutex
	files map[string]*memFile
	dirs  map[string]bool
	links map[string]string
	seq   int

	// Error injection
	errorPaths map[string]error

	// Statistics
	writes map[string]int
}

type memFile struct {
	data    []byte
	mode    fs.FileMode
	modTime time.Time
}

// NewMemoryFS creates an empty in-memory filesystem
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		files:      make(map[string]*memFile),
		dirs:       map[string]bool{"/": true},
		links:      make(map[string]string),
		errorPaths: make(map[string]error),
		writes:     make(map[string]int),
	}
}

// InjectError makes every operation on path fail with err
func (m *MemoryFS) InjectError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorPaths[filepath.Clean(path)] = err
}

// Writes returns how many times path was opened for writing or replaced by
// a rename
func (m *MemoryFS) Writes(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[filepath.Clean(path)]
}

// Files returns every file path in sorted order
func (m *MemoryFS) Files() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Content returns a file's data, or "" when absent
func (m *MemoryFS) Content(path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[filepath.Clean(path)]; ok {
		return string(f.data)
	}
	return ""
}

func (m *MemoryFS) check(op, path string) error {
	if err, ok := m.errorPaths[path]; ok {
		return &fs.PathError{Op: op, Path: path, Err: err}
	}
	return nil
}

func notExist(op, path string) error {
	return &fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist}
}

func (m *MemoryFS) mkdirAll(path string) {
	for p := path; ; p = filepath.Dir(p) {
		m.dirs[p] = true
		if p == "/" || p == "." {
			return
		}
	}
}

// resolve follows one level of symlink
func (m *MemoryFS) resolve(name string) string {
	target, ok := m.links[name]
	if !ok {
		return name
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(name), target)
	}
	return filepath.Clean(target)
}

func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = m.resolve(filepath.Clean(name))
	if err := m.check("stat", name); err != nil {
		return nil, err
	}
	if f, ok := m.files[name]; ok {
		return fileInfo{name: filepath.Base(name), size: int64(len(f.data)), mode: f.mode, modTime: f.modTime}, nil
	}
	if m.dirs[name] {
		return fileInfo{name: filepath.Base(name), mode: fs.ModeDir | 0755}, nil
	}
	return nil, notExist("stat", name)
}

func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = filepath.Clean(name)
	if err := m.check("read", name); err != nil {
		return nil, err
	}
	f, ok := m.files[m.resolve(name)]
	if !ok {
		return nil, notExist("read", name)
	}
	return bytes.Clone(f.data), nil
}

func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = filepath.Clean(name)
	if err := m.check("write", name); err != nil {
		return err
	}
	if !m.dirs[filepath.Dir(name)] {
		return notExist("write", name)
	}
	m.files[name] = &memFile{data: bytes.Clone(data), mode: perm, modTime: time.Now()}
	m.writes[name]++
	return nil
}

func (m *MemoryFS) OpenFile(name string, flag int, perm fs.FileMode) (types.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = filepath.Clean(name)
	if err := m.check("open", name); err != nil {
		return nil, err
	}
	if !m.dirs[filepath.Dir(name)] {
		return nil, notExist("open", name)
	}
	f, ok := m.files[name]
	if !ok {
		if flag&os.O_CREATE == 0 {
			return nil, notExist("open", name)
		}
		f = &memFile{mode: perm, modTime: time.Now()}
		m.files[name] = f
	}
	if flag&os.O_TRUNC != 0 {
		f.data = nil
	}
	if flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		m.writes[name]++
	}
	return &memHandle{fs: m, name: name, appendOnly: flag&os.O_APPEND != 0}, nil
}

func (m *MemoryFS) Symlink(oldname, newname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	newname = filepath.Clean(newname)
	if err := m.check("symlink", newname); err != nil {
		return err
	}
	if !m.dirs[filepath.Dir(newname)] {
		return notExist("symlink", newname)
	}
	_, isFile := m.files[newname]
	_, isLink := m.links[newname]
	if isFile || isLink || m.dirs[newname] {
		return &fs.PathError{Op: "symlink", Path: newname, Err: fs.ErrExist}
	}
	m.links[newname] = oldname
	return nil
}

func (m *MemoryFS) Readlink(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = filepath.Clean(name)
	if err := m.check("readlink", name); err != nil {
		return "", err
	}
	target, ok := m.links[name]
	if !ok {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrInvalid}
	}
	return target, nil
}

func (m *MemoryFS) Lstat(name string) (fs.FileInfo, error) {
	m.mu.Lock()
	linked, ok := m.links[filepath.Clean(name)]
	m.mu.Unlock()
	if ok {
		return fileInfo{name: filepath.Base(name), size: int64(len(linked)), mode: fs.ModeSymlink | 0777}, nil
	}
	return m.Stat(name)
}

func (m *MemoryFS) MkdirAll(path string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if err := m.check("mkdir", path); err != nil {
		return err
	}
	if _, ok := m.files[path]; ok {
		return &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrExist}
	}
	m.mkdirAll(path)
	return nil
}

func (m *MemoryFS) MkdirTemp(dir, pattern string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if dir == "" {
		dir = os.TempDir()
	}
	m.seq++
	path := filepath.Join(dir, strings.Replace(pattern, "*", fmt.Sprint(m.seq), 1))
	if !strings.Contains(pattern, "*") {
		path += fmt.Sprint(m.seq)
	}
	m.mkdirAll(path)
	return path, nil
}

func (m *MemoryFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	oldpath, newpath = filepath.Clean(oldpath), filepath.Clean(newpath)
	if err := m.check("rename", oldpath); err != nil {
		return err
	}
	if err := m.check("rename", newpath); err != nil {
		return err
	}
	f, ok := m.files[oldpath]
	if !ok {
		return notExist("rename", oldpath)
	}
	if m.dirs[newpath] {
		return &fs.PathError{Op: "rename", Path: newpath, Err: fs.ErrExist}
	}
	delete(m.files, oldpath)
	delete(m.links, newpath)
	m.files[newpath] = f
	m.writes[newpath]++
	return nil
}

func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = filepath.Clean(name)
	if err := m.check("remove", name); err != nil {
		return err
	}
	if _, ok := m.links[name]; ok {
		delete(m.links, name)
		return nil
	}
	if _, ok := m.files[name]; ok {
		delete(m.files, name)
		return nil
	}
	if m.dirs[name] {
		prefix := name + string(filepath.Separator)
		for p := range m.files {
			if strings.HasPrefix(p, prefix) {
				return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrExist}
			}
		}
		delete(m.dirs, name)
		return nil
	}
	return notExist("remove", name)
}

func (m *MemoryFS) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if err := m.check("remove", path); err != nil {
		return err
	}
	prefix := path + string(filepath.Separator)
	for p := range m.files {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(m.files, p)
		}
	}
	for l := range m.links {
		if l == path || strings.HasPrefix(l, prefix) {
			delete(m.links, l)
		}
	}
	for d := range m.dirs {
		if d == path || strings.HasPrefix(d, prefix) {
			delete(m.dirs, d)
		}
	}
	return nil
}

type memHandle struct {
	fs         *MemoryFS
	name       string
	appendOnly bool
	closed     bool
}

func (h *memHandle) Write(p []byte) (int, error) {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	if h.closed {
		return 0, fs.ErrClosed
	}
	f, ok := h.fs.files[h.name]
	if !ok {
		return 0, notExist("write", h.name)
	}
	f.data = append(f.data, p...)
	f.modTime = time.Now()
	return len(p), nil
}

func (h *memHandle) Name() string { return h.name }
func (h *memHandle) Sync() error  { return nil }

func (h *memHandle) Close() error {
	if h.closed {
		return fs.ErrClosed
	}
	h.closed = true
	return nil
}

type fileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (fi fileInfo) Name() string       { return fi.name }
func (fi fileInfo) Size() int64        { return fi.size }
func (fi fileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi fileInfo) ModTime() time.Time { return fi.modTime }
func (fi fileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi fileInfo) Sys() interface{}   { return nil }
