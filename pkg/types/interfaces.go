package types

import (
	"io"
	"io/fs"
)

// FS is the filesystem interface required by the state stores and stages.
// Paths are absolute host paths; stages that operate on a target root join
// it themselves.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	OpenFile(name string, flag int, perm fs.FileMode) (File, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)
	Lstat(name string) (fs.FileInfo, error)

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	MkdirTemp(dir, pattern string) (string, error)

	// Other operations
	Rename(oldpath, newpath string) error
	Remove(name string) error
	RemoveAll(path string) error
}

// File is the subset of *os.File needed for durable appends and atomic writes
type File interface {
	io.Writer
	Name() string
	Sync() error
	Close() error
}
