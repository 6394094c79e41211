// Package backup guards system files a stage is about to modify. A guard
// takes a copy before the first write and puts it back if the stage fails.
package backup

import (
	"fmt"
	"os"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/filesystem"
	"github.com/archstep/archstep/pkg/logging"
	"github.com/archstep/archstep/pkg/types"
)

// Suffix is appended to a guarded file's path to name its copy
const Suffix = ".archstep.bak"

// Guard holds the pre-modification state of one file
type Guard struct {
	fs      types.FS
	path    string
	existed bool
	// link is the target when path was a symlink
	link string
	done bool
}

// Acquire snapshots path. A file that does not exist yet is recorded as
// absent, and restoring removes whatever the stage created. A symlink is
// recorded by its target, not by the file it points to.
func Acquire(fs types.FS, path string) (*Guard, error) {
	info, err := fs.Lstat(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", path)
	}
	g := &Guard{fs: fs, path: path, existed: err == nil}
	switch {
	case !g.existed:
	case info.Mode()&os.ModeSymlink != 0:
		if g.link, err = fs.Readlink(path); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read link %s", path)
		}
	default:
		if err := filesystem.CopyFile(fs, path, g.backupPath()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to back up %s", path).
				WithReason("files are only modified when they can be restored").
				WithRemedy("check free space and permissions on " + path)
		}
	}
	logger := logging.GetLogger("backup")
	logger.Debug().Str("path", path).Bool("existed", g.existed).Str("link", g.link).Msg("Guard acquired")
	return g, nil
}

// Path returns the guarded file
func (g *Guard) Path() string {
	return g.path
}

func (g *Guard) backupPath() string {
	return g.path + Suffix
}

// Restore puts the file back the way it was at Acquire
func (g *Guard) Restore() error {
	if g.done {
		return nil
	}
	g.done = true

	logger := logging.GetLogger("backup")
	if !g.existed {
		if err := g.fs.Remove(g.path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", g.path)
		}
		logger.Info().Str("path", g.path).Msg("Removed file created by failed stage")
		return nil
	}
	if g.link != "" {
		if err := g.fs.Remove(g.path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", g.path)
		}
		if err := g.fs.Symlink(g.link, g.path); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to restore link %s", g.path).
				WithRemedy(fmt.Sprintf("recreate it with: ln -sf %s %s", g.link, g.path))
		}
		logger.Info().Str("path", g.path).Str("link", g.link).Msg("Restored symlink")
		return nil
	}
	if err := g.fs.Rename(g.backupPath(), g.path); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to restore %s", g.path).
			WithRemedy("the original content is in " + g.backupPath())
	}
	logger.Info().Str("path", g.path).Msg("Restored file from backup")
	return nil
}

// Release drops the copy once the modification is final
func (g *Guard) Release() error {
	if g.done {
		return nil
	}
	g.done = true
	if !g.existed || g.link != "" {
		return nil
	}
	if err := g.fs.Remove(g.backupPath()); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove backup of %s", g.path)
	}
	return nil
}

// Set is the collection of guards held by one stage run
type Set struct {
	fs     types.FS
	guards []*Guard
	byPath map[string]*Guard
}

// NewSet returns an empty set
func NewSet(fs types.FS) *Set {
	return &Set{fs: fs, byPath: make(map[string]*Guard)}
}

// Guard acquires path unless it is already guarded
func (s *Set) Guard(path string) error {
	if _, ok := s.byPath[path]; ok {
		return nil
	}
	g, err := Acquire(s.fs, path)
	if err != nil {
		return err
	}
	s.guards = append(s.guards, g)
	s.byPath[path] = g
	return nil
}

// Paths returns the guarded files in acquisition order
func (s *Set) Paths() []string {
	out := make([]string, 0, len(s.guards))
	for _, g := range s.guards {
		out = append(out, g.path)
	}
	return out
}

// Len returns the number of guards
func (s *Set) Len() int {
	return len(s.guards)
}

// RestoreAll restores every file, last guarded first. Every guard is
// attempted; the first error is returned.
func (s *Set) RestoreAll() error {
	var first error
	for i := len(s.guards) - 1; i >= 0; i-- {
		if err := s.guards[i].Restore(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ReleaseAll drops every backup copy
func (s *Set) ReleaseAll() error {
	var first error
	for _, g := range s.guards {
		if err := g.Release(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
