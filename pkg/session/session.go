// Package session ties the key/value store and the progress tracker of one
// installation together at their well-known paths.
package session

import (
	"os"
	"path/filepath"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/filesystem"
	"github.com/archstep/archstep/pkg/kvstore"
	"github.com/archstep/archstep/pkg/logging"
	"github.com/archstep/archstep/pkg/paths"
	"github.com/archstep/archstep/pkg/progress"
	"github.com/archstep/archstep/pkg/types"
	"github.com/google/uuid"
)

// KeySessionID correlates log lines of every stage of one installation
const KeySessionID = "ARCHSTEP_SESSION_ID"

// Session is the persisted state handed from one stage to the next
type Session struct {
	ID       string
	Store    *kvstore.Store
	Progress *progress.Tracker

	fs    types.FS
	paths paths.Paths
}

// Open loads the session from the host state directory. A first run yields
// an empty store with a fresh session id.
func Open(fs types.FS, p paths.Paths) (*Session, error) {
	store, err := kvstore.Load(fs, p.StoreFile())
	if err != nil {
		return nil, err
	}
	tracker, err := progress.Load(fs, p.ProgressFile())
	if err != nil {
		return nil, err
	}

	id, ok := store.Lookup(KeySessionID)
	if !ok || uuid.Validate(id) != nil {
		id = uuid.NewString()
		_ = store.Set(KeySessionID, id)
	}

	s := &Session{ID: id, Store: store, Progress: tracker, fs: fs, paths: p}
	logger := logging.GetLogger("session")
	logger.Debug().
		Str("session", id).
		Str("state_dir", p.StateDir()).
		Int("entries", store.Len()).
		Strs("done", tracker.Stages()).
		Msg("Session opened")
	return s, nil
}

// Paths returns the locations the session was opened from
func (s *Session) Paths() paths.Paths {
	return s.paths
}

// Corrupt returns the state lines that could not be decoded on open
func (s *Session) Corrupt() []kvstore.SkippedLine {
	return s.Store.Skipped()
}

// Save writes the store atomically
func (s *Session) Save() error {
	return s.Store.Save(s.fs, s.paths.StoreFile())
}

// Commit persists a stage's decisions and then records its marker. If either
// write fails the state file is put back the way it was, the in-memory
// session is left unchanged and no marker is recorded.
func (s *Session) Commit(stage string, pending *kvstore.Store) error {
	path := s.paths.StoreFile()
	previous, err := s.fs.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read state file %s", path)
	}
	existed := err == nil

	merged := s.Store.Clone()
	merged.Merge(pending)
	if err := merged.Save(s.fs, path); err != nil {
		return err
	}
	if err := s.Progress.MarkDone(stage); err != nil {
		s.rollback(path, previous, existed)
		return err
	}
	s.Store = merged
	return nil
}

// rollback restores the state file content read before a failed commit
func (s *Session) rollback(path string, previous []byte, existed bool) {
	logger := logging.GetLogger("session")
	var err error
	if existed {
		err = filesystem.WriteAtomic(s.fs, path, previous, 0644)
	} else if err = s.fs.Remove(path); os.IsNotExist(err) {
		err = nil
	}
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Failed to roll back state file after marker write failed")
		return
	}
	logger.Warn().Str("path", path).Msg("Rolled back state file after marker write failed")
}

// Handoff copies the session into the state directory under the target
// root, so a process running inside the target sees it at the usual path.
func (s *Session) Handoff() error {
	return s.HandoffTo(s.paths.TargetStateDir())
}

// HandoffTo merges the session into the state directory dir. Host values win
// over anything already there; markers are unioned.
func (s *Session) HandoffTo(dir string) error {
	logger := logging.GetLogger("session")

	storePath := filepath.Join(dir, paths.StoreFileName)
	progressPath := filepath.Join(dir, paths.ProgressFileName)

	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to create %s", dir).
			WithReason("the installed system reads its state from this directory").
			WithRemedy("check that the target root is mounted read-write")
	}

	target, err := kvstore.Load(s.fs, storePath)
	if err != nil {
		return err
	}
	target.Merge(s.Store)
	if err := target.Save(s.fs, storePath); err != nil {
		return err
	}

	tracker, err := progress.Load(s.fs, progressPath)
	if err != nil {
		return err
	}
	for _, stage := range s.Progress.Stages() {
		if err := tracker.MarkDone(stage); err != nil {
			return err
		}
	}

	logger.Info().
		Str("session", s.ID).
		Str("dir", dir).
		Int("entries", target.Len()).
		Int("markers", tracker.Len()).
		Msg("Session handed off")
	return nil
}

// Reset removes the persisted state so the next run starts from scratch
func (s *Session) Reset() error {
	for _, path := range []string{s.paths.StoreFile(), s.paths.ProgressFile()} {
		if err := s.fs.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", path)
		}
	}
	logger := logging.GetLogger("session")
	logger.Warn().Str("session", s.ID).Msg("Session state reset")
	return nil
}
