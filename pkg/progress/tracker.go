// Package progress records which installation stages have completed.
//
// Markers are opaque tokens appended to a plain text file, one per line. The
// tracker knows nothing about stage ordering; callers express ordering with
// RequireDone and Check.
package progress

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"strings"
	"unicode"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/filesystem"
	"github.com/archstep/archstep/pkg/logging"
	"github.com/archstep/archstep/pkg/types"
)

// Confirmer asks the operator a yes/no question
type Confirmer interface {
	Confirm(ctx context.Context, question string, def bool) (bool, error)
}

// Gate is a dependency on another stage's marker. A hard gate fails when the
// marker is absent; a soft gate asks the operator whether to continue.
type Gate struct {
	Stage  string
	Hard   bool
	Reason string
}

// Tracker is the set of recorded markers backed by a file
type Tracker struct {
	fs      types.FS
	path    string
	markers []string
	done    map[string]bool
}

// Load reads the marker file at path. A missing file yields an empty tracker.
func Load(fs types.FS, path string) (*Tracker, error) {
	t := &Tracker{fs: fs, path: path, done: make(map[string]bool)}

	data, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read progress file %s", path)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		marker := strings.TrimSpace(scanner.Text())
		if marker == "" || t.done[marker] {
			continue
		}
		t.markers = append(t.markers, marker)
		t.done[marker] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to scan progress file %s", path)
	}
	return t, nil
}

// Path returns the backing file
func (t *Tracker) Path() string {
	return t.path
}

// MarkDone records stage as complete. Recording an existing marker is a no-op.
func (t *Tracker) MarkDone(stage string) error {
	if err := validMarker(stage); err != nil {
		return err
	}
	if t.done[stage] {
		return nil
	}
	if err := filesystem.AppendLine(t.fs, t.path, stage, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to record marker %s", stage)
	}
	t.markers = append(t.markers, stage)
	t.done[stage] = true

	logger := logging.GetLogger("progress")
	logger.Info().Str("stage", stage).Msg("Stage marked done")
	return nil
}

// IsDone reports whether stage has been recorded
func (t *Tracker) IsDone(stage string) bool {
	return t.done[stage]
}

// Stages returns the recorded markers in the order they were recorded
func (t *Tracker) Stages() []string {
	out := make([]string, len(t.markers))
	copy(out, t.markers)
	return out
}

// Len returns the number of recorded markers
func (t *Tracker) Len() int {
	return len(t.markers)
}

// RequireDone fails with a precondition error naming stage when its marker
// is absent.
func (t *Tracker) RequireDone(stage string) error {
	return t.require(stage, "")
}

func (t *Tracker) require(stage, reason string) error {
	if t.done[stage] {
		return nil
	}
	if reason == "" {
		reason = "later stages rely on what " + stage + " sets up"
	}
	return errors.Precondition(
		"stage "+stage+" has not completed",
		reason,
		"run that stage first, or record it with 'archstep mark "+stage+"' if it was done by hand",
	).WithDetail("stage", stage)
}

// Check evaluates a gate. A declined soft gate returns a cancellation.
func (t *Tracker) Check(ctx context.Context, gate Gate, confirm Confirmer) error {
	if gate.Hard {
		return t.require(gate.Stage, gate.Reason)
	}
	if t.done[gate.Stage] {
		return nil
	}

	logger := logging.GetLogger("progress")
	question := "Expected stage " + gate.Stage + " has not completed"
	if gate.Reason != "" {
		question += " (" + gate.Reason + ")"
	}
	question += ". Continue anyway?"

	ok, err := confirm.Confirm(ctx, question, false)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Cancelled("declined to continue without "+gate.Stage).WithDetail("stage", gate.Stage)
	}
	logger.Warn().Str("stage", gate.Stage).Msg("Continuing without expected stage")
	return nil
}

func validMarker(stage string) error {
	if stage == "" || strings.IndexFunc(stage, unicode.IsSpace) >= 0 {
		return errors.Newf(errors.ErrInvalidInput, "invalid stage marker %q", stage).
			WithReason("markers are stored one per line").
			WithRemedy("use a non-empty marker without whitespace")
	}
	return nil
}
