package stage

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/archstep/archstep/pkg/backup"
	"github.com/archstep/archstep/pkg/command"
	"github.com/archstep/archstep/pkg/config"
	"github.com/archstep/archstep/pkg/detect"
	"github.com/archstep/archstep/pkg/filesystem"
	"github.com/archstep/archstep/pkg/kvstore"
	"github.com/archstep/archstep/pkg/prompt"
	"github.com/archstep/archstep/pkg/session"
	"github.com/archstep/archstep/pkg/system"
	"github.com/archstep/archstep/pkg/types"
	"github.com/rs/zerolog"
)

// Context is what a stage's hooks work with. Decisions go into Pending and
// only reach the session once the stage has succeeded.
type Context struct {
	Session *session.Session
	Pending *kvstore.Store
	Prompt  prompt.Prompter
	Ops     *command.Runner
	Backups *backup.Set
	FS      types.FS
	Config  *config.Config
	Detect  *detect.Detector
	Probe   system.Probe
	// Overrides replace auto-detected values
	Overrides map[string]string
	Log       zerolog.Logger
	// SysRoot prefixes every system file path; "/" outside of tests
	SysRoot string
	DryRun  bool
}

// Value returns a decision of this run, then a persisted value, then def
func (c *Context) Value(key, def string) string {
	if v, ok := c.Pending.Lookup(key); ok {
		return v
	}
	return c.Session.Store.Get(key, def)
}

// List is Value for space separated values
func (c *Context) List(key string) []string {
	if _, ok := c.Pending.Lookup(key); ok {
		return c.Pending.GetList(key)
	}
	return c.Session.Store.GetList(key)
}

// Decide records a decision for persistence
func (c *Context) Decide(key, value string) error {
	return c.Pending.Set(key, value)
}

// DecideList records a multi-value decision for persistence
func (c *Context) DecideList(key string, values []string) error {
	return c.Pending.SetList(key, values)
}

// Ask prompts for q and records the answer under q.Key. A valid persisted
// value is offered as the default; an identity field with no valid persisted
// value gets no default at all.
func (c *Context) Ask(ctx context.Context, q prompt.Question) (string, error) {
	if q.Identity {
		q.Default = ""
	}
	if stored, ok := c.Session.Store.Lookup(q.Key); ok {
		if q.Check(stored) == nil {
			q.Default = stored
		} else {
			c.Log.Warn().Str("key", q.Key).Msg("Stored value is invalid, asking again")
		}
	}
	answer, err := c.Prompt.Ask(ctx, q)
	if err != nil {
		return "", err
	}
	return answer, c.Decide(q.Key, answer)
}

// Auto records an auto-detected value. An override wins over detection,
// which is not run at all in that case.
func (c *Context) Auto(key string, detect func() string) (string, error) {
	v, ok := c.Overrides[key]
	if ok {
		c.Log.Info().Str("key", key).Str("value", v).Msg("Using override instead of detection")
	} else {
		v = detect()
		c.Log.Info().Str("key", key).Str("value", v).Msg("Detected")
	}
	return v, c.Decide(key, v)
}

// NonInteractive reports whether the prompter refuses to ask anything
func (c *Context) NonInteractive() bool {
	p, ok := c.Prompt.(interface{ NonInteractive() bool })
	return ok && p.NonInteractive()
}

// AskMany is Ask for multi-value questions
func (c *Context) AskMany(ctx context.Context, q prompt.Question) ([]string, error) {
	if stored, ok := c.Session.Store.Lookup(q.Key); ok {
		if q.CheckAll(c.Session.Store.GetList(q.Key)) == nil {
			q.Default = stored
		}
	}
	answers, err := c.Prompt.AskMany(ctx, q)
	if err != nil {
		return nil, err
	}
	return answers, c.DecideList(q.Key, answers)
}

// Path maps an absolute system path under SysRoot
func (c *Context) Path(p string) string {
	return filepath.Join(c.SysRoot, p)
}

// TargetRoot is the mountpoint of the system being installed, as seen from
// the live media
func (c *Context) TargetRoot() string {
	return c.Session.Paths().TargetRoot()
}

// ReadFile reads a system file
func (c *Context) ReadFile(p string) ([]byte, error) {
	return c.FS.ReadFile(c.Path(p))
}

// WriteFile replaces a system file. The file is guarded first, so a failed
// stage puts it back.
func (c *Context) WriteFile(p string, data []byte, perm fs.FileMode) error {
	full := c.Path(p)
	if c.DryRun {
		c.Log.Info().Str("path", full).Int("bytes", len(data)).Msg("Dry run mode - file would be written")
		return nil
	}
	if err := c.Backups.Guard(full); err != nil {
		return err
	}
	return filesystem.WriteAtomic(c.FS, full, data, perm)
}

// Guard protects a system file that an external command is about to modify
func (c *Context) Guard(p string) error {
	if c.DryRun {
		return nil
	}
	return c.Backups.Guard(c.Path(p))
}

// Run executes a named operation under its policy
func (c *Context) Run(ctx context.Context, name string, cmd command.Cmd) error {
	_, err := c.Ops.Run(ctx, command.Operation{Name: name, Cmd: cmd})
	return err
}

// Output executes a named operation and returns its stdout
func (c *Context) Output(ctx context.Context, name string, cmd command.Cmd) (string, error) {
	out, _, err := c.Ops.Output(ctx, command.Operation{Name: name, Cmd: cmd})
	return out, err
}
