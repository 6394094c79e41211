package stage

import (
	"context"
	"fmt"

	"github.com/archstep/archstep/pkg/backup"
	"github.com/archstep/archstep/pkg/command"
	"github.com/archstep/archstep/pkg/config"
	"github.com/archstep/archstep/pkg/detect"
	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/kvstore"
	"github.com/archstep/archstep/pkg/logging"
	"github.com/archstep/archstep/pkg/prompt"
	"github.com/archstep/archstep/pkg/session"
	"github.com/archstep/archstep/pkg/system"
	"github.com/archstep/archstep/pkg/types"
)

// Result summarizes a stage run
type Result struct {
	Stage   string
	Skipped bool
	DryRun  bool
	// Degraded lists optional operations that failed
	Degraded []string
	// Decided lists the keys written by this run
	Decided []string
}

// Options configures a Runner
type Options struct {
	Session   *session.Session
	FS        types.FS
	Probe     system.Probe
	Prompt    prompt.Prompter
	Commander command.Commander
	Config    *config.Config
	Detect    *detect.Detector
	// Overrides replace auto-detected values, usually from --set
	Overrides map[string]string
	// SysRoot prefixes system file paths; empty means "/"
	SysRoot string
	// Force re-runs a completed stage without asking
	Force  bool
	DryRun bool
}

// Runner executes stage definitions against a session
type Runner struct {
	opts Options
}

// NewRunner creates a runner
func NewRunner(opts Options) *Runner {
	if opts.SysRoot == "" {
		opts.SysRoot = "/"
	}
	return &Runner{opts: opts}
}

func interrupted(stage string) error {
	return errors.Newf(errors.ErrInterrupted, "stage %s interrupted", stage).
		WithReason("nothing was recorded, so the stage has not happened as far as later stages know").
		WithRemedy("re-run the stage")
}

// Run executes def. A completed stage is skipped unless forced or the
// operator asks to run it again.
func (r *Runner) Run(ctx context.Context, def Definition) (Result, error) {
	o := r.opts
	logger := logging.GetLogger("stage.runner").With().
		Str("session", o.Session.ID).
		Str("stage", def.ID).
		Logger()
	res := Result{Stage: def.ID, DryRun: o.DryRun}

	sc := &Context{
		Session:   o.Session,
		Pending:   kvstore.New(),
		Prompt:    o.Prompt,
		Ops:       command.NewRunner(o.Commander, command.PoliciesFromConfig(o.Config)),
		Backups:   backup.NewSet(o.FS),
		FS:        o.FS,
		Config:    o.Config,
		Detect:    o.Detect,
		Probe:     o.Probe,
		Overrides: o.Overrides,
		Log:       logger,
		SysRoot:   o.SysRoot,
		DryRun:    o.DryRun,
	}

	// Phase 0: already done
	if o.Session.Progress.IsDone(def.ID) && !o.Force {
		again, err := o.Prompt.Confirm(ctx, fmt.Sprintf("Stage %s has already completed. Run it again?", def.ID), false)
		if err != nil {
			return res, err
		}
		if !again {
			logger.Info().Msg("Stage already completed, skipping")
			res.Skipped = true
			return res, nil
		}
	}

	// Phase 1: preconditions
	if err := r.preconditions(ctx, def, sc); err != nil {
		return res, err
	}
	if ctx.Err() != nil {
		return res, interrupted(def.ID)
	}

	// Phase 2: interaction
	if def.Interact != nil {
		if err := def.Interact(ctx, sc); err != nil {
			return res, err
		}
	}
	if ctx.Err() != nil {
		return res, interrupted(def.ID)
	}

	// Phase 3: execution
	if def.Execute != nil {
		if err := def.Execute(ctx, sc); err != nil {
			r.restore(sc)
			if ctx.Err() != nil && !errors.IsErrorCode(err, errors.ErrInterrupted) {
				return res, interrupted(def.ID)
			}
			return res, err
		}
	}
	res.Degraded = sc.Ops.Degraded()

	// Phase 4: persistence
	if ctx.Err() != nil {
		r.restore(sc)
		return res, interrupted(def.ID)
	}
	res.Decided = sc.Pending.Keys()
	if o.DryRun {
		logger.Info().Strs("keys", res.Decided).Msg("Dry run mode - state would be recorded")
		return res, nil
	}
	if err := o.Session.Commit(def.ID, sc.Pending); err != nil {
		r.restore(sc)
		return res, err
	}
	if err := sc.Backups.ReleaseAll(); err != nil {
		logger.Warn().Err(err).Msg("Failed to remove backup copies")
	}

	if def.Handoff {
		if err := o.Session.Handoff(); err != nil {
			return res, errors.Wrap(err, errors.ErrFileAccess, "stage completed but the state could not be copied into the target").
				WithReason("the next stage runs inside the target root and reads the state from there").
				WithRemedy("run 'archstep handoff' once the problem is fixed")
		}
	}

	logger.Info().Strs("degraded", res.Degraded).Msg("Stage completed")
	return res, nil
}

func (r *Runner) restore(sc *Context) {
	if sc.Backups.Len() == 0 {
		return
	}
	if err := sc.Backups.RestoreAll(); err != nil {
		sc.Log.Error().Err(err).Strs("files", sc.Backups.Paths()).Msg("Failed to restore modified files")
		return
	}
	sc.Log.Info().Strs("files", sc.Backups.Paths()).Msg("Restored modified files")
}

func (r *Runner) preconditions(ctx context.Context, def Definition, sc *Context) error {
	probe := r.opts.Probe

	root := probe.IsRoot()
	if def.Identity == Privileged && !root {
		return errors.Precondition(
			fmt.Sprintf("stage %s must run as root", def.ID),
			"it installs packages and writes system files",
			"re-run with sudo, or as root on the console",
		)
	}
	if def.Identity == Unprivileged && root {
		return errors.Precondition(
			fmt.Sprintf("stage %s must run as a regular user", def.ID),
			"makepkg refuses to build packages as root",
			"log in as the user created by the configure stage and re-run",
		)
	}

	if err := r.checkEnvironment(def, root); err != nil {
		return err
	}

	if def.Mounts != nil {
		for _, mp := range def.Mounts(sc) {
			mounted, err := probe.Mounted(mp)
			if err != nil {
				return errors.Wrapf(err, errors.ErrPreconditionFailed, "cannot check whether %s is mounted", mp)
			}
			if !mounted {
				return errors.Precondition(
					fmt.Sprintf("%s is not a mountpoint", mp),
					"the system is installed onto the partitions mounted there",
					fmt.Sprintf("partition the disk and mount the root partition at %s", mp),
				).WithDetail("mountpoint", mp)
			}
		}
	}

	if def.NeedsNetwork {
		if err := probe.Online(ctx); err != nil {
			return errors.Wrap(err, errors.ErrPreconditionFailed, "no network connection").
				WithReason(fmt.Sprintf("stage %s downloads packages", def.ID)).
				WithRemedy("connect to a network (e.g. with iwctl or nmtui) and re-run")
		}
	}

	for _, gate := range def.Gates {
		if gate.Hard {
			if err := sc.Session.Progress.Check(ctx, gate, sc.Prompt); err != nil {
				return err
			}
		}
	}
	for _, gate := range def.Gates {
		if !gate.Hard {
			if err := sc.Session.Progress.Check(ctx, gate, sc.Prompt); err != nil {
				return err
			}
		}
	}

	if skipped := sc.Session.Corrupt(); len(skipped) > 0 {
		lines := make([]int, len(skipped))
		for i, s := range skipped {
			lines[i] = s.Line
		}
		sc.Log.Warn().Ints("lines", lines).Msg("State file has unreadable lines; affected values will be asked again")
	}
	return nil
}

func (r *Runner) checkEnvironment(def Definition, root bool) error {
	if def.Environment == Anywhere {
		return nil
	}
	probe := r.opts.Probe

	inChroot, err := probe.InChroot()
	if err != nil {
		if root {
			return errors.Wrap(err, errors.ErrPreconditionFailed, "cannot tell whether this is a chroot")
		}
		// only root may inspect pid 1; a user session is never the chroot
		inChroot = false
	}

	var ok bool
	var remedy string
	switch def.Environment {
	case LiveMedia:
		ok = probe.LiveMedia() && !inChroot
		remedy = "boot the Arch installation image and run the stage from its shell"
	case Chroot:
		ok = inChroot
		remedy = fmt.Sprintf("enter the target with 'arch-chroot %s' and re-run", r.opts.Session.Paths().TargetRoot())
	case Installed:
		ok = !inChroot && !probe.LiveMedia()
		remedy = "reboot into the installed system and re-run"
	}
	if !ok {
		return errors.Precondition(
			fmt.Sprintf("stage %s must run on the %s", def.ID, def.Environment),
			"each stage operates on the filesystem view of its environment",
			remedy,
		).WithDetail("environment", def.Environment.String())
	}
	return nil
}
