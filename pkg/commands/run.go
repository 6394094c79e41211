package commands

import (
	"context"

	"github.com/archstep/archstep/pkg/command"
	"github.com/archstep/archstep/pkg/config"
	"github.com/archstep/archstep/pkg/detect"
	"github.com/archstep/archstep/pkg/logging"
	"github.com/archstep/archstep/pkg/prompt"
	"github.com/archstep/archstep/pkg/stage"
	"github.com/archstep/archstep/pkg/stages"
	"github.com/archstep/archstep/pkg/system"
	"github.com/archstep/archstep/pkg/ui/display"
)

// RunStageOptions defines the options for RunStage
type RunStageOptions struct {
	State
	// Stage is a marker or an alias
	Stage     string
	Probe     system.Probe
	Prompt    prompt.Prompter
	Commander command.Commander
	Config    *config.Config
	Detect    *detect.Detector
	// Overrides replace auto-detected values
	Overrides map[string]string
	Force     bool
	DryRun    bool
}

// RunStage runs one stage of the chain against the session
func RunStage(ctx context.Context, opts RunStageOptions) (*display.RunSummary, error) {
	log := logging.GetLogger("commands.run")
	log.Debug().Str("command", "RunStage").Str("stage", opts.Stage).Msg("Executing command")

	def, err := stages.Lookup(opts.Stage)
	if err != nil {
		return nil, err
	}
	s, err := opts.open()
	if err != nil {
		return nil, err
	}

	runner := stage.NewRunner(stage.Options{
		Session:   s,
		FS:        opts.FS,
		Probe:     opts.Probe,
		Prompt:    opts.Prompt,
		Commander: opts.Commander,
		Config:    opts.Config,
		Detect:    opts.Detect,
		Overrides: opts.Overrides,
		Force:     opts.Force,
		DryRun:    opts.DryRun,
	})
	res, err := runner.Run(ctx, def)
	if err != nil {
		return nil, err
	}

	summary := &display.RunSummary{
		Stage:    res.Stage,
		Title:    def.Title,
		Skipped:  res.Skipped,
		DryRun:   res.DryRun,
		Decided:  res.Decided,
		Degraded: res.Degraded,
	}
	if next, ok := stages.Next(s.Progress.IsDone); ok {
		summary.Next = next.Alias
	}

	log.Info().Str("command", "RunStage").Str("stage", res.Stage).Bool("skipped", res.Skipped).Msg("Command finished")
	return summary, nil
}
