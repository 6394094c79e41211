package commands

import (
	"context"
	"fmt"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/logging"
	"github.com/archstep/archstep/pkg/progress"
	"github.com/archstep/archstep/pkg/stages"
	"github.com/archstep/archstep/pkg/ui/display"
)

// MarkStageOptions defines the options for MarkStage
type MarkStageOptions struct {
	State
	Stage   string
	Confirm progress.Confirmer
	// Yes skips the confirmation
	Yes bool
}

// MarkStage records a stage as completed without running it, for work the
// operator did by hand
func MarkStage(ctx context.Context, opts MarkStageOptions) (*display.Message, error) {
	def, err := stages.Lookup(opts.Stage)
	if err != nil {
		return nil, err
	}
	s, err := opts.open()
	if err != nil {
		return nil, err
	}
	if s.Progress.IsDone(def.ID) {
		return &display.Message{Text: fmt.Sprintf("%s is already marked as completed", def.ID)}, nil
	}

	if !opts.Yes {
		ok, err := opts.Confirm.Confirm(ctx, fmt.Sprintf("Mark %s as completed without running it? Later stages will assume its work is done.", def.ID), false)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Cancelled(fmt.Sprintf("%s was not marked", def.ID))
		}
	}

	if err := s.Progress.MarkDone(def.ID); err != nil {
		return nil, err
	}
	logger := logging.GetLogger("commands.mark")
	logger.Warn().Str("stage", def.ID).Msg("Stage marked as completed by hand")
	return &display.Message{Text: fmt.Sprintf("%s marked as completed", def.ID)}, nil
}
