package commands

import (
	"context"
	"fmt"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/progress"
	"github.com/archstep/archstep/pkg/ui/display"
)

// ResetOptions defines the options for Reset
type ResetOptions struct {
	State
	Confirm progress.Confirmer
	// Yes skips the confirmation
	Yes bool
}

// Reset forgets every decision and marker of the session
func Reset(ctx context.Context, opts ResetOptions) (*display.Message, error) {
	s, err := opts.open()
	if err != nil {
		return nil, err
	}
	if !opts.Yes {
		ok, err := opts.Confirm.Confirm(ctx, fmt.Sprintf("Remove every recorded decision and marker in %s?", opts.Paths.StateDir()), false)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Cancelled("reset declined")
		}
	}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return &display.Message{Text: "Session reset"}, nil
}
