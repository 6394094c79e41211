package commands

import (
	"fmt"
	"path/filepath"

	"github.com/archstep/archstep/pkg/ui/display"
)

// HandoffOptions defines the options for Handoff
type HandoffOptions struct {
	State
	// Target is the root of the installed system; empty uses the configured
	// target root
	Target string
}

// Handoff copies the session into the state directory below the target root
func Handoff(opts HandoffOptions) (*display.Message, error) {
	s, err := opts.open()
	if err != nil {
		return nil, err
	}
	dir := opts.Paths.TargetStateDir()
	if opts.Target != "" {
		dir = filepath.Join(opts.Target, opts.Paths.StateDir())
	}
	if err := s.HandoffTo(dir); err != nil {
		return nil, err
	}
	return &display.Message{Text: fmt.Sprintf("Session copied to %s", dir)}, nil
}
