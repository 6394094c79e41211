// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"io"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/ui/text"
	"github.com/pterm/pterm"
)

// Renderer lays out results like the text renderer, with lipgloss styles,
// and prints messages with pterm prefixes
type Renderer struct {
	output io.Writer
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{output: w}, nil
}

// RenderResult renders any result type with rich terminal formatting
func (r *Renderer) RenderResult(result interface{}) error {
	return text.Render(r.output, styler{}, result)
}

// RenderError prints what failed with an error prefix, then why it matters
// and how to fix it
func (r *Renderer) RenderError(err error) error {
	ie, ok := errors.AsInstallError(err)
	if !ok {
		pterm.Error.WithWriter(r.output).Println(err.Error())
		return nil
	}
	msg := ie.Message
	if ie.Wrapped != nil {
		msg += ": " + ie.Wrapped.Error()
	}
	pterm.Error.WithWriter(r.output).Println(msg)
	if ie.Reason != "" {
		pterm.Info.WithWriter(r.output).Println("Why: " + ie.Reason)
	}
	if ie.Remedy != "" {
		pterm.Info.WithWriter(r.output).Println("Fix: " + ie.Remedy)
	}
	return nil
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	pterm.Success.WithWriter(r.output).Println(msg)
	return nil
}
