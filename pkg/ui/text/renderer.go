// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/ui/display"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderResult renders any result type as plain text
func (r *Renderer) RenderResult(result interface{}) error {
	return Render(r.output, display.Plain{}, result)
}

// Render lays out the known view models with st. Unknown types are
// printed with %+v.
func Render(w io.Writer, st display.Styler, result interface{}) error {
	switch v := result.(type) {
	case *display.Status:
		return display.WriteStatus(w, st, v)
	case *display.StageList:
		return display.WriteStages(w, st, v)
	case *display.ValueList:
		return display.WriteValues(w, v)
	case *display.RunSummary:
		return display.WriteRun(w, st, v)
	case *display.Message:
		_, err := fmt.Fprintln(w, v.Text)
		return err
	default:
		_, err := fmt.Fprintf(w, "%+v\n", result)
		return err
	}
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	msg := err.Error()
	if ie, ok := errors.AsInstallError(err); ok {
		msg = ie.Explain()
	}
	_, err2 := fmt.Fprintf(r.output, "Error: %s\n", msg)
	return err2
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
