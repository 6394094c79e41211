// Package toml provides TOML output
package toml

import (
	"io"

	"github.com/archstep/archstep/pkg/ui/display"
	"github.com/pelletier/go-toml/v2"
)

// Renderer writes TOML documents. Results must be structs or maps, as TOML
// has no top-level arrays.
type Renderer struct {
	output io.Writer
}

// New creates a new TOML renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderResult renders any result type as TOML
func (r *Renderer) RenderResult(result interface{}) error {
	return toml.NewEncoder(r.output).SetIndentTables(true).Encode(result)
}

// RenderError renders an error as TOML
func (r *Renderer) RenderError(err error) error {
	return r.RenderResult(display.NewError(err))
}

// RenderMessage renders a simple message as TOML
func (r *Renderer) RenderMessage(msg string) error {
	return r.RenderResult(display.Message{Text: msg})
}
