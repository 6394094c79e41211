// Package ui renders command results for people and for programs. It
// supports terminal (rich), text (plain), JSON, YAML and TOML output.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/archstep/archstep/pkg/ui/json"
	"github.com/archstep/archstep/pkg/ui/terminal"
	"github.com/archstep/archstep/pkg/ui/text"
	"github.com/archstep/archstep/pkg/ui/toml"
	"github.com/archstep/archstep/pkg/ui/yaml"
)

// Renderer is the common interface for all output renderers
type Renderer interface {
	// RenderResult renders a view model from pkg/ui/display
	RenderResult(result interface{}) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// NewRenderer creates a new renderer based on the specified format.
// FormatAuto inspects output: a terminal gets styling, anything else plain
// text.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRenderer(DetectFormat(file), output)
		}
		return NewRenderer(FormatText, output)
	case FormatTerminal:
		return terminal.New(output)
	case FormatText:
		return text.New(output)
	case FormatJSON:
		return json.New(output)
	case FormatYAML:
		return yaml.New(output)
	case FormatTOML:
		return toml.New(output)
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}
