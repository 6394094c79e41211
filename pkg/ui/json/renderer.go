// Package json renders results as indented JSON documents, one per call
package json

import (
	"encoding/json"
	"io"

	"github.com/archstep/archstep/pkg/ui/display"
)

// Renderer writes JSON for scripts
type Renderer struct {
	enc *json.Encoder
}

// New creates a JSON renderer writing to w
func New(w io.Writer) (*Renderer, error) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	// device paths and package names are printed as given
	enc.SetEscapeHTML(false)
	return &Renderer{enc: enc}, nil
}

// RenderResult encodes a view model
func (r *Renderer) RenderResult(result interface{}) error {
	return r.enc.Encode(result)
}

// RenderError encodes the error triad
func (r *Renderer) RenderError(err error) error {
	return r.enc.Encode(display.NewError(err))
}

// RenderMessage encodes msg as {"message": msg}
func (r *Renderer) RenderMessage(msg string) error {
	return r.RenderResult(display.Message{Text: msg})
}
