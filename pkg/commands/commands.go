// Package commands implements the operations behind the CLI. Each function
// takes an options struct and returns a view model from pkg/ui/display, so
// the cobra layer only parses flags and renders.
package commands

import (
	"github.com/archstep/archstep/pkg/paths"
	"github.com/archstep/archstep/pkg/session"
	"github.com/archstep/archstep/pkg/stage"
	"github.com/archstep/archstep/pkg/stages"
	"github.com/archstep/archstep/pkg/types"
	"github.com/archstep/archstep/pkg/ui/display"
)

// State locates the session a command works on
type State struct {
	FS    types.FS
	Paths paths.Paths
}

func (s State) open() (*session.Session, error) {
	return session.Open(s.FS, s.Paths)
}

func stageView(def stage.Definition, done, next bool) display.Stage {
	return display.Stage{
		ID:          def.ID,
		Alias:       def.Alias,
		Title:       def.Title,
		Description: def.Description,
		Identity:    def.Identity.String(),
		Environment: def.Environment.String(),
		Done:        done,
		Next:        next,
	}
}

// chainView renders the chain against done
func chainView(done func(string) bool) []display.Stage {
	next, _ := stages.Next(done)
	reg := stages.Chain()
	var out []display.Stage
	for _, id := range reg.List() {
		def, _ := reg.Get(id)
		out = append(out, stageView(def, done(id), id == next.ID))
	}
	return out
}

// ListStages describes the chain
func ListStages() *display.StageList {
	return &display.StageList{Stages: chainView(func(string) bool { return false })}
}
