package commands

import (
	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/kvstore"
	"github.com/archstep/archstep/pkg/logging"
	"github.com/archstep/archstep/pkg/session"
	"github.com/archstep/archstep/pkg/stages"
	"github.com/archstep/archstep/pkg/ui/display"
)

// StatusOptions defines the options for Status
type StatusOptions struct {
	State
	// Filter is a glob over value keys; empty shows every value
	Filter string
}

// Status reports the progress of the chain and the recorded values
func Status(opts StatusOptions) (*display.Status, error) {
	log := logging.GetLogger("commands.status")
	log.Debug().Str("command", "Status").Msg("Executing command")

	s, err := opts.open()
	if err != nil {
		return nil, err
	}

	keys, err := matchKeys(s.Store, opts.Filter)
	if err != nil {
		return nil, err
	}

	result := &display.Status{
		Session:  s.ID,
		StateDir: opts.Paths.StateDir(),
		Stages:   chainView(s.Progress.IsDone),
	}
	_, pending := stages.Next(s.Progress.IsDone)
	result.Complete = !pending

	for _, k := range keys {
		if k == session.KeySessionID {
			continue
		}
		result.Values = append(result.Values, display.Value{Key: k, Value: s.Store.Get(k, "")})
	}
	for _, skipped := range s.Corrupt() {
		result.CorruptLines = append(result.CorruptLines, skipped.Line)
	}

	log.Info().Str("command", "Status").Int("values", len(result.Values)).Msg("Command finished")
	return result, nil
}

// matchKeys returns the keys matching pattern, or every key for ""
func matchKeys(store *kvstore.Store, pattern string) ([]string, error) {
	if pattern == "" {
		return store.Keys(), nil
	}
	keys, err := store.Match(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid filter %q", pattern).
			WithRemedy("use a glob such as 'BOOT*' or '*_PARTITION'")
	}
	return keys, nil
}
