package commands

import (
	"fmt"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/logging"
	"github.com/archstep/archstep/pkg/ui/display"
)

// GetValuesOptions defines the options for GetValues
type GetValuesOptions struct {
	State
	// Key selects a single value, which must exist
	Key string
	// Match is a glob over keys, used when Key is empty
	Match string
}

// GetValues reads recorded values
func GetValues(opts GetValuesOptions) (*display.ValueList, error) {
	s, err := opts.open()
	if err != nil {
		return nil, err
	}

	if opts.Key != "" {
		v, ok := s.Store.Lookup(opts.Key)
		if !ok {
			return nil, errors.Newf(errors.ErrNotFound, "%s is not recorded", opts.Key).
				WithRemedy("run 'archstep get' to list recorded values")
		}
		return &display.ValueList{Values: []display.Value{{Key: opts.Key, Value: v}}}, nil
	}

	keys, err := matchKeys(s.Store, opts.Match)
	if err != nil {
		return nil, err
	}
	result := &display.ValueList{}
	for _, k := range keys {
		result.Values = append(result.Values, display.Value{Key: k, Value: s.Store.Get(k, "")})
	}
	return result, nil
}

// SetValueOptions defines the options for SetValue
type SetValueOptions struct {
	State
	Key   string
	Value string
}

// SetValue records a value outside of any stage
func SetValue(opts SetValueOptions) (*display.Message, error) {
	log := logging.GetLogger("commands.set")

	s, err := opts.open()
	if err != nil {
		return nil, err
	}
	if err := s.Store.Set(opts.Key, opts.Value); err != nil {
		return nil, err
	}
	if err := s.Save(); err != nil {
		return nil, err
	}

	log.Info().Str("key", opts.Key).Msg("Value set")
	return &display.Message{Text: fmt.Sprintf("%s recorded", opts.Key)}, nil
}
