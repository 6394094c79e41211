package prompt

import (
	"context"
	"fmt"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/logging"
)

// Preset answers questions from values given on the command line and falls
// back to another prompter for the rest. In non-interactive mode there is no
// fallback: a question without a preset takes its default, or fails when it
// has none.
type Preset struct {
	values         map[string]string
	next           Prompter
	nonInteractive bool
}

// NewPreset creates a preset prompter. next may be nil when nonInteractive.
func NewPreset(values map[string]string, next Prompter, nonInteractive bool) *Preset {
	if values == nil {
		values = map[string]string{}
	}
	return &Preset{values: values, next: next, nonInteractive: nonInteractive}
}

// NonInteractive reports whether the operator can be asked anything
func (p *Preset) NonInteractive() bool {
	return p.nonInteractive
}

func invalidPreset(q Question, value string, err error) error {
	return errors.Newf(errors.ErrInvalidInput, "invalid value %q for %s", value, q.Key).
		WithReason(err.Error()).
		WithRemedy(fmt.Sprintf("pass a valid value with --set %s=...", q.Key))
}

func missing(q Question) error {
	return errors.Newf(errors.ErrInvalidInput, "no value for %s in non-interactive mode", q.Key).
		WithReason(q.Label + " has no safe default").
		WithRemedy(fmt.Sprintf("pass --set %s=... or run without --non-interactive", q.Key))
}

func invalidDefault(q Question, err error) error {
	return errors.Newf(errors.ErrInvalidInput, "default %q for %s is not valid here", q.Default, q.Key).
		WithReason(err.Error()).
		WithRemedy(fmt.Sprintf("pass --set %s=... or fix the default in the config file", q.Key))
}

// Ask implements Prompter
func (p *Preset) Ask(ctx context.Context, q Question) (string, error) {
	logger := logging.GetLogger("prompt.preset")
	if v, ok := p.values[q.Key]; ok {
		if err := q.Check(v); err != nil {
			return "", invalidPreset(q, v, err)
		}
		logger.Debug().Str("key", q.Key).Msg("Answered from preset")
		return v, nil
	}
	if !p.nonInteractive {
		return p.next.Ask(ctx, q)
	}
	if q.Default == "" {
		return "", missing(q)
	}
	if err := q.Check(q.Default); err != nil {
		return "", invalidDefault(q, err)
	}
	logger.Debug().Str("key", q.Key).Str("value", q.Default).Msg("Non-interactive, using default")
	return q.Default, nil
}

// AskMany implements Prompter
func (p *Preset) AskMany(ctx context.Context, q Question) ([]string, error) {
	if v, ok := p.values[q.Key]; ok {
		values := splitList(v)
		if err := q.CheckAll(values); err != nil {
			return nil, invalidPreset(q, v, err)
		}
		return values, nil
	}
	if !p.nonInteractive {
		return p.next.AskMany(ctx, q)
	}
	values := splitList(q.Default)
	if err := q.CheckAll(values); err != nil {
		return nil, invalidDefault(q, err)
	}
	return values, nil
}

// Confirm implements Prompter. Non-interactive runs take the default.
func (p *Preset) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	if !p.nonInteractive {
		return p.next.Confirm(ctx, question, def)
	}
	logger := logging.GetLogger("prompt.preset")
	logger.Info().Str("question", question).Bool("answer", def).Msg("Non-interactive, using default answer")
	return def, nil
}
