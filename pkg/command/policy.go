package command

import (
	"context"
	stderrors "errors"

	"github.com/archstep/archstep/pkg/config"
	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/logging"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Criticality decides what an exhausted operation does to its stage
type Criticality string

const (
	// Required operations abort the stage
	Required Criticality = config.Required
	// Optional operations degrade to a warning
	Optional Criticality = config.Optional
)

// Policy is the retry and criticality of one named operation
type Policy struct {
	Attempts    int
	Criticality Criticality
}

// Policies maps operation names to their policy
type Policies map[string]Policy

// PoliciesFromConfig builds the table from the operations section
func PoliciesFromConfig(cfg *config.Config) Policies {
	p := make(Policies, len(cfg.Operations))
	for name, op := range cfg.Operations {
		p[name] = Policy{Attempts: op.Attempts, Criticality: Criticality(op.Criticality)}
	}
	return p
}

// Lookup returns the policy for name. Unknown operations run once and are
// required.
func (p Policies) Lookup(name string) Policy {
	if pol, ok := p[name]; ok && pol.Attempts > 0 {
		return pol
	}
	return Policy{Attempts: 1, Criticality: Required}
}

// Operation is a named external invocation subject to a policy
type Operation struct {
	Name string
	Cmd  Cmd
}

// Result describes how an operation went
type Result struct {
	Name     string
	Attempts int
	Degraded bool
}

// Runner applies policies to operations and remembers which ones degraded
type Runner struct {
	cmd      Commander
	policies Policies
	logger   zerolog.Logger
	degraded []string
}

// NewRunner creates a runner over a commander
func NewRunner(cmd Commander, policies Policies) *Runner {
	return &Runner{
		cmd:      cmd,
		policies: policies,
		logger:   logging.GetLogger("command.runner"),
	}
}

// WithLogger replaces the runner's logger
func (r *Runner) WithLogger(logger zerolog.Logger) *Runner {
	r.logger = logger
	return r
}

// Commander returns the underlying commander
func (r *Runner) Commander() Commander {
	return r.cmd
}

// Degraded lists the optional operations that exhausted their attempts
func (r *Runner) Degraded() []string {
	out := make([]string, len(r.degraded))
	copy(out, r.degraded)
	return out
}

// Run executes op under its policy
func (r *Runner) Run(ctx context.Context, op Operation) (Result, error) {
	return r.attempt(ctx, op, func() error {
		return r.cmd.Run(ctx, op.Cmd)
	})
}

// Output executes op under its policy and returns the stdout of the
// successful attempt
func (r *Runner) Output(ctx context.Context, op Operation) (string, Result, error) {
	var out string
	res, err := r.attempt(ctx, op, func() error {
		var err error
		out, err = r.cmd.Output(ctx, op.Cmd)
		return err
	})
	return out, res, err
}

func (r *Runner) attempt(ctx context.Context, op Operation, fn func() error) (Result, error) {
	pol := r.policies.Lookup(op.Name)
	res := Result{Name: op.Name}
	done := logging.LogOperationStart(r.logger, op.Name)
	defer done()

	b := backoff.WithContext(
		backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(pol.Attempts-1)),
		ctx,
	)

	err := backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		res.Attempts++
		err := fn()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		r.logger.Warn().
			Err(err).
			Str("operation", op.Name).
			Str("command", op.Cmd.String()).
			Int("attempt", res.Attempts).
			Int("max_attempts", pol.Attempts).
			Msg("Operation attempt failed")
		return err
	}, b)

	if err == nil {
		return res, nil
	}

	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return res, errors.Wrapf(err, errors.ErrInterrupted, "%s interrupted", op.Name).
			WithReason("the stage was cancelled before it could finish").
			WithRemedy("re-run the stage; nothing was recorded")
	}

	if pol.Criticality == Optional {
		res.Degraded = true
		r.degraded = append(r.degraded, op.Name)
		r.logger.Warn().
			Str("operation", op.Name).
			Int("attempts", res.Attempts).
			Msg("Optional operation failed, continuing without it")
		return res, nil
	}

	return res, errors.Wrapf(err, errors.ErrExternalCommand, "%s failed after %d attempt(s)", op.Name, res.Attempts).
		WithReason("the installation is not usable without "+op.Name).
		WithRemedy("check the log for the command output, fix the cause and re-run the stage").
		WithDetail("command", op.Cmd.String())
}
