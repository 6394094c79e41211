// Package command runs external tools by argument list and applies the
// per-operation retry and criticality policy.
package command

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/logging"
	"github.com/rs/zerolog"
)

// Cmd is one external invocation. It is never passed through a shell.
type Cmd struct {
	Name string
	Args []string
	Dir  string
	// Env entries are appended to the inherited environment
	Env []string
	// Stdin, when set, is fed to the process
	Stdin io.Reader
	// Interactive attaches the process to the terminal, e.g. for passwd
	Interactive bool
}

// New is a shorthand for a plain Cmd
func New(name string, args ...string) Cmd {
	return Cmd{Name: name, Args: args}
}

// String renders the argv for logs
func (c Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Commander executes commands
type Commander interface {
	// Run executes c and reports failure by error only
	Run(ctx context.Context, c Cmd) error
	// Output executes c and returns its stdout
	Output(ctx context.Context, c Cmd) (string, error)
}

// Executor runs commands on the host with os/exec
type Executor struct {
	logger zerolog.Logger
	dryRun bool
	stdout io.Writer
	stderr io.Writer
}

// NewExecutor creates an executor. In dry-run mode Run only logs; Output
// still executes because it is used for read-only queries.
func NewExecutor(dryRun bool) *Executor {
	return &Executor{
		logger: logging.GetLogger("command.exec"),
		dryRun: dryRun,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// DryRun reports whether mutating commands are skipped
func (e *Executor) DryRun() bool {
	return e.dryRun
}

func (e *Executor) build(ctx context.Context, c Cmd) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	if seeker, ok := c.Stdin.(io.Seeker); ok {
		// a retried command reads its input from the start
		_, _ = seeker.Seek(0, io.SeekStart)
	}
	cmd.Stdin = c.Stdin
	return cmd
}

// Run implements Commander
func (e *Executor) Run(ctx context.Context, c Cmd) error {
	if c.Name == "" {
		return errors.New(errors.ErrInvalidInput, "command requires a name")
	}
	logging.LogCommand(e.logger, c.Name, c.Args)

	if e.dryRun {
		e.logger.Info().Str("command", c.String()).Msg("Dry run mode - command would be executed")
		return nil
	}

	cmd := e.build(ctx, c)
	var stderr bytes.Buffer
	if c.Interactive {
		cmd.Stdin = os.Stdin
		cmd.Stdout = e.stdout
		cmd.Stderr = e.stderr
	} else {
		cmd.Stdout = e.stdout
		cmd.Stderr = io.MultiWriter(e.stderr, &stderr)
	}

	if err := cmd.Run(); err != nil {
		e.logger.Debug().
			Err(err).
			Str("command", c.String()).
			Str("stderr", tail(stderr.String(), 2048)).
			Msg("Command failed")
		return errors.Wrapf(err, errors.ErrExternalCommand, "%s failed", c.Name).
			WithDetail("stderr", tail(stderr.String(), 2048))
	}
	return nil
}

// Output implements Commander
func (e *Executor) Output(ctx context.Context, c Cmd) (string, error) {
	if c.Name == "" {
		return "", errors.New(errors.ErrInvalidInput, "command requires a name")
	}
	logging.LogCommand(e.logger, c.Name, c.Args)

	cmd := e.build(ctx, c)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), errors.Wrapf(err, errors.ErrExternalCommand, "%s failed", c.Name).
			WithDetail("stderr", tail(stderr.String(), 2048))
	}
	return stdout.String(), nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
