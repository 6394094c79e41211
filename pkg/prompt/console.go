package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/logging"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

type line struct {
	text string
	err  error
}

// Console prompts on a terminal
type Console struct {
	in      io.Reader
	out     io.Writer
	timeout time.Duration
	logger  zerolog.Logger

	once  sync.Once
	lines chan line
}

// NewConsole creates a console prompter. A zero timeout waits forever.
func NewConsole(in io.Reader, out io.Writer, timeout time.Duration) *Console {
	return &Console{
		in:      in,
		out:     out,
		timeout: timeout,
		logger:  logging.GetLogger("prompt.console"),
	}
}

// readLine returns the next input line. Reads happen on a single goroutine
// so an abandoned read after a timeout is picked up by the next question.
func (c *Console) readLine(ctx context.Context) (string, error) {
	c.once.Do(func() {
		c.lines = make(chan line)
		go func() {
			r := bufio.NewReader(c.in)
			for {
				text, err := r.ReadString('\n')
				if err != nil && text == "" {
					c.lines <- line{err: err}
					close(c.lines)
					return
				}
				c.lines <- line{text: strings.TrimRight(text, "\r\n")}
			}
		}()
	})

	var timeout <-chan time.Time
	if c.timeout > 0 {
		timer := time.NewTimer(c.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return "", errors.New(errors.ErrInterrupted, "prompt interrupted").
			WithReason("the answer was abandoned before it was recorded").
			WithRemedy("re-run the stage")
	case l, ok := <-c.lines:
		if !ok || l.err != nil {
			return "", errors.Cancelled("input closed").
				WithReason("no answer could be read").
				WithRemedy("run the stage again from a terminal, or pass the values as flags")
		}
		return strings.TrimSpace(l.text), nil
	case <-timeout:
		fmt.Fprintln(c.out)
		return "", errors.Cancelled(fmt.Sprintf("no answer within %s", c.timeout)).
			WithReason("prompt.timeout is set").
			WithRemedy("run the stage again, or raise prompt.timeout")
	}
}

func (c *Console) invalid(msg string) {
	pterm.Error.WithWriter(c.out).Println(msg)
}

func (c *Console) listOptions(q Question, defaults map[string]bool) {
	for i, opt := range q.Options {
		marker := " "
		if defaults[opt] {
			marker = "*"
		}
		fmt.Fprintf(c.out, "  %s %2d) %s\n", marker, i+1, opt)
	}
}

// Ask implements Prompter
func (c *Console) Ask(ctx context.Context, q Question) (string, error) {
	defaults := map[string]bool{q.Default: q.Default != ""}
	for {
		if len(q.Options) > 0 {
			fmt.Fprintf(c.out, "%s:\n", q.Label)
			c.listOptions(q, defaults)
		}
		if q.Default != "" {
			fmt.Fprintf(c.out, "%s [%s]: ", q.Label, q.Default)
		} else {
			fmt.Fprintf(c.out, "%s: ", q.Label)
		}

		answer, err := c.readLine(ctx)
		if err != nil {
			return "", err
		}
		if answer == "" {
			if q.Default == "" {
				c.invalid("a value is required")
				continue
			}
			answer = q.Default
		}

		if len(q.Options) > 0 {
			answer, err = q.resolveOption(answer)
		} else {
			err = q.Check(answer)
		}
		if err != nil {
			c.logger.Debug().Str("key", q.Key).Err(err).Msg("Rejected answer")
			c.invalid(err.Error())
			continue
		}
		return answer, nil
	}
}

// AskMany implements Prompter
func (c *Console) AskMany(ctx context.Context, q Question) ([]string, error) {
	defaultList := splitList(q.Default)
	defaults := make(map[string]bool, len(defaultList))
	for _, d := range defaultList {
		defaults[d] = true
	}

	for {
		if len(q.Options) > 0 {
			fmt.Fprintf(c.out, "%s (numbers or names, separated by spaces):\n", q.Label)
			c.listOptions(q, defaults)
		}
		fmt.Fprintf(c.out, "%s [%s]: ", q.Label, strings.Join(defaultList, " "))

		answer, err := c.readLine(ctx)
		if err != nil {
			return nil, err
		}
		if answer == "" {
			return defaultList, nil
		}

		var picked []string
		seen := make(map[string]bool)
		for _, token := range splitList(answer) {
			var value string
			if len(q.Options) > 0 {
				value, err = q.resolveOption(token)
			} else {
				value, err = token, q.Check(token)
			}
			if err != nil {
				break
			}
			if !seen[value] {
				seen[value] = true
				picked = append(picked, value)
			}
		}
		if err != nil {
			c.logger.Debug().Str("key", q.Key).Err(err).Msg("Rejected answer")
			c.invalid(err.Error())
			continue
		}
		return picked, nil
	}
}

// Confirm implements Prompter
func (c *Console) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	for {
		fmt.Fprintf(c.out, "%s %s: ", question, hint)
		answer, err := c.readLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		c.invalid("please answer y or n")
	}
}
