package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/archstep/archstep/pkg/command"
)

// FakeCommander records commands and answers from scripted results.
// Results are keyed by command name; each call consumes the next scripted
// error for that name, and once the script is exhausted calls succeed.
type FakeCommander struct {
	mu      sync.Mutex
	Calls   []command.Cmd
	errors  map[string][]error
	outputs map[string]string
	// OnRun, when set, runs before the scripted result is returned
	OnRun func(c command.Cmd)
}

// NewFakeCommander creates a commander where every command succeeds
func NewFakeCommander() *FakeCommander {
	return &FakeCommander{
		errors:  make(map[string][]error),
		outputs: make(map[string]string),
	}
}

// FailTimes makes the next n calls of name fail
func (f *FakeCommander) FailTimes(name string, n int) *FakeCommander {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < n; i++ {
		f.errors[name] = append(f.errors[name], fmt.Errorf("%s: exit status 1", name))
	}
	return f
}

// SetOutput sets the stdout returned for name
func (f *FakeCommander) SetOutput(name, out string) *FakeCommander {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[name] = out
	return f
}

func (f *FakeCommander) next(c command.Cmd) error {
	f.mu.Lock()
	f.Calls = append(f.Calls, c)
	var err error
	if queue := f.errors[c.Name]; len(queue) > 0 {
		err = queue[0]
		f.errors[c.Name] = queue[1:]
	}
	hook := f.OnRun
	f.mu.Unlock()

	if hook != nil {
		hook(c)
	}
	return err
}

// Run implements command.Commander
func (f *FakeCommander) Run(ctx context.Context, c command.Cmd) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.next(c)
}

// Output implements command.Commander
func (f *FakeCommander) Output(ctx context.Context, c command.Cmd) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := f.next(c); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outputs[c.Name], nil
}

// Count returns how many times name was invoked
func (f *FakeCommander) Count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Commands renders every call as a single argv string
func (f *FakeCommander) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.String()
	}
	return out
}

// Find returns the first call whose argv contains substr
func (f *FakeCommander) Find(substr string) (command.Cmd, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if strings.Contains(c.String(), substr) {
			return c, true
		}
	}
	return command.Cmd{}, false
}

// Names returns the command name of every call in order
func (f *FakeCommander) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.Name
	}
	return out
}
