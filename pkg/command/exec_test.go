// pkg/command/exec_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: echo, false and cat on PATH
// PURPOSE: Test argv execution, failure wrapping and dry run

package command

import (
	"context"
	"strings"
	"testing"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorOutput(t *testing.T) {
	e := NewExecutor(false)

	out, err := e.Output(context.Background(), New("echo", "a b", "$HOME"))
	require.NoError(t, err)
	assert.Equal(t, "a b $HOME\n", out, "arguments are never shell-expanded")
}

func TestExecutorRunFailure(t *testing.T) {
	e := NewExecutor(false)
	e.stdout, e.stderr = &discard{}, &discard{}

	err := e.Run(context.Background(), New("false"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrExternalCommand))
}

func TestExecutorDryRun(t *testing.T) {
	e := NewExecutor(true)

	// would fail if executed
	assert.NoError(t, e.Run(context.Background(), New("false")))
	assert.True(t, e.DryRun())
}

func TestExecutorRequiresName(t *testing.T) {
	err := NewExecutor(false).Run(context.Background(), Cmd{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestExecutorRewindsStdin(t *testing.T) {
	e := NewExecutor(false)
	c := New("cat")
	c.Stdin = strings.NewReader("alice:secret\n")

	for i := 0; i < 2; i++ {
		out, err := e.Output(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, "alice:secret\n", out, "attempt %d", i+1)
	}
}
