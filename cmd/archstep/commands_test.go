// cmd/archstep/commands_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (temp dirs), cobra
// PURPOSE: Test flag parsing and the state commands end to end

package archstep

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/logging"
	"github.com/archstep/archstep/pkg/paths"
	"github.com/archstep/archstep/pkg/stages"
	"github.com/archstep/archstep/pkg/ui/display"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI against a state directory in a temp dir
func execute(t *testing.T, stateDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(paths.EnvStateDir, stateDir)
	t.Setenv(paths.EnvTargetRoot, filepath.Join(stateDir, "target"))
	t.Setenv(logging.EnvLogFile, filepath.Join(t.TempDir(), "archstep.log"))

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseAssignments(t *testing.T) {
	values, err := parseAssignments([]string{"HOSTNAME=archbox", "TIMEZONE=UTC", "HOSTNAME=other", "EXTRA_PACKAGES="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"HOSTNAME":       "other",
		"TIMEZONE":       "UTC",
		"EXTRA_PACKAGES": "",
	}, values)

	for _, bad := range []string{"HOSTNAME", "hostname=x", "Hostname=x", "=x", "1HOST=x"} {
		_, err := parseAssignments([]string{bad})
		require.Error(t, err, bad)
		assert.Equal(t, errors.ExitInvalidInput, errors.ExitCode(err), bad)
	}
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"run", "status", "stages", "get", "set", "mark", "handoff", "reset", "gen-config", "version", "completion"} {
		assert.Contains(t, names, want)
	}

	run, _, err := root.Find([]string{"run"})
	require.NoError(t, err)
	for _, s := range shorthands {
		assert.NotNil(t, run.Flags().Lookup(s.flag), s.flag)
	}
}

func TestSetThenGet(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, dir, "set", stages.KeyHostname, "archbox")
	require.NoError(t, err)

	out, err := execute(t, dir, "get", stages.KeyHostname)
	require.NoError(t, err)
	assert.Equal(t, "archbox\n", out)

	_, err = execute(t, dir, "get", stages.KeyUsername)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestStatusAsJSON(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, dir, "mark", "partitions", "--yes")
	require.NoError(t, err)

	out, err := execute(t, dir, "status", "--format", "json")
	require.NoError(t, err)

	var status display.Status
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, dir, status.StateDir)
	require.Len(t, status.Stages, 6)
	assert.True(t, status.Stages[0].Done)
	assert.True(t, status.Stages[1].Next)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, t.TempDir(), "stages", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, errors.ExitInvalidInput, errors.ExitCode(err))
}

func TestUnknownFlagIsInvalidInput(t *testing.T) {
	_, err := execute(t, t.TempDir(), "status", "--no-such-flag")
	require.Error(t, err)
	assert.Equal(t, errors.ExitInvalidInput, errors.ExitCode(err))
}

func TestRunUnknownStage(t *testing.T) {
	_, err := execute(t, t.TempDir(), "run", "bootstrap")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestResetNeedsConfirmation(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, dir, "set", stages.KeyHostname, "archbox")
	require.NoError(t, err)

	// closed input cancels the confirmation
	_, err = execute(t, dir, "reset")
	require.Error(t, err)
	assert.Equal(t, errors.ExitOK, errors.ExitCode(err))

	_, err = execute(t, dir, "reset", "--yes")
	require.NoError(t, err)
	_, err = execute(t, dir, "get", stages.KeyHostname)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestVersion(t *testing.T) {
	out, err := execute(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "archstep dev")
}

func TestGenConfigWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	out, err := execute(t, t.TempDir(), "gen-config", "-w", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = execute(t, t.TempDir(), "gen-config", "-w", "--path", path)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
}
