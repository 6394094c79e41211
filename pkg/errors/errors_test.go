// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, triad rendering and exit codes

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "precondition_error",
			code:    errors.ErrPreconditionFailed,
			message: "partitions not mounted",
			wantStr: "[PRECONDITION_FAILED] partitions not mounted",
		},
		{
			name:    "invalid_input_error",
			code:    errors.ErrInvalidInput,
			message: "invalid hostname",
			wantStr: "[INVALID_INPUT] invalid hostname",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil_error_stays_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "ignored"))
	})

	t.Run("wrapped_error_is_reachable", func(t *testing.T) {
		base := stderrors.New("exit status 1")
		err := errors.Wrapf(base, errors.ErrExternalCommand, "%s failed", "pacstrap")

		assert.Equal(t, "[EXTERNAL_COMMAND_FAILED] pacstrap failed: exit status 1", err.Error())
		assert.True(t, stderrors.Is(err, base))
	})
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("stage: %w", errors.New(errors.ErrPreconditionFailed, "missing marker"))

	assert.True(t, stderrors.Is(err, errors.New(errors.ErrPreconditionFailed, "other message")))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrInvalidInput, "missing marker")))
	assert.True(t, errors.IsErrorCode(err, errors.ErrPreconditionFailed))
	assert.Equal(t, errors.ErrPreconditionFailed, errors.GetErrorCode(err))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("plain")))
}

func TestExplainRendersTriad(t *testing.T) {
	err := errors.Precondition(
		"stage 01-partitions-ready has not completed",
		"the base system must be installed onto mounted partitions",
		"run 'archstep run partitions' first",
	)

	assert.Equal(t,
		"stage 01-partitions-ready has not completed\n"+
			"  why: the base system must be installed onto mounted partitions\n"+
			"  fix: run 'archstep run partitions' first",
		err.Explain())

	got, ok := errors.AsInstallError(fmt.Errorf("wrapped: %w", err))
	require.True(t, ok)
	assert.Same(t, err, got)
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrFileAccess, "cannot read").WithDetail("path", "/etc/hostname")

	assert.Equal(t, "/etc/hostname", errors.GetErrorDetails(err)["path"])
	assert.Nil(t, errors.GetErrorDetails(stderrors.New("plain")))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, errors.ExitOK},
		{"cancelled_is_success", errors.Cancelled("declined"), errors.ExitOK},
		{"precondition", errors.New(errors.ErrPreconditionFailed, "x"), errors.ExitPrecondition},
		{"invalid_input", errors.New(errors.ErrInvalidInput, "x"), errors.ExitInvalidInput},
		{"external", errors.New(errors.ErrExternalCommand, "x"), errors.ExitExternal},
		{"config_corrupt", errors.New(errors.ErrConfigCorrupt, "x"), errors.ExitConfig},
		{"config_load", errors.New(errors.ErrConfigLoad, "x"), errors.ExitConfig},
		{"interrupted", errors.New(errors.ErrInterrupted, "x"), errors.ExitInterrupted},
		{"plain_error", stderrors.New("boom"), errors.ExitInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.ExitCode(tt.err))
		})
	}
}
