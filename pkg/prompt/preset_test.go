// pkg/prompt/preset_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test flag-driven answers and non-interactive behavior

package prompt_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetAnswers(t *testing.T) {
	p := prompt.NewPreset(map[string]string{
		"HOSTNAME": "arch-desktop",
		"KERNELS":  "linux linux-lts",
	}, nil, true)

	host, err := p.Ask(context.Background(), prompt.Question{Key: "HOSTNAME", Validate: noDashes})
	require.NoError(t, err)
	assert.Equal(t, "arch-desktop", host)

	kernels, err := p.AskMany(context.Background(), prompt.Question{Key: "KERNELS", Options: []string{"linux", "linux-lts"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"linux", "linux-lts"}, kernels)
}

func TestPresetInvalidValue(t *testing.T) {
	p := prompt.NewPreset(map[string]string{"HOSTNAME": "-bad-"}, nil, true)

	_, err := p.Ask(context.Background(), prompt.Question{Key: "HOSTNAME", Validate: noDashes})
	require.Error(t, err)
	assert.Equal(t, errors.ExitInvalidInput, errors.ExitCode(err))
	assert.Contains(t, err.Error(), "HOSTNAME")
}

func TestPresetNonInteractiveMissing(t *testing.T) {
	p := prompt.NewPreset(nil, nil, true)

	t.Run("identity_field_fails", func(t *testing.T) {
		_, err := p.Ask(context.Background(), prompt.Question{Key: "USERNAME", Label: "Username"})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
		ie, _ := errors.AsInstallError(err)
		assert.Contains(t, ie.Remedy, "--set USERNAME=")
	})

	t.Run("default_is_taken", func(t *testing.T) {
		got, err := p.Ask(context.Background(), prompt.Question{Key: "TIMEZONE", Default: "UTC"})
		require.NoError(t, err)
		assert.Equal(t, "UTC", got)
	})

	t.Run("invalid_default_fails", func(t *testing.T) {
		_, err := p.Ask(context.Background(), prompt.Question{
			Key:      "BOOTLOADER",
			Default:  "systemd-boot",
			Options:  []string{"grub", "limine", "systemd-boot"},
			Validate: func(s string) error { return fmt.Errorf("%s needs UEFI", s) },
		})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
		assert.Contains(t, err.Error(), "BOOTLOADER")
	})

	t.Run("invalid_list_default_fails", func(t *testing.T) {
		_, err := p.AskMany(context.Background(), prompt.Question{Key: "KERNELS", Default: "linux-rt", Options: []string{"linux"}})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})

	t.Run("confirm_takes_default", func(t *testing.T) {
		ok, err := p.Confirm(context.Background(), "Run again?", false)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestPresetFallsThroughWhenInteractive(t *testing.T) {
	c, _ := console("alice\ny\n")
	p := prompt.NewPreset(map[string]string{"HOSTNAME": "arch"}, c, false)

	host, err := p.Ask(context.Background(), prompt.Question{Key: "HOSTNAME"})
	require.NoError(t, err)
	assert.Equal(t, "arch", host)

	user, err := p.Ask(context.Background(), prompt.Question{Key: "USERNAME", Label: "Username"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user)

	ok, err := p.Confirm(context.Background(), "Continue?", false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, p.NonInteractive())
}
