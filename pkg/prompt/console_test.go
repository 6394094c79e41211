// pkg/prompt/console_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None (in-memory reader and writer)
// PURPOSE: Test validation, re-prompting, defaults and cancellation

package prompt_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func console(input string) (*prompt.Console, *bytes.Buffer) {
	var out bytes.Buffer
	return prompt.NewConsole(strings.NewReader(input), &out, 0), &out
}

func noDashes(s string) error {
	if strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") {
		return fmt.Errorf("must not start or end with '-'")
	}
	return nil
}

func TestAskRepromptsOnInvalidInput(t *testing.T) {
	c, out := console("-bad-\narch-desktop\n")

	got, err := c.Ask(context.Background(), prompt.Question{Key: "HOSTNAME", Label: "Hostname", Validate: noDashes})
	require.NoError(t, err)

	assert.Equal(t, "arch-desktop", got)
	assert.Contains(t, out.String(), "must not start or end with '-'")
	assert.Equal(t, 2, strings.Count(out.String(), "Hostname: "))
}

func TestAskEmptyInput(t *testing.T) {
	t.Run("uses_default", func(t *testing.T) {
		c, _ := console("\n")
		got, err := c.Ask(context.Background(), prompt.Question{Label: "Timezone", Default: "UTC"})
		require.NoError(t, err)
		assert.Equal(t, "UTC", got)
	})

	t.Run("required_without_default", func(t *testing.T) {
		c, out := console("\nalice\n")
		got, err := c.Ask(context.Background(), prompt.Question{Label: "Username"})
		require.NoError(t, err)
		assert.Equal(t, "alice", got)
		assert.Contains(t, out.String(), "a value is required")
	})
}

func TestAskInvalidNeverFallsBackToDefault(t *testing.T) {
	c, _ := console("-bad-\n")

	_, err := c.Ask(context.Background(), prompt.Question{Label: "Hostname", Default: "archlinux", Validate: noDashes})
	require.Error(t, err, "input ran out while the answer was still invalid")
	assert.True(t, errors.IsErrorCode(err, errors.ErrUserCancelled))
}

func TestAskOptions(t *testing.T) {
	q := prompt.Question{Label: "Bootloader", Options: []string{"grub", "systemd-boot", "limine"}, Default: "grub"}

	tests := []struct {
		input string
		want  string
	}{
		{"2\n", "systemd-boot"},
		{"limine\n", "limine"},
		{"\n", "grub"},
		{"7\nlilo\n3\n", "limine"},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			c, _ := console(tt.input)
			got, err := c.Ask(context.Background(), q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAskMany(t *testing.T) {
	q := prompt.Question{Label: "Kernels", Options: []string{"linux", "linux-lts", "linux-zen"}, Default: "linux"}

	t.Run("numbers_and_names", func(t *testing.T) {
		c, _ := console("1, linux-zen 1\n")
		got, err := c.AskMany(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, []string{"linux", "linux-zen"}, got)
	})

	t.Run("default", func(t *testing.T) {
		c, _ := console("\n")
		got, err := c.AskMany(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, []string{"linux"}, got)
	})

	t.Run("reprompt", func(t *testing.T) {
		c, out := console("linux-rt\n2\n")
		got, err := c.AskMany(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, []string{"linux-lts"}, got)
		assert.Contains(t, out.String(), "linux-rt")
	})

	t.Run("free_form_validated", func(t *testing.T) {
		c, _ := console("ok -bad\nok fine\n")
		got, err := c.AskMany(context.Background(), prompt.Question{Label: "Extra packages", Validate: noDashes})
		require.NoError(t, err)
		assert.Equal(t, []string{"ok", "fine"}, got)
	})
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		def   bool
		want  bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
		{"maybe\ny\n", false, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q_%v", tt.input, tt.def), func(t *testing.T) {
			c, _ := console(tt.input)
			got, err := c.Confirm(context.Background(), "Continue?", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEOFIsCancellation(t *testing.T) {
	c, _ := console("")
	_, err := c.Confirm(context.Background(), "Continue?", false)
	require.Error(t, err)
	assert.Equal(t, errors.ExitOK, errors.ExitCode(err))
}

func TestTimeout(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	c := prompt.NewConsole(r, io.Discard, 20*time.Millisecond)
	_, err := c.Ask(context.Background(), prompt.Question{Label: "Hostname"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUserCancelled))
	assert.Contains(t, err.Error(), "no answer within")
}

func TestOptionNumberIsValidated(t *testing.T) {
	q := prompt.Question{
		Label:   "Bootloader",
		Options: []string{"grub", "limine", "systemd-boot"},
		Validate: func(s string) error {
			if s == "systemd-boot" {
				return fmt.Errorf("systemd-boot needs UEFI")
			}
			return nil
		},
	}

	t.Run("ask", func(t *testing.T) {
		c, out := console("3\n1\n")
		got, err := c.Ask(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, "grub", got)
		assert.Contains(t, out.String(), "systemd-boot needs UEFI")
	})

	t.Run("ask_many", func(t *testing.T) {
		c, out := console("2 3\n2\n")
		got, err := c.AskMany(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, []string{"limine"}, got)
		assert.Contains(t, out.String(), "systemd-boot needs UEFI")
	})
}

func TestCancelledContextInterruptsPrompt(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	c := prompt.NewConsole(r, io.Discard, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := c.Ask(ctx, prompt.Question{Label: "Hostname"})
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInterrupted))
		assert.Equal(t, errors.ExitInterrupted, errors.ExitCode(err))
	case <-time.After(2 * time.Second):
		t.Fatal("prompt still waiting after the context was cancelled")
	}
}
