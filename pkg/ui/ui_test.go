// pkg/ui/ui_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test every renderer against the display view models

package ui_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/ui"
	"github.com/archstep/archstep/pkg/ui/display"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleStatus() *display.Status {
	return &display.Status{
		Session:  "0b6c7c36-5d1a-4f4e-8d8e-2b1f8a0c9e11",
		StateDir: "/var/lib/archstep",
		Stages: []display.Stage{
			{ID: "01-partitions-ready", Alias: "partitions", Identity: "root", Environment: "live media", Done: true},
			{ID: "02-base-installed", Alias: "base", Identity: "root", Environment: "live media", Next: true},
			{ID: "03-system-configured", Alias: "configure", Identity: "root", Environment: "chroot"},
		},
		Values: []display.Value{
			{Key: "BOOT_MODE", Value: "uefi"},
			{Key: "TARGET_DISK", Value: "/dev/nvme0n1"},
		},
		CorruptLines: []int{4},
	}
}

func render(t *testing.T, format ui.Format, v interface{}) string {
	t.Helper()
	var buf bytes.Buffer
	r, err := ui.NewRenderer(format, &buf)
	require.NoError(t, err)
	require.NoError(t, r.RenderResult(v))
	return buf.String()
}

func TestNewRenderer(t *testing.T) {
	for _, f := range []ui.Format{ui.FormatAuto, ui.FormatTerminal, ui.FormatText, ui.FormatJSON, ui.FormatYAML, ui.FormatTOML} {
		r, err := ui.NewRenderer(f, &bytes.Buffer{})
		assert.NoError(t, err, f.String())
		assert.NotNil(t, r)
	}

	r, err := ui.NewRenderer(ui.Format(999), &bytes.Buffer{})
	assert.Error(t, err)
	assert.Nil(t, r)
}

func TestTextStatus(t *testing.T) {
	out := render(t, ui.FormatText, sampleStatus())

	assert.Contains(t, out, "Session 0b6c7c36-5d1a-4f4e-8d8e-2b1f8a0c9e11\n")
	assert.Contains(t, out, "  [x] 01-partitions-ready   partitions  root on live media\n")
	assert.Contains(t, out, "  [>] 02-base-installed")
	assert.Contains(t, out, "  [ ] 03-system-configured  configure   root on chroot\n")
	assert.Contains(t, out, "  BOOT_MODE    uefi\n")
	assert.Contains(t, out, "Unreadable state lines: [4]")
	assert.NotContains(t, out, "\x1b[", "plain text has no escape codes")
}

func TestMachineStatus(t *testing.T) {
	s := sampleStatus()

	t.Run("json", func(t *testing.T) {
		var got display.Status
		require.NoError(t, json.Unmarshal([]byte(render(t, ui.FormatJSON, s)), &got))
		assert.Equal(t, *s, got)
	})

	t.Run("yaml", func(t *testing.T) {
		out := render(t, ui.FormatYAML, s)
		assert.Contains(t, out, "state_dir: /var/lib/archstep\n")
		var got display.Status
		require.NoError(t, yaml.Unmarshal([]byte(out), &got))
		assert.Equal(t, *s, got)
	})

	t.Run("toml", func(t *testing.T) {
		out := render(t, ui.FormatTOML, s)
		assert.Contains(t, out, "[[stages]]")
		var got display.Status
		require.NoError(t, toml.Unmarshal([]byte(out), &got))
		assert.Equal(t, *s, got)
	})
}

func TestSingleValueIsBare(t *testing.T) {
	out := render(t, ui.FormatText, &display.ValueList{Values: []display.Value{{Key: "HOSTNAME", Value: "arch-desktop"}}})
	assert.Equal(t, "arch-desktop\n", out)
}

func TestRunSummary(t *testing.T) {
	out := render(t, ui.FormatText, &display.RunSummary{
		Stage:    "06-packages-installed",
		Degraded: []string{"aur-install"},
	})
	assert.Contains(t, out, "Stage 06-packages-installed completed\n")
	assert.Contains(t, out, "Optional operation aur-install failed")

	out = render(t, ui.FormatText, &display.RunSummary{Stage: "01-partitions-ready", Next: "base"})
	assert.Contains(t, out, "Next: archstep run base\n")

	out = render(t, ui.FormatText, &display.RunSummary{Stage: "01-partitions-ready", Skipped: true, Next: "base"})
	assert.Contains(t, out, "skipped")
}

func TestRenderError(t *testing.T) {
	err := errors.Precondition("stage 02-base-installed has not completed", "configure needs an installed system", "run 'archstep run base' first")

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		r, _ := ui.NewRenderer(ui.FormatText, &buf)
		require.NoError(t, r.RenderError(err))
		assert.Equal(t, "Error: stage 02-base-installed has not completed\n  why: configure needs an installed system\n  fix: run 'archstep run base' first\n", buf.String())
	})

	t.Run("terminal", func(t *testing.T) {
		var buf bytes.Buffer
		r, _ := ui.NewRenderer(ui.FormatTerminal, &buf)
		require.NoError(t, r.RenderError(err))
		assert.Contains(t, buf.String(), "stage 02-base-installed has not completed")
		assert.Contains(t, buf.String(), "Fix: run 'archstep run base' first")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		r, _ := ui.NewRenderer(ui.FormatJSON, &buf)
		require.NoError(t, r.RenderError(err))
		var got display.Error
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "PRECONDITION_FAILED", got.Code)
		assert.Equal(t, "configure needs an installed system", got.Reason)
	})

	t.Run("plain_error", func(t *testing.T) {
		var buf bytes.Buffer
		r, _ := ui.NewRenderer(ui.FormatYAML, &buf)
		require.NoError(t, r.RenderError(assert.AnError))
		assert.Contains(t, buf.String(), "code: UNKNOWN")
	})
}

func TestRenderMessage(t *testing.T) {
	var buf bytes.Buffer
	r, _ := ui.NewRenderer(ui.FormatTOML, &buf)
	require.NoError(t, r.RenderMessage("session reset"))
	assert.Equal(t, "message = 'session reset'\n", buf.String())
}
