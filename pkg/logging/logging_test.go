package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv(EnvLogFile, "")
			t.Setenv("XDG_STATE_HOME", tempDir)

			SetupLogger(tt.verbosity)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			logPath := filepath.Join(tempDir, "archstep", "archstep.log")
			_, err := os.Stat(logPath)
			assert.NoError(t, err, "log file should be created at %s", logPath)
		})
	}
}

func TestGetLogFilePath(t *testing.T) {
	t.Run("explicit override wins", func(t *testing.T) {
		t.Setenv(EnvLogFile, "/tmp/custom.log")
		t.Setenv("XDG_STATE_HOME", "/custom/state")
		assert.Equal(t, "/tmp/custom.log", getLogFilePath())
	})

	t.Run("XDG_STATE_HOME", func(t *testing.T) {
		t.Setenv(EnvLogFile, "")
		t.Setenv("XDG_STATE_HOME", "/custom/state")
		assert.Equal(t, "/custom/state/archstep/archstep.log", getLogFilePath())
	})

	t.Run("home fallback", func(t *testing.T) {
		t.Setenv(EnvLogFile, "")
		t.Setenv("XDG_STATE_HOME", "")
		t.Setenv("HOME", "/home/installer")
		assert.Equal(t, "/home/installer/.local/state/archstep/archstep.log", getLogFilePath())
	})
}

func TestGetLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := GetLogger("stage.runner").Output(&buf)
	logger.Warn().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"stage.runner"`)
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	done := LogOperationStart(logger, "pacstrap")
	done()

	assert.Contains(t, buf.String(), "Operation started")
	assert.Contains(t, buf.String(), "Operation completed")
}

func TestJournalWriter(t *testing.T) {
	type sent struct {
		message  string
		priority journal.Priority
		vars     map[string]string
	}
	var got []sent
	w := &journalWriter{send: func(m string, p journal.Priority, v map[string]string) error {
		got = append(got, sent{m, p, v})
		return nil
	}}

	logger := zerolog.New(w)
	logger.Warn().Str("stage", "03-system-configured").Int("attempt", 2).Msg("retrying")

	require.Len(t, got, 1)
	assert.Equal(t, "retrying", got[0].message)
	assert.Equal(t, journal.PriWarning, got[0].priority)
	assert.Equal(t, "03-system-configured", got[0].vars["STAGE"])
	assert.Equal(t, "2", got[0].vars["ATTEMPT"])
	assert.Equal(t, "archstep", got[0].vars["SYSLOG_IDENTIFIER"])
	assert.NotContains(t, got[0].vars, "LEVEL")
}

func TestJournalKey(t *testing.T) {
	assert.Equal(t, "SESSION_ID", journalKey("session-id"))
	assert.Equal(t, "CALLER", journalKey("_caller"))
}
