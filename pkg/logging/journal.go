package logging

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/rs/zerolog"
)

var severityMap = map[zerolog.Level]journal.Priority{
	zerolog.TraceLevel: journal.PriDebug,
	zerolog.DebugLevel: journal.PriDebug,
	zerolog.InfoLevel:  journal.PriInfo,
	zerolog.WarnLevel:  journal.PriWarning,
	zerolog.ErrorLevel: journal.PriErr,
	zerolog.FatalLevel: journal.PriCrit,
	zerolog.PanicLevel: journal.PriEmerg,
}

// journalWriter forwards zerolog JSON events to journald as structured
// entries. Only used when the journal socket is available.
type journalWriter struct {
	send func(message string, priority journal.Priority, vars map[string]string) error
}

func newJournalWriter() *journalWriter {
	if !journal.Enabled() {
		return nil
	}
	return &journalWriter{send: journal.Send}
}

func (w *journalWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

func (w *journalWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	var event map[string]interface{}
	if err := json.Unmarshal(p, &event); err != nil {
		// Not a JSON event; forward it verbatim
		return len(p), w.send(strings.TrimSpace(string(p)), journal.PriInfo, nil)
	}

	message, _ := event[zerolog.MessageFieldName].(string)
	delete(event, zerolog.MessageFieldName)
	delete(event, zerolog.LevelFieldName)
	delete(event, zerolog.TimestampFieldName)

	priority, ok := severityMap[level]
	if !ok {
		priority = journal.PriInfo
	}

	vars := make(map[string]string, len(event)+1)
	vars["SYSLOG_IDENTIFIER"] = "archstep"
	for k, v := range event {
		vars[journalKey(k)] = fmt.Sprint(v)
	}

	return len(p), w.send(message, priority, vars)
}

// journalKey converts a zerolog field name into a valid journal field name:
// upper case letters, digits and underscores, not starting with underscore.
func journalKey(key string) string {
	key = strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'a' && r <= 'z':
			return r - 32
		default:
			return '_'
		}
	}, key)
	return strings.TrimLeft(key, "_")
}
