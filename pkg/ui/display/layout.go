package display

import (
	"fmt"
	"io"
	"strings"
)

// Styler decorates the fragments of the human readable layout
type Styler interface {
	Heading(s string) string
	Done(s string) string
	Pending(s string) string
	Next(s string) string
	Muted(s string) string
	Warning(s string) string
}

// Plain is a Styler that leaves text alone
type Plain struct{}

func (Plain) Heading(s string) string { return s }
func (Plain) Done(s string) string    { return s }
func (Plain) Pending(s string) string { return s }
func (Plain) Next(s string) string    { return s }
func (Plain) Muted(s string) string   { return s }
func (Plain) Warning(s string) string { return s }

const (
	markDone    = "[x]"
	markPending = "[ ]"
	markNext    = "[>]"
)

func stageLine(st Styler, s Stage, width int) string {
	mark, name := st.Pending(markPending), fmt.Sprintf("%-*s", width, s.ID)
	switch {
	case s.Done:
		mark, name = st.Done(markDone), st.Done(name)
	case s.Next:
		mark, name = st.Next(markNext), st.Next(name)
	}
	return fmt.Sprintf("  %s %s  %s", mark, name, st.Muted(fmt.Sprintf("%-11s %s on %s", s.Alias, s.Identity, s.Environment)))
}

func idWidth(stages []Stage) int {
	w := 0
	for _, s := range stages {
		if len(s.ID) > w {
			w = len(s.ID)
		}
	}
	return w
}

func keyWidth(values []Value) int {
	w := 0
	for _, v := range values {
		if len(v.Key) > w {
			w = len(v.Key)
		}
	}
	return w
}

// WriteStatus lays out a session status
func WriteStatus(w io.Writer, st Styler, s *Status) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", st.Heading("Session"), s.Session)
	fmt.Fprintf(&b, "%s %s\n\n", st.Heading("State"), s.StateDir)

	b.WriteString(st.Heading("Stages") + "\n")
	width := idWidth(s.Stages)
	for _, stage := range s.Stages {
		b.WriteString(stageLine(st, stage, width) + "\n")
	}
	if s.Complete {
		b.WriteString("\n" + st.Done("Installation complete") + "\n")
	}

	if len(s.Values) > 0 {
		b.WriteString("\n" + st.Heading("Values") + "\n")
		writeValues(&b, s.Values)
	}
	if len(s.CorruptLines) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.Warning(fmt.Sprintf("Unreadable state lines: %v", s.CorruptLines)))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeValues(b *strings.Builder, values []Value) {
	width := keyWidth(values)
	for _, v := range values {
		fmt.Fprintf(b, "  %-*s  %s\n", width, v.Key, v.Value)
	}
}

// WriteStages lays out the chain
func WriteStages(w io.Writer, st Styler, l *StageList) error {
	var b strings.Builder
	width := idWidth(l.Stages)
	for _, s := range l.Stages {
		b.WriteString(stageLine(st, s, width) + "\n")
		if s.Description != "" {
			fmt.Fprintf(&b, "      %s\n", st.Muted(s.Description))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteValues lays out key/value pairs. A single value is printed bare so
// scripts can capture it.
func WriteValues(w io.Writer, l *ValueList) error {
	if len(l.Values) == 1 {
		_, err := fmt.Fprintln(w, l.Values[0].Value)
		return err
	}
	var b strings.Builder
	writeValues(&b, l.Values)
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteRun lays out a run summary
func WriteRun(w io.Writer, st Styler, r *RunSummary) error {
	var b strings.Builder
	switch {
	case r.Skipped:
		fmt.Fprintf(&b, "%s\n", st.Muted(fmt.Sprintf("Stage %s skipped, it has already completed", r.Stage)))
	case r.DryRun:
		fmt.Fprintf(&b, "%s\n", st.Next(fmt.Sprintf("Dry run of %s finished, nothing was recorded", r.Stage)))
	default:
		fmt.Fprintf(&b, "%s\n", st.Done(fmt.Sprintf("Stage %s completed", r.Stage)))
	}
	for _, op := range r.Degraded {
		fmt.Fprintf(&b, "%s\n", st.Warning(fmt.Sprintf("Optional operation %s failed, see the log", op)))
	}
	if r.Next != "" && !r.DryRun {
		fmt.Fprintf(&b, "Next: archstep run %s\n", r.Next)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
