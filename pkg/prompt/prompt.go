// Package prompt asks the operator for the decisions a stage needs.
//
// Every answer is validated. Invalid input is rejected with a diagnostic and
// the question is asked again; a default only ever replaces an empty answer.
package prompt

import (
	"context"
	"fmt"
	"strings"
)

// Question describes one decision
type Question struct {
	// Key is the store key the answer is saved under and the name presets
	// are looked up by
	Key   string
	Label string
	// Default is used for an empty answer. Identity fields leave it empty.
	Default string
	// Options restricts the answer to a fixed list
	Options []string
	// Validate checks a free-form answer
	Validate func(string) error
	// Identity marks fields that must never be guessed, such as the target
	// disk or the user name
	Identity bool
}

// Prompter collects validated answers. A cancelled ctx abandons the
// question with an interruption.
type Prompter interface {
	// Ask returns a single answer
	Ask(ctx context.Context, q Question) (string, error)
	// AskMany returns zero or more answers. Default is space separated.
	AskMany(ctx context.Context, q Question) ([]string, error)
	// Confirm asks a yes/no question
	Confirm(ctx context.Context, question string, def bool) (bool, error)
}

// Check validates one answer against the question's options and validator
func (q Question) Check(answer string) error {
	if len(q.Options) > 0 && !contains(q.Options, answer) {
		return fmt.Errorf("%q is not one of: %s", answer, strings.Join(q.Options, ", "))
	}
	if q.Validate != nil {
		return q.Validate(answer)
	}
	return nil
}

// CheckAll validates every answer of a multi-value question
func (q Question) CheckAll(answers []string) error {
	for _, a := range answers {
		if err := q.Check(a); err != nil {
			return err
		}
	}
	return nil
}

// resolveOption maps a 1-based index or an option name to the option
func (q Question) resolveOption(token string) (string, error) {
	var n int
	if _, err := fmt.Sscanf(token, "%d", &n); err == nil && fmt.Sprint(n) == token {
		if n < 1 || n > len(q.Options) {
			return "", fmt.Errorf("choose a number between 1 and %d", len(q.Options))
		}
		option := q.Options[n-1]
		return option, q.Check(option)
	}
	return token, q.Check(token)
}

// splitList splits a multi-value answer on spaces and commas
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
