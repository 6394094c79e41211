// Package display holds the view models commands hand to the renderers,
// and the plain layout every human readable renderer shares.
package display

import "github.com/archstep/archstep/pkg/errors"

// Stage is one link of the installation chain
type Stage struct {
	ID          string `json:"id" yaml:"id" toml:"id"`
	Alias       string `json:"alias" yaml:"alias" toml:"alias"`
	Title       string `json:"title" yaml:"title" toml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Identity    string `json:"identity" yaml:"identity" toml:"identity"`
	Environment string `json:"environment" yaml:"environment" toml:"environment"`
	Done        bool   `json:"done" yaml:"done" toml:"done"`
	Next        bool   `json:"next" yaml:"next" toml:"next"`
}

// Value is one persisted decision
type Value struct {
	Key   string `json:"key" yaml:"key" toml:"key"`
	Value string `json:"value" yaml:"value" toml:"value"`
}

// Status describes a session: where it lives, how far the chain got and
// what has been decided
type Status struct {
	Session  string  `json:"session" yaml:"session" toml:"session"`
	StateDir string  `json:"state_dir" yaml:"state_dir" toml:"state_dir"`
	Complete bool    `json:"complete" yaml:"complete" toml:"complete"`
	Stages   []Stage `json:"stages" yaml:"stages" toml:"stages"`
	Values   []Value `json:"values" yaml:"values" toml:"values"`
	// CorruptLines are state file lines that could not be read
	CorruptLines []int `json:"corrupt_lines,omitempty" yaml:"corrupt_lines,omitempty" toml:"corrupt_lines,omitempty"`
}

// StageList is the chain without session state
type StageList struct {
	Stages []Stage `json:"stages" yaml:"stages" toml:"stages"`
}

// ValueList is the answer to a value query
type ValueList struct {
	Values []Value `json:"values" yaml:"values" toml:"values"`
}

// RunSummary reports what a stage run did
type RunSummary struct {
	Stage    string   `json:"stage" yaml:"stage" toml:"stage"`
	Title    string   `json:"title" yaml:"title" toml:"title"`
	Skipped  bool     `json:"skipped" yaml:"skipped" toml:"skipped"`
	DryRun   bool     `json:"dry_run" yaml:"dry_run" toml:"dry_run"`
	Decided  []string `json:"decided" yaml:"decided" toml:"decided"`
	Degraded []string `json:"degraded" yaml:"degraded" toml:"degraded"`
	// Next is the alias of the following stage, empty at the end of the chain
	Next string `json:"next,omitempty" yaml:"next,omitempty" toml:"next,omitempty"`
}

// Message is a one line outcome, such as "session reset"
type Message struct {
	Text string `json:"message" yaml:"message" toml:"message"`
}

// Error is the machine readable form of a failure
type Error struct {
	Code    string `json:"code" yaml:"code" toml:"code"`
	Message string `json:"error" yaml:"error" toml:"error"`
	Reason  string `json:"reason,omitempty" yaml:"reason,omitempty" toml:"reason,omitempty"`
	Remedy  string `json:"remedy,omitempty" yaml:"remedy,omitempty" toml:"remedy,omitempty"`
}

// NewError converts err, keeping the why and how-to-fix of install errors
func NewError(err error) Error {
	e := Error{Code: string(errors.GetErrorCode(err)), Message: err.Error()}
	if ie, ok := errors.AsInstallError(err); ok {
		e.Message = ie.Message
		if ie.Wrapped != nil {
			e.Message += ": " + ie.Wrapped.Error()
		}
		e.Reason = ie.Reason
		e.Remedy = ie.Remedy
	}
	return e
}
