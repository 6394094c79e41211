// Package stage runs one installation stage through its four phases:
// preconditions, interaction, execution and persistence.
package stage

import (
	"context"

	"github.com/archstep/archstep/pkg/progress"
)

// Identity is the account a stage must run as
type Identity int

const (
	// Privileged stages run as root
	Privileged Identity = iota
	// Unprivileged stages run as the installed system's user
	Unprivileged
)

func (i Identity) String() string {
	if i == Unprivileged {
		return "user"
	}
	return "root"
}

// Environment is where a stage must run
type Environment int

const (
	// Anywhere skips the environment check
	Anywhere Environment = iota
	// LiveMedia is the booted installation image, outside any chroot
	LiveMedia
	// Chroot is inside the target root
	Chroot
	// Installed is the booted, installed system
	Installed
)

func (e Environment) String() string {
	switch e {
	case LiveMedia:
		return "live media"
	case Chroot:
		return "chroot"
	case Installed:
		return "installed system"
	}
	return "any"
}

// Hook is a phase implementation supplied by a stage
type Hook func(ctx context.Context, sc *Context) error

// Definition declares a stage
type Definition struct {
	// ID is the progress marker recorded on success
	ID          string
	Alias       string
	Title       string
	Description string

	Identity     Identity
	Environment  Environment
	NeedsNetwork bool
	// Mounts lists paths that must be mountpoints
	Mounts func(sc *Context) []string
	Gates  []progress.Gate

	Interact Hook
	Execute  Hook

	// Handoff copies the session into the target root after persistence
	Handoff bool
}
