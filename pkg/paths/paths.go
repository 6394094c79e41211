// Package paths provides centralized path handling for archstep.
// It resolves the well-known locations of the installation state on both
// sides of the chroot boundary, and the XDG locations of the log and user
// configuration files.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/archstep/archstep/pkg/errors"
)

// Environment variable names
const (
	// EnvStateDir overrides the directory holding the installation state
	EnvStateDir = "ARCHSTEP_STATE_DIR"

	// EnvTargetRoot overrides the mountpoint of the system being installed
	EnvTargetRoot = "ARCHSTEP_TARGET_ROOT"

	// EnvConfigFile points at an extra configuration file
	EnvConfigFile = "ARCHSTEP_CONFIG"
)

// Default directories and files
const (
	// DefaultStateDir is where the state lives, on the live media and,
	// relative to the target root, on the installed system
	DefaultStateDir = "/var/lib/archstep"

	// DefaultTargetRoot is where the installer expects the target mounted
	DefaultTargetRoot = "/mnt"

	// AppDirName is the directory name for archstep-specific files
	AppDirName = "archstep"

	// StoreFileName holds the key/value configuration entries
	StoreFileName = "install.env"

	// ProgressFileName holds the completed stage markers
	ProgressFileName = "progress"

	// ConfigFileName is the name of the configuration file
	ConfigFileName = "config.toml"

	// SystemConfigDir is the system-wide configuration directory
	SystemConfigDir = "/etc/archstep"
)

// Paths provides the well-known locations used by a session
type Paths interface {
	StateDir() string
	StoreFile() string
	ProgressFile() string
	TargetRoot() string
	TargetStateDir() string
	TargetStoreFile() string
	TargetProgressFile() string
}

type paths struct {
	stateDir   string
	targetRoot string
}

// New creates a Paths instance. Empty arguments fall back to the
// environment overrides and then to the defaults.
func New(stateDir, targetRoot string) (Paths, error) {
	if stateDir == "" {
		stateDir = os.Getenv(EnvStateDir)
	}
	if stateDir == "" {
		stateDir = DefaultStateDir
	}
	if targetRoot == "" {
		targetRoot = os.Getenv(EnvTargetRoot)
	}
	if targetRoot == "" {
		targetRoot = DefaultTargetRoot
	}

	absState, err := filepath.Abs(expandHome(stateDir))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve state directory %s", stateDir)
	}
	absTarget, err := filepath.Abs(expandHome(targetRoot))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve target root %s", targetRoot)
	}

	return &paths{
		stateDir:   absState,
		targetRoot: absTarget,
	}, nil
}

func (p *paths) StateDir() string     { return p.stateDir }
func (p *paths) StoreFile() string    { return filepath.Join(p.stateDir, StoreFileName) }
func (p *paths) ProgressFile() string { return filepath.Join(p.stateDir, ProgressFileName) }
func (p *paths) TargetRoot() string   { return p.targetRoot }

// TargetStateDir is the state directory as seen from the live media: the
// same path nested under the target root.
func (p *paths) TargetStateDir() string {
	return filepath.Join(p.targetRoot, p.stateDir)
}

func (p *paths) TargetStoreFile() string {
	return filepath.Join(p.TargetStateDir(), StoreFileName)
}

func (p *paths) TargetProgressFile() string {
	return filepath.Join(p.TargetStateDir(), ProgressFileName)
}

// ConfigFiles lists configuration files in load order, lowest precedence
// first. Missing files are skipped by the loader.
func ConfigFiles() []string {
	files := []string{
		filepath.Join(SystemConfigDir, ConfigFileName),
		filepath.Join(xdg.ConfigHome, AppDirName, ConfigFileName),
	}
	if extra := os.Getenv(EnvConfigFile); extra != "" {
		files = append(files, expandHome(extra))
	}
	return files
}

// expandHome expands ~ to the user's home directory
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
