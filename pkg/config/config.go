package config

import (
	"fmt"
	"sort"
	"time"
)

// Criticality values accepted in the operations table
const (
	Required = "required"
	Optional = "optional"
)

// Config is the decoded archstep configuration
type Config struct {
	Paths         Paths                   `koanf:"paths"`
	Prompt        Prompt                  `koanf:"prompt"`
	Network       Network                 `koanf:"network"`
	Defaults      Defaults                `koanf:"defaults"`
	Operations    map[string]Operation    `koanf:"operations"`
	Packages      Packages                `koanf:"packages"`
	Kernels       Kernels                 `koanf:"kernels"`
	Bootloaders   map[string]Bootloader   `koanf:"bootloaders"`
	Desktops      map[string]Desktop      `koanf:"desktops"`
	Drivers       map[string][]string     `koanf:"drivers"`
	AURHelpers    map[string]AURHelper    `koanf:"aur_helpers"`
	PackageGroups map[string]PackageGroup `koanf:"package_groups"`
}

// Paths holds the state locations. Empty values fall back to pkg/paths.
type Paths struct {
	StateDir   string `koanf:"state_dir"`
	TargetRoot string `koanf:"target_root"`
}

// Prompt holds interactive prompt settings
type Prompt struct {
	// Timeout bounds a single answer; zero waits forever
	Timeout time.Duration `koanf:"timeout"`
}

// Network holds the connectivity probe settings
type Network struct {
	CheckHost string        `koanf:"check_host"`
	Timeout   time.Duration `koanf:"timeout"`
}

// Defaults are offered as prompt defaults for non-identity fields
type Defaults struct {
	Timezone   string `koanf:"timezone"`
	Locale     string `koanf:"locale"`
	Keymap     string `koanf:"keymap"`
	Bootloader string `koanf:"bootloader"`
	AURHelper  string `koanf:"aur_helper"`
}

// Operation is one row of the retry and criticality table
type Operation struct {
	Attempts    int    `koanf:"attempts"`
	Criticality string `koanf:"criticality"`
}

// Packages holds the package lists installed by pacstrap
type Packages struct {
	Base []string `koanf:"base"`
}

// Kernels holds the selectable kernels
type Kernels struct {
	Available []string `koanf:"available"`
	Default   []string `koanf:"default"`
}

// Bootloader holds the extra packages a bootloader needs
type Bootloader struct {
	Packages []string `koanf:"packages"`
}

// Desktop describes an installable desktop environment
type Desktop struct {
	Packages       []string `koanf:"packages"`
	DisplayManager string   `koanf:"display_manager"`
}

// AURHelper describes where an AUR helper is built from
type AURHelper struct {
	Repo string `koanf:"repo"`
}

// PackageGroup is a named set of packages offered in the packages stage
type PackageGroup struct {
	Packages []string `koanf:"packages"`
}

// Validate checks the cross-field constraints koanf cannot express
func (c *Config) Validate() error {
	for name, op := range c.Operations {
		if op.Attempts < 1 {
			return fmt.Errorf("operations.%s.attempts must be at least 1, got %d", name, op.Attempts)
		}
		if op.Criticality != Required && op.Criticality != Optional {
			return fmt.Errorf("operations.%s.criticality must be %q or %q, got %q", name, Required, Optional, op.Criticality)
		}
	}
	if c.Prompt.Timeout < 0 {
		return fmt.Errorf("prompt.timeout must not be negative")
	}
	if len(c.Kernels.Available) == 0 {
		return fmt.Errorf("kernels.available must list at least one kernel")
	}
	return nil
}

// Operation returns the policy row for name. Unknown operations run once and
// are required.
func (c *Config) Operation(name string) Operation {
	if op, ok := c.Operations[name]; ok {
		return op
	}
	return Operation{Attempts: 1, Criticality: Required}
}

// Names returns the sorted keys of a config table
func Names[V any](table map[string]V) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
