// Package validate holds the input grammars used by stage prompts.
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	hostnameLabel = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)
	username      = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)
	timezone      = regexp.MustCompile(`^[A-Za-z0-9_+-]+(/[A-Za-z0-9_+-]+){0,2}$`)
	locale        = regexp.MustCompile(`^[a-z]{2,3}(_[A-Z]{2})?(\.[A-Za-z0-9-]+)?(@[a-z]+)?$`)
	keymap        = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
	packageName   = regexp.MustCompile(`^[a-z0-9@_+][a-z0-9@._+-]*$`)
)

// ZoneinfoDir is where timezone names are checked for existence
var ZoneinfoDir = "/usr/share/zoneinfo"

// reserved account names that useradd would accept but must not be reused
var reservedUsers = map[string]bool{
	"root": true, "bin": true, "daemon": true, "mail": true, "ftp": true,
	"http": true, "nobody": true, "dbus": true, "systemd-network": true,
}

// Hostname accepts a single RFC 1123 label: letters, digits and inner
// hyphens, at most 63 characters.
func Hostname(s string) error {
	if !hostnameLabel.MatchString(s) {
		return fmt.Errorf("hostname must be 1-63 letters, digits or '-', not starting or ending with '-'")
	}
	return nil
}

// Username accepts names useradd takes without --badname
func Username(s string) error {
	if !username.MatchString(s) {
		return fmt.Errorf("username must start with a lowercase letter or '_' and contain only lowercase letters, digits, '_' or '-' (max 32)")
	}
	if reservedUsers[s] {
		return fmt.Errorf("username %q is reserved for a system account", s)
	}
	return nil
}

// Timezone accepts Region/City names present in the zoneinfo database. When
// the database is not installed, the name pattern alone is checked.
func Timezone(s string) error {
	if !timezone.MatchString(s) || strings.Contains(s, "..") {
		return fmt.Errorf("timezone must look like Region/City, e.g. Europe/Berlin")
	}
	if _, err := os.Stat(ZoneinfoDir); err != nil {
		return nil
	}
	info, err := os.Stat(filepath.Join(ZoneinfoDir, s))
	if err != nil || info.IsDir() {
		return fmt.Errorf("unknown timezone %q", s)
	}
	return nil
}

// Locale accepts names like en_US.UTF-8 or de_DE@euro
func Locale(s string) error {
	if !locale.MatchString(s) {
		return fmt.Errorf("locale must look like en_US.UTF-8")
	}
	return nil
}

// Keymap accepts console keymap names like us or de-latin1
func Keymap(s string) error {
	if !keymap.MatchString(s) {
		return fmt.Errorf("keymap must contain only letters, digits, '.', '_' or '-'")
	}
	return nil
}

// PackageName accepts names pacman allows for packages
func PackageName(s string) error {
	if !packageName.MatchString(s) {
		return fmt.Errorf("%q is not a valid package name", s)
	}
	return nil
}

// AbsolutePath accepts an absolute, clean path
func AbsolutePath(s string) error {
	if !filepath.IsAbs(s) {
		return fmt.Errorf("%q must be an absolute path", s)
	}
	return nil
}

// BlockDevice accepts an existing block device node such as /dev/sda
func BlockDevice(s string) error {
	if err := AbsolutePath(s); err != nil {
		return err
	}
	info, err := os.Stat(s)
	if err != nil {
		return fmt.Errorf("%s does not exist", s)
	}
	if info.Mode()&os.ModeDevice == 0 || info.Mode()&os.ModeCharDevice != 0 {
		return fmt.Errorf("%s is not a block device", s)
	}
	return nil
}

// OneOf returns a validator accepting only the given values
func OneOf(values ...string) func(string) error {
	return func(s string) error {
		for _, v := range values {
			if v == s {
				return nil
			}
		}
		return fmt.Errorf("%q is not one of: %s", s, strings.Join(values, ", "))
	}
}
