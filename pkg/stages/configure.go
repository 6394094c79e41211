package stages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/archstep/archstep/pkg/command"
	"github.com/archstep/archstep/pkg/config"
	"github.com/archstep/archstep/pkg/detect"
	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/progress"
	"github.com/archstep/archstep/pkg/prompt"
	"github.com/archstep/archstep/pkg/stage"
	"github.com/archstep/archstep/pkg/validate"
)

const sudoersWheel = "%wheel ALL=(ALL:ALL) ALL\n"

func configureStage() stage.Definition {
	return stage.Definition{
		ID:          Configure,
		Alias:       "configure",
		Title:       "System configuration",
		Description: "Configure host identity, locale, the user account and the bootloader inside the chroot",
		Identity:    stage.Privileged,
		Environment: stage.Chroot,
		Gates: []progress.Gate{
			{Stage: Base, Hard: true, Reason: "the system can only be configured once it is installed"},
		},
		Interact: interactConfigure,
		Execute:  executeConfigure,
	}
}

// bootloaderFor rejects loaders that cannot boot in the recorded mode
func bootloaderFor(mode string) func(string) error {
	return func(name string) error {
		if name == "systemd-boot" && mode != detect.BootUEFI {
			return fmt.Errorf("systemd-boot needs UEFI, this machine boots in %s mode", mode)
		}
		return nil
	}
}

func interactConfigure(ctx context.Context, sc *stage.Context) error {
	cfg := sc.Config
	questions := []prompt.Question{
		{Key: KeyHostname, Label: "Hostname", Validate: validate.Hostname, Identity: true},
		{Key: KeyTimezone, Label: "Timezone (Region/City)", Default: cfg.Defaults.Timezone, Validate: validate.Timezone},
		{Key: KeyLocale, Label: "Locale", Default: cfg.Defaults.Locale, Validate: validate.Locale},
		{Key: KeyKeymap, Label: "Console keymap", Default: cfg.Defaults.Keymap, Validate: validate.Keymap},
		{Key: KeyUsername, Label: "User name", Validate: validate.Username, Identity: true},
		{
			Key:      KeyBootloader,
			Label:    "Bootloader",
			Options:  config.Names(cfg.Bootloaders),
			Default:  cfg.Defaults.Bootloader,
			Validate: bootloaderFor(sc.Value(KeyBootMode, detect.BootBIOS)),
		},
	}
	for _, q := range questions {
		if _, err := sc.Ask(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func hostsFile(hostname string) string {
	return fmt.Sprintf("127.0.0.1\tlocalhost\n::1\t\tlocalhost\n127.0.1.1\t%s.localdomain\t%s\n", hostname, hostname)
}

// enableLocale uncomments locale in a locale.gen file, appending an entry
// when the file has none
func enableLocale(content, locale string) string {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	found := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
		fields := strings.Fields(trimmed)
		if len(fields) == 2 && fields[0] == locale {
			lines[i] = trimmed
			found = true
		}
	}
	if !found {
		charset := "UTF-8"
		if i := strings.IndexByte(locale, '.'); i >= 0 {
			charset = locale[i+1:]
		}
		lines = append(lines, locale+" "+charset)
	}
	if len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n") + "\n"
}

func executeConfigure(ctx context.Context, sc *stage.Context) error {
	hostname := sc.Value(KeyHostname, "")
	timezone := sc.Value(KeyTimezone, sc.Config.Defaults.Timezone)
	locale := sc.Value(KeyLocale, sc.Config.Defaults.Locale)
	keymap := sc.Value(KeyKeymap, sc.Config.Defaults.Keymap)
	user := sc.Value(KeyUsername, "")

	files := []struct {
		path string
		data string
	}{
		{"/etc/hostname", hostname + "\n"},
		{"/etc/hosts", hostsFile(hostname)},
		{"/etc/locale.conf", "LANG=" + locale + "\n"},
		{"/etc/vconsole.conf", "KEYMAP=" + keymap + "\n"},
	}
	for _, f := range files {
		if err := sc.WriteFile(f.path, []byte(f.data), 0644); err != nil {
			return err
		}
	}

	if err := sc.Guard("/etc/localtime"); err != nil {
		return err
	}
	if err := sc.Run(ctx, "timezone-link", command.New("ln", "-sf",
		filepath.Join(zoneinfoDirectory, timezone), "/etc/localtime")); err != nil {
		return err
	}
	if err := sc.Run(ctx, "hwclock", command.New("hwclock", "--systohc")); err != nil {
		return err
	}

	gen, err := sc.ReadFile("/etc/locale.gen")
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrFileAccess, "cannot read /etc/locale.gen")
	}
	if err := sc.WriteFile("/etc/locale.gen", []byte(enableLocale(string(gen), locale)), 0644); err != nil {
		return err
	}
	if err := sc.Run(ctx, "locale-gen", command.New("locale-gen")); err != nil {
		return err
	}

	if err := createUser(ctx, sc, user); err != nil {
		return err
	}
	if err := sc.WriteFile(sudoersDropIn, []byte(sudoersWheel), 0440); err != nil {
		return err
	}

	if err := installBootloader(ctx, sc); err != nil {
		return err
	}

	if err := sc.Run(ctx, "service-enable", command.New("systemctl", "enable", "NetworkManager")); err != nil {
		return err
	}

	// later stages run as the new user and must be able to record progress
	stateDir := sc.Session.Paths().StateDir()
	return sc.Run(ctx, "state-owner", command.New("chown", "-R", user+":"+user, stateDir))
}

func createUser(ctx context.Context, sc *stage.Context, user string) error {
	if _, err := sc.Ops.Commander().Output(ctx, command.New("id", "-u", user)); err == nil {
		sc.Log.Info().Str("user", user).Msg("User already exists")
	} else if err := sc.Run(ctx, "useradd", command.New("useradd", "-m", "-G", "wheel", "-s", "/bin/bash", user)); err != nil {
		return err
	}

	if password, ok := os.LookupEnv(EnvUserPassword); ok {
		cmd := command.New("chpasswd")
		cmd.Stdin = strings.NewReader(user + ":" + password + "\n")
		return sc.Run(ctx, "passwd", cmd)
	}
	if sc.NonInteractive() {
		return errors.Newf(errors.ErrInvalidInput, "no password for %s in non-interactive mode", user).
			WithReason("the password is never stored and cannot be asked for").
			WithRemedy(fmt.Sprintf("export %s or run without --non-interactive", EnvUserPassword))
	}
	cmd := command.New("passwd", user)
	cmd.Interactive = true
	return sc.Run(ctx, "passwd", cmd)
}
