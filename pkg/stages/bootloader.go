package stages

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/archstep/archstep/pkg/command"
	"github.com/archstep/archstep/pkg/detect"
	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/stage"
)

// bootEntry is what a loader needs to start one kernel
type bootEntry struct {
	Title     string
	Kernel    string
	Initrds   []string
	Options   string
	Microcode string
}

func bootEntries(sc *stage.Context, partuuid string) []bootEntry {
	ucode := detect.Microcode(sc.Value(KeyCPUVendor, detect.CPUUnknown))
	var entries []bootEntry
	for _, k := range sc.List(KeyKernels) {
		e := bootEntry{
			Title:   "Arch Linux (" + k + ")",
			Kernel:  "/vmlinuz-" + k,
			Options: fmt.Sprintf("root=PARTUUID=%s rw", partuuid),
		}
		if ucode != "" {
			e.Initrds = append(e.Initrds, "/"+ucode+".img")
		}
		e.Initrds = append(e.Initrds, "/initramfs-"+k+".img")
		entries = append(entries, e)
	}
	return entries
}

func systemdBootEntry(e bootEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "title   %s\n", e.Title)
	fmt.Fprintf(&b, "linux   %s\n", e.Kernel)
	for _, i := range e.Initrds {
		fmt.Fprintf(&b, "initrd  %s\n", i)
	}
	fmt.Fprintf(&b, "options %s\n", e.Options)
	return b.String()
}

func limineConfig(entries []bootEntry) string {
	var b strings.Builder
	b.WriteString("timeout: 5\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "\n/%s\n", e.Title)
		b.WriteString("    protocol: linux\n")
		fmt.Fprintf(&b, "    path: boot():%s\n", e.Kernel)
		fmt.Fprintf(&b, "    cmdline: %s\n", e.Options)
		for _, i := range e.Initrds {
			fmt.Fprintf(&b, "    module_path: boot():%s\n", i)
		}
	}
	return b.String()
}

func rootPartUUID(ctx context.Context, sc *stage.Context) (string, error) {
	root := sc.Value(KeyRootPartition, "")
	out, err := sc.Output(ctx, "bootloader-config", command.New("blkid", "-s", "PARTUUID", "-o", "value", root))
	if err != nil {
		return "", err
	}
	uuid := strings.TrimSpace(out)
	if uuid == "" && !sc.DryRun {
		return "", errors.Newf(errors.ErrExternalCommand, "%s has no PARTUUID", root).
			WithReason("the boot entry identifies the root partition by PARTUUID").
			WithRemedy("use a GPT partition table, or choose grub")
	}
	return uuid, nil
}

func installBootloader(ctx context.Context, sc *stage.Context) error {
	name := sc.Value(KeyBootloader, sc.Config.Defaults.Bootloader)
	mode := sc.Value(KeyBootMode, detect.BootBIOS)
	disk := sc.Value(KeyTargetDisk, "")
	esp := sc.Value(KeyEFIMount, "/boot")

	if pkgs := sc.Config.Bootloaders[name].Packages; len(pkgs) > 0 {
		args := append([]string{"-S", "--needed", "--noconfirm"}, pkgs...)
		if err := sc.Run(ctx, "package-install", command.New("pacman", args...)); err != nil {
			return err
		}
	}

	logger := sc.Log.With().Str("bootloader", name).Str("mode", mode).Logger()
	logger.Info().Msg("Installing bootloader")

	switch name {
	case "grub":
		install := command.New("grub-install", "--target=i386-pc", disk)
		if mode == detect.BootUEFI {
			install = command.New("grub-install", "--target=x86_64-efi", "--efi-directory="+esp, "--bootloader-id=GRUB")
		}
		if err := sc.Run(ctx, "bootloader-install", install); err != nil {
			return err
		}
		if err := sc.Guard("/boot/grub/grub.cfg"); err != nil {
			return err
		}
		return sc.Run(ctx, "bootloader-config", command.New("grub-mkconfig", "-o", "/boot/grub/grub.cfg"))

	case "systemd-boot":
		if err := sc.Run(ctx, "bootloader-install", command.New("bootctl", "install", "--esp-path="+esp)); err != nil {
			return err
		}
		uuid, err := rootPartUUID(ctx, sc)
		if err != nil {
			return err
		}
		entries := bootEntries(sc, uuid)
		if len(entries) == 0 {
			return errors.New(errors.ErrPreconditionFailed, "no kernel was recorded").
				WithRemedy("re-run the base stage")
		}
		loader := fmt.Sprintf("default %s.conf\ntimeout 3\n", strings.TrimPrefix(entries[0].Kernel, "/vmlinuz-"))
		if err := sc.WriteFile(filepath.Join(esp, "loader", "loader.conf"), []byte(loader), 0644); err != nil {
			return err
		}
		for _, e := range entries {
			file := strings.TrimPrefix(e.Kernel, "/vmlinuz-") + ".conf"
			if err := sc.WriteFile(filepath.Join(esp, "loader", "entries", file), []byte(systemdBootEntry(e)), 0644); err != nil {
				return err
			}
		}
		return nil

	case "limine":
		confDir := "/boot/limine"
		if mode == detect.BootUEFI {
			confDir = filepath.Join(esp, "EFI", "BOOT")
			if err := sc.Run(ctx, "bootloader-install", command.New("install", "-Dm644",
				"/usr/share/limine/BOOTX64.EFI", filepath.Join(confDir, "BOOTX64.EFI"))); err != nil {
				return err
			}
		} else {
			if err := sc.Run(ctx, "bootloader-install", command.New("install", "-Dm644",
				"/usr/share/limine/limine-bios.sys", filepath.Join(confDir, "limine-bios.sys"))); err != nil {
				return err
			}
			if err := sc.Run(ctx, "bootloader-install", command.New("limine", "bios-install", disk)); err != nil {
				return err
			}
		}
		uuid, err := rootPartUUID(ctx, sc)
		if err != nil {
			return err
		}
		return sc.WriteFile(filepath.Join(confDir, "limine.conf"), []byte(limineConfig(bootEntries(sc, uuid))), 0644)
	}

	return errors.Newf(errors.ErrInvalidInput, "unsupported bootloader %q", name).
		WithRemedy("choose one of the configured bootloaders")
}
