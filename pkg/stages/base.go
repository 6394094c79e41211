package stages

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/archstep/archstep/pkg/command"
	"github.com/archstep/archstep/pkg/detect"
	"github.com/archstep/archstep/pkg/progress"
	"github.com/archstep/archstep/pkg/prompt"
	"github.com/archstep/archstep/pkg/stage"
)

func baseStage() stage.Definition {
	return stage.Definition{
		ID:           Base,
		Alias:        "base",
		Title:        "Base system",
		Description:  "Install the base system into the target root with pacstrap",
		Identity:     stage.Privileged,
		Environment:  stage.LiveMedia,
		NeedsNetwork: true,
		Mounts: func(sc *stage.Context) []string {
			return []string{sc.TargetRoot()}
		},
		Gates: []progress.Gate{
			{Stage: Partitions, Hard: true, Reason: "the base system is installed onto the recorded partitions"},
		},
		Interact: interactBase,
		Execute:  executeBase,
		Handoff:  true,
	}
}

func interactBase(ctx context.Context, sc *stage.Context) error {
	_, err := sc.AskMany(ctx, prompt.Question{
		Key:     KeyKernels,
		Label:   "Kernels to install",
		Options: sc.Config.Kernels.Available,
		Default: strings.Join(sc.Config.Kernels.Default, " "),
	})
	return err
}

// basePackages is everything pacstrap installs
func basePackages(sc *stage.Context, vendor string) []string {
	var pkgs []string
	pkgs = append(pkgs, sc.Config.Packages.Base...)
	for _, k := range sc.List(KeyKernels) {
		pkgs = append(pkgs, k, k+"-headers")
	}
	if ucode := detect.Microcode(vendor); ucode != "" {
		pkgs = append(pkgs, ucode)
	}
	return dedupe(pkgs)
}

func executeBase(ctx context.Context, sc *stage.Context) error {
	target := sc.TargetRoot()

	vendor, err := sc.Auto(KeyCPUVendor, sc.Detect.CPUVendor)
	if err != nil {
		return err
	}

	if err := sc.Guard(pacmanMirrorlist); err != nil {
		return err
	}
	if err := sc.Run(ctx, "mirrorlist", command.New("reflector",
		"--latest", "20", "--protocol", "https", "--sort", "rate", "--save", pacmanMirrorlist)); err != nil {
		return err
	}

	if err := sc.Run(ctx, "keyring", command.New("pacman", "-Sy", "--noconfirm", "archlinux-keyring")); err != nil {
		return err
	}

	args := append([]string{"-K", target}, basePackages(sc, vendor)...)
	if err := sc.Run(ctx, "pacstrap", command.New("pacstrap", args...)); err != nil {
		return err
	}

	fstab, err := sc.Output(ctx, "genfstab", command.New("genfstab", "-U", target))
	if err != nil {
		return err
	}
	return sc.WriteFile(filepath.Join(target, "etc", "fstab"), []byte(fstab), 0644)
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
