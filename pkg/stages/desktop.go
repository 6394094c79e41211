package stages

import (
	"context"
	"strings"

	"github.com/archstep/archstep/pkg/command"
	"github.com/archstep/archstep/pkg/config"
	"github.com/archstep/archstep/pkg/progress"
	"github.com/archstep/archstep/pkg/prompt"
	"github.com/archstep/archstep/pkg/stage"
)

const noDesktop = "none"

func desktopStage() stage.Definition {
	return stage.Definition{
		ID:           Desktop,
		Alias:        "desktop",
		Title:        "Desktop",
		Description:  "Install a desktop environment and the graphics drivers for the detected GPUs",
		Identity:     stage.Privileged,
		Environment:  stage.Installed,
		NeedsNetwork: true,
		Gates: []progress.Gate{
			{Stage: Configure, Hard: true, Reason: "the desktop is installed on the configured system"},
		},
		Interact: interactDesktop,
		Execute:  executeDesktop,
	}
}

func interactDesktop(ctx context.Context, sc *stage.Context) error {
	def := ""
	if _, ok := sc.Config.Desktops[noDesktop]; ok {
		def = noDesktop
	}
	_, err := sc.Ask(ctx, prompt.Question{
		Key:     KeyDesktop,
		Label:   "Desktop environment",
		Options: config.Names(sc.Config.Desktops),
		Default: def,
	})
	return err
}

// desktopPackages combines the desktop's packages with the drivers for each
// GPU vendor
func desktopPackages(cfg *config.Config, desktop string, gpus []string) []string {
	pkgs := append([]string{}, cfg.Desktops[desktop].Packages...)
	for _, vendor := range gpus {
		pkgs = append(pkgs, cfg.Drivers[vendor]...)
	}
	return dedupe(pkgs)
}

func executeDesktop(ctx context.Context, sc *stage.Context) error {
	desktop := sc.Value(KeyDesktop, noDesktop)

	detected, err := sc.Auto(KeyGPUVendors, func() string {
		return strings.Join(sc.Detect.GPUVendors(ctx), " ")
	})
	if err != nil {
		return err
	}

	pkgs := desktopPackages(sc.Config, desktop, strings.Fields(detected))
	if len(pkgs) == 0 {
		sc.Log.Info().Str("desktop", desktop).Msg("Nothing to install")
		return nil
	}

	args := append([]string{"-S", "--needed", "--noconfirm"}, pkgs...)
	if err := sc.Run(ctx, "package-install", command.New("pacman", args...)); err != nil {
		return err
	}

	if dm := sc.Config.Desktops[desktop].DisplayManager; dm != "" {
		return sc.Run(ctx, "service-enable", command.New("systemctl", "enable", dm+".service"))
	}
	return nil
}
