package stages

import (
	"context"

	"github.com/archstep/archstep/pkg/command"
	"github.com/archstep/archstep/pkg/config"
	"github.com/archstep/archstep/pkg/progress"
	"github.com/archstep/archstep/pkg/prompt"
	"github.com/archstep/archstep/pkg/stage"
	"github.com/archstep/archstep/pkg/validate"
)

func packagesStage() stage.Definition {
	return stage.Definition{
		ID:           Packages,
		Alias:        "packages",
		Title:        "Packages",
		Description:  "Install package groups and extra packages through the AUR helper",
		Identity:     stage.Unprivileged,
		Environment:  stage.Installed,
		NeedsNetwork: true,
		Gates: []progress.Gate{
			{Stage: AURHelper, Hard: true, Reason: "packages are installed through the AUR helper"},
		},
		Interact: interactPackages,
		Execute:  executePackages,
	}
}

func interactPackages(ctx context.Context, sc *stage.Context) error {
	if _, err := sc.AskMany(ctx, prompt.Question{
		Key:     KeyPackageGroups,
		Label:   "Package groups",
		Options: config.Names(sc.Config.PackageGroups),
	}); err != nil {
		return err
	}
	_, err := sc.AskMany(ctx, prompt.Question{
		Key:      KeyExtraPackages,
		Label:    "Extra packages (space separated, empty for none)",
		Validate: validate.PackageName,
	})
	return err
}

func selectedPackages(sc *stage.Context) []string {
	var pkgs []string
	for _, g := range sc.List(KeyPackageGroups) {
		pkgs = append(pkgs, sc.Config.PackageGroups[g].Packages...)
	}
	pkgs = append(pkgs, sc.List(KeyExtraPackages)...)
	return dedupe(pkgs)
}

func executePackages(ctx context.Context, sc *stage.Context) error {
	pkgs := selectedPackages(sc)
	if len(pkgs) == 0 {
		sc.Log.Info().Msg("No packages selected")
		return nil
	}
	helper := sc.Value(KeyAURHelper, sc.Config.Defaults.AURHelper)
	args := append([]string{"-S", "--needed", "--noconfirm"}, pkgs...)
	return sc.Run(ctx, "aur-install", command.New(helper, args...))
}
