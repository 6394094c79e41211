package stages

import (
	"context"
	"path/filepath"

	"github.com/archstep/archstep/pkg/command"
	"github.com/archstep/archstep/pkg/config"
	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/progress"
	"github.com/archstep/archstep/pkg/prompt"
	"github.com/archstep/archstep/pkg/stage"
)

func aurHelperStage() stage.Definition {
	return stage.Definition{
		ID:           AURHelper,
		Alias:        "aur-helper",
		Title:        "AUR helper",
		Description:  "Build and install an AUR helper as the regular user",
		Identity:     stage.Unprivileged,
		Environment:  stage.Installed,
		NeedsNetwork: true,
		Gates: []progress.Gate{
			{Stage: Configure, Hard: true, Reason: "the helper is built by the user created during configuration"},
			{Stage: Desktop, Reason: "the desktop is usually installed first"},
		},
		Interact: interactAURHelper,
		Execute:  executeAURHelper,
	}
}

func interactAURHelper(ctx context.Context, sc *stage.Context) error {
	_, err := sc.Ask(ctx, prompt.Question{
		Key:     KeyAURHelper,
		Label:   "AUR helper",
		Options: config.Names(sc.Config.AURHelpers),
		Default: sc.Config.Defaults.AURHelper,
	})
	return err
}

func executeAURHelper(ctx context.Context, sc *stage.Context) error {
	name := sc.Value(KeyAURHelper, sc.Config.Defaults.AURHelper)
	helper, ok := sc.Config.AURHelpers[name]
	if !ok {
		return errors.Newf(errors.ErrInvalidInput, "unknown AUR helper %q", name).
			WithRemedy("choose one of the configured helpers")
	}

	if _, err := sc.Ops.Commander().Output(ctx, command.New("pacman", "-Qq", name)); err == nil {
		sc.Log.Info().Str("helper", name).Msg("AUR helper already installed")
		return nil
	}

	dir, err := sc.FS.MkdirTemp("", "archstep-aur-")
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "cannot create a build directory")
	}
	defer func() {
		if rmErr := sc.FS.RemoveAll(dir); rmErr != nil {
			sc.Log.Warn().Err(rmErr).Str("dir", dir).Msg("Failed to remove build directory")
		}
	}()

	src := filepath.Join(dir, name)
	if err := sc.Run(ctx, "aur-clone", command.New("git", "clone", "--depth", "1", helper.Repo, src)); err != nil {
		return err
	}

	build := command.New("makepkg", "-si", "--noconfirm")
	build.Dir = src
	return sc.Run(ctx, "aur-build", build)
}
