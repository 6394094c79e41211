package stages

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/archstep/archstep/pkg/detect"
	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/prompt"
	"github.com/archstep/archstep/pkg/stage"
	"github.com/archstep/archstep/pkg/validate"
)

// blockDevice checks device answers; tests replace it
var blockDevice = validate.BlockDevice

// efiMounts are the ESP locations below the target root, in preference order
var efiMounts = []string{"/boot", "/efi"}

func partitionsStage() stage.Definition {
	return stage.Definition{
		ID:          Partitions,
		Alias:       "partitions",
		Title:       "Partitions",
		Description: "Record the target disk and the partitions mounted under the target root",
		Identity:    stage.Privileged,
		Environment: stage.LiveMedia,
		Mounts: func(sc *stage.Context) []string {
			return []string{sc.TargetRoot()}
		},
		Interact: interactPartitions,
	}
}

func interactPartitions(ctx context.Context, sc *stage.Context) error {
	mode, err := sc.Auto(KeyBootMode, sc.Detect.BootMode)
	if err != nil {
		return err
	}

	if _, err := sc.Ask(ctx, prompt.Question{
		Key:      KeyTargetDisk,
		Label:    "Target disk (e.g. /dev/nvme0n1)",
		Validate: blockDevice,
		Identity: true,
	}); err != nil {
		return err
	}
	if _, err := sc.Ask(ctx, prompt.Question{
		Key:      KeyRootPartition,
		Label:    fmt.Sprintf("Root partition mounted at %s", sc.TargetRoot()),
		Validate: blockDevice,
		Identity: true,
	}); err != nil {
		return err
	}

	if mode != detect.BootUEFI {
		return nil
	}

	mount, err := findESP(sc)
	if err != nil {
		return err
	}
	if err := sc.Decide(KeyEFIMount, mount); err != nil {
		return err
	}
	_, err = sc.Ask(ctx, prompt.Question{
		Key:      KeyEFIPartition,
		Label:    fmt.Sprintf("EFI system partition mounted at %s", filepath.Join(sc.TargetRoot(), mount)),
		Validate: blockDevice,
		Identity: true,
	})
	return err
}

// findESP returns the mountpoint of the EFI system partition as seen from
// inside the target
func findESP(sc *stage.Context) (string, error) {
	var tried []string
	for _, m := range efiMounts {
		full := filepath.Join(sc.TargetRoot(), m)
		tried = append(tried, full)
		mounted, err := sc.Probe.Mounted(full)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrPreconditionFailed, "cannot check whether %s is mounted", full)
		}
		if mounted {
			return m, nil
		}
	}
	return "", errors.Precondition(
		"no EFI system partition is mounted",
		"the system boots in UEFI mode and the bootloader is installed onto the ESP",
		fmt.Sprintf("mount the EFI system partition at one of %v and re-run", tried),
	)
}
