package stages

import (
	"fmt"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/registry"
	"github.com/archstep/archstep/pkg/stage"
)

// Progress markers
const (
	Partitions = "01-partitions-ready"
	Base       = "02-base-installed"
	Configure  = "03-system-configured"
	Desktop    = "04-desktop-installed"
	AURHelper  = "05-aur-helper-installed"
	Packages   = "06-packages-installed"
)

// Session store keys
const (
	KeyTargetDisk     = "TARGET_DISK"
	KeyRootPartition  = "ROOT_PARTITION"
	KeyEFIPartition   = "EFI_PARTITION"
	KeyEFIMount       = "EFI_MOUNT"
	KeyBootMode       = "BOOT_MODE"
	KeyKernels        = "SELECTED_KERNELS"
	KeyCPUVendor      = "CPU_VENDOR"
	KeyHostname       = "HOSTNAME"
	KeyTimezone       = "TIMEZONE"
	KeyLocale         = "LOCALE"
	KeyKeymap         = "KEYMAP"
	KeyUsername       = "USERNAME"
	KeyBootloader     = "BOOTLOADER"
	KeyDesktop        = "DESKTOP"
	KeyGPUVendors     = "GPU_VENDORS"
	KeyAURHelper      = "AUR_HELPER"
	KeyPackageGroups  = "PACKAGE_GROUPS"
	KeyExtraPackages  = "EXTRA_PACKAGES"
	EnvUserPassword   = "ARCHSTEP_USER_PASSWORD"
	sudoersDropIn     = "/etc/sudoers.d/10-archstep-wheel"
	pacmanMirrorlist  = "/etc/pacman.d/mirrorlist"
	zoneinfoDirectory = "/usr/share/zoneinfo"
)

// Chain returns the installation chain in execution order
func Chain() registry.Registry[stage.Definition] {
	reg := registry.New[stage.Definition]()
	for _, def := range []stage.Definition{
		partitionsStage(),
		baseStage(),
		configureStage(),
		desktopStage(),
		aurHelperStage(),
		packagesStage(),
	} {
		registry.MustRegister(reg, def.ID, def)
		registry.MustAlias(reg, def.Alias, def.ID)
	}
	return reg
}

// Lookup finds a stage by marker or alias
func Lookup(name string) (stage.Definition, error) {
	reg := Chain()
	def, err := reg.Get(name)
	if err != nil {
		return stage.Definition{}, errors.Newf(errors.ErrNotFound, "unknown stage %q", name).
			WithReason(fmt.Sprintf("known stages are %v", reg.List())).
			WithRemedy("run 'archstep stages' to list the chain")
	}
	return def, nil
}

// Next returns the first stage of the chain without a marker, or false when
// the chain is complete
func Next(done func(id string) bool) (stage.Definition, bool) {
	reg := Chain()
	for _, id := range reg.List() {
		if !done(id) {
			return registry.MustGet(reg, id), true
		}
	}
	return stage.Definition{}, false
}
