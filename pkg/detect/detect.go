// Package detect performs the hardware auto-detections that are safe to
// apply without asking: CPU vendor, firmware boot mode and GPU vendors.
// Every result can be overridden by the operator with --set.
package detect

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/archstep/archstep/pkg/command"
	"github.com/archstep/archstep/pkg/logging"
)

// Boot modes
const (
	BootUEFI = "uefi"
	BootBIOS = "bios"
)

// CPU vendors
const (
	CPUIntel   = "intel"
	CPUAMD     = "amd"
	CPUUnknown = "unknown"
)

// GPU vendors, matching the keys of the drivers config section
const (
	GPUNvidia  = "nvidia"
	GPUAMD     = "amd"
	GPUIntel   = "intel"
	GPUVirtual = "virtual"
)

// Detector reads hardware facts below Root, "/" outside of tests
type Detector struct {
	Root string
	Cmd  command.Commander
}

// New creates a detector over the running system
func New(cmd command.Commander) *Detector {
	return &Detector{Root: "/", Cmd: cmd}
}

func (d *Detector) path(p string) string {
	return filepath.Join(d.Root, p)
}

// CPUVendor reads the vendor_id of /proc/cpuinfo
func (d *Detector) CPUVendor() string {
	data, err := os.ReadFile(d.path("/proc/cpuinfo"))
	if err != nil {
		logger := logging.GetLogger("detect")
		logger.Debug().Err(err).Msg("Cannot read cpuinfo")
		return CPUUnknown
	}
	s := string(data)
	switch {
	case strings.Contains(s, "GenuineIntel"):
		return CPUIntel
	case strings.Contains(s, "AuthenticAMD"):
		return CPUAMD
	}
	return CPUUnknown
}

// Microcode returns the microcode package for a CPU vendor, or ""
func Microcode(vendor string) string {
	switch vendor {
	case CPUIntel:
		return "intel-ucode"
	case CPUAMD:
		return "amd-ucode"
	}
	return ""
}

// BootMode reports uefi when the kernel exposes EFI variables
func (d *Detector) BootMode() string {
	if _, err := os.Stat(d.path("/sys/firmware/efi")); err == nil {
		return BootUEFI
	}
	return BootBIOS
}

// GPUVendors matches display controllers in lspci output. The result is
// sorted and free of duplicates; a failing lspci yields nothing.
func (d *Detector) GPUVendors(ctx context.Context) []string {
	out, err := d.Cmd.Output(ctx, command.New("lspci", "-mm"))
	if err != nil {
		logger := logging.GetLogger("detect")
		logger.Warn().Err(err).Msg("GPU detection failed")
		return nil
	}
	return parseGPUs(out)
}

func parseGPUs(lspci string) []string {
	found := make(map[string]bool)
	for _, line := range strings.Split(lspci, "\n") {
		if !strings.Contains(line, "VGA") && !strings.Contains(line, "3D controller") && !strings.Contains(line, "Display controller") {
			continue
		}
		switch {
		case strings.Contains(line, "NVIDIA"):
			found[GPUNvidia] = true
		case strings.Contains(line, "Advanced Micro Devices"), strings.Contains(line, "AMD"), strings.Contains(line, "ATI"):
			found[GPUAMD] = true
		case strings.Contains(line, "Intel"):
			found[GPUIntel] = true
		case strings.Contains(line, "VMware"), strings.Contains(line, "VirtualBox"), strings.Contains(line, "QXL"), strings.Contains(line, "Red Hat"), strings.Contains(line, "virtio"):
			found[GPUVirtual] = true
		}
	}
	vendors := make([]string, 0, len(found))
	for v := range found {
		vendors = append(vendors, v)
	}
	sort.Strings(vendors)
	return vendors
}
