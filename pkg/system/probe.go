// Package system inspects the environment a stage is running in.
package system

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/moby/sys/mountinfo"
	"golang.org/x/sys/unix"
)

// LiveMediaMarker exists only on the booted Arch installation image
const LiveMediaMarker = "/run/archiso"

// Probe answers the questions stage preconditions ask
type Probe interface {
	// IsRoot reports whether the process runs with uid 0
	IsRoot() bool
	// InChroot reports whether / differs from the root of pid 1
	InChroot() (bool, error)
	// LiveMedia reports whether the process runs on the installation image
	LiveMedia() bool
	// Online checks that the package mirrors are reachable
	Online(ctx context.Context) error
	// Mounted reports whether path is a mountpoint
	Mounted(path string) (bool, error)
	// Exists reports whether path exists
	Exists(path string) bool
}

// Host probes the running system
type Host struct {
	CheckHost string
	Timeout   time.Duration
}

// NewHost creates a host probe dialing checkHost for connectivity
func NewHost(checkHost string, timeout time.Duration) *Host {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Host{CheckHost: checkHost, Timeout: timeout}
}

func (h *Host) IsRoot() bool {
	return os.Geteuid() == 0
}

func (h *Host) InChroot() (bool, error) {
	var self, init unix.Stat_t
	if err := unix.Stat("/", &self); err != nil {
		return false, fmt.Errorf("stat /: %w", err)
	}
	if err := unix.Stat("/proc/1/root", &init); err != nil {
		return false, fmt.Errorf("stat /proc/1/root: %w", err)
	}
	return self.Dev != init.Dev || self.Ino != init.Ino, nil
}

func (h *Host) LiveMedia() bool {
	return h.Exists(LiveMediaMarker)
}

func (h *Host) Online(ctx context.Context) error {
	d := net.Dialer{Timeout: h.Timeout}
	conn, err := d.DialContext(ctx, "tcp", h.CheckHost)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (h *Host) Mounted(path string) (bool, error) {
	return mountinfo.Mounted(path)
}

func (h *Host) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
