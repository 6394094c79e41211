package testutil

import (
	"context"
	"errors"
)

// FakeProbe is a system.Probe with fixed answers
type FakeProbe struct {
	Root        bool
	Chroot      bool
	ChrootErr   error
	Live        bool
	Offline     bool
	Mountpoints map[string]bool
	Paths       map[string]bool
}

// NewFakeProbe returns a probe for a root shell on the live media
func NewFakeProbe() *FakeProbe {
	return &FakeProbe{Root: true, Live: true, Mountpoints: map[string]bool{}, Paths: map[string]bool{}}
}

func (p *FakeProbe) IsRoot() bool { return p.Root }

func (p *FakeProbe) InChroot() (bool, error) { return p.Chroot, p.ChrootErr }

func (p *FakeProbe) LiveMedia() bool { return p.Live }

func (p *FakeProbe) Online(ctx context.Context) error {
	if p.Offline {
		return errors.New("dial tcp: network is unreachable")
	}
	return ctx.Err()
}

func (p *FakeProbe) Mounted(path string) (bool, error) { return p.Mountpoints[path], nil }

func (p *FakeProbe) Exists(path string) bool { return p.Paths[path] }
