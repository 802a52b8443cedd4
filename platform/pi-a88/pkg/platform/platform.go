// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package platform

import (
	"github.com/u-root/u-root/pkg/dt"
	"github.com/u-root/x88reset/pkg/fdt"
	"github.com/u-root/x88reset/pkg/hardware/i2c"
	"github.com/u-root/x88reset/pkg/reset"
	"github.com/u-root/x88reset/pkg/reset/x88reset"
	"go.uber.org/zap"
)

var (
	// Root compatibles this override applies to. The a88 is built around
	// the FU740 and shares its board with the HiFive Unmatched.
	matchTable = []fdt.Match{
		{Compatible: "pi,a88"},
		{Compatible: "sifive,fu740-c000"},
		{Compatible: "sifive,hifive-unmatched-a00"},
	}
)

type platform struct {
	bus      i2c.Bus
	registry *reset.Registry
	log      *zap.Logger
	opts     []x88reset.Option
	reset    *x88reset.Device
}

// Platform returns the a88 override. The x88 found by FinalInit is
// driven over bus and registered with registry.
func Platform(bus i2c.Bus, registry *reset.Registry, log *zap.Logger, opts ...x88reset.Option) *platform {
	if log == nil {
		log = zap.NewNop()
	}
	opts = append([]x88reset.Option{x88reset.WithLogger(log)}, opts...)
	return &platform{bus: bus, registry: registry, log: log, opts: opts}
}

func MatchTable() []fdt.Match {
	return matchTable
}

// Match reports whether the tree rooted at root describes an a88.
func (p *platform) Match(root *dt.Node) (*fdt.Match, bool) {
	return fdt.MatchNode(root, matchTable)
}

// BindReset looks for the x88 and registers it.
func (p *platform) BindReset(root *dt.Node) (*x88reset.Device, error) {
	var d *x88reset.Device
	if err := fdt.InitDriver(root, x88reset.Driver(p.bus, p.registry, &d, p.opts...)); err != nil {
		return nil, err
	}
	p.reset = d
	return d, nil
}

// FinalInit binds the reset device on cold boot. The platform still comes
// up without it since other reset mechanisms may be registered.
func (p *platform) FinalInit(root *dt.Node, coldBoot bool) error {
	if !coldBoot {
		return nil
	}
	if _, err := p.BindReset(root); err != nil {
		p.log.Warn("failed to find x88 for reset", zap.Error(err))
	}
	return nil
}

// ResetDevice returns the device bound by FinalInit, or nil.
func (p *platform) ResetDevice() *x88reset.Device {
	return p.reset
}

// TLBFlushLimit is the largest range a TLB flush may be issued for before
// it has to become a full flush. The FU740 instruction TLB can miss
// non-global SFENCE.VMA (CIP-1200), so every flush is a full one.
func (p *platform) TLBFlushLimit(m *fdt.Match) uint64 {
	return 0
}
