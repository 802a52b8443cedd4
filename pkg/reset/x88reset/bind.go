// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x88reset

import (
	"fmt"

	"github.com/u-root/x88reset/pkg/fdt"
	"github.com/u-root/x88reset/pkg/hardware/i2c"
	"github.com/u-root/x88reset/pkg/reset"
)

// Matches is the compatible table of the x88 node.
var Matches = []fdt.Match{
	{Compatible: "pi,x88", Data: true},
}

// Init binds the x88 described by n and registers it with reg.
func Init(n *fdt.Node, bus i2c.Bus, reg *reset.Registry, opts ...Option) (*Device, error) {
	addr, _, err := n.AddrSize(0)
	if err != nil {
		return nil, err
	}
	if addr > 0x7f {
		return nil, fmt.Errorf("%q: reg %#x is not a 7 bit i2c address: %w", n.Name, addr, fdt.ErrNodeUnaddressable)
	}
	d := New(&Handle{Addr: uint16(addr)}, bus, opts...)
	reg.Add(d)
	return d, nil
}

// Driver returns the fdt driver that binds the x88 on bus. The bound
// device is stored in *out when out is not nil.
func Driver(bus i2c.Bus, reg *reset.Registry, out **Device, opts ...Option) *fdt.Driver {
	return &fdt.Driver{
		Name:    Name,
		Matches: Matches,
		Init: func(n *fdt.Node, m *fdt.Match) error {
			d, err := Init(n, bus, reg, opts...)
			if err != nil {
				return err
			}
			if out != nil {
				*out = d
			}
			return nil
		},
	}
}
