// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fdttest builds small device trees for tests.
package fdttest

import (
	"encoding/binary"
	"strings"

	"github.com/u-root/u-root/pkg/dt"
)

// Compatible returns a compatible property holding vals.
func Compatible(vals ...string) dt.Property {
	return dt.Property{Name: "compatible", Value: []byte(strings.Join(vals, "\x00") + "\x00")}
}

// Cells returns a property of big endian 32 bit cells.
func Cells(name string, vals ...uint32) dt.Property {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint32(b[4*i:], v)
	}
	return dt.Property{Name: name, Value: b}
}

// Node returns a node with the given properties and children.
func Node(name string, props []dt.Property, children ...*dt.Node) *dt.Node {
	return &dt.Node{Name: name, Properties: props, Children: children}
}

// Board returns a tree shaped like the pi,a88 board: the root carries
// rootCompat, and an I2C controller holds one child x88 with the given
// properties.
func Board(rootCompat []string, pmic []dt.Property) *dt.Node {
	return Node("", []dt.Property{
		Compatible(rootCompat...),
		Cells("#address-cells", 2),
		Cells("#size-cells", 2),
	},
		Node("soc", []dt.Property{
			Cells("#address-cells", 2),
			Cells("#size-cells", 2),
		},
			Node("i2c@10030000", []dt.Property{
				Compatible("sifive,fu740-c000-i2c", "sifive,i2c0"),
				Cells("reg", 0, 0x10030000, 0, 0x1000),
				Cells("#address-cells", 1),
				Cells("#size-cells", 0),
			},
				Node("pmic@58", pmic),
			),
		),
	)
}
