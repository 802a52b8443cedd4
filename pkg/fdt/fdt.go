// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fdt finds devices in a flattened device tree by compatible
// string and decodes their register ranges.
package fdt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/u-root/u-root/pkg/dt"
)

var (
	// ErrNoMatch is returned when no node matches a driver's table.
	ErrNoMatch = errors.New("no matching device tree node")
	// ErrNodeUnaddressable is returned for nodes without a usable reg.
	ErrNodeUnaddressable = errors.New("device tree node has no usable reg")
)

// Defaults from the devicetree specification when a parent omits them.
const (
	defaultAddressCells = 2
	defaultSizeCells    = 1
)

// Match is one entry of a compatible table. Data is handed back to the
// caller untouched.
type Match struct {
	Compatible string
	Data       interface{}
}

// Node is a device tree node that remembers its parent, which is needed to
// interpret reg.
type Node struct {
	*dt.Node
	Parent *Node
}

// Load reads and parses the blob at path.
func Load(fs afero.Fs, path string) (*dt.FDT, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := dt.ReadFDT(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// Compatible returns the node's compatible list, most specific first.
func Compatible(n *dt.Node) []string {
	p, ok := n.LookProperty("compatible")
	if !ok {
		return nil
	}
	var out []string
	for _, s := range strings.Split(string(p.Value), "\x00") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// MatchNode returns the first table entry the node is compatible with.
func MatchNode(n *dt.Node, table []Match) (*Match, bool) {
	compat := Compatible(n)
	for i := range table {
		for _, c := range compat {
			if c == table[i].Compatible {
				return &table[i], true
			}
		}
	}
	return nil, false
}

// FindCompatible walks the tree depth first and returns the first node
// compatible with any entry of table.
func FindCompatible(root *dt.Node, table []Match) (*Node, *Match, bool) {
	return find(&Node{Node: root}, table)
}

func find(n *Node, table []Match) (*Node, *Match, bool) {
	if m, ok := MatchNode(n.Node, table); ok {
		return n, m, true
	}
	for _, c := range n.Children {
		if found, m, ok := find(&Node{Node: c, Parent: n}, table); ok {
			return found, m, true
		}
	}
	return nil, nil, false
}

func (n *Node) cells(name string, def uint32) (uint32, error) {
	if n == nil {
		return def, nil
	}
	p, ok := n.LookProperty(name)
	if !ok {
		return def, nil
	}
	if len(p.Value) != 4 {
		return 0, fmt.Errorf("%s on %q is %d bytes", name, n.Name, len(p.Value))
	}
	return binary.BigEndian.Uint32(p.Value), nil
}

func readCells(b []byte, cells uint32) uint64 {
	var v uint64
	for i := uint32(0); i < cells; i++ {
		v = v<<32 | uint64(binary.BigEndian.Uint32(b[4*i:]))
	}
	return v
}

// AddrSize decodes the index'th (address, size) pair of reg using the
// parent's #address-cells and #size-cells.
func (n *Node) AddrSize(index int) (uint64, uint64, error) {
	ac, err := n.Parent.cells("#address-cells", defaultAddressCells)
	if err != nil {
		return 0, 0, fmt.Errorf("%q: %v: %w", n.Name, err, ErrNodeUnaddressable)
	}
	sc, err := n.Parent.cells("#size-cells", defaultSizeCells)
	if err != nil {
		return 0, 0, fmt.Errorf("%q: %v: %w", n.Name, err, ErrNodeUnaddressable)
	}
	if ac < 1 || ac > 2 || sc > 2 {
		return 0, 0, fmt.Errorf("%q: unsupported cells %d/%d: %w", n.Name, ac, sc, ErrNodeUnaddressable)
	}
	p, ok := n.LookProperty("reg")
	if !ok {
		return 0, 0, fmt.Errorf("%q: %w", n.Name, ErrNodeUnaddressable)
	}
	stride := int(4 * (ac + sc))
	off := index * stride
	if index < 0 || len(p.Value) < off+stride {
		return 0, 0, fmt.Errorf("%q: reg has no entry %d: %w", n.Name, index, ErrNodeUnaddressable)
	}
	entry := p.Value[off : off+stride]
	addr := readCells(entry, ac)
	size := readCells(entry[4*ac:], sc)
	return addr, size, nil
}

// Driver binds to the first node matching Matches.
type Driver struct {
	Name    string
	Matches []Match
	Init    func(n *Node, m *Match) error
}

// InitDriver finds the driver's node and runs its Init.
func InitDriver(root *dt.Node, d *Driver) error {
	n, m, ok := FindCompatible(root, d.Matches)
	if !ok {
		return fmt.Errorf("%s: %w", d.Name, ErrNoMatch)
	}
	if err := d.Init(n, m); err != nil {
		return fmt.Errorf("%s: %w", d.Name, err)
	}
	return nil
}
