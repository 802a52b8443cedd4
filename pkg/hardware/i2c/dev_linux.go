// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package i2c

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// From linux/i2c-dev.h
const (
	ioctlSlave      = 0x0703
	ioctlSlaveForce = 0x0706
)

// Dev is a Bus backed by a Linux i2c-dev character device, e.g. /dev/i2c-0.
type Dev struct {
	fd    int
	path  string
	force bool
	// Address currently selected with I2C_SLAVE, -1 if none.
	cur int
}

// Open opens the i2c-dev node at path. With force set the address is
// claimed even if a kernel driver is bound to it, which is what a PMIC
// normally has.
func Open(path string, force bool) (*Dev, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", path, err, ErrBusIO)
	}
	return &Dev{fd: fd, path: path, force: force, cur: -1}, nil
}

func (d *Dev) selectAddr(addr uint16) error {
	if d.cur == int(addr) {
		return nil
	}
	req := uint(ioctlSlave)
	if d.force {
		req = ioctlSlaveForce
	}
	if err := unix.IoctlSetInt(d.fd, req, int(addr)); err != nil {
		return err
	}
	d.cur = int(addr)
	return nil
}

func (d *Dev) ReadReg(addr uint16, reg uint8) (uint8, error) {
	if err := d.selectAddr(addr); err != nil {
		return 0, busError("read", addr, reg, err)
	}
	if _, err := unix.Write(d.fd, []byte{reg}); err != nil {
		return 0, busError("read", addr, reg, err)
	}
	b := make([]byte, 1)
	n, err := unix.Read(d.fd, b)
	if err != nil {
		return 0, busError("read", addr, reg, err)
	}
	if n != 1 {
		return 0, busError("read", addr, reg, errors.New("short read"))
	}
	return b[0], nil
}

func (d *Dev) WriteReg(addr uint16, reg uint8, val uint8) error {
	if err := d.selectAddr(addr); err != nil {
		return busError("write", addr, reg, err)
	}
	n, err := unix.Write(d.fd, []byte{reg, val})
	if err != nil {
		return busError("write", addr, reg, err)
	}
	if n != 2 {
		return busError("write", addr, reg, errors.New("short write"))
	}
	return nil
}

func (d *Dev) String() string {
	return d.path
}

func (d *Dev) Close() error {
	return unix.Close(d.fd)
}
