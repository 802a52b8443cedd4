// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package i2c provides byte wide register access to devices on an I2C bus.
//
// The reset path only ever needs "read register" and "write register" on a
// single target, so that is all Bus offers. Transport errors are always
// wrapped in ErrBusIO so callers can tell a dead bus from a device that
// answered with unexpected data.
package i2c

import (
	"errors"
	"fmt"
)

// ErrBusIO is wrapped by every transfer failure.
var ErrBusIO = errors.New("i2c bus i/o error")

// Bus reads and writes 8 bit registers of the device at a 7 bit address.
type Bus interface {
	ReadReg(addr uint16, reg uint8) (uint8, error)
	WriteReg(addr uint16, reg uint8, val uint8) error
}

func busError(op string, addr uint16, reg uint8, err error) error {
	return fmt.Errorf("%s %#02x reg %#02x: %v: %w", op, addr, reg, err, ErrBusIO)
}
