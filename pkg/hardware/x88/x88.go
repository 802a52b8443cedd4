// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Library for driving the power sequencer of the x88 PMIC.
//
// Nothing here keeps state. Each call is a short series of register
// accesses over the I2C bus and a failing call leaves the chip as it was
// after the last successful access.
//
// Only Verify is safe to call on an unknown chip. Everything that writes
// assumes the caller has checked the identity first; writing the command
// register of the wrong part on the bus can cut power to anything.
package x88

import (
	"errors"
	"fmt"

	"github.com/u-root/x88reset/pkg/hardware/i2c"
)

const (
	// Page control, reads back the currently selected page.
	RegPageCon uint8 = 0x00
	// Watchdog control. TWDSCALE lives in the low bits, 0 disables it.
	RegControlD uint8 = 0x11
	// Sequencer commands.
	RegControlF uint8 = 0x13
	// Fixed device identification.
	RegDeviceID uint8 = 0x81

	PageMarker     uint8 = 0x02
	DeviceIDMarker uint8 = 0x02

	WatchdogEnableMask uint8 = 0xff

	// Written to RegControlF
	CmdShutdown uint8 = 1 << 1
	CmdReboot   uint8 = 1 << 2
)

// ErrDeviceUnrecognized is returned by Verify when the chip at the bound
// address does not identify as an x88, or could not be read at all.
var ErrDeviceUnrecognized = errors.New("device absent or not an x88")

type Chip struct {
	bus  i2c.Bus
	addr uint16
}

func New(bus i2c.Bus, addr uint16) *Chip {
	return &Chip{bus, addr}
}

func (c *Chip) Addr() uint16 {
	return c.addr
}

// Verify reads the page and device id markers. It never writes.
func (c *Chip) Verify() error {
	// check page
	v, err := c.bus.ReadReg(c.addr, RegPageCon)
	if err != nil {
		return fmt.Errorf("%w: page select: %w", ErrDeviceUnrecognized, err)
	}
	if v != PageMarker {
		return fmt.Errorf("%w: page select reads %#02x, want %#02x", ErrDeviceUnrecognized, v, PageMarker)
	}

	// check device id
	v, err = c.bus.ReadReg(c.addr, RegDeviceID)
	if err != nil {
		return fmt.Errorf("%w: device id: %w", ErrDeviceUnrecognized, err)
	}
	if v != DeviceIDMarker {
		return fmt.Errorf("%w: device id reads %#02x, want %#02x", ErrDeviceUnrecognized, v, DeviceIDMarker)
	}
	return nil
}

// StopWatchdog clears the watchdog enable bits. It does not write if they
// are already clear.
func (c *Chip) StopWatchdog() error {
	v, err := c.bus.ReadReg(c.addr, RegControlD)
	if err != nil {
		return fmt.Errorf("watchdog: %w", err)
	}
	if v&WatchdogEnableMask == 0 {
		return nil
	}
	if err := c.bus.WriteReg(c.addr, RegControlD, v&^WatchdogEnableMask); err != nil {
		return fmt.Errorf("watchdog: %w", err)
	}
	return nil
}

// Shutdown tells the sequencer to drop all rails. On success the chip
// removes power from the caller, so returning at all means it did not.
func (c *Chip) Shutdown() error {
	if err := c.bus.WriteReg(c.addr, RegControlF, CmdShutdown); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Reboot power cycles the board through the wakeup sequence.
func (c *Chip) Reboot() error {
	if err := c.bus.WriteReg(c.addr, RegControlF, CmdReboot); err != nil {
		return fmt.Errorf("reboot: %w", err)
	}
	return nil
}
