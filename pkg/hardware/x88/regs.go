// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x88

import (
	"fmt"
	"sort"
)

var (
	regNames = map[uint8]string{
		RegPageCon:  "Page Control Register",
		RegControlD: "Watchdog Control Register (CONTROL_D)",
		RegControlF: "Sequencer Command Register (CONTROL_F)",
		RegDeviceID: "Device Identification Register",
	}
)

// RegisterName returns the datasheet name of r, or "" if unknown.
func RegisterName(r uint8) string {
	return regNames[r]
}

// Registers returns the known registers in ascending order.
func Registers() []uint8 {
	regs := make([]uint8, 0, len(regNames))
	for r := range regNames {
		regs = append(regs, r)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i] < regs[j] })
	return regs
}

// RegValue is one register read by Dump.
type RegValue struct {
	Reg uint8
	Val uint8
	Err error
}

func (v RegValue) String() string {
	if v.Err != nil {
		return fmt.Sprintf("%02x %-40s error: %v", v.Reg, RegisterName(v.Reg), v.Err)
	}
	return fmt.Sprintf("%02x %-40s %02x", v.Reg, RegisterName(v.Reg), v.Val)
}

// Dump reads every known register. Read failures are recorded per
// register and do not stop the dump.
func (c *Chip) Dump() []RegValue {
	var out []RegValue
	for _, r := range Registers() {
		v, err := c.bus.ReadReg(c.addr, r)
		out = append(out, RegValue{r, v, err})
	}
	return out
}
