// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x88

import (
	"errors"
	"fmt"
	"testing"

	"github.com/u-root/x88reset/pkg/hardware/i2c"
)

type op struct {
	write bool
	addr  uint16
	reg   uint8
	val   uint8
	err   error
}

type fakeBus struct {
	t   *testing.T
	ops []op
}

func opstr(o *op) string {
	t := "read"
	if o.write {
		t = "write"
	}
	return fmt.Sprintf("{%s @ %02x reg %02x = %02x}", t, o.addr, o.reg, o.val)
}

func (b *fakeBus) next() (op, bool) {
	b.t.Helper()
	if len(b.ops) == 0 {
		return op{}, false
	}
	o := b.ops[0]
	b.ops = b.ops[1:]
	return o, true
}

func (b *fakeBus) ReadReg(addr uint16, reg uint8) (uint8, error) {
	b.t.Helper()
	o, ok := b.next()
	if !ok {
		b.t.Errorf("Unexpected read of reg %02x on %02x", reg, addr)
		return 0, errors.New("unexpected")
	}
	if o.write || o.addr != addr || o.reg != reg {
		b.t.Errorf("Expected %s, got read of reg %02x on %02x", opstr(&o), reg, addr)
	}
	return o.val, o.err
}

func (b *fakeBus) WriteReg(addr uint16, reg uint8, val uint8) error {
	b.t.Helper()
	o, ok := b.next()
	if !ok {
		b.t.Errorf("Unexpected write of %02x to reg %02x on %02x", val, reg, addr)
		return errors.New("unexpected")
	}
	if !o.write || o.addr != addr || o.reg != reg || o.val != val {
		b.t.Errorf("Expected %s, got write of %02x to reg %02x on %02x", opstr(&o), val, reg, addr)
	}
	return o.err
}

func (b *fakeBus) ExpectWrite(addr uint16, reg uint8, val uint8) {
	b.ops = append(b.ops, op{true, addr, reg, val, nil})
}

func (b *fakeBus) FailWrite(addr uint16, reg uint8, val uint8) {
	b.ops = append(b.ops, op{true, addr, reg, val, fmt.Errorf("nack: %w", i2c.ErrBusIO)})
}

func (b *fakeBus) FakeRead(addr uint16, reg uint8, val uint8) {
	b.ops = append(b.ops, op{false, addr, reg, val, nil})
}

func (b *fakeBus) FailRead(addr uint16, reg uint8) {
	b.ops = append(b.ops, op{false, addr, reg, 0, fmt.Errorf("nack: %w", i2c.ErrBusIO)})
}

// Done reports operations that were scripted but never performed.
func (b *fakeBus) Done() {
	b.t.Helper()
	for i := range b.ops {
		b.t.Errorf("Expected %s, never happened", opstr(&b.ops[i]))
	}
	b.ops = nil
}

func fakeBusFor(t *testing.T) *fakeBus {
	return &fakeBus{t, make([]op, 0)}
}
