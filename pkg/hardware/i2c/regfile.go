// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package i2c

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

var (
	errNack   = errors.New("no ack")
	errFaulty = errors.New("injected fault")
)

// Transaction is one register access seen by a RegisterFile.
type Transaction struct {
	Write bool
	Addr  uint16
	Reg   uint8
	Val   uint8
}

func (t Transaction) String() string {
	op := "read"
	if t.Write {
		op = "write"
	}
	return fmt.Sprintf("{%s @ %02x reg %02x = %02x}", op, t.Addr, t.Reg, t.Val)
}

type regKey struct {
	addr uint16
	reg  uint8
}

// RegisterFile is an in-memory Bus. Devices exist once any of their
// registers has been Set; accesses to absent devices are NACKed. Every
// completed or failed access is appended to the transaction log.
type RegisterFile struct {
	regs      map[regKey]uint8
	present   map[uint16]bool
	readFail  map[regKey]bool
	writeFail map[regKey]bool
	// OnWrite, if set, is called after every successful write. A
	// simulated chip uses it to react to command registers.
	OnWrite func(addr uint16, reg uint8, val uint8)
	log     []Transaction
}

func NewRegisterFile() *RegisterFile {
	return &RegisterFile{
		regs:      make(map[regKey]uint8),
		present:   make(map[uint16]bool),
		readFail:  make(map[regKey]bool),
		writeFail: make(map[regKey]bool),
	}
}

// Set stores val without logging a transaction.
func (f *RegisterFile) Set(addr uint16, reg uint8, val uint8) {
	f.present[addr] = true
	f.regs[regKey{addr, reg}] = val
}

// Get returns the stored value without logging a transaction.
func (f *RegisterFile) Get(addr uint16, reg uint8) (uint8, bool) {
	v, ok := f.regs[regKey{addr, reg}]
	return v, ok
}

// FailRead makes every read of reg on addr fail with ErrBusIO.
func (f *RegisterFile) FailRead(addr uint16, reg uint8) {
	f.present[addr] = true
	f.readFail[regKey{addr, reg}] = true
}

// FailWrite makes every write of reg on addr fail with ErrBusIO.
func (f *RegisterFile) FailWrite(addr uint16, reg uint8) {
	f.present[addr] = true
	f.writeFail[regKey{addr, reg}] = true
}

func (f *RegisterFile) ReadReg(addr uint16, reg uint8) (uint8, error) {
	k := regKey{addr, reg}
	f.log = append(f.log, Transaction{Addr: addr, Reg: reg, Val: f.regs[k]})
	if !f.present[addr] {
		return 0, busError("read", addr, reg, errNack)
	}
	if f.readFail[k] {
		return 0, busError("read", addr, reg, errFaulty)
	}
	return f.regs[k], nil
}

func (f *RegisterFile) WriteReg(addr uint16, reg uint8, val uint8) error {
	k := regKey{addr, reg}
	f.log = append(f.log, Transaction{Write: true, Addr: addr, Reg: reg, Val: val})
	if !f.present[addr] {
		return busError("write", addr, reg, errNack)
	}
	if f.writeFail[k] {
		return busError("write", addr, reg, errFaulty)
	}
	f.regs[k] = val
	if f.OnWrite != nil {
		f.OnWrite(addr, reg, val)
	}
	return nil
}

// Transactions returns all accesses in order.
func (f *RegisterFile) Transactions() []Transaction {
	return append([]Transaction(nil), f.log...)
}

// Writes returns only the write accesses in order.
func (f *RegisterFile) Writes() []Transaction {
	var w []Transaction
	for _, t := range f.log {
		if t.Write {
			w = append(w, t)
		}
	}
	return w
}

// Image is the YAML form of a register file:
//
//	devices:
//	  - address: 0x58
//	    registers:
//	      0x00: 0x02
//	      0x81: 0x02
type Image struct {
	Devices []struct {
		Address   uint16          `yaml:"address"`
		Registers map[uint8]uint8 `yaml:"registers"`
	} `yaml:"devices"`
}

// LoadRegisterFile builds a RegisterFile from a YAML image.
func LoadRegisterFile(r io.Reader) (*RegisterFile, error) {
	var img Image
	if err := yaml.NewDecoder(r).Decode(&img); err != nil {
		return nil, fmt.Errorf("decode register image: %v", err)
	}
	f := NewRegisterFile()
	for _, d := range img.Devices {
		if d.Address > 0x7f {
			return nil, fmt.Errorf("register image: address %#x is not a 7 bit address", d.Address)
		}
		f.present[d.Address] = true
		for reg, val := range d.Registers {
			f.Set(d.Address, reg, val)
		}
	}
	return f, nil
}
