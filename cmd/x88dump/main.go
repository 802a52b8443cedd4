// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

// x88dump prints the x88 register file and whether the chip passes the
// identity check the reset path performs. It only reads.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/u-root/x88reset/config"
	"github.com/u-root/x88reset/pkg/hardware/i2c"
	"github.com/u-root/x88reset/pkg/hardware/x88"
)

var (
	dev  = flag.String("i2c", config.DefaultConfig.Bus.Device, "i2c-dev node to use")
	addr = flag.Uint("addr", 0x58, "7 bit address of the x88")
)

func main() {
	flag.Parse()
	if *addr > 0x7f {
		fmt.Fprintf(os.Stderr, "address %#x is not a 7 bit address\n", *addr)
		os.Exit(2)
	}

	bus, err := i2c.Open(*dev, config.DefaultConfig.Bus.Force)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer bus.Close()

	c := x88.New(bus, uint16(*addr))
	fmt.Printf("x88 @ %s/%#02x\n", bus, c.Addr())
	for _, v := range c.Dump() {
		fmt.Println(v)
	}
	if err := c.Verify(); err != nil {
		fmt.Printf("identity: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("identity: ok\n")
}
