// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build tinygo.riscv

package hart

import "device/riscv"

func hang() {
	riscv.DisableInterrupts()
	for {
		riscv.Asm("wfi")
	}
}
