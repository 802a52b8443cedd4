// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !tinygo.riscv

package hart

import "time"

// Hosted Go cannot mask interrupts. Sleeping in a loop keeps the runtime
// from reporting a deadlock when this is the last goroutine.
func hang() {
	for {
		time.Sleep(time.Hour)
	}
}
