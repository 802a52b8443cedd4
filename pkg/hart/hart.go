// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hart parks the executing hart for good.
package hart

// Halter puts the calling hart into its terminal state. Production
// halters never return.
type Halter interface {
	Halt()
}

// HalterFunc adapts a function to Halter.
type HalterFunc func()

func (f HalterFunc) Halt() { f() }

// Default is the halter used when none is configured.
var Default Halter = HalterFunc(Hang)

// Hang disables interrupts where the target allows it and waits forever.
func Hang() {
	hang()
}
