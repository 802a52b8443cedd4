// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

type Version struct {
	Version string
	GitHash string
}

type Log struct {
	// One of debug, info, warn, error.
	Level string
}

type Bus struct {
	// i2c-dev node of the controller the PMIC hangs off.
	Device string
	// Claim the address even if a kernel driver owns it.
	Force bool
}

type Config struct {
	Version Version
	Log     Log
	Bus     Bus
	// Flattened device tree to read the platform from.
	DTBPath string
	// Listen address for /metrics, empty disables it.
	MetricsAddress string
}

var DefaultConfig = &Config{
	Version: Version{
		Version: gitVersion,
		GitHash: gitHash,
	},

	Log: Log{
		Level: "info",
	},

	// The FU740 PMIC sits on the first I2C controller.
	Bus: Bus{
		Device: "/dev/i2c-0",
		Force:  true,
	},

	// Linux exposes the blob it was booted with here.
	DTBPath: "/sys/firmware/fdt",
}

// Overridden at link time with -X.
var (
	gitVersion = "dev"
	gitHash    = ""
)
