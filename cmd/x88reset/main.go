// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

// x88reset powers off or reboots a pi,a88 board through its x88 PMIC.
//
// It does not return on success: either the PMIC takes power away or the
// process parks forever. With -sim the bus is a register image loaded from
// YAML and a written command ends the program instead.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/afero"
	"github.com/u-root/x88reset/config"
	"github.com/u-root/x88reset/pkg/fdt"
	"github.com/u-root/x88reset/pkg/hardware/i2c"
	"github.com/u-root/x88reset/pkg/hardware/x88"
	"github.com/u-root/x88reset/pkg/logger"
	"github.com/u-root/x88reset/pkg/metric"
	"github.com/u-root/x88reset/pkg/reset"
	"github.com/u-root/x88reset/platform/pi-a88/pkg/platform"
	"go.uber.org/zap"
)

var (
	dtbPath     = flag.String("dtb", config.DefaultConfig.DTBPath, "Device tree blob")
	i2cDev      = flag.String("i2c", config.DefaultConfig.Bus.Device, "i2c-dev node the PMIC is on")
	simPath     = flag.String("sim", "", "YAML register image to use instead of real hardware")
	resetType   = flag.String("type", "shutdown", "shutdown, cold or warm")
	resetReason = flag.Uint("reason", 0, "Reset reason code")
	warmBoot    = flag.Bool("warm-boot", false, "Behave as on a warm boot and skip reset device discovery")
	probe       = flag.Bool("probe", false, "Print the capability of every reset type and exit")
	metricsAddr = flag.String("metrics", config.DefaultConfig.MetricsAddress, "Serve /metrics on this address")
	verbose     = flag.Bool("v", false, "Debug logging")
)

func openBus(fs afero.Fs, log *zap.Logger) (i2c.Bus, error) {
	if *simPath == "" {
		d, err := i2c.Open(*i2cDev, config.DefaultConfig.Bus.Force)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	f, err := fs.Open(*simPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rf, err := i2c.LoadRegisterFile(f)
	if err != nil {
		return nil, err
	}
	rf.OnWrite = func(addr uint16, reg uint8, val uint8) {
		if reg != x88.RegControlF {
			return
		}
		log.Info("simulated PMIC took power away", zap.Uint16("addr", addr), zap.Uint8("command", val))
		log.Sync()
		os.Exit(0)
	}
	return rf, nil
}

func main() {
	flag.Parse()

	level := logger.ParseLevel(config.DefaultConfig.Log.Level)
	if *verbose {
		level = logger.ParseLevel("debug")
	}
	log := logger.New(os.Stdout, level)
	log.Info("x88reset", zap.String("version", config.DefaultConfig.Version.Version))

	t, err := reset.ParseType(*resetType)
	if err != nil {
		log.Fatal("bad -type", zap.Error(err))
	}

	fs := afero.NewOsFs()
	tree, err := fdt.Load(fs, *dtbPath)
	if err != nil {
		log.Fatal("loading device tree", zap.Error(err))
	}

	bus, err := openBus(fs, log)
	if err != nil {
		log.Fatal("opening bus", zap.Error(err))
	}

	registry := reset.NewRegistry(log, nil)
	p := platform.Platform(bus, registry, log)
	m, ok := p.Match(tree.RootNode)
	if !ok {
		log.Fatal("not an a88 platform", zap.Strings("compatible", fdt.Compatible(tree.RootNode)))
	}
	log.Info("platform matched", zap.String("compatible", m.Compatible), zap.Uint64("tlb_flush_limit", p.TLBFlushLimit(m)))

	if err := p.FinalInit(tree.RootNode, !*warmBoot); err != nil {
		log.Fatal("final init", zap.Error(err))
	}

	if *probe {
		for _, ty := range []reset.Type{reset.Shutdown, reset.ColdReboot, reset.WarmReboot} {
			d, score := registry.Select(ty, reset.Reason(*resetReason))
			name := "none"
			if d != nil {
				name = d.Name()
			}
			fmt.Printf("%-12s %-10s %d\n", ty, name, score)
		}
		return
	}

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		metric.StartMetrics(mux)
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error("metrics server", zap.Error(err))
			}
		}()
	}

	registry.Reset(t, reset.Reason(*resetReason))
}
