// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package x88reset is the system reset device backed by the x88 PMIC.
//
// The device prefers itself for reboots and accepts shutdowns at the
// lowest priority. Whatever happens on the bus, Reset ends by halting the
// hart: if the PMIC did not take power away, nothing else may run.
package x88reset

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/u-root/x88reset/pkg/hardware/i2c"
	"github.com/u-root/x88reset/pkg/hardware/x88"
	"github.com/u-root/x88reset/pkg/hart"
	"github.com/u-root/x88reset/pkg/metric"
	"github.com/u-root/x88reset/pkg/reset"
	"go.uber.org/zap"
)

const Name = "x88-reset"

const (
	scoreShutdown uint8 = 1
	scoreReboot   uint8 = 255
)

// ErrNotBound is reported when a reset is requested from a device that
// never got an address or a bus.
var ErrNotBound = errors.New("reset device not bound")

var attempts = metric.CounterVec(metric.MetricOpts{
	Namespace: "x88",
	Subsystem: "reset",
	Name:      "attempts_total",
	Help:      "Reset requests handled by the x88 reset device, by type and outcome.",
}, []string{"type", "outcome"})

// Handle identifies the bound chip. It is built once from the device tree
// and copied into the Device.
type Handle struct {
	Addr uint16
}

type Device struct {
	chip *x88.Chip
	log  *zap.Logger
	halt hart.Halter
	hits *prometheus.CounterVec
}

type Option func(*Device)

func WithLogger(l *zap.Logger) Option {
	return func(d *Device) { d.log = l }
}

func WithHalter(h hart.Halter) Option {
	return func(d *Device) { d.halt = h }
}

// New returns the reset device for the chip at h on bus. A nil handle or
// bus gives an unbound device that only halts.
func New(h *Handle, bus i2c.Bus, opts ...Option) *Device {
	d := &Device{log: zap.NewNop(), halt: hart.Default, hits: attempts}
	if h != nil && bus != nil {
		d.chip = x88.New(bus, h.Addr)
	}
	for _, o := range opts {
		o(d)
	}
	d.log = d.log.With(zap.String("device", Name))
	return d
}

func (d *Device) Name() string {
	return Name
}

func (d *Device) Bound() bool {
	return d.chip != nil
}

// Check reports how much this device wants to handle t.
func (d *Device) Check(t reset.Type, r reset.Reason) uint8 {
	switch t {
	case reset.Shutdown:
		return scoreShutdown
	case reset.ColdReboot, reset.WarmReboot:
		return scoreReboot
	}
	return 0
}

type state int

const (
	stateStart state = iota
	stateVerify
	stateSequence
	stateAbort
	stateHalt
)

func (s state) String() string {
	return [...]string{"start", "verify", "sequence", "abort", "halt"}[s]
}

type request struct {
	t      reset.Type
	reason reset.Reason
	err    error
}

// Reset runs start, verify, sequence or abort, then halts. It only
// returns if the configured halter does.
func (d *Device) Reset(t reset.Type, r reset.Reason) {
	req := &request{t: t, reason: r}
	for s := stateStart; s != stateHalt; {
		next := d.step(s, req)
		d.log.Debug("reset state", zap.Stringer("from", s), zap.Stringer("to", next))
		s = next
	}
	d.halt.Halt()
}

func (d *Device) step(s state, req *request) state {
	switch s {
	case stateStart:
		d.log.Debug("reset requested", zap.Stringer("type", req.t), zap.Uint32("reason", uint32(req.reason)))
		if d.chip == nil {
			req.err = ErrNotBound
			d.count(req, "not_bound")
			return stateAbort
		}
		return stateVerify
	case stateVerify:
		if err := d.chip.Verify(); err != nil {
			req.err = err
			d.count(req, "unrecognized")
			return stateAbort
		}
		return stateSequence
	case stateSequence:
		d.sequence(req)
		return stateHalt
	case stateAbort:
		if errors.Is(req.err, x88.ErrDeviceUnrecognized) {
			d.log.Error("chip is not x88", zap.Uint16("addr", d.chip.Addr()), zap.Error(req.err))
		} else {
			d.log.Error("reset skipped", zap.Error(req.err))
		}
		return stateHalt
	}
	return stateHalt
}

func (d *Device) sequence(req *request) {
	var err error
	switch req.t {
	case reset.Shutdown:
		err = d.chip.Shutdown()
	case reset.ColdReboot, reset.WarmReboot:
		// A running watchdog is best effort only; the reboot clears it.
		if werr := d.chip.StopWatchdog(); werr != nil {
			d.log.Warn("failed to stop watchdog", zap.Error(werr))
		}
		err = d.chip.Reboot()
	default:
		d.count(req, "ignored")
		return
	}
	if err != nil {
		d.log.Error("reset command failed", zap.Stringer("type", req.t), zap.Error(err))
		d.count(req, "failed")
		return
	}
	d.count(req, "issued")
}

func (d *Device) count(req *request, outcome string) {
	d.hits.WithLabelValues(req.t.String(), outcome).Inc()
}
