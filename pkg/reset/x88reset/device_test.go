// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x88reset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/u-root/x88reset/pkg/hardware/i2c"
	"github.com/u-root/x88reset/pkg/hardware/x88"
	"github.com/u-root/x88reset/pkg/hart"
	"github.com/u-root/x88reset/pkg/reset"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const addr = 0x58

type harness struct {
	bus   *i2c.RegisterFile
	logs  *observer.ObservedLogs
	halts int
	dev   *Device
}

func newHarness(t *testing.T, page, id, wdt uint8) *harness {
	t.Helper()
	h := &harness{bus: i2c.NewRegisterFile()}
	h.bus.Set(addr, x88.RegPageCon, page)
	h.bus.Set(addr, x88.RegDeviceID, id)
	h.bus.Set(addr, x88.RegControlD, wdt)
	h.bus.Set(addr, x88.RegControlF, 0)
	core, logs := observer.New(zapcore.DebugLevel)
	h.logs = logs
	h.dev = New(&Handle{Addr: addr}, h.bus,
		WithLogger(zap.New(core)),
		WithHalter(hart.HalterFunc(func() { h.halts++ })))
	return h
}

func (h *harness) errors() []string {
	var out []string
	for _, e := range h.logs.All() {
		if e.Level >= zapcore.ErrorLevel {
			out = append(out, e.Message)
		}
	}
	return out
}

func (h *harness) controlWrites() []i2c.Transaction {
	var out []i2c.Transaction
	for _, w := range h.bus.Writes() {
		if w.Reg == x88.RegControlF {
			out = append(out, w)
		}
	}
	return out
}

func TestCheck(t *testing.T) {
	d := New(nil, nil)
	for _, tc := range []struct {
		t    reset.Type
		want uint8
	}{
		{reset.Shutdown, 1},
		{reset.ColdReboot, 255},
		{reset.WarmReboot, 255},
		{reset.Type(3), 0},
		{reset.Type(0xf0000000), 0},
		{reset.Type(0xffffffff), 0},
	} {
		for _, r := range []reset.Reason{reset.ReasonNone, reset.ReasonSystemFailure, 0x1234} {
			if got := d.Check(tc.t, r); got != tc.want {
				t.Errorf("Check(%v, %d) = %d, want %d", tc.t, r, got, tc.want)
			}
		}
	}
	if d.Check(reset.ColdReboot, 0) <= d.Check(reset.Shutdown, 0) ||
		d.Check(reset.WarmReboot, 0) <= d.Check(reset.Shutdown, 0) {
		t.Errorf("reboot must outrank shutdown")
	}
	// Binding does not change the score.
	h := newHarness(t, 0x02, 0x02, 0)
	for _, ty := range []reset.Type{reset.Shutdown, reset.ColdReboot, reset.WarmReboot, 9} {
		if h.dev.Check(ty, 0) != d.Check(ty, 0) {
			t.Errorf("Check(%v) depends on binding", ty)
		}
	}
}

func TestShutdownScenario(t *testing.T) {
	h := newHarness(t, 0x02, 0x02, 0)
	before := testutil.ToFloat64(attempts.WithLabelValues("shutdown", "issued"))
	h.dev.Reset(reset.Shutdown, reset.ReasonNone)

	want := []i2c.Transaction{{Write: true, Addr: addr, Reg: x88.RegControlF, Val: x88.CmdShutdown}}
	if diff := cmp.Diff(want, h.bus.Writes()); diff != "" {
		t.Errorf("writes (-want +got):\n%s", diff)
	}
	if h.halts != 1 {
		t.Errorf("halted %d times, want 1", h.halts)
	}
	if got := testutil.ToFloat64(attempts.WithLabelValues("shutdown", "issued")); got != before+1 {
		t.Errorf("issued counter = %v, want %v", got, before+1)
	}
}

func TestMismatchScenario(t *testing.T) {
	h := newHarness(t, 0x03, 0x02, 0xff)
	h.dev.Reset(reset.ColdReboot, reset.ReasonNone)

	if w := h.bus.Writes(); len(w) != 0 {
		t.Errorf("unrecognized chip got writes: %v", w)
	}
	if diff := cmp.Diff([]string{"chip is not x88"}, h.errors()); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}
	if h.halts != 1 {
		t.Errorf("halted %d times, want 1", h.halts)
	}
}

func TestWarmRebootScenario(t *testing.T) {
	h := newHarness(t, 0x02, 0x02, 0x01)
	h.dev.Reset(reset.WarmReboot, reset.ReasonSystemFailure)

	want := []i2c.Transaction{
		{Write: true, Addr: addr, Reg: x88.RegControlD, Val: 0x00},
		{Write: true, Addr: addr, Reg: x88.RegControlF, Val: x88.CmdReboot},
	}
	if diff := cmp.Diff(want, h.bus.Writes()); diff != "" {
		t.Errorf("writes (-want +got):\n%s", diff)
	}
	if h.halts != 1 {
		t.Errorf("halted %d times, want 1", h.halts)
	}
}

func TestColdRebootWatchdogAlreadyOff(t *testing.T) {
	h := newHarness(t, 0x02, 0x02, 0x00)
	h.dev.Reset(reset.ColdReboot, reset.ReasonNone)

	want := []i2c.Transaction{{Write: true, Addr: addr, Reg: x88.RegControlF, Val: x88.CmdReboot}}
	if diff := cmp.Diff(want, h.bus.Writes()); diff != "" {
		t.Errorf("writes (-want +got):\n%s", diff)
	}
}

func TestRebootDespiteWatchdogFailure(t *testing.T) {
	h := newHarness(t, 0x02, 0x02, 0xff)
	h.bus.FailRead(addr, x88.RegControlD)
	h.dev.Reset(reset.ColdReboot, reset.ReasonNone)

	want := []i2c.Transaction{{Write: true, Addr: addr, Reg: x88.RegControlF, Val: x88.CmdReboot}}
	if diff := cmp.Diff(want, h.controlWrites()); diff != "" {
		t.Errorf("control writes (-want +got):\n%s", diff)
	}
	if len(h.errors()) != 0 {
		t.Errorf("watchdog failure must not be an error diagnostic: %v", h.errors())
	}
	if h.halts != 1 {
		t.Errorf("halted %d times, want 1", h.halts)
	}
}

func TestVerifyBusErrorAborts(t *testing.T) {
	h := newHarness(t, 0x02, 0x02, 0xff)
	h.bus.FailRead(addr, x88.RegDeviceID)
	h.dev.Reset(reset.Shutdown, reset.ReasonNone)

	if w := h.bus.Writes(); len(w) != 0 {
		t.Errorf("writes after failed identity read: %v", w)
	}
	if diff := cmp.Diff([]string{"chip is not x88"}, h.errors()); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}
	if h.halts != 1 {
		t.Errorf("halted %d times, want 1", h.halts)
	}
}

func TestCommandWriteFailureStillHalts(t *testing.T) {
	h := newHarness(t, 0x02, 0x02, 0)
	h.bus.FailWrite(addr, x88.RegControlF)
	before := testutil.ToFloat64(attempts.WithLabelValues("shutdown", "failed"))
	h.dev.Reset(reset.Shutdown, reset.ReasonNone)

	if diff := cmp.Diff([]string{"reset command failed"}, h.errors()); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}
	if h.halts != 1 {
		t.Errorf("halted %d times, want 1", h.halts)
	}
	if got := testutil.ToFloat64(attempts.WithLabelValues("shutdown", "failed")); got != before+1 {
		t.Errorf("failed counter = %v, want %v", got, before+1)
	}
}

func TestOtherTypeNoHardwareAction(t *testing.T) {
	h := newHarness(t, 0x02, 0x02, 0xff)
	h.dev.Reset(reset.Type(0x10), reset.ReasonNone)

	if w := h.bus.Writes(); len(w) != 0 {
		t.Errorf("writes for unsupported type: %v", w)
	}
	if h.halts != 1 {
		t.Errorf("halted %d times, want 1", h.halts)
	}
}

func TestUnboundHalts(t *testing.T) {
	bus := i2c.NewRegisterFile()
	for _, tc := range []struct {
		name string
		h    *Handle
		bus  i2c.Bus
	}{
		{"no handle", nil, bus},
		{"no bus", &Handle{Addr: addr}, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			halts := 0
			core, logs := observer.New(zapcore.InfoLevel)
			d := New(tc.h, tc.bus, WithLogger(zap.New(core)), WithHalter(hart.HalterFunc(func() { halts++ })))
			if d.Bound() {
				t.Fatalf("device reports bound")
			}
			d.Reset(reset.ColdReboot, reset.ReasonNone)
			if halts != 1 {
				t.Errorf("halted %d times, want 1", halts)
			}
			if n := logs.FilterMessage("reset skipped").Len(); n != 1 {
				t.Errorf("got %d diagnostics, want 1", n)
			}
		})
	}
	if n := len(bus.Transactions()); n != 0 {
		t.Errorf("unbound device touched the bus %d times", n)
	}
}

func TestHaltExactlyOnceEveryPath(t *testing.T) {
	types := []reset.Type{reset.Shutdown, reset.ColdReboot, reset.WarmReboot, reset.Type(5)}
	for _, page := range []uint8{0x02, 0x03} {
		for _, ty := range types {
			for _, failCmd := range []bool{false, true} {
				h := newHarness(t, page, 0x02, 0xff)
				if failCmd {
					h.bus.FailWrite(addr, x88.RegControlF)
					h.bus.FailWrite(addr, x88.RegControlD)
				}
				h.dev.Reset(ty, reset.ReasonNone)
				if h.halts != 1 {
					t.Errorf("page %#x type %v fail %v: halted %d times, want 1", page, ty, failCmd, h.halts)
				}
			}
		}
	}
}
