// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reset dispatches system reset requests to the best suited
// registered reset device.
//
// Devices advertise a score per reset type. Registry.Reset picks the
// highest score; on a tie the device registered first wins. A score of 0
// means the device cannot perform that type at all.
package reset

import (
	"fmt"

	"github.com/u-root/x88reset/pkg/hart"
	"go.uber.org/zap"
)

type Type uint32

const (
	Shutdown   Type = 0
	ColdReboot Type = 1
	WarmReboot Type = 2
)

func (t Type) String() string {
	switch t {
	case Shutdown:
		return "shutdown"
	case ColdReboot:
		return "cold-reboot"
	case WarmReboot:
		return "warm-reboot"
	}
	return fmt.Sprintf("type-%#x", uint32(t))
}

// ParseType accepts the names printed by Type.String plus the short forms
// "cold" and "warm".
func ParseType(s string) (Type, error) {
	switch s {
	case "shutdown":
		return Shutdown, nil
	case "cold", "cold-reboot":
		return ColdReboot, nil
	case "warm", "warm-reboot":
		return WarmReboot, nil
	}
	return 0, fmt.Errorf("unknown reset type %q", s)
}

// Reason is passed through to devices untouched.
type Reason uint32

const (
	ReasonNone          Reason = 0
	ReasonSystemFailure Reason = 1
)

// Device is a reset mechanism. Reset is not expected to return; if it
// does, the registry halts the hart itself.
type Device interface {
	Name() string
	Check(t Type, r Reason) uint8
	Reset(t Type, r Reason)
}

type Registry struct {
	devices []Device
	log     *zap.Logger
	halt    hart.Halter
}

// NewRegistry returns an empty registry. A nil logger discards output and
// a nil halter means hart.Default.
func NewRegistry(log *zap.Logger, halt hart.Halter) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	if halt == nil {
		halt = hart.Default
	}
	return &Registry{log: log, halt: halt}
}

func (r *Registry) Add(d Device) {
	r.devices = append(r.devices, d)
	r.log.Info("reset device registered", zap.String("device", d.Name()))
}

func (r *Registry) Devices() []Device {
	return append([]Device(nil), r.devices...)
}

// Select returns the device with the highest non-zero score for t, or nil.
func (r *Registry) Select(t Type, reason Reason) (Device, uint8) {
	var best Device
	var score uint8
	for _, d := range r.devices {
		// Strictly greater keeps the earliest registration on ties.
		if s := d.Check(t, reason); s > score {
			best, score = d, s
		}
	}
	return best, score
}

// Probe reports whether any registered device supports t.
func (r *Registry) Probe(t Type, reason Reason) bool {
	d, _ := r.Select(t, reason)
	return d != nil
}

// Reset hands the request to the selected device and halts afterwards.
func (r *Registry) Reset(t Type, reason Reason) {
	d, score := r.Select(t, reason)
	if d == nil {
		r.log.Error("no reset device supports request", zap.Stringer("type", t), zap.Uint32("reason", uint32(reason)))
	} else {
		r.log.Info("system reset", zap.String("device", d.Name()), zap.Stringer("type", t), zap.Uint8("score", score))
		d.Reset(t, reason)
	}
	r.halt.Halt()
}
