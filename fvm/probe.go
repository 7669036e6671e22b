// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import (
	"github.com/emer/cable/morph"
	"github.com/goki/ki/kit"
)

// ProbeKinds are the quantities a probe can sample
type ProbeKinds int32

//go:generate stringer -type=ProbeKinds

var KiT_ProbeKinds = kit.Enums.AddEnum(ProbeKindsN, kit.NotBitFlag, nil)

func (ev ProbeKinds) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *ProbeKinds) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// MembraneVoltage at Loc, mV
	MembraneVoltage ProbeKinds = iota

	// TotalIonicCurrentDensity at Loc: membrane current density without
	// the current clamp contribution, A/m²
	TotalIonicCurrentDensity

	// TotalCurrentDensity at Loc, A/m²
	TotalCurrentDensity

	// IonIntConc is the internal concentration of Ion at Loc, mM
	IonIntConc

	// IonExtConc is the external concentration of Ion at Loc, mM
	IonExtConc

	// IonCurrentDensity is the current density of Ion at Loc, A/m²
	IonCurrentDensity

	// DensityState is Field of density mechanism Mech at Loc
	DensityState

	// PointState is Field of the point mechanism of target lid Target
	PointState

	ProbeKindsN
)

// ProbeInfo describes a probe on a cell
type ProbeInfo struct {
	Kind   ProbeKinds
	Loc    morph.Location `desc:"sampled location, for all but PointState"`
	Ion    string         `desc:"ion species, for ion probes"`
	Mech   string         `desc:"mechanism name as painted, for DensityState"`
	Field  string         `desc:"mechanism field, for state probes"`
	Target int            `desc:"target lid, for PointState"`
	Tag    string         `desc:"user label, passed through to samplers"`
}

// ProbeAddress is probe Index of cell Gid
type ProbeAddress struct {
	Gid   int
	Index int
}

// RawHandle reads one value from shared state: *ptr, minus *sub if set
type RawHandle struct {
	ptr *float64
	sub *float64
}

// Value returns the current value
func (rh RawHandle) Value() float64 {
	if rh.sub != nil {
		return *rh.ptr - *rh.sub
	}
	return *rh.ptr
}

// Valid reports whether the handle points at a value
func (rh RawHandle) Valid() bool {
	return rh.ptr != nil
}

// ProbeHandle is a resolved probe
type ProbeHandle struct {
	Handle RawHandle
	Intdom int `desc:"integration domain of the probed cell"`
	Info   ProbeInfo
}

// SampleEvent asks for the value of Handle at Time, to be stored at
// Offset in the sample buffers returned by Integrate
type SampleEvent struct {
	Time   float64
	Intdom int
	Handle RawHandle
	Offset int
}

func (se SampleEvent) EventTime() float64 { return se.Time }
func (se SampleEvent) EventIntdom() int   { return se.Intdom }

// ProbeMetadata identifies a probe to a sampler
type ProbeMetadata struct {
	Addr ProbeAddress
	Info ProbeInfo
}

// SampleRecord is one sample: the time it was taken and its value
type SampleRecord struct {
	Time  float64
	Value float64
}

// Sampler receives the n samples of one probe taken during one epoch
type Sampler func(pm ProbeMetadata, n int, recs []SampleRecord)

// ProbePredicate selects probes for a sampler
type ProbePredicate func(addr ProbeAddress) bool

// AllProbes selects every probe
func AllProbes(addr ProbeAddress) bool { return true }

// OneProbe selects the probe at addr
func OneProbe(addr ProbeAddress) ProbePredicate {
	return func(a ProbeAddress) bool { return a == addr }
}
