// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import (
	"math"

	"github.com/emer/cable/mech"
	"github.com/emer/emergent/params"
	"github.com/emer/etable/minmax"
	"github.com/goki/ki/kit"
)

// Backends select the matrix solver and mechanism storage layout
type Backends int32

//go:generate stringer -type=Backends

var KiT_Backends = kit.Enums.AddEnum(BackendsN, kit.NotBitFlag, nil)

func (ev Backends) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Backends) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Multicore solves each cell with the Hines sweep, and keeps each
	// mechanism field in its own slice
	Multicore Backends = iota

	// Fine solves each cell level by level, spreading wide levels over
	// threads, and keeps mechanism fields in one padded block
	Fine

	BackendsN
)

// Params are the settings of a lowered cell
type Params struct {
	Backend      Backends   `desc:"matrix solver and mechanism storage layout"`
	NThreads     int        `def:"1" min:"1" desc:"number of threads for domain-parallel work"`
	Alignment    int        `def:"8" desc:"padding of mechanism storage for the Fine backend, in values"`
	CheckVoltage bool       `desc:"check after every matrix solve that the voltage is finite and within VoltageRange"`
	VoltageRange minmax.F64 `view:"inline" desc:"[-1000, 1000] mV range accepted by the voltage check"`
	BinInterval  float64    `def:"0" desc:"event binning interval, ms: events are delivered at the start of their bin, but not before the current time -- 0 for no binning"`
}

func (pr *Params) Defaults() {
	pr.Backend = Multicore
	pr.NThreads = 1
	pr.Alignment = 8
	pr.CheckVoltage = false
	pr.VoltageRange.Min = -1000
	pr.VoltageRange.Max = 1000
	pr.BinInterval = 0
	pr.Update()
}

// Update must be called after any changes to parameters
func (pr *Params) Update() {
	if pr.NThreads < 1 {
		pr.NThreads = 1
	}
	if pr.Alignment < 1 {
		pr.Alignment = 1
	}
	if pr.BinInterval < 0 {
		pr.BinInterval = 0
	}
}

// NewParams returns default params
func NewParams() *Params {
	pr := &Params{}
	pr.Defaults()
	return pr
}

// ApplyParams applies the selectors of pars that target Params, with
// paths such as "Params.Backend" or "Params.VoltageRange.Max", then calls
// Update.  Returns true if any selector applied.
func (pr *Params) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	app, err := pars.Apply(pr, setMsg)
	pr.Update()
	return app, err
}

// MechBackend returns the mechanism storage for the selected backend
func (pr *Params) MechBackend() mech.Backend {
	if pr.Backend == Fine {
		return mech.Padded{Alignment: pr.Alignment}
	}
	return mech.Multicore{}
}

// BinTime returns the delivery time of an event at t when the cell is at
// time now
func (pr *Params) BinTime(t, now float64) float64 {
	if pr.BinInterval <= 0 {
		return t
	}
	return math.Max(now, math.Floor(t/pr.BinInterval)*pr.BinInterval)
}
