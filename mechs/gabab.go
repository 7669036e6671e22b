// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mechs

import (
	"math"

	"github.com/emer/cable/event"
	"github.com/emer/cable/mech"
)

// GABAB is a slow inhibitory synapse with bi-exponential time dynamics and
// inward rectification, based on Brunel & Wang (2001).  Events add their
// weight (µS) to the decay variable gD, which drives g; with the tau
// factor below, a unit event gives a peak g of 1 at MaxTime.
type GABAB struct{ mech.KernelBase }

const (
	gbRiseTau = iota
	gbDecayTau
	gbE
	gbG
	gbGD
)

var gababInfo = &mech.Info{
	Name: "gabab",
	Kind: mech.Point,
	Fields: []mech.FieldDesc{
		{Name: "rise_tau", Default: 45, Units: "ms"},
		{Name: "decay_tau", Default: 50, Units: "ms"},
		{Name: "e", Default: -90, Units: "mV"},
		{Name: "g", State: true, Units: "uS"},
		{Name: "gD", State: true, Units: "uS"},
	},
}

func (GABAB) Info() *mech.Info { return gababInfo }

// GABABTauFact is the time constant factor (decay / rise) ^ (rise / (decay - rise))
func GABABTauFact(rise, decay float64) float64 {
	return math.Pow(decay/rise, rise/(decay-rise))
}

// GABABMaxTime returns the time of peak conductance after an event
func GABABMaxTime(rise, decay float64) float64 {
	return ((rise * decay) / (decay - rise)) * math.Log(decay/rise)
}

// GABABGFmV returns the rectification of the GABA-B conductance at v (mV)
func GABABGFmV(v float64) float64 {
	return 1 / (1 + math.Exp(0.1*((v+90)+10)))
}

func (GABAB) Init(pp *mech.PPack) {
	f := pp.Fields
	for i := 0; i < pp.Width; i++ {
		f[gbG][i] = 0
		f[gbGD][i] = 0
	}
}

func (GABAB) ComputeCurrents(pp *mech.PPack) {
	f := pp.Fields
	for i := 0; i < pp.Width; i++ {
		v := pp.V(i)
		g := f[gbG][i] * GABABGFmV(v)
		pp.AddCurrent(i, g*(v-f[gbE][i]), g)
	}
}

// AdvanceState solves g' = (TauFact·gD - g) / rise, gD' = -gD / decay
// exactly over the step
func (GABAB) AdvanceState(pp *mech.PPack) {
	f := pp.Fields
	for i := 0; i < pp.Width; i++ {
		rise, decay := f[gbRiseTau][i], f[gbDecayTau][i]
		dt := pp.Dt(i)
		er, ed := math.Exp(-dt/rise), math.Exp(-dt/decay)
		a := GABABTauFact(rise, decay) * f[gbGD][i] * decay / (decay - rise)
		f[gbG][i] = a*ed + (f[gbG][i]-a)*er
		f[gbGD][i] *= ed
	}
}

func (GABAB) ApplyEvents(pp *mech.PPack, evs []event.DeliverableEvent) {
	for _, ev := range evs {
		pp.Fields[gbGD][ev.Handle.MechIndex] += ev.Weight
	}
}
