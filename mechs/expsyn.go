// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mechs

import (
	"math"

	"github.com/emer/cable/event"
	"github.com/emer/cable/mech"
)

// ExpSyn is a conductance synapse that jumps by the event weight (µS)
// and decays with time constant tau.
type ExpSyn struct{ mech.KernelBase }

const (
	expTau = iota
	expE
	expG
)

var expSynInfo = &mech.Info{
	Name: "expsyn",
	Kind: mech.Point,
	Fields: []mech.FieldDesc{
		{Name: "tau", Default: 2, Units: "ms"},
		{Name: "e", Default: 0, Units: "mV"},
		{Name: "g", State: true, Units: "uS"},
	},
}

func (ExpSyn) Info() *mech.Info { return expSynInfo }

func (ExpSyn) Init(pp *mech.PPack) {
	for i := range pp.Fields[expG] {
		pp.Fields[expG][i] = 0
	}
}

func (ExpSyn) ComputeCurrents(pp *mech.PPack) {
	f := pp.Fields
	for i := 0; i < pp.Width; i++ {
		g := f[expG][i]
		pp.AddCurrent(i, g*(pp.V(i)-f[expE][i]), g)
	}
}

func (ExpSyn) AdvanceState(pp *mech.PPack) {
	f := pp.Fields
	for i := 0; i < pp.Width; i++ {
		f[expG][i] *= math.Exp(-pp.Dt(i) / f[expTau][i])
	}
}

func (ExpSyn) ApplyEvents(pp *mech.PPack, evs []event.DeliverableEvent) {
	for _, ev := range evs {
		pp.Fields[expG][ev.Handle.MechIndex] += ev.Weight
	}
}

// Exp2Syn is a conductance synapse with rise time tau1 and decay time
// tau2, normalized so that the peak conductance equals the event weight.
type Exp2Syn struct{ mech.KernelBase }

const (
	exp2Tau1 = iota
	exp2Tau2
	exp2E
	exp2A
	exp2B
	exp2Factor
)

var exp2SynInfo = &mech.Info{
	Name: "exp2syn",
	Kind: mech.Point,
	Fields: []mech.FieldDesc{
		{Name: "tau1", Default: 0.5, Units: "ms"},
		{Name: "tau2", Default: 2, Units: "ms"},
		{Name: "e", Default: 0, Units: "mV"},
		{Name: "A", State: true},
		{Name: "B", State: true},
		{Name: "factor", State: true},
	},
}

func (Exp2Syn) Info() *mech.Info { return exp2SynInfo }

func (Exp2Syn) Init(pp *mech.PPack) {
	f := pp.Fields
	for i := 0; i < pp.Width; i++ {
		t1, t2 := f[exp2Tau1][i], f[exp2Tau2][i]
		tp := t1 * t2 / (t2 - t1) * math.Log(t2/t1)
		f[exp2Factor][i] = 1 / (math.Exp(-tp/t2) - math.Exp(-tp/t1))
		f[exp2A][i] = 0
		f[exp2B][i] = 0
	}
}

func (Exp2Syn) ComputeCurrents(pp *mech.PPack) {
	f := pp.Fields
	for i := 0; i < pp.Width; i++ {
		g := f[exp2B][i] - f[exp2A][i]
		pp.AddCurrent(i, g*(pp.V(i)-f[exp2E][i]), g)
	}
}

func (Exp2Syn) AdvanceState(pp *mech.PPack) {
	f := pp.Fields
	for i := 0; i < pp.Width; i++ {
		dt := pp.Dt(i)
		f[exp2A][i] *= math.Exp(-dt / f[exp2Tau1][i])
		f[exp2B][i] *= math.Exp(-dt / f[exp2Tau2][i])
	}
}

func (Exp2Syn) ApplyEvents(pp *mech.PPack, evs []event.DeliverableEvent) {
	f := pp.Fields
	for _, ev := range evs {
		i := ev.Handle.MechIndex
		f[exp2A][i] += ev.Weight * f[exp2Factor][i]
		f[exp2B][i] += ev.Weight * f[exp2Factor][i]
	}
}
