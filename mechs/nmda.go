// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mechs

import (
	"math"

	"github.com/emer/cable/event"
	"github.com/emer/cable/mech"
)

// NMDA is a slow glutamate synapse with voltage dependent magnesium block,
// based on Brunel & Wang (2001).  The conductance jumps by the event weight
// (µS) and decays with tau; rise time is 2 msec and not worth extra effort
// for biexponential.  The current uses the chord conductance g·B(v).
type NMDA struct{ mech.KernelBase }

const (
	nmdaTau = iota
	nmdaE
	nmdaMg
	nmdaG
)

var nmdaInfo = &mech.Info{
	Name: "nmda",
	Kind: mech.Point,
	Fields: []mech.FieldDesc{
		{Name: "tau", Default: 100, Units: "ms"},
		{Name: "e", Default: 0, Units: "mV"},
		{Name: "mg", Default: 1, Units: "mM"},
		{Name: "g", State: true, Units: "uS"},
	},
}

func (NMDA) Info() *mech.Info { return nmdaInfo }

// MgBlock returns the fraction of NMDA channels not blocked by
// magnesium at concentration mg (mM) and voltage v (mV)
func MgBlock(v, mg float64) float64 {
	return 1 / (1 + 0.28*mg*math.Exp(-0.062*v))
}

func (NMDA) Init(pp *mech.PPack) {
	for i := range pp.Fields[nmdaG] {
		pp.Fields[nmdaG][i] = 0
	}
}

func (NMDA) ComputeCurrents(pp *mech.PPack) {
	f := pp.Fields
	for i := 0; i < pp.Width; i++ {
		v := pp.V(i)
		g := f[nmdaG][i] * MgBlock(v, f[nmdaMg][i])
		pp.AddCurrent(i, g*(v-f[nmdaE][i]), g)
	}
}

func (NMDA) AdvanceState(pp *mech.PPack) {
	f := pp.Fields
	for i := 0; i < pp.Width; i++ {
		f[nmdaG][i] *= math.Exp(-pp.Dt(i) / f[nmdaTau][i])
	}
}

func (NMDA) ApplyEvents(pp *mech.PPack, evs []event.DeliverableEvent) {
	for _, ev := range evs {
		pp.Fields[nmdaG][ev.Handle.MechIndex] += ev.Weight
	}
}
