// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package unittest

import (
	"math"

	"github.com/emer/cable/mech"
)

// Kin1 is the voltage independent scheme a <-> b with rates 2/tau and
// 1/tau, starting from a = 0.01, b = 0, with non-specific current il = a.
// Changing tau only rescales time.
type Kin1 struct{ mech.KernelBase }

const (
	kin1A = iota
	kin1B
)

var kin1Info = &mech.Info{
	Name:    "test_kin1",
	Kind:    mech.Density,
	Globals: []mech.GlobalDesc{{Name: "tau", Default: 10, Units: "ms"}},
	Fields: []mech.FieldDesc{
		{Name: "a", State: true},
		{Name: "b", State: true},
	},
}

func (Kin1) Info() *mech.Info { return kin1Info }

func (Kin1) Init(pp *mech.PPack) {
	for i := 0; i < pp.Width; i++ {
		pp.Fields[kin1A][i] = 0.01
		pp.Fields[kin1B][i] = 0
	}
}

func (Kin1) ComputeCurrents(pp *mech.PPack) {
	for i := 0; i < pp.Width; i++ {
		pp.AddCurrent(i, pp.Fields[kin1A][i], 0)
	}
}

// AdvanceState solves the linear scheme exactly over the step
func (Kin1) AdvanceState(pp *mech.PPack) {
	tau := pp.Globals[0]
	kf, kb := 2/tau, 1/tau
	a, b := pp.Fields[kin1A], pp.Fields[kin1B]
	for i := 0; i < pp.Width; i++ {
		s := a[i] + b[i]
		aeq := s * kb / (kf + kb)
		a[i] = aeq + (a[i]-aeq)*math.Exp(-(kf+kb)*pp.Dt(i))
		b[i] = s - a[i]
	}
}

// KinLVA is a low voltage activated calcium current with first order
// gates, ica = gbar·m³·h·(v - eca), plus a leak il = gl·(v - el).
type KinLVA struct{ mech.KernelBase }

const (
	lvaGbar = iota
	lvaGl
	lvaEl
	lvaM
	lvaH
)

var kinLVAInfo = &mech.Info{
	Name: "test_kinlva",
	Kind: mech.Density,
	Fields: []mech.FieldDesc{
		{Name: "gbar", Default: 0.0002, Units: "S/cm2"},
		{Name: "gl", Default: 0.0001, Units: "S/cm2"},
		{Name: "el", Default: -65, Units: "mV"},
		{Name: "m", State: true},
		{Name: "h", State: true},
	},
	Ions: []mech.IonDep{{Name: "ca", ReadRevPot: true, WriteCurrent: true, Valence: 2}},
}

func (KinLVA) Info() *mech.Info { return kinLVAInfo }

func lvaRates(v float64) (minf, hinf, mtau, htau float64) {
	minf = 1 / (1 + math.Exp(-(v+63)/7.8))
	hinf = 1 / (1 + math.Exp((v+83.5)/6.3))
	mtau = 1.5
	htau = 10 + 40/(1+math.Exp((v+70)/5))
	return
}

func (KinLVA) Init(pp *mech.PPack) {
	for i := 0; i < pp.Width; i++ {
		minf, hinf, _, _ := lvaRates(pp.V(i))
		pp.Fields[lvaM][i] = minf
		pp.Fields[lvaH][i] = hinf
	}
}

func (KinLVA) ComputeCurrents(pp *mech.PPack) {
	f := pp.Fields
	for i := 0; i < pp.Width; i++ {
		v := pp.V(i)
		m := f[lvaM][i]
		g := f[lvaGbar][i] * m * m * m * f[lvaH][i]
		ica := g * (v - pp.EX(0, i))
		il := f[lvaGl][i] * (v - f[lvaEl][i])
		pp.AddIonCurrent(0, i, ica)
		pp.AddCurrent(i, ica+il, g+f[lvaGl][i])
	}
}

func (KinLVA) AdvanceState(pp *mech.PPack) {
	f := pp.Fields
	for i := 0; i < pp.Width; i++ {
		dt := pp.Dt(i)
		minf, hinf, mtau, htau := lvaRates(pp.V(i))
		f[lvaM][i] = minf + (f[lvaM][i]-minf)*math.Exp(-dt/mtau)
		f[lvaH][i] = hinf + (f[lvaH][i]-hinf)*math.Exp(-dt/htau)
	}
}
