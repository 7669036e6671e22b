// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mechs

import (
	"math"

	"github.com/emer/cable/mech"
)

// HH is the Hodgkin-Huxley squid axon model, with rates at 6.3 C
// scaled by a Q10 of 3, and gates integrated exactly over each step
// at fixed voltage.
type HH struct{ mech.KernelBase }

const (
	hhGnabar = iota
	hhGkbar
	hhGl
	hhEl
	hhM
	hhH
	hhN
)

const (
	hhNa = iota
	hhK
)

var hhInfo = &mech.Info{
	Name: "hh",
	Kind: mech.Density,
	Fields: []mech.FieldDesc{
		{Name: "gnabar", Default: 0.12, Units: "S/cm2"},
		{Name: "gkbar", Default: 0.036, Units: "S/cm2"},
		{Name: "gl", Default: 0.0003, Units: "S/cm2"},
		{Name: "el", Default: -54.3, Units: "mV"},
		{Name: "m", State: true},
		{Name: "h", State: true},
		{Name: "n", State: true},
	},
	Ions: []mech.IonDep{
		{Name: "na", ReadRevPot: true, WriteCurrent: true},
		{Name: "k", ReadRevPot: true, WriteCurrent: true},
	},
}

func (HH) Info() *mech.Info { return hhInfo }

// vtrap is x/(exp(x/y) - 1), continuous at x = 0
func vtrap(x, y float64) float64 {
	if math.Abs(x/y) < 1e-6 {
		return y * (1 - x/y/2)
	}
	return x / (math.Exp(x/y) - 1)
}

// hhRates returns the steady states and time constants of m, h, n
func hhRates(v, celsius float64) (minf, hinf, ninf, mtau, htau, ntau float64) {
	q10 := math.Pow(3, (celsius-6.3)/10)

	alpha := 0.1 * vtrap(-(v + 40), 10)
	beta := 4 * math.Exp(-(v+65)/18)
	sum := alpha + beta
	mtau = 1 / (q10 * sum)
	minf = alpha / sum

	alpha = 0.07 * math.Exp(-(v+65)/20)
	beta = 1 / (math.Exp(-(v+35)/10) + 1)
	sum = alpha + beta
	htau = 1 / (q10 * sum)
	hinf = alpha / sum

	alpha = 0.01 * vtrap(-(v + 55), 10)
	beta = 0.125 * math.Exp(-(v+65)/80)
	sum = alpha + beta
	ntau = 1 / (q10 * sum)
	ninf = alpha / sum
	return
}

func (HH) Init(pp *mech.PPack) {
	for i := 0; i < pp.Width; i++ {
		minf, hinf, ninf, _, _, _ := hhRates(pp.V(i), pp.Celsius(i))
		pp.Fields[hhM][i] = minf
		pp.Fields[hhH][i] = hinf
		pp.Fields[hhN][i] = ninf
	}
}

func (HH) ComputeCurrents(pp *mech.PPack) {
	f := pp.Fields
	for i := 0; i < pp.Width; i++ {
		v := pp.V(i)
		m, h, n := f[hhM][i], f[hhH][i], f[hhN][i]
		gna := f[hhGnabar][i] * m * m * m * h
		gk := f[hhGkbar][i] * n * n * n * n
		gl := f[hhGl][i]
		ina := gna * (v - pp.EX(hhNa, i))
		ik := gk * (v - pp.EX(hhK, i))
		il := gl * (v - f[hhEl][i])
		pp.AddIonCurrent(hhNa, i, ina)
		pp.AddIonCurrent(hhK, i, ik)
		pp.AddCurrent(i, ina+ik+il, gna+gk+gl)
	}
}

func (HH) AdvanceState(pp *mech.PPack) {
	f := pp.Fields
	for i := 0; i < pp.Width; i++ {
		dt := pp.Dt(i)
		minf, hinf, ninf, mtau, htau, ntau := hhRates(pp.V(i), pp.Celsius(i))
		f[hhM][i] = minf + (f[hhM][i]-minf)*math.Exp(-dt/mtau)
		f[hhH][i] = hinf + (f[hhH][i]-hinf)*math.Exp(-dt/htau)
		f[hhN][i] = ninf + (f[hhN][i]-ninf)*math.Exp(-dt/ntau)
	}
}
