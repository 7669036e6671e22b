// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

// IonView is a mechanism's binding to one ion species
type IonView struct {
	Name   string    `desc:"name of the bound ion species in shared state"`
	Index  []int     `desc:"per site: index into the ion arrays"`
	IX     []float64 `desc:"ion current density, A/m²"`
	EX     []float64 `desc:"reversal potential, mV"`
	Xi     []float64 `desc:"internal concentration, mM"`
	Xo     []float64 `desc:"external concentration, mM"`
	Charge *float64  `desc:"valence of the bound species"`
}

// PPack is the parameter pack a kernel runs on.  Slices named after shared
// state are full shared arrays indexed by CV (NodeIndex) or domain;
// Globals, Fields and Weight belong to the mechanism.
type PPack struct {
	Width     int
	MechID    int
	Kind      Kind
	NodeIndex []int     `desc:"CV of each site"`
	Weight    []float64 `desc:"per site: covered CV area fraction (density) or 1e3/area (point)"`
	Globals   []float64
	Fields    [][]float64

	CVToIntdom     []int
	CVToCell       []int
	Time           []float64 `desc:"per domain time, ms"`
	DtCV           []float64
	Voltage        []float64
	CurrentDensity []float64
	Conductivity   []float64
	Temperature    []float64
	Diameter       []float64

	Ions []IonView `desc:"in the order of Info.Ions"`

	TimeSinceSpike []float64
	NDetector      int
}

// scale converts kernel current units into A/m²
func (pp *PPack) scale() float64 {
	if pp.Kind == Point {
		return 1
	}
	return 10
}

// V returns the membrane potential at site i
func (pp *PPack) V(i int) float64 {
	return pp.Voltage[pp.NodeIndex[i]]
}

// Dt returns the step size at site i
func (pp *PPack) Dt(i int) float64 {
	return pp.DtCV[pp.NodeIndex[i]]
}

// T returns the time at site i
func (pp *PPack) T(i int) float64 {
	return pp.Time[pp.CVToIntdom[pp.NodeIndex[i]]]
}

// Celsius returns the temperature at site i in degrees Celsius
func (pp *PPack) Celsius(i int) float64 {
	return pp.Temperature[pp.NodeIndex[i]] - 273.15
}

// AddCurrent adds the membrane current cur and its voltage derivative g
// of site i, in kernel units (mA/cm² and S/cm², or nA and µS)
func (pp *PPack) AddCurrent(i int, cur, g float64) {
	w := pp.Weight[i] * pp.scale()
	cv := pp.NodeIndex[i]
	pp.CurrentDensity[cv] += w * cur
	pp.Conductivity[cv] += w * g
}

// AddIonCurrent adds cur (kernel units) of site i to the current of ion ii
func (pp *PPack) AddIonCurrent(ii, i int, cur float64) {
	iv := &pp.Ions[ii]
	iv.IX[iv.Index[i]] += pp.Weight[i] * pp.scale() * cur
}

// IonCurrent returns the current density of ion ii at site i in kernel
// units (mA/cm² for density kernels)
func (pp *PPack) IonCurrent(ii, i int) float64 {
	iv := &pp.Ions[ii]
	return iv.IX[iv.Index[i]] / pp.scale()
}

// Xi returns the internal concentration of ion ii at site i
func (pp *PPack) Xi(ii, i int) float64 {
	iv := &pp.Ions[ii]
	return iv.Xi[iv.Index[i]]
}

// Xo returns the external concentration of ion ii at site i
func (pp *PPack) Xo(ii, i int) float64 {
	iv := &pp.Ions[ii]
	return iv.Xo[iv.Index[i]]
}

// EX returns the reversal potential of ion ii at site i
func (pp *PPack) EX(ii, i int) float64 {
	iv := &pp.Ions[ii]
	return iv.EX[iv.Index[i]]
}

// WriteXi adds the weighted internal concentration contribution of site i
func (pp *PPack) WriteXi(ii, i int, c float64) {
	iv := &pp.Ions[ii]
	iv.Xi[iv.Index[i]] += pp.Weight[i] * c
}

// WriteXo adds the weighted external concentration contribution of site i
func (pp *PPack) WriteXo(ii, i int, c float64) {
	iv := &pp.Ions[ii]
	iv.Xo[iv.Index[i]] += pp.Weight[i] * c
}

// SetEX sets the reversal potential of ion ii at site i
func (pp *PPack) SetEX(ii, i int, e float64) {
	iv := &pp.Ions[ii]
	iv.EX[iv.Index[i]] = e
}

// Valence returns the valence of ion ii
func (pp *PPack) Valence(ii int) float64 {
	return *pp.Ions[ii].Charge
}

// TimeSinceSpikes returns the detector slots of the cell of site i,
// empty if detectors are not tracked.
func (pp *PPack) TimeSinceSpikes(i int) []float64 {
	if pp.NDetector == 0 {
		return nil
	}
	c := pp.CVToCell[pp.NodeIndex[i]]
	return pp.TimeSinceSpike[c*pp.NDetector : (c+1)*pp.NDetector]
}
