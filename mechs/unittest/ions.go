// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package unittest

import (
	"math"

	"github.com/emer/cable/event"
	"github.com/emer/cable/mech"
)

// Ca is a calcium pool driven by ica that decays to minCai, writing cai
type Ca struct{ mech.KernelBase }

const (
	caGamma = iota
	caDecay
	caDepth
	caMinCai
	caCai
)

var caInfo = &mech.Info{
	Name:    "test_ca",
	Kind:    mech.Density,
	Globals: []mech.GlobalDesc{{Name: "F", Default: 96485.3321233100184, Units: "C/mol"}},
	Fields: []mech.FieldDesc{
		{Name: "gamma", Default: 0.05},
		{Name: "decay", Default: 80, Units: "ms"},
		{Name: "depth", Default: 0.1, Units: "um"},
		{Name: "minCai", Default: 1e-4, Units: "mM"},
		{Name: "cai", State: true, Units: "mM"},
	},
	Ions: []mech.IonDep{{Name: "ca", ReadIConc: true, WriteIConc: true, Valence: 2}},
}

func (Ca) Info() *mech.Info { return caInfo }

func (Ca) Init(pp *mech.PPack) {
	for i := 0; i < pp.Width; i++ {
		pp.Fields[caCai][i] = pp.Fields[caMinCai][i]
	}
}

// AdvanceState: cai' = -k·ica - (cai - minCai)/decay, exact for fixed ica
func (Ca) AdvanceState(pp *mech.PPack) {
	f := pp.Fields
	F := pp.Globals[0]
	for i := 0; i < pp.Width; i++ {
		ica := pp.IonCurrent(0, i)
		inf := f[caMinCai][i] - f[caDecay][i]*ica*1e4*f[caGamma][i]/(2*F*f[caDepth][i])
		f[caCai][i] = inf + (f[caCai][i]-inf)*math.Exp(-pp.Dt(i)/f[caDecay][i])
	}
}

func (Ca) WriteIons(pp *mech.PPack) {
	for i := 0; i < pp.Width; i++ {
		pp.WriteXi(0, i, pp.Fields[caCai][i])
	}
}

// CaReadValence records the valence of the ion bound as ca in record_z
type CaReadValence struct{ mech.KernelBase }

var caReadValenceInfo = &mech.Info{
	Name:   "test_ca_read_valence",
	Kind:   mech.Density,
	Fields: []mech.FieldDesc{{Name: "record_z", State: true}},
	Ions:   []mech.IonDep{{Name: "ca", ReadValence: true}},
}

func (CaReadValence) Info() *mech.Info { return caReadValenceInfo }

func (CaReadValence) Init(pp *mech.PPack) {
	for i := 0; i < pp.Width; i++ {
		pp.Fields[0][i] = pp.Valence(0)
	}
}

// ReadCaiInit copies cai into s at initialization and every step
type ReadCaiInit struct{ mech.KernelBase }

var readCaiInitInfo = &mech.Info{
	Name:   "read_cai_init",
	Kind:   mech.Density,
	Fields: []mech.FieldDesc{{Name: "s", State: true}},
	Ions:   []mech.IonDep{{Name: "ca", ReadIConc: true}},
}

func (ReadCaiInit) Info() *mech.Info { return readCaiInitInfo }

func (ReadCaiInit) Init(pp *mech.PPack) {
	for i := 0; i < pp.Width; i++ {
		pp.Fields[0][i] = pp.Xi(0, i)
	}
}

func (rc ReadCaiInit) AdvanceState(pp *mech.PPack) {
	rc.Init(pp)
}

// WriteCaiBreakpoint writes a fixed cai = 5.2e-4 mM
type WriteCaiBreakpoint struct{ mech.KernelBase }

const writeCai = 5.2e-4

var writeCaiBreakpointInfo = &mech.Info{
	Name:   "write_cai_breakpoint",
	Kind:   mech.Density,
	Fields: []mech.FieldDesc{{Name: "cai", State: true, Units: "mM"}},
	Ions:   []mech.IonDep{{Name: "ca", WriteIConc: true}},
}

func (WriteCaiBreakpoint) Info() *mech.Info { return writeCaiBreakpointInfo }

func (WriteCaiBreakpoint) Init(pp *mech.PPack) {
	for i := 0; i < pp.Width; i++ {
		pp.Fields[0][i] = writeCai
	}
}

func (wc WriteCaiBreakpoint) ComputeCurrents(pp *mech.PPack) {
	wc.Init(pp)
}

func (WriteCaiBreakpoint) WriteIons(pp *mech.PPack) {
	for i := 0; i < pp.Width; i++ {
		pp.WriteXi(0, i, pp.Fields[0][i])
	}
}

// FixedIcaCurrent is a constant calcium current density (mA/cm²)
type FixedIcaCurrent struct{ mech.KernelBase }

var fixedIcaCurrentInfo = &mech.Info{
	Name:   "fixed_ica_current",
	Kind:   mech.Density,
	Fields: []mech.FieldDesc{{Name: "current_density", Units: "mA/cm2"}},
	Ions:   []mech.IonDep{{Name: "ca", WriteCurrent: true}},
}

func (FixedIcaCurrent) Info() *mech.Info { return fixedIcaCurrentInfo }

func (FixedIcaCurrent) ComputeCurrents(pp *mech.PPack) {
	for i := 0; i < pp.Width; i++ {
		cd := pp.Fields[0][i]
		pp.AddIonCurrent(0, i, cd)
		pp.AddCurrent(i, cd, 0)
	}
}

// LinearCaConc integrates cai' = -coeff·ica from cai = 0, writing cai
type LinearCaConc struct{ mech.KernelBase }

const (
	linCoeff = iota
	linCai
)

var linearCaConcInfo = &mech.Info{
	Name: "linear_ca_conc",
	Kind: mech.Density,
	Fields: []mech.FieldDesc{
		{Name: "coeff"},
		{Name: "cai", State: true, Units: "mM"},
	},
	Ions: []mech.IonDep{{Name: "ca", WriteIConc: true}},
}

func (LinearCaConc) Info() *mech.Info { return linearCaConcInfo }

func (LinearCaConc) Init(pp *mech.PPack) {
	for i := 0; i < pp.Width; i++ {
		pp.Fields[linCai][i] = 0
	}
}

func (LinearCaConc) AdvanceState(pp *mech.PPack) {
	f := pp.Fields
	for i := 0; i < pp.Width; i++ {
		f[linCai][i] -= f[linCoeff][i] * pp.IonCurrent(0, i) * pp.Dt(i)
	}
}

func (LinearCaConc) WriteIons(pp *mech.PPack) {
	for i := 0; i < pp.Width; i++ {
		pp.WriteXi(0, i, pp.Fields[linCai][i])
	}
}

// PointIcaCurrent is a point calcium current (nA) that sums event weights
type PointIcaCurrent struct{ mech.KernelBase }

var pointIcaCurrentInfo = &mech.Info{
	Name:   "point_ica_current",
	Kind:   mech.Point,
	Fields: []mech.FieldDesc{{Name: "ica_nA", State: true, Units: "nA"}},
	Ions:   []mech.IonDep{{Name: "ca", WriteCurrent: true}},
}

func (PointIcaCurrent) Info() *mech.Info { return pointIcaCurrentInfo }

func (PointIcaCurrent) Init(pp *mech.PPack) {
	for i := 0; i < pp.Width; i++ {
		pp.Fields[0][i] = 0
	}
}

func (PointIcaCurrent) ComputeCurrents(pp *mech.PPack) {
	for i := 0; i < pp.Width; i++ {
		c := pp.Fields[0][i]
		pp.AddIonCurrent(0, i, c)
		pp.AddCurrent(i, c, 0)
	}
}

func (PointIcaCurrent) ApplyEvents(pp *mech.PPack, evs []event.DeliverableEvent) {
	for _, ev := range evs {
		pp.Fields[0][ev.Handle.MechIndex] += ev.Weight
	}
}
