// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mechs

import (
	"math"

	"github.com/emer/cable/mech"
)

// Nernst sets the reversal potential of ion x from its concentrations:
// e = 1e3·R·T/(z·F)·ln(xo/xi) mV.  Use it through a derivation that
// renames x, e.g., nernst/ca.
type Nernst struct{ mech.KernelBase }

const (
	nernstR = iota
	nernstF
)

var nernstInfo = &mech.Info{
	Name: "nernst",
	Kind: mech.ReversalPotential,
	Globals: []mech.GlobalDesc{
		{Name: "R", Default: 8.31446261815324, Units: "J/K/mol"},
		{Name: "F", Default: 96485.3321233100184, Units: "C/mol"},
	},
	Ions: []mech.IonDep{{Name: "x", ReadIConc: true, ReadEConc: true, WriteRevPot: true, ReadValence: true}},
}

func (Nernst) Info() *mech.Info { return nernstInfo }

func (nr Nernst) Init(pp *mech.PPack) {
	nr.WriteIons(pp)
}

func (Nernst) WriteIons(pp *mech.PPack) {
	r, f := pp.Globals[nernstR], pp.Globals[nernstF]
	z := pp.Valence(0)
	for i := 0; i < pp.Width; i++ {
		coeff := 1e3 * r * pp.Temperature[pp.NodeIndex[i]] / (z * f)
		pp.SetEX(0, i, coeff*math.Log(pp.Xo(0, i)/pp.Xi(0, i)))
	}
}
