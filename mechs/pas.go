// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mechs

import "github.com/emer/cable/mech"

// Pas is a passive leak: i = g*(v - e)
type Pas struct{ mech.KernelBase }

const (
	pasG = iota
	pasE
)

var pasInfo = &mech.Info{
	Name: "pas",
	Kind: mech.Density,
	Fields: []mech.FieldDesc{
		{Name: "g", Default: 0.001, Units: "S/cm2"},
		{Name: "e", Default: -70, Units: "mV"},
	},
}

func (Pas) Info() *mech.Info { return pasInfo }

func (Pas) ComputeCurrents(pp *mech.PPack) {
	g, e := pp.Fields[pasG], pp.Fields[pasE]
	for i := 0; i < pp.Width; i++ {
		pp.AddCurrent(i, g[i]*(pp.V(i)-e[i]), g[i])
	}
}
