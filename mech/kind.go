// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

import "github.com/goki/ki/kit"

// Kind of mechanism, which determines how sites are laid out and scaled
type Kind int32

//go:generate stringer -type=Kind

var KiT_Kind = kit.Enums.AddEnum(KindN, kit.NotBitFlag, nil)

func (ev Kind) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Kind) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Density mechanisms are painted over regions, one site per CV with
	// weight = fraction of the CV area covered
	Density Kind = iota

	// Point mechanisms are placed at locations, one site per placement with
	// weight = 1e3/area(CV), and receive events
	Point

	// ReversalPotential mechanisms set the reversal potential of one ion
	// everywhere it is present, after ion concentrations are updated
	ReversalPotential

	KindN
)
