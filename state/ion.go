// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import (
	"fmt"
)

// IonConfig lists the CVs where an ion species is present and its
// initial values there.  All slices are parallel to CV.
type IonConfig struct {
	CV         []int     `desc:"CVs with this ion, in increasing order"`
	InitIConc  []float64 `desc:"internal concentration seeded every step, already scaled by the fraction of CV area not covered by concentration writers"`
	InitEConc  []float64 `desc:"external concentration seeded every step, scaled as InitIConc"`
	ResetIConc []float64 `desc:"internal concentration after reset"`
	ResetEConc []float64 `desc:"external concentration after reset"`
	InitRevPot []float64 `desc:"reversal potential after reset, mV"`
}

// IonState is the state of one ion species over the CVs where it is present
type IonState struct {
	Charge    float64   `desc:"valence"`
	NodeIndex []int     `desc:"CV of each ion entry"`
	IX        []float64 `desc:"ion current density, A/m²"`
	EX        []float64 `desc:"reversal potential, mV"`
	Xi        []float64 `desc:"internal concentration, mM"`
	Xo        []float64 `desc:"external concentration, mM"`
	InitXi    []float64
	InitXo    []float64
	ResetXi   []float64
	ResetXo   []float64
	InitEX    []float64
}

// NewIonState allocates ion state from config
func NewIonState(charge int, cfg *IonConfig) (*IonState, error) {
	n := len(cfg.CV)
	for nm, s := range map[string][]float64{
		"init internal concentration":  cfg.InitIConc,
		"init external concentration":  cfg.InitEConc,
		"reset internal concentration": cfg.ResetIConc,
		"reset external concentration": cfg.ResetEConc,
		"reversal potential":           cfg.InitRevPot,
	} {
		if len(s) != n {
			return nil, fmt.Errorf("ion state: %s has %d entries for %d CVs", nm, len(s), n)
		}
	}
	for i := 1; i < n; i++ {
		if cfg.CV[i] <= cfg.CV[i-1] {
			return nil, fmt.Errorf("ion state: CVs not strictly increasing at %d", i)
		}
	}
	is := &IonState{
		Charge:    float64(charge),
		NodeIndex: append([]int(nil), cfg.CV...),
		IX:        make([]float64, n),
		EX:        make([]float64, n),
		Xi:        make([]float64, n),
		Xo:        make([]float64, n),
		InitXi:    append([]float64(nil), cfg.InitIConc...),
		InitXo:    append([]float64(nil), cfg.InitEConc...),
		ResetXi:   append([]float64(nil), cfg.ResetIConc...),
		ResetXo:   append([]float64(nil), cfg.ResetEConc...),
		InitEX:    append([]float64(nil), cfg.InitRevPot...),
	}
	is.Reset()
	return is, nil
}

// Size returns the number of CVs with this ion
func (is *IonState) Size() int {
	return len(is.NodeIndex)
}

// Index returns the position of cv in NodeIndex, or -1
func (is *IonState) Index(cv int) int {
	lo, hi := 0, len(is.NodeIndex)
	for lo < hi {
		m := (lo + hi) / 2
		if is.NodeIndex[m] < cv {
			lo = m + 1
		} else {
			hi = m
		}
	}
	if lo < len(is.NodeIndex) && is.NodeIndex[lo] == cv {
		return lo
	}
	return -1
}

// InitConcentration seeds concentrations from the (writer scaled) initial values,
// before concentration writers add their contributions.
func (is *IonState) InitConcentration() {
	copy(is.Xi, is.InitXi)
	copy(is.Xo, is.InitXo)
}

// ZeroCurrent zeros the ion current density
func (is *IonState) ZeroCurrent() {
	for i := range is.IX {
		is.IX[i] = 0
	}
}

// Reset zeros currents and restores concentrations and reversal potential
func (is *IonState) Reset() {
	is.ZeroCurrent()
	copy(is.Xi, is.ResetXi)
	copy(is.Xo, is.ResetXo)
	copy(is.EX, is.InitEX)
}
