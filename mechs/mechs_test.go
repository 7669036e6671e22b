// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mechs

import (
	"math"
	"testing"

	"github.com/emer/cable/event"
	"github.com/emer/cable/mech"
	"github.com/emer/cable/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const difTol = 1e-10

// oneCV returns a single CV state at v mV and 6.3 C, with the default
// sodium, potassium and calcium ions
func oneCV(t *testing.T, v float64) *state.State {
	st, err := state.New(&state.Config{
		NIntdom:     1,
		NCell:       1,
		CVToIntdom:  []int{0},
		CVToCell:    []int{0},
		InitVoltage: []float64{v},
		Temperature: []float64{279.45},
		Diameter:    []float64{10},
		Area:        []float64{100},
	})
	require.NoError(t, err)
	add := func(nm string, z int, xi, xo, e float64) {
		require.NoError(t, st.AddIon(nm, z, &state.IonConfig{
			CV: []int{0}, InitIConc: []float64{xi}, InitEConc: []float64{xo},
			ResetIConc: []float64{xi}, ResetEConc: []float64{xo}, InitRevPot: []float64{e},
		}))
	}
	add("na", 1, 10, 140, 50)
	add("k", 1, 54.4, 2.5, -77)
	add("ca", 2, 5e-5, 2, 132.5)
	return st
}

func instance(t *testing.T, st *state.State, name string, w float64) mech.Mechanism {
	m, ov, err := Default().Instance(name, nil)
	require.NoError(t, err)
	require.NoError(t, m.Instantiate(0, st, ov, &mech.Layout{CV: []int{0}, Weight: []float64{w}}))
	return m
}

func step(st *state.State, dt float64) {
	st.UpdateTimeTo(dt, math.Inf(1))
	st.SetDt()
}

func TestDefaultCatalogue(t *testing.T) {
	ct := Default()
	assert.Equal(t, []string{"exp2syn", "expsyn", "gabab", "hh", "nernst", "nernst/ca", "nernst/k", "nernst/na", "nmda", "pas"}, ct.Names())
	inf, err := ct.Info("nernst/ca")
	require.NoError(t, err)
	assert.Equal(t, "ca", inf.Ions[0].Name)
	assert.Equal(t, mech.ReversalPotential, inf.Kind)
}

func TestPas(t *testing.T) {
	st := oneCV(t, -60)
	m := instance(t, st, "pas", 0.5)
	m.Initialize()
	m.UpdateCurrent()
	assert.InDelta(t, 10*0.5*0.001*10, st.CurrentDensity[0], difTol)
	assert.InDelta(t, 10*0.5*0.001, st.Conductivity[0], difTol)
}

func TestHHRest(t *testing.T) {
	st := oneCV(t, -65)
	m := instance(t, st, "hh", 1)
	m.Initialize()
	m.UpdateCurrent()
	// resting potential of the squid axon model
	assert.InDelta(t, 0, st.CurrentDensity[0], 1e-2)
	assert.Greater(t, st.Conductivity[0], 0.0)

	dg := m.Diagnostics()
	m0, _ := dg.Field("m")
	mInit := m0[0]
	step(st, 0.025)
	for i := 0; i < 100; i++ {
		m.UpdateState()
	}
	mv, _ := dg.Field("m")
	assert.InDelta(t, mInit, mv[0], 1e-9)
	for _, nm := range []string{"m", "h", "n"} {
		g, _ := dg.Field(nm)
		assert.True(t, g[0] > 0 && g[0] < 1, nm)
	}
}

func TestHHDepolarized(t *testing.T) {
	st := oneCV(t, -65)
	m := instance(t, st, "hh", 1)
	m.Initialize()
	st.Voltage[0] = 0
	step(st, 0.025)
	dg := m.Diagnostics()
	m0, _ := dg.Field("m")
	mr := m0[0]
	m.UpdateState()
	m1, _ := dg.Field("m")
	assert.Greater(t, m1[0], mr)
}

func TestExpSyn(t *testing.T) {
	st := oneCV(t, -65)
	m := instance(t, st, "expsyn", 10)
	m.Initialize()
	require.NoError(t, st.Events.Init([]event.DeliverableEvent{{Time: 0, Weight: 0.5}}))
	step(st, 0.1)
	st.Events.MarkUntilAfter(st.Time)
	m.DeliverEvents()
	m.UpdateCurrent()
	assert.InDelta(t, 10*0.5*(-65), st.CurrentDensity[0], difTol)
	m.UpdateState()
	g, _ := m.Diagnostics().Field("g")
	assert.InDelta(t, 0.5*math.Exp(-0.1/2), g[0], difTol)
}

func TestExp2SynPeak(t *testing.T) {
	st := oneCV(t, -65)
	m := instance(t, st, "exp2syn", 10)
	m.Initialize()
	require.NoError(t, st.Events.Init([]event.DeliverableEvent{{Time: 0, Weight: 1}}))
	st.Events.MarkUntilAfter(st.Time)
	m.DeliverEvents()
	step(st, 0.001)
	dg := m.Diagnostics()
	peak := 0.0
	for i := 0; i < 5000; i++ {
		m.UpdateState()
		a, _ := dg.Field("A")
		b, _ := dg.Field("B")
		peak = math.Max(peak, b[0]-a[0])
	}
	assert.InDelta(t, 1, peak, 1e-4)
}

func TestNernst(t *testing.T) {
	st := oneCV(t, -65)
	m := instance(t, st, "nernst/ca", 1)
	m.Initialize()
	R, F := 8.31446261815324, 96485.3321233100184
	want := 1e3 * R * 279.45 / (2 * F) * math.Log(2/5e-5)
	assert.InDelta(t, want, st.Ion("ca").EX[0], 1e-9)

	st.Ion("ca").Xi[0] = 1e-4
	m.UpdateIons()
	assert.InDelta(t, 1e3*R*279.45/(2*F)*math.Log(2/1e-4), st.Ion("ca").EX[0], 1e-9)
}

func TestNMDABlock(t *testing.T) {
	// block is relieved by depolarization
	assert.Less(t, MgBlock(-65, 1), 0.1)
	assert.Greater(t, MgBlock(0, 1), 0.75)
	assert.InDelta(t, 1, MgBlock(-65, 0), difTol)

	st := oneCV(t, -65)
	m := instance(t, st, "nmda", 10)
	m.Initialize()
	require.NoError(t, st.Events.Init([]event.DeliverableEvent{{Time: 0, Weight: 0.5}}))
	step(st, 0.1)
	st.Events.MarkUntilAfter(st.Time)
	m.DeliverEvents()
	m.UpdateCurrent()
	gb := 0.5 * MgBlock(-65, 1)
	assert.InDelta(t, 10*gb*(-65), st.CurrentDensity[0], difTol)
	assert.InDelta(t, 10*gb, st.Conductivity[0], difTol)
	m.UpdateState()
	g, _ := m.Diagnostics().Field("g")
	assert.InDelta(t, 0.5*math.Exp(-0.1/100), g[0], difTol)
}

func TestGABABPeak(t *testing.T) {
	st := oneCV(t, -65)
	m := instance(t, st, "gabab", 1)
	m.Initialize()
	require.NoError(t, st.Events.Init([]event.DeliverableEvent{{Time: 0, Weight: 1}}))
	st.Events.MarkUntilAfter(st.Time)
	m.DeliverEvents()
	dg := m.Diagnostics()
	g, _ := dg.Field("g")
	dt := 0.01
	step(st, dt)
	peak, tpeak := 0.0, 0.0
	for i := 1; i <= 20000; i++ {
		m.UpdateState()
		if g[0] > peak {
			peak, tpeak = g[0], float64(i)*dt
		}
	}
	assert.InDelta(t, 1, peak, 1e-6)
	assert.InDelta(t, GABABMaxTime(45, 50), tpeak, dt)

	// outward at rest, with the rectified chord conductance
	st.ZeroCurrents()
	m.UpdateCurrent()
	gr := g[0] * GABABGFmV(-65)
	assert.InDelta(t, gr*(-65+90), st.CurrentDensity[0], difTol)
	assert.Greater(t, st.CurrentDensity[0], 0.0)
}
