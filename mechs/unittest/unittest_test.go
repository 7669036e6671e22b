// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package unittest

import (
	"errors"
	"math"
	"testing"

	"github.com/emer/cable/event"
	"github.com/emer/cable/mech"
	"github.com/emer/cable/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const difTol = 1e-12

type ionInit struct {
	name   string
	charge int
	init   float64
	reset  float64
}

// newState returns a single domain, single cell state of ncv CVs with
// area 100 µm², with the given ions present everywhere
func newState(t *testing.T, ncv int, cfg *state.Config, ions ...ionInit) *state.State {
	cvs := make([]int, ncv)
	fill := func(v float64) []float64 {
		s := make([]float64, ncv)
		for i := range s {
			s[i] = v
		}
		return s
	}
	for i := range cvs {
		cvs[i] = i
	}
	if cfg == nil {
		cfg = &state.Config{}
	}
	cfg.NIntdom, cfg.NCell = 1, 1
	cfg.CVToIntdom = make([]int, ncv)
	cfg.CVToCell = make([]int, ncv)
	cfg.InitVoltage = fill(-65)
	cfg.Temperature = fill(279.45)
	cfg.Diameter = fill(1)
	cfg.Area = fill(100)
	st, err := state.New(cfg)
	require.NoError(t, err)
	for _, ii := range ions {
		require.NoError(t, st.AddIon(ii.name, ii.charge, &state.IonConfig{
			CV: cvs, InitIConc: fill(ii.init), InitEConc: fill(2),
			ResetIConc: fill(ii.reset), ResetEConc: fill(2), InitRevPot: fill(0),
		}))
	}
	return st
}

func instantiate(t *testing.T, ct *mech.Catalogue, st *state.State, id int, name string, cvs []int, w float64) mech.Mechanism {
	m, ov, err := ct.Instance(name, nil)
	require.NoError(t, err)
	ws := make([]float64, len(cvs))
	for i := range ws {
		ws[i] = w
	}
	require.NoError(t, m.Instantiate(id, st, ov, &mech.Layout{CV: cvs, Weight: ws}))
	return m
}

func field(m mech.Mechanism, nm string) []float64 {
	f, _ := m.Diagnostics().Field(nm)
	return f
}

func TestIonicConcentrations(t *testing.T) {
	ct := Catalogue()
	st := newState(t, 4, nil, ionInit{"ca", 2, 2.3e-4, 2.3e-4})
	read := instantiate(t, ct, st, 0, "read_cai_init", []int{0, 1, 2, 3}, 1)
	write := instantiate(t, ct, st, 1, "write_cai_breakpoint", []int{0, 1, 2, 3}, 1)

	read.Initialize()
	write.Initialize()
	for _, s := range field(read, "s") {
		assert.InDelta(t, 2.3e-4, s, difTol)
	}

	st.UpdateTimeTo(0.1, 1)
	st.SetDt()
	write.UpdateCurrent()
	st.IonsInitConcentration()
	write.UpdateIons()
	read.UpdateState()
	// unscaled seed plus the writer contribution
	for _, s := range field(read, "s") {
		assert.InDelta(t, 7.5e-4, s, difTol)
	}
}

func TestReadValence(t *testing.T) {
	ct := Catalogue()
	require.NoError(t, ct.Derive("na_read_valence", "test_ca_read_valence", nil, map[string]string{"ca": "na"}))
	require.NoError(t, ct.Derive("mn_read_valence", "na_read_valence", nil, map[string]string{"na": "mn"}))
	st := newState(t, 1, nil, ionInit{"ca", 2, 1, 1}, ionInit{"na", 1, 1, 1}, ionInit{"mn", 7, 1, 1})

	for nm, z := range map[string]float64{"test_ca_read_valence": 2, "na_read_valence": 1, "mn_read_valence": 7} {
		m := instantiate(t, ct, st, 0, nm, []int{0}, 1)
		m.Initialize()
		assert.Equal(t, []float64{z}, field(m, "record_z"), nm)
	}
}

func TestValenceCheck(t *testing.T) {
	ct := Catalogue()
	require.NoError(t, ct.Derive("na_kinlva", "test_kinlva", nil, map[string]string{"ca": "na"}))
	st := newState(t, 1, nil, ionInit{"ca", 2, 1, 1}, ionInit{"na", 1, 1, 1})
	m := instantiate(t, ct, st, 0, "test_kinlva", []int{0}, 1)
	m.Initialize()
	for _, nm := range []string{"m", "h"} {
		g := field(m, nm)[0]
		assert.True(t, g > 0 && g < 1, nm)
	}
	m.UpdateCurrent()
	assert.Greater(t, st.Conductivity[0], 0.0)

	m, ov, err := ct.Instance("na_kinlva", nil)
	require.NoError(t, err)
	err = m.Instantiate(0, st, ov, &mech.Layout{CV: []int{0}, Weight: []float64{1}})
	assert.True(t, errors.Is(err, mech.ErrIonValence))
}

func TestKin1(t *testing.T) {
	st := newState(t, 1, nil)
	m := instantiate(t, Catalogue(), st, 0, "test_kin1", []int{0}, 1)
	m.Initialize()
	st.UpdateTimeTo(0.1, 10)
	st.SetDt()
	for i := 0; i < 10; i++ {
		m.UpdateState()
	}
	aeq := 0.01 / 3
	a := field(m, "a")[0]
	assert.InDelta(t, aeq+(0.01-aeq)*math.Exp(-0.3), a, 1e-12)
	assert.InDelta(t, 0.01, a+field(m, "b")[0], 1e-15)

	m.UpdateCurrent()
	assert.InDelta(t, 10*a, st.CurrentDensity[0], difTol)
	assert.Equal(t, 0.0, st.Conductivity[0])
}

func TestIcaWriters(t *testing.T) {
	ct := Catalogue()
	st := newState(t, 2, nil, ionInit{"ca", 2, 0, 0})
	fixed := instantiate(t, ct, st, 0, "fixed_ica_current", []int{0, 1}, 1)
	lin := instantiate(t, ct, st, 1, "linear_ca_conc", []int{0, 1}, 1)
	require.NoError(t, fixed.SetParameter("current_density", []float64{-0.5, -1}))
	require.NoError(t, lin.SetParameter("coeff", []float64{2, 2}))
	fixed.Initialize()
	lin.Initialize()

	st.UpdateTimeTo(0.1, 1)
	st.SetDt()
	st.ZeroCurrents()
	fixed.UpdateCurrent()
	ca := st.Ion("ca")
	assert.InDelta(t, -5, ca.IX[0], difTol)
	assert.InDelta(t, -10, st.CurrentDensity[1], difTol)

	lin.UpdateState()
	st.IonsInitConcentration()
	lin.UpdateIons()
	assert.InDelta(t, 0.1, ca.Xi[0], difTol)
	assert.InDelta(t, 0.2, ca.Xi[1], difTol)
}

func TestPointIcaCurrent(t *testing.T) {
	st := newState(t, 2, nil, ionInit{"ca", 2, 0, 0})
	m := instantiate(t, Catalogue(), st, 3, "point_ica_current", []int{1}, 1e3/100)
	m.Initialize()
	require.NoError(t, st.Events.Init([]event.DeliverableEvent{
		{Time: 0, Handle: event.TargetHandle{MechID: 3}, Weight: 3},
	}))
	st.Events.MarkUntilAfter(st.Time)
	m.DeliverEvents()
	m.UpdateCurrent()
	// nA over 100 µm² -> 10 A/m² per nA
	assert.InDelta(t, 30, st.Ion("ca").IX[1], difTol)
	assert.InDelta(t, 30, st.CurrentDensity[1], difTol)
	assert.Equal(t, 0.0, st.CurrentDensity[0])
}

func TestCaPool(t *testing.T) {
	st := newState(t, 1, nil, ionInit{"ca", 2, 0, 0})
	m := instantiate(t, Catalogue(), st, 0, "test_ca", []int{0}, 1)
	m.Initialize()
	st.UpdateTimeTo(0.1, 1)
	st.SetDt()
	m.UpdateState()
	assert.InDelta(t, 1e-4, field(m, "cai")[0], difTol)

	// inward current raises the concentration
	st.Ion("ca").IX[0] = -10
	m.UpdateState()
	assert.Greater(t, field(m, "cai")[0], 1e-4)
	st.IonsInitConcentration()
	m.UpdateIons()
	assert.Equal(t, field(m, "cai")[0], st.Ion("ca").Xi[0])
}

func TestPostEvents(t *testing.T) {
	st := newState(t, 2, &state.Config{
		DetectorCV:        []int{0, 1},
		DetectorThreshold: []float64{-10, -10},
		DetectorCell:      []int{0, 0},
		DetectorLid:       []int{0, 1},
		NDetector:         2,
	})
	m := instantiate(t, Catalogue(), st, 0, "post_events_syn", []int{1}, 10)
	m.Initialize()
	assert.Equal(t, []int{0, 1}, st.SrcToSpike)

	m.PostEvent()
	assert.Equal(t, 0.0, field(m, "count")[0])

	st.TimeSinceSpike[1] = 2
	m.PostEvent()
	assert.Equal(t, 1.0, field(m, "count")[0])
	assert.InDelta(t, math.Exp(-0.2), field(m, "trace")[0], difTol)

	st.UpdateTimeTo(10, 100)
	st.SetDt()
	m.UpdateState()
	assert.InDelta(t, math.Exp(-1.2), field(m, "trace")[0], difTol)
}
