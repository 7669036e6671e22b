// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import (
	"math"
	"testing"

	"github.com/emer/cable/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = 1.0e-12

// twoDomains is 5 CVs: cell 0 (CVs 0-2) in domain 0, cell 1 (CVs 3-4) in domain 1
func twoDomains() *Config {
	return &Config{
		NIntdom:     2,
		NCell:       2,
		CVToIntdom:  []int{0, 0, 0, 1, 1},
		CVToCell:    []int{0, 0, 0, 1, 1},
		InitVoltage: []float64{-65, -65, -65, -70, -70},
		Temperature: []float64{300, 300, 300, 300, 300},
		Diameter:    []float64{1, 1, 1, 2, 2},
		Area:        []float64{100, 200, 300, 400, 500},
	}
}

func TestStateTime(t *testing.T) {
	st, err := New(twoDomains())
	require.NoError(t, err)
	assert.Equal(t, []float64{-65, -65, -65, -70, -70}, st.Voltage)
	st.Time[1] = 0.5
	st.UpdateTimeTo(0.25, 0.6)
	assert.Equal(t, []float64{0.25, 0.6}, st.TimeTo)
	st.SetDt()
	assert.Equal(t, 0.25, st.DtIntdom[0])
	assert.InDelta(t, 0.1, st.DtIntdom[1], difTol)
	assert.InDelta(t, 0.1, st.DtCV[4], difTol)
	assert.Equal(t, 0.25, st.DtCV[0])
	mn, mx := st.TimeBounds()
	assert.Equal(t, 0.0, mn)
	assert.Equal(t, 0.5, mx)
	st.AdvanceTime()
	assert.Equal(t, []float64{0.25, 0.6}, st.Time)

	// a step cut short off the grid ends on the next grid point
	st.Time[0], st.Time[1] = 0.3, 0.6
	st.UpdateTimeTo(0.25, 2)
	assert.InDelta(t, 0.5, st.TimeTo[0], difTol)
	assert.InDelta(t, 0.75, st.TimeTo[1], difTol)

	st.Reset()
	assert.Equal(t, []float64{0, 0}, st.Time)
}

func TestNextGridTime(t *testing.T) {
	assert.Equal(t, 0.25, NextGridTime(0, 0.25))
	assert.Equal(t, 0.5, NextGridTime(0.25, 0.25))
	assert.Equal(t, 0.5, NextGridTime(0.26, 0.25))
	assert.Equal(t, 0.5, NextGridTime(0.25-1e-14, 0.25))
	dt := 0.025
	tm := 0.0
	for i := 0; i < 1000; i++ {
		tm = NextGridTime(tm, dt)
	}
	assert.InDelta(t, 25, tm, difTol)
}

func TestStimulus(t *testing.T) {
	cfg := twoDomains()
	cfg.Stimuli = []StimConfig{
		{CV: 1, Weight: 1e3 / 200, EnvTime: []float64{1, 3, 3}, EnvAmp: []float64{0.1, 0.1, 0}},
		{CV: 4, Weight: 1e3 / 500, EnvTime: []float64{1, 3, 3}, EnvAmp: []float64{0.3, 0.3, 0}},
	}
	st, err := New(cfg)
	require.NoError(t, err)

	st.AddStimulusCurrent()
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, st.CurrentDensity)

	st.SetTime(1)
	st.AddStimulusCurrent()
	want := -0.1 / (200 * 1e-3)
	assert.InDelta(t, want, st.CurrentDensity[1], difTol)
	assert.InDelta(t, -0.3/(500*1e-3), st.CurrentDensity[4], difTol)
	assert.InDelta(t, want, st.StimCurrent[1], difTol)

	// additive
	st.AddStimulusCurrent()
	assert.InDelta(t, 2*want, st.CurrentDensity[1], difTol)

	st.ZeroCurrents()
	st.SetTime(3)
	st.AddStimulusCurrent()
	assert.Equal(t, 0.0, st.CurrentDensity[1])
	st.SetTime(10)
	st.AddStimulusCurrent()
	assert.Equal(t, 0.0, st.CurrentDensity[4])

	// domains run at their own time
	st.ZeroCurrents()
	st.Time[0], st.Time[1] = 2, 0.5
	st.AddStimulusCurrent()
	assert.InDelta(t, want, st.CurrentDensity[1], difTol)
	assert.Equal(t, 0.0, st.CurrentDensity[4])
}

func TestACStimulus(t *testing.T) {
	const (
		maxAmp  = 30.0
		maxTime = 8.0
		freq    = 20.0
		area    = 300.0
	)
	cfg := twoDomains()
	cfg.Stimuli = []StimConfig{{CV: 2, Weight: 1e3 / area, Frequency: freq,
		EnvTime: []float64{0, maxTime, maxTime}, EnvAmp: []float64{0, maxAmp, 0}}}
	st, err := New(cfg)
	require.NoError(t, err)

	expected := func(t float64) float64 {
		if t > maxTime {
			return 0
		}
		return -1e3 / area * maxAmp * t / maxTime * math.Sin(2*math.Pi*t*freq*1e-3)
	}
	for _, tm := range []float64{0, 0.8, 5.6, 8.8} {
		st.ZeroCurrents()
		st.SetTime(tm)
		st.AddStimulusCurrent()
		assert.InDelta(t, expected(tm), st.CurrentDensity[2], 1e-9, "t=%v", tm)
	}
}

func TestGapJunctionCurrent(t *testing.T) {
	cfg := twoDomains()
	cfg.GapJunctions = []GapJunction{{CV: 0, Peer: 4, Weight: 0.5}, {CV: 4, Peer: 0, Weight: 0.25}}
	st, err := New(cfg)
	require.NoError(t, err)
	st.AddGJCurrent()
	assert.InDelta(t, 0.5*5, st.CurrentDensity[0], difTol)
	assert.InDelta(t, -0.25*5, st.CurrentDensity[4], difTol)

	cfg.GapJunctions = []GapJunction{{CV: 0, Peer: 9, Weight: 1}}
	_, err = New(cfg)
	assert.Error(t, err)
}

// two writers covering 0.25 and 0.75 of a CV blend by area, the uncovered
// fraction of the initial concentration is kept
func TestIonWeightedWrite(t *testing.T) {
	const c0 = 80.0
	st, err := New(twoDomains())
	require.NoError(t, err)
	require.NoError(t, st.AddIon("ca", 2, &IonConfig{
		CV:         []int{1, 2, 3},
		InitIConc:  []float64{0, 0.75 * c0, c0},
		InitEConc:  []float64{2, 2, 2},
		ResetIConc: []float64{c0, c0, c0},
		ResetEConc: []float64{2, 2, 2},
		InitRevPot: []float64{130, 130, 130},
	}))
	ca := st.Ion("ca")
	assert.Equal(t, 2.0, ca.Charge)
	assert.Equal(t, []float64{c0, c0, c0}, ca.Xi)
	assert.Equal(t, 1, ca.Index(2))
	assert.Equal(t, -1, ca.Index(0))

	st.IonsInitConcentration()
	// writer a covers 0.25 of CV 1 and 0.25 of CV 2, writer b the rest of CV 1
	ca.Xi[0] += 0.25 * 200
	ca.Xi[1] += 0.25 * 200
	ca.Xi[0] += 0.75 * 300
	assert.InDelta(t, 0.25*200+0.75*300, ca.Xi[0], difTol)
	assert.InDelta(t, 0.75*c0+0.25*200, ca.Xi[1], difTol)
	assert.InDelta(t, c0, ca.Xi[2], difTol)

	ca.IX[1] = 3
	st.ZeroCurrents()
	assert.Equal(t, 0.0, ca.IX[1])
	ca.EX[0] = 1
	st.Reset()
	assert.Equal(t, []float64{130, 130, 130}, ca.EX)
	assert.Equal(t, []float64{c0, c0, c0}, ca.Xi)

	assert.Error(t, st.AddIon("ca", 2, &IonConfig{}))
	_, err = NewIonState(1, &IonConfig{CV: []int{1}, InitIConc: []float64{1}})
	assert.Error(t, err)
}

func TestThresholdWatcher(t *testing.T) {
	cfg := twoDomains()
	cfg.DetectorCV = []int{0, 3, 4}
	cfg.DetectorThreshold = []float64{10, 10, -80}
	cfg.DetectorCell = []int{0, 1, 1}
	cfg.DetectorLid = []int{0, 0, 1}
	cfg.NDetector = 2
	st, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, st.SrcToSpike)
	assert.Len(t, st.TimeSinceSpike, 4)
	// detector 2 starts above threshold
	assert.True(t, st.Watcher.IsCrossed[2])

	st.TimeTo[0], st.TimeTo[1] = 1, 1
	st.Voltage[0] = 35 // crosses at 75% of the step
	st.Voltage[4] = -60
	st.ClearTimeSinceSpike()
	st.TestThresholds()
	cr := st.Watcher.Crossings()
	require.Len(t, cr, 1)
	assert.Equal(t, 0, cr[0].Index)
	assert.InDelta(t, 0.75, cr[0].Time, difTol)
	assert.InDelta(t, 0.25, st.TimeSinceSpike[0], difTol)
	assert.Equal(t, -1.0, st.TimeSinceSpike[2])

	// no new crossing while above threshold, re-arms below it
	st.AdvanceTime()
	st.TimeTo[0], st.TimeTo[1] = 2, 2
	st.TestThresholds()
	assert.Len(t, st.Watcher.Crossings(), 1)
	st.Voltage[0] = 0
	st.Voltage[4] = -90
	st.AdvanceTime()
	st.TestThresholds()
	assert.False(t, st.Watcher.IsCrossed[0])
	assert.False(t, st.Watcher.IsCrossed[2])
	st.Watcher.ClearCrossings()
	assert.Empty(t, st.Watcher.Crossings())
}

func TestMechEvents(t *testing.T) {
	st, err := New(twoDomains())
	require.NoError(t, err)
	h := func(mech, idx, dom int) event.TargetHandle {
		return event.TargetHandle{MechID: mech, MechIndex: idx, Intdom: dom}
	}
	require.NoError(t, st.Events.Init([]event.DeliverableEvent{
		{Time: 0, Handle: h(2, 0, 1), Weight: 1},
		{Time: 0, Handle: h(0, 1, 0), Weight: 2},
		{Time: 0.5, Handle: h(2, 1, 0), Weight: 3},
		{Time: 0, Handle: h(2, 0, 0), Weight: 4},
	}))
	assert.Empty(t, st.MechEvents(0))
	st.Events.MarkUntilAfter(st.Time)
	assert.Len(t, st.MechEvents(0), 1)
	assert.Empty(t, st.MechEvents(1))
	m2 := st.MechEvents(2)
	require.Len(t, m2, 2)
	// domain then time order
	assert.Equal(t, 4.0, m2[0].Weight)
	assert.Equal(t, 1.0, m2[1].Weight)
	assert.Nil(t, st.MechEvents(7))

	st.Events.DropMarked()
	st.Time[0] = 1
	st.Events.MarkUntilAfter(st.Time)
	assert.Empty(t, st.MechEvents(0))
	m2 = st.MechEvents(2)
	require.Len(t, m2, 1)
	assert.Equal(t, 3.0, m2[0].Weight)
}
