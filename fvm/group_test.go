// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import (
	"math"
	"testing"

	"github.com/emer/cable/morph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hhChain is n HH somas connected 0 -> 1 -> ... by expsyn synapses with
// the given delay.  Cell 0 is driven by a brief current pulse.
func hhChain(n int, delay float64) *CellRecipe {
	cells := make([]*morph.Cell, n)
	for i := range cells {
		c := somaCell()
		c.Decor.Paint(morph.AllRegion(), morph.Mech("hh"))
		c.Decor.Place(morph.Loc(0, 0.5), morph.Mech("expsyn"))
		c.Decor.Place(morph.Loc(0, 0.5), morph.ThresholdDetector{Threshold: -10})
		cells[i] = c
	}
	cells[0].Decor.Place(morph.Loc(0, 0.5), morph.NewIClamp(1, 1, 0.5))
	rec := NewCellRecipe(cells...)
	for i := 1; i < n; i++ {
		rec.Connect(i, Connection{Source: CellMember{i - 1, 0}, Dest: 0, Weight: 0.01, Delay: delay})
	}
	return rec
}

// firstSpikes returns the time of the first spike of each gid
func firstSpikes(spks []Spike, n int) []float64 {
	ts := make([]float64, n)
	for i := range ts {
		ts[i] = math.Inf(1)
	}
	for _, sp := range spks {
		ts[sp.Source.Gid] = math.Min(ts[sp.Source.Gid], sp.Time)
	}
	return ts
}

func TestGroupChain(t *testing.T) {
	rec := hhChain(3, 5)
	reg := prometheus.NewRegistry()
	mt, err := NewMetrics(reg)
	require.NoError(t, err)
	g, err := NewGroup(rec, nil, nil, nil, mt)
	require.NoError(t, err)
	assert.Equal(t, 5.0, g.MinDelay)

	var cb []Spike
	g.SetSpikeCallback(func(spks []Spike) { cb = append(cb, spks...) })
	tm, err := g.Run(30, 0.025)
	require.NoError(t, err)
	assert.InDelta(t, 30, tm, difTol)

	spks := g.Spikes()
	assert.Equal(t, spks, cb)
	fs := firstSpikes(spks, 3)
	assert.Greater(t, fs[0], 1.0)
	assert.Greater(t, fs[1], fs[0]+5)
	assert.Greater(t, fs[2], fs[1]+5)
	assert.Less(t, fs[2], 30.0)

	assert.Equal(t, float64(len(spks)), testutil.ToFloat64(mt.Spikes))
	assert.Greater(t, testutil.ToFloat64(mt.Steps), 1000.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(mt.Events), float64(2))
}

func TestGroupRestart(t *testing.T) {
	dt := 1.0 / 32
	for _, tc := range []struct{ bin, delay float64 }{{0, 5}, {dt, 5}, {0, 4.1}} {
		bin := tc.bin
		pr := NewParams()
		pr.BinInterval = bin
		g, err := NewGroup(hhChain(4, tc.delay), nil, nil, pr, nil)
		require.NoError(t, err)

		_, err = g.Run(40, dt)
		require.NoError(t, err)
		whole := append([]Spike(nil), g.Spikes()...)
		require.NotEmpty(t, whole)

		g.Reset()
		assert.Empty(t, g.Spikes())
		for _, tf := range []float64{10.5, 17, 40} {
			tm, err := g.Run(tf, dt)
			require.NoError(t, err)
			assert.Equal(t, tf, tm)
		}
		split := g.Spikes()
		require.Equal(t, len(whole), len(split), "bin %g delay %g", bin, tc.delay)
		for i := range whole {
			assert.Equal(t, whole[i].Source, split[i].Source)
			assert.InDelta(t, whole[i].Time, split[i].Time, difTol, "bin %g delay %g: spike %d", bin, tc.delay, i)
		}
	}
}

func TestEpochEnd(t *testing.T) {
	dt := 1.0 / 32
	assert.Equal(t, 2.5, epochEnd(0, 2.5, dt))
	assert.Equal(t, 2.03125, epochEnd(0, 2.05, dt))
	assert.Equal(t, 12.53125, epochEnd(10.5, 2.05, dt))
	assert.Equal(t, 0.01, epochEnd(0, 0.01, dt))
}

func TestGroupDerivedMechs(t *testing.T) {
	ct := unitCatalogue(t)
	require.NoError(t, ct.Derive("custom_kin1", "test_kin1", map[string]float64{"tau": 20}, nil))
	cells := make([]*morph.Cell, 3)
	for i := range cells {
		cells[i] = somaCell()
	}
	cells[0].Decor.Paint(morph.AllRegion(), morph.Mech("test_kin1"))
	cells[1].Decor.Paint(morph.AllRegion(), morph.Mech("custom_kin1"))
	cells[2].Decor.Paint(morph.AllRegion(), morph.Mech("test_kin1"))
	cells[2].Decor.Paint(morph.AllRegion(), morph.Mech("custom_kin1"))
	rec := NewCellRecipe(cells...)
	rec.Catalogue = ct
	for gid := range cells {
		rec.AddProbe(gid, ProbeInfo{Kind: TotalIonicCurrentDensity, Loc: morph.Loc(0, 0.5), Tag: "ionic"})
	}

	g, err := NewGroup(rec, nil, nil, nil, nil)
	require.NoError(t, err)
	tt := NewTraceTable("derived")
	n := g.AddSampler(AllProbes, NewExplicitSchedule(10, 20), tt.Sampler())
	assert.Equal(t, 3, n)
	_, err = g.Run(21, 1.0/1024)
	require.NoError(t, err)
	assert.Equal(t, 6, tt.Table.Rows)

	vals := make([][]float64, 3)
	for gid := range vals {
		ts, vs := tt.Values(ProbeAddress{gid, 0})
		assert.Equal(t, []float64{10, 20}, ts)
		vals[gid] = vs
	}
	assert.Greater(t, vals[0][0], 0.0)
	assert.InDelta(t, vals[0][0], vals[1][1], difTol)
	assert.InDelta(t, vals[0][0]+vals[1][0], vals[2][0], difTol)
	assert.Equal(t, "ionic", tt.Table.CellString("Tag", 0))
}

func TestGroupGenerator(t *testing.T) {
	c := somaCell()
	c.Decor.Paint(morph.AllRegion(), morph.Mech("pas"))
	c.Decor.Place(morph.Loc(0, 0.5), morph.Mech("expsyn"))
	rec := NewCellRecipe(c)
	rec.AddGenerator(0, &ExplicitGenerator{Evs: []GenEvent{{Target: 0, Time: 1, Weight: 0.01}}})
	rec.AddProbe(0, ProbeInfo{Kind: PointState, Target: 0, Field: "g"})
	rec.AddProbe(0, ProbeInfo{Kind: MembraneVoltage, Loc: morph.Loc(0, 0.5)})

	g, err := NewGroup(rec, nil, nil, nil, nil)
	require.NoError(t, err)
	var recs []SampleRecord
	n := g.AddSampler(OneProbe(ProbeAddress{0, 0}), NewExplicitSchedule(0.5, 1.51), func(pm ProbeMetadata, n int, rs []SampleRecord) {
		assert.Equal(t, PointState, pm.Info.Kind)
		recs = append(recs, rs[:n]...)
	})
	assert.Equal(t, 1, n)
	vt := NewTraceTable("v")
	g.AddSampler(OneProbe(ProbeAddress{0, 1}), NewRegularSchedule(0, 1), vt.Sampler())

	_, err = g.Run(3, 0.025)
	require.NoError(t, err)
	require.Equal(t, 2, len(recs))
	assert.Equal(t, 0.0, recs[0].Value)
	assert.InDelta(t, 0.01*math.Exp(-0.5/2), recs[1].Value, 1e-6)
	_, vs := vt.Values(ProbeAddress{0, 1})
	require.Equal(t, 3, len(vs))
	assert.InDelta(t, -65, vs[0], difTol)
	// excitatory synapse depolarizes
	assert.Greater(t, vs[2], vs[1])

	// generators restart on reset
	g.Reset()
	recs = nil
	_, err = g.Run(3, 0.025)
	require.NoError(t, err)
	require.Equal(t, 2, len(recs))
	assert.InDelta(t, 0.01*math.Exp(-0.5/2), recs[1].Value, 1e-6)
}
