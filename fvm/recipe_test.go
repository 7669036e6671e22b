// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import (
	"errors"
	"testing"

	"github.com/emer/cable/mech"
	"github.com/emer/cable/morph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// miscountRecipe reports wrong source and target counts for gid 0
type miscountRecipe struct {
	*CellRecipe
	dsrc, dtgt int
}

func (mr *miscountRecipe) NumSources(gid int) int {
	n := mr.CellRecipe.NumSources(gid)
	if gid == 0 {
		n += mr.dsrc
	}
	return n
}

func (mr *miscountRecipe) NumTargets(gid int) int {
	n := mr.CellRecipe.NumTargets(gid)
	if gid == 0 {
		n += mr.dtgt
	}
	return n
}

func synCell() *morph.Cell {
	c := somaCell()
	c.Decor.Paint(morph.AllRegion(), morph.Mech("pas"))
	c.Decor.Place(morph.Loc(0, 0.5), morph.Mech("expsyn"))
	c.Decor.Place(morph.Loc(0, 0.5), morph.ThresholdDetector{Threshold: -10})
	c.Decor.Place(morph.Loc(0, 0.5), morph.GapJunctionSite{})
	return c
}

func TestCellRecipe(t *testing.T) {
	rec := NewCellRecipe(synCell(), somaCell())
	assert.Equal(t, 2, rec.NumCells())
	assert.Equal(t, 1, rec.NumSources(0))
	assert.Equal(t, 1, rec.NumTargets(0))
	assert.Equal(t, 0, rec.NumTargets(1))
	_, err := rec.CellDescription(2)
	assert.Error(t, err)
	assert.Equal(t, "3:1", CellMember{3, 1}.String())
}

func TestDescriptionMismatch(t *testing.T) {
	_, err := NewLowered(nil, nil).Initialize([]int{0}, &miscountRecipe{CellRecipe: NewCellRecipe(synCell()), dsrc: 1})
	assert.ErrorIs(t, err, ErrBadSourceDescription)
	_, err = NewLowered(nil, nil).Initialize([]int{0}, &miscountRecipe{CellRecipe: NewCellRecipe(synCell()), dtgt: -1})
	assert.ErrorIs(t, err, ErrBadTargetDescription)

	var ce mech.ConfigError
	assert.True(t, errors.As(err, &ce))
}

func TestGapJunctionErrors(t *testing.T) {
	rec := NewCellRecipe(synCell(), synCell())
	rec.AddGapJunction(0, GapJunctionConnection{Peer: CellMember{1, 3}, Conductance: 1})
	_, err := NewLowered(nil, nil).Initialize([]int{0, 1}, rec)
	assert.ErrorIs(t, err, ErrBadGapJunctionLid)

	rec = NewCellRecipe(synCell(), synCell())
	rec.AddGapJunction(0, GapJunctionConnection{Peer: CellMember{1, 0}, Local: 2, Conductance: 1})
	_, err = NewLowered(nil, nil).Initialize([]int{0, 1}, rec)
	assert.ErrorIs(t, err, ErrBadGapJunctionLid)

	rec = NewCellRecipe(synCell(), synCell())
	rec.AddGapJunction(0, GapJunctionConnection{Peer: CellMember{7, 0}, Conductance: 1})
	_, err = NewLowered(nil, nil).Initialize([]int{0, 1}, rec)
	assert.ErrorIs(t, err, ErrUnknownGapJunctionPeer)
}

func TestCheckConnections(t *testing.T) {
	for _, tc := range []struct {
		name string
		cn   Connection
		err  error
	}{
		{"ok", Connection{Source: CellMember{1, 0}, Dest: 0, Weight: 1, Delay: 1}, nil},
		{"source gid", Connection{Source: CellMember{5, 0}, Dest: 0, Weight: 1, Delay: 1}, ErrBadConnectionSourceGid},
		{"source lid", Connection{Source: CellMember{1, 1}, Dest: 0, Weight: 1, Delay: 1}, ErrBadConnectionSourceLid},
		{"target lid", Connection{Source: CellMember{1, 0}, Dest: 1, Weight: 1, Delay: 1}, ErrBadConnectionTargetLid},
		{"delay", Connection{Source: CellMember{1, 0}, Dest: 0, Weight: 1, Delay: 0}, ErrBadConnectionDelay},
	} {
		rec := NewCellRecipe(synCell(), synCell())
		rec.Connect(0, tc.cn)
		err := CheckConnections(rec, []int{0, 1})
		if tc.err == nil {
			assert.NoError(t, err, tc.name)
			continue
		}
		assert.ErrorIs(t, err, tc.err, tc.name)
		_, err = NewGroup(rec, nil, nil, nil, nil)
		assert.ErrorIs(t, err, tc.err, tc.name)
		_, err = NewLowered(nil, nil).Initialize([]int{0, 1}, rec)
		assert.ErrorIs(t, err, tc.err, tc.name)
	}

	rec := NewCellRecipe(synCell())
	rec.AddGenerator(0, &ScheduleGenerator{Target: 2, Weight: 1, Sched: NewRegularSchedule(0, 1)})
	assert.ErrorIs(t, CheckConnections(rec, []int{0}), ErrBadEventGeneratorTargetLid)
	_, err := NewLowered(nil, nil).Initialize([]int{0}, rec)
	assert.ErrorIs(t, err, ErrBadEventGeneratorTargetLid)
}

func TestLayoutErrors(t *testing.T) {
	lowerErr := func(c *morph.Cell, ps *morph.ParameterSet) error {
		rec := NewCellRecipe(c)
		rec.Params = ps
		_, err := NewLowered(nil, nil).Initialize([]int{0}, rec)
		return err
	}
	c := somaCell()
	c.Decor.Paint(morph.AllRegion(), morph.Mech("pas"))
	c.Decor.Paint(morph.TagRegion("soma"), morph.Mech("pas"))
	assert.ErrorIs(t, lowerErr(c, nil), ErrOverlappingPaint)

	c = somaCell()
	c.Decor.Paint(morph.AllRegion(), morph.Mech("expsyn"))
	assert.ErrorIs(t, lowerErr(c, nil), mech.ErrKindMismatch)

	c = somaCell()
	c.Decor.Place(morph.Loc(0, 0.5), morph.Mech("pas"))
	assert.ErrorIs(t, lowerErr(c, nil), mech.ErrKindMismatch)

	c = somaCell()
	c.Decor.Paint(morph.AllRegion(), morph.Mech("no_such_mech"))
	assert.ErrorIs(t, lowerErr(c, nil), mech.ErrNoSuchMechanism)

	c = somaCell()
	c.Decor.Paint(morph.AllRegion(), morph.Mech("pas").Set("foo", 1))
	assert.ErrorIs(t, lowerErr(c, nil), mech.ErrNoSuchParameter)

	ps := morph.NewParameterSet()
	delete(ps.Ions, "na")
	c = somaCell()
	c.Decor.Paint(morph.AllRegion(), morph.Mech("hh"))
	assert.ErrorIs(t, lowerErr(c, ps), mech.ErrMissingIon)

	ps = morph.NewParameterSet()
	ps.RevPot["na"] = "pas"
	c = somaCell()
	c.Decor.Paint(morph.AllRegion(), morph.Mech("hh"))
	assert.ErrorIs(t, lowerErr(c, ps), mech.ErrKindMismatch)
}

func TestDensityParams(t *testing.T) {
	c := ballAndStick()
	c.Decor.Paint(morph.TagRegion("soma"), morph.Mech("pas").Set("g", 0.002))
	c.Decor.Paint(morph.TagRegion("dend"), morph.Mech("pas"))
	lc, _ := lower(t, NewCellRecipe(c))

	dg := lc.Mechanism("pas").Diagnostics()
	assert.Equal(t, []int{0, 1, 2, 3}, dg.CV)
	g, _ := dg.Field("g")
	assert.InDelta(t, 0.002, g[0], difTol)
	assert.InDelta(t, 0.001, g[3], difTol)
	// the shared node is area weighted between soma and dendrite
	cov, err := lc.Disc.Coverage(0, morph.TagRegion("soma"))
	require.NoError(t, err)
	fs := cov[1].Area / lc.Disc.Area[1]
	assert.InDelta(t, fs*0.002+(1-fs)*0.001, g[1], difTol)
	for i := range dg.Weight {
		assert.InDelta(t, 1, dg.Weight[i], difTol)
	}
}

func TestRevPotMechs(t *testing.T) {
	ps := morph.NewParameterSet()
	ps.RevPot["na"] = "nernst/na"
	ps.RevPot["ca"] = "nernst/ca"
	c := somaCell()
	c.Decor.Paint(morph.AllRegion(), morph.Mech("hh"))
	rec := NewCellRecipe(c)
	rec.Params = ps
	lc, _ := lower(t, rec)

	// ca is not used by any mechanism, so it gets no state or writer
	assert.Nil(t, lc.State.Ion("ca"))
	require.Equal(t, 1, len(lc.RevPotMechs))
	na := lc.State.Ion("na")
	ion := ps.Ions["na"]
	assert.NotEqual(t, ion.InitRevPot, na.EX[0])
	assert.Greater(t, na.EX[0], 0.0)
	assert.Equal(t, len(lc.Mechs), lc.RevPotMechs[0].ID())
}
