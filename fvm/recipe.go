// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import (
	"fmt"

	"github.com/emer/cable/mech"
	"github.com/emer/cable/mechs"
	"github.com/emer/cable/morph"
)

// CellMember addresses item Index (a source, target or gap-junction site lid)
// on cell Gid
type CellMember struct {
	Gid   int
	Index int
}

func (cm CellMember) String() string {
	return fmt.Sprintf("%d:%d", cm.Gid, cm.Index)
}

// Connection delivers the spikes of Source to target lid Dest of the
// cell it is listed on, Delay ms later, with Weight.
type Connection struct {
	Source CellMember
	Dest   int
	Weight float64
	Delay  float64
}

// GapJunctionConnection couples gap-junction site Local of the cell it is
// listed on to site Peer.Index of cell Peer.Gid, with conductance in µS.
// A symmetric junction is listed on both cells.
type GapJunctionConnection struct {
	Peer        CellMember
	Local       int
	Conductance float64
}

// GlobalProperties are shared by all cells of a recipe
type GlobalProperties struct {
	Catalogue *mech.Catalogue     `desc:"mechanism catalogue -- nil for the default catalogue"`
	Params    *morph.ParameterSet `desc:"default cell parameters and ion species -- nil for the standard defaults"`
}

// Recipe describes a model cell by cell, by gid in [0, NumCells())
type Recipe interface {
	// NumCells returns the number of cells in the model
	NumCells() int

	// CellDescription returns the decorated morphology of cell gid
	CellDescription(gid int) (*morph.Cell, error)

	// NumSources returns the number of spike sources (detectors) on cell gid
	NumSources(gid int) int

	// NumTargets returns the number of event targets (synapses) on cell gid
	NumTargets(gid int) int

	// ConnectionsOn returns the incoming connections of cell gid
	ConnectionsOn(gid int) []Connection

	// GapJunctionsOn returns the gap junctions of cell gid
	GapJunctionsOn(gid int) []GapJunctionConnection

	// EventGenerators returns the generators of events for targets on cell gid
	EventGenerators(gid int) []EventGenerator

	// Probes returns the probes on cell gid, addressed by their index
	Probes(gid int) []ProbeInfo

	// GlobalProperties returns the properties shared by all cells
	GlobalProperties() *GlobalProperties
}

// globals returns the recipe's global properties with defaults filled in
func globals(rec Recipe) (*mech.Catalogue, *morph.ParameterSet) {
	gp := rec.GlobalProperties()
	var ct *mech.Catalogue
	var ps *morph.ParameterSet
	if gp != nil {
		ct, ps = gp.Catalogue, gp.Params
	}
	if ct == nil {
		ct = mechs.Default()
	}
	if ps == nil {
		ps = morph.NewParameterSet()
	}
	return ct, ps
}

// CellRecipe is a Recipe over a fixed list of cells, with sources and
// targets counted from each cell's decor.  Connections, gap junctions,
// generators and probes are added per cell.
type CellRecipe struct {
	Cells      []*morph.Cell
	Catalogue  *mech.Catalogue
	Params     *morph.ParameterSet
	Conns      map[int][]Connection
	GapJuncs   map[int][]GapJunctionConnection
	Generators map[int][]EventGenerator
	ProbeInfos map[int][]ProbeInfo
}

// NewCellRecipe returns a recipe for cells with the default catalogue
// and parameters
func NewCellRecipe(cells ...*morph.Cell) *CellRecipe {
	return &CellRecipe{
		Cells:      cells,
		Catalogue:  mechs.Default(),
		Params:     morph.NewParameterSet(),
		Conns:      map[int][]Connection{},
		GapJuncs:   map[int][]GapJunctionConnection{},
		Generators: map[int][]EventGenerator{},
		ProbeInfos: map[int][]ProbeInfo{},
	}
}

func (cr *CellRecipe) NumCells() int { return len(cr.Cells) }

func (cr *CellRecipe) CellDescription(gid int) (*morph.Cell, error) {
	if gid < 0 || gid >= len(cr.Cells) {
		return nil, fmt.Errorf("%w: no cell %d", ErrBadCellDescription, gid)
	}
	return cr.Cells[gid], nil
}

func (cr *CellRecipe) NumSources(gid int) int {
	return len(cr.Cells[gid].Decor.Detectors())
}

func (cr *CellRecipe) NumTargets(gid int) int {
	return len(cr.Cells[gid].Decor.Synapses())
}

func (cr *CellRecipe) ConnectionsOn(gid int) []Connection             { return cr.Conns[gid] }
func (cr *CellRecipe) GapJunctionsOn(gid int) []GapJunctionConnection { return cr.GapJuncs[gid] }
func (cr *CellRecipe) EventGenerators(gid int) []EventGenerator       { return cr.Generators[gid] }
func (cr *CellRecipe) Probes(gid int) []ProbeInfo                     { return cr.ProbeInfos[gid] }

func (cr *CellRecipe) GlobalProperties() *GlobalProperties {
	return &GlobalProperties{Catalogue: cr.Catalogue, Params: cr.Params}
}

// Connect adds a connection onto cell gid
func (cr *CellRecipe) Connect(gid int, cn Connection) *CellRecipe {
	cr.Conns[gid] = append(cr.Conns[gid], cn)
	return cr
}

// AddGapJunction adds a gap junction on cell gid
func (cr *CellRecipe) AddGapJunction(gid int, gj GapJunctionConnection) *CellRecipe {
	cr.GapJuncs[gid] = append(cr.GapJuncs[gid], gj)
	return cr
}

// AddGenerator adds an event generator for targets on cell gid
func (cr *CellRecipe) AddGenerator(gid int, eg EventGenerator) *CellRecipe {
	cr.Generators[gid] = append(cr.Generators[gid], eg)
	return cr
}

// AddProbe adds a probe on cell gid, with the next probe index
func (cr *CellRecipe) AddProbe(gid int, pi ProbeInfo) *CellRecipe {
	cr.ProbeInfos[gid] = append(cr.ProbeInfos[gid], pi)
	return cr
}

// AddIon adds an ion species to the recipe parameters
func (cr *CellRecipe) AddIon(name string, valence int, iconc, econc, revpot float64) *CellRecipe {
	cr.Params.AddIon(name, valence, iconc, econc, revpot)
	return cr
}

// CheckConnections checks the connections and event generators of cells
// gids against the source and target counts of the recipe
func CheckConnections(rec Recipe, gids []int) error {
	ncell := rec.NumCells()
	for _, gid := range gids {
		nt := rec.NumTargets(gid)
		for _, cn := range rec.ConnectionsOn(gid) {
			src := cn.Source
			if src.Gid < 0 || src.Gid >= ncell {
				return fmt.Errorf("%w: cell %d, source %v", ErrBadConnectionSourceGid, gid, src)
			}
			if src.Index < 0 || src.Index >= rec.NumSources(src.Gid) {
				return fmt.Errorf("%w: cell %d, source %v", ErrBadConnectionSourceLid, gid, src)
			}
			if cn.Dest < 0 || cn.Dest >= nt {
				return fmt.Errorf("%w: cell %d, target %d of %d", ErrBadConnectionTargetLid, gid, cn.Dest, nt)
			}
			if !(cn.Delay > 0) {
				return fmt.Errorf("%w: cell %d, source %v, delay %g", ErrBadConnectionDelay, gid, src, cn.Delay)
			}
		}
		for _, eg := range rec.EventGenerators(gid) {
			for _, tg := range eg.Targets() {
				if tg < 0 || tg >= nt {
					return fmt.Errorf("%w: cell %d, target %d of %d", ErrBadEventGeneratorTargetLid, gid, tg, nt)
				}
			}
		}
	}
	return nil
}
