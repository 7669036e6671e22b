// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import (
	"fmt"
	"math"
	"sort"

	"github.com/emer/cable/event"
	"github.com/emer/cable/mech"
	"github.com/emer/cable/morph"
	"github.com/emer/cable/state"
)

// mechData is the layout of one mechanism over the cell group
type mechData struct {
	name   string // catalogue name
	info   *mech.Info
	cv     []int
	weight []float64
	params map[string][]float64
}

// densityAcc accumulates the paintings of one density mechanism
type densityAcc struct {
	info     *mech.Info
	covered  map[int]float64            // CV -> covered area
	setArea  map[string]map[int]float64 // param -> CV -> area where set
	setSum   map[string]map[int]float64 // param -> CV -> Σ area·value
	branches map[[2]int]bool            // {cell, branch} painted
}

// pointSite is one placement of a point mechanism
type pointSite struct {
	cell   int
	lid    int
	cv     int
	params map[string]float64
}

// ionUse collects where an ion is needed and how much of each CV's area
// is covered by concentration writers
type ionUse struct {
	cvs    map[int]bool
	iconcW map[int]float64
	econcW map[int]float64
}

// groupLayout is the complete mechanism and ion layout of a cell group
type groupLayout struct {
	mechs   []*mechData // by mechanism id
	revpot  []*mechData
	ions    map[string]*ionUse
	targets [][]event.TargetHandle
}

func checkParams(inf *mech.Info, name string, ps map[string]float64) error {
	for k := range ps {
		if inf.FieldIndex(k) < 0 {
			return fmt.Errorf("%w: %q on mechanism %s", mech.ErrNoSuchParameter, k, name)
		}
	}
	return nil
}

// buildLayout resolves the paintings and placements of all cells into
// mechanism layouts, target handles and ion requirements
func buildLayout(ct *mech.Catalogue, ps *morph.ParameterSet, cells []*morph.Cell, ds *morph.Discretization, cellToIntdom []int) (*groupLayout, error) {
	dens := map[string]*densityAcc{}
	points := map[string][]pointSite{}
	pinfo := map[string]*mech.Info{}

	for ci, cell := range cells {
		for _, pt := range cell.Decor.Paintings {
			nm := pt.Mech.Name
			acc, has := dens[nm]
			if !has {
				inf, err := ct.Info(nm)
				if err != nil {
					return nil, fmt.Errorf("cell %d: %w", ci, err)
				}
				if inf.Kind != mech.Density {
					return nil, fmt.Errorf("%w: %s is %v and cannot be painted", mech.ErrKindMismatch, nm, inf.Kind)
				}
				acc = &densityAcc{info: inf, covered: map[int]float64{}, setArea: map[string]map[int]float64{},
					setSum: map[string]map[int]float64{}, branches: map[[2]int]bool{}}
				dens[nm] = acc
			}
			if err := checkParams(acc.info, nm, pt.Mech.Params); err != nil {
				return nil, err
			}
			bs, err := pt.Region.Resolve(cell.Morph)
			if err != nil {
				return nil, fmt.Errorf("cell %d: %w", ci, err)
			}
			for _, b := range bs {
				key := [2]int{ci, b}
				if acc.branches[key] {
					return nil, fmt.Errorf("%w: %s on cell %d branch %d", ErrOverlappingPaint, nm, ci, b)
				}
				acc.branches[key] = true
			}
			cov, err := ds.Coverage(ci, pt.Region)
			if err != nil {
				return nil, err
			}
			for _, ca := range cov {
				acc.covered[ca.CV] += ca.Area
				for k, v := range pt.Mech.Params {
					if acc.setArea[k] == nil {
						acc.setArea[k] = map[int]float64{}
						acc.setSum[k] = map[int]float64{}
					}
					acc.setArea[k][ca.CV] += ca.Area
					acc.setSum[k][ca.CV] += ca.Area * v
				}
			}
		}
	}

	gl := &groupLayout{ions: map[string]*ionUse{}, targets: make([][]event.TargetHandle, len(cells))}
	for ci, cell := range cells {
		syns := cell.Decor.Synapses()
		gl.targets[ci] = make([]event.TargetHandle, len(syns))
		for lid, pl := range syns {
			md := pl.Item.(morph.MechDesc)
			inf, has := pinfo[md.Name]
			if !has {
				var err error
				inf, err = ct.Info(md.Name)
				if err != nil {
					return nil, fmt.Errorf("cell %d target %d: %w", ci, lid, err)
				}
				if inf.Kind != mech.Point {
					return nil, fmt.Errorf("%w: %s is %v and cannot be placed", mech.ErrKindMismatch, md.Name, inf.Kind)
				}
				if inf.WritesConcentration() {
					return nil, fmt.Errorf("%w: %s", ErrPointConcentration, md.Name)
				}
				pinfo[md.Name] = inf
			}
			if err := checkParams(inf, md.Name, md.Params); err != nil {
				return nil, err
			}
			cv, err := ds.LocationCV(ci, pl.Loc)
			if err != nil {
				return nil, err
			}
			points[md.Name] = append(points[md.Name], pointSite{cell: ci, lid: lid, cv: cv, params: md.Params})
		}
	}

	names := make([]string, 0, len(dens)+len(points))
	for nm := range dens {
		names = append(names, nm)
	}
	for nm := range points {
		if _, has := dens[nm]; has {
			return nil, fmt.Errorf("%w: %s both painted and placed", mech.ErrKindMismatch, nm)
		}
		names = append(names, nm)
	}
	sort.Strings(names)

	for id, nm := range names {
		var md *mechData
		if acc, ok := dens[nm]; ok {
			md = densityData(nm, acc, ds)
		} else {
			md = pointData(id, nm, pinfo[nm], points[nm], ds, cellToIntdom, gl.targets)
		}
		gl.mechs = append(gl.mechs, md)
		gl.addIons(md)
	}

	ionNames := make([]string, 0, len(gl.ions))
	for nm := range gl.ions {
		ionNames = append(ionNames, nm)
	}
	sort.Strings(ionNames)
	for _, ion := range ionNames {
		if _, ok := ps.Ions[ion]; !ok {
			return nil, fmt.Errorf("%w: %q is not defined in the cell parameters", mech.ErrMissingIon, ion)
		}
		rnm, ok := ps.RevPot[ion]
		if !ok || rnm == "" {
			continue
		}
		inf, err := ct.Info(rnm)
		if err != nil {
			return nil, fmt.Errorf("reversal potential of %q: %w", ion, err)
		}
		if inf.Kind != mech.ReversalPotential {
			return nil, fmt.Errorf("%w: reversal potential of %q uses %s, which is %v", mech.ErrKindMismatch, ion, rnm, inf.Kind)
		}
		ii := inf.IonIndex(ion)
		if ii < 0 || !inf.Ions[ii].WriteRevPot {
			return nil, fmt.Errorf("%w: %s does not write the reversal potential of %q", mech.ErrBadLayout, rnm, ion)
		}
		cvs := sortedKeys(gl.ions[ion].cvs)
		md := &mechData{name: rnm, info: inf, cv: cvs, weight: make([]float64, len(cvs))}
		for i := range md.weight {
			md.weight[i] = 1
		}
		gl.revpot = append(gl.revpot, md)
	}
	return gl, nil
}

// densityData lays out a density mechanism: one site per covered CV,
// weighted by covered fraction, with area weighted parameter values
func densityData(nm string, acc *densityAcc, ds *morph.Discretization) *mechData {
	cvs := sortedKeys(acc.covered)
	md := &mechData{name: nm, info: acc.info, cv: cvs, weight: make([]float64, len(cvs)), params: map[string][]float64{}}
	for i, cv := range cvs {
		md.weight[i] = math.Min(1, acc.covered[cv]/ds.Area[cv])
	}
	for k, sa := range acc.setArea {
		def := acc.info.Fields[acc.info.FieldIndex(k)].Default
		vals := make([]float64, len(cvs))
		for i, cv := range cvs {
			a := acc.covered[cv]
			if a <= 0 {
				vals[i] = def
				continue
			}
			vals[i] = (acc.setSum[k][cv] + (a-sa[cv])*def) / a
		}
		md.params[k] = vals
	}
	return md
}

// pointData lays out a point mechanism: sites sorted by CV, in placement
// order within a CV, and records the target handle of each placement
func pointData(id int, nm string, inf *mech.Info, sites []pointSite, ds *morph.Discretization, cellToIntdom []int, targets [][]event.TargetHandle) *mechData {
	sort.SliceStable(sites, func(i, j int) bool { return sites[i].cv < sites[j].cv })
	md := &mechData{name: nm, info: inf, cv: make([]int, len(sites)), weight: make([]float64, len(sites)), params: map[string][]float64{}}
	for i, s := range sites {
		md.cv[i] = s.cv
		md.weight[i] = 1e3 / ds.Area[s.cv]
		targets[s.cell][s.lid] = event.TargetHandle{MechID: id, MechIndex: i, Intdom: cellToIntdom[s.cell]}
		for k := range s.params {
			if _, has := md.params[k]; has {
				continue
			}
			def := inf.Fields[inf.FieldIndex(k)].Default
			vals := make([]float64, len(sites))
			for j, sj := range sites {
				if v, ok := sj.params[k]; ok {
					vals[j] = v
				} else {
					vals[j] = def
				}
			}
			md.params[k] = vals
		}
	}
	return md
}

// addIons records the ions used by md and concentration writer coverage
func (gl *groupLayout) addIons(md *mechData) {
	for _, dep := range md.info.Ions {
		iu, ok := gl.ions[dep.Name]
		if !ok {
			iu = &ionUse{cvs: map[int]bool{}, iconcW: map[int]float64{}, econcW: map[int]float64{}}
			gl.ions[dep.Name] = iu
		}
		for i, cv := range md.cv {
			iu.cvs[cv] = true
			if dep.WriteIConc {
				iu.iconcW[cv] += md.weight[i]
			}
			if dep.WriteEConc {
				iu.econcW[cv] += md.weight[i]
			}
		}
	}
}

// ionConfig returns the ion state configuration of ion with defaults def:
// initial concentrations are scaled by the area not covered by writers
func (iu *ionUse) ionConfig(def morph.IonDefaults) *state.IonConfig {
	cvs := sortedKeys(iu.cvs)
	n := len(cvs)
	ic := &state.IonConfig{CV: cvs, InitIConc: make([]float64, n), InitEConc: make([]float64, n),
		ResetIConc: make([]float64, n), ResetEConc: make([]float64, n), InitRevPot: make([]float64, n)}
	for i, cv := range cvs {
		ic.InitIConc[i] = (1 - math.Min(1, iu.iconcW[cv])) * def.InitIntConc
		ic.InitEConc[i] = (1 - math.Min(1, iu.econcW[cv])) * def.InitExtConc
		ic.ResetIConc[i] = def.InitIntConc
		ic.ResetEConc[i] = def.InitExtConc
		ic.InitRevPot[i] = def.InitRevPot
	}
	return ic
}

func sortedKeys[V any](m map[int]V) []int {
	ks := make([]int, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Ints(ks)
	return ks
}
