// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morph

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// CVArea is the area (µm²) of one CV covered by some region
type CVArea struct {
	CV   int
	Area float64
}

// cellGeom is the per-cell node layout produced by Discretize
type cellGeom struct {
	nodes [][]int        // per branch, CV of node k = 0..NCV
	half  [][][2]float64 // per branch, per compartment: proximal and distal half areas
}

// Discretization is the CV layout of a group of cells, in one contiguous
// index space.  All per-CV slices have length NCV().
type Discretization struct {
	CellCVDivs      []int     `desc:"CVs of cell c are [CellCVDivs[c], CellCVDivs[c+1])"`
	Parent          []int     `desc:"parent CV, -1 for the root CV of each cell -- always less than the CV's own index"`
	CVToCell        []int     `desc:"cell index of each CV"`
	Area            []float64 `desc:"membrane area, µm²"`
	Capacitance     []float64 `desc:"membrane capacitance, pF"`
	FaceConductance []float64 `desc:"axial conductance to parent CV, µS -- 0 for roots"`
	Diameter        []float64 `desc:"cable diameter at the CV node, µm"`
	InitVoltage     []float64 `desc:"initial membrane potential, mV"`
	Temperature     []float64 `desc:"temperature, K"`

	cells []*Cell
	geoms []cellGeom
}

// frustum returns the lateral area of a truncated cone
func frustum(r1, r2, h float64) float64 {
	return math.Pi * (r1 + r2) * math.Hypot(h, r1-r2)
}

// Discretize builds the CV layout for cells using the cell-wide parameters ps
func Discretize(cells []*Cell, ps *ParameterSet) (*Discretization, error) {
	if err := ps.Validate(); err != nil {
		return nil, err
	}
	ds := &Discretization{cells: cells}
	ds.CellCVDivs = append(ds.CellCVDivs, 0)
	for ci, cell := range cells {
		if cell == nil || cell.Morph == nil {
			return nil, fmt.Errorf("cell %d: %w: no morphology", ci, ErrInvalidMorphology)
		}
		if err := cell.Morph.Validate(); err != nil {
			return nil, fmt.Errorf("cell %d: %w", ci, err)
		}
		ds.geoms = append(ds.geoms, ds.addCell(ci, cell.Morph, ps))
		ds.CellCVDivs = append(ds.CellCVDivs, len(ds.Area))
	}
	return ds, nil
}

// newCV appends a CV with given parent and cell
func (ds *Discretization) newCV(parent, cell int, diam float64, ps *ParameterSet) int {
	ds.Parent = append(ds.Parent, parent)
	ds.CVToCell = append(ds.CVToCell, cell)
	ds.Area = append(ds.Area, 0)
	ds.Capacitance = append(ds.Capacitance, 0)
	ds.FaceConductance = append(ds.FaceConductance, 0)
	ds.Diameter = append(ds.Diameter, diam)
	ds.InitVoltage = append(ds.InitVoltage, ps.Vm)
	ds.Temperature = append(ds.Temperature, ps.TemperatureK)
	return len(ds.Area) - 1
}

func (ds *Discretization) addCell(ci int, m *Morphology, ps *ParameterSet) cellGeom {
	cg := cellGeom{
		nodes: make([][]int, len(m.Branches)),
		half:  make([][][2]float64, len(m.Branches)),
	}
	for bi := range m.Branches {
		br := &m.Branches[bi]
		n := br.NCV
		nodes := make([]int, n+1)
		if br.Parent < 0 {
			nodes[0] = ds.newCV(-1, ci, 2*br.RadiusAt(0), ps)
		} else {
			pn := cg.nodes[br.Parent]
			nodes[0] = pn[len(pn)-1]
		}
		h := br.Length() / float64(n)
		half := make([][2]float64, n)
		for k := 0; k < n; k++ {
			r1 := br.RadiusAt(float64(k) / float64(n))
			r2 := br.RadiusAt(float64(k+1) / float64(n))
			rm := 0.5 * (r1 + r2)
			nodes[k+1] = ds.newCV(nodes[k], ci, 2*r2, ps)
			half[k] = [2]float64{frustum(r1, rm, 0.5*h), frustum(rm, r2, 0.5*h)}
			ds.Area[nodes[k]] += half[k][0]
			ds.Area[nodes[k+1]] += half[k][1]
			// 100: Ω·cm and µm to µS
			ds.FaceConductance[nodes[k+1]] = 100 * math.Pi * r1 * r2 / (h * ps.Ra)
		}
		cg.nodes[bi] = nodes
		cg.half[bi] = half
	}
	for cv := ds.CellCVDivs[ci]; cv < len(ds.Area); cv++ {
		ds.Capacitance[cv] = ps.Cm * ds.Area[cv]
	}
	return cg
}

// NCV returns the total number of CVs
func (ds *Discretization) NCV() int {
	return len(ds.Area)
}

// NCell returns the number of cells
func (ds *Discretization) NCell() int {
	return len(ds.CellCVDivs) - 1
}

// Cell returns the description of cell ci
func (ds *Discretization) Cell(ci int) *Cell {
	return ds.cells[ci]
}

// CellArea returns the total membrane area of cell ci
func (ds *Discretization) CellArea(ci int) float64 {
	return floats.Sum(ds.Area[ds.CellCVDivs[ci]:ds.CellCVDivs[ci+1]])
}

// LocationCV returns the CV that contains location lc on cell ci:
// the CV of the node nearest to lc on its branch.
func (ds *Discretization) LocationCV(ci int, lc Location) (int, error) {
	if ci < 0 || ci >= len(ds.geoms) {
		return -1, fmt.Errorf("%w: cell %d of %d", ErrBadLocation, ci, len(ds.geoms))
	}
	if err := lc.Validate(ds.cells[ci].Morph); err != nil {
		return -1, fmt.Errorf("cell %d: %w", ci, err)
	}
	nodes := ds.geoms[ci].nodes[lc.Branch]
	k := int(math.Round(lc.Pos * float64(len(nodes)-1)))
	return nodes[k], nil
}

// Coverage returns the area of each CV of cell ci that lies in region rg,
// in CV order.  CVs that are not touched by the region are omitted.
func (ds *Discretization) Coverage(ci int, rg Region) ([]CVArea, error) {
	bs, err := rg.Resolve(ds.cells[ci].Morph)
	if err != nil {
		return nil, fmt.Errorf("cell %d: %w", ci, err)
	}
	cov := map[int]float64{}
	cg := &ds.geoms[ci]
	for _, b := range bs {
		nodes := cg.nodes[b]
		for k, ha := range cg.half[b] {
			cov[nodes[k]] += ha[0]
			cov[nodes[k+1]] += ha[1]
		}
	}
	ca := make([]CVArea, 0, len(cov))
	for cv, a := range cov {
		ca = append(ca, CVArea{CV: cv, Area: a})
	}
	sort.Slice(ca, func(i, j int) bool { return ca[i].CV < ca[j].CV })
	return ca, nil
}
