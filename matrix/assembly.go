// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package matrix

import "fmt"

// Solver is implemented by each backend's matrix solver
type Solver interface {
	// Size returns the number of CVs
	Size() int

	// NCell returns the number of cells
	NCell() int

	// Assemble builds the system for the given cells from the current state
	Assemble(cells []int, dtIntdom, voltage, current, conductivity []float64)

	// Solve solves the assembled system for the given cells, writing
	// the new voltages into voltage.  Cells with dt == 0 are skipped.
	Solve(cells []int, dtIntdom, voltage []float64)

	// Sys returns the underlying assembly, for read-only inspection
	Sys() *Assembly
}

// Assembly holds the topology, the time-invariant terms and the
// per-step diagonal, upper and right-hand-side arrays.
type Assembly struct {
	Parent          []int     `desc:"parent CV, -1 for roots"`
	CellCVDivs      []int     `desc:"CVs of cell c are [CellCVDivs[c], CellCVDivs[c+1])"`
	CellToIntdom    []int     `desc:"integration domain of each cell"`
	Capacitance     []float64 `desc:"CV capacitance, pF"`
	FaceConductance []float64 `desc:"axial conductance to parent, µS"`
	Area            []float64 `desc:"CV area, µm²"`
	InvariantD      []float64 `desc:"sum of face conductances of each CV, µS"`
	D               []float64 `desc:"diagonal"`
	U               []float64 `desc:"upper / lower off-diagonal: entry (i, Parent[i])"`
	RHS             []float64 `desc:"right hand side, overwritten by the solution"`
}

// Init checks the forest and sets up the time-invariant terms.
// Slices are retained, not copied.
func (as *Assembly) Init(parent, cellCVDivs, cellToIntdom []int, capacitance, faceCond, area []float64) error {
	n := len(parent)
	if len(capacitance) != n || len(faceCond) != n || len(area) != n {
		return fmt.Errorf("matrix: per-CV arrays have inconsistent sizes")
	}
	ncell := len(cellCVDivs) - 1
	if ncell < 0 || cellCVDivs[0] != 0 || cellCVDivs[ncell] != n || len(cellToIntdom) != ncell {
		return fmt.Errorf("matrix: cell partition does not cover %d CVs", n)
	}
	for c := 0; c < ncell; c++ {
		first, last := cellCVDivs[c], cellCVDivs[c+1]
		if last < first {
			return fmt.Errorf("matrix: cell %d has decreasing CV bounds", c)
		}
		for i := first; i < last; i++ {
			p := parent[i]
			switch {
			case i == first && p != -1:
				return fmt.Errorf("matrix: first CV %d of cell %d is not a root", i, c)
			case i > first && (p < first || p >= i):
				return fmt.Errorf("matrix: CV %d has parent %d outside [%d, %d)", i, p, first, i)
			}
		}
	}
	as.Parent = parent
	as.CellCVDivs = cellCVDivs
	as.CellToIntdom = cellToIntdom
	as.Capacitance = capacitance
	as.FaceConductance = faceCond
	as.Area = area
	as.InvariantD = make([]float64, n)
	as.U = make([]float64, n)
	as.D = make([]float64, n)
	as.RHS = make([]float64, n)
	for i := 0; i < n; i++ {
		if p := parent[i]; p >= 0 {
			g := faceCond[i]
			as.U[i] = -g
			as.InvariantD[i] += g
			as.InvariantD[p] += g
		}
	}
	return nil
}

// Size returns the number of CVs
func (as *Assembly) Size() int {
	return len(as.Parent)
}

// NCell returns the number of cells
func (as *Assembly) NCell() int {
	return len(as.CellCVDivs) - 1
}

// Sys returns the assembly itself
func (as *Assembly) Sys() *Assembly {
	return as
}

// Assemble builds d and rhs for each of the given cells, using the dt of
// the cell's domain.  dtIntdom is in ms.
func (as *Assembly) Assemble(cells []int, dtIntdom, voltage, current, conductivity []float64) {
	for _, c := range cells {
		dt := dtIntdom[as.CellToIntdom[c]]
		if !(dt > 0) {
			continue
		}
		factor := 1e-3 / dt
		for i := as.CellCVDivs[c]; i < as.CellCVDivs[c+1]; i++ {
			gi := factor * as.Capacitance[i]
			af := 1e-3 * as.Area[i]
			as.D[i] = gi + as.InvariantD[i] + af*conductivity[i]
			as.RHS[i] = gi*voltage[i] - af*(current[i]-conductivity[i]*voltage[i])
		}
	}
}

// active reports whether cell c is being integrated
func (as *Assembly) active(c int, dtIntdom []float64) bool {
	return dtIntdom == nil || dtIntdom[as.CellToIntdom[c]] > 0
}

// AllCells returns the indexes of all cells
func (as *Assembly) AllCells() []int {
	cs := make([]int, as.NCell())
	for i := range cs {
		cs[i] = i
	}
	return cs
}
