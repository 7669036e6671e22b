// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package matrix

// Hines solves each cell's tree in a single pair of sweeps over CV indexes
type Hines struct {
	Assembly
}

// NewHines returns a Hines solver for the given CV forest
func NewHines(parent, cellCVDivs, cellToIntdom []int, capacitance, faceCond, area []float64) (*Hines, error) {
	hs := &Hines{}
	if err := hs.Init(parent, cellCVDivs, cellToIntdom, capacitance, faceCond, area); err != nil {
		return nil, err
	}
	return hs, nil
}

// Solve runs backward elimination then forward substitution per cell
func (hs *Hines) Solve(cells []int, dtIntdom, voltage []float64) {
	d, u, rhs, p := hs.D, hs.U, hs.RHS, hs.Parent
	for _, c := range cells {
		if !hs.active(c, dtIntdom) {
			continue
		}
		first, last := hs.CellCVDivs[c], hs.CellCVDivs[c+1]
		if first == last {
			continue
		}
		for i := last - 1; i > first; i-- {
			f := u[i] / d[i]
			d[p[i]] -= f * u[i]
			rhs[p[i]] -= f * rhs[i]
		}
		rhs[first] /= d[first]
		for i := first + 1; i < last; i++ {
			rhs[i] -= u[i] * rhs[p[i]]
			rhs[i] /= d[i]
		}
		copy(voltage[first:last], rhs[first:last])
	}
}
