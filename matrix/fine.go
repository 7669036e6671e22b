// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package matrix

// LevelRunner runs fun over [0, n), possibly in parallel chunks.
// fun must be safe to call concurrently for disjoint ranges.
type LevelRunner func(n int, fun func(st, ed int))

// SerialRunner runs the whole range in the calling goroutine
func SerialRunner(n int, fun func(st, ed int)) {
	fun(0, n)
}

// level is one depth of a cell tree: the parents at that depth
// and, in CSR form, their children.
type level struct {
	parents  []int
	childIdx []int // children of parents[k] are children[childIdx[k]:childIdx[k+1]]
	children []int
	nodes    []int // all CVs at this depth
}

// Fine solves each cell tree level by level.  Eliminating all children of
// the parents at one depth touches disjoint parents, and substituting at one
// depth reads only the level above, so each level is data parallel.
type Fine struct {
	Assembly

	// MinParallel is the minimum level width handed to Runner
	MinParallel int `def:"256"`

	// Runner executes wide levels, default SerialRunner
	Runner LevelRunner

	levels [][]level // per cell, by depth
}

// NewFine returns a level-scheduled solver for the given CV forest
func NewFine(parent, cellCVDivs, cellToIntdom []int, capacitance, faceCond, area []float64) (*Fine, error) {
	fs := &Fine{MinParallel: 256, Runner: SerialRunner}
	if err := fs.Init(parent, cellCVDivs, cellToIntdom, capacitance, faceCond, area); err != nil {
		return nil, err
	}
	fs.levels = make([][]level, fs.NCell())
	for c := range fs.levels {
		fs.levels[c] = fs.cellLevels(c)
	}
	return fs, nil
}

// cellLevels computes the depth schedule of cell c
func (fs *Fine) cellLevels(c int) []level {
	first, last := fs.CellCVDivs[c], fs.CellCVDivs[c+1]
	if first == last {
		return nil
	}
	depth := make([]int, last-first)
	maxd := 0
	kids := make([][]int, last-first)
	for i := first + 1; i < last; i++ {
		p := fs.Parent[i]
		depth[i-first] = depth[p-first] + 1
		if depth[i-first] > maxd {
			maxd = depth[i-first]
		}
		kids[p-first] = append(kids[p-first], i)
	}
	lv := make([]level, maxd+1)
	for i := first; i < last; i++ {
		l := &lv[depth[i-first]]
		l.nodes = append(l.nodes, i)
		if len(kids[i-first]) == 0 {
			continue
		}
		if len(l.childIdx) == 0 {
			l.childIdx = append(l.childIdx, 0)
		}
		l.parents = append(l.parents, i)
		l.children = append(l.children, kids[i-first]...)
		l.childIdx = append(l.childIdx, len(l.children))
	}
	return lv
}

// Depth returns the number of levels of cell c
func (fs *Fine) Depth(c int) int {
	return len(fs.levels[c])
}

func (fs *Fine) run(n int, fun func(st, ed int)) {
	if fs.Runner == nil || n < fs.MinParallel {
		fun(0, n)
		return
	}
	fs.Runner(n, fun)
}

// Solve eliminates from the deepest level up, then substitutes down
func (fs *Fine) Solve(cells []int, dtIntdom, voltage []float64) {
	d, u, rhs, p := fs.D, fs.U, fs.RHS, fs.Parent
	for _, c := range cells {
		if !fs.active(c, dtIntdom) {
			continue
		}
		lvs := fs.levels[c]
		if len(lvs) == 0 {
			continue
		}
		for li := len(lvs) - 1; li >= 0; li-- {
			l := &lvs[li]
			fs.run(len(l.parents), func(st, ed int) {
				for k := st; k < ed; k++ {
					pi := l.parents[k]
					for _, ci := range l.children[l.childIdx[k]:l.childIdx[k+1]] {
						f := u[ci] / d[ci]
						d[pi] -= f * u[ci]
						rhs[pi] -= f * rhs[ci]
					}
				}
			})
		}
		root := lvs[0].nodes[0]
		rhs[root] /= d[root]
		for li := 1; li < len(lvs); li++ {
			l := &lvs[li]
			fs.run(len(l.nodes), func(st, ed int) {
				for _, i := range l.nodes[st:ed] {
					rhs[i] -= u[i] * rhs[p[i]]
					rhs[i] /= d[i]
				}
			})
		}
		first, last := fs.CellCVDivs[c], fs.CellCVDivs[c+1]
		copy(voltage[first:last], rhs[first:last])
	}
}
