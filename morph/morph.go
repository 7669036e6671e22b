// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morph

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/goki/mat32"
)

var (
	// ErrInvalidMorphology is returned for malformed branch trees
	ErrInvalidMorphology = errors.New("invalid morphology")

	// ErrBadLocation is returned for locations off the morphology
	ErrBadLocation = errors.New("bad location")
)

// Point is a 3D sample point with a radius, in µm
type Point struct {
	Pos    mat32.Vec3 `desc:"position in µm"`
	Radius float32    `desc:"cable radius in µm at this point"`
}

// Branch is an unbranched section of cable, shaped as a truncated cone
// from Prox to Dist.
type Branch struct {
	Parent int    `desc:"index of parent branch, -1 for the root branch"`
	Prox   Point  `desc:"proximal end point"`
	Dist   Point  `desc:"distal end point"`
	NCV    int    `min:"1" desc:"number of compartments the branch is divided into"`
	Tag    string `desc:"optional label, e.g., soma, dend, axon, used by TagRegion"`
}

// Length returns the branch length in µm
func (br *Branch) Length() float64 {
	return float64(br.Prox.Pos.DistTo(br.Dist.Pos))
}

// RadiusAt returns the linearly interpolated radius at relative position pos in [0,1]
func (br *Branch) RadiusAt(pos float64) float64 {
	return float64(br.Prox.Radius) + pos*float64(br.Dist.Radius-br.Prox.Radius)
}

// Morphology is a tree of branches.  Branch 0 is the root and every branch's
// parent has a lower index than itself.
type Morphology struct {
	Branches []Branch
}

// NewMorphology returns a morphology with a single root branch
// running along the x axis from the origin.
func NewMorphology(length, rProx, rDist float32, ncv int, tag string) *Morphology {
	m := &Morphology{}
	m.Branches = append(m.Branches, Branch{
		Parent: -1,
		Prox:   Point{Pos: mat32.Vec3{}, Radius: rProx},
		Dist:   Point{Pos: mat32.Vec3{X: length}, Radius: rDist},
		NCV:    ncv,
		Tag:    tag,
	})
	return m
}

// NewSoma returns a morphology whose root is a cylindrical soma of
// given radius and length 2*radius, as a single compartment.
func NewSoma(radius float32) *Morphology {
	return NewMorphology(2*radius, radius, radius, 1, "soma")
}

// AddBranch appends a branch that continues from the distal end of parent,
// along the x axis, returning its index.
func (m *Morphology) AddBranch(parent int, length, rProx, rDist float32, ncv int, tag string) int {
	start := mat32.Vec3{}
	if parent >= 0 && parent < len(m.Branches) {
		start = m.Branches[parent].Dist.Pos
	}
	m.Branches = append(m.Branches, Branch{
		Parent: parent,
		Prox:   Point{Pos: start, Radius: rProx},
		Dist:   Point{Pos: start.Add(mat32.Vec3{X: length}), Radius: rDist},
		NCV:    ncv,
		Tag:    tag,
	})
	return len(m.Branches) - 1
}

// NBranches returns the number of branches
func (m *Morphology) NBranches() int {
	return len(m.Branches)
}

// Children returns the indexes of the child branches of branch b
func (m *Morphology) Children(b int) []int {
	var ch []int
	for i := range m.Branches {
		if m.Branches[i].Parent == b {
			ch = append(ch, i)
		}
	}
	return ch
}

// Validate checks the tree structure and branch geometry
func (m *Morphology) Validate() error {
	if len(m.Branches) == 0 {
		return fmt.Errorf("%w: no branches", ErrInvalidMorphology)
	}
	for i := range m.Branches {
		br := &m.Branches[i]
		switch {
		case i == 0 && br.Parent != -1:
			return fmt.Errorf("%w: branch 0 must be the root", ErrInvalidMorphology)
		case i > 0 && (br.Parent < 0 || br.Parent >= i):
			return fmt.Errorf("%w: branch %d has parent %d", ErrInvalidMorphology, i, br.Parent)
		case br.NCV < 1:
			return fmt.Errorf("%w: branch %d has %d compartments", ErrInvalidMorphology, i, br.NCV)
		case !(br.Length() > 0):
			return fmt.Errorf("%w: branch %d has zero length", ErrInvalidMorphology, i)
		case !(br.Prox.Radius > 0) || !(br.Dist.Radius > 0):
			return fmt.Errorf("%w: branch %d has non-positive radius", ErrInvalidMorphology, i)
		}
	}
	return nil
}

// Location is a point on a branch, at relative position Pos in [0,1]
// from the proximal end.
type Location struct {
	Branch int
	Pos    float64
}

// Loc is a convenience constructor for a Location
func Loc(branch int, pos float64) Location {
	return Location{Branch: branch, Pos: pos}
}

// Validate checks that the location is on the morphology
func (lc Location) Validate(m *Morphology) error {
	if lc.Branch < 0 || lc.Branch >= len(m.Branches) {
		return fmt.Errorf("%w: branch %d of %d", ErrBadLocation, lc.Branch, len(m.Branches))
	}
	if math.IsNaN(lc.Pos) || lc.Pos < 0 || lc.Pos > 1 {
		return fmt.Errorf("%w: position %g not in [0,1]", ErrBadLocation, lc.Pos)
	}
	return nil
}

// Region is a set of whole branches, selected either as all branches,
// an explicit list, or by tag.
type Region struct {
	All      bool
	Branches []int
	Tag      string
}

// AllRegion selects the whole cell
func AllRegion() Region {
	return Region{All: true}
}

// BranchRegion selects the given branches
func BranchRegion(bs ...int) Region {
	return Region{Branches: bs}
}

// TagRegion selects the branches with given tag
func TagRegion(tag string) Region {
	return Region{Tag: tag}
}

// Resolve returns the sorted, unique branch indexes of the region
func (rg Region) Resolve(m *Morphology) ([]int, error) {
	var bs []int
	switch {
	case rg.All:
		bs = make([]int, len(m.Branches))
		for i := range bs {
			bs[i] = i
		}
		return bs, nil
	case rg.Tag != "":
		for i := range m.Branches {
			if m.Branches[i].Tag == rg.Tag {
				bs = append(bs, i)
			}
		}
		return bs, nil
	}
	seen := make(map[int]bool, len(rg.Branches))
	for _, b := range rg.Branches {
		if b < 0 || b >= len(m.Branches) {
			return nil, fmt.Errorf("%w: region branch %d of %d", ErrBadLocation, b, len(m.Branches))
		}
		if !seen[b] {
			seen[b] = true
			bs = append(bs, b)
		}
	}
	sort.Ints(bs)
	return bs, nil
}
