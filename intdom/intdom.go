// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package intdom

// PeersFunc returns the gids of the gap-junction peers of a cell.
// Peers that are not part of the group are ignored by Partition.
type PeersFunc func(gid int) []int

// DisjointSet is a union-find over dense element indexes,
// with union by size and path halving.
type DisjointSet struct {
	Parent []int `desc:"parent of each element -- roots are their own parent"`
	Size   []int `desc:"size of the tree rooted at each root"`
}

// NewDisjointSet returns a set of n singletons
func NewDisjointSet(n int) *DisjointSet {
	ds := &DisjointSet{}
	ds.Init(n)
	return ds
}

// Init resets to n singletons
func (ds *DisjointSet) Init(n int) {
	ds.Parent = make([]int, n)
	ds.Size = make([]int, n)
	for i := range ds.Parent {
		ds.Parent[i] = i
		ds.Size[i] = 1
	}
}

// Find returns the root of element i
func (ds *DisjointSet) Find(i int) int {
	for ds.Parent[i] != i {
		ds.Parent[i] = ds.Parent[ds.Parent[i]]
		i = ds.Parent[i]
	}
	return i
}

// Union merges the sets containing a and b, returning false if they
// were already the same set.
func (ds *DisjointSet) Union(a, b int) bool {
	ra, rb := ds.Find(a), ds.Find(b)
	if ra == rb {
		return false
	}
	if ds.Size[ra] < ds.Size[rb] {
		ra, rb = rb, ra
	}
	ds.Parent[rb] = ra
	ds.Size[ra] += ds.Size[rb]
	return true
}

// Partition assigns each cell in gids to an integration domain.
// It returns the number of domains and the domain of each cell, in gids order.
// Domain ids are dense and numbered in order of first appearance in gids.
// Duplicate gids are not expected; peers outside gids and self loops are ignored.
func Partition(gids []int, peers PeersFunc) (int, []int) {
	n := len(gids)
	local := make(map[int]int, n)
	for i, gid := range gids {
		local[gid] = i
	}
	ds := NewDisjointSet(n)
	if peers != nil {
		for i, gid := range gids {
			for _, pg := range peers(gid) {
				if j, ok := local[pg]; ok && j != i {
					ds.Union(i, j)
				}
			}
		}
	}
	rootDom := make(map[int]int, n)
	cellToIntdom := make([]int, n)
	for i := range gids {
		r := ds.Find(i)
		d, ok := rootDom[r]
		if !ok {
			d = len(rootDom)
			rootDom[r] = d
		}
		cellToIntdom[i] = d
	}
	return len(rootDom), cellToIntdom
}

// Members returns the cell indexes (into the original gid list) of each
// domain, given the output of Partition.
func Members(nIntdom int, cellToIntdom []int) [][]int {
	mem := make([][]int, nIntdom)
	for c, d := range cellToIntdom {
		mem[d] = append(mem[d], c)
	}
	return mem
}
