// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import (
	"golang.org/x/sync/errgroup"
)

// Context is the execution resources shared by the cell groups of a run
type Context struct {
	NThreads int `desc:"maximum number of goroutines running at once"`
}

// NewContext returns a context with nthr threads (at least 1)
func NewContext(nthr int) *Context {
	if nthr < 1 {
		nthr = 1
	}
	return &Context{NThreads: nthr}
}

// ParallelFor calls fun(i) for i in [0, n), on up to NThreads goroutines,
// and returns the first error.  All calls have returned when it returns.
func (cx *Context) ParallelFor(n int, fun func(i int) error) error {
	if cx == nil || cx.NThreads <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			if err := fun(i); err != nil {
				return err
			}
		}
		return nil
	}
	var eg errgroup.Group
	eg.SetLimit(cx.NThreads)
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error { return fun(i) })
	}
	return eg.Wait()
}

// Runner splits [0, n) into NThreads chunks run with ParallelFor, for
// use as a matrix.LevelRunner
func (cx *Context) Runner(n int, fun func(st, ed int)) {
	nthr := 1
	if cx != nil {
		nthr = cx.NThreads
	}
	if nthr > n {
		nthr = n
	}
	if nthr <= 1 {
		fun(0, n)
		return
	}
	chunk := (n + nthr - 1) / nthr
	cx.ParallelFor(nthr, func(i int) error {
		st := i * chunk
		ed := st + chunk
		if ed > n {
			ed = n
		}
		if st < ed {
			fun(st, ed)
		}
		return nil
	})
}
