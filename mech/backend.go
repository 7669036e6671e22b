// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

import "math"

// Backend allocates the storage of mechanism instances
type Backend interface {
	// Name of the backend
	Name() string

	// Alloc returns the weight and field storage for width sites
	// and the number of float64 values allocated
	Alloc(width, nfield int) (weight []float64, fields [][]float64, size int)
}

// Multicore allocates one slice per field
type Multicore struct{}

func (Multicore) Name() string { return "multicore" }

func (Multicore) Alloc(width, nfield int) ([]float64, [][]float64, int) {
	weight := make([]float64, width)
	fields := make([][]float64, nfield)
	for i := range fields {
		fields[i] = make([]float64, width)
	}
	return weight, fields, (1 + nfield) * width
}

// Padded allocates one contiguous block holding the weights and then each
// field, every array starting on a multiple of Alignment values, with
// padding set to NaN, as device storage is laid out.
type Padded struct {
	Alignment int `def:"8"`
}

func (Padded) Name() string { return "padded" }

func (pd Padded) Alloc(width, nfield int) ([]float64, [][]float64, int) {
	al := pd.Alignment
	if al < 1 {
		al = 1
	}
	wp := ((width + al - 1) / al) * al
	data := make([]float64, (1+nfield)*wp)
	for i := range data {
		data[i] = math.NaN()
	}
	sub := func(k int) []float64 {
		st := k * wp
		return data[st : st+width : st+width]
	}
	fields := make([][]float64, nfield)
	for i := range fields {
		fields[i] = sub(i + 1)
	}
	return sub(0), fields, len(data)
}
