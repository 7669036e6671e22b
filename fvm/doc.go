// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package fvm is the lowered-cell execution engine: it turns a group of cell
descriptions from a Recipe into shared state, a matrix solver and bound
mechanism instances (Lowered), and advances them in time, delivering
events, sampling probes and recording threshold crossings.

Each time step runs, per integration domain:

	deliver events, compute mechanism currents, add gap-junction and
	stimulus currents, take samples, assemble and solve the matrix,
	update mechanism state, write ions, test thresholds, advance time.

Group runs a Lowered cell over a Recipe in epochs of half the minimum
connection delay, turning threshold crossings into spikes and spikes into
events for the targets connected to them.
*/
package fvm
