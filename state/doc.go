// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package state holds the shared per-CV arrays of a lowered cell group:
voltage, membrane current density and conductivity, per integration domain
time and step size, ion species state, current clamps, gap junctions,
the deliverable event stream and threshold detectors.

State owns all storage.  Mechanisms bind non-owning views (sub-slices and
pointers) into it when they are instantiated, so slices are allocated once
and never reallocated after construction.

Sign convention: CurrentDensity is the outward membrane current density in
A/m².  Current clamps inject current, so they subtract from it.
*/
package state
