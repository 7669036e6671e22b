// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package mech is the mechanism runtime: the interface between the lowered
cell and the biophysical processes (channels, synapses, pumps, reversal
potential rules) that contribute membrane current and update ion state.

A Kernel is the computational code of a mechanism, described by its Info
(globals, per-site fields, ion dependencies).  Kernels are stateless and
operate on a PPack, the parameter pack of non-owning views into the shared
state plus the mechanism's own storage.

A Mechanism is one instance of a kernel bound to a layout of sites (CVs and
weights) in a cell group.  Its lifecycle is

	Instantiate -> (SetGlobal | SetParameter)* -> Initialize ->
	{DeliverEvents, UpdateCurrent, UpdateState, UpdateIons, PostEvent}*

Instance is the implementation of Mechanism; its storage layout is chosen
by a Backend strategy at construction (separate slices for the multicore
backend, one padded block for the level-scheduled backend).

A Catalogue maps names to kernels and to derived mechanisms: a derivation
reuses the parent's kernel with overridden global values and/or ions
renamed, so two derived mechanisms report the same kernel Name() but bind
independent globals and ion state.

Units: density mechanisms produce currents in mA/cm² and conductances in
S/cm², which are scaled by 10 into A/m² and A/m²/mV.  Point mechanisms
produce nA and µS, scaled by their site weight 1e3/area(CV).
*/
package mech
