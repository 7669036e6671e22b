// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package morph describes cable cells and discretizes them into control volumes (CVs).

A Morphology is a tree of unbranched cable Branches, each a truncated cone
between two 3D sample Points.  A Decor paints density mechanisms over Regions
and places point items (synapses, current clamps, threshold detectors and
gap-junction sites) at Locations.  A ParameterSet holds the cell-wide defaults
(initial voltage, temperature, axial resistivity, membrane capacitance, ion
species).

Discretize lays out the CVs of all cells of a group in one contiguous index
space.  Each branch is divided into a fixed number of compartments (NCV);
nodes sit at i/NCV along the branch and each node owns one CV that covers the
half compartments on either side of it.  The proximal node of a child branch
is the distal node of its parent, so fork CVs collect half compartments from
every branch meeting there.  Parent CV indexes are always lower than their
children, which is the ordering the matrix solvers rely on.

Units: lengths and radii in µm, areas in µm², capacitance in pF,
axial face conductance in µS, voltage in mV.
*/
package morph
