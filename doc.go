// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package cable is the overall repository for the finite volume solver of
multi-compartment neuron models: cells with a tree morphology are cut into
control volumes (CVs), ion channels and synapses are attached as mechanisms,
and the cable equation is integrated with an implicit Euler step.

This top-level of the repository has no functional code -- everything is organized
into the following sub-packages:

* morph: morphologies, decorations (paintings and placements) and the
discretization of a group of cells into CVs.

* mech: the mechanism framework: kernels, the catalogue of named and derived
mechanisms, parameter packs and instances bound to shared state.

* mechs: the default catalogue (pas, hh, expsyn, exp2syn, nmda, gabab, nernst),
with mechs/unittest holding the mechanisms used to test the framework itself.

* state: the shared per-CV state, ion species, current clamps and threshold
detectors.

* matrix: assembly and solution of the tree-structured linear system, serial
(Hines) or level-parallel (Fine).

* event, intdom: time-ordered event streams per integration domain, and the
partition of cells into domains by gap-junction connectivity.

* fvm: the lowered cell that ties everything together, and the cell group that
runs it over time, routing spikes and calling samplers.
*/
package cable
