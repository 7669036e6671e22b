// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package mechs provides the default mechanism catalogue:

  - pas: passive leak
  - hh: Hodgkin-Huxley squid axon sodium, potassium and leak channels
  - expsyn: single exponential conductance synapse
  - exp2syn: bi-exponential conductance synapse
  - nmda: slow glutamate synapse with magnesium block
  - gabab: slow bi-exponential inhibitory synapse with inward rectification
  - nernst: reversal potential from the Nernst equation, derived per ion
    as nernst/na, nernst/k and nernst/ca

Kernels follow the NEURON unit conventions: density currents in mA/cm²,
conductances in S/cm², point currents in nA and conductances in µS.
*/
package mechs
