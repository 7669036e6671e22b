// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package matrix assembles and solves the linear system of the implicit
(backward Euler) cable equation on the CV forest of a cell group.

For CV i with parent p(i):

	d[i]   = 1e-3·C[i]/dt + Σ g(faces of i) + 1e-3·area[i]·gm[i]
	u[i]   = -g(i, p(i))
	rhs[i] = 1e-3·C[i]/dt·v[i] - 1e-3·area[i]·(J[i] - gm[i]·v[i])

with C in pF, dt in ms, face conductances g in µS, area in µm², membrane
current density J in A/m² and its voltage derivative gm in A/m²/mV.
The system is symmetric with off-diagonal u, and every parent has a lower
index than its children, so one backward elimination sweep followed by one
forward substitution sweep solves it in linear time.

Two solvers share the same Assembly: Hines does the sweeps in index order;
Fine schedules them by tree level, so that all eliminations at one depth are
independent and can be run in parallel.  Both give the same answer up to
rounding order.  Cells whose integration domain has dt == 0 are left untouched.
*/
package matrix
