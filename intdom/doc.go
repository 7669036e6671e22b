// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package intdom partitions the cells of a cell group into integration domains.

Cells that are directly or transitively connected by gap junctions must be
integrated with the same time step, so each connected component of the
gap-junction graph (restricted to the cells of the group) forms one domain.
Domain ids are dense, starting at 0, and assigned in first-appearance order
of the input cell list, so the result is deterministic.
*/
package intdom
