// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package unittest provides small mechanisms with simple, predictable
// dynamics that exercise specific parts of the mechanism runtime:
// ion reads and writes, valence binding, kinetic states, point currents
// and post events.
package unittest
