// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import "github.com/emer/cable/mech"

// Configuration errors from recipes.  These are mech.ConfigError values,
// so errors.As(err, new(mech.ConfigError)) holds for all of them.
const (
	ErrBadSourceDescription       mech.ConfigError = "number of sources does not match the cell description"
	ErrBadTargetDescription       mech.ConfigError = "number of targets does not match the cell description"
	ErrBadConnectionSourceGid     mech.ConfigError = "connection source gid out of range"
	ErrBadConnectionSourceLid     mech.ConfigError = "connection source lid out of range"
	ErrBadConnectionTargetLid     mech.ConfigError = "connection target lid out of range"
	ErrBadConnectionDelay         mech.ConfigError = "connection delay must be positive"
	ErrBadEventGeneratorTargetLid mech.ConfigError = "event generator target lid out of range"
	ErrBadGapJunctionLid          mech.ConfigError = "gap junction lid out of range"
	ErrUnknownGapJunctionPeer     mech.ConfigError = "gap junction peer gid out of range"
	ErrBadCellDescription         mech.ConfigError = "invalid cell description"
	ErrBadProbe                   mech.ConfigError = "probe cannot be resolved"
	ErrPointConcentration         mech.ConfigError = "point mechanisms cannot write ion concentrations"
	ErrOverlappingPaint           mech.ConfigError = "mechanism painted more than once on a branch"
)
