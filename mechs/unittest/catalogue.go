// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package unittest

import "github.com/emer/cable/mech"

// Catalogue returns a new catalogue with the unit test mechanisms
func Catalogue() *mech.Catalogue {
	ct := mech.NewCatalogue()
	ct.MustAdd("test_kin1", Kin1{})
	ct.MustAdd("test_kinlva", KinLVA{})
	ct.MustAdd("test_ca", Ca{})
	ct.MustAdd("test_ca_read_valence", CaReadValence{})
	ct.MustAdd("read_cai_init", ReadCaiInit{})
	ct.MustAdd("write_cai_breakpoint", WriteCaiBreakpoint{})
	ct.MustAdd("fixed_ica_current", FixedIcaCurrent{})
	ct.MustAdd("linear_ca_conc", LinearCaConc{})
	ct.MustAdd("point_ica_current", PointIcaCurrent{})
	ct.MustAdd("post_events_syn", PostEventsSyn{})
	return ct
}
