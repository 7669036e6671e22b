// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mechs

import "github.com/emer/cable/mech"

// Default returns a new catalogue with the default mechanisms
func Default() *mech.Catalogue {
	ct := mech.NewCatalogue()
	ct.MustAdd("pas", Pas{})
	ct.MustAdd("hh", HH{})
	ct.MustAdd("expsyn", ExpSyn{})
	ct.MustAdd("exp2syn", Exp2Syn{})
	ct.MustAdd("nmda", NMDA{})
	ct.MustAdd("gabab", GABAB{})
	ct.MustAdd("nernst", Nernst{})
	for _, ion := range []string{"na", "k", "ca"} {
		if err := ct.Derive("nernst/"+ion, "nernst", nil, map[string]string{"x": ion}); err != nil {
			panic(err)
		}
	}
	return ct
}
