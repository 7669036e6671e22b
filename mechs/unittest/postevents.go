// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package unittest

import (
	"math"

	"github.com/emer/cable/mech"
)

// PostEventsSyn keeps a trace of the spikes of its own cell: each
// threshold crossing adds exp(-age/tau), and the trace decays with tau.
// The count field records the number of crossings seen.
type PostEventsSyn struct{ mech.KernelBase }

const (
	peTau = iota
	peTrace
	peCount
)

var postEventsSynInfo = &mech.Info{
	Name: "post_events_syn",
	Kind: mech.Point,
	Fields: []mech.FieldDesc{
		{Name: "tau", Default: 10, Units: "ms"},
		{Name: "trace", State: true},
		{Name: "count", State: true},
	},
	PostEvents: true,
}

func (PostEventsSyn) Info() *mech.Info { return postEventsSynInfo }

func (PostEventsSyn) Init(pp *mech.PPack) {
	for i := 0; i < pp.Width; i++ {
		pp.Fields[peTrace][i] = 0
		pp.Fields[peCount][i] = 0
	}
}

func (PostEventsSyn) AdvanceState(pp *mech.PPack) {
	f := pp.Fields
	for i := 0; i < pp.Width; i++ {
		f[peTrace][i] *= math.Exp(-pp.Dt(i) / f[peTau][i])
	}
}

func (PostEventsSyn) PostEvent(pp *mech.PPack) {
	f := pp.Fields
	for i := 0; i < pp.Width; i++ {
		for _, tss := range pp.TimeSinceSpikes(i) {
			if tss >= 0 {
				f[peTrace][i] += math.Exp(-tss / f[peTau][i])
				f[peCount][i]++
			}
		}
	}
}
