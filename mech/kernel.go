// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

import "github.com/emer/cable/event"

// Kernel is the computational code of a mechanism.  Kernels keep no state
// of their own: everything lives in the PPack.
type Kernel interface {
	// Info describes the kernel's tables and ion use
	Info() *Info

	// Init sets the initial state of every site
	Init(pp *PPack)

	// ComputeCurrents adds membrane and ion currents
	ComputeCurrents(pp *PPack)

	// AdvanceState integrates the state over the step
	AdvanceState(pp *PPack)

	// WriteIons adds concentration contributions, or sets reversal potentials
	WriteIons(pp *PPack)

	// ApplyEvents applies events addressed to this mechanism, in time order
	ApplyEvents(pp *PPack, evs []event.DeliverableEvent)

	// PostEvent reacts to threshold crossings of the site's cell
	PostEvent(pp *PPack)
}

// KernelBase provides no-op kernel methods, for embedding
type KernelBase struct{}

func (KernelBase) Init(pp *PPack)                                      {}
func (KernelBase) ComputeCurrents(pp *PPack)                           {}
func (KernelBase) AdvanceState(pp *PPack)                              {}
func (KernelBase) WriteIons(pp *PPack)                                 {}
func (KernelBase) ApplyEvents(pp *PPack, evs []event.DeliverableEvent) {}
func (KernelBase) PostEvent(pp *PPack)                                 {}
