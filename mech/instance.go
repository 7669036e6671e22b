// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

import (
	"fmt"

	"github.com/emer/cable/event"
	"github.com/emer/cable/state"
)

// Instance implements Mechanism for a Kernel, with storage from a Backend
type Instance struct {
	Kern    Kernel
	Backend Backend

	pp    PPack
	st    *state.State
	id    int
	size  int
	evbuf []event.DeliverableEvent
	diag  Diagnostics
}

// NewInstance returns an uninstantiated mechanism for kernel k
func NewInstance(k Kernel, be Backend) *Instance {
	if be == nil {
		be = Multicore{}
	}
	return &Instance{Kern: k, Backend: be, id: -1}
}

func (mi *Instance) Name() string { return mi.Kern.Info().Name }
func (mi *Instance) Kind() Kind   { return mi.Kern.Info().Kind }
func (mi *Instance) ID() int      { return mi.id }
func (mi *Instance) Size() int    { return mi.pp.Width }

// PPack returns the parameter pack, for kernel level tests
func (mi *Instance) PPack() *PPack { return &mi.pp }

// Instantiate allocates storage and binds views into st for layout lay
func (mi *Instance) Instantiate(id int, st *state.State, ov *Overrides, lay *Layout) error {
	inf := mi.Kern.Info()
	width := lay.Size()
	if len(lay.Weight) != width {
		return fmt.Errorf("%w: %s has %d CVs and %d weights", ErrBadLayout, inf.Name, width, len(lay.Weight))
	}
	for i, cv := range lay.CV {
		if cv < 0 || cv >= st.NCV() || (i > 0 && cv < lay.CV[i-1]) {
			return fmt.Errorf("%w: %s site %d on CV %d", ErrBadLayout, inf.Name, i, cv)
		}
	}
	mi.st = st
	mi.id = id

	pp := &mi.pp
	*pp = PPack{Width: width, MechID: id, Kind: inf.Kind}
	pp.NodeIndex = append([]int(nil), lay.CV...)
	pp.Weight, pp.Fields, mi.size = mi.Backend.Alloc(width, len(inf.Fields))
	copy(pp.Weight, lay.Weight)
	for f, fd := range inf.Fields {
		for i := range pp.Fields[f] {
			pp.Fields[f][i] = fd.Default
		}
	}
	pp.Globals = make([]float64, len(inf.Globals))
	for g, gd := range inf.Globals {
		pp.Globals[g] = gd.Default
	}
	if ov != nil {
		for k, v := range ov.Globals {
			g := inf.GlobalIndex(k)
			if g < 0 {
				return fmt.Errorf("%w: %q on mechanism %s", ErrNoSuchGlobal, k, inf.Name)
			}
			pp.Globals[g] = v
		}
	}

	pp.CVToIntdom = st.CVToIntdom
	pp.CVToCell = st.CVToCell
	pp.Time = st.Time
	pp.DtCV = st.DtCV
	pp.Voltage = st.Voltage
	pp.CurrentDensity = st.CurrentDensity
	pp.Conductivity = st.Conductivity
	pp.Temperature = st.Temperature
	pp.Diameter = st.Diameter
	pp.TimeSinceSpike = st.TimeSinceSpike
	pp.NDetector = st.NDetector

	pp.Ions = make([]IonView, len(inf.Ions))
	for ii, dep := range inf.Ions {
		nm := ov.Ion(dep.Name)
		is := st.Ion(nm)
		if is == nil {
			return fmt.Errorf("%w: %s uses ion %q", ErrMissingIon, inf.Name, nm)
		}
		if dep.Valence != 0 && int(is.Charge) != dep.Valence {
			return fmt.Errorf("%w: %s expects valence %d, ion %q has %g", ErrIonValence, inf.Name, dep.Valence, nm, is.Charge)
		}
		idx := make([]int, width)
		for i, cv := range lay.CV {
			idx[i] = is.Index(cv)
			if idx[i] < 0 {
				return fmt.Errorf("%w: %s uses ion %q, not present at CV %d", ErrMissingIon, inf.Name, nm, cv)
			}
		}
		pp.Ions[ii] = IonView{Name: nm, Index: idx, IX: is.IX, EX: is.EX, Xi: is.Xi, Xo: is.Xo, Charge: &is.Charge}
	}

	mi.diag = Diagnostics{Name: inf.Name, ID: id, Kind: inf.Kind, CV: pp.NodeIndex, Weight: pp.Weight}
	for g := range inf.Globals {
		mi.diag.Globals = append(mi.diag.Globals, GlobalEntry{Name: inf.Globals[g].Name, Value: &pp.Globals[g]})
	}
	for f := range inf.Fields {
		mi.diag.FieldsTbl = append(mi.diag.FieldsTbl, FieldEntry{Name: inf.Fields[f].Name, Values: pp.Fields[f]})
	}
	for ii := range pp.Ions {
		mi.diag.IonsTbl = append(mi.diag.IonsTbl, IonEntry{Ion: pp.Ions[ii].Name, Index: pp.Ions[ii].Index})
	}
	return nil
}

// SetGlobal sets a global value
func (mi *Instance) SetGlobal(key string, val float64) error {
	g := mi.Kern.Info().GlobalIndex(key)
	if g < 0 || g >= len(mi.pp.Globals) {
		return fmt.Errorf("%w: %q on mechanism %s", ErrNoSuchGlobal, key, mi.Name())
	}
	mi.pp.Globals[g] = val
	return nil
}

// SetParameter sets a per-site field
func (mi *Instance) SetParameter(key string, vals []float64) error {
	f := mi.Kern.Info().FieldIndex(key)
	if f < 0 || f >= len(mi.pp.Fields) {
		return fmt.Errorf("%w: %q on mechanism %s", ErrNoSuchParameter, key, mi.Name())
	}
	if len(vals) != mi.pp.Width {
		return fmt.Errorf("%w: %q on mechanism %s has %d values for %d sites", ErrParameterSize, key, mi.Name(), len(vals), mi.pp.Width)
	}
	copy(mi.pp.Fields[f], vals)
	return nil
}

func (mi *Instance) Initialize()    { mi.Kern.Init(&mi.pp) }
func (mi *Instance) UpdateCurrent() { mi.Kern.ComputeCurrents(&mi.pp) }
func (mi *Instance) UpdateState()   { mi.Kern.AdvanceState(&mi.pp) }
func (mi *Instance) UpdateIons()    { mi.Kern.WriteIons(&mi.pp) }

// PostEvent runs only for kernels that use post events
func (mi *Instance) PostEvent() {
	if mi.Kern.Info().PostEvents {
		mi.Kern.PostEvent(&mi.pp)
	}
}

// DeliverEvents applies the marked events of every domain that
// address this mechanism
func (mi *Instance) DeliverEvents() {
	mi.evbuf = mi.evbuf[:0]
	for _, ev := range mi.st.MechEvents(mi.id) {
		if ev.Handle.MechIndex < mi.pp.Width {
			mi.evbuf = append(mi.evbuf, ev)
		}
	}
	if len(mi.evbuf) > 0 {
		mi.Kern.ApplyEvents(&mi.pp, mi.evbuf)
	}
}

// Diagnostics returns the lookup tables built at instantiation
func (mi *Instance) Diagnostics() *Diagnostics {
	return &mi.diag
}

// DataSize returns bytes of mechanism-owned storage
func (mi *Instance) DataSize() int {
	return 8*(mi.size+len(mi.pp.Globals)) + 8*len(mi.pp.NodeIndex)*(1+len(mi.pp.Ions))
}
