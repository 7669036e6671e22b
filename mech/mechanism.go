// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

import "github.com/emer/cable/state"

// Layout is the set of sites of a mechanism instance: CVs in
// non-decreasing order, and a weight per site.
type Layout struct {
	CV     []int
	Weight []float64
}

// Size returns the number of sites
func (ly *Layout) Size() int {
	return len(ly.CV)
}

// Overrides are applied to a kernel when a derived mechanism is instantiated
type Overrides struct {
	Globals   map[string]float64 `desc:"global values that replace the kernel defaults"`
	IonRebind map[string]string  `desc:"kernel ion name -> ion species in shared state"`
}

// Ion returns the species bound to kernel ion name
func (ov *Overrides) Ion(name string) string {
	if ov != nil {
		if nm, ok := ov.IonRebind[name]; ok {
			return nm
		}
	}
	return name
}

// Mechanism is an instance of a kernel bound to shared state
type Mechanism interface {
	// Name returns the kernel name, shared by all mechanisms derived from it
	Name() string

	// Kind returns the kind of mechanism
	Kind() Kind

	// ID returns the id assigned at instantiation, used in target handles
	ID() int

	// Size returns the number of sites
	Size() int

	// Instantiate allocates storage and binds views into st for layout lay
	Instantiate(id int, st *state.State, ov *Overrides, lay *Layout) error

	// SetGlobal sets a global value, before Initialize
	SetGlobal(key string, val float64) error

	// SetParameter sets a per-site field, before Initialize
	SetParameter(key string, vals []float64) error

	// Initialize sets the initial state of all sites
	Initialize()

	// DeliverEvents applies the marked events addressed to this mechanism
	DeliverEvents()

	// UpdateCurrent adds the membrane and ion currents
	UpdateCurrent()

	// UpdateState integrates the mechanism state over the current step
	UpdateState()

	// UpdateIons writes ion concentrations or reversal potentials
	UpdateIons()

	// PostEvent reacts to threshold crossings, if the kernel uses them
	PostEvent()

	// Diagnostics returns the read-only lookup tables of the instance
	Diagnostics() *Diagnostics

	// DataSize returns the bytes of mechanism-owned storage
	DataSize() int
}

// GlobalEntry is a named global value
type GlobalEntry struct {
	Name  string
	Value *float64
}

// FieldEntry is a named per-site field
type FieldEntry struct {
	Name   string
	Values []float64
}

// IonEntry is the per-site index into a bound ion species
type IonEntry struct {
	Ion   string
	Index []int
}

// Diagnostics exposes the tables of an instantiated mechanism.  The
// tables are built once at instantiation; callers must not modify them.
type Diagnostics struct {
	Name      string
	ID        int
	Kind      Kind
	CV        []int
	Weight    []float64
	Globals   []GlobalEntry
	FieldsTbl []FieldEntry
	IonsTbl   []IonEntry
}

// Global returns the value of the named global
func (dg *Diagnostics) Global(name string) (float64, bool) {
	for _, ge := range dg.Globals {
		if ge.Name == name {
			return *ge.Value, true
		}
	}
	return 0, false
}

// Field returns the values of the named field
func (dg *Diagnostics) Field(name string) ([]float64, bool) {
	for _, fe := range dg.FieldsTbl {
		if fe.Name == name {
			return fe.Values, true
		}
	}
	return nil, false
}

// IonIndex returns the per-site index into the named ion species
func (dg *Diagnostics) IonIndex(ion string) ([]int, bool) {
	for _, ie := range dg.IonsTbl {
		if ie.Ion == ion {
			return ie.Index, true
		}
	}
	return nil, false
}
