// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morph

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// IonDefaults are the default properties of an ion species
type IonDefaults struct {
	Valence     int     `yaml:"valence" desc:"charge of the ion"`
	InitIntConc float64 `yaml:"int_conc" desc:"initial internal concentration, mM"`
	InitExtConc float64 `yaml:"ext_conc" desc:"initial external concentration, mM"`
	InitRevPot  float64 `yaml:"rev_pot" desc:"initial reversal potential, mV"`
}

// ParameterSet holds the cell-wide default properties used by the discretizer
// and to set up ion state.
type ParameterSet struct {
	Vm           float64                `yaml:"vm" def:"-65" desc:"initial membrane potential, mV"`
	TemperatureK float64                `yaml:"temperature_K" def:"279.45" desc:"temperature in Kelvin"`
	Ra           float64                `yaml:"Ra" def:"35.4" desc:"axial resistivity, Ω·cm"`
	Cm           float64                `yaml:"cm" def:"0.01" desc:"membrane capacitance, F/m²"`
	Ions         map[string]IonDefaults `yaml:"ions" desc:"ion species that mechanisms may use"`
	RevPot       map[string]string      `yaml:"reversal_potential_method" desc:"per-ion reversal potential mechanism, e.g., ca: nernst/ca -- ions without an entry keep a fixed reversal potential"`
}

// NewParameterSet returns a ParameterSet with default values
func NewParameterSet() *ParameterSet {
	ps := &ParameterSet{}
	ps.Defaults()
	return ps
}

// Defaults sets the standard NEURON-compatible defaults
func (ps *ParameterSet) Defaults() {
	ps.Vm = -65
	ps.TemperatureK = 6.3 + 273.15
	ps.Ra = 35.4
	ps.Cm = 0.01
	ps.Ions = map[string]IonDefaults{
		"na": {Valence: 1, InitIntConc: 10, InitExtConc: 140, InitRevPot: 115 - 65},
		"k":  {Valence: 1, InitIntConc: 54.4, InitExtConc: 2.5, InitRevPot: -12 - 65},
		"ca": {Valence: 2, InitIntConc: 5e-5, InitExtConc: 2, InitRevPot: 12.5 * math.Log(2.0/5e-5)},
	}
	ps.RevPot = map[string]string{}
}

// AddIon adds or replaces an ion species
func (ps *ParameterSet) AddIon(name string, valence int, iconc, econc, revpot float64) {
	if ps.Ions == nil {
		ps.Ions = map[string]IonDefaults{}
	}
	ps.Ions[name] = IonDefaults{Valence: valence, InitIntConc: iconc, InitExtConc: econc, InitRevPot: revpot}
}

// Validate checks for non-physical values
func (ps *ParameterSet) Validate() error {
	switch {
	case !(ps.Ra > 0):
		return fmt.Errorf("axial resistivity must be positive, got %g", ps.Ra)
	case !(ps.Cm > 0):
		return fmt.Errorf("membrane capacitance must be positive, got %g", ps.Cm)
	case !(ps.TemperatureK > 0):
		return fmt.Errorf("temperature must be positive, got %g K", ps.TemperatureK)
	}
	for nm, ion := range ps.Ions {
		if ion.Valence == 0 {
			return fmt.Errorf("ion %q has zero valence", nm)
		}
	}
	for ion := range ps.RevPot {
		if _, ok := ps.Ions[ion]; !ok {
			return fmt.Errorf("reversal potential method for unknown ion %q", ion)
		}
	}
	return nil
}

// UnmarshalYAML decodes onto the current values.  An ion entry only
// replaces the fields it sets, so a partial entry keeps the defaults of
// the others.
func (ps *ParameterSet) UnmarshalYAML(nd *yaml.Node) error {
	type plain ParameterSet
	prev := make(map[string]IonDefaults, len(ps.Ions))
	for nm, ion := range ps.Ions {
		prev[nm] = ion
	}
	var raw struct {
		Ions map[string]yaml.Node `yaml:"ions"`
	}
	if err := nd.Decode(&raw); err != nil {
		return err
	}
	if err := nd.Decode((*plain)(ps)); err != nil {
		return err
	}
	for nm, ind := range raw.Ions {
		ion := prev[nm]
		if err := ind.Decode(&ion); err != nil {
			return fmt.Errorf("ion %q: %w", nm, err)
		}
		ps.Ions[nm] = ion
	}
	return nil
}

// ParseParameterSet reads a YAML document on top of the defaults
func ParseParameterSet(b []byte) (*ParameterSet, error) {
	ps := NewParameterSet()
	if err := yaml.Unmarshal(b, ps); err != nil {
		return nil, fmt.Errorf("parameter set: %w", err)
	}
	if err := ps.Validate(); err != nil {
		return nil, fmt.Errorf("parameter set: %w", err)
	}
	return ps, nil
}
