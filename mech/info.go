// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

// GlobalDesc describes a scalar shared by all sites of a mechanism
type GlobalDesc struct {
	Name    string
	Default float64
	Units   string
}

// FieldDesc describes a per-site value: a parameter, or a state variable
type FieldDesc struct {
	Name    string
	Default float64
	Units   string
	State   bool
}

// IonDep declares how a mechanism uses an ion species
type IonDep struct {
	Name         string
	WriteCurrent bool
	ReadIConc    bool
	WriteIConc   bool
	ReadEConc    bool
	WriteEConc   bool
	ReadRevPot   bool
	WriteRevPot  bool
	ReadValence  bool `desc:"kernel reads the valence of the bound ion"`
	Valence      int  `desc:"valence the kernel assumes, checked at binding -- 0 if it reads it or does not care"`
}

// Info describes a kernel: the tables it exposes and the ions it uses
type Info struct {
	Name       string
	Kind       Kind
	Globals    []GlobalDesc
	Fields     []FieldDesc
	Ions       []IonDep
	PostEvents bool `desc:"kernel reads time since spike of its cell's detectors"`
}

// GlobalIndex returns the index of the named global, or -1
func (inf *Info) GlobalIndex(name string) int {
	for i := range inf.Globals {
		if inf.Globals[i].Name == name {
			return i
		}
	}
	return -1
}

// FieldIndex returns the index of the named field, or -1
func (inf *Info) FieldIndex(name string) int {
	for i := range inf.Fields {
		if inf.Fields[i].Name == name {
			return i
		}
	}
	return -1
}

// IonIndex returns the index of the named ion, or -1
func (inf *Info) IonIndex(name string) int {
	for i := range inf.Ions {
		if inf.Ions[i].Name == name {
			return i
		}
	}
	return -1
}

// WritesConcentration reports whether any ion concentration is written
func (inf *Info) WritesConcentration() bool {
	for _, id := range inf.Ions {
		if id.WriteIConc || id.WriteEConc {
			return true
		}
	}
	return false
}

// Clone returns a deep copy
func (inf *Info) Clone() *Info {
	ci := *inf
	ci.Globals = append([]GlobalDesc(nil), inf.Globals...)
	ci.Fields = append([]FieldDesc(nil), inf.Fields...)
	ci.Ions = append([]IonDep(nil), inf.Ions...)
	return &ci
}
