// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morph

// MechDesc names a mechanism from a catalogue together with
// per-instance parameter values that override the mechanism defaults.
type MechDesc struct {
	Name   string
	Params map[string]float64
}

// Mech returns a MechDesc for the named mechanism with default parameters
func Mech(name string) MechDesc {
	return MechDesc{Name: name}
}

// Set returns a copy of md with parameter key set to val
func (md MechDesc) Set(key string, val float64) MechDesc {
	ps := make(map[string]float64, len(md.Params)+1)
	for k, v := range md.Params {
		ps[k] = v
	}
	ps[key] = val
	md.Params = ps
	return md
}

// EnvelopePoint is one point of a piecewise-linear current clamp envelope
type EnvelopePoint struct {
	T         float64 `desc:"time in ms"`
	Amplitude float64 `desc:"current in nA"`
}

// IClamp is a current clamp whose amplitude follows a piecewise-linear
// envelope, optionally modulated by a sinusoid.  The clamp injects nothing
// before the first envelope point and holds the last amplitude after the last.
type IClamp struct {
	Envelope  []EnvelopePoint `desc:"envelope points, in non-decreasing time order"`
	Frequency float64         `desc:"modulation frequency in Hz, 0 for none"`
	Phase     float64         `desc:"modulation phase in radians"`
}

// NewIClamp returns a constant clamp of amplitude (nA) switched on at delay
// for duration (ms).
func NewIClamp(delay, duration, amplitude float64) IClamp {
	return IClamp{Envelope: []EnvelopePoint{
		{T: delay, Amplitude: amplitude},
		{T: delay + duration, Amplitude: amplitude},
		{T: delay + duration, Amplitude: 0},
	}}
}

// ThresholdDetector emits a spike when the membrane voltage crosses
// Threshold (mV) from below.
type ThresholdDetector struct {
	Threshold float64
}

// GapJunctionSite is an attachment point for gap-junction connections
type GapJunctionSite struct{}

// Item is anything that can be placed at a location:
// MechDesc (point mechanism, a synapse target), IClamp,
// ThresholdDetector or GapJunctionSite.
type Item interface {
	placeable()
}

func (MechDesc) placeable()          {}
func (IClamp) placeable()            {}
func (ThresholdDetector) placeable() {}
func (GapJunctionSite) placeable()   {}

// Painting is a density mechanism painted over a region
type Painting struct {
	Region Region
	Mech   MechDesc
}

// Placement is an item placed at a location
type Placement struct {
	Loc  Location
	Item Item
}

// Decor holds the paintings and placements of a cell.  Items of each kind
// get local ids (lids) in placement order.
type Decor struct {
	Paintings  []Painting
	Placements []Placement
}

// Paint adds a density mechanism over region rg
func (dc *Decor) Paint(rg Region, md MechDesc) *Decor {
	dc.Paintings = append(dc.Paintings, Painting{Region: rg, Mech: md})
	return dc
}

// Place adds an item at location lc
func (dc *Decor) Place(lc Location, it Item) *Decor {
	dc.Placements = append(dc.Placements, Placement{Loc: lc, Item: it})
	return dc
}

// Synapses returns the point mechanism placements, indexed by target lid
func (dc *Decor) Synapses() []Placement {
	return dc.placed(func(it Item) bool { _, ok := it.(MechDesc); return ok })
}

// Clamps returns the current clamp placements
func (dc *Decor) Clamps() []Placement {
	return dc.placed(func(it Item) bool { _, ok := it.(IClamp); return ok })
}

// Detectors returns the threshold detector placements, indexed by source lid
func (dc *Decor) Detectors() []Placement {
	return dc.placed(func(it Item) bool { _, ok := it.(ThresholdDetector); return ok })
}

// GapJunctionSites returns the gap-junction site placements, indexed by lid
func (dc *Decor) GapJunctionSites() []Placement {
	return dc.placed(func(it Item) bool { _, ok := it.(GapJunctionSite); return ok })
}

func (dc *Decor) placed(sel func(it Item) bool) []Placement {
	var pl []Placement
	for _, p := range dc.Placements {
		if sel(p.Item) {
			pl = append(pl, p)
		}
	}
	return pl
}

// Cell is a decorated morphology
type Cell struct {
	Morph *Morphology
	Decor *Decor
}

// NewCell returns a cell with an empty decor
func NewCell(m *Morphology) *Cell {
	return &Cell{Morph: m, Decor: &Decor{}}
}
