// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import (
	"fmt"
	"math"
	"sort"

	"github.com/emer/cable/event"
)

// GapJunction couples CV to Peer with Weight = g·1e3/area(CV), in A/m²/mV,
// contributing Weight·(v[CV]-v[Peer]) to the current density of CV.
// Each junction appears once per direction.
type GapJunction struct {
	CV     int
	Peer   int
	Weight float64
}

// Config sizes and seeds a State
type Config struct {
	NIntdom     int
	NCell       int
	CVToIntdom  []int
	CVToCell    []int
	InitVoltage []float64
	Temperature []float64
	Diameter    []float64
	Area        []float64

	GapJunctions []GapJunction
	Stimuli      []StimConfig

	DetectorCV        []int
	DetectorThreshold []float64
	DetectorCell      []int `desc:"cell index of each detector"`
	DetectorLid       []int `desc:"source lid of each detector on its cell"`
	NDetector         int   `desc:"detector slots per cell: 0 unless some mechanism reads time since spike"`
}

// State is the shared state of a lowered cell group.  Per-domain arrays
// have length NIntdom, per-CV arrays length NCV().
type State struct {
	NIntdom   int `desc:"number of integration domains"`
	NDetector int `desc:"detector slots per cell in TimeSinceSpike"`

	CVToIntdom []int
	CVToCell   []int

	Time     []float64 `desc:"current time of each domain, ms"`
	TimeTo   []float64 `desc:"end of the current step of each domain, ms"`
	DtIntdom []float64 `desc:"current step of each domain, ms"`
	DtCV     []float64 `desc:"current step at each CV, ms"`

	Voltage        []float64 `desc:"membrane potential, mV"`
	CurrentDensity []float64 `desc:"outward membrane current density, A/m²"`
	Conductivity   []float64 `desc:"derivative of CurrentDensity with respect to voltage, A/m²/mV"`
	StimCurrent    []float64 `desc:"part of CurrentDensity injected by current clamps, A/m²"`
	InitVoltage    []float64
	Temperature    []float64 `desc:"K"`
	Diameter       []float64 `desc:"µm"`
	Area           []float64 `desc:"µm²"`

	TimeSinceSpike []float64 `desc:"per cell and detector slot: time from the last crossing to the end of the step, -1 if none this step"`
	SrcToSpike     []int     `desc:"slot of each detector in TimeSinceSpike"`

	GapJunctions []GapJunction
	Stim         Stimulus
	Watcher      ThresholdWatcher
	Events       *event.Stream[event.DeliverableEvent]

	Ions     map[string]*IonState
	IonNames []string `desc:"ion names in sorted order"`

	mechEvents    [][]event.DeliverableEvent // marked events by mechanism id
	mechEventsGen uint64
	mechEventsOK  bool
}

// New allocates state from config
func New(cfg *Config) (*State, error) {
	n := len(cfg.CVToIntdom)
	for nm, l := range map[string]int{
		"cv to cell":   len(cfg.CVToCell),
		"init voltage": len(cfg.InitVoltage),
		"temperature":  len(cfg.Temperature),
		"diameter":     len(cfg.Diameter),
		"area":         len(cfg.Area),
	} {
		if l != n {
			return nil, fmt.Errorf("state: %s has %d entries for %d CVs", nm, l, n)
		}
	}
	for i, d := range cfg.CVToIntdom {
		if d < 0 || d >= cfg.NIntdom {
			return nil, fmt.Errorf("state: CV %d in domain %d of %d", i, d, cfg.NIntdom)
		}
	}
	for _, gj := range cfg.GapJunctions {
		if gj.CV < 0 || gj.CV >= n || gj.Peer < 0 || gj.Peer >= n {
			return nil, fmt.Errorf("state: gap junction {%d, %d} out of range [0, %d)", gj.CV, gj.Peer, n)
		}
	}
	st := &State{
		NIntdom:        cfg.NIntdom,
		NDetector:      cfg.NDetector,
		CVToIntdom:     cfg.CVToIntdom,
		CVToCell:       cfg.CVToCell,
		Time:           make([]float64, cfg.NIntdom),
		TimeTo:         make([]float64, cfg.NIntdom),
		DtIntdom:       make([]float64, cfg.NIntdom),
		DtCV:           make([]float64, n),
		Voltage:        make([]float64, n),
		CurrentDensity: make([]float64, n),
		Conductivity:   make([]float64, n),
		StimCurrent:    make([]float64, n),
		InitVoltage:    cfg.InitVoltage,
		Temperature:    cfg.Temperature,
		Diameter:       cfg.Diameter,
		Area:           cfg.Area,
		GapJunctions:   cfg.GapJunctions,
		Events:         event.NewStream[event.DeliverableEvent](cfg.NIntdom),
		Ions:           map[string]*IonState{},
	}
	if err := st.Stim.Configure(n, cfg.Stimuli); err != nil {
		return nil, err
	}
	if cfg.NDetector > 0 {
		st.TimeSinceSpike = make([]float64, cfg.NCell*cfg.NDetector)
		st.SrcToSpike = make([]int, len(cfg.DetectorCV))
		for i := range st.SrcToSpike {
			st.SrcToSpike[i] = cfg.DetectorCell[i]*cfg.NDetector + cfg.DetectorLid[i]
		}
	}
	if err := st.Watcher.Init(cfg.DetectorCV, cfg.DetectorThreshold, st.SrcToSpike); err != nil {
		return nil, err
	}
	st.Reset()
	return st, nil
}

// NCV returns the number of CVs
func (st *State) NCV() int {
	return len(st.Voltage)
}

// AddIon adds an ion species
func (st *State) AddIon(name string, charge int, cfg *IonConfig) error {
	if _, has := st.Ions[name]; has {
		return fmt.Errorf("state: ion %q already defined", name)
	}
	for _, cv := range cfg.CV {
		if cv < 0 || cv >= st.NCV() {
			return fmt.Errorf("state: ion %q on CV %d out of range", name, cv)
		}
	}
	is, err := NewIonState(charge, cfg)
	if err != nil {
		return fmt.Errorf("ion %q: %w", name, err)
	}
	st.Ions[name] = is
	st.IonNames = append(st.IonNames, name)
	sort.Strings(st.IonNames)
	return nil
}

// Ion returns the named ion state, or nil
func (st *State) Ion(name string) *IonState {
	return st.Ions[name]
}

// Reset restores the initial state: voltage, ion concentrations and reversal
// potentials, zero currents and time, and empty events.
func (st *State) Reset() {
	copy(st.Voltage, st.InitVoltage)
	zero(st.CurrentDensity, st.Conductivity, st.StimCurrent, st.Time, st.TimeTo, st.DtIntdom, st.DtCV)
	for i := range st.TimeSinceSpike {
		st.TimeSinceSpike[i] = -1
	}
	for _, nm := range st.IonNames {
		st.Ions[nm].Reset()
	}
	st.Events.Clear()
	st.Watcher.Reset(st.Voltage)
}

// ZeroCurrents zeros membrane and ion currents
func (st *State) ZeroCurrents() {
	zero(st.CurrentDensity, st.Conductivity, st.StimCurrent)
	for _, nm := range st.IonNames {
		st.Ions[nm].ZeroCurrent()
	}
}

// IonsInitConcentration seeds all ion concentrations
func (st *State) IonsInitConcentration() {
	for _, nm := range st.IonNames {
		st.Ions[nm].InitConcentration()
	}
}

// gridTol is the relative distance to a grid point below which a time is
// taken to be on it
const gridTol = 1e-9

// NextGridTime returns the first point k*dt of the step grid after t.
// A time within gridTol*dt of a grid point counts as that point.
func NextGridTime(t, dt float64) float64 {
	k := math.Round(t / dt)
	if math.Abs(t-k*dt) > gridTol*dt {
		k = math.Floor(t / dt)
	}
	return (k + 1) * dt
}

// UpdateTimeTo sets the step end of each domain to the next point of the
// absolute dtMax grid, but not after tmax.  Steps shortened by events or
// by tmax rejoin the same grid, so split runs take the same steps as one
// long run.
func (st *State) UpdateTimeTo(dtMax, tmax float64) {
	for d, t := range st.Time {
		st.TimeTo[d] = math.Min(NextGridTime(t, dtMax), tmax)
	}
}

// SetDt sets per-domain and per-CV step sizes from Time and TimeTo
func (st *State) SetDt() {
	for d := range st.Time {
		st.DtIntdom[d] = st.TimeTo[d] - st.Time[d]
	}
	for i, d := range st.CVToIntdom {
		st.DtCV[i] = st.DtIntdom[d]
	}
}

// AdvanceTime moves every domain to the end of its step
func (st *State) AdvanceTime() {
	copy(st.Time, st.TimeTo)
}

// SetTime sets all domains to time t
func (st *State) SetTime(t float64) {
	for d := range st.Time {
		st.Time[d] = t
		st.TimeTo[d] = t
	}
}

// TimeBounds returns the minimum and maximum domain times
func (st *State) TimeBounds() (float64, float64) {
	if len(st.Time) == 0 {
		return 0, 0
	}
	mn, mx := st.Time[0], st.Time[0]
	for _, t := range st.Time[1:] {
		mn = math.Min(mn, t)
		mx = math.Max(mx, t)
	}
	return mn, mx
}

// AddGJCurrent adds the gap-junction currents to CurrentDensity
func (st *State) AddGJCurrent() {
	v, J := st.Voltage, st.CurrentDensity
	for _, gj := range st.GapJunctions {
		J[gj.CV] += gj.Weight * (v[gj.CV] - v[gj.Peer])
	}
}

// AddStimulusCurrent adds the current clamp injections to CurrentDensity.
// Calls are additive.
func (st *State) AddStimulusCurrent() {
	st.Stim.AddCurrent(st.Time, st.CVToIntdom, st.CurrentDensity, st.StimCurrent)
}

// MechEvents returns the marked events addressed to mechanism id, in
// domain then time order.  The marked events of all domains are grouped by
// mechanism once each time the marking changes.
func (st *State) MechEvents(id int) []event.DeliverableEvent {
	if g := st.Events.Generation(); !st.mechEventsOK || g != st.mechEventsGen {
		st.partitionEvents()
		st.mechEventsGen, st.mechEventsOK = g, true
	}
	if id < 0 || id >= len(st.mechEvents) {
		return nil
	}
	return st.mechEvents[id]
}

func (st *State) partitionEvents() {
	for i := range st.mechEvents {
		st.mechEvents[i] = st.mechEvents[i][:0]
	}
	for d := 0; d < st.Events.NIntdom(); d++ {
		for _, ev := range st.Events.Marked(d) {
			id := ev.Handle.MechID
			if id < 0 {
				continue
			}
			for id >= len(st.mechEvents) {
				st.mechEvents = append(st.mechEvents, nil)
			}
			st.mechEvents[id] = append(st.mechEvents[id], ev)
		}
	}
}

// ClearTimeSinceSpike marks all detector slots as not having fired
func (st *State) ClearTimeSinceSpike() {
	for i := range st.TimeSinceSpike {
		st.TimeSinceSpike[i] = -1
	}
}

// TestThresholds runs the threshold watcher after a step
func (st *State) TestThresholds() {
	st.Watcher.Test(st.Time, st.TimeTo, st.CVToIntdom, st.Voltage, st.TimeSinceSpike)
}

func zero(ss ...[]float64) {
	for _, s := range ss {
		for i := range s {
			s[i] = 0
		}
	}
}
