// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import (
	"math"
	"sort"
)

// Schedule is a sequence of times (ms).  Events returns, in order, the
// times in [t0, t1); successive calls over adjacent intervals return
// every time exactly once.
type Schedule interface {
	Events(t0, t1 float64) []float64
	Reset()
}

// ExplicitSchedule is a fixed list of times
type ExplicitSchedule struct {
	Times []float64
}

// NewExplicitSchedule returns a schedule of the given times, sorted
func NewExplicitSchedule(times ...float64) *ExplicitSchedule {
	ts := append([]float64(nil), times...)
	sort.Float64s(ts)
	return &ExplicitSchedule{Times: ts}
}

func (es *ExplicitSchedule) Events(t0, t1 float64) []float64 {
	lo := sort.SearchFloat64s(es.Times, t0)
	hi := sort.SearchFloat64s(es.Times, t1)
	if hi <= lo {
		return nil
	}
	return es.Times[lo:hi]
}

func (es *ExplicitSchedule) Reset() {}

// RegularSchedule is T0, T0+Dt, ... up to but not including Stop
type RegularSchedule struct {
	T0   float64
	Dt   float64
	Stop float64 `desc:"end of the schedule -- +Inf for none"`
}

// NewRegularSchedule returns an unbounded regular schedule
func NewRegularSchedule(t0, dt float64) *RegularSchedule {
	return &RegularSchedule{T0: t0, Dt: dt, Stop: math.Inf(1)}
}

func (rs *RegularSchedule) Events(t0, t1 float64) []float64 {
	if !(rs.Dt > 0) {
		return nil
	}
	t0 = math.Max(t0, rs.T0)
	t1 = math.Min(t1, rs.Stop)
	if t1 <= t0 {
		return nil
	}
	k0 := math.Ceil((t0 - rs.T0) / rs.Dt)
	var ts []float64
	for k := k0; ; k++ {
		t := rs.T0 + k*rs.Dt
		if t >= t1 {
			break
		}
		if t >= t0 {
			ts = append(ts, t)
		}
	}
	return ts
}

func (rs *RegularSchedule) Reset() {}

// GenEvent is an event from a generator, for target lid Target of its cell
type GenEvent struct {
	Target int
	Time   float64
	Weight float64
}

// EventGenerator produces events for targets on one cell
type EventGenerator interface {
	// Events returns the events in [t0, t1), in time order
	Events(t0, t1 float64) []GenEvent

	// Reset restarts the generator from time 0
	Reset()

	// Targets returns the target lids the generator can address
	Targets() []int
}

// ScheduleGenerator sends Weight to Target at every time of Sched
type ScheduleGenerator struct {
	Target int
	Weight float64
	Sched  Schedule
}

func (sg *ScheduleGenerator) Events(t0, t1 float64) []GenEvent {
	ts := sg.Sched.Events(t0, t1)
	evs := make([]GenEvent, len(ts))
	for i, t := range ts {
		evs[i] = GenEvent{Target: sg.Target, Time: t, Weight: sg.Weight}
	}
	return evs
}

func (sg *ScheduleGenerator) Reset()         { sg.Sched.Reset() }
func (sg *ScheduleGenerator) Targets() []int { return []int{sg.Target} }

// ExplicitGenerator sends a fixed list of events
type ExplicitGenerator struct {
	Evs []GenEvent `desc:"events in time order"`
}

func (eg *ExplicitGenerator) Events(t0, t1 float64) []GenEvent {
	lo := sort.Search(len(eg.Evs), func(i int) bool { return eg.Evs[i].Time >= t0 })
	hi := sort.Search(len(eg.Evs), func(i int) bool { return eg.Evs[i].Time >= t1 })
	if hi <= lo {
		return nil
	}
	return eg.Evs[lo:hi]
}

func (eg *ExplicitGenerator) Reset() {}

func (eg *ExplicitGenerator) Targets() []int {
	tgs := make([]int, len(eg.Evs))
	for i, ev := range eg.Evs {
		tgs[i] = ev.Target
	}
	return tgs
}
