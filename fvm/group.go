// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/emer/cable/event"
)

// Spike is a threshold crossing of detector Source at Time (ms)
type Spike struct {
	Source CellMember
	Time   float64
}

// SpikeFunc receives the spikes of each epoch, in time order
type SpikeFunc func(spks []Spike)

// samplerAssoc is a sampler with its schedule and the probes it reads
type samplerAssoc struct {
	pred   ProbePredicate
	sched  Schedule
	fn     Sampler
	probes []ProbeAddress
}

// groupConn is a connection seen from its source
type groupConn struct {
	cell   int
	target int
	weight float64
	delay  float64
}

// Group runs a Lowered cell over time in epochs of half the minimum
// connection delay, routing spikes between its cells as events and
// calling samplers with the probed values.
type Group struct {
	Rec     Recipe
	Gids    []int
	Lowered *Lowered
	Init    *InitResult
	Time    float64 `desc:"time reached, ms"`

	MinDelay float64 `desc:"minimum delay of connections within the group, +Inf for none"`

	conns    map[CellMember][]groupConn
	gens     [][]EventGenerator
	pending  []event.DeliverableEvent
	samplers []*samplerAssoc
	spikes   []Spike
	spikeFn  SpikeFunc
}

// NewGroup lowers cells gids of rec (all cells if nil)
func NewGroup(rec Recipe, gids []int, ctx *Context, pr *Params, mt *Metrics) (*Group, error) {
	if gids == nil {
		gids = make([]int, rec.NumCells())
		for i := range gids {
			gids[i] = i
		}
	}
	lc := NewLowered(ctx, pr)
	lc.Metrics = mt
	ir, err := lc.Initialize(gids, rec)
	if err != nil {
		return nil, err
	}
	g := &Group{Rec: rec, Gids: lc.Gids, Lowered: lc, Init: ir, MinDelay: math.Inf(1),
		conns: map[CellMember][]groupConn{}, gens: make([][]EventGenerator, len(gids))}
	inGroup := make(map[int]bool, len(gids))
	for _, gid := range gids {
		inGroup[gid] = true
	}
	for ci, gid := range gids {
		for _, cn := range rec.ConnectionsOn(gid) {
			if !inGroup[cn.Source.Gid] {
				log.Printf("fvm: connection %v -> %d:%d has its source outside the cell group and is ignored\n", cn.Source, gid, cn.Dest)
				continue
			}
			g.conns[cn.Source] = append(g.conns[cn.Source], groupConn{cell: ci, target: cn.Dest, weight: cn.Weight, delay: cn.Delay})
			g.MinDelay = math.Min(g.MinDelay, cn.Delay)
		}
		g.gens[ci] = rec.EventGenerators(gid)
	}
	g.Reset()
	return g, nil
}

// AddSampler calls fn with samples of the probes matching pred at the
// times of sched, and returns the number of probes matched
func (g *Group) AddSampler(pred ProbePredicate, sched Schedule, fn Sampler) int {
	sa := &samplerAssoc{pred: pred, sched: sched, fn: fn}
	for addr := range g.Init.Probes {
		if pred(addr) {
			sa.probes = append(sa.probes, addr)
		}
	}
	sort.Slice(sa.probes, func(i, j int) bool {
		a, b := sa.probes[i], sa.probes[j]
		if a.Gid != b.Gid {
			return a.Gid < b.Gid
		}
		return a.Index < b.Index
	})
	g.samplers = append(g.samplers, sa)
	return len(sa.probes)
}

// RemoveSamplers removes all samplers
func (g *Group) RemoveSamplers() {
	g.samplers = nil
}

// SetSpikeCallback sets fn to be called with the spikes of each epoch
func (g *Group) SetSpikeCallback(fn SpikeFunc) {
	g.spikeFn = fn
}

// Spikes returns the spikes since the last reset or clear, in time order
// within each epoch
func (g *Group) Spikes() []Spike {
	return g.spikes
}

// ClearSpikes discards the recorded spikes
func (g *Group) ClearSpikes() {
	g.spikes = g.spikes[:0]
}

// Reset returns the group to time 0, dropping pending events and spikes
func (g *Group) Reset() {
	g.Lowered.Reset()
	g.Time = 0
	g.pending = g.pending[:0]
	g.spikes = g.spikes[:0]
	for _, gs := range g.gens {
		for _, eg := range gs {
			eg.Reset()
		}
	}
	for _, sa := range g.samplers {
		sa.sched.Reset()
	}
}

// Run advances the group to tfinal with steps of at most dt and returns
// the time reached
func (g *Group) Run(tfinal, dt float64) (float64, error) {
	if !(dt > 0) {
		return g.Time, fmt.Errorf("fvm: step %g must be positive", dt)
	}
	for g.Time < tfinal {
		t1 := tfinal
		if !math.IsInf(g.MinDelay, 1) {
			t1 = math.Min(tfinal, epochEnd(g.Time, 0.5*g.MinDelay, dt))
		}
		if err := g.epoch(t1, dt); err != nil {
			return g.Time, err
		}
	}
	return g.Time, nil
}

// epochEnd returns the last point of the dt step grid at or before
// t0 + span, or t0 + span itself if the grid has no point after t0 there
func epochEnd(t0, span, dt float64) float64 {
	te := t0 + span
	k := math.Floor(te/dt + 1e-9)
	if g := k * dt; g > t0 && g <= te+1e-9*dt {
		return g
	}
	return te
}

// sampleRef locates the samples of one probe for one sampler in an epoch
type sampleRef struct {
	sa     *samplerAssoc
	addr   ProbeAddress
	offset int
	n      int
}

// epoch integrates from the current time to t1
func (g *Group) epoch(t1, dt float64) error {
	lc := g.Lowered
	pr := &lc.Params
	t0 := g.Time
	for ci, gs := range g.gens {
		for _, eg := range gs {
			for _, ev := range eg.Events(t0, t1) {
				g.pending = append(g.pending, event.DeliverableEvent{Time: pr.BinTime(ev.Time, t0),
					Handle: g.Init.Targets[ci][ev.Target], Weight: ev.Weight})
			}
		}
	}
	sort.SliceStable(g.pending, func(i, j int) bool { return g.pending[i].Time < g.pending[j].Time })
	k := sort.Search(len(g.pending), func(i int) bool { return g.pending[i].Time >= t1 })
	due := append([]event.DeliverableEvent(nil), g.pending[:k]...)
	g.pending = append(g.pending[:0], g.pending[k:]...)

	var samples []SampleEvent
	var refs []sampleRef
	for _, sa := range g.samplers {
		ts := sa.sched.Events(t0, t1)
		if len(ts) == 0 {
			continue
		}
		for _, addr := range sa.probes {
			ph := g.Init.Probes[addr]
			refs = append(refs, sampleRef{sa: sa, addr: addr, offset: len(samples), n: len(ts)})
			for _, t := range ts {
				samples = append(samples, SampleEvent{Time: t, Intdom: ph.Intdom, Handle: ph.Handle, Offset: len(samples)})
			}
		}
	}

	res, err := lc.Integrate(t1, dt, due, samples)
	if err != nil {
		if res != nil {
			g.Time = res.Time
		}
		return err
	}

	for _, rf := range refs {
		recs := make([]SampleRecord, rf.n)
		for i := range recs {
			recs[i] = SampleRecord{Time: res.SampleTime[rf.offset+i], Value: res.SampleValue[rf.offset+i]}
		}
		rf.sa.fn(ProbeMetadata{Addr: rf.addr, Info: g.Init.Probes[rf.addr].Info}, rf.n, recs)
	}

	spks := make([]Spike, len(res.Crossings))
	for i, cr := range res.Crossings {
		spks[i] = Spike{Source: lc.Sources[cr.Index], Time: cr.Time}
	}
	sort.SliceStable(spks, func(i, j int) bool { return spks[i].Time < spks[j].Time })
	for _, sp := range spks {
		for _, cn := range g.conns[sp.Source] {
			g.pending = append(g.pending, event.DeliverableEvent{Time: pr.BinTime(sp.Time+cn.delay, t1),
				Handle: g.Init.Targets[cn.cell][cn.target], Weight: cn.weight})
		}
	}
	g.spikes = append(g.spikes, spks...)
	if g.spikeFn != nil && len(spks) > 0 {
		g.spikeFn(spks)
	}
	g.Time = res.Time
	return nil
}
