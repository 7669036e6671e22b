// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/emer/cable/event"
	"github.com/emer/cable/intdom"
	"github.com/emer/cable/matrix"
	"github.com/emer/cable/mech"
	"github.com/emer/cable/morph"
	"github.com/emer/cable/state"
	"github.com/emer/emergent/timer"
	"github.com/goki/ki/ints"
	"gonum.org/v1/gonum/floats"
)

// ErrVoltageRange is returned by Integrate when the voltage check is on
// and some CV voltage is not finite or leaves Params.VoltageRange
var ErrVoltageRange = errors.New("membrane voltage out of range")

// InitResult is what a cell group needs to drive a Lowered cell
type InitResult struct {
	NIntdom      int
	CellToIntdom []int                         `desc:"integration domain of each cell, by index in the group"`
	Targets      [][]event.TargetHandle        `desc:"per cell, the handle of each target lid"`
	Probes       map[ProbeAddress]ProbeHandle `desc:"resolved probes of all cells"`
}

// IntegrationResult is the outcome of one Integrate call
type IntegrationResult struct {
	Time        float64          `desc:"time reached by all domains, ms"`
	Crossings   []state.Crossing `desc:"threshold crossings, by detector index"`
	SampleTime  []float64        `desc:"time each sample was taken, by sample offset"`
	SampleValue []float64        `desc:"value of each sample, by sample offset"`
}

// Lowered is a group of cells discretized into CVs, with the shared state,
// mechanisms and matrix solver that integrate them.
type Lowered struct {
	Params  Params   `view:"inline"`
	Ctx     *Context `view:"-"`
	Metrics *Metrics `view:"-" desc:"optional counters, nil for none"`

	Gids         []int   `desc:"gid of each cell, by index in the group"`
	NIntdom      int     `desc:"number of integration domains"`
	CellToIntdom []int   `desc:"integration domain of each cell"`
	IntdomCells  [][]int `desc:"cells of each integration domain"`

	Disc        *morph.Discretization
	State       *state.State
	Matrix      matrix.Solver
	Mechs       []mech.Mechanism `desc:"mechanisms by id"`
	MechNames   []string         `desc:"catalogue name of each mechanism"`
	RevPotMechs []mech.Mechanism `desc:"reversal potential mechanisms, run after all others"`
	Sources     []CellMember     `desc:"source of each threshold detector"`
	PostEvents  bool             `desc:"some mechanism reads time since spike"`

	FunTimes map[string]*timer.Time `view:"-" desc:"timers for each phase of the step"`

	samples *event.Stream[SampleEvent]
}

// NewLowered returns an empty Lowered that will run with ctx and params pr
func NewLowered(ctx *Context, pr *Params) *Lowered {
	lc := &Lowered{Ctx: ctx}
	if pr != nil {
		lc.Params = *pr
	} else {
		lc.Params.Defaults()
	}
	if lc.Ctx == nil {
		lc.Ctx = NewContext(lc.Params.NThreads)
	}
	lc.FunTimes = make(map[string]*timer.Time)
	return lc
}

// IntegrationDomains partitions the cells gids into groups closed under
// gap-junction connectivity.  Peers outside gids are ignored.
func IntegrationDomains(rec Recipe, gids []int) (int, []int) {
	return intdom.Partition(gids, func(gid int) []int {
		gjs := rec.GapJunctionsOn(gid)
		peers := make([]int, len(gjs))
		for i, gj := range gjs {
			peers[i] = gj.Peer.Gid
		}
		return peers
	})
}

// GapJunctionCoords returns the gap-junction couplings of cells (with
// gids and discretization ds), one per listed connection, in cell order
// then connection order.  Connections to cells outside the group are
// skipped.
func GapJunctionCoords(cells []*morph.Cell, gids []int, rec Recipe, ds *morph.Discretization) ([]state.GapJunction, error) {
	gidToCell := make(map[int]int, len(gids))
	for ci, gid := range gids {
		gidToCell[gid] = ci
	}
	var gjs []state.GapJunction
	for ci, gid := range gids {
		sites := cells[ci].Decor.GapJunctionSites()
		for _, gj := range rec.GapJunctionsOn(gid) {
			if gj.Peer.Gid < 0 || gj.Peer.Gid >= rec.NumCells() {
				return nil, fmt.Errorf("%w: cell %d connects to gid %d", ErrUnknownGapJunctionPeer, gid, gj.Peer.Gid)
			}
			if gj.Local < 0 || gj.Local >= len(sites) {
				return nil, fmt.Errorf("%w: local site %d of cell %d, which has %d", ErrBadGapJunctionLid, gj.Local, gid, len(sites))
			}
			pci, ok := gidToCell[gj.Peer.Gid]
			if !ok {
				log.Printf("fvm: gap junction %d:%d -> %v leaves the cell group and is ignored\n", gid, gj.Local, gj.Peer)
				continue
			}
			psites := cells[pci].Decor.GapJunctionSites()
			if gj.Peer.Index < 0 || gj.Peer.Index >= len(psites) {
				return nil, fmt.Errorf("%w: peer site %v, which has %d", ErrBadGapJunctionLid, gj.Peer, len(psites))
			}
			cv, err := ds.LocationCV(ci, sites[gj.Local].Loc)
			if err != nil {
				return nil, err
			}
			pcv, err := ds.LocationCV(pci, psites[gj.Peer.Index].Loc)
			if err != nil {
				return nil, err
			}
			gjs = append(gjs, state.GapJunction{CV: cv, Peer: pcv, Weight: gj.Conductance * 1e3 / ds.Area[cv]})
		}
	}
	return gjs, nil
}

// Initialize lowers the cells gids of rec: checks their connections and
// event generators, discretizes them, builds the shared state, instantiates mechanisms, builds the matrix and resolves
// probes, then resets to the initial state.
func (lc *Lowered) Initialize(gids []int, rec Recipe) (*InitResult, error) {
	ct, ps := globals(rec)
	ncell := len(gids)
	cells := make([]*morph.Cell, ncell)
	for ci, gid := range gids {
		cell, err := rec.CellDescription(gid)
		if err != nil {
			return nil, fmt.Errorf("%w: cell %d: %v", ErrBadCellDescription, gid, err)
		}
		if cell == nil || cell.Morph == nil {
			return nil, fmt.Errorf("%w: cell %d has no morphology", ErrBadCellDescription, gid)
		}
		if cell.Decor == nil {
			cc := *cell
			cc.Decor = &morph.Decor{}
			cell = &cc
		}
		if ns, nd := rec.NumSources(gid), len(cell.Decor.Detectors()); ns != nd {
			return nil, fmt.Errorf("%w: cell %d has %d detectors, recipe reports %d sources", ErrBadSourceDescription, gid, nd, ns)
		}
		if nt, ns := rec.NumTargets(gid), len(cell.Decor.Synapses()); nt != ns {
			return nil, fmt.Errorf("%w: cell %d has %d synapses, recipe reports %d targets", ErrBadTargetDescription, gid, ns, nt)
		}
		cells[ci] = cell
	}
	if err := CheckConnections(rec, gids); err != nil {
		return nil, err
	}

	ds, err := morph.Discretize(cells, ps)
	if err != nil {
		return nil, err
	}
	lc.Disc = ds
	lc.Gids = append([]int(nil), gids...)
	lc.NIntdom, lc.CellToIntdom = IntegrationDomains(rec, gids)
	lc.IntdomCells = intdom.Members(lc.NIntdom, lc.CellToIntdom)

	gjs, err := GapJunctionCoords(cells, gids, rec, ds)
	if err != nil {
		return nil, err
	}
	gl, err := buildLayout(ct, ps, cells, ds, lc.CellToIntdom)
	if err != nil {
		return nil, err
	}

	cfg := &state.Config{
		NIntdom:      lc.NIntdom,
		NCell:        ncell,
		CVToIntdom:   make([]int, ds.NCV()),
		CVToCell:     ds.CVToCell,
		InitVoltage:  ds.InitVoltage,
		Temperature:  ds.Temperature,
		Diameter:     ds.Diameter,
		Area:         ds.Area,
		GapJunctions: gjs,
	}
	for cv, ci := range ds.CVToCell {
		cfg.CVToIntdom[cv] = lc.CellToIntdom[ci]
	}
	lc.Sources = nil
	maxDet := 0
	for ci, cell := range cells {
		for _, pl := range cell.Decor.Clamps() {
			cv, err := ds.LocationCV(ci, pl.Loc)
			if err != nil {
				return nil, err
			}
			ic := pl.Item.(morph.IClamp)
			sc := state.StimConfig{CV: cv, Weight: 1e3 / ds.Area[cv], Frequency: ic.Frequency, Phase: ic.Phase}
			for _, ep := range ic.Envelope {
				sc.EnvTime = append(sc.EnvTime, ep.T)
				sc.EnvAmp = append(sc.EnvAmp, ep.Amplitude)
			}
			cfg.Stimuli = append(cfg.Stimuli, sc)
		}
		dets := cell.Decor.Detectors()
		maxDet = ints.MaxInt(maxDet, len(dets))
		for lid, pl := range dets {
			cv, err := ds.LocationCV(ci, pl.Loc)
			if err != nil {
				return nil, err
			}
			cfg.DetectorCV = append(cfg.DetectorCV, cv)
			cfg.DetectorThreshold = append(cfg.DetectorThreshold, pl.Item.(morph.ThresholdDetector).Threshold)
			cfg.DetectorCell = append(cfg.DetectorCell, ci)
			cfg.DetectorLid = append(cfg.DetectorLid, lid)
			lc.Sources = append(lc.Sources, CellMember{Gid: gids[ci], Index: lid})
		}
	}
	lc.PostEvents = false
	for _, md := range gl.mechs {
		if md.info.PostEvents {
			lc.PostEvents = true
		}
	}
	if lc.PostEvents {
		cfg.NDetector = maxDet
	}

	st, err := state.New(cfg)
	if err != nil {
		return nil, err
	}
	ionNames := make([]string, 0, len(gl.ions))
	for nm := range gl.ions {
		ionNames = append(ionNames, nm)
	}
	sort.Strings(ionNames)
	for _, nm := range ionNames {
		def := ps.Ions[nm]
		if err := st.AddIon(nm, def.Valence, gl.ions[nm].ionConfig(def)); err != nil {
			return nil, err
		}
	}
	lc.State = st

	be := lc.Params.MechBackend()
	lc.Mechs, lc.MechNames, lc.RevPotMechs = nil, nil, nil
	for id, md := range gl.mechs {
		m, err := lc.instantiate(ct, be, id, md, st)
		if err != nil {
			return nil, err
		}
		lc.Mechs = append(lc.Mechs, m)
		lc.MechNames = append(lc.MechNames, md.name)
	}
	for i, md := range gl.revpot {
		m, err := lc.instantiate(ct, be, len(gl.mechs)+i, md, st)
		if err != nil {
			return nil, err
		}
		lc.RevPotMechs = append(lc.RevPotMechs, m)
	}

	switch lc.Params.Backend {
	case Fine:
		fs, err := matrix.NewFine(ds.Parent, ds.CellCVDivs, lc.CellToIntdom, ds.Capacitance, ds.FaceConductance, ds.Area)
		if err != nil {
			return nil, err
		}
		fs.Runner = lc.Ctx.Runner
		lc.Matrix = fs
	default:
		hs, err := matrix.NewHines(ds.Parent, ds.CellCVDivs, lc.CellToIntdom, ds.Capacitance, ds.FaceConductance, ds.Area)
		if err != nil {
			return nil, err
		}
		lc.Matrix = hs
	}

	res := &InitResult{NIntdom: lc.NIntdom, CellToIntdom: lc.CellToIntdom, Targets: gl.targets,
		Probes: map[ProbeAddress]ProbeHandle{}}
	for ci, gid := range gids {
		for pi, info := range rec.Probes(gid) {
			rh, err := lc.resolveProbe(ci, info, gl.targets)
			if err != nil {
				return nil, fmt.Errorf("probe %d on cell %d: %w", pi, gid, err)
			}
			res.Probes[ProbeAddress{Gid: gid, Index: pi}] = ProbeHandle{Handle: rh, Intdom: lc.CellToIntdom[ci], Info: info}
		}
	}
	lc.samples = event.NewStream[SampleEvent](lc.NIntdom)
	lc.Reset()
	return res, nil
}

// instantiate creates mechanism md with id and sets its parameters
func (lc *Lowered) instantiate(ct *mech.Catalogue, be mech.Backend, id int, md *mechData, st *state.State) (mech.Mechanism, error) {
	m, ov, err := ct.Instance(md.name, be)
	if err != nil {
		return nil, err
	}
	if err := m.Instantiate(id, st, ov, &mech.Layout{CV: md.cv, Weight: md.weight}); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(md.params))
	for k := range md.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := m.SetParameter(k, md.params[k]); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// resolveProbe returns the handle for probe info on cell ci
func (lc *Lowered) resolveProbe(ci int, info ProbeInfo, targets [][]event.TargetHandle) (RawHandle, error) {
	st := lc.State
	if info.Kind == PointState {
		if info.Target < 0 || info.Target >= len(targets[ci]) {
			return RawHandle{}, fmt.Errorf("%w: no target %d", ErrBadProbe, info.Target)
		}
		th := targets[ci][info.Target]
		vals, ok := lc.Mechs[th.MechID].Diagnostics().Field(info.Field)
		if !ok {
			return RawHandle{}, fmt.Errorf("%w: %s has no field %q", ErrBadProbe, lc.MechNames[th.MechID], info.Field)
		}
		return RawHandle{ptr: &vals[th.MechIndex]}, nil
	}
	cv, err := lc.Disc.LocationCV(ci, info.Loc)
	if err != nil {
		return RawHandle{}, fmt.Errorf("%w: %v", ErrBadProbe, err)
	}
	switch info.Kind {
	case MembraneVoltage:
		return RawHandle{ptr: &st.Voltage[cv]}, nil
	case TotalIonicCurrentDensity:
		return RawHandle{ptr: &st.CurrentDensity[cv], sub: &st.StimCurrent[cv]}, nil
	case TotalCurrentDensity:
		return RawHandle{ptr: &st.CurrentDensity[cv]}, nil
	case IonIntConc, IonExtConc, IonCurrentDensity:
		is := st.Ion(info.Ion)
		if is == nil {
			return RawHandle{}, fmt.Errorf("%w: no ion %q", ErrBadProbe, info.Ion)
		}
		i := is.Index(cv)
		if i < 0 {
			return RawHandle{}, fmt.Errorf("%w: ion %q not present at CV %d", ErrBadProbe, info.Ion, cv)
		}
		switch info.Kind {
		case IonIntConc:
			return RawHandle{ptr: &is.Xi[i]}, nil
		case IonExtConc:
			return RawHandle{ptr: &is.Xo[i]}, nil
		default:
			return RawHandle{ptr: &is.IX[i]}, nil
		}
	case DensityState:
		for id, nm := range lc.MechNames {
			if nm != info.Mech || lc.Mechs[id].Kind() != mech.Density {
				continue
			}
			dg := lc.Mechs[id].Diagnostics()
			vals, ok := dg.Field(info.Field)
			if !ok {
				return RawHandle{}, fmt.Errorf("%w: %s has no field %q", ErrBadProbe, nm, info.Field)
			}
			k := sort.SearchInts(dg.CV, cv)
			if k == len(dg.CV) || dg.CV[k] != cv {
				return RawHandle{}, fmt.Errorf("%w: %s not present at CV %d", ErrBadProbe, nm, cv)
			}
			return RawHandle{ptr: &vals[k]}, nil
		}
		return RawHandle{}, fmt.Errorf("%w: no density mechanism %q", ErrBadProbe, info.Mech)
	}
	return RawHandle{}, fmt.Errorf("%w: unknown kind %v", ErrBadProbe, info.Kind)
}

// Reset returns the cells to their initial state at time 0
func (lc *Lowered) Reset() {
	st := lc.State
	st.Reset()
	for _, m := range lc.RevPotMechs {
		m.Initialize()
	}
	for _, m := range lc.Mechs {
		m.Initialize()
	}
	lc.updateIons()
	st.ZeroCurrents()
	for _, m := range lc.Mechs {
		m.UpdateCurrent()
	}
	st.Watcher.Reset(st.Voltage)
	lc.samples.Clear()
}

// updateIons reseeds concentrations and runs the ion writers, reversal
// potentials last
func (lc *Lowered) updateIons() {
	lc.State.IonsInitConcentration()
	for _, m := range lc.Mechs {
		m.UpdateIons()
	}
	for _, m := range lc.RevPotMechs {
		m.UpdateIons()
	}
}

// Integrate advances all domains to tfinal in steps of at most dtMax,
// delivering events and taking samples on the way.  Samples are taken at
// the start of the step that contains their time.
func (lc *Lowered) Integrate(tfinal, dtMax float64, events []event.DeliverableEvent, samples []SampleEvent) (*IntegrationResult, error) {
	if !(dtMax > 0) {
		return nil, fmt.Errorf("fvm: step %g must be positive", dtMax)
	}
	defer lc.Metrics.observeIntegrate(time.Now())
	st := lc.State
	st.Watcher.ClearCrossings()
	if err := st.Events.Init(events); err != nil {
		return nil, err
	}
	if err := lc.samples.Init(samples); err != nil {
		return nil, err
	}
	res := &IntegrationResult{SampleTime: make([]float64, len(samples)), SampleValue: make([]float64, len(samples))}
	nstep := 0
	var err error
	for {
		if tmin, _ := st.TimeBounds(); !(tmin < tfinal) {
			break
		}
		if err = lc.Step(tfinal, dtMax, res); err != nil {
			break
		}
		nstep++
	}
	lc.Metrics.addSteps(nstep)
	res.Crossings = append([]state.Crossing(nil), st.Watcher.Crossings()...)
	lc.Metrics.addSpikes(len(res.Crossings))
	res.Time, _ = st.TimeBounds()
	return res, err
}

// Step takes one step of every domain towards tfinal.  Samples due in the
// step are recorded into res.  With Params.CheckVoltage on, each domain
// checks its new voltage after the solve, and an ErrVoltageRange stops the
// step before the time advances.
func (lc *Lowered) Step(tfinal, dtMax float64, res *IntegrationResult) error {
	st := lc.State
	st.UpdateTimeTo(dtMax, tfinal)
	st.Events.MarkUntilAfter(st.Time)
	st.Events.EventTimeIfBefore(st.TimeTo)
	st.SetDt()

	lc.FunTimerStart("Currents")
	st.ZeroCurrents()
	for _, m := range lc.Mechs {
		m.DeliverEvents()
	}
	for _, m := range lc.Mechs {
		m.UpdateCurrent()
	}
	st.AddGJCurrent()
	st.AddStimulusCurrent()
	lc.FunTimerStop("Currents")

	lc.takeSamples(res)

	lc.FunTimerStart("Matrix")
	err := lc.Ctx.ParallelFor(len(lc.IntdomCells), func(d int) error {
		cells := lc.IntdomCells[d]
		lc.Matrix.Assemble(cells, st.DtIntdom, st.Voltage, st.CurrentDensity, st.Conductivity)
		lc.Matrix.Solve(cells, st.DtIntdom, st.Voltage)
		if !lc.Params.CheckVoltage {
			return nil
		}
		divs := lc.Disc.CellCVDivs
		for _, c := range cells {
			if err := lc.checkRange(st.Voltage[divs[c]:divs[c+1]], st.TimeTo[d]); err != nil {
				return fmt.Errorf("cell %d: %w", lc.Gids[c], err)
			}
		}
		return nil
	})
	lc.FunTimerStop("Matrix")
	if err != nil {
		return err
	}

	lc.FunTimerStart("State")
	for _, m := range lc.Mechs {
		m.UpdateState()
	}
	lc.FunTimerStop("State")

	lc.FunTimerStart("Ions")
	lc.updateIons()
	lc.FunTimerStop("Ions")

	lc.FunTimerStart("Thresholds")
	st.ClearTimeSinceSpike()
	st.TestThresholds()
	if lc.PostEvents {
		for _, m := range lc.Mechs {
			m.PostEvent()
		}
	}
	lc.FunTimerStop("Thresholds")

	lc.Metrics.addEvents(st.Events.NMarked())
	st.AdvanceTime()
	st.Events.DropMarked()
	return nil
}

// takeSamples records the samples with time before the step end
func (lc *Lowered) takeSamples(res *IntegrationResult) {
	if res == nil {
		return
	}
	ss := lc.samples
	ss.MarkUntil(lc.State.TimeTo)
	for d := 0; d < ss.NIntdom(); d++ {
		for _, se := range ss.Marked(d) {
			res.SampleTime[se.Offset] = lc.State.Time[d]
			res.SampleValue[se.Offset] = se.Handle.Value()
		}
	}
	ss.DropMarked()
}

// CheckVoltage returns ErrVoltageRange if any voltage is not finite or
// is outside Params.VoltageRange
func (lc *Lowered) CheckVoltage() error {
	t, _ := lc.State.TimeBounds()
	return lc.checkRange(lc.State.Voltage, t)
}

// checkRange checks the voltages v at time t
func (lc *Lowered) checkRange(v []float64, t float64) error {
	if len(v) == 0 {
		return nil
	}
	if floats.HasNaN(v) {
		return fmt.Errorf("%w: NaN at %g ms", ErrVoltageRange, t)
	}
	mn, mx := floats.Min(v), floats.Max(v)
	if mn < lc.Params.VoltageRange.Min || mx > lc.Params.VoltageRange.Max {
		return fmt.Errorf("%w: [%g, %g] mV at %g ms", ErrVoltageRange, mn, mx, t)
	}
	return nil
}

// Mechanism returns the mechanism painted or placed as name, or with
// kernel name name, or nil
func (lc *Lowered) Mechanism(name string) mech.Mechanism {
	for id, nm := range lc.MechNames {
		if nm == name {
			return lc.Mechs[id]
		}
	}
	for _, m := range lc.Mechs {
		if m.Name() == name {
			return m
		}
	}
	for _, m := range lc.RevPotMechs {
		if m.Name() == name {
			return m
		}
	}
	return nil
}

// Diagnostics are read-only views of the internals of a Lowered cell
type Diagnostics struct {
	State  *state.State
	Matrix *matrix.Assembly
	Mechs  []*mech.Diagnostics
	RevPot []*mech.Diagnostics
}

// Diagnostics returns views of the state, matrix and mechanism tables
func (lc *Lowered) Diagnostics() *Diagnostics {
	dg := &Diagnostics{State: lc.State, Matrix: lc.Matrix.Sys()}
	for _, m := range lc.Mechs {
		dg.Mechs = append(dg.Mechs, m.Diagnostics())
	}
	for _, m := range lc.RevPotMechs {
		dg.RevPot = append(dg.RevPot, m.Diagnostics())
	}
	return dg
}

// SizeReport returns a string reporting the size of the state, ions,
// mechanisms and matrix
func (lc *Lowered) SizeReport() string {
	var b strings.Builder
	st := lc.State
	ncv := st.NCV()
	// per-CV float64 arrays of the state, and int arrays
	stMem := ncv*8*9 + ncv*8*2 + len(st.GapJunctions)*24 + len(st.TimeSinceSpike)*8
	b.WriteString(fmt.Sprintf("%14s:\t Cells: %d\t CVs: %d\t Intdoms: %d\t Mem: %v\n", "State", len(lc.Gids), ncv,
		lc.NIntdom, (datasize.ByteSize)(stMem).HumanReadable()))
	tot := stMem
	for _, nm := range st.IonNames {
		is := st.Ion(nm)
		mem := is.Size() * 8 * 10
		tot += mem
		b.WriteString(fmt.Sprintf("%14s:\t CVs: %d\t Mem: %v\n", "ion "+nm, is.Size(), (datasize.ByteSize)(mem).HumanReadable()))
	}
	for id, m := range lc.Mechs {
		mem := m.DataSize()
		tot += mem
		b.WriteString(fmt.Sprintf("%14s:\t Sites: %d\t Mem: %v\n", lc.MechNames[id], m.Size(), (datasize.ByteSize)(mem).HumanReadable()))
	}
	for _, m := range lc.RevPotMechs {
		mem := m.DataSize()
		tot += mem
		b.WriteString(fmt.Sprintf("%14s:\t Sites: %d\t Mem: %v\n", m.Name(), m.Size(), (datasize.ByteSize)(mem).HumanReadable()))
	}
	mtMem := ncv * 8 * 9
	tot += mtMem
	b.WriteString(fmt.Sprintf("%14s:\t Mem: %v\n", "Matrix", (datasize.ByteSize)(mtMem).HumanReadable()))
	b.WriteString(fmt.Sprintf("\n%14s:\t Mem: %v\n", "Total", (datasize.ByteSize)(tot).HumanReadable()))
	return b.String()
}

// TimerReport reports the amount of time spent in each phase of the step
func (lc *Lowered) TimerReport() {
	fmt.Printf("TimerReport: cells: %v, NThreads: %v\n", len(lc.Gids), lc.Ctx.NThreads)
	fmt.Printf("\tFunction Name\tTotal Secs\tPct\n")
	fnms := make([]string, 0, len(lc.FunTimes))
	for k := range lc.FunTimes {
		fnms = append(fnms, k)
	}
	sort.Strings(fnms)
	pcts := make([]float64, len(fnms))
	tot := 0.0
	for i, fn := range fnms {
		pcts[i] = lc.FunTimes[fn].TotalSecs()
		tot += pcts[i]
	}
	for i, fn := range fnms {
		fmt.Printf("\t%v \t%6.4g\t%6.4g\n", fn, pcts[i], 100*(pcts[i]/math.Max(tot, 1e-12)))
	}
	fmt.Printf("\tTotal   \t%6.4g\n", tot)
}

// FunTimerStart starts function timer for given function name -- ensures creation of timer
func (lc *Lowered) FunTimerStart(fun string) {
	ft, ok := lc.FunTimes[fun]
	if !ok {
		ft = &timer.Time{}
		lc.FunTimes[fun] = ft
	}
	ft.Start()
}

// FunTimerStop stops function timer -- timer must already exist
func (lc *Lowered) FunTimerStop(fun string) {
	lc.FunTimes[fun].Stop()
}
