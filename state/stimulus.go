// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import (
	"fmt"
	"math"
	"sort"
)

// StimConfig describes one current clamp on a CV
type StimConfig struct {
	CV        int
	Weight    float64   `desc:"nA to A/m² scale for the CV: 1e3/area"`
	Frequency float64   `desc:"modulation frequency in Hz, 0 for none"`
	Phase     float64   `desc:"modulation phase in radians"`
	EnvTime   []float64 `desc:"envelope times, ms, non-decreasing"`
	EnvAmp    []float64 `desc:"envelope amplitudes, nA"`
}

// Stimulus holds all current clamps of the group in flat arrays
type Stimulus struct {
	CV        []int
	Weight    []float64
	Frequency []float64
	Phase     []float64
	EnvDivs   []int `desc:"envelope of clamp i is [EnvDivs[i], EnvDivs[i+1]) of EnvTime / EnvAmp"`
	EnvTime   []float64
	EnvAmp    []float64
}

// Configure replaces all clamps
func (sm *Stimulus) Configure(ncv int, cfgs []StimConfig) error {
	*sm = Stimulus{EnvDivs: []int{0}}
	for i, sc := range cfgs {
		if sc.CV < 0 || sc.CV >= ncv {
			return fmt.Errorf("stimulus %d: CV %d out of range [0, %d)", i, sc.CV, ncv)
		}
		if len(sc.EnvTime) != len(sc.EnvAmp) {
			return fmt.Errorf("stimulus %d: envelope has %d times and %d amplitudes", i, len(sc.EnvTime), len(sc.EnvAmp))
		}
		if !sort.Float64sAreSorted(sc.EnvTime) {
			return fmt.Errorf("stimulus %d: envelope times must be non-decreasing", i)
		}
		sm.CV = append(sm.CV, sc.CV)
		sm.Weight = append(sm.Weight, sc.Weight)
		sm.Frequency = append(sm.Frequency, sc.Frequency)
		sm.Phase = append(sm.Phase, sc.Phase)
		sm.EnvTime = append(sm.EnvTime, sc.EnvTime...)
		sm.EnvAmp = append(sm.EnvAmp, sc.EnvAmp...)
		sm.EnvDivs = append(sm.EnvDivs, len(sm.EnvTime))
	}
	return nil
}

// Size returns the number of clamps
func (sm *Stimulus) Size() int {
	return len(sm.CV)
}

// Current returns the current (nA) of clamp i at time t (ms)
func (sm *Stimulus) Current(i int, t float64) float64 {
	ts := sm.EnvTime[sm.EnvDivs[i]:sm.EnvDivs[i+1]]
	as := sm.EnvAmp[sm.EnvDivs[i]:sm.EnvDivs[i+1]]
	// k: number of points at or before t
	k := sort.Search(len(ts), func(j int) bool { return ts[j] > t })
	var amp float64
	switch {
	case k == 0:
		return 0
	case k == len(ts):
		amp = as[k-1]
	default:
		t0, t1 := ts[k-1], ts[k]
		amp = as[k-1] + (as[k]-as[k-1])*(t-t0)/(t1-t0)
	}
	if f := sm.Frequency[i]; f > 0 {
		amp *= math.Sin(2*math.Pi*f*t*1e-3 + sm.Phase[i])
	}
	return amp
}

// AddCurrent evaluates every clamp at its domain time and subtracts the
// scaled current from J, also accumulating it into stimJ.
func (sm *Stimulus) AddCurrent(time []float64, cvToIntdom []int, J, stimJ []float64) {
	for i, cv := range sm.CV {
		ij := sm.Weight[i] * sm.Current(i, time[cvToIntdom[cv]])
		J[cv] -= ij
		stimJ[cv] -= ij
	}
}
