// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import "fmt"

// Crossing is an upward threshold crossing of detector Index at Time (ms)
type Crossing struct {
	Index int
	Time  float64
}

// ThresholdWatcher detects upward threshold crossings of the voltage at a
// set of CVs.  A detector fires once and re-arms when the voltage drops
// below threshold again.
type ThresholdWatcher struct {
	CV         []int     `desc:"CV watched by each detector"`
	Threshold  []float64 `desc:"threshold, mV"`
	SrcToSpike []int     `desc:"slot of each detector in time since spike, empty if unused"`
	VPrev      []float64 `desc:"voltage at the previous test"`
	IsCrossed  []bool    `desc:"detector is above threshold"`

	crossings []Crossing
}

// Init sets up the detectors
func (tw *ThresholdWatcher) Init(cvs []int, thresholds []float64, srcToSpike []int) error {
	if len(cvs) != len(thresholds) {
		return fmt.Errorf("threshold watcher: %d CVs and %d thresholds", len(cvs), len(thresholds))
	}
	if len(srcToSpike) != 0 && len(srcToSpike) != len(cvs) {
		return fmt.Errorf("threshold watcher: %d spike slots for %d detectors", len(srcToSpike), len(cvs))
	}
	tw.CV = cvs
	tw.Threshold = thresholds
	tw.SrcToSpike = srcToSpike
	tw.VPrev = make([]float64, len(cvs))
	tw.IsCrossed = make([]bool, len(cvs))
	tw.crossings = nil
	return nil
}

// Size returns the number of detectors
func (tw *ThresholdWatcher) Size() int {
	return len(tw.CV)
}

// Reset clears crossings and arms the detectors from voltage v
func (tw *ThresholdWatcher) Reset(v []float64) {
	tw.ClearCrossings()
	for i, cv := range tw.CV {
		tw.VPrev[i] = v[cv]
		tw.IsCrossed[i] = v[cv] >= tw.Threshold[i]
	}
}

// ClearCrossings discards the recorded crossings
func (tw *ThresholdWatcher) ClearCrossings() {
	tw.crossings = tw.crossings[:0]
}

// Crossings returns the crossings recorded since the last clear
func (tw *ThresholdWatcher) Crossings() []Crossing {
	return tw.crossings
}

// Test checks the new voltage v after a step from tBefore to tAfter
// (per domain).  Crossing times are linearly interpolated within the step.
// timeSinceSpike, if not empty, receives tAfter - crossing time for each
// detector that fired.
func (tw *ThresholdWatcher) Test(tBefore, tAfter []float64, cvToIntdom []int, v, timeSinceSpike []float64) {
	for i, cv := range tw.CV {
		vp, vn, th := tw.VPrev[i], v[cv], tw.Threshold[i]
		if !tw.IsCrossed[i] {
			if vn >= th {
				d := cvToIntdom[cv]
				pos := (th - vp) / (vn - vp)
				tc := tBefore[d] + pos*(tAfter[d]-tBefore[d])
				tw.crossings = append(tw.crossings, Crossing{Index: i, Time: tc})
				tw.IsCrossed[i] = true
				if len(timeSinceSpike) > 0 {
					timeSinceSpike[tw.SrcToSpike[i]] = tAfter[d] - tc
				}
			}
		} else if vn < th {
			tw.IsCrossed[i] = false
		}
		tw.VPrev[i] = vn
	}
}
