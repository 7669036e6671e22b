// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package event

import "fmt"

// TargetHandle addresses one event-receiving site of a mechanism
type TargetHandle struct {
	MechID    int `desc:"id of the mechanism within the cell group"`
	MechIndex int `desc:"index of the site within the mechanism"`
	Intdom    int `desc:"integration domain of the site's cell"`
}

func (th TargetHandle) String() string {
	return fmt.Sprintf("{mech %d, index %d, intdom %d}", th.MechID, th.MechIndex, th.Intdom)
}

// DeliverableEvent is a weighted event due for a target at a time (ms)
type DeliverableEvent struct {
	Time   float64
	Handle TargetHandle
	Weight float64
}

// EventTime returns the event time
func (ev DeliverableEvent) EventTime() float64 { return ev.Time }

// EventIntdom returns the integration domain of the target
func (ev DeliverableEvent) EventIntdom() int { return ev.Handle.Intdom }

// Timed is an event with a time and an integration domain
type Timed interface {
	EventTime() float64
	EventIntdom() int
}
