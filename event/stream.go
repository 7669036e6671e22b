// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package event

import (
	"fmt"
	"sort"
)

// Stream is a per integration domain queue of time ordered events
type Stream[E Timed] struct {
	events    []E
	spanBegin []int // first undelivered event of each domain
	spanEnd   []int
	mark      []int // end of the marked prefix of each domain
	gen       uint64
}

// NewStream returns an empty stream over nIntdom domains
func NewStream[E Timed](nIntdom int) *Stream[E] {
	return &Stream[E]{
		spanBegin: make([]int, nIntdom),
		spanEnd:   make([]int, nIntdom),
		mark:      make([]int, nIntdom),
	}
}

// Generation changes whenever the marked events change
func (st *Stream[E]) Generation() uint64 {
	return st.gen
}

// NIntdom returns the number of domains
func (st *Stream[E]) NIntdom() int {
	return len(st.spanBegin)
}

// Init replaces the contents of the stream with evs.  Order of events
// with equal domain and time is preserved.
func (st *Stream[E]) Init(evs []E) error {
	st.gen++
	st.events = append(st.events[:0], evs...)
	nd := len(st.spanBegin)
	for _, ev := range st.events {
		if d := ev.EventIntdom(); d < 0 || d >= nd {
			return fmt.Errorf("event: domain %d out of range [0, %d)", d, nd)
		}
	}
	sort.SliceStable(st.events, func(i, j int) bool {
		a, b := st.events[i], st.events[j]
		if a.EventIntdom() != b.EventIntdom() {
			return a.EventIntdom() < b.EventIntdom()
		}
		return a.EventTime() < b.EventTime()
	})
	for d := range st.spanBegin {
		st.spanBegin[d], st.spanEnd[d], st.mark[d] = 0, 0, 0
	}
	// domains without events get empty spans at the position they would occupy
	ev := 0
	for d := 0; d < nd; d++ {
		st.spanBegin[d] = ev
		for ev < len(st.events) && st.events[ev].EventIntdom() == d {
			ev++
		}
		st.spanEnd[d] = ev
		st.mark[d] = st.spanBegin[d]
	}
	return nil
}

// Clear removes all events
func (st *Stream[E]) Clear() {
	st.gen++
	st.events = st.events[:0]
	for d := range st.spanBegin {
		st.spanBegin[d], st.spanEnd[d], st.mark[d] = 0, 0, 0
	}
}

// Empty reports whether there are no undelivered events
func (st *Stream[E]) Empty() bool {
	for d := range st.spanBegin {
		if st.spanBegin[d] < st.spanEnd[d] {
			return false
		}
	}
	return true
}

// NPending returns the number of undelivered events
func (st *Stream[E]) NPending() int {
	n := 0
	for d := range st.spanBegin {
		n += st.spanEnd[d] - st.spanBegin[d]
	}
	return n
}

// MarkUntilAfter marks, per domain d, the pending events with time <= t[d]
func (st *Stream[E]) MarkUntilAfter(t []float64) {
	st.gen++
	for d := range st.spanBegin {
		m := st.spanBegin[d]
		for m < st.spanEnd[d] && st.events[m].EventTime() <= t[d] {
			m++
		}
		st.mark[d] = m
	}
}

// MarkUntil marks, per domain d, the pending events with time < t[d]
func (st *Stream[E]) MarkUntil(t []float64) {
	st.gen++
	for d := range st.spanBegin {
		m := st.spanBegin[d]
		for m < st.spanEnd[d] && st.events[m].EventTime() < t[d] {
			m++
		}
		st.mark[d] = m
	}
}

// Marked returns the marked events of domain d, in time order.
// The returned slice is only valid until the next call to DropMarked or Init.
func (st *Stream[E]) Marked(d int) []E {
	return st.events[st.spanBegin[d]:st.mark[d]]
}

// NMarked returns the number of marked events over all domains
func (st *Stream[E]) NMarked() int {
	n := 0
	for d := range st.spanBegin {
		n += st.mark[d] - st.spanBegin[d]
	}
	return n
}

// DropMarked removes the marked events
func (st *Stream[E]) DropMarked() {
	st.gen++
	copy(st.spanBegin, st.mark)
}

// EventTimeIfBefore lowers tTo[d] to the time of the first unmarked event
// of domain d, if that event is earlier.  Marking the events due at the
// start of a step first keeps the step length positive.
func (st *Stream[E]) EventTimeIfBefore(tTo []float64) {
	for d := range st.spanBegin {
		if st.mark[d] == st.spanEnd[d] {
			continue
		}
		if t := st.events[st.mark[d]].EventTime(); t < tTo[d] {
			tTo[d] = t
		}
	}
}
