// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ev(t float64, mech, idx, dom int, w float64) DeliverableEvent {
	return DeliverableEvent{Time: t, Handle: TargetHandle{MechID: mech, MechIndex: idx, Intdom: dom}, Weight: w}
}

func times(evs []DeliverableEvent) []float64 {
	ts := make([]float64, len(evs))
	for i, e := range evs {
		ts[i] = e.Time
	}
	return ts
}

func TestStreamMark(t *testing.T) {
	st := NewStream[DeliverableEvent](3)
	assert.True(t, st.Empty())
	require.NoError(t, st.Init([]DeliverableEvent{
		ev(2, 0, 0, 2, 1), ev(1, 0, 1, 0, 1), ev(3, 1, 0, 0, 1),
		ev(1, 0, 0, 2, 2), ev(1, 1, 1, 0, 3), ev(2.5, 0, 0, 2, 4),
	}))
	assert.False(t, st.Empty())
	assert.Equal(t, 6, st.NPending())

	st.MarkUntilAfter([]float64{1, 1, 1})
	assert.Equal(t, 3, st.NMarked())
	m0 := st.Marked(0)
	require.Len(t, m0, 2)
	// stable for equal times
	assert.Equal(t, 1, m0[0].Handle.MechIndex)
	assert.Equal(t, 3.0, m0[1].Weight)
	assert.Empty(t, st.Marked(1))
	assert.Equal(t, []float64{1}, times(st.Marked(2)))

	tTo := []float64{5, 5, 2.2}
	st.EventTimeIfBefore(tTo)
	assert.Equal(t, []float64{3, 5, 2}, tTo)

	st.DropMarked()
	assert.Equal(t, 3, st.NPending())
	st.MarkUntil([]float64{3, 3, 2.5})
	assert.Empty(t, st.Marked(0))
	assert.Equal(t, []float64{2}, times(st.Marked(2)))
	st.MarkUntilAfter([]float64{3, 3, 2.5})
	assert.Equal(t, []float64{3}, times(st.Marked(0)))
	assert.Equal(t, []float64{2, 2.5}, times(st.Marked(2)))
	st.DropMarked()
	assert.True(t, st.Empty())

	g := st.Generation()
	st.Clear()
	assert.True(t, st.Empty())
	assert.NotEqual(t, g, st.Generation())
}

func TestStreamBadDomain(t *testing.T) {
	st := NewStream[DeliverableEvent](1)
	assert.Error(t, st.Init([]DeliverableEvent{ev(1, 0, 0, 1, 1)}))
}
