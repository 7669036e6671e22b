// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package event holds the deliverable events of a lowered cell group and the
per integration domain event stream that releases them step by step.

A Stream is loaded once per integration epoch with all the events that fall
in it.  Events are kept sorted by domain and then time, so that each domain
has a contiguous span that is consumed from the front: MarkUntilAfter (or
MarkUntil) marks the prefix that is due, Marked exposes it, and DropMarked
discards it once delivered.  EventTimeIfBefore clamps each domain's next
step end to its next unmarked event, so no event is ever applied before
its own time.
*/
package event
