// This file is part of c64core.
//
// c64core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// c64core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with c64core.  If not, see <https://www.gnu.org/licenses/>.

// Package delay implements a small scheduler for "do this N cycles from
// now" effects. The VIC-II's pixel pipeline latches register writes for a
// fixed number of pixels, the CIA force-load bit takes effect on the next
// cycle regardless of timer state, and the processor port's floating bits
// discharge on a schedule measured in whole cycles — all of these are
// instances of the same shape: schedule a payload, advance a clock one step
// at a time, and run the payload when the countdown reaches zero.
package delay

import (
	"fmt"
	"strings"
)

// Event is a single scheduled payload.
type Event struct {
	ticker    *Ticker
	label     string
	delay     int
	remaining int
	payload   func()
	done      bool
}

// JustStarted reports whether the event has not yet been ticked.
func (e *Event) JustStarted() bool {
	return !e.done && e.remaining == e.delay
}

// AboutToEnd reports whether the next call to Ticker.Tick will run this
// event's payload.
func (e *Event) AboutToEnd() bool {
	return !e.done && e.remaining == 0
}

// RemainingCycles returns the number of Tick calls before the payload runs,
// or -1 if the event has already fired, been forced, or been dropped.
func (e *Event) RemainingCycles() int {
	if e.done {
		return -1
	}
	return e.remaining
}

// Force runs the payload immediately and removes the event from its
// ticker's pending list.
func (e *Event) Force() {
	if e.done {
		return
	}
	e.ticker.remove(e)
	e.done = true
	e.remaining = -1
	e.payload()
}

// Drop removes the event from its ticker's pending list without running the
// payload.
func (e *Event) Drop() {
	if e.done {
		return
	}
	e.ticker.remove(e)
	e.done = true
	e.remaining = -1
}

// Ticker holds a named set of pending events and advances them together,
// one cycle at a time.
type Ticker struct {
	label   string
	pending []*Event
}

// NewTicker creates an empty Ticker.
func NewTicker(label string) *Ticker {
	return &Ticker{label: label}
}

// Schedule arranges for payload to run after delay calls to Tick. A delay
// of zero means the payload runs on the very next Tick; a negative delay
// means the payload runs immediately, and the returned Event is already
// finished.
func (t *Ticker) Schedule(delay int, payload func(), label string) *Event {
	ev := &Event{ticker: t, label: label, delay: delay, remaining: delay, payload: payload}
	if delay < 0 {
		ev.done = true
		ev.remaining = -1
		payload()
		return ev
	}
	t.pending = append(t.pending, ev)
	return ev
}

func (t *Ticker) remove(ev *Event) {
	for i, e := range t.pending {
		if e == ev {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			return
		}
	}
}

// Tick advances every pending event by one cycle, running the payload of
// any event whose countdown has reached zero. It returns true if at least
// one payload ran this tick.
func (t *Ticker) Tick() bool {
	fired := false

	// snapshot the pending list: payloads may themselves call Schedule,
	// and we don't want to tick anything scheduled during this Tick call.
	due := t.pending
	t.pending = nil

	for _, ev := range due {
		if ev.remaining == 0 {
			ev.done = true
			ev.remaining = -1
			ev.payload()
			fired = true
		} else {
			ev.remaining--
			t.pending = append(t.pending, ev)
		}
	}

	return fired
}

// String renders every pending event as "label: event -> remaining", one
// per line, in scheduling order.
func (t *Ticker) String() string {
	var b strings.Builder
	for i, ev := range t.pending {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s -> %d", t.label, ev.label, ev.remaining)
	}
	return b.String()
}
