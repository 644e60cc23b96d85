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

package delay_test

import (
	"testing"

	"github.com/go64/c64core/hardware/delay"
)

func expectSuccess(t *testing.T, ok bool) {
	t.Helper()
	if !ok {
		t.Fatalf("expected success")
	}
}

func expectFailure(t *testing.T, ok bool) {
	t.Helper()
	if ok {
		t.Fatalf("expected failure")
	}
}

func equate(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestDelay_schedulingDelays(t *testing.T) {
	tck := delay.NewTicker("test")

	expectFailure(t, tck.Tick())
	expectFailure(t, tck.Tick())

	tck.Schedule(-1, func() {}, "test event")
	expectFailure(t, tck.Tick())
	expectFailure(t, tck.Tick())

	ev := tck.Schedule(0, func() {}, "test event")
	expectSuccess(t, ev.JustStarted())
	expectSuccess(t, ev.AboutToEnd())
	expectSuccess(t, tck.Tick())
	expectFailure(t, tck.Tick())
	expectFailure(t, tck.Tick())

	ev = tck.Schedule(1, func() {}, "test event")
	expectSuccess(t, ev.JustStarted())
	expectFailure(t, ev.AboutToEnd())
	expectFailure(t, tck.Tick())
	expectSuccess(t, ev.AboutToEnd())
	expectSuccess(t, tck.Tick())
	expectFailure(t, tck.Tick())
	expectFailure(t, tck.Tick())

	sentinel := false

	ev = tck.Schedule(2, func() { sentinel = true }, "test event")
	expectSuccess(t, ev.JustStarted())
	expectFailure(t, ev.AboutToEnd())
	expectFailure(t, tck.Tick())
	equate(t, ev.RemainingCycles(), 1)
	expectFailure(t, tck.Tick())
	expectSuccess(t, ev.AboutToEnd())
	expectSuccess(t, tck.Tick())

	expectSuccess(t, sentinel)

	expectFailure(t, tck.Tick())
	expectFailure(t, tck.Tick())
}

func TestDelay_force(t *testing.T) {
	tck := delay.NewTicker("test")

	sentinel := false

	ev := tck.Schedule(2, func() { sentinel = true }, "test event")
	expectSuccess(t, ev.JustStarted())
	expectFailure(t, ev.AboutToEnd())
	equate(t, ev.RemainingCycles(), 2)
	ev.Force()
	equate(t, ev.RemainingCycles(), -1)
	expectSuccess(t, sentinel)
	expectFailure(t, tck.Tick())
}

func TestDelay_drop(t *testing.T) {
	tck := delay.NewTicker("test")

	sentinel := false

	ev := tck.Schedule(2, func() { sentinel = true }, "test event")
	expectSuccess(t, ev.JustStarted())
	expectFailure(t, ev.AboutToEnd())
	equate(t, ev.RemainingCycles(), 2)
	ev.Drop()
	equate(t, ev.RemainingCycles(), -1)
	expectFailure(t, sentinel)
	expectFailure(t, tck.Tick())
}

func TestDelay_dropAmongMany(t *testing.T) {
	tck := delay.NewTicker("test")

	tck.Schedule(5, func() {}, "test event")
	ev := tck.Schedule(3, func() {}, "test event")
	expectFailure(t, tck.Tick())
	equate2String(t, tck.String(), "test: test event -> 4\ntest: test event -> 2")
	ev.Drop()
	equate2String(t, tck.String(), "test: test event -> 4")
}

func equate2String(t *testing.T, got, want string) {
	t.Helper()
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
