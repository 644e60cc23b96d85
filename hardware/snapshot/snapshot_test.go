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

package snapshot_test

import (
	"testing"

	"github.com/go64/c64core/hardware/snapshot"
)

// counter is a minimal stateful component: one byte that survives
// reset, one that doesn't.
type counter struct {
	value   uint8
	scratch uint8
}

func (c *counter) Declare() []snapshot.Item {
	return []snapshot.Item{
		{
			Name: "value", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{c.value} },
			Set: func(b []byte) { c.value = b[0] },
		},
		{
			Name: "scratch", Size: 1, Policy: snapshot.ClearOnReset,
			Get: func() []byte { return []byte{c.scratch} },
			Set: func(b []byte) { c.scratch = b[0] },
		},
	}
}

func TestSnapshot_captureAndRestoreRoundTrips(t *testing.T) {
	src := &counter{value: 42, scratch: 7}
	c := snapshot.Capture("PAL", 1000, nil, src)

	dst := &counter{}
	if err := snapshot.Restore(c, dst); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if dst.value != 42 || dst.scratch != 7 {
		t.Fatalf("restored counter = %+v, want value=42 scratch=7", dst)
	}
}

func TestSnapshot_marshalUnmarshalRoundTrips(t *testing.T) {
	src := &counter{value: 200, scratch: 99}
	c := snapshot.Capture("NTSC", 123456789, []byte{1, 2, 3}, src)

	raw := snapshot.Marshal(c)
	back, err := snapshot.Unmarshal(raw)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Model != "NTSC" || back.Cycle != 123456789 || len(back.Screenshot) != 3 {
		t.Fatalf("unmarshaled header = %+v", back)
	}

	dst := &counter{}
	if err := snapshot.Restore(back, dst); err != nil {
		t.Fatalf("Restore after round trip: %v", err)
	}
	if dst.value != 200 || dst.scratch != 99 {
		t.Fatalf("restored counter after round trip = %+v", dst)
	}
}

func TestSnapshot_unmarshalRejectsBadMagic(t *testing.T) {
	_, err := snapshot.Unmarshal([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	if err != snapshot.ErrMagicMismatch {
		t.Fatalf("Unmarshal with bad magic = %v, want ErrMagicMismatch", err)
	}
}

// widerCounter has an extra field compared to counter, simulating a
// component graph that has drifted since the snapshot was taken.
type widerCounter struct {
	value, scratch, extra uint8
}

func (c *widerCounter) Declare() []snapshot.Item {
	return []snapshot.Item{
		{
			Name: "value", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{c.value} },
			Set: func(b []byte) { c.value = b[0] },
		},
		{
			Name: "scratch", Size: 1, Policy: snapshot.ClearOnReset,
			Get: func() []byte { return []byte{c.scratch} },
			Set: func(b []byte) { c.scratch = b[0] },
		},
		{
			Name: "extra", Size: 1, Policy: snapshot.ClearOnReset,
			Get: func() []byte { return []byte{c.extra} },
			Set: func(b []byte) { c.extra = b[0] },
		},
	}
}

func TestSnapshot_restoreRefusesLayoutMismatch(t *testing.T) {
	src := &counter{value: 1, scratch: 2}
	c := snapshot.Capture("PAL", 0, nil, src)

	dst := &widerCounter{value: 9, scratch: 9, extra: 9}
	err := snapshot.Restore(c, dst)
	if err == nil {
		t.Fatalf("Restore with mismatched layout succeeded, want ErrLayoutMismatch")
	}
	if dst.value != 9 || dst.scratch != 9 || dst.extra != 9 {
		t.Fatalf("Restore mutated component state despite refusing: %+v", dst)
	}
}

func TestSnapshot_applyResetClearsOnlyClearOnResetFields(t *testing.T) {
	c := &counter{value: 42, scratch: 7}
	snapshot.ApplyReset(c.Declare())
	if c.value != 42 {
		t.Fatalf("KeepOnReset field changed by ApplyReset: value=%d", c.value)
	}
	if c.scratch != 0 {
		t.Fatalf("ClearOnReset field not zeroed by ApplyReset: scratch=%d", c.scratch)
	}
}
