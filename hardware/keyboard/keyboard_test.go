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

package keyboard_test

import (
	"testing"

	"github.com/go64/c64core/hardware/keyboard"
	"github.com/go64/c64core/message"
)

func newTestKeyboard() (*keyboard.Keyboard, *[]bool, *[]message.Tag) {
	nmiHistory := &[]bool{}
	messages := &[]message.Tag{}
	k := keyboard.New(
		func(asserted bool) { *nmiHistory = append(*nmiHistory, asserted) },
		func(tag message.Tag) { *messages = append(*messages, tag) },
	)
	return k, nmiHistory, messages
}

func TestKeyboard_pressKeyPullsRowAndColumnLow(t *testing.T) {
	k, _, _ := newTestKeyboard()

	// With no columns selected, nothing reads back pressed.
	if k.ReadPortB(0x00) != 0xFF {
		t.Fatalf("ReadPortB with no columns selected = %#x, want 0xFF", k.ReadPortB(0x00))
	}

	k.PressKey(1, 3) // row 1, column 3: RUN/STOP on a real matrix layout
	if !k.KeyIsPressed(1, 3) {
		t.Fatalf("KeyIsPressed(1,3) = false after PressKey")
	}

	// Selecting strobe line 1 (the key's row argument) on port A should
	// read column 3 (the key's col argument) pulled low on port B.
	got := k.ReadPortB(1 << 1)
	if got&(1<<3) != 0 {
		t.Fatalf("ReadPortB(line 1 selected) = %#x, want bit 3 clear", got)
	}

	k.ReleaseKey(1, 3)
	if k.KeyIsPressed(1, 3) {
		t.Fatalf("KeyIsPressed(1,3) = true after ReleaseKey")
	}
	got = k.ReadPortB(1 << 1)
	if got&(1<<3) == 0 {
		t.Fatalf("ReadPortB(line 1 selected) = %#x after release, want bit 3 set", got)
	}
}

func TestKeyboard_toggleKeyFlipsState(t *testing.T) {
	k, _, _ := newTestKeyboard()
	k.ToggleKey(0, 0)
	if !k.KeyIsPressed(0, 0) {
		t.Fatalf("expected pressed after first ToggleKey")
	}
	k.ToggleKey(0, 0)
	if k.KeyIsPressed(0, 0) {
		t.Fatalf("expected released after second ToggleKey")
	}
}

func TestKeyboard_pressKeyPostsKeymatrixMessage(t *testing.T) {
	k, _, messages := newTestKeyboard()
	k.PressKey(2, 2)
	if len(*messages) == 0 || (*messages)[0] != message.Keymatrix {
		t.Fatalf("expected a Keymatrix message, got %v", *messages)
	}
}

func TestKeyboard_shiftLockForcesRightShiftCellOnColumn6(t *testing.T) {
	k, _, _ := newTestKeyboard()
	k.SetShiftLock(true)

	got := k.ReadPortB(1 << 6)
	if got&(1<<4) != 0 {
		t.Fatalf("ReadPortB(col 6 selected) with shift lock = %#x, want bit 4 clear", got)
	}

	// Releasing the right-shift cell directly must be refused while
	// shift lock holds it, matching the original's guard.
	k.PressKey(6, 4)
	k.ReleaseKey(6, 4)
	if !k.KeyIsPressed(6, 4) {
		t.Fatalf("right-shift cell released despite shift lock being engaged")
	}
}

func TestKeyboard_restoreKeyPulsesNMI(t *testing.T) {
	k, nmiHistory, _ := newTestKeyboard()
	k.PressRestore()
	k.ReleaseRestore()
	want := []bool{true, false}
	if len(*nmiHistory) != len(want) {
		t.Fatalf("nmiHistory = %v, want %v", *nmiHistory, want)
	}
	for i := range want {
		if (*nmiHistory)[i] != want[i] {
			t.Fatalf("nmiHistory = %v, want %v", *nmiHistory, want)
		}
	}
}

func TestKeyboard_joystick1SharesPortBWithMatrix(t *testing.T) {
	k, _, _ := newTestKeyboard()
	k.SetJoystick(1, keyboard.Centered, keyboard.Negative, true) // up + fire

	got := k.ReadPortB(0x00) // no matrix columns selected
	if got&(1<<0) != 0 {
		t.Fatalf("ReadPortB up bit = set, want clear for joystick up")
	}
	if got&(1<<4) != 0 {
		t.Fatalf("ReadPortB fire bit = set, want clear for joystick fire")
	}
	if got&(1<<2) == 0 {
		t.Fatalf("ReadPortB left bit = clear, want set (not deflected)")
	}
}

func TestKeyboard_joystick2ReadsOnPortA(t *testing.T) {
	k, _, _ := newTestKeyboard()
	k.SetJoystick(2, keyboard.Positive, keyboard.Centered, false) // right

	got := k.ReadPortA(0xFF)
	if got&(1<<3) != 0 {
		t.Fatalf("ReadPortA right bit = set, want clear for joystick right")
	}
}

func TestKeyboard_readInputMirrorsJoystickLatches(t *testing.T) {
	k, _, _ := newTestKeyboard()
	k.SetJoystick(1, keyboard.Centered, keyboard.Centered, true)
	if k.ReadInput(1)&(1<<4) != 0 {
		t.Fatalf("ReadInput(1) fire bit = set, want clear")
	}
	if k.ReadInput(2) != 0xFF {
		t.Fatalf("ReadInput(2) = %#x, want 0xFF (untouched port)", k.ReadInput(2))
	}
	if k.ReadInput(3) != 0xFF {
		t.Fatalf("ReadInput(3) = %#x, want 0xFF (no such port)", k.ReadInput(3))
	}
}

func TestKeyboard_resetReleasesMatrixAndJoysticksButNotRestore(t *testing.T) {
	k, _, _ := newTestKeyboard()
	k.PressKey(0, 0)
	k.SetShiftLock(true)
	k.SetJoystick(1, keyboard.Positive, keyboard.Positive, true)

	k.Reset()

	if k.KeyIsPressed(0, 0) {
		t.Fatalf("key still pressed after Reset")
	}
	if k.ReadInput(1) != 0xFF {
		t.Fatalf("joystick 1 still deflected after Reset")
	}
	// Shift lock forcing bit 4 low on column 6 should no longer fire.
	if got := k.ReadPortB(1 << 6); got&(1<<4) == 0 {
		t.Fatalf("ReadPortB(col 6) = %#x after Reset, want bit 4 set (shift lock cleared)", got)
	}
}

func TestKeyboard_declareRoundTripsThroughSnapshot(t *testing.T) {
	k, _, _ := newTestKeyboard()
	k.PressKey(3, 5)
	k.SetShiftLock(true)
	k.SetJoystick(1, keyboard.Negative, keyboard.Positive, true)

	items := k.Declare()
	captured := make([][]byte, len(items))
	for i, it := range items {
		v := it.Get()
		captured[i] = append([]byte(nil), v...)
	}

	k.Reset()
	if k.KeyIsPressed(3, 5) {
		t.Fatalf("key still pressed after Reset, test setup invalid")
	}

	for i, it := range items {
		it.Set(captured[i])
	}

	if !k.KeyIsPressed(3, 5) {
		t.Fatalf("key not restored after Declare round trip")
	}
	if k.ReadInput(1) == 0xFF {
		t.Fatalf("joystick 1 not restored after Declare round trip")
	}
}
