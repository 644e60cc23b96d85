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

// Package keyboard implements the latches CIA1's ports are wired to:
// an 8x8 keyboard matrix with a shift-lock flag, the RESTORE key's NMI
// pulse, and the two joystick ports, one of which shares CIA1's port A
// with the matrix's column strobe. None of it acquires input itself —
// a host frontend calls PressKey/ReleaseKey/SetJoystick; this package
// only holds the resulting latch state and answers the CIA's reads.
package keyboard

import (
	"github.com/go64/c64core/hardware/snapshot"
	"github.com/go64/c64core/message"
)

// Direction is one axis of joystick deflection, matching ControlPort's
// three-state axis (pulled, centered, pulled the other way).
type Direction int8

const (
	Centered Direction = 0
	Negative Direction = -1
	Positive Direction = 1
)

// joystick is one port's latched state: two axes and a button, each
// independent of how a host frontend acquired them.
type joystick struct {
	axisX, axisY Direction
	button       bool
}

// bitmask returns the port's active-low 5-bit reading (bit0..3 =
// up/down/left/right, bit4 = fire), matching ControlPort::bitmask.
// The upper three bits float high; a CIA port also carrying other
// external circuitry on those pins ignores them.
func (j joystick) bitmask() uint8 {
	result := uint8(0xFF)
	if j.axisY == Negative {
		result &^= 1 << 0
	}
	if j.axisY == Positive {
		result &^= 1 << 1
	}
	if j.axisX == Negative {
		result &^= 1 << 2
	}
	if j.axisX == Positive {
		result &^= 1 << 3
	}
	if j.button {
		result &^= 1 << 4
	}
	return result
}

// Keyboard is CIA1's peripheral: the keyboard matrix, both joystick
// ports, and the RESTORE key's NMI line.
type Keyboard struct {
	matrixRow [8]uint8
	matrixCol [8]uint8
	shiftLock bool

	port1, port2 joystick

	setNMI    func(asserted bool)
	onMessage func(tag message.Tag)
}

// New constructs a Keyboard. setNMI asserts or releases the CPU's
// keyboard NMI source (cpu.CPU.SetNMI with cpu.SourceKeyboard) for the
// RESTORE key; onMessage, if non-nil, is notified of matrix changes
// the way the original reports them via C64::putMessage(MSG_KEYMATRIX).
func New(setNMI func(asserted bool), onMessage func(tag message.Tag)) *Keyboard {
	k := &Keyboard{setNMI: setNMI, onMessage: onMessage}
	k.releaseAll()
	return k
}

// Reset releases every key, the joystick ports, and shift lock,
// matching Keyboard::reset/ControlPort::reset. It does not touch the
// RESTORE key's NMI line; a frontend holding RESTORE through a reset
// is expected to have already asserted it via PressRestore.
func (k *Keyboard) Reset() {
	k.releaseAll()
	k.shiftLock = false
	k.port1 = joystick{}
	k.port2 = joystick{}
}

func (k *Keyboard) releaseAll() {
	for i := range k.matrixRow {
		k.matrixRow[i] = 0xFF
		k.matrixCol[i] = 0xFF
	}
}

// PressKey and ReleaseKey set or clear one matrix cell, matching
// Keyboard::pressKey/releaseKey. row and col must each be under 8.
func (k *Keyboard) PressKey(row, col uint8) {
	k.matrixRow[row] &^= 1 << col
	k.matrixCol[col] &^= 1 << row
	k.notifyMatrix()
}

func (k *Keyboard) ReleaseKey(row, col uint8) {
	// The original refuses to release the right-shift cell (row 6, col
	// 4) while shift lock holds it down; matched here.
	if row == 6 && col == 4 && k.shiftLock {
		return
	}
	k.matrixRow[row] |= 1 << col
	k.matrixCol[col] |= 1 << row
	k.notifyMatrix()
}

// ToggleKey presses a released cell or releases a pressed one.
func (k *Keyboard) ToggleKey(row, col uint8) {
	if k.KeyIsPressed(row, col) {
		k.ReleaseKey(row, col)
	} else {
		k.PressKey(row, col)
	}
}

// KeyIsPressed reports one matrix cell's current state.
func (k *Keyboard) KeyIsPressed(row, col uint8) bool {
	return k.matrixRow[row]&(1<<col) == 0
}

// SetShiftLock sets the shift-lock flag, which behaves as a
// continuously-held right-shift key for as long as it is engaged.
func (k *Keyboard) SetShiftLock(engaged bool) {
	if engaged != k.shiftLock {
		k.shiftLock = engaged
		k.notifyMatrix()
	}
}

func (k *Keyboard) notifyMatrix() {
	if k.onMessage != nil {
		k.onMessage(message.Keymatrix)
	}
}

// PressRestore and ReleaseRestore assert and release the RESTORE key's
// NMI source. Real hardware pulls the CPU's NMI line directly rather
// than going through the matrix; the orchestrator is expected to keep
// the line asserted for as long as the key is held, since the CPU's
// NMI edge detector only needs to see the rising edge once.
func (k *Keyboard) PressRestore() {
	if k.setNMI != nil {
		k.setNMI(true)
	}
}

func (k *Keyboard) ReleaseRestore() {
	if k.setNMI != nil {
		k.setNMI(false)
	}
}

// SetJoystick latches one port's full state at once; port must be 1 or
// 2. A port outside that range is silently ignored.
func (k *Keyboard) SetJoystick(port int, axisX, axisY Direction, button bool) {
	j := joystick{axisX: axisX, axisY: axisY, button: button}
	switch port {
	case 1:
		k.port1 = j
	case 2:
		k.port2 = j
	}
}

// getRowValues returns the row readback for a given column-select mask
// driven on port A, matching Keyboard::getRowValues including the
// shift-lock override: holding shift lock forces the right-shift cell
// (row 6, column 4) to read pressed whenever column 6 is selected on
// the probed row's bit position (bit 4 of the result).
func (k *Keyboard) getRowValues(columnMask uint8) uint8 {
	result := uint8(0xFF)
	for i := 0; i < 8; i++ {
		if columnMask&(1<<i) != 0 {
			result &= k.matrixRow[i]
		}
	}
	if k.shiftLock && columnMask&(1<<6) != 0 {
		result &^= 1 << 4
	}
	return result
}

// ReadPortA returns CIA1 port A's externally-pulled bits: joystick
// port 2 only. The keyboard matrix's column strobe is an output on
// these same pins, not an input, so it has nothing to contribute here.
func (k *Keyboard) ReadPortA(outA uint8) uint8 {
	return k.port2.bitmask()
}

// ReadPortB returns CIA1 port B's externally-pulled bits: the keyboard
// row readback selected by outA's column strobe, wired-ANDed with
// joystick port 1 sharing the same five low bits.
func (k *Keyboard) ReadPortB(outA uint8) uint8 {
	return k.getRowValues(outA) & k.port1.bitmask()
}

// ReadInput answers bus.InputDeviceBus for a debugger or frontend that
// wants a port's joystick reading without going through CIA1 at all.
// Ports other than 1 and 2 read back as unpressed.
func (k *Keyboard) ReadInput(port int) uint8 {
	switch port {
	case 1:
		return k.port1.bitmask()
	case 2:
		return k.port2.bitmask()
	default:
		return 0xFF
	}
}

// Declare satisfies snapshot.Declarer: the matrix, shift lock, and
// both joystick latches survive a reset (a held key or joystick
// deflection isn't a machine state the RESTORE/reset path should
// clear out from under whatever is holding it).
func (k *Keyboard) Declare() []snapshot.Item {
	return []snapshot.Item{
		{Name: "Keyboard.MatrixRow", Size: 8, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return k.matrixRow[:] },
			Set: func(b []byte) { copy(k.matrixRow[:], b) }},
		{Name: "Keyboard.MatrixCol", Size: 8, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return k.matrixCol[:] },
			Set: func(b []byte) { copy(k.matrixCol[:], b) }},
		{Name: "Keyboard.ShiftLock", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{boolByte(k.shiftLock)} },
			Set: func(b []byte) { k.shiftLock = b[0] != 0 }},
		{Name: "Keyboard.Port1", Size: 3, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return encodeJoystick(k.port1) },
			Set: func(b []byte) { k.port1 = decodeJoystick(b) }},
		{Name: "Keyboard.Port2", Size: 3, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return encodeJoystick(k.port2) },
			Set: func(b []byte) { k.port2 = decodeJoystick(b) }},
	}
}

func boolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

func encodeJoystick(j joystick) []byte {
	return []byte{byte(j.axisX), byte(j.axisY), boolByte(j.button)}
}

func decodeJoystick(b []byte) joystick {
	return joystick{axisX: Direction(int8(b[0])), axisY: Direction(int8(b[1])), button: b[2] != 0}
}
