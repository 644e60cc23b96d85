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

package drive

import (
	"github.com/go64/c64core/hardware/memory/bus"
	"github.com/go64/c64core/hardware/snapshot"
)

// Peripheral is whatever is wired to a VIA's two ports from outside the
// drive's own bit-clock logic: VIA1's ports carry the IEC serial lines
// and the drive's device-address jumpers, VIA2's carry the stepper motor
// phase and the disk's write-protect/track-0 sensors. Mirrors cia.Peripheral.
type Peripheral interface {
	ReadPortA(outA uint8) uint8
	ReadPortB(outA uint8) uint8
}

// IFR (interrupt flag register) bits, standard 6522 layout.
const (
	flagCA2    uint8 = 1 << 0
	flagCA1    uint8 = 1 << 1
	flagSR     uint8 = 1 << 2
	flagCB2    uint8 = 1 << 3
	flagCB1    uint8 = 1 << 4
	flagTimer2 uint8 = 1 << 5
	flagTimer1 uint8 = 1 << 6
	flagIRQ    uint8 = 1 << 7
)

// VIA is one MOS 6522 versatile interface adapter.
type VIA struct {
	name string

	peripheral   Peripheral
	setInterrupt func(bool)
	onPortAWrite func(outA uint8)
	onPortBWrite func(outB uint8)

	ora, orb   uint8
	ddra, ddrb uint8

	t1Counter, t1Latch uint16
	t1PB7              bool
	t1OneShotFired     bool

	t2Counter uint16
	// t2Latch is the low byte only; a 6522's T2 latch is single-byte, the
	// high byte writes straight into the counter.
	t2Latch        uint8
	t2OneShotFired bool

	acr uint8
	pcr uint8

	sr uint8

	ifr uint8
	ier uint8

	ca1Level, ca2Level bool
	cb1Level, cb2Level bool

	lastRegAccessed uint8
}

// NewVIA constructs a VIA. setInterrupt is called with true/false
// whenever the chip's IRQ output changes.
func NewVIA(name string, setInterrupt func(bool)) *VIA {
	return &VIA{name: name, setInterrupt: setInterrupt, ca1Level: true, cb1Level: true}
}

func (v *VIA) SetPeripheral(p Peripheral) { v.peripheral = p }

// OnPortAWrite/OnPortBWrite register a callback fired with the port's new
// effective output drive whenever a register write changes it. Mirrors
// cia.CIA's hooks of the same name; VIA1 uses this to keep the IEC bus's
// notion of the drive's CLK OUT/DATA OUT current without the bus having
// to poll, and VIA2 uses it for the stepper-motor/spindle-motor decode.
func (v *VIA) OnPortAWrite(f func(outA uint8)) { v.onPortAWrite = f }
func (v *VIA) OnPortBWrite(f func(outB uint8)) { v.onPortBWrite = f }

func combine(ddr, out, ext uint8) uint8 { return (ddr & out) | (^ddr & ext) }

func (v *VIA) outA() uint8 { return v.ddra & v.ora }
func (v *VIA) outB() uint8 { return v.ddrb & v.orb }

// PA returns the VIA's current effective drive on port A, for external
// wiring that reads the port without going through the CPU-visible
// register.
func (v *VIA) PA() uint8 { return v.readPortA() }

// PB returns the VIA's current effective drive on port B.
func (v *VIA) PB() uint8 { return v.readPortB() }

func (v *VIA) readPortA() uint8 {
	ext := uint8(0xFF)
	if v.peripheral != nil {
		ext = v.peripheral.ReadPortA(v.outA())
	}
	return combine(v.ddra, v.ora, ext)
}

func (v *VIA) readPortB() uint8 {
	ext := uint8(0xFF)
	if v.peripheral != nil {
		ext = v.peripheral.ReadPortB(v.outA())
	}
	val := combine(v.ddrb, v.orb, ext)
	if v.acr&0x80 != 0 { // PB7 timer-1 square-wave output enabled
		val = setBit(val, 7, v.t1PB7)
	}
	return val
}

func setBit(v uint8, bit uint, on bool) uint8 {
	if on {
		return v | (1 << bit)
	}
	return v &^ (1 << bit)
}

// ca2ControlBits and cb2ControlBits return the PCR's three CA2 control
// bits (bits 1-3) and CB2 control bits (bits 5-7).
func ca2ControlBits(pcr uint8) uint8 { return (pcr >> 1) & 0x07 }
func cb2ControlBits(pcr uint8) uint8 { return (pcr >> 5) & 0x07 }

// CA2/CB2 return the pin's current output level when the PCR has it
// configured as a manual output (the drive uses VIA2's CA2 in manual
// mode as the SYNC-observation gate for the byte-ready logic); in any
// other mode they return the stored CA2/CB2 input level, which VIA has
// no setter for and which changes only through a snapshot restore.
func (v *VIA) CA2() bool {
	switch ca2ControlBits(v.pcr) {
	case 6:
		return false
	case 7:
		return true
	default:
		return v.ca2Level
	}
}

func (v *VIA) CB2() bool {
	switch cb2ControlBits(v.pcr) {
	case 6:
		return false
	case 7:
		return true
	default:
		return v.cb2Level
	}
}

// SetCA1/SetCB1 report the current level of the corresponding input pin;
// a transition matching the PCR's configured edge direction sets the
// matching IFR flag (the drive wires the disk's byte-ready signal to
// VIA2's CA1).
func (v *VIA) SetCA1(level bool) {
	positiveEdge := v.pcr&0x01 != 0
	if v.ca1Level != level && level == positiveEdge {
		v.raiseFlag(flagCA1)
	}
	v.ca1Level = level
}

func (v *VIA) SetCB1(level bool) {
	positiveEdge := v.pcr&0x10 != 0
	if v.cb1Level != level && level == positiveEdge {
		v.raiseFlag(flagCB1)
	}
	v.cb1Level = level
}

// clearHandshake implements the 6522's "reading the OR register clears
// the matching C1 and (usually) C2 interrupt flags" behavior. The two
// "independent interrupt" control codes (001, 011) exempt C2 from the
// auto-clear, same as real hardware.
func (v *VIA) clearHandshake(c1Flag uint8, c2Bits uint8) {
	v.ifr &^= c1Flag
	if c2Bits != 1 && c2Bits != 3 {
		switch c1Flag {
		case flagCA1:
			v.ifr &^= flagCA2
		case flagCB1:
			v.ifr &^= flagCB2
		}
	}
	v.updateInterrupt()
}

func (v *VIA) raiseFlag(bit uint8) {
	v.ifr |= bit
	v.updateInterrupt()
}

func (v *VIA) updateInterrupt() {
	active := v.ifr&v.ier != 0
	if v.setInterrupt != nil {
		v.setInterrupt(active)
	}
}

// Step advances the VIA by one system cycle: both timers. Timer 2's
// pulse-counting input mode (ACR bit 5, counting PB6 edges instead of
// phi2) isn't modeled — the drive never uses it — so Timer 2 always
// counts phi2 here.
func (v *VIA) Step() {
	if v.t1Counter == 0 {
		if !v.t1OneShotFired {
			v.raiseFlag(flagTimer1)
		}
		freeRun := v.acr&0x40 != 0
		v.t1OneShotFired = !freeRun
		v.t1PB7 = !v.t1PB7
		if freeRun {
			v.t1Counter = v.t1Latch
		} else {
			v.t1Counter--
		}
	} else {
		v.t1Counter--
	}

	if v.t2Counter == 0 && !v.t2OneShotFired {
		v.raiseFlag(flagTimer2)
		v.t2OneShotFired = true
	}
	v.t2Counter--
}

// Declare satisfies snapshot.Declarer. Unlike the CIAs, a VIA has no
// Reset method of its own, so there is no generic-sweep policy conflict
// to worry about; every item is marked KeepOnReset.
func (v *VIA) Declare() []snapshot.Item {
	return []snapshot.Item{
		{Name: v.name + ".ORA", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{v.ora} }, Set: func(b []byte) { v.ora = b[0] }},
		{Name: v.name + ".ORB", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{v.orb} }, Set: func(b []byte) { v.orb = b[0] }},
		{Name: v.name + ".DDRA", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{v.ddra} }, Set: func(b []byte) { v.ddra = b[0] }},
		{Name: v.name + ".DDRB", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{v.ddrb} }, Set: func(b []byte) { v.ddrb = b[0] }},
		{Name: v.name + ".T1Counter", Size: 2, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{uint8(v.t1Counter), uint8(v.t1Counter >> 8)} },
			Set: func(b []byte) { v.t1Counter = uint16(b[0]) | uint16(b[1])<<8 }},
		{Name: v.name + ".T1Latch", Size: 2, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{uint8(v.t1Latch), uint8(v.t1Latch >> 8)} },
			Set: func(b []byte) { v.t1Latch = uint16(b[0]) | uint16(b[1])<<8 }},
		{Name: v.name + ".T1Flags", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{viaBoolByte(v.t1PB7)<<1 | viaBoolByte(v.t1OneShotFired)} },
			Set: func(b []byte) { v.t1PB7 = b[0]&0x02 != 0; v.t1OneShotFired = b[0]&0x01 != 0 }},
		{Name: v.name + ".T2Counter", Size: 2, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{uint8(v.t2Counter), uint8(v.t2Counter >> 8)} },
			Set: func(b []byte) { v.t2Counter = uint16(b[0]) | uint16(b[1])<<8 }},
		{Name: v.name + ".T2Latch", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{v.t2Latch} }, Set: func(b []byte) { v.t2Latch = b[0] }},
		{Name: v.name + ".T2OneShotFired", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{viaBoolByte(v.t2OneShotFired)} },
			Set: func(b []byte) { v.t2OneShotFired = b[0] != 0 }},
		{Name: v.name + ".ACR", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{v.acr} }, Set: func(b []byte) { v.acr = b[0] }},
		{Name: v.name + ".PCR", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{v.pcr} }, Set: func(b []byte) { v.pcr = b[0] }},
		{Name: v.name + ".SR", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{v.sr} }, Set: func(b []byte) { v.sr = b[0] }},
		{Name: v.name + ".IFR", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{v.ifr} }, Set: func(b []byte) { v.ifr = b[0] }},
		{Name: v.name + ".IER", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{v.ier} }, Set: func(b []byte) { v.ier = b[0] }},
		{Name: v.name + ".Levels", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte {
				return []byte{viaBoolByte(v.ca1Level)<<3 | viaBoolByte(v.ca2Level)<<2 | viaBoolByte(v.cb1Level)<<1 | viaBoolByte(v.cb2Level)}
			},
			Set: func(b []byte) {
				v.ca1Level = b[0]&0x08 != 0
				v.ca2Level = b[0]&0x04 != 0
				v.cb1Level = b[0]&0x02 != 0
				v.cb2Level = b[0]&0x01 != 0
			}},
		{Name: v.name + ".LastRegAccessed", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{v.lastRegAccessed} }, Set: func(b []byte) { v.lastRegAccessed = b[0] }},
	}
}

func viaBoolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

var _ bus.ChipBus = (*VIA)(nil)
