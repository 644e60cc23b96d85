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

// Package cia implements the MOS 6526 CIA timer/port chip:
// two 16-bit down-counters with run/one-shot/CNT/underflow-chain modes,
// a time-of-day clock with alarm, an 8-bit serial shift register, and
// two parallel ports. Two instances exist in a C64 (CIA1, CIA2); what
// differs between them is only what's wired to their ports and which
// CPU line their interrupt output pulls, both left to the caller via
// Peripheral and the setInterrupt callback passed to New.
package cia

import (
	"github.com/go64/c64core/hardware/memory/bus"
	"github.com/go64/c64core/hardware/snapshot"
)

// Peripheral is whatever external circuitry is wired to a CIA's two
// ports: the keyboard matrix and joystick for CIA1, the VIC bank select
// and IEC/user port for CIA2. Each read method receives the CIA's own
// current output drive on port A (needed because the keyboard matrix's
// row readback on port B depends on which columns port A is currently
// selecting) and returns the external level of every pin. A port read
// takes each output pin (DDR bit set) from the CIA's own output latch and
// each input pin (DDR bit clear) from this external level.
type Peripheral interface {
	ReadPortA(outA uint8) uint8
	ReadPortB(outA uint8) uint8
}

// ICR (interrupt control register) flag bits.
const (
	ICRTimerA    uint8 = 1 << 0
	ICRTimerB    uint8 = 1 << 1
	ICRTODAlarm  uint8 = 1 << 2
	ICRSerial    uint8 = 1 << 3
	ICRFlagEdge  uint8 = 1 << 4
	icrIRQOutput uint8 = 1 << 7
)

// CIA is one MOS 6526.
type CIA struct {
	name string

	peripheral   Peripheral
	setInterrupt func(bool)
	onPortAWrite func(outA uint8)
	onPortBWrite func(outB uint8)

	pra, prb   uint8
	ddra, ddrb uint8

	timerA, timerB timer

	tod     tod
	sdr     uint8
	sdrBits int // remaining bits to shift before ICRSerial fires

	icrFlags  uint8
	icrEnable uint8

	flagState bool // last-seen level of the FLAG input pin

	lastRegAccessed uint8
}

// New constructs a CIA. name is used only for logging/diagnostics.
// setInterrupt is called with true/false whenever the chip's IRQ/NMI
// output line changes; it is the caller's job to route it to the right
// CPU source bit.
func New(name string, setInterrupt func(bool)) *CIA {
	return &CIA{name: name, setInterrupt: setInterrupt}
}

// Reset restores a 6526 to its documented power-on/RES state: both
// data direction registers to all-input, both ports' output latches
// cleared, both timers stopped with their latches at $FFFF, the
// interrupt mask and flag register cleared (and the interrupt line
// released), and the shift register idle. The time-of-day clock is
// left running; /RES does not affect it on real hardware, which is why
// a C64's clock survives a soft reset.
func (c *CIA) Reset() {
	c.pra, c.prb = 0, 0
	c.ddra, c.ddrb = 0, 0
	c.timerA = timer{counter: 0xFFFF, latch: 0xFFFF}
	c.timerB = timer{counter: 0xFFFF, latch: 0xFFFF}
	c.sdr = 0
	c.sdrBits = 0
	c.icrFlags = 0
	c.icrEnable = 0
	c.flagState = false
	c.lastRegAccessed = 0
	c.updateInterrupt()
}

// SetPeripheral wires the external circuitry attached to this CIA's
// ports.
func (c *CIA) SetPeripheral(p Peripheral) { c.peripheral = p }

// OnPortAWrite/OnPortBWrite register a callback fired with the port's
// new effective output drive whenever a register write changes it (used
// by CIA2 to notify the VIC of a bank-select change without the cia
// package needing to know about the vic package).
func (c *CIA) OnPortAWrite(f func(outA uint8)) { c.onPortAWrite = f }
func (c *CIA) OnPortBWrite(f func(outB uint8)) { c.onPortBWrite = f }

func combine(ddr, out, ext uint8) uint8 {
	return (ddr & out) | (^ddr & ext)
}

func (c *CIA) outA() uint8 { return c.ddra & c.pra }
func (c *CIA) outB() uint8 { return c.ddrb & c.prb }

func (c *CIA) readPortA() uint8 {
	ext := uint8(0xFF)
	if c.peripheral != nil {
		ext = c.peripheral.ReadPortA(c.outA())
	}
	return combine(c.ddra, c.pra, ext)
}

func (c *CIA) readPortB() uint8 {
	ext := uint8(0xFF)
	if c.peripheral != nil {
		ext = c.peripheral.ReadPortB(c.outA())
	}
	val := combine(c.ddrb, c.prb, ext)
	if c.timerA.pbon {
		val = setBit(val, 6, c.timerA.pbOutput)
	}
	if c.timerB.pbon {
		val = setBit(val, 7, c.timerB.pbOutput)
	}
	return val
}

func setBit(v uint8, bit uint, on bool) uint8 {
	if on {
		return v | (1 << bit)
	}
	return v &^ (1 << bit)
}

// SetFlag reports the current level of the FLAG input pin (the
// datasette read line on CIA1); a high-to-low transition sets the
// ICRFlagEdge latch.
func (c *CIA) SetFlag(level bool) {
	if c.flagState && !level {
		c.raiseFlag(ICRFlagEdge)
	}
	c.flagState = level
}

// Step advances the CIA by one system cycle: both timers, the TOD
// clock's tenths-of-a-second tick, and the shift register's in-flight
// transfer.
func (c *CIA) Step(tenthSecondTick bool) {
	// timer A counts phi2 cycles unless its INMODE bit selects CNT, which
	// this model treats as never-counting: no CNT source is wired up yet
	// (CNT's real usage is the serial shift clock and the drive/datasette
	// boundary, neither of which feeds a CIA's timer input in this core).
	aPulse := !c.timerA.countsCNT()
	aUnderflowed := c.timerA.tick(aPulse)
	if aUnderflowed {
		c.raiseFlag(ICRTimerA)
		c.stepShiftOnUnderflow()
	}

	// timer B's 2-bit INMODE (CRB bits 5-6): 00 phi2, 01 CNT (unmodeled,
	// never pulses), 10/11 count timer A underflows.
	var bPulse bool
	switch (c.timerB.ctrl >> 5) & 0x03 {
	case 0:
		bPulse = true
	case 2, 3:
		bPulse = aUnderflowed
	default:
		bPulse = false
	}
	if c.timerB.tick(bPulse) {
		c.raiseFlag(ICRTimerB)
	}

	if tenthSecondTick && c.tod.tick() {
		c.raiseFlag(ICRTODAlarm)
	}
}

// stepShiftOnUnderflow shifts one bit out of the serial register each
// time timer A underflows while CRA selects output mode, raising
// ICRSerial once 8 bits have gone out.
func (c *CIA) stepShiftOnUnderflow() {
	if c.timerA.ctrl&0x40 == 0 { // SPMODE: 0 = input, 1 = output
		return
	}
	if c.sdrBits <= 0 {
		return
	}
	c.sdrBits--
	if c.sdrBits == 0 {
		c.raiseFlag(ICRSerial)
	}
}

func (c *CIA) raiseFlag(bit uint8) {
	c.icrFlags |= bit
	c.updateInterrupt()
}

func (c *CIA) updateInterrupt() {
	active := c.icrFlags&c.icrEnable != 0
	if c.setInterrupt != nil {
		c.setInterrupt(active)
	}
}

// Declare satisfies snapshot.Declarer. Every field, the two timers'
// force-load strobe included, survives a reset (ClearOnReset there would
// be redundant anyway: Reset already zeros everything declared here,
// and KeepOnReset simply means the reset path leaves the field to
// whatever Reset itself decided).
func (c *CIA) Declare() []snapshot.Item {
	return []snapshot.Item{
		{Name: c.name + ".PRA", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{c.pra} }, Set: func(b []byte) { c.pra = b[0] }},
		{Name: c.name + ".PRB", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{c.prb} }, Set: func(b []byte) { c.prb = b[0] }},
		{Name: c.name + ".DDRA", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{c.ddra} }, Set: func(b []byte) { c.ddra = b[0] }},
		{Name: c.name + ".DDRB", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{c.ddrb} }, Set: func(b []byte) { c.ddrb = b[0] }},
		{Name: c.name + ".TimerA", Size: 7, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return encodeTimer(c.timerA) },
			Set: func(b []byte) { c.timerA = decodeTimer(b) }},
		{Name: c.name + ".TimerB", Size: 7, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return encodeTimer(c.timerB) },
			Set: func(b []byte) { c.timerB = decodeTimer(b) }},
		{Name: c.name + ".TOD", Size: 17, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return encodeTOD(c.tod) },
			Set: func(b []byte) { c.tod = decodeTOD(b) }},
		{Name: c.name + ".SDR", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{c.sdr} }, Set: func(b []byte) { c.sdr = b[0] }},
		{Name: c.name + ".SDRBits", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{uint8(c.sdrBits)} },
			Set: func(b []byte) { c.sdrBits = int(b[0]) }},
		{Name: c.name + ".ICRFlags", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{c.icrFlags} }, Set: func(b []byte) { c.icrFlags = b[0] }},
		{Name: c.name + ".ICREnable", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{c.icrEnable} }, Set: func(b []byte) { c.icrEnable = b[0] }},
		{Name: c.name + ".FlagState", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{boolByte(c.flagState)} },
			Set: func(b []byte) { c.flagState = b[0] != 0 }},
	}
}

func boolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

// encodeTimer/decodeTimer pack a timer's 7 fields of state: counter
// and latch (2 bytes each), ctrl, then the three booleans.
func encodeTimer(t timer) []byte {
	return []byte{
		uint8(t.counter), uint8(t.counter >> 8),
		uint8(t.latch), uint8(t.latch >> 8),
		t.ctrl,
		boolByte(t.forceLoadPending)<<2 | boolByte(t.pbOutput)<<1 | boolByte(t.pbon),
		0, // reserved, keeps the layout a round 7 bytes if a field is added
	}
}

func decodeTimer(b []byte) timer {
	flags := b[5]
	return timer{
		counter:          uint16(b[0]) | uint16(b[1])<<8,
		latch:            uint16(b[2]) | uint16(b[3])<<8,
		ctrl:             b[4],
		forceLoadPending: flags&0x04 != 0,
		pbOutput:         flags&0x02 != 0,
		pbon:             flags&0x01 != 0,
	}
}

// encodeTOD/decodeTOD pack every tod field needed to resume the clock
// exactly, including the hours-read latch quirk's frozen snapshot.
func encodeTOD(t tod) []byte {
	b := []byte{
		t.tenths, t.seconds, t.minutes, t.hours, boolByte(t.pm), boolByte(t.running),
		t.alarmTenths, t.alarmSeconds, t.alarmMinutes, t.alarmHours, boolByte(t.alarmPM),
		boolByte(t.latched), boolByte(t.latchedPM),
	}
	return append(b, t.latchedVal[:]...)
}

func decodeTOD(b []byte) tod {
	return tod{
		tenths: b[0], seconds: b[1], minutes: b[2], hours: b[3],
		pm: b[4] != 0, running: b[5] != 0,
		alarmTenths: b[6], alarmSeconds: b[7], alarmMinutes: b[8], alarmHours: b[9],
		alarmPM:    b[10] != 0,
		latched:    b[11] != 0,
		latchedPM:  b[12] != 0,
		latchedVal: [4]uint8{b[13], b[14], b[15], b[16]},
	}
}

var _ bus.ChipBus = (*CIA)(nil)
