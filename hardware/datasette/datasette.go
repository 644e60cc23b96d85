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

// Package datasette implements the VC1530 tape transport: a motor, a
// play/stop key, and a read head that walks a TAP pulse table producing
// a rising edge then a falling edge on CIA1's FLAG pin per pulse.
//
// Decoding a TAP file's own container (the 20-byte header naming the
// version and declared length) is out of scope here, same as the disk
// side's image-format boundary: Tape already holds the pulse table a
// loader above this package extracted from that header.
package datasette

import (
	"github.com/go64/c64core/hardware/snapshot"
	"github.com/go64/c64core/message"
)

// Tape is a decoded TAP pulse table: one byte per pulse, 8 system
// cycles per unit, with a zero byte escaping to a longer pulse encoded
// per the file's version (the TAP v0/v1 distinction).
type Tape struct {
	Pulses  []byte
	Version uint8
}

// Datasette is one VC1530 transport.
type Datasette struct {
	tape             *Tape
	durationInCycles uint64

	head         int
	headInCycles uint64
	headSeconds  uint32

	nextRisingEdge  int64
	nextFallingEdge int64

	playKey bool
	motor   bool

	setFlag   func(level bool)
	onMessage func(tag message.Tag)
}

// New constructs a Datasette. setFlag drives CIA1's FLAG input pin
// (cia.CIA.SetFlag); onMessage, if non-nil, is notified of tape
// presence/progress changes the way the original reports them via
// C64::putMessage.
func New(setFlag func(level bool), onMessage func(tag message.Tag)) *Datasette {
	return &Datasette{setFlag: setFlag, onMessage: onMessage}
}

// HasTape reports whether a tape is currently inserted.
func (d *Datasette) HasTape() bool { return d.tape != nil }

// InsertTape mounts a decoded tape image and determines its total
// duration by fast-forwarding through it once, matching
// Datasette::insertTape.
func (d *Datasette) InsertTape(t Tape) {
	tape := t
	d.tape = &tape
	d.Rewind()
	for d.head < len(d.tape.Pulses) {
		d.advanceHead(true)
	}
	d.durationInCycles = d.headInCycles
	d.Rewind()

	if d.onMessage != nil {
		d.onMessage(message.VC1530Tape)
	}
}

// EjectTape unmounts the current tape, stopping playback first.
func (d *Datasette) EjectTape() {
	if d.tape == nil {
		return
	}
	d.PressStop()
	d.tape = nil
	d.durationInCycles = 0
	d.head = 0
	d.headInCycles = 0
	d.headSeconds = 0

	if d.onMessage != nil {
		d.onMessage(message.VC1530NoTape)
	}
}

// Rewind returns the head to the start of the tape without touching
// play/motor state.
func (d *Datasette) Rewind() {
	d.head = 0
	d.headInCycles = 0
	d.headSeconds = 0
	d.nextRisingEdge = 0
	d.nextFallingEdge = 0
}

// PressPlay engages the play key and schedules the first pulse's
// edges, matching Datasette::pressPlay. A no-op with no tape inserted.
func (d *Datasette) PressPlay() {
	if d.tape == nil {
		return
	}
	d.playKey = true
	length := int64(d.pulseLength())
	d.nextRisingEdge = length / 2
	d.nextFallingEdge = length
}

// PressStop disengages the play key and stops the motor.
func (d *Datasette) PressStop() {
	d.SetMotor(false)
	d.playKey = false
}

// SetMotor switches the tape motor on or off. On a C64 the motor is
// switched by bit 5 of the 6510 processor port (cpu.CPU.DatasetteMotor);
// hardware.C64 does not connect the two, so the motor changes only
// through calls to SetMotor and PressStop.
func (d *Datasette) SetMotor(on bool) {
	d.motor = on
}

// Step advances the transport by one system cycle.
// It is a no-op unless a tape is inserted, playing, and the motor is
// running, matching Datasette::_execute.
func (d *Datasette) Step() {
	if d.tape == nil || !d.playKey || !d.motor {
		return
	}

	d.nextRisingEdge--
	d.nextFallingEdge--

	if d.nextRisingEdge == 0 {
		d.setFlag(true)
		return
	}
	if d.nextFallingEdge == 0 && d.head < len(d.tape.Pulses) {
		d.setFlag(false)
		d.advanceHead(false)
		length := int64(d.pulseLength())
		d.nextRisingEdge = length / 2
		d.nextFallingEdge = length
		return
	}
	if d.head >= len(d.tape.Pulses) {
		d.PressStop()
	}
}

// pulseLength returns the duration in cycles of the pulse at the
// current head position (Datasette::pulseLength); pulseLengthAndSkip
// also returns how many pulse-table bytes that pulse occupies.
func (d *Datasette) pulseLength() int {
	length, _ := d.pulseLengthAndSkip()
	return length
}

func (d *Datasette) pulseLengthAndSkip() (length, skip int) {
	p := d.tape.Pulses
	if d.head >= len(p) {
		return 0, 0
	}
	if p[d.head] != 0 {
		return 8 * int(p[d.head]), 1
	}
	if d.tape.Version == 0 {
		return 8 * 256, 1
	}
	if d.head+3 >= len(p) {
		return 8 * 256, 1
	}
	lo, mid, hi := p[d.head+1], p[d.head+2], p[d.head+3]
	return int(lo) | int(mid)<<8 | int(hi)<<16, 4
}

// advanceHead moves the head past the current pulse, reporting
// progress on each second boundary crossed unless silent (used while
// fast-forwarding to measure the tape's duration on insert).
func (d *Datasette) advanceHead(silent bool) {
	if d.head >= len(d.tape.Pulses) {
		return
	}
	length, skip := d.pulseLengthAndSkip()
	if skip == 0 {
		d.head = len(d.tape.Pulses)
		return
	}
	d.head += skip
	d.headInCycles += uint64(length)

	newSeconds := uint32(d.headInCycles / palCyclesPerSecond)
	if newSeconds != d.headSeconds && !silent && d.onMessage != nil {
		d.onMessage(message.VC1530Progress)
	}
	d.headSeconds = newSeconds
}

// palCyclesPerSecond is the PAL C64's fixed system clock rate, used to
// convert a cycle count on tape into seconds for progress reporting.
const palCyclesPerSecond = 985248

// HeadSeconds reports the current playback position in whole seconds.
func (d *Datasette) HeadSeconds() uint32 { return d.headSeconds }

// DurationSeconds reports the tape's total length in whole seconds, or
// 0 with no tape inserted.
func (d *Datasette) DurationSeconds() uint32 {
	if d.tape == nil {
		return 0
	}
	return uint32(d.durationInCycles / palCyclesPerSecond)
}

// Declare satisfies snapshot.Declarer. There is no C64 reset line wired
// to a VC1530 on real hardware — pressing RESTORE or cycling the
// machine's own reset never stops a tape mid-playback — so every item
// here is KeepOnReset, the same reasoning `vic.VIC` applies to having no
// Reset method at all, just expressed through Policy instead since a
// Declarer still has to return something.
//
// The tape's own pulse table is not declared: like a CIA's TOD clock
// ticking through a reset, a tape's content never changes after
// InsertTape decodes it (there is no write-to-tape support), making it a
// load-time asset the same way `memory.Memory.Declare` treats the ROM
// images — restoring a snapshot is expected to happen against a machine
// that already has the matching tape (or disk, or cartridge) inserted.
func (d *Datasette) Declare() []snapshot.Item {
	return []snapshot.Item{
		{Name: "Datasette.HasTape", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{boolByte(d.tape != nil)} },
			Set: func(b []byte) {
				if b[0] == 0 {
					d.tape = nil
				} else if d.tape == nil {
					d.tape = &Tape{}
				}
			}},
		{Name: "Datasette.DurationInCycles", Size: 8, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return put64(d.durationInCycles) }, Set: func(b []byte) { d.durationInCycles = get64(b) }},
		{Name: "Datasette.Head", Size: 4, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return put32(d.head) }, Set: func(b []byte) { d.head = get32(b) }},
		{Name: "Datasette.HeadInCycles", Size: 8, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return put64(d.headInCycles) }, Set: func(b []byte) { d.headInCycles = get64(b) }},
		{Name: "Datasette.HeadSeconds", Size: 4, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return put32(int(d.headSeconds)) }, Set: func(b []byte) { d.headSeconds = uint32(get32(b)) }},
		{Name: "Datasette.NextRisingEdge", Size: 8, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return put64(uint64(d.nextRisingEdge)) }, Set: func(b []byte) { d.nextRisingEdge = int64(get64(b)) }},
		{Name: "Datasette.NextFallingEdge", Size: 8, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return put64(uint64(d.nextFallingEdge)) }, Set: func(b []byte) { d.nextFallingEdge = int64(get64(b)) }},
		{Name: "Datasette.PlayKey", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{boolByte(d.playKey)} }, Set: func(b []byte) { d.playKey = b[0] != 0 }},
		{Name: "Datasette.Motor", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{boolByte(d.motor)} }, Set: func(b []byte) { d.motor = b[0] != 0 }},
	}
}

func boolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

func put32(v int) []byte {
	u := uint32(v)
	return []byte{uint8(u), uint8(u >> 8), uint8(u >> 16), uint8(u >> 24)}
}

func get32(b []byte) int {
	return int(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}

func put64(v uint64) []byte {
	b := make([]byte, 8)
	for i := range b {
		b[i] = uint8(v >> (8 * i))
	}
	return b
}

func get64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// Motor reports whether the tape motor is currently engaged.
func (d *Datasette) Motor() bool { return d.motor }

// Playing reports whether the play key is currently pressed.
func (d *Datasette) Playing() bool { return d.playKey }
