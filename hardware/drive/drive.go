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

// Package drive implements the VC1541 floppy drive: a
// secondary 6502 with 2KB RAM and 16KB ROM, two 6522 VIAs, and a
// bit-serial read/write front end clocked at a zone-dependent rate.
package drive

import (
	"github.com/go64/c64core/hardware/cpu"
	"github.com/go64/c64core/hardware/snapshot"
	"github.com/go64/c64core/logger"
	"github.com/go64/c64core/message"
)

// carryIntervalPicoseconds is the UF4 counter period for each of the four
// speed zones, derived from the 1541's zone-dependent bit rate (zones
// 0..3 -> roughly 250, 266, 285, 307 kHz; one bit cell is 4 UF4 counts,
// so the interval here is 1/(4*bitrate) in picoseconds).
var carryIntervalPicoseconds = [4]int64{1_000_000, 937_500, 875_000, 812_500}

// driveCPUCyclePicoseconds is the duration of one drive-CPU cycle at its
// fixed 1 MHz clock.
const driveCPUCyclePicoseconds int64 = 1_000_000

// Drive is one VC1541.
type Drive struct {
	cpu *cpu.CPU
	mem *driveMemory

	via1 *VIA
	via2 *VIA

	disk *Disk

	elapsedTime int64 // total picoseconds of host time fed in via Advance
	nextClock   int64 // next threshold for a drive CPU instruction
	nextCarry   int64 // next threshold for a bit-cell pulse

	counterUF4       int
	carryCounter     int
	byteReadyCounter int
	readShiftreg     uint16
	writeShiftreg    uint8
	sync             bool
	byteReady        bool

	zone      int
	halftrack int
	offset    int

	spinning     bool
	redLED       bool
	diskInserted bool

	stepperPhase int

	onMessage func(tag message.Tag)
}

// New constructs a VC1541, with VIA1's and VIA2's IRQ outputs wired to
// the drive CPU's IRQ sources; onMessage, if non-nil, is notified of LED/motor/disk state
// changes the way the original reports them via C64::putMessage.
func New(onMessage func(tag message.Tag)) *Drive {
	d := &Drive{disk: NewDisk(), halftrack: 41, zone: 3, onMessage: onMessage}

	d.via1 = NewVIA("VIA1", func(active bool) { d.cpu.SetIRQ(cpu.SourceVIA1, active) })
	d.via2 = NewVIA("VIA2", func(active bool) { d.cpu.SetIRQ(cpu.SourceVIA2, active) })
	d.via2.OnPortBWrite(d.decodeStepper)
	d.mem = newDriveMemory(d.via1, d.via2)
	d.cpu = cpu.New(d.mem, logger.NewLogger(64))

	return d
}

// decodeStepper reads VIA2 port B's stepper/spindle/LED/density bits
// whenever the drive ROM changes them: bits 0-1 are the stepper motor's
// 2-bit phase (each step forward or back in the 0-3 gray sequence moves
// the head by one half-track), bit 2 is the spindle motor relay, bit 3
// is the activity LED, and bits 6-7 select one of the four speed zones
// (bit 5 is already spoken for by readMode's head-direction select, so
// density select is moved up here rather than following the real 1541's
// bit 5-6 placement).
func (d *Drive) decodeStepper(outB uint8) {
	phase := int(outB & 0x03)
	switch (phase - d.stepperPhase + 4) % 4 {
	case 1:
		d.MoveHeadUp()
	case 3:
		d.MoveHeadDown()
	}
	d.stepperPhase = phase

	d.SetRotating(outB&0x04 != 0)
	d.SetRedLED(outB&0x08 != 0)
	d.SetZone(int(outB >> 6))
}

// LoadROM installs the 1541 DOS ROM image.
func (d *Drive) LoadROM(data []byte) { d.mem.LoadROM(data) }

// SetVIA1Peripheral/SetVIA2Peripheral wire in the IEC bus and stepper/
// head circuitry respectively.
func (d *Drive) SetVIA1Peripheral(p Peripheral) { d.via1.SetPeripheral(p) }
func (d *Drive) SetVIA2Peripheral(p Peripheral) { d.via2.SetPeripheral(p) }

// OnVIA1PortAWrite lets the IEC bus learn about the drive's own CLK
// OUT/DATA OUT changes as they happen, the drive-side mirror of
// hardware/iec's use of CIA2's equivalent hook on the host end.
func (d *Drive) OnVIA1PortAWrite(f func(outA uint8)) { d.via1.OnPortAWrite(f) }

// SetVIA1CA1 delivers the host's ATN line to VIA1's CA1 input, the
// signal that wakes the drive CPU from its IEC-idle polling loop.
func (d *Drive) SetVIA1CA1(level bool) { d.via1.SetCA1(level) }

// Reset loads the drive CPU's PC from its ROM's reset vector and returns
// the head to the drive's reference half-track, matching the original's
// post-reset head position (track 21).
func (d *Drive) Reset() {
	d.cpu.Reset()
	d.halftrack = 41
	d.elapsedTime, d.nextClock, d.nextCarry = 0, 0, 0
	d.counterUF4, d.carryCounter, d.byteReadyCounter = 0, 0, 0
	d.readShiftreg, d.writeShiftreg = 0, 0
	d.sync, d.byteReady = false, false
}

// Declare satisfies snapshot.Declarer, gathering the drive's own bit-clock
// and head-position state alongside its two VIAs, its secondary CPU, its
// 2KB RAM, and the inserted disk's full bit image. Drive has no explicit Reset for its VIAs yet
// (see via.go), so everything here stays KeepOnReset alongside them.
func (d *Drive) Declare() []snapshot.Item {
	items := []snapshot.Item{
		{Name: "Drive.RAM", Size: len(d.mem.ram), Policy: snapshot.KeepOnReset,
			Get: func() []byte { return append([]byte(nil), d.mem.ram[:]...) },
			Set: func(b []byte) { copy(d.mem.ram[:], b) }},
		{Name: "Drive.ElapsedTime", Size: 8, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return put64(uint64(d.elapsedTime)) }, Set: func(b []byte) { d.elapsedTime = int64(get64(b)) }},
		{Name: "Drive.NextClock", Size: 8, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return put64(uint64(d.nextClock)) }, Set: func(b []byte) { d.nextClock = int64(get64(b)) }},
		{Name: "Drive.NextCarry", Size: 8, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return put64(uint64(d.nextCarry)) }, Set: func(b []byte) { d.nextCarry = int64(get64(b)) }},
		{Name: "Drive.CounterUF4", Size: 4, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return put32(d.counterUF4) }, Set: func(b []byte) { d.counterUF4 = get32(b) }},
		{Name: "Drive.CarryCounter", Size: 4, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return put32(d.carryCounter) }, Set: func(b []byte) { d.carryCounter = get32(b) }},
		{Name: "Drive.ByteReadyCounter", Size: 4, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return put32(d.byteReadyCounter) }, Set: func(b []byte) { d.byteReadyCounter = get32(b) }},
		{Name: "Drive.ReadShiftreg", Size: 2, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{uint8(d.readShiftreg), uint8(d.readShiftreg >> 8)} },
			Set: func(b []byte) { d.readShiftreg = uint16(b[0]) | uint16(b[1])<<8 }},
		{Name: "Drive.WriteShiftreg", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{d.writeShiftreg} }, Set: func(b []byte) { d.writeShiftreg = b[0] }},
		{Name: "Drive.Flags", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte {
				return []byte{boolByte(d.sync)<<4 | boolByte(d.byteReady)<<3 |
					boolByte(d.spinning)<<2 | boolByte(d.redLED)<<1 | boolByte(d.diskInserted)}
			},
			Set: func(b []byte) {
				d.sync = b[0]&0x10 != 0
				d.byteReady = b[0]&0x08 != 0
				d.spinning = b[0]&0x04 != 0
				d.redLED = b[0]&0x02 != 0
				d.diskInserted = b[0]&0x01 != 0
			}},
		{Name: "Drive.Zone", Size: 4, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return put32(d.zone) }, Set: func(b []byte) { d.zone = get32(b) }},
		{Name: "Drive.Halftrack", Size: 4, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return put32(d.halftrack) }, Set: func(b []byte) { d.halftrack = get32(b) }},
		{Name: "Drive.Offset", Size: 4, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return put32(d.offset) }, Set: func(b []byte) { d.offset = get32(b) }},
		{Name: "Drive.StepperPhase", Size: 4, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return put32(d.stepperPhase) }, Set: func(b []byte) { d.stepperPhase = get32(b) }},
	}
	items = append(items, d.cpu.Declare()...)
	items = append(items, d.via1.Declare()...)
	items = append(items, d.via2.Declare()...)
	items = append(items, d.disk.declareItems()...)
	return items
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

// readMode/writeMode follow VIA2 port B bit 5, the well-documented 1541
// head-direction select (1 = read, 0 = write).
func (d *Drive) readMode() bool  { return d.via2.PB()&0x20 != 0 }
func (d *Drive) writeMode() bool { return !d.readMode() }

// Advance feeds the drive one host cycle's worth of picoseconds,
// mirroring the C64 orchestrator's own per-cycle advance. It runs as
// many drive CPU instructions as have become due since the last call, each one
// advancing the bit-cell clock in lockstep via the per-cycle callback
// (grounded on VC1541::execute's nextClock/nextCarry accumulator, reshaped
// around this module's whole-instruction CPU stepping).
func (d *Drive) Advance(hostCyclePs int64) error {
	d.elapsedTime += hostCyclePs
	for d.nextClock < d.elapsedTime {
		if err := d.cpu.ExecuteInstruction(d.cycleTick); err != nil {
			return err
		}
	}
	return nil
}

func (d *Drive) cycleTick() error {
	d.via1.Step()
	d.via2.Step()
	d.nextClock += driveCPUCyclePicoseconds
	for d.spinning && d.nextCarry < d.nextClock {
		d.executeUF4()
		d.nextCarry += carryIntervalPicoseconds[d.zone]
	}
	return nil
}

// executeUF4 is one bit-cell's worth of the read/write front end,
// modeling the 1541's UF4 bit-cell counter.
func (d *Drive) executeUF4() {
	d.counterUF4++
	d.carryCounter++

	if d.carryCounter%4 == 0 {
		if d.readMode() && d.disk.ReadBit(d.halftrack, d.offset) {
			d.counterUF4 = 0
		}
		d.rotateDisk()
	}

	d.sync = (d.readShiftreg&0x3FF) != 0x3FF || d.writeMode()
	if !d.sync {
		d.byteReadyCounter = 0
	}

	switch d.counterUF4 & 0x03 {
	case 0x00:
		if d.byteReadyCounter == 7 && d.via2.CA2() {
			d.setByteReady(false)
		}
	case 0x01:
		// nothing
	case 0x02:
		d.setByteReady(true)
		if d.sync {
			d.byteReadyCounter = (d.byteReadyCounter + 1) % 8
		} else {
			d.byteReadyCounter = 0
		}
		if d.writeMode() {
			d.disk.WriteBit(d.halftrack, d.offset, d.writeShiftreg&0x80 != 0)
		}
		d.writeShiftreg <<= 1
		d.readShiftreg <<= 1
		if d.counterUF4&0x0C == 0 {
			d.readShiftreg |= 1
		}
	case 0x03:
		if d.byteReadyCounter == 7 {
			d.writeShiftreg = d.via2.PA()
		}
	}
}

func (d *Drive) rotateDisk() {
	length := d.disk.LengthOfHalftrack(d.halftrack)
	if length == 0 {
		return
	}
	d.offset = (d.offset + 1) % length
}

// setByteReady toggles the BYTE_READY line into VIA2's CA1, only acting
// (and only notifying the VIA) on an actual level change, matching
// VC1541::setByteReadyLine.
func (d *Drive) setByteReady(level bool) {
	if d.byteReady == level {
		return
	}
	d.byteReady = level
	d.via2.SetCA1(level)
}

// SetZone changes the bit-cell clock's speed zone (0-3), written by the
// drive ROM through VIA2's port B density-select bits.
func (d *Drive) SetZone(zone int) {
	if zone < 0 {
		zone = 0
	}
	if zone > 3 {
		zone = 3
	}
	d.zone = zone
}

func (d *Drive) SetRotating(on bool) {
	if d.spinning == on {
		return
	}
	d.spinning = on
	if d.onMessage != nil {
		if on {
			d.onMessage(message.VC1541MotorOn)
		} else {
			d.onMessage(message.VC1541MotorOff)
		}
	}
}

func (d *Drive) SetRedLED(on bool) {
	if d.redLED == on {
		return
	}
	d.redLED = on
	if d.onMessage != nil {
		if on {
			d.onMessage(message.VC1541RedLEDOn)
		} else {
			d.onMessage(message.VC1541RedLEDOff)
		}
	}
}

// MoveHeadUp/MoveHeadDown step the head by one half-track, rescaling the
// bit offset proportionally so a cell written just before stepping reads
// back consistently just after.
func (d *Drive) MoveHeadUp() {
	if d.halftrack < maxHalftrack {
		fraction := float64(d.offset) / float64(d.disk.LengthOfHalftrack(d.halftrack))
		d.halftrack++
		d.offset = int(fraction * float64(d.disk.LengthOfHalftrack(d.halftrack)))
	}
	if d.onMessage != nil {
		d.onMessage(message.VC1541HeadUp)
	}
}

func (d *Drive) MoveHeadDown() {
	if d.halftrack > 1 {
		fraction := float64(d.offset) / float64(d.disk.LengthOfHalftrack(d.halftrack))
		d.halftrack--
		d.offset = int(fraction * float64(d.disk.LengthOfHalftrack(d.halftrack)))
	}
	if d.onMessage != nil {
		d.onMessage(message.VC1541HeadDown)
	}
}

func (d *Drive) Halftrack() int { return d.halftrack }
func (d *Drive) Sync() bool     { return d.sync }

// InsertDisk mounts a disk image already decoded into per-halftrack bit
// streams (D64/G64 decoding is a loader's job above this package;
// Disk.EncodeRaw is the primitive it uses).
func (d *Drive) InsertDisk(disk *Disk) {
	d.disk = disk
	d.diskInserted = true
	if d.onMessage != nil {
		d.onMessage(message.VC1541Disk)
	}
}

func (d *Drive) EjectDisk() {
	if !d.diskInserted {
		return
	}
	d.disk = NewDisk()
	d.diskInserted = false
	if d.onMessage != nil {
		d.onMessage(message.VC1541NoDisk)
	}
}

func (d *Drive) DiskInserted() bool { return d.diskInserted }
