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

// Package iec implements the three-wire serial bus (ATN, CLK, DATA)
// connecting CIA2's port A to the VC1541's VIA1 port A. Both ends are open-collector: any device on the
// bus can pull a line low, and it only reads high again once every
// device has released it, modeled here as a simple OR-of-assertions per
// line rather than the real 6526/6522 bus drivers' inversions.
//
// This does not reproduce the 1541's ATNA gate, the small logic network
// that lets the drive's hardware yank DATA low the instant ATN asserts
// without firmware intervention. Software on both ends of this bus is
// expected to drive CLK/DATA explicitly, the same obligation a 6522 port
// bit always carries; see DESIGN.md for why that gate was left out.
package iec

import "github.com/go64/c64core/hardware/snapshot"

// Bus is the shared serial line state between the host and exactly one
// drive unit (this module models a single VC1541, so there is no device
// addressing beyond the fixed default device 8).
type Bus struct {
	hostATN, hostCLK, hostDATA bool
	driveCLK, driveDATA        bool
}

// NewBus constructs a Bus with every line released, matching the idle
// state of an IEC bus with nothing selected.
func NewBus() *Bus { return &Bus{} }

func (b *Bus) clkLine() bool  { return !(b.hostCLK || b.driveCLK) }
func (b *Bus) dataLine() bool { return !(b.hostDATA || b.driveDATA) }
func (b *Bus) atnLine() bool  { return !b.hostATN }

// Declare satisfies snapshot.Declarer. There is no explicit Reset on Bus,
// so every item is KeepOnReset, the same reasoning applied throughout
// this module to components without one of their own.
func (b *Bus) Declare() []snapshot.Item {
	return []snapshot.Item{
		{Name: "IEC.Lines", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte {
				return []byte{boolByte(b.hostATN)<<4 | boolByte(b.hostCLK)<<3 |
					boolByte(b.hostDATA)<<2 | boolByte(b.driveCLK)<<1 | boolByte(b.driveDATA)}
			},
			Set: func(v []byte) {
				b.hostATN = v[0]&0x10 != 0
				b.hostCLK = v[0]&0x08 != 0
				b.hostDATA = v[0]&0x04 != 0
				b.driveCLK = v[0]&0x02 != 0
				b.driveDATA = v[0]&0x01 != 0
			}},
	}
}

func boolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

// HostPort is CIA2's Peripheral (cia.Peripheral): port A's low 2 bits
// select the VIC's video bank, bits 3-5 drive ATN OUT/CLK
// OUT/DATA OUT, and bits 6-7 read back CLK IN/DATA IN. Port B is the
// user port, left unconnected (reads as released/high).
type HostPort struct {
	bus       *Bus
	setBank   func(base uint16)
	notifyATN func(level bool)
}

// NewHostPort constructs a HostPort sharing bus. setBank is called with
// the freshly decoded 16KB bank base (vic.VIC.SetBank's argument) on
// every port A write; notifyATN, if non-nil, is called with the bus's
// ATN line level on every port A write, meant to be wired to the drive's
// VIA1.SetCA1 so its firmware's ATN-triggered interrupt fires.
func NewHostPort(bus *Bus, setBank func(base uint16), notifyATN func(level bool)) *HostPort {
	return &HostPort{bus: bus, setBank: setBank, notifyATN: notifyATN}
}

// PortAWritten must be registered via cia.CIA.OnPortAWrite on CIA2. Bank
// select and the three IEC output lines share the same register on real
// hardware, so one callback decodes both.
func (p *HostPort) PortAWritten(outA uint8) {
	bankIndex := (^outA) & 0x03
	if p.setBank != nil {
		p.setBank(uint16(bankIndex) * 0x4000)
	}
	p.bus.hostATN = outA&0x08 != 0
	p.bus.hostCLK = outA&0x10 != 0
	p.bus.hostDATA = outA&0x20 != 0
	if p.notifyATN != nil {
		p.notifyATN(p.bus.atnLine())
	}
}

// ReadPortA implements cia.Peripheral.
func (p *HostPort) ReadPortA(outA uint8) uint8 {
	v := uint8(0xFF)
	if !p.bus.clkLine() {
		v &^= 0x40
	}
	if !p.bus.dataLine() {
		v &^= 0x80
	}
	return v
}

// ReadPortB implements cia.Peripheral.
func (p *HostPort) ReadPortB(outA uint8) uint8 { return 0xFF }

// DrivePort is the VC1541's VIA1 Peripheral (drive.Peripheral): port A's
// bit0/bit2/bit4 read DATA IN/CLK IN/ATN IN, bit1/bit3 drive DATA OUT/CLK
// OUT, and bits 5-6 (device address jumpers) read high, matching the
// open/unset jumper pair that selects device 8. Port B carries no IEC
// signal on a 1541 and reads as released.
type DrivePort struct {
	bus *Bus
}

// NewDrivePort constructs a DrivePort sharing bus.
func NewDrivePort(bus *Bus) *DrivePort { return &DrivePort{bus: bus} }

// PortAWritten must be registered via drive.VIA.OnPortAWrite on VIA1.
func (p *DrivePort) PortAWritten(outA uint8) {
	p.bus.driveCLK = outA&0x08 != 0
	p.bus.driveDATA = outA&0x02 != 0
}

// ReadPortA implements drive.Peripheral.
func (p *DrivePort) ReadPortA(outA uint8) uint8 {
	v := uint8(0xFF)
	if !p.bus.dataLine() {
		v &^= 0x01
	}
	if !p.bus.clkLine() {
		v &^= 0x04
	}
	if !p.bus.atnLine() {
		v &^= 0x10
	}
	return v
}

// ReadPortB implements drive.Peripheral.
func (p *DrivePort) ReadPortB(outA uint8) uint8 { return 0xFF }
