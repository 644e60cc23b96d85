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

import "github.com/go64/c64core/hardware/memory/bus"

const (
	driveRAMSize = 0x0800
	driveROMSize = 0x4000
)

// driveMemory is the VC1541's own 16-bit CPU address space: 2KB of RAM
// mirrored up to $1800, VIA1 and VIA2's register windows each mirrored
// every 16 bytes, and 16KB of ROM mirrored into $8000-$BFFF as well as
// its native $C000-$FFFF.
type driveMemory struct {
	ram  [driveRAMSize]uint8
	rom  [driveROMSize]uint8
	via1 *VIA
	via2 *VIA
}

func newDriveMemory(via1, via2 *VIA) *driveMemory {
	return &driveMemory{via1: via1, via2: via2}
}

// LoadROM copies a 16KB 1541 DOS ROM image into place.
func (m *driveMemory) LoadROM(data []byte) {
	n := copy(m.rom[:], data)
	for i := n; i < len(m.rom); i++ {
		m.rom[i] = 0
	}
}

func (m *driveMemory) Read(addr uint16) uint8 {
	if addr >= 0x8000 {
		return m.rom[addr&0x3FFF]
	}
	a := addr & 0x1FFF
	switch {
	case a < 0x0800:
		return m.ram[a]
	case a < 0x1800:
		return uint8(a >> 8) // unmapped: VC1541Memory.cpp returns the address's high byte
	case a < 0x1C00:
		return m.via1.ChipRead(uint16(a & 0xF)).Value
	default:
		return m.via2.ChipRead(uint16(a & 0xF)).Value
	}
}

func (m *driveMemory) Write(addr uint16, v uint8) {
	if addr >= 0x8000 {
		return
	}
	a := addr & 0x1FFF
	switch {
	case a < 0x0800:
		m.ram[a] = v
	case a < 0x1800:
		// unmapped
	case a < 0x1C00:
		m.via1.ChipWrite(uint16(a&0xF), v)
	default:
		m.via2.ChipWrite(uint16(a&0xF), v)
	}
}

var _ bus.CPUBus = (*driveMemory)(nil)
