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

// Package addresses names the fixed addresses the rest of the module
// needs to refer to: the CPU vectors and the I/O window's chip-select
// boundaries.
package addresses

const (
	ProcessorPortDirection uint16 = 0x0000
	ProcessorPort          uint16 = 0x0001

	NMIVector   uint16 = 0xFFFA
	ResetVector uint16 = 0xFFFC
	IRQVector   uint16 = 0xFFFE

	IOWindowStart uint16 = 0xD000
	IOWindowEnd   uint16 = 0xDFFF

	VICStart   uint16 = 0xD000
	VICEnd     uint16 = 0xD3FF
	SIDStart   uint16 = 0xD400
	SIDEnd     uint16 = 0xD7FF
	ColorStart uint16 = 0xD800
	ColorEnd   uint16 = 0xDBFF
	CIA1Start  uint16 = 0xDC00
	CIA1End    uint16 = 0xDCFF
	CIA2Start  uint16 = 0xDD00
	CIA2End    uint16 = 0xDDFF
	IO1Start   uint16 = 0xDE00
	IO1End     uint16 = 0xDEFF
	IO2Start   uint16 = 0xDF00
	IO2End     uint16 = 0xDFFF

	VICRegisterStride   = 64
	SIDRegisterStride   = 32
	CIARegisterStride   = 16
	ColorRAMSize        = 1024
	BasicROMBase uint16 = 0xA000
	BasicROMSize        = 0x2000
	KernalROMBase uint16 = 0xE000
	KernalROMSize        = 0x2000
	CharROMBase   uint16 = 0xD000
	CharROMSize          = 0x1000
)
