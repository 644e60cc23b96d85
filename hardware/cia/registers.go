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

package cia

import "github.com/go64/c64core/hardware/memory/bus"

// Register offsets within the CIA's 16-byte mirrored window.
const (
	regPRA      = 0x00
	regPRB      = 0x01
	regDDRA     = 0x02
	regDDRB     = 0x03
	regTALo     = 0x04
	regTAHi     = 0x05
	regTBLo     = 0x06
	regTBHi     = 0x07
	regTOD10ths = 0x08
	regTODSec   = 0x09
	regTODMin   = 0x0A
	regTODHour  = 0x0B
	regSDR      = 0x0C
	regICR      = 0x0D
	regCRA      = 0x0E
	regCRB      = 0x0F
)

// ChipRead implements bus.ChipBus. reg is already reduced modulo the
// 16-byte register stride by the memory decoder.
func (c *CIA) ChipRead(reg uint16) bus.ChipData {
	r := uint8(reg)
	var val uint8

	switch r {
	case regPRA:
		val = c.readPortA()
	case regPRB:
		val = c.readPortB()
	case regDDRA:
		val = c.ddra
	case regDDRB:
		val = c.ddrb
	case regTALo:
		val = uint8(c.timerA.counter)
	case regTAHi:
		val = uint8(c.timerA.counter >> 8)
	case regTBLo:
		val = uint8(c.timerB.counter)
	case regTBHi:
		val = uint8(c.timerB.counter >> 8)
	case regTOD10ths:
		val = c.tod.readTenths()
	case regTODSec:
		val = c.tod.readSeconds()
	case regTODMin:
		val = c.tod.readMinutes()
	case regTODHour:
		val = c.tod.readHours()
	case regSDR:
		val = c.sdr
	case regICR:
		val = c.icrFlags
		if c.icrFlags&c.icrEnable != 0 {
			val |= icrIRQOutput
		}
		c.icrFlags = 0
		c.updateInterrupt()
	case regCRA:
		val = c.timerA.ctrl
	case regCRB:
		val = c.timerB.ctrl
	}

	c.lastRegAccessed = val
	return bus.ChipData{Name: c.name, Value: val}
}

// LastReadRegister implements bus.ChipBus.
func (c *CIA) LastReadRegister() bus.ChipData {
	return bus.ChipData{Name: c.name, Value: c.lastRegAccessed}
}

// ChipWrite implements bus.ChipBus.
func (c *CIA) ChipWrite(reg uint16, value uint8) {
	r := uint8(reg)

	switch r {
	case regPRA:
		c.pra = value
		c.notifyPortA()
	case regPRB:
		c.prb = value
		c.notifyPortB()
	case regDDRA:
		c.ddra = value
		c.notifyPortA()
	case regDDRB:
		c.ddrb = value
		c.notifyPortB()
	case regTALo:
		c.timerA.writeLow(value)
	case regTAHi:
		c.timerA.writeHigh(value)
	case regTBLo:
		c.timerB.writeLow(value)
	case regTBHi:
		c.timerB.writeHigh(value)
	case regTOD10ths:
		c.tod.writeTenths(value, c.timerB.ctrl&0x80 != 0)
	case regTODSec:
		c.tod.writeSeconds(value, c.timerB.ctrl&0x80 != 0)
	case regTODMin:
		c.tod.writeMinutes(value, c.timerB.ctrl&0x80 != 0)
	case regTODHour:
		c.tod.writeHours(value, c.timerB.ctrl&0x80 != 0)
	case regSDR:
		c.sdr = value
		if c.timerA.ctrl&0x40 != 0 { // SPMODE output: writing SDR starts an 8-bit shift-out
			c.sdrBits = 8
		}
	case regICR:
		if value&icrIRQOutput != 0 {
			c.icrEnable |= value &^ icrIRQOutput
		} else {
			c.icrEnable &^= value
		}
		c.updateInterrupt()
	case regCRA:
		c.timerA.writeCtrl(value)
	case regCRB:
		c.timerB.writeCtrl(value)
	}
}

func (c *CIA) notifyPortA() {
	if c.onPortAWrite != nil {
		c.onPortAWrite(c.outA())
	}
}

func (c *CIA) notifyPortB() {
	if c.onPortBWrite != nil {
		c.onPortBWrite(c.outB())
	}
}
