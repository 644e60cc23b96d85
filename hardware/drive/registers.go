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

// Register offsets within the VIA's 16-byte mirrored window.
const (
	regORB   = 0x0
	regORA   = 0x1
	regDDRB  = 0x2
	regDDRA  = 0x3
	regT1CL  = 0x4
	regT1CH  = 0x5
	regT1LL  = 0x6
	regT1LH  = 0x7
	regT2CL  = 0x8
	regT2CH  = 0x9
	regSR    = 0xA
	regACR   = 0xB
	regPCR   = 0xC
	regIFR   = 0xD
	regIER   = 0xE
	regORANH = 0xF // port A, no handshake side effect
)

// ChipRead implements bus.ChipBus. reg is already reduced modulo 16 by
// the drive memory decoder.
func (v *VIA) ChipRead(reg uint16) bus.ChipData {
	r := uint8(reg)
	var val uint8

	switch r {
	case regORB:
		val = v.readPortB()
		v.clearHandshake(flagCB1, cb2ControlBits(v.pcr))
	case regORA:
		val = v.readPortA()
		v.clearHandshake(flagCA1, ca2ControlBits(v.pcr))
	case regORANH:
		val = v.readPortA()
	case regDDRB:
		val = v.ddrb
	case regDDRA:
		val = v.ddra
	case regT1CL:
		val = uint8(v.t1Counter)
		v.ifr &^= flagTimer1
		v.updateInterrupt()
	case regT1CH:
		val = uint8(v.t1Counter >> 8)
	case regT1LL:
		val = uint8(v.t1Latch)
	case regT1LH:
		val = uint8(v.t1Latch >> 8)
	case regT2CL:
		val = uint8(v.t2Counter)
		v.ifr &^= flagTimer2
		v.updateInterrupt()
	case regT2CH:
		val = uint8(v.t2Counter >> 8)
	case regSR:
		val = v.sr
	case regACR:
		val = v.acr
	case regPCR:
		val = v.pcr
	case regIFR:
		val = v.ifr
		if v.ifr&v.ier != 0 {
			val |= flagIRQ
		}
	case regIER:
		val = v.ier | flagIRQ
	}

	v.lastRegAccessed = val
	return bus.ChipData{Name: v.name, Value: val}
}

// LastReadRegister implements bus.ChipBus.
func (v *VIA) LastReadRegister() bus.ChipData {
	return bus.ChipData{Name: v.name, Value: v.lastRegAccessed}
}

// ChipWrite implements bus.ChipBus.
func (v *VIA) ChipWrite(reg uint16, value uint8) {
	r := uint8(reg)

	switch r {
	case regORB:
		v.orb = value
		if v.onPortBWrite != nil {
			v.onPortBWrite(v.outB())
		}
	case regORA, regORANH:
		v.ora = value
		if v.onPortAWrite != nil {
			v.onPortAWrite(v.outA())
		}
	case regDDRB:
		v.ddrb = value
		if v.onPortBWrite != nil {
			v.onPortBWrite(v.outB())
		}
	case regDDRA:
		v.ddra = value
		if v.onPortAWrite != nil {
			v.onPortAWrite(v.outA())
		}
	case regT1CL:
		v.t1Latch = (v.t1Latch &^ 0xFF) | uint16(value)
	case regT1CH:
		v.t1Latch = (v.t1Latch &^ 0xFF00) | uint16(value)<<8
		v.t1Counter = v.t1Latch
		v.t1OneShotFired = false
		v.t1PB7 = false
		v.ifr &^= flagTimer1
		v.updateInterrupt()
	case regT1LL:
		v.t1Latch = (v.t1Latch &^ 0xFF) | uint16(value)
	case regT1LH:
		v.t1Latch = (v.t1Latch &^ 0xFF00) | uint16(value)<<8
		v.ifr &^= flagTimer1
		v.updateInterrupt()
	case regT2CL:
		v.t2Latch = value
	case regT2CH:
		v.t2Counter = uint16(value)<<8 | uint16(v.t2Latch)
		v.t2OneShotFired = false
		v.ifr &^= flagTimer2
		v.updateInterrupt()
	case regSR:
		v.sr = value
	case regACR:
		v.acr = value
	case regPCR:
		v.pcr = value
	case regIFR:
		v.ifr &^= value &^ flagIRQ
		v.updateInterrupt()
	case regIER:
		if value&flagIRQ != 0 {
			v.ier |= value &^ flagIRQ
		} else {
			v.ier &^= value
		}
		v.updateInterrupt()
	}
}
