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

package registers

import "strings"

// Status holds the seven flag bits of the 6510's processor status
// register. The unused bit 5 is always read back as 1 and is not stored
// here explicitly; Value() sets it.
type Status struct {
	Sign             bool
	Overflow         bool
	Break            bool
	DecimalMode      bool
	InterruptDisable bool
	Zero             bool
	Carry            bool
}

// NewStatus returns a Status with every flag clear except the bits Load
// always sets.
func NewStatus() Status {
	var sr Status
	sr.Load(0x00)
	return sr
}

// Label returns the canonical register name.
func (sr Status) Label() string {
	return "P"
}

func (sr Status) String() string {
	var s strings.Builder

	writeFlag := func(set bool, on, off rune) {
		if set {
			s.WriteRune(on)
		} else {
			s.WriteRune(off)
		}
	}

	writeFlag(sr.Sign, 'N', 'n')
	writeFlag(sr.Overflow, 'V', 'v')
	s.WriteRune('-')
	writeFlag(sr.Break, 'B', 'b')
	writeFlag(sr.DecimalMode, 'D', 'd')
	writeFlag(sr.InterruptDisable, 'I', 'i')
	writeFlag(sr.Zero, 'Z', 'z')
	writeFlag(sr.Carry, 'C', 'c')

	return s.String()
}

// Value packs the flags into the byte layout used when pushing the status
// register onto the stack (PHP, BRK, interrupt entry).
func (sr Status) Value() uint8 {
	var v uint8

	if sr.Sign {
		v |= 0x80
	}
	if sr.Overflow {
		v |= 0x40
	}
	if sr.Break {
		v |= 0x10
	}
	if sr.DecimalMode {
		v |= 0x08
	}
	if sr.InterruptDisable {
		v |= 0x04
	}
	if sr.Zero {
		v |= 0x02
	}
	if sr.Carry {
		v |= 0x01
	}

	v |= 0x20 // unused bit, always reads as 1

	return v
}

// Load unpacks v (as pulled from the stack by PLP or an interrupt return)
// into the flags. The break flag is always set by a direct load; only the
// interrupt-entry path clears it explicitly on the pushed copy.
func (sr *Status) Load(v uint8) {
	sr.Sign = v&0x80 == 0x80
	sr.Overflow = v&0x40 == 0x40
	sr.DecimalMode = v&0x08 == 0x08
	sr.InterruptDisable = v&0x04 == 0x04
	sr.Zero = v&0x02 == 0x02
	sr.Carry = v&0x01 == 0x01
	sr.Break = true
}
