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

package vic

// displayFirstCycle/displayLastCycle bound the 40-column g-access window
// within a rasterline-cycle; this lines up one character column with one
// rasterline-cycle (8 pixels), a simplification of the real hardware's
// slightly different c-access/g-access phase offsets.
const (
	displayFirstCycle = 15
	displayLastCycle  = 54
)

// bitmapBase returns the 8KB-aligned bitmap base within the current bank,
// from $D018 bit 3.
func (v *VIC) bitmapBase() uint16 {
	return uint16(v.regs[regMemPointers]&0x08) << 10
}

// fetchGraphicsForCycle performs this cycle's g-access: the character
// pattern (or bitmap byte) underlying the 8 foreground pixels this cycle
// will render. Called once per Step, badline or not, since g-access reads
// happen every line - only c-access is restricted to badlines.
func (v *VIC) fetchGraphicsForCycle() {
	if v.rasterCycle < displayFirstCycle || v.rasterCycle > displayLastCycle {
		return
	}
	col := v.rasterCycle - displayFirstCycle
	if col >= len(v.videoMatrixLine) {
		return
	}
	v.curScreenCode = v.videoMatrixLine[col]
	v.curColorNibble = v.colorLine[col]
	if v.mem == nil {
		return
	}
	if v.bitmapMode() {
		addr := v.bitmapBase() + uint16(col)*8 + uint16(v.rc)
		v.curPattern = v.mem.VICRead(v.bankedAddr(addr))
	} else {
		addr := v.charsetBase() + uint16(v.curScreenCode)*8 + uint16(v.rc)
		v.curPattern = v.mem.VICRead(v.bankedAddr(addr))
	}
}

// foregroundPixel decodes bit p (0 = leftmost) of the current g-access
// byte into a palette index and whether it counts as "foreground" for
// sprite priority and sprite-background collision purposes. ECM substitutes one of four background colors chosen
// by the top two screen-code bits instead of background color 0.
func (v *VIC) foregroundPixel(p int) (color uint8, foreground bool) {
	switch {
	case v.bitmapMode() && v.multicolorMode():
		pair := p / 2
		bits := (v.curPattern >> uint(6-2*pair)) & 0x03
		switch bits {
		case 0:
			return v.bgColor[0], false
		case 1:
			return v.curScreenCode >> 4, true
		case 2:
			return v.curScreenCode & 0x0F, true
		default:
			return v.curColorNibble, true
		}
	case v.bitmapMode():
		bit := (v.curPattern >> uint(7-p)) & 0x01
		if bit != 0 {
			return v.curScreenCode >> 4, true
		}
		return v.curScreenCode & 0x0F, false
	case v.multicolorMode() && v.curColorNibble&0x08 != 0:
		pair := p / 2
		bits := (v.curPattern >> uint(6-2*pair)) & 0x03
		switch bits {
		case 0:
			return v.bgColor[0], false
		case 1:
			return v.bgColor[1], false
		case 2:
			return v.bgColor[2], false
		default:
			return v.curColorNibble & 0x07, true
		}
	case v.extendedColor():
		bit := (v.curPattern >> uint(7-p)) & 0x01
		if bit != 0 {
			return v.curColorNibble, true
		}
		return v.bgColor[v.curScreenCode>>6], false
	default:
		bit := (v.curPattern >> uint(7-p)) & 0x01
		if bit != 0 {
			return v.curColorNibble, true
		}
		return v.bgColor[0], false
	}
}
