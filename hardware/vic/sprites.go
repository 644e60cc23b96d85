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

// spriteHeight is the number of source rows a sprite occupies before
// Y-expansion doubles it.
const spriteHeight = 21

// updateSpriteDMA turns a sprite's DMA on/off for the current rasterline
// and, on the first cycle of each line, fetches its 3 data bytes into the
// shift register. Only
// runs once per rasterline, at cycle 1, since sprite data is fetched a
// whole line ahead of display on real hardware; this model fetches it
// for immediate use on the same line instead, a simplification that does
// not affect the resulting pixels.
func (v *VIC) updateSpriteDMA() {
	if v.rasterCycle != 1 {
		return
	}
	base := v.videoMatrixBase()
	for i := range v.sprites {
		s := &v.sprites[i]
		if !s.enabled {
			s.dmaActive = false
			s.mcBase = 0
			s.expansionFlipFlop = false
			continue
		}
		height := spriteHeight
		if s.expandY {
			height = spriteHeight * 2
		}
		active := v.raster >= s.y && v.raster < s.y+height
		if active && !s.dmaActive {
			s.mcBase = 0
			s.expansionFlipFlop = false
		}
		s.dmaActive = active
		if !active {
			continue
		}

		fetchRow := !s.expandY || !s.expansionFlipFlop
		if fetchRow && s.mcBase <= 60 {
			if v.mem != nil {
				pointer := v.mem.VICRead(v.bankedAddr(base + 0x3F8 + uint16(i)))
				s.dataPointer = pointer
				block := uint16(pointer) * 64
				s.mc[0] = v.mem.VICRead(v.bankedAddr(block + uint16(s.mcBase)))
				s.mc[1] = v.mem.VICRead(v.bankedAddr(block + uint16(s.mcBase) + 1))
				s.mc[2] = v.mem.VICRead(v.bankedAddr(block + uint16(s.mcBase) + 2))
			}
			s.mcBase += 3
		}
		if fetchRow {
			s.shiftRegister = uint32(s.mc[0])<<16 | uint32(s.mc[1])<<8 | uint32(s.mc[2])
		}
		if s.expandY {
			s.expansionFlipFlop = !s.expansionFlipFlop
		}
	}
}

// spritePixel reports whether sprite i covers absolute screen x-coordinate
// x this line, and if so its color and opacity (multicolor "00" pairs
// and hires 0-bits are transparent: not opaque, and they do not collide).
func (v *VIC) spritePixel(i int, x int) (color uint8, opaque bool) {
	s := &v.sprites[i]
	if !s.dmaActive {
		return 0, false
	}
	width := 24
	if s.expandX {
		width = 48
	}
	offset := x - s.x
	if offset < 0 || offset >= width {
		return 0, false
	}
	srcBit := offset
	if s.expandX {
		srcBit = offset / 2
	}
	if s.multicolor {
		pair := srcBit / 2
		if pair >= 12 {
			return 0, false
		}
		bits := (s.shiftRegister >> uint(22-2*pair)) & 0x03
		switch bits {
		case 0:
			return 0, false
		case 1:
			return v.spriteMulticolor[0], true
		case 2:
			return s.color, true
		default:
			return v.spriteMulticolor[1], true
		}
	}
	if srcBit >= 24 {
		return 0, false
	}
	bit := (s.shiftRegister >> uint(23-srcBit)) & 0x01
	if bit == 0 {
		return 0, false
	}
	return s.color, true
}

// compositeSprites layers the 8 sprites (lowest index highest priority)
// over a background/foreground pixel already decided by the character or
// bitmap pipeline, accumulating collision bits along the way. x is the absolute screen pixel coordinate.
func (v *VIC) compositeSprites(x int, behindColor uint8, behindForeground bool) uint8 {
	result := behindColor
	resultSet := false
	spriteHere := uint8(0)

	for i := range v.sprites {
		color, opaque := v.spritePixel(i, x)
		if !opaque {
			continue
		}
		if spriteHere != 0 {
			v.collisionSpriteSprite |= spriteHere | (1 << uint(i))
		}
		spriteHere |= 1 << uint(i)

		if behindForeground && v.sprites[i].priorityBehind {
			continue
		}
		if !resultSet {
			result = color
			resultSet = true
		}
	}

	if spriteHere != 0 && behindForeground {
		v.collisionSpriteBG |= spriteHere
		v.raiseIRQ(IRQSpriteBG)
	}
	if v.collisionSpriteSprite != 0 {
		v.raiseIRQ(IRQSpriteSprite)
	}

	return result
}
