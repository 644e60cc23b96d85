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

package expansion

// funPlay banks 16 8KB pages of a 128KB image via a register at $DE00:
// bits 0-2 select banks 0-7, bit 7 adds 8 to reach the upper half.
type funPlay struct {
	rom  []uint8
	bank int
}

func newFunPlay(rom []uint8) *funPlay {
	return &funPlay{rom: rom}
}

func (f *funPlay) name() string { return "Fun Play/Power Play" }

func (f *funPlay) game() bool  { return true }
func (f *funPlay) exrom() bool { return false }

func (f *funPlay) readROML(addr uint16) uint8 {
	base := f.bank * 0x2000
	idx := base + int(addr-0x8000)
	if idx < len(f.rom) {
		return f.rom[idx]
	}
	return 0
}

func (f *funPlay) writeROML(addr uint16, v uint8) {}
func (f *funPlay) readROMH(addr uint16) uint8     { return 0 }

func (f *funPlay) peekIO1(addr uint16) (uint8, bool) { return 0, false }

func (f *funPlay) pokeIO1(addr uint16, v uint8) bool {
	if addr != 0xDE00 {
		return false
	}
	// bits 0-2 give banks 0-7 directly; bit 7 selects the upper half of
	// the image, giving banks 8-15.
	bank := int(v & 0x07)
	if v&0x80 != 0 {
		bank += 8
	}
	f.bank = bank
	return true
}

func (f *funPlay) peekIO2(addr uint16) (uint8, bool) { return 0, false }
func (f *funPlay) pokeIO2(addr uint16, v uint8) bool { return false }

func (f *funPlay) onReset()             { f.bank = 0 }
func (f *funPlay) execute(cycles int64) {}
