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

// simonsBASIC is a 16KB ROM that powers up in 16K mode (ROML+ROMH both
// mapped) and switches to 8K mode (ROML only, ROMH banked out so BASIC
// programs can use the freed RAM) when anything is written to $DE00.
// Reading $DE00, or a reset, switches back to 16K mode.
type simonsBASIC struct {
	rom      []uint8
	eightKOn bool
}

func newSimonsBASIC(rom []uint8) *simonsBASIC {
	return &simonsBASIC{rom: rom}
}

func (s *simonsBASIC) name() string { return "Simons' BASIC" }

func (s *simonsBASIC) game() bool  { return s.eightKOn }
func (s *simonsBASIC) exrom() bool { return false }

func (s *simonsBASIC) readROML(addr uint16) uint8 {
	off := int(addr - 0x8000)
	if off < len(s.rom) {
		return s.rom[off]
	}
	return 0
}

func (s *simonsBASIC) writeROML(addr uint16, v uint8) {}

func (s *simonsBASIC) readROMH(addr uint16) uint8 {
	if s.eightKOn {
		return 0
	}
	off := int(addr-0xA000) + 0x2000
	if off < len(s.rom) {
		return s.rom[off]
	}
	return 0
}

func (s *simonsBASIC) peekIO1(addr uint16) (uint8, bool) {
	if addr == 0xDE00 {
		s.eightKOn = false
		return 0, true
	}
	return 0, false
}

func (s *simonsBASIC) pokeIO1(addr uint16, v uint8) bool {
	if addr != 0xDE00 {
		return false
	}
	s.eightKOn = true
	return true
}

func (s *simonsBASIC) peekIO2(addr uint16) (uint8, bool) { return 0, false }
func (s *simonsBASIC) pokeIO2(addr uint16, v uint8) bool { return false }

func (s *simonsBASIC) onReset()             { s.eightKOn = false }
func (s *simonsBASIC) execute(cycles int64) {}
