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

// finalCartridgeIII is a 64KB ROM organised as four 16KB banks, selected
// by the low two bits of a control register at $DFFF. Bit 6 of that
// register hides the cartridge (banking out ROML/ROMH, exposing RAM in
// their place); the freeze button asserts NMI directly and forces the
// cartridge visible in bank 0, independent of whatever the software had
// selected, so the freeze handler always has a known ROM image to run.
type finalCartridgeIII struct {
	rom        []uint8
	bank       int
	hidden     bool
	requestNMI func()
}

func newFinalCartridgeIII(rom []uint8, requestNMI func()) *finalCartridgeIII {
	f := &finalCartridgeIII{rom: rom, requestNMI: requestNMI}
	f.powerup()
	return f
}

// powerup is the authoritative initial-state routine; onReset calls into
// it rather than duplicating the bank/visibility defaults.
func (f *finalCartridgeIII) powerup() {
	f.bank = 0
	f.hidden = false
}

func (f *finalCartridgeIII) name() string { return "Final Cartridge III" }

func (f *finalCartridgeIII) game() bool  { return f.hidden }
func (f *finalCartridgeIII) exrom() bool { return f.hidden }

func (f *finalCartridgeIII) bankOffset() int { return f.bank * 0x4000 }

func (f *finalCartridgeIII) readROML(addr uint16) uint8 {
	if f.hidden {
		return 0
	}
	off := f.bankOffset() + int(addr-0x8000)
	if off < len(f.rom) {
		return f.rom[off]
	}
	return 0
}

func (f *finalCartridgeIII) writeROML(addr uint16, v uint8) {}

func (f *finalCartridgeIII) readROMH(addr uint16) uint8 {
	if f.hidden {
		return 0
	}
	off := f.bankOffset() + int(addr-0xA000) + 0x2000
	if off < len(f.rom) {
		return f.rom[off]
	}
	return 0
}

func (f *finalCartridgeIII) peekIO1(addr uint16) (uint8, bool) { return 0, false }
func (f *finalCartridgeIII) pokeIO1(addr uint16, v uint8) bool { return false }

func (f *finalCartridgeIII) peekIO2(addr uint16) (uint8, bool) {
	if addr == 0xDFFF {
		b := uint8(f.bank)
		if f.hidden {
			b |= 0x40
		}
		return b, true
	}
	return 0, false
}

func (f *finalCartridgeIII) pokeIO2(addr uint16, v uint8) bool {
	if addr != 0xDFFF {
		return false
	}
	f.bank = int(v & 0x03)
	f.hidden = v&0x40 != 0
	return true
}

func (f *finalCartridgeIII) onReset() { f.powerup() }

// Freeze simulates the cartridge's freeze button: the cartridge is forced
// visible at bank 0 and an NMI is asserted, mirroring the real hardware's
// button behaviour.
func (f *finalCartridgeIII) Freeze() {
	f.bank = 0
	f.hidden = false
	if f.requestNMI != nil {
		f.requestNMI()
	}
}

func (f *finalCartridgeIII) execute(cycles int64) {}
