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

package expansion_test

import (
	"testing"

	"github.com/go64/c64core/hardware/expansion"
)

// oceanROM builds a pages×8KB Ocean type 1 image where byte 0 of
// each page is the page index, so readROML can confirm which bank is live.
func oceanROM(pages int) []uint8 {
	rom := make([]uint8, pages*0x2000)
	for p := 0; p < pages; p++ {
		rom[p*0x2000] = uint8(p)
	}
	return rom
}

func TestOceanType1_bankSwitchViaIO1Write(t *testing.T) {
	cart, err := expansion.New(expansion.OceanType1, oceanROM(16), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !cart.PokeIO(0xDE00, 5) {
		t.Fatalf("expected write to $DE00 to be claimed")
	}
	if got := cart.ReadROML(0x8000); got != 5 {
		t.Fatalf("bank 5 byte 0 = %d, want 5", got)
	}
	if !cart.PokeIO(0xDE00, 2) {
		t.Fatalf("expected second write to $DE00 to be claimed")
	}
	if got := cart.ReadROML(0x8000); got != 2 {
		t.Fatalf("bank 2 byte 0 = %d, want 2", got)
	}
}

func TestOceanType1_bankWrapsAtImageSize(t *testing.T) {
	cart, err := expansion.New(expansion.OceanType1, oceanROM(4), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// a 4-page image only has banks 0-3; selecting bank 5 must wrap
	// rather than read out of range.
	cart.PokeIO(0xDE00, 5)
	if got := cart.ReadROML(0x8000); got != 1 {
		t.Fatalf("wrapped bank byte 0 = %d, want 1", got)
	}
}

func superGamesROM() []uint8 {
	rom := make([]uint8, 4*0x4000)
	for p := 0; p < 4; p++ {
		rom[p*0x4000] = uint8(p + 1)
	}
	return rom
}

func TestSuperGames_bankSwitchAndPermanentDisable(t *testing.T) {
	cart, err := expansion.New(expansion.SuperGames, superGamesROM(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cart.PokeIO(0xDF00, 3)
	if got := cart.ReadROML(0x8000); got != 4 {
		t.Fatalf("bank 3 byte 0 = %d, want 4", got)
	}

	// bit 2 set alongside a bank selection permanently disables the
	// cartridge until the next reset.
	cart.PokeIO(0xDF00, 1|0x04)
	if cart.Game() != true || cart.Exrom() != true {
		t.Fatalf("expected cartridge disabled after latch write")
	}
	if ok := cart.PokeIO(0xDF00, 0); ok {
		t.Fatalf("expected further writes to be ignored once disabled")
	}

	cart.OnReset()
	if cart.Game() || cart.Exrom() {
		t.Fatalf("expected reset to clear the disable latch")
	}
}

func TestFinalCartridgeIII_powerupResetAndFreeze(t *testing.T) {
	var nmiFired int
	rom := make([]uint8, 4*0x4000)
	rom[0] = 0x11          // bank 0, byte 0 of ROML
	rom[1*0x4000] = 0xAA   // bank 1, byte 0 of ROML
	cart, err := expansion.New(expansion.FinalCartridgeIII, rom, func() { nmiFired++ })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cart.Game() {
		t.Fatalf("expected GAME low (16K mode) at powerup")
	}
	if cart.Exrom() {
		t.Fatalf("expected cartridge visible (EXROM low) at powerup")
	}

	cart.PokeIO(0xDFFF, 1) // select bank 1
	if got := cart.ReadROML(0x8000); got != 0xAA {
		t.Fatalf("bank 1 byte 0 = %#x, want 0xAA", got)
	}

	cart.PokeIO(0xDFFF, 0x40|0x02) // hide the cartridge and leave bank 2 selected
	if !cart.Exrom() {
		t.Fatalf("expected EXROM asserted (hidden) after setting bit 6")
	}

	cart.Freeze()
	if cart.Exrom() {
		t.Fatalf("expected freeze to unhide the cartridge")
	}
	if got := cart.ReadROML(0x8000); got != 0x11 {
		t.Fatalf("expected freeze to force bank 0, got byte %#x", got)
	}
	if nmiFired != 1 {
		t.Fatalf("expected freeze to assert NMI exactly once, got %d", nmiFired)
	}

	cart.OnReset()
	if cart.Exrom() {
		t.Fatalf("expected reset to unhide the cartridge")
	}
}
