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

package memory_test

import (
	"testing"

	"github.com/go64/c64core/hardware/memory"
)

type fakePort struct {
	loram, hiram, charen bool
}

func (p fakePort) LoRAM() bool  { return p.loram }
func (p fakePort) HiRAM() bool  { return p.hiram }
func (p fakePort) Charen() bool { return p.charen }

func TestMemory_defaultBankingExposesBasicAndKernal(t *testing.T) {
	port := fakePort{loram: true, hiram: true, charen: true}
	mem := memory.New(port)
	mem.BasicROM[0] = 0xAA
	mem.KernalROM[0] = 0xBB
	mem.RAM[0xA000] = 0x11
	mem.RAM[0xE000] = 0x22

	if got := mem.Read(0xA000); got != 0xAA {
		t.Fatalf("Read($A000) = $%02X, want $AA (BASIC ROM)", got)
	}
	if got := mem.Read(0xE000); got != 0xBB {
		t.Fatalf("Read($E000) = $%02X, want $BB (KERNAL ROM)", got)
	}

	// the write-through invariant: writing to a ROM-shadowed address
	// still updates the underlying RAM even though the read is unaffected.
	mem.Write(0xA000, 0x99)
	if mem.RAM[0xA000] != 0x99 {
		t.Fatalf("RAM[$A000] = $%02X after write-through, want $99", mem.RAM[0xA000])
	}
	if got := mem.Read(0xA000); got != 0xAA {
		t.Fatalf("Read($A000) after write-through = $%02X, want $AA still (ROM wins the read)", got)
	}
}

func TestMemory_allRAMBanking(t *testing.T) {
	port := fakePort{loram: false, hiram: false, charen: false}
	mem := memory.New(port)
	mem.BasicROM[0] = 0xAA
	mem.RAM[0xA000] = 0x55

	if got := mem.Read(0xA000); got != 0x55 {
		t.Fatalf("Read($A000) = $%02X, want $55 (RAM, ROMs banked out)", got)
	}
}

func TestMemory_charenClearedExposesCharROM(t *testing.T) {
	port := fakePort{loram: true, hiram: true, charen: false}
	mem := memory.New(port)
	mem.CharROM[0] = 0xCC
	mem.RAM[0xD000] = 0x33

	if got := mem.Read(0xD000); got != 0xCC {
		t.Fatalf("Read($D000) with CHAREN=0 = $%02X, want $CC (char ROM)", got)
	}
}

func TestMemory_ramReadIsUnaffectedByFloatingBusValue(t *testing.T) {
	port := fakePort{loram: false, hiram: false, charen: false}
	mem := memory.New(port)
	mem.SetBusValue(0x7E)
	mem.RAM[0x8000] = 0x01

	// without a cartridge, $8000-$9FFF is plain RAM, not "unmapped" - the
	// floating bus value must only surface where nothing else responds.
	if got := mem.Read(0x8000); got != 0x01 {
		t.Fatalf("Read($8000) = $%02X, want $01 (RAM, not the floating bus value)", got)
	}
}

func TestMemory_colorRAMIsNibbleWide(t *testing.T) {
	port := fakePort{loram: true, hiram: true, charen: true}
	mem := memory.New(port)

	mem.Write(0xD800, 0xFF)
	if got := mem.Read(0xD800); got != 0x0F {
		t.Fatalf("Read($D800) = $%02X, want $0F (color RAM is 4 bits wide)", got)
	}
}

func TestMemory_declareRoundTripsRAMAndColorRAM(t *testing.T) {
	port := fakePort{loram: true, hiram: true, charen: true}
	mem := memory.New(port)
	mem.Write(0x0400, 0x42)
	mem.Write(0xD800, 0x0A)

	items := mem.Declare()
	captured := make([][]byte, len(items))
	for i, it := range items {
		captured[i] = append([]byte(nil), it.Get()...)
	}

	mem.Write(0x0400, 0x00)
	mem.Write(0xD800, 0x00)

	for i, it := range items {
		it.Set(captured[i])
	}

	if got := mem.Read(0x0400); got != 0x42 {
		t.Fatalf("RAM after Declare round trip = $%02X, want $42", got)
	}
	if got := mem.Read(0xD800); got != 0x0A {
		t.Fatalf("color RAM after Declare round trip = $%02X, want $0A", got)
	}
}

func TestVICBus_readsBypassCPUBanking(t *testing.T) {
	port := fakePort{loram: true, hiram: true, charen: true}
	mem := memory.New(port)
	mem.RAM[0xA000] = 0x11
	mem.BasicROM[0] = 0xAA

	vb := memory.NewVICBus(mem)
	if got := vb.VICRead(0xA000); got != 0x11 {
		t.Fatalf("VICRead($A000) = $%02X, want $11 (RAM, ignoring CPU's BASIC ROM banking)", got)
	}
}

func TestVICBus_charROMOverlayAppliesToBanks0And2Only(t *testing.T) {
	port := fakePort{loram: true, hiram: true, charen: true}
	mem := memory.New(port)
	mem.CharROM[0x000] = 0xCC
	mem.CharROM[0xFFF] = 0xDD
	mem.RAM[0x1000] = 0x11
	mem.RAM[0x9000] = 0x22
	mem.RAM[0x5000] = 0x33
	mem.RAM[0xD000] = 0x44

	vb := memory.NewVICBus(mem)
	if got := vb.VICRead(0x1000); got != 0xCC {
		t.Fatalf("VICRead($1000) = $%02X, want $CC (char ROM, bank 0)", got)
	}
	if got := vb.VICRead(0x9000); got != 0xCC {
		t.Fatalf("VICRead($9000) = $%02X, want $CC (char ROM, bank 2)", got)
	}
	if got := vb.VICRead(0x1FFF); got != 0xDD {
		t.Fatalf("VICRead($1FFF) = $%02X, want $DD (char ROM top of window)", got)
	}
	if got := vb.VICRead(0x5000); got != 0x33 {
		t.Fatalf("VICRead($5000) = $%02X, want $33 (RAM, bank 1 has no char ROM overlay)", got)
	}
	if got := vb.VICRead(0xD000); got != 0x44 {
		t.Fatalf("VICRead($D000) = $%02X, want $44 (RAM, bank 3 has no char ROM overlay)", got)
	}
}

func TestVICBus_colorRAMIgnoresBank(t *testing.T) {
	port := fakePort{loram: true, hiram: true, charen: true}
	mem := memory.New(port)
	mem.ColorRAM[42] = 0x0F

	vb := memory.NewVICBus(mem)
	if got := vb.ColorRAMRead(42); got != 0x0F {
		t.Fatalf("ColorRAMRead(42) = $%02X, want $0F", got)
	}
}
