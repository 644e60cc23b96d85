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

package memory

// VICBus adapts a Memory into the vic package's VideoBus interface. It is
// defined here rather than in package vic purely to avoid vic importing
// memory for a single struct; Go's structural typing satisfies VideoBus
// without either package naming the other.
//
// Unlike CPU reads, a VICBus read never consults the page table: the VIC
// is wired straight to the 64KB address space CIA2's bank select exposes,
// bypassing LORAM/HIRAM/CHAREN/cartridge banking entirely. The one
// exception is character ROM, which is hardwired into $1000-$1FFF of bank
// 0 and $9000-$9FFF of bank 2 regardless of what the CPU sees, captured by
// the single mask addr&0x7000==0x1000 (true only for those two windows;
// bank 1's $5000-$5FFF and bank 3's $D000-$DFFF both miss it).
type VICBus struct {
	mem *Memory
}

// NewVICBus constructs a VICBus over mem.
func NewVICBus(mem *Memory) *VICBus {
	return &VICBus{mem: mem}
}

// VICRead implements vic.VideoBus.
func (v *VICBus) VICRead(addr uint16) uint8 {
	if addr&0x7000 == 0x1000 {
		return v.mem.CharROM[addr&0x0FFF]
	}
	return v.mem.RAM[addr]
}

// ColorRAMRead implements vic.VideoBus.
func (v *VICBus) ColorRAMRead(index uint16) uint8 {
	return v.mem.ColorRAM[index]
}
