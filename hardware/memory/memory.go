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

// Package memory implements the C64's 64KB CPU address space: banked RAM,
// BASIC/KERNAL/character ROM, the $D000-$DFFF I/O window, and whatever the
// expansion port currently exposes.
package memory

import (
	"github.com/go64/c64core/hardware/memory/addresses"
	"github.com/go64/c64core/hardware/memory/bus"
	"github.com/go64/c64core/hardware/snapshot"
)

// source names what is currently visible through a given 4KB page.
type source uint8

const (
	sourceRAM source = iota
	sourceBasicROM
	sourceKernalROM
	sourceCharROM
	sourceIO
	sourceCartLow  // ROML, $8000-$9FFF
	sourceCartHigh // ROMH, $A000-$BFFF or $E000-$FFFF depending on mode
	sourceNone     // nothing responds; reads return the floating bus value
)

// ProcessorPort is the subset of the CPU's $0000/$0001 port that drives
// memory banking.
type ProcessorPort interface {
	LoRAM() bool
	HiRAM() bool
	Charen() bool
}

// CartridgePort is implemented by whatever occupies the expansion port.
// A nil CartridgePort is treated as GAME=1, EXROM=1 (no cartridge present).
type CartridgePort interface {
	Game() bool
	Exrom() bool
	ReadROML(addr uint16) uint8
	ReadROMH(addr uint16) uint8
	WriteROML(addr uint16, v uint8)
	ReadIO1(addr uint16) (uint8, bool)
	WriteIO1(addr uint16, v uint8) bool
	ReadIO2(addr uint16) (uint8, bool)
	WriteIO2(addr uint16, v uint8) bool
}

// Memory is the C64's CPU-visible address space.
type Memory struct {
	RAM [65536]uint8

	BasicROM  [addresses.BasicROMSize]uint8
	KernalROM [addresses.KernalROMSize]uint8
	CharROM   [addresses.CharROMSize]uint8
	ColorRAM  [addresses.ColorRAMSize]uint8

	port ProcessorPort
	cart CartridgePort

	VIC  bus.ChipBus
	SID  bus.ChipBus
	CIA1 bus.ChipBus
	CIA2 bus.ChipBus

	// lastBusValue is what an unmapped read returns, updated by the VIC
	// every cycle via SetBusValue.
	lastBusValue uint8

	pageTable [16]source

	// cached banking inputs, compared against on every access so the page
	// table is only rebuilt when one of the five signals actually changes.
	haveCache               bool
	cLoram, cHiram, cCharen bool
	cGame, cExrom           bool
}

// New constructs a Memory with the processor port wired in. The cartridge
// port and chip buses are attached separately (AttachCartridge, the VIC/
// SID/CIA setters) since they're constructed after Memory in the
// orchestrator's build order.
func New(port ProcessorPort) *Memory {
	return &Memory{port: port}
}

// AttachCartridge wires in (or, with nil, detaches) the expansion port.
func (m *Memory) AttachCartridge(cart CartridgePort) {
	m.cart = cart
	m.haveCache = false
}

// AttachVIC/AttachSID/AttachCIA1/AttachCIA2 wire in the chip register
// windows decoded out of the $D000-$DFFF I/O space.
func (m *Memory) AttachVIC(v bus.ChipBus)  { m.VIC = v }
func (m *Memory) AttachSID(s bus.ChipBus)  { m.SID = s }
func (m *Memory) AttachCIA1(c bus.ChipBus) { m.CIA1 = c }
func (m *Memory) AttachCIA2(c bus.ChipBus) { m.CIA2 = c }

// SetBusValue records the byte most recently driven onto the bus by the
// VIC, for floating-bus reads of unmapped addresses.
func (m *Memory) SetBusValue(v uint8) {
	m.lastBusValue = v
}

// InvalidateBankingCache forces the next Read/Write/Peek/Poke to rebuild
// the page table from the processor port and cartridge's current signals
// instead of trusting the cached comparison. A caller must invoke this
// after Restore, since the restored processor port/cartridge state can
// disagree with whatever banking inputs were cached before the restore.
func (m *Memory) InvalidateBankingCache() { m.haveCache = false }

// Declare satisfies snapshot.Declarer with RAM and color RAM, the only
// memory state that changes independently of whatever ROM images were
// loaded at startup. BASIC/KERNAL/char ROM are not declared: a snapshot
// is only ever restored into a machine that has already loaded the same
// ROMs to get this far, the same assumption every other C64 emulator's
// save-state format makes. The banking cache fields aren't declared
// either, since they're a pure function of other components' declared
// state; InvalidateBankingCache covers the one case restoring that state
// could leave them stale.
func (m *Memory) Declare() []snapshot.Item {
	return []snapshot.Item{
		{Name: "Memory.RAM", Size: len(m.RAM), Policy: snapshot.KeepOnReset,
			Get: func() []byte { return m.RAM[:] },
			Set: func(b []byte) { copy(m.RAM[:], b) }},
		{Name: "Memory.ColorRAM", Size: len(m.ColorRAM), Policy: snapshot.KeepOnReset,
			Get: func() []byte { return m.ColorRAM[:] },
			Set: func(b []byte) { copy(m.ColorRAM[:], b) }},
		{Name: "Memory.LastBusValue", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{m.lastBusValue} },
			Set: func(b []byte) { m.lastBusValue = b[0] }},
	}
}

func (m *Memory) recompute() {
	loram, hiram, charen := m.port.LoRAM(), m.port.HiRAM(), m.port.Charen()
	game, exrom := true, true
	if m.cart != nil {
		game, exrom = m.cart.Game(), m.cart.Exrom()
	}
	if m.haveCache && loram == m.cLoram && hiram == m.cHiram && charen == m.cCharen &&
		game == m.cGame && exrom == m.cExrom {
		return
	}
	m.haveCache = true
	m.cLoram, m.cHiram, m.cCharen, m.cGame, m.cExrom = loram, hiram, charen, game, exrom
	m.pageTable = computeBanking(loram, hiram, charen, game, exrom)
}

// computeBanking implements the C64 PLA's address decode: the standard
// LORAM/HIRAM/CHAREN table when no cartridge changes GAME/EXROM from their
// pulled-up (1,1) state, 16K and 8K cartridge banking when EXROM is
// asserted low, and Ultimax mode when GAME alone is asserted low (EXROM
// high).
func computeBanking(loram, hiram, charen, game, exrom bool) [16]source {
	var t [16]source
	for i := range t {
		t[i] = sourceRAM
	}

	ultimax := !game && exrom
	cart16k := !game && !exrom
	cart8k := game && !exrom

	// $D000-$DFFF: I/O is visible whenever CHAREN is set and either ROM is
	// banked in on both sides, or a cartridge is present in a mode that
	// maps the I/O window; otherwise it's character ROM or RAM.
	ioVisible := charen && (hiram || loram || cart16k || cart8k || ultimax)
	switch {
	case ultimax:
		t[0xD] = sourceIO
	case ioVisible:
		t[0xD] = sourceIO
	case loram || hiram:
		t[0xD] = sourceCharROM
	default:
		t[0xD] = sourceRAM
	}

	// $A000-$BFFF and $E000-$FFFF: BASIC/KERNAL are visible only with no
	// cartridge overriding them.
	switch {
	case ultimax:
		t[0xA], t[0xB] = sourceNone, sourceNone
		t[0xE], t[0xF] = sourceCartHigh, sourceCartHigh
	case cart16k:
		t[0xA], t[0xB] = sourceCartHigh, sourceCartHigh
		t[0xE], t[0xF] = sourceKernalROM, sourceKernalROM
		if !hiram {
			t[0xE], t[0xF] = sourceRAM, sourceRAM
		}
	default:
		if loram && hiram {
			t[0xA], t[0xB] = sourceBasicROM, sourceBasicROM
		}
		if hiram {
			t[0xE], t[0xF] = sourceKernalROM, sourceKernalROM
		}
	}

	// $8000-$9FFF: RAM unless a cartridge maps ROML there.
	if cart16k || cart8k || ultimax {
		t[0x8], t[0x9] = sourceCartLow, sourceCartLow
	}

	// Ultimax mode disables RAM everywhere except the zero page/stack and
	// the already-decoded I/O window.
	if ultimax {
		for p := uint16(0x1); p <= 0xC; p++ {
			if t[p] == sourceRAM {
				t[p] = sourceNone
			}
		}
	}

	return t
}

// Read implements bus.CPUBus.
func (m *Memory) Read(addr uint16) uint8 {
	m.recompute()
	page := addr >> 12

	switch m.pageTable[page] {
	case sourceRAM:
		return m.RAM[addr]
	case sourceBasicROM:
		return m.BasicROM[addr-addresses.BasicROMBase]
	case sourceKernalROM:
		return m.KernalROM[addr-addresses.KernalROMBase]
	case sourceCharROM:
		return m.CharROM[addr-addresses.CharROMBase]
	case sourceCartLow:
		if m.cart != nil {
			return m.cart.ReadROML(addr)
		}
	case sourceCartHigh:
		if m.cart != nil {
			return m.cart.ReadROMH(addr)
		}
	case sourceIO:
		return m.readIO(addr)
	}
	return m.lastBusValue
}

// Write implements bus.CPUBus. ROM areas are write-through: the write is
// silently dropped as far as the CPU can see, but the underlying RAM byte
// is still updated, because a later banking change can make that RAM
// visible again.
func (m *Memory) Write(addr uint16, v uint8) {
	m.recompute()
	m.RAM[addr] = v

	switch m.pageTable[addr>>12] {
	case sourceIO:
		m.writeIO(addr, v)
	case sourceCartLow:
		if m.cart != nil {
			m.cart.WriteROML(addr, v)
		}
	}
}

// Peek/Poke implement bus.DebuggerBus. Peek sees RAM and the BASIC,
// KERNAL and character ROMs wherever the banking maps them; for the I/O
// window and for cartridge or unmapped pages it returns the underlying
// RAM byte, so it never triggers register side effects (a VIC-II
// status-register read-to-acknowledge, say) the way an ordinary CPU
// fetch would. Poke always writes RAM, with no I/O or cartridge effects.
func (m *Memory) Peek(addr uint16) uint8 {
	m.recompute()
	switch m.pageTable[addr>>12] {
	case sourceRAM:
		return m.RAM[addr]
	case sourceBasicROM:
		return m.BasicROM[addr-addresses.BasicROMBase]
	case sourceKernalROM:
		return m.KernalROM[addr-addresses.KernalROMBase]
	case sourceCharROM:
		return m.CharROM[addr-addresses.CharROMBase]
	case sourceIO:
		return m.RAM[addr]
	}
	return m.RAM[addr]
}

func (m *Memory) Poke(addr uint16, v uint8) {
	m.RAM[addr] = v
}

func (m *Memory) readIO(addr uint16) uint8 {
	switch {
	case addr >= addresses.VICStart && addr <= addresses.VICEnd:
		if m.VIC != nil {
			reg := (addr - addresses.VICStart) % addresses.VICRegisterStride
			return m.VIC.ChipRead(reg).Value
		}
	case addr >= addresses.SIDStart && addr <= addresses.SIDEnd:
		if m.SID != nil {
			reg := (addr - addresses.SIDStart) % addresses.SIDRegisterStride
			return m.SID.ChipRead(reg).Value
		}
	case addr >= addresses.ColorStart && addr <= addresses.ColorEnd:
		return m.ColorRAM[addr-addresses.ColorStart] & 0x0F
	case addr >= addresses.CIA1Start && addr <= addresses.CIA1End:
		if m.CIA1 != nil {
			reg := (addr - addresses.CIA1Start) % addresses.CIARegisterStride
			return m.CIA1.ChipRead(reg).Value
		}
	case addr >= addresses.CIA2Start && addr <= addresses.CIA2End:
		if m.CIA2 != nil {
			reg := (addr - addresses.CIA2Start) % addresses.CIARegisterStride
			return m.CIA2.ChipRead(reg).Value
		}
	case addr >= addresses.IO1Start && addr <= addresses.IO1End:
		if m.cart != nil {
			if v, ok := m.cart.ReadIO1(addr); ok {
				return v
			}
		}
	case addr >= addresses.IO2Start && addr <= addresses.IO2End:
		if m.cart != nil {
			if v, ok := m.cart.ReadIO2(addr); ok {
				return v
			}
		}
	}
	return m.lastBusValue
}

func (m *Memory) writeIO(addr uint16, v uint8) {
	switch {
	case addr >= addresses.VICStart && addr <= addresses.VICEnd:
		if m.VIC != nil {
			reg := (addr - addresses.VICStart) % addresses.VICRegisterStride
			m.VIC.ChipWrite(reg, v)
		}
	case addr >= addresses.SIDStart && addr <= addresses.SIDEnd:
		if m.SID != nil {
			reg := (addr - addresses.SIDStart) % addresses.SIDRegisterStride
			m.SID.ChipWrite(reg, v)
		}
	case addr >= addresses.ColorStart && addr <= addresses.ColorEnd:
		m.ColorRAM[addr-addresses.ColorStart] = v & 0x0F
	case addr >= addresses.CIA1Start && addr <= addresses.CIA1End:
		if m.CIA1 != nil {
			reg := (addr - addresses.CIA1Start) % addresses.CIARegisterStride
			m.CIA1.ChipWrite(reg, v)
		}
	case addr >= addresses.CIA2Start && addr <= addresses.CIA2End:
		if m.CIA2 != nil {
			reg := (addr - addresses.CIA2Start) % addresses.CIARegisterStride
			m.CIA2.ChipWrite(reg, v)
		}
	case addr >= addresses.IO1Start && addr <= addresses.IO1End:
		if m.cart != nil {
			m.cart.WriteIO1(addr, v)
		}
	case addr >= addresses.IO2Start && addr <= addresses.IO2End:
		if m.cart != nil {
			m.cart.WriteIO2(addr, v)
		}
	}
}
