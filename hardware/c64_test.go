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

package hardware_test

import (
	"testing"

	"github.com/go64/c64core/hardware"
	"github.com/go64/c64core/hardware/expansion"
	"github.com/go64/c64core/instance"
	"github.com/go64/c64core/message"
)

// zeroCoords is a minimal random.Coords for tests that don't care about
// seed-stirring by raster position.
type zeroCoords struct{}

func (zeroCoords) GetCoords() (frame, scanline, clock int) { return 0, 0, 0 }

func newTestMachine(t *testing.T) *hardware.C64 {
	t.Helper()
	ins, err := instance.NewInstance(zeroCoords{})
	if err != nil {
		t.Fatalf("instance.NewInstance: %v", err)
	}
	ins.Prefs.RandomState.Set(false)
	ins.Prefs.Warp.Set(true)

	c := hardware.New(ins)
	c.Claim()
	return c
}

// loadProgram pokes a tiny machine-code program directly into RAM at
// addr and points the reset vector at it, sidestepping BASIC/KERNAL ROM
// entirely - Poke always writes RAM, and with the processor port at its
// reset value of zero the CPU sees plain RAM across the whole address
// space, the reset vector's page included, so this needs no ROM images
// loaded at all.
func loadProgram(c *hardware.C64, addr uint16, program []byte) {
	c.Poke(0xFFFC, uint8(addr))
	c.Poke(0xFFFD, uint8(addr>>8))
	for i, b := range program {
		c.Poke(addr+uint16(i), b)
	}
}

func TestC64_resetLoadsProgramCounterFromVector(t *testing.T) {
	c := newTestMachine(t)
	loadProgram(c, 0x0800, []byte{0x4C, 0x00, 0x08}) // JMP $0800
	c.Reset()

	if got := c.PC(); got != 0x0800 {
		t.Fatalf("PC after Reset = $%04X, want $0800", got)
	}
}

func TestC64_stepOneCycleExecutesInstructions(t *testing.T) {
	c := newTestMachine(t)
	program := []byte{
		0xA9, 0x42, // LDA #$42
		0x8D, 0x00, 0x04, // STA $0400
		0x4C, 0x00, 0x08, // JMP $0800
	}
	loadProgram(c, 0x0800, program)
	c.Reset()

	for i := 0; i < 2; i++ {
		if halted := c.StepOneCycle(); halted {
			t.Fatalf("machine halted unexpectedly at step %d", i)
		}
	}

	if got := c.Peek(0x0400); got != 0x42 {
		t.Fatalf("$0400 = $%02X, want $42", got)
	}
}

func TestC64_cpuJamHaltsAndPostsMessage(t *testing.T) {
	c := newTestMachine(t)
	// $02 is an unimplemented/illegal opcode on the 6510's documented
	// instruction set and the CPU package jams on it.
	loadProgram(c, 0x0800, []byte{0x02})
	c.Reset()

	if halted := c.StepOneCycle(); !halted {
		t.Fatalf("expected StepOneCycle to report halted on an illegal opcode")
	}

	var sawHalt bool
	for {
		msg, ok := c.PollMessage()
		if !ok {
			break
		}
		if msg.Tag == message.Halt {
			sawHalt = true
		}
	}
	if !sawHalt {
		t.Fatalf("expected a Halt message after the CPU jammed")
	}
}

func TestC64_snapshotRoundTripsRAM(t *testing.T) {
	c := newTestMachine(t)
	program := []byte{
		0xA9, 0x07, // LDA #$07
		0x8D, 0x00, 0x04, // STA $0400
		0x4C, 0x00, 0x08, // JMP $0800
	}
	loadProgram(c, 0x0800, program)
	c.Reset()

	for i := 0; i < 2; i++ {
		if c.StepOneCycle() {
			t.Fatalf("machine halted unexpectedly")
		}
	}
	if got := c.Peek(0x0400); got != 0x07 {
		t.Fatalf("$0400 = $%02X before snapshot, want $07", got)
	}

	saved := c.Snapshot()

	// Disturb state: overwrite the captured byte.
	c.Poke(0x0400, 0xAA)
	if c.Peek(0x0400) != 0xAA {
		t.Fatalf("poke to disturb state did not take")
	}

	if err := c.Restore(saved); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := c.Peek(0x0400); got != 0x07 {
		t.Fatalf("$0400 after Restore = $%02X, want $07 (restored)", got)
	}
}

func TestC64_attachCartridgeRejectsUnknownKind(t *testing.T) {
	c := newTestMachine(t)
	if err := c.AttachCartridge(expansion.Kind(99), make([]byte, 0x2000)); err == nil {
		t.Fatalf("expected an error attaching an unrecognised cartridge kind")
	}
}

func TestC64_loadROMRejectsWrongSizedImage(t *testing.T) {
	c := newTestMachine(t)
	if err := c.LoadROM(message.RomBasic, make([]byte, 4)); err == nil {
		t.Fatalf("expected an error loading an undersized BASIC ROM image")
	}
}

func TestC64_insertAndEjectDiskDoesNotPanic(t *testing.T) {
	c := newTestMachine(t)
	c.InsertDisk(nil)
	c.EjectDisk()
}
