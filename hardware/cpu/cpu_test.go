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

package cpu_test

import (
	"testing"

	"github.com/go64/c64core/errors"
	"github.com/go64/c64core/hardware/cpu"
	"github.com/go64/c64core/hardware/memory/addresses"
	"github.com/go64/c64core/logger"
)

// flatMemory is the simplest possible CPUBus: 64KB of directly addressable
// bytes, with no banking or chip decoding. Good enough to drive the CPU
// core in isolation from the rest of the machine.
type flatMemory [65536]uint8

func (m *flatMemory) Read(addr uint16) uint8 {
	return m[addr]
}

func (m *flatMemory) Write(addr uint16, v uint8) {
	m[addr] = v
}

func countingCallback(cycles *int) func() error {
	return func() error {
		*cycles++
		return nil
	}
}

func TestCPU_resetVector(t *testing.T) {
	mem := &flatMemory{}
	mem[addresses.ResetVector] = 0xE2
	mem[addresses.ResetVector+1] = 0xFC

	c := cpu.New(mem, logger.NewLogger(16))
	c.Reset()

	if c.PC != 0xFCE2 {
		t.Fatalf("PC after reset = $%04X, want $FCE2", c.PC)
	}
	if c.FrozenPC != c.PC {
		t.Fatalf("FrozenPC = $%04X, want $%04X", c.FrozenPC, c.PC)
	}
}

func TestCPU_branchPageCross(t *testing.T) {
	mem := &flatMemory{}
	mem[0xC0F0] = 0xD0 // BNE
	mem[0xC0F1] = 0x12 // +18, crosses from $C0xx to $C1xx

	c := cpu.New(mem, logger.NewLogger(16))
	c.PC = 0xC0F0
	c.SR.Zero = false // Z=0, so BNE branches

	var cycles int
	if err := c.ExecuteInstruction(countingCallback(&cycles)); err != nil {
		t.Fatalf("ExecuteInstruction: %v", err)
	}

	if cycles != 4 {
		t.Fatalf("cycles = %d, want 4 (2 base + 1 taken + 1 page cross)", cycles)
	}
	if c.PC != 0xC104 {
		t.Fatalf("PC = $%04X, want $C104", c.PC)
	}
}

func TestCPU_adcDecimalMode(t *testing.T) {
	mem := &flatMemory{}
	mem[0x1000] = 0x69 // ADC #imm
	mem[0x1001] = 0x14

	c := cpu.New(mem, logger.NewLogger(16))
	c.PC = 0x1000
	c.A.Load(0x28)
	c.SR.DecimalMode = true
	c.SR.Carry = false

	var cycles int
	if err := c.ExecuteInstruction(countingCallback(&cycles)); err != nil {
		t.Fatalf("ExecuteInstruction: %v", err)
	}

	if c.A.Value() != 0x42 {
		t.Fatalf("A = $%02X, want $42", c.A.Value())
	}
	if c.SR.Carry {
		t.Fatal("Carry set, want clear")
	}
	if c.SR.Zero {
		t.Fatal("Zero set, want clear")
	}
	if c.SR.Sign {
		t.Fatal("Sign set, want clear")
	}
	if c.SR.Overflow {
		t.Fatal("Overflow set, want clear")
	}
}

func TestCPU_illegalOpcodeJams(t *testing.T) {
	mem := &flatMemory{}
	mem[0x2000] = 0x02 // JAM

	c := cpu.New(mem, logger.NewLogger(16))
	c.PC = 0x2000

	var cycles int
	err := c.ExecuteInstruction(countingCallback(&cycles))
	if err == nil {
		t.Fatal("expected an error from a jam opcode")
	}
	if !errors.Is(err, errors.CPUJam) {
		t.Fatalf("error = %v, want a CPUJam error", err)
	}
	if !c.Killed {
		t.Fatal("Killed = false, want true after a jam opcode")
	}
}

func TestCPU_nmiEdgeFiresOnce(t *testing.T) {
	mem := &flatMemory{}
	mem[addresses.NMIVector] = 0x00
	mem[addresses.NMIVector+1] = 0x90
	mem[0x1234] = 0xEA // NOP, the instruction in flight when NMI is asserted
	mem[0x9000] = 0xEA // NOP, so the handler doesn't loop back into an interrupt

	c := cpu.New(mem, logger.NewLogger(16))
	c.PC = 0x1234
	c.SP.Load(0xFD)

	c.SetNMI(cpu.SourceVIC, true)

	var cycles int
	// The edge detector has a one-cycle delay line, so the first
	// instruction after asserting NMI still runs as a plain fetch.
	if err := c.ExecuteInstruction(countingCallback(&cycles)); err != nil {
		t.Fatalf("ExecuteInstruction (pre-latch): %v", err)
	}

	if err := c.ExecuteInstruction(countingCallback(&cycles)); err != nil {
		t.Fatalf("ExecuteInstruction (NMI entry): %v", err)
	}
	if c.PC != 0x9000 {
		t.Fatalf("PC after NMI entry = $%04X, want $9000", c.PC)
	}

	// The line is still asserted, but the latch was consumed: the CPU must
	// not re-enter the handler on every subsequent instruction.
	if err := c.ExecuteInstruction(countingCallback(&cycles)); err != nil {
		t.Fatalf("ExecuteInstruction (after NMI): %v", err)
	}
	if c.PC != 0x9001 {
		t.Fatalf("PC after the NOP following NMI entry = $%04X, want $9001", c.PC)
	}
}

func TestCPU_frozenPCHoldsForDurationOfInstruction(t *testing.T) {
	mem := &flatMemory{}
	mem[0x4000] = 0xA9 // LDA #imm
	mem[0x4001] = 0x7F

	c := cpu.New(mem, logger.NewLogger(16))
	c.PC = 0x4000

	var cycles int
	if err := c.ExecuteInstruction(countingCallback(&cycles)); err != nil {
		t.Fatalf("ExecuteInstruction: %v", err)
	}

	if c.FrozenPC != 0x4000 {
		t.Fatalf("FrozenPC = $%04X, want $4000 (the fetch address)", c.FrozenPC)
	}
	if c.PC != 0x4002 {
		t.Fatalf("PC = $%04X, want $4002", c.PC)
	}
}

func TestCPU_breakpointStopsExecution(t *testing.T) {
	mem := &flatMemory{}
	mem[0x5000] = 0xEA // NOP

	c := cpu.New(mem, logger.NewLogger(16))
	c.PC = 0x5000
	c.SetBreakpoint(0x5000, 0)

	var cycles int
	err := c.ExecuteInstruction(countingCallback(&cycles))
	if !errors.Is(err, errors.Breakpoint) {
		t.Fatalf("error = %v, want a Breakpoint error", err)
	}
	if c.PC != 0x5000 {
		t.Fatalf("PC = $%04X, want $5000 (instruction must not have run)", c.PC)
	}
}

func TestCPU_declareRoundTripsRegisters(t *testing.T) {
	mem := &flatMemory{}
	mem[0x6000] = 0xEA // NOP

	c := cpu.New(mem, logger.NewLogger(16))
	c.PC = 0x6000
	c.A.Load(0x11)
	c.X.Load(0x22)
	c.Y.Load(0x33)
	c.SetNMI(cpu.SourceVIC, true)

	var cycles int
	if err := c.ExecuteInstruction(countingCallback(&cycles)); err != nil {
		t.Fatalf("ExecuteInstruction: %v", err)
	}

	items := c.Declare()
	captured := make([][]byte, len(items))
	for i, it := range items {
		captured[i] = append([]byte(nil), it.Get()...)
	}

	pcBefore := c.PC
	aBefore := c.A.Value()

	mem[0x6001] = 0xEA
	if err := c.ExecuteInstruction(countingCallback(&cycles)); err != nil {
		t.Fatalf("ExecuteInstruction: %v", err)
	}
	c.A.Load(0xFF)
	c.SetNMI(cpu.SourceVIC, false)

	if c.PC == pcBefore {
		t.Fatalf("PC did not advance between capture and restore, test is not exercising anything")
	}

	for i, it := range items {
		it.Set(captured[i])
	}

	if c.PC != pcBefore {
		t.Fatalf("PC after Declare round trip = $%04X, want $%04X", c.PC, pcBefore)
	}
	if c.A.Value() != aBefore {
		t.Fatalf("A after Declare round trip = $%02X, want $%02X", c.A.Value(), aBefore)
	}
}
