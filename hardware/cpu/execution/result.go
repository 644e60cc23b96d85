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

// Package execution holds the bookkeeping the CPU accumulates while
// carrying out a single instruction, used both to drive cycle counting
// and to feed the debugger's instruction log.
package execution

import "github.com/go64/c64core/hardware/cpu/instructions"

// Result describes the instruction currently in flight or just completed.
type Result struct {
	Defn *instructions.Definition

	// Address is the effective address the operand was read from/written
	// to, where the addressing mode produces one.
	Address uint16

	// InstructionData holds the raw bytes fetched for this instruction
	// (opcode plus any operand bytes), used by the debugger's instruction
	// log.
	InstructionData []uint8

	Cycles int

	PageFault     bool // an indexed read crossed a page boundary
	BranchSuccess bool // a branch instruction's condition was true

	Final bool // the instruction has completed and Result is safe to read
}

// Reset clears the result for reuse at the start of the next instruction.
func (r *Result) Reset() {
	r.Defn = nil
	r.Address = 0
	r.InstructionData = r.InstructionData[:0]
	r.Cycles = 0
	r.PageFault = false
	r.BranchSuccess = false
	r.Final = false
}
