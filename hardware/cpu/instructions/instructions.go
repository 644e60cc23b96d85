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

// Package instructions holds the 6510 opcode table: for every opcode byte,
// which operation it performs, how many bytes and base cycles it takes,
// and which addressing mode supplies its operand.
package instructions

// AddressingMode identifies how an instruction's operand is located.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
	Relative
)

func (m AddressingMode) String() string {
	switch m {
	case Implied:
		return "implied"
	case Accumulator:
		return "accumulator"
	case Immediate:
		return "immediate"
	case ZeroPage:
		return "zeropage"
	case ZeroPageX:
		return "zeropage,x"
	case ZeroPageY:
		return "zeropage,y"
	case Absolute:
		return "absolute"
	case AbsoluteX:
		return "absolute,x"
	case AbsoluteY:
		return "absolute,y"
	case Indirect:
		return "indirect"
	case IndexedIndirect:
		return "(zp,x)"
	case IndirectIndexed:
		return "(zp),y"
	case Relative:
		return "relative"
	}
	return "?"
}

// Definition describes one opcode.
type Definition struct {
	OpCode        uint8
	Mnemonic      string
	Mode          AddressingMode
	Bytes         int
	Cycles        int
	PageSensitive bool // one extra cycle if indexing crosses a page boundary
	Undocumented  bool
	Jam           bool // locks the CPU
}

// table is indexed by opcode byte; a nil entry is an opcode this core does
// not decode as a distinct instruction and is treated as a two-cycle NOP,
// matching the common documented-illegal-opcode consensus (modeling
// unstable illegal-opcode bit patterns beyond that published consensus
// is out of scope, but the well-documented NOP/JAM aliases are in scope).
var table [256]*Definition

func def(op uint8, mnemonic string, mode AddressingMode, bytes, cycles int, pageSensitive bool) {
	table[op] = &Definition{OpCode: op, Mnemonic: mnemonic, Mode: mode, Bytes: bytes, Cycles: cycles, PageSensitive: pageSensitive}
}

func undoc(op uint8, mnemonic string, mode AddressingMode, bytes, cycles int, pageSensitive bool) {
	table[op] = &Definition{OpCode: op, Mnemonic: mnemonic, Mode: mode, Bytes: bytes, Cycles: cycles, PageSensitive: pageSensitive, Undocumented: true}
}

func jam(op uint8) {
	table[op] = &Definition{OpCode: op, Mnemonic: "JAM", Mode: Implied, Bytes: 1, Cycles: 1, Undocumented: true, Jam: true}
}

func init() {
	// load/store
	def(0xA9, "LDA", Immediate, 2, 2, false)
	def(0xA5, "LDA", ZeroPage, 2, 3, false)
	def(0xB5, "LDA", ZeroPageX, 2, 4, false)
	def(0xAD, "LDA", Absolute, 3, 4, false)
	def(0xBD, "LDA", AbsoluteX, 3, 4, true)
	def(0xB9, "LDA", AbsoluteY, 3, 4, true)
	def(0xA1, "LDA", IndexedIndirect, 2, 6, false)
	def(0xB1, "LDA", IndirectIndexed, 2, 5, true)

	def(0xA2, "LDX", Immediate, 2, 2, false)
	def(0xA6, "LDX", ZeroPage, 2, 3, false)
	def(0xB6, "LDX", ZeroPageY, 2, 4, false)
	def(0xAE, "LDX", Absolute, 3, 4, false)
	def(0xBE, "LDX", AbsoluteY, 3, 4, true)

	def(0xA0, "LDY", Immediate, 2, 2, false)
	def(0xA4, "LDY", ZeroPage, 2, 3, false)
	def(0xB4, "LDY", ZeroPageX, 2, 4, false)
	def(0xAC, "LDY", Absolute, 3, 4, false)
	def(0xBC, "LDY", AbsoluteX, 3, 4, true)

	def(0x85, "STA", ZeroPage, 2, 3, false)
	def(0x95, "STA", ZeroPageX, 2, 4, false)
	def(0x8D, "STA", Absolute, 3, 4, false)
	def(0x9D, "STA", AbsoluteX, 3, 5, false)
	def(0x99, "STA", AbsoluteY, 3, 5, false)
	def(0x81, "STA", IndexedIndirect, 2, 6, false)
	def(0x91, "STA", IndirectIndexed, 2, 6, false)

	def(0x86, "STX", ZeroPage, 2, 3, false)
	def(0x96, "STX", ZeroPageY, 2, 4, false)
	def(0x8E, "STX", Absolute, 3, 4, false)

	def(0x84, "STY", ZeroPage, 2, 3, false)
	def(0x94, "STY", ZeroPageX, 2, 4, false)
	def(0x8C, "STY", Absolute, 3, 4, false)

	// transfers
	def(0xAA, "TAX", Implied, 1, 2, false)
	def(0xA8, "TAY", Implied, 1, 2, false)
	def(0xBA, "TSX", Implied, 1, 2, false)
	def(0x8A, "TXA", Implied, 1, 2, false)
	def(0x9A, "TXS", Implied, 1, 2, false)
	def(0x98, "TYA", Implied, 1, 2, false)

	// stack
	def(0x48, "PHA", Implied, 1, 3, false)
	def(0x08, "PHP", Implied, 1, 3, false)
	def(0x68, "PLA", Implied, 1, 4, false)
	def(0x28, "PLP", Implied, 1, 4, false)

	// arithmetic / logic
	for _, o := range []struct {
		op   uint8
		mode AddressingMode
		b, c int
		ps   bool
	}{
		{0x69, Immediate, 2, 2, false}, {0x65, ZeroPage, 2, 3, false}, {0x75, ZeroPageX, 2, 4, false},
		{0x6D, Absolute, 3, 4, false}, {0x7D, AbsoluteX, 3, 4, true}, {0x79, AbsoluteY, 3, 4, true},
		{0x61, IndexedIndirect, 2, 6, false}, {0x71, IndirectIndexed, 2, 5, true},
	} {
		def(o.op, "ADC", o.mode, o.b, o.c, o.ps)
	}
	for _, o := range []struct {
		op   uint8
		mode AddressingMode
		b, c int
		ps   bool
	}{
		{0xE9, Immediate, 2, 2, false}, {0xE5, ZeroPage, 2, 3, false}, {0xF5, ZeroPageX, 2, 4, false},
		{0xED, Absolute, 3, 4, false}, {0xFD, AbsoluteX, 3, 4, true}, {0xF9, AbsoluteY, 3, 4, true},
		{0xE1, IndexedIndirect, 2, 6, false}, {0xF1, IndirectIndexed, 2, 5, true},
	} {
		def(o.op, "SBC", o.mode, o.b, o.c, o.ps)
	}
	for _, o := range []struct {
		op   uint8
		mode AddressingMode
		b, c int
		ps   bool
	}{
		{0x29, Immediate, 2, 2, false}, {0x25, ZeroPage, 2, 3, false}, {0x35, ZeroPageX, 2, 4, false},
		{0x2D, Absolute, 3, 4, false}, {0x3D, AbsoluteX, 3, 4, true}, {0x39, AbsoluteY, 3, 4, true},
		{0x21, IndexedIndirect, 2, 6, false}, {0x31, IndirectIndexed, 2, 5, true},
	} {
		def(o.op, "AND", o.mode, o.b, o.c, o.ps)
	}
	for _, o := range []struct {
		op   uint8
		mode AddressingMode
		b, c int
		ps   bool
	}{
		{0x49, Immediate, 2, 2, false}, {0x45, ZeroPage, 2, 3, false}, {0x55, ZeroPageX, 2, 4, false},
		{0x4D, Absolute, 3, 4, false}, {0x5D, AbsoluteX, 3, 4, true}, {0x59, AbsoluteY, 3, 4, true},
		{0x41, IndexedIndirect, 2, 6, false}, {0x51, IndirectIndexed, 2, 5, true},
	} {
		def(o.op, "EOR", o.mode, o.b, o.c, o.ps)
	}
	for _, o := range []struct {
		op   uint8
		mode AddressingMode
		b, c int
		ps   bool
	}{
		{0x09, Immediate, 2, 2, false}, {0x05, ZeroPage, 2, 3, false}, {0x15, ZeroPageX, 2, 4, false},
		{0x0D, Absolute, 3, 4, false}, {0x1D, AbsoluteX, 3, 4, true}, {0x19, AbsoluteY, 3, 4, true},
		{0x01, IndexedIndirect, 2, 6, false}, {0x11, IndirectIndexed, 2, 5, true},
	} {
		def(o.op, "ORA", o.mode, o.b, o.c, o.ps)
	}
	for _, o := range []struct {
		op   uint8
		mode AddressingMode
		b, c int
		ps   bool
	}{
		{0xC9, Immediate, 2, 2, false}, {0xC5, ZeroPage, 2, 3, false}, {0xD5, ZeroPageX, 2, 4, false},
		{0xCD, Absolute, 3, 4, false}, {0xDD, AbsoluteX, 3, 4, true}, {0xD9, AbsoluteY, 3, 4, true},
		{0xC1, IndexedIndirect, 2, 6, false}, {0xD1, IndirectIndexed, 2, 5, true},
	} {
		def(o.op, "CMP", o.mode, o.b, o.c, o.ps)
	}
	def(0xE0, "CPX", Immediate, 2, 2, false)
	def(0xE4, "CPX", ZeroPage, 2, 3, false)
	def(0xEC, "CPX", Absolute, 3, 4, false)
	def(0xC0, "CPY", Immediate, 2, 2, false)
	def(0xC4, "CPY", ZeroPage, 2, 3, false)
	def(0xCC, "CPY", Absolute, 3, 4, false)

	// shifts/rotates
	def(0x0A, "ASL", Accumulator, 1, 2, false)
	def(0x06, "ASL", ZeroPage, 2, 5, false)
	def(0x16, "ASL", ZeroPageX, 2, 6, false)
	def(0x0E, "ASL", Absolute, 3, 6, false)
	def(0x1E, "ASL", AbsoluteX, 3, 7, false)
	def(0x4A, "LSR", Accumulator, 1, 2, false)
	def(0x46, "LSR", ZeroPage, 2, 5, false)
	def(0x56, "LSR", ZeroPageX, 2, 6, false)
	def(0x4E, "LSR", Absolute, 3, 6, false)
	def(0x5E, "LSR", AbsoluteX, 3, 7, false)
	def(0x2A, "ROL", Accumulator, 1, 2, false)
	def(0x26, "ROL", ZeroPage, 2, 5, false)
	def(0x36, "ROL", ZeroPageX, 2, 6, false)
	def(0x2E, "ROL", Absolute, 3, 6, false)
	def(0x3E, "ROL", AbsoluteX, 3, 7, false)
	def(0x6A, "ROR", Accumulator, 1, 2, false)
	def(0x66, "ROR", ZeroPage, 2, 5, false)
	def(0x76, "ROR", ZeroPageX, 2, 6, false)
	def(0x6E, "ROR", Absolute, 3, 6, false)
	def(0x7E, "ROR", AbsoluteX, 3, 7, false)

	// inc/dec
	def(0xE6, "INC", ZeroPage, 2, 5, false)
	def(0xF6, "INC", ZeroPageX, 2, 6, false)
	def(0xEE, "INC", Absolute, 3, 6, false)
	def(0xFE, "INC", AbsoluteX, 3, 7, false)
	def(0xC6, "DEC", ZeroPage, 2, 5, false)
	def(0xD6, "DEC", ZeroPageX, 2, 6, false)
	def(0xCE, "DEC", Absolute, 3, 6, false)
	def(0xDE, "DEC", AbsoluteX, 3, 7, false)
	def(0xE8, "INX", Implied, 1, 2, false)
	def(0xC8, "INY", Implied, 1, 2, false)
	def(0xCA, "DEX", Implied, 1, 2, false)
	def(0x88, "DEY", Implied, 1, 2, false)

	// bit test
	def(0x24, "BIT", ZeroPage, 2, 3, false)
	def(0x2C, "BIT", Absolute, 3, 4, false)

	// branches, 2 base cycles; +1 taken, +1 more if the target crosses a page
	def(0x90, "BCC", Relative, 2, 2, false)
	def(0xB0, "BCS", Relative, 2, 2, false)
	def(0xF0, "BEQ", Relative, 2, 2, false)
	def(0x30, "BMI", Relative, 2, 2, false)
	def(0xD0, "BNE", Relative, 2, 2, false)
	def(0x10, "BPL", Relative, 2, 2, false)
	def(0x50, "BVC", Relative, 2, 2, false)
	def(0x70, "BVS", Relative, 2, 2, false)

	// jumps / subroutines / interrupts
	def(0x4C, "JMP", Absolute, 3, 3, false)
	def(0x6C, "JMP", Indirect, 3, 5, false)
	def(0x20, "JSR", Absolute, 3, 6, false)
	def(0x60, "RTS", Implied, 1, 6, false)
	def(0x40, "RTI", Implied, 1, 6, false)
	def(0x00, "BRK", Implied, 1, 7, false)

	// flags
	def(0x18, "CLC", Implied, 1, 2, false)
	def(0xD8, "CLD", Implied, 1, 2, false)
	def(0x58, "CLI", Implied, 1, 2, false)
	def(0xB8, "CLV", Implied, 1, 2, false)
	def(0x38, "SEC", Implied, 1, 2, false)
	def(0xF8, "SED", Implied, 1, 2, false)
	def(0x78, "SEI", Implied, 1, 2, false)

	def(0xEA, "NOP", Implied, 1, 2, false)

	// documented illegal opcodes in common use by C64 software
	undoc(0xA7, "LAX", ZeroPage, 2, 3, false)
	undoc(0xB7, "LAX", ZeroPageY, 2, 4, false)
	undoc(0xAF, "LAX", Absolute, 3, 4, false)
	undoc(0xBF, "LAX", AbsoluteY, 3, 4, true)
	undoc(0xA3, "LAX", IndexedIndirect, 2, 6, false)
	undoc(0xB3, "LAX", IndirectIndexed, 2, 5, true)

	undoc(0x87, "SAX", ZeroPage, 2, 3, false)
	undoc(0x97, "SAX", ZeroPageY, 2, 4, false)
	undoc(0x8F, "SAX", Absolute, 3, 4, false)
	undoc(0x83, "SAX", IndexedIndirect, 2, 6, false)

	undoc(0xC7, "DCP", ZeroPage, 2, 5, false)
	undoc(0xD7, "DCP", ZeroPageX, 2, 6, false)
	undoc(0xCF, "DCP", Absolute, 3, 6, false)
	undoc(0xDF, "DCP", AbsoluteX, 3, 7, false)
	undoc(0xDB, "DCP", AbsoluteY, 3, 7, false)
	undoc(0xC3, "DCP", IndexedIndirect, 2, 8, false)
	undoc(0xD3, "DCP", IndirectIndexed, 2, 8, false)

	undoc(0xE7, "ISC", ZeroPage, 2, 5, false)
	undoc(0xF7, "ISC", ZeroPageX, 2, 6, false)
	undoc(0xEF, "ISC", Absolute, 3, 6, false)
	undoc(0xFF, "ISC", AbsoluteX, 3, 7, false)
	undoc(0xFB, "ISC", AbsoluteY, 3, 7, false)
	undoc(0xE3, "ISC", IndexedIndirect, 2, 8, false)
	undoc(0xF3, "ISC", IndirectIndexed, 2, 8, false)

	undoc(0x07, "SLO", ZeroPage, 2, 5, false)
	undoc(0x17, "SLO", ZeroPageX, 2, 6, false)
	undoc(0x0F, "SLO", Absolute, 3, 6, false)
	undoc(0x1F, "SLO", AbsoluteX, 3, 7, false)
	undoc(0x1B, "SLO", AbsoluteY, 3, 7, false)
	undoc(0x03, "SLO", IndexedIndirect, 2, 8, false)
	undoc(0x13, "SLO", IndirectIndexed, 2, 8, false)

	undoc(0x27, "RLA", ZeroPage, 2, 5, false)
	undoc(0x37, "RLA", ZeroPageX, 2, 6, false)
	undoc(0x2F, "RLA", Absolute, 3, 6, false)
	undoc(0x3F, "RLA", AbsoluteX, 3, 7, false)
	undoc(0x3B, "RLA", AbsoluteY, 3, 7, false)
	undoc(0x23, "RLA", IndexedIndirect, 2, 8, false)
	undoc(0x33, "RLA", IndirectIndexed, 2, 8, false)

	undoc(0x47, "SRE", ZeroPage, 2, 5, false)
	undoc(0x57, "SRE", ZeroPageX, 2, 6, false)
	undoc(0x4F, "SRE", Absolute, 3, 6, false)
	undoc(0x5F, "SRE", AbsoluteX, 3, 7, false)
	undoc(0x5B, "SRE", AbsoluteY, 3, 7, false)
	undoc(0x43, "SRE", IndexedIndirect, 2, 8, false)
	undoc(0x53, "SRE", IndirectIndexed, 2, 8, false)

	undoc(0x67, "RRA", ZeroPage, 2, 5, false)
	undoc(0x77, "RRA", ZeroPageX, 2, 6, false)
	undoc(0x6F, "RRA", Absolute, 3, 6, false)
	undoc(0x7F, "RRA", AbsoluteX, 3, 7, false)
	undoc(0x7B, "RRA", AbsoluteY, 3, 7, false)
	undoc(0x63, "RRA", IndexedIndirect, 2, 8, false)
	undoc(0x73, "RRA", IndirectIndexed, 2, 8, false)

	undoc(0x0B, "ANC", Immediate, 2, 2, false)
	undoc(0x2B, "ANC", Immediate, 2, 2, false)
	undoc(0x4B, "ALR", Immediate, 2, 2, false)
	undoc(0x6B, "ARR", Immediate, 2, 2, false)
	undoc(0xCB, "AXS", Immediate, 2, 2, false)

	// single-byte and multi-byte NOPs actually present on the chip
	for _, op := range []uint8{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		undoc(op, "NOP", Implied, 1, 2, false)
	}
	for _, op := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		undoc(op, "NOP", Immediate, 2, 2, false)
	}
	for _, op := range []uint8{0x04, 0x44, 0x64} {
		undoc(op, "NOP", ZeroPage, 2, 3, false)
	}
	for _, op := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		undoc(op, "NOP", ZeroPageX, 2, 4, false)
	}
	for _, op := range []uint8{0x0C} {
		undoc(op, "NOP", Absolute, 3, 4, false)
	}
	for _, op := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		undoc(op, "NOP", AbsoluteX, 3, 4, true)
	}

	// the documented "KIL"/"JAM" opcodes that hang the CPU
	for _, op := range []uint8{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2} {
		jam(op)
	}
}

// Lookup returns the Definition for opcode, or nil if this core has no
// decode entry for it (treated by the CPU as an implementation-defined
// two-cycle NOP; modeling unstable illegal opcodes beyond the
// published consensus is out of scope).
func Lookup(opcode uint8) *Definition {
	return table[opcode]
}
