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

// Command c64dbg is a small interactive terminal front-end to the
// emulator core's own debugger interface: breakpoints, watchpoints,
// the instruction log, single-stepping. It never touches host audio or
// video surfaces; it only pokes at memory and registers through
// hardware.C64's exported accessors.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/go64/c64core/hardware"
	"github.com/go64/c64core/instance"
	"github.com/go64/c64core/message"
)

// noRaster is handed to instance.NewInstance in place of a real VIC: this
// debugger doesn't render a display, and the random source only consults
// its coords argument when a deterministic (ZeroSeed) reseed is asked
// for, which this command never turns on.
type noRaster struct{}

func (noRaster) GetCoords() (frame, scanline, clock int) { return 0, 0, 0 }

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "c64dbg:", err)
		os.Exit(1)
	}
}

func run() error {
	ins, err := instance.NewInstance(noRaster{})
	if err != nil {
		return err
	}

	c := hardware.New(ins)
	c.Claim()

	term, err := newTerminal(os.Stdin)
	if err != nil {
		// Not every environment this runs in has a real terminal (a
		// CI shell, a pipe); without one "run" leaves the input in its
		// normal line mode, and Ctrl-C still interrupts it.
		term = nil
	}

	fmt.Println("c64dbg - type 'help' for a command list, 'quit' to exit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if quit := dispatch(c, term, line); quit {
			return nil
		}
	}
}

func dispatch(c *hardware.C64, term *terminal, line string) (quit bool) {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "help":
		printHelp()
	case "quit", "exit":
		return true
	case "reset":
		c.Reset()
		printRegisters(c)
	case "step":
		n := 1
		if len(args) > 0 {
			n = atoiDefault(args[0], 1)
		}
		for i := 0; i < n; i++ {
			if halted := c.StepOneCycle(); halted {
				drainHalt(c)
				break
			}
		}
		printRegisters(c)
	case "run":
		runUntilKeypress(c, term)
		printRegisters(c)
	case "break":
		addr, ignore := parseAddrAndIgnore(args)
		c.SetBreakpoint(addr, ignore)
		fmt.Printf("breakpoint set at $%04X\n", addr)
	case "clearbreak":
		addr := parseAddr(args)
		c.ClearBreakpoint(addr)
	case "watch":
		addr, ignore := parseAddrAndIgnore(args)
		c.SetWatchpoint(addr, ignore)
		fmt.Printf("watchpoint set at $%04X\n", addr)
	case "clearwatch":
		addr := parseAddr(args)
		c.ClearWatchpoint(addr)
	case "regs":
		printRegisters(c)
	case "mem":
		addr := parseAddr(args)
		n := 16
		if len(args) > 1 {
			n = atoiDefault(args[1], 16)
		}
		printMemory(c, addr, n)
	case "poke":
		if len(args) < 2 {
			fmt.Println("usage: poke <addr> <value>")
			return false
		}
		addr := parseHex16(args[0])
		val := parseHex16(args[1])
		c.Poke(addr, uint8(val))
	case "load":
		if len(args) < 2 {
			fmt.Println("usage: load <path> <addr>")
			return false
		}
		if err := loadFile(c, args[0], parseHex16(args[1])); err != nil {
			fmt.Println("load failed:", err)
		}
	case "log":
		printInstructionLog(c)
	default:
		fmt.Printf("unrecognised command %q (try 'help')\n", cmd)
	}
	return false
}

func printHelp() {
	fmt.Println(`commands:
  reset                  reset the machine
  step [n]               execute n instructions (default 1)
  run                     run continuously until a breakpoint/watchpoint/
                          halt, or Ctrl-C
  break <addr> [ignore]  set a breakpoint at a hex address
  clearbreak <addr>      remove a breakpoint
  watch <addr> [ignore]  set a watchpoint at a hex address
  clearwatch <addr>      remove a watchpoint
  regs                   print CPU registers
  mem <addr> [n]         dump n bytes of memory from addr (default 16)
  poke <addr> <value>    write one byte directly into RAM
  load <path> <addr>     load a raw binary file into RAM at addr
  log                    dump the CPU's instruction log
  quit                   exit`)
}

// runUntilKeypress steps the CPU continuously until StepOneCycle reports
// a halt (CPU jam, breakpoint, watchpoint) or Ctrl-C is pressed. Cbreak
// mode keeps ISIG active, so Ctrl-C still arrives as SIGINT instead of
// being buffered as ordinary line input the next command read would
// otherwise have to discard.
func runUntilKeypress(c *hardware.C64, term *terminal) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	if term != nil {
		term.cbreakMode()
		defer term.canonicalMode()
	}

	const pollEvery = 4096
	for i := 0; ; i++ {
		if i%pollEvery == 0 {
			select {
			case <-sig:
				return
			default:
			}
		}
		if halted := c.StepOneCycle(); halted {
			drainHalt(c)
			return
		}
	}
}

func drainHalt(c *hardware.C64) {
	for {
		msg, ok := c.PollMessage()
		if !ok {
			return
		}
		if msg.Tag == message.Halt {
			fmt.Println("halted:", msg.Payload)
		}
	}
}

func printRegisters(c *hardware.C64) {
	a, x, y, sp, sr, pc := c.Registers()
	fmt.Printf("PC=$%04X A=$%02X X=$%02X Y=$%02X SP=$%02X SR=%s\n", pc, a, x, y, sp, sr)
}

func printMemory(c *hardware.C64, addr uint16, n int) {
	for i := 0; i < n; i++ {
		if i%8 == 0 {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("$%04X:", addr+uint16(i))
		}
		fmt.Printf(" %02X", c.Peek(addr+uint16(i)))
	}
	fmt.Println()
}

func printInstructionLog(c *hardware.C64) {
	for _, e := range c.InstructionLog() {
		if e.InstructionLen == 0 {
			continue
		}
		fmt.Printf("$%04X A=%02X X=%02X Y=%02X SP=%02X SR=%02X\n",
			e.PC, e.A, e.X, e.Y, e.SP, e.Status)
	}
}

func loadFile(c *hardware.C64, path string, addr uint16) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	for i, b := range data {
		c.Poke(addr+uint16(i), b)
	}
	return nil
}

func parseAddr(args []string) uint16 {
	if len(args) == 0 {
		return 0
	}
	return parseHex16(args[0])
}

func parseAddrAndIgnore(args []string) (addr uint16, ignore int) {
	if len(args) == 0 {
		return 0, 0
	}
	addr = parseHex16(args[0])
	if len(args) > 1 {
		ignore = atoiDefault(args[1], 0)
	}
	return addr, ignore
}

func parseHex16(s string) uint16 {
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0
	}
	return uint16(v)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
