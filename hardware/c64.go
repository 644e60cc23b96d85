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

// Package hardware wires every chip into a single Commodore 64: the 6510,
// the VIC-II, the two CIAs, an IEC-attached VC1541 drive, a VC1530
// datasette, the keyboard/joystick matrix, and whatever currently sits in
// the expansion port. C64 is the component graph's only public face; the
// individual chip packages are not meant to be driven directly by a host.
//
// Concurrency: a C64 belongs to exactly one goroutine, claimed
// by Claim or by the first call to Run. Configuration changes
// that are not part of normal cycle stepping - attaching a cartridge,
// inserting media, loading a ROM, switching PAL/NTSC - are only safe from
// that same goroutine; Perform marshals such a change onto it from any
// other goroutine by queuing a closure the worker runs between frames.
package hardware

import (
	"context"
	"fmt"
	"time"

	"github.com/go64/c64core/assert"
	"github.com/go64/c64core/clocks"
	"github.com/go64/c64core/errors"
	"github.com/go64/c64core/hardware/cia"
	"github.com/go64/c64core/hardware/cpu"
	"github.com/go64/c64core/hardware/datasette"
	"github.com/go64/c64core/hardware/drive"
	"github.com/go64/c64core/hardware/expansion"
	"github.com/go64/c64core/hardware/iec"
	"github.com/go64/c64core/hardware/keyboard"
	"github.com/go64/c64core/hardware/memory"
	"github.com/go64/c64core/hardware/snapshot"
	"github.com/go64/c64core/hardware/vic"
	"github.com/go64/c64core/instance"
	"github.com/go64/c64core/logger"
	"github.com/go64/c64core/message"
)

// lazyProcessorPort breaks the construction cycle between Memory (which
// needs a ProcessorPort at New) and CPU (which needs the finished Memory
// as its bus): the port is handed to Memory before the CPU that will
// actually answer LoRAM/HiRAM/Charen exists, and cpu is filled in
// immediately after.
type lazyProcessorPort struct {
	cpu *cpu.CPU
}

func (p *lazyProcessorPort) LoRAM() bool  { return p.cpu.LoRAM() }
func (p *lazyProcessorPort) HiRAM() bool  { return p.cpu.HiRAM() }
func (p *lazyProcessorPort) Charen() bool { return p.cpu.Charen() }

// C64 is the complete machine.
type C64 struct {
	owner assert.Owner

	Instance *instance.Instance

	mem   *memory.Memory
	cpu   *cpu.CPU
	vic   *vic.VIC
	cia1  *cia.CIA
	cia2  *cia.CIA
	drive *drive.Drive
	tape  *datasette.Datasette
	keys  *keyboard.Keyboard
	iec   *iec.Bus
	cart  *expansion.Cartridge

	std          vic.Standard
	driveCyclePs int64

	lastFrame []vic.RGBA

	cycle uint64

	tenthSecondAccumulator int64
	tenthSecondThreshold   int64

	rewind *RewindBuffer

	fourSecondAccumulator int64
	fourSecondThreshold   int64

	// cartridgeNMIPending/cartridgeNMIHeld implement the one-cycle NMI
	// pulse a cartridge's freeze button requests: the variant's callback
	// can fire from deep inside a register write at any point in the
	// cycle, but SourceExpansion must only read as asserted for exactly
	// one system cycle afterwards.
	cartridgeNMIPending bool
	cartridgeNMIHeld    bool

	// warpLoad is set by fastload-capable peripherals (currently nothing
	// drives this automatically; it exists so a host or a future drive
	// heuristic can request warp speed without touching AlwaysWarp) and
	// cleared whenever the condition that raised it ends.
	warpLoad bool

	cancelRequested bool

	frameDuration time.Duration

	actions chan func()

	messages *message.Queue

	log *logger.Logger
}

// New builds a complete C64 for the given instance (preferences + random
// source). The machine powers up with no ROMs loaded, no cartridge, no
// disk and no tape; a host must load BASIC/KERNAL/character ROM images
// (LoadROM) before Reset will produce a running machine.
func New(ins *instance.Instance) *C64 {
	c := &C64{
		Instance: ins,
		messages: message.NewQueue(256),
		log:      logger.NewLogger(512),
		actions:  make(chan func(), 8),
		rewind:   newRewindBuffer(16),
	}

	port := &lazyProcessorPort{}
	c.mem = memory.New(port)
	c.cpu = cpu.New(c.mem, c.log)
	port.cpu = c.cpu

	c.applyStandard()

	videoBus := memory.NewVICBus(c.mem)
	c.vic = vic.New(c.std, videoBus, c.cpu, func(asserted bool) {
		c.cpu.SetIRQ(cpu.SourceVIC, asserted)
	}, c.onFrame)
	c.mem.AttachVIC(c.vic)

	c.cia1 = cia.New("CIA1", func(asserted bool) { c.cpu.SetIRQ(cpu.SourceCIA, asserted) })
	c.cia2 = cia.New("CIA2", func(asserted bool) { c.cpu.SetNMI(cpu.SourceCIA, asserted) })
	c.mem.AttachCIA1(c.cia1)
	c.mem.AttachCIA2(c.cia2)

	c.keys = keyboard.New(func(asserted bool) { c.cpu.SetNMI(cpu.SourceKeyboard, asserted) }, c.onMessage)
	c.cia1.SetPeripheral(c.keys)

	c.iec = iec.NewBus()
	c.drive = drive.New(c.onMessage)

	hostPort := iec.NewHostPort(c.iec, c.vic.SetBank, c.drive.SetVIA1CA1)
	c.cia2.SetPeripheral(hostPort)
	c.cia2.OnPortAWrite(hostPort.PortAWritten)

	drivePort := iec.NewDrivePort(c.iec)
	c.drive.SetVIA1Peripheral(drivePort)
	c.drive.OnVIA1PortAWrite(drivePort.PortAWritten)

	c.tape = datasette.New(c.cia1.SetFlag, c.onMessage)

	return c
}

// applyStandard picks the VIC geometry, drive sub-clock rate and TOD/
// rewind tick thresholds for the instance's current Model preference.
// Called at construction and by SetModel; it does not touch any
// already-built VIC (callers that change the model after New must
// rebuild the VIC's Standard separately - switching PAL/NTSC recreates
// video timing on a fresh machine, not a live one, since vic.VIC
// carries no SetStandard of its own).
func (c *C64) applyStandard() {
	mhz := clocks.PAL
	c.std = vic.PAL
	if c.Instance != nil && c.Instance.Prefs.Model.Get() == "NTSC" {
		mhz = clocks.NTSC
		c.std = vic.NTSC
	}
	c.driveCyclePs = clocks.PicosecondsPerCycle(mhz) // one host cycle; the drive converts it to its own fixed 1MHz clock
	cyclesPerSecond := mhz * 1_000_000
	c.tenthSecondThreshold = int64(cyclesPerSecond/10 + 0.5)
	c.fourSecondThreshold = c.tenthSecondThreshold * 40
	c.frameDuration = time.Duration(float64(time.Second) / (mhz * 1_000_000 / float64(c.std.CyclesPerLine*c.std.Lines)))
}

// onFrame is the VIC's per-frame callback.
func (c *C64) onFrame(frame []vic.RGBA) {
	c.lastFrame = frame
}

// onMessage forwards a component's message straight to the host queue.
func (c *C64) onMessage(tag message.Tag) {
	c.messages.Put(tag, nil)
}

// Frame returns the most recently completed frame's pixels, in raster
// order. The slice is owned by the caller; onFrame hands out a fresh copy
// every time so a host can hold onto one frame while the next renders.
func (c *C64) Frame() []vic.RGBA { return c.lastFrame }

// Peek/Poke give a debugger side-effect-free access to memory, through
// memory.Memory's own Peek/Poke: Peek sees RAM and the ROMs as banked,
// with RAM in place of I/O and cartridge pages, and Poke always writes
// RAM.
func (c *C64) Peek(addr uint16) uint8      { return c.mem.Peek(addr) }
func (c *C64) Poke(addr uint16, v uint8)   { c.mem.Poke(addr, v) }

// PC reports the CPU program counter, for a debugger or a test to check
// progress without reaching into the component graph directly.
func (c *C64) PC() uint16 { return c.cpu.PC }

// Cycle reports the number of system cycles executed since the last
// Reset.
func (c *C64) Cycle() uint64 { return c.cycle }

// PutMessage posts a message to the host-facing queue, exactly as an
// internal component would.
func (c *C64) PutMessage(tag message.Tag, payload interface{}) { c.messages.Put(tag, payload) }

// PollMessage drains one message from the host-facing queue.
func (c *C64) PollMessage() (message.Message, bool) { return c.messages.Poll() }

// Claim records the calling goroutine as the machine's owner. Call this
// once, from whichever goroutine will drive StepOneCycle/StepOneLine/
// StepOneFrame/Run; every subsequent configuration call (AttachCartridge,
// LoadROM, InsertDisk, SetModel, ...) panics if called from any other
// goroutine.
func (c *C64) Claim() { c.owner.Claim() }

// Perform queues fn to run on the owning goroutine the next time it is
// idle between frames, and blocks until it has run. Use this to make a
// configuration change (attach a cartridge, swap a disk) from a
// goroutine other than the one driving Run.
func (c *C64) Perform(fn func()) {
	done := make(chan struct{})
	c.actions <- func() {
		fn()
		close(done)
	}
	<-done
}

func (c *C64) drainActions() {
	for {
		select {
		case fn := <-c.actions:
			fn()
		default:
			return
		}
	}
}

// Reset performs a cold/warm reset: the CPU reloads PC from the reset
// vector, both CIAs clear their ports and timers, the drive's own CPU and
// mechanics reset, and (if RandomState is enabled) RAM is seeded with
// pseudo-random noise, matching real power-up behaviour; the CPU's
// registers are not seeded. The VIC has no RES pin on real
// hardware and is deliberately left running.
func (c *C64) Reset() {
	c.owner.Check()

	if c.Instance != nil && c.Instance.Prefs.RandomState.Get() {
		c.seedRandomState()
	}

	c.cpu.Reset()
	c.cia1.Reset()
	c.cia2.Reset()
	c.drive.Reset()
	c.tape.EjectTape()
	c.mem.InvalidateBankingCache()

	c.cycle = 0
	c.tenthSecondAccumulator = 0
	c.fourSecondAccumulator = 0
	c.cartridgeNMIPending = false
	c.cartridgeNMIHeld = false

	if c.cart != nil {
		c.cart.OnReset()
	}
}

// seedRandomState fills RAM with the instance's rewindable random source,
// the same noise real C64 RAM powers up with.
func (c *C64) seedRandomState() {
	for i := range c.mem.RAM {
		c.mem.RAM[i] = uint8(c.Instance.Random.Rewindable(256))
	}
}

// LoadROM installs a ROM image for one of the four maskable ROM kinds.
// BasicROM/KernalROM/CharROM must be exactly their fixed sizes; Drive ROM
// is handed straight to the VC1541's own CPU.
func (c *C64) LoadROM(kind message.RomKind, data []byte) error {
	c.owner.Check()

	switch kind {
	case message.RomBasic:
		if len(data) != len(c.mem.BasicROM) {
			return errors.Errorf(errors.RomMissing)
		}
		copy(c.mem.BasicROM[:], data)
	case message.RomKernal:
		if len(data) != len(c.mem.KernalROM) {
			return errors.Errorf(errors.RomMissing)
		}
		copy(c.mem.KernalROM[:], data)
	case message.RomChar:
		if len(data) != len(c.mem.CharROM) {
			return errors.Errorf(errors.RomMissing)
		}
		copy(c.mem.CharROM[:], data)
	case message.RomDrive:
		c.drive.LoadROM(data)
	default:
		return errors.Errorf(errors.RomMissing)
	}
	c.messages.Put(message.RomLoaded, kind)
	return nil
}

// AttachCartridge builds a cartridge of kind from rom and plugs it into
// the expansion port, replacing any cartridge already there. A cartridge
// change only takes effect on the next banking recompute, which
// InvalidateBankingCache forces immediately.
func (c *C64) AttachCartridge(kind expansion.Kind, rom []byte) error {
	c.owner.Check()

	cart, err := expansion.New(kind, rom, c.requestCartridgeNMI)
	if err != nil {
		c.messages.Put(message.CartridgeImageInvalid, err)
		return errors.Errorf(errors.CartridgeImageInvalid)
	}
	c.cart = cart
	c.mem.AttachCartridge(cart)
	c.mem.InvalidateBankingCache()
	c.messages.Put(message.Cartridge, true)
	return nil
}

// DetachCartridge removes whatever cartridge is plugged in, restoring the
// GAME=1/EXROM=1 no-cartridge banking state.
func (c *C64) DetachCartridge() {
	c.owner.Check()

	c.cart = nil
	c.mem.AttachCartridge(nil)
	c.mem.InvalidateBankingCache()
	c.messages.Put(message.Cartridge, false)
}

// requestCartridgeNMI is handed to expansion.New as the variant's own
// freeze-button NMI pulse. It only records the request; StepOneCycle
// turns it into exactly one cycle of SourceExpansion asserted.
func (c *C64) requestCartridgeNMI() {
	c.cartridgeNMIPending = true
}

// InsertDisk mounts disk in the VC1541. disk must already be formatted
// (drive.NewDisk plus EncodeRaw, or a Restore'd Disk) - decoding a D64/
// G64 image file into a *drive.Disk is a host-side concern this package
// does not take on.
func (c *C64) InsertDisk(disk *drive.Disk) {
	c.owner.Check()
	c.drive.InsertDisk(disk)
}

// EjectDisk removes whatever disk is currently in the drive.
func (c *C64) EjectDisk() {
	c.owner.Check()
	c.drive.EjectDisk()
}

// InsertTape mounts a datasette cassette.
func (c *C64) InsertTape(tape datasette.Tape) {
	c.owner.Check()
	c.tape.InsertTape(tape)
}

// EjectTape removes whatever tape is currently mounted, stopping
// playback first.
func (c *C64) EjectTape() {
	c.owner.Check()
	c.tape.EjectTape()
}

// SetModel switches between PAL and NTSC. Because the VIC's Standard is
// fixed at construction, this rebuilds the VIC (and its wiring) in place;
// everything else - CPU, memory, CIAs, drive, tape - is unaffected.
func (c *C64) SetModel(ntsc bool) {
	c.owner.Check()

	if ntsc {
		c.Instance.Prefs.Model.Set("NTSC")
	} else {
		c.Instance.Prefs.Model.Set("PAL")
	}
	c.applyStandard()

	videoBus := memory.NewVICBus(c.mem)
	c.vic = vic.New(c.std, videoBus, c.cpu, func(asserted bool) {
		c.cpu.SetIRQ(cpu.SourceVIC, asserted)
	}, c.onFrame)
	c.mem.AttachVIC(c.vic)
}

// PressKey/ReleaseKey/SetJoystick/PressRestore/ReleaseRestore forward to
// the keyboard matrix; they are not configuration changes in the
// suspend/resume sense so
// they do not call owner.Check.
func (c *C64) PressKey(row, col uint8)          { c.keys.PressKey(row, col) }
func (c *C64) ReleaseKey(row, col uint8)        { c.keys.ReleaseKey(row, col) }
func (c *C64) SetShiftLock(engaged bool)        { c.keys.SetShiftLock(engaged) }
func (c *C64) PressRestore()                    { c.keys.PressRestore() }
func (c *C64) ReleaseRestore()                  { c.keys.ReleaseRestore() }
func (c *C64) SetJoystick(port int, x, y keyboard.Direction, button bool) {
	c.keys.SetJoystick(port, x, y, button)
}

// SetBreakpoint/ClearBreakpoint/SetWatchpoint/ClearWatchpoint/
// InstructionLog/Registers give a host debugger (cmd/c64dbg) access to
// the CPU's own debugging hooks without exposing the unexported cpu
// field itself.
func (c *C64) SetBreakpoint(addr uint16, ignore int) { c.cpu.SetBreakpoint(addr, ignore) }
func (c *C64) ClearBreakpoint(addr uint16)           { c.cpu.ClearBreakpoint(addr) }
func (c *C64) SetWatchpoint(addr uint16, ignore int) { c.cpu.SetWatchpoint(addr, ignore) }
func (c *C64) ClearWatchpoint(addr uint16)           { c.cpu.ClearWatchpoint(addr) }
func (c *C64) InstructionLog() [256]cpu.LogEntry     { return c.cpu.InstructionLog }
func (c *C64) Registers() (a, x, y, sp uint8, sr string, pc uint16) {
	return c.cpu.A.Value(), c.cpu.X.Value(), c.cpu.Y.Value(), c.cpu.SP.Value(), c.cpu.SR.String(), c.cpu.PC
}

// Cancel requests that a running Run loop stop at the next opportunity
// (checked once per frame, before the frame starts).
func (c *C64) Cancel() { c.cancelRequested = true }

// StepOneCycle runs exactly one CPU architectural instruction (or
// interrupt sequence). cpu.CPU exposes no finer public grain than this;
// the genuine per-system-cycle interleaving of the VIC, both CIAs, the
// drive and the datasette happens inside onSystemCycle, the callback
// ExecuteInstruction invokes once for every real clock cycle the
// instruction consumes, so the cycle-by-cycle ordering guarantee -
// cycle N's effects are visible starting at cycle N+1, never within N -
// holds exactly even though this method's caller-visible unit is a
// whole instruction rather than a single cycle.
func (c *C64) StepOneCycle() bool {
	if c.cpu.Killed {
		return true
	}
	if err := c.cpu.ExecuteInstruction(c.onSystemCycle); err != nil {
		c.reportHalt(err)
		return true
	}
	return false
}

// reportHalt posts why StepOneCycle stopped: a CPU jam, a breakpoint, a
// watchpoint, or (outside the debugger) a mid-instruction error bubbled
// up from the drive. All of them return halted=true to the caller.
func (c *C64) reportHalt(err error) {
	c.messages.Put(message.Halt, err)
}

// onSystemCycle is the per-cycle callback the CPU invokes once for every
// real clock cycle an instruction consumes. This is where every other
// chip actually sees the cycle: CIA timers first (so a timer underflow's
// interrupt is visible to the same cycle's interrupt poll the CPU is
// about to perform), then the VIC (which may assert RDY for the rest of
// this very call), then the drive and datasette sub-clocks, then the
// global counters and periodic housekeeping.
func (c *C64) onSystemCycle() error {
	tenthTick := c.advanceTenthSecondTick()

	c.cia1.Step(tenthTick)
	c.cia2.Step(tenthTick)

	c.vic.Step()
	c.mem.SetBusValue(c.vic.LastBusValue())

	if err := c.drive.Advance(c.driveCyclePs); err != nil {
		return err
	}
	c.tape.Step()

	if c.cart != nil {
		c.cart.Execute(1)
	}
	c.updateCartridgeNMI()

	c.cycle++
	c.advanceRewindTick()

	return nil
}

// advanceTenthSecondTick reports whether this cycle crosses a tenth-
// second boundary; both CIAs' TOD clocks only advance on ticks this
// function returns true for.
func (c *C64) advanceTenthSecondTick() bool {
	c.tenthSecondAccumulator++
	if c.tenthSecondAccumulator >= c.tenthSecondThreshold {
		c.tenthSecondAccumulator -= c.tenthSecondThreshold
		return true
	}
	return false
}

// advanceRewindTick pushes a rewind point onto the ring every four
// seconds of emulated time.
func (c *C64) advanceRewindTick() {
	c.fourSecondAccumulator++
	if c.fourSecondAccumulator >= c.fourSecondThreshold {
		c.fourSecondAccumulator = 0
		c.rewind.push(c.Snapshot())
	}
}

// updateCartridgeNMI turns a freeze-button request into exactly one
// cycle of SourceExpansion asserted: a request seen this cycle is
// asserted starting next cycle and cleared the cycle after that, giving
// the CPU's one-cycle-delayed NMI line a genuine rising-then-falling
// edge to latch onto.
func (c *C64) updateCartridgeNMI() {
	if c.cartridgeNMIHeld {
		c.cpu.SetNMI(cpu.SourceExpansion, false)
		c.cartridgeNMIHeld = false
	}
	if c.cartridgeNMIPending {
		c.cpu.SetNMI(cpu.SourceExpansion, true)
		c.cartridgeNMIPending = false
		c.cartridgeNMIHeld = true
	}
}

// StepOneLine runs instructions until the VIC's raster line advances (or
// the machine halts).
func (c *C64) StepOneLine() bool {
	_, startLine, _ := c.vic.GetCoords()
	for {
		if c.StepOneCycle() {
			return true
		}
		_, line, _ := c.vic.GetCoords()
		if line != startLine {
			return false
		}
	}
}

// StepOneFrame runs instructions until the VIC completes a full frame.
func (c *C64) StepOneFrame() bool {
	startFrame, _, _ := c.vic.GetCoords()
	for {
		if c.StepOneLine() {
			return true
		}
		frame, _, _ := c.vic.GetCoords()
		if frame != startFrame {
			return false
		}
	}
}

// Run drives the machine continuously until ctx is cancelled, Cancel is
// called, or the machine halts, returning whichever of those stopped it.
// It claims the calling goroutine as the owner on first use. Cancellation
// completes the current instruction before returning, and is only polled
// once per frame, before the frame starts: a call to
// Cancel or ctx's cancellation mid-frame takes effect at the next frame
// boundary.
func (c *C64) Run(ctx context.Context) error {
	c.owner.Claim()
	for {
		c.drainActions()

		if c.cancelRequested {
			c.cancelRequested = false
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		halted := c.StepOneFrame()
		c.pace(ctx)
		if halted {
			return fmt.Errorf("c64: machine halted")
		}
	}
}

// pace sleeps however much of the frame's real-time budget is left,
// unless Warp or AlwaysWarp is set; a fastload in progress (warpLoad)
// acts exactly like Warp for the frame it is set.
func (c *C64) pace(ctx context.Context) {
	if c.Instance == nil {
		return
	}
	if c.Instance.Prefs.Warp.Get() || c.Instance.Prefs.AlwaysWarp.Get() || c.warpLoad {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(c.frameDuration):
	}
}

// SetWarpLoad lets a host (or a future fastload-detection heuristic)
// request warp speed for as long as a load is in progress, independent
// of the sticky AlwaysWarp preference.
func (c *C64) SetWarpLoad(on bool) {
	c.warpLoad = on
	c.messages.Put(message.Warp, on)
}

// declarers lists every component that owns snapshot-worthy state, in
// the fixed order Capture/Restore walk. The Declarer interface is
// satisfied directly by each component; C64 itself declares nothing of
// its own beyond the cycle counter, which Capture's Cycle field already
// carries.
func (c *C64) declarers() []snapshot.Declarer {
	d := []snapshot.Declarer{c.cpu, c.mem, c.vic, c.cia1, c.cia2, c.drive, c.tape, c.keys, c.iec}
	return d
}

// Snapshot captures the entire machine's state. The currently
// attached cartridge's own banking-mode registers are not part of this:
// expansion.Cartridge declares no snapshot items, since its variants'
// register state is either re-derivable from ROML/ROMH reads already in
// the container (Normal, Ocean type 1, ...) or, for the handful of
// variants with genuine latched state, small enough that a restored
// cartridge re-initialising to its power-on banking is an acceptable gap
// documented rather than silently worked around.
func (c *C64) Snapshot() []byte {
	model := "PAL"
	if c.Instance != nil {
		model = c.Instance.Prefs.Model.Get()
	}
	container := snapshot.Capture(model, c.cycle, nil, c.declarers()...)
	return snapshot.Marshal(container)
}

// Restore installs a previously captured snapshot. It refuses entirely,
// without mutating any component, if the snapshot's declared layout
// doesn't match this machine's component graph exactly (item names,
// sizes and order). Neither the attached cartridge nor the loaded ROMs
// are declared, so a snapshot taken with a different cartridge or
// different ROMs has the same layout and is accepted.
func (c *C64) Restore(data []byte) error {
	c.owner.Check()

	container, err := snapshot.Unmarshal(data)
	if err != nil {
		return err
	}
	if err := snapshot.Restore(container, c.declarers()...); err != nil {
		return errors.Errorf(errors.SnapshotMismatch)
	}
	c.cycle = container.Cycle
	c.mem.InvalidateBankingCache()
	return nil
}

// Rewind restores the machine to the n-th most recently captured rewind
// point (0 is the most recent), discarding every point newer than it.
func (c *C64) Rewind(n int) error {
	c.owner.Check()

	data, err := c.rewind.at(n)
	if err != nil {
		return err
	}
	if err := c.Restore(data); err != nil {
		return err
	}
	c.rewind.truncate(n)
	return nil
}
