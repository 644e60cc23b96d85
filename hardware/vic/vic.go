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

// Package vic implements the VIC-II video chip: the raster/
// badline state machine, bus-stealing, the pixel pipeline with its
// per-pixel register-write latches, sprite DMA and collision, and the
// border flip-flops.
package vic

import (
	"github.com/go64/c64core/hardware/delay"
	"github.com/go64/c64core/hardware/snapshot"
)

// Standard names a video timing standard's cycle geometry.
type Standard struct {
	Lines         int
	CyclesPerLine int

	// Vertical border compare lines for 25-row mode; 24-row mode narrows
	// these by four lines at both ends.
	Top25, Bottom25 int
	Top24, Bottom24 int

	// FirstDMALine/LastDMALine bound the range in which a badline can
	// occur at all, regardless of raster-vs-YSCROLL match.
	FirstDMALine, LastDMALine int
}

// PAL and NTSC are the two video standards the C64 was built for. Values
// are the well-known 6569 (PAL) and 6567R8 (NTSC) geometries.
var (
	PAL = Standard{
		Lines: 312, CyclesPerLine: 63,
		Top25: 51, Bottom25: 251,
		Top24: 55, Bottom24: 247,
		FirstDMALine: 48, LastDMALine: 247,
	}
	NTSC = Standard{
		Lines: 263, CyclesPerLine: 65,
		Top25: 51, Bottom25: 250,
		Top24: 55, Bottom24: 246,
		FirstDMALine: 41, LastDMALine: 250,
	}
)

// VideoBus is the VIC's own view of memory across the full 64KB address
// space, with character ROM mapped into the $1000-$1FFF (and $9000-$9FFF)
// window of banks 0 and 2 regardless of what the CPU currently sees
// through its own banking. The VIC itself folds in whichever 16KB bank
// CIA2 has selected (via SetBank) before calling VICRead, so addr always
// already reflects the live bank.
type VideoBus interface {
	VICRead(addr uint16) uint8
	// ColorRAMRead returns the low nibble of color RAM at index (0-999);
	// unlike VICRead this is not bank-switched, since color RAM is
	// always wired directly to the VIC regardless of CIA2's bank select.
	ColorRAMRead(index uint16) uint8
}

// CPUStall is implemented by the CPU; the VIC halts it for the duration
// of a bus-steal by driving RDY low.
type CPUStall interface {
	SetReady(ready bool)
}

// sprite holds one of the 8 hardware sprites' per-line and per-cycle
// state.
type sprite struct {
	x, y           int
	enabled        bool
	expandX        bool
	expandY        bool
	multicolor     bool
	priorityBehind bool
	color          uint8

	// dmaActive is set when the sprite's Y range includes the current
	// raster line; expansionFlipFlop tracks the Y-expand toggle that
	// halves the effective row-advance rate.
	dmaActive         bool
	expansionFlipFlop bool
	dataPointer       uint8
	mc                [3]uint8 // shift register bytes fetched this line
	mcBase            int      // byte index into the 63-byte sprite data block
	shiftRegister     uint32
}

// VIC is the video chip.
type VIC struct {
	std Standard

	mem     VideoBus
	cpu     CPUStall
	setIRQ  func(bool)
	onFrame func([]RGBA)

	regs [0x2F]uint8

	raster      int
	rasterCycle int // 1-based cycle within the current rasterline
	vc, vcbase  int
	rc          int
	badline     bool // whether the current rasterline is a badline
	ba          bool // BA line state, see updateBA/BA

	// videoMatrixLine/colorLine hold the 40 screen-code/color-nibble
	// pairs fetched by the current character row's c-accesses; they
	// persist across the 8 rasterlines of that row.
	// fetchIndex is the column the next c-access lands on.
	videoMatrixLine [40]uint8
	colorLine       [40]uint8
	fetchIndex      int

	// curScreenCode/curColorNibble/curPattern hold this cycle's g-access
	// result, refreshed once per Step by fetchGraphicsForCycle.
	curScreenCode  uint8
	curColorNibble uint8
	curPattern     uint8

	mainBorder bool
	vertBorder bool

	sprites [8]sprite

	// color latches: the currently-effective colors, updated on a delay
	// from the raw register values so that a write mid-line affects
	// pixels at the correct offset.
	colorTicker       *delay.Ticker
	borderColor       uint8
	bgColor           [4]uint8
	spriteMulticolor  [2]uint8

	// ecmLatched/mcmLatched are the currently-effective extended-
	// background-color and multicolor mode bits, updated colorTicker
	// pixels after the $D011/$D016 write that changed them (see
	// scheduleModeLatch).
	ecmLatched bool
	mcmLatched bool

	collisionSpriteSprite uint8
	collisionSpriteBG     uint8

	irqFlags  uint8
	irqEnable uint8

	lastRegAccessed uint8
	frameBuffer     []RGBA
	framePos        int

	lastBusValue uint8

	// bank is the 16KB video-memory bank base address, set by the
	// orchestrator whenever CIA2 port A's low two bits change.
	bank uint16

	// frameCount counts completed frames since power-on, giving
	// random.Random a raster-position coordinate that keeps advancing
	// across a frame boundary instead of aliasing back to (0,0).
	frameCount int
}

// New constructs a VIC for the given standard. mem is the VIC's own
// video-memory view; cpu receives RDY/BA stalls; setIRQ is called
// whenever the chip's IRQ output line changes; onFrame is called with
// the completed framebuffer at the end of every frame.
func New(std Standard, mem VideoBus, cpu CPUStall, setIRQ func(bool), onFrame func([]RGBA)) *VIC {
	v := &VIC{
		std:         std,
		mem:         mem,
		cpu:         cpu,
		setIRQ:      setIRQ,
		onFrame:     onFrame,
		rasterCycle: 1,
		colorTicker: delay.NewTicker("VIC colors"),
		frameBuffer: make([]RGBA, std.CyclesPerLine*8*std.Lines),
	}
	return v
}

// LastBusValue is what Memory.SetBusValue should be fed every cycle: the
// last byte the VIC itself drove onto the shared data bus.
func (v *VIC) LastBusValue() uint8 { return v.lastBusValue }

// GetCoords implements random.Coords, letting the pseudo-random source
// reseed from the current raster position instead of the wall clock.
func (v *VIC) GetCoords() (frame int, scanline int, clock int) {
	return v.frameCount, v.raster, v.rasterCycle
}

// row0to2 returns bits 0-2 of $D011, the fine Y-scroll value a badline's
// raster match is compared against.
func (v *VIC) row0to2() int { return int(v.regs[0x11] & 0x07) }

func (v *VIC) displayEnabled() bool { return v.regs[0x11]&0x10 != 0 }
func (v *VIC) extendedColor() bool  { return v.ecmLatched }
func (v *VIC) bitmapMode() bool     { return v.regs[0x11]&0x20 != 0 }
func (v *VIC) multicolorMode() bool { return v.mcmLatched }
func (v *VIC) columns38() bool      { return v.regs[0x16]&0x08 == 0 }
func (v *VIC) rows24() bool         { return v.regs[0x11]&0x08 == 0 }

// isBadline implements the textbook VIC-II condition: raster is within
// the DMA-eligible range, the low 3 bits match YSCROLL, and the display
// is not blanked.
func (v *VIC) isBadline() bool {
	if v.raster < v.std.FirstDMALine || v.raster > v.std.LastDMALine {
		return false
	}
	return v.raster&0x07 == v.row0to2() && v.displayEnabled()
}

// SetBank records the 16KB video-memory bank base address currently
// selected via CIA2 port A (the VIC has no direct knowledge of CIA2's
// ports, so the orchestrator calls this whenever the selection changes).
func (v *VIC) SetBank(base uint16) { v.bank = base }

// bankedAddr folds the current 16KB bank offset into a 14-bit
// bank-relative address, producing the full-address-space value
// VideoBus implementations expect.
func (v *VIC) bankedAddr(offset uint16) uint16 { return v.bank + (offset & 0x3FFF) }

// Declare satisfies snapshot.Declarer with the chip's logical state:
// registers, raster/badline position, the fetched character-row and
// g-access buffers, the border flip-flops, color latches, collision
// and IRQ registers, and all 8 sprites' DMA/shift state. Every item is
// KeepOnReset: the VIC-II has no RES pin on real hardware (unlike the
// CPU and both CIAs, it isn't wired to the C64's reset line at all),
// so a C64 soft reset leaves it running exactly as found, and
// accordingly it has no Reset method of its own to call one.
//
// Two pieces of presentation state are deliberately not captured: the
// in-progress frameBuffer (regenerated a line at a time as Step runs,
// never read back except by onFrame) and colorTicker's pending color-
// latch events (closures, not serializable data). Restoring a snapshot
// taken mid-frame redraws cleanly as soon as the next frame begins;
// only the remainder of the frame already in flight at capture time
// would show a momentary visual seam, never a logic error.
func (v *VIC) Declare() []snapshot.Item {
	items := []snapshot.Item{
		{Name: "VIC.Regs", Size: len(v.regs), Policy: snapshot.KeepOnReset,
			Get: func() []byte { return v.regs[:] },
			Set: func(b []byte) { copy(v.regs[:], b) }},
		{Name: "VIC.Raster", Size: 4, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return putInt32(v.raster) },
			Set: func(b []byte) { v.raster = getInt32(b) }},
		{Name: "VIC.FrameCount", Size: 4, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return putInt32(v.frameCount) },
			Set: func(b []byte) { v.frameCount = getInt32(b) }},
		{Name: "VIC.RasterCycle", Size: 4, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return putInt32(v.rasterCycle) },
			Set: func(b []byte) { v.rasterCycle = getInt32(b) }},
		{Name: "VIC.VC", Size: 4, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return putInt32(v.vc) },
			Set: func(b []byte) { v.vc = getInt32(b) }},
		{Name: "VIC.VCBase", Size: 4, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return putInt32(v.vcbase) },
			Set: func(b []byte) { v.vcbase = getInt32(b) }},
		{Name: "VIC.RC", Size: 4, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return putInt32(v.rc) },
			Set: func(b []byte) { v.rc = getInt32(b) }},
		{Name: "VIC.Badline", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{boolByte(v.badline)} },
			Set: func(b []byte) { v.badline = b[0] != 0 }},
		{Name: "VIC.VideoMatrixLine", Size: len(v.videoMatrixLine), Policy: snapshot.KeepOnReset,
			Get: func() []byte { return v.videoMatrixLine[:] },
			Set: func(b []byte) { copy(v.videoMatrixLine[:], b) }},
		{Name: "VIC.ColorLine", Size: len(v.colorLine), Policy: snapshot.KeepOnReset,
			Get: func() []byte { return v.colorLine[:] },
			Set: func(b []byte) { copy(v.colorLine[:], b) }},
		{Name: "VIC.FetchIndex", Size: 4, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return putInt32(v.fetchIndex) },
			Set: func(b []byte) { v.fetchIndex = getInt32(b) }},
		{Name: "VIC.CurG", Size: 3, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{v.curScreenCode, v.curColorNibble, v.curPattern} },
			Set: func(b []byte) { v.curScreenCode, v.curColorNibble, v.curPattern = b[0], b[1], b[2] }},
		{Name: "VIC.Border", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{boolByte(v.mainBorder)<<1 | boolByte(v.vertBorder)} },
			Set: func(b []byte) { v.mainBorder, v.vertBorder = b[0]&0x02 != 0, b[0]&0x01 != 0 }},
		{Name: "VIC.BorderColor", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{v.borderColor} },
			Set: func(b []byte) { v.borderColor = b[0] }},
		{Name: "VIC.BGColor", Size: len(v.bgColor), Policy: snapshot.KeepOnReset,
			Get: func() []byte { return v.bgColor[:] },
			Set: func(b []byte) { copy(v.bgColor[:], b) }},
		{Name: "VIC.SpriteMulticolor", Size: len(v.spriteMulticolor), Policy: snapshot.KeepOnReset,
			Get: func() []byte { return v.spriteMulticolor[:] },
			Set: func(b []byte) { copy(v.spriteMulticolor[:], b) }},
		{Name: "VIC.ModeLatches", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{boolByte(v.ecmLatched)<<1 | boolByte(v.mcmLatched)} },
			Set: func(b []byte) { v.ecmLatched, v.mcmLatched = b[0]&0x02 != 0, b[0]&0x01 != 0 }},
		{Name: "VIC.Collisions", Size: 2, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{v.collisionSpriteSprite, v.collisionSpriteBG} },
			Set: func(b []byte) { v.collisionSpriteSprite, v.collisionSpriteBG = b[0], b[1] }},
		{Name: "VIC.IRQ", Size: 2, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{v.irqFlags, v.irqEnable} },
			Set: func(b []byte) { v.irqFlags, v.irqEnable = b[0], b[1] }},
		{Name: "VIC.LastRegAccessed", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{v.lastRegAccessed} },
			Set: func(b []byte) { v.lastRegAccessed = b[0] }},
		{Name: "VIC.LastBusValue", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{v.lastBusValue} },
			Set: func(b []byte) { v.lastBusValue = b[0] }},
		{Name: "VIC.Bank", Size: 2, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{uint8(v.bank), uint8(v.bank >> 8)} },
			Set: func(b []byte) { v.bank = uint16(b[0]) | uint16(b[1])<<8 }},
	}
	for i := range v.sprites {
		i := i
		items = append(items, snapshot.Item{
			Name: spriteItemName(i), Size: spriteSize, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return encodeSprite(v.sprites[i]) },
			Set: func(b []byte) { v.sprites[i] = decodeSprite(b) },
		})
	}
	return items
}

func spriteItemName(i int) string {
	const digits = "01234567"
	return "VIC.Sprite" + digits[i:i+1]
}

func boolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

func putInt32(v int) []byte {
	u := uint32(v)
	return []byte{uint8(u), uint8(u >> 8), uint8(u >> 16), uint8(u >> 24)}
}

func getInt32(b []byte) int {
	return int(int32(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24))
}

// spriteSize is encodeSprite's fixed output length: x, y (4 bytes
// each), a flag byte, color, dmaActive's flag folded in above,
// dataPointer, the 3-byte mc shift buffer, mcBase (4 bytes), and the
// 32-bit shiftRegister.
const spriteSize = 4 + 4 + 1 + 1 + 1 + 3 + 4 + 4

func encodeSprite(s sprite) []byte {
	flags := boolByte(s.enabled)<<6 | boolByte(s.expandX)<<5 | boolByte(s.expandY)<<4 |
		boolByte(s.multicolor)<<3 | boolByte(s.priorityBehind)<<2 |
		boolByte(s.dmaActive)<<1 | boolByte(s.expansionFlipFlop)
	b := putInt32(s.x)
	b = append(b, putInt32(s.y)...)
	b = append(b, flags, s.color, s.dataPointer)
	b = append(b, s.mc[:]...)
	b = append(b, putInt32(s.mcBase)...)
	sr := s.shiftRegister
	b = append(b, uint8(sr), uint8(sr>>8), uint8(sr>>16), uint8(sr>>24))
	return b
}

func decodeSprite(b []byte) sprite {
	flags := b[8]
	mcBase := getInt32(b[14:18])
	sr := uint32(b[18]) | uint32(b[19])<<8 | uint32(b[20])<<16 | uint32(b[21])<<24
	return sprite{
		x: getInt32(b[0:4]), y: getInt32(b[4:8]),
		enabled: flags&0x40 != 0, expandX: flags&0x20 != 0, expandY: flags&0x10 != 0,
		multicolor: flags&0x08 != 0, priorityBehind: flags&0x04 != 0,
		dmaActive: flags&0x02 != 0, expansionFlipFlop: flags&0x01 != 0,
		color: b[9], dataPointer: b[10],
		mc:            [3]uint8{b[11], b[12], b[13]},
		mcBase:        mcBase,
		shiftRegister: sr,
	}
}
