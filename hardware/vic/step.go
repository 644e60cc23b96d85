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

package vic

// badlineStealFirst/badlineStealLast are the rasterline-cycle bounds of
// the 40-cycle CPU halt a badline causes; baLeadCycles is how much
// earlier BA itself drops (tracked by updateBA/BA), giving the 6510 time
// to finish an in-flight write before RDY actually stops it.
const (
	badlineStealFirst = 15
	badlineStealLast  = 54
	baLeadCycles      = 3
)

// Step advances the VIC by one system cycle: one rasterline-cycle, eight
// pixels. The CPU's cycle callback calls this before or after its own
// bus access for the cycle (the orchestrator is responsible for the
// overall phase order; the VIC only needs to see every cycle exactly
// once).
func (v *VIC) Step() {
	if v.rasterCycle == 1 {
		v.badline = v.isBadline()
		v.checkRasterIRQ()
		if v.badline {
			v.fetchIndex = 0
		}
	}

	v.updateBA()
	v.updateBorderFlipFlops()
	v.fetchGraphicsForCycle()
	v.updateSpriteDMA()
	v.renderCycle()

	v.rasterCycle++
	if v.rasterCycle > v.std.CyclesPerLine {
		v.endOfLine()
	}
}

// updateBA drives RDY low for exactly the 40-cycle badline steal window,
// and (for bookkeeping/inspection only; the CPU has no separate BA input
// in this model) tracks the wider BA-low window that leads it via v.ba,
// readable through BA().
func (v *VIC) updateBA() {
	if !v.badline {
		v.ba = false
		if v.cpu != nil {
			v.cpu.SetReady(true)
		}
		return
	}
	v.ba = v.rasterCycle >= badlineStealFirst-baLeadCycles && v.rasterCycle <= badlineStealLast
	inSteal := v.rasterCycle >= badlineStealFirst && v.rasterCycle <= badlineStealLast
	if v.cpu != nil {
		v.cpu.SetReady(!inSteal)
	}
	if inSteal {
		v.runBadlineFetch()
	}
}

// BA reports whether the VIC's BA line is currently asserted (low): true
// for the 3 cycles leading a badline's RDY steal window and through the
// steal window itself. Nothing in this model gates the CPU on BA
// separately from RDY; it exists for inspection and tests that care
// about the lead window on its own.
func (v *VIC) BA() bool {
	return v.ba
}

// runBadlineFetch performs one c-access: fetch the next screen-code/color
// pair into the video matrix line buffer and advance VC.
func (v *VIC) runBadlineFetch() {
	if v.vc < 1000 && v.mem != nil {
		screenBase := v.videoMatrixBase()
		code := v.mem.VICRead(v.bankedAddr(screenBase + uint16(v.vc)))
		color := v.mem.ColorRAMRead(uint16(v.vc))
		if v.fetchIndex < len(v.videoMatrixLine) {
			v.videoMatrixLine[v.fetchIndex] = code
			v.colorLine[v.fetchIndex] = color & 0x0F
		}
	}
	if v.vc < 1000 {
		v.vc++
	}
	v.fetchIndex++
}

// videoMatrixBase returns the video-matrix base address within the
// current bank, from $D018 bits 4-7.
func (v *VIC) videoMatrixBase() uint16 {
	return uint16(v.regs[regMemPointers]&0xF0) << 6
}

// charsetBase returns the character-set (or bitmap) base address within
// the current bank, from $D018 bits 1-3.
func (v *VIC) charsetBase() uint16 {
	return uint16(v.regs[regMemPointers]&0x0E) << 10
}

// checkRasterIRQ compares the raster line against the $D012/$D011-bit-7
// compare value at the start of each line.
func (v *VIC) checkRasterIRQ() {
	compare := int(v.regs[regRaster])
	if v.regs[regControl1]&0x80 != 0 {
		compare |= 0x100
	}
	if v.raster == compare {
		v.raiseIRQ(IRQRaster)
	}
}

// updateBorderFlipFlops implements the two-flip-flop border machine: the
// main flip-flop opens/closes at the left/right horizontal comparison
// points (which depend on 38/40-column mode), the vertical flip-flop
// opens/closes at the top/bottom line comparisons (which depend on
// 24/25-row mode).
func (v *VIC) updateBorderFlipFlops() {
	leftCompare, rightCompare := 31, 335
	if v.columns38() {
		leftCompare, rightCompare = 34, 332
	}
	x := (v.rasterCycle - 1) * 8

	if x == rightCompare {
		v.mainBorder = true
	}
	if v.raster == v.bottomCompare() && x == 0 {
		v.vertBorder = true
	}
	if x == leftCompare {
		if v.raster == v.topCompare() && v.displayEnabled() {
			v.vertBorder = false
		}
		if !v.vertBorder {
			v.mainBorder = false
		}
	}
}

func (v *VIC) topCompare() int {
	if v.rows24() {
		return v.std.Top24
	}
	return v.std.Top25
}

func (v *VIC) bottomCompare() int {
	if v.rows24() {
		return v.std.Bottom24
	}
	return v.std.Bottom25
}

// scheduleColorLatch arranges for *dest to take on val after pixels
// pixels have been emitted, matching the VIC-II's documented per-pixel
// latch delays for border/background register writes.
// A write landing mid-cycle is modeled as landing at the start of the
// current cycle's 8-pixel group; resolving which of the group's 8 pixels
// a 6510 write cycle actually overlaps would need sub-cycle bus timing
// this module does not otherwise track.
func (v *VIC) scheduleColorLatch(pixels int, dest *uint8, val uint8) {
	v.colorTicker.Schedule(pixels, func() { *dest = val }, "color latch")
}

// scheduleModeLatch is scheduleColorLatch's bool-valued twin, used for the
// ECM/MCM mode bits: a $D011/$D016 write takes effect on the fifth/seventh
// pixel after the write rather than immediately, same delayed-latch
// mechanism as the color registers above.
func (v *VIC) scheduleModeLatch(pixels int, dest *bool, val bool) {
	v.colorTicker.Schedule(pixels, func() { *dest = val }, "mode latch")
}

// renderCycle emits the 8 pixels belonging to this rasterline-cycle, one
// at a time, ticking the color-latch scheduler once per pixel so that a
// register write lands on the correct pixel within the group.
func (v *VIC) renderCycle() {
	visible := v.raster < v.std.Lines && v.framePos+8 <= len(v.frameBuffer)
	baseX := (v.rasterCycle - 1) * 8
	for p := 0; p < 8; p++ {
		v.colorTicker.Tick()
		if !visible {
			continue
		}
		col := Palette[v.currentPixelColor(baseX+p, p)]
		v.frameBuffer[v.framePos] = col
		v.framePos++
		v.lastBusValue = v.regs[regMemPointers]
	}
}

// currentPixelColor returns the palette index for pixel p (0-7 within
// this cycle's group, at absolute screen coordinate x): border color
// while either border flip-flop is set (sprites never show over the
// border), otherwise the character/bitmap foreground or background
// pixel with sprites composited over it per their priority bit.
func (v *VIC) currentPixelColor(x, p int) uint8 {
	if v.mainBorder || v.vertBorder {
		return v.borderColor
	}
	color, foreground := v.foregroundPixel(p)
	return v.compositeSprites(x, color, foreground)
}

// endOfLine runs the per-line bookkeeping the top-level cycle scheduler
// delegates to the VIC: RC/VCBASE advancement and the raster counter
// itself.
func (v *VIC) endOfLine() {
	v.rasterCycle = 1

	if v.badline {
		if v.rc == 7 {
			v.vcbase = v.vc
		}
		v.rc = (v.rc + 1) & 0x07
	}

	v.raster++
	if v.raster >= v.std.Lines {
		v.raster = 0
		v.vc = 0
		v.vcbase = 0
		v.rc = 0
		v.endOfFrame()
	}
}

func (v *VIC) endOfFrame() {
	v.frameCount++
	if v.onFrame != nil {
		frame := make([]RGBA, len(v.frameBuffer))
		copy(frame, v.frameBuffer)
		v.onFrame(frame)
	}
	v.framePos = 0
}
