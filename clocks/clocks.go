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

// Package clocks defines the constant values that describe the speed of the
// C64's main oscillator for each video standard, and the cycle geometry each
// standard implies for the VIC-II.
//
// Values taken from:
// https://www.c64-wiki.com/wiki/clock
package clocks

// Frequency is the main oscillator speed, in MHz, for a video standard.
const (
	PAL  = 0.985248
	NTSC = 1.022727
)

// RasterLines is the number of rasterlines per frame.
const (
	PALLines  = 312
	NTSCLines = 263
)

// CyclesPerLine is the number of CPU/VIC cycles in one rasterline.
const (
	PALCyclesPerLine  = 63
	NTSCCyclesPerLine = 65
)

// FrameRate is the nominal number of frames produced per second, derived from
// the oscillator frequency and the number of cycles per frame.
const (
	PALFrameRate  = (PAL * 1000000) / (PALCyclesPerLine * PALLines)
	NTSCFrameRate = (NTSC * 1000000) / (NTSCCyclesPerLine * NTSCLines)
)

// PicosecondsPerCycle is the duration of one host (CPU/VIC) cycle expressed
// in picoseconds. The drive's sub-clock is advanced in these units so that
// the two clock domains can be kept in step without floating point drift.
func PicosecondsPerCycle(mhz float64) int64 {
	return int64(1000000.0 / mhz)
}
