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

// RGBA is a 32-bit-per-pixel framebuffer color.
type RGBA struct {
	R, G, B, A uint8
}

// Palette is the VIC-II's fixed 16-color output, in register-index order.
// Values are the widely used "Pepto" measured palette.
var Palette = [16]RGBA{
	{0x00, 0x00, 0x00, 0xFF}, // 0 black
	{0xFF, 0xFF, 0xFF, 0xFF}, // 1 white
	{0x68, 0x37, 0x2B, 0xFF}, // 2 red
	{0x70, 0xA4, 0xB2, 0xFF}, // 3 cyan
	{0x6F, 0x3D, 0x86, 0xFF}, // 4 purple
	{0x58, 0x8D, 0x43, 0xFF}, // 5 green
	{0x35, 0x28, 0x79, 0xFF}, // 6 blue
	{0xB8, 0xC7, 0x6F, 0xFF}, // 7 yellow
	{0x6F, 0x4F, 0x25, 0xFF}, // 8 orange
	{0x43, 0x39, 0x00, 0xFF}, // 9 brown
	{0x9A, 0x67, 0x59, 0xFF}, // 10 light red
	{0x44, 0x44, 0x44, 0xFF}, // 11 dark grey
	{0x6C, 0x6C, 0x6C, 0xFF}, // 12 grey
	{0x9A, 0xD2, 0x84, 0xFF}, // 13 light green
	{0x6C, 0x5E, 0xB5, 0xFF}, // 14 light blue
	{0x95, 0x95, 0x95, 0xFF}, // 15 light grey
}
