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

package drive

import "github.com/go64/c64core/hardware/snapshot"

// maxHalftrack is the number of half-track head positions a 1541 head
// can reach; halftrack 1 is the
// outermost, 84 the innermost.
const maxHalftrack = 84

// zoneByteLen is the number of GCR-encoded bytes a full rotation holds in
// each of the four speed zones, approximating the real drive's
// 7692/7142/6666/6250 byte-per-track figures (the exact byte counts a
// real 1541 uses per zone; this module names them by zone index rather
// than by track range). Index 3 is the fastest clock (outermost tracks),
// 0 the slowest (innermost), matching the VIA2 density-select encoding.
var zoneByteLen = [4]int{6250, 6667, 7143, 7692}

// zoneForTrack reproduces the real 1541's fixed track-range-to-density
// mapping.
func zoneForTrack(track int) int {
	switch {
	case track <= 17:
		return 3
	case track <= 24:
		return 2
	case track <= 30:
		return 1
	default:
		return 0
	}
}

// Disk holds the full bit-serial image of one diskette: one bit array per
// half-track, each sized for its speed zone. Loading a real D64/G64 image
// into GCR-encoded sectors is out of scope for this module (the
// interesting properties here are the bit-clock and head-positioning
// state machine, not archive format decoding); EncodeRaw below is a minimal
// loader that serializes arbitrary bytes onto a track's bit array
// bit-for-bit, enough to drive the read/write logic under test.
type Disk struct {
	halftrack    [maxHalftrack + 1][]bool // bit stream, MSB-first per byte as loaded
	modified     bool
	writeProtect bool
}

// NewDisk returns a blank (unformatted) disk: every half-track present at
// its zone's nominal length, all bits zero.
func NewDisk() *Disk {
	d := &Disk{}
	d.ClearDisk()
	return d
}

// ClearDisk erases all track data, as if a blank diskette were inserted.
func (d *Disk) ClearDisk() {
	for h := 1; h <= maxHalftrack; h++ {
		track := (h + 1) / 2
		bits := zoneByteLen[zoneForTrack(track)] * 8
		d.halftrack[h] = make([]bool, bits)
	}
	d.modified = false
	d.writeProtect = false
}

func (d *Disk) LengthOfHalftrack(halftrack int) int {
	if halftrack < 1 || halftrack > maxHalftrack {
		return 0
	}
	return len(d.halftrack[halftrack])
}

func (d *Disk) TrackIsEmpty(track int) bool {
	h := track*2 - 1
	if h < 1 || h > maxHalftrack {
		return true
	}
	for _, b := range d.halftrack[h] {
		if b {
			return false
		}
	}
	return true
}

func (d *Disk) ReadBit(halftrack, offset int) bool {
	track := d.halftrack[halftrack]
	if len(track) == 0 {
		return false
	}
	return track[offset%len(track)]
}

func (d *Disk) WriteBit(halftrack, offset int, bit bool) {
	track := d.halftrack[halftrack]
	if len(track) == 0 {
		return
	}
	track[offset%len(track)] = bit
	d.modified = true
}

func (d *Disk) SetModified(m bool) { d.modified = m }
func (d *Disk) Modified() bool     { return d.modified }

func (d *Disk) SetWriteProtect(p bool) { d.writeProtect = p }
func (d *Disk) WriteProtected() bool   { return d.writeProtect }

// declareItems returns the disk's snapshot items: every half-track's bit
// stream packed 8 bits to a byte, plus the modified/write-protect flags.
// Track lengths are a pure function of zone (see zoneByteLen/zoneForTrack),
// so every Disk built through NewDisk/ClearDisk packs to the same byte
// count regardless of which diskette is currently inserted; a container
// captured against one disk and restored against a different one still
// round-trips correctly, it just overwrites the new disk's bits with the
// old one's, the same as swapping the disk back.
func (d *Disk) declareItems() []snapshot.Item {
	return []snapshot.Item{
		{Name: "Disk.Bits", Size: diskBitBytes(d), Policy: snapshot.KeepOnReset,
			Get: func() []byte { return encodeDiskBits(d) },
			Set: func(b []byte) { decodeDiskBits(d, b) }},
		{Name: "Disk.Flags", Size: 1, Policy: snapshot.KeepOnReset,
			Get: func() []byte { return []byte{boolByte(d.modified)<<1 | boolByte(d.writeProtect)} },
			Set: func(b []byte) { d.modified = b[0]&0x02 != 0; d.writeProtect = b[0]&0x01 != 0 }},
	}
}

func boolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

func diskBitBytes(d *Disk) int {
	bits := 0
	for h := 1; h <= maxHalftrack; h++ {
		bits += len(d.halftrack[h])
	}
	return bits / 8
}

func encodeDiskBits(d *Disk) []byte {
	out := make([]byte, 0, diskBitBytes(d))
	var cur uint8
	var n int
	for h := 1; h <= maxHalftrack; h++ {
		for _, bit := range d.halftrack[h] {
			cur <<= 1
			if bit {
				cur |= 1
			}
			n++
			if n == 8 {
				out = append(out, cur)
				cur, n = 0, 0
			}
		}
	}
	return out
}

func decodeDiskBits(d *Disk, b []byte) {
	byteIdx, bitIdx := 0, 7
	for h := 1; h <= maxHalftrack; h++ {
		for i := range d.halftrack[h] {
			d.halftrack[h][i] = b[byteIdx]&(1<<uint(bitIdx)) != 0
			bitIdx--
			if bitIdx < 0 {
				bitIdx = 7
				byteIdx++
			}
		}
	}
}

// EncodeRaw loads data onto a half-track's bit stream MSB-first, once,
// from the start of the track: if data is shorter than the track the
// remainder keeps its prior value, and if longer it is truncated.
func (d *Disk) EncodeRaw(halftrack int, data []uint8) {
	track := d.halftrack[halftrack]
	bit := 0
	for _, b := range data {
		for i := 7; i >= 0 && bit < len(track); i-- {
			track[bit] = (b>>uint(i))&1 != 0
			bit++
		}
		if bit >= len(track) {
			break
		}
	}
}
