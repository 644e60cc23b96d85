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

package hardware

import "fmt"

// RewindBuffer is a bounded ring of whole-machine snapshots, captured
// automatically every four seconds of emulated time, letting a host
// step the machine backwards without having kept its own save states.
//
// Each point is run-length-encoded before being kept: a serialized
// snapshot is mostly RAM, and RAM is mostly runs of the same byte (zero
// page, screen memory between redraws, unused BASIC workspace), so a
// simple byte/count RLE - the same scheme as a run-length compressor
// crunches savestate data - shrinks most captures substantially with
// none of an entropy coder's bookkeeping. A capture that wouldn't shrink
// (high-entropy RAM contents) is kept raw instead.
type RewindBuffer struct {
	capacity int
	points   []rewindPoint
}

type rewindPoint struct {
	crunched bool
	size     int // uncrunched length; meaningless when !crunched
	data     []byte
}

// newRewindBuffer returns an empty buffer holding at most capacity points.
func newRewindBuffer(capacity int) *RewindBuffer {
	return &RewindBuffer{capacity: capacity}
}

// push adds raw (a marshalled snapshot) as the newest point, discarding
// the oldest once capacity is exceeded.
func (r *RewindBuffer) push(raw []byte) {
	p := rewindPoint{size: len(raw)}
	if packed, ok := crunch(raw); ok {
		p.crunched = true
		p.data = packed
	} else {
		p.data = append([]byte(nil), raw...)
	}

	r.points = append(r.points, p)
	if len(r.points) > r.capacity {
		r.points = r.points[len(r.points)-r.capacity:]
	}
}

// Len reports how many rewind points are currently held.
func (r *RewindBuffer) Len() int { return len(r.points) }

// at returns the n-th most recent point's marshalled snapshot bytes (0 is
// the newest), decrunching it first if necessary.
func (r *RewindBuffer) at(n int) ([]byte, error) {
	if n < 0 || n >= len(r.points) {
		return nil, fmt.Errorf("hardware: no rewind point %d back (have %d)", n, len(r.points))
	}
	p := r.points[len(r.points)-1-n]
	if !p.crunched {
		return append([]byte(nil), p.data...), nil
	}
	return decrunch(p.data, p.size), nil
}

// truncate discards every point newer than the n-th, leaving it as the
// newest; Rewind calls this after successfully restoring point n so the
// machine can't later be "re-wound" forward past where it now is.
func (r *RewindBuffer) truncate(n int) {
	keep := len(r.points) - n
	if keep < 0 {
		keep = 0
	}
	r.points = r.points[:keep]
}

// crunch run-length-encodes data as a sequence of (byte, run-length-1)
// pairs, each run capped at 256 bytes since the count is stored in a
// single byte. It reports ok=false - leaving out nil - if the encoding
// would not end up smaller than data itself, the same bail-out a
// run-length compressor uses for incompressible input.
func crunch(data []byte) (out []byte, ok bool) {
	if len(data) == 0 {
		return nil, false
	}

	packed := make([]byte, 0, len(data))
	run := data[0]
	count := 0
	for _, v := range data[1:] {
		if v == run && count < 255 {
			count++
			continue
		}
		packed = append(packed, run, byte(count))
		if len(packed) >= len(data) {
			return nil, false
		}
		run = v
		count = 0
	}
	packed = append(packed, run, byte(count))
	if len(packed) >= len(data) {
		return nil, false
	}
	return packed, true
}

// decrunch reverses crunch, given the original uncrunched size.
func decrunch(packed []byte, size int) []byte {
	out := make([]byte, 0, size)
	for i := 0; i+1 < len(packed); i += 2 {
		v := packed[i]
		count := int(packed[i+1])
		for r := 0; r <= count; r++ {
			out = append(out, v)
		}
	}
	return out
}
