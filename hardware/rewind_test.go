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

import (
	"bytes"
	"testing"
)

func TestCrunch_roundTripsRepetitiveData(t *testing.T) {
	data := make([]byte, 4096)
	for i := range data {
		if i > 3000 {
			data[i] = 0xFF
		}
	}
	packed, ok := crunch(data)
	if !ok {
		t.Fatalf("expected repetitive data to crunch")
	}
	if len(packed) >= len(data) {
		t.Fatalf("crunched size %d not smaller than original %d", len(packed), len(data))
	}
	if got := decrunch(packed, len(data)); !bytes.Equal(got, data) {
		t.Fatalf("decrunch did not round trip")
	}
}

func TestCrunch_bailsOutOnIncompressibleData(t *testing.T) {
	data := make([]byte, 8)
	for i := range data {
		data[i] = byte(i) * 37
	}
	// alternating distinct bytes never run, so the packed form (2 bytes
	// per input byte) can only grow.
	if _, ok := crunch(data); ok {
		t.Fatalf("expected incompressible alternating data to refuse crunching")
	}
}

func TestCrunch_handlesLongRuns(t *testing.T) {
	data := make([]byte, 1000)
	packed, ok := crunch(data)
	if !ok {
		t.Fatalf("expected an all-zero buffer to crunch")
	}
	if got := decrunch(packed, len(data)); !bytes.Equal(got, data) {
		t.Fatalf("decrunch did not round trip a run longer than 256 bytes")
	}
}

func TestRewindBuffer_pushAtAndTruncate(t *testing.T) {
	r := newRewindBuffer(3)

	r.push(bytes.Repeat([]byte{1}, 64))
	r.push(bytes.Repeat([]byte{2}, 64))
	r.push(bytes.Repeat([]byte{3}, 64))

	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}

	newest, err := r.at(0)
	if err != nil || !bytes.Equal(newest, bytes.Repeat([]byte{3}, 64)) {
		t.Fatalf("at(0) = %v, %v; want all-3s", newest, err)
	}

	oldest, err := r.at(2)
	if err != nil || !bytes.Equal(oldest, bytes.Repeat([]byte{1}, 64)) {
		t.Fatalf("at(2) = %v, %v; want all-1s", oldest, err)
	}

	if _, err := r.at(3); err == nil {
		t.Fatalf("expected an error asking further back than the buffer holds")
	}

	r.truncate(1)
	if r.Len() != 2 {
		t.Fatalf("Len() after truncate(1) = %d, want 2", r.Len())
	}
	newest, _ = r.at(0)
	if !bytes.Equal(newest, bytes.Repeat([]byte{2}, 64)) {
		t.Fatalf("at(0) after truncate = %v, want all-2s", newest)
	}
}

func TestRewindBuffer_discardsOldestPastCapacity(t *testing.T) {
	r := newRewindBuffer(2)
	r.push([]byte{1})
	r.push([]byte{2})
	r.push([]byte{3})

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	oldest, _ := r.at(1)
	if !bytes.Equal(oldest, []byte{2}) {
		t.Fatalf("oldest surviving point = %v, want {2} (1 should have been evicted)", oldest)
	}
}
