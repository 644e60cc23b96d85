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

package message_test

import (
	"testing"

	"github.com/go64/c64core/message"
)

func TestQueue_putThenPollPreservesOrder(t *testing.T) {
	q := message.NewQueue(4)
	q.Put(message.Run, nil)
	q.Put(message.Halt, nil)

	m1, ok := q.Poll()
	if !ok || m1.Tag != message.Run {
		t.Fatalf("first Poll = %+v, %v, want Run", m1, ok)
	}
	m2, ok := q.Poll()
	if !ok || m2.Tag != message.Halt {
		t.Fatalf("second Poll = %+v, %v, want Halt", m2, ok)
	}
	if _, ok := q.Poll(); ok {
		t.Fatalf("Poll on empty queue returned ok=true")
	}
}

func TestQueue_dropsOldestWhenFull(t *testing.T) {
	q := message.NewQueue(2)
	q.Put(message.VC1541HeadUp, nil)
	q.Put(message.VC1541HeadDown, nil)
	q.Put(message.VC1541Disk, nil) // queue capacity 2, should drop HeadUp

	m1, ok := q.Poll()
	if !ok || m1.Tag != message.VC1541HeadDown {
		t.Fatalf("first Poll after overflow = %+v, %v, want VC1541HeadDown", m1, ok)
	}
	m2, ok := q.Poll()
	if !ok || m2.Tag != message.VC1541Disk {
		t.Fatalf("second Poll after overflow = %+v, %v, want VC1541Disk", m2, ok)
	}
}

func TestQueue_payloadRoundTrips(t *testing.T) {
	q := message.NewQueue(1)
	q.Put(message.RomMissing, message.RomMaskBasic|message.RomMaskChar)

	m, ok := q.Poll()
	if !ok {
		t.Fatalf("Poll returned ok=false")
	}
	mask, isMask := m.Payload.(message.RomMask)
	if !isMask || mask != message.RomMaskBasic|message.RomMaskChar {
		t.Fatalf("payload = %#v, want RomMaskBasic|RomMaskChar", m.Payload)
	}
}
