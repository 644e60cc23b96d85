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

// Package snapshot implements the emulator's save-state container:
// every stateful component declares an ordered list of named fields,
// each carrying its own get/set accessors and a reset policy,
// and a Container serializes the whole machine's declared fields in
// one deterministic pass.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ResetPolicy says whether ApplyReset keeps a field or zeroes it,
// matching the original's CLEAR_ON_RESET/KEEP_ON_RESET flags. C64.Reset
// does not call ApplyReset; it calls each component's own Reset. It
// has no effect on whether a field is captured in a Container — every
// declared field is always saved and restored, same as the original
// (reset and snapshotting are orthogonal).
type ResetPolicy int

const (
	ClearOnReset ResetPolicy = iota
	KeepOnReset
)

// Item is one named, sized field of a component's state: Get returns
// its current value encoded as exactly Size bytes, Set installs a
// previously-captured (or zeroed) value of the same length.
type Item struct {
	Name   string
	Size   int
	Policy ResetPolicy
	Get    func() []byte
	Set    func([]byte)
}

// Declarer is implemented by every stateful component. Declare returns
// the component's own fields in a fixed order; it must return the same
// names and sizes on every call for a given component instance.
type Declarer interface {
	Declare() []Item
}

// ApplyReset zeros every item whose Policy is ClearOnReset, the Go
// equivalent of VirtualComponent::reset's memset of CLEAR_ON_RESET
// fields. Items tagged KeepOnReset are left untouched.
func ApplyReset(items []Item) {
	for _, it := range items {
		if it.Policy == ClearOnReset {
			it.Set(make([]byte, it.Size))
		}
	}
}

// magic identifies a c64core snapshot container; it is the ASCII bytes
// "C64S" read as a big-endian uint32.
const magic uint32 = 0x43363453

// layoutEntry names and sizes one item, in capture order, so Restore
// can refuse a container whose shape doesn't match the live component
// graph before touching any state.
type layoutEntry struct {
	Name string
	Size int
}

// Container is a captured snapshot: a header naming the emulator
// model and cycle count at the moment of capture, an optional
// screenshot for presentation in a save-state browser, and the
// concatenated byte payload of every declared item, leaves first.
type Container struct {
	Model      string
	Cycle      uint64
	Screenshot []byte

	layout []layoutEntry
	data   []byte
}

var (
	// ErrMagicMismatch is returned by Restore when the container wasn't
	// produced by this package (or is corrupt).
	ErrMagicMismatch = errors.New("snapshot: magic number mismatch")
	// ErrLayoutMismatch is returned by Restore when the container's
	// declared fields don't match the live component graph exactly, in
	// name, size, or order.
	ErrLayoutMismatch = errors.New("snapshot: layout mismatch")
)

// Capture walks declarers in the order given (leaves first, a
// children-before-self recursion) and records every declared item's
// current value.
func Capture(model string, cycle uint64, screenshot []byte, declarers ...Declarer) *Container {
	c := &Container{Model: model, Cycle: cycle, Screenshot: screenshot}
	for _, d := range declarers {
		for _, item := range d.Declare() {
			value := item.Get()
			if len(value) != item.Size {
				panic(fmt.Sprintf("snapshot: item %q returned %d bytes, declared size %d", item.Name, len(value), item.Size))
			}
			c.layout = append(c.layout, layoutEntry{Name: item.Name, Size: item.Size})
			c.data = append(c.data, value...)
		}
	}
	return c
}

// Restore installs a container's data into declarers, in the same
// order Capture walked them. It refuses entirely — without mutating
// any component — unless the container's layout matches exactly.
func Restore(c *Container, declarers ...Declarer) error {
	offset := 0
	layoutIndex := 0

	var sets []func()
	for _, d := range declarers {
		for _, item := range d.Declare() {
			if layoutIndex >= len(c.layout) {
				return fmt.Errorf("%w: live graph declares more items than the container holds", ErrLayoutMismatch)
			}
			want := c.layout[layoutIndex]
			if want.Name != item.Name || want.Size != item.Size {
				return fmt.Errorf("%w: item %d is %q (%d bytes) in the container, %q (%d bytes) live",
					ErrLayoutMismatch, layoutIndex, want.Name, want.Size, item.Name, item.Size)
			}
			if offset+item.Size > len(c.data) {
				return fmt.Errorf("%w: container data shorter than its own layout declares", ErrLayoutMismatch)
			}
			value := c.data[offset : offset+item.Size]
			set := item.Set
			sets = append(sets, func() { set(value) })
			offset += item.Size
			layoutIndex++
		}
	}
	if layoutIndex != len(c.layout) {
		return fmt.Errorf("%w: container holds more items than the live graph declares", ErrLayoutMismatch)
	}

	for _, apply := range sets {
		apply()
	}
	return nil
}

// Marshal serializes a Container to a byte stream: the magic number, a
// length-prefixed model string, the cycle counter, a length-prefixed
// screenshot, a length-prefixed layout table, then the raw item data.
// Unmarshal's magic-number check is the first line of Restore's
// "refuse unless it matches exactly" contract.
func Marshal(c *Container) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, magic)
	writeString(&buf, c.Model)
	_ = binary.Write(&buf, binary.BigEndian, c.Cycle)
	writeBytes(&buf, c.Screenshot)

	_ = binary.Write(&buf, binary.BigEndian, uint32(len(c.layout)))
	for _, e := range c.layout {
		writeString(&buf, e.Name)
		_ = binary.Write(&buf, binary.BigEndian, uint32(e.Size))
	}
	writeBytes(&buf, c.data)
	return buf.Bytes()
}

// Unmarshal parses a byte stream produced by Marshal, returning
// ErrMagicMismatch if the header doesn't identify a c64core snapshot.
func Unmarshal(raw []byte) (*Container, error) {
	buf := bytes.NewReader(raw)

	var gotMagic uint32
	if err := binary.Read(buf, binary.BigEndian, &gotMagic); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if gotMagic != magic {
		return nil, ErrMagicMismatch
	}

	c := &Container{}
	var err error
	if c.Model, err = readString(buf); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if err := binary.Read(buf, binary.BigEndian, &c.Cycle); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if c.Screenshot, err = readBytes(buf); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	var layoutLen uint32
	if err := binary.Read(buf, binary.BigEndian, &layoutLen); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	c.layout = make([]layoutEntry, layoutLen)
	for i := range c.layout {
		name, err := readString(buf)
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		var size uint32
		if err := binary.Read(buf, binary.BigEndian, &size); err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		c.layout[i] = layoutEntry{Name: name, Size: int(size)}
	}
	if c.data, err = readBytes(buf); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return c, nil
}

func writeString(buf *bytes.Buffer, s string) { writeBytes(buf, []byte(s)) }

func writeBytes(buf *bytes.Buffer, b []byte) {
	_ = binary.Write(buf, binary.BigEndian, uint32(len(b)))
	buf.Write(b)
}

func readString(r *bytes.Reader) (string, error) {
	b, err := readBytes(r)
	return string(b), err
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, err
		}
	}
	return b, nil
}
