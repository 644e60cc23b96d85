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

package assert

import "fmt"

// Owner records the goroutine ID that is allowed to mutate a piece of state,
// and panics if anything else touches it. The C64 type uses this to enforce
// the concurrency model's central rule: all component state belongs to a
// single dedicated worker goroutine, and configuration changes (attaching a
// cartridge, inserting a disk, switching PAL/NTSC) are a logic error unless
// performed from that goroutine with the worker suspended.
type Owner struct {
	id uint64
	ok bool
}

// Claim records the calling goroutine as the owner. Call once, when the
// worker goroutine starts.
func (o *Owner) Claim() {
	o.id = GetGoRoutineID()
	o.ok = true
}

// Check panics if the calling goroutine is not the claimed owner.
func (o *Owner) Check() {
	if !o.ok {
		panic("assert: Owner.Check() called before Claim()")
	}
	if id := GetGoRoutineID(); id != o.id {
		panic(fmt.Sprintf("assert: state mutated from goroutine %d, owned by %d", id, o.id))
	}
}
