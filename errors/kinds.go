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

package errors

// The error kinds the core can surface, per the error handling design. Every
// one of these is produced only at an interface boundary (image/ROM/snapshot
// loading, or the debugger stopping the worker) — never from inside a
// per-cycle step.
const (
	// RomMissing is raised when the machine is asked to start without one
	// or more of BASIC/KERNAL/CHAR/drive ROM present.
	RomMissing = "ROM_MISSING"

	// DiskImageInvalid is raised when a disk image doesn't match a
	// recognised format, or has an internal size mismatch.
	DiskImageInvalid = "DISK_IMAGE_INVALID"

	// TapeImageInvalid is raised when a tape image doesn't match a
	// recognised format, or has an internal size mismatch.
	TapeImageInvalid = "TAPE_IMAGE_INVALID"

	// CartridgeImageInvalid is raised when a cartridge image doesn't match
	// a recognised format, declares an unknown banking type, or has an
	// internal size mismatch.
	CartridgeImageInvalid = "CARTRIDGE_IMAGE_INVALID"

	// SnapshotMismatch is raised when a snapshot's magic number, version or
	// field-list layout doesn't match what Restore expects.
	SnapshotMismatch = "SNAPSHOT_MISMATCH"

	// CPUJam is raised when the CPU fetches an illegal opcode that hangs it.
	CPUJam = "CPU_JAM: illegal opcode hung the CPU at $%04X"

	// Breakpoint is raised when execution stops at a debugger breakpoint.
	Breakpoint = "BREAKPOINT: stopped at $%04X"

	// Watchpoint is raised when execution stops at a debugger watchpoint.
	Watchpoint = "WATCHPOINT: stopped at $%04X"

	// SuspendRequired is raised (as an assertion failure, not a user-visible
	// error) when a configuration change is attempted without first
	// suspending the worker.
	SuspendRequired = "SUSPEND_REQUIRED"
)
