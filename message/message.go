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

// Package message defines the tag set the worker posts to the host
// over the queue: state transitions, ROM and media presence, and
// peripheral indicator changes, each carrying whatever payload its tag
// implies.
package message

// Tag identifies the kind of event a Message carries. Like the
// argument must be of the type the tag's comment names or the type
// assertion at the receiving end panics.
type Tag string

const (
	// Run is posted when the worker starts or resumes stepping. No payload.
	Run Tag = "RUN"
	// Halt is posted when stepping stops on an error: a CPU jam, a
	// breakpoint, a watchpoint or a drive error. Payload: that error.
	Halt Tag = "HALT"

	// RomMissing is posted when the machine can't start because one or
	// more ROMs are absent. Payload: RomMask.
	RomMissing Tag = "ROM_MISSING"
	// RomLoaded is posted each time an individual ROM image is accepted.
	// Payload: RomKind.
	RomLoaded Tag = "ROM_LOADED"
	// RomComplete is posted once every required ROM is present. No payload.
	RomComplete Tag = "ROM_COMPLETE"

	// Warp is posted when the transient fast-load warp state changes.
	// Payload: bool.
	Warp Tag = "WARP"
	// AlwaysWarp is posted when the user's sticky warp preference
	// changes. Payload: bool.
	AlwaysWarp Tag = "ALWAYS_WARP"

	// VC1530Tape is posted when a tape is inserted into the datasette.
	// No payload.
	VC1530Tape Tag = "VC1530_TAPE"
	// VC1530NoTape is posted when the datasette is emptied. No payload.
	VC1530NoTape Tag = "VC1530_NO_TAPE"
	// VC1530Progress is posted whenever the datasette's head crosses a
	// one-second boundary while playing. No payload.
	VC1530Progress Tag = "VC1530_PROGRESS"

	// VC1541RedLEDOn/Off track the drive's activity LED. No payload.
	VC1541RedLEDOn  Tag = "VC1541_RED_LED_ON"
	VC1541RedLEDOff Tag = "VC1541_RED_LED_OFF"
	// VC1541MotorOn/Off track the drive's spindle motor. No payload.
	VC1541MotorOn  Tag = "VC1541_MOTOR_ON"
	VC1541MotorOff Tag = "VC1541_MOTOR_OFF"
	// VC1541Disk/NoDisk track whether a disk is in the drive. No payload.
	VC1541Disk   Tag = "VC1541_DISK"
	VC1541NoDisk Tag = "VC1541_NO_DISK"
	// VC1541HeadUp/Down are posted on every half-track step. No payload.
	VC1541HeadUp   Tag = "VC1541_HEAD_UP"
	VC1541HeadDown Tag = "VC1541_HEAD_DOWN"

	// Cartridge is posted when a cartridge is attached or detached.
	// Payload: bool.
	Cartridge Tag = "CARTRIDGE"
	// Keymatrix is posted whenever the keyboard matrix changes. No payload.
	Keymatrix Tag = "KEYMATRIX"

	// DiskImageInvalid/TapeImageInvalid/CartridgeImageInvalid are posted
	// when InsertDisk/InsertTape/AttachCartridge is given malformed
	// image data. Payload: error.
	DiskImageInvalid      Tag = "DISK_IMAGE_INVALID"
	TapeImageInvalid      Tag = "TAPE_IMAGE_INVALID"
	CartridgeImageInvalid Tag = "CARTRIDGE_IMAGE_INVALID"
)

// RomMask names which of the four required ROMs are absent, one bit
// each, for a RomMissing payload.
type RomMask uint8

const (
	RomMaskBasic RomMask = 1 << iota
	RomMaskKernal
	RomMaskChar
	RomMaskDrive
)

// RomKind names which ROM a RomLoaded message reports.
type RomKind int

const (
	RomBasic RomKind = iota
	RomKernal
	RomChar
	RomDrive
)

// Message is one posted event: a tag plus whatever payload its
// comment above names (nil for tags that carry none).
type Message struct {
	Tag     Tag
	Payload interface{}
}
