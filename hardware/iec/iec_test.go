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

package iec_test

import (
	"testing"

	"github.com/go64/c64core/hardware/cia"
	"github.com/go64/c64core/hardware/drive"
	"github.com/go64/c64core/hardware/iec"
)

func TestHostPort_bankSelectDecodesActiveLow(t *testing.T) {
	bus := iec.NewBus()
	var gotBank uint16 = 0xFFFF
	host := iec.NewHostPort(bus, func(base uint16) { gotBank = base }, nil)

	c := cia.New("CIA2", func(bool) {})
	c.SetPeripheral(host)
	c.OnPortAWrite(host.PortAWritten)

	c.ChipWrite(0x02, 0x03) // DDRA: low 2 bits output
	c.ChipWrite(0x00, 0x03) // PA bits 0-1 = 11 -> bank index (~3)&3 = 0
	if gotBank != 0 {
		t.Fatalf("bank = $%04X, want $0000 for PA=$03", gotBank)
	}

	c.ChipWrite(0x00, 0x02) // PA bits 0-1 = 10 -> bank index (~2)&3 = 1
	if gotBank != 0x4000 {
		t.Fatalf("bank = $%04X, want $4000 for PA=$02", gotBank)
	}

	c.ChipWrite(0x00, 0x00) // PA bits 0-1 = 00 -> bank index 3
	if gotBank != 0xC000 {
		t.Fatalf("bank = $%04X, want $C000 for PA=$00", gotBank)
	}
}

func TestBus_clkAndDataAreWiredAND(t *testing.T) {
	bus := iec.NewBus()
	host := iec.NewHostPort(bus, func(uint16) {}, nil)
	driveSide := iec.NewDrivePort(bus)

	hostCIA := cia.New("CIA2", func(bool) {})
	hostCIA.SetPeripheral(host)
	hostCIA.OnPortAWrite(host.PortAWritten)
	hostCIA.ChipWrite(0x02, 0x38) // DDRA: ATN OUT/CLK OUT/DATA OUT are output

	driveVIA := drive.NewVIA("VIA1", func(bool) {})
	driveVIA.SetPeripheral(driveSide)
	driveVIA.OnPortAWrite(driveSide.PortAWritten)
	driveVIA.ChipWrite(0x03, 0x0A) // DDRA: CLK OUT/DATA OUT are output

	if got := hostCIA.ChipRead(0x00).Value; got&0xC0 != 0xC0 {
		t.Fatalf("CIA2 PA = %#x, want bits 6-7 set (bus idle)", got)
	}

	driveVIA.ChipWrite(0x01, 0x08) // drive asserts CLK OUT
	if got := hostCIA.ChipRead(0x00).Value; got&0x40 != 0 {
		t.Fatalf("CIA2 PA = %#x, want bit 6 clear once the drive pulls CLK low", got)
	}
	if got := hostCIA.ChipRead(0x00).Value; got&0x80 == 0 {
		t.Fatalf("CIA2 PA = %#x, want bit 7 (DATA IN) still set", got)
	}

	driveVIA.ChipWrite(0x01, 0x00) // drive releases CLK OUT
	hostCIA.ChipWrite(0x00, 0x10)  // host asserts CLK OUT (bit4)
	if got := driveVIA.ChipRead(0x01).Value; got&0x04 != 0 {
		t.Fatalf("VIA1 PA = %#x, want bit 2 (CLK IN) clear once the host pulls CLK low", got)
	}
}

func TestBus_atnPropagatesToDriveCA1(t *testing.T) {
	bus := iec.NewBus()
	var sawLevel []bool
	host := iec.NewHostPort(bus, func(uint16) {}, func(level bool) { sawLevel = append(sawLevel, level) })

	hostCIA := cia.New("CIA2", func(bool) {})
	hostCIA.SetPeripheral(host)
	hostCIA.OnPortAWrite(host.PortAWritten)
	hostCIA.ChipWrite(0x02, 0x08) // DDRA: ATN OUT is output

	hostCIA.ChipWrite(0x00, 0x08) // assert ATN
	if len(sawLevel) == 0 || sawLevel[len(sawLevel)-1] != false {
		t.Fatalf("notifyATN history = %v, want a trailing false (ATN asserted = line low)", sawLevel)
	}

	hostCIA.ChipWrite(0x00, 0x00) // release ATN
	if sawLevel[len(sawLevel)-1] != true {
		t.Fatalf("notifyATN history = %v, want a trailing true (ATN released = line high)", sawLevel)
	}
}
