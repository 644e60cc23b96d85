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

package datasette_test

import (
	"testing"

	"github.com/go64/c64core/hardware/datasette"
	"github.com/go64/c64core/message"
)

func newTestDatasette() (*datasette.Datasette, *[]bool, *[]message.Tag) {
	flagHistory := &[]bool{}
	messages := &[]message.Tag{}
	d := datasette.New(
		func(level bool) { *flagHistory = append(*flagHistory, level) },
		func(tag message.Tag) { *messages = append(*messages, tag) },
	)
	return d, flagHistory, messages
}

func TestDatasette_insertTapeMeasuresDuration(t *testing.T) {
	d, _, messages := newTestDatasette()
	d.InsertTape(datasette.Tape{Pulses: []byte{0x10, 0x20, 0x30}, Version: 1})

	if !d.HasTape() {
		t.Fatalf("HasTape = false after InsertTape")
	}
	if d.DurationSeconds() != 0 {
		t.Fatalf("DurationSeconds = %d, want 0 for a tiny tape well under one second", d.DurationSeconds())
	}
	found := false
	for _, m := range *messages {
		if m == message.VC1530Tape {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected VC1530_TAPE message, got %v", *messages)
	}
}

func TestDatasette_ejectWithNoTapeIsNoop(t *testing.T) {
	d, _, messages := newTestDatasette()
	d.EjectTape()
	if len(*messages) != 0 {
		t.Fatalf("expected no messages ejecting an absent tape, got %v", *messages)
	}
}

func TestDatasette_stepProducesRisingThenFallingEdge(t *testing.T) {
	d, flagHistory, _ := newTestDatasette()
	d.InsertTape(datasette.Tape{Pulses: []byte{4}, Version: 1}) // pulse length = 8*4 = 32 cycles
	d.SetMotor(true)
	d.PressPlay()

	var sawRise, sawFallAfterRise bool
	for i := 0; i < 40; i++ {
		d.Step()
		if len(*flagHistory) == 1 && (*flagHistory)[0] == true {
			sawRise = true
		}
		if len(*flagHistory) == 2 && (*flagHistory)[0] == true && (*flagHistory)[1] == false {
			sawFallAfterRise = true
		}
	}
	if !sawRise {
		t.Fatalf("never saw a rising edge, history=%v", *flagHistory)
	}
	if !sawFallAfterRise {
		t.Fatalf("never saw a falling edge after the rising edge, history=%v", *flagHistory)
	}
}

func TestDatasette_stepIsNoopWithoutTapeOrMotorOrPlay(t *testing.T) {
	d, flagHistory, _ := newTestDatasette()
	d.Step() // no tape at all

	d.InsertTape(datasette.Tape{Pulses: []byte{4}, Version: 1})
	d.Step() // motor off, play not pressed

	d.SetMotor(true)
	d.Step() // play not pressed

	if len(*flagHistory) != 0 {
		t.Fatalf("expected no FLAG activity before play+motor both engaged, got %v", *flagHistory)
	}
}

func TestDatasette_pressStopClearsMotorAndPlayKey(t *testing.T) {
	d, _, _ := newTestDatasette()
	d.InsertTape(datasette.Tape{Pulses: []byte{4}, Version: 1})
	d.SetMotor(true)
	d.PressPlay()

	if !d.Playing() || !d.Motor() {
		t.Fatalf("expected playing and motor engaged before PressStop")
	}
	d.PressStop()
	if d.Playing() || d.Motor() {
		t.Fatalf("expected playing and motor both cleared after PressStop")
	}
}

func TestDatasette_runsToEndOfTapeAndStopsItself(t *testing.T) {
	d, _, _ := newTestDatasette()
	d.InsertTape(datasette.Tape{Pulses: []byte{1, 1, 1}, Version: 1})
	d.SetMotor(true)
	d.PressPlay()

	for i := 0; i < 200; i++ {
		d.Step()
	}
	if d.Playing() {
		t.Fatalf("expected playback to stop itself at end of tape")
	}
}

func TestDatasette_declareRoundTripsHeadPosition(t *testing.T) {
	d, _, _ := newTestDatasette()
	d.InsertTape(datasette.Tape{Pulses: []byte{4, 4, 4, 4, 4, 4, 4, 4}, Version: 1})
	d.SetMotor(true)
	d.PressPlay()

	for i := 0; i < 10; i++ {
		d.Step()
	}

	items := d.Declare()
	captured := make([][]byte, len(items))
	for i, it := range items {
		captured[i] = append([]byte(nil), it.Get()...)
	}

	headBefore := d.HeadSeconds()
	for i := 0; i < 20; i++ {
		d.Step()
	}

	for i, it := range items {
		it.Set(captured[i])
	}

	if got := d.HeadSeconds(); got != headBefore {
		t.Fatalf("HeadSeconds after Declare round trip = %d, want %d", got, headBefore)
	}
	if !d.Playing() {
		t.Fatalf("expected play key restored as pressed")
	}
}
