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

package cia_test

import (
	"testing"

	"github.com/go64/c64core/hardware/cia"
)

func newTestCIA() (*cia.CIA, *[]bool) {
	history := &[]bool{}
	c := cia.New("CIA1", func(active bool) { *history = append(*history, active) })
	return c, history
}

func TestCIA_timerAOneShotUnderflowRaisesIRQ(t *testing.T) {
	c, history := newTestCIA()

	c.ChipWrite(0x04, 2) // TA lo = 2
	c.ChipWrite(0x05, 0) // TA hi = 0; counter loads immediately since stopped
	c.ChipWrite(0x0D, 0x81) // enable timer A interrupt
	c.ChipWrite(0x0E, 0x09) // CRA: START | RUNMODE one-shot

	for i := 0; i < 3; i++ {
		c.Step(false)
	}

	if len(*history) == 0 || !(*history)[len(*history)-1] {
		t.Fatalf("expected IRQ line to go active after timer A's 3rd cycle, history=%v", *history)
	}

	data := c.ChipRead(0x0D)
	if data.Value&0x80 == 0 || data.Value&0x01 == 0 {
		t.Fatalf("expected ICR read to report IRQ + timer A flag, got %#x", data.Value)
	}
	if c.ChipRead(0x0D).Value != 0 {
		t.Fatalf("expected ICR flags to clear after being read")
	}
}

func TestCIA_timerBCountsTimerAUnderflows(t *testing.T) {
	c, _ := newTestCIA()

	c.ChipWrite(0x0D, 0x80|0x01|0x02) // enable timer A and timer B interrupts
	c.ChipWrite(0x0E, 0x01)           // CRA: START, continuous, counts phi2
	c.ChipWrite(0x0F, 0x41)           // CRB: START, INMODE = count timer A underflows

	c.Step(false)

	data := c.ChipRead(0x0D)
	if data.Value&0x01 == 0 {
		t.Fatalf("expected timer A to have underflowed, ICR=%#x", data.Value)
	}
	if data.Value&0x02 == 0 {
		t.Fatalf("expected timer B to underflow in lockstep with timer A, ICR=%#x", data.Value)
	}
}

func TestCIA_forceLoadTakesEffectRegardlessOfRunBit(t *testing.T) {
	c, _ := newTestCIA()

	c.ChipWrite(0x04, 3) // TA lo = 3
	c.ChipWrite(0x05, 0) // TA hi = 0; loads counter immediately (stopped)
	c.ChipWrite(0x0E, 0x01) // start, continuous

	c.Step(false) // counter 3 -> 2
	c.Step(false) // counter 2 -> 1

	c.ChipWrite(0x04, 9)    // change the latch only; counter stays at 1
	c.ChipWrite(0x0E, 0x10) // stop the timer but request a force load

	c.Step(false) // force load fires this cycle regardless of the stopped run bit

	if v := c.ChipRead(0x04).Value; v != 9 {
		t.Fatalf("expected counter to be force-loaded from the latch (9), got %d", v)
	}
}

func TestCIA_todAlarmFiresAfterMatchingTenths(t *testing.T) {
	c, history := newTestCIA()

	c.ChipWrite(0x0D, 0x80|0x04) // enable TOD alarm interrupt
	c.ChipWrite(0x0F, 0x80)      // CRB: select alarm registers
	c.ChipWrite(0x08, 0x05)      // alarm tenths = 5 (BCD)
	c.ChipWrite(0x0F, 0x00)      // CRB: back to clock registers
	c.ChipWrite(0x08, 0x00)      // tenths = 0; starts the clock running

	for i := 0; i < 5; i++ {
		c.Step(true)
	}

	if len(*history) == 0 || !(*history)[len(*history)-1] {
		t.Fatalf("expected TOD alarm IRQ after 5 tenths-of-a-second ticks, history=%v", *history)
	}
}

type fakePeripheral struct {
	portAExternal, portBExternal uint8
}

func (p fakePeripheral) ReadPortA(outA uint8) uint8 { return p.portAExternal }
func (p fakePeripheral) ReadPortB(outA uint8) uint8 { return p.portBExternal }

func TestCIA_portReadCombinesOutputAndExternalInput(t *testing.T) {
	c, _ := newTestCIA()
	c.SetPeripheral(fakePeripheral{portAExternal: 0x0F, portBExternal: 0xF0})

	c.ChipWrite(0x02, 0xF0) // DDRA: top nibble output, bottom nibble input
	c.ChipWrite(0x00, 0xAA) // PRA output value

	got := c.ChipRead(0x00).Value
	want := uint8(0xA0) | 0x0F // output nibble from PRA, input nibble from peripheral
	if got != want {
		t.Fatalf("expected combined port A read %#x, got %#x", want, got)
	}
}

func TestCIA_resetClearsPortsTimersAndInterrupts(t *testing.T) {
	c, history := newTestCIA()

	c.ChipWrite(0x02, 0xFF) // DDRA all output
	c.ChipWrite(0x00, 0xAA) // PRA
	c.ChipWrite(0x04, 2)    // TA lo
	c.ChipWrite(0x05, 0)    // TA hi, loads immediately
	c.ChipWrite(0x0D, 0x81) // enable + raise timer A interrupt on underflow
	c.ChipWrite(0x0E, 0x09) // CRA: start, one-shot

	for i := 0; i < 3; i++ {
		c.Step(false)
	}
	if len(*history) == 0 || !(*history)[len(*history)-1] {
		t.Fatalf("setup failed to raise an interrupt before Reset")
	}

	c.Reset()

	if v := c.ChipRead(0x02).Value; v != 0 {
		t.Fatalf("DDRA after Reset = %#x, want 0", v)
	}
	if v := c.ChipRead(0x00).Value; v != 0xFF {
		t.Fatalf("port A read after Reset = %#x, want 0xff (all-input, nothing pulled low)", v)
	}
	if v := c.ChipRead(0x0D).Value; v != 0 {
		t.Fatalf("ICR read after Reset = %#x, want 0", v)
	}
	if (*history)[len(*history)-1] {
		t.Fatalf("expected the interrupt line to have been released by Reset, history=%v", *history)
	}
}

func TestCIA_declareRoundTripsThroughSnapshot(t *testing.T) {
	c, _ := newTestCIA()
	c.ChipWrite(0x00, 0xAA)
	c.ChipWrite(0x04, 7)
	c.ChipWrite(0x05, 0)
	c.ChipWrite(0x0E, 0x01)
	c.Step(false)
	c.Step(false)

	items := c.Declare()
	captured := make([][]byte, len(items))
	for i, it := range items {
		captured[i] = append([]byte(nil), it.Get()...)
	}

	c.Reset()
	for i, it := range items {
		it.Set(captured[i])
	}

	if v := c.ChipRead(0x04).Value; v != 5 {
		t.Fatalf("TA lo after Declare round trip = %d, want 5 (7 started, ticked twice)", v)
	}
}
