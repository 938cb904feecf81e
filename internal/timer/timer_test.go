package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// advance runs the timer for n T-cycles; Update takes at most 255 per call.
func advance(tm *Timer, n int) {
	for ; n > 255; n -= 255 {
		tm.Update(255)
	}
	tm.Update(uint8(n))
}

func TestNewTimer(t *testing.T) {
	tm := NewTimer()

	assert.Equal(t, uint8(0), tm.ReadDIV())
	assert.Equal(t, uint8(0), tm.TIMA)
	assert.Equal(t, uint8(0), tm.TMA)
	assert.Equal(t, uint8(0), tm.TAC)
	assert.False(t, tm.HasTimerInterrupt())
}

// TestDIVIncrementsEvery256Cycles checks DIV (counter bits 8-15) advances
// once per 256 T-cycles.
func TestDIVIncrementsEvery256Cycles(t *testing.T) {
	tm := NewTimer()

	tm.Update(255)
	assert.Equal(t, uint8(0), tm.ReadDIV())

	tm.Update(1)
	assert.Equal(t, uint8(1), tm.ReadDIV())
}

func TestWriteDIVResetsCounter(t *testing.T) {
	tm := NewTimer()
	advance(tm, 1000)
	assert.NotEqual(t, uint8(0), tm.ReadDIV())

	tm.WriteDIV(0x99) // the written value is irrelevant; any write resets to 0
	assert.Equal(t, uint8(0), tm.ReadDIV())
}

// TestTimerOverflowWithDelayedReload checks the delayed reload: with
// TAC=0x05 (enabled, clock select 01 -> bit 3, period 16), TIMA increments
// every 16 T-cycles, and on overflow TIMA becomes TMA after 4 more T-cycles,
// setting the timer interrupt exactly once.
func TestTimerOverflowWithDelayedReload(t *testing.T) {
	tm := NewTimer()
	tm.WriteTAC(0x05)
	tm.WriteTMA(0x10)
	tm.TIMA = 0xFF

	tm.Update(16) // falling edge -> TIMA 0xFF -> 0x00, reload scheduled
	assert.Equal(t, uint8(0x00), tm.TIMA)
	assert.False(t, tm.HasTimerInterrupt(), "interrupt is delayed, not immediate")

	tm.Update(3)
	assert.Equal(t, uint8(0x00), tm.TIMA, "reload is still pending after 3 of 4 cycles")
	assert.False(t, tm.HasTimerInterrupt())

	tm.Update(1)
	assert.Equal(t, uint8(0x10), tm.TIMA, "TIMA reloads from TMA 4 T-cycles after overflow")
	assert.True(t, tm.HasTimerInterrupt())

	tm.ClearTimerInterrupt()
	assert.False(t, tm.HasTimerInterrupt())
}

// TestTimerDisabledDoesNotIncrement checks TAC's enable bit gates TIMA.
func TestTimerDisabledDoesNotIncrement(t *testing.T) {
	tm := NewTimer()
	tm.WriteTAC(0x01) // clock select set, enable bit clear

	advance(tm, 10000)
	assert.Equal(t, uint8(0), tm.TIMA)
}

// TestClockSelectFrequencies checks each of the four TAC clock selects
// increments TIMA at its documented period.
func TestClockSelectFrequencies(t *testing.T) {
	cases := []struct {
		tac    uint8
		period uint16
	}{
		{0x04, 1024}, // bit 9
		{0x05, 16},   // bit 3
		{0x06, 64},   // bit 5
		{0x07, 256},  // bit 7
	}

	for _, tc := range cases {
		tm := NewTimer()
		tm.WriteTAC(tc.tac)

		advance(tm, int(tc.period)-1)
		assert.Equal(t, uint8(0), tm.TIMA, "TAC=0x%02X should not yet have incremented", tc.tac)

		tm.Update(1)
		assert.Equal(t, uint8(1), tm.TIMA, "TAC=0x%02X should increment after its full period", tc.tac)
	}
}

// TestWriteTIMADuringReloadWindowCancelsReload checks that a software write
// to TIMA during the 4-cycle delay wins over the scheduled TMA copy.
func TestWriteTIMADuringReloadWindowCancelsReload(t *testing.T) {
	tm := NewTimer()
	tm.WriteTAC(0x05)
	tm.WriteTMA(0x20)
	tm.TIMA = 0xFF

	tm.Update(16) // overflow, reload scheduled
	tm.WriteTIMA(0x55)

	tm.Update(4)
	assert.Equal(t, uint8(0x55), tm.TIMA, "the software write should stick, not the TMA reload")
	assert.False(t, tm.HasTimerInterrupt())
}

func TestIsTimerRegister(t *testing.T) {
	assert.True(t, IsTimerRegister(DIV_ADDR))
	assert.True(t, IsTimerRegister(TAC_ADDR))
	assert.False(t, IsTimerRegister(0xFF08))
	assert.False(t, IsTimerRegister(0xFF03))
}

func TestReadTACMasksUnusedBits(t *testing.T) {
	tm := NewTimer()
	tm.WriteTAC(0x05)
	assert.Equal(t, uint8(0xFD), tm.ReadTAC())
}

func TestReset(t *testing.T) {
	tm := NewTimer()
	tm.WriteTAC(0x05)
	advance(tm, 1000)
	tm.TIMA = 0xAB

	tm.Reset()

	assert.Equal(t, uint8(0), tm.ReadDIV())
	assert.Equal(t, uint8(0), tm.TIMA)
	assert.Equal(t, uint8(0), tm.TAC)
}
