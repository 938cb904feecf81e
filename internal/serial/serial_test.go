package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSerial(t *testing.T) {
	s := NewSerial()

	assert.Equal(t, uint8(0), s.SB)
	assert.Equal(t, uint8(0), s.SC)
	assert.False(t, s.HasSerialInterrupt())
}

func TestWriteSCStartsInternalTransfer(t *testing.T) {
	s := NewSerial()

	s.WriteSC(0x81) // bit 7 (start) + bit 0 (internal clock)
	assert.Equal(t, uint8(0xFD), s.ReadSC(), "start bit, clock-source bit, and unused bits should all read 1")
}

// TestInternalTransferCompletesAfter4096Cycles checks the normal-speed
// 8-bit transfer duration and the no-peer fallback byte.
func TestInternalTransferCompletesAfter4096Cycles(t *testing.T) {
	s := NewSerial()
	s.SB = 0x42
	s.WriteSC(0x81)

	s.Update(4095)
	assert.True(t, s.ReadSC()&scTransferStartBit != 0, "transfer should still be in progress")
	assert.False(t, s.HasSerialInterrupt())

	s.Update(1)
	assert.False(t, s.ReadSC()&scTransferStartBit != 0, "transfer should be complete")
	assert.True(t, s.HasSerialInterrupt())
	assert.Equal(t, uint8(NoPeerByte), s.SB, "no peer attached: SB receives 0xFF")
}

// TestFastInternalTransferCompletesAfter256Cycles checks that the "fast"
// clock speed bit shortens the 4096-cycle transfer to 256.
func TestFastInternalTransferCompletesAfter256Cycles(t *testing.T) {
	s := NewSerial()
	s.WriteSC(0x83) // start + fast clock + internal clock

	s.Update(255)
	assert.True(t, s.ReadSC()&scTransferStartBit != 0)

	s.Update(1)
	assert.False(t, s.ReadSC()&scTransferStartBit != 0)
	assert.True(t, s.HasSerialInterrupt())
}

type stubPeer struct {
	reply uint8
	sent  uint8
}

func (p *stubPeer) ExchangeByte(out uint8) uint8 {
	p.sent = out
	return p.reply
}

func TestInternalTransferExchangesWithPeer(t *testing.T) {
	s := NewSerial()
	peer := &stubPeer{reply: 0x55}
	s.Peer = peer
	s.SB = 0xAA

	s.WriteSC(0x81)
	s.Update(4096)

	assert.Equal(t, uint8(0xAA), peer.sent, "the outgoing byte should reach the peer")
	assert.Equal(t, uint8(0x55), s.SB, "SB should receive the peer's reply")
}

// TestExternalClockNeverCompletesWithoutPeer checks that an external-clock
// transfer sits active forever absent some other driver.
func TestExternalClockNeverCompletesWithoutPeer(t *testing.T) {
	s := NewSerial()
	s.WriteSC(0x80) // start, but clock-source bit clear (external)

	for i := 0; i < 25; i++ {
		s.Update(4000) // 100000 T-cycles in all
	}

	assert.True(t, s.ReadSC()&scTransferStartBit != 0, "external-clock transfer never completes on its own")
	assert.False(t, s.HasSerialInterrupt())
}

func TestClearSerialInterrupt(t *testing.T) {
	s := NewSerial()
	s.WriteSC(0x81)
	s.Update(4096)
	assert.True(t, s.HasSerialInterrupt())

	s.ClearSerialInterrupt()
	assert.False(t, s.HasSerialInterrupt())
}

func TestIsSerialRegister(t *testing.T) {
	assert.True(t, IsSerialRegister(SB_ADDR))
	assert.True(t, IsSerialRegister(SC_ADDR))
	assert.False(t, IsSerialRegister(0xFF03))
}

func TestReadRegisterWriteRegister(t *testing.T) {
	s := NewSerial()

	s.WriteRegister(SB_ADDR, 0x77)
	assert.Equal(t, uint8(0x77), s.ReadRegister(SB_ADDR))

	s.WriteRegister(SC_ADDR, 0x81)
	assert.True(t, s.ReadRegister(SC_ADDR)&scTransferStartBit != 0)

	assert.Equal(t, uint8(0xFF), s.ReadRegister(0xFF03))
}

func TestReset(t *testing.T) {
	s := NewSerial()
	s.WriteSC(0x81)
	s.SB = 0x12

	s.Reset()

	assert.Equal(t, uint8(0), s.SB)
	assert.Equal(t, uint8(0), s.SC)
	assert.False(t, s.HasSerialInterrupt())
}
