// Package serial implements the Game Boy's serial (link cable) port: the
// SB data register and SC control register, and the bit-transfer timing of
// an internal-clock transfer.
package serial

const (
	SB_ADDR = 0xFF01 // Serial transfer data
	SC_ADDR = 0xFF02 // Serial transfer control

	scTransferStartBit = 0x80 // Bit 7: transfer start flag
	scClockSpeedBit    = 0x02 // Bit 1: clock speed (1 = fast, 256 T-cycle transfer)
	scClockSourceBit   = 0x01 // Bit 0: clock source (1 = internal)

	scUnusedBits = 0x7C // Bits 6-2 always read back as 1

	// bitsPerTransfer is the number of bits exchanged per SC-triggered
	// transfer (one byte, shifted out MSB-first).
	bitsPerTransfer = 8

	// normalCyclesPerBit/fastCyclesPerBit are the per-bit T-cycle costs for
	// an internal-clock transfer: the 4096 T-cycle (256 in "fast" mode)
	// 8-bit transfer works out to 512 (or 32) T-cycles per bit.
	normalCyclesPerBit = 512
	fastCyclesPerBit   = 32

	// NoPeerByte is shifted into SB when an internal-clock transfer
	// completes with no link partner attached.
	NoPeerByte = 0xFF
)

// Peer is an external link-cable partner. ExchangeByte returns the byte the
// peer shifts back in response to the given outgoing byte.
type Peer interface {
	ExchangeByte(out uint8) uint8
}

// Serial implements the SB/SC registers and an internal-clock transfer
// countdown, shaped like dma.DMAController: a register-write starts a
// transfer, and Update(cycles) advances a counter that completes it.
type Serial struct {
	SB uint8 // serial transfer data
	SC uint8 // serial transfer control

	transferActive     bool
	fastClock          bool
	bitsRemaining      uint8
	cyclesUntilNextBit uint16

	Peer Peer // nil when no link partner is attached

	serialInterrupt bool
}

// NewSerial creates a new serial port with Game Boy initial state.
func NewSerial() *Serial {
	return &Serial{}
}

// Reset resets the serial port to initial Game Boy state.
func (s *Serial) Reset() {
	*s = Serial{Peer: s.Peer}
}

// Snapshot is the serial port's register and transfer-timing state for a
// save state. The link partner (Peer), if any, is a runtime collaborator
// and is not part of the snapshot.
type Snapshot struct {
	SB, SC             uint8
	TransferActive     bool
	FastClock          bool
	BitsRemaining      uint8
	CyclesUntilNextBit uint16
	SerialInterrupt    bool
}

func (s *Serial) Snapshot() Snapshot {
	return Snapshot{
		SB: s.SB, SC: s.SC,
		TransferActive:     s.transferActive,
		FastClock:          s.fastClock,
		BitsRemaining:      s.bitsRemaining,
		CyclesUntilNextBit: s.cyclesUntilNextBit,
		SerialInterrupt:    s.serialInterrupt,
	}
}

func (s *Serial) Restore(snap Snapshot) {
	s.SB, s.SC = snap.SB, snap.SC
	s.transferActive = snap.TransferActive
	s.fastClock = snap.FastClock
	s.bitsRemaining = snap.BitsRemaining
	s.cyclesUntilNextBit = snap.CyclesUntilNextBit
	s.serialInterrupt = snap.SerialInterrupt
}

// HasSerialInterrupt returns true if a serial interrupt is pending.
func (s *Serial) HasSerialInterrupt() bool {
	return s.serialInterrupt
}

// ClearSerialInterrupt clears the pending serial interrupt.
func (s *Serial) ClearSerialInterrupt() {
	s.serialInterrupt = false
}

// ReadSB returns the serial data register.
func (s *Serial) ReadSB() uint8 { return s.SB }

// WriteSB sets the serial data register. Writing during an active transfer
// does not interrupt it; real hardware keeps shifting the in-flight byte.
func (s *Serial) WriteSB(value uint8) { s.SB = value }

// ReadSC returns the serial control register, with the transfer-start bit
// reflecting whether a transfer is still in progress.
func (s *Serial) ReadSC() uint8 {
	result := scUnusedBits
	if s.transferActive {
		result |= scTransferStartBit
	}
	if s.fastClock {
		result |= scClockSpeedBit
	}
	if s.SC&scClockSourceBit != 0 {
		result |= scClockSourceBit
	}
	return uint8(result)
}

// WriteSC updates the serial control register. Setting both the transfer
// and internal-clock bits (bits 7 and 0) starts a new 8-bit transfer; an
// external-clock transfer (bit 0 clear) is recorded as active but never
// advances on its own, since nothing drives its clock without a peer.
func (s *Serial) WriteSC(value uint8) {
	s.SC = value
	s.fastClock = value&scClockSpeedBit != 0

	if value&scTransferStartBit == 0 {
		return
	}

	s.transferActive = true
	s.bitsRemaining = bitsPerTransfer

	if value&scClockSourceBit != 0 {
		s.cyclesUntilNextBit = s.cyclesPerBit()
	}
}

func (s *Serial) cyclesPerBit() uint16 {
	if s.fastClock {
		return fastCyclesPerBit
	}
	return normalCyclesPerBit
}

// Update advances the serial port by the given number of T-cycles. Only an
// internal-clock transfer (SC bit 0 set) progresses on its own; an
// external-clock transfer sits active until WriteSC is called again or a
// peer is wired in through some other path; external-clock transfers never
// complete without a peer.
func (s *Serial) Update(cycles uint16) {
	if !s.transferActive || s.SC&scClockSourceBit == 0 {
		return
	}

	remaining := cycles
	for remaining > 0 && s.bitsRemaining > 0 {
		if s.cyclesUntilNextBit > remaining {
			s.cyclesUntilNextBit -= remaining
			return
		}
		remaining -= s.cyclesUntilNextBit
		s.bitsRemaining--
		if s.bitsRemaining > 0 {
			s.cyclesUntilNextBit = s.cyclesPerBit()
		}
	}

	if s.bitsRemaining == 0 {
		s.completeTransfer()
	}
}

func (s *Serial) completeTransfer() {
	outgoing := s.SB
	if s.Peer != nil {
		s.SB = s.Peer.ExchangeByte(outgoing)
	} else {
		s.SB = NoPeerByte
	}
	s.transferActive = false
	s.SC &^= scTransferStartBit
	s.serialInterrupt = true
}

// ReadRegister reads from a serial register at the specified address.
func (s *Serial) ReadRegister(address uint16) uint8 {
	switch address {
	case SB_ADDR:
		return s.ReadSB()
	case SC_ADDR:
		return s.ReadSC()
	default:
		return 0xFF
	}
}

// WriteRegister writes to a serial register at the specified address.
func (s *Serial) WriteRegister(address uint16, value uint8) {
	switch address {
	case SB_ADDR:
		s.WriteSB(value)
	case SC_ADDR:
		s.WriteSC(value)
	}
}

// IsSerialRegister returns true if the address is SB or SC.
func IsSerialRegister(address uint16) bool {
	return address == SB_ADDR || address == SC_ADDR
}
