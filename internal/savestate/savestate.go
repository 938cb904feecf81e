// Package savestate serializes and restores a complete emulator snapshot:
// CPU registers/flags, the MMU's backing memory plus its timer/DMA/serial/
// joypad subsystems, the PPU's registers and mode state, the APU's four
// channels and frame sequencer, and the cartridge's RAM and bank-select
// state. The blob is a fixed, versioned binary layout built on
// encoding/binary.
package savestate

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"gameboy-emulator/internal/apu"
	"gameboy-emulator/internal/cpu"
	"gameboy-emulator/internal/dma"
	"gameboy-emulator/internal/joypad"
	"gameboy-emulator/internal/memory"
	"gameboy-emulator/internal/ppu"
	"gameboy-emulator/internal/serial"
	"gameboy-emulator/internal/timer"
)

// Magic identifies a blob produced by this package. Version changes any
// time the fixed layout below changes shape.
const (
	Magic   uint32 = 0x444D4753 // "DMGS"
	Version uint32 = 1
)

// ErrCorrupt is returned when a blob's magic or version does not match,
// or the blob is too short to contain a complete state; load aborts and
// the running state is left untouched.
var ErrCorrupt = fmt.Errorf("savestate: magic or version mismatch, or truncated data")

// fixed is the portion of the state with no variable-length fields: every
// field is exported and fixed-size, so encoding/binary can read and write
// the whole thing in one call.
type fixed struct {
	Magic   uint32
	Version uint32

	CPU    cpu.Snapshot
	Memory [0x10000]uint8
	Timer  timer.Snapshot
	DMA    dma.DMAController
	Serial serial.Snapshot
	Joypad joypad.Snapshot
	PPU    ppu.Snapshot
	APU    apu.Snapshot

	CartridgeRAMLen   uint32
	CartridgeBankLen  uint32
}

// Save captures a complete, self-contained snapshot of the running machine.
func Save(c *cpu.CPU, m *memory.MMU, p *ppu.PPU) ([]byte, error) {
	cartRAM := m.Cartridge().RAM()
	bankState := m.Cartridge().BankState()

	f := fixed{
		Magic:   Magic,
		Version: Version,
		CPU:     c.Snapshot(),
		Memory:  m.RawMemory(),
		Timer:   m.Timer().Snapshot(),
		DMA:     *m.DMA(),
		Serial:  m.Serial().Snapshot(),
		Joypad:  m.Joypad().Snapshot(),
		PPU:     p.Snapshot(),
		APU:     m.APU().Snapshot(),

		CartridgeRAMLen:  uint32(len(cartRAM)),
		CartridgeBankLen: uint32(len(bankState)),
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, f); err != nil {
		return nil, fmt.Errorf("savestate: encode fixed section: %w", err)
	}
	buf.Write(cartRAM)
	buf.Write(bankState)
	return buf.Bytes(), nil
}

// Load restores a snapshot previously produced by Save into c/m/p. On
// error (corrupt magic/version/length), the emulator's state is left
// unchanged.
func Load(data []byte, c *cpu.CPU, m *memory.MMU, p *ppu.PPU) error {
	r := bytes.NewReader(data)

	var f fixed
	if err := binary.Read(r, binary.BigEndian, &f); err != nil {
		return ErrCorrupt
	}
	if f.Magic != Magic || f.Version != Version {
		return ErrCorrupt
	}

	ramLen, bankLen := int(f.CartridgeRAMLen), int(f.CartridgeBankLen)
	rest := data[len(data)-r.Len():]
	if len(rest) != ramLen+bankLen {
		return ErrCorrupt
	}
	cartRAM := rest[:ramLen]
	bankState := rest[ramLen:]

	existingRAM := m.Cartridge().RAM()
	if len(existingRAM) != len(cartRAM) {
		return fmt.Errorf("savestate: cartridge RAM size mismatch (have %d, blob has %d)",
			len(existingRAM), len(cartRAM))
	}
	if err := m.Cartridge().RestoreBankState(bankState); err != nil {
		return fmt.Errorf("savestate: %w", err)
	}
	copy(existingRAM, cartRAM)

	c.Restore(f.CPU)
	m.RestoreRawMemory(f.Memory)
	m.Timer().Restore(f.Timer)
	*m.DMA() = f.DMA
	m.Serial().Restore(f.Serial)
	m.Joypad().Restore(f.Joypad)
	p.Restore(f.PPU)
	m.APU().Restore(f.APU)
	return nil
}
