// Package memory implements the Game Boy's Memory Management Unit (MMU),
// the address decoder that routes every CPU-visible byte to the component
// that actually owns it: cartridge ROM/RAM through the active MBC, video
// memory gated by the PPU's current mode, and the I/O register window
// routed to the joypad, serial, timer, APU and interrupt subsystems. VRAM,
// OAM, WRAM and HRAM are stored directly in the MMU's backing array, and
// the MMU implements ppu.VRAMInterface so the PPU fetches tile/sprite data
// straight off this bus.
package memory

import (
	"fmt"

	"gameboy-emulator/internal/apu"
	"gameboy-emulator/internal/cartridge"
	"gameboy-emulator/internal/dma"
	"gameboy-emulator/internal/interrupt"
	"gameboy-emulator/internal/joypad"
	"gameboy-emulator/internal/ppu"
	"gameboy-emulator/internal/serial"
	"gameboy-emulator/internal/timer"
)

// Memory region boundaries.
const (
	ROMBank0Start = 0x0000
	ROMBank0End   = 0x3FFF
	ROMBank0Size  = ROMBank0End - ROMBank0Start + 1

	ROMBank1Start = 0x4000
	ROMBank1End   = 0x7FFF
	ROMBank1Size  = ROMBank1End - ROMBank1Start + 1

	VRAMStart = 0x8000
	VRAMEnd   = 0x9FFF
	VRAMSize  = VRAMEnd - VRAMStart + 1

	ExternalRAMStart = 0xA000
	ExternalRAMEnd   = 0xBFFF
	ExternalRAMSize  = ExternalRAMEnd - ExternalRAMStart + 1

	WRAMStart = 0xC000
	WRAMEnd   = 0xDFFF
	WRAMSize  = WRAMEnd - WRAMStart + 1

	EchoRAMStart = 0xE000
	EchoRAMEnd   = 0xFDFF

	OAMStart = 0xFE00
	OAMEnd   = 0xFE9F
	OAMSize  = OAMEnd - OAMStart + 1

	ProhibitedStart = 0xFEA0
	ProhibitedEnd   = 0xFEFF

	IORegistersStart = 0xFF00
	IORegistersEnd   = 0xFF7F
	IORegistersSize  = IORegistersEnd - IORegistersStart + 1

	HRAMStart = 0xFF80
	HRAMEnd   = 0xFFFE
	HRAMSize  = HRAMEnd - HRAMStart + 1

	InterruptEnableRegister = 0xFFFF
)

// I/O register addresses routed by the MMU to their owning subsystem.
const (
	JoypadRegister            = 0xFF00
	SerialDataRegister        = 0xFF01
	SerialControlRegister     = 0xFF02
	DividerRegister           = 0xFF04
	TimerCounterRegister      = 0xFF05
	TimerModuloRegister       = 0xFF06
	TimerControlRegister      = 0xFF07
	InterruptFlagRegister     = 0xFF0F
	LCDControlRegister        = 0xFF40
	LCDStatusRegister         = 0xFF41
	ScrollYRegister           = 0xFF42
	ScrollXRegister           = 0xFF43
	LYRegister                = 0xFF44
	LYCompareRegister         = 0xFF45
	DMARegister               = 0xFF46
	BackgroundPaletteRegister = 0xFF47
	ObjectPalette0Register    = 0xFF48
	ObjectPalette1Register    = 0xFF49
	WindowYRegister           = 0xFF4A
	WindowXRegister           = 0xFF4B
)

// MemoryInterface is the bus surface the CPU and DMA controller depend on.
type MemoryInterface interface {
	ReadByte(address uint16) uint8
	WriteByte(address uint16, value uint8)
	ReadWord(address uint16) uint16
	WriteWord(address uint16, value uint16)
}

var _ MemoryInterface = (*MMU)(nil)
var _ dma.DMAMemoryInterface = (*MMU)(nil)
var _ ppu.VRAMInterface = (*MMU)(nil)

// MMU is the Game Boy memory bus. VRAM, OAM, WRAM and HRAM live directly in
// its backing array; every other region is routed to the subsystem that
// owns it.
type MMU struct {
	mbc        cartridge.MBC
	interrupts *interrupt.InterruptController
	joypad     *joypad.Joypad
	serial     *serial.Serial
	timer      *timer.Timer
	apu        *apu.APU
	dma        *dma.DMAController
	ppu        *ppu.PPU

	memory [0x10000]uint8
}

// NewMMU wires together the core subsystems that do not depend on each
// other's address decode (cartridge, interrupts, joypad, serial, timer,
// APU, DMA). The PPU is attached afterward via SetPPU, since it is built
// after the MMU in the composition root but is needed for VRAM/OAM gating.
func NewMMU(mbc cartridge.MBC, interrupts *interrupt.InterruptController, jp *joypad.Joypad) *MMU {
	return &MMU{
		mbc:        mbc,
		interrupts: interrupts,
		joypad:     jp,
		serial:     serial.NewSerial(),
		timer:      timer.NewTimer(),
		apu:        apu.NewAPU(),
		dma:        dma.NewDMAController(),
	}
}

// SetPPU connects the MMU to the PPU for mode-gated VRAM/OAM access and LCD
// register routing. Must be called before the bus is used.
func (m *MMU) SetPPU(p *ppu.PPU) {
	m.ppu = p
}

// Timer returns the MMU's timer subsystem, for scheduler wiring.
func (m *MMU) Timer() *timer.Timer { return m.timer }

// Serial returns the MMU's serial subsystem, for scheduler wiring.
func (m *MMU) Serial() *serial.Serial { return m.serial }

// APU returns the MMU's APU, for scheduler wiring and audio output.
func (m *MMU) APU() *apu.APU { return m.apu }

// Joypad returns the MMU's joypad, for input wiring.
func (m *MMU) Joypad() *joypad.Joypad { return m.joypad }

// DMA returns the MMU's DMA controller, for scheduler wiring.
func (m *MMU) DMA() *dma.DMAController { return m.dma }

// GetDMAController is an alias for DMA, named for callers that want to poke
// at the DMA transfer directly (tests, debug tooling).
func (m *MMU) GetDMAController() *dma.DMAController { return m.dma }

// Cartridge returns the active memory bank controller, for savestate and
// battery-RAM persistence.
func (m *MMU) Cartridge() cartridge.MBC { return m.mbc }

// RawMemory returns the MMU's backing array (VRAM/OAM/WRAM/I/O shadow/HRAM),
// for save states. The cartridge ROM/RAM window is routed through the MBC
// and is not part of this array.
func (m *MMU) RawMemory() [0x10000]uint8 { return m.memory }

// RestoreRawMemory replaces the MMU's backing array wholesale.
func (m *MMU) RestoreRawMemory(data [0x10000]uint8) { m.memory = data }

// IsDMAActive reports whether a DMA transfer is in progress.
func (m *MMU) IsDMAActive() bool { return m.dma.IsActive() }

// TickDMA advances the DMA transfer by tCycles T-cycles. The scheduler
// calls this every tick so OAM fills in over its real 640 T-cycle window
// even while the CPU keeps running (gated to HRAM-only by ReadByte/WriteByte).
func (m *MMU) TickDMA(tCycles uint16) {
	m.dma.Update(tCycles, dmaBus{m})
}

// dmaBus lets the DMA controller read its source bytes and write OAM
// through the real address decode without tripping the CPU-facing
// HRAM-only gate that DMA itself imposes on ReadByte/WriteByte.
type dmaBus struct{ m *MMU }

func (d dmaBus) ReadByte(address uint16) uint8         { return d.m.busRead(address) }
func (d dmaBus) WriteByte(address uint16, value uint8)  { d.m.busWrite(address, value) }
func (d dmaBus) WriteByteForDMA(address uint16, value uint8) { d.m.WriteByteForDMA(address, value) }

// ReadByte reads a byte as seen by the CPU: during an active DMA transfer,
// everything outside HRAM reads as 0xFF.
func (m *MMU) ReadByte(address uint16) uint8 {
	if !m.dma.CanCPUAccessMemory(address) {
		return 0xFF
	}
	return m.busRead(address)
}

// WriteByte writes a byte as seen by the CPU: during an active DMA
// transfer, writes outside HRAM are dropped.
func (m *MMU) WriteByte(address uint16, value uint8) {
	if !m.dma.CanCPUAccessMemory(address) {
		return
	}
	m.busWrite(address, value)
}

// WriteByteForDMA writes directly into OAM, bypassing the PPU mode gate
// that blocks CPU writes: the DMA transfer is itself the mechanism that
// populates OAM and is never blocked by the PPU's own mode.
func (m *MMU) WriteByteForDMA(address uint16, value uint8) {
	if address >= OAMStart && address <= OAMEnd {
		m.memory[address] = value
	}
}

// ReadVRAM/WriteVRAM/ReadOAM/WriteOAM implement ppu.VRAMInterface: the PPU's
// renderers fetch tile, map and sprite data straight off the bus, unaffected
// by the CPU-side mode gating applied in ReadByte/WriteByte.
func (m *MMU) ReadVRAM(address uint16) uint8      { return m.memory[address] }
func (m *MMU) WriteVRAM(address uint16, v uint8)  { m.memory[address] = v }
func (m *MMU) ReadOAM(address uint16) uint8       { return m.memory[address] }
func (m *MMU) WriteOAM(address uint16, v uint8)   { m.memory[address] = v }

// canAccessVRAM reports whether the CPU may currently read/write VRAM:
// blocked only during Mode 3 (Drawing) while the LCD is on.
func (m *MMU) canAccessVRAM() bool {
	if m.ppu == nil || !m.ppu.IsLCDEnabled() {
		return true
	}
	return m.ppu.GetCurrentMode() != ppu.ModeDrawing
}

// canAccessOAM reports whether the CPU may currently read/write OAM:
// blocked during Mode 2 (OAM Scan) and Mode 3 (Drawing) while the LCD is on.
func (m *MMU) canAccessOAM() bool {
	if m.ppu == nil || !m.ppu.IsLCDEnabled() {
		return true
	}
	mode := m.ppu.GetCurrentMode()
	return mode != ppu.ModeOAMScan && mode != ppu.ModeDrawing
}

// busRead performs the full address decode without any DMA gating; used
// internally and by the DMA controller's own source reads.
func (m *MMU) busRead(address uint16) uint8 {
	switch {
	case address <= ROMBank1End:
		return m.mbc.ReadByte(address)

	case address >= VRAMStart && address <= VRAMEnd:
		if !m.canAccessVRAM() {
			return 0xFF
		}
		return m.memory[address]

	case address >= ExternalRAMStart && address <= ExternalRAMEnd:
		return m.mbc.ReadByte(address)

	case address >= WRAMStart && address <= WRAMEnd:
		return m.memory[address]

	case address >= EchoRAMStart && address <= EchoRAMEnd:
		return m.memory[address-(EchoRAMStart-WRAMStart)]

	case address >= OAMStart && address <= OAMEnd:
		if !m.canAccessOAM() {
			return 0xFF
		}
		return m.memory[address]

	case address >= ProhibitedStart && address <= ProhibitedEnd:
		return 0xFF

	case address >= IORegistersStart && address <= IORegistersEnd:
		return m.readIO(address)

	case address >= HRAMStart && address <= HRAMEnd:
		return m.memory[address]

	case address == InterruptEnableRegister:
		return m.interrupts.IE

	default:
		return 0xFF
	}
}

func (m *MMU) busWrite(address uint16, value uint8) {
	switch {
	case address <= ROMBank1End:
		m.mbc.WriteByte(address, value)

	case address >= VRAMStart && address <= VRAMEnd:
		if !m.canAccessVRAM() {
			return
		}
		m.memory[address] = value

	case address >= ExternalRAMStart && address <= ExternalRAMEnd:
		m.mbc.WriteByte(address, value)

	case address >= WRAMStart && address <= WRAMEnd:
		m.memory[address] = value

	case address >= EchoRAMStart && address <= EchoRAMEnd:
		m.memory[address-(EchoRAMStart-WRAMStart)] = value

	case address >= OAMStart && address <= OAMEnd:
		if !m.canAccessOAM() {
			return
		}
		m.memory[address] = value

	case address >= ProhibitedStart && address <= ProhibitedEnd:
		// Unusable region: writes are dropped.

	case address >= IORegistersStart && address <= IORegistersEnd:
		m.writeIO(address, value)

	case address >= HRAMStart && address <= HRAMEnd:
		m.memory[address] = value

	case address == InterruptEnableRegister:
		m.interrupts.IE = value & interrupt.ValidInterruptMask
	}
}

func (m *MMU) readIO(address uint16) uint8 {
	switch {
	case joypad.IsJoypadRegister(address):
		return m.joypad.ReadRegister(address)
	case serial.IsSerialRegister(address):
		return m.serial.ReadRegister(address)
	case timer.IsTimerRegister(address):
		return m.timer.ReadRegister(address)
	case address == InterruptFlagRegister:
		return m.interrupts.IF | 0xE0
	case address >= 0xFF10 && address <= 0xFF3F:
		return m.apu.ReadByte(address)
	case m.ppu == nil:
		return 0xFF
	case address == LCDControlRegister:
		return m.ppu.GetLCDC()
	case address == LCDStatusRegister:
		return m.ppu.GetSTAT() | 0x80
	case address == ScrollYRegister:
		return m.ppu.GetSCY()
	case address == ScrollXRegister:
		return m.ppu.GetSCX()
	case address == LYRegister:
		return m.ppu.GetLY()
	case address == LYCompareRegister:
		return m.ppu.GetLYC()
	case address == DMARegister:
		return uint8(m.dma.GetSourceAddress() >> 8)
	case address == BackgroundPaletteRegister:
		return m.ppu.GetBGP()
	case address == ObjectPalette0Register:
		return m.ppu.GetOBP0()
	case address == ObjectPalette1Register:
		return m.ppu.GetOBP1()
	case address == WindowYRegister:
		return m.ppu.GetWY()
	case address == WindowXRegister:
		return m.ppu.GetWX()
	default:
		return 0xFF
	}
}

func (m *MMU) writeIO(address uint16, value uint8) {
	switch {
	case joypad.IsJoypadRegister(address):
		m.joypad.WriteRegister(address, value)
	case serial.IsSerialRegister(address):
		m.serial.WriteRegister(address, value)
	case timer.IsTimerRegister(address):
		m.timer.WriteRegister(address, value)
	case address == InterruptFlagRegister:
		m.interrupts.IF = value & interrupt.ValidInterruptMask
	case address >= 0xFF10 && address <= 0xFF3F:
		m.apu.WriteByte(address, value)
	case address == DMARegister:
		m.dma.StartTransfer(value)
	case m.ppu == nil:
		return
	case address == LCDControlRegister:
		m.ppu.SetLCDC(value)
	case address == LCDStatusRegister:
		if m.ppu.SetSTAT(value) {
			m.interrupts.RequestInterrupt(interrupt.InterruptLCDStat)
		}
	case address == ScrollYRegister:
		m.ppu.SetSCY(value)
	case address == ScrollXRegister:
		m.ppu.SetSCX(value)
	case address == LYRegister:
		// LY is read-only; writes are ignored.
	case address == LYCompareRegister:
		m.ppu.SetLYC(value)
	case address == BackgroundPaletteRegister:
		m.ppu.SetBGP(value)
	case address == ObjectPalette0Register:
		m.ppu.SetOBP0(value)
	case address == ObjectPalette1Register:
		m.ppu.SetOBP1(value)
	case address == WindowYRegister:
		m.ppu.SetWY(value)
	case address == WindowXRegister:
		m.ppu.SetWX(value)
	}
}

// ReadWord reads a little-endian 16-bit value.
func (m *MMU) ReadWord(address uint16) uint16 {
	lo := uint16(m.ReadByte(address))
	hi := uint16(m.ReadByte(address + 1))
	return lo | (hi << 8)
}

// WriteWord writes a little-endian 16-bit value.
func (m *MMU) WriteWord(address uint16, value uint16) {
	m.WriteByte(address, uint8(value&0xFF))
	m.WriteByte(address+1, uint8(value>>8))
}

// isValidAddress reports whether address falls within the 16-bit address
// space; kept for the debug tooling's range checks, since every uint16 is
// trivially in range.
func (m *MMU) isValidAddress(address uint16) bool {
	return address <= 0xFFFF
}

// getMemoryRegion classifies an address for debugging/logging purposes.
func (m *MMU) getMemoryRegion(address uint16) string {
	switch {
	case address <= ROMBank0End:
		return "ROM Bank 0"
	case address <= ROMBank1End:
		return "ROM Bank 1+"
	case address <= VRAMEnd:
		return "VRAM"
	case address <= ExternalRAMEnd:
		return "External RAM"
	case address <= WRAMEnd:
		return "WRAM"
	case address <= EchoRAMEnd:
		return "Echo RAM"
	case address <= OAMEnd:
		return "OAM"
	case address <= ProhibitedEnd:
		return "Prohibited"
	case address <= IORegistersEnd:
		return "I/O Registers"
	case address <= HRAMEnd:
		return "HRAM"
	case address == InterruptEnableRegister:
		return "Interrupt Enable"
	default:
		return "Unknown"
	}
}

// String returns a short debug summary of bus state.
func (m *MMU) String() string {
	return fmt.Sprintf("MMU{DMA active: %t}", m.dma.IsActive())
}
