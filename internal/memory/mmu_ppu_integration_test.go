package memory

import (
	"testing"

	"gameboy-emulator/internal/ppu"

	"github.com/stretchr/testify/assert"
)

func newTestMMUWithPPU() (*MMU, *ppu.PPU) {
	mmu := newTestMMU()
	p := ppu.NewPPU()
	p.SetVRAMInterface(mmu)
	mmu.SetPPU(p)
	return mmu, p
}

func TestMMU_VRAMAccessibleOutsideMode3(t *testing.T) {
	mmu, p := newTestMMUWithPPU()
	p.Mode = ppu.ModeHBlank

	mmu.WriteByte(0x8000, 0x3C)
	assert.Equal(t, uint8(0x3C), mmu.ReadByte(0x8000))
}

func TestMMU_VRAMBlockedDuringMode3(t *testing.T) {
	mmu, p := newTestMMUWithPPU()
	mmu.WriteVRAM(0x8000, 0x3C)
	p.Mode = ppu.ModeDrawing

	assert.Equal(t, uint8(0xFF), mmu.ReadByte(0x8000), "VRAM reads as 0xFF while the PPU is drawing")
	mmu.WriteByte(0x8000, 0xFF)
	assert.Equal(t, uint8(0x3C), mmu.ReadVRAM(0x8000), "writes are dropped during Mode 3")
}

func TestMMU_OAMBlockedDuringScanAndDrawing(t *testing.T) {
	mmu, p := newTestMMUWithPPU()

	p.Mode = ppu.ModeOAMScan
	assert.Equal(t, uint8(0xFF), mmu.ReadByte(0xFE00))

	p.Mode = ppu.ModeDrawing
	assert.Equal(t, uint8(0xFF), mmu.ReadByte(0xFE00))

	p.Mode = ppu.ModeVBlank
	mmu.WriteByte(0xFE00, 0x10)
	assert.Equal(t, uint8(0x10), mmu.ReadByte(0xFE00), "OAM is accessible during V-Blank")
}

func TestMMU_VRAMAlwaysAccessibleWhenLCDDisabled(t *testing.T) {
	mmu, p := newTestMMUWithPPU()
	p.SetLCDC(0x00) // LCD off
	p.Mode = ppu.ModeDrawing

	mmu.WriteByte(0x8500, 0x7E)
	assert.Equal(t, uint8(0x7E), mmu.ReadByte(0x8500))
}

func TestMMU_PPURegisterRouting(t *testing.T) {
	mmu, _ := newTestMMUWithPPU()

	mmu.WriteByte(LCDControlRegister, 0x80)
	assert.Equal(t, uint8(0x80), mmu.ReadByte(LCDControlRegister))

	mmu.WriteByte(ScrollXRegister, 7)
	mmu.WriteByte(ScrollYRegister, 9)
	assert.Equal(t, uint8(7), mmu.ReadByte(ScrollXRegister))
	assert.Equal(t, uint8(9), mmu.ReadByte(ScrollYRegister))

	mmu.WriteByte(LYCompareRegister, 42)
	assert.Equal(t, uint8(42), mmu.ReadByte(LYCompareRegister))

	assert.Equal(t, uint8(0x00), mmu.ReadByte(LYRegister), "LY starts at 0")
}
