// Package dma implements the Game Boy Direct Memory Access (DMA) controller
// for transferring sprite data from memory to OAM (Object Attribute Memory).
//
// The Game Boy DMA system allows for efficient bulk transfer of 160 bytes
// (40 sprites × 4 bytes each) from any memory location to the OAM area
// (0xFE00-0xFE9F) while restricting CPU memory access to HRAM during the
// transfer.
package dma

// MemoryInterface defines the memory operations needed by the DMA controller.
// This prevents circular import issues between dma and memory packages.
type MemoryInterface interface {
	ReadByte(address uint16) uint8
	WriteByte(address uint16, value uint8)
}

// DMAMemoryInterface extends MemoryInterface with DMA-specific methods.
// This allows DMA to bypass PPU mode restrictions when writing to VRAM/OAM.
type DMAMemoryInterface interface {
	MemoryInterface
	WriteByteForDMA(address uint16, value uint8)
}

const (
	DMARegister = 0xFF46 // DMA transfer register

	OAMStartAddress = 0xFE00 // Start of OAM memory
	OAMSize         = 160    // Total bytes in OAM (40 sprites × 4 bytes)

	// CyclesPerByte is the T-cycle cost of transferring one byte: the
	// 640 T-cycle transfer divided across 160 bytes.
	CyclesPerByte = 4
	// TotalTransferCycles is the full 640 T-cycle transfer duration.
	TotalTransferCycles = OAMSize * CyclesPerByte

	HRAMStartAddress = 0xFF80 // Start of High RAM (accessible during DMA)
	HRAMEndAddress   = 0xFFFE // End of High RAM

	// echoMirrorBase/echoMirrorShift bound the source-mirroring window:
	// any source page at or above 0xE000 is mirrored down by 0x2000 before
	// the read, matching the real hardware's incomplete address decode.
	echoMirrorBase  = 0xE000
	echoMirrorShift = 0x2000
)

// DMAController manages Direct Memory Access transfers for sprite data.
// During a DMA transfer, the CPU can only access HRAM (0xFF80-0xFFFE) while
// the DMA controller copies 160 bytes from the source address to OAM over
// 640 T-cycles.
type DMAController struct {
	Active           bool   // True if DMA transfer is currently in progress
	SourceAddress    uint16 // Current source address being read from
	CurrentOAMOffset uint8  // Current offset in OAM (0-159)
	CyclesRemaining  uint16 // T-cycles remaining until next byte transfer
}

// NewDMAController creates a new DMA controller in idle state.
func NewDMAController() *DMAController {
	return &DMAController{}
}

// StartTransfer initiates a DMA transfer from the specified source page.
// The sourceHigh parameter is the high byte of the source address
// (e.g., 0xC1 means transfer from 0xC100-0xC19F to OAM 0xFE00-0xFE9F).
//
// This is called when the CPU writes to the DMA register (0xFF46).
func (dma *DMAController) StartTransfer(sourceHigh uint8) {
	dma.Active = true
	dma.SourceAddress = uint16(sourceHigh) << 8
	dma.CurrentOAMOffset = 0
	dma.CyclesRemaining = CyclesPerByte
}

// sourceRead resolves the mirrored source address (sources at or above
// 0xE000 mirror down by 0x2000) and reads through the normal bus.
func sourceRead(mmu MemoryInterface, addr uint16) uint8 {
	if addr >= echoMirrorBase {
		addr -= echoMirrorShift
	}
	return mmu.ReadByte(addr)
}

// Update advances the DMA transfer by the specified number of T-cycles.
// Returns true if the transfer completed during this call.
func (dma *DMAController) Update(tCycles uint16, mmu MemoryInterface) bool {
	if !dma.Active {
		return false
	}

	remaining := tCycles
	for remaining > 0 && dma.CurrentOAMOffset < OAMSize {
		if dma.CyclesRemaining > remaining {
			dma.CyclesRemaining -= remaining
			return false
		}

		remaining -= dma.CyclesRemaining
		dma.CyclesRemaining = 0

		srcAddr := dma.SourceAddress + uint16(dma.CurrentOAMOffset)
		oamAddr := OAMStartAddress + uint16(dma.CurrentOAMOffset)
		value := sourceRead(mmu, srcAddr)

		if dmaMMU, ok := mmu.(DMAMemoryInterface); ok {
			dmaMMU.WriteByteForDMA(oamAddr, value)
		} else {
			mmu.WriteByte(oamAddr, value)
		}

		dma.CurrentOAMOffset++
		if dma.CurrentOAMOffset < OAMSize {
			dma.CyclesRemaining = CyclesPerByte
		}
	}

	if dma.CurrentOAMOffset >= OAMSize {
		dma.Active = false
		dma.CurrentOAMOffset = 0
		dma.SourceAddress = 0x0000
		return true
	}

	return false
}

// IsActive returns true if a DMA transfer is currently in progress.
func (dma *DMAController) IsActive() bool {
	return dma.Active
}

// CanCPUAccessMemory returns true if the CPU can access the specified memory
// address during a DMA transfer. During DMA the CPU may only access HRAM
// (0xFF80-0xFFFE); everything else, including the rest of the I/O region, is
// blocked.
func (dma *DMAController) CanCPUAccessMemory(address uint16) bool {
	if !dma.Active {
		return true
	}
	return address >= HRAMStartAddress && address <= HRAMEndAddress
}

// GetTransferProgress returns (bytesTransferred, totalBytes, isActive).
func (dma *DMAController) GetTransferProgress() (uint8, uint8, bool) {
	return dma.CurrentOAMOffset, OAMSize, dma.Active
}

// GetSourceAddress returns the current source address being transferred
// from, or 0x0000 if no transfer is active.
func (dma *DMAController) GetSourceAddress() uint16 {
	if !dma.Active {
		return 0x0000
	}
	return dma.SourceAddress
}

// Reset stops any active DMA transfer and resets the controller to idle state.
func (dma *DMAController) Reset() {
	dma.Active = false
	dma.SourceAddress = 0x0000
	dma.CurrentOAMOffset = 0
	dma.CyclesRemaining = 0
}
