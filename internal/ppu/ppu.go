// Package ppu implements the Game Boy Picture Processing Unit (PPU)
// for graphics rendering, including background, window, and sprite systems.
//
// The Game Boy PPU renders a 160x144 pixel display with 4-color grayscale
// graphics using a tile-based system with sprites and scrolling backgrounds.
package ppu

// Game Boy display constants
const (
	// Display dimensions
	ScreenWidth  = 160 // Visible pixels per scanline
	ScreenHeight = 144 // Visible scanlines per frame
	
	// Timing constants (cycles per operation)
	TotalScanlines    = 154 // Total scanlines including V-Blank (144 visible + 10 V-Blank)
	CyclesPerScanline = 456 // CPU cycles per scanline (456 T-cycles)
	CyclesPerFrame    = TotalScanlines * CyclesPerScanline // 70224 cycles per frame
	
	// PPU mode durations (in T-cycles)
	OAMScanCycles  = 80  // Mode 2: OAM scan duration (20 M-cycles × 4)
	DrawingCycles  = 172 // Mode 3: Drawing duration (43 M-cycles × 4, minimum)
	HBlankCycles   = 204 // Mode 0: H-Blank duration (51 M-cycles × 4, minimum)
	VBlankDuration = 4560 // Mode 1: V-Blank duration (10 scanlines × 456 T-cycles)
	
	// Color values (4-shade grayscale)
	ColorWhite     = 0 // Lightest shade
	ColorLightGray = 1 // Light gray
	ColorDarkGray  = 2 // Dark gray  
	ColorBlack     = 3 // Darkest shade
)

// PPUMode represents the current state of the PPU rendering pipeline
type PPUMode uint8

const (
	ModeHBlank  PPUMode = 0 // H-Blank: CPU can access VRAM/OAM
	ModeVBlank  PPUMode = 1 // V-Blank: Frame complete, CPU can access all video memory
	ModeOAMScan PPUMode = 2 // OAM Scan: PPU reading sprite data, CPU cannot access OAM
	ModeDrawing PPUMode = 3 // Drawing: PPU rendering pixels, CPU cannot access VRAM/OAM
)

// String returns human-readable PPU mode name
func (mode PPUMode) String() string {
	switch mode {
	case ModeHBlank:
		return "H-Blank"
	case ModeVBlank:
		return "V-Blank"  
	case ModeOAMScan:
		return "OAM Scan"
	case ModeDrawing:
		return "Drawing"
	default:
		return "Unknown"
	}
}

// PPU represents the Game Boy Picture Processing Unit
// Handles all graphics rendering including background, window, and sprites
type PPU struct {
	// Display framebuffer - stores final pixel colors for each screen position
	// [row][column] format, values 0-3 representing 4-color grayscale
	Framebuffer [ScreenHeight][ScreenWidth]uint8
	
	// LCD Control Registers (memory-mapped I/O at 0xFF40-0xFF4B)
	LCDC uint8 // 0xFF40 - LCD Control register
	STAT uint8 // 0xFF41 - LCD Status register
	SCY  uint8 // 0xFF42 - Background scroll Y
	SCX  uint8 // 0xFF43 - Background scroll X
	LY   uint8 // 0xFF44 - Current scanline (0-153)
	LYC  uint8 // 0xFF45 - LY Compare register
	WY   uint8 // 0xFF4A - Window Y position
	WX   uint8 // 0xFF4B - Window X position
	
	// Palette Registers (color mapping)
	BGP  uint8 // 0xFF47 - Background palette data
	OBP0 uint8 // 0xFF48 - Object palette 0 data
	OBP1 uint8 // 0xFF49 - Object palette 1 data
	
	// Internal PPU state
	Mode         PPUMode // Current PPU mode (0-3)
	Cycles       uint16  // Cycle counter for current scanline
	FrameReady   bool    // True when a complete frame has been rendered
	LCDEnabled   bool    // LCD on/off state from LCDC bit 7
	
	// VRAM access interface (will be connected to MMU)
	vramInterface VRAMInterface

	// Per-scanline renderers, built once vramInterface is attached.
	backgroundRenderer *BackgroundRenderer
	windowRenderer     *WindowRenderer
	spriteRenderer     *SpriteRenderer

	// statLine is the persistent, edge-detected STAT interrupt line:
	// a request fires only on its 0->1 transition.
	statLine bool

	// drawingDuration is the variable length of the current line's Mode 3,
	// computed once at OAM-scan->Drawing and held for the rest of the line.
	drawingDuration uint16

	// bgLineIndex is the current line's background/window color indices
	// before palette application. Sprite priority (BG-over-OBJ) is decided
	// against these raw indices, not the shades in the frame buffer.
	bgLineIndex [ScreenWidth]uint8
}

// Snapshot is the PPU's registers and rendering-state machine for a save
// state. VRAM/OAM are owned by the MMU and captured separately.
type Snapshot struct {
	LCDC, STAT, SCY, SCX, LY, LYC, WY, WX uint8
	BGP, OBP0, OBP1                       uint8
	Mode                                  PPUMode
	Cycles                                uint16
	FrameReady                            bool
	LCDEnabled                            bool
	StatLine                              bool
	DrawingDuration                       uint16
}

func (p *PPU) Snapshot() Snapshot {
	return Snapshot{
		LCDC: p.LCDC, STAT: p.STAT, SCY: p.SCY, SCX: p.SCX, LY: p.LY, LYC: p.LYC,
		WY: p.WY, WX: p.WX, BGP: p.BGP, OBP0: p.OBP0, OBP1: p.OBP1,
		Mode: p.Mode, Cycles: p.Cycles, FrameReady: p.FrameReady,
		LCDEnabled: p.LCDEnabled, StatLine: p.statLine,
		DrawingDuration: p.drawingDuration,
	}
}

func (p *PPU) Restore(s Snapshot) {
	p.LCDC, p.STAT, p.SCY, p.SCX, p.LY, p.LYC = s.LCDC, s.STAT, s.SCY, s.SCX, s.LY, s.LYC
	p.WY, p.WX, p.BGP, p.OBP0, p.OBP1 = s.WY, s.WX, s.BGP, s.OBP0, s.OBP1
	p.Mode, p.Cycles, p.FrameReady = s.Mode, s.Cycles, s.FrameReady
	p.LCDEnabled, p.statLine, p.drawingDuration = s.LCDEnabled, s.StatLine, s.DrawingDuration
}

// VRAMInterface defines the interface for accessing video memory
// This allows the PPU to read tile data and tile maps from VRAM
type VRAMInterface interface {
	ReadVRAM(address uint16) uint8   // Read byte from VRAM (0x8000-0x9FFF)
	WriteVRAM(address uint16, value uint8) // Write byte to VRAM
	ReadOAM(address uint16) uint8    // Read byte from OAM (0xFE00-0xFE9F)
	WriteOAM(address uint16, value uint8)  // Write byte to OAM
}

// NewPPU creates a new PPU instance with default Game Boy state
func NewPPU() *PPU {
	ppu := &PPU{
		// Initialize display to white (color 0)
		Framebuffer: [ScreenHeight][ScreenWidth]uint8{},
		
		// Initialize LCD registers to Game Boy power-on state
		LCDC: 0x91, // LCD enabled, background enabled, default tile maps
		STAT: 0x00, // Mode 0 (H-Blank), no interrupts enabled
		SCY:  0x00, // No initial scroll
		SCX:  0x00,
		LY:   0x00, // Start at scanline 0
		LYC:  0x00,
		WY:   0x00, // Window at top-left
		WX:   0x00,
		
		// Initialize palettes to identity mapping (0→0, 1→1, 2→2, 3→3)
		BGP:  0xE4, // 11100100 - standard Game Boy palette
		OBP0: 0xE4,
		OBP1: 0xE4,
		
		// Initialize PPU state
		Mode:       ModeOAMScan, // Start in OAM scan mode
		Cycles:     0,
		FrameReady: false,
		LCDEnabled: true, // LCD starts enabled (LCDC bit 7)
	}
	
	// Set STAT register mode bits to match initial mode
	ppu.updateSTATMode()
	
	return ppu
}

// SetVRAMInterface connects the PPU to a VRAM access interface (typically the
// MMU) and builds the per-scanline renderers that fetch through it.
func (ppu *PPU) SetVRAMInterface(vramInterface VRAMInterface) {
	ppu.vramInterface = vramInterface
	ppu.backgroundRenderer = NewBackgroundRenderer(ppu, vramInterface)
	ppu.windowRenderer = NewWindowRenderer(ppu, vramInterface)
	ppu.spriteRenderer = NewSpriteRenderer(ppu, vramInterface)
}

// GetBackgroundRenderer returns the scanline background renderer (nil until
// SetVRAMInterface attaches one).
func (ppu *PPU) GetBackgroundRenderer() *BackgroundRenderer { return ppu.backgroundRenderer }

// GetWindowRenderer returns the scanline window renderer.
func (ppu *PPU) GetWindowRenderer() *WindowRenderer { return ppu.windowRenderer }

// GetSpriteRenderer returns the scanline sprite renderer.
func (ppu *PPU) GetSpriteRenderer() *SpriteRenderer { return ppu.spriteRenderer }

// renderScanline draws one completed scanline's background, window and
// sprite layers into the frame buffer. Called once, at Drawing->H-Blank.
func (ppu *PPU) renderScanline(scanline uint8) {
	if ppu.backgroundRenderer == nil {
		return
	}
	ppu.backgroundRenderer.RenderBackgroundScanline(scanline)
	ppu.windowRenderer.RenderWindowScanline(scanline)
	ppu.spriteRenderer.ScanOAM()
	ppu.spriteRenderer.RenderSpriteScanline(scanline)
}

// Reset resets the PPU to initial Game Boy state
func (ppu *PPU) Reset() {
	// Clear framebuffer to white
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			ppu.Framebuffer[y][x] = ColorWhite
		}
	}
	
	// Reset registers to power-on state
	ppu.LCDC = 0x91
	ppu.STAT = 0x00
	ppu.SCY = 0x00
	ppu.SCX = 0x00
	ppu.LY = 0x00
	ppu.LYC = 0x00
	ppu.WY = 0x00
	ppu.WX = 0x00
	ppu.BGP = 0xE4
	ppu.OBP0 = 0xE4
	ppu.OBP1 = 0xE4
	
	// Reset internal state
	ppu.Mode = ModeOAMScan
	ppu.Cycles = 0
	ppu.FrameReady = false
	ppu.LCDEnabled = true
	ppu.statLine = false
	ppu.drawingDuration = 0
	ppu.updateSTATMode()

	if ppu.windowRenderer != nil {
		ppu.windowRenderer.ResetWindowState()
	}
}

// IsFrameReady returns true if a complete frame has been rendered
// The caller should reset this flag after processing the frame
func (ppu *PPU) IsFrameReady() bool {
	return ppu.FrameReady
}

// ClearFrameReady resets the frame ready flag after the frame has been processed
func (ppu *PPU) ClearFrameReady() {
	ppu.FrameReady = false
}

// GetCurrentMode returns the current PPU mode for STAT register access
func (ppu *PPU) GetCurrentMode() PPUMode {
	return ppu.Mode
}

// GetCurrentScanline returns the current scanline (LY register value)
func (ppu *PPU) GetCurrentScanline() uint8 {
	return ppu.LY
}

// IsLCDEnabled returns true if the LCD is currently enabled (LCDC bit 7)
func (ppu *PPU) IsLCDEnabled() bool {
	return ppu.LCDEnabled
}

// Update advances the PPU by cycles T-cycles, one at a time, and reports
// whether either interrupt source edge-triggered during the span. Kept for
// callers that only care that *something* fired; AdvanceCycles reports the
// two sources (V-Blank, STAT) separately for proper IF-bit routing.
func (ppu *PPU) Update(cycles uint8) bool {
	vblank, stat := ppu.AdvanceCycles(cycles)
	return vblank || stat
}

// AdvanceCycles steps the PPU state machine one T-cycle at a time, cycles
// times (the Scheduler passes each instruction's full T-cycle count), and
// returns which interrupts newly edge-triggered.
func (ppu *PPU) AdvanceCycles(cycles uint8) (vblank bool, stat bool) {
	for i := uint8(0); i < cycles; i++ {
		v, s := ppu.advanceOneCycle()
		vblank = vblank || v
		stat = stat || s
	}
	return vblank, stat
}

// advanceOneCycle advances the state machine by exactly one T-cycle.
func (ppu *PPU) advanceOneCycle() (vblank bool, stat bool) {
	if !ppu.LCDEnabled {
		return false, false
	}

	ppu.Cycles++

	// LYC=LY is latched into STAT bit 2 at T-cycle 4 of each line, not at
	// the LY increment itself. Line 153 quirk: at that same T-cycle 4, LY
	// re-latches to 0 for the remainder of V-Blank, and the comparison sees
	// the new value.
	if ppu.Cycles == 4 {
		if ppu.LY == 153 {
			ppu.LY = 0
		}
		ppu.updateLYCFlag()
	}

	if ppu.Mode != ModeVBlank {
		switch ppu.Mode {
		case ModeOAMScan:
			if ppu.Cycles >= OAMScanCycles {
				if ppu.spriteRenderer != nil {
					ppu.spriteRenderer.ScanOAM()
				}
				ppu.drawingDuration = ppu.computeMode3Duration()
				ppu.setMode(ModeDrawing)
			}

		case ModeDrawing:
			if ppu.Cycles >= uint16(OAMScanCycles)+ppu.drawingDuration {
				ppu.renderScanline(ppu.LY)
				ppu.setMode(ModeHBlank)
			}

		case ModeHBlank:
			if ppu.Cycles >= CyclesPerScanline {
				ppu.Cycles = 0
				ppu.LY++

				if ppu.LY == ScreenHeight {
					ppu.setMode(ModeVBlank)
					ppu.FrameReady = true
					vblank = true
				} else {
					ppu.setMode(ModeOAMScan)
				}
			}
		}
	} else {
		if ppu.Cycles >= CyclesPerScanline {
			ppu.Cycles = 0
			if ppu.LY == 0 {
				// LY already re-latched to 0 at T-cycle 4 of line 153;
				// this boundary ends V-Blank and starts a new frame.
				ppu.setMode(ModeOAMScan)
			} else {
				ppu.LY++
			}
		}
	}

	if ppu.raiseSTATIfEdge() {
		stat = true
	}
	return vblank, stat
}

// computeMode3Duration computes the variable Mode-3 length:
// 172 base + 11 per sprite on this line + SCX%8 + 6 if the window is active
// on this line, clamped to 289.
func (ppu *PPU) computeMode3Duration() uint16 {
	duration := uint16(DrawingCycles)
	if ppu.spriteRenderer != nil {
		duration += uint16(ppu.spriteRenderer.SpriteCountOnLine()) * 11
	}
	duration += uint16(ppu.SCX % 8)
	if ppu.IsWindowEnabled() && ppu.LY >= ppu.WY && ppu.WX <= 166 {
		duration += 6
	}
	if duration > 289 {
		duration = 289
	}
	return duration
}

// raiseSTATIfEdge recomputes the logical-OR STAT interrupt line and returns
// true only on its 0->1 transition.
func (ppu *PPU) raiseSTATIfEdge() bool {
	level := ppu.statLineLevel()
	edge := level && !ppu.statLine
	ppu.statLine = level
	return edge
}

// statLineLevel computes the current level of the STAT interrupt line: the
// logical OR of every enabled STAT source currently true. The LYC term uses
// the latched STAT flag, so the line only rises at the T-cycle-4 comparison
// point rather than the instant LY increments.
func (ppu *PPU) statLineLevel() bool {
	if ppu.ShouldTriggerSTATInterrupt() {
		return true
	}
	return (ppu.STAT&(1<<STATLYCFlag)) != 0 && (ppu.STAT&(1<<STATLYCInterrupt)) != 0
}

// setMode changes the current PPU mode and updates STAT register
func (ppu *PPU) setMode(newMode PPUMode) {
	ppu.Mode = newMode
	ppu.updateSTATMode()
}

// nextScanline advances to the next scanline and resets cycle counter
func (ppu *PPU) nextScanline() {
	ppu.Cycles = 0
	ppu.LY++
	
	// Check LYC=LY interrupt condition
	ppu.updateLYCFlag()
}

// GetPixel returns the color value (0-3) at the specified screen coordinates
// Returns ColorWhite if coordinates are out of bounds
func (ppu *PPU) GetPixel(x, y int) uint8 {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return ColorWhite
	}
	return ppu.Framebuffer[y][x]
}

// SetPixel sets the color value (0-3) at the specified screen coordinates
// Does nothing if coordinates are out of bounds
func (ppu *PPU) SetPixel(x, y int, color uint8) {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return
	}
	if color > ColorBlack {
		color = ColorBlack // Clamp to valid color range
	}
	ppu.Framebuffer[y][x] = color
}