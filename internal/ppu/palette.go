// Package ppu - Color palette management for Game Boy PPU
// Handles 4-color grayscale palette decoding

package ppu

// DecodePalette converts a Game Boy palette register value to color mappings
// Palette format: bits 7-6=color3, 5-4=color2, 3-2=color1, 1-0=color0
// Each 2-bit value maps to one of 4 possible shades (0-3)
func DecodePalette(paletteValue uint8) [4]uint8 {
	return [4]uint8{
		paletteValue & 0x03,         // Color 0 (bits 1-0)
		(paletteValue >> 2) & 0x03,  // Color 1 (bits 3-2)
		(paletteValue >> 4) & 0x03,  // Color 2 (bits 5-4)
		(paletteValue >> 6) & 0x03,  // Color 3 (bits 7-6)
	}
}

// ApplyPalette applies a palette to convert a pixel color index (0-3) to final color
// pixelColor: The raw pixel color index (0-3) from tile data
// palette: The decoded palette mapping from DecodePalette()
// Returns: The final color index (0-3) after palette transformation
func ApplyPalette(pixelColor uint8, palette [4]uint8) uint8 {
	if pixelColor > 3 {
		pixelColor = 3 // Clamp to valid range
	}
	return palette[pixelColor]
}

// =============================================================================
// PPU Palette Helper Methods
// =============================================================================

// GetBGColor applies background palette to convert raw pixel color to final color
func (ppu *PPU) GetBGColor(pixelColor uint8) uint8 {
	bgPalette := DecodePalette(ppu.BGP)
	return ApplyPalette(pixelColor, bgPalette)
}

// GetSpriteColor applies sprite palette to convert raw pixel color to final color
// paletteNumber: 0 for OBP0, 1 for OBP1 (any other value defaults to OBP1)
func (ppu *PPU) GetSpriteColor(pixelColor uint8, paletteNumber uint8) uint8 {
	var spritePalette [4]uint8

	if paletteNumber == 0 {
		spritePalette = DecodePalette(ppu.OBP0)
	} else {
		spritePalette = DecodePalette(ppu.OBP1)
	}

	return ApplyPalette(pixelColor, spritePalette)
}

// IsColorTransparent checks if a sprite color should be transparent
// For sprites, color 0 is always transparent (doesn't render)
func IsColorTransparent(pixelColor uint8) bool {
	return pixelColor == 0
}
