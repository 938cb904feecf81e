package emulator

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNewEmulatorWithOptionsConsoleIsHeadless verifies the console display
// backend (used in CI/test environments) never touches a windowing system.
func TestNewEmulatorWithOptionsConsoleIsHeadless(t *testing.T) {
	romData := make([]byte, 32768)
	romData[0x0147] = 0x00
	romData[0x0148] = 0x00

	tempFile, err := os.CreateTemp("", "test_rom_*.gb")
	require.NoError(t, err)
	defer os.Remove(tempFile.Name())

	_, err = tempFile.Write(romData)
	require.NoError(t, err)
	require.NoError(t, tempFile.Close())

	e, err := NewEmulatorWithOptions(tempFile.Name(), Options{
		Display:     DisplayConsole,
		SilentAudio: true,
		ScaleFactor: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, e)
	defer e.Cleanup()

	require.Equal(t, StateStopped, e.GetState())
}
