// Command emulator is the host binary: it loads a ROM, wires an
// emulator.Emulator around the requested display/audio backends, and
// drives it to completion, paced to Game Boy speed unless fast-forward is
// requested.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gameboy-emulator/internal/cartridge"
	"gameboy-emulator/internal/config"
	"gameboy-emulator/internal/display"
	"gameboy-emulator/internal/emulator"
	"gameboy-emulator/internal/savestate"
)

const (
	version     = "0.2.0"
	projectName = "Game Boy Emulator"
)

var (
	cfg config.Config

	debugMode   bool
	stepMode    bool
	maxSteps    int
	displayName string
	scaleFlag   int
	sampleRate  int
	silentAudio bool
	saveStateIn  string
	saveStateOut string
)

var rootCmd = &cobra.Command{
	Use:   "gameboy-emulator [rom]",
	Short: "A cycle-accurate Game Boy (DMG) emulator",
	Long: `A Game Boy emulator written in Go.

Examples:
  gameboy-emulator tetris.gb                 # run normally
  gameboy-emulator --debug tetris.gb         # run with debug trace
  gameboy-emulator --step tetris.gb          # run step by step
  gameboy-emulator --display terminal game.gb # run in a tcell terminal window
  gameboy-emulator info mario.gb             # show ROM header info
  gameboy-emulator validate game.gb          # validate a ROM file
  gameboy-emulator scan roms/                # scan a directory for ROMs`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEmulator(args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug trace output")
	rootCmd.PersistentFlags().BoolVar(&stepMode, "step", false, "enable step-by-step execution")
	rootCmd.PersistentFlags().IntVar(&maxSteps, "max-steps", 0, "maximum steps in step mode (0 = unlimited)")
	rootCmd.PersistentFlags().StringVar(&displayName, "display", "sdl2", "display backend: sdl2, terminal, console")
	rootCmd.PersistentFlags().IntVar(&scaleFlag, "scale", 0, "integer display scale factor (0 = use config default)")
	rootCmd.PersistentFlags().IntVar(&sampleRate, "sample-rate", 0, "audio sample rate in Hz (0 = use config default)")
	rootCmd.PersistentFlags().BoolVar(&silentAudio, "silent", false, "disable audio output entirely")
	rootCmd.PersistentFlags().StringVar(&saveStateIn, "load-state", "", "load a save state file before running")
	rootCmd.PersistentFlags().StringVar(&saveStateOut, "save-state", "", "write a save state file when the emulator exits")

	rootCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %v", err)
		}
		cfg = loaded
		if scaleFlag == 0 {
			scaleFlag = cfg.ScaleFactor
		}
		if sampleRate == 0 {
			sampleRate = cfg.SampleRate
		}
		return nil
	}

	rootCmd.AddCommand(infoCmd, validateCmd, scanCmd, versionCmd, displayDemoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func backendFromFlag(name string) emulator.DisplayBackend {
	switch strings.ToLower(name) {
	case "terminal", "tcell":
		return emulator.DisplayTerminal
	case "console", "ascii":
		return emulator.DisplayConsole
	default:
		return emulator.DisplaySDL2
	}
}

func runEmulator(romFile string) error {
	fmt.Printf("%s v%s\n", projectName, version)
	fmt.Printf("Loading ROM: %s\n", romFile)

	opts := emulator.Options{
		Display:     backendFromFlag(displayName),
		ScaleFactor: scaleFlag,
		SampleRate:  sampleRate,
		SilentAudio: silentAudio,
	}

	emu, err := emulator.NewEmulatorWithOptions(romFile, opts)
	if err != nil {
		return fmt.Errorf("failed to create emulator: %v", err)
	}
	defer emu.Cleanup()

	batteryPath := batteryRAMPath(romFile)
	loadBatteryRAM(emu, batteryPath)
	defer saveBatteryRAM(emu, batteryPath)

	if saveStateIn != "" {
		data, err := os.ReadFile(saveStateIn)
		if err != nil {
			return fmt.Errorf("failed to read save state: %v", err)
		}
		if err := savestate.Load(data, emu.CPU, emu.MMU, emu.PPU); err != nil {
			return fmt.Errorf("failed to load save state: %v", err)
		}
		fmt.Printf("Loaded save state from %s\n", saveStateIn)
	}

	if saveStateOut != "" {
		defer func() {
			data, err := savestate.Save(emu.CPU, emu.MMU, emu.PPU)
			if err != nil {
				fmt.Printf("Warning: failed to build save state: %v\n", err)
				return
			}
			if err := os.WriteFile(saveStateOut, data, 0644); err != nil {
				fmt.Printf("Warning: failed to write save state to %s: %v\n", saveStateOut, err)
				return
			}
			fmt.Printf("Saved state to %s\n", saveStateOut)
		}()
	}

	fmt.Printf("Emulator initialized: ROM Bank=%d, RAM Bank=%d\n",
		emu.Cartridge.GetCurrentROMBank(), emu.Cartridge.GetCurrentRAMBank())
	fmt.Printf("Initial CPU State: PC=0x%04X, SP=0x%04X, A=0x%02X\n", emu.CPU.PC, emu.CPU.SP, emu.CPU.A)
	fmt.Println()

	emu.SetDebugMode(debugMode)
	emu.SetStepMode(stepMode)

	switch {
	case stepMode:
		return runStepMode(emu, maxSteps)
	case debugMode:
		return runDebugMode(emu)
	default:
		return emu.Run()
	}
}

// batteryRAMPath names the sidecar file a ROM's battery-backed external RAM
// is persisted to: a raw byte image of external RAM, sized by the
// cartridge header.
func batteryRAMPath(romFile string) string {
	ext := filepath.Ext(romFile)
	return strings.TrimSuffix(romFile, ext) + ".sav"
}

func loadBatteryRAM(emu *emulator.Emulator, path string) {
	if !emu.Cartridge.HasRAM() {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return // no prior save; cartridge RAM stays at its zeroed default
	}
	ram := emu.Cartridge.RAM()
	n := copy(ram, data)
	if n < len(data) {
		fmt.Printf("Warning: battery RAM file %s is larger than cartridge RAM, truncating\n", path)
	}
}

func saveBatteryRAM(emu *emulator.Emulator, path string) {
	if !emu.Cartridge.HasRAM() {
		return
	}
	ram := emu.Cartridge.RAM()
	if len(ram) == 0 {
		return
	}
	if err := os.WriteFile(path, ram, 0644); err != nil {
		fmt.Printf("Warning: failed to persist battery RAM to %s: %v\n", path, err)
	}
}

func runStepMode(emu *emulator.Emulator, maxSteps int) error {
	fmt.Println("=== Step Mode ===")
	fmt.Println("Press Enter to execute each instruction, 'q' to quit, 'r' to run normally")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	stepCount := 0

	for {
		if maxSteps > 0 && stepCount >= maxSteps {
			fmt.Printf("Reached maximum steps (%d). Stopping.\n", maxSteps)
			return nil
		}

		pc := emu.CPU.PC
		opcode := emu.MMU.ReadByte(pc)
		fmt.Printf("Step %d - PC: 0x%04X, Opcode: 0x%02X | A=0x%02X, BC=0x%04X, DE=0x%04X, HL=0x%04X, SP=0x%04X\n",
			stepCount+1, pc, opcode, emu.CPU.A, emu.CPU.GetBC(), emu.CPU.GetDE(), emu.CPU.GetHL(), emu.CPU.SP)

		fmt.Print(">>> ")
		if !scanner.Scan() {
			return nil
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "q", "quit":
			fmt.Println("Quitting step mode.")
			return nil
		case "r", "run":
			fmt.Println("Switching to normal execution mode...")
			return emu.Run()
		case "", "s", "step":
			if err := emu.Step(); err != nil {
				return err
			}
			stepCount++
			switch emu.GetState() {
			case emulator.StateHalted:
				fmt.Println("CPU is halted. Waiting for interrupt...")
			case emulator.StateStopped:
				fmt.Println("CPU is stopped. Emulation complete.")
				return nil
			case emulator.StateError:
				return fmt.Errorf("emulator encountered an error")
			}
		default:
			fmt.Println("Commands: Enter/s=step, q=quit, r=run")
		}
		fmt.Println()
	}
}

func runDebugMode(emu *emulator.Emulator) error {
	fmt.Println("=== Debug Mode ===")
	for i := 0; i < 100; i++ {
		pc := emu.CPU.PC
		opcode := emu.MMU.ReadByte(pc)
		fmt.Printf("Step %d: PC=0x%04X, Op=0x%02X\n", i+1, pc, opcode)

		if err := emu.Step(); err != nil {
			return fmt.Errorf("execution error at step %d: %v", i+1, err)
		}
		if emu.GetState() != emulator.StateRunning {
			fmt.Printf("Emulator state changed to: %s\n", emu.GetState())
			break
		}
	}

	instructions, cycles := emu.GetStats()
	fmt.Printf("\nExecuted %d instructions, %d cycles\n", instructions, cycles)
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s v%s\n", projectName, version)
		fmt.Println("Written in Go")
	},
}

var infoCmd = &cobra.Command{
	Use:   "info [rom]",
	Short: "Show ROM header information",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		showROMInfo(args[0])
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [rom]",
	Short: "Validate a ROM file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		validateROM(args[0])
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [directory]",
	Short: "Scan a directory for ROM files",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		scanDirectory(args[0])
	},
}

var displayDemoCmd = &cobra.Command{
	Use:   "display-demo",
	Short: "Cycle through test patterns on the selected display backend",
	Run: func(cmd *cobra.Command, args []string) {
		runDisplayDemo()
	},
}

func runDisplayDemo() {
	var impl display.DisplayInterface
	switch strings.ToLower(displayName) {
	case "terminal", "tcell":
		impl = display.NewTcellDisplay()
	case "sdl2":
		impl = display.NewSDL2Display()
	default:
		impl = display.NewConsoleDisplay()
	}

	dm := display.NewDisplay(impl)
	cfgDisplay := display.DisplayConfig{
		ScaleFactor: 2,
		ScalingMode: display.ScaleNearest,
		Palette:     display.DefaultPalette(),
		VSync:       true,
	}
	if err := dm.Initialize(cfgDisplay); err != nil {
		fmt.Printf("Error: failed to initialize display: %v\n", err)
		return
	}
	defer dm.Cleanup()
	dm.SetTitle("Game Boy Emulator - Display Demo")

	patterns := []struct {
		name        string
		framebuffer [display.GameBoyHeight][display.GameBoyWidth]uint8
		duration    time.Duration
	}{
		{"Solid White", display.CreateSolidColorPattern(display.ColorWhite), 2 * time.Second},
		{"Solid Light Gray", display.CreateSolidColorPattern(display.ColorLightGray), 2 * time.Second},
		{"Solid Dark Gray", display.CreateSolidColorPattern(display.ColorDarkGray), 2 * time.Second},
		{"Solid Black", display.CreateSolidColorPattern(display.ColorBlack), 2 * time.Second},
		{"Test Pattern", display.CreateTestPattern(), 3 * time.Second},
	}

	for _, pattern := range patterns {
		fmt.Printf("Displaying: %s (%v)\n", pattern.name, pattern.duration)
		start := time.Now()
		for time.Since(start) < pattern.duration {
			if dm.ShouldClose() {
				return
			}
			if err := dm.Present(&pattern.framebuffer); err != nil {
				fmt.Printf("Error presenting frame: %v\n", err)
				return
			}
			dm.PollEvents()
			time.Sleep(50 * time.Millisecond)
		}
	}
}

func showROMInfo(romFile string) {
	info, err := cartridge.GetROMInfo(romFile)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println("=== ROM Information ===")
	fmt.Printf("File: %s\n", info.Filename)
	fmt.Printf("Title: %s\n", info.Title)
	fmt.Printf("Type: %s (0x%02X)\n", info.TypeName, uint8(info.CartridgeType))
	fmt.Printf("ROM Size: %d KB (%d bytes)\n", info.ROMSize/1024, info.ROMSize)
	fmt.Printf("RAM Size: %d KB (%d bytes)\n", info.RAMSize/1024, info.RAMSize)
	fmt.Printf("File Size: %d bytes\n", info.FileSize)
	fmt.Printf("Header Valid: %t\n", info.HeaderValid)
}

func validateROM(romFile string) {
	valid, err := cartridge.ValidateROMFile(romFile)
	if err != nil {
		fmt.Printf("Validation failed: %v\n", err)
		return
	}
	if valid {
		fmt.Println("ROM file is valid.")
		if info, err := cartridge.GetROMInfo(romFile); err == nil {
			fmt.Printf("Title: %s, Type: %s, Size: %d KB\n", info.Title, info.TypeName, info.ROMSize/1024)
		}
	} else {
		fmt.Println("ROM file is invalid.")
	}
}

func scanDirectory(dirPath string) {
	romFiles, err := cartridge.ScanROMDirectory(dirPath, true)
	if err != nil {
		fmt.Printf("Error scanning directory: %v\n", err)
		return
	}
	if len(romFiles) == 0 {
		fmt.Println("No ROM files found.")
		return
	}

	fmt.Printf("Found %d ROM file(s):\n", len(romFiles))
	for i, rom := range romFiles {
		fmt.Printf("%d. %s\n", i+1, rom.String())
	}
}
