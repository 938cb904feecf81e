// Package emulator is the composition root: it wires the cartridge, MMU,
// CPU, PPU, APU and joypad together, hands them to a scheduler.Scheduler for
// the actual per-instruction tick, and exposes the host-facing Run/Step/
// Reset surface plus input, audio and display plumbing.
package emulator

import (
	"fmt"
	"time"

	"gameboy-emulator/internal/apu"
	"gameboy-emulator/internal/audio"
	"gameboy-emulator/internal/cartridge"
	"gameboy-emulator/internal/cpu"
	"gameboy-emulator/internal/display"
	"gameboy-emulator/internal/input"
	"gameboy-emulator/internal/joypad"
	"gameboy-emulator/internal/memory"
	"gameboy-emulator/internal/ppu"
	"gameboy-emulator/internal/scheduler"
)

// EmulatorState represents the current state of the emulator.
type EmulatorState int

const (
	StateStopped EmulatorState = iota
	StateRunning
	StateHalted
	StatePaused
	StateError
)

// String returns a human-readable state name.
func (s EmulatorState) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateRunning:
		return "Running"
	case StateHalted:
		return "Halted"
	case StatePaused:
		return "Paused"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Emulator is the complete Game Boy emulator: the four hardware subsystems
// plus the host-facing transports (display, audio, input) and pacing clock.
type Emulator struct {
	CPU       *cpu.CPU
	MMU       *memory.MMU
	PPU       *ppu.PPU
	APU       *apu.APU
	Display   *display.Display
	Audio     *audio.AudioOutput
	Cartridge cartridge.MBC
	Clock     *Clock
	Scheduler *scheduler.Scheduler

	InputManager *input.InputManager
	Joypad       *joypad.Joypad

	State            EmulatorState
	InstructionCount uint64

	DebugMode   bool
	StepMode    bool
	Breakpoints map[uint16]bool

	RealTimeMode    bool
	MaxSpeedMode    bool
	SpeedMultiplier float64
}

// DisplayBackend selects the presenter NewEmulatorWithOptions wires up.
type DisplayBackend int

const (
	// DisplayConsole is the zero value so a zero Options{} stays headless
	// (ASCII console, no windowing system required) matching NewEmulator's
	// historical default.
	DisplayConsole DisplayBackend = iota
	DisplayTerminal
	DisplaySDL2
)

// Options controls the host transports NewEmulatorWithOptions wires around
// the emulated hardware. Zero value selects the console display and SDL2
// audio, matching NewEmulator's historical defaults.
type Options struct {
	Display     DisplayBackend
	ScaleFactor int
	SampleRate  int
	SilentAudio bool // skip the audio device and use a silent sink
}

// NewEmulator loads romPath and wires a complete emulator instance around
// it, with SDL2 audio and a console display by default. Hosts that want
// SDL2 video or a tcell terminal window should call
// NewEmulatorWithOptions directly.
func NewEmulator(romPath string) (*Emulator, error) {
	return NewEmulatorWithOptions(romPath, Options{Display: DisplayConsole, ScaleFactor: 1, SampleRate: audio.DefaultSampleRate})
}

// NewEmulatorWithOptions loads romPath and wires a complete emulator
// instance using the requested display/audio transports. If the SDL2 audio
// device fails to initialize, it falls back to a silent sink rather than
// failing emulator construction.
func NewEmulatorWithOptions(romPath string, opts Options) (*Emulator, error) {
	cart, err := cartridge.LoadROMFromFile(romPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load ROM: %v", err)
	}

	mbc, err := cartridge.CreateMBC(cart)
	if err != nil {
		return nil, fmt.Errorf("failed to create MBC: %v", err)
	}

	var audioImpl audio.AudioOutputInterface
	if opts.SilentAudio {
		audioImpl = audio.NewSilentAudioOutput()
	} else {
		audioImpl = audio.NewSDL2AudioOutput()
	}
	audioInstance := audio.NewAudioOutput(audioImpl)

	var displayImpl display.DisplayInterface
	switch opts.Display {
	case DisplayTerminal:
		displayImpl = display.NewTcellDisplay()
	case DisplaySDL2:
		displayImpl = display.NewSDL2Display()
	default:
		displayImpl = display.NewConsoleDisplay()
	}
	displayInstance := display.NewDisplay(displayImpl)

	e, err := newEmulator(mbc, audioInstance, displayInstance)
	if err != nil {
		return nil, err
	}

	scale := opts.ScaleFactor
	if scale <= 0 {
		scale = 1
	}
	displayConfig := display.DisplayConfig{
		ScaleFactor: scale,
		ScalingMode: display.ScaleNearest,
		Palette: display.ColorPalette{
			White:     display.RGBColor{R: 155, G: 188, B: 15},
			LightGray: display.RGBColor{R: 139, G: 172, B: 15},
			DarkGray:  display.RGBColor{R: 48, G: 98, B: 48},
			Black:     display.RGBColor{R: 15, G: 56, B: 15},
		},
		VSync:   true,
		ShowFPS: false,
	}
	if err := e.Display.Initialize(displayConfig); err != nil {
		return nil, fmt.Errorf("failed to initialize display: %v", err)
	}

	audioConfig := audio.DefaultConfig()
	if opts.SampleRate > 0 {
		audioConfig.SampleRate = opts.SampleRate
	}
	// The APU's sample-phase step has to match the sink's rate exactly or
	// the stream drifts.
	e.APU.SetSampleRate(float64(audioConfig.SampleRate))
	if err := e.Audio.Initialize(audioConfig); err != nil {
		// Audio-device failure is recoverable: fall back to silence
		// instead of failing emulator construction.
		fallback := audio.NewAudioOutput(audio.NewSilentAudioOutput())
		if ferr := fallback.Initialize(audioConfig); ferr == nil {
			e.Audio = fallback
		} else {
			return nil, fmt.Errorf("failed to initialize audio: %v", err)
		}
	}
	if err := e.Audio.Start(); err != nil {
		return nil, fmt.Errorf("failed to start audio: %v", err)
	}

	return e, nil
}

// newEmulator builds an Emulator around an already-loaded MBC and
// caller-supplied display/audio transports, shared by NewEmulator and any
// host that wants a headless or test presenter.
func newEmulator(mbc cartridge.MBC, audioInstance *audio.AudioOutput, displayInstance *display.Display) (*Emulator, error) {
	c := cpu.NewCPU()
	ppuInstance := ppu.NewPPU()
	joypadInstance := joypad.NewJoypad()
	inputManager := input.NewInputManager(joypadInstance)

	mmu := memory.NewMMU(mbc, c.InterruptController, joypadInstance)
	mmu.SetPPU(ppuInstance)
	ppuInstance.SetVRAMInterface(mmu)

	sched := scheduler.New(c, mmu, ppuInstance, joypadInstance)

	e := &Emulator{
		CPU:             c,
		MMU:             mmu,
		PPU:             ppuInstance,
		APU:             mmu.APU(),
		Display:         displayInstance,
		Audio:           audioInstance,
		Cartridge:       mbc,
		Clock:           NewClock(),
		Scheduler:       sched,
		InputManager:    inputManager,
		Joypad:          joypadInstance,
		State:           StateStopped,
		Breakpoints:     make(map[uint16]bool),
		RealTimeMode:    true,
		SpeedMultiplier: 1.0,
	}

	e.initializeGameBoyState()
	return e, nil
}

// initializeGameBoyState sets registers to the post-boot-ROM state; the
// emulator starts here instead of executing a boot ROM.
func (e *Emulator) initializeGameBoyState() {
	e.CPU.A = 0x01
	e.CPU.F = 0xB0
	e.CPU.SetBC(0x0013)
	e.CPU.SetDE(0x00D8)
	e.CPU.SetHL(0x014D)
	e.CPU.SP = 0xFFFE
	e.CPU.PC = 0x0100

	e.CPU.Halted = false
	e.CPU.Stopped = false
	e.CPU.IME = true

	e.InstructionCount = 0
	e.Clock.Reset()
}

// Run drives the scheduler loop until stopped, paced to real Game Boy
// speed unless MaxSpeedMode is set.
func (e *Emulator) Run() error {
	if e.State != StateStopped {
		return fmt.Errorf("emulator already running")
	}

	e.State = StateRunning
	defer func() { e.State = StateStopped }()

	for e.State == StateRunning {
		if e.DebugMode && e.Breakpoints[e.CPU.PC] {
			e.State = StatePaused
			break
		}

		if err := e.Step(); err != nil {
			e.State = StateError
			return fmt.Errorf("execution error: %v", err)
		}

		if waitTime := e.Clock.ShouldWaitForTiming(); waitTime > 0 {
			time.Sleep(waitTime)
		}

		if e.IsFrameComplete() {
			e.NextFrame()
			if frameWait := e.Clock.ShouldWaitForFrame(); frameWait > 0 {
				time.Sleep(frameWait)
			}
		}
	}

	return nil
}

// Step runs exactly one scheduler tick (one CPU instruction, interrupt
// dispatch, or DMA stall) and propagates its T-cycles to audio/display.
func (e *Emulator) Step() error {
	cycles, err := e.Scheduler.Step()
	if err != nil {
		return err
	}
	e.InstructionCount++
	e.Clock.AddCycles(int(cycles))

	if e.Audio != nil {
		if samples := e.APU.GetSamples(); len(samples) > 0 {
			pcm := make([]int16, len(samples))
			for i, s := range samples {
				if s > 1.0 {
					s = 1.0
				} else if s < -1.0 {
					s = -1.0
				}
				pcm[i] = int16(s * 32767)
			}
			if err := e.Audio.PushSamples(pcm); err != nil && err != audio.ErrBufferOverflow {
				return fmt.Errorf("audio output error: %v", err)
			}
		}
	}

	if e.PPU.IsFrameReady() {
		if e.Display != nil {
			if err := e.Display.Present(&e.PPU.Framebuffer); err != nil {
				return fmt.Errorf("display present error: %v", err)
			}
		}
		e.PPU.ClearFrameReady()
	}

	return nil
}

// Stop requests the Run loop exit at the next iteration boundary.
func (e *Emulator) Stop() {
	e.State = StateStopped
}

// Pause suspends a running emulator; Resume continues it.
func (e *Emulator) Pause() {
	if e.State == StateRunning {
		e.State = StatePaused
	}
}

// Resume continues a paused emulator.
func (e *Emulator) Resume() {
	if e.State == StatePaused {
		e.State = StateRunning
	}
}

// Reset returns the CPU (with the interrupt registers), PPU, APU, timer,
// serial port and DMA controller to post-boot-ROM state and releases all
// buttons. Memory contents (WRAM, VRAM, OAM, HRAM) and the cartridge's bank
// selection and RAM are left as they are.
func (e *Emulator) Reset() {
	e.State = StateStopped
	e.InstructionCount = 0
	e.Clock.Reset()

	e.CPU.Reset()
	e.PPU.Reset()
	e.APU.Reset()
	e.MMU.DMA().Reset()
	e.MMU.Timer().Reset()
	e.MMU.Serial().Reset()
	e.initializeGameBoyState()

	if e.InputManager != nil {
		e.InputManager.Reset()
	}
}

// Cleanup releases audio and display resources.
func (e *Emulator) Cleanup() error {
	if e.Audio != nil {
		_ = e.Audio.Stop()
		if err := e.Audio.Cleanup(); err != nil {
			return fmt.Errorf("failed to cleanup audio: %v", err)
		}
	}
	if e.Display != nil {
		if err := e.Display.Cleanup(); err != nil {
			return fmt.Errorf("failed to cleanup display: %v", err)
		}
	}
	e.State = StateStopped
	return nil
}

func (e *Emulator) GetState() EmulatorState { return e.State }

func (e *Emulator) SetDebugMode(enabled bool) { e.DebugMode = enabled }
func (e *Emulator) SetStepMode(enabled bool)  { e.StepMode = enabled }

func (e *Emulator) AddBreakpoint(address uint16)    { e.Breakpoints[address] = true }
func (e *Emulator) RemoveBreakpoint(address uint16) { delete(e.Breakpoints, address) }

// GetStats returns (instructions executed, total T-cycles).
func (e *Emulator) GetStats() (uint64, uint64) {
	totalCycles, _, _, _ := e.Clock.GetStats()
	return e.InstructionCount, totalCycles
}

// GetDetailedStats returns the full timing/performance picture.
func (e *Emulator) GetDetailedStats() (instructions uint64, cycles uint64, frames uint64, fps float64, cps float64) {
	totalCycles, frameCount, currentFPS, currentCPS := e.Clock.GetStats()
	return e.InstructionCount, totalCycles, frameCount, currentFPS, currentCPS
}

func (e *Emulator) SetRealTimeMode(enabled bool) {
	e.RealTimeMode = enabled
	e.MaxSpeedMode = !enabled
	e.Clock.SetRealTimeMode(enabled)
}

func (e *Emulator) SetMaxSpeedMode(enabled bool) {
	e.MaxSpeedMode = enabled
	e.RealTimeMode = !enabled
	e.Clock.SetMaxSpeedMode(enabled)
}

func (e *Emulator) SetSpeedMultiplier(multiplier float64) {
	e.SpeedMultiplier = multiplier
	e.Clock.SetSpeedMultiplier(multiplier)
}

// IsFrameComplete reports whether a full 70224-T-cycle frame has elapsed
// since the last NextFrame call (used for frame-paced Run loops).
func (e *Emulator) IsFrameComplete() bool { return e.Clock.IsFrameComplete() }

// NextFrame resets the Clock's per-frame cycle counter.
func (e *Emulator) NextFrame() { e.Clock.NextFrame() }

// ProcessInputEvent routes a single host input event to the joypad.
func (e *Emulator) ProcessInputEvent(event input.InputEvent) {
	if e.InputManager != nil {
		e.InputManager.ProcessInputEvent(event)
	}
}

// ProcessInputEvents routes a batch of host input events to the joypad.
func (e *Emulator) ProcessInputEvents(events []input.InputEvent) {
	if e.InputManager != nil {
		e.InputManager.ProcessInputEvents(events)
	}
}

// UpdateInputFromProvider polls a stateful input source (as opposed to an
// event stream) and reconciles the joypad to it.
func (e *Emulator) UpdateInputFromProvider(provider input.InputStateProvider) {
	if e.InputManager != nil {
		e.InputManager.UpdateFromStateProvider(provider)
	}
}

func (e *Emulator) SetKeyMapping(mapping input.KeyMapping) {
	if e.InputManager != nil {
		e.InputManager.SetKeyMapping(mapping)
	}
}

func (e *Emulator) GetKeyMapping() input.KeyMapping {
	if e.InputManager != nil {
		return e.InputManager.GetKeyMapping()
	}
	return input.DefaultKeyMapping()
}

func (e *Emulator) SetInputEnabled(enabled bool) {
	if e.InputManager != nil {
		e.InputManager.SetEnabled(enabled)
	}
}

func (e *Emulator) GetButtonStates() map[string]bool {
	if e.InputManager != nil {
		return e.InputManager.GetButtonStates()
	}
	return make(map[string]bool)
}
