package apu

import (
	"fmt"
)

// APU represents the Game Boy Audio Processing Unit
type APU struct {
	// Sound channels
	channel1 *Channel1 // Square wave with sweep
	channel2 *Channel2 // Square wave
	channel3 *Channel3 // Wave pattern
	channel4 *Channel4 // Noise generator

	// Audio control
	mixer   *Mixer
	enabled bool

	// Master registers
	nr50 uint8 // Master volume & VIN panning (0xFF24)
	nr51 uint8 // Sound panning (0xFF25)
	nr52 uint8 // Sound on/off (0xFF26)

	// Timing
	frameSequencer uint8  // 8-step frame sequencer (512 Hz)
	frameCounter   uint16 // Counts to 8192 CPU cycles per step
	cycles         uint64 // Total cycles processed

	// Audio output
	sampleRate   float64   // Target sample rate (e.g., 44100 Hz)
	sampleStep   uint32    // 16.16 fixed-point phase advance per T-cycle
	samplePhase  uint32    // 16.16 fractional accumulator; emits on overflow
	sampleBuffer []float32 // Audio sample buffer
	sampleIndex  int       // Current position in sample buffer
}

// cpuClockHz is the DMG master clock the sample-phase step is derived from.
const cpuClockHz = 4194304

// Snapshot is the APU's full internal state for a save state: per-channel
// generator state, the master control registers, and the frame sequencer
// phase. The host-facing sample buffer is runtime-only and not included —
// it is simply empty again after a load, matching a fresh APU's startup.
type Snapshot struct {
	Channel1 Channel1Snapshot
	Channel2 Channel2Snapshot
	Channel3 Channel3Snapshot
	Channel4 Channel4Snapshot

	Enabled bool

	NR50, NR51, NR52 uint8

	FrameSequencer uint8
	FrameCounter   uint16
	Cycles         uint64
	SamplePhase    uint32

	Mixer MixerSnapshot
}

func (apu *APU) Snapshot() Snapshot {
	return Snapshot{
		Channel1: apu.channel1.Snapshot(),
		Channel2: apu.channel2.Snapshot(),
		Channel3: apu.channel3.Snapshot(),
		Channel4: apu.channel4.Snapshot(),
		Enabled:  apu.enabled,
		NR50:     apu.nr50, NR51: apu.nr51, NR52: apu.nr52,
		FrameSequencer: apu.frameSequencer,
		FrameCounter:   apu.frameCounter,
		Cycles:         apu.cycles,
		SamplePhase:    apu.samplePhase,
		Mixer:          apu.mixer.Snapshot(),
	}
}

func (apu *APU) Restore(s Snapshot) {
	apu.channel1.Restore(s.Channel1)
	apu.channel2.Restore(s.Channel2)
	apu.channel3.Restore(s.Channel3)
	apu.channel4.Restore(s.Channel4)
	apu.enabled = s.Enabled
	apu.nr50, apu.nr51, apu.nr52 = s.NR50, s.NR51, s.NR52
	apu.frameSequencer = s.FrameSequencer
	apu.frameCounter = s.FrameCounter
	apu.cycles = s.Cycles
	apu.samplePhase = s.SamplePhase
	apu.mixer.Restore(s.Mixer)
}

// AudioInterface defines the interface for audio output
type AudioInterface interface {
	Initialize(sampleRate int, bufferSize int) error
	QueueAudio(samples []float32) error
	GetQueuedBytes() int
	Close() error
}

// NewAPU creates a new APU instance
func NewAPU() *APU {
	apu := &APU{
		channel1:     NewChannel1(),
		channel2:     NewChannel2(),
		channel3:     NewChannel3(),
		channel4:     NewChannel4(),
		mixer:        NewMixer(),
		sampleRate:   44100.0, // Standard sample rate
		sampleBuffer: make([]float32, 1024), // 1024 float32 samples (512 stereo pairs)
	}
	defaultSampleRate := 44100.0
	apu.sampleStep = uint32((defaultSampleRate * 65536.0) / cpuClockHz)

	apu.Reset()
	return apu
}

// Reset initializes the APU to its power-on state
func (apu *APU) Reset() {
	// Reset all channels
	apu.channel1.Reset()
	apu.channel2.Reset()
	apu.channel3.Reset()
	apu.channel4.Reset()

	// Reset master registers
	apu.nr50 = 0x77 // Max volume both channels
	apu.nr51 = 0xF3 // All channels left, channels 1-2 right
	apu.nr52 = 0xF1 // APU enabled, channel 1 status bit set

	// Reset timing
	apu.frameSequencer = 0
	apu.frameCounter = 0
	apu.cycles = 0

	// APU starts enabled
	apu.enabled = true

	// Reset mixer
	apu.mixer.Reset()
}

// Update processes APU for the given number of CPU cycles
func (apu *APU) Update(cycles uint8) {
	if !apu.enabled {
		return
	}

	apu.cycles += uint64(cycles)
	apu.frameCounter += uint16(cycles)

	// Frame sequencer runs at 512 Hz (8192 CPU cycles per step)
	if apu.frameCounter >= 8192 {
		apu.frameCounter -= 8192
		apu.stepFrameSequencer()
	}

	// Update all channels
	apu.channel1.Update(cycles)
	apu.channel2.Update(cycles)
	apu.channel3.Update(cycles)
	apu.channel4.Update(cycles)

	// Generate audio samples
	apu.generateSamples(cycles)
}

// stepFrameSequencer advances the frame sequencer one step
func (apu *APU) stepFrameSequencer() {
	// Frame sequencer pattern (8 steps, 512 Hz):
	// Step 0: Length
	// Step 1: Nothing  
	// Step 2: Length + Sweep
	// Step 3: Nothing
	// Step 4: Length
	// Step 5: Nothing
	// Step 6: Length + Sweep  
	// Step 7: Envelope

	switch apu.frameSequencer {
	case 0, 2, 4, 6: // Length counter steps
		apu.channel1.StepLength()
		apu.channel2.StepLength()
		apu.channel3.StepLength()
		apu.channel4.StepLength()

		if apu.frameSequencer == 2 || apu.frameSequencer == 6 { // Sweep steps
			apu.channel1.StepSweep()
		}

	case 7: // Envelope step
		apu.channel1.StepEnvelope()
		apu.channel2.StepEnvelope()
		apu.channel4.StepEnvelope()
	}

	apu.frameSequencer = (apu.frameSequencer + 1) % 8
}

// generateSamples creates audio samples for the given CPU cycles. The
// 16.16 fixed-point phase accumulator advances by sampleStep per T-cycle
// and emits one stereo pair per integer overflow, so the fractional
// sample debt of a 4-cycle instruction carries over to the next one.
func (apu *APU) generateSamples(cycles uint8) {
	for c := uint8(0); c < cycles; c++ {
		apu.samplePhase += apu.sampleStep
		if apu.samplePhase < 1<<16 {
			continue
		}
		apu.samplePhase -= 1 << 16
		leftSample, rightSample := apu.mixer.Mix(
			apu.channel1.GetSample(),
			apu.channel2.GetSample(),
			apu.channel3.GetSample(),
			apu.channel4.GetSample(),
			apu.nr50,
			apu.nr51,
		)

		// Store samples (interleaved stereo)
		if apu.sampleIndex < len(apu.sampleBuffer)-1 {
			apu.sampleBuffer[apu.sampleIndex] = leftSample
			apu.sampleBuffer[apu.sampleIndex+1] = rightSample
			apu.sampleIndex += 2
		}
	}
}

// GetSamples returns the current audio samples and resets the buffer
func (apu *APU) GetSamples() []float32 {
	if apu.sampleIndex == 0 {
		return nil
	}

	// Copy samples and reset buffer
	samples := make([]float32, apu.sampleIndex)
	copy(samples, apu.sampleBuffer[:apu.sampleIndex])
	apu.sampleIndex = 0

	return samples
}

// ReadByte reads from an APU register
func (apu *APU) ReadByte(address uint16) uint8 {
	switch {
	case address >= 0xFF10 && address <= 0xFF14: // Channel 1
		return apu.channel1.ReadRegister(uint8(address - 0xFF10))
	case address >= 0xFF16 && address <= 0xFF19: // Channel 2
		return apu.channel2.ReadRegister(uint8(address - 0xFF16))
	case address >= 0xFF1A && address <= 0xFF1E: // Channel 3
		return apu.channel3.ReadRegister(uint8(address - 0xFF1A))
	case address >= 0xFF20 && address <= 0xFF23: // Channel 4
		return apu.channel4.ReadRegister(uint8(address - 0xFF20))
	case address == 0xFF24: // NR50 - Master volume & VIN panning
		return apu.nr50
	case address == 0xFF25: // NR51 - Sound panning  
		return apu.nr51
	case address == 0xFF26: // NR52 - Sound on/off
		apu.updateNR52()
		return apu.nr52 | 0x70 // bits 6-4 are unused and read as 1
	case address >= 0xFF30 && address <= 0xFF3F: // Wave RAM
		return apu.channel3.ReadWaveRAM(uint8(address - 0xFF30))
	default:
		return 0xFF // Unmapped APU register
	}
}

// lengthOrWaveRegister reports whether a register still accepts writes while
// the APU is powered off: the length counters (NRx1 for channels 1/2/4, and
// NR31 for channel 3) and wave RAM keep working on real hardware even with
// NR52 bit 7 clear.
func lengthOrWaveRegister(address uint16) bool {
	switch address {
	case 0xFF11, 0xFF16, 0xFF1B, 0xFF20:
		return true
	}
	return address >= 0xFF30 && address <= 0xFF3F
}

// WriteByte writes to an APU register
func (apu *APU) WriteByte(address uint16, value uint8) {
	// If APU is disabled, only NR52, length-counter and wave-RAM writes land.
	if !apu.enabled && address != 0xFF26 && !lengthOrWaveRegister(address) {
		return
	}

	switch {
	case address >= 0xFF10 && address <= 0xFF14: // Channel 1
		apu.channel1.WriteRegister(uint8(address-0xFF10), value)
	case address >= 0xFF16 && address <= 0xFF19: // Channel 2
		apu.channel2.WriteRegister(uint8(address-0xFF16), value)
	case address >= 0xFF1A && address <= 0xFF1E: // Channel 3
		apu.channel3.WriteRegister(uint8(address-0xFF1A), value)
	case address >= 0xFF20 && address <= 0xFF23: // Channel 4
		apu.channel4.WriteRegister(uint8(address-0xFF20), value)
	case address == 0xFF24: // NR50 - Master volume & VIN panning
		apu.nr50 = value
	case address == 0xFF25: // NR51 - Sound panning
		apu.nr51 = value
	case address == 0xFF26: // NR52 - Sound on/off
		apu.writeNR52(value)
	case address >= 0xFF30 && address <= 0xFF3F: // Wave RAM
		apu.channel3.WriteWaveRAM(uint8(address-0xFF30), value)
	}
}

// writeNR52 handles writes to the master sound control register
func (apu *APU) writeNR52(value uint8) {
	wasEnabled := apu.enabled
	apu.enabled = (value & 0x80) != 0

	if wasEnabled && !apu.enabled {
		// APU was turned off - clear all registers except wave RAM
		apu.clearRegisters()
	}

	// Update NR52 with current channel status
	apu.updateNR52()
}

// clearRegisters clears 0xFF10-0xFF25 when the APU is powered off. The
// channel resets go through each channel's Reset rather than WriteByte,
// which would refuse most registers now that the APU is disabled. Wave RAM
// (0xFF30-0xFF3F) is preserved.
func (apu *APU) clearRegisters() {
	apu.channel1.Reset()
	apu.channel2.Reset()
	waveRAM := apu.channel3.waveRAM
	apu.channel3.Reset()
	apu.channel3.waveRAM = waveRAM
	apu.channel4.Reset()
	apu.nr50 = 0
	apu.nr51 = 0
	apu.frameSequencer = 0
	apu.frameCounter = 0
}

// updateNR52 updates the NR52 register with current channel status
func (apu *APU) updateNR52() {
	apu.nr52 = 0
	if apu.enabled {
		apu.nr52 |= 0x80 // APU enabled bit
	}

	// Set channel enable bits based on channel status
	if apu.channel1.IsEnabled() {
		apu.nr52 |= 0x01
	}
	if apu.channel2.IsEnabled() {
		apu.nr52 |= 0x02
	}
	if apu.channel3.IsEnabled() {
		apu.nr52 |= 0x04
	}
	if apu.channel4.IsEnabled() {
		apu.nr52 |= 0x08
	}
}

// IsEnabled returns whether the APU is enabled
func (apu *APU) IsEnabled() bool {
	return apu.enabled
}

// GetChannelStatus returns the status of all channels
func (apu *APU) GetChannelStatus() (bool, bool, bool, bool) {
	return apu.channel1.IsEnabled(),
		apu.channel2.IsEnabled(),
		apu.channel3.IsEnabled(),
		apu.channel4.IsEnabled()
}

// SetSampleRate sets the target audio sample rate and recomputes the
// fixed-point phase step.
func (apu *APU) SetSampleRate(rate float64) {
	apu.sampleRate = rate
	apu.sampleStep = uint32((rate * 65536.0) / cpuClockHz)
}

// String returns a string representation of the APU state
func (apu *APU) String() string {
	return fmt.Sprintf("APU{enabled=%t, nr50=0x%02X, nr51=0x%02X, nr52=0x%02X, frame=%d}",
		apu.enabled, apu.nr50, apu.nr51, apu.nr52, apu.frameSequencer)
}