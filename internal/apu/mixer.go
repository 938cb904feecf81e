package apu

import "math"

// highPassAlpha and lowPassAlpha are the one-pole filter coefficients
// applied to the final stereo lanes: a near-unity high-pass
// that bleeds off DC offset without touching audible frequencies, and a
// much looser low-pass that softens the raw square/noise edges the way a
// real DMG's output capacitor and speaker would.
const (
	highPassAlpha = 0.999
	lowPassAlpha  = 0.25
)

// onePoleFilter is a single IIR stage; Mixer runs one of these per channel
// per filter kind (so four in total: HP-left, HP-right, LP-left, LP-right).
type onePoleFilter struct {
	prevIn, prevOut float32
}

func (f *onePoleFilter) highPass(alpha, x float32) float32 {
	y := alpha * (f.prevOut + x - f.prevIn)
	f.prevIn, f.prevOut = x, y
	return y
}

func (f *onePoleFilter) lowPass(alpha, x float32) float32 {
	y := f.prevOut + alpha*(x-f.prevOut)
	f.prevOut = y
	return y
}

// Mixer sums the four channel outputs into a stereo pair:
// route by NR51, scale by NR50's (volume+1)/8, normalize across the four
// channels, run through a DC-blocking high-pass and a softening low-pass,
// then soft-clip with tanh.
type Mixer struct {
	hpLeft, hpRight onePoleFilter
	lpLeft, lpRight onePoleFilter
}

// MixerSnapshot captures filter history so a save/load round-trip produces
// bit-identical subsequent audio.
type MixerSnapshot struct {
	HPLeftIn, HPLeftOut   float32
	HPRightIn, HPRightOut float32
	LPLeftOut             float32
	LPRightOut            float32
}

// NewMixer creates a new audio mixer.
func NewMixer() *Mixer {
	return &Mixer{}
}

// Reset clears all filter history, as at power-on.
func (m *Mixer) Reset() {
	m.hpLeft = onePoleFilter{}
	m.hpRight = onePoleFilter{}
	m.lpLeft = onePoleFilter{}
	m.lpRight = onePoleFilter{}
}

func (m *Mixer) Snapshot() MixerSnapshot {
	return MixerSnapshot{
		HPLeftIn: m.hpLeft.prevIn, HPLeftOut: m.hpLeft.prevOut,
		HPRightIn: m.hpRight.prevIn, HPRightOut: m.hpRight.prevOut,
		LPLeftOut:  m.lpLeft.prevOut,
		LPRightOut: m.lpRight.prevOut,
	}
}

func (m *Mixer) Restore(s MixerSnapshot) {
	m.hpLeft = onePoleFilter{prevIn: s.HPLeftIn, prevOut: s.HPLeftOut}
	m.hpRight = onePoleFilter{prevIn: s.HPRightIn, prevOut: s.HPRightOut}
	m.lpLeft = onePoleFilter{prevOut: s.LPLeftOut}
	m.lpRight = onePoleFilter{prevOut: s.LPRightOut}
}

// Mix combines the four channel outputs (each already normalized to
// [-1,1] by its channel's own DAC model) into a filtered, soft-clipped
// stereo pair.
func (m *Mixer) Mix(ch1, ch2, ch3, ch4 float32, nr50, nr51 uint8) (float32, float32) {
	leftVolume := float32((nr50>>4)&0x07+1) / 8.0
	rightVolume := float32(nr50&0x07+1) / 8.0

	var leftMix, rightMix float32
	if (nr51 & 0x10) != 0 {
		leftMix += ch1
	}
	if (nr51 & 0x01) != 0 {
		rightMix += ch1
	}
	if (nr51 & 0x20) != 0 {
		leftMix += ch2
	}
	if (nr51 & 0x02) != 0 {
		rightMix += ch2
	}
	if (nr51 & 0x40) != 0 {
		leftMix += ch3
	}
	if (nr51 & 0x04) != 0 {
		rightMix += ch3
	}
	if (nr51 & 0x80) != 0 {
		leftMix += ch4
	}
	if (nr51 & 0x08) != 0 {
		rightMix += ch4
	}

	leftSample := (leftMix / 4.0) * leftVolume
	rightSample := (rightMix / 4.0) * rightVolume

	leftSample = m.hpLeft.highPass(highPassAlpha, leftSample)
	rightSample = m.hpRight.highPass(highPassAlpha, rightSample)
	leftSample = m.lpLeft.lowPass(lowPassAlpha, leftSample)
	rightSample = m.lpRight.lowPass(lowPassAlpha, rightSample)

	return softClip(leftSample), softClip(rightSample)
}

// softClip applies a tanh soft-clipper so transients compress gracefully
// instead of hard-clamping at the rail.
func softClip(sample float32) float32 {
	return float32(math.Tanh(float64(sample)))
}

// clamp restricts a sample to the valid audio range [-1.0, 1.0]; kept for
// callers that bypass the tanh soft-clip (and for its own test coverage).
func (m *Mixer) clamp(sample float32) float32 {
	return float32(math.Max(-1.0, math.Min(1.0, float64(sample))))
}

// GetMixerInfo returns current mixer configuration info.
func (m *Mixer) GetMixerInfo(nr50, nr51 uint8) MixerInfo {
	return MixerInfo{
		LeftVolume:  float32((nr50>>4)&0x07+1) / 8.0,
		RightVolume: float32(nr50&0x07+1) / 8.0,
		Ch1Left:     (nr51 & 0x10) != 0,
		Ch1Right:    (nr51 & 0x01) != 0,
		Ch2Left:     (nr51 & 0x20) != 0,
		Ch2Right:    (nr51 & 0x02) != 0,
		Ch3Left:     (nr51 & 0x40) != 0,
		Ch3Right:    (nr51 & 0x04) != 0,
		Ch4Left:     (nr51 & 0x80) != 0,
		Ch4Right:    (nr51 & 0x08) != 0,
	}
}

// MixerInfo contains information about mixer configuration.
type MixerInfo struct {
	LeftVolume  float32
	RightVolume float32
	Ch1Left     bool
	Ch1Right    bool
	Ch2Left     bool
	Ch2Right    bool
	Ch3Left     bool
	Ch3Right    bool
	Ch4Left     bool
	Ch4Right    bool
}
