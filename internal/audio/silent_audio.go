package audio

// SilentAudioOutput is an AudioOutputInterface that discards every sample.
// When the audio device is unavailable the emulator keeps running with a
// silent sink rather than failing.
type SilentAudioOutput struct {
	config  AudioConfig
	playing bool
}

// NewSilentAudioOutput creates a no-op audio sink.
func NewSilentAudioOutput() *SilentAudioOutput {
	return &SilentAudioOutput{}
}

func (s *SilentAudioOutput) Initialize(config AudioConfig) error {
	s.config = config
	return nil
}

func (s *SilentAudioOutput) Start() error { s.playing = true; return nil }
func (s *SilentAudioOutput) Stop() error  { s.playing = false; return nil }

func (s *SilentAudioOutput) PushSamples(samples []int16) error { return nil }

func (s *SilentAudioOutput) SetVolume(volume float32) error {
	s.config.Volume = volume
	return nil
}

func (s *SilentAudioOutput) GetConfig() AudioConfig { return s.config }
func (s *SilentAudioOutput) IsPlaying() bool        { return s.playing }
func (s *SilentAudioOutput) GetBufferLevel() float32 { return 0 }
func (s *SilentAudioOutput) Cleanup() error          { return nil }
