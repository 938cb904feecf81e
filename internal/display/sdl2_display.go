package display

import (
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"
)

// bytesPerPixel matches the RGBA8888 texture format below.
const bytesPerPixel = 4

// SDL2Display implements DisplayInterface with a hardware-accelerated SDL2
// window: a streaming texture sized to the Game Boy screen, scaled up by
// the renderer's integer-scaled copy on present.
type SDL2Display struct {
	window      *sdl.Window
	renderer    *sdl.Renderer
	texture     *sdl.Texture
	config      DisplayConfig
	pixelBuffer []byte
	shouldClose bool
}

// NewSDL2Display creates an SDL2-backed video display implementation.
func NewSDL2Display() *SDL2Display {
	return &SDL2Display{}
}

func (s *SDL2Display) Initialize(config DisplayConfig) error {
	if err := ValidateConfig(config); err != nil {
		return fmt.Errorf("sdl2 display: %w", err)
	}
	s.config = config

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("sdl2 display: failed to init SDL2: %w", err)
	}

	scale := config.ScaleFactor
	if scale <= 0 {
		scale = 1
	}
	winW := int32(GameBoyWidth * scale)
	winH := int32(GameBoyHeight * scale)

	window, err := sdl.CreateWindow("Game Boy", sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		winW, winH, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("sdl2 display: failed to create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("sdl2 display: failed to create renderer: %w", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING,
		GameBoyWidth, GameBoyHeight)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("sdl2 display: failed to create texture: %w", err)
	}
	s.texture = texture
	s.pixelBuffer = make([]byte, GameBoyWidth*GameBoyHeight*bytesPerPixel)

	return nil
}

func (s *SDL2Display) Present(framebuffer *[GameBoyHeight][GameBoyWidth]uint8) error {
	if s.renderer == nil {
		return fmt.Errorf("sdl2 display: not initialized")
	}

	palette := s.config.Palette
	colors := [4]RGBColor{palette.White, palette.LightGray, palette.DarkGray, palette.Black}

	for y := 0; y < GameBoyHeight; y++ {
		for x := 0; x < GameBoyWidth; x++ {
			shade := framebuffer[y][x]
			if shade > 3 {
				shade = 3
			}
			c := colors[shade]
			idx := (y*GameBoyWidth + x) * bytesPerPixel
			// ABGR byte order for little-endian RGBA8888, matching the
			// texture format requested at init.
			s.pixelBuffer[idx] = 0xFF
			s.pixelBuffer[idx+1] = c.B
			s.pixelBuffer[idx+2] = c.G
			s.pixelBuffer[idx+3] = c.R
		}
	}

	if err := s.texture.Update(nil, unsafe.Pointer(&s.pixelBuffer[0]), GameBoyWidth*bytesPerPixel); err != nil {
		return fmt.Errorf("sdl2 display: texture update failed: %w", err)
	}

	s.renderer.SetDrawColor(0, 0, 0, 255)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()

	s.pollEvents()
	return nil
}

func (s *SDL2Display) SetTitle(title string) error {
	if s.window != nil {
		s.window.SetTitle(title)
	}
	return nil
}

func (s *SDL2Display) ShouldClose() bool { return s.shouldClose }

func (s *SDL2Display) PollEvents() { s.pollEvents() }

func (s *SDL2Display) pollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch event.(type) {
		case *sdl.QuitEvent:
			s.shouldClose = true
		}
	}
}

func (s *SDL2Display) Cleanup() error {
	if s.texture != nil {
		s.texture.Destroy()
		s.texture = nil
	}
	if s.renderer != nil {
		s.renderer.Destroy()
		s.renderer = nil
	}
	if s.window != nil {
		s.window.Destroy()
		s.window = nil
	}
	sdl.Quit()
	return nil
}
