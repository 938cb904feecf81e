package display

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// TcellDisplay renders the Game Boy framebuffer to a real terminal using
// half-block characters: each cell packs two vertically-stacked pixels via
// its foreground/background colors.
type TcellDisplay struct {
	screen     tcell.Screen
	config     DisplayConfig
	shouldQuit bool
}

// NewTcellDisplay creates a terminal display implementation backed by tcell.
func NewTcellDisplay() *TcellDisplay {
	return &TcellDisplay{}
}

var shadeColors = [4]tcell.Color{
	tcell.ColorWhite,
	tcell.ColorSilver,
	tcell.ColorGray,
	tcell.ColorBlack,
}

// Initialize allocates and starts the tcell screen.
func (t *TcellDisplay) Initialize(config DisplayConfig) error {
	t.config = config
	if err := ValidateConfig(config); err != nil {
		return fmt.Errorf("tcell display: %w", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("tcell display: failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("tcell display: failed to init screen: %w", err)
	}

	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	t.screen = screen
	t.shouldQuit = false
	return nil
}

// Present draws the framebuffer as one terminal cell per two vertical
// Game Boy pixels (top pixel as foreground, bottom pixel as background),
// using the space-with-colored-background half-block trick.
func (t *TcellDisplay) Present(framebuffer *[GameBoyHeight][GameBoyWidth]uint8) error {
	if t.screen == nil {
		return fmt.Errorf("tcell display: not initialized")
	}

	for y := 0; y < GameBoyHeight; y += 2 {
		for x := 0; x < GameBoyWidth; x++ {
			top := clampShade(framebuffer[y][x])
			bottom := top
			if y+1 < GameBoyHeight {
				bottom = clampShade(framebuffer[y+1][x])
			}

			char, fg, bg := halfBlockCell(top, bottom)
			style := tcell.StyleDefault.Foreground(fg).Background(bg)
			t.screen.SetContent(x, y/2, char, nil, style)
		}
	}

	t.screen.Show()
	t.pollQuit()
	return nil
}

func clampShade(c uint8) uint8 {
	if c > 3 {
		return 3
	}
	return c
}

// halfBlockCell picks a glyph/color pair so a single terminal cell can show
// two distinct shades stacked vertically via the unicode half-block.
func halfBlockCell(top, bottom uint8) (rune, tcell.Color, tcell.Color) {
	if top == bottom {
		return ' ', tcell.ColorDefault, shadeColors[top]
	}
	return '▀', shadeColors[top], shadeColors[bottom]
}

// SetTitle updates the terminal window title via an OSC escape sequence,
// which tcell exposes through SetTitle on capable terminals.
func (t *TcellDisplay) SetTitle(title string) error {
	if t.screen == nil {
		return nil
	}
	t.screen.SetTitle(title)
	return nil
}

func (t *TcellDisplay) ShouldClose() bool { return t.shouldQuit }

// PollEvents drains pending tcell events, watching only for the quit keys
// (Ctrl+C, Escape, 'q'); actual game input is handled by the host's
// input.InputManager, not the display layer.
func (t *TcellDisplay) PollEvents() {
	if t.screen == nil {
		return
	}
	for t.screen.HasPendingEvent() {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
				t.shouldQuit = true
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

func (t *TcellDisplay) pollQuit() {
	for t.screen.HasPendingEvent() {
		if ev, ok := t.screen.PollEvent().(*tcell.EventKey); ok {
			if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
				t.shouldQuit = true
			}
		}
	}
}

// Cleanup finalizes the tcell screen, restoring the terminal.
func (t *TcellDisplay) Cleanup() error {
	if t.screen != nil {
		t.screen.Fini()
		t.screen = nil
	}
	return nil
}
