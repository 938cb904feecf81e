package joypad

// Joypad implements the Game Boy's joypad input system. The joypad register
// (0xFF00) uses a 2x4 button matrix:
//   - P14 selects the direction keys (Up, Down, Left, Right)
//   - P15 selects the action keys (A, B, Select, Start)
//   - a line reads active-low: 0 = selected
//   - a button bit reads active-low: 0 = pressed
//
// The joypad interrupt is requested on a high-to-low transition of any of
// the register's readable input bits (bits 3-0), not on a raw button press:
// whether a press is visible at all depends on which row is currently
// selected, so the edge has to be detected on the computed output nibble.
type Joypad struct {
	// Button states (true = pressed, false = released)
	Up     bool
	Down   bool
	Left   bool
	Right  bool
	A      bool
	B      bool
	Select bool
	Start  bool

	// Select lines (true = not selected/high, false = selected/active)
	P14 bool // Direction keys select line (0 = selected)
	P15 bool // Action keys select line (0 = selected)

	joypadInterrupt bool

	// prevOutputBits is the register's bits 3-0 as of the last button or
	// select-line change, used to detect the falling edge that requests
	// the interrupt.
	prevOutputBits uint8
}

// Joypad register memory address
const (
	JOYPAD_ADDR = 0xFF00 // Joypad register (P1)
)

// Joypad register bit positions
const (
	// Input bits (bits 3-0) - active low (0 = pressed, 1 = released)
	JOYPAD_RIGHT_A_BIT    = 0x01 // Bit 0: Right/A button
	JOYPAD_LEFT_B_BIT     = 0x02 // Bit 1: Left/B button
	JOYPAD_UP_SELECT_BIT  = 0x04 // Bit 2: Up/Select button
	JOYPAD_DOWN_START_BIT = 0x08 // Bit 3: Down/Start button

	// Select bits (bits 5-4) - active low (0 = selected, 1 = not selected)
	JOYPAD_P14_BIT = 0x10 // Bit 4: P14 - Direction keys select (0 = select directions)
	JOYPAD_P15_BIT = 0x20 // Bit 5: P15 - Action keys select (0 = select actions)

	// Unused bits (bits 7-6) - always return 1
	JOYPAD_UNUSED_BITS = 0xC0 // Bits 7-6: Unused (return 1 when read)

	inputBitsMask = 0x0F // bits 3-0
)

// NewJoypad creates a new joypad with Game Boy initial state: all buttons
// released, both select lines high (not selected).
func NewJoypad() *Joypad {
	j := &Joypad{
		P14: true,
		P15: true,
	}
	j.prevOutputBits = j.outputBits()
	return j
}

// Reset resets the joypad to initial Game Boy state.
func (j *Joypad) Reset() {
	*j = Joypad{P14: true, P15: true}
	j.prevOutputBits = j.outputBits()
}

// Snapshot is the joypad's button/select-line state plus the edge-detector
// bookkeeping, for a save state.
type Snapshot struct {
	Up, Down, Left, Right bool
	A, B, Select, Start   bool
	P14, P15              bool
	JoypadInterrupt       bool
	PrevOutputBits        uint8
}

func (j *Joypad) Snapshot() Snapshot {
	return Snapshot{
		Up: j.Up, Down: j.Down, Left: j.Left, Right: j.Right,
		A: j.A, B: j.B, Select: j.Select, Start: j.Start,
		P14: j.P14, P15: j.P15,
		JoypadInterrupt: j.joypadInterrupt,
		PrevOutputBits:  j.prevOutputBits,
	}
}

func (j *Joypad) Restore(s Snapshot) {
	j.Up, j.Down, j.Left, j.Right = s.Up, s.Down, s.Left, s.Right
	j.A, j.B, j.Select, j.Start = s.A, s.B, s.Select, s.Start
	j.P14, j.P15 = s.P14, s.P15
	j.joypadInterrupt = s.JoypadInterrupt
	j.prevOutputBits = s.PrevOutputBits
}

// HasJoypadInterrupt returns true if a joypad interrupt is pending.
func (j *Joypad) HasJoypadInterrupt() bool {
	return j.joypadInterrupt
}

// ClearJoypadInterrupt clears the pending joypad interrupt.
func (j *Joypad) ClearJoypadInterrupt() {
	j.joypadInterrupt = false
}

// directionBits packs the direction buttons into bits 0-3 (1 = pressed),
// in register-bit order (Right/Left/Up/Down).
func (j *Joypad) directionBits() uint8 {
	var b uint8
	if j.Right {
		b |= JOYPAD_RIGHT_A_BIT
	}
	if j.Left {
		b |= JOYPAD_LEFT_B_BIT
	}
	if j.Up {
		b |= JOYPAD_UP_SELECT_BIT
	}
	if j.Down {
		b |= JOYPAD_DOWN_START_BIT
	}
	return b
}

// actionBits packs the action buttons into bits 0-3 (1 = pressed), in
// register-bit order (A/B/Select/Start).
func (j *Joypad) actionBits() uint8 {
	var b uint8
	if j.A {
		b |= JOYPAD_RIGHT_A_BIT
	}
	if j.B {
		b |= JOYPAD_LEFT_B_BIT
	}
	if j.Select {
		b |= JOYPAD_UP_SELECT_BIT
	}
	if j.Start {
		b |= JOYPAD_DOWN_START_BIT
	}
	return b
}

// outputBits computes the register's bits 3-0 as they currently read:
// active-low, gated by which row(s) are selected. A button only affects
// the readable bits while its row is selected; with neither row selected
// the bits read high.
func (j *Joypad) outputBits() uint8 {
	var pressed uint8
	if !j.P14 {
		pressed |= j.directionBits()
	}
	if !j.P15 {
		pressed |= j.actionBits()
	}
	return ^pressed & inputBitsMask
}

// updateInterrupt recomputes the register's output bits and requests the
// joypad interrupt on any output bit's high-to-low transition.
// Must be called after any change to button state or select lines.
func (j *Joypad) updateInterrupt() {
	current := j.outputBits()
	if j.prevOutputBits&^current != 0 {
		j.joypadInterrupt = true
	}
	j.prevOutputBits = current
}

// SetButtonState sets the state of a specific button. Whether this can
// request an interrupt depends on whether the button's row is currently
// selected.
func (j *Joypad) SetButtonState(button string, pressed bool) {
	var target *bool

	switch button {
	case "up":
		target = &j.Up
	case "down":
		target = &j.Down
	case "left":
		target = &j.Left
	case "right":
		target = &j.Right
	case "a":
		target = &j.A
	case "b":
		target = &j.B
	case "select":
		target = &j.Select
	case "start":
		target = &j.Start
	default:
		return
	}

	*target = pressed
	j.updateInterrupt()
}

// GetButtonState returns the current state of a specific button.
func (j *Joypad) GetButtonState(button string) bool {
	switch button {
	case "up":
		return j.Up
	case "down":
		return j.Down
	case "left":
		return j.Left
	case "right":
		return j.Right
	case "a":
		return j.A
	case "b":
		return j.B
	case "select":
		return j.Select
	case "start":
		return j.Start
	default:
		return false
	}
}

// ReadJoypad returns the joypad register value based on current button
// states and select lines.
func (j *Joypad) ReadJoypad() uint8 {
	var result uint8 = JOYPAD_UNUSED_BITS
	if j.P14 {
		result |= JOYPAD_P14_BIT
	}
	if j.P15 {
		result |= JOYPAD_P15_BIT
	}
	result |= j.outputBits()
	return result
}

// WriteJoypad sets the joypad register value, updating the select lines.
// Only bits 5-4 are writable; button-state bits are read-only and driven
// by SetButtonState. A select-line change can itself expose a falling edge
// on a button already held, so it must also run interrupt detection.
func (j *Joypad) WriteJoypad(value uint8) {
	j.P14 = (value & JOYPAD_P14_BIT) != 0
	j.P15 = (value & JOYPAD_P15_BIT) != 0
	j.updateInterrupt()
}

// ReadRegister reads from the joypad register at the specified address.
func (j *Joypad) ReadRegister(address uint16) uint8 {
	if address == JOYPAD_ADDR {
		return j.ReadJoypad()
	}
	return 0xFF
}

// WriteRegister writes to the joypad register at the specified address.
func (j *Joypad) WriteRegister(address uint16, value uint8) {
	if address == JOYPAD_ADDR {
		j.WriteJoypad(value)
	}
}

// IsJoypadRegister returns true if the address is the joypad register.
func IsJoypadRegister(address uint16) bool {
	return address == JOYPAD_ADDR
}

// GetDirectionButtonsByte returns a byte representing direction button
// states in normal (not register) logic: bit set = pressed.
func (j *Joypad) GetDirectionButtonsByte() uint8 {
	return j.directionBits()
}

// GetActionButtonsByte returns a byte representing action button states
// in normal (not register) logic: bit set = pressed.
func (j *Joypad) GetActionButtonsByte() uint8 {
	return j.actionBits()
}

// SetDirectionButtons sets all direction button states from a byte.
// Bit 0 = Right, Bit 1 = Left, Bit 2 = Up, Bit 3 = Down.
func (j *Joypad) SetDirectionButtons(buttons uint8) {
	j.SetButtonState("right", (buttons&0x01) != 0)
	j.SetButtonState("left", (buttons&0x02) != 0)
	j.SetButtonState("up", (buttons&0x04) != 0)
	j.SetButtonState("down", (buttons&0x08) != 0)
}

// SetActionButtons sets all action button states from a byte.
// Bit 0 = A, Bit 1 = B, Bit 2 = Select, Bit 3 = Start.
func (j *Joypad) SetActionButtons(buttons uint8) {
	j.SetButtonState("a", (buttons&0x01) != 0)
	j.SetButtonState("b", (buttons&0x02) != 0)
	j.SetButtonState("select", (buttons&0x04) != 0)
	j.SetButtonState("start", (buttons&0x08) != 0)
}
