package cpu

import "fmt"

// ErrUnimplementedOpcode is returned only when the instruction table itself
// has a gap. Every documented opcode (0x00-0xFF minus the eleven true
// undefined opcodes, plus all 256 CB-prefixed opcodes) is implemented, so in
// practice this is unreachable; it exists so an instruction-table gap
// surfaces a sentinel rather than a panic if that ever stops being true.
type ErrUnimplementedOpcode struct {
	Opcode uint8
	CB     bool
}

func (e *ErrUnimplementedOpcode) Error() string {
	if e.CB {
		return fmt.Sprintf("unimplemented CB opcode 0x%02X", e.Opcode)
	}
	return fmt.Sprintf("unimplemented opcode 0x%02X", e.Opcode)
}
