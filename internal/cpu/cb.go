package cpu

// executeCB decodes and runs one CB-prefixed opcode. The encoding is a clean
// two-field split, no irregular opcodes to special-case: bits 7-6 select the
// operation group (rotate/shift, BIT, RES, SET), bits 5-3 select the bit
// index (for BIT/RES/SET) or the rotate/shift variant, and bits 2-0 select
// the operand register per the same 3-bit encoding as the primary table.
// Every form touching (HL) costs 16 T-cycles instead of the register form's 8,
// except BIT (HL) which costs 12 (reads but never writes back).
func (c *CPU) executeCB(bus Bus, op uint8) (uint8, error) {
	idx := op & 7
	bitNum := (op >> 3) & 7

	switch op >> 6 {
	case 0: // rotate/shift group, selected by bits 5-3
		v := c.reg8(bus, idx)
		var result uint8
		switch bitNum {
		case 0:
			result = c.rlc(v)
		case 1:
			result = c.rrc(v)
		case 2:
			result = c.rl(v)
		case 3:
			result = c.rr(v)
		case 4:
			result = c.sla(v)
		case 5:
			result = c.sra(v)
		case 6:
			result = c.swap(v)
		default:
			result = c.srl(v)
		}
		c.setReg8(bus, idx, result)
		return memCycles(idx, 8, 16), nil
	case 1: // BIT n,r
		c.bit(c.reg8(bus, idx), bitNum)
		return memCycles(idx, 8, 12), nil
	case 2: // RES n,r
		v := c.reg8(bus, idx) &^ (1 << bitNum)
		c.setReg8(bus, idx, v)
		return memCycles(idx, 8, 16), nil
	default: // SET n,r
		v := c.reg8(bus, idx) | (1 << bitNum)
		c.setReg8(bus, idx, v)
		return memCycles(idx, 8, 16), nil
	}
}
