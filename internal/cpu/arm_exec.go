package cpu

import "goba/internal/bitops"

// executeARM dispatches a decoded ARM instruction (condition already
// checked by the caller) and returns the cycles it consumed.
func (c *CPU) executeARM(instrWord, instrAddr uint32) int {
	switch inst := DecodeARM(instrWord).(type) {
	case ARMDataProcessingInstruction:
		return c.execDataProcessing(inst, instrAddr)
	case ARMPSRTransferInstruction:
		return c.execPSRTransfer(inst, instrAddr)
	case ARMMultiplyInstruction:
		return c.execMultiply(inst)
	case ARMMultiplyLongInstruction:
		return c.execMultiplyLong(inst)
	case ARMSingleDataSwapInstruction:
		return c.execSwap(inst)
	case ARMBranchExchangeInstruction:
		return c.execBX(inst)
	case ARMBranchInstruction:
		return c.execBranch(inst, instrAddr)
	case ARMLoadStoreInstruction:
		return c.execLoadStore(inst, instrAddr)
	case ARMHalfwordTransferInstruction:
		return c.execHalfwordTransfer(inst, instrAddr)
	case ARMBlockDataTransferInstruction:
		return c.execBlockDataTransfer(inst, instrAddr)
	case ARMSWIInstruction:
		c.takeSWI(instrAddr, 4)
		return 3
	case ARMUndefinedInstruction:
		c.takeUndefined(instrAddr, 4)
		return 3
	default:
		c.takeUndefined(instrAddr, 4)
		return 3
	}
}

// operand2 evaluates Operand2 for a data-processing instruction, returning
// its value and the shifter carry-out, per §4.2.
func (c *CPU) operand2(inst ARMDataProcessingInstruction, instrAddr uint32) (uint32, bool) {
	carryIn := c.Registers.GetFlagC()

	if inst.I {
		amount := uint32(inst.Is) * 2
		if amount == 0 {
			return uint32(inst.Nn), carryIn
		}
		return bitops.RORCarry(uint32(inst.Nn), amount)
	}

	rm := c.readReg(inst.Rm, instrAddr)

	var amount uint32
	if inst.R {
		amount = c.readReg(inst.Rs, instrAddr) & 0xFF
		if amount == 0 {
			return rm, carryIn
		}
		return bitops.Shift(bitops.ShiftType(inst.ShiftType), rm, amount, carryIn)
	}

	amount = uint32(inst.Is)
	if amount == 0 {
		switch inst.ShiftType {
		case LSL:
			return rm, carryIn
		case ROR:
			return bitops.RRXCarry(rm, carryIn)
		default: // LSR, ASR #0 mean #32
			amount = 32
		}
	}
	return bitops.Shift(bitops.ShiftType(inst.ShiftType), rm, amount, carryIn)
}

func (c *CPU) execDataProcessing(inst ARMDataProcessingInstruction, instrAddr uint32) int {
	op2, shiftCarry := c.operand2(inst, instrAddr)
	rn := c.readReg(inst.Rn, instrAddr)
	carryIn := c.Registers.GetFlagC()

	var result uint32
	var carryOut, overflow bool

	switch inst.Opcode {
	case AND, TST:
		result, carryOut = rn&op2, shiftCarry
	case EOR, TEQ:
		result, carryOut = rn^op2, shiftCarry
	case ORR:
		result, carryOut = rn|op2, shiftCarry
	case MOV:
		result, carryOut = op2, shiftCarry
	case BIC:
		result, carryOut = rn&^op2, shiftCarry
	case MVN:
		result, carryOut = ^op2, shiftCarry
	case ADD, CMN:
		result, carryOut, overflow = addWithCarry(rn, op2, 0)
	case ADC:
		result, carryOut, overflow = addWithCarry(rn, op2, boolToCarry(carryIn))
	case SUB, CMP:
		result, carryOut, overflow = addWithCarry(rn, ^op2, 1)
	case SBC:
		result, carryOut, overflow = addWithCarry(rn, ^op2, boolToCarry(carryIn))
	case RSB:
		result, carryOut, overflow = addWithCarry(op2, ^rn, 1)
	case RSC:
		result, carryOut, overflow = addWithCarry(op2, ^rn, boolToCarry(carryIn))
	}

	if inst.Opcode.writesResult() {
		if inst.Rd == 15 {
			c.Registers.PC = result &^ 3
			if inst.S && bankOf(c.Registers.GetMode()) != bankUser {
				// Mode return: restore CPSR from SPSR of the mode we were in
				// before this instruction started (still current, since
				// SetMode hasn't run yet).
				c.Registers.CPSR = c.Registers.GetSPSR()
			}
			c.flush()
		} else {
			c.Registers.SetReg(inst.Rd, result)
		}
	}

	if inst.S && inst.Rd != 15 {
		c.Registers.SetFlagN(result&0x80000000 != 0)
		c.Registers.SetFlagZ(result == 0)
		c.Registers.SetFlagC(carryOut)
		if inst.Opcode.isLogical() {
			// V unchanged for logical ops.
		} else {
			c.Registers.SetFlagV(overflow)
		}
	}

	return 1
}

// addWithCarry computes a+b+carryIn as the ARM ALU does, returning the
// 32-bit result, carry-out and signed overflow.
func addWithCarry(a, b, carryIn uint32) (uint32, bool, bool) {
	sum := uint64(a) + uint64(b) + uint64(carryIn)
	result := uint32(sum)
	carryOut := sum > 0xFFFFFFFF
	overflow := (^(a ^ b) & (a ^ result) & 0x80000000) != 0
	return result, carryOut, overflow
}

func boolToCarry(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// execPSRTransfer implements MRS and MSR.
func (c *CPU) execPSRTransfer(inst ARMPSRTransferInstruction, instrAddr uint32) int {
	if !inst.ToCPSR && bankOf(c.Registers.GetMode()) == bankUser {
		// USR and SYS have no SPSR: treat the transfer as undefined.
		c.takeUndefined(instrAddr, 4)
		return 3
	}

	if !inst.IsMSR {
		var v uint32
		if inst.ToCPSR {
			v = c.Registers.CPSR
		} else {
			v = c.Registers.GetSPSR()
		}
		c.Registers.SetReg(inst.Rd, v)
		return 1
	}

	var operand uint32
	if inst.I {
		amount := uint32(inst.Is) * 2
		if amount == 0 {
			operand = uint32(inst.Nn)
		} else {
			operand, _ = bitops.RORCarry(uint32(inst.Nn), amount)
		}
	} else {
		operand = c.readReg(inst.Rm, instrAddr)
	}

	var mask uint32
	if inst.WriteFlags {
		mask |= 0xFF000000
	}
	if inst.WriteCtl {
		mask |= 0x000000FF
	}

	if inst.ToCPSR {
		c.Registers.CPSR = (c.Registers.CPSR &^ mask) | (operand & mask)
	} else {
		c.Registers.SetSPSR((c.Registers.GetSPSR() &^ mask) | (operand & mask))
	}
	return 1
}

func (c *CPU) execMultiply(inst ARMMultiplyInstruction) int {
	rm := c.Registers.GetReg(inst.Rm)
	rs := c.Registers.GetReg(inst.Rs)
	result := rm * rs
	if inst.A {
		result += c.Registers.GetReg(inst.Rn)
	}
	c.Registers.SetReg(inst.Rd, result)
	if inst.S {
		c.Registers.SetFlagN(result&0x80000000 != 0)
		c.Registers.SetFlagZ(result == 0)
		// C is documented unpredictable; this core leaves it unchanged.
	}
	return 1
}

func (c *CPU) execMultiplyLong(inst ARMMultiplyLongInstruction) int {
	rm := c.Registers.GetReg(inst.Rm)
	rs := c.Registers.GetReg(inst.Rs)

	var lo, hi uint32
	if inst.Signed {
		product := int64(int32(rm)) * int64(int32(rs))
		if inst.A {
			acc := int64(c.Registers.GetReg(inst.RdHi))<<32 | int64(c.Registers.GetReg(inst.RdLo))
			product += acc
		}
		lo, hi = uint32(product), uint32(product>>32)
	} else {
		product := uint64(rm) * uint64(rs)
		if inst.A {
			acc := uint64(c.Registers.GetReg(inst.RdHi))<<32 | uint64(c.Registers.GetReg(inst.RdLo))
			product += acc
		}
		lo, hi = uint32(product), uint32(product>>32)
	}

	c.Registers.SetReg(inst.RdLo, lo)
	c.Registers.SetReg(inst.RdHi, hi)
	if inst.S {
		c.Registers.SetFlagN(hi&0x80000000 != 0)
		c.Registers.SetFlagZ(lo == 0 && hi == 0)
	}
	return 2
}

func (c *CPU) execSwap(inst ARMSingleDataSwapInstruction) int {
	addr := c.Registers.GetReg(inst.Rn)
	if inst.B {
		old, _, _ := c.Bus.Read8(addr)
		c.Bus.Write8(addr, uint8(c.Registers.GetReg(inst.Rm)))
		c.Registers.SetReg(inst.Rd, uint32(old))
	} else {
		old, _, _ := c.Bus.Read32(addr)
		c.Bus.Write32(addr, c.Registers.GetReg(inst.Rm))
		c.Registers.SetReg(inst.Rd, old)
	}
	return 2
}

func (c *CPU) execBX(inst ARMBranchExchangeInstruction) int {
	target := c.Registers.GetReg(inst.Rm)
	c.Registers.SetThumbState(target&1 != 0)
	if c.Registers.IsThumb() {
		c.Registers.PC = target &^ 1
	} else {
		c.Registers.PC = target &^ 3
	}
	c.flush()
	return 3
}

func (c *CPU) execBranch(inst ARMBranchInstruction, instrAddr uint32) int {
	if inst.Link {
		c.Registers.SetReg(14, instrAddr+4)
	}
	c.Registers.PC = instrAddr + 8 + inst.TargetAddr
	c.flush()
	return 3
}

// loadStoreAddress computes the transfer address and effective offset for
// a Single-Data-Transfer instruction, resolving an optionally shifted
// register offset.
func (c *CPU) loadStoreAddress(inst ARMLoadStoreInstruction, instrAddr uint32) (transferAddr, writebackAddr uint32) {
	base := c.Registers.GetReg(inst.Rn)

	var offset uint32
	if inst.I {
		rm := c.readReg(inst.Rm, instrAddr)
		amount := uint32(inst.ShiftAmt)
		if amount == 0 {
			switch inst.ShiftType {
			case LSL:
				offset = rm
			case ROR:
				offset, _ = bitops.RRXCarry(rm, c.Registers.GetFlagC())
			default:
				amount = 32
				offset, _ = bitops.Shift(bitops.ShiftType(inst.ShiftType), rm, amount, c.Registers.GetFlagC())
			}
		} else {
			offset, _ = bitops.Shift(bitops.ShiftType(inst.ShiftType), rm, amount, c.Registers.GetFlagC())
		}
	} else {
		offset = inst.Offset
	}

	var adjusted uint32
	if inst.U {
		adjusted = base + offset
	} else {
		adjusted = base - offset
	}

	if inst.P {
		return adjusted, adjusted
	}
	return base, adjusted
}

func (c *CPU) execLoadStore(inst ARMLoadStoreInstruction, instrAddr uint32) int {
	transferAddr, writebackAddr := c.loadStoreAddress(inst, instrAddr)

	cycles := 1
	if inst.L {
		var loaded uint32
		if inst.B {
			v, t, _ := c.Bus.Read8(transferAddr)
			loaded = uint32(v)
			cycles += t
		} else {
			v, t, _ := c.Bus.Read32(transferAddr)
			loaded = v
			cycles += t
		}
		c.Registers.SetReg(inst.Rd, loaded)
		if inst.Rd == 15 {
			c.Registers.PC = loaded &^ 3
			c.flush()
			cycles += 2
		}
	} else {
		value := c.Registers.GetReg(inst.Rd)
		if inst.Rd == 15 {
			value = instrAddr + 12
		}
		if inst.B {
			t, _ := c.Bus.Write8(transferAddr, uint8(value))
			cycles += t
		} else {
			t, _ := c.Bus.Write32(transferAddr, value)
			cycles += t
		}
	}

	if inst.W || !inst.P {
		c.Registers.SetReg(inst.Rn, writebackAddr)
	}
	return cycles
}

func (c *CPU) execHalfwordTransfer(inst ARMHalfwordTransferInstruction, instrAddr uint32) int {
	base := c.Registers.GetReg(inst.Rn)

	var offset uint32
	if inst.ImmOffset {
		offset = uint32(inst.Imm)
	} else {
		offset = c.readReg(inst.Rm, instrAddr)
	}

	var adjusted uint32
	if inst.U {
		adjusted = base + offset
	} else {
		adjusted = base - offset
	}

	transferAddr := base
	if inst.P {
		transferAddr = adjusted
	}

	cycles := 1
	if inst.L {
		var loaded uint32
		switch {
		case inst.S && inst.H && transferAddr&1 == 1:
			// LDRSH from a misaligned (odd) address reads a signed byte
			// from that address instead of a signed halfword, per §4.2.
			v, t, _ := c.Bus.Read8Signed(transferAddr)
			loaded, cycles = uint32(v), cycles+t
		case inst.S && inst.H:
			v, t, _ := c.Bus.Read16Signed(transferAddr)
			loaded, cycles = uint32(v), cycles+t
		case inst.S && !inst.H:
			v, t, _ := c.Bus.Read8Signed(transferAddr)
			loaded, cycles = uint32(v), cycles+t
		default:
			v, t, _ := c.Bus.Read16(transferAddr)
			loaded, cycles = uint32(v), cycles+t
		}
		c.Registers.SetReg(inst.Rd, loaded)
	} else {
		t, _ := c.Bus.Write16(transferAddr, uint16(c.Registers.GetReg(inst.Rd)))
		cycles += t
	}

	if inst.W || !inst.P {
		c.Registers.SetReg(inst.Rn, adjusted)
	}
	return cycles
}

func (c *CPU) execBlockDataTransfer(inst ARMBlockDataTransferInstruction, instrAddr uint32) int {
	count := 0
	for i := 0; i < 16; i++ {
		if inst.RegisterList&(1<<uint(i)) != 0 {
			count++
		}
	}

	base := c.Registers.GetReg(inst.Rn)
	userBank := inst.S && !(inst.L && inst.RegisterList&0x8000 != 0)

	if count == 0 {
		// An empty list is legal and still bumps Rn by 0x40 (§4.2).
		if inst.U {
			c.Registers.SetReg(inst.Rn, base+0x40)
		} else {
			c.Registers.SetReg(inst.Rn, base-0x40)
		}
		return 1
	}

	var start uint32
	if inst.U {
		start = base
		if inst.P {
			start += 4
		}
	} else {
		start = base - uint32(count)*4
		if !inst.P {
			start += 4
		}
	}

	cycles := 1
	addr := start
	for i := 0; i < 16; i++ {
		if inst.RegisterList&(1<<uint(i)) == 0 {
			continue
		}
		reg := uint8(i)
		if inst.L {
			v, t, _ := c.Bus.Read32(addr)
			cycles += t
			if userBank {
				c.Registers.SetUserReg(reg, v)
			} else {
				c.Registers.SetReg(reg, v)
			}
			if reg == 15 {
				c.Registers.PC = v &^ 3
				if inst.S && bankOf(c.Registers.GetMode()) != bankUser {
					c.Registers.CPSR = c.Registers.GetSPSR()
				}
				c.flush()
			}
		} else {
			var v uint32
			if reg == 15 {
				v = instrAddr + 12
			} else if userBank {
				v = c.Registers.GetUserReg(reg)
			} else {
				v = c.Registers.GetReg(reg)
			}
			t, _ := c.Bus.Write32(addr, v)
			cycles += t
		}
		addr += 4
	}

	if inst.W {
		if inst.U {
			c.Registers.SetReg(inst.Rn, base+uint32(count)*4)
		} else {
			c.Registers.SetReg(inst.Rn, base-uint32(count)*4)
		}
	}
	return cycles
}
