package cpu

import "goba/internal/bitops"

// executeThumb dispatches a decoded Thumb instruction. Unlike ARM, Thumb
// instructions execute unconditionally except the conditional-branch
// format, which tests its own condition field.
func (c *CPU) executeThumb(instrHalf uint16, instrAddr uint32) int {
	switch inst := DecodeThumb(instrHalf).(type) {
	case ThumbMoveShift:
		return c.execThumbMoveShift(inst)
	case ThumbAddSub:
		return c.execThumbAddSub(inst)
	case ThumbImmediateOp:
		return c.execThumbImmediateOp(inst)
	case ThumbALU:
		return c.execThumbALU(inst)
	case ThumbHiRegOp:
		return c.execThumbHiRegOp(inst, instrAddr)
	case ThumbPCRelLoad:
		return c.execThumbPCRelLoad(inst, instrAddr)
	case ThumbLoadStoreReg:
		return c.execThumbLoadStoreReg(inst)
	case ThumbLoadStoreSignExt:
		return c.execThumbLoadStoreSignExt(inst)
	case ThumbLoadStoreImm:
		return c.execThumbLoadStoreImm(inst)
	case ThumbLoadStoreHalfImm:
		return c.execThumbLoadStoreHalfImm(inst)
	case ThumbSPRelLoadStore:
		return c.execThumbSPRelLoadStore(inst)
	case ThumbLoadAddress:
		return c.execThumbLoadAddress(inst, instrAddr)
	case ThumbAddSPOffset:
		return c.execThumbAddSPOffset(inst)
	case ThumbPushPop:
		return c.execThumbPushPop(inst, instrAddr)
	case ThumbBlockTransfer:
		return c.execThumbBlockTransfer(inst)
	case ThumbCondBranch:
		return c.execThumbCondBranch(inst, instrAddr)
	case ThumbSWI:
		c.takeSWI(instrAddr, 2)
		return 3
	case ThumbBranch:
		c.Registers.PC = uint32(int64(instrAddr) + 4 + int64(inst.Offset))
		c.flush()
		return 3
	case ThumbLongBranchLink:
		return c.execThumbLongBranchLink(inst, instrAddr)
	default:
		c.takeUndefined(instrAddr, 2)
		return 3
	}
}

func (c *CPU) setLogicFlags(result uint32) {
	c.Registers.SetFlagN(result&0x80000000 != 0)
	c.Registers.SetFlagZ(result == 0)
}

func (c *CPU) setArithFlags(result uint32, carryOut, overflow bool) {
	c.setLogicFlags(result)
	c.Registers.SetFlagC(carryOut)
	c.Registers.SetFlagV(overflow)
}

func (c *CPU) execThumbMoveShift(inst ThumbMoveShift) int {
	rs := c.Registers.GetReg(inst.Rs)
	carryIn := c.Registers.GetFlagC()
	amount := uint32(inst.Imm5)

	var result uint32
	var carryOut bool
	switch inst.Op {
	case LSL:
		result, carryOut = bitops.LSLCarry(rs, amount)
	case LSR:
		if amount == 0 {
			amount = 32
		}
		result, carryOut = bitops.LSRCarry(rs, amount)
	case ASR:
		if amount == 0 {
			amount = 32
		}
		result, carryOut = bitops.ASRCarry(rs, amount)
	default:
		result, carryOut = rs, carryIn
	}
	c.Registers.SetReg(inst.Rd, result)
	c.setLogicFlags(result)
	c.Registers.SetFlagC(carryOut)
	return 1
}

func (c *CPU) execThumbAddSub(inst ThumbAddSub) int {
	rs := c.Registers.GetReg(inst.Rs)
	var operand uint32
	if inst.Immediate {
		operand = uint32(inst.RnOrImm)
	} else {
		operand = c.Registers.GetReg(inst.RnOrImm)
	}

	var result uint32
	var carryOut, overflow bool
	if inst.Subtract {
		result, carryOut, overflow = addWithCarry(rs, ^operand, 1)
	} else {
		result, carryOut, overflow = addWithCarry(rs, operand, 0)
	}
	c.Registers.SetReg(inst.Rd, result)
	c.setArithFlags(result, carryOut, overflow)
	return 1
}

func (c *CPU) execThumbImmediateOp(inst ThumbImmediateOp) int {
	rd := c.Registers.GetReg(inst.Rd)
	imm := uint32(inst.Imm8)

	switch inst.Op {
	case 0: // MOV
		c.Registers.SetReg(inst.Rd, imm)
		c.setLogicFlags(imm)
	case 1: // CMP
		result, carryOut, overflow := addWithCarry(rd, ^imm, 1)
		c.setArithFlags(result, carryOut, overflow)
	case 2: // ADD
		result, carryOut, overflow := addWithCarry(rd, imm, 0)
		c.Registers.SetReg(inst.Rd, result)
		c.setArithFlags(result, carryOut, overflow)
	case 3: // SUB
		result, carryOut, overflow := addWithCarry(rd, ^imm, 1)
		c.Registers.SetReg(inst.Rd, result)
		c.setArithFlags(result, carryOut, overflow)
	}
	return 1
}

func (c *CPU) execThumbALU(inst ThumbALU) int {
	rd := c.Registers.GetReg(inst.Rd)
	rs := c.Registers.GetReg(inst.Rs)
	carryIn := c.Registers.GetFlagC()

	var result uint32
	var carryOut, overflow bool
	var writesResult, isLogical, setsFlags bool = true, true, true

	switch inst.Op {
	case 0x0: // AND
		result, carryOut = rd&rs, carryIn
	case 0x1: // EOR
		result, carryOut = rd^rs, carryIn
	case 0x2: // LSL
		result, carryOut = bitops.LSLCarry(rd, rs&0xFF)
	case 0x3: // LSR
		result, carryOut = bitops.LSRCarry(rd, rs&0xFF)
	case 0x4: // ASR
		result, carryOut = bitops.ASRCarry(rd, rs&0xFF)
	case 0x5: // ADC
		result, carryOut, overflow = addWithCarry(rd, rs, boolToCarry(carryIn))
		isLogical = false
	case 0x6: // SBC
		result, carryOut, overflow = addWithCarry(rd, ^rs, boolToCarry(carryIn))
		isLogical = false
	case 0x7: // ROR
		result, carryOut = bitops.RORCarry(rd, rs&0xFF)
	case 0x8: // TST
		result, carryOut, writesResult = rd&rs, carryIn, false
	case 0x9: // NEG
		result, carryOut, overflow = addWithCarry(0, ^rs, 1)
		isLogical = false
	case 0xA: // CMP
		result, carryOut, overflow = addWithCarry(rd, ^rs, 1)
		writesResult, isLogical = false, false
	case 0xB: // CMN
		result, carryOut, overflow = addWithCarry(rd, rs, 0)
		writesResult, isLogical = false, false
	case 0xC: // ORR
		result, carryOut = rd|rs, carryIn
	case 0xD: // MUL
		result, setsFlags = rd*rs, true
		carryOut = carryIn // multiply leaves C unpredictable; kept unchanged
	case 0xE: // BIC
		result, carryOut = rd&^rs, carryIn
	case 0xF: // MVN
		result, carryOut = ^rs, carryIn
	}

	if writesResult {
		c.Registers.SetReg(inst.Rd, result)
	}
	if setsFlags {
		c.setLogicFlags(result)
		c.Registers.SetFlagC(carryOut)
		if !isLogical {
			c.Registers.SetFlagV(overflow)
		}
	}

	if inst.Op == 0xD {
		return 2
	}
	return 1
}

func (c *CPU) execThumbHiRegOp(inst ThumbHiRegOp, instrAddr uint32) int {
	rs := inst.Rs
	rd := inst.Rd
	rsVal := c.readReg(rs, instrAddr)

	switch inst.Op {
	case 0: // ADD
		c.Registers.SetReg(rd, c.readReg(rd, instrAddr)+rsVal)
		if rd == 15 {
			c.flush()
		}
	case 1: // CMP
		rdVal := c.readReg(rd, instrAddr)
		result, carryOut, overflow := addWithCarry(rdVal, ^rsVal, 1)
		c.setArithFlags(result, carryOut, overflow)
	case 2: // MOV
		c.Registers.SetReg(rd, rsVal)
		if rd == 15 {
			c.flush()
		}
	case 3: // BX
		c.Registers.SetThumbState(rsVal&1 != 0)
		if c.Registers.IsThumb() {
			c.Registers.PC = rsVal &^ 1
		} else {
			c.Registers.PC = rsVal &^ 3
		}
		c.flush()
	}
	return 1
}

func (c *CPU) execThumbPCRelLoad(inst ThumbPCRelLoad, instrAddr uint32) int {
	base := (c.pcOperand(instrAddr)) &^ 3
	addr := base + uint32(inst.Imm8)*4
	v, cycles, _ := c.Bus.Read32(addr)
	c.Registers.SetReg(inst.Rd, v)
	return 1 + cycles
}

func (c *CPU) execThumbLoadStoreReg(inst ThumbLoadStoreReg) int {
	addr := c.Registers.GetReg(inst.Rb) + c.Registers.GetReg(inst.Ro)
	cycles := 1
	if inst.L {
		var v uint32
		if inst.B {
			b, t, _ := c.Bus.Read8(addr)
			v, cycles = uint32(b), cycles+t
		} else {
			w, t, _ := c.Bus.Read32(addr)
			v, cycles = w, cycles+t
		}
		c.Registers.SetReg(inst.Rd, v)
	} else {
		val := c.Registers.GetReg(inst.Rd)
		if inst.B {
			t, _ := c.Bus.Write8(addr, uint8(val))
			cycles += t
		} else {
			t, _ := c.Bus.Write32(addr, val)
			cycles += t
		}
	}
	return cycles
}

func (c *CPU) execThumbLoadStoreSignExt(inst ThumbLoadStoreSignExt) int {
	addr := c.Registers.GetReg(inst.Rb) + c.Registers.GetReg(inst.Ro)
	cycles := 1
	var v uint32
	switch {
	case !inst.S && !inst.H: // STRH
		t, _ := c.Bus.Write16(addr, uint16(c.Registers.GetReg(inst.Rd)))
		cycles += t
		return cycles
	case !inst.S && inst.H: // LDRH
		h, t, _ := c.Bus.Read16(addr)
		v, cycles = uint32(h), cycles+t
	case inst.S && !inst.H: // LDSB
		sb, t, _ := c.Bus.Read8Signed(addr)
		v, cycles = uint32(sb), cycles+t
	default: // LDSH
		sh, t, _ := c.Bus.Read16Signed(addr)
		v, cycles = uint32(sh), cycles+t
	}
	c.Registers.SetReg(inst.Rd, v)
	return cycles
}

func (c *CPU) execThumbLoadStoreImm(inst ThumbLoadStoreImm) int {
	var addr uint32
	if inst.B {
		addr = c.Registers.GetReg(inst.Rb) + uint32(inst.Imm5)
	} else {
		addr = c.Registers.GetReg(inst.Rb) + uint32(inst.Imm5)*4
	}
	cycles := 1
	if inst.L {
		var v uint32
		if inst.B {
			b, t, _ := c.Bus.Read8(addr)
			v, cycles = uint32(b), cycles+t
		} else {
			w, t, _ := c.Bus.Read32(addr)
			v, cycles = w, cycles+t
		}
		c.Registers.SetReg(inst.Rd, v)
	} else {
		val := c.Registers.GetReg(inst.Rd)
		if inst.B {
			t, _ := c.Bus.Write8(addr, uint8(val))
			cycles += t
		} else {
			t, _ := c.Bus.Write32(addr, val)
			cycles += t
		}
	}
	return cycles
}

func (c *CPU) execThumbLoadStoreHalfImm(inst ThumbLoadStoreHalfImm) int {
	addr := c.Registers.GetReg(inst.Rb) + uint32(inst.Imm5)*2
	cycles := 1
	if inst.L {
		v, t, _ := c.Bus.Read16(addr)
		c.Registers.SetReg(inst.Rd, uint32(v))
		cycles += t
	} else {
		t, _ := c.Bus.Write16(addr, uint16(c.Registers.GetReg(inst.Rd)))
		cycles += t
	}
	return cycles
}

func (c *CPU) execThumbSPRelLoadStore(inst ThumbSPRelLoadStore) int {
	addr := c.Registers.GetReg(13) + uint32(inst.Imm8)*4
	cycles := 1
	if inst.L {
		v, t, _ := c.Bus.Read32(addr)
		c.Registers.SetReg(inst.Rd, v)
		cycles += t
	} else {
		t, _ := c.Bus.Write32(addr, c.Registers.GetReg(inst.Rd))
		cycles += t
	}
	return cycles
}

func (c *CPU) execThumbLoadAddress(inst ThumbLoadAddress, instrAddr uint32) int {
	var base uint32
	if inst.SP {
		base = c.Registers.GetReg(13)
	} else {
		base = c.pcOperand(instrAddr) &^ 3
	}
	c.Registers.SetReg(inst.Rd, base+uint32(inst.Imm8)*4)
	return 1
}

func (c *CPU) execThumbAddSPOffset(inst ThumbAddSPOffset) int {
	sp := c.Registers.GetReg(13)
	delta := uint32(inst.Imm7) * 4
	if inst.Negative {
		c.Registers.SetReg(13, sp-delta)
	} else {
		c.Registers.SetReg(13, sp+delta)
	}
	return 1
}

func (c *CPU) execThumbPushPop(inst ThumbPushPop, instrAddr uint32) int {
	sp := c.Registers.GetReg(13)
	cycles := 1

	if inst.Load { // POP
		addr := sp
		for i := 0; i < 8; i++ {
			if inst.List&(1<<uint(i)) != 0 {
				v, t, _ := c.Bus.Read32(addr)
				c.Registers.SetReg(uint8(i), v)
				cycles += t
				addr += 4
			}
		}
		if inst.R {
			v, t, _ := c.Bus.Read32(addr)
			c.Registers.PC = v &^ 1
			cycles += t
			addr += 4
			c.flush()
		}
		c.Registers.SetReg(13, addr)
		return cycles
	}

	// PUSH: compute final SP first, then store ascending, matching STMDB.
	count := 0
	for i := 0; i < 8; i++ {
		if inst.List&(1<<uint(i)) != 0 {
			count++
		}
	}
	if inst.R {
		count++
	}
	addr := sp - uint32(count)*4
	c.Registers.SetReg(13, addr)

	cur := addr
	for i := 0; i < 8; i++ {
		if inst.List&(1<<uint(i)) != 0 {
			t, _ := c.Bus.Write32(cur, c.Registers.GetReg(uint8(i)))
			cycles += t
			cur += 4
		}
	}
	if inst.R {
		t, _ := c.Bus.Write32(cur, c.Registers.GetReg(14))
		cycles += t
	}
	return cycles
}

func (c *CPU) execThumbBlockTransfer(inst ThumbBlockTransfer) int {
	addr := c.Registers.GetReg(inst.Rb)
	cycles := 1
	for i := 0; i < 8; i++ {
		if inst.List&(1<<uint(i)) == 0 {
			continue
		}
		if inst.L {
			v, t, _ := c.Bus.Read32(addr)
			c.Registers.SetReg(uint8(i), v)
			cycles += t
		} else {
			t, _ := c.Bus.Write32(addr, c.Registers.GetReg(uint8(i)))
			cycles += t
		}
		addr += 4
	}
	c.Registers.SetReg(inst.Rb, addr)
	return cycles
}

func (c *CPU) execThumbCondBranch(inst ThumbCondBranch, instrAddr uint32) int {
	if !c.checkCondition(inst.Cond) {
		return 1
	}
	offset := int32(inst.Offset) * 2
	c.Registers.PC = uint32(int64(instrAddr) + 4 + int64(offset))
	c.flush()
	return 3
}

func (c *CPU) execThumbLongBranchLink(inst ThumbLongBranchLink, instrAddr uint32) int {
	if !inst.High {
		offset := bitops.SignExtend(uint32(inst.Offset), 11) << 12
		c.Registers.SetReg(14, c.pcOperand(instrAddr)+offset)
		return 1
	}
	lr := c.Registers.GetReg(14)
	nextPC := lr + uint32(inst.Offset)<<1
	returnAddr := instrAddr + 2
	c.Registers.SetReg(14, returnAddr|1)
	c.Registers.PC = nextPC
	c.flush()
	return 3
}
