package cpu

// DecodeARM classifies a 32-bit instruction word into one of the sixteen
// ARM decode classes, matching masked bit patterns in the priority order
// set out by the architecture reference: PSR-transfer and multiply before
// data-processing (their encodings are otherwise indistinguishable from
// it), halfword transfer before single-data transfer.
func DecodeARM(instr uint32) interface{} {
	cond := ARMCondition((instr >> 28) & 0xF)
	base := ARMInstruction{Cond: cond, Raw: instr}

	bits2726 := (instr >> 26) & 0x3
	bit25 := (instr >> 25) & 1
	bit24 := (instr >> 24) & 1
	bits2423 := (instr >> 23) & 0x3
	bit22 := (instr >> 22) & 1
	bit21 := (instr >> 21) & 1
	bit20 := (instr >> 20) & 1
	bits76 := (instr >> 6) & 0x3
	bit7 := (instr >> 7) & 1
	bit4 := (instr >> 4) & 1

	if bits2726 == 0 {
		// Branch and Exchange: cond 0001 0010 1111 1111 1111 0001 Rm
		if (instr&0x0FFFFFF0) == 0x012FFF10 {
			return ARMBranchExchangeInstruction{ARMInstruction: base, Rm: uint8(instr & 0xF)}
		}

		// Multiply / Multiply-Long: bits 27-24 = 0000, bits 7-4 = 1001;
		// bit 23 selects the long form (UMULL/UMLAL/SMULL/SMLAL).
		if (instr>>4)&0xF == 0x9 && (instr>>24)&0xF == 0 {
			if (instr>>23)&1 == 1 {
				return ARMMultiplyLongInstruction{
					ARMInstruction: base,
					Signed:         ((instr >> 22) & 1) != 0,
					A:              ((instr >> 21) & 1) != 0,
					S:              ((instr >> 20) & 1) != 0,
					RdHi:           uint8((instr >> 16) & 0xF),
					RdLo:           uint8((instr >> 12) & 0xF),
					Rs:             uint8((instr >> 8) & 0xF),
					Rm:             uint8(instr & 0xF),
				}
			}
			return ARMMultiplyInstruction{
				ARMInstruction: base,
				A:               bit21 != 0,
				S:               bit20 != 0,
				Rd:              uint8((instr >> 16) & 0xF),
				Rn:              uint8((instr >> 12) & 0xF),
				Rs:              uint8((instr >> 8) & 0xF),
				Rm:              uint8(instr & 0xF),
			}
		}

		// Single-Data-Swap: cond 0001 0B00 Rn Rd 0000 1001 Rm
		if bits2423 == 0b10 && bit20 == 0 && ((instr>>4)&0xFF) == 0x09 {
			return ARMSingleDataSwapInstruction{
				ARMInstruction: base,
				B:              bit22 != 0,
				Rn:             uint8((instr >> 16) & 0xF),
				Rd:             uint8((instr >> 12) & 0xF),
				Rm:             uint8(instr & 0xF),
			}
		}

		// Halfword/signed-byte transfer: bit7=1, bit4=1, bits6-5 != 00
		if bit7 == 1 && bit4 == 1 && bits76 != 0 {
			return ARMHalfwordTransferInstruction{
				ARMInstruction: base,
				P:              ((instr >> 24) & 1) != 0,
				U:              ((instr >> 23) & 1) != 0,
				W:              ((instr >> 21) & 1) != 0,
				L:              bit20 != 0,
				ImmOffset:      ((instr >> 22) & 1) != 0,
				S:              ((instr >> 6) & 1) != 0,
				H:              ((instr >> 5) & 1) != 0,
				Rn:             uint8((instr >> 16) & 0xF),
				Rd:             uint8((instr >> 12) & 0xF),
				Rm:             uint8(instr & 0xF),
				Imm:            uint8(((instr>>8)&0xF)<<4 | (instr & 0xF)),
			}
		}

		// PSR transfer: cond 00010 (R) 001111 Rd 000000000000 (MRS)
		//               cond 00010 (R) 10 field_mask 11110000 0000 (MSR reg)
		//               cond 00 1 10 (R) 10 field_mask 1111 rotate imm8 (MSR imm)
		if bit25 == 0 && bits2423 == 0b10 && (instr>>20)&1 == 0 && ((instr>>16)&0xF) == 0xF && (instr&0xFFF) == 0 && bit21 == 0 {
			return ARMPSRTransferInstruction{
				ARMInstruction: base,
				ToCPSR:         bit22 == 0,
				IsMSR:          false,
				Rd:             uint8((instr >> 12) & 0xF),
			}
		}
		if bit25 == 0 && bits2423 == 0b10 && bit21 == 1 && ((instr>>12)&0xF) == 0xF {
			return ARMPSRTransferInstruction{
				ARMInstruction: base,
				ToCPSR:         bit22 == 0,
				IsMSR:          true,
				I:              false,
				WriteFlags:     ((instr >> 19) & 1) != 0,
				WriteCtl:       ((instr >> 16) & 1) != 0,
				Rm:             uint8(instr & 0xF),
			}
		}
		// MSR immediate: same field-mask/Rd=1111 shape as the register form
		// above, but bit25=1 (I bit) and the operand is a rotated 8-bit
		// immediate rather than Rm. This shares bits27-26=00 with
		// data-processing, so it must be caught here or it falls through to
		// decodeARMDataProcessing and silently decodes as TEQ/CMN with S=0.
		if bit25 == 1 && bits2423 == 0b10 && bit21 == 1 && ((instr>>12)&0xF) == 0xF {
			return ARMPSRTransferInstruction{
				ARMInstruction: base,
				ToCPSR:         bit22 == 0,
				IsMSR:          true,
				I:              true,
				WriteFlags:     ((instr >> 19) & 1) != 0,
				WriteCtl:       ((instr >> 16) & 1) != 0,
				Is:             uint8((instr >> 8) & 0xF),
				Nn:             uint8(instr & 0xFF),
			}
		}

		return decodeARMDataProcessing(base, instr)
	}

	if bits2726 == 1 {
		return ARMLoadStoreInstruction{
			ARMInstruction: base,
			I:              bit25 != 0,
			P:              ((instr >> 24) & 1) != 0,
			U:              ((instr >> 23) & 1) != 0,
			B:              bit22 != 0,
			W:              bit21 != 0,
			L:              bit20 != 0,
			Rn:             uint8((instr >> 16) & 0xF),
			Rd:             uint8((instr >> 12) & 0xF),
			Offset:         instr & 0xFFF,
			ShiftType:      ARMShiftType((instr >> 5) & 0x3),
			ShiftAmt:       uint8((instr >> 7) & 0x1F),
			Rm:             uint8(instr & 0xF),
		}
	}

	if bits2726 == 2 {
		if bit25 == 1 {
			offset := instr & 0x00FFFFFF
			if offset&0x00800000 != 0 {
				offset |= 0xFF000000
			}
			return ARMBranchInstruction{
				ARMInstruction: base,
				Link:           bit24 == 1,
				TargetAddr:     offset << 2,
			}
		}
		return ARMBlockDataTransferInstruction{
			ARMInstruction: base,
			P:              ((instr >> 24) & 1) != 0,
			U:              ((instr >> 23) & 1) != 0,
			S:              bit22 != 0,
			W:              bit21 != 0,
			L:              bit20 != 0,
			Rn:             uint8((instr >> 16) & 0xF),
			RegisterList:   uint16(instr & 0xFFFF),
		}
	}

	// bits2726 == 3
	if bit25 == 1 && bit24 == 1 && ((instr>>24)&0xF) == 0xF {
		return ARMSWIInstruction{ARMInstruction: base, Immediate: instr & 0x00FFFFFF}
	}
	// Coprocessor data operation/transfer/register transfer: all undefined
	// on GBA, which has no coprocessor interface wired to the bus.
	return ARMUndefinedInstruction{ARMInstruction: base}
}

// decodeARMDataProcessing handles the 00-class instructions that are not
// multiply, PSR-transfer, BX, swap, or halfword transfer.
func decodeARMDataProcessing(base ARMInstruction, instr uint32) interface{} {
	I := ((instr >> 25) & 1) != 0
	S := ((instr >> 20) & 1) != 0
	Rn := uint8((instr >> 16) & 0xF)
	Rd := uint8((instr >> 12) & 0xF)
	shiftType := ARMShiftType((instr >> 5) & 0x3)
	R := ((instr >> 4) & 1) != 0
	Rm := uint8(instr & 0xF)

	var Is, Rs, Nn uint8
	if I {
		Is = uint8((instr >> 8) & 0xF)
		Nn = uint8(instr & 0xFF)
	} else if R {
		Rs = uint8((instr >> 8) & 0xF)
	} else {
		Is = uint8((instr >> 7) & 0x1F)
	}

	return ARMDataProcessingInstruction{
		ARMInstruction: base,
		I:              I,
		Opcode:         ARMDataProcessingOperation((instr >> 21) & 0xF),
		S:              S,
		Rn:             Rn,
		Rd:             Rd,
		ShiftType:      shiftType,
		R:              R,
		Is:             Is,
		Rs:             Rs,
		Nn:             Nn,
		Rm:             Rm,
	}
}
