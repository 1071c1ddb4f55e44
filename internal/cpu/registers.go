package cpu

import "fmt"

// ARM7TDMI CPU operating modes
const (
	USRMode = 0b10000 // User mode
	FIQMode = 0b10001 // FIQ mode (Fast Interrupt Request)
	IRQMode = 0b10010 // IRQ mode (Interrupt Request)
	SVCMode = 0b10011 // Supervisor mode
	ABTMode = 0b10111 // Abort mode
	UNDMode = 0b11011 // Undefined instruction mode
	SYSMode = 0b11111 // System mode (shares User mode registers)
)

// bank indexes the small per-mode tables (SP/LR, SPSR) below. USR and SYS
// share bankUser, since they share every register including SP/LR and have
// no SPSR of their own.
type bank int

const (
	bankUser bank = iota
	bankFIQ
	bankIRQ
	bankSVC
	bankABT
	bankUND
	bankCount
)

// bankOf maps a CPSR mode field to its SP/LR/SPSR bank index. Any mode not
// named here (there are only the seven listed above) falls back to
// bankUser, matching real hardware's "undefined mode" behavior of reusing
// the current register set.
func bankOf(mode uint8) bank {
	switch mode {
	case FIQMode:
		return bankFIQ
	case IRQMode:
		return bankIRQ
	case SVCMode:
		return bankSVC
	case ABTMode:
		return bankABT
	case UNDMode:
		return bankUND
	default:
		return bankUser
	}
}

// Registers holds ARM7TDMI register file state as a handful of small
// banked tables rather than one named field per banked register: SP/LR
// bank by mode through bankOf, FIQ's extra R8-R12 bank lives in its own
// array since FIQ is the only mode that banks beyond SP/LR, and SPSR
// banks the same way minus the (nonexistent) USR/SYS entry.
type Registers struct {
	r       [13]uint32         // R0-R12 for every mode except FIQ's R8-R12
	fiqHigh [5]uint32          // FIQ-private R8-R12, indexed by regNum-8
	spLR    [bankCount][2]uint32 // [bank][0]=SP(R13), [bank][1]=LR(R14)
	spsr    [bankCount]uint32    // spsr[bankUser] is never read or written

	// Program Counter R15
	PC uint32

	// Current Program Status Register
	CPSR uint32
}

// NewRegisters creates and initializes a new Registers struct.
// CPU starts in Supervisor mode after reset, with IRQ and FIQ disabled
// and the ARM instruction set selected; the caller sets PC once BIOS/ROM
// is loaded.
func NewRegisters() *Registers {
	r := &Registers{}
	r.CPSR = uint32(SVCMode) | (1 << 7) | (1 << 6) // SVC, IRQ disabled, FIQ disabled, ARM state
	return r
}

// GetMode returns the current CPU operating mode from CPSR.
func (r *Registers) GetMode() uint8 {
	return uint8(r.CPSR & 0x1F) // Lower 5 bits define the mode
}

// SetMode rewrites the CPSR mode bits. GetReg/SetReg pick the right
// banked register purely from these bits, so no register shuffling
// happens here.
func (r *Registers) SetMode(mode uint8) {
	r.CPSR = (r.CPSR &^ 0x1F) | uint32(mode)
}

// GetReg returns the value of a general-purpose register (R0-R15),
// resolving banked registers from the current CPSR mode. Reading R15
// returns the raw PC; adding the ARM(+8)/Thumb(+4) prefetch offset when
// PC is used as an operand is the decoder's job, not this accessor's.
func (r *Registers) GetReg(regNum uint8) uint32 {
	if regNum > 15 {
		panic(fmt.Sprintf("cpu: read from undefined register R%d", regNum))
	}
	if regNum == 15 {
		return r.PC
	}

	b := bankOf(r.GetMode())
	if b == bankFIQ && regNum >= 8 && regNum <= 12 {
		return r.fiqHigh[regNum-8]
	}
	if regNum == 13 {
		return r.spLR[b][0]
	}
	if regNum == 14 {
		return r.spLR[b][1]
	}
	return r.r[regNum]
}

// SetReg sets the value of a general-purpose register (R0-R15), banked
// per the current CPSR mode. Writing R15 does not itself flush the
// pipeline; the executor detects a PC-writing instruction and flushes.
func (r *Registers) SetReg(regNum uint8, value uint32) {
	if regNum > 15 {
		panic(fmt.Sprintf("cpu: write to undefined register R%d", regNum))
	}
	if regNum == 15 {
		r.PC = value
		return
	}

	b := bankOf(r.GetMode())
	switch {
	case b == bankFIQ && regNum >= 8 && regNum <= 12:
		r.fiqHigh[regNum-8] = value
	case regNum == 13:
		r.spLR[b][0] = value
	case regNum == 14:
		r.spLR[b][1] = value
	default:
		r.r[regNum] = value
	}
}

// GetUserReg/SetUserReg read or write the User-mode bank of R13-R15
// regardless of the current mode, for LDM/STM's "user bank transfer"
// (the S-bit set with R15 outside the transfer list).
func (r *Registers) GetUserReg(regNum uint8) uint32 {
	switch regNum {
	case 15:
		return r.PC
	case 14:
		return r.spLR[bankUser][1]
	case 13:
		return r.spLR[bankUser][0]
	default:
		return r.r[regNum]
	}
}

func (r *Registers) SetUserReg(regNum uint8, value uint32) {
	switch regNum {
	case 15:
		r.PC = value
	case 14:
		r.spLR[bankUser][1] = value
	case 13:
		r.spLR[bankUser][0] = value
	default:
		r.r[regNum] = value
	}
}

// GetSPSR returns the SPSR banked for the current mode. USR and SYS have
// no SPSR bank; per §7 asking for one there is treated as an
// emulation-level programming error and panics. The ARM executor does not
// ask in those modes: MRS/MSR naming SPSR take the undefined-instruction
// trap, and the S-bit CPSR restore of a data-processing write to R15 or
// an LDM loading R15 is skipped.
func (r *Registers) GetSPSR() uint32 {
	return r.SPSRFor(r.GetMode())
}

// SetSPSR writes the SPSR banked for the current mode.
func (r *Registers) SetSPSR(value uint32) {
	r.SetSPSRFor(r.GetMode(), value)
}

// SPSRFor/SetSPSRFor address a specific mode's SPSR bank directly,
// without switching modes; GetSPSR/SetSPSR route through them.
func (r *Registers) SPSRFor(mode uint8) uint32 {
	b := bankOf(mode)
	if b == bankUser {
		panic(fmt.Sprintf("cpu: no SPSR in mode 0x%02X", mode))
	}
	return r.spsr[b]
}

func (r *Registers) SetSPSRFor(mode uint8, value uint32) {
	b := bankOf(mode)
	if b == bankUser {
		panic(fmt.Sprintf("cpu: no SPSR in mode 0x%02X", mode))
	}
	r.spsr[b] = value
}

// --- CPSR Flag getters/setters ---

// IsThumb returns true if T flag in CPSR is set (Thumb state).
func (r *Registers) IsThumb() bool {
	return (r.CPSR>>5)&1 == 1
}

// SetThumbState sets or clears the T flag in CPSR.
func (r *Registers) SetThumbState(thumb bool) {
	if thumb {
		r.CPSR |= 1 << 5
	} else {
		r.CPSR &^= 1 << 5
	}
}

// IsFIQDisabled returns true if F flag in CPSR is set (FIQ disabled).
func (r *Registers) IsFIQDisabled() bool {
	return (r.CPSR>>6)&1 == 1
}

// SetFIQDisabled sets or clears the F flag in CPSR.
func (r *Registers) SetFIQDisabled(disabled bool) {
	if disabled {
		r.CPSR |= 1 << 6
	} else {
		r.CPSR &^= 1 << 6
	}
}

// IsIRQDisabled returns true if I flag in CPSR is set (IRQ disabled).
func (r *Registers) IsIRQDisabled() bool {
	return (r.CPSR>>7)&1 == 1
}

// SetIRQDisabled sets or clears the I flag in CPSR.
func (r *Registers) SetIRQDisabled(disabled bool) {
	if disabled {
		r.CPSR |= 1 << 7
	} else {
		r.CPSR &^= 1 << 7
	}
}

// GetFlagN returns the N (Negative) flag from CPSR.
func (r *Registers) GetFlagN() bool { return (r.CPSR>>31)&1 == 1 }

// GetFlagZ returns the Z (Zero) flag from CPSR.
func (r *Registers) GetFlagZ() bool { return (r.CPSR>>30)&1 == 1 }

// GetFlagC returns the C (Carry) flag from CPSR.
func (r *Registers) GetFlagC() bool { return (r.CPSR>>29)&1 == 1 }

// GetFlagV returns the V (Overflow) flag from CPSR.
func (r *Registers) GetFlagV() bool { return (r.CPSR>>28)&1 == 1 }

// SetFlagN sets the N flag in CPSR.
func (r *Registers) SetFlagN(set bool) {
	if set {
		r.CPSR |= 1 << 31
	} else {
		r.CPSR &^= 1 << 31
	}
}

// SetFlagZ sets the Z flag in CPSR.
func (r *Registers) SetFlagZ(set bool) {
	if set {
		r.CPSR |= 1 << 30
	} else {
		r.CPSR &^= 1 << 30
	}
}

// SetFlagC sets the C flag in CPSR.
func (r *Registers) SetFlagC(set bool) {
	if set {
		r.CPSR |= 1 << 29
	} else {
		r.CPSR &^= 1 << 29
	}
}

// SetFlagV sets the V flag in CPSR.
func (r *Registers) SetFlagV(set bool) {
	if set {
		r.CPSR |= 1 << 28
	} else {
		r.CPSR &^= 1 << 28
	}
}

// String returns a multi-line dump of the register file for debugger use.
func (r *Registers) String() string {
	mode := r.GetMode()
	modeStr := ""
	switch mode {
	case USRMode:
		modeStr = "USR"
	case FIQMode:
		modeStr = "FIQ"
	case IRQMode:
		modeStr = "IRQ"
	case SVCMode:
		modeStr = "SVC"
	case ABTMode:
		modeStr = "ABT"
	case UNDMode:
		modeStr = "UND"
	case SYSMode:
		modeStr = "SYS"
	default:
		modeStr = fmt.Sprintf("?%02X?", mode)
	}

	thumbState := "ARM"
	if r.IsThumb() {
		thumbState = "THUMB"
	}

	return fmt.Sprintf(
		"R0 =%08X  R1 =%08X  R2 =%08X  R3 =%08X\n"+
			"R4 =%08X  R5 =%08X  R6 =%08X  R7 =%08X\n"+
			"R8 =%08X  R9 =%08X  R10=%08X  R11=%08X\n"+
			"R12=%08X  SP =%08X  LR =%08X  PC =%08X\n"+
			"CPSR=%08X (%s %s N:%t Z:%t C:%t V:%t I:%t F:%t)",
		r.GetReg(0), r.GetReg(1), r.GetReg(2), r.GetReg(3),
		r.GetReg(4), r.GetReg(5), r.GetReg(6), r.GetReg(7),
		r.GetReg(8), r.GetReg(9), r.GetReg(10), r.GetReg(11),
		r.GetReg(12), r.GetReg(13), r.GetReg(14), r.GetReg(15),
		r.CPSR, modeStr, thumbState,
		r.GetFlagN(), r.GetFlagZ(), r.GetFlagC(), r.GetFlagV(),
		r.IsIRQDisabled(), r.IsFIQDisabled(),
	)
}
