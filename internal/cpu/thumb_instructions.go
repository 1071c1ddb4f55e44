package cpu

// Thumb decode results. Each of the nineteen format groups from §4.3 has
// its own tagged variant below.

// ThumbMoveShift: format 1, LSL/LSR/ASR Rd, Rs, #imm5.
type ThumbMoveShift struct {
	Op   ARMShiftType
	Imm5 uint8
	Rs   uint8
	Rd   uint8
}

// ThumbAddSub: format 2, ADD/SUB Rd, Rs, Rn|#imm3.
type ThumbAddSub struct {
	Immediate bool
	Subtract  bool
	RnOrImm   uint8
	Rs        uint8
	Rd        uint8
}

// ThumbImmediateOp: format 3, MOV/CMP/ADD/SUB Rd, #imm8.
type ThumbImmediateOp struct {
	Op   uint8 // 0=MOV 1=CMP 2=ADD 3=SUB
	Rd   uint8
	Imm8 uint8
}

// ThumbALU: format 4, the sixteen two-register ALU ops.
type ThumbALU struct {
	Op uint8
	Rs uint8
	Rd uint8
}

// ThumbHiRegOp: format 5, ADD/CMP/MOV/BX across the R0-R15 boundary.
type ThumbHiRegOp struct {
	Op   uint8 // 0=ADD 1=CMP 2=MOV 3=BX
	H1H2 uint8
	Rs   uint8
	Rd   uint8
}

// ThumbPCRelLoad: format 6, LDR Rd, [PC, #imm8*4].
type ThumbPCRelLoad struct {
	Rd   uint8
	Imm8 uint8
}

// ThumbLoadStoreReg: format 7, LDR/STR(B) Rd, [Rb, Ro].
type ThumbLoadStoreReg struct {
	L  bool
	B  bool
	Ro uint8
	Rb uint8
	Rd uint8
}

// ThumbLoadStoreSignExt: format 8, LDRH/LDSB/LDSH/STRH with register offset.
type ThumbLoadStoreSignExt struct {
	H  bool
	S  bool
	Ro uint8
	Rb uint8
	Rd uint8
}

// ThumbLoadStoreImm: format 9, LDR/STR(B) Rd, [Rb, #imm5].
type ThumbLoadStoreImm struct {
	B    bool
	L    bool
	Imm5 uint8
	Rb   uint8
	Rd   uint8
}

// ThumbLoadStoreHalfImm: format 10, LDRH/STRH Rd, [Rb, #imm5*2].
type ThumbLoadStoreHalfImm struct {
	L    bool
	Imm5 uint8
	Rb   uint8
	Rd   uint8
}

// ThumbSPRelLoadStore: format 11, LDR/STR Rd, [SP, #imm8*4].
type ThumbSPRelLoadStore struct {
	L    bool
	Rd   uint8
	Imm8 uint8
}

// ThumbLoadAddress: format 12, ADD Rd, {PC,SP}, #imm8*4.
type ThumbLoadAddress struct {
	SP   bool
	Rd   uint8
	Imm8 uint8
}

// ThumbAddSPOffset: format 13, ADD/SUB SP, #imm7*4.
type ThumbAddSPOffset struct {
	Negative bool
	Imm7     uint8
}

// ThumbPushPop: format 14.
type ThumbPushPop struct {
	Load bool // POP if true, PUSH if false
	R    bool // folds LR (PUSH) or PC (POP)
	List uint8
}

// ThumbBlockTransfer: format 15, STMIA/LDMIA Rb!, {list}.
type ThumbBlockTransfer struct {
	L    bool
	Rb   uint8
	List uint8
}

// ThumbCondBranch: format 16.
type ThumbCondBranch struct {
	Cond   ARMCondition
	Offset int8
}

// ThumbSWI: format 17.
type ThumbSWI struct {
	Comment uint8
}

// ThumbBranch: format 18, unconditional B.
type ThumbBranch struct {
	Offset int16 // already sign-extended 11-bit<<1
}

// ThumbLongBranchLink: format 19, one half of a BL pair.
type ThumbLongBranchLink struct {
	High   bool // H=0 is the first half, H=1 the second
	Offset uint16
}

// ThumbUndefined covers bit patterns with no assigned format.
type ThumbUndefined struct{}
