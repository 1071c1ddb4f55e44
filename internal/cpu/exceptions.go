package cpu

import "goba/internal/membus"

// Exception vector addresses, GBA/ARM7TDMI layout.
const (
	vectorReset         = 0x00000000
	vectorUndefined     = 0x00000004
	vectorSWI           = 0x00000008
	vectorPrefetchAbort = 0x0000000C
	vectorDataAbort     = 0x00000010
	vectorIRQ           = 0x00000018
	vectorFIQ           = 0x0000001C
)

// enterException performs the common exception-entry sequence from §4.4:
// bank-switch to targetMode, stash CPSR in that mode's new SPSR, set LR to
// the return-address convention, clear T, force I, optionally force F,
// then jump to vector. The pipeline is left invalid so the next Tick
// refills from the vector.
func (c *CPU) enterException(targetMode uint8, vector uint32, returnAddr uint32, forceFIQDisable bool) {
	savedCPSR := c.Registers.CPSR
	c.Registers.SetMode(targetMode)
	c.Registers.SetSPSR(savedCPSR)
	c.Registers.SetReg(14, returnAddr)
	c.Registers.SetThumbState(false)
	c.Registers.SetIRQDisabled(true)
	if forceFIQDisable {
		c.Registers.SetFIQDisabled(true)
	}
	c.Registers.PC = vector
	c.flush()
}

// takeUndefined enters the Undefined-instruction trap. The decoder
// reaching a coprocessor or otherwise unencodable pattern is the only
// path here; it is an ordinary guest-visible trap, not a host panic.
func (c *CPU) takeUndefined(instrAddr uint32, instrSize uint32) {
	c.enterException(UNDMode, vectorUndefined, instrAddr+instrSize, false)
}

// takeSWI enters the Supervisor exception per §4.2: LR_svc is the address
// of the instruction following the SWI.
func (c *CPU) takeSWI(instrAddr uint32, instrSize uint32) {
	c.enterException(SVCMode, vectorSWI, instrAddr+instrSize, false)
}

// irqPending implements the gating rule from §4.4: IME set, (IE & IF)
// nonzero, and CPSR.I clear.
func (c *CPU) irqPending() bool {
	if c.Registers.IsIRQDisabled() {
		return false
	}
	ime := c.Bus.IOByte(membus.IOOffsetIME)
	if ime&1 == 0 {
		return false
	}
	ie := uint16(c.Bus.IOByte(membus.IOOffsetIE)) | uint16(c.Bus.IOByte(membus.IOOffsetIE+1))<<8
	iflags := uint16(c.Bus.IOByte(membus.IOOffsetIF)) | uint16(c.Bus.IOByte(membus.IOOffsetIF+1))<<8
	return ie&iflags != 0
}

// enterIRQ takes a pending IRQ. The return address is the interrupted
// instruction's address plus 4 in both ARM and Thumb state, per the
// ARM7TDMI IRQ return convention; the handler returns with
// SUBS PC, LR, #4.
func (c *CPU) enterIRQ() int {
	instrAddr := c.Registers.PC
	if c.decoded.valid {
		instrAddr = c.decoded.addr
	}
	c.enterException(IRQMode, vectorIRQ, instrAddr+4, false)
	return 3
}
