package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRegistersResetsIntoSupervisorWithIRQAndFIQDisabled(t *testing.T) {
	r := NewRegisters()
	assert.EqualValues(t, SVCMode, r.GetMode())
	assert.True(t, r.IsIRQDisabled())
	assert.True(t, r.IsFIQDisabled())
	assert.False(t, r.IsThumb())
}

func TestBankedStackPointerDoesNotAliasAcrossModes(t *testing.T) {
	r := NewRegisters()
	r.SetMode(SVCMode)
	r.SetReg(13, 0x03007FE0)

	r.SetMode(IRQMode)
	r.SetReg(13, 0x03007FA0)

	assert.Equal(t, uint32(0x03007FA0), r.GetReg(13))
	r.SetMode(SVCMode)
	assert.Equal(t, uint32(0x03007FE0), r.GetReg(13), "SVC bank must survive the trip through IRQ mode")
}

func TestFIQBanksR8ThroughR12Separately(t *testing.T) {
	r := NewRegisters()
	r.SetMode(USRMode)
	r.SetReg(8, 0x11111111)

	r.SetMode(FIQMode)
	r.SetReg(8, 0x22222222)
	assert.Equal(t, uint32(0x22222222), r.GetReg(8))

	r.SetMode(USRMode)
	assert.Equal(t, uint32(0x11111111), r.GetReg(8), "non-FIQ modes share one R8 bank")
}

func TestSPSRBanksByModeAndPanicsOutsideAnException(t *testing.T) {
	r := NewRegisters()
	r.SetMode(SVCMode)
	r.SetSPSR(0x600000D3)
	r.SetMode(IRQMode)
	r.SetSPSR(0x600000D7)

	assert.Equal(t, uint32(0x600000D7), r.SPSRFor(IRQMode))
	assert.Equal(t, uint32(0x600000D3), r.SPSRFor(SVCMode))

	r.SetMode(USRMode)
	assert.Panics(t, func() { r.GetSPSR() })
}

func TestFlagAccessorsRoundTripThroughCPSR(t *testing.T) {
	r := NewRegisters()
	r.SetFlagN(true)
	r.SetFlagZ(true)
	r.SetFlagC(false)
	r.SetFlagV(true)

	assert.True(t, r.GetFlagN())
	assert.True(t, r.GetFlagZ())
	assert.False(t, r.GetFlagC())
	assert.True(t, r.GetFlagV())

	r.SetFlagN(false)
	assert.False(t, r.GetFlagN())
	assert.True(t, r.GetFlagZ(), "clearing N must not disturb Z")
}
