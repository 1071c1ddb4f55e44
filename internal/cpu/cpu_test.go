package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goba/internal/logging"
	"goba/internal/membus"
)

func TestTickFirstCallIsARefillWithNoExecution(t *testing.T) {
	c, _ := newProgramCPU(t, []uint32{0xE1A00000, 0xE1A00000, 0xE1A00000})
	pcBefore := c.Registers.PC
	c.Tick()
	assert.Equal(t, pcBefore, c.Registers.PC, "a refill tick must not advance PC")
	assert.True(t, c.decoded.valid)
	assert.True(t, c.fetched.valid)
}

func TestInstructionAddressReportsDecodedSlotOnceFilled(t *testing.T) {
	c, _ := newProgramCPU(t, []uint32{0xE1A00000, 0xE1A00000, 0xE1A00000})
	assert.Equal(t, c.Registers.PC, c.InstructionAddress(), "before any Tick, no decoded instruction exists yet")
	c.Tick()
	assert.Equal(t, uint32(0x08000000), c.InstructionAddress())
}

func TestResetInvalidatesThePipeline(t *testing.T) {
	c, _ := newProgramCPU(t, []uint32{0xE1A00000, 0xE1A00000, 0xE1A00000})
	c.Tick()
	require.True(t, c.decoded.valid)

	c.Reset()
	assert.False(t, c.decoded.valid)
	assert.False(t, c.fetched.valid)
	assert.Zero(t, c.Cycles())
}

func TestBreakpointTrackingIsIndependentOfExecution(t *testing.T) {
	c := NewCPU(membus.New(logging.Discard()), logging.Discard())
	c.SetBreakpoint(0x08000100)
	assert.True(t, c.HasBreakpoint(0x08000100))
	assert.False(t, c.HasBreakpoint(0x08000104))

	c.ClearBreakpoint(0x08000100)
	assert.False(t, c.HasBreakpoint(0x08000100))
}

func TestCyclesAccumulateAcrossTicks(t *testing.T) {
	c, _ := newProgramCPU(t, []uint32{0xE1A00000, 0xE1A00000, 0xE1A00000})
	c.Tick()
	afterRefill := c.Cycles()
	assert.Positive(t, afterRefill)

	c.Tick()
	assert.Greater(t, c.Cycles(), afterRefill)
}
