package gba

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goba/internal/logging"
)

func newResetCore(t *testing.T) *Core {
	t.Helper()
	c := New(logging.Discard())
	bios := make([]byte, 16*1024)
	cart := make([]byte, 0x200)
	require.NoError(t, c.Reset(bios, cart))
	return c
}

func TestResetPutsCPUInSupervisorAtZero(t *testing.T) {
	c := newResetCore(t)
	assert.Zero(t, c.CPU.Registers.PC)
	assert.True(t, c.CPU.Registers.IsIRQDisabled())
	assert.True(t, c.CPU.Registers.IsFIQDisabled())
}

func TestResetRejectsOversizedCartridge(t *testing.T) {
	c := New(logging.Discard())
	bios := make([]byte, 16*1024)
	tooBig := make([]byte, 32*1024*1024+1)
	err := c.Reset(bios, tooBig)
	assert.Error(t, err)
}

func TestTickFirstCallIsARefillAndReportsPositiveCycles(t *testing.T) {
	c := newResetCore(t)
	cycles := c.Tick()
	assert.Positive(t, cycles)
}

func TestPeekPokeRoundTripThroughIWRAM(t *testing.T) {
	c := newResetCore(t)
	require.NoError(t, c.Poke8(0x03000000, 0x42))
	v, err := c.Peek8(0x03000000)
	require.NoError(t, err)
	assert.EqualValues(t, 0x42, v)
}

func TestBreakpointDelegatesToCPU(t *testing.T) {
	c := newResetCore(t)
	c.SetBreakpoint(0x08000004)
	assert.True(t, c.HasBreakpoint(0x08000004))
	c.ClearBreakpoint(0x08000004)
	assert.False(t, c.HasBreakpoint(0x08000004))
}

func TestFrameReadyClearsAfterReset(t *testing.T) {
	c := newResetCore(t)
	assert.False(t, c.IsFrameReady())
	c.ResetFrameReady()
	assert.False(t, c.IsFrameReady())
}

func TestTickAdvancingByOneFrameWorthOfCyclesSetsFrameReady(t *testing.T) {
	c := newResetCore(t)
	for i := 0; i < 300000 && !c.IsFrameReady(); i++ {
		c.Tick()
	}
	assert.True(t, c.IsFrameReady(), "a full frame's worth of ticks should eventually flip the frame-ready edge")
}
