package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckConditionCoversEveryFlagCombinationUsedByGTAndLE(t *testing.T) {
	c := &CPU{Registers: NewRegisters()}

	// GT requires Z=0 and N==V.
	c.Registers.SetFlagZ(false)
	c.Registers.SetFlagN(true)
	c.Registers.SetFlagV(true)
	assert.True(t, c.checkCondition(GT))
	assert.False(t, c.checkCondition(LE))

	c.Registers.SetFlagZ(true)
	assert.False(t, c.checkCondition(GT), "Z=1 always fails GT regardless of N/V")
	assert.True(t, c.checkCondition(LE))
}

func TestCheckConditionHIAndLSAreComplementary(t *testing.T) {
	c := &CPU{Registers: NewRegisters()}
	c.Registers.SetFlagC(true)
	c.Registers.SetFlagZ(false)
	assert.True(t, c.checkCondition(HI))
	assert.False(t, c.checkCondition(LS))

	c.Registers.SetFlagZ(true)
	assert.False(t, c.checkCondition(HI), "Z=1 makes HI false even with C=1")
	assert.True(t, c.checkCondition(LS))
}

func TestCheckConditionNVNeverFires(t *testing.T) {
	c := &CPU{Registers: NewRegisters()}
	assert.False(t, c.checkCondition(NV))
	assert.True(t, c.checkCondition(AL))
}
