package bitops

import "testing"

import "github.com/stretchr/testify/assert"

func TestLSLCarry(t *testing.T) {
	v, c := LSLCarry(0x1, 31)
	assert.Equal(t, uint32(0x80000000), v)
	assert.False(t, c) // last bit shifted out is bit 1 of 0x1

	v, c = LSLCarry(0x2, 31)
	assert.Equal(t, uint32(0), v)
	assert.True(t, c)

	v, c = LSLCarry(0xFFFFFFFF, 32)
	assert.Equal(t, uint32(0), v)
	assert.True(t, c)

	v, c = LSLCarry(0x1, 33)
	assert.Equal(t, uint32(0), v)
	assert.False(t, c)

	v, c = LSLCarry(0x1234, 0)
	assert.Equal(t, uint32(0x1234), v)
	assert.False(t, c)
}

func TestLSRCarry(t *testing.T) {
	v, c := LSRCarry(0x80000000, 32)
	assert.Equal(t, uint32(0), v)
	assert.True(t, c)

	v, c = LSRCarry(0x1, 1)
	assert.Equal(t, uint32(0), v)
	assert.True(t, c)
}

func TestASRCarry(t *testing.T) {
	v, c := ASRCarry(0x80000000, 32)
	assert.Equal(t, uint32(0xFFFFFFFF), v)
	assert.True(t, c)

	v, c = ASRCarry(0x7FFFFFFF, 32)
	assert.Equal(t, uint32(0), v)
	assert.False(t, c)
}

func TestRORCarry(t *testing.T) {
	v, c := RORCarry(0x1, 1)
	assert.Equal(t, uint32(0x80000000), v)
	assert.True(t, c)
}

func TestRRXCarry(t *testing.T) {
	v, c := RRXCarry(0x1, true)
	assert.Equal(t, uint32(0x80000000), v)
	assert.True(t, c)

	v, c = RRXCarry(0x2, false)
	assert.Equal(t, uint32(0x1), v)
	assert.False(t, c)
}

func TestRotateRight32(t *testing.T) {
	assert.Equal(t, uint32(0xDDAABBCC), RotateRight32(0xAABBCCDD, 8))
	assert.Equal(t, uint32(0xAABBCCDD), RotateRight32(0xAABBCCDD, 0))
}

func TestSignExtend(t *testing.T) {
	assert.Equal(t, uint32(0xFFFFFFFF), SignExtend(0xFF, 8))
	assert.Equal(t, uint32(0x7F), SignExtend(0x7F, 8))
}
