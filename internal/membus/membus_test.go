package membus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goba/internal/logging"
)

func newTestBus() *Bus {
	return New(logging.Discard())
}

func TestWriteReadRoundTrip(t *testing.T) {
	b := newTestBus()

	require.NoError(t, writeAll(b.Write8, 0x03000010, 0xAB))
	v, _, err := b.Read8(0x03000010)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), v)

	require.NoError(t, writeAll(b.Write16, 0x03000020, 0x1234))
	v16, _, err := b.Read16(0x03000020)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v16)

	require.NoError(t, writeAll(b.Write32, 0x03000030, 0xDEADBEEF))
	v32, _, err := b.Read32(0x03000030)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v32)
}

func writeAll[T any](fn func(uint32, T) (int, error), addr uint32, v T) error {
	_, err := fn(addr, v)
	return err
}

func TestDISPSTATReadOnlyMask(t *testing.T) {
	b := newTestBus()
	// Hardware sets the upper three bits of the DISPSTAT low byte.
	b.io[regDISPSTAT] = 0xE0
	_, err := b.Write8(0x04000004, 0xFF)
	require.NoError(t, err)
	// Upper three bits survive the write; the rest take the new payload.
	assert.Equal(t, uint8(0xFF&^0xE0|0xE0), b.io[regDISPSTAT])
}

func TestIFWriteClearsBits(t *testing.T) {
	b := newTestBus()
	b.io[regIF] = 0b0000_0111
	_, err := b.Write8(0x04000202, 0b0000_0101)
	require.NoError(t, err)
	assert.Equal(t, uint8(0b0000_0010), b.io[regIF])
}

func TestUnalignedWordReadRotates(t *testing.T) {
	b := newTestBus()
	_, err := b.Write32(0x03000000, 0xAABBCCDD)
	require.NoError(t, err)

	aligned, _, err := b.Read32(0x03000000)
	require.NoError(t, err)

	for shift := uint32(1); shift < 4; shift++ {
		got, _, err := b.Read32(0x03000000 + shift)
		require.NoError(t, err)
		want := rotr(aligned, shift*8)
		assert.Equal(t, want, got, "shift=%d", shift)
	}
}

func rotr(v, n uint32) uint32 {
	n %= 32
	if n == 0 {
		return v
	}
	return (v >> n) | (v << (32 - n))
}

func TestUnmappedAddressReturnsErrorAndZero(t *testing.T) {
	b := newTestBus()
	v, _, err := b.Read8(0x0A000000 + 0x50000000) // well past any region
	assert.Error(t, err)
	assert.Equal(t, uint8(0), v)
}

func TestOAMByteWritesIgnored(t *testing.T) {
	b := newTestBus()
	_, err := b.Write16(0x07000000, 0x1234)
	require.NoError(t, err)
	_, err = b.Write8(0x07000000, 0xFF)
	require.NoError(t, err)
	v, _, err := b.Read16(0x07000000)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v, "byte write to OAM must be ignored")
}

func TestPaletteByteWriteReplicates(t *testing.T) {
	b := newTestBus()
	_, err := b.Write8(0x05000000, 0x42)
	require.NoError(t, err)
	v, _, err := b.Read16(0x05000000)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x4242), v)
}

func TestSOUNDBIASResetDefault(t *testing.T) {
	b := newTestBus()
	v, _, err := b.Read16(0x04000088)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0200), v)
}
