package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispControlFromDecodesModeAndLayerBits(t *testing.T) {
	// mode 3, BG2 on, OBJ on, 1D OBJ mapping.
	v := uint16(3) | 1<<6 | 1<<10 | 1<<12
	dc := dispControlFrom(v)

	assert.EqualValues(t, 3, dc.BGMode)
	assert.True(t, dc.ObjCharMapping1D)
	assert.True(t, dc.DisplayBG[2])
	assert.False(t, dc.DisplayBG[0])
	assert.True(t, dc.DisplayObj)
}

func TestDispStatRoundTripsThroughItsValueEncoding(t *testing.T) {
	s := DispStat{VBlank: true, HBlankIRQ: true, VCountSetting: 100}
	v := dispStatToValue(s)
	got := dispStatFrom(v)

	assert.True(t, got.VBlank)
	assert.True(t, got.HBlankIRQ)
	assert.False(t, got.HBlank)
	assert.EqualValues(t, 100, got.VCountSetting)
}

func TestBGControlFromDecodesScreenBaseAndSize(t *testing.T) {
	v := uint16(2) | 1<<2 | 1<<7 | 5<<8 | 1<<13 | 2<<14
	bg := bgControlFrom(v)

	assert.EqualValues(t, 2, bg.Priority)
	assert.EqualValues(t, 1, bg.CharBaseBlock)
	assert.True(t, bg.Palette256)
	assert.EqualValues(t, 5, bg.ScreenBaseBlock)
	assert.True(t, bg.DisplayAreaWrap)
	assert.EqualValues(t, 2, bg.ScreenSize)
}
