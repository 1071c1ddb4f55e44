package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowDimensionsContainsRespectsLeftRightTopBottom(t *testing.T) {
	w := windowDimensionsFrom(0x0A50, 0x0578) // left=0x0A=10, right=0x50=80; top=0x05=5, bottom=0x78=120
	assert.True(t, w.contains(10, 5, ScreenWidth, ScreenHeight))
	assert.True(t, w.contains(79, 119, ScreenWidth, ScreenHeight))
	assert.False(t, w.contains(80, 5, ScreenWidth, ScreenHeight), "right bound is exclusive")
	assert.False(t, w.contains(9, 5, ScreenWidth, ScreenHeight))
	assert.False(t, w.contains(10, 120, ScreenWidth, ScreenHeight), "bottom bound is exclusive")
}

func TestWindowDimensionsZeroRightWrapsToScreenEdge(t *testing.T) {
	w := windowDimensionsFrom(0x0000, 0x0000) // left=0, right=0 -> wraps to ScreenWidth
	assert.True(t, w.contains(ScreenWidth-1, 0, ScreenWidth, ScreenHeight))
}

func TestWindowLayerMaskFromDecodesPerLayerAndColorSpecialBits(t *testing.T) {
	m := windowLayerMaskFrom(uint8(1<<1 | 1<<4 | 1<<5))
	assert.False(t, m.BG[0])
	assert.True(t, m.BG[1])
	assert.True(t, m.Obj)
	assert.True(t, m.ColorSpecial)
}

func TestWindowControlFromSplitsWININAndWINOUTByte(t *testing.T) {
	winin := uint16(0x01) | uint16(0x02)<<8   // WIN0 lets BG0 through, WIN1 lets BG1 through
	winout := uint16(0x20) | uint16(0x10)<<8  // Outside allows color-special, WINOBJ allows OBJ
	wc := windowControlFrom(winin, winout)

	assert.True(t, wc.Window0.BG[0])
	assert.True(t, wc.Window1.BG[1])
	assert.True(t, wc.Outside.ColorSpecial)
	assert.True(t, wc.Obj.Obj)
}
