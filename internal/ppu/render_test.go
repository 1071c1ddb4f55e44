package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func allVisibleMask() WindowLayerMask {
	return WindowLayerMask{BG: [4]bool{true, true, true, true}, Obj: true, ColorSpecial: true}
}

func TestVisibleCandidatesObjBeatsBGAtEqualPriority(t *testing.T) {
	var bg [4][ScreenWidth]layerPixel
	bg[0][5] = layerPixel{present: true, priority: 1, color: [3]uint8{1, 0, 0}}
	obj := layerPixel{present: true, priority: 1, color: [3]uint8{0, 1, 0}}

	out := visibleCandidates(bg, obj, allVisibleMask(), 5)
	if assert.Len(t, out, 2) {
		assert.True(t, out[0].isObj, "OBJ ranks ahead of a BG at the same priority")
		assert.Equal(t, 0, out[1].layer)
	}
}

func TestVisibleCandidatesLowerPriorityValueWins(t *testing.T) {
	var bg [4][ScreenWidth]layerPixel
	bg[0][5] = layerPixel{present: true, priority: 3, color: [3]uint8{1, 0, 0}}
	bg[2][5] = layerPixel{present: true, priority: 0, color: [3]uint8{0, 0, 1}}

	out := visibleCandidates(bg, layerPixel{}, allVisibleMask(), 5)
	if assert.Len(t, out, 2) {
		assert.Equal(t, 2, out[0].layer, "BG2's priority 0 outranks BG0's priority 3")
		assert.Equal(t, 0, out[1].layer)
	}
}

func TestVisibleCandidatesBreaksTiesByAscendingBGIndex(t *testing.T) {
	var bg [4][ScreenWidth]layerPixel
	bg[3][5] = layerPixel{present: true, priority: 2, color: [3]uint8{1, 0, 0}}
	bg[1][5] = layerPixel{present: true, priority: 2, color: [3]uint8{0, 1, 0}}

	out := visibleCandidates(bg, layerPixel{}, allVisibleMask(), 5)
	if assert.Len(t, out, 2) {
		assert.Equal(t, 1, out[0].layer)
		assert.Equal(t, 3, out[1].layer)
	}
}

func TestVisibleCandidatesExcludesLayersNotPresentOrWindowMasked(t *testing.T) {
	var bg [4][ScreenWidth]layerPixel
	bg[0][5] = layerPixel{present: true, priority: 0, color: [3]uint8{1, 0, 0}}
	obj := layerPixel{present: true, priority: 0, color: [3]uint8{0, 1, 0}}

	mask := WindowLayerMask{BG: [4]bool{false, true, true, true}, Obj: true}
	out := visibleCandidates(bg, obj, mask, 5)
	if assert.Len(t, out, 1) {
		assert.True(t, out[0].isObj, "BG0 is masked out by the window so only OBJ remains")
	}
}

func TestLayerInMaskHandlesBGObjAndBackdrop(t *testing.T) {
	m := LayerMask{BG: [4]bool{true, false, false, false}, Obj: true, Backdrop: true}
	assert.True(t, layerInMask(m, 0, false))
	assert.False(t, layerInMask(m, 1, false))
	assert.True(t, layerInMask(m, -1, true))
	assert.True(t, layerInMask(m, -1, false), "negative index with isObj false reads the backdrop bit")
}
