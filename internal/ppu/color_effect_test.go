package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorEffectSelectionFromDecodesKindAndTargets(t *testing.T) {
	// BG0 as first target, OBJ as second target, alpha-blend selected.
	bldcnt := uint16(1<<0) | uint16(1<<12) | uint16(1<<6)
	sel := colorEffectSelectionFrom(bldcnt, uint16(8)|uint16(8)<<8, 0)

	assert.Equal(t, EffectAlphaBlend, sel.Kind)
	assert.True(t, sel.FirstTarget.BG[0])
	assert.True(t, sel.SecondTarget.Obj)
	assert.EqualValues(t, 8, sel.EVA)
	assert.EqualValues(t, 8, sel.EVB)
}

func TestEffectCoefficientFromMasksToFourBits(t *testing.T) {
	assert.EqualValues(t, 15, effectCoefficientFrom(31))
	assert.EqualValues(t, 10, effectCoefficientFrom(10))
}

func TestBlendAlphaAveragesEquallyWeightedChannels(t *testing.T) {
	sel := ColorEffectSelection{Kind: EffectAlphaBlend, EVA: 8, EVB: 8}
	out := sel.blend([3]uint8{200, 0, 100}, [3]uint8{0, 200, 100})
	assert.Equal(t, [3]uint8{100, 100, 100}, out)
}

func TestBlendBrightnessUpMovesTowardWhite(t *testing.T) {
	sel := ColorEffectSelection{Kind: EffectBrightnessUp, EVY: 16}
	out := sel.blend([3]uint8{0, 100, 255}, [3]uint8{})
	assert.Equal(t, [3]uint8{255, 255, 255}, out)
}

func TestBlendBrightnessDownMovesTowardBlack(t *testing.T) {
	sel := ColorEffectSelection{Kind: EffectBrightnessDown, EVY: 16}
	out := sel.blend([3]uint8{0, 100, 255}, [3]uint8{})
	assert.Equal(t, [3]uint8{0, 0, 0}, out)
}

func TestBlendNoneReturnsSourceUnchanged(t *testing.T) {
	sel := ColorEffectSelection{Kind: EffectNone}
	src := [3]uint8{10, 20, 30}
	assert.Equal(t, src, sel.blend(src, [3]uint8{1, 2, 3}))
}
