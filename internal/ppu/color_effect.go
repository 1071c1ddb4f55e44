package ppu

// ColorEffectKind tags which blend mode BLDCNT selects, grounded on
// crusty-gba's ppu/color_effect.rs ColorEffect enum.
type ColorEffectKind int

const (
	EffectNone ColorEffectKind = iota
	EffectAlphaBlend
	EffectBrightnessUp
	EffectBrightnessDown
)

// LayerMask marks which of BG0-3/OBJ/backdrop participate in a blend
// target, grounded on InternalColorEffect.
type LayerMask struct {
	BG      [4]bool
	Obj     bool
	Backdrop bool
}

func layerMaskFrom(value uint32) LayerMask {
	return LayerMask{
		BG:       [4]bool{bitHigh(value, 0), bitHigh(value, 1), bitHigh(value, 2), bitHigh(value, 3)},
		Obj:      bitHigh(value, 4),
		Backdrop: bitHigh(value, 5),
	}
}

// EffectCoefficient is a blend weight in [0,16]; effectCoefficientFrom
// takes it from the low four bits of its field, so decoded values are 0-15.
type EffectCoefficient uint32

func effectCoefficientFrom(value uint32) EffectCoefficient {
	x := value & 0xF
	if x > 16 {
		return 16
	}
	return EffectCoefficient(x)
}

// ColorEffectSelection is the decoded BLDCNT/BLDALPHA/BLDY trio.
type ColorEffectSelection struct {
	FirstTarget  LayerMask
	SecondTarget LayerMask
	Kind         ColorEffectKind
	EVA, EVB     EffectCoefficient
	EVY          EffectCoefficient
}

func colorEffectSelectionFrom(bldcnt, bldalpha, bldy uint16) ColorEffectSelection {
	sel := ColorEffectSelection{
		FirstTarget:  layerMaskFrom(uint32(bldcnt) & 0x3F),
		SecondTarget: layerMaskFrom(uint32(bldcnt>>8) & 0x3F),
	}
	switch (uint32(bldcnt) >> 6) & 0b11 {
	case 0:
		sel.Kind = EffectNone
	case 1:
		sel.Kind = EffectAlphaBlend
		sel.EVA = effectCoefficientFrom(uint32(bldalpha))
		sel.EVB = effectCoefficientFrom(uint32(bldalpha >> 8))
	case 2:
		sel.Kind = EffectBrightnessUp
		sel.EVY = effectCoefficientFrom(uint32(bldy))
	case 3:
		sel.Kind = EffectBrightnessDown
		sel.EVY = effectCoefficientFrom(uint32(bldy))
	}
	return sel
}

// blend applies the selected effect to a source/destination RGB555-derived
// 8-bit-per-channel pair. Brightness effects ignore dst.
func (s ColorEffectSelection) blend(src, dst [3]uint8) [3]uint8 {
	switch s.Kind {
	case EffectAlphaBlend:
		var out [3]uint8
		for i := range out {
			v := (int(src[i])*int(s.EVA) + int(dst[i])*int(s.EVB)) / 16
			out[i] = clamp255(v)
		}
		return out
	case EffectBrightnessUp:
		var out [3]uint8
		for i := range out {
			v := int(src[i]) + (255-int(src[i]))*int(s.EVY)/16
			out[i] = clamp255(v)
		}
		return out
	case EffectBrightnessDown:
		var out [3]uint8
		for i := range out {
			v := int(src[i]) - int(src[i])*int(s.EVY)/16
			out[i] = clamp255(v)
		}
		return out
	default:
		return src
	}
}

func clamp255(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
