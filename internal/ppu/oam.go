package ppu

// ObjShape is the decoded {w,h} tile-pixel size of a sprite, grounded on
// crusty-gba's ppu/oam_attribute.rs shape/size table.
type ObjShape struct {
	W, H uint32
}

// OamAttribute is one 8-byte OAM entry (attr0/attr1/attr2), grounded on
// OamAttribute.
type OamAttribute struct {
	Y, X          uint32
	RotScale      bool
	DoubleSize    bool
	Disabled      bool
	Mode          uint32
	Mosaic        bool
	Palette256    bool
	Shape         ObjShape
	HFlip, VFlip  bool
	RotScaleIndex int
	TileIndex     uint32
	Priority      uint32
	PaletteIndex  uint32
}

var secondarySize = [4]uint32{8, 8, 16, 32}

func oamAttributeFrom(attr0, attr1, attr2 uint16) OamAttribute {
	a0, a1, a2 := uint32(attr0), uint32(attr1), uint32(attr2)

	objShape := (a0 >> 14) & 0b11
	objSize := (a1 >> 14) & 0b11
	base := 8 * (uint32(1) << objSize)

	var shape ObjShape
	switch objShape {
	case 0:
		shape = ObjShape{W: base, H: base}
	case 1:
		shape = ObjShape{W: base, H: secondarySize[objSize]}
	default:
		shape = ObjShape{W: secondarySize[objSize], H: base}
	}

	rotScale := bitHigh(a0, 8)
	oam := OamAttribute{
		Y:          a0 & 0xFF,
		X:          a1 & 0x1FF,
		RotScale:   rotScale,
		Mode:       (a0 >> 10) & 0b11,
		Mosaic:     bitHigh(a0, 12),
		Palette256: bitHigh(a0, 13),
		Shape:      shape,
		TileIndex:  a2 & 0x3FF,
		Priority:   (a2 >> 10) & 0b11,
		PaletteIndex: (a2 >> 12) & 0xF,
	}
	if rotScale {
		oam.DoubleSize = bitHigh(a0, 9)
		oam.RotScaleIndex = int((a1 >> 9) & 0x1F)
	} else {
		oam.Disabled = bitHigh(a0, 9)
		oam.HFlip = bitHigh(a1, 12)
		oam.VFlip = bitHigh(a1, 13)
	}
	return oam
}
