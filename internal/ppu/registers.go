package ppu

// DispControl mirrors DISPCNT (REG_DISPCNT, 0x04000000), grounded on
// crusty-gba's ppu/disp_control.rs DisplayControl.
type DispControl struct {
	BGMode             uint32
	GBCMode            bool
	FrameSelect        bool
	HBlankIntervalFree bool
	ObjCharMapping1D   bool
	ForcedBlank        bool
	DisplayBG          [4]bool
	DisplayObj         bool
	DisplayWindow0     bool
	DisplayWindow1     bool
	DisplayWindowObj   bool
}

func dispControlFrom(value uint16) DispControl {
	v := uint32(value)
	return DispControl{
		BGMode:             v & 0b111,
		GBCMode:            bitHigh(v, 3),
		FrameSelect:        bitHigh(v, 4),
		HBlankIntervalFree: bitHigh(v, 5),
		ObjCharMapping1D:   bitHigh(v, 6),
		ForcedBlank:        bitHigh(v, 7),
		DisplayBG:          [4]bool{bitHigh(v, 8), bitHigh(v, 9), bitHigh(v, 10), bitHigh(v, 11)},
		DisplayObj:         bitHigh(v, 12),
		DisplayWindow0:     bitHigh(v, 13),
		DisplayWindow1:     bitHigh(v, 14),
		DisplayWindowObj:   bitHigh(v, 15),
	}
}

// DispStat mirrors DISPSTAT (0x04000004).
type DispStat struct {
	VBlank        bool
	HBlank        bool
	VCounter      bool
	VBlankIRQ     bool
	HBlankIRQ     bool
	VCounterIRQ   bool
	VCountSetting uint32
}

func dispStatFrom(value uint16) DispStat {
	v := uint32(value)
	return DispStat{
		VBlank:        bitHigh(v, 0),
		HBlank:        bitHigh(v, 1),
		VCounter:      bitHigh(v, 2),
		VBlankIRQ:     bitHigh(v, 3),
		HBlankIRQ:     bitHigh(v, 4),
		VCounterIRQ:   bitHigh(v, 5),
		VCountSetting: (v >> 8) & 0xFF,
	}
}

func dispStatToValue(s DispStat) uint16 {
	var v uint32
	v |= boolBit(s.VBlank, 0)
	v |= boolBit(s.HBlank, 1)
	v |= boolBit(s.VCounter, 2)
	v |= boolBit(s.VBlankIRQ, 3)
	v |= boolBit(s.HBlankIRQ, 4)
	v |= boolBit(s.VCounterIRQ, 5)
	v |= (s.VCountSetting & 0xFF) << 8
	return uint16(v)
}

// BGControl mirrors one BGxCNT register, grounded on ppu/bg_control.rs.
type BGControl struct {
	Priority           uint32
	CharBaseBlock      uint32
	Mosaic             bool
	Palette256         bool
	ScreenBaseBlock    uint32
	DisplayAreaWrap    bool
	ScreenSize         uint32
}

func bgControlFrom(value uint16) BGControl {
	v := uint32(value)
	return BGControl{
		Priority:        v & 0b11,
		CharBaseBlock:   (v >> 2) & 0b11,
		Mosaic:          bitHigh(v, 6),
		Palette256:      bitHigh(v, 7),
		ScreenBaseBlock: (v >> 8) & 0x1F,
		DisplayAreaWrap: bitHigh(v, 13),
		ScreenSize:      (v >> 14) & 0b11,
	}
}

func bitHigh(v uint32, n uint) bool { return (v>>n)&1 != 0 }

func boolBit(b bool, n uint) uint32 {
	if b {
		return 1 << n
	}
	return 0
}
