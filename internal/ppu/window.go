package ppu

// WindowDimensions decodes one WINxH/WINxV register pair, grounded on
// crusty-gba's ppu/window_control.rs.
type WindowDimensions struct {
	Left, Right uint32
	Top, Bottom uint32
}

func windowDimensionsFrom(h, v uint16) WindowDimensions {
	return WindowDimensions{
		Left:   uint32(h >> 8),
		Right:  uint32(h & 0xFF),
		Top:    uint32(v >> 8),
		Bottom: uint32(v & 0xFF),
	}
}

// contains reports whether column x, line y falls inside the window,
// honoring the GBA rule that Right==0 (or Right<Left) wraps to the screen
// edge rather than describing an empty window.
func (w WindowDimensions) contains(x, y, screenW, screenH int) bool {
	right := int(w.Right)
	if right == 0 || right > screenW || right < int(w.Left) {
		right = screenW
	}
	bottom := int(w.Bottom)
	if bottom == 0 || bottom > screenH {
		bottom = screenH
	}
	return x >= int(w.Left) && x < right && y >= int(w.Top) && y < bottom
}

// WindowLayerMask selects which layers a window lets through, grounded on
// InternalWindowCnt.
type WindowLayerMask struct {
	BG           [4]bool
	Obj          bool
	ColorSpecial bool
}

func windowLayerMaskFrom(value uint8) WindowLayerMask {
	v := uint32(value)
	return WindowLayerMask{
		BG:           [4]bool{bitHigh(v, 0), bitHigh(v, 1), bitHigh(v, 2), bitHigh(v, 3)},
		Obj:          bitHigh(v, 4),
		ColorSpecial: bitHigh(v, 5),
	}
}

// WindowControl groups WIN0/WIN1/WINOUT/WINOBJ, grounded on WindowCnt.
type WindowControl struct {
	Window0 WindowLayerMask
	Window1 WindowLayerMask
	Outside WindowLayerMask
	Obj     WindowLayerMask
}

func windowControlFrom(winin, winout uint16) WindowControl {
	return WindowControl{
		Window0: windowLayerMaskFrom(uint8(winin)),
		Window1: windowLayerMaskFrom(uint8(winin >> 8)),
		Outside: windowLayerMaskFrom(uint8(winout)),
		Obj:     windowLayerMaskFrom(uint8(winout >> 8)),
	}
}
