package ppu

// layerPixel is one candidate pixel contributed by a BG or OBJ layer to a
// scanline, before priority/window/blend resolution.
type layerPixel struct {
	present  bool
	color    [3]uint8
	priority uint32
}

// renderScanline draws one visible line into the framebuffer, resolving BG
// and OBJ layers by priority (then layer index, per §4.5), gated by
// windows, and blended per BLDCNT/BLDALPHA/BLDY.
func (p *PPU) renderScanline(line uint32) {
	dc := p.dispControl()
	if dc.ForcedBlank {
		for x := 0; x < ScreenWidth; x++ {
			p.setPixel(x, int(line), 255, 255, 255)
		}
		return
	}

	switch dc.BGMode {
	case 3:
		p.renderBitmapMode3(line)
		return
	case 4:
		p.renderBitmapMode4(dc, line)
		return
	case 5:
		p.renderBitmapMode5(dc, line)
		return
	}

	var bgLines [4][ScreenWidth]layerPixel
	for i := 0; i < 4; i++ {
		if !dc.DisplayBG[i] {
			continue
		}
		if !bgVisibleInMode(dc.BGMode, i) {
			continue
		}
		bgLines[i] = p.renderTextBGLine(i, line)
	}

	objLine := p.renderObjLine(dc, line)

	winControl := p.windowControl()
	useWindows := dc.DisplayWindow0 || dc.DisplayWindow1 || dc.DisplayWindowObj
	win0 := p.window(0)
	win1 := p.window(1)
	effect := p.colorEffectSelection()
	backdrop := p.paletteColor(0)

	for x := 0; x < ScreenWidth; x++ {
		mask := WindowLayerMask{BG: [4]bool{true, true, true, true}, Obj: true, ColorSpecial: true}
		if useWindows {
			mask = winControl.Outside
			if dc.DisplayWindowObj && objLine[x].present {
				mask = winControl.Obj
			}
			if dc.DisplayWindow1 && win1.contains(x, int(line), ScreenWidth, ScreenHeight) {
				mask = winControl.Window1
			}
			if dc.DisplayWindow0 && win0.contains(x, int(line), ScreenWidth, ScreenHeight) {
				mask = winControl.Window0
			}
		}

		candidates := visibleCandidates(bgLines, objLine[x].layerPixel, mask, x)

		color := backdrop
		if len(candidates) > 0 {
			top := candidates[0]
			color = top.color

			if mask.ColorSpecial && effect.Kind != EffectNone && layerInMask(effect.FirstTarget, top.layer, top.isObj) {
				if effect.Kind == EffectAlphaBlend && len(candidates) > 1 {
					second := candidates[1]
					if layerInMask(effect.SecondTarget, second.layer, second.isObj) {
						color = effect.blend(top.color, second.color)
					}
				} else if effect.Kind != EffectAlphaBlend {
					color = effect.blend(top.color, [3]uint8{})
				}
			}
		}
		p.setPixel(x, int(line), color[0], color[1], color[2])
	}
}

func bgVisibleInMode(mode uint32, bg int) bool {
	switch mode {
	case 0:
		return true
	case 1:
		return bg <= 2
	case 2:
		return bg >= 2
	default:
		return false
	}
}

func layerInMask(m LayerMask, idx int, isObj bool) bool {
	if isObj {
		return m.Obj
	}
	if idx < 0 {
		return m.Backdrop
	}
	return m.BG[idx]
}

// candidate is one layer's contribution to a single pixel, ordered for
// priority resolution: OBJ beats a BG of equal priority, then ascending BG
// index, per the standard GBA ordering in §4.5.
type candidate struct {
	color    [3]uint8
	priority uint32
	layer    int // BG index, or -1 for OBJ/backdrop
	isObj    bool
}

// visibleCandidates returns every layer contributing a non-transparent,
// window-permitted pixel at column x, sorted highest-priority first.
func visibleCandidates(bg [4][ScreenWidth]layerPixel, obj layerPixel, mask WindowLayerMask, x int) []candidate {
	var out []candidate
	if mask.Obj && obj.present {
		out = append(out, candidate{color: obj.color, priority: obj.priority, layer: -1, isObj: true})
	}
	for i := 0; i < 4; i++ {
		px := bg[i][x]
		if px.present && mask.BG[i] {
			out = append(out, candidate{color: px.color, priority: px.priority, layer: i})
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if rank(out[j]) < rank(out[i]) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

// rank orders OBJ ahead of a BG sharing its priority value, and lower BG
// index ahead of higher, matching the GBA priority-then-index rule.
func rank(c candidate) int {
	base := int(c.priority) * 8
	if c.isObj {
		return base
	}
	return base + 1 + c.layer
}

type objLinePixel struct {
	layerPixel
}

func (p *PPU) renderObjLine(dc DispControl, line uint32) [ScreenWidth]objLinePixel {
	var out [ScreenWidth]objLinePixel
	if !dc.DisplayObj {
		return out
	}
	oam := p.Bus.OAM()
	for i := 0; i < 128; i++ {
		base := i * 8
		attr0 := uint16(oam[base]) | uint16(oam[base+1])<<8
		attr1 := uint16(oam[base+2]) | uint16(oam[base+3])<<8
		attr2 := uint16(oam[base+4]) | uint16(oam[base+5])<<8
		entry := oamAttributeFrom(attr0, attr1, attr2)
		if entry.Disabled {
			continue
		}
		y0 := int(entry.Y)
		h := int(entry.Shape.H)
		relY := int(line) - y0
		if relY < 0 {
			relY += 256
		}
		if relY >= h {
			continue
		}
		w := int(entry.Shape.W)
		x0 := int(entry.X)
		for dx := 0; dx < w; dx++ {
			x := (x0 + dx) % 512
			if x >= ScreenWidth {
				continue
			}
			sx, sy := dx, relY
			if entry.HFlip {
				sx = w - 1 - dx
			}
			if entry.VFlip {
				sy = h - 1 - relY
			}
			idx := p.objTexelIndex(entry, sx, sy, dc.ObjCharMapping1D)
			if idx == 0 {
				continue
			}
			col := p.objPaletteColor(entry, idx)
			if !out[x].present || entry.Priority < out[x].priority {
				out[x].present = true
				out[x].color = col
				out[x].priority = entry.Priority
			}
		}
	}
	return out
}

func (p *PPU) objTexelIndex(entry OamAttribute, sx, sy int, mapping1D bool) uint8 {
	vram := p.Bus.VRAM()
	const objBase = 0x10000
	tileW, tileH := sx/8, sy/8
	tilesPerRow := entry.Shape.W / 8
	var tileIndex uint32
	if mapping1D {
		tileIndex = entry.TileIndex + uint32(tileH)*tilesPerRow + uint32(tileW)
	} else {
		tileIndex = entry.TileIndex + uint32(tileH)*32 + uint32(tileW)
	}
	inTileX, inTileY := sx%8, sy%8
	if entry.Palette256 {
		tileBytes := 64
		off := objBase + int(tileIndex)*tileBytes + inTileY*8 + inTileX
		if off >= len(vram) {
			return 0
		}
		return vram[off]
	}
	tileBytes := 32
	off := objBase + int(tileIndex)*tileBytes + inTileY*4 + inTileX/2
	if off >= len(vram) {
		return 0
	}
	b := vram[off]
	if inTileX%2 == 0 {
		return b & 0xF
	}
	return b >> 4
}

func (p *PPU) objPaletteColor(entry OamAttribute, idx uint8) [3]uint8 {
	pal := p.Bus.Palette()
	const objPaletteBase = 0x200
	var off int
	if entry.Palette256 {
		off = objPaletteBase + int(idx)*2
	} else {
		off = objPaletteBase + int(entry.PaletteIndex)*32 + int(idx)*2
	}
	if off+1 >= len(pal) {
		return [3]uint8{}
	}
	v := uint16(pal[off]) | uint16(pal[off+1])<<8
	return bgr555ToRGB(v)
}

func (p *PPU) renderTextBGLine(bg int, line uint32) [ScreenWidth]layerPixel {
	var out [ScreenWidth]layerPixel
	ctrl := p.bgControl(bg)
	scrollX, scrollY := p.bgOffset(bg)

	vram := p.Bus.VRAM()
	screenBase := int(ctrl.ScreenBaseBlock) * 0x800
	charBase := int(ctrl.CharBaseBlock) * 0x4000

	y := (int(line) + int(scrollY)) % mapHeight(ctrl.ScreenSize)
	tileRow := y / 8
	inTileY := y % 8

	for x := 0; x < ScreenWidth; x++ {
		sx := (x + int(scrollX)) % mapWidth(ctrl.ScreenSize)
		tileCol := sx / 8
		inTileX := sx % 8

		screenBlock := screenBlockIndex(ctrl.ScreenSize, tileCol, tileRow)
		mapOff := screenBase + screenBlock*0x800 + ((tileRow%32)*32+(tileCol%32))*2
		if mapOff+1 >= len(vram) {
			continue
		}
		entry := uint16(vram[mapOff]) | uint16(vram[mapOff+1])<<8
		tileIndex := entry & 0x3FF
		hFlip := entry&0x0400 != 0
		vFlip := entry&0x0800 != 0
		paletteBank := (entry >> 12) & 0xF

		px, py := inTileX, inTileY
		if hFlip {
			px = 7 - px
		}
		if vFlip {
			py = 7 - py
		}

		var idx uint8
		if ctrl.Palette256 {
			off := charBase + int(tileIndex)*64 + py*8 + px
			if off >= len(vram) {
				continue
			}
			idx = vram[off]
		} else {
			off := charBase + int(tileIndex)*32 + py*4 + px/2
			if off >= len(vram) {
				continue
			}
			b := vram[off]
			if px%2 == 0 {
				idx = b & 0xF
			} else {
				idx = b >> 4
			}
		}
		if idx == 0 {
			continue
		}
		out[x] = layerPixel{
			present:  true,
			color:    p.bgPaletteColor(ctrl.Palette256, paletteBank, idx),
			priority: ctrl.Priority,
		}
	}
	return out
}

func mapWidth(size uint32) int {
	if size == 1 || size == 3 {
		return 512
	}
	return 256
}

func mapHeight(size uint32) int {
	if size == 2 || size == 3 {
		return 512
	}
	return 256
}

func screenBlockIndex(size uint32, tileCol, tileRow int) int {
	switch size {
	case 0:
		return 0
	case 1:
		return (tileCol / 32) % 2
	case 2:
		return (tileRow / 32) % 2
	default:
		return ((tileRow/32)%2)*2 + (tileCol/32)%2
	}
}

func (p *PPU) bgPaletteColor(palette256 bool, bank uint16, idx uint8) [3]uint8 {
	pal := p.Bus.Palette()
	var off int
	if palette256 {
		off = int(idx) * 2
	} else {
		off = int(bank)*32 + int(idx)*2
	}
	if off+1 >= len(pal) {
		return [3]uint8{}
	}
	v := uint16(pal[off]) | uint16(pal[off+1])<<8
	return bgr555ToRGB(v)
}

func (p *PPU) paletteColor(idx uint8) [3]uint8 {
	pal := p.Bus.Palette()
	off := int(idx) * 2
	v := uint16(pal[off]) | uint16(pal[off+1])<<8
	return bgr555ToRGB(v)
}

func bgr555ToRGB(v uint16) [3]uint8 {
	r := uint8((v & 0x1F) * 8)
	g := uint8(((v >> 5) & 0x1F) * 8)
	b := uint8(((v >> 10) & 0x1F) * 8)
	return [3]uint8{r, g, b}
}

func (p *PPU) renderBitmapMode3(line uint32) {
	vram := p.Bus.VRAM()
	for x := 0; x < ScreenWidth; x++ {
		off := (int(line)*ScreenWidth + x) * 2
		if off+1 >= len(vram) {
			continue
		}
		v := uint16(vram[off]) | uint16(vram[off+1])<<8
		c := bgr555ToRGB(v)
		p.setPixel(x, int(line), c[0], c[1], c[2])
	}
}

func (p *PPU) renderBitmapMode4(dc DispControl, line uint32) {
	vram := p.Bus.VRAM()
	frameOff := 0
	if dc.FrameSelect {
		frameOff = 0xA000
	}
	for x := 0; x < ScreenWidth; x++ {
		off := frameOff + int(line)*ScreenWidth + x
		if off >= len(vram) {
			continue
		}
		c := p.paletteColor(vram[off])
		p.setPixel(x, int(line), c[0], c[1], c[2])
	}
}

func (p *PPU) renderBitmapMode5(dc DispControl, line uint32) {
	const w, h = 160, 128
	if int(line) >= h {
		for x := 0; x < ScreenWidth; x++ {
			p.setPixel(x, int(line), 0, 0, 0)
		}
		return
	}
	vram := p.Bus.VRAM()
	frameOff := 0
	if dc.FrameSelect {
		frameOff = 0xA000
	}
	for x := 0; x < ScreenWidth; x++ {
		if x >= w {
			p.setPixel(x, int(line), 0, 0, 0)
			continue
		}
		off := frameOff + (int(line)*w+x)*2
		if off+1 >= len(vram) {
			continue
		}
		v := uint16(vram[off]) | uint16(vram[off+1])<<8
		c := bgr555ToRGB(v)
		p.setPixel(x, int(line), c[0], c[1], c[2])
	}
}

func (p *PPU) bgControl(bg int) BGControl {
	off := uint32(0x08 + bg*2)
	lo := p.Bus.IOByte(off)
	hi := p.Bus.IOByte(off + 1)
	return bgControlFrom(uint16(lo) | uint16(hi)<<8)
}

func (p *PPU) bgOffset(bg int) (uint32, uint32) {
	base := uint32(0x10 + bg*4)
	xlo, xhi := p.Bus.IOByte(base), p.Bus.IOByte(base+1)
	ylo, yhi := p.Bus.IOByte(base+2), p.Bus.IOByte(base+3)
	x := (uint32(xlo) | uint32(xhi)<<8) & 0x1FF
	y := (uint32(ylo) | uint32(yhi)<<8) & 0x1FF
	return x, y
}

func (p *PPU) window(n int) WindowDimensions {
	var hOff, vOff uint32
	if n == 0 {
		hOff, vOff = 0x40, 0x44
	} else {
		hOff, vOff = 0x42, 0x46
	}
	h := uint16(p.Bus.IOByte(hOff)) | uint16(p.Bus.IOByte(hOff+1))<<8
	v := uint16(p.Bus.IOByte(vOff)) | uint16(p.Bus.IOByte(vOff+1))<<8
	return windowDimensionsFrom(h, v)
}

func (p *PPU) windowControl() WindowControl {
	winin := uint16(p.Bus.IOByte(0x48)) | uint16(p.Bus.IOByte(0x49))<<8
	winout := uint16(p.Bus.IOByte(0x4A)) | uint16(p.Bus.IOByte(0x4B))<<8
	return windowControlFrom(winin, winout)
}

func (p *PPU) colorEffectSelection() ColorEffectSelection {
	bldcnt := uint16(p.Bus.IOByte(0x50)) | uint16(p.Bus.IOByte(0x51))<<8
	bldalpha := uint16(p.Bus.IOByte(0x52)) | uint16(p.Bus.IOByte(0x53))<<8
	bldy := uint16(p.Bus.IOByte(0x54)) | uint16(p.Bus.IOByte(0x55))<<8
	return colorEffectSelectionFrom(bldcnt, bldalpha, bldy)
}
