// Package ppu implements the GBA picture processing unit: the dot-clock
// scanline state machine, and tile/bitmap rendering into an RGBA
// framebuffer, per SPEC_FULL.md §4.5.
//
// Grounded on LJS360d-RoBA's internal/ppu.PPU (Bus reference, per-scanline
// render dispatch on DISPCNT's mode field, mode-3 bitmap decode), extended
// with the full mode 0-5 rendering, sprite/window/blend handling described
// by crusty-gba's ppu/*.rs register layouts.
package ppu

import (
	"log/slog"

	"goba/internal/membus"
)

const (
	ScreenWidth  = 240
	ScreenHeight = 160

	dotsPerScanline   = 308
	cyclesPerDot      = 4
	cyclesPerScanline = dotsPerScanline * cyclesPerDot
	visibleDots       = 240
	totalScanlines    = 228
)

// PPU owns the framebuffer and scanline counters; it reads VRAM, palette,
// OAM and display registers from Bus and writes back only the DISPSTAT,
// VCOUNT and IF registers.
type PPU struct {
	Bus *membus.Bus
	log *slog.Logger

	dotCycle   uint64
	scanline   uint32
	frameReady bool
	framebuffer [ScreenWidth * ScreenHeight * 4]byte
}

// New creates a PPU reading from bus.
func New(bus *membus.Bus, log *slog.Logger) *PPU {
	if log == nil {
		log = slog.Default()
	}
	return &PPU{Bus: bus, log: log}
}

// Framebuffer returns the last fully rendered frame; valid only immediately
// after Tick reports a frame-done edge, per §6.
func (p *PPU) Framebuffer() *[ScreenWidth * ScreenHeight * 4]byte {
	return &p.framebuffer
}

// Tick advances the dot clock by cycles cycles, rendering a scanline when
// it completes and updating VCOUNT/DISPSTAT. frameDone reports the dot
// where scanline 160 (the VBlank edge) is entered; hblankEntered reports
// whether any HBlank edge (visible or not) was crossed during this call,
// which is what a channel 1/2/3 HBlank-start DMA trigger watches for.
func (p *PPU) Tick(cycles int) (frameDone, hblankEntered bool) {
	for i := 0; i < cycles; i++ {
		prevDot := p.dotCycle % cyclesPerScanline
		p.dotCycle++
		dot := p.dotCycle % cyclesPerScanline

		if prevDot < visibleDots*cyclesPerDot && dot >= visibleDots*cyclesPerDot {
			p.setHBlank(true)
			hblankEntered = true
		}

		if p.dotCycle%cyclesPerScanline == 0 {
			p.setHBlank(false)
			p.scanline = (p.scanline + 1) % totalScanlines
			p.writeVCount(p.scanline)

			if p.scanline < ScreenHeight {
				p.renderScanline(p.scanline)
			}
			if p.scanline == ScreenHeight {
				p.setVBlank(true)
				p.frameReady = true
				frameDone = true
			} else if p.scanline == 0 {
				p.setVBlank(false)
			}
			p.updateVCounterFlag()
		}
	}
	return frameDone, hblankEntered
}

// IsFrameReady/ResetFrameReady let Core coordinate presenter hand-off.
func (p *PPU) IsFrameReady() bool  { return p.frameReady }
func (p *PPU) ResetFrameReady()    { p.frameReady = false }

func (p *PPU) dispControl() DispControl {
	lo := p.Bus.IOByte(membus.IOOffsetDISPCNT)
	hi := p.Bus.IOByte(membus.IOOffsetDISPCNT + 1)
	return dispControlFrom(uint16(lo) | uint16(hi)<<8)
}

func (p *PPU) dispStat() DispStat {
	lo := p.Bus.IOByte(membus.IOOffsetDISPSTAT)
	hi := p.Bus.IOByte(membus.IOOffsetDISPSTAT + 1)
	return dispStatFrom(uint16(lo) | uint16(hi)<<8)
}

func (p *PPU) writeDispStat(s DispStat) {
	v := dispStatToValue(s)
	p.Bus.SetIOByte(membus.IOOffsetDISPSTAT, uint8(v))
	p.Bus.SetIOByte(membus.IOOffsetDISPSTAT+1, uint8(v>>8))
}

func (p *PPU) setVBlank(on bool) {
	s := p.dispStat()
	s.VBlank = on
	p.writeDispStat(s)
	if on && s.VBlankIRQ {
		p.raiseIRQ(0)
	}
}

func (p *PPU) setHBlank(on bool) {
	s := p.dispStat()
	s.HBlank = on
	p.writeDispStat(s)
	if on && s.HBlankIRQ {
		p.raiseIRQ(1)
	}
}

func (p *PPU) updateVCounterFlag() {
	s := p.dispStat()
	hit := p.scanline == s.VCountSetting
	s.VCounter = hit
	p.writeDispStat(s)
	if hit && s.VCounterIRQ {
		p.raiseIRQ(2)
	}
}

func (p *PPU) raiseIRQ(bit uint) {
	iflags := p.Bus.IOByte(membus.IOOffsetIF)
	p.Bus.SetIOByte(membus.IOOffsetIF, iflags|uint8(1<<bit))
}

func (p *PPU) writeVCount(line uint32) {
	p.Bus.SetIOByte(membus.IOOffsetVCOUNT, uint8(line))
}

func (p *PPU) setPixel(x, y int, r, g, b uint8) {
	off := (y*ScreenWidth + x) * 4
	p.framebuffer[off] = r
	p.framebuffer[off+1] = g
	p.framebuffer[off+2] = b
	p.framebuffer[off+3] = 255
}
