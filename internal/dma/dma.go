package dma

import (
	"log/slog"

	"goba/internal/membus"
)

// Trigger identifies which start-timing condition just fired, checked by
// Engine against each channel's own StartTiming.
type Trigger int

const (
	TriggerImmediate Trigger = iota
	TriggerVBlank
	TriggerHBlank
	TriggerSpecial
)

const numChannels = 4

// ioOffsets gives each channel's SAD/DAD/CNT_L/CNT_H byte offset into the
// I/O block, per the DMA register map (0x040000B0 + channel*0xC).
var ioOffsets = [numChannels]struct{ sad, dad, cntL, cntH uint32 }{
	{0xB0, 0xB4, 0xB8, 0xBA},
	{0xBC, 0xC0, 0xC4, 0xC6},
	{0xC8, 0xCC, 0xD0, 0xD2},
	{0xD4, 0xD8, 0xDC, 0xDE},
}

// countMask and addrMask encode the hardware asymmetry between channels:
// channel 3 has a 16-bit length and both addresses may reach cartridge
// space; channels 0-2 have a 14-bit length and an internal-memory-only
// destination, and channel 0's source is internal-memory-only as well.
func countMask(ch int) uint32 {
	if ch == 3 {
		return 0xFFFF
	}
	return 0x3FFF
}

func addrMask(ch int, dest bool) uint32 {
	if ch == 0 || (dest && ch < 3) {
		return 0x07FFFFFF
	}
	return 0x0FFFFFFF
}

type channel struct {
	wasEnabled  bool
	srcLatch    uint32
	dstLatch    uint32
	countLatch  uint32
}

// Engine owns the four DMA channels' trigger-edge state and performs the
// block copies that steal bus cycles from the CPU, per §4.6.
type Engine struct {
	Bus *membus.Bus
	log *slog.Logger

	ch [numChannels]channel
}

// New creates an Engine reading and mutating bus.
func New(bus *membus.Bus, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{Bus: bus, log: log}
}

func (e *Engine) control(ch int) Control {
	off := ioOffsets[ch].cntH
	lo := e.Bus.IOByte(off)
	hi := e.Bus.IOByte(off + 1)
	return controlFrom(uint16(lo) | uint16(hi)<<8)
}

func (e *Engine) writeControl(ch int, c Control) {
	var v uint32
	v |= uint32(c.DestControl) << 5
	v |= uint32(c.SrcControl) << 7
	if c.Repeat {
		v |= 1 << 9
	}
	if c.WordTransfer {
		v |= 1 << 10
	}
	if c.GamePakDRQ {
		v |= 1 << 11
	}
	v |= uint32(c.StartTiming) << 12
	if c.IRQOnComplete {
		v |= 1 << 14
	}
	if c.Enabled {
		v |= 1 << 15
	}
	off := ioOffsets[ch].cntH
	e.Bus.SetIOByte(off, uint8(v))
	e.Bus.SetIOByte(off+1, uint8(v>>8))
}

func (e *Engine) readSAD(ch int) uint32 {
	off := ioOffsets[ch].sad
	return e.readWord(off) & addrMask(ch, false)
}

func (e *Engine) readDAD(ch int) uint32 {
	off := ioOffsets[ch].dad
	return e.readWord(off) & addrMask(ch, true)
}

func (e *Engine) readCount(ch int) uint32 {
	off := ioOffsets[ch].cntL
	lo := e.Bus.IOByte(off)
	hi := e.Bus.IOByte(off + 1)
	v := (uint32(lo) | uint32(hi)<<8) & countMask(ch)
	if v == 0 {
		v = countMask(ch) + 1
	}
	return v
}

func (e *Engine) readWord(off uint32) uint32 {
	var v uint32
	for i := uint32(0); i < 4; i++ {
		v |= uint32(e.Bus.IOByte(off+i)) << (8 * i)
	}
	return v
}

// Poll checks every channel for a rising edge on its enable bit, servicing
// immediate-start channels right away and latching source/destination for
// VBlank/HBlank/special channels to arm later. Call once per CPU tick.
// Returns cycles stolen from the CPU this call.
func (e *Engine) Poll() int {
	cycles := 0
	for ch := 0; ch < numChannels; ch++ {
		c := e.control(ch)
		st := &e.ch[ch]
		if c.Enabled && !st.wasEnabled {
			st.srcLatch = e.readSAD(ch)
			st.dstLatch = e.readDAD(ch)
			st.countLatch = e.readCount(ch)
			if c.StartTiming == StartImmediate {
				cycles += e.run(ch, c)
			}
		}
		st.wasEnabled = c.Enabled
	}
	return cycles
}

// OnVBlank and OnHBlank run every enabled channel armed for that start
// timing, in priority order 0>1>2>3, per §4.6.
func (e *Engine) OnVBlank() int { return e.fireTrigger(StartVBlank) }
func (e *Engine) OnHBlank() int { return e.fireTrigger(StartHBlank) }

func (e *Engine) fireTrigger(timing StartTiming) int {
	cycles := 0
	for ch := 0; ch < numChannels; ch++ {
		c := e.control(ch)
		if c.Enabled && c.StartTiming == timing {
			cycles += e.run(ch, c)
		}
	}
	return cycles
}

// run performs one channel's block transfer, then either reloads its
// latches for the next trigger (repeat, non-immediate) or clears its
// enable bit in the control register, per §4.6.
func (e *Engine) run(ch int, c Control) int {
	st := &e.ch[ch]
	src, dst, count := st.srcLatch, st.dstLatch, st.countLatch

	unitSize := uint32(2)
	if c.WordTransfer {
		unitSize = 4
	}

	cycles := 0
	for i := uint32(0); i < count; i++ {
		if c.WordTransfer {
			v, _, err := e.Bus.Read32(src)
			if err == nil {
				e.Bus.Write32(dst, v)
			}
		} else {
			v, _, err := e.Bus.Read16(src)
			if err == nil {
				e.Bus.Write16(dst, v)
			}
		}
		cycles += 2

		src = stepAddr(src, c.SrcControl, unitSize)
		dst = stepAddr(dst, c.DestControl, unitSize)
	}

	e.log.Debug("dma transfer", "channel", ch, "count", count, "word", c.WordTransfer, "src", src, "dst", dst)

	if c.IRQOnComplete {
		e.raiseIRQ(8 + ch)
	}

	if c.Repeat && c.StartTiming != StartImmediate {
		st.srcLatch = src
		if c.DestControl == AddrIncrementReload {
			st.dstLatch = e.readDAD(ch)
		} else {
			st.dstLatch = dst
		}
		st.countLatch = e.readCount(ch)
	} else {
		c.Enabled = false
		e.writeControl(ch, c)
		st.wasEnabled = false
	}

	return cycles
}

func stepAddr(addr uint32, ctrl AddrControl, unitSize uint32) uint32 {
	switch ctrl {
	case AddrIncrement, AddrIncrementReload:
		return addr + unitSize
	case AddrDecrement:
		return addr - unitSize
	default:
		return addr
	}
}

func (e *Engine) raiseIRQ(bit int) {
	off := membus.IOOffsetIF + uint32(bit/8)
	iflags := e.Bus.IOByte(off)
	e.Bus.SetIOByte(off, iflags|uint8(1<<uint(bit%8)))
}
