// Package gba wires the CPU, memory bus, PPU and DMA engine into the
// single Core object the presenter and debugger drive, per SPEC_FULL.md §6.
//
// Grounded on LJS360d-RoBA's top-level System/Console type that owns one
// CPU and one Bus and exposes Reset/Step/Framebuffer to cmd/, generalized
// to also own a PPU and a DMA engine and to report timing-relevant edges
// between them the way the Rust reference's Gba::tick does in
// original_source/src/gba/mod.rs.
package gba

import (
	"fmt"
	"log/slog"

	"goba/internal/cpu"
	"goba/internal/dma"
	"goba/internal/membus"
	"goba/internal/ppu"
)

// Core is the root emulator object: one CPU, one Bus, one PPU, one DMA
// engine, advanced in lock-step off a single cycle counter per §5.
type Core struct {
	CPU *cpu.CPU
	Bus *membus.Bus
	PPU *ppu.PPU
	DMA *dma.Engine

	log *slog.Logger
}

// New creates a Core with every subsystem wired to a shared Bus. Reset
// must be called before the first Tick.
func New(log *slog.Logger) *Core {
	if log == nil {
		log = slog.Default()
	}
	bus := membus.New(log)
	return &Core{
		CPU: cpu.NewCPU(bus, log),
		Bus: bus,
		PPU: ppu.New(bus, log),
		DMA: dma.New(bus, log),
		log: log,
	}
}

// Reset loads bios and cartridge images, zeroes volatile RAM, and puts the
// CPU in the ARM7TDMI reset state: PC=0, CPSR=Supervisor with I and F set,
// per §6.
func (c *Core) Reset(bios, cartridge []byte) error {
	// Replace the Bus contents in place so the CPU, PPU and DMA engine keep
	// their shared pointer while every region starts zeroed again.
	*c.Bus = *membus.New(c.log)
	if err := c.Bus.LoadBIOS(bios); err != nil {
		return fmt.Errorf("gba: reset: %w", err)
	}
	if err := c.Bus.LoadCartridge(cartridge); err != nil {
		return fmt.Errorf("gba: reset: %w", err)
	}
	c.CPU.Reset()
	return nil
}

// Tick executes one CPU instruction (or pipeline refill, or taken IRQ),
// lets the DMA engine observe any enable edge it caused, and advances the
// PPU by the same number of cycles, per §6's tick() contract.
func (c *Core) Tick() uint64 {
	cycles := c.CPU.Tick()
	cycles += uint64(c.DMA.Poll())

	frameDone, hblankEntered := c.PPU.Tick(int(cycles))
	if frameDone {
		c.log.Debug("frame complete", "cycles", c.CPU.Cycles())
		cycles += uint64(c.DMA.OnVBlank())
	}
	if hblankEntered {
		cycles += uint64(c.DMA.OnHBlank())
	}
	return cycles
}

// Framebuffer returns the last fully rendered frame; valid only
// immediately after Tick reports a frame-done edge by way of
// IsFrameReady, per §6.
func (c *Core) Framebuffer() *[ppu.ScreenWidth * ppu.ScreenHeight * 4]byte {
	return c.PPU.Framebuffer()
}

// IsFrameReady/ResetFrameReady mirror the PPU's presenter hand-off so
// callers don't need to import internal/ppu directly.
func (c *Core) IsFrameReady() bool { return c.PPU.IsFrameReady() }
func (c *Core) ResetFrameReady()   { c.PPU.ResetFrameReady() }

// Peek8/Peek32 and Poke8 are debug-only, non-timing memory accesses for
// the debugger's r|read and w|write commands, per §6.
func (c *Core) Peek8(addr uint32) (uint8, error)  { return c.Bus.Peek8(addr) }
func (c *Core) Peek32(addr uint32) (uint32, error) { return c.Bus.Peek32(addr) }
func (c *Core) Poke8(addr uint32, value uint8) error { return c.Bus.Poke8(addr, value) }

// SetBreakpoint/ClearBreakpoint and InstructionAddress delegate straight
// to the CPU, per §6.
func (c *Core) SetBreakpoint(addr uint32)    { c.CPU.SetBreakpoint(addr) }
func (c *Core) ClearBreakpoint(addr uint32)  { c.CPU.ClearBreakpoint(addr) }
func (c *Core) HasBreakpoint(addr uint32) bool { return c.CPU.HasBreakpoint(addr) }
func (c *Core) InstructionAddress() uint32   { return c.CPU.InstructionAddress() }
