// Command goba is the headless presenter: it drives a Core in a tick loop
// until a requested number of frames have rendered, then dumps the last
// framebuffer to a PNG, per SPEC_FULL.md §6.
//
// Grounded on LJS360d-RoBA's main.go for the tick-loop/frame-dump shape,
// re-cast onto github.com/urfave/cli/v2 the way master-g-childhood's
// cmd/chr2png drives its flag parsing.
package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"goba/internal/gba"
	"goba/internal/logging"
	"goba/internal/membus"
)

func main() {
	app := &cli.App{
		Name:  "goba",
		Usage: "headless GBA core runner",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bios", Usage: "path to a 16KiB BIOS image", Required: true},
			&cli.StringFlag{Name: "rom", Usage: "path to a cartridge ROM image", Required: true},
			&cli.StringFlag{Name: "log-level", Usage: "error|warn|info|debug|trace|off", Value: "info"},
			&cli.StringSliceFlag{Name: "break", Usage: "breakpoint address (hex), may repeat"},
			&cli.IntFlag{Name: "frames", Usage: "stop after this many rendered frames and dump a PNG", Value: 1},
			&cli.StringFlag{Name: "out", Usage: "PNG path for the final frame", Value: "frame.png"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level, _ := logging.ParseLevel(c.String("log-level"))
	log := logging.New(os.Stderr, level, false)

	core := gba.New(log)

	bios, err := os.ReadFile(c.String("bios"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("goba: reading BIOS: %v", err), 1)
	}
	rom, err := os.ReadFile(c.String("rom"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("goba: reading ROM: %v", err), 1)
	}

	if err := core.Reset(bios, rom); err != nil {
		if errors.Is(err, membus.ErrImageSizeOutOfRange) {
			return cli.Exit(fmt.Sprintf("goba: %v", err), 2)
		}
		return cli.Exit(fmt.Sprintf("goba: %v", err), 1)
	}

	for _, raw := range c.StringSlice("break") {
		addr, err := strconv.ParseUint(raw, 16, 32)
		if err != nil {
			return cli.Exit(fmt.Sprintf("goba: bad breakpoint %q: %v", raw, err), 1)
		}
		core.SetBreakpoint(uint32(addr))
	}

	wantFrames := c.Int("frames")
	framesSeen := 0
	for framesSeen < wantFrames {
		if core.HasBreakpoint(core.InstructionAddress()) {
			log.Info("hit breakpoint", "addr", core.InstructionAddress())
			break
		}
		core.Tick()
		if core.IsFrameReady() {
			framesSeen++
			core.ResetFrameReady()
		}
	}

	if err := dumpFrame(core, c.String("out")); err != nil {
		return cli.Exit(fmt.Sprintf("goba: writing frame: %v", err), 1)
	}
	return nil
}

func dumpFrame(core *gba.Core, path string) error {
	fb := core.Framebuffer()
	const w, h = 240, 160
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, fb[:])

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
