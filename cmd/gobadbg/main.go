// Command gobadbg is the interactive TUI front-end for internal/debugger's
// command grammar, driving a gba.Core the way a source-level debugger
// drives a running program.
//
// Grounded on hejops-gone/cpu/debugger.go's model/Init/Update/View shape:
// the next instruction address and a scrollback log rendered with
// lipgloss, keystrokes entered as a command line, and the register file
// dumped with go-spew on `info`.
package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"

	"goba/internal/debugger"
	"goba/internal/gba"
	"goba/internal/logging"
)

func main() {
	app := &cli.App{
		Name:  "gobadbg",
		Usage: "interactive GBA core debugger",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bios", Required: true},
			&cli.StringFlag{Name: "rom", Required: true},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	bios, err := os.ReadFile(c.String("bios"))
	if err != nil {
		return err
	}
	rom, err := os.ReadFile(c.String("rom"))
	if err != nil {
		return err
	}

	core := gba.New(logging.Discard())
	if err := core.Reset(bios, rom); err != nil {
		return err
	}

	_, err = tea.NewProgram(newModel(core)).Run()
	return err
}

type model struct {
	core  *gba.Core
	input string
	log   []string
	err   error
	quit  bool
}

func newModel(core *gba.Core) model {
	return model{core: core}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		line := m.input
		m.input = ""
		m = m.execute(line)
		if m.quit {
			return m, tea.Quit
		}
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyRunes:
		m.input += string(keyMsg.Runes)
	}
	return m, nil
}

func (m model) execute(line string) model {
	cmd, err := debugger.ParseCommand(line)
	if err != nil {
		m.err = err
		return m
	}
	m.err = nil

	switch cmd.Kind {
	case debugger.CommandQuit:
		m.quit = true
	case debugger.CommandBreak:
		m.core.SetBreakpoint(cmd.Addr)
		m.log = append(m.log, fmt.Sprintf("breakpoint set at 0x%08X", cmd.Addr))
	case debugger.CommandWrite:
		if err := m.core.Poke8(cmd.Addr, uint8(cmd.Value)); err != nil {
			m.err = err
		}
	case debugger.CommandRead:
		v, err := m.core.Peek8(cmd.Addr)
		if err != nil {
			m.err = err
		} else {
			m.log = append(m.log, fmt.Sprintf("0x%08X = 0x%02X", cmd.Addr, v))
		}
	case debugger.CommandNext:
		m.core.Tick()
	case debugger.CommandContinue:
		m.runContinue(cmd.Continue)
	case debugger.CommandInfo:
		m.log = append(m.log, spew.Sdump(m.core.CPU.Registers))
	case debugger.CommandLogLevel:
		m.log = append(m.log, "log level change requires a restart with --log-level")
	}
	return m
}

func (m *model) runContinue(mode debugger.ContinueMode) {
	steps := mode.Steps
	for mode.Endless || steps > 0 {
		m.core.Tick()
		if m.core.HasBreakpoint(m.core.InstructionAddress()) {
			m.log = append(m.log, fmt.Sprintf("hit breakpoint at 0x%08X", m.core.InstructionAddress()))
			return
		}
		if !mode.Endless {
			steps--
		}
	}
}

func (m model) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("gobadbg")
	pc := fmt.Sprintf("next instruction: 0x%08X", m.core.InstructionAddress())

	logLines := m.log
	if len(logLines) > 12 {
		logLines = logLines[len(logLines)-12:]
	}

	errLine := ""
	if m.err != nil {
		errLine = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.err.Error())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		pc,
		strings.Join(logLines, "\n"),
		errLine,
		"> "+m.input,
	)
}
