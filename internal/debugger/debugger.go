// Package debugger implements the line-oriented command grammar from
// SPEC_FULL.md §6, grounded on rcornwell-S370's command/parser minimum-
// abbreviation table and crusty-gba's gba/debugger.rs grammar. The package
// has no UI dependency; cmd/gobadbg drives it interactively.
package debugger

import (
	"fmt"
	"strconv"
	"strings"
)

// CommandKind tags the variant carried by Command.
type CommandKind int

const (
	CommandBreak CommandKind = iota
	CommandWrite
	CommandRead
	CommandContinue
	CommandNext
	CommandInfo
	CommandQuit
	CommandLogLevel
)

// Command is the parsed result of one input line. Only the fields relevant
// to Kind are populated.
type Command struct {
	Kind     CommandKind
	Addr     uint32
	Value    uint32
	Continue ContinueMode
	LogLevel string
}

// ContinueMode distinguishes `c` (run forever) from `c N` (run N steps).
type ContinueMode struct {
	Endless bool
	Steps   int
}

// ErrorKind identifies one of the three parse failure shapes from §7.
type ErrorKind int

const (
	NoCommandGiven ErrorKind = iota
	CommandNotRecognized
	CommandMissingArguments
)

// ParseError is the typed error the debugger shell displays verbatim.
type ParseError struct {
	Kind ErrorKind
	Text string
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case NoCommandGiven:
		return ""
	case CommandMissingArguments:
		return "command missing arguments: " + e.Text
	default:
		return "command not recognized: " + e.Text
	}
}

var logLevels = map[string]bool{
	"error": true, "warn": true, "info": true,
	"debug": true, "trace": true, "off": true,
}

type entry struct {
	name string
	min  int
	run  func(word string, fields []string) (Command, error)
}

var table = []entry{
	{name: "break", min: 1, run: parseBreak},
	{name: "write", min: 1, run: parseWrite},
	{name: "read", min: 1, run: parseRead},
	{name: "continue", min: 1, run: parseContinue},
	{name: "next", min: 1, run: parseNext},
	{name: "info", min: 1, run: parseInfo},
	{name: "quit", min: 1, run: parseQuit},
	{name: "log_level", min: 1, run: parseLogLevel},
}

// match finds table entries whose name the given word prefixes, honoring
// each entry's minimum-abbreviation length (e.g. "b" matches "break").
func match(word string) []entry {
	var out []entry
	for _, e := range table {
		if len(word) < e.min || len(word) > len(e.name) {
			continue
		}
		if strings.HasPrefix(e.name, word) {
			out = append(out, e)
		}
	}
	return out
}

// ParseCommand parses one line of debugger input per the §6 grammar.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, &ParseError{Kind: NoCommandGiven}
	}

	word := strings.ToLower(fields[0])
	candidates := match(word)
	if len(candidates) != 1 {
		return Command{}, &ParseError{Kind: CommandNotRecognized, Text: line}
	}

	return candidates[0].run(line, fields[1:])
}

func parseHex32(s string) (uint32, bool) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	return uint32(v), err == nil
}

func parseBreak(line string, args []string) (Command, error) {
	if len(args) < 1 {
		return Command{}, &ParseError{Kind: CommandMissingArguments, Text: line}
	}
	addr, ok := parseHex32(args[0])
	if !ok {
		return Command{}, &ParseError{Kind: CommandNotRecognized, Text: line}
	}
	return Command{Kind: CommandBreak, Addr: addr}, nil
}

func parseWrite(line string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &ParseError{Kind: CommandMissingArguments, Text: line}
	}
	value, ok := parseHex32(args[0])
	if !ok {
		return Command{}, &ParseError{Kind: CommandNotRecognized, Text: line}
	}
	addr, ok := parseHex32(args[1])
	if !ok {
		return Command{}, &ParseError{Kind: CommandNotRecognized, Text: line}
	}
	return Command{Kind: CommandWrite, Addr: addr, Value: value}, nil
}

func parseRead(line string, args []string) (Command, error) {
	if len(args) < 1 {
		return Command{}, &ParseError{Kind: CommandMissingArguments, Text: line}
	}
	addr, ok := parseHex32(args[0])
	if !ok {
		return Command{}, &ParseError{Kind: CommandNotRecognized, Text: line}
	}
	return Command{Kind: CommandRead, Addr: addr}, nil
}

func parseContinue(line string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{Kind: CommandContinue, Continue: ContinueMode{Endless: true}}, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return Command{}, &ParseError{Kind: CommandNotRecognized, Text: line}
	}
	return Command{Kind: CommandContinue, Continue: ContinueMode{Steps: n}}, nil
}

func parseNext(_ string, _ []string) (Command, error) {
	return Command{Kind: CommandNext}, nil
}

func parseInfo(_ string, _ []string) (Command, error) {
	return Command{Kind: CommandInfo}, nil
}

func parseQuit(_ string, _ []string) (Command, error) {
	return Command{Kind: CommandQuit}, nil
}

func parseLogLevel(line string, args []string) (Command, error) {
	if len(args) < 1 {
		return Command{}, &ParseError{Kind: CommandMissingArguments, Text: line}
	}
	level := strings.ToLower(args[0])
	if !logLevels[level] {
		return Command{}, &ParseError{Kind: CommandNotRecognized, Text: line}
	}
	return Command{Kind: CommandLogLevel, LogLevel: level}, nil
}

// String renders a Command the way the shell echoes it back in its log
// pane.
func (c Command) String() string {
	switch c.Kind {
	case CommandBreak:
		return fmt.Sprintf("break 0x%08X", c.Addr)
	case CommandWrite:
		return fmt.Sprintf("write 0x%X -> 0x%08X", c.Value, c.Addr)
	case CommandRead:
		return fmt.Sprintf("read 0x%08X", c.Addr)
	case CommandContinue:
		if c.Continue.Endless {
			return "continue"
		}
		return fmt.Sprintf("continue %d", c.Continue.Steps)
	case CommandNext:
		return "next"
	case CommandInfo:
		return "info"
	case CommandQuit:
		return "quit"
	case CommandLogLevel:
		return "log_level " + c.LogLevel
	default:
		return "?"
	}
}
