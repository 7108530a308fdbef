// Package shell implements the kernel's line-oriented command shell. Input
// is consumed from the active input device in the main context; all output
// goes through the attached terminal.
package shell

import (
	"minios/device/tty"
	"minios/kernel/cpu"
	"minios/kernel/fs"
	"minios/kernel/hal"
	"minios/kernel/kfmt"
	"minios/kernel/mm"
	"strings"
	"unsafe"
)

const (
	// LineBufferSize is the size of the line buffer. One byte is kept
	// free so at most LineBufferSize-1 characters can be typed.
	LineBufferSize = 256

	// Prompt is printed before each line is read.
	Prompt = ">"

	testProcessName = "test_process"
)

var (
	haltFn    = cpu.Halt
	allocFn   = mm.AllocBytes
	resetFn   = mm.Reset
	memUsedFn = mm.Used
	memFreeFn = mm.Free
)

// Shell reads command lines from an input device and executes them.
type Shell struct {
	term  tty.Device
	input hal.InputDevice
	files *fs.Store

	line    [LineBufferSize]byte
	lineLen int
}

// New returns a shell that reads from input and writes to term. A nil files
// store disables the file commands.
func New(term tty.Device, input hal.InputDevice, files *fs.Store) *Shell {
	sh := new(Shell)
	sh.Init(term, input, files)
	return sh
}

// Init prepares a statically allocated shell. It behaves like New.
func (sh *Shell) Init(term tty.Device, input hal.InputDevice, files *fs.Store) {
	sh.term, sh.input, sh.files = term, input, files
	sh.lineLen = 0
}

// Run prints the banner and processes input forever. While no input is
// available the processor is halted until the next interrupt.
func (sh *Shell) Run() {
	sh.Start()
	for {
		for !sh.input.HasData() {
			haltFn()
		}
		sh.Poll()
	}
}

// Start prints the banner and the first prompt.
func (sh *Shell) Start() {
	kfmt.Fprintf(sh.term, "\nType 'help' for available commands.\n\n")
	sh.prompt()
}

// Poll consumes every character currently available from the input
// device and returns the number of characters processed.
func (sh *Shell) Poll() int {
	var count int
	for sh.input.HasData() {
		b, err := sh.input.ReadByte()
		if err != nil {
			break
		}

		sh.HandleByte(b)
		count++
	}
	return count
}

// HandleByte applies a single typed character to the line being edited.
func (sh *Shell) HandleByte(b byte) {
	switch {
	case b == '\n':
		// The line is executed in place; commands that keep any part of
		// it must copy it.
		line := unsafe.String(&sh.line[0], sh.lineLen)
		sh.lineLen = 0
		sh.term.WriteByte('\n')
		sh.Execute(line)
		sh.prompt()
	case b == '\b':
		if sh.lineLen > 0 && sh.term.CanErase() {
			sh.lineLen--
			sh.term.WriteByte('\b')
		}
	case b >= 32 && sh.lineLen < LineBufferSize-1:
		sh.line[sh.lineLen] = b
		sh.lineLen++
		sh.term.WriteByte(b)
	}
}

// Line returns the characters typed since the last prompt.
func (sh *Shell) Line() string {
	return string(sh.line[:sh.lineLen])
}

func (sh *Shell) prompt() {
	kfmt.Fprintf(sh.term, Prompt)
	sh.term.SetPromptAnchor()
}

// Execute runs a single command line.
func (sh *Shell) Execute(line string) {
	if line == "" {
		return
	}

	for _, cmd := range commands {
		if cmd.exact && line == cmd.name {
			cmd.fn(sh, "")
			return
		}
		if !cmd.exact && len(line) > len(cmd.name) && line[len(cmd.name)] == ' ' && strings.HasPrefix(line, cmd.name) {
			cmd.fn(sh, line[len(cmd.name)+1:])
			return
		}
	}

	kfmt.Fprintf(sh.term, "Unknown command: %s\nType 'help' for available commands.\n", line)
}
