package main

import (
	"os"

	"golang.org/x/term"
)

// enterRawMode switches the terminal attached to f to raw mode so that key
// presses are delivered one byte at a time without echo. Input that is not a
// terminal is read as is. The returned function restores the original
// settings.
func enterRawMode(f *os.File) (restore func(), err error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	return func() { term.Restore(fd, state) }, nil
}

// terminalSize returns the dimensions of the terminal attached to f.
func terminalSize(f *os.File) (cols, rows int, err error) {
	return term.GetSize(int(f.Fd()))
}
