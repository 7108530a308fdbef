package tty

import (
	"io"
	"minios/device/video/console"
)

// DefaultTabWidth defines the number of spaces that tabs expand to.
const DefaultTabWidth = 4

// State defines the supported terminal state values.
type State uint8

const (
	// StateInactive marks the terminal as inactive. Any writes will be
	// buffered and not synced to the attached console.
	StateInactive State = iota

	// StateActive marks the terminal as active. Any writes will be
	// buffered and also synced to the attached console.
	StateActive
)

// Device is implemented by objects that can be used as a terminal device.
// All coordinates are 0-based (top-left corner has coordinates 0,0).
type Device interface {
	io.Writer
	io.ByteWriter

	// AttachTo connects a TTY to a console instance.
	AttachTo(console.Device)

	// State returns the TTY's state.
	State() State

	// SetState updates the TTY's state.
	SetState(State)

	// CursorPosition returns the current cursor x,y coordinates.
	CursorPosition() (uint32, uint32)

	// SetCursorPosition sets the current cursor position to (x,y).
	// Implementations are expected to clip the cursor position to their
	// viewport.
	SetCursorPosition(x, y uint32)

	// Clear blanks the terminal and moves both the cursor and the prompt
	// anchor to the top-left corner.
	Clear()

	// SetPromptAnchor records the current cursor position as the start
	// of the line being edited.
	SetPromptAnchor()

	// PromptAnchor returns the recorded prompt anchor.
	PromptAnchor() (uint32, uint32)

	// CanErase returns true if the cursor is past the prompt anchor so
	// that a backspace would only remove input typed after the prompt.
	CanErase() bool
}
