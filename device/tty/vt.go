package tty

import (
	"io"
	"minios/device/video/console"
	"minios/kernel"
)

// Hardware cursor shape (scanlines) used by an attached console.
const (
	cursorStartLine = 14
	cursorEndLine   = 15
)

// MaxColumns and MaxRows bound the console area a VT can manage. Larger
// consoles are clipped.
const (
	MaxColumns = 132
	MaxRows    = 60
)

// VT implements a terminal on top of a text console. The terminal keeps a
// copy of its contents so that it can repaint the console when it becomes
// active. It interprets the following special characters:
//   - \r (carriage-return)
//   - \n (line-feed)
//   - \b (backspace; blanks the previous cell, moving to the end of the
//     previous line when at column 0)
//   - \t (tab; expanded to tabWidth spaces)
//
// Output wraps to the next line once a line is full and the contents scroll
// up when the cursor moves past the last line. The prompt anchor row moves
// up together with the scrolled contents.
type VT struct {
	cons   console.Device
	cursor console.CursorController

	width  uint32
	height uint32

	// The terminal contents. Each character occupies 3 bytes and uses the
	// format: (ASCII char, fg, bg). Only the first width*height cells are
	// in use.
	data [MaxColumns * MaxRows * 3]uint8

	tabWidth         uint8
	defaultFg, curFg uint8
	defaultBg, curBg uint8
	cursorX          uint32
	cursorY          uint32
	promptX          uint32
	promptY          uint32
	state            State
}

// NewVT creates a new virtual terminal device. The tabWidth parameter controls
// tab expansion.
func NewVT(tabWidth uint8) *VT {
	t := new(VT)
	t.reset(tabWidth)
	return t
}

// reset detaches the terminal and restores its initial state.
func (t *VT) reset(tabWidth uint8) {
	t.cons, t.cursor = nil, nil
	t.width, t.height = 0, 0
	t.tabWidth = tabWidth
	t.defaultFg, t.curFg = 0, 0
	t.defaultBg, t.curBg = 0, 0
	t.cursorX, t.cursorY = 0, 0
	t.promptX, t.promptY = 0, 0
	t.state = StateInactive
}

// AttachTo connects a TTY to a console instance. If the console drives a
// hardware cursor, the cursor is enabled and kept in sync with the terminal
// cursor.
func (t *VT) AttachTo(cons console.Device) {
	if cons == nil {
		return
	}

	t.cons = cons
	t.cursor, _ = cons.(console.CursorController)
	t.width, t.height = cons.Dimensions()
	if t.width > MaxColumns {
		t.width = MaxColumns
	}
	if t.height > MaxRows {
		t.height = MaxRows
	}
	t.defaultFg, t.defaultBg = cons.DefaultColors()
	t.curFg, t.curBg = t.defaultFg, t.defaultBg
	t.cursorX, t.cursorY = 0, 0
	t.promptX, t.promptY = 0, 0

	// Fill the contents with empty characters using the default fg/bg
	// colors for the attached console.
	t.clearData(0, t.dataLen())

	if t.cursor != nil {
		t.cursor.EnableCursor(cursorStartLine, cursorEndLine)
	}
}

// State returns the TTY's state.
func (t *VT) State() State {
	return t.state
}

// SetState updates the TTY's state.
func (t *VT) SetState(newState State) {
	if t.state == newState {
		return
	}

	t.state = newState

	// If the terminal became active, update the console with its contents
	if t.state == StateActive && t.cons != nil {
		for y, offset := uint32(0), uint32(0); y < t.height; y++ {
			for x := uint32(0); x < t.width; x, offset = x+1, offset+3 {
				t.cons.Write(t.data[offset], t.data[offset+1], t.data[offset+2], x, y)
			}
		}
		t.syncCursor()
	}
}

// CursorPosition returns the current cursor position.
func (t *VT) CursorPosition() (uint32, uint32) {
	return t.cursorX, t.cursorY
}

// SetCursorPosition sets the current cursor position to (x,y).
func (t *VT) SetCursorPosition(x, y uint32) {
	if t.cons == nil {
		return
	}

	if x >= t.width {
		x = t.width - 1
	}

	if y >= t.height {
		y = t.height - 1
	}

	t.cursorX, t.cursorY = x, y
	t.syncCursor()
}

// SetPromptAnchor records the current cursor position as the prompt anchor.
func (t *VT) SetPromptAnchor() {
	t.promptX, t.promptY = t.cursorX, t.cursorY
}

// PromptAnchor returns the recorded prompt anchor.
func (t *VT) PromptAnchor() (uint32, uint32) {
	return t.promptX, t.promptY
}

// CanErase returns true if the cursor is located after the prompt anchor.
func (t *VT) CanErase() bool {
	return t.cursorY > t.promptY || (t.cursorY == t.promptY && t.cursorX > t.promptX)
}

// Clear blanks the terminal and resets the cursor and the prompt anchor.
func (t *VT) Clear() {
	if t.cons == nil {
		return
	}

	t.clearData(0, t.dataLen())
	if t.state == StateActive {
		t.cons.Fill(0, 0, t.width, t.height, t.defaultFg, t.defaultBg)
	}

	t.cursorX, t.cursorY = 0, 0
	t.promptX, t.promptY = 0, 0
	t.syncCursor()
}

// Write implements io.Writer.
func (t *VT) Write(data []byte) (int, error) {
	for count, b := range data {
		err := t.WriteByte(b)
		if err != nil {
			return count, err
		}
	}

	return len(data), nil
}

// WriteByte implements io.ByteWriter.
func (t *VT) WriteByte(b byte) error {
	if t.cons == nil {
		return io.ErrClosedPipe
	}

	switch b {
	case '\r':
		t.cursorX = 0
	case '\n':
		t.lf()
	case '\b':
		t.backspace()
	case '\t':
		for i := uint8(0); i < t.tabWidth; i++ {
			t.doWrite(' ')
		}
	default:
		t.doWrite(b)
	}

	t.syncCursor()
	return nil
}

// doWrite writes the specified character together with the current fg/bg
// attributes at the cursor position and advances the cursor, moving to the
// next line once the current one is full.
func (t *VT) doWrite(b byte) {
	t.put(b, t.curFg, t.curBg)

	t.cursorX++
	if t.cursorX >= t.width {
		t.lf()
	}
}

// backspace moves the cursor back one cell and blanks it. At column 0 the
// cursor moves to the last column of the previous line; on the top-left
// cell it stays put.
func (t *VT) backspace() {
	switch {
	case t.cursorX > 0:
		t.cursorX--
	case t.cursorY > 0:
		t.cursorY--
		t.cursorX = t.width - 1
	}

	t.put(' ', t.defaultFg, t.defaultBg)
}

// lf moves the cursor to the start of the next line, scrolling the terminal
// contents if the cursor is already on the last line.
func (t *VT) lf() {
	t.cursorX = 0

	if t.cursorY+1 < t.height {
		t.cursorY++
		return
	}

	t.scroll()
}

// scroll moves the contents up by one line and blanks the last line. The
// prompt anchor follows the contents.
func (t *VT) scroll() {
	stride := t.width * 3
	lastLine := (t.height - 1) * stride

	copy(t.data[:lastLine], t.data[stride:])
	t.clearData(lastLine, lastLine+stride)

	if t.state == StateActive {
		t.cons.Scroll(console.ScrollDirUp, 1)
		t.cons.Fill(0, t.height-1, t.width, 1, t.defaultFg, t.defaultBg)
	}

	if t.promptY > 0 {
		t.promptY--
	}
}

// put stores a character at the cursor position and mirrors it to the
// console while the terminal is active.
func (t *VT) put(b, fg, bg uint8) {
	offset := (t.cursorY*t.width + t.cursorX) * 3
	t.data[offset] = b
	t.data[offset+1] = fg
	t.data[offset+2] = bg

	if t.state == StateActive {
		t.cons.Write(b, fg, bg, t.cursorX, t.cursorY)
	}
}

// dataLen returns the number of bytes of data in use.
func (t *VT) dataLen() uint32 {
	return t.width * t.height * 3
}

func (t *VT) clearData(from, to uint32) {
	for i := from; i < to; i += 3 {
		t.data[i] = ' '
		t.data[i+1] = t.defaultFg
		t.data[i+2] = t.defaultBg
	}
}

// syncCursor moves the hardware cursor to the terminal cursor position.
func (t *VT) syncCursor() {
	if t.state == StateActive && t.cursor != nil {
		t.cursor.SetCursor(t.cursorX, t.cursorY)
	}
}

// DriverName returns the name of this driver.
func (t *VT) DriverName() string {
	return "vt"
}

// DriverVersion returns the version of this driver.
func (t *VT) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit initializes this driver.
func (t *VT) DriverInit(_ io.Writer) *kernel.Error { return nil }
