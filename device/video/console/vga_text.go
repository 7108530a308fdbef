package console

import (
	"io"
	"minios/kernel"
	"minios/kernel/kfmt"
)

// CRT controller index/data ports and the registers used for the cursor.
const (
	crtcIndexPort uint16 = 0x3d4
	crtcDataPort  uint16 = 0x3d5

	crtcCursorStart   uint8 = 0x0a
	crtcCursorEnd     uint8 = 0x0b
	crtcCursorLocHigh uint8 = 0x0e
	crtcCursorLocLow  uint8 = 0x0f

	// cursorDisableBit is bit 5 of the cursor start register.
	cursorDisableBit uint8 = 1 << 5
)

var errFramebufferTooSmall = &kernel.Error{Module: "vga_text_console", Message: "framebuffer smaller than console dimensions"}

// VgaTextConsole implements an EGA-compatible text console using VGA mode
// 0x3.
//
// Each character in the console framebuffer is represented using two bytes,
// a byte for the character ASCII code and a byte that encodes the foreground
// and background colors (4 bits for each).
//
// The default settings for the console are:
//   - light gray text (color 7) on black background (color 0).
//   - space as the clear character
type VgaTextConsole struct {
	width  uint32
	height uint32

	fb []uint16

	defaultFg uint8
	defaultBg uint8
	clearChar uint16
}

// NewVgaTextConsole creates a new vga text console backed by fb.
func NewVgaTextConsole(columns, rows uint32, fb []uint16) *VgaTextConsole {
	cons := new(VgaTextConsole)
	cons.reset(columns, rows, fb)
	return cons
}

func (cons *VgaTextConsole) reset(columns, rows uint32, fb []uint16) {
	*cons = VgaTextConsole{
		width:     columns,
		height:    rows,
		fb:        fb,
		clearChar: uint16(' '),
		// light gray text on black background
		defaultFg: 7,
		defaultBg: 0,
	}
}

// Dimensions returns the console width and height in characters.
func (cons *VgaTextConsole) Dimensions() (uint32, uint32) {
	return cons.width, cons.height
}

// DefaultColors returns the default foreground and background colors
// used by this console.
func (cons *VgaTextConsole) DefaultColors() (fg uint8, bg uint8) {
	return cons.defaultFg, cons.defaultBg
}

// Fill sets the contents of the specified rectangular region to the requested
// color. The rectangle is clipped to the console bounds.
func (cons *VgaTextConsole) Fill(x, y, width, height uint32, fg, bg uint8) {
	if x >= cons.width || y >= cons.height {
		return
	}

	if x+width > cons.width {
		width = cons.width - x
	}

	if y+height > cons.height {
		height = cons.height - y
	}

	var (
		clr       = attr(fg, bg)<<8 | cons.clearChar
		rowOffset = (y * cons.width) + x
	)
	for ; height > 0; height, rowOffset = height-1, rowOffset+cons.width {
		for colOffset := rowOffset; colOffset < rowOffset+width; colOffset++ {
			cons.fb[colOffset] = clr
		}
	}
}

// Scroll the console contents to the specified direction. The caller
// is responsible for updating (e.g. clear or replace) the contents of
// the region that was scrolled.
func (cons *VgaTextConsole) Scroll(dir ScrollDir, lines uint32) {
	if lines == 0 || lines > cons.height {
		return
	}

	var i uint32
	offset := lines * cons.width

	switch dir {
	case ScrollDirUp:
		for ; i < (cons.height-lines)*cons.width; i++ {
			cons.fb[i] = cons.fb[i+offset]
		}
	case ScrollDirDown:
		for i = cons.height*cons.width - 1; i >= offset; i-- {
			cons.fb[i] = cons.fb[i-offset]
		}
	}
}

// Write a char to the specified location. Writes outside the console bounds
// are ignored. Colors are truncated to 4 bits.
func (cons *VgaTextConsole) Write(ch byte, fg, bg uint8, x, y uint32) {
	if x >= cons.width || y >= cons.height {
		return
	}

	cons.fb[(y*cons.width)+x] = attr(fg, bg)<<8 | uint16(ch)
}

// EnableCursor turns on the hardware cursor using the scanline range
// [startLine, endLine].
func (cons *VgaTextConsole) EnableCursor(startLine, endLine uint8) {
	portWriteByteFn(crtcIndexPort, crtcCursorStart)
	portWriteByteFn(crtcDataPort, startLine&^cursorDisableBit)

	portWriteByteFn(crtcIndexPort, crtcCursorEnd)
	portWriteByteFn(crtcDataPort, endLine)
}

// SetCursor moves the hardware cursor to (x, y). The linear cell offset is
// sent high byte first.
func (cons *VgaTextConsole) SetCursor(x, y uint32) {
	pos := uint16(y*cons.width + x)

	portWriteByteFn(crtcIndexPort, crtcCursorLocHigh)
	portWriteByteFn(crtcDataPort, uint8(pos>>8))

	portWriteByteFn(crtcIndexPort, crtcCursorLocLow)
	portWriteByteFn(crtcDataPort, uint8(pos))
}

// CursorPosition reads the hardware cursor location back from the CRT
// controller.
func (cons *VgaTextConsole) CursorPosition() (uint32, uint32) {
	portWriteByteFn(crtcIndexPort, crtcCursorLocHigh)
	pos := uint32(portReadByteFn(crtcDataPort)) << 8
	portWriteByteFn(crtcIndexPort, crtcCursorLocLow)
	pos |= uint32(portReadByteFn(crtcDataPort))

	return pos % cons.width, pos / cons.width
}

// DriverName returns the name of this driver.
func (cons *VgaTextConsole) DriverName() string {
	return "vga_text_console"
}

// DriverVersion returns the version of this driver.
func (cons *VgaTextConsole) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit initializes this driver.
func (cons *VgaTextConsole) DriverInit(w io.Writer) *kernel.Error {
	if uint32(len(cons.fb)) < cons.width*cons.height {
		return errFramebufferTooSmall
	}

	kfmt.Fprintf(w, "%dx%d text mode\n", cons.width, cons.height)
	return nil
}

func attr(fg, bg uint8) uint16 {
	return uint16(bg&0xf)<<4 | uint16(fg&0xf)
}
