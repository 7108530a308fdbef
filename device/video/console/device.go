package console

// ScrollDir defines a scroll direction.
type ScrollDir uint8

// The supported list of scroll directions for the console Scroll() calls.
const (
	ScrollDirUp ScrollDir = iota
	ScrollDirDown
)

// The Device interface is implemented by objects that can function as system
// consoles. All coordinates are 0-based (top-left corner has coordinates 0,0).
type Device interface {
	// Dimensions returns the width and height of the console in
	// characters.
	Dimensions() (uint32, uint32)

	// DefaultColors returns the default foreground and background colors
	// used by this console.
	DefaultColors() (fg, bg uint8)

	// Fill sets the contents of the specified rectangular region to the
	// requested color.
	Fill(x, y, width, height uint32, fg, bg uint8)

	// Scroll the console contents to the specified direction. The caller
	// is responsible for updating (e.g. clear or replace) the contents of
	// the region that was scrolled.
	Scroll(dir ScrollDir, lines uint32)

	// Write a char to the specified location.
	Write(ch byte, fg, bg uint8, x, y uint32)
}

// CursorController is implemented by consoles that display a hardware
// cursor.
type CursorController interface {
	// EnableCursor turns the cursor on and sets its shape to the given
	// scanline range.
	EnableCursor(startLine, endLine uint8)

	// SetCursor moves the hardware cursor to (x, y).
	SetCursor(x, y uint32)
}
