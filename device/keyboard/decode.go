// Package keyboard implements a PS/2 keyboard driver that translates set-1
// scancodes into characters.
package keyboard

// Scancodes of the modifier keys.
const (
	scLeftShift  uint8 = 0x2a
	scRightShift uint8 = 0x36
	scCtrl       uint8 = 0x1d
	scAlt        uint8 = 0x38
	scCapsLock   uint8 = 0x3a

	releaseBit uint8 = 0x80
)

// Modifiers tracks the state of the modifier keys.
type Modifiers struct {
	Shift    bool
	Ctrl     bool
	Alt      bool
	CapsLock bool
}

// Decode applies a single scancode to mods using the tables in layout. It
// returns the updated modifier state and the produced character, or 0 if the
// scancode does not produce one. Decode performs no allocations and is safe
// to call from interrupt context.
func Decode(layout *Layout, mods Modifiers, sc uint8) (Modifiers, byte) {
	if sc&releaseBit != 0 {
		switch sc &^ releaseBit {
		case scLeftShift, scRightShift:
			mods.Shift = false
		case scCtrl:
			mods.Ctrl = false
		case scAlt:
			mods.Alt = false
		}
		return mods, 0
	}

	switch sc {
	case scLeftShift, scRightShift:
		mods.Shift = true
		return mods, 0
	case scCtrl:
		mods.Ctrl = true
		return mods, 0
	case scAlt:
		mods.Alt = true
		return mods, 0
	case scCapsLock:
		mods.CapsLock = !mods.CapsLock
		return mods, 0
	}

	ch := layout.Char(sc, mods.Shift)

	// Caps lock and shift cancel each other out for letters only.
	switch {
	case mods.CapsLock && !mods.Shift && isLower(ch):
		ch -= 'a' - 'A'
	case mods.CapsLock && mods.Shift && isUpper(ch):
		ch += 'a' - 'A'
	}

	if mods.Ctrl && isLower(ch) {
		ch -= 96
	}

	return mods, ch
}

func isLower(ch byte) bool { return ch >= 'a' && ch <= 'z' }
func isUpper(ch byte) bool { return ch >= 'A' && ch <= 'Z' }
