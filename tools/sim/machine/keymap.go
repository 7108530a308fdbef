package machine

import "minios/device/keyboard"

const (
	scLeftShift = 0x2a
	scBackspace = 0x0e
	scEnter     = 0x1c
	releaseBit  = 0x80
)

// Keymap translates host characters into set 1 make/break sequences for a
// keyboard layout.
type Keymap struct {
	normal  [128]uint8
	shifted [128]uint8
}

// NewKeymap inverts the tables of layout.
func NewKeymap(layout *keyboard.Layout) *Keymap {
	km := new(Keymap)

	// Walk the tables backwards so that the lowest scancode producing a
	// character wins; keypad keys duplicate several characters.
	for sc := uint8(0x7f); sc > 0; sc-- {
		if ch := layout.Char(sc, false); ch != 0 && ch < 128 {
			km.normal[ch] = sc
		}
		if ch := layout.Char(sc, true); ch != 0 && ch < 128 {
			km.shifted[ch] = sc
		}
	}

	km.normal['\n'] = scEnter
	km.normal['\r'] = scEnter
	km.normal['\b'] = scBackspace
	km.normal[0x7f] = scBackspace
	return km
}

// Scancodes returns the key presses that type ch, or nil if ch cannot be
// typed with the layout.
func (km *Keymap) Scancodes(ch byte) []uint8 {
	if ch >= 128 {
		return nil
	}

	if sc := km.normal[ch]; sc != 0 {
		return []uint8{sc, sc | releaseBit}
	}

	if sc := km.shifted[ch]; sc != 0 {
		return []uint8{scLeftShift, sc, sc | releaseBit, scLeftShift | releaseBit}
	}

	return nil
}

// Type queues the key presses for every character of s that the keymap can
// produce.
func (m *Machine) Type(km *Keymap, s string) {
	var scancodes []uint8
	for i := 0; i < len(s); i++ {
		scancodes = append(scancodes, km.Scancodes(s[i])...)
	}
	m.PressScancodes(scancodes...)
}
