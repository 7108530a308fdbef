package keyboard

// firstKey is the scancode of the first character listed in a layout.
const firstKey = 0x02

// Layout maps set-1 make codes to characters. Layouts are plain data so
// they are usable before any package initialization has run.
type Layout struct {
	Name string

	// normal and shifted list the characters produced by consecutive
	// scancodes starting at firstKey. A zero byte means that the key
	// produces no character.
	normal  string
	shifted string
}

// Char returns the character produced by sc, or 0 if the key produces no
// character.
func (l *Layout) Char(sc uint8, shifted bool) byte {
	switch sc {
	case 0x01:
		return 27
	case 0x37:
		return '*'
	case 0x39:
		return ' '
	case 0x4a:
		return '-'
	case 0x4e:
		return '+'
	}

	// The keypad produces digits only when shifted since num-lock is not
	// tracked.
	if sc >= 0x47 && sc <= 0x53 {
		if !shifted {
			return 0
		}
		return keypadShifted(sc)
	}

	tbl := l.normal
	if shifted {
		tbl = l.shifted
	}

	if sc < firstKey || int(sc-firstKey) >= len(tbl) {
		return 0
	}
	return tbl[sc-firstKey]
}

func keypadShifted(sc uint8) byte {
	switch sc {
	case 0x47:
		return '7'
	case 0x48:
		return '8'
	case 0x49:
		return '9'
	case 0x4b:
		return '4'
	case 0x4c:
		return '5'
	case 0x4d:
		return '6'
	case 0x4f:
		return '1'
	case 0x50:
		return '2'
	case 0x51:
		return '3'
	case 0x52:
		return '0'
	case 0x53:
		return '.'
	}
	return 0
}

var (
	// US is the US QWERTY layout.
	US = &Layout{
		Name:    "us",
		normal:  "1234567890-=\b\tqwertyuiop[]\n\x00asdfghjkl;'`\x00\\zxcvbnm,./",
		shifted: "!@#$%^&*()_+\b\tQWERTYUIOP{}\n\x00ASDFGHJKL:\"~\x00|ZXCVBNM<>?",
	}

	// QWERTZ is a central European QWERTZ layout. Keys that carry
	// non-ASCII letters produce no character.
	QWERTZ = &Layout{
		Name:    "qwertz",
		normal:  "1234567890'=\b\tqwertzuiop\x00\x00\n\x00asdfghjkl\x00\x00\x00\x00\\yxcvbnm,.-",
		shifted: "!\"#$%&/()=?*\b\tQWERTZUIOP\x00\x00\n\x00ASDFGHJKL\x00\x00\x00\x00>YXCVBNM;:_",
	}

	layouts = [...]*Layout{US, QWERTZ}
)

// LayoutByName returns the layout with the given name or nil if no such
// layout exists.
func LayoutByName(name string) *Layout {
	for _, l := range layouts {
		if l.Name == name {
			return l
		}
	}
	return nil
}
