package tty

import (
	"io"
	"minios/device"
	"minios/device/video/console"
	"testing"
)

func TestVtPosition(t *testing.T) {
	specs := []struct {
		inX, inY   uint32
		expX, expY uint32
	}{
		{20, 20, 20, 20},
		{100, 20, 79, 20},
		{10, 200, 10, 24},
		{100, 100, 79, 24},
		{0, 0, 0, 0},
	}

	var term Device = NewVT(4)

	// SetCursorPosition without an attached console is a no-op
	term.SetCursorPosition(2, 2)

	if curX, curY := term.CursorPosition(); curX != 0 || curY != 0 {
		t.Fatalf("expected terminal initial position to be (0, 0); got (%d, %d)", curX, curY)
	}

	cons := newMockConsole(80, 25)
	term.AttachTo(cons)
	term.SetState(StateActive)

	for specIndex, spec := range specs {
		term.SetCursorPosition(spec.inX, spec.inY)
		if x, y := term.CursorPosition(); x != spec.expX || y != spec.expY {
			t.Errorf("[spec %d] expected setting position to (%d, %d) to update the position to (%d, %d); got (%d, %d)", specIndex, spec.inX, spec.inY, spec.expX, spec.expY, x, y)
		}
		if cons.cursorX != spec.expX || cons.cursorY != spec.expY {
			t.Errorf("[spec %d] expected hardware cursor at (%d, %d); got (%d, %d)", specIndex, spec.expX, spec.expY, cons.cursorX, cons.cursorY)
		}
	}
}

func TestVtWrite(t *testing.T) {
	t.Run("inactive terminal", func(t *testing.T) {
		cons := newMockConsole(80, 25)

		term := NewVT(4)
		if _, err := term.Write([]byte("foo")); err != io.ErrClosedPipe {
			t.Fatal("expected calling Write on a terminal without an attached console to return ErrClosedPipe")
		}

		term.AttachTo(cons)

		term.curFg = 2
		term.curBg = 3

		data := []byte("\b123\b4\t5\n67\r68")
		count, err := term.Write(data)
		if err != nil {
			t.Fatal(err)
		}

		if count != len(data) {
			t.Fatalf("expected to write %d bytes; wrote %d", len(data), count)
		}

		if cons.bytesWritten != 0 {
			t.Fatalf("expected writes not to be synced with console when terminal is inactive; %d bytes written", cons.bytesWritten)
		}

		if cons.cursorMoves != 0 {
			t.Fatalf("expected the hardware cursor not to move while the terminal is inactive")
		}

		specs := []struct {
			x, y    uint32
			expByte uint8
		}{
			{0, 0, '1'},
			{1, 0, '2'},
			{2, 0, '4'},
			{7, 0, '5'}, // 3 + tabWidth
			{0, 1, '6'},
			{1, 1, '8'},
		}

		for specIndex, spec := range specs {
			offset := ((spec.y * term.width) + spec.x) * 3
			if term.data[offset] != spec.expByte {
				t.Errorf("[spec %d] expected char at (%d, %d) to be %q; got %q", specIndex, spec.x, spec.y, spec.expByte, term.data[offset])
			}

			if term.data[offset+1] != term.curFg {
				t.Errorf("[spec %d] expected fg attribute at (%d, %d) to be %d; got %d", specIndex, spec.x, spec.y, term.curFg, term.data[offset+1])
			}

			if term.data[offset+2] != term.curBg {
				t.Errorf("[spec %d] expected bg attribute at (%d, %d) to be %d; got %d", specIndex, spec.x, spec.y, term.curBg, term.data[offset+2])
			}
		}
	})

	t.Run("active terminal", func(t *testing.T) {
		cons := newMockConsole(80, 25)

		term := NewVT(4)
		term.SetState(StateActive)
		term.SetState(StateActive) // calling SetState with the same state is a no-op

		if got := term.State(); got != StateActive {
			t.Fatalf("expected terminal state to be %d; got %d", StateActive, got)
		}

		term.AttachTo(cons)

		if cons.cursorStart != cursorStartLine || cons.cursorEnd != cursorEndLine {
			t.Fatalf("expected attaching to enable the hardware cursor with scanlines %d-%d; got %d-%d", cursorStartLine, cursorEndLine, cons.cursorStart, cons.cursorEnd)
		}

		term.curFg = 2
		term.curBg = 3

		data := []byte("\b123\b4\t5\n67\r68")
		term.Write(data)

		// 9 printable bytes, 2 blanked cells for the backspaces and
		// tabWidth blanks for the tab.
		if expCount := 9 + 2 + 4; cons.bytesWritten != expCount {
			t.Fatalf("expected writes to be synced with console when terminal is active. %d bytes written; expected %d", cons.bytesWritten, expCount)
		}

		specs := []struct {
			x, y    uint32
			expByte uint8
		}{
			{0, 0, '1'},
			{1, 0, '2'},
			{2, 0, '4'},
			{7, 0, '5'},
			{0, 1, '6'},
			{1, 1, '8'},
		}

		for specIndex, spec := range specs {
			offset := (spec.y * cons.width) + spec.x
			if cons.chars[offset] != spec.expByte {
				t.Errorf("[spec %d] expected console char at (%d, %d) to be %q; got %q", specIndex, spec.x, spec.y, spec.expByte, cons.chars[offset])
			}

			if cons.fgAttrs[offset] != term.curFg {
				t.Errorf("[spec %d] expected console fg attribute at (%d, %d) to be %d; got %d", specIndex, spec.x, spec.y, term.curFg, cons.fgAttrs[offset])
			}
		}

		if cons.cursorX != 2 || cons.cursorY != 1 {
			t.Fatalf("expected hardware cursor to follow the terminal cursor to (2, 1); got (%d, %d)", cons.cursorX, cons.cursorY)
		}
	})
}

func TestVtAutoWrap(t *testing.T) {
	cons := newMockConsole(80, 25)
	term := NewVT(4)
	term.AttachTo(cons)
	term.SetState(StateActive)

	term.SetCursorPosition(0, 3)
	for i := uint32(0); i < term.width; i++ {
		term.WriteByte('x')
	}

	if x, y := term.CursorPosition(); x != 0 || y != 4 {
		t.Fatalf("expected a full line to wrap the cursor to (0, 4); got (%d, %d)", x, y)
	}

	if cons.scrollUpCount != 0 {
		t.Fatalf("expected no scroll; got %d", cons.scrollUpCount)
	}

	if cons.cursorX != 0 || cons.cursorY != 4 {
		t.Fatalf("expected hardware cursor at (0, 4); got (%d, %d)", cons.cursorX, cons.cursorY)
	}
}

func TestVtScroll(t *testing.T) {
	t.Run("line feed on last line", func(t *testing.T) {
		cons := newMockConsole(80, 25)
		term := NewVT(4)
		term.AttachTo(cons)
		term.SetState(StateActive)

		// Put a distinct character at the start of every line.
		for y := uint32(0); y < term.height; y++ {
			term.SetCursorPosition(0, y)
			term.WriteByte(byte('A' + y))
		}

		term.SetCursorPosition(5, term.height-1)
		term.SetPromptAnchor()
		term.WriteByte('\n')

		if cons.scrollUpCount != 1 {
			t.Fatalf("expected console to be scrolled up 1 time; got %d", cons.scrollUpCount)
		}

		if x, y := term.CursorPosition(); x != 0 || y != term.height-1 {
			t.Fatalf("expected cursor to be clamped to (0, %d); got (%d, %d)", term.height-1, x, y)
		}

		if px, py := term.PromptAnchor(); px != 5 || py != term.height-2 {
			t.Fatalf("expected prompt anchor to move up to (5, %d); got (%d, %d)", term.height-2, px, py)
		}

		for y := uint32(0); y < term.height; y++ {
			exp := byte('A' + y + 1)
			if y == term.height-1 {
				exp = ' '
			}

			if got := term.data[y*term.width*3]; got != exp {
				t.Errorf("expected terminal line %d to start with %q; got %q", y, exp, got)
			}
			if got := cons.chars[y*cons.width]; got != exp {
				t.Errorf("expected console line %d to start with %q; got %q", y, exp, got)
			}
		}
	})

	t.Run("wrap on last line", func(t *testing.T) {
		cons := newMockConsole(80, 25)
		term := NewVT(4)
		term.AttachTo(cons)
		term.SetState(StateActive)

		term.SetCursorPosition(0, term.height-1)
		for i := uint32(0); i < term.width-1; i++ {
			term.WriteByte('x')
		}
		if cons.scrollUpCount != 0 {
			t.Fatalf("expected no scroll before the line is full; got %d", cons.scrollUpCount)
		}

		term.WriteByte('x')
		if cons.scrollUpCount != 1 {
			t.Fatalf("expected exactly one scroll; got %d", cons.scrollUpCount)
		}
	})

	t.Run("anchor on first line", func(t *testing.T) {
		cons := newMockConsole(80, 25)
		term := NewVT(4)
		term.AttachTo(cons)

		term.SetCursorPosition(3, 0)
		term.SetPromptAnchor()
		term.SetCursorPosition(0, term.height-1)
		term.WriteByte('\n')

		if _, py := term.PromptAnchor(); py != 0 {
			t.Fatalf("expected prompt anchor on the first line to stay put; got row %d", py)
		}
	})
}

func TestVtBackspace(t *testing.T) {
	specs := []struct {
		startX, startY uint32
		expX, expY     uint32
	}{
		{5, 3, 4, 3},
		{0, 3, 79, 2},
		{0, 0, 0, 0},
	}

	for specIndex, spec := range specs {
		cons := newMockConsole(80, 25)
		term := NewVT(4)
		term.AttachTo(cons)
		term.SetState(StateActive)

		// Fill the screen so that blanking can be observed.
		for i := range cons.chars {
			cons.chars[i] = '#'
		}

		term.SetCursorPosition(spec.startX, spec.startY)
		term.WriteByte('\b')

		if x, y := term.CursorPosition(); x != spec.expX || y != spec.expY {
			t.Errorf("[spec %d] expected cursor at (%d, %d); got (%d, %d)", specIndex, spec.expX, spec.expY, x, y)
		}

		if got := cons.chars[spec.expY*cons.width+spec.expX]; got != ' ' {
			t.Errorf("[spec %d] expected cell (%d, %d) to be blanked; got %q", specIndex, spec.expX, spec.expY, got)
		}

		if cons.cursorX != spec.expX || cons.cursorY != spec.expY {
			t.Errorf("[spec %d] expected hardware cursor at (%d, %d); got (%d, %d)", specIndex, spec.expX, spec.expY, cons.cursorX, cons.cursorY)
		}
	}
}

func TestVtCanErase(t *testing.T) {
	cons := newMockConsole(80, 25)
	term := NewVT(4)
	term.AttachTo(cons)

	term.Write([]byte("> "))
	term.SetPromptAnchor()

	if term.CanErase() {
		t.Fatal("expected CanErase to be false at the prompt anchor")
	}

	term.Write([]byte("ab"))
	if !term.CanErase() {
		t.Fatal("expected CanErase to be true after typing past the anchor")
	}

	term.Write([]byte("\b\b"))
	if term.CanErase() {
		t.Fatal("expected CanErase to be false after erasing back to the anchor")
	}

	term.SetCursorPosition(0, 1)
	if !term.CanErase() {
		t.Fatal("expected CanErase to be true on a line below the anchor")
	}
}

func TestVtClear(t *testing.T) {
	cons := newMockConsole(80, 25)
	term := NewVT(4)
	term.AttachTo(cons)
	term.SetState(StateActive)

	term.Write([]byte("hello\nworld"))
	term.SetPromptAnchor()
	term.Clear()

	if x, y := term.CursorPosition(); x != 0 || y != 0 {
		t.Fatalf("expected cursor at (0, 0) after Clear; got (%d, %d)", x, y)
	}
	if px, py := term.PromptAnchor(); px != 0 || py != 0 {
		t.Fatalf("expected prompt anchor at (0, 0) after Clear; got (%d, %d)", px, py)
	}
	for i, ch := range cons.chars {
		if ch != ' ' {
			t.Fatalf("expected console cell %d to be blank; got %q", i, ch)
		}
	}
	if cons.cursorX != 0 || cons.cursorY != 0 {
		t.Fatalf("expected hardware cursor at (0, 0); got (%d, %d)", cons.cursorX, cons.cursorY)
	}

	// Clear without a console is a no-op.
	NewVT(4).Clear()
}

func TestVtAttach(t *testing.T) {
	cons := newMockConsole(80, 25)

	term := NewVT(4)

	// AttachTo with a nil console should be a no-op
	term.AttachTo(nil)
	if term.width != 0 || term.height != 0 {
		t.Fatal("expected attaching a nil console to be a no-op")
	}

	term.AttachTo(cons)
	if term.width != cons.width || term.height != cons.height || term.data[0] != ' ' {
		t.Fatal("expected the terminal to initialize using the attached console info")
	}

	// Consoles without a hardware cursor are supported.
	term.AttachTo(plainConsole{cons})
	if term.cursor != nil {
		t.Fatal("expected no cursor controller for a console without cursor support")
	}
	term.SetState(StateActive)
	term.Write([]byte("ok"))
}

func TestVtSetState(t *testing.T) {
	cons := newMockConsole(80, 25)
	term := NewVT(4)
	term.AttachTo(cons)

	// Fill the terminal using a rotating pattern. Writing the last
	// character wraps and causes the contents to scroll up by one line.
	row := 0
	for index := 0; index < int(term.width*term.height); index++ {
		if index != 0 && index%int(term.width) == 0 {
			row++
		}
		term.curFg = uint8((row + index + 1) % 10)
		term.curBg = uint8((row + index + 2) % 10)
		term.WriteByte(byte('0' + (row+index)%10))
	}

	// Activating this terminal should trigger a copy of the terminal
	// contents to the console.
	term.SetState(StateActive)
	row = 1
	for index := 0; index < len(cons.chars); index++ {
		if index != 0 && index%int(cons.width) == 0 {
			row++
		}

		src := index + int(cons.width)
		expCh := uint8('0' + (row+src)%10)
		expFg := uint8((row + src + 1) % 10)

		// last line should be cleared due to the scroll operation
		if row == int(cons.height) {
			expCh = ' '
			expFg = 7
		}

		if cons.chars[index] != expCh {
			t.Fatalf("expected console char at index %d to be %q; got %q", index, expCh, cons.chars[index])
		}

		if cons.fgAttrs[index] != expFg {
			t.Fatalf("expected console fg attr at index %d to be %d; got %d", index, expFg, cons.fgAttrs[index])
		}
	}

	if cons.cursorX != 0 || cons.cursorY != cons.height-1 {
		t.Fatalf("expected activation to sync the hardware cursor to (0, %d); got (%d, %d)", cons.height-1, cons.cursorX, cons.cursorY)
	}
}

func TestVTDriverInterface(t *testing.T) {
	var dev device.Driver = NewVT(0)

	if err := dev.DriverInit(nil); err != nil {
		t.Fatal(err)
	}

	if dev.DriverName() == "" {
		t.Fatal("DriverName() returned an empty string")
	}

	if major, minor, patch := dev.DriverVersion(); major+minor+patch == 0 {
		t.Fatal("DriverVersion() returned an invalid version number")
	}
}

func TestVTProbe(t *testing.T) {
	probedVT.AttachTo(newMockConsole(80, 25))
	probedVT.SetState(StateActive)

	drv := probeForVT(nil)
	if drv != &probedVT {
		t.Fatal("expected probeForVT to return the static terminal instance")
	}
	if probedVT.cons != nil || probedVT.State() != StateInactive || probedVT.tabWidth != DefaultTabWidth {
		t.Fatal("expected probing to reset the terminal")
	}

	if DriverInfo.Order != device.DetectOrderBeforeInput || DriverInfo.Probe == nil {
		t.Fatal("expected the terminal to probe before input devices")
	}
}

func TestVtAttachClipsLargeConsoles(t *testing.T) {
	cons := newMockConsole(MaxColumns+8, MaxRows+5)
	term := NewVT(4)
	term.AttachTo(cons)
	term.SetState(StateActive)

	if w, h := term.width, term.height; w != MaxColumns || h != MaxRows {
		t.Fatalf("expected terminal to be clipped to %dx%d; got %dx%d", MaxColumns, MaxRows, w, h)
	}

	// Filling the clipped area scrolls without touching the cells past it.
	for i := 0; i < MaxColumns*MaxRows; i++ {
		term.WriteByte('x')
	}
	if x, y := term.CursorPosition(); x != 0 || y != MaxRows-1 {
		t.Fatalf("expected cursor at (0, %d); got (%d, %d)", MaxRows-1, x, y)
	}
	if got := cons.chars[MaxColumns]; got != 0 {
		t.Fatalf("expected cells outside the terminal to stay untouched; got %q", got)
	}
}

func TestVtDoesNotAllocate(t *testing.T) {
	cons := newMockConsole(80, 25)
	term := NewVT(4)

	allocs := testing.AllocsPerRun(10, func() {
		term.AttachTo(cons)
		term.SetState(StateActive)
		for i := 0; i < 30; i++ {
			term.Write([]byte("line of output\twith a tab\n"))
		}
		term.WriteByte('\b')
		term.Clear()
		term.SetState(StateInactive)
	})
	if allocs != 0 {
		t.Fatalf("expected terminal output not to allocate; got %v allocations per run", allocs)
	}
}

type mockConsole struct {
	width, height uint32
	fg, bg        uint8
	chars         []uint8
	fgAttrs       []uint8
	bgAttrs       []uint8
	bytesWritten  int
	scrollUpCount int

	cursorStart, cursorEnd uint8
	cursorX, cursorY       uint32
	cursorMoves            int
}

func newMockConsole(w, h uint32) *mockConsole {
	return &mockConsole{
		width:   w,
		height:  h,
		fg:      7,
		bg:      0,
		chars:   make([]uint8, w*h),
		fgAttrs: make([]uint8, w*h),
		bgAttrs: make([]uint8, w*h),
	}
}

func (cons *mockConsole) Dimensions() (uint32, uint32) {
	return cons.width, cons.height
}

func (cons *mockConsole) DefaultColors() (uint8, uint8) {
	return cons.fg, cons.bg
}

func (cons *mockConsole) Fill(x, y, width, height uint32, fg, bg uint8) {
	for fy := y; fy < y+height; fy++ {
		for fx := x; fx < x+width; fx++ {
			offset := fy*cons.width + fx
			cons.chars[offset] = ' '
			cons.fgAttrs[offset] = fg
			cons.bgAttrs[offset] = bg
		}
	}
}

func (cons *mockConsole) Scroll(dir console.ScrollDir, lines uint32) {
	if dir != console.ScrollDirUp {
		return
	}

	cons.scrollUpCount++
	n := lines * cons.width
	copy(cons.chars, cons.chars[n:])
	copy(cons.fgAttrs, cons.fgAttrs[n:])
	copy(cons.bgAttrs, cons.bgAttrs[n:])
}

func (cons *mockConsole) Write(b byte, fg, bg uint8, x, y uint32) {
	offset := (y * cons.width) + x
	cons.chars[offset] = b
	cons.fgAttrs[offset] = fg
	cons.bgAttrs[offset] = bg
	cons.bytesWritten++
}

func (cons *mockConsole) EnableCursor(start, end uint8) {
	cons.cursorStart, cons.cursorEnd = start, end
}

func (cons *mockConsole) SetCursor(x, y uint32) {
	cons.cursorX, cons.cursorY = x, y
	cons.cursorMoves++
}

// plainConsole hides the cursor methods of the wrapped mock.
type plainConsole struct {
	m *mockConsole
}

func (c plainConsole) Dimensions() (uint32, uint32)          { return c.m.Dimensions() }
func (c plainConsole) DefaultColors() (uint8, uint8)         { return c.m.DefaultColors() }
func (c plainConsole) Fill(x, y, w, h uint32, fg, bg uint8)  { c.m.Fill(x, y, w, h, fg, bg) }
func (c plainConsole) Scroll(dir console.ScrollDir, n uint32) { c.m.Scroll(dir, n) }
func (c plainConsole) Write(b byte, fg, bg uint8, x, y uint32) {
	c.m.Write(b, fg, bg, x, y)
}
