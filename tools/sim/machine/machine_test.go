package machine

import (
	"minios/device/keyboard"
	"minios/kernel/cpu"
	"minios/kernel/hal"
	"minios/kernel/kfmt"
	"minios/kernel/kmain"
	"minios/kernel/pic"
	"minios/kernel/proc"
	"minios/kernel/shell"
	"minios/kernel/timer"
	"strings"
	"testing"
)

func boot(t *testing.T, cmdLine string, opts ...Option) (*Machine, *shell.Shell, func()) {
	m := New(opts...)
	detach := m.Attach()

	var sh *shell.Shell
	if err := m.Run(func() { sh = kmain.Boot(m.Platform(cmdLine)) }); err != nil {
		detach()
		t.Fatalf("boot failed: %v", err)
	}

	return m, sh, func() {
		kfmt.SetOutputSink(nil)
		detach()
	}
}

func screenContains(m *Machine, exp string) bool {
	for _, row := range m.Screen() {
		if strings.Contains(row, exp) {
			return true
		}
	}
	return false
}

func TestBoot(t *testing.T) {
	m, _, cleanup := boot(t, "")
	defer cleanup()

	for _, exp := range []string{
		"Kernel loaded successfully!",
		"[hal] vga_text_console(0.0.1): 80x25 text mode",
		"[hal] vt(0.0.1): initialized",
		"[hal] ps2_keyboard(0.1.0): layout: us, discarded 0 pending bytes",
		"Memory: 1024KB at 0x",
		"File system initialized: 16 files, 512 bytes each (8192 bytes total)",
		"Initializing process manager...",
		"Initializing IDT...",
		"Enabling interrupts...",
	} {
		if !screenContains(m, exp) {
			t.Errorf("expected screen to contain %q; got:\n%s", exp, strings.Join(m.Screen(), "\n"))
		}
	}

	if master, slave := m.PICOffsets(); master != 32 || slave != 40 {
		t.Errorf("expected PIC offsets 32/40; got %d/%d", master, slave)
	}
	if got := m.PICMasks(); got != 0xfffc {
		t.Errorf("expected PIC masks 0xfffc; got 0x%x", got)
	}
	if limit, base := m.IDT(); limit != 2047 || base == 0 {
		t.Errorf("expected IDT limit 2047 and a non-zero base; got %d, 0x%x", limit, base)
	}
	if !m.InterruptsEnabled() {
		t.Error("expected interrupts to be enabled after boot")
	}
	if start, end, visible := m.CursorShape(); start != 14 || end != 15 || !visible {
		t.Errorf("expected visible cursor on scanlines 14-15; got %d-%d (visible: %t)", start, end, visible)
	}
}

func TestBootOptions(t *testing.T) {
	m, _, cleanup := boot(t, "kbdLayout=qwertz nofs")
	defer cleanup()

	if !screenContains(m, "layout: qwertz") {
		t.Error("expected the qwertz layout to be selected")
	}
	if !screenContains(m, "File system disabled") {
		t.Error("expected the file system to be disabled")
	}
}

func TestBootWithoutRoomForFiles(t *testing.T) {
	m, _, cleanup := boot(t, "", WithRAM(4096))
	defer cleanup()

	if !screenContains(m, "Failed to allocate memory for file system!") {
		t.Errorf("expected file system allocation to fail; got:\n%s", strings.Join(m.Screen(), "\n"))
	}
}

func TestShellSession(t *testing.T) {
	m, sh, cleanup := boot(t, "")
	defer cleanup()

	km := NewKeymap(keyboard.US)
	sh.Start()
	m.Type(km, "clear\n")
	sh.Poll()

	m.Type(km, "create notes\n")
	sh.Poll()
	m.Type(km, "write notes Hello, World!\n")
	sh.Poll()
	m.Type(km, "read notes\n")
	sh.Poll()

	exp := []string{
		">create notes",
		"File created: notes",
		">write notes Hello, World!",
		"Wrote 13 bytes to notes",
		">read notes",
		"File contents:",
		"Hello, World!",
		">",
	}

	screen := m.Screen()
	for row, line := range exp {
		if screen[row] != line {
			t.Errorf("expected row %d to be %q; got %q", row, line, screen[row])
		}
	}

	if x, y := m.Cursor(); x != 1 || y != uint32(len(exp)-1) {
		t.Errorf("expected hardware cursor at (1, %d); got (%d, %d)", len(exp)-1, x, y)
	}
}

func TestBackspaceStopsAtPrompt(t *testing.T) {
	m, sh, cleanup := boot(t, "")
	defer cleanup()

	km := NewKeymap(keyboard.US)
	sh.Execute("clear")
	sh.Start()

	m.Type(km, "ab\b\b\b\bc")
	sh.Poll()

	if got := m.Screen()[3]; got != ">c" {
		t.Fatalf("expected prompt row to be %q; got %q", ">c", got)
	}
	if got := sh.Line(); got != "c" {
		t.Fatalf("expected line %q; got %q", "c", got)
	}
}

func TestScrollKeepsPromptAnchor(t *testing.T) {
	m, sh, cleanup := boot(t, "")
	defer cleanup()

	km := NewKeymap(keyboard.US)
	sh.Start()
	for i := 0; i < 30; i++ {
		m.Type(km, "echo line\n")
		sh.Poll()
	}

	// The prompt sits on the last row; a long line wraps and scrolls the
	// prompt up by one row while backspace can still erase all of it.
	m.Type(km, strings.Repeat("x", 85))
	sh.Poll()

	screen := m.Screen()
	if got := screen[len(screen)-2]; got != ">"+strings.Repeat("x", 79) {
		t.Fatalf("unexpected prompt row %q", got)
	}

	m.Type(km, strings.Repeat("\b", 100))
	sh.Poll()

	screen = m.Screen()
	if got := screen[len(screen)-2]; got != ">" {
		t.Fatalf("expected the input to be erased up to the prompt; got %q", got)
	}
	if sh.Line() != "" {
		t.Fatalf("expected an empty line; got %q", sh.Line())
	}
}

func TestEOIOrder(t *testing.T) {
	m, _, cleanup := boot(t, "")
	defer cleanup()

	pic.SetMask(2, false)
	pic.SetMask(12, false)

	specs := []struct {
		line   uint8
		expLog []PortWrite
	}{
		{0, []PortWrite{{0x20, 0x20}}},
		{12, []PortWrite{{0xa0, 0x20}, {0x20, 0x20}}},
		// Masked lines are never delivered.
		{5, nil},
	}

	for specIndex, spec := range specs {
		m.ResetPortLog()
		m.RaiseIRQ(spec.line)

		got := m.PortWrites()
		if len(got) != len(spec.expLog) {
			t.Errorf("[spec %d] expected port writes %v; got %v", specIndex, spec.expLog, got)
			continue
		}
		for i := range got {
			if got[i] != spec.expLog[i] {
				t.Errorf("[spec %d] expected port write %d to be %v; got %v", specIndex, i, spec.expLog[i], got[i])
			}
		}
	}
}

func TestTimerSchedules(t *testing.T) {
	m, sh, cleanup := boot(t, "schedTicks=10")
	defer cleanup()

	sh.Execute("run")
	if cur := proc.Current(); cur.PID != 0 {
		t.Fatalf("expected the kernel to run; got PID %d", cur.PID)
	}

	m.Tick(9)
	if cur := proc.Current(); cur.PID != 0 {
		t.Fatalf("expected no scheduling before 10 ticks; got PID %d", cur.PID)
	}

	m.Tick(1)
	if cur := proc.Current(); cur.PID != 1 {
		t.Fatalf("expected PID 1 to be scheduled; got PID %d", cur.PID)
	}

	m.Tick(10)
	if cur := proc.Current(); cur.PID != 0 {
		t.Fatalf("expected the kernel to be scheduled again; got PID %d", cur.PID)
	}

	if got := timer.Ticks(); got != 20 {
		t.Fatalf("expected 20 ticks; got %d", got)
	}
}

func TestInputWhileInterruptsDisabled(t *testing.T) {
	m, _, cleanup := boot(t, "")
	defer cleanup()

	km := NewKeymap(keyboard.US)
	input := hal.ActiveInput()

	cpu.DisableInterrupts()
	m.Type(km, "A")
	if input.HasData() {
		t.Fatal("expected no input to be delivered while interrupts are disabled")
	}

	cpu.EnableInterrupts()
	if ch, err := input.ReadByte(); err != nil || ch != 'A' {
		t.Fatalf("expected to read 'A'; got %q, %v", ch, err)
	}
}

func TestInputOverflow(t *testing.T) {
	m, _, cleanup := boot(t, "")
	defer cleanup()

	km := NewKeymap(keyboard.US)
	m.Type(km, strings.Repeat("a", 300))

	drv := hal.ActiveInput().(*keyboard.Driver)
	if got := drv.Dropped(); got != 45 {
		t.Fatalf("expected 45 dropped characters; got %d", got)
	}

	var count int
	for drv.HasData() {
		drv.ReadByte()
		count++
	}
	if count != 255 {
		t.Fatalf("expected 255 buffered characters; got %d", count)
	}
}

func TestException(t *testing.T) {
	m, _, cleanup := boot(t, "")
	defer cleanup()

	err := m.Run(func() { m.RaiseException(13, 0x10) })
	if err != ErrHalted {
		t.Fatalf("expected ErrHalted; got %v", err)
	}
	if !m.Halted() {
		t.Fatal("expected the machine to be halted")
	}

	for _, exp := range []string{
		"Exception: General Protection Fault (0x0000000d)",
		"Error code: 0x00000010",
		"*** system halted ***",
	} {
		if !screenContains(m, exp) {
			t.Errorf("expected screen to contain %q; got:\n%s", exp, strings.Join(m.Screen(), "\n"))
		}
	}

	// A halted machine ignores further interrupts.
	_, delivered, _ := m.Stats()
	m.RaiseIRQ(0)
	if _, got, _ := m.Stats(); got != delivered {
		t.Fatal("expected no interrupts to be delivered after halting")
	}
}

func TestKmainRunsShell(t *testing.T) {
	km := NewKeymap(keyboard.US)

	var idleCalls int
	m := New(WithIdleHook(func(m *Machine) {
		idleCalls++
		switch idleCalls {
		case 1:
			m.Type(km, "about\n")
		default:
			m.PowerOff()
		}
	}))
	defer m.Attach()()
	defer kfmt.SetOutputSink(nil)

	if err := m.Run(func() { kmain.Kmain(m.Platform("")) }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !screenContains(m, "MiniOS v0.1") {
		t.Fatalf("expected the about text on screen; got:\n%s", strings.Join(m.Screen(), "\n"))
	}
	if halts, _, _ := m.Stats(); halts != 2 {
		t.Fatalf("expected 2 halts; got %d", halts)
	}
}

func TestKeymap(t *testing.T) {
	km := NewKeymap(keyboard.US)

	specs := []struct {
		ch  byte
		exp []uint8
	}{
		{'a', []uint8{0x1e, 0x9e}},
		{'A', []uint8{0x2a, 0x1e, 0x9e, 0xaa}},
		{'\n', []uint8{0x1c, 0x9c}},
		{'-', []uint8{0x0c, 0x8c}},
		{0x7f, []uint8{0x0e, 0x8e}},
		{0x01, nil},
		{200, nil},
	}

	for specIndex, spec := range specs {
		got := km.Scancodes(spec.ch)
		if len(got) != len(spec.exp) {
			t.Errorf("[spec %d] expected %v; got %v", specIndex, spec.exp, got)
			continue
		}
		for i := range got {
			if got[i] != spec.exp[i] {
				t.Errorf("[spec %d] expected %v; got %v", specIndex, spec.exp, got)
				break
			}
		}
	}
}
