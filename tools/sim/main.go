// Command sim boots the kernel on an emulated PC inside the host terminal.
// Host key presses are translated to scancodes and the text framebuffer is
// rendered with ANSI escape sequences. Press Ctrl-] to power off.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"minios/device/keyboard"
	"minios/kernel/kmain"
	"minios/multiboot"
	"minios/tools/sim/machine"
)

// powerOffKey is Ctrl-].
const powerOffKey = 0x1d

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[sim] error: %s\n", err.Error())
	os.Exit(1)
}

type renderer struct {
	out  *bufio.Writer
	last []string
}

// render redraws the rows that changed since the previous call and moves
// the host cursor to the emulated hardware cursor.
func (r *renderer) render(m *machine.Machine) {
	screen := m.Screen()
	for y, row := range screen {
		if r.last != nil && r.last[y] == row {
			continue
		}
		fmt.Fprintf(r.out, "\x1b[%d;1H%s\x1b[K", y+1, row)
	}
	r.last = screen

	x, y := m.Cursor()
	fmt.Fprintf(r.out, "\x1b[%d;%dH", y+1, x+1)
	r.out.Flush()
}

func readKeys(in io.Reader, keys chan<- byte) {
	defer close(keys)

	buf := make([]byte, 64)
	for {
		n, err := in.Read(buf)
		for _, b := range buf[:n] {
			keys <- b
		}
		if err != nil {
			return
		}
	}
}

func main() {
	cmdLine := flag.String("cmdline", "", "kernel command line, e.g. \"kbdLayout=qwertz schedTicks=10 nofs\"")
	tick := flag.Duration("tick", 55*time.Millisecond, "timer interrupt period")
	flag.Parse()

	if *tick <= 0 {
		exit(fmt.Errorf("invalid tick period %s", *tick))
	}

	args := multiboot.ParseCmdLine(*cmdLine)
	name, _ := args.Get("kbdLayout")
	layout := keyboard.LayoutByName(name)
	if layout == nil {
		layout = keyboard.US
	}
	km := machine.NewKeymap(layout)

	restore, err := enterRawMode(os.Stdin)
	if err != nil {
		exit(err)
	}
	if cols, rows, err := terminalSize(os.Stdout); err == nil && (cols < machine.DefaultColumns || rows < machine.DefaultRows) {
		fmt.Fprintf(os.Stderr, "[sim] warning: terminal is %dx%d; %dx%d is required\r\n",
			cols, rows, machine.DefaultColumns, machine.DefaultRows)
	}

	var (
		keys   = make(chan byte, 256)
		ticker = time.NewTicker(*tick)
		r      = &renderer{out: bufio.NewWriter(os.Stdout)}
	)
	defer ticker.Stop()
	go readKeys(os.Stdin, keys)

	m := machine.New(machine.WithIdleHook(func(m *machine.Machine) {
		r.render(m)

		select {
		case b, ok := <-keys:
			if !ok || b == powerOffKey {
				m.PowerOff()
			}
			m.Type(km, string(b))
		case <-ticker.C:
			m.Tick(1)
		}
	}))
	defer m.Attach()()

	fmt.Fprint(r.out, "\x1b[2J")
	runErr := m.Run(func() { kmain.Kmain(m.Platform(*cmdLine)) })
	r.render(m)

	_, rows := m.Dimensions()
	fmt.Fprintf(r.out, "\x1b[%d;1H\r\n", rows)
	r.out.Flush()
	restore()

	if runErr != nil {
		exit(runErr)
	}
}
