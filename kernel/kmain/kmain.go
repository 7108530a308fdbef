package kmain

import (
	"math"
	"minios/device"
	"minios/kernel"
	"minios/kernel/cpu"
	"minios/kernel/fs"
	"minios/kernel/gate"
	"minios/kernel/hal"
	"minios/kernel/irq"
	"minios/kernel/kfmt"
	"minios/kernel/mm"
	"minios/kernel/pic"
	"minios/kernel/proc"
	"minios/kernel/shell"
	"minios/kernel/timer"
	"minios/multiboot"
)

var (
	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}
	errNoTerminal    = &kernel.Error{Module: "kmain", Message: "no terminal or input device detected"}

	files     fs.Store
	resources device.Resources

	// mainShell takes over the main context once Boot returns.
	mainShell shell.Shell

	// enableInterruptsFn is swapped out by tests.
	enableInterruptsFn = cpu.EnableInterrupts
)

// Platform describes the machine the kernel boots on.
type Platform struct {
	// TextFramebuffer points to the text-mode cell grid. A nil value
	// disables the console: the terminal still accepts output but nothing
	// is shown.
	TextFramebuffer       []uint16
	TextColumns, TextRows uint32

	// The kernel heap occupies [HeapStart, HeapStart+HeapSize).
	HeapStart uintptr
	HeapSize  mm.Size

	// Trampolines supplies the per-vector entry stub addresses.
	Trampolines gate.Trampolines

	// CmdLine holds the parsed boot command line.
	CmdLine multiboot.CmdLine
}

// Boot runs the boot sequence and returns the shell that should take over
// the main context. Interrupts are enabled when Boot returns. Boot never
// allocates from the Go heap, so it can run before any Go runtime setup.
func Boot(p *Platform) *shell.Shell {
	kfmt.Printf("Kernel loaded successfully!\n\n")

	resources = device.Resources{
		TextFramebuffer: p.TextFramebuffer,
		TextColumns:     p.TextColumns,
		TextRows:        p.TextRows,
		CmdLine:         p.CmdLine,
	}
	hal.DetectHardware(&resources)

	if hal.ActiveTTY() == nil || hal.ActiveInput() == nil {
		kfmt.Panic(errNoTerminal)
	}

	kfmt.Printf("Initializing memory...\n")
	mm.Init(p.HeapStart, p.HeapSize)
	kfmt.Printf("Memory: %dKB at 0x%x\n", uint32(p.HeapSize/mm.Kb), p.HeapStart)

	store := mountFiles(&p.CmdLine)

	kfmt.Printf("Initializing process manager...\n")
	proc.Init()

	kfmt.Printf("Initializing IDT...\n")
	gate.Init(p.Trampolines)

	timer.Init(schedPeriod(&p.CmdLine), proc.Schedule)
	pic.SetMask(uint8(irq.TimerLine), false)
	pic.SetMask(uint8(irq.KeyboardLine), false)

	kfmt.Printf("Enabling interrupts...\n")
	enableInterruptsFn()

	mainShell.Init(hal.ActiveTTY(), hal.ActiveInput(), store)
	return &mainShell
}

// Kmain boots the kernel and hands the main context over to the shell.
// Kmain is not expected to return.
//
//go:noinline
func Kmain(p *Platform) {
	Boot(p).Run()

	// Use kfmt.Panic instead of panic to prevent the compiler from
	// treating kfmt.Panic as dead-code and eliminating it.
	kfmt.Panic(errKmainReturned)
}

// mountFiles sets up the file store unless the "nofs" flag is present. It
// returns nil if the store is unavailable.
func mountFiles(cmdLine *multiboot.CmdLine) *fs.Store {
	if cmdLine.Has("nofs") {
		kfmt.Printf("File system disabled\n")
		return nil
	}

	kfmt.Printf("Initializing file system...\n")
	if err := files.Mount(); err != nil {
		kfmt.Printf("Failed to allocate memory for file system!\n")
		return nil
	}

	kfmt.Printf("File system initialized: %d files, %d bytes each (%d bytes total)\n",
		fs.MaxFiles, fs.FileSize, fs.DataSize)
	return &files
}

// schedPeriod returns the "schedTicks" value from the command line or the
// default period if it is missing or invalid.
func schedPeriod(cmdLine *multiboot.CmdLine) uint32 {
	val, ok := cmdLine.Get("schedTicks")
	if !ok {
		return timer.DefaultSchedulePeriod
	}

	n, ok := parseUint32(val)
	if !ok || n == 0 {
		kfmt.Printf("ignoring invalid schedTicks value: %s\n", val)
		return timer.DefaultSchedulePeriod
	}

	return n
}

// parseUint32 parses a decimal number. Unlike strconv it does not allocate
// when the input is invalid.
func parseUint32(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}

	var n uint64
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + uint64(s[i]-'0')
		if n > math.MaxUint32 {
			return 0, false
		}
	}

	return uint32(n), true
}
