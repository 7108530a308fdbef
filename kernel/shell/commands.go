package shell

import (
	"minios/kernel/fs"
	"minios/kernel/kfmt"
	"minios/kernel/mm"
	"minios/kernel/proc"
	"unsafe"
)

type command struct {
	name string

	// exact commands take no arguments and must match the whole line.
	// The others match "name " and receive the remainder of the line.
	exact bool

	fn func(sh *Shell, args string)
}

var (
	commands = []command{
		{"help", true, cmdHelp},
		{"clear", true, cmdClear},
		{"about", true, cmdAbout},
		{"echo", false, cmdEcho},
		{"mem", true, cmdMem},
		{"memtest", true, cmdMemTest},
		{"memfree", true, cmdMemFree},
		{"ps", true, cmdPs},
		{"run", true, cmdRun},
		{"ls", true, cmdLs},
		{"create", false, cmdCreate},
		{"write", false, cmdWrite},
		{"read", false, cmdRead},
		{"delete", false, cmdDelete},
	}

	helpText = "Available commands:\n" +
		"  help     - Show this help message\n" +
		"  clear    - Clear the screen\n" +
		"  about    - Show system information\n" +
		"  echo     - Echo text back\n" +
		"  mem      - Show memory statistics\n" +
		"  memtest  - Test memory allocation\n" +
		"  memfree  - Free all allocated memory\n" +
		"  ps       - List running processes\n" +
		"  run      - Create a test process\n" +
		"  ls       - List files\n" +
		"  create   - Create a file (usage: create filename)\n" +
		"  write    - Write to file (usage: write filename text)\n" +
		"  read     - Read from file (usage: read filename)\n" +
		"  delete   - Delete a file (usage: delete filename)\n"

	aboutText = "MiniOS v0.1\n" +
		"A simple operating system for educational purposes\n" +
		"Features:\n" +
		"- 32-bit protected mode\n" +
		"- Interrupt handling\n" +
		"- Keyboard input\n" +
		"- Memory management\n" +
		"- Process management\n" +
		"- Basic command shell\n"

	// noFiles stands in for a missing file store; every operation on it
	// fails with fs.ErrNotInitialized.
	noFiles fs.Store

	readBuf [fs.FileSize]byte
)

func (sh *Shell) store() *fs.Store {
	if sh.files == nil {
		return &noFiles
	}
	return sh.files
}

func (sh *Shell) printf(format string, args ...interface{}) {
	kfmt.Fprintf(sh.term, format, args...)
}

func cmdHelp(sh *Shell, _ string) {
	sh.printf("%s", helpText)
}

func cmdClear(sh *Shell, _ string) {
	sh.term.Clear()
}

func cmdAbout(sh *Shell, _ string) {
	sh.printf("%s", aboutText)
}

func cmdEcho(sh *Shell, args string) {
	sh.printf("%s\n", args)
}

func cmdMem(sh *Shell, _ string) {
	used, free := memUsedFn(), memFreeFn()
	sh.printf("Memory Statistics:\n")
	sh.printf("  Total: %d KB\n", uint32((used+free)/mm.Kb))
	sh.printf("  Used: %d bytes\n", uint32(used))
	sh.printf("  Free: %d KB\n", uint32(free/mm.Kb))
}

func cmdMemTest(sh *Shell, _ string) {
	sh.printf("Testing memory allocation...\n")

	if buf, err := allocFn(100); err != nil {
		sh.printf("Allocation failed!\n")
	} else {
		sh.printf("Allocated 100 bytes - OK\n")

		sh.printf("Writing test pattern...\n")
		for i := range buf {
			buf[i] = byte(i)
		}

		sh.printf("Verifying test pattern...\n")
		ok := true
		for i := range buf {
			if buf[i] != byte(i) {
				ok = false
				break
			}
		}

		if ok {
			sh.printf("Memory read/write test PASSED\n")
		} else {
			sh.printf("Memory read/write test FAILED\n")
		}
	}

	if _, err := allocFn(200); err != nil {
		sh.printf("Allocation failed!\n")
	} else {
		sh.printf("Allocated 200 bytes - OK\n")
	}
}

func cmdMemFree(sh *Shell, _ string) {
	resetFn()
	sh.printf("All memory freed\n")
}

func cmdPs(sh *Shell, _ string) {
	proc.List(sh.term)
}

func cmdRun(sh *Shell, _ string) {
	pid, err := proc.Create(testProcessName)
	if err != nil {
		sh.printf("%s\n", err.Message)
		return
	}
	sh.printf("Process created: %s (PID %d)\n", testProcessName, pid)
}

func cmdLs(sh *Shell, _ string) {
	sh.store().List(sh.term)
}

func cmdCreate(sh *Shell, name string) {
	if name == "" {
		sh.printf("Usage: create filename\n")
		return
	}

	if _, err := sh.store().Create(name); err != nil {
		sh.printf("%s\n", err.Message)
		return
	}
	sh.printf("File created: %s\n", name)
}

// cmdWrite handles "write <name> <text>". Names longer than fs.MaxNameLen
// are truncated before the lookup.
func cmdWrite(sh *Shell, args string) {
	args = skipSpaces(args)

	nameLen := 0
	for nameLen < len(args) && args[nameLen] != ' ' {
		nameLen++
	}
	if nameLen == 0 {
		sh.printf("Usage: write filename text\n")
		return
	}

	name, text := args[:nameLen], skipSpaces(args[nameLen:])
	if len(name) > fs.MaxNameLen {
		name = name[:fs.MaxNameLen]
	}
	if text == "" {
		sh.printf("Usage: write filename text\n")
		return
	}

	// The store copies the contents so the line buffer can be passed as is.
	n, err := sh.store().Write(name, unsafe.Slice(unsafe.StringData(text), len(text)))
	if err != nil {
		sh.printf("%s\n", err.Message)
		return
	}
	sh.printf("Wrote %d bytes to %s\n", n, name)
}

func cmdRead(sh *Shell, name string) {
	if name == "" {
		sh.printf("Usage: read filename\n")
		return
	}

	n, err := sh.store().Read(name, readBuf[:])
	if err != nil {
		sh.printf("%s\n", err.Message)
		return
	}

	if n > 0 {
		sh.printf("File contents:\n")
		sh.term.Write(readBuf[:n])
		sh.printf("\n")
	}
}

func cmdDelete(sh *Shell, name string) {
	if name == "" {
		sh.printf("Usage: delete filename\n")
		return
	}

	if err := sh.store().Delete(name); err != nil {
		sh.printf("%s\n", err.Message)
		return
	}
	sh.printf("File deleted: %s\n", name)
}

func skipSpaces(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	return s
}
