package main

import (
	"minios/kernel/gate"
	"minios/kernel/kmain"
)

var (
	multibootInfoPtr uintptr

	// trampolines is filled in by the boot assembly with the addresses of
	// the exception and IRQ entry stubs.
	trampolines gate.StubTable
)

// main makes a dummy call to the actual kernel main entrypoint function. It
// is intentionally defined to prevent the Go compiler from optimizing away the
// real kernel code.
//
// A global variable is passed as an argument to Kmain to prevent the compiler
// from inlining the actual call and removing Kmain from the generated .o file.
func main() {
	kmain.Kmain(kmain.NativePlatform(multibootInfoPtr, &trampolines))
}
