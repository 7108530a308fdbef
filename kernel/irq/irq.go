// Package irq contains the Go-side handlers invoked by the entry stubs for
// CPU exceptions (vectors 0-31) and hardware interrupts (vectors 32-47).
package irq

import (
	"minios/kernel/cpu"
	"minios/kernel/gate"
	"minios/kernel/kfmt"
	"minios/kernel/pic"
)

// Line identifies a hardware interrupt line (0-15).
type Line uint8

// Well-known hardware lines.
const (
	TimerLine    Line = 0
	KeyboardLine Line = 1
)

// Handler processes a hardware interrupt. Handlers run with interrupts
// disabled and must not block.
type Handler func(frame *gate.Frame)

var (
	irqHandlers [gate.IRQCount]Handler

	// halted is set once an exception has been reported.
	halted bool

	// The following functions are mocked by tests.
	sendEOIFn = pic.SendEOI
	haltFn    = cpu.HaltForever
)

// HandleIRQ registers h as the handler for line, replacing any previous
// registration. Passing a nil handler turns the line into a no-op.
func HandleIRQ(line Line, h Handler) {
	if int(line) >= len(irqHandlers) {
		return
	}
	irqHandlers[line] = h
}

// DispatchIRQ is called by the IRQ entry stubs. It acknowledges the
// controllers and then invokes the handler registered for the frame's line.
// Vectors without a registered handler are acknowledged and ignored.
func DispatchIRQ(frame *gate.Frame) {
	vector := uint8(frame.Vector)
	if vector < uint8(gate.IRQBase) {
		return
	}

	sendEOIFn(vector)

	line := vector - uint8(gate.IRQBase)
	if int(line) >= len(irqHandlers) {
		return
	}

	if h := irqHandlers[line]; h != nil {
		h(frame)
	}
}

// DispatchException is called by the exception entry stubs. Exceptions are
// fatal: the fault is reported on the active output sink and the CPU is
// halted. DispatchException never returns on real hardware.
func DispatchException(frame *gate.Frame) {
	vector := gate.InterruptNumber(frame.Vector)

	kfmt.Printf("\nException: %s (0x%8x)\n", gate.ExceptionName(vector), frame.Vector)
	if frame.ErrorCode != 0 {
		kfmt.Printf("Error code: 0x%8x\n", frame.ErrorCode)
	}
	frame.DumpTo(kfmt.GetOutputSink())
	kfmt.Printf("*** system halted ***\n")

	halted = true
	haltFn()
}

// Halted returns true if a CPU exception has been reported.
func Halted() bool {
	return halted
}
