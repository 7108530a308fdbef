// Package gate builds and installs the interrupt descriptor table (IDT) that
// maps CPU exceptions and hardware interrupt lines to their entry points.
package gate

import (
	"minios/kernel/cpu"
	"minios/kernel/pic"
	"unsafe"
)

// InterruptNumber describes an x86 interrupt/exception/trap slot.
type InterruptNumber uint8

const (
	// ExceptionCount is the number of vectors reserved for CPU exceptions.
	ExceptionCount = 32

	// IRQCount is the number of hardware lines served by the two cascaded
	// interrupt controllers.
	IRQCount = 16

	// IRQBase is the first vector used by hardware interrupts after the
	// controllers have been remapped.
	IRQBase = InterruptNumber(pic.MasterVectorOffset)

	// SlaveIRQBase is the first vector served by the slave controller.
	SlaveIRQBase = InterruptNumber(pic.SlaveVectorOffset)

	// TableSize is the number of descriptors in the table.
	TableSize = 256
)

const (
	// KernelCodeSelector is the GDT selector of the flat ring-0 code
	// segment set up by the boot code.
	KernelCodeSelector uint16 = 0x08

	// FlagPresent marks a descriptor as valid.
	FlagPresent uint8 = 1 << 7

	// TypeInterruptGate32 is a 32-bit interrupt gate; the processor clears
	// the interrupt flag on entry.
	TypeInterruptGate32 uint8 = 0xe

	// TypeTrapGate32 is a 32-bit trap gate; the interrupt flag is left as is.
	TypeTrapGate32 uint8 = 0xf

	// KernelInterruptGate is the flags value used for every installed
	// vector: present, ring 0, 32-bit interrupt gate (0x8e).
	KernelInterruptGate = FlagPresent | TypeInterruptGate32
)

// Privilege returns the descriptor privilege level bits for ring.
func Privilege(ring uint8) uint8 {
	return (ring & 0x3) << 5
}

// Descriptor is a single 8-byte gate entry. Its layout is fixed by the
// processor.
type Descriptor struct {
	OffsetLow  uint16
	Selector   uint16
	Zero       uint8
	Flags      uint8
	OffsetHigh uint16
}

// Offset returns the handler address stored in the descriptor.
func (d Descriptor) Offset() uint32 {
	return uint32(d.OffsetHigh)<<16 | uint32(d.OffsetLow)
}

// Present returns true if the descriptor has its present bit set.
func (d Descriptor) Present() bool {
	return d.Flags&FlagPresent != 0
}

// Trampolines provides the addresses of the per-vector entry stubs. Each stub
// saves the processor state into a Frame and calls irq.DispatchException or
// irq.DispatchIRQ.
type Trampolines interface {
	// ExceptionEntry returns the entry stub address for exception n (0-31).
	ExceptionEntry(n uint8) uint32

	// IRQEntry returns the entry stub address for hardware line n (0-15).
	IRQEntry(line uint8) uint32
}

var (
	idt [TableSize]Descriptor

	// The following functions are mocked by tests.
	picRemapFn = pic.Remap
	loadIDTFn  = cpu.LoadIDT
)

// Install writes the descriptor for vector. The caller guarantees that
// interrupts are disabled while gates change.
func Install(vector InterruptNumber, handler uint32, selector uint16, flags uint8) {
	idt[vector] = Descriptor{
		OffsetLow:  uint16(handler),
		Selector:   selector,
		Zero:       0,
		Flags:      flags,
		OffsetHigh: uint16(handler >> 16),
	}
}

// Entry returns a copy of the descriptor installed for vector.
func Entry(vector InterruptNumber) Descriptor {
	return idt[vector]
}

// Init clears the table, installs the exception stubs, remaps the interrupt
// controllers, installs the IRQ stubs and finally loads the table into the
// processor. It must run before interrupts are enabled.
func Init(stubs Trampolines) {
	for i := range idt {
		idt[i] = Descriptor{}
	}

	for n := uint8(0); n < ExceptionCount; n++ {
		Install(InterruptNumber(n), stubs.ExceptionEntry(n), KernelCodeSelector, KernelInterruptGate)
	}

	picRemapFn()

	for line := uint8(0); line < IRQCount; line++ {
		Install(IRQBase+InterruptNumber(line), stubs.IRQEntry(line), KernelCodeSelector, KernelInterruptGate)
	}

	loadIDTFn(uint16(unsafe.Sizeof(idt)-1), uintptr(unsafe.Pointer(&idt[0])))
}
