package gate

import (
	"io"
	"minios/kernel/kfmt"
)

// Frame is the register snapshot built by an entry stub before the numbered
// handler runs. The field order mirrors the stack layout: the data segment
// pushed by the stub, the eight registers pushed by PUSHA, the vector and
// error code, and finally the values pushed by the processor. UserESP and SS
// are only meaningful when the interrupt caused a privilege change.
type Frame struct {
	DS uint32

	EDI uint32
	ESI uint32
	EBP uint32
	ESP uint32
	EBX uint32
	EDX uint32
	ECX uint32
	EAX uint32

	// Vector is the interrupt number; ErrorCode is zero for vectors that
	// do not push one.
	Vector    uint32
	ErrorCode uint32

	EIP     uint32
	CS      uint32
	EFlags  uint32
	UserESP uint32
	SS      uint32
}

// DumpTo outputs the frame contents to w.
func (f *Frame) DumpTo(w io.Writer) {
	kfmt.Fprintf(w, "EAX = %8x EBX = %8x ECX = %8x EDX = %8x\n", f.EAX, f.EBX, f.ECX, f.EDX)
	kfmt.Fprintf(w, "ESI = %8x EDI = %8x EBP = %8x ESP = %8x\n", f.ESI, f.EDI, f.EBP, f.ESP)
	kfmt.Fprintf(w, "EIP = %8x CS  = %8x EFL = %8x DS  = %8x\n", f.EIP, f.CS, f.EFlags, f.DS)
}
