package gate

// StubTable holds the entry stub addresses written by the boot assembly:
// 32 exception stubs followed by 16 IRQ stubs.
type StubTable [ExceptionCount + IRQCount]uint32

// ExceptionEntry implements Trampolines.
func (t *StubTable) ExceptionEntry(n uint8) uint32 {
	return t[n]
}

// IRQEntry implements Trampolines.
func (t *StubTable) IRQEntry(line uint8) uint32 {
	return t[ExceptionCount+int(line)]
}
