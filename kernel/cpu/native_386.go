package cpu

// nativeBackend issues the real instructions.
type nativeBackend struct{}

func (nativeBackend) PortWriteByte(port uint16, val uint8) { portWriteByte(port, val) }
func (nativeBackend) PortReadByte(port uint16) uint8       { return portReadByte(port) }
func (nativeBackend) EnableInterrupts()                    { sti() }
func (nativeBackend) DisableInterrupts()                   { cli() }
func (nativeBackend) Halt()                                { hlt() }

func (nativeBackend) LoadIDT(limit uint16, base uintptr) {
	// The pseudo-descriptor is a packed 16-bit limit followed by a 32-bit
	// base; build it in a byte array to avoid struct padding.
	var desc [6]byte
	desc[0], desc[1] = byte(limit), byte(limit>>8)
	desc[2], desc[3] = byte(base), byte(base>>8)
	desc[4], desc[5] = byte(base>>16), byte(base>>24)
	lidt(&desc)
}

func portWriteByte(port uint16, val uint8)
func portReadByte(port uint16) uint8
func sti()
func cli()
func hlt()
func lidt(desc *[6]byte)
