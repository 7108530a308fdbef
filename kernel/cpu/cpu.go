// Package cpu exposes the privileged processor operations used by the kernel:
// byte-granularity port I/O, the global interrupt flag, halting and loading
// the interrupt descriptor table.
//
// All operations are routed through a Backend. By default the backend issues
// the real instructions (see cpu_386.s); a host-side emulator can install its
// own backend with SetBackend so that the rest of the kernel runs unmodified.
package cpu

// Backend is implemented by objects that can carry out privileged CPU
// operations on behalf of the kernel.
type Backend interface {
	// PortWriteByte writes a uint8 value to the requested port.
	PortWriteByte(port uint16, val uint8)

	// PortReadByte reads a uint8 value from the requested port.
	PortReadByte(port uint16) uint8

	// EnableInterrupts sets the interrupt flag.
	EnableInterrupts()

	// DisableInterrupts clears the interrupt flag.
	DisableInterrupts()

	// Halt stops instruction execution until the next interrupt arrives.
	Halt()

	// LoadIDT points the processor at the descriptor table that starts at
	// base and spans limit+1 bytes.
	LoadIDT(limit uint16, base uintptr)
}

var active Backend = nativeBackend{}

// SetBackend installs b as the target of all CPU operations and returns a
// function that restores the previously active backend. Passing nil selects
// the native backend.
func SetBackend(b Backend) (restore func()) {
	prev := active
	if b == nil {
		b = nativeBackend{}
	}
	active = b

	return func() { active = prev }
}

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(port uint16, val uint8) {
	active.PortWriteByte(port, val)
}

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8 {
	return active.PortReadByte(port)
}

// EnableInterrupts enables interrupt handling.
func EnableInterrupts() {
	active.EnableInterrupts()
}

// DisableInterrupts disables interrupt handling.
func DisableInterrupts() {
	active.DisableInterrupts()
}

// Halt stops instruction execution until the next interrupt.
func Halt() {
	active.Halt()
}

// HaltForever disables interrupts and parks the processor. It never returns.
func HaltForever() {
	for {
		active.DisableInterrupts()
		active.Halt()
	}
}

// LoadIDT loads the interrupt descriptor table register.
func LoadIDT(limit uint16, base uintptr) {
	active.LoadIDT(limit, base)
}
