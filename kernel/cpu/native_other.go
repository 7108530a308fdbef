//go:build !386

package cpu

// nativeBackend is unavailable outside of the 386 kernel build; any attempt
// to reach real hardware from a host build panics. Host builds are expected to
// install their own Backend.
type nativeBackend struct{}

const noHardware = "cpu: native backend is only available on GOARCH=386"

func (nativeBackend) PortWriteByte(uint16, uint8) { panic(noHardware) }
func (nativeBackend) PortReadByte(uint16) uint8    { panic(noHardware) }
func (nativeBackend) EnableInterrupts()            { panic(noHardware) }
func (nativeBackend) DisableInterrupts()           { panic(noHardware) }
func (nativeBackend) Halt()                        { panic(noHardware) }
func (nativeBackend) LoadIDT(uint16, uintptr)      { panic(noHardware) }
