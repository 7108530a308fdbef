// Package pic programs the pair of cascaded 8259A programmable interrupt
// controllers.
package pic

import "minios/kernel/cpu"

// Controller I/O ports.
const (
	MasterCmd  uint16 = 0x20
	MasterData uint16 = 0x21
	SlaveCmd   uint16 = 0xa0
	SlaveData  uint16 = 0xa1
)

const (
	// MasterVectorOffset is the vector that hardware line 0 is mapped to.
	MasterVectorOffset = 32

	// SlaveVectorOffset is the vector that hardware line 8 is mapped to.
	SlaveVectorOffset = 40

	// CascadeLine is the master input that the slave is wired to.
	CascadeLine = 2

	// Initialization command words.
	icw1Init     uint8 = 0x10
	icw1NeedICW4 uint8 = 0x01
	icw4Mode8086 uint8 = 0x01

	// EOI is the non-specific end-of-interrupt command.
	EOI uint8 = 0x20
)

var (
	// The following functions are mocked by tests.
	portWriteByteFn = cpu.PortWriteByte
	portReadByteFn  = cpu.PortReadByte
)

// Remap reprograms both controllers so that hardware lines 0-15 are
// delivered on vectors 32-47 instead of colliding with the CPU exception
// vectors. The line masks in effect before the call are preserved.
func Remap() {
	masterMask := portReadByteFn(MasterData)
	slaveMask := portReadByteFn(SlaveData)

	// ICW1: start the initialization sequence; ICW4 follows.
	portWriteByteFn(MasterCmd, icw1Init|icw1NeedICW4)
	portWriteByteFn(SlaveCmd, icw1Init|icw1NeedICW4)

	// ICW2: vector offsets.
	portWriteByteFn(MasterData, MasterVectorOffset)
	portWriteByteFn(SlaveData, SlaveVectorOffset)

	// ICW3: the master gets a bitmask of the line the slave is attached
	// to; the slave gets its cascade identity.
	portWriteByteFn(MasterData, 1<<CascadeLine)
	portWriteByteFn(SlaveData, CascadeLine)

	// ICW4
	portWriteByteFn(MasterData, icw4Mode8086)
	portWriteByteFn(SlaveData, icw4Mode8086)

	portWriteByteFn(MasterData, masterMask)
	portWriteByteFn(SlaveData, slaveMask)
}

// SendEOI acknowledges the interrupt delivered on vector. Lines served by the
// slave are acknowledged on the slave first and then on the master.
func SendEOI(vector uint8) {
	if vector >= SlaveVectorOffset {
		portWriteByteFn(SlaveCmd, EOI)
	}
	portWriteByteFn(MasterCmd, EOI)
}

// SetMask masks (masked == true) or unmasks the given hardware line (0-15).
func SetMask(line uint8, masked bool) {
	port := MasterData
	if line >= 8 {
		port = SlaveData
		line -= 8
	}

	mask := portReadByteFn(port)
	if masked {
		mask |= 1 << line
	} else {
		mask &^= 1 << line
	}
	portWriteByteFn(port, mask)
}

// Masks returns the current line mask of both controllers with the master
// in the low byte.
func Masks() uint16 {
	return uint16(portReadByteFn(SlaveData))<<8 | uint16(portReadByteFn(MasterData))
}
