package fs

import "unsafe"

func dataAddr(data []byte) uintptr {
	return uintptr(unsafe.Pointer(&data[0]))
}

// nameString returns the entry name without copying it.
func (e *entry) nameString() string {
	return unsafe.String(&e.name[0], int(e.nameLen))
}
