package mm

// Size represents a memory block size in bytes.
type Size uint32

// Common memory block sizes.
const (
	Byte Size = 1
	Kb        = 1024 * Byte
	Mb        = 1024 * Kb
)
