// Package mm provides the kernel heap: a bump allocator that carves blocks
// out of a fixed physical region. Memory is never returned individually;
// Reset releases everything except the reserved prefix.
package mm

import (
	"minios/kernel"
	"unsafe"
)

const (
	// DefaultRegionStart is the physical address of the heap region on
	// real hardware (2MB).
	DefaultRegionStart uintptr = 0x200000

	// DefaultRegionSize is the size of the heap region.
	DefaultRegionSize = 1 * Mb

	// Alignment is the alignment of every returned block.
	Alignment = 4
)

var (
	// ErrNotInitialized is returned when allocating before Init.
	ErrNotInitialized = &kernel.Error{Module: "mm", Message: "allocator not initialized"}

	// ErrOutOfMemory is returned when the region cannot fit a request.
	ErrOutOfMemory = &kernel.Error{Module: "mm", Message: "out of memory"}
)

// BumpAllocator hands out memory from [start, end) by advancing a pointer.
type BumpAllocator struct {
	start uintptr
	end   uintptr
	next  uintptr

	// reservedEnd marks the end of a block that survives Reset.
	reservedEnd uintptr

	failed      uint32
	initialized bool
}

// Init sets up the allocator to manage size bytes starting at start. Any
// previous allocations and reservations are discarded. If start is not
// aligned, the bytes up to the next aligned address are never handed out.
func (a *BumpAllocator) Init(start uintptr, size Size) {
	end := start + uintptr(size)
	first := alignUp(start)
	if first > end {
		first = end
	}

	*a = BumpAllocator{
		start:       start,
		end:         end,
		next:        first,
		reservedEnd: first,
		initialized: true,
	}
}

// Alloc returns the address of a block of size bytes.
func (a *BumpAllocator) Alloc(size Size) (uintptr, *kernel.Error) {
	if !a.initialized {
		return 0, ErrNotInitialized
	}

	if uintptr(size) > a.end-a.next {
		a.failed++
		return 0, ErrOutOfMemory
	}

	addr := a.next
	a.next = alignUp(a.next + uintptr(size))
	if a.next > a.end {
		a.next = a.end
	}

	return addr, nil
}

// Reserve marks the block [addr, addr+size) as long-lived so that Reset
// keeps it (and everything allocated before it) intact.
func (a *BumpAllocator) Reserve(addr uintptr, size Size) {
	if !a.initialized || addr < a.start || addr+uintptr(size) > a.end {
		return
	}

	a.reservedEnd = alignUp(addr + uintptr(size))
}

// Reset releases every allocation made after the reserved block.
func (a *BumpAllocator) Reset() {
	if !a.initialized {
		return
	}

	a.next = a.reservedEnd
}

// Used returns the number of bytes handed out, including alignment padding.
func (a *BumpAllocator) Used() Size {
	return Size(a.next - a.start)
}

// Free returns the number of bytes still available.
func (a *BumpAllocator) Free() Size {
	return Size(a.end - a.next)
}

// Failed returns the number of allocation requests that could not be
// satisfied.
func (a *BumpAllocator) Failed() uint32 {
	return a.failed
}

// Initialized returns true if Init has been called.
func (a *BumpAllocator) Initialized() bool {
	return a.initialized
}

func alignUp(addr uintptr) uintptr {
	return (addr + Alignment - 1) &^ (Alignment - 1)
}

var heap BumpAllocator

// Init sets up the kernel heap.
func Init(start uintptr, size Size) {
	heap.Init(start, size)
}

// Alloc allocates size bytes from the kernel heap.
func Alloc(size Size) (uintptr, *kernel.Error) {
	return heap.Alloc(size)
}

// AllocBytes allocates size bytes from the kernel heap and returns them as a
// zeroed byte slice.
func AllocBytes(size Size) ([]byte, *kernel.Error) {
	addr, err := heap.Alloc(size)
	if err != nil {
		return nil, err
	}

	buf := unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))
	kernel.Memset(buf, 0)
	return buf, nil
}

// Reserve marks a block of the kernel heap as surviving Reset.
func Reserve(addr uintptr, size Size) {
	heap.Reserve(addr, size)
}

// Reset releases all non-reserved kernel heap allocations.
func Reset() {
	heap.Reset()
}

// Used returns the number of kernel heap bytes in use.
func Used() Size {
	return heap.Used()
}

// Free returns the number of kernel heap bytes available.
func Free() Size {
	return heap.Free()
}

// Failed returns the number of failed kernel heap allocations.
func Failed() uint32 {
	return heap.Failed()
}

// Initialized returns true if the kernel heap has been set up.
func Initialized() bool {
	return heap.Initialized()
}
