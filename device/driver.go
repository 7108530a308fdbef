package device

import (
	"cmp"
	"io"
	"minios/kernel"
	"minios/multiboot"
	"slices"
)

// Driver is an interface implemented by all drivers.
type Driver interface {
	// DriverName returns the name of the driver.
	DriverName() string

	// DriverVersion returns the driver version.
	DriverVersion() (major uint16, minor uint16, patch uint16)

	// DriverInit initializes the device driver. If the driver init code
	// needs to log some output, it can use the supplied io.Writer in
	// conjunction with a call to kfmt.Fprintf.
	DriverInit(io.Writer) *kernel.Error
}

// Resources describes the machine resources handed to driver probes by the
// boot code.
type Resources struct {
	// TextFramebuffer is the VGA text-mode cell buffer (0xb8000 on real
	// hardware). Each cell holds the character in the low byte and the
	// color attribute in the high byte.
	TextFramebuffer []uint16

	// TextColumns and TextRows give the dimensions of TextFramebuffer.
	TextColumns, TextRows uint32

	// CmdLine contains the key/value pairs from the boot command line.
	CmdLine multiboot.CmdLine
}

// ProbeFn is a function that scans for the presence of a particular
// piece of hardware and returns a driver for it or nil if the hardware
// is not present.
type ProbeFn func(*Resources) Driver

// DetectOrder specifies when each driver's probe function will be invoked
// by the hal package.
type DetectOrder int8

// The list of supported detection orders.
const (
	// DetectOrderEarly is used by drivers that must be available before
	// anything else, like the display.
	DetectOrderEarly = -128

	// DetectOrderBeforeInput is used by drivers that consume the display
	// and must be linked to it before input devices come on line.
	DetectOrderBeforeInput = -1

	// DetectOrderInput is used by input device drivers.
	DetectOrderInput = 0

	// DetectOrderLast is used by drivers that depend on every other
	// driver being initialized.
	DetectOrderLast = 127
)

// DriverInfo describes how the hal package detects a driver.
type DriverInfo struct {
	// Order specifies at which stage of the HW detection process should
	// this driver be probed.
	Order DetectOrder

	// Probe is a function that checks for the presence of the
	// hardware handled by this driver.
	Probe ProbeFn
}

// DriverInfoList is a list of driver info entries.
type DriverInfoList []*DriverInfo

// Sort orders the list by detection order. Entries with the same order keep
// their relative position. Sorting never allocates.
func (l DriverInfoList) Sort() {
	slices.SortStableFunc(l, func(a, b *DriverInfo) int {
		return cmp.Compare(a.Order, b.Order)
	})
}
