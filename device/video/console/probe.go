package console

import (
	"minios/device"
	"minios/kernel/cpu"
)

var (
	// The following functions are mocked by tests.
	portWriteByteFn = cpu.PortWriteByte
	portReadByteFn  = cpu.PortReadByte
)

// probedConsole is the instance returned by the probe function.
var probedConsole VgaTextConsole

// probeForVgaTextConsole checks whether the boot code handed us a text-mode
// framebuffer.
func probeForVgaTextConsole(res *device.Resources) device.Driver {
	if res == nil || res.TextFramebuffer == nil {
		return nil
	}

	probedConsole.reset(res.TextColumns, res.TextRows, res.TextFramebuffer)
	return &probedConsole
}

// DriverInfo describes the VGA text console driver to the hal package.
var DriverInfo = device.DriverInfo{
	Order: device.DetectOrderEarly,
	Probe: probeForVgaTextConsole,
}
