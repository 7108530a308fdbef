package tty

import "minios/device"

// probedVT is the instance returned by the probe function.
var probedVT VT

func probeForVT(_ *device.Resources) device.Driver {
	probedVT.reset(DefaultTabWidth)
	return &probedVT
}

// DriverInfo describes the VT driver to the hal package.
var DriverInfo = device.DriverInfo{
	Order: device.DetectOrderBeforeInput,
	Probe: probeForVT,
}
