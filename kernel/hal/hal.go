// Package hal detects the available hardware and wires the active console,
// terminal and input devices together.
package hal

import (
	"io"
	"minios/device"
	"minios/device/keyboard"
	"minios/device/tty"
	"minios/device/video/console"
	"minios/kernel/kfmt"
)

// maxActiveDrivers bounds the number of drivers tracked by the HAL.
const maxActiveDrivers = 8

// InputDevice is implemented by drivers that deliver typed characters to the
// main loop.
type InputDevice interface {
	io.ByteReader

	// HasData returns true if ReadByte would return a character.
	HasData() bool
}

// managedDevices contains the devices discovered by the HAL.
type managedDevices struct {
	activeConsole console.Device
	activeTTY     tty.Device
	activeInput   InputDevice

	// activeDrivers tracks all initialized device drivers.
	activeDrivers     [maxActiveDrivers]device.Driver
	activeDriverCount int
}

var (
	// builtinDrivers lists the drivers linked into the kernel. It is
	// static data so detection works before any package initializer runs.
	builtinDrivers = [...]*device.DriverInfo{
		&console.DriverInfo,
		&tty.DriverInfo,
		&keyboard.DriverInfo,
	}

	detectList [len(builtinDrivers)]*device.DriverInfo

	devices   managedDevices
	prefixBuf lineBuffer
	logWriter kfmt.PrefixWriter
)

// lineBuffer is a fixed-size io.Writer that silently truncates its input.
type lineBuffer struct {
	buf [64]byte
	len int
}

func (b *lineBuffer) Write(p []byte) (int, error) {
	b.len += copy(b.buf[b.len:], p)
	return len(p), nil
}

func (b *lineBuffer) Bytes() []byte { return b.buf[:b.len] }

func (b *lineBuffer) Reset() { b.len = 0 }

// ActiveTTY returns the currently active TTY
func ActiveTTY() tty.Device {
	return devices.activeTTY
}

// ActiveConsole returns the currently active console.
func ActiveConsole() console.Device {
	return devices.activeConsole
}

// ActiveInput returns the currently active input device.
func ActiveInput() InputDevice {
	return devices.activeInput
}

// ActiveDrivers returns the drivers that were successfully initialized.
func ActiveDrivers() []device.Driver {
	return devices.activeDrivers[:devices.activeDriverCount]
}

// DetectHardware probes for hardware devices and initializes the appropriate
// drivers.
func DetectHardware(res *device.Resources) {
	devices = managedDevices{}

	// Sort a copy of the driver list by detection priority
	detectList = builtinDrivers
	drivers := device.DriverInfoList(detectList[:])
	drivers.Sort()

	probe(drivers, res)
}

// probe executes the probe function for each driver and invokes
// onDriverInit for each successfully initialized driver.
func probe(driverInfoList device.DriverInfoList, res *device.Resources) {
	w := &logWriter
	*w = kfmt.PrefixWriter{Sink: kfmt.GetOutputSink()}

	for _, info := range driverInfoList {
		drv := info.Probe(res)
		if drv == nil {
			continue
		}

		prefixBuf.Reset()
		major, minor, patch := drv.DriverVersion()
		kfmt.Fprintf(&prefixBuf, "[hal] %s(%d.%d.%d): ", drv.DriverName(), major, minor, patch)
		w.Prefix = prefixBuf.Bytes()

		if err := drv.DriverInit(w); err != nil {
			kfmt.Fprintf(w, "init failed: %s\n", err.Message)
			continue
		}

		kfmt.Fprintf(w, "initialized\n")
		onDriverInit(drv)
		if devices.activeDriverCount < maxActiveDrivers {
			devices.activeDrivers[devices.activeDriverCount] = drv
			devices.activeDriverCount++
		}

		// Once the tty is linked, further output goes to the screen.
		w.Sink = kfmt.GetOutputSink()
	}
}

// onDriverInit is invoked by probe() whenever a piece of hardware is detected
// and successfully initialized.
func onDriverInit(drv device.Driver) {
	switch drvImpl := drv.(type) {
	case console.Device:
		if devices.activeConsole != nil {
			return
		}

		devices.activeConsole = drvImpl
		if devices.activeTTY != nil {
			linkTTYToConsole()
		}
	case tty.Device:
		if devices.activeTTY != nil {
			return
		}

		devices.activeTTY = drvImpl
		if devices.activeConsole != nil {
			linkTTYToConsole()
		}
	case InputDevice:
		if devices.activeInput == nil {
			devices.activeInput = drvImpl
		}
	}
}

// linkTTYToConsole connects the active TTY device to the active console device
// and syncs their contents.
func linkTTYToConsole() {
	devices.activeTTY.AttachTo(devices.activeConsole)
	devices.activeTTY.SetState(tty.StateActive)
	devices.activeTTY.Clear()
	kfmt.SetOutputSink(devices.activeTTY)
}
