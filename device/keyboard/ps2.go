package keyboard

import (
	"io"
	"minios/device"
	"minios/kernel"
	"minios/kernel/cpu"
	"minios/kernel/gate"
	"minios/kernel/irq"
	"minios/kernel/kfmt"
	"minios/kernel/sync"
)

// i8042 controller ports.
const (
	DataPort   uint16 = 0x60
	StatusPort uint16 = 0x64

	// statusOutputFull is set while the controller holds a byte for us.
	statusOutputFull uint8 = 1 << 0

	// maxDrain bounds the number of stale bytes discarded at init time.
	maxDrain = 64
)

var (
	// The following functions are mocked by tests.
	portReadByteFn = cpu.PortReadByte
	handleIRQFn    = irq.HandleIRQ

	// irqDriver receives the scancodes delivered on the keyboard line.
	irqDriver *Driver

	// probedDriver is the instance returned by the probe function.
	probedDriver Driver
)

// Driver is a PS/2 keyboard driver. The modifier state and the producer side
// of the input ring are owned by the IRQ handler; the consumer side is owned
// by the main loop (HasData/ReadByte).
type Driver struct {
	layout *Layout
	mods   Modifiers
	input  sync.ByteRing
}

// NewDriver creates a keyboard driver that decodes scancodes using layout.
// If layout is nil the US layout is used.
func NewDriver(layout *Layout) *Driver {
	drv := new(Driver)
	drv.setLayout(layout)
	return drv
}

func (drv *Driver) setLayout(layout *Layout) {
	if layout == nil {
		layout = US
	}
	drv.layout = layout
}

// Layout returns the active keyboard layout.
func (drv *Driver) Layout() *Layout {
	return drv.layout
}

// Modifiers returns the current modifier state.
func (drv *Driver) Modifiers() Modifiers {
	return drv.mods
}

// HandleScancode decodes sc and queues the resulting character, if any. It
// is invoked from interrupt context.
func (drv *Driver) HandleScancode(sc uint8) {
	var ch byte
	drv.mods, ch = Decode(drv.layout, drv.mods, sc)
	if ch != 0 {
		drv.input.Push(ch)
	}
}

// handleIRQ reads the pending scancode from the controller and hands it to
// the driver that registered the keyboard line.
func handleIRQ(_ *gate.Frame) {
	if irqDriver != nil {
		irqDriver.HandleScancode(portReadByteFn(DataPort))
	}
}

// HasData returns true if a character is waiting to be read.
func (drv *Driver) HasData() bool {
	return drv.input.HasData()
}

// ReadByte implements io.ByteReader. It returns io.EOF if no character is
// queued.
func (drv *Driver) ReadByte() (byte, error) {
	if ch, ok := drv.input.Pop(); ok {
		return ch, nil
	}
	return 0, io.EOF
}

// Dropped returns the number of characters discarded because the input
// queue was full.
func (drv *Driver) Dropped() uint32 {
	return drv.input.Dropped()
}

// DriverName returns the name of this driver.
func (drv *Driver) DriverName() string {
	return "ps2_keyboard"
}

// DriverVersion returns the version of this driver.
func (drv *Driver) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit resets the driver state, discards any bytes left in the
// controller and registers the IRQ handler.
func (drv *Driver) DriverInit(w io.Writer) *kernel.Error {
	drv.mods = Modifiers{}
	drv.input.Reset()

	drained := 0
	for ; drained < maxDrain && portReadByteFn(StatusPort)&statusOutputFull != 0; drained++ {
		portReadByteFn(DataPort)
	}

	irqDriver = drv
	handleIRQFn(irq.KeyboardLine, handleIRQ)
	kfmt.Fprintf(w, "layout: %s, discarded %d pending bytes\n", drv.layout.Name, drained)
	return nil
}

// probeForKeyboard selects the layout requested via the kbdLayout boot
// option. Unknown layouts fall back to US.
func probeForKeyboard(res *device.Resources) device.Driver {
	var layout *Layout
	if res != nil {
		name, _ := res.CmdLine.Get("kbdLayout")
		layout = LayoutByName(name)
	}

	probedDriver.setLayout(layout)
	return &probedDriver
}

// DriverInfo describes the PS/2 keyboard driver to the hal package.
var DriverInfo = device.DriverInfo{
	Order: device.DetectOrderInput,
	Probe: probeForKeyboard,
}
