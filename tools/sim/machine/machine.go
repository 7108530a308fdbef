// Package machine emulates the parts of a PC that the kernel talks to: a
// cascaded 8259 PIC pair, an i8042 keyboard controller, the VGA CRT
// controller, a text framebuffer and a block of RAM for the kernel heap.
//
// A Machine implements cpu.Backend and gate.Trampolines so the kernel runs
// unmodified on the host. Interrupts are delivered synchronously through the
// descriptor table the kernel loaded with LIDT.
package machine

import (
	"errors"
	"minios/kernel/cpu"
	"minios/kernel/gate"
	"minios/kernel/irq"
	"minios/kernel/kmain"
	"minios/kernel/mm"
	"minios/multiboot"
	"unsafe"
)

const (
	vgaCrtcIndex uint16 = 0x3d4
	vgaCrtcData  uint16 = 0x3d5

	picMasterCmd  uint16 = 0x20
	picMasterData uint16 = 0x21
	picSlaveCmd   uint16 = 0xa0
	picSlaveData  uint16 = 0xa1

	kbdData   uint16 = 0x60
	kbdStatus uint16 = 0x64

	cascadeLine = 2

	timerLine    = 0
	keyboardLine = 1

	// stubBase is the fake address of the first entry stub. Each stub
	// occupies stubSize bytes.
	stubBase uint32 = 0x00100000
	stubSize uint32 = 16

	// DefaultColumns and DefaultRows describe the emulated text mode.
	DefaultColumns = 80
	DefaultRows    = 25

	// DefaultRAMSize is the size of the block handed to the kernel heap.
	DefaultRAMSize = mm.DefaultRegionSize
)

var (
	// ErrHalted is returned by Run when the processor was halted with
	// interrupts disabled, e.g. after a CPU exception.
	ErrHalted = errors.New("machine halted with interrupts disabled")

	errPowerOff = errors.New("machine powered off")
)

// PortWrite records a single byte written to an I/O port.
type PortWrite struct {
	Port  uint16
	Value uint8
}

// Option configures a Machine.
type Option func(*Machine)

// WithScreen sets the text mode dimensions.
func WithScreen(columns, rows uint32) Option {
	return func(m *Machine) {
		m.columns, m.rows = columns, rows
	}
}

// WithRAM sets the size of the kernel heap.
func WithRAM(size mm.Size) Option {
	return func(m *Machine) {
		m.ramSize = size
	}
}

// WithIdleHook installs a callback that runs whenever the kernel halts with
// interrupts enabled and nothing is pending. The hook typically waits for
// host input and injects it with PressScancodes or Tick.
func WithIdleHook(fn func(*Machine)) Option {
	return func(m *Machine) {
		m.onIdle = fn
	}
}

// Machine is an emulated single processor PC.
type Machine struct {
	pics picPair
	kbd  i8042
	crtc crtc

	columns, rows uint32
	fb            []uint16

	ramSize mm.Size
	ram     []uint32

	interruptsEnabled bool
	halted            bool
	idtLimit          uint16
	idtBase           uintptr

	portLog    []PortWrite
	halts      int
	delivered  int
	spurious   int
	onIdle     func(*Machine)
	restoreCPU func()
}

// New creates a machine.
func New(opts ...Option) *Machine {
	m := &Machine{
		pics:    newPICPair(),
		columns: DefaultColumns,
		rows:    DefaultRows,
		ramSize: DefaultRAMSize,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.fb = make([]uint16, m.columns*m.rows)
	m.ram = make([]uint32, (m.ramSize+3)/4)
	return m
}

// Attach installs the machine as the active cpu backend. It returns a
// function that restores the previous backend.
func (m *Machine) Attach() (detach func()) {
	return cpu.SetBackend(m)
}

// Platform describes the machine to the kernel boot sequence. The command
// line is parsed the same way as a multiboot command line.
func (m *Machine) Platform(cmdLine string) *kmain.Platform {
	return &kmain.Platform{
		TextFramebuffer: m.fb,
		TextColumns:     m.columns,
		TextRows:        m.rows,
		HeapStart:       uintptr(unsafe.Pointer(&m.ram[0])),
		HeapSize:        m.ramSize,
		Trampolines:     m,
		CmdLine:         multiboot.ParseCmdLine(cmdLine),
	}
}

// Run invokes fn, which typically boots the kernel, and returns when fn
// returns, the processor halts for good or PowerOff is called.
func (m *Machine) Run(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch r {
			case ErrHalted:
				err = ErrHalted
			case errPowerOff:
				err = nil
			default:
				panic(r)
			}
		}
	}()

	fn()
	return nil
}

// PowerOff stops the machine. It must be called from code running inside
// Run, such as the idle hook.
func (m *Machine) PowerOff() {
	panic(errPowerOff)
}

// ExceptionEntry implements gate.Trampolines.
func (m *Machine) ExceptionEntry(n uint8) uint32 {
	return stubBase + uint32(n)*stubSize
}

// IRQEntry implements gate.Trampolines.
func (m *Machine) IRQEntry(line uint8) uint32 {
	return stubBase + (gate.ExceptionCount+uint32(line))*stubSize
}

// PortWriteByte implements cpu.Backend.
func (m *Machine) PortWriteByte(port uint16, val uint8) {
	m.portLog = append(m.portLog, PortWrite{port, val})

	switch port {
	case picMasterCmd:
		m.pics.master.writeCommand(val)
	case picMasterData:
		m.pics.master.writeData(val)
	case picSlaveCmd:
		m.pics.slave.writeCommand(val)
	case picSlaveData:
		m.pics.slave.writeData(val)
	case vgaCrtcIndex:
		m.crtc.writeIndex(val)
	case vgaCrtcData:
		m.crtc.writeData(val)
	case kbdData, kbdStatus:
		m.kbd.write(val)
	}
}

// PortReadByte implements cpu.Backend.
func (m *Machine) PortReadByte(port uint16) uint8 {
	switch port {
	case picMasterCmd:
		return m.pics.master.readCommand()
	case picMasterData:
		return m.pics.master.imr
	case picSlaveCmd:
		return m.pics.slave.readCommand()
	case picSlaveData:
		return m.pics.slave.imr
	case vgaCrtcData:
		return m.crtc.readData()
	case kbdStatus:
		return m.kbd.readStatus()
	case kbdData:
		sc := m.kbd.readData()
		if m.kbd.outputFull() {
			m.pics.raise(keyboardLine)
		}
		return sc
	}

	return 0xff
}

// EnableInterrupts implements cpu.Backend. Pending interrupts are delivered
// right away.
func (m *Machine) EnableInterrupts() {
	m.interruptsEnabled = true
	m.deliverPending()
}

// DisableInterrupts implements cpu.Backend.
func (m *Machine) DisableInterrupts() {
	m.interruptsEnabled = false
}

// Halt implements cpu.Backend. With interrupts disabled the machine stops
// for good and Halt does not return. Otherwise pending interrupts are
// delivered; if there are none, the idle hook gets a chance to inject some.
func (m *Machine) Halt() {
	m.halts++

	if !m.interruptsEnabled {
		m.halted = true
		panic(ErrHalted)
	}

	if m.deliverPending() == 0 && m.onIdle != nil {
		m.onIdle(m)
		m.deliverPending()
	}
}

// LoadIDT implements cpu.Backend.
func (m *Machine) LoadIDT(limit uint16, base uintptr) {
	m.idtLimit, m.idtBase = limit, base
}

// RaiseIRQ latches a request on one of the 16 interrupt lines and delivers
// it if interrupts are enabled.
func (m *Machine) RaiseIRQ(line uint8) {
	m.pics.raise(line)
	m.deliverPending()
}

// Tick raises the timer line n times.
func (m *Machine) Tick(n int) {
	for ; n > 0; n-- {
		m.RaiseIRQ(timerLine)
	}
}

// PressScancodes queues raw set 1 scancodes in the keyboard controller. The
// keyboard line is raised while the output buffer holds data. It returns the
// number of scancodes accepted.
func (m *Machine) PressScancodes(scancodes ...uint8) int {
	var accepted int
	for _, sc := range scancodes {
		if !m.kbd.push(sc) {
			break
		}
		accepted++
	}

	if m.kbd.outputFull() {
		m.RaiseIRQ(keyboardLine)
	}
	return accepted
}

// RaiseException delivers a CPU exception with the given error code.
func (m *Machine) RaiseException(vector uint8, errorCode uint32) {
	m.deliver(vector, errorCode)
}

// deliverPending runs acknowledge cycles until no unmasked request is left
// and returns the number of delivered interrupts.
func (m *Machine) deliverPending() int {
	var count int
	for m.interruptsEnabled && !m.halted {
		vector, ok := m.pics.acknowledge()
		if !ok {
			break
		}
		m.deliver(vector, 0)
		count++
	}
	return count
}

// deliver vectors through the loaded descriptor table. An interrupt gate
// clears the interrupt flag for the duration of the handler.
func (m *Machine) deliver(vector uint8, errorCode uint32) {
	if m.halted {
		return
	}

	desc, ok := m.descriptor(vector)
	if !ok {
		m.spurious++
		return
	}

	frame := gate.Frame{
		Vector:    uint32(vector),
		ErrorCode: errorCode,
		EIP:       desc.Offset(),
		CS:        uint32(desc.Selector),
		EFlags:    0x202,
	}

	prevIF := m.interruptsEnabled
	m.interruptsEnabled = false
	m.delivered++

	switch offset := desc.Offset(); {
	case offset < m.IRQEntry(0):
		irq.DispatchException(&frame)
	default:
		irq.DispatchIRQ(&frame)
	}

	m.interruptsEnabled = prevIF
}

// descriptor reads the gate for vector from the table loaded with LIDT and
// checks that it points to the matching entry stub.
func (m *Machine) descriptor(vector uint8) (gate.Descriptor, bool) {
	if m.idtBase == 0 || uint32(vector)*8+7 > uint32(m.idtLimit) {
		return gate.Descriptor{}, false
	}

	table := (*[gate.TableSize]gate.Descriptor)(unsafe.Pointer(m.idtBase))
	desc := table[vector]
	if !desc.Present() {
		return gate.Descriptor{}, false
	}

	var expOffset uint32
	switch {
	case vector < gate.ExceptionCount:
		expOffset = m.ExceptionEntry(vector)
	case vector >= m.pics.master.offset && vector < m.pics.master.offset+8:
		expOffset = m.IRQEntry(vector - m.pics.master.offset)
	case vector >= m.pics.slave.offset && vector < m.pics.slave.offset+8:
		expOffset = m.IRQEntry(8 + vector - m.pics.slave.offset)
	default:
		return gate.Descriptor{}, false
	}

	if desc.Offset() != expOffset {
		return gate.Descriptor{}, false
	}
	return desc, true
}
