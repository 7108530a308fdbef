package machine

import "strings"

// Screen returns the text framebuffer contents, one string per row, with
// trailing blanks removed.
func (m *Machine) Screen() []string {
	rows := make([]string, m.rows)
	for y := uint32(0); y < m.rows; y++ {
		var sb strings.Builder
		for _, cell := range m.fb[y*m.columns : (y+1)*m.columns] {
			ch := byte(cell)
			if ch == 0 {
				ch = ' '
			}
			sb.WriteByte(ch)
		}
		rows[y] = strings.TrimRight(sb.String(), " ")
	}
	return rows
}

// Cell returns the character and attribute byte at (x, y).
func (m *Machine) Cell(x, y uint32) (ch, attr uint8) {
	cell := m.fb[y*m.columns+x]
	return uint8(cell), uint8(cell >> 8)
}

// Dimensions returns the text mode size.
func (m *Machine) Dimensions() (columns, rows uint32) {
	return m.columns, m.rows
}

// Cursor returns the hardware cursor position programmed into the CRT
// controller.
func (m *Machine) Cursor() (x, y uint32) {
	offset := m.crtc.cursorOffset()
	return offset % m.columns, offset / m.columns
}

// CursorShape returns the cursor scanlines and whether the cursor is shown.
func (m *Machine) CursorShape() (start, end uint8, visible bool) {
	return m.crtc.cursorShape()
}

// PortWrites returns the I/O port writes recorded since the last call to
// ResetPortLog.
func (m *Machine) PortWrites() []PortWrite {
	return m.portLog
}

// ResetPortLog clears the recorded port writes.
func (m *Machine) ResetPortLog() {
	m.portLog = m.portLog[:0]
}

// KeyboardCommands returns the bytes written to the keyboard controller.
func (m *Machine) KeyboardCommands() []uint8 {
	return m.kbd.commands
}

// PICMasks returns the interrupt mask registers of the slave (high byte)
// and the master (low byte).
func (m *Machine) PICMasks() uint16 {
	return uint16(m.pics.slave.imr)<<8 | uint16(m.pics.master.imr)
}

// PICOffsets returns the vector offsets programmed into both controllers.
func (m *Machine) PICOffsets() (master, slave uint8) {
	return m.pics.master.offset, m.pics.slave.offset
}

// IDT returns the limit and base passed to the last LoadIDT call.
func (m *Machine) IDT() (limit uint16, base uintptr) {
	return m.idtLimit, m.idtBase
}

// InterruptsEnabled returns the state of the interrupt flag.
func (m *Machine) InterruptsEnabled() bool {
	return m.interruptsEnabled
}

// Halted returns true if the processor was halted with interrupts disabled.
func (m *Machine) Halted() bool {
	return m.halted
}

// Stats returns the number of halt instructions executed, interrupts
// delivered and interrupts dropped because no valid gate was installed.
func (m *Machine) Stats() (halts, delivered, spurious int) {
	return m.halts, m.delivered, m.spurious
}
