package machine

const (
	icw1Init = 0x10
	ocw2EOI  = 0x20
	ocw3Mask = 0x18
	ocw3Sel  = 0x08
	ocw3ISR  = 0x03
)

// pic8259 models a single 8259A interrupt controller in fully nested mode.
type pic8259 struct {
	offset  uint8
	imr     uint8
	irr     uint8
	isr     uint8
	cascade uint8
	icw4    uint8

	// icwStep is the index of the next expected initialization word (1-3)
	// or 0 once initialization is complete.
	icwStep int
	readISR bool
}

func newPIC() pic8259 {
	// All lines start out masked.
	return pic8259{imr: 0xff}
}

func (p *pic8259) writeCommand(val uint8) {
	switch {
	case val&icw1Init != 0:
		p.icwStep = 1
		p.imr, p.irr, p.isr = 0, 0, 0
		p.readISR = false
	case val&ocw3Mask == ocw3Sel:
		p.readISR = val&ocw3ISR == ocw3ISR
	case val&ocw2EOI != 0:
		p.eoi()
	}
}

func (p *pic8259) writeData(val uint8) {
	switch p.icwStep {
	case 1:
		p.offset = val
		p.icwStep = 2
	case 2:
		p.cascade = val
		p.icwStep = 3
	case 3:
		p.icw4 = val
		p.icwStep = 0
	default:
		p.imr = val
	}
}

func (p *pic8259) readCommand() uint8 {
	if p.readISR {
		return p.isr
	}
	return p.irr
}

// eoi clears the highest priority in-service line.
func (p *pic8259) eoi() {
	for line := uint8(0); line < 8; line++ {
		if p.isr&(1<<line) != 0 {
			p.isr &^= 1 << line
			return
		}
	}
}

// pending returns the highest priority line that is requested, unmasked and
// not blocked by a line of equal or higher priority that is in service.
func (p *pic8259) pending() (uint8, bool) {
	for line := uint8(0); line < 8; line++ {
		bit := uint8(1) << line
		if p.isr&bit != 0 {
			return 0, false
		}
		if p.irr&bit != 0 && p.imr&bit == 0 {
			return line, true
		}
	}
	return 0, false
}

// picPair wires a slave controller to line 2 of the master.
type picPair struct {
	master, slave pic8259
}

func newPICPair() picPair {
	return picPair{master: newPIC(), slave: newPIC()}
}

// raise latches a request for one of the 16 lines.
func (pp *picPair) raise(line uint8) {
	if line >= 8 {
		pp.slave.irr |= 1 << (line - 8)
		return
	}
	pp.master.irr |= 1 << line
}

// syncCascade reflects pending slave requests on the master cascade line.
func (pp *picPair) syncCascade() {
	if _, ok := pp.slave.pending(); ok {
		pp.master.irr |= 1 << cascadeLine
	} else {
		pp.master.irr &^= 1 << cascadeLine
	}
}

// acknowledge performs an interrupt acknowledge cycle and returns the vector
// of the line moved to the in-service state.
func (pp *picPair) acknowledge() (uint8, bool) {
	pp.syncCascade()

	line, ok := pp.master.pending()
	if !ok {
		return 0, false
	}

	pp.master.irr &^= 1 << line
	pp.master.isr |= 1 << line

	if line != cascadeLine {
		return pp.master.offset + line, true
	}

	sline, _ := pp.slave.pending()
	pp.slave.irr &^= 1 << sline
	pp.slave.isr |= 1 << sline
	return pp.slave.offset + sline, true
}
