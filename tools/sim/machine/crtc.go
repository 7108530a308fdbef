package machine

const (
	crtcCursorStart   = 0x0a
	crtcCursorEnd     = 0x0b
	crtcCursorHigh    = 0x0e
	crtcCursorLow     = 0x0f
	crtcCursorDisable = 1 << 5
)

// crtc models the index/data register pair of the VGA CRT controller.
type crtc struct {
	index uint8
	regs  [32]uint8
}

func (c *crtc) writeIndex(val uint8) { c.index = val & 0x1f }
func (c *crtc) writeData(val uint8)  { c.regs[c.index] = val }
func (c *crtc) readData() uint8      { return c.regs[c.index] }

func (c *crtc) cursorOffset() uint32 {
	return uint32(c.regs[crtcCursorHigh])<<8 | uint32(c.regs[crtcCursorLow])
}

func (c *crtc) cursorShape() (start, end uint8, visible bool) {
	start = c.regs[crtcCursorStart]
	return start & 0x1f, c.regs[crtcCursorEnd] & 0x1f, start&crtcCursorDisable == 0
}
