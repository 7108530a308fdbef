package machine

const (
	i8042StatusOutputFull = 1 << 0

	// i8042QueueSize bounds the number of scancodes waiting to be
	// clocked into the output buffer.
	i8042QueueSize = 1024
)

// i8042 models the keyboard controller as a queue of scancodes in front of
// a one byte output buffer. Only the data and status ports are emulated.
type i8042 struct {
	queue []uint8

	// commands logs bytes written to either port.
	commands []uint8
}

func (c *i8042) push(sc uint8) bool {
	if len(c.queue) >= i8042QueueSize {
		return false
	}
	c.queue = append(c.queue, sc)
	return true
}

func (c *i8042) outputFull() bool {
	return len(c.queue) != 0
}

func (c *i8042) readStatus() uint8 {
	if c.outputFull() {
		return i8042StatusOutputFull
	}
	return 0
}

// readData returns the byte in the output buffer. Reading an empty buffer
// returns the last value, which is 0 here.
func (c *i8042) readData() uint8 {
	if len(c.queue) == 0 {
		return 0
	}

	sc := c.queue[0]
	c.queue = c.queue[1:]
	return sc
}

func (c *i8042) write(val uint8) {
	c.commands = append(c.commands, val)
}
