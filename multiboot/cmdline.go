package multiboot

import "strings"

// MaxCmdLineArgs is the number of distinct arguments kept from a command
// line. Further arguments are ignored.
const MaxCmdLineArgs = 16

// CmdLine holds the key-value pairs of a kernel command line. Keys and
// values are substrings of the parsed command line so building a CmdLine
// never allocates.
type CmdLine struct {
	keys   [MaxCmdLineArgs]string
	values [MaxCmdLineArgs]string
	count  int
}

// ParseCmdLine splits a kernel command line into key-value pairs. Arguments
// of the form "foo=bar" map foo to bar while bare arguments such as "nofoo"
// map to themselves. Malformed arguments are ignored and a repeated key
// keeps its last value.
func ParseCmdLine(cmdLine string) CmdLine {
	var c CmdLine

	for len(cmdLine) > 0 {
		start := 0
		for start < len(cmdLine) && isSpace(cmdLine[start]) {
			start++
		}
		end := start
		for end < len(cmdLine) && !isSpace(cmdLine[end]) {
			end++
		}

		arg := cmdLine[start:end]
		cmdLine = cmdLine[end:]
		if arg == "" {
			continue
		}

		switch strings.Count(arg, "=") {
		case 1: // foo=bar
			sep := strings.IndexByte(arg, '=')
			c.set(arg[:sep], arg[sep+1:])
		case 0: // nofoo
			c.set(arg, arg)
		}
	}

	return c
}

// Get returns the value for key and whether the key was present.
func (c *CmdLine) Get(key string) (string, bool) {
	for i := 0; i < c.count; i++ {
		if c.keys[i] == key {
			return c.values[i], true
		}
	}
	return "", false
}

// Has returns true if key was present on the command line.
func (c *CmdLine) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Len returns the number of distinct keys.
func (c *CmdLine) Len() int {
	return c.count
}

// Visit invokes fn for each key-value pair in command line order.
func (c *CmdLine) Visit(fn func(key, value string)) {
	for i := 0; i < c.count; i++ {
		fn(c.keys[i], c.values[i])
	}
}

func (c *CmdLine) set(key, value string) {
	for i := 0; i < c.count; i++ {
		if c.keys[i] == key {
			c.values[i] = value
			return
		}
	}

	if c.count == MaxCmdLineArgs {
		return
	}

	c.keys[c.count], c.values[c.count] = key, value
	c.count++
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
