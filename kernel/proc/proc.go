// Package proc keeps the process table. Scheduling only flips process states;
// no register or stack context is ever switched.
package proc

import (
	"io"

	"minios/kernel"
	"minios/kernel/cpu"
	"minios/kernel/kfmt"
)

const (
	// MaxProcesses is the number of process table slots.
	MaxProcesses = 8

	// MaxNameLen is the longest stored process name. Longer names are
	// truncated.
	MaxNameLen = 31

	kernelName = "kernel"
)

// State describes the scheduling state of a process slot.
type State uint8

const (
	StateReady State = iota
	StateRunning
	StateBlocked
	StateZombie
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StateRunning:
		return "RUNNING"
	case StateBlocked:
		return "BLOCKED"
	default:
		return "UNKNOWN"
	}
}

// Process is a process control block.
type Process struct {
	PID   uint32
	State State
	Name  string
}

var (
	// ErrNoFreeSlots is returned by Create when every slot is in use.
	ErrNoFreeSlots = &kernel.Error{Module: "proc", Message: "No free process slots"}

	table   [MaxProcesses]Process
	current int
	nextPID uint32
)

// Init clears the process table and installs the kernel process in slot 0
// as the running process.
func Init() {
	for i := range table {
		table[i] = Process{State: StateZombie}
	}

	table[0] = Process{PID: 0, State: StateRunning, Name: kernelName}
	current = 0
	nextPID = 1
}

// Create places a new READY process in the first free slot after slot 0 and
// returns its PID. Interrupts are masked while the slot is claimed so the
// timer cannot run Schedule against a half written entry; Create must
// therefore be called with interrupts enabled.
func Create(name string) (uint32, *kernel.Error) {
	cpu.DisableInterrupts()
	defer cpu.EnableInterrupts()

	for i := 1; i < MaxProcesses; i++ {
		if table[i].State != StateZombie {
			continue
		}

		if len(name) > MaxNameLen {
			name = name[:MaxNameLen]
		}

		table[i] = Process{PID: nextPID, State: StateReady, Name: name}
		nextPID++
		return table[i].PID, nil
	}

	return 0, ErrNoFreeSlots
}

// Schedule selects the next process round-robin. It is invoked from the
// timer interrupt. The first READY slot after the current one wins;
// otherwise the search wraps to the first READY or RUNNING slot up to and
// including the current one. A change of slot demotes the old RUNNING
// process to READY and promotes the new one.
func Schedule() {
	next := -1
	for i := current + 1; i < MaxProcesses; i++ {
		if table[i].State == StateReady {
			next = i
			break
		}
	}

	if next == -1 {
		for i := 0; i <= current; i++ {
			if table[i].State == StateReady || table[i].State == StateRunning {
				next = i
				break
			}
		}
	}

	if next == -1 || next == current {
		return
	}

	if table[current].State == StateRunning {
		table[current].State = StateReady
	}
	current = next
	table[current].State = StateRunning
}

// Current returns a copy of the running process.
func Current() Process {
	return table[current]
}

// Visit invokes fn for every live process in slot order. Interrupts stay
// enabled, so a state reported here may already be stale.
func Visit(fn func(Process)) {
	for i := range table {
		if table[i].State != StateZombie {
			fn(table[i])
		}
	}
}

// List writes the process table to w.
func List(w io.Writer) {
	kfmt.Fprintf(w, "PID  STATE    NAME\n")
	kfmt.Fprintf(w, "---  -------  ----------------\n")
	Visit(func(p Process) {
		kfmt.Fprintf(w, "%2d   %s %s\n", p.PID, padState(p.State), p.Name)
	})
}

// padState left-aligns the state name in an 8 column field.
func padState(s State) string {
	switch s {
	case StateReady:
		return "READY   "
	case StateRunning:
		return "RUNNING "
	case StateBlocked:
		return "BLOCKED "
	default:
		return "UNKNOWN "
	}
}
