// Package timer services the programmable interval timer interrupt (IRQ 0).
package timer

import (
	"minios/kernel/gate"
	"minios/kernel/irq"
	"sync/atomic"
)

// DefaultSchedulePeriod is the number of ticks between two scheduling
// passes.
const DefaultSchedulePeriod = 30

var (
	ticks atomic.Uint32

	period   uint32 = DefaultSchedulePeriod
	schedule func()
)

// Init registers the tick handler for the timer line. The schedule callback,
// if not nil, runs from interrupt context every schedPeriod ticks; a zero
// period selects DefaultSchedulePeriod.
func Init(schedPeriod uint32, scheduleFn func()) {
	if schedPeriod == 0 {
		schedPeriod = DefaultSchedulePeriod
	}

	ticks.Store(0)
	period = schedPeriod
	schedule = scheduleFn

	irq.HandleIRQ(irq.TimerLine, handleTick)
}

// handleTick runs in interrupt context.
func handleTick(_ *gate.Frame) {
	n := ticks.Add(1)
	if n%period == 0 && schedule != nil {
		schedule()
	}
}

// Ticks returns the number of timer interrupts serviced since Init.
func Ticks() uint32 {
	return ticks.Load()
}
