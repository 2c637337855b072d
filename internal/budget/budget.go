// Package budget implements the resource governor that bounds each batch of
// work. A Governor is constructed at the start of a batch with a time budget
// and a memory ceiling and is consulted at every iteration boundary; when
// ShouldYield reports true the caller stops, persists its cursor and returns
// control. The margins are deliberate slack so the caller can still finish
// writing state before the host kills the process.
package budget

import (
	"runtime"
	"time"
)

const (
	// TimeSlack is subtracted from the time budget so a batch yields while
	// there is still room to persist state.
	TimeSlack = 2 * time.Second

	// MemoryMargin is the safety margin added to current usage when checking
	// against the memory ceiling.
	MemoryMargin = 256 * 1024
)

// Governor tracks elapsed time and process memory for one batch. The zero
// value and the nil pointer are both disabled governors that never yield,
// which is what an unbounded pass uses.
type Governor struct {
	timeBudget time.Duration
	memCeiling uint64 // bytes, 0 = unlimited
	start      time.Time
	enabled    bool
}

// New returns a Governor that yields once elapsed time reaches
// timeBudget - TimeSlack, or once heap usage plus MemoryMargin reaches
// memCeiling. A memCeiling of 0 disables the memory check. The start
// timestamp is recorded here, at construction.
func New(timeBudget time.Duration, memCeiling uint64) *Governor {
	return &Governor{
		timeBudget: timeBudget,
		memCeiling: memCeiling,
		start:      time.Now(),
		enabled:    true,
	}
}

// Disabled returns a Governor that never yields.
func Disabled() *Governor {
	return &Governor{}
}

// ShouldYield reports whether the batch must stop now. This is a hard stop
// signal, not a hint: there are no retries.
func (g *Governor) ShouldYield() bool {
	if g == nil || !g.enabled {
		return false
	}
	if time.Since(g.start) >= g.timeBudget-TimeSlack {
		return true
	}
	if g.memCeiling > 0 {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		if ms.HeapAlloc+MemoryMargin >= g.memCeiling {
			return true
		}
	}
	return false
}

// Elapsed returns the time since the Governor was constructed.
func (g *Governor) Elapsed() time.Duration {
	if g == nil || !g.enabled {
		return 0
	}
	return time.Since(g.start)
}
