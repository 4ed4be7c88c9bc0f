// Package monitor implements the behavioral monitor: process-wide counters,
// alert thresholds, hard limits, and the bounded suspicious-event log
// (spec.md §4.3). The monitor calls the policy engine — never the reverse
// (spec.md Design Notes §9: "the behavior monitor and network monitor call
// the engine, not vice versa").
package monitor

import (
	"sync/atomic"

	"github.com/safedep/depwatch/policy"
)

// Counters are the process-wide, monotonically non-decreasing counts from
// spec.md §3. A single cooperative task model (spec.md §5) means plain
// atomics with relaxed ordering are sufficient; there is no contention to
// arbitrate, only a guarantee that increments are visible to the next
// snapshot read.
type Counters struct {
	fileReads       atomic.Int64
	fileWrites      atomic.Int64
	networkRequests atomic.Int64
	processSpawns   atomic.Int64
}

// Snapshot returns an immutable read of every counter, suitable for passing
// to policy.Engine.Check.
func (c *Counters) Snapshot() policy.CounterSnapshot {
	return policy.CounterSnapshot{
		FileReads:       int(c.fileReads.Load()),
		FileWrites:      int(c.fileWrites.Load()),
		NetworkRequests: int(c.networkRequests.Load()),
		ProcessSpawns:   int(c.processSpawns.Load()),
	}
}

// IncrementFileRead bumps the file-read counter and returns the new value.
func (c *Counters) IncrementFileRead() int64 { return c.fileReads.Add(1) }

// IncrementFileWrite bumps the file-write counter and returns the new value.
func (c *Counters) IncrementFileWrite() int64 { return c.fileWrites.Add(1) }

// IncrementNetworkRequest bumps the network-request counter and returns the
// new value.
func (c *Counters) IncrementNetworkRequest() int64 { return c.networkRequests.Add(1) }

// IncrementProcessSpawn bumps the process-spawn counter and returns the new
// value.
func (c *Counters) IncrementProcessSpawn() int64 { return c.processSpawns.Add(1) }
