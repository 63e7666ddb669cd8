// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package progress turns long-running pipeline work into percentage snapshots.

A pipeline is split into [Stage]s that own a fixed band of the 0–100 range.
[Stage.Percent] is a pure function of (done, total) inside that band, so the
orchestrators only count units of work and never keep progress counters of
their own.

Snapshots flow to a [Func] sink. [Monotonic] guards a sink against concurrent
and out-of-order reports; [RedisTracker] persists the latest snapshot per
operation so that HTTP callers can poll it.
*/
package progress

import (
	"sync"
)

// Complete is the terminal percentage, reported only after a pipeline commits.
const Complete = 100

// # Stages

// Stage is one phase of a pipeline owning the band [From, To].
type Stage struct {
	Name string
	From int
	To   int
}

// Percent maps done units out of total onto the stage band.
//
// A stage with no units to do reports its upper bound. The result never
// leaves [From, To].
func (s Stage) Percent(done, total int) int {
	if total <= 0 {
		return s.To
	}
	done = max(0, min(done, total))
	return s.From + (s.To-s.From)*done/total
}

// Snapshot builds the report for done units out of total.
func (s Stage) Snapshot(done, total int) Snapshot {
	return Snapshot{Stage: s.Name, Percent: s.Percent(done, total), Done: done, Total: total}
}

// Begin is the snapshot at the start of the stage.
func (s Stage) Begin() Snapshot {
	return Snapshot{Stage: s.Name, Percent: s.From}
}

// End is the snapshot at the end of the stage.
func (s Stage) End() Snapshot {
	return Snapshot{Stage: s.Name, Percent: s.To}
}

// Snapshot is one progress report.
type Snapshot struct {
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
	Done    int    `json:"done"`
	Total   int    `json:"total"`
}

// # Sinks

// Func receives progress snapshots. A nil Func discards them.
type Func func(Snapshot)

// Report forwards snapshot to the sink, if any.
func (f Func) Report(snapshot Snapshot) {
	if f != nil {
		f(snapshot)
	}
}

/*
Monotonic wraps next so that it is safe for concurrent use and never sees a
percentage lower than one it already received.

Description: next is called by one reporter at a time and outside the lock.
Snapshots that arrive while next is running are coalesced: the reporter
returns at once and the one already inside next delivers the latest of them
before it leaves. A slow sink therefore holds up a single reporter, never all
of them.
*/
func Monotonic(next Func) Func {
	if next == nil {
		return nil
	}

	var (
		mu       sync.Mutex
		last     = -1
		pending  Snapshot
		queued   bool
		flushing bool
	)

	return func(snapshot Snapshot) {
		mu.Lock()
		if snapshot.Percent < last {
			mu.Unlock()
			return
		}
		last = snapshot.Percent
		pending, queued = snapshot, true

		if flushing {
			mu.Unlock()
			return
		}

		flushing = true
		for queued {
			current := pending
			queued = false

			mu.Unlock()
			next(current)
			mu.Lock()
		}
		flushing = false
		mu.Unlock()
	}
}

// Fanout reports every snapshot to each non-nil sink in order.
func Fanout(sinks ...Func) Func {
	return func(snapshot Snapshot) {
		for _, sink := range sinks {
			sink.Report(snapshot)
		}
	}
}
