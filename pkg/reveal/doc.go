// Package reveal exposes a laid-out recipe graph one level at a time.
//
// # Overview
//
// A [Scheduler] owns a [layout.Graph] and a cursor into its levels. While
// playing, a timer fires every Delay; each tick exposes every node and edge
// of the level under the cursor and advances the cursor by one. Exposure is
// append-only and strictly depth-ascending. Only [Scheduler.Reset] and
// [Scheduler.Load] shrink the exposed set.
//
// # States
//
//	Idle ──Play──▶ Playing ──Pause──▶ Paused
//	  ▲              │  ▲               │
//	  │              │  └─────Play──────┘
//	  │              └──last tick──▶ Complete
//	  └──────────────Reset (from any state)
//
// Illegal transitions are no-ops: Play while Playing or Complete, Pause while
// not Playing. [Scheduler.SpeedUp] is legal in every state and halves the
// delay down to MinDelay; it applies from the next scheduled tick on.
//
// # Timers
//
// At most one timer is outstanding. Every transition that leaves Playing, and
// every Reset, Load, or Close, stops the pending timer and bumps a generation
// counter. A tick that still fires after being superseded sees a stale
// generation and does nothing, so a replaced graph never receives nodes from
// the build it replaced.
//
// Timers come from a [Clock]. The default wraps [time.AfterFunc]; tests supply
// a manual clock.
//
// # Listeners
//
// Options.OnChange receives a [Snapshot] after every change. It is called
// outside the scheduler's lock and possibly from a timer goroutine, so it may
// call back into the scheduler. Snapshots carry a sequence number; consumers
// that hop goroutines can use it to drop out-of-order deliveries.
package reveal
