// Package ubsi implements the UBSI Analyzer (C5): it recognizes sentinel
// kill() syscalls as unit entry/exit and memory read/write markers, and
// maintains the per-thread Unit state machine described by the provenance
// engine's user-level instrumentation protocol.
package ubsi

// Sentinel is one of the eight negative PID values that, used as the
// first argument to kill(), signal a UBSI event rather than a real signal
// delivery. Values are the low 32 bits of the negative integer, as they
// appear in an a0 field parsed from hex.
type Sentinel int32

const (
	SentinelUnitEntry      Sentinel = -100 // 0xffffff9c
	SentinelUnitEntryID    Sentinel = -102 // 0xffffff9a
	SentinelUnitExit       Sentinel = -101 // 0xffffff9b
	SentinelMemReadHigh    Sentinel = -200 // 0xffffff38
	SentinelMemReadLow     Sentinel = -201 // 0xffffff37
	SentinelMemWriteHigh   Sentinel = -300 // 0xfffffed4
	SentinelMemWriteLow    Sentinel = -301 // 0xfffffed3
	SentinelUnitDependency Sentinel = -400 // 0xfffffe70, drives no state transition (see Classify)
)

// Kind classifies a sentinel into the state-machine transition it drives.
// A small dispatch table, not a comparison chain, per the protocol's own
// design guidance: the sentinel set is fixed and must be preserved
// bit-exactly.
type Kind int

const (
	KindNone Kind = iota
	KindUnitBoundary
	KindMemReadHigh
	KindMemReadLow
	KindMemWriteHigh
	KindMemWriteLow
	// KindSuppressOnly marks a sentinel that must be consumed silently but
	// drives no state transition (spec.md §4.5.2's full 8-row table).
	KindSuppressOnly
)

var sentinelKinds = map[Sentinel]Kind{
	SentinelUnitEntry:      KindUnitBoundary,
	SentinelUnitEntryID:    KindUnitBoundary,
	SentinelUnitExit:       KindUnitBoundary,
	SentinelMemReadHigh:    KindMemReadHigh,
	SentinelMemReadLow:     KindMemReadLow,
	SentinelMemWriteHigh:   KindMemWriteHigh,
	SentinelMemWriteLow:    KindMemWriteLow,
	SentinelUnitDependency: KindSuppressOnly,
}

// Classify reports which transition a0 drives, if any. SentinelUnitDependency
// maps to KindSuppressOnly: spec.md §4.5.2 lists it among the 8 sentinel
// values that must never reach output, even though the reference
// implementation's syscall_handler never wires it to a state transition.
func Classify(a0 int32) (Kind, bool) {
	kind, ok := sentinelKinds[Sentinel(a0)]
	return kind, ok
}

// KillSyscallNumber is the x86-64 syscall number for kill(), the only
// syscall that can carry a UBSI sentinel.
const KillSyscallNumber = 62
