package ubsi

import (
	"bytes"
	"log/slog"

	"spadesocketbridge/internal/logging"
)

// Analyzer is the UBSI Analyzer (C5): it owns a Table and turns SYSCALL
// records into either a suppressed sentinel event, an annotated
// passthrough record, or both an annotated record and one or more
// synthetic type=UNIT emissions.
type Analyzer struct {
	table *Table
	log   *slog.Logger
}

// NewAnalyzer creates an Analyzer with a fresh thread table. log tags each
// unit-close diagnostic with the owning thread and unit id; a nil log
// falls back to the package-wide default logger.
func NewAnalyzer(log *slog.Logger) *Analyzer {
	if log == nil {
		log = logging.Default()
	}
	return &Analyzer{table: NewTable(), log: logging.WithComponent(log, "ubsi")}
}

// Outcome is the result of analyzing one SYSCALL-tagged record.
type Outcome struct {
	// Suppress is true when the record was a UBSI sentinel and must not
	// be written to output at all.
	Suppress bool
	// Payload is the (possibly unit-annotated) record payload to emit,
	// valid only when Suppress is false.
	Payload []byte
	// UnitLines holds synthetic type=UNIT records to emit, in order,
	// alongside (or instead of) Payload.
	UnitLines [][]byte
}

// Process analyzes one record's payload. payload is expected to begin
// with a type=SYSCALL line; any following lines (EXECVE, PATH, ...) are
// preserved verbatim.
func (a *Analyzer) Process(payload []byte) Outcome {
	nl := bytes.IndexByte(payload, '\n')
	var firstLine, rest []byte
	if nl < 0 {
		firstLine = payload
	} else {
		firstLine = payload[:nl]
		rest = payload[nl+1:]
	}

	fields, ok := ParseSyscallFields(firstLine)
	if !ok {
		return Outcome{Payload: payload}
	}

	if fields.Syscall == KillSyscallNumber {
		if kind, isSentinel := Classify(int32(fields.A0)); isSentinel {
			return a.processSentinel(fields.Pid, kind, fields.A1)
		}
	}

	return a.processNormal(fields, firstLine, rest)
}

func (a *Analyzer) processSentinel(tid int, kind Kind, a1 uint32) Outcome {
	switch kind {
	case KindUnitBoundary:
		var lines [][]byte
		if closed := a.table.HandleBoundarySentinel(tid); closed != nil {
			a.logUnitClosed(closed)
			lines = append(lines, RenderUnitLine(closed))
		}
		return Outcome{Suppress: true, UnitLines: lines}
	case KindMemReadHigh:
		a.table.MemReadHigh(tid, a1)
		return Outcome{Suppress: true}
	case KindMemReadLow:
		a.table.MemReadLow(tid, a1)
		return Outcome{Suppress: true}
	case KindMemWriteHigh:
		a.table.MemWriteHigh(tid, a1)
		return Outcome{Suppress: true}
	case KindMemWriteLow:
		a.table.MemWriteLow(tid, a1)
		return Outcome{Suppress: true}
	case KindSuppressOnly:
		return Outcome{Suppress: true}
	default:
		return Outcome{Suppress: true}
	}
}

func (a *Analyzer) processNormal(fields SyscallFields, firstLine, rest []byte) Outcome {
	tid := fields.Pid
	u := a.table.GetOrCreate(tid, tid)

	annotated := AnnotateLine(firstLine, u.UnitID)
	var payload []byte
	payload = append(payload, annotated...)
	payload = append(payload, '\n')
	if len(rest) > 0 {
		payload = append(payload, rest...)
	}

	var unitLines [][]byte

	switch {
	case fields.Success && isCloneFamily(fields.Syscall) && fields.A2 > 0:
		newTid := int(fields.Exit)
		a.table.Seed(newTid, u.Pid)

	case fields.Success && (isExecOrExit(fields.Syscall) || fields.Syscall == SyscallExitGroup):
		if fields.Syscall == SyscallExitGroup {
			for _, c := range a.table.ExitGroup(tid) {
				a.logUnitClosed(c)
				unitLines = append(unitLines, RenderUnitLine(c))
			}
		} else {
			if closed := a.table.CloseOnExit(tid); closed != nil {
				a.logUnitClosed(closed)
				unitLines = append(unitLines, RenderUnitLine(closed))
			}
		}

	default:
		a.table.MarkValid(tid)
	}

	return Outcome{Payload: payload, UnitLines: unitLines}
}

// logUnitClosed emits a debug-level diagnostic tagging the thread and unit
// that just closed, along with how many cross-thread dependencies it carries.
func (a *Analyzer) logUnitClosed(c *ClosedUnit) {
	log := logging.WithTid(a.log, c.Tid)
	log = logging.WithUnit(log, c.UnitID)
	log.Debug("unit closed", slog.Int("linked_units", len(c.Linked)))
}

func isCloneFamily(syscall int) bool {
	return syscall == SyscallClone || syscall == SyscallFork || syscall == SyscallVfork
}

func isExecOrExit(syscall int) bool {
	return syscall == SyscallExecve || syscall == SyscallExecveat || syscall == SyscallExit
}
