package ubsi

// WriterRef identifies the unit that last wrote a given address: a
// (tid, unit_id) pair.
type WriterRef struct {
	Tid    int
	UnitID int
}

// Unit is the per-thread UnitContext (spec.md §3).
type Unit struct {
	Tid    int
	Pid    int // thread-group leader tid; equals Tid until a clone/fork tells us otherwise
	UnitID int

	// Valid is true once this unit has observed at least one actionable
	// (non-sentinel) syscall.
	Valid bool

	ReadAddrHigh  uint32
	WriteAddrHigh uint32

	// seenBoundary distinguishes the very first unit-entry/exit sentinel
	// (which merely opens unit 0) from subsequent ones (which close the
	// current unit and open the next).
	seenBoundary bool

	// LinkedUnits preserves insertion order for deterministic output.
	LinkedUnits []WriterRef
	linkedSet   map[WriterRef]struct{}

	UnitWrittenAddrs map[uint64]struct{}
}

func newUnit(tid, pid int) *Unit {
	return &Unit{
		Tid:              tid,
		Pid:              pid,
		UnitWrittenAddrs: make(map[uint64]struct{}),
		linkedSet:        make(map[WriterRef]struct{}),
	}
}

// ClosedUnit is a snapshot of a unit at the moment it closed, suitable for
// rendering the synthetic type=UNIT line.
type ClosedUnit struct {
	Tid    int
	UnitID int
	Linked []WriterRef
}

// Table is the thread table: tid -> Unit, plus the process-group-shared
// written-address maps keyed by the group leader's pid.
type Table struct {
	threads     map[int]*Unit
	procWritten map[int]map[uint64]WriterRef
}

// NewTable creates an empty thread table.
func NewTable() *Table {
	return &Table{
		threads:     make(map[int]*Unit),
		procWritten: make(map[int]map[uint64]WriterRef),
	}
}

// Get returns the Unit for tid, if one exists.
func (t *Table) Get(tid int) (*Unit, bool) {
	u, ok := t.threads[tid]
	return u, ok
}

// GetOrCreate returns the existing Unit for tid, or creates one with the
// given fallback pid (the thread-group leader) if this is the first time
// tid has been observed.
func (t *Table) GetOrCreate(tid, fallbackPid int) *Unit {
	if u, ok := t.threads[tid]; ok {
		return u
	}
	if fallbackPid == 0 {
		fallbackPid = tid
	}
	u := newUnit(tid, fallbackPid)
	t.threads[tid] = u
	return u
}

// Seed creates a UnitContext for a newly cloned thread, inheriting pid
// from the parent thread's pid field (spec.md §4.5.6 step 2).
func (t *Table) Seed(newTid, parentPid int) {
	if _, ok := t.threads[newTid]; ok {
		return
	}
	t.threads[newTid] = newUnit(newTid, parentPid)
}

// HandleBoundarySentinel processes a unit entry/entry-id/exit sentinel on
// tid. It returns nil if this is the thread's first boundary marker (the
// opening of unit 0, a no-op); otherwise it closes the current unit,
// returning an emission snapshot when the unit was valid or linked.
func (t *Table) HandleBoundarySentinel(tid int) *ClosedUnit {
	u, ok := t.threads[tid]
	if !ok {
		u = t.GetOrCreate(tid, tid)
	}
	if !u.seenBoundary {
		u.seenBoundary = true
		return nil
	}
	return t.closeUnit(u)
}

// closeUnit implements spec.md §4.5.5.
func (t *Table) closeUnit(u *Unit) *ClosedUnit {
	var emission *ClosedUnit
	if u.Valid || len(u.LinkedUnits) > 0 {
		emission = &ClosedUnit{
			Tid:    u.Tid,
			UnitID: u.UnitID,
			Linked: append([]WriterRef(nil), u.LinkedUnits...),
		}
	}

	u.LinkedUnits = nil
	u.linkedSet = make(map[WriterRef]struct{})
	u.UnitWrittenAddrs = make(map[uint64]struct{})
	u.ReadAddrHigh = 0
	u.WriteAddrHigh = 0
	u.Valid = false
	u.UnitID++

	return emission
}

// MemReadHigh stores the high half of a composed read address (spec.md
// §4.5.3).
func (t *Table) MemReadHigh(tid int, high uint32) {
	u := t.GetOrCreate(tid, tid)
	u.ReadAddrHigh = high
}

// MemReadLow composes the full address from the stored high half and low,
// then performs read_link (spec.md §4.5.4).
func (t *Table) MemReadLow(tid int, low uint32) (WriterRef, bool) {
	u := t.GetOrCreate(tid, tid)
	addr := uint64(u.ReadAddrHigh)<<32 | uint64(low)
	return t.readLink(u, addr)
}

// MemWriteHigh stores the high half of a composed write address.
func (t *Table) MemWriteHigh(tid int, high uint32) {
	u := t.GetOrCreate(tid, tid)
	u.WriteAddrHigh = high
}

// MemWriteLow composes the full address and performs write_record (spec.md
// §4.5.4).
func (t *Table) MemWriteLow(tid int, low uint32) {
	u := t.GetOrCreate(tid, tid)
	addr := uint64(u.WriteAddrHigh)<<32 | uint64(low)
	t.writeRecord(u, addr)
}

func (t *Table) writeRecord(u *Unit, addr uint64) {
	if _, seen := u.UnitWrittenAddrs[addr]; seen {
		return
	}
	u.UnitWrittenAddrs[addr] = struct{}{}

	m, ok := t.procWritten[u.Pid]
	if !ok {
		m = make(map[uint64]WriterRef)
		t.procWritten[u.Pid] = m
	}
	m[addr] = WriterRef{Tid: u.Tid, UnitID: u.UnitID}
}

func (t *Table) readLink(u *Unit, addr uint64) (WriterRef, bool) {
	m, ok := t.procWritten[u.Pid]
	if !ok {
		return WriterRef{}, false
	}
	writer, ok := m[addr]
	if !ok {
		return WriterRef{}, false
	}
	self := WriterRef{Tid: u.Tid, UnitID: u.UnitID}
	if writer == self {
		return writer, false
	}
	if _, seen := u.linkedSet[writer]; !seen {
		u.linkedSet[writer] = struct{}{}
		u.LinkedUnits = append(u.LinkedUnits, writer)
	}
	return writer, true
}

// MarkValid records that tid has observed an actionable (non-sentinel)
// syscall in its current unit.
func (t *Table) MarkValid(tid int) {
	u := t.GetOrCreate(tid, tid)
	u.Valid = true
}

// CloseOnExit closes tid's current unit and destroys its UnitContext, for
// execve/exit (spec.md §4.5.6 step 3).
func (t *Table) CloseOnExit(tid int) *ClosedUnit {
	u, ok := t.threads[tid]
	if !ok {
		return nil
	}
	emission := t.closeUnit(u)
	delete(t.threads, tid)
	return emission
}

// ExitGroup tears down a thread group on exit_group, following the
// reference implementation's narrower scope: the calling thread's context
// and the group leader's context (if distinct) are closed and destroyed,
// along with the group's shared written-address map. Other sibling
// threads in the same group, if tracked, are left as-is - matching
// proc_group_end's literal behavior rather than a full enumeration.
func (t *Table) ExitGroup(tid int) []*ClosedUnit {
	u, ok := t.threads[tid]
	if !ok {
		return nil
	}
	leaderPid := u.Pid

	var emissions []*ClosedUnit
	if e := t.closeUnit(u); e != nil {
		emissions = append(emissions, e)
	}
	delete(t.threads, tid)

	if leaderPid != tid {
		if lu, ok2 := t.threads[leaderPid]; ok2 {
			if e := t.closeUnit(lu); e != nil {
				emissions = append(emissions, e)
			}
			delete(t.threads, leaderPid)
		}
	}

	delete(t.procWritten, leaderPid)
	return emissions
}

// ExitGroupAll tears down every thread sharing tid's group leader, a
// broader interpretation some callers may prefer for full group-teardown
// guarantees. It is not wired into the default dispatch path (see
// SPEC_FULL.md §9) but is provided and tested as an alternative policy.
func (t *Table) ExitGroupAll(tid int) []*ClosedUnit {
	u, ok := t.threads[tid]
	if !ok {
		return nil
	}
	leaderPid := u.Pid

	var emissions []*ClosedUnit
	for otid, uu := range t.threads {
		if uu.Pid != leaderPid {
			continue
		}
		if e := t.closeUnit(uu); e != nil {
			emissions = append(emissions, e)
		}
		delete(t.threads, otid)
	}
	delete(t.procWritten, leaderPid)
	return emissions
}
