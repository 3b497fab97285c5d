// Package record implements the Record Assembler (C2): it extracts the
// audit event id from a single line, filters the record types the engine
// never forwards, and concatenates lines that share one event id into a
// single logical Record.
package record

import "bytes"

// Filtered record-type tags. A line containing any of these is dropped
// before it ever reaches the Reorder Buffer.
var filteredTags = [][]byte{
	[]byte("type=EOE"),
	[]byte("type=UNKNOWN"),
	[]byte("type=PROCTITLE"),
}

// IsFiltered reports whether line belongs to one of the record types the
// engine suppresses entirely (spec.md §4.2, §6.3).
func IsFiltered(line []byte) bool {
	for _, tag := range filteredTags {
		if bytes.Contains(line, tag) {
			return true
		}
	}
	return false
}

// ExtractEventID finds the first ':' in line and parses the decimal
// integer immediately following it. This is the audit subsystem's event
// serial, e.g. the NNNN in "msg=audit(1428946800.123:4567):".
func ExtractEventID(line []byte) (int64, bool) {
	idx := bytes.IndexByte(line, ':')
	if idx < 0 || idx+1 >= len(line) {
		return 0, false
	}

	rest := line[idx+1:]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	var id int64
	for _, b := range rest[:end] {
		id = id*10 + int64(b-'0')
	}
	return id, true
}

// HasSyscallTag reports whether a record's payload contains a SYSCALL
// line, the Dispatcher's (C4) sole routing criterion.
func HasSyscallTag(payload []byte) bool {
	return bytes.Contains(payload, []byte("type=SYSCALL"))
}

// Record is the concatenation of all lines sharing one event id.
type Record struct {
	// ID is the audit event id shared by every contributing line.
	ID int64
	// Payload is the concatenated line bytes, each terminated by '\n', in
	// arrival order.
	Payload []byte
}

// Append adds one line (without its trailing newline) to the record.
func (r *Record) Append(line []byte) {
	r.Payload = append(r.Payload, line...)
	r.Payload = append(r.Payload, '\n')
}

// New creates a Record seeded with a single line.
func New(id int64, line []byte) *Record {
	r := &Record{ID: id}
	r.Append(line)
	return r
}
