package ubsi

import "bytes"

// Clone-family syscall numbers (x86-64) that can seed a new thread.
const (
	SyscallClone = 56
	SyscallFork  = 57
	SyscallVfork = 58
)

// Thread/process-teardown syscall numbers.
const (
	SyscallExecve    = 59
	SyscallExecveat  = 322
	SyscallExit      = 60
	SyscallExitGroup = 231
)

// SyscallFields holds the subset of a SYSCALL record's key=value fields
// the analyzer needs (spec.md §4.5.1).
type SyscallFields struct {
	Syscall int
	Success bool
	Pid     int // the kernel thread id, despite the field name
	A0      uint32
	A1      uint32
	A2      uint32
	Exit    int64
}

// ParseSyscallFields extracts the fields the analyzer consumes from a raw
// SYSCALL line. It returns ok=false if the mandatory syscall/pid fields
// are missing.
func ParseSyscallFields(line []byte) (SyscallFields, bool) {
	var f SyscallFields

	syscallVal, ok := extractField(line, "syscall")
	if !ok {
		return f, false
	}
	n, ok := parseDecimalInt(syscallVal)
	if !ok {
		return f, false
	}
	f.Syscall = int(n)

	pidVal, ok := extractField(line, "pid")
	if !ok {
		return f, false
	}
	pid, ok := parseDecimalInt(pidVal)
	if !ok {
		return f, false
	}
	f.Pid = int(pid)

	if successVal, ok := extractField(line, "success"); ok {
		f.Success = bytes.Equal(successVal, []byte("yes"))
	}
	if a0Val, ok := extractField(line, "a0"); ok {
		f.A0, _ = parseHexUint32(a0Val)
	}
	if a1Val, ok := extractField(line, "a1"); ok {
		f.A1, _ = parseHexUint32(a1Val)
	}
	if a2Val, ok := extractField(line, "a2"); ok {
		f.A2, _ = parseHexUint32(a2Val)
	}
	if exitVal, ok := extractField(line, "exit"); ok {
		f.Exit, _ = parseDecimalInt(exitVal)
	}

	return f, true
}

// extractField finds the value of "key=" in line, where the key is
// preceded by start-of-line or whitespace, and returns the token up to
// the next whitespace (mirrors the reference implementation's
// strstr+strtol field extraction).
func extractField(line []byte, key string) ([]byte, bool) {
	needle := append([]byte(key), '=')
	searchFrom := 0
	for {
		rel := bytes.Index(line[searchFrom:], needle)
		if rel < 0 {
			return nil, false
		}
		pos := searchFrom + rel
		if pos == 0 || line[pos-1] == ' ' {
			start := pos + len(needle)
			end := start
			for end < len(line) && line[end] != ' ' {
				end++
			}
			return line[start:end], true
		}
		searchFrom = pos + 1
	}
}

// parseDecimalInt parses an optionally negative decimal integer.
func parseDecimalInt(b []byte) (int64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	neg := false
	i := 0
	if b[0] == '-' {
		neg = true
		i = 1
	}
	if i >= len(b) {
		return 0, false
	}
	var v int64
	for ; i < len(b); i++ {
		if b[i] < '0' || b[i] > '9' {
			return 0, false
		}
		v = v*10 + int64(b[i]-'0')
	}
	if neg {
		v = -v
	}
	return v, true
}

// parseHexUint32 parses a hex string (with or without a leading "0x")
// into its low 32 bits.
func parseHexUint32(b []byte) (uint32, bool) {
	if len(b) == 0 {
		return 0, false
	}
	if len(b) > 1 && b[0] == '0' && (b[1] == 'x' || b[1] == 'X') {
		b = b[2:]
	}
	if len(b) == 0 {
		return 0, false
	}
	var v uint32
	for _, c := range b {
		var digit uint32
		switch {
		case c >= '0' && c <= '9':
			digit = uint32(c - '0')
		case c >= 'a' && c <= 'f':
			digit = uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			digit = uint32(c-'A') + 10
		default:
			return 0, false
		}
		v = v<<4 | digit
	}
	return v, true
}
