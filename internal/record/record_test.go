package record

import "testing"

func TestIsFiltered(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bool
	}{
		{"eoe", `type=EOE msg=audit(1428946800.123:4567):`, true},
		{"unknown", `type=UNKNOWN[1323] msg=audit(1428946800.123:4567):`, true},
		{"proctitle", `type=PROCTITLE msg=audit(1428946800.123:4567): proctitle=2F62696E2F6C73`, true},
		{"syscall", `type=SYSCALL msg=audit(1428946800.123:4567): arch=c000003e syscall=59`, false},
		{"execve", `type=EXECVE msg=audit(1428946800.123:4567): argc=2 a0="ls" a1="-l"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFiltered([]byte(tt.line)); got != tt.want {
				t.Errorf("IsFiltered(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestExtractEventID(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		wantID int64
		wantOK bool
	}{
		{
			name:   "standard syscall line",
			line:   `type=SYSCALL msg=audit(1428946800.123:4567): arch=c000003e syscall=59`,
			wantID: 4567,
			wantOK: true,
		},
		{
			name:   "eoe line",
			line:   `type=EOE msg=audit(1428946800.123:4567):`,
			wantID: 4567,
			wantOK: true,
		},
		{
			name:   "large id",
			line:   `type=PATH msg=audit(9999999999.000:18446744073):`,
			wantID: 18446744073,
			wantOK: true,
		},
		{
			name:   "no colon",
			line:   `malformed line with no colon at all`,
			wantOK: false,
		},
		{
			name:   "colon with no digits after",
			line:   `type=SYSCALL msg=audit(abc:`,
			wantOK: false,
		},
		{
			name:   "colon at end of line",
			line:   `trailing colon:`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotOK := ExtractEventID([]byte(tt.line))
			if gotOK != tt.wantOK {
				t.Fatalf("ExtractEventID(%q) ok = %v, want %v", tt.line, gotOK, tt.wantOK)
			}
			if gotOK && gotID != tt.wantID {
				t.Errorf("ExtractEventID(%q) id = %d, want %d", tt.line, gotID, tt.wantID)
			}
		})
	}
}

func TestHasSyscallTag(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    bool
	}{
		{"syscall present", "type=SYSCALL msg=audit(1.0:1): syscall=59\n", true},
		{"execve only", "type=EXECVE msg=audit(1.0:1): argc=1 a0=\"ls\"\n", false},
		{"multi-line with syscall first", "type=SYSCALL msg=audit(1.0:1): syscall=59\ntype=PATH msg=audit(1.0:1): item=0\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasSyscallTag([]byte(tt.payload)); got != tt.want {
				t.Errorf("HasSyscallTag(%q) = %v, want %v", tt.payload, got, tt.want)
			}
		})
	}
}

func TestRecordAppend(t *testing.T) {
	r := New(4567, []byte(`type=SYSCALL msg=audit(1.0:4567): syscall=59`))
	r.Append([]byte(`type=EXECVE msg=audit(1.0:4567): argc=1 a0="ls"`))

	want := "type=SYSCALL msg=audit(1.0:4567): syscall=59\n" +
		"type=EXECVE msg=audit(1.0:4567): argc=1 a0=\"ls\"\n"
	if string(r.Payload) != want {
		t.Errorf("Payload = %q, want %q", r.Payload, want)
	}
	if r.ID != 4567 {
		t.Errorf("ID = %d, want 4567", r.ID)
	}
}
