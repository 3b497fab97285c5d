package ioreader

import (
	"io"
	"net"
	"os"

	"spadesocketbridge/internal/bridgeerr"
)

// BufferLength is the size of the static read buffer, matching the
// original audispd bridge's BUFFER_LENGTH. The audit subsystem guarantees
// individual lines stay below this bound; a longer line is truncated
// rather than treated as a fatal condition (spec.md §4.1).
const BufferLength = 10000

// Reader implements the Line Reader (C1): a pull interface over either a
// Unix-domain stream socket or standard input, splitting the incoming byte
// stream on '\n' and preserving a partial trailing line across reads.
type Reader struct {
	src    io.Reader
	closer io.Closer

	readBuf []byte
	remain  []byte

	pending [][]byte
	eof     bool
	err     error
}

// NewStdin creates a Line Reader over the process's standard input.
func NewStdin() *Reader {
	return &Reader{
		src:     os.Stdin,
		readBuf: make([]byte, BufferLength),
	}
}

// NewSocket creates a Line Reader that dials the Unix-domain stream socket
// at path and reads from it. Connection failures are fatal per spec.md §7.
func NewSocket(path string) (*Reader, error) {
	fd, err := dialAudispdSocket(path)
	if err != nil {
		return nil, err
	}
	f := os.NewFile(uintptr(fd), path)
	return &Reader{
		src:     f,
		closer:  f,
		readBuf: make([]byte, BufferLength),
	}, nil
}

// NewFromConn wraps an already-established connection (used by tests that
// exercise the reassembly logic over a net.Conn pipe without a real
// filesystem socket).
func NewFromConn(conn net.Conn) *Reader {
	return &Reader{
		src:     conn,
		closer:  conn,
		readBuf: make([]byte, BufferLength),
	}
}

// Close releases the underlying source, if it owns one.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Err returns the fatal read error, if any. A nil error after Next returns
// false just means a clean EOF.
func (r *Reader) Err() error {
	return r.err
}

// Next returns the next logical line (without its trailing '\n'), or
// ok=false once the source is exhausted (EOF) or a fatal read error
// occurred (check Err()).
func (r *Reader) Next() (line []byte, ok bool) {
	for len(r.pending) == 0 {
		if !r.fill() {
			return nil, false
		}
	}
	line = r.pending[0]
	r.pending = r.pending[1:]
	return line, true
}

// fill performs one blocking read and splits whatever arrived into
// complete lines, carrying any trailing partial line into r.remain for the
// next call. It returns false once no more lines can ever be produced.
func (r *Reader) fill() bool {
	if r.eof {
		return false
	}

	n, err := r.src.Read(r.readBuf)
	if n > 0 {
		r.consume(r.readBuf[:n])
	}
	if err != nil {
		r.eof = true
		if err != io.EOF {
			r.err = bridgeerr.WrapWithComponent(err, bridgeerr.KindIO, "read", "ioreader")
		}
		return len(r.pending) > 0
	}
	if n == 0 {
		// A zero-byte, no-error read (e.g. a socket peer closing cleanly
		// without returning io.EOF) is treated the same as EOF.
		r.eof = true
		return len(r.pending) > 0
	}
	return true
}

// consume splits buf on '\n', combining with any carried-over remainder.
// Each complete line (with its trailing '\n' stripped) is appended to
// r.pending; an incomplete trailing segment is kept in r.remain.
func (r *Reader) consume(buf []byte) {
	start := 0
	for i, b := range buf {
		if b != '\n' {
			continue
		}
		var line []byte
		if len(r.remain) > 0 {
			line = make([]byte, 0, len(r.remain)+(i-start))
			line = append(line, r.remain...)
			line = append(line, buf[start:i]...)
			r.remain = nil
		} else {
			line = append([]byte(nil), buf[start:i]...)
		}
		if len(line) > BufferLength {
			line = line[:BufferLength]
		}
		r.pending = append(r.pending, line)
		start = i + 1
	}
	if start < len(buf) {
		r.remain = append(r.remain, buf[start:]...)
		if len(r.remain) > BufferLength {
			r.remain = r.remain[:BufferLength]
		}
	}
}
