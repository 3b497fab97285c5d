// Package ioreader implements the Line Reader component: it pulls
// newline-terminated audit lines from either a Unix-domain stream socket
// (the audispd socket) or the process's standard input.
package ioreader

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"spadesocketbridge/internal/bridgeerr"
)

// ValidateSocketPath checks that a socket path is safe to dial: non-empty,
// and if it already exists on disk, that it is in fact a socket. A relative
// path is resolved against the working directory and accepted.
func ValidateSocketPath(path string) error {
	if path == "" {
		return bridgeerr.Wrap(fmt.Errorf("empty path"), bridgeerr.KindOption, "validate-socket-path")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return bridgeerr.WrapWithDetail(err, bridgeerr.KindOption, "validate-socket-path", "cannot resolve absolute path")
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Path doesn't exist yet - the server creates it; this is
			// still a permitted target for a later dial.
			return nil
		}
		return bridgeerr.WrapWithDetail(err, bridgeerr.KindIO, "validate-socket-path", "cannot stat socket path")
	}

	if info.Mode()&os.ModeSocket == 0 {
		return bridgeerr.WrapWithDetail(nil, bridgeerr.KindOption, "validate-socket-path",
			fmt.Sprintf("path %q exists but is not a socket", path))
	}

	return nil
}

// dialAudispdSocket connects to a Unix-domain stream socket at path using
// raw socket/connect syscalls, mirroring both the original C
// implementation's socket()/connect() sequence and the kernel-facing style
// the rest of this module's syscall code follows.
func dialAudispdSocket(path string) (int, error) {
	if err := ValidateSocketPath(path); err != nil {
		return -1, err
	}

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, bridgeerr.WrapWithComponent(err, bridgeerr.KindIO, "socket", "ioreader")
	}

	addr := &unix.SockaddrUnix{Name: path}
	if err := unix.Connect(fd, addr); err != nil {
		unix.Close(fd)
		return -1, bridgeerr.WrapWithDetail(err, bridgeerr.KindIO, "connect",
			fmt.Sprintf("unable to connect to the socket: %s", path))
	}

	return fd, nil
}
