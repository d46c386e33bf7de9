//go:build unix

package face

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseAddrControl sets SO_REUSEADDR on listening sockets so the router can
// rebind its control ports immediately after a restart, mirroring
// impl.SyscallReuseAddr in the teacher repo (there gated by a wasm build
// tag; here by a real unix syscall via golang.org/x/sys/unix rather than
// the raw syscall package, since this module targets POSIX hosts only).
func reuseAddrControl(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
