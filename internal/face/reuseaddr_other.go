//go:build !unix

package face

import "syscall"

// reuseAddrControl is a no-op on non-unix platforms.
func reuseAddrControl(_, _ string, _ syscall.RawConn) error {
	return nil
}
