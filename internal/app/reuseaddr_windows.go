//go:build windows

package app

import "syscall"

// reuseAddrControl is a no-op on Windows, where SO_REUSEADDR has different
// (and riskier) semantics than on POSIX; a restarted daemon simply waits
// out the TIME_WAIT like any other Windows service.
func reuseAddrControl(network, address string, c syscall.RawConn) error {
	return nil
}
