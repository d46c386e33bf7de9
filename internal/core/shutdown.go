package core

import "sync/atomic"

var shouldQuit atomic.Bool

// ShouldQuit reports whether the router has begun shutting down, mirroring
// the package-level core.ShouldQuit flag in the teacher repo that accept
// loops poll to decide whether a failed Accept is expected.
func ShouldQuit() bool {
	return shouldQuit.Load()
}

// RequestQuit flags the router for shutdown.
func RequestQuit() {
	shouldQuit.Store(true)
}
