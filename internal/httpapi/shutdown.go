package httpapi

import "sync/atomic"

// shuttingDown is the process-wide shutdown flag. Once set, the health
// endpoint reports shutting-down so load balancers drain the instance.
var shuttingDown atomic.Bool

// SetShuttingDown sets or clears the shutdown flag.
func SetShuttingDown(v bool) {
	shuttingDown.Store(v)
}

// IsShuttingDown reports whether graceful shutdown has started.
func IsShuttingDown() bool {
	return shuttingDown.Load()
}
