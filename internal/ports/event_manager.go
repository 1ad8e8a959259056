package ports

import (
	"net"
	"os"
	"time"
)

// EventManager is the single-threaded reactor primitive that drives the
// manager's main loop: signals, timers, socket readability, and internal
// messages all funnel through it and are dispatched one at a time, in
// delivery order, from WaitForEvent (spec.md §5).
type EventManager interface {
	// AddSignal registers handler to run on the main loop whenever sig is
	// received. Signal delivery itself happens through Go's own
	// async-signal-safe self-pipe (signal.Notify); handler always runs on
	// the main loop, never on a signal-handling context.
	AddSignal(sig os.Signal, handler func(os.Signal))

	// AddTimer arms a one-shot timer; handler runs on the main loop after d
	// elapses.
	AddTimer(d time.Duration, handler func())

	// AddIPCMethod registers a named internal message handler, mirroring
	// the source's addIpcMethod (used for the delete_job message).
	AddIPCMethod(name string, handler func(arg string))

	// PostIPC enqueues an internal message by name for main-loop dispatch.
	PostIPC(name string, arg string)

	// AddConnHandler starts an accept loop over l; each accepted connection
	// is handed to handler on its own goroutine, decoupled from the main
	// loop. Handlers that need to touch manager state reach back in via
	// Post and block for the result; this keeps a slow or malicious client
	// from stalling the reactor's single suspension point.
	AddConnHandler(l net.Listener, handler func(net.Conn))

	// Post enqueues an arbitrary callback for main-loop dispatch. Used by
	// adapters with their own background goroutines (e.g. the job engine's
	// process-exit waiter) to hand control back to the single-threaded
	// reactor instead of mutating manager state directly.
	Post(fn func())

	// WaitForEvent blocks until one event is available (or, if timeout is
	// non-nil, until it elapses) and dispatches it synchronously on the
	// calling goroutine. This is the manager's one suspension point.
	WaitForEvent(timeout *time.Duration) error

	// Close stops every accept loop and background goroutine owned by the
	// reactor. Safe to call more than once.
	Close() error
}
