// Package app implements the Manager: the top-level state machine that
// owns the job registry, drives the load/start/unload pipeline, persists
// enable/disable overrides, and coordinates graceful-then-forced
// shutdown.
//
// Manager depends only on the interfaces in internal/ports. It never
// touches a filesystem, socket, or process directly; internal/adapters
// supplies the concrete collaborators at construction time. This keeps
// the FSM and registry logic testable with fakes.
//
// Manager's own state (the registry maps and the FSM state) is mutated
// from exactly one goroutine: whichever goroutine is currently executing
// a dispatched event inside RunOnce. Callers on other goroutines — the
// RPC server's per-connection handlers, the manifest hot-reload plugin,
// tests — reach in through the exported AdminAPI methods, which post a
// closure onto the event reactor and block for its result instead of
// mutating the registry directly.
package app
