// Package eventmgr implements ports.EventManager: the single-threaded
// reactor that drives the manager core's main loop (spec.md §5). Every
// event source (signals, timers, IPC messages, the job engine's
// exit-wait goroutines, and Manager.dispatch's Post calls) funnels into
// one channel of closures; WaitForEvent is the one select that drains
// it, so every dispatched closure runs on the same goroutine. Accepted
// connections are the exception: each is handled on its own goroutine,
// and reaches the main loop only through Post.
//
// Goroutine lifecycles - the per-listener accept loop - are owned by a
// vawter.tech/stopper.Context, grounded on axondata-go-runit's
// watch_impl.go use of the same library for watcher-goroutine teardown.
package eventmgr
