package eventmgr

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"sync"
	"time"

	"vawter.tech/stopper"

	"github.com/lacewing-labs/taskd/pkg/log"
)

// ErrClosed is returned by WaitForEvent once Close has run.
var ErrClosed = errors.New("eventmgr: reactor closed")

// Reactor implements ports.EventManager.
type Reactor struct {
	logger log.Logger

	sctx *stopper.Context

	events chan func()
	done   chan struct{}

	mu         sync.Mutex
	signalFns  map[os.Signal]func(os.Signal)
	signalCh   chan os.Signal
	ipcMethods map[string]func(string)
	listeners  []net.Listener
	closed     bool
}

// New constructs a Reactor. ctx bounds the lifetime of every goroutine
// the reactor spawns; cancel it (or call Close) to tear them down.
func New(ctx context.Context, logger log.Logger) *Reactor {
	r := &Reactor{
		logger:     logger,
		sctx:       stopper.WithContext(ctx),
		events:     make(chan func(), 64),
		done:       make(chan struct{}),
		signalFns:  make(map[os.Signal]func(os.Signal)),
		signalCh:   make(chan os.Signal, 8),
		ipcMethods: make(map[string]func(string)),
	}
	r.sctx.Go(func(sctx *stopper.Context) error {
		for {
			select {
			case sig := <-r.signalCh:
				r.mu.Lock()
				handler := r.signalFns[sig]
				r.mu.Unlock()
				if handler == nil {
					continue
				}
				if !r.post(func() { handler(sig) }) {
					return nil
				}
			case <-sctx.Stopping():
				return nil
			}
		}
	})
	return r
}

// AddSignal implements ports.EventManager.
func (r *Reactor) AddSignal(sig os.Signal, handler func(os.Signal)) {
	r.mu.Lock()
	r.signalFns[sig] = handler
	r.mu.Unlock()
	signal.Notify(r.signalCh, sig)
}

// AddTimer implements ports.EventManager. The timer fires on its own
// goroutine via time.AfterFunc and hands the closure to the same
// dispatch channel every other event source uses, so it still runs on
// the main loop and under the one suspension point in WaitForEvent.
func (r *Reactor) AddTimer(d time.Duration, handler func()) {
	time.AfterFunc(d, func() {
		r.post(handler)
	})
}

// AddIPCMethod implements ports.EventManager.
func (r *Reactor) AddIPCMethod(name string, handler func(arg string)) {
	r.mu.Lock()
	r.ipcMethods[name] = handler
	r.mu.Unlock()
}

// PostIPC implements ports.EventManager.
func (r *Reactor) PostIPC(name string, arg string) {
	r.mu.Lock()
	handler := r.ipcMethods[name]
	r.mu.Unlock()
	if handler == nil {
		r.logger.Warn("eventmgr: posted unknown IPC method", log.String("name", name))
		return
	}
	r.post(func() { handler(arg) })
}

// AddConnHandler implements ports.EventManager.
func (r *Reactor) AddConnHandler(l net.Listener, handler func(net.Conn)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, l)
	r.mu.Unlock()

	r.sctx.Go(func(sctx *stopper.Context) error {
		for {
			conn, err := l.Accept()
			if err != nil {
				select {
				case <-sctx.Stopping():
					return nil
				default:
					r.logger.Warn("eventmgr: accept failed", log.Err(err))
					return nil
				}
			}
			c := conn
			go handler(c)
		}
	})
}

// Post implements ports.EventManager.
func (r *Reactor) Post(fn func()) {
	r.post(fn)
}

// post enqueues fn for main-loop dispatch, returning false if the
// reactor has been closed.
func (r *Reactor) post(fn func()) bool {
	select {
	case r.events <- fn:
		return true
	case <-r.done:
		return false
	}
}

// WaitForEvent implements ports.EventManager. This is the reactor's one
// suspension point: every event source above ultimately funnels through
// r.events.
func (r *Reactor) WaitForEvent(timeout *time.Duration) error {
	var after <-chan time.Time
	if timeout != nil {
		t := time.NewTimer(*timeout)
		defer t.Stop()
		after = t.C
	}
	select {
	case fn := <-r.events:
		fn()
		return nil
	case <-after:
		return nil
	case <-r.done:
		return ErrClosed
	}
}

// Close implements ports.EventManager. Stops every accept loop and
// background goroutine, then closes every registered listener. Safe to
// call more than once.
func (r *Reactor) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	listeners := r.listeners
	r.mu.Unlock()

	close(r.done)
	r.sctx.Stop(250 * time.Millisecond)

	for _, l := range listeners {
		_ = l.Close()
	}
	signal.Stop(r.signalCh)

	return r.sctx.Wait()
}
