package app

import (
	"net"

	"github.com/lacewing-labs/taskd/internal/domain"
	"github.com/lacewing-labs/taskd/internal/ports"
	"github.com/lacewing-labs/taskd/pkg/log"
)

// Manager is the per-domain service manager CORE: the FSM, the two-phase
// job registry, and the load/unload/shutdown pipelines built on top of
// it. See package doc for its concurrency discipline.
type Manager struct {
	domain     domain.Domain
	store      ports.StateStore
	eventmgr   ports.EventManager
	jobFactory ports.JobFactory
	parser     ports.ManifestParser
	logger     log.Logger

	// connHandler, if set, is invoked per accepted admin-socket
	// connection. It is wired in by the caller (pkg/taskd.New) after
	// construction to avoid internal/app importing internal/adapters/rpc;
	// Manager only knows how to bind and unbind the socket, never how to
	// speak the RPC protocol over it.
	connHandler func(net.Conn)

	// state, pending and active are mutated only from the goroutine
	// currently executing inside RunOnce. No mutex guards them; see
	// package doc.
	state   domain.ManagerState
	pending map[domain.Label]ports.Job
	active  map[domain.Label]ports.Job

	listener net.Listener

	// listenFunc binds the admin socket. It defaults to net.Listen;
	// tests substitute a fake so StartRunning never touches a real
	// filesystem path.
	listenFunc func(path string) (net.Listener, error)
}

// New constructs a Manager in the Unconfigured state. No default manifests
// are loaded and no socket is bound until StartRunning fires the
// Unconfigured→Running transition.
func New(d domain.Domain, store ports.StateStore, eventmgr ports.EventManager, jobFactory ports.JobFactory, parser ports.ManifestParser, logger log.Logger) *Manager {
	return &Manager{
		domain:     d,
		store:      store,
		eventmgr:   eventmgr,
		jobFactory: jobFactory,
		parser:     parser,
		logger:     logger,
		state:      domain.Unconfigured,
		pending:    make(map[domain.Label]ports.Job),
		active:     make(map[domain.Label]ports.Job),
		listenFunc: func(path string) (net.Listener, error) { return net.Listen("unix", path) },
	}
}

// SetConnHandler wires in the admin RPC protocol handler. Must be called
// before StartRunning if the admin socket is to be usable.
func (m *Manager) SetConnHandler(h func(net.Conn)) {
	m.connHandler = h
}

// State returns the manager's current FSM state.
func (m *Manager) State() domain.ManagerState {
	return m.state
}

// dispatch posts fn onto the event reactor and blocks until it has run,
// serializing fn with respect to every other registry mutation. Exported
// AdminAPI methods use this to be safely callable from any goroutine.
func (m *Manager) dispatch(fn func() error) error {
	done := make(chan error, 1)
	m.eventmgr.Post(func() { done <- fn() })
	return <-done
}

func (m *Manager) findJob(label domain.Label) (ports.Job, bool) {
	if job, ok := m.active[label]; ok {
		return job, true
	}
	if job, ok := m.pending[label]; ok {
		return job, true
	}
	return nil, false
}
