package app

import (
	"net"
	"os"
	"syscall"

	"github.com/lacewing-labs/taskd/internal/domain"
	"github.com/lacewing-labs/taskd/pkg/log"
)

// deleteJobIPC is the internal message name a Job posts once its own
// FSM reaches Unloaded, instructing the manager to evict it (spec.md
// §4.6).
const deleteJobIPC = "delete_job"

// installSignalHandlers registers the manager's shutdown and ignore
// handlers with the event reactor. They run as ordinary main-loop
// handlers (spec.md §5's self-pipe requirement is satisfied by the
// reactor's own signal.Notify plumbing; see internal/adapters/eventmgr).
func (m *Manager) installSignalHandlers() {
	m.eventmgr.AddSignal(syscall.SIGINT, m.handleShutdownSignal)
	m.eventmgr.AddSignal(syscall.SIGTERM, m.handleShutdownSignal)
	m.eventmgr.AddSignal(syscall.SIGPIPE, m.handleSigpipe)
	m.eventmgr.AddIPCMethod(deleteJobIPC, m.handleDeleteJob)
}

// handleShutdownSignal implements the escalating shutdown discipline of
// spec.md §4.7. It runs on the main loop, so it has full access to the
// FSM despite being triggered by a signal.
func (m *Manager) handleShutdownSignal(sig os.Signal) {
	switch m.state {
	case domain.Unconfigured, domain.Running:
		if err := m.fire(domain.StopRequested); err != nil {
			m.logger.Error("shutdown transition failed", log.Err(err))
		}
	case domain.GracefulShutdown:
		m.logger.Warn("second shutdown signal received, forcing job termination")
		m.forceUnloadAllJobs()
		if err := m.fire(domain.AllJobsExited); err != nil {
			m.logger.Error("shutdown transition failed", log.Err(err))
		}
	case domain.Finished:
		m.logger.Info("shutdown signal ignored, already finished")
	}
}

// handleSigpipe prevents a write to a closed admin-socket connection
// from killing the process.
func (m *Manager) handleSigpipe(os.Signal) {
	m.logger.Debug("SIGPIPE ignored")
}

// handleDeleteJob evicts label once its own FSM has reached Unloaded and
// it has posted this internal message (spec.md §4.6). It is the only
// code path that removes an entry from the active registry outside of
// shutdown escalation.
func (m *Manager) handleDeleteJob(arg string) {
	label := domain.Label(arg)
	if _, ok := m.active[label]; ok {
		delete(m.active, label)
		m.logger.Debug("job evicted from registry", log.String("label", label.String()))
		return
	}
	delete(m.pending, label)
}

// bindSocket listens on the domain's admin socket path and registers the
// accept loop with the event reactor. The RPC protocol handler itself is
// injected by the caller via SetConnHandler.
func (m *Manager) bindSocket() error {
	l, err := m.listenFunc(m.domain.SocketPath())
	if err != nil {
		return err
	}
	m.listener = l
	handler := m.connHandler
	if handler == nil {
		handler = func(c net.Conn) { c.Close() }
	}
	m.eventmgr.AddConnHandler(l, handler)
	m.logger.Info("admin socket bound", log.String("path", m.domain.SocketPath()))
	return nil
}

// unbindSocket closes the admin socket so no further admin requests or
// loads are accepted (spec.md §4.4's action C).
func (m *Manager) unbindSocket() {
	if m.listener == nil {
		return
	}
	if err := m.listener.Close(); err != nil {
		m.logger.Warn("error closing admin socket", log.Err(err))
	}
	m.listener = nil
	m.logger.Info("admin socket unbound")
}

// Close provides the destructor invariant of spec.md §4.7: once Close
// returns, no child process remains owned by the manager. Safe to call
// more than once.
func (m *Manager) Close() error {
	m.unbindSocket()
	m.forceUnloadAllJobs()
	return m.eventmgr.Close()
}
