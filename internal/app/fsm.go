package app

import (
	"fmt"

	"github.com/lacewing-labs/taskd/internal/domain"
	"github.com/lacewing-labs/taskd/pkg/log"
)

// transitionKey identifies one cell of the manager FSM's transition
// table (spec.md §4.4).
type transitionKey struct {
	from    domain.ManagerState
	trigger domain.Trigger
}

// transition is the table cell: a guard (nil means "always permitted")
// and an action (nil means no-op), kept separate so tests can dry-run a
// guard without executing its action.
type transition struct {
	to     domain.ManagerState
	guard  func(*Manager) bool
	action func(*Manager) error
}

var transitions = map[transitionKey]transition{
	{domain.Unconfigured, domain.StopRequested}: {
		to: domain.Finished,
	},
	{domain.Unconfigured, domain.StartRequested}: {
		to:     domain.Running,
		action: (*Manager).actionEnterRunning,
	},
	{domain.Running, domain.StartRequested}: {
		to:    domain.Running,
		guard: func(m *Manager) bool { return len(m.pending) > 0 },
		action: func(m *Manager) error {
			m.promotePending()
			return nil
		},
	},
	{domain.Running, domain.StopRequested}: {
		to:     domain.GracefulShutdown,
		action: (*Manager).actionEnterGracefulShutdown,
	},
	{domain.GracefulShutdown, domain.StopRequested}: {
		to: domain.Finished,
	},
	{domain.GracefulShutdown, domain.AllJobsExited}: {
		to: domain.Finished,
		action: func(m *Manager) error {
			m.logger.Info("all jobs exited, shutdown complete")
			return nil
		},
	},
}

// fire looks up the transition for (m.state, trigger) and, if its guard
// (if any) passes, runs its action and advances m.state. A missing table
// entry or a failing guard is a silent no-op: both represent an event
// that legitimately has nothing to do in the current state (a second
// StartRequested with nothing pending, a shutdown signal arriving twice
// from the same state before the first is processed).
//
// fire must only be called from the goroutine currently executing inside
// RunOnce; it never locks.
func (m *Manager) fire(trigger domain.Trigger) error {
	t, ok := transitions[transitionKey{m.state, trigger}]
	if !ok {
		m.logger.Debug("trigger has no transition from current state",
			log.String("state", m.state.String()),
			log.String("trigger", trigger.String()))
		return nil
	}
	if t.guard != nil && !t.guard(m) {
		return nil
	}
	if t.action != nil {
		if err := t.action(m); err != nil {
			return fmt.Errorf("taskd: transition %s--%s-->%s: %w", m.state, trigger, t.to, err)
		}
	}
	m.state = t.to
	return nil
}

func (m *Manager) actionEnterRunning() error {
	m.installSignalHandlers()
	if err := m.bindSocket(); err != nil {
		return err
	}
	m.loadDefaultManifests()
	m.promotePending()
	return nil
}

func (m *Manager) actionEnterGracefulShutdown() error {
	m.unbindSocket()
	m.requestUnloadAll()
	return nil
}

// promotePending moves every pending job into the active registry and
// fires Bootstrap on it (spec.md §4.4.1). It is a programming error for
// a label to already be active at this point; the load-time duplicate
// check is supposed to prevent it.
func (m *Manager) promotePending() {
	for label, job := range m.pending {
		if _, exists := m.active[label]; exists {
			panic(fmt.Sprintf("taskd: label %q promoted into active registry twice", label))
		}
		m.active[label] = job
		delete(m.pending, label)
		job.Bootstrap()
		m.logger.Info("job started", log.String("label", label.String()))
	}
}

func (m *Manager) requestUnloadAll() {
	for _, job := range m.active {
		job.UnloadJob(false)
	}
}

// forceUnloadAllJobs synchronously destroys every active job without
// waiting for its own FSM to drain. Used by signal escalation (spec.md
// §4.7) and by Close.
func (m *Manager) forceUnloadAllJobs() {
	for label, job := range m.active {
		job.ForceUnloadJob()
		delete(m.active, label)
	}
	for label, job := range m.pending {
		job.ForceUnloadJob()
		delete(m.pending, label)
	}
}
