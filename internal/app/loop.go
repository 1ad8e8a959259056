package app

import (
	"time"

	"github.com/lacewing-labs/taskd/internal/domain"
)

// shutdownPollInterval bounds how long a single GracefulShutdown
// RunOnce call waits for an event, so the drain keeps polling jobs that
// have reached a terminal state even without external activity
// (spec.md §4.4.2).
const shutdownPollInterval = 500 * time.Millisecond

// StartRunning fires StartRequested, moving the manager from
// Unconfigured to Running (or, if already Running, promoting any
// pending batch — spec.md §4.4's transition B). Must be called before
// RunMainLoop starts (pkg/taskd.Start calls it and then starts the loop
// on a new goroutine) or from the goroutine driving that loop; it
// executes synchronously rather than through dispatch.
func (m *Manager) StartRunning() error {
	return m.fire(domain.StartRequested)
}

// StopRunning fires StopRequested, beginning (or escalating) shutdown.
func (m *Manager) StopRunning() error {
	return m.fire(domain.StopRequested)
}

// RunOnce drives one iteration of the main loop (spec.md §4.4.2's
// handleEvent). It returns false once the manager has reached Finished;
// callers should stop calling RunOnce at that point. Calling RunOnce
// while Unconfigured is a programming error and panics, per spec.md
// §7's treatment of such calls as assertions.
func (m *Manager) RunOnce(timeout *time.Duration) (bool, error) {
	switch m.state {
	case domain.Unconfigured:
		panic("taskd: RunOnce called before StartRunning")
	case domain.Running:
		if err := m.eventmgr.WaitForEvent(timeout); err != nil {
			return false, err
		}
	case domain.GracefulShutdown:
		if len(m.active) == 0 {
			if err := m.fire(domain.AllJobsExited); err != nil {
				return false, err
			}
			return m.state != domain.Finished, nil
		}
		t := capTimeout(timeout, shutdownPollInterval)
		if err := m.eventmgr.WaitForEvent(t); err != nil {
			return false, err
		}
	case domain.Finished:
		return false, nil
	default:
		panic("taskd: unknown manager state")
	}
	return m.state != domain.Finished, nil
}

// RunMainLoop calls RunOnce until the manager reaches Finished or an
// error occurs.
func (m *Manager) RunMainLoop() error {
	for {
		more, err := m.RunOnce(nil)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// capTimeout returns the smaller of requested and max, treating a nil
// requested timeout as unbounded.
func capTimeout(requested *time.Duration, max time.Duration) *time.Duration {
	if requested == nil || *requested > max {
		return &max
	}
	return requested
}
