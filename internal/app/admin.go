package app

import (
	"sort"

	"github.com/lacewing-labs/taskd/internal/domain"
	"github.com/lacewing-labs/taskd/internal/ports"
)

// The methods in this file implement ports.AdminAPI. Each one posts its
// work onto the event reactor and blocks for the result, so they are
// safe to call from any goroutine — in particular the admin RPC
// server's per-connection goroutines (SPEC_FULL.md §4.12).

var _ ports.AdminAPI = (*Manager)(nil)

// Load implements ports.AdminAPI.
func (m *Manager) Load(path string, overrideDisabled, forceLoad bool) error {
	return m.dispatch(func() error {
		_, err := m.loadManifestPath(path, overrideDisabled, forceLoad)
		return err
	})
}

// LoadJSON loads a manifest given as raw JSON bytes rather than by path.
// It is not part of ports.AdminAPI (spec.md §4.6 only names the path
// form), and the RPC server's load op does not call it: that op only
// carries a Path. It is exposed for in-process callers.
func (m *Manager) LoadJSON(data []byte, origin string, overrideDisabled, forceLoad bool) error {
	return m.dispatch(func() error {
		_, err := m.loadManifestJSON(data, origin, overrideDisabled, forceLoad)
		return err
	})
}

// LoadAll implements the loadAllManifests admin operation (spec.md
// §4.3), exposed for in-process callers such as the manifest hot-reload
// plugin. No RPC op calls it.
func (m *Manager) LoadAll(path string, overrideDisabled, forceLoad bool) error {
	return m.dispatch(func() error {
		_, err := m.loadAllManifests(path, overrideDisabled, forceLoad)
		return err
	})
}

// RequestStop is the concurrency-safe counterpart to StopRunning, for
// callers on a goroutine other than the one driving RunMainLoop (the
// embeddable facade's Stop, in particular). StopRunning itself stays
// direct-call because it also covers the pre-loop Unconfigured→Finished
// path where dispatching would deadlock (nothing is draining the
// reactor yet).
func (m *Manager) RequestStop() error {
	return m.dispatch(func() error { return m.fire(domain.StopRequested) })
}

// Unload implements ports.AdminAPI.
func (m *Manager) Unload(label domain.Label, force bool) error {
	return m.dispatch(func() error {
		_, err := m.unloadJob(label, false, force)
		return err
	})
}

// List implements ports.AdminAPI.
func (m *Manager) List() ([]ports.JobInfo, error) {
	var result []ports.JobInfo
	err := m.dispatch(func() error {
		result = m.listJobsLocked()
		return nil
	})
	return result, err
}

// Kill implements ports.AdminAPI.
func (m *Manager) Kill(label domain.Label, signum int) error {
	return m.dispatch(func() error {
		job, ok := m.findJob(label)
		if !ok {
			return domain.ErrNotLoaded
		}
		if !job.Kill(signum) {
			return domain.ErrNoProcess
		}
		return nil
	})
}

// Enable implements ports.AdminAPI.
func (m *Manager) Enable(label domain.Label, enabled bool) error {
	return m.dispatch(func() error {
		return m.setOverride(label, enabled)
	})
}

// Dump implements ports.AdminAPI.
func (m *Manager) Dump(label domain.Label) (string, error) {
	var result string
	err := m.dispatch(func() error {
		job, ok := m.findJob(label)
		if !ok {
			return domain.ErrNotLoaded
		}
		result = job.Dump()
		return nil
	})
	return result, err
}

// listJobsLocked assembles the admin List() view. Named -Locked in the
// teacher's convention for "must run on the single owning goroutine"
// even though nothing here takes a lock.
func (m *Manager) listJobsLocked() []ports.JobInfo {
	out := make([]ports.JobInfo, 0, len(m.active)+len(m.pending))
	for label, job := range m.active {
		out = append(out, ports.JobInfo{
			Label:          label,
			PID:            job.PID(),
			LastExitStatus: job.LastExitStatus(),
			State:          job.FSMState(),
		})
	}
	for label, job := range m.pending {
		out = append(out, ports.JobInfo{
			Label:          label,
			PID:            job.PID(),
			LastExitStatus: job.LastExitStatus(),
			State:          job.FSMState(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
