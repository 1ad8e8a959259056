package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/lacewing-labs/taskd/internal/domain"
	"github.com/lacewing-labs/taskd/pkg/log"
)

// loadManifestPath parses the manifest at path and loads it. source is
// path itself; kept as a separate parameter so loadManifest's signature
// matches the pre-parsed-JSON call site too.
func (m *Manager) loadManifestPath(path string, overrideDisabled, forceLoad bool) (bool, error) {
	manifest, err := m.parser.ParsePath(path)
	if err != nil {
		m.logger.Error("manifest parse failed", log.String("path", path), log.Err(err))
		return false, err
	}
	return m.loadManifest(manifest, path, overrideDisabled, forceLoad)
}

// loadManifestJSON parses a manifest from raw JSON bytes (origin names
// the source for logs) and loads it. Its only caller is LoadJSON.
func (m *Manager) loadManifestJSON(data []byte, origin string, overrideDisabled, forceLoad bool) (bool, error) {
	manifest, err := m.parser.ParseJSON(data, origin)
	if err != nil {
		m.logger.Error("manifest parse failed", log.String("origin", origin), log.Err(err))
		return false, err
	}
	return m.loadManifest(manifest, origin, overrideDisabled, forceLoad)
}

// loadManifest applies the override policy decision table (spec.md
// §4.2) and, on success, constructs a Job and places it in pending_jobs.
func (m *Manager) loadManifest(manifest domain.Manifest, source string, overrideDisabled, forceLoad bool) (bool, error) {
	if m.state == domain.GracefulShutdown || m.state == domain.Finished {
		m.logger.Error("refusing to load while shutting down",
			log.String("label", manifest.Label.String()), log.String("source", source))
		return false, domain.ErrShuttingDown
	}

	label := manifest.Label
	if _, exists := m.findJob(label); exists {
		m.logger.Warn("duplicate label", log.String("label", label.String()), log.String("source", source))
		return false, domain.ErrDuplicateLabel
	}

	switch {
	case overrideDisabled:
		if err := m.setOverride(label, true); err != nil {
			m.logger.Error("failed to persist override", log.String("label", label.String()), log.Err(err))
		}
	case forceLoad:
		// load unconditionally, no persisted side effect.
	default:
		if manifest.Disabled {
			m.logger.Info("job disabled by manifest", log.String("label", label.String()))
			return false, domain.ErrDisabled
		}
		doc, err := m.store.Get(context.Background())
		if err != nil {
			m.logger.Error("failed to read state document", log.Err(err))
		} else if ov, ok := doc.Overrides[label]; ok && !ov.Enabled {
			m.logger.Info("job disabled by override", log.String("label", label.String()))
			return false, domain.ErrDisabled
		}
	}

	job := m.jobFactory.NewJob(manifest, source, m.eventmgr, m.store)
	m.pending[label] = job
	m.logger.Info("job loaded", log.String("label", label.String()), log.String("source", source))
	return true, nil
}

// loadAllManifests loads every manifest found at path: each immediate
// entry if path is a directory (non-recursive), or path itself if it is
// a file. Parse failures are logged per-entry and do not abort the
// batch. Unlike the source this normalizes to Go convention: ok is true
// when every entry loaded successfully (spec.md §9's recommended fix for
// the inverted boolean).
func (m *Manager) loadAllManifests(path string, overrideDisabled, forceLoad bool) (ok bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		m.logger.Warn("load path not found", log.String("path", path), log.Err(err))
		return false, domain.ErrNotFound
	}

	if !info.IsDir() {
		loaded, err := m.loadManifestPath(path, overrideDisabled, forceLoad)
		return loaded, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		m.logger.Warn("failed to read load directory", log.String("path", path), log.Err(err))
		return false, err
	}

	allOK := true
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		full := filepath.Join(path, entry.Name())
		if _, err := m.loadManifestPath(full, overrideDisabled, forceLoad); err != nil {
			allOK = false
		}
	}
	return allOK, nil
}

// loadDefaultManifests is invoked exactly once at entry to Running
// (spec.md §4.5). Errors are logged but never abort startup.
func (m *Manager) loadDefaultManifests() {
	for _, path := range m.domain.LoadPaths() {
		if ok, err := m.loadAllManifests(path, false, false); !ok {
			m.logger.Warn("default manifest load incomplete", log.String("path", path), log.Err(err))
		}
	}
}

// unloadJob requests that label stop. Pending (never-bootstrapped) jobs
// are evicted immediately since they own no process; active jobs are
// asked to unload and remain registered until their own FSM reaches
// Unloaded and posts delete_job (spec.md §4.3).
func (m *Manager) unloadJob(label domain.Label, overrideDisabled, forceUnload bool) (bool, error) {
	if overrideDisabled {
		if err := m.setOverride(label, false); err != nil {
			m.logger.Error("failed to persist override", log.String("label", label.String()), log.Err(err))
		}
	}

	if job, ok := m.pending[label]; ok {
		delete(m.pending, label)
		job.ForceUnloadJob()
		m.logger.Info("pending job unloaded", log.String("label", label.String()))
		return true, nil
	}

	job, ok := m.active[label]
	if !ok {
		m.logger.Info("job not loaded", log.String("label", label.String()))
		return false, domain.ErrNotLoaded
	}
	return job.UnloadJob(forceUnload), nil
}

// setOverride persists an enable/disable decision for label, even if
// label names no job currently known to the manager. This is the
// source's documented permissive behavior (spec.md §9): overrides may be
// written for unknown labels and remain persisted until a matching job
// is loaded.
func (m *Manager) setOverride(label domain.Label, enabled bool) error {
	ctx := context.Background()
	doc, err := m.store.Get(ctx)
	if err != nil {
		doc = domain.NewStateDocument()
	}
	doc = doc.Clone()
	doc.Overrides[label] = domain.Override{Enabled: enabled}
	return m.store.Set(ctx, doc)
}
