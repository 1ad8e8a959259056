package taskd

import "fmt"

// Config holds the daemon's own configuration: where it keeps state and
// which directories/files it scans for job manifests at startup. This
// is distinct from a job manifest (internal/domain.Manifest) — it
// configures the manager itself, mirroring the teacher's cliconfig.Config
// for its own agent settings.
type Config struct {
	// StateDir is the directory holding state.json and the admin socket
	// (rpc.sock). Required.
	StateDir string

	// LoadPaths are scanned, in order, for manifests when the manager
	// enters Running (spec.md §4.5). Each entry may be a file or a
	// directory of files.
	LoadPaths []string
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.StateDir == "" {
		return fmt.Errorf("taskd: state-dir is required")
	}
	return nil
}
