package ports

import "github.com/lacewing-labs/taskd/internal/domain"

// JobInfo is the admin-facing summary of a single job, returned by
// AdminAPI.List (spec.md §4.6).
type JobInfo struct {
	Label          domain.Label
	PID            int
	LastExitStatus int
	State          domain.JobState
}

// AdminAPI is the set of operations the admin RPC server
// (internal/adapters/rpc) drives against the manager core. Every method
// is safe to call concurrently with the main loop: implementations post
// the work onto the single-threaded reactor and block for the result.
type AdminAPI interface {
	// Load parses the manifest at path and loads it under the given
	// domain, applying the override policy decision table (spec.md §4.2).
	// overrideDisabled persists a new enabled=true override before
	// evaluating the gate; forceLoad bypasses manifest.Disabled and any
	// existing override without persisting anything.
	Load(path string, overrideDisabled, forceLoad bool) error

	// Unload requests that the named job stop and be removed from the
	// registry. force kills the process immediately instead of allowing a
	// grace period.
	Unload(label domain.Label, force bool) error

	// List returns a summary of every currently loaded job.
	List() ([]JobInfo, error)

	// Kill sends signum to the named job's process.
	Kill(label domain.Label, signum int) error

	// Enable persists an override for label's enabled state, independent
	// of its current load state.
	Enable(label domain.Label, enabled bool) error

	// Dump returns a diagnostic summary of the named job.
	Dump(label domain.Label) (string, error)
}
