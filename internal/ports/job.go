package ports

import "github.com/lacewing-labs/taskd/internal/domain"

// Job is a single job's lifecycle, as observed by the manager core. The
// manager owns each Job exclusively; a Job borrows (never owns) the
// EventManager and StateStore passed to it at construction.
type Job interface {
	Label() domain.Label
	Manifest() domain.Manifest

	// PID returns the job's current process ID, or 0 when no process is
	// running.
	PID() int

	// LastExitStatus returns the exit status of the most recently completed
	// process, or 0 if the job has never run.
	LastExitStatus() int

	// FSMState returns the job's own lifecycle state. JobUnloaded is the
	// distinguished terminal state.
	FSMState() domain.JobState

	// UnloadRequested reports whether UnloadJob has already been called,
	// regardless of whether the job has finished unloading.
	UnloadRequested() bool

	// Bootstrap fires the Bootstrap trigger, starting the process. Called
	// exactly once, when the manager promotes the job from pending to
	// active (spec.md §4.4.1).
	Bootstrap()

	// UnloadJob requests that the job stop. If force is true the process is
	// killed immediately rather than given a grace period. Returns false if
	// the job was already unloaded or unloading.
	UnloadJob(force bool) bool

	// ForceUnloadJob synchronously destroys the job's process without
	// waiting, for use during shutdown escalation.
	ForceUnloadJob()

	// Kill sends the given signal to the job's process. Returns false if the
	// job has no live process.
	Kill(signum int) bool

	// Dump returns a diagnostic summary of the job's current state.
	Dump() string
}

// JobFactory constructs Job instances from a validated manifest. Concrete
// implementations live in internal/adapters/jobproc.
type JobFactory interface {
	NewJob(manifest domain.Manifest, source string, eventmgr EventManager, store StateStore) Job
}
