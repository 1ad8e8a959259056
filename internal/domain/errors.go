package domain

import "errors"

// Domain errors represent error conditions in the taskd domain. These are
// returned by the public API and can be checked with errors.Is.
var (
	// ErrShuttingDown is returned when a load is attempted while the manager
	// is in GracefulShutdown or Finished.
	ErrShuttingDown = errors.New("taskd: refusing to load while shutting down")

	// ErrDuplicateLabel is returned when a label is already present in
	// pending_jobs or jobs.
	ErrDuplicateLabel = errors.New("taskd: duplicate label")

	// ErrDisabled is returned when load is gated by manifest.disabled or a
	// state-file override, and forceLoad was not set.
	ErrDisabled = errors.New("taskd: job is disabled")

	// ErrNotLoaded is returned when an operation targets a label that is not
	// currently loaded.
	ErrNotLoaded = errors.New("taskd: job not loaded")

	// ErrNotFound is returned when a load path or manifest file is missing.
	ErrNotFound = errors.New("taskd: path not found")

	// ErrInvalidManifest is returned when a manifest fails to parse or is
	// missing a required field.
	ErrInvalidManifest = errors.New("taskd: invalid manifest")

	// ErrUnknownSignal is returned when ResolveSignal is given a signal
	// name that cannot be resolved.
	ErrUnknownSignal = errors.New("taskd: unknown signal")

	// ErrNoProcess is returned when an operation requiring a live process
	// (Kill) targets a job that has none right now.
	ErrNoProcess = errors.New("taskd: job has no live process")

	// ErrWrongState names an operation invoked from a manager FSM state
	// that does not permit it. No code path in this module returns it:
	// such calls (RunOnce before StartRunning) panic instead.
	ErrWrongState = errors.New("taskd: operation not valid in current state")

	// ErrSchemaVersion is returned when the state document on disk carries a
	// SchemaVersion this build does not understand.
	ErrSchemaVersion = errors.New("taskd: unsupported state schema version")
)
