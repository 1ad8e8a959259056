// Package jobproc implements ports.Job and ports.JobFactory: the job
// engine the manager core treats as an opaque collaborator (spec.md
// §1). Each Job fork/execs one OS process, tracks its own small FSM
// (Loaded, Running, Exited, Unloaded), and reports process exit back to
// the event reactor from a background goroutine.
//
// Grounded on the teacher's worker-lifecycle pattern
// (pkg/lifecycle/manager.go's AddWorker/WorkerDone) adapted per-job, and
// on the process-spawning shape of a sibling pack repository's job
// executor (3leaps-gonimbus's pkg/jobregistry/executor.go: os/exec with
// redirected stdout/stderr log files and an inherited environment).
package jobproc
