package jobproc

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/lacewing-labs/taskd/internal/domain"
	"github.com/lacewing-labs/taskd/internal/ports"
	"github.com/lacewing-labs/taskd/pkg/log"
)

// Factory implements ports.JobFactory.
type Factory struct {
	logger log.Logger
}

var _ ports.JobFactory = (*Factory)(nil)

// NewFactory constructs a Factory. logger is shared by every Job it
// builds.
func NewFactory(logger log.Logger) *Factory {
	return &Factory{logger: logger}
}

// NewJob implements ports.JobFactory.
func (f *Factory) NewJob(manifest domain.Manifest, source string, eventmgr ports.EventManager, store ports.StateStore) ports.Job {
	return &Job{
		manifest: manifest,
		source:   source,
		eventmgr: eventmgr,
		store:    store,
		logger:   f.logger,
		state:    domain.JobLoaded,
	}
}

// Job implements ports.Job. Every field is touched only from the
// goroutine currently dispatching an event on the manager's reactor:
// Bootstrap/UnloadJob/Kill/ForceUnloadJob are called by the Manager from
// the main loop, and the process-exit waiter reports back through
// eventmgr.Post rather than mutating Job state from its own goroutine.
type Job struct {
	manifest domain.Manifest
	source   string
	eventmgr ports.EventManager
	store    ports.StateStore
	logger   log.Logger

	state            domain.JobState
	cmd              *exec.Cmd
	pid              int
	lastExitStatus   int
	unloadRequested  bool
	stdout, stderr   *os.File
}

var _ ports.Job = (*Job)(nil)

func (j *Job) Label() domain.Label            { return j.manifest.Label }
func (j *Job) Manifest() domain.Manifest      { return j.manifest }
func (j *Job) PID() int                       { return j.pid }
func (j *Job) LastExitStatus() int            { return j.lastExitStatus }
func (j *Job) FSMState() domain.JobState      { return j.state }
func (j *Job) UnloadRequested() bool          { return j.unloadRequested }

// Bootstrap fires the Bootstrap trigger (Loaded→Running), forking the
// process for the first time.
func (j *Job) Bootstrap() {
	j.start()
}

func (j *Job) start() {
	cmd := exec.Command(j.manifest.Program, j.manifest.ProgramArguments...)
	if j.manifest.WorkingDirectory != "" {
		cmd.Dir = j.manifest.WorkingDirectory
	}
	cmd.Env = buildEnv(j.manifest.EnvironmentVariables)

	if out, err := openLogFile(j.manifest.StandardOutPath); err != nil {
		j.logger.Warn("failed to open stdout log", log.String("label", j.manifest.Label.String()), log.Err(err))
	} else if out != nil {
		j.stdout = out
		cmd.Stdout = out
	}
	if errFile, err := openLogFile(j.manifest.StandardErrorPath); err != nil {
		j.logger.Warn("failed to open stderr log", log.String("label", j.manifest.Label.String()), log.Err(err))
	} else if errFile != nil {
		j.stderr = errFile
		cmd.Stderr = errFile
	}

	if err := cmd.Start(); err != nil {
		j.logger.Error("failed to start job", log.String("label", j.manifest.Label.String()), log.Err(err))
		j.closeLogFiles()
		j.state = domain.JobExited
		j.lastExitStatus = -1
		return
	}

	j.cmd = cmd
	j.pid = cmd.Process.Pid
	j.state = domain.JobRunning
	j.logger.Info("job started", log.String("label", j.manifest.Label.String()), log.Int("pid", j.pid))
	go j.wait()
}

// wait runs on its own goroutine for the lifetime of one process. It
// never touches Job state directly; it hands the exit status back to
// the event reactor, which dispatches handleExit on the main loop
// (SPEC_FULL.md §4.9).
func (j *Job) wait() {
	cmd := j.cmd
	err := cmd.Wait()
	status := exitStatus(cmd, err)
	j.eventmgr.Post(func() { j.handleExit(status) })
}

func (j *Job) handleExit(status int) {
	j.closeLogFiles()
	j.lastExitStatus = status
	j.pid = 0
	j.state = domain.JobExited
	j.logger.Info("job exited", log.String("label", j.manifest.Label.String()), log.Int("status", status))

	if j.unloadRequested {
		j.finalizeUnload()
		return
	}
	if j.manifest.KeepAlive {
		j.start()
	}
}

// UnloadJob requests that the job stop. Returns false if an unload was
// already requested.
func (j *Job) UnloadJob(force bool) bool {
	if j.unloadRequested {
		return false
	}
	j.unloadRequested = true

	if j.state != domain.JobRunning {
		j.finalizeUnload()
		return true
	}

	if force {
		j.killProcess(syscall.SIGKILL)
	} else {
		j.killProcess(syscall.SIGTERM)
	}
	// handleExit finalizes the unload once the wait goroutine reaps it.
	return true
}

// ForceUnloadJob synchronously destroys the process without waiting for
// the wait goroutine to reap it, for shutdown escalation and Close. The
// caller is responsible for evicting the job from its own registry; no
// delete_job message is posted here.
func (j *Job) ForceUnloadJob() {
	j.unloadRequested = true
	if j.state == domain.JobRunning {
		j.killProcess(syscall.SIGKILL)
	}
	j.closeLogFiles()
	j.state = domain.JobUnloaded
	j.pid = 0
}

func (j *Job) finalizeUnload() {
	j.state = domain.JobUnloaded
	j.eventmgr.PostIPC("delete_job", string(j.manifest.Label))
}

// Kill implements ports.Job.
func (j *Job) Kill(signum int) bool {
	if j.state != domain.JobRunning || j.cmd == nil || j.cmd.Process == nil {
		return false
	}
	return j.cmd.Process.Signal(syscall.Signal(signum)) == nil
}

func (j *Job) killProcess(sig syscall.Signal) {
	if j.cmd != nil && j.cmd.Process != nil {
		if err := j.cmd.Process.Signal(sig); err != nil {
			j.logger.Warn("failed to signal job process", log.String("label", j.manifest.Label.String()), log.Err(err))
		}
	}
}

func (j *Job) closeLogFiles() {
	if j.stdout != nil {
		_ = j.stdout.Close()
		j.stdout = nil
	}
	if j.stderr != nil {
		_ = j.stderr.Close()
		j.stderr = nil
	}
}

// Dump implements ports.Job.
func (j *Job) Dump() string {
	return fmt.Sprintf("label=%s source=%s state=%s pid=%d lastExitStatus=%d unloadRequested=%t",
		j.manifest.Label, j.source, j.state, j.pid, j.lastExitStatus, j.unloadRequested)
}
