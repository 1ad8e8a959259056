package app

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/lacewing-labs/taskd/internal/domain"
	"github.com/lacewing-labs/taskd/internal/ports"
	"github.com/lacewing-labs/taskd/pkg/log"
)

// fakeEventManager is a reactor stand-in that runs everything
// synchronously on the calling goroutine. It is sufficient for testing
// the Manager's FSM and registry logic without a real select loop.
type fakeEventManager struct {
	signals     map[string]func(os.Signal)
	ipcHandlers map[string]func(string)
	listeners   []net.Listener
	closed      bool
}

func newFakeEventManager() *fakeEventManager {
	return &fakeEventManager{
		signals:     make(map[string]func(os.Signal)),
		ipcHandlers: make(map[string]func(string)),
	}
}

func (f *fakeEventManager) AddSignal(sig os.Signal, handler func(os.Signal)) {
	f.signals[sig.String()] = handler
}

func (f *fakeEventManager) AddTimer(d time.Duration, handler func()) {}

func (f *fakeEventManager) AddIPCMethod(name string, handler func(arg string)) {
	f.ipcHandlers[name] = handler
}

func (f *fakeEventManager) PostIPC(name string, arg string) {
	if h, ok := f.ipcHandlers[name]; ok {
		h(arg)
	}
}

func (f *fakeEventManager) AddConnHandler(l net.Listener, handler func(net.Conn)) {
	f.listeners = append(f.listeners, l)
}

func (f *fakeEventManager) Post(fn func()) {
	fn()
}

func (f *fakeEventManager) WaitForEvent(timeout *time.Duration) error {
	return nil
}

func (f *fakeEventManager) Close() error {
	f.closed = true
	return nil
}

// fireSignal lets a test simulate signal delivery the way the reactor
// would dispatch it on the main loop.
func (f *fakeEventManager) fireSignal(name string, sig os.Signal) {
	if h, ok := f.signals[name]; ok {
		h(sig)
	}
}

// fakeJob is a Job stand-in that records the calls the Manager core
// makes on it without doing any real process work.
type fakeJob struct {
	label            domain.Label
	manifest         domain.Manifest
	pid              int
	lastExit         int
	state            domain.JobState
	unloadRequested  bool
	bootstrapCalls   int
	unloadCalls      int
	forceUnloadCalls int
	killCalls        []int
	killResult       bool
}

func newFakeJob(m domain.Manifest) *fakeJob {
	return &fakeJob{label: m.Label, manifest: m, state: domain.JobLoaded, killResult: true}
}

func (j *fakeJob) Label() domain.Label            { return j.label }
func (j *fakeJob) Manifest() domain.Manifest      { return j.manifest }
func (j *fakeJob) PID() int                       { return j.pid }
func (j *fakeJob) LastExitStatus() int            { return j.lastExit }
func (j *fakeJob) FSMState() domain.JobState      { return j.state }
func (j *fakeJob) UnloadRequested() bool          { return j.unloadRequested }

func (j *fakeJob) Bootstrap() {
	j.bootstrapCalls++
	j.state = domain.JobRunning
	j.pid = 4242
}

func (j *fakeJob) UnloadJob(force bool) bool {
	if j.unloadRequested {
		return false
	}
	j.unloadCalls++
	j.unloadRequested = true
	j.state = domain.JobUnloaded
	j.pid = 0
	return true
}

func (j *fakeJob) ForceUnloadJob() {
	j.forceUnloadCalls++
	j.unloadRequested = true
	j.state = domain.JobUnloaded
	j.pid = 0
}

func (j *fakeJob) Kill(signum int) bool {
	j.killCalls = append(j.killCalls, signum)
	return j.killResult
}

func (j *fakeJob) Dump() string {
	return "label=" + j.label.String()
}

// fakeJobFactory builds fakeJobs and remembers every one it built, so
// tests can reach back in and manipulate a job's state (e.g. simulate
// a process exit) after it has been loaded.
type fakeJobFactory struct {
	built map[domain.Label]*fakeJob
}

func newFakeJobFactory() *fakeJobFactory {
	return &fakeJobFactory{built: make(map[domain.Label]*fakeJob)}
}

func (f *fakeJobFactory) NewJob(manifest domain.Manifest, source string, eventmgr ports.EventManager, store ports.StateStore) ports.Job {
	j := newFakeJob(manifest)
	f.built[manifest.Label] = j
	return j
}

// fakeStateStore is an in-memory ports.StateStore.
type fakeStateStore struct {
	doc domain.StateDocument
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{doc: domain.NewStateDocument()}
}

func (s *fakeStateStore) Get(ctx context.Context) (domain.StateDocument, error) {
	return s.doc.Clone(), nil
}

func (s *fakeStateStore) Set(ctx context.Context, doc domain.StateDocument) error {
	s.doc = doc.Clone()
	return nil
}

func (s *fakeStateStore) Clear(ctx context.Context) error {
	s.doc = domain.NewStateDocument()
	return nil
}

// fakeParser turns a path directly into a manifest keyed by the path
// string, avoiding real file I/O in tests that only care about the
// Manager's own pipeline logic.
type fakeParser struct {
	byPath map[string]domain.Manifest
}

func newFakeParser() *fakeParser {
	return &fakeParser{byPath: make(map[string]domain.Manifest)}
}

func (p *fakeParser) ParsePath(path string) (domain.Manifest, error) {
	m, ok := p.byPath[path]
	if !ok {
		return domain.Manifest{}, domain.ErrNotFound
	}
	return m, nil
}

func (p *fakeParser) ParseJSON(data []byte, origin string) (domain.Manifest, error) {
	m, ok := p.byPath[origin]
	if !ok {
		return domain.Manifest{}, domain.ErrInvalidManifest
	}
	return m, nil
}

// fakeListener is a net.Listener stand-in whose Accept never returns,
// since fakeEventManager's AddConnHandler never actually calls it.
type fakeListener struct {
	addr net.Addr
}

func (l *fakeListener) Accept() (net.Conn, error) { select {} }
func (l *fakeListener) Close() error              { return nil }
func (l *fakeListener) Addr() net.Addr             { return l.addr }

func newTestManager() (*Manager, *fakeEventManager, *fakeJobFactory, *fakeStateStore, *fakeParser) {
	evmgr := newFakeEventManager()
	factory := newFakeJobFactory()
	store := newFakeStateStore()
	parser := newFakeParser()
	d := domain.NewDomain("/tmp/taskd-test", nil)
	m := New(d, store, evmgr, factory, parser, log.NewNoopLogger())
	m.listenFunc = func(path string) (net.Listener, error) { return &fakeListener{}, nil }
	return m, evmgr, factory, store, parser
}
