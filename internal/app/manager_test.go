package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lacewing-labs/taskd/internal/domain"
)

func zero() *time.Duration {
	d := time.Duration(0)
	return &d
}

func TestEmptyDomain_StartStop(t *testing.T) {
	m, _, _, _, _ := newTestManager()

	if err := m.StartRunning(); err != nil {
		t.Fatalf("StartRunning: %v", err)
	}
	if m.State() != domain.Running {
		t.Fatalf("state = %v, want Running", m.State())
	}

	more, err := m.RunOnce(zero())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if !more {
		t.Fatal("RunOnce returned false while Running")
	}
	if m.State() != domain.Running {
		t.Fatalf("state = %v, want Running", m.State())
	}

	if err := m.StopRunning(); err != nil {
		t.Fatalf("StopRunning: %v", err)
	}
	if m.State() != domain.GracefulShutdown {
		t.Fatalf("state = %v, want GracefulShutdown", m.State())
	}

	more, err = m.RunOnce(nil)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if more {
		t.Fatal("RunOnce returned true after AllJobsExited with no jobs")
	}
	if m.State() != domain.Finished {
		t.Fatalf("state = %v, want Finished", m.State())
	}
}

func TestLoad_DisabledManifest_ForceLoad(t *testing.T) {
	m, _, factory, _, parser := newTestManager()
	manifest := domain.Manifest{Label: "a", Disabled: true}
	parser.byPath["a.json"] = manifest

	if err := m.Load("a.json", false, false); err == nil {
		t.Fatal("Load with disabled manifest and no forceLoad should fail")
	}
	if len(factory.built) != 0 {
		t.Fatalf("built %d jobs, want 0", len(factory.built))
	}

	if err := m.Load("a.json", false, true); err != nil {
		t.Fatalf("Load with forceLoad: %v", err)
	}
	if _, ok := m.pending["a"]; !ok {
		t.Fatal("label a not in pending after forceLoad")
	}
}

func TestLoad_OverrideDisabled_Persists(t *testing.T) {
	// manifest.Disabled is always the first gate checked (spec §4.2's
	// decision table, row 3): with overrideDisabled=false and
	// forceLoad=false, a manifest-disabled job is never loaded regardless
	// of any persisted override. The only restart-safe re-enable path the
	// table supports is a state.Enabled=false→true flip on a manifest
	// that is not itself Disabled, exercised here.
	m, _, _, store, parser := newTestManager()
	manifest := domain.Manifest{Label: "b", Disabled: false}
	parser.byPath["b.json"] = manifest

	if err := m.setOverride("b", false); err != nil {
		t.Fatalf("setOverride: %v", err)
	}
	if err := m.Load("b.json", false, false); !errors.Is(err, domain.ErrDisabled) {
		t.Fatalf("Load with disabling override: err = %v, want ErrDisabled", err)
	}

	if err := m.Load("b.json", true, false); err != nil {
		t.Fatalf("Load with overrideDisabled: %v", err)
	}
	doc, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	ov, ok := doc.Overrides["b"]
	if !ok || !ov.Enabled {
		t.Fatalf("override for b = %+v, want Enabled=true present", ov)
	}

	// A fresh manager sharing the same store sees the gate pass via the
	// persisted state, since the manifest itself is not Disabled.
	m2 := New(domain.NewDomain("/tmp/taskd-test", nil), store, newFakeEventManager(), newFakeJobFactory(), parser, m.logger)
	if err := m2.Load("b.json", false, false); err != nil {
		t.Fatalf("Load after restart: %v", err)
	}
	if _, ok := m2.pending["b"]; !ok {
		t.Fatal("label b not pending on second manager")
	}
}

func TestLoad_DuplicateLabel(t *testing.T) {
	m, _, _, _, parser := newTestManager()
	parser.byPath["c1.json"] = domain.Manifest{Label: "c"}
	parser.byPath["c2.json"] = domain.Manifest{Label: "c"}

	if err := m.Load("c1.json", false, false); err != nil {
		t.Fatalf("first Load: %v", err)
	}
	if err := m.Load("c2.json", false, false); err == nil {
		t.Fatal("second Load with duplicate label should fail")
	}

	list, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("List returned %d entries, want 1", len(list))
	}
}

func TestLoad_RefusedDuringShutdown(t *testing.T) {
	m, _, _, _, parser := newTestManager()
	parser.byPath["x.json"] = domain.Manifest{Label: "x"}
	parser.byPath["y.json"] = domain.Manifest{Label: "y"}

	if err := m.StartRunning(); err != nil {
		t.Fatalf("StartRunning: %v", err)
	}
	if err := m.StopRunning(); err != nil {
		t.Fatalf("StopRunning: %v", err)
	}
	if m.State() != domain.GracefulShutdown {
		t.Fatalf("state = %v, want GracefulShutdown", m.State())
	}

	if err := m.Load("x.json", false, false); err == nil {
		t.Fatal("Load during GracefulShutdown should fail")
	}
}

func TestStartRequested_PromotesPendingOnly(t *testing.T) {
	m, _, factory, _, parser := newTestManager()
	parser.byPath["p.json"] = domain.Manifest{Label: "p"}

	if err := m.StartRunning(); err != nil { // Unconfigured -> Running, nothing pending
		t.Fatalf("StartRunning: %v", err)
	}
	if err := m.Load("p.json", false, false); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := m.active["p"]; ok {
		t.Fatal("job promoted to active before a second StartRequested")
	}

	if err := m.StartRunning(); err != nil { // Running -> Running, promotes pending
		t.Fatalf("second StartRunning: %v", err)
	}
	if _, ok := m.active["p"]; !ok {
		t.Fatal("job not promoted to active after second StartRequested")
	}
	if factory.built["p"].bootstrapCalls != 1 {
		t.Fatalf("bootstrapCalls = %d, want 1", factory.built["p"].bootstrapCalls)
	}
}

func TestGracefulShutdown_DrainsOnDeleteJob(t *testing.T) {
	m, evmgr, factory, _, parser := newTestManager()
	parser.byPath["q.json"] = domain.Manifest{Label: "q"}

	mustFire(t, m, "StartRunning")
	if err := m.Load("q.json", false, false); err != nil {
		t.Fatalf("Load: %v", err)
	}
	mustFire(t, m, "StartRunning") // promotes q to active

	if err := m.StopRunning(); err != nil {
		t.Fatalf("StopRunning: %v", err)
	}
	if m.State() != domain.GracefulShutdown {
		t.Fatalf("state = %v, want GracefulShutdown", m.State())
	}
	if factory.built["q"].unloadCalls != 1 {
		t.Fatalf("unloadCalls = %d, want 1", factory.built["q"].unloadCalls)
	}

	// Job hasn't reached Unloaded yet: draining should keep polling.
	more, err := m.RunOnce(zero())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if !more {
		t.Fatal("RunOnce returned false while job still active")
	}
	if m.State() != domain.GracefulShutdown {
		t.Fatalf("state = %v, want still GracefulShutdown", m.State())
	}

	// The job engine posts delete_job once its own FSM reaches Unloaded.
	evmgr.PostIPC(deleteJobIPC, "q")
	if _, ok := m.active["q"]; ok {
		t.Fatal("job q still in active registry after delete_job")
	}

	more, err = m.RunOnce(nil)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if more {
		t.Fatal("RunOnce returned true after drain completed")
	}
	if m.State() != domain.Finished {
		t.Fatalf("state = %v, want Finished", m.State())
	}
}

func TestSignalEscalation_ForcesUnload(t *testing.T) {
	m, evmgr, factory, _, parser := newTestManager()
	parser.byPath["r.json"] = domain.Manifest{Label: "r"}

	mustFire(t, m, "StartRunning")
	if err := m.Load("r.json", false, false); err != nil {
		t.Fatalf("Load: %v", err)
	}
	mustFire(t, m, "StartRunning")

	evmgr.fireSignal("interrupt", sigintStub{})
	if m.State() != domain.GracefulShutdown {
		t.Fatalf("state = %v, want GracefulShutdown", m.State())
	}
	if _, ok := m.active["r"]; !ok {
		t.Fatal("job r unexpectedly evicted before escalation")
	}

	// Second SIGINT while still GracefulShutdown escalates.
	evmgr.fireSignal("interrupt", sigintStub{})
	if len(m.active) != 0 {
		t.Fatalf("active registry has %d entries after escalation, want 0", len(m.active))
	}
	if factory.built["r"].forceUnloadCalls != 1 {
		t.Fatalf("forceUnloadCalls = %d, want 1", factory.built["r"].forceUnloadCalls)
	}
	if m.State() != domain.Finished {
		t.Fatalf("state = %v, want Finished", m.State())
	}
}

func TestClose_NoChildrenRemain(t *testing.T) {
	m, evmgr, factory, _, parser := newTestManager()
	parser.byPath["s.json"] = domain.Manifest{Label: "s"}

	mustFire(t, m, "StartRunning")
	if err := m.Load("s.json", false, false); err != nil {
		t.Fatalf("Load: %v", err)
	}
	mustFire(t, m, "StartRunning")

	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(m.active) != 0 || len(m.pending) != 0 {
		t.Fatal("registry not empty after Close")
	}
	if factory.built["s"].forceUnloadCalls != 1 {
		t.Fatal("Close did not force-unload the active job")
	}
	if !evmgr.closed {
		t.Fatal("Close did not close the event manager")
	}
}

func mustFire(t *testing.T, m *Manager, label string) {
	t.Helper()
	if err := m.StartRunning(); err != nil {
		t.Fatalf("%s: %v", label, err)
	}
}

// sigintStub satisfies os.Signal for tests without depending on a real
// platform signal value.
type sigintStub struct{}

func (sigintStub) String() string { return "interrupt" }
func (sigintStub) Signal()        {}
