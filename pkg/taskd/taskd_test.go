package taskd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTaskd_StartStop(t *testing.T) {
	dir := t.TempDir()
	tk, err := New(Config{StateDir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := tk.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := tk.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestTaskd_LoadAndList(t *testing.T) {
	dir := t.TempDir()
	jobsDir := filepath.Join(dir, "jobs")
	if err := os.MkdirAll(jobsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	manifest, _ := json.Marshal(map[string]any{
		"Label":   "sleeper",
		"Program": "/bin/sh",
		"ProgramArguments": []string{"-c", "sleep 5"},
	})
	if err := os.WriteFile(filepath.Join(jobsDir, "sleeper.json"), manifest, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tk, err := New(Config{StateDir: dir, LoadPaths: []string{jobsDir}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := tk.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer tk.Stop()

	var jobs []any
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := tk.Manager().List()
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) == 1 {
			jobs = append(jobs, got[0])
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(jobs) != 1 {
		t.Fatal("default manifest was never loaded")
	}
}

type trackingPlugin struct {
	name          string
	initialized   bool
	shutdownCalled bool
}

func (p *trackingPlugin) Name() string { return p.name }
func (p *trackingPlugin) Initialize(ctx context.Context, cfg PluginConfig) error {
	p.initialized = true
	return nil
}
func (p *trackingPlugin) Shutdown(ctx context.Context) error {
	p.shutdownCalled = true
	return nil
}

func TestTaskd_PluginLifecycle(t *testing.T) {
	dir := t.TempDir()
	p := &trackingPlugin{name: "tracker"}

	tk, err := New(Config{StateDir: dir}, WithPlugin(p))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := tk.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !p.initialized {
		t.Fatal("plugin was not initialized")
	}
	if err := tk.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !p.shutdownCalled {
		t.Fatal("plugin was not shut down")
	}
}
