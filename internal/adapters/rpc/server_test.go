package rpc

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"

	"github.com/lacewing-labs/taskd/internal/domain"
	"github.com/lacewing-labs/taskd/internal/ports"
	"github.com/lacewing-labs/taskd/pkg/log"
)

type fakeAdminAPI struct {
	loadPath             string
	loadOverrideDisabled bool
	loadForceLoad        bool
	loadErr              error

	unloadLabel domain.Label
	unloadForce bool
	unloadErr   error

	jobs    []ports.JobInfo
	listErr error

	killLabel  domain.Label
	killSignum int
	killErr    error

	enableLabel   domain.Label
	enableEnabled bool
	enableErr     error

	dumpLabel domain.Label
	dumpText  string
	dumpErr   error
}

func (f *fakeAdminAPI) Load(path string, overrideDisabled, forceLoad bool) error {
	f.loadPath, f.loadOverrideDisabled, f.loadForceLoad = path, overrideDisabled, forceLoad
	return f.loadErr
}
func (f *fakeAdminAPI) Unload(label domain.Label, force bool) error {
	f.unloadLabel, f.unloadForce = label, force
	return f.unloadErr
}
func (f *fakeAdminAPI) List() ([]ports.JobInfo, error) { return f.jobs, f.listErr }
func (f *fakeAdminAPI) Kill(label domain.Label, signum int) error {
	f.killLabel, f.killSignum = label, signum
	return f.killErr
}
func (f *fakeAdminAPI) Enable(label domain.Label, enabled bool) error {
	f.enableLabel, f.enableEnabled = label, enabled
	return f.enableErr
}
func (f *fakeAdminAPI) Dump(label domain.Label) (string, error) {
	f.dumpLabel = label
	return f.dumpText, f.dumpErr
}

func roundTrip(t *testing.T, api ports.AdminAPI, req Request) Response {
	t.Helper()
	server, client := net.Pipe()
	s := NewServer(api, log.NewNoopLogger())

	go s.HandleConn(server)

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	data = append(data, '\n')
	if _, err := client.Write(data); err != nil {
		t.Fatalf("write request: %v", err)
	}

	line, err := bufio.NewReader(client).ReadBytes('\n')
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return resp
}

func TestServer_Load(t *testing.T) {
	api := &fakeAdminAPI{}
	resp := roundTrip(t, api, Request{Op: "load", Path: "/etc/taskd/jobs/a.json", ForceLoad: true})
	if !resp.OK {
		t.Fatalf("resp = %+v, want OK", resp)
	}
	if api.loadPath != "/etc/taskd/jobs/a.json" || !api.loadForceLoad {
		t.Fatalf("api recorded %+v", api)
	}
}

func TestServer_List(t *testing.T) {
	api := &fakeAdminAPI{jobs: []ports.JobInfo{
		{Label: "a", PID: 123, State: domain.JobRunning},
	}}
	resp := roundTrip(t, api, Request{Op: "list"})
	if !resp.OK || len(resp.Jobs) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Jobs[0].Label != "a" || resp.Jobs[0].PID != "123" || resp.Jobs[0].State != "running" {
		t.Fatalf("job = %+v", resp.Jobs[0])
	}
}

func TestServer_Kill_ResolvesSignalName(t *testing.T) {
	api := &fakeAdminAPI{}
	resp := roundTrip(t, api, Request{Op: "kill", Label: "a", Signal: "SIGHUP"})
	if !resp.OK {
		t.Fatalf("resp = %+v", resp)
	}
	if api.killLabel != "a" || api.killSignum != 1 {
		t.Fatalf("api recorded %+v", api)
	}
}

func TestServer_Kill_UnknownSignal(t *testing.T) {
	api := &fakeAdminAPI{}
	resp := roundTrip(t, api, Request{Op: "kill", Label: "a", Signal: "SIGBOGUS"})
	if resp.OK {
		t.Fatal("expected failure for unknown signal")
	}
}

func TestServer_UnknownOp(t *testing.T) {
	api := &fakeAdminAPI{}
	resp := roundTrip(t, api, Request{Op: "frobnicate"})
	if resp.OK {
		t.Fatal("expected failure for unknown op")
	}
}

func TestServer_Enable(t *testing.T) {
	api := &fakeAdminAPI{}
	resp := roundTrip(t, api, Request{Op: "enable", Label: "a", Enabled: true})
	if !resp.OK || !api.enableEnabled || api.enableLabel != "a" {
		t.Fatalf("resp = %+v, api = %+v", resp, api)
	}
}

func TestServer_Dump(t *testing.T) {
	api := &fakeAdminAPI{dumpText: "label=a state=running"}
	resp := roundTrip(t, api, Request{Op: "dump", Label: "a"})
	if !resp.OK || resp.Dump != "label=a state=running" {
		t.Fatalf("resp = %+v", resp)
	}
}
