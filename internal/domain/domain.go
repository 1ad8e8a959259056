package domain

import "path/filepath"

// Domain bundles the state directory and the ordered list of load paths a
// manager operates under. It is immutable after construction.
type Domain struct {
	statedir  string
	loadPaths []string
}

// NewDomain constructs a Domain. statedir must be an absolute path;
// loadPaths is an ordered list of directories or files scanned at startup.
func NewDomain(statedir string, loadPaths []string) Domain {
	paths := make([]string, len(loadPaths))
	copy(paths, loadPaths)
	return Domain{statedir: statedir, loadPaths: paths}
}

// StateDir returns the absolute path of the manager's state directory.
func (d Domain) StateDir() string { return d.statedir }

// LoadPaths returns the ordered list of manifest load paths.
func (d Domain) LoadPaths() []string {
	paths := make([]string, len(d.loadPaths))
	copy(paths, d.loadPaths)
	return paths
}

// StateFilePath returns <statedir>/state.json.
func (d Domain) StateFilePath() string {
	return filepath.Join(d.statedir, "state.json")
}

// SocketPath returns <statedir>/rpc.sock.
func (d Domain) SocketPath() string {
	return filepath.Join(d.statedir, "rpc.sock")
}

func (d Domain) String() string {
	return d.statedir
}
