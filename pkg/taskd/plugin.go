package taskd

import (
	"context"

	"github.com/lacewing-labs/taskd/pkg/log"
)

// Plugin is the facade's extension seam, grounded on the teacher's
// plugins/configwatcher pattern: Initialize is called once as the
// manager enters Running, Shutdown once as it leaves (in reverse
// registration order), matching the teacher's plugin lifecycle.
type Plugin interface {
	// Name identifies the plugin for logging.
	Name() string

	// Initialize starts the plugin's own background work, if any. ctx is
	// canceled when the Taskd instance stops.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown stops the plugin's background work and releases any
	// resources it holds.
	Shutdown(ctx context.Context) error
}

// PluginConfig is handed to every Plugin's Initialize call.
type PluginConfig struct {
	StateDir   string
	LoadPaths  []string
	SocketPath string
	Logger     log.Logger

	// LoadAll invokes the manager's loadAllManifests operation for a
	// single load path: every immediate entry of a directory, or the file
	// itself. (The "load" RPC op loads one manifest file only.) Plugins
	// that react to external
	// change (manifestwatcher, in particular) use this instead of being
	// handed the manager directly, so the plugin seam stays narrow.
	LoadAll func(path string, overrideDisabled, forceLoad bool) error
}
