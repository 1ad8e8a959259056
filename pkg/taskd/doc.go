// Package taskd provides an embeddable per-domain service manager.
// Construct one with New, then Run it — Run blocks until the manager's
// own signal handling or a call to Stop drives it to the Finished state.
//
// # Basic usage
//
//	t, err := taskd.New(taskd.Config{
//	    StateDir:  "/var/lib/taskd",
//	    LoadPaths: []string{"/etc/taskd/jobs"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := t.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Plugins
//
// Optional functionality (manifest hot-reload, in particular) is wired
// in with WithPlugin rather than built into the core:
//
//	import "github.com/lacewing-labs/taskd/plugins/manifestwatcher"
//
//	t, err := taskd.New(cfg, manifestwatcher.WithManifestWatcher(manifestwatcher.DefaultConfig()))
package taskd
