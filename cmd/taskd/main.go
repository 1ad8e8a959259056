package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/lacewing-labs/taskd/internal/cliconfig"
	"github.com/lacewing-labs/taskd/pkg/log"
	"github.com/lacewing-labs/taskd/pkg/taskd"
	"github.com/lacewing-labs/taskd/plugins/manifestwatcher"
)

const helpDescription = `
Run and supervise per-domain background jobs described by manifest
files, the way launchd/relaunchd runs services: load, keep-alive,
graceful shutdown escalation, and an admin socket for control.

Docs: see the manifest and admin-socket reference in this repo.
`

var longHelp = strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  taskd --state-dir /var/lib/taskd --load-path /etc/taskd/jobs
  taskd --config $HOME/.taskd/config.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func zerologLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var loadPaths []string

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	root := &cobra.Command{
		Use:     "taskd",
		Short:   "Run and supervise per-domain background jobs",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if len(loadPaths) > 0 {
				cfg.LoadPaths = loadPaths
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			zl = zl.Level(zerologLevel(cfg.LogLevel))
			zl.Info().Interface("config", cfg).Msg("configuration")

			logger := log.NewZerologAdapterWithLogger(zl)

			t, err := taskd.New(taskd.Config{
				StateDir:  cfg.StateDir,
				LoadPaths: cfg.LoadPaths,
			},
				taskd.WithLogger(logger),
				manifestwatcher.WithManifestWatcher(manifestwatcher.DefaultConfig()),
			)
			if err != nil {
				return fmt.Errorf("create taskd: %w", err)
			}

			// Run blocks until the manager's own SIGINT/SIGTERM handling
			// (spec.md §4.7) has driven it from Running through
			// GracefulShutdown to Finished. No top-level signal.Notify
			// here: the event reactor already owns SIGINT/SIGTERM.
			if err := t.Run(); err != nil {
				return fmt.Errorf("run taskd: %w", err)
			}
			return nil
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.taskd/config.toml)")
	root.Flags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "state directory for state.json and rpc.sock")
	root.Flags().StringArrayVar(&loadPaths, "load-path", nil, "manifest file or directory to load at startup (repeatable)")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := root.Execute(); err != nil {
		zl.Error().Err(err).Msg("taskd")
		os.Exit(1)
	}
}
