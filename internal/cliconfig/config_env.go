package cliconfig

import "os"

// ApplyEnvConfig applies TASKD_-prefixed environment variables to cfg,
// respecting flags that have already been explicitly set (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("state-dir", os.Getenv("TASKD_STATE_DIR"), &cfg.StateDir)
	s.setString("log-level", os.Getenv("TASKD_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("socket-path", os.Getenv("TASKD_SOCKET_PATH"), &cfg.SocketPath)

	if v := os.Getenv("TASKD_LOAD_PATHS"); v != "" {
		s.setStringSlice("load-path", splitPathList(v), &cfg.LoadPaths)
	}

	return nil
}

// splitPathList splits a colon-delimited list of paths, the same
// convention as PATH, dropping empty segments.
func splitPathList(v string) []string {
	var paths []string
	start := 0
	for i := 0; i <= len(v); i++ {
		if i == len(v) || v[i] == ':' {
			if i > start {
				paths = append(paths, v[start:i])
			}
			start = i + 1
		}
	}
	return paths
}
