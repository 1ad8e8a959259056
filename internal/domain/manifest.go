package domain

import "encoding/json"

// Manifest is the parsed form of a job definition. The manager core relies
// only on Label and Disabled (spec.md §3); the remaining fields exist so
// the job engine (internal/adapters/jobproc) can actually fork/exec the
// program they describe.
type Manifest struct {
	Label Label `json:"Label"`

	// Disabled is the author's own opinion on whether this job should load.
	// It is gated by the state-file override and the call-site forceLoad
	// flag during load (spec.md §4.2).
	Disabled bool `json:"Disabled,omitempty"`

	Program          string            `json:"Program,omitempty"`
	ProgramArguments []string          `json:"ProgramArguments,omitempty"`
	WorkingDirectory string            `json:"WorkingDirectory,omitempty"`
	EnvironmentVariables map[string]string `json:"EnvironmentVariables,omitempty"`

	// KeepAlive restarts the job whenever its process exits, as long as an
	// unload has not been requested.
	KeepAlive bool `json:"KeepAlive,omitempty"`

	StandardOutPath   string `json:"StandardOutPath,omitempty"`
	StandardErrorPath string `json:"StandardErrorPath,omitempty"`
}

// UnmarshalJSON rejects a manifest with no Label, mirroring the original
// source's requirement that every manifest carry a label.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	type raw Manifest
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*m = Manifest(r)
	return m.Label.Validate()
}
