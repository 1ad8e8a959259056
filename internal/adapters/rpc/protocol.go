package rpc

import "github.com/lacewing-labs/taskd/internal/domain"

// Request is the line-delimited JSON request shape accepted by Server,
// per SPEC_FULL.md §4.12. Only the fields relevant to Op are read.
type Request struct {
	Op string `json:"Op"`

	Path             string      `json:"Path,omitempty"`
	Label            domain.Label `json:"Label,omitempty"`
	OverrideDisabled bool        `json:"OverrideDisabled,omitempty"`
	ForceLoad        bool        `json:"ForceLoad,omitempty"`
	ForceUnload      bool        `json:"ForceUnload,omitempty"`
	Signal           string      `json:"Signal,omitempty"`
	Enabled          bool        `json:"Enabled,omitempty"`
}

// Response is the single line of JSON written back before the
// connection is closed.
type Response struct {
	OK    bool           `json:"OK"`
	Error string         `json:"Error,omitempty"`
	Jobs  []jobInfoWire  `json:"Jobs,omitempty"`
	Dump  string         `json:"Dump,omitempty"`
}

// jobInfoWire mirrors ports.JobInfo with string-friendly field order for
// the wire; kept separate from ports.JobInfo so adapters package changes
// don't silently change the protocol. PID is a string ("-" or a decimal
// PID, per spec §4.6/§6) rather than ports.JobInfo's int, since 0 is a
// valid-looking number but is not a valid-looking PID.
type jobInfoWire struct {
	Label          domain.Label `json:"Label"`
	PID            string       `json:"PID"`
	LastExitStatus int          `json:"LastExitStatus"`
	State          string       `json:"State"`
}
