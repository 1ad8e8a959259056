// Package domain contains the core domain entities and value objects for taskd.
//
// This package represents the innermost layer of the architecture. It has no
// dependencies on infrastructure concerns (sockets, the filesystem, logging)
// and contains only the data model a per-domain service manager reasons
// about: labels, manifests, jobs, the override state document, and the
// manager's own lifecycle states.
//
// # Entities
//
//   - [Label]: the unique, opaque identifier of a job
//   - [Manifest]: the parsed form of a job definition
//   - [Domain]: the state directory and load paths a manager operates under
//   - [StateDocument]: the persisted enable/disable override document
//   - [ManagerState] / [Trigger]: the manager's own four-state FSM vocabulary
//
// Domain entities are free of infrastructure dependencies and are testable
// without mocks or external systems.
package domain
