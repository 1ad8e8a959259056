// Package ports defines the interfaces that connect the manager core
// (internal/app) to the external collaborators spec.md treats as opaque:
// the job engine, the event reactor, the state document store, and the
// admin RPC server.
//
// # Port Interfaces
//
//   - [Job]: a single job's lifecycle, as observed by the manager
//   - [EventManager]: the reactor primitive driving the main loop
//   - [StateStore]: persistence for the override state document
//   - [ManifestParser]: turns on-disk manifests into domain.Manifest
//
// The manager core depends only on these interfaces; internal/adapters
// supplies concrete implementations (a real process-backed job engine, a
// select-loop reactor, an atomic JSON file store, ...). This keeps the
// FSM and registry logic testable with fakes instead of real processes
// or sockets.
package ports
