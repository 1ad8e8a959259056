// Package rpc implements the admin RPC server described in SPEC_FULL.md
// §4.12: a Unix-domain stream socket speaking line-delimited JSON
// requests and responses, one request per connection, dispatched into
// ports.AdminAPI. Grounded on the teacher's synchronous request-response
// shape, adapted from its HTTP/multipart transport to a local socket
// protocol since taskd has no remote service to talk to.
package rpc
