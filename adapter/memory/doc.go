// Package memory provides an in-process queue client instrumented with
// xtrace. Not a production broker: it exists so the tracing seams (send,
// the three receive shapes, listener processing) can be exercised without
// external infrastructure, and as the reference for wiring real clients.
package memory
