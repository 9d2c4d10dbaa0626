// Package tracing is a thin wrapper around OpenTelemetry so the rest of the
// code-base can open and close spans without depending on the upstream API
// directly. Applications that do not require tracing simply never call Init;
// spans are then no-ops.
package tracing
