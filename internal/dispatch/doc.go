// Package dispatch routes tool calls from the MCP transport to
// registered handlers. It owns the per-call pipeline: envelope
// validation, credential resolution, handler execution with panic
// recovery, and classification of failures into stable error codes.
//
// Handler failures never surface as transport errors; they become
// error-flagged tool results so callers always receive a response.
package dispatch
