// Package server wires the admin tool registry, credential manager,
// and transports into a running MCP server.
//
// # Key Components
//
// ServerContext holds the shared dependencies of a server instance:
// the credential manager, the account roster, the tool registry with
// its dispatcher, and the Google API client cache. It owns the
// lifecycle; Shutdown cancels the context and flushes
// instrumentation.
//
// HTTPServer serves the streamable HTTP transport at /mcp. Requests
// pass through IdentityMiddleware, which resolves the bearer token to
// a Google identity via the userinfo endpoint, stores any forwarded
// Google tokens in the session token store, and attaches the identity
// to the request context. The dispatcher then routes tool calls to
// the authenticated user regardless of the user_id argument.
//
// MetricsServer exposes Prometheus metrics on a dedicated listener,
// and HealthChecker provides liveness and readiness endpoints for
// container orchestration.
//
// # Security
//
// The HTTP transport requires HTTPS for non-loopback base URLs.
// Bearer tokens that fail userinfo validation are rejected with 401
// and a WWW-Authenticate header. Forwarded tokens are held only in
// the in-memory session store and never written to disk.
package server
