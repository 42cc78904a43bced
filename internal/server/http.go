package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// HTTPServerConfig configures the streamable HTTP transport.
type HTTPServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// BaseURL is the externally visible URL of the server. HTTP is
	// only permitted for loopback addresses.
	BaseURL string

	// Identity is the forwarded-identity middleware configuration.
	Identity IdentityMiddlewareConfig

	// Health, when set, registers health endpoints on the same mux.
	Health *HealthChecker
}

// HTTPServer serves the MCP protocol over streamable HTTP with
// forwarded-identity authentication.
type HTTPServer struct {
	mcpServer  *mcpserver.MCPServer
	config     HTTPServerConfig
	httpServer *http.Server
}

// NewHTTPServer wraps an MCP server for the streamable HTTP
// transport. The underlying http.Server is built here so a Shutdown
// racing a concurrent Start always has a server to drain.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, config HTTPServerConfig) (*HTTPServer, error) {
	if config.BaseURL != "" {
		if err := validateHTTPSRequirement(config.BaseURL); err != nil {
			return nil, err
		}
	}

	mux := http.NewServeMux()

	streamable := mcpserver.NewStreamableHTTPServer(mcpServer,
		mcpserver.WithEndpointPath("/mcp"),
	)
	identity := IdentityMiddleware(config.Identity)
	mux.Handle("/mcp", identity(streamable))

	if config.Health != nil {
		config.Health.RegisterHealthEndpoints(mux)
	}

	return &HTTPServer{
		mcpServer: mcpServer,
		config:    config,
		httpServer: &http.Server{
			Addr:              config.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}, nil
}

// Start listens and serves until the listener fails or Shutdown is
// called.
func (s *HTTPServer) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// validateHTTPSRequirement allows HTTP only for loopback addresses
// (localhost, 127.0.0.1, ::1).
func validateHTTPSRequirement(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("HTTPS is required for non-loopback addresses (got: %s)", baseURL)
		}
		return nil
	default:
		return fmt.Errorf("invalid URL scheme: %s. Must be http (loopback only) or https", u.Scheme)
	}
}
