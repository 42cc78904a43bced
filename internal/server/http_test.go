package server

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

func newTestHTTPServer(t *testing.T, config HTTPServerConfig) *HTTPServer {
	t.Helper()
	mcpSrv := mcpserver.NewMCPServer("test-server", "0.0.0")
	server, err := NewHTTPServer(mcpSrv, config)
	if err != nil {
		t.Fatalf("NewHTTPServer() error = %v", err)
	}
	return server
}

func TestNewHTTPServer_BaseURLValidation(t *testing.T) {
	mcpSrv := mcpserver.NewMCPServer("test-server", "0.0.0")

	if _, err := NewHTTPServer(mcpSrv, HTTPServerConfig{
		Addr:    ":0",
		BaseURL: "http://localhost:8080",
	}); err != nil {
		t.Errorf("NewHTTPServer() with loopback HTTP base URL error = %v", err)
	}

	if _, err := NewHTTPServer(mcpSrv, HTTPServerConfig{
		Addr:    ":0",
		BaseURL: "http://example.com:8080",
	}); err == nil {
		t.Error("NewHTTPServer() accepted non-loopback HTTP base URL")
	}
}

func TestHTTPServer_ShutdownBeforeStart(t *testing.T) {
	server := newTestHTTPServer(t, HTTPServerConfig{Addr: ":0"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// A shutdown that wins the race against a slow Start must still
	// stop the listener rather than finding nothing to drain.
	if err := server.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() before Start() error = %v", err)
	}

	if err := server.Start(); !errors.Is(err, http.ErrServerClosed) {
		t.Errorf("Start() after Shutdown() error = %v, want ErrServerClosed", err)
	}
}

func TestHTTPServer_StartAndShutdown(t *testing.T) {
	server := newTestHTTPServer(t, HTTPServerConfig{Addr: ":0"})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("Start() returned %v, want ErrServerClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("server did not stop after Shutdown()")
	}
}
