package server

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/instrumentation"
)

func newTestProvider(t *testing.T, enabled bool) *instrumentation.Provider {
	t.Helper()
	ctx := context.Background()
	config := instrumentation.Config{
		ServiceName:    "gsuite-admin-mcp-test",
		ServiceVersion: "0.0.0",
		Enabled:        enabled,
	}
	if enabled {
		config.MetricsExporter = "prometheus"
		config.TracingExporter = "none"
	}
	provider, err := instrumentation.NewProvider(ctx, config)
	if err != nil {
		t.Fatalf("failed to create test provider: %v", err)
	}
	t.Cleanup(func() {
		_ = provider.Shutdown(ctx)
	})
	return provider
}

func TestNewMetricsServer(t *testing.T) {
	tests := []struct {
		name        string
		config      MetricsServerConfig
		errContains string
	}{
		{
			name: "valid config",
			config: MetricsServerConfig{
				Addr:                    ":9090",
				Enabled:                 true,
				InstrumentationProvider: nil, // filled per test below
			},
		},
		{
			name: "default addr",
			config: MetricsServerConfig{
				Enabled: true,
			},
		},
		{
			name: "nil provider",
			config: MetricsServerConfig{
				Addr:    ":9090",
				Enabled: true,
			},
			errContains: "instrumentation provider is required",
		},
		{
			name: "disabled provider",
			config: MetricsServerConfig{
				Addr:    ":9090",
				Enabled: true,
			},
			errContains: "instrumentation provider is not enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			switch tt.name {
			case "nil provider":
			case "disabled provider":
				tt.config.InstrumentationProvider = newTestProvider(t, false)
			default:
				tt.config.InstrumentationProvider = newTestProvider(t, true)
			}

			server, err := NewMetricsServer(tt.config)

			if tt.errContains != "" {
				if err == nil {
					t.Fatal("NewMetricsServer() expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewMetricsServer() error = %v, want error containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMetricsServer() unexpected error: %v", err)
			}
			if server == nil {
				t.Fatal("NewMetricsServer() returned nil server")
			}
			if server.Addr() == "" {
				t.Error("Addr() is empty, want configured or default addr")
			}
		})
	}
}

func TestMetricsServer_StartAndShutdown(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    ":0", // Use any available port
		Enabled:                 true,
		InstrumentationProvider: newTestProvider(t, true),
	})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	select {
	case err := <-serverErr:
		if err != nil {
			t.Errorf("Server error: %v", err)
		}
	case <-time.After(2 * time.Second):
		// Server shut down cleanly
	}
}

func TestMetricsServer_ShutdownBeforeStart(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    ":0",
		Enabled:                 true,
		InstrumentationProvider: newTestProvider(t, true),
	})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// A shutdown that wins the race against a slow Start must still
	// stop the listener rather than finding nothing to drain.
	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() before Start() error = %v", err)
	}

	if err := server.Start(); err != http.ErrServerClosed {
		t.Errorf("Start() after Shutdown() error = %v, want ErrServerClosed", err)
	}
}

func TestMetricsServer_Addr(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    ":9091",
		Enabled:                 true,
		InstrumentationProvider: newTestProvider(t, true),
	})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}

	if server.Addr() != ":9091" {
		t.Errorf("Addr() = %q, want %q", server.Addr(), ":9091")
	}
}
