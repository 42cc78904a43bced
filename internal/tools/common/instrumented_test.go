package common

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/instrumentation"
)

func noopMetrics(t *testing.T) *instrumentation.Metrics {
	t.Helper()
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := instrumentation.NewMetrics(meter, false)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return metrics
}

func TestInstrumenterWrap_NilPassThrough(t *testing.T) {
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	}

	var in *Instrumenter
	wrapped := in.Wrap("test_tool", handler)

	result, err := wrapped(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result == nil {
		t.Error("expected result, got nil")
	}
}

func TestInstrumenterWrap_EmptyPassThrough(t *testing.T) {
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	}

	in := &Instrumenter{}
	wrapped := in.Wrap("test_tool", handler)

	if _, err := wrapped(context.Background(), mcp.CallToolRequest{}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestInstrumenterWrap_Success(t *testing.T) {
	in := &Instrumenter{
		Metrics:     noopMetrics(t),
		AuditLogger: instrumentation.NewAuditLogger(slog.Default()),
	}

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		time.Sleep(1 * time.Millisecond)
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := in.Wrap("list_users", handler)

	result, err := wrapped(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
	if result == nil {
		t.Error("expected result, got nil")
	}
}

func TestInstrumenterWrap_Error(t *testing.T) {
	in := &Instrumenter{Metrics: noopMetrics(t)}

	expectedErr := errors.New("directory API error")
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	wrapped := in.Wrap("create_user", handler)

	_, err := wrapped(context.Background(), mcp.CallToolRequest{})
	if err != expectedErr {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestInstrumenterWrap_ErrorResult(t *testing.T) {
	in := &Instrumenter{Metrics: noopMetrics(t)}

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("error message"), nil
	}

	wrapped := in.Wrap("get_user", handler)

	result, err := wrapped(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result == nil {
		t.Fatal("expected result, got nil")
	}
	if !result.IsError {
		t.Error("expected result.IsError to be true")
	}
}

func TestTargetUserFromArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		expected string
	}{
		{"present", map[string]interface{}{"user_id": "admin@example.com"}, "admin@example.com"},
		{"absent", map[string]interface{}{}, ""},
		{"nil args", nil, ""},
		{"wrong type", map[string]interface{}{"user_id": 42}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := targetUserFromArgs(tt.args); got != tt.expected {
				t.Errorf("targetUserFromArgs() = %q, want %q", got, tt.expected)
			}
		})
	}
}
