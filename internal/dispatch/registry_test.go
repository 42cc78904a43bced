package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/auth"
)

type stubHandler struct {
	tool    mcp.Tool
	execute func(ctx context.Context, args map[string]interface{}, cred *auth.Credential) (*mcp.CallToolResult, error)
}

func (h *stubHandler) Describe() mcp.Tool { return h.tool }

func (h *stubHandler) Execute(ctx context.Context, args map[string]interface{}, cred *auth.Credential) (*mcp.CallToolResult, error) {
	if h.execute == nil {
		return mcp.NewToolResultText("ok"), nil
	}
	return h.execute(ctx, args, cred)
}

func newStubHandler(name string) *stubHandler {
	return &stubHandler{
		tool: mcp.NewTool(name,
			mcp.WithDescription("test tool"),
			mcp.WithString(UserIDArg, mcp.Required(), mcp.Description("acting user")),
		),
	}
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	h := newStubHandler("mcp__gsuite_admin__list_users")
	if err := r.Register(h); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, ok := r.Resolve("mcp__gsuite_admin__list_users")
	if !ok {
		t.Fatal("Resolve() did not find registered handler")
	}
	if got != Handler(h) {
		t.Error("Resolve() returned a different handler")
	}

	if _, ok := r.Resolve("mcp__gsuite_admin__nope"); ok {
		t.Error("Resolve() found a handler that was never registered")
	}
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(newStubHandler("dup_tool")); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	err := r.Register(newStubHandler("dup_tool"))
	var dup *DuplicateToolError
	if !errors.As(err, &dup) {
		t.Fatalf("second Register() error = %v, want *DuplicateToolError", err)
	}
	if dup.Name != "dup_tool" {
		t.Errorf("DuplicateToolError.Name = %q, want %q", dup.Name, "dup_tool")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d after duplicate registration, want 1", r.Len())
	}
}

func TestRegistryEmptyName(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&stubHandler{tool: mcp.Tool{}}); err == nil {
		t.Error("Register() with unnamed descriptor: want error")
	}
}

func TestRegistryOrder(t *testing.T) {
	r := NewRegistry()
	names := []string{"tool_c", "tool_a", "tool_b"}
	for _, name := range names {
		if err := r.Register(newStubHandler(name)); err != nil {
			t.Fatalf("Register(%q) error = %v", name, err)
		}
	}

	got := r.Names()
	if len(got) != len(names) {
		t.Fatalf("Names() returned %d entries, want %d", len(got), len(names))
	}
	for i, name := range names {
		if got[i] != name {
			t.Errorf("Names()[%d] = %q, want %q (registration order)", i, got[i], name)
		}
	}

	descs := r.Descriptors()
	for i, name := range names {
		if descs[i].Name != name {
			t.Errorf("Descriptors()[%d].Name = %q, want %q", i, descs[i].Name, name)
		}
	}
}
