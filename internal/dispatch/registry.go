package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/auth"
)

// Handler is one callable administrative operation. Describe returns
// the tool descriptor advertised to clients; Execute runs the
// operation with an already-resolved credential.
type Handler interface {
	Describe() mcp.Tool
	Execute(ctx context.Context, args map[string]interface{}, cred *auth.Credential) (*mcp.CallToolResult, error)
}

// DuplicateToolError reports a second registration under a name that
// is already taken.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q is already registered", e.Name)
}

// Registry holds the tool handlers in registration order. Registration
// happens at startup; lookups are concurrent afterwards.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler under its descriptor name.
func (r *Registry) Register(h Handler) error {
	name := h.Describe().Name
	if name == "" {
		return fmt.Errorf("handler descriptor has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		return &DuplicateToolError{Name: name}
	}
	r.handlers[name] = h
	r.order = append(r.order, name)
	return nil
}

// Resolve looks up a handler by tool name.
func (r *Registry) Resolve(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Descriptors returns the tool descriptors in registration order.
func (r *Registry) Descriptors() []mcp.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.handlers[name].Describe())
	}
	return out
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
