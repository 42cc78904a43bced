package common

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/admin"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/auth"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/dispatch"
)

// RunFunc is the body of one tool: validated arguments in, formatted
// result or classifiable error out. The Clients bundle is already
// authenticated as the acting user.
type RunFunc func(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error)

type handler struct {
	tool    mcp.Tool
	clients *admin.ClientCache
	run     RunFunc
}

// NewHandler binds a tool descriptor to its run function. Execute
// resolves the acting user's API clients before invoking run.
func NewHandler(tool mcp.Tool, clients *admin.ClientCache, run RunFunc) dispatch.Handler {
	return &handler{tool: tool, clients: clients, run: run}
}

func (h *handler) Describe() mcp.Tool { return h.tool }

func (h *handler) Execute(ctx context.Context, args map[string]interface{}, cred *auth.Credential) (*mcp.CallToolResult, error) {
	clients, err := h.clients.For(ctx, cred)
	if err != nil {
		return nil, err
	}
	return h.run(ctx, args, clients)
}

// UserIDOption is the user_id argument every tool descriptor declares.
func UserIDOption() mcp.ToolOption {
	return mcp.WithString(dispatch.UserIDArg,
		mcp.Required(),
		mcp.Description("Admin user email performing the operation"),
	)
}
