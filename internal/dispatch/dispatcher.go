package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/auth"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/logging"
)

// UserIDArg is the reserved argument naming the Workspace account a
// tool call acts on behalf of. Every tool descriptor declares it.
const UserIDArg = "user_id"

// CredentialSource resolves a usable credential for a user. Satisfied
// by *auth.Manager.
type CredentialSource interface {
	Credential(ctx context.Context, userID string) (*auth.Credential, error)
}

// IdentityFunc extracts an authenticated user identity from the
// request context. When it yields an identity, that identity overrides
// any user_id argument in the call.
type IdentityFunc func(ctx context.Context) (string, bool)

// Dispatcher is the single entry point from an incoming tool call to a
// tool result. Failures at any pipeline stage become error-flagged
// results with a stable code; the transport never sees a Go error for
// a handler failure.
type Dispatcher struct {
	registry *Registry
	creds    CredentialSource
	identity IdentityFunc
	authHelp func() string
	logger   *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithIdentity installs an identity extractor consulted before the
// user_id argument.
func WithIdentity(fn IdentityFunc) DispatcherOption {
	return func(d *Dispatcher) { d.identity = fn }
}

// WithAuthHelp installs a provider of guidance text appended to
// AUTH_FAILED results, typically describing the configured accounts
// and how to authorize.
func WithAuthHelp(fn func() string) DispatcherOption {
	return func(d *Dispatcher) { d.authHelp = fn }
}

// WithDispatchLogger sets the logger for call outcomes.
func WithDispatchLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = logger }
}

// NewDispatcher creates a Dispatcher over the given registry and
// credential source.
func NewDispatcher(registry *Registry, creds CredentialSource, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		creds:    creds,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs the full call pipeline for one request. The returned
// Go error is always nil for handler and credential failures; those
// are reported inside the result.
func (d *Dispatcher) Dispatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.Params.Name
	if name == "" {
		return d.fail(name, "", NewError(CodeValidation, "tool name is required")), nil
	}

	handler, ok := d.registry.Resolve(name)
	if !ok {
		return d.fail(name, "", NewError(CodeUnknownTool,
			"unknown tool %q. Registered tools: %s", name, strings.Join(d.registry.Names(), ", "))), nil
	}

	args := request.GetArguments()
	if args == nil {
		args = map[string]interface{}{}
	}

	userID, err := d.resolveUserID(ctx, args)
	if err != nil {
		return d.fail(name, "", Classify(err)), nil
	}

	cred, err := d.creds.Credential(ctx, userID)
	if err != nil {
		classified := Classify(err)
		if classified.Code == CodeAuthFailed && d.authHelp != nil {
			if help := d.authHelp(); help != "" {
				classified = NewError(classified.Code, "%s\n%s", classified.Message, help)
			}
		}
		return d.fail(name, userID, classified), nil
	}

	result, err := d.execute(ctx, handler, args, cred)
	if err != nil {
		return d.fail(name, userID, Classify(err)), nil
	}

	d.logger.Debug("tool call completed",
		logging.Tool(name),
		logging.UserHash(userID),
		logging.Status(logging.StatusSuccess))
	return result, nil
}

// Attach registers every tool in the registry with the MCP server,
// routing each through the dispatch pipeline. The optional wrap
// function decorates each handler, usually with instrumentation.
func (d *Dispatcher) Attach(s *mcpserver.MCPServer, wrap func(name string, h mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc) {
	for _, tool := range d.registry.Descriptors() {
		handler := mcpserver.ToolHandlerFunc(d.Dispatch)
		if wrap != nil {
			handler = wrap(tool.Name, handler)
		}
		s.AddTool(tool, handler)
	}
}

// resolveUserID finds the acting user: an authenticated context
// identity wins over the user_id argument.
func (d *Dispatcher) resolveUserID(ctx context.Context, args map[string]interface{}) (string, error) {
	if d.identity != nil {
		if id, ok := d.identity(ctx); ok && id != "" {
			return id, nil
		}
	}

	raw, present := args[UserIDArg]
	if !present {
		return "", NewError(CodeValidation, "%s argument is required", UserIDArg)
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		return "", NewError(CodeValidation, "%s must be a non-empty string", UserIDArg)
	}
	return id, nil
}

// execute runs the handler, converting a panic into an error so one
// misbehaving tool cannot take down the server.
func (d *Dispatcher) execute(ctx context.Context, handler Handler, args map[string]interface{}, cred *auth.Credential) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool handler panicked",
				logging.Tool(handler.Describe().Name),
				slog.String("panic", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())))
			result = nil
			err = NewError(CodeInternal, "internal error while executing tool")
		}
	}()
	return handler.Execute(ctx, args, cred)
}

func (d *Dispatcher) fail(tool, userID string, e *Error) *mcp.CallToolResult {
	attrs := []any{
		logging.Tool(tool),
		logging.Status(logging.StatusError),
		logging.ErrorCode(e.Code),
	}
	if userID != "" {
		attrs = append(attrs, logging.UserHash(userID))
	}
	d.logger.Warn("tool call failed", attrs...)
	return mcp.NewToolResultError(e.Error())
}
