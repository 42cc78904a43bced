package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/dispatch"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/instrumentation"
)

// Instrumenter decorates tool handlers with metrics and audit logging.
// Either component may be nil; a fully nil Instrumenter is a no-op and
// its Wrap method returns handlers unchanged.
type Instrumenter struct {
	Metrics     *instrumentation.Metrics
	AuditLogger *instrumentation.AuditLogger
}

// Wrap returns a handler that records an invocation metric and an audit
// entry around the wrapped handler. The signature matches the wrap
// parameter of the dispatcher's Attach method.
//
// Usage:
//
//	inst := &common.Instrumenter{Metrics: m, AuditLogger: al}
//	dispatcher.Attach(s, inst.Wrap)
func (in *Instrumenter) Wrap(toolName string, handler mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	if in == nil || (in.Metrics == nil && in.AuditLogger == nil) {
		return handler
	}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx)

		target := targetUserFromArgs(request.GetArguments())
		if target != "" {
			invocation.WithTargetUser(target)
		}

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
			if err != nil {
				invocation.CompleteWithError(err)
			} else {
				invocation.Complete(false, nil)
			}
		} else {
			invocation.CompleteSuccess()
		}

		if in.Metrics != nil {
			in.Metrics.RecordToolInvocationWithUser(ctx, toolName, status, target, duration)
		}
		if in.AuditLogger != nil {
			in.AuditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}

// targetUserFromArgs pulls the acting user out of the call arguments.
// Returns empty when the argument is absent or not a string.
func targetUserFromArgs(args map[string]interface{}) string {
	raw, ok := args[dispatch.UserIDArg]
	if !ok {
		return ""
	}
	user, _ := raw.(string)
	return user
}
