package server

import (
	"context"
	"sync"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/admin"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/auth"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/dispatch"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/instrumentation"
)

// ServerContext bundles the long-lived dependencies of one server
// instance: the credential manager, the account roster, the tool
// registry with its dispatcher, and the per-user API client cache.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	manager    *auth.Manager
	accounts   []auth.AccountRecord
	registry   *dispatch.Registry
	dispatcher *dispatch.Dispatcher
	clients    *admin.ClientCache
	readOnly   bool

	mu          sync.RWMutex
	instr       *instrumentation.Provider
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	shutdown    bool
}

// ServerContextConfig holds the dependencies for a ServerContext.
type ServerContextConfig struct {
	Manager  *auth.Manager
	Accounts []auth.AccountRecord
	Registry *dispatch.Registry
	Clients  *admin.ClientCache
	ReadOnly bool

	// DispatcherOptions are applied when building the dispatcher,
	// typically WithIdentity for the HTTP transport.
	DispatcherOptions []dispatch.DispatcherOption
}

// NewServerContext creates a server context and wires the dispatcher
// over the registry and credential manager. The accounts roster feeds
// the AUTH_FAILED guidance text.
func NewServerContext(ctx context.Context, config ServerContextConfig) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		manager:  config.Manager,
		accounts: config.Accounts,
		registry: config.Registry,
		clients:  config.Clients,
		readOnly: config.ReadOnly,
	}

	opts := append([]dispatch.DispatcherOption{
		dispatch.WithAuthHelp(sc.AuthHelp),
	}, config.DispatcherOptions...)
	sc.dispatcher = dispatch.NewDispatcher(config.Registry, config.Manager, opts...)

	return sc
}

// Context returns the server's lifetime context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Manager returns the credential manager.
func (sc *ServerContext) Manager() *auth.Manager {
	return sc.manager
}

// Accounts returns the configured account roster.
func (sc *ServerContext) Accounts() []auth.AccountRecord {
	return sc.accounts
}

// Registry returns the tool registry.
func (sc *ServerContext) Registry() *dispatch.Registry {
	return sc.registry
}

// Dispatcher returns the call dispatcher.
func (sc *ServerContext) Dispatcher() *dispatch.Dispatcher {
	return sc.dispatcher
}

// Clients returns the per-user API client cache.
func (sc *ServerContext) Clients() *admin.ClientCache {
	return sc.clients
}

// ReadOnly reports whether mutating tools are disabled.
func (sc *ServerContext) ReadOnly() bool {
	return sc.readOnly
}

// AuthHelp returns guidance text for callers without a credential:
// the configured accounts and how to authorize one.
func (sc *ServerContext) AuthHelp() string {
	return auth.DescribeAccounts(sc.accounts) +
		"\nRun 'gsuite-admin-mcp auth url --user <email>' to authorize an account."
}

// SetInstrumentation attaches an instrumentation provider and derives
// the metrics recorder and audit logger from it.
func (sc *ServerContext) SetInstrumentation(p *instrumentation.Provider) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.instr = p
	if p != nil {
		sc.metrics = p.Metrics()
	}
}

// Instrumentation returns the attached provider, or nil.
func (sc *ServerContext) Instrumentation() *instrumentation.Provider {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.instr
}

// Metrics returns the metrics recorder, or nil when instrumentation
// is not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder directly. Used by tests.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// AuditLogger returns the audit logger, or nil when not configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger for tool invocations.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context and flushes instrumentation.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	if sc.shutdown {
		sc.mu.Unlock()
		return nil
	}
	sc.shutdown = true
	instr := sc.instr
	sc.mu.Unlock()

	sc.cancel()

	if instr != nil {
		return instr.Shutdown(context.Background())
	}
	return nil
}
