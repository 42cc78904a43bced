package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-oauth/storage"
	"github.com/giantswarm/mcp-oauth/storage/memory"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/admin"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/auth"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/dispatch"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/instrumentation"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/server"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/tools/common"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/tools/device_tools"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/tools/domain_tools"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/tools/group_tools"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/tools/orgunit_tools"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/tools/report_tools"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/tools/security_tools"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/tools/user_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		transport      string
		httpAddr       string
		baseURL        string
		readOnly       bool
		yolo           bool
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server exposing Google Workspace
administration tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Safety Mode:
  By default, the server operates in read-only mode, providing only safe
  operations. Use --yolo to enable write operations (user creation, group
  membership changes, device actions, etc.)

HTTP Transport:
  Requests carrying a Google bearer token are authenticated against the
  userinfo endpoint; the resolved identity overrides the user_id argument
  of tool calls. Forwarded Google tokens (X-Google-Access-Token and
  related headers) are held in memory for the session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}
			// --yolo wins over --read-only
			return runServe(transport, httpAddr, baseURL, readOnly && !yolo, metricsConfig)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Public base URL of the server (HTTP transport only). HTTPS is required for non-loopback addresses. Can also use MCP_BASE_URL env var.")
	cmd.Flags().BoolVar(&readOnly, "read-only", true, "Serve only non-mutating tools")
	cmd.Flags().BoolVar(&yolo, "yolo", false, "Enable write operations (user creation, group changes, device actions, etc.). Overrides --read-only.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(transport, httpAddr, baseURL string, readOnly bool, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := setupLogger()

	// Load metrics config from environment if not set via flags
	if metricsConfig.Enabled && os.Getenv("METRICS_ENABLED") == "false" {
		metricsConfig.Enabled = false
	}
	if metricsConfig.Addr == "" || metricsConfig.Addr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}
	if baseURL == "" {
		baseURL = os.Getenv("MCP_BASE_URL")
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	// Load OAuth client configuration and the account roster. Both
	// are required; a server without a roster cannot tell callers
	// which accounts it manages.
	oauthConfig, accounts, err := loadWorkspaceConfig()
	if err != nil {
		return err
	}

	store := auth.NewStore(resolveCredentialsDir())
	store.SetLogger(logger)

	managerOpts := []auth.ManagerOption{auth.WithLogger(logger)}
	if provider.Enabled() {
		managerOpts = append(managerOpts, auth.WithMetrics(provider.Metrics()))
	}

	// The HTTP transport authenticates requests itself and overlays
	// forwarded tokens onto the on-disk credentials.
	var sessionStore storage.TokenStore
	var dispatcherOpts []dispatch.DispatcherOption
	if transport == "streamable-http" {
		sessionStore = memory.New()
		managerOpts = append(managerOpts, auth.WithSessionTokens(sessionStore))
		dispatcherOpts = append(dispatcherOpts, dispatch.WithIdentity(server.IdentityFromContext))
	}

	manager := auth.NewManager(oauthConfig, store, managerOpts...)

	registry := dispatch.NewRegistry()
	clients := admin.NewClientCache()
	if err := registerAllTools(registry, clients, readOnly); err != nil {
		return err
	}

	serverContext := server.NewServerContext(shutdownCtx, server.ServerContextConfig{
		Manager:           manager,
		Accounts:          accounts,
		Registry:          registry,
		Clients:           clients,
		ReadOnly:          readOnly,
		DispatcherOptions: dispatcherOpts,
	})
	if provider.Enabled() {
		serverContext.SetInstrumentation(provider)
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			if transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("gsuite-admin-mcp", version,
		mcpserver.WithToolCapabilities(true),
	)

	instrumenter := &common.Instrumenter{
		Metrics:     serverContext.Metrics(),
		AuditLogger: serverContext.AuditLogger(),
	}
	serverContext.Dispatcher().Attach(mcpSrv, instrumenter.Wrap)

	// Log the mode for visibility (only for non-stdio transports)
	if transport != "stdio" {
		if readOnly {
			log.Println("Starting server in READ-ONLY mode (use --yolo to enable write operations)")
		} else {
			log.Println("Starting server with WRITE operations enabled (--yolo flag is set)")
		}
	}

	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, httpAddr, baseURL, sessionStore, metricsConfig, provider, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

// loadWorkspaceConfig loads the OAuth client secrets and the account
// roster from the resolved configuration paths. A missing or invalid
// roster is a startup configuration error, not something to serve
// without.
func loadWorkspaceConfig() (*oauth2.Config, []auth.AccountRecord, error) {
	oauthConfig, err := auth.LoadClientConfig(resolveGauthFile())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load OAuth client configuration: %w", err)
	}

	accounts, err := auth.LoadAccounts(resolveAccountsFile())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load accounts configuration: %w", err)
	}

	return oauthConfig, accounts, nil
}

// setupLogger configures the process-wide logger. Logs go to stderr
// so the stdio transport keeps stdout clean for the protocol.
func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, addr, baseURL string, sessionStore storage.TokenStore, metricsConfig MetricsConfig, provider *instrumentation.Provider, logger *slog.Logger) error {
	// Start metrics server on its dedicated listener
	var metricsServer *server.MetricsServer
	if metricsConfig.Enabled && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				log.Printf("Metrics server error: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}()
	}

	health := server.NewHealthChecker(serverContext)

	httpServer, err := server.NewHTTPServer(mcpSrv, server.HTTPServerConfig{
		Addr:    addr,
		BaseURL: baseURL,
		Identity: server.IdentityMiddlewareConfig{
			Store:  sessionStore,
			Logger: logger,
		},
		Health: health,
	})
	if err != nil {
		return err
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		health.SetReady(true)
		log.Printf("Starting MCP server on %s", addr)
		if err := httpServer.Start(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	case <-ctx.Done():
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error during server shutdown: %w", err)
		}
		return nil
	}
}

// registerAllTools registers all admin tool groups on the registry.
func registerAllTools(reg *dispatch.Registry, clients *admin.ClientCache, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Users",
			register: func() error {
				return user_tools.Register(reg, clients, readOnly)
			},
		},
		{
			name: "Groups",
			register: func() error {
				return group_tools.Register(reg, clients, readOnly)
			},
		},
		{
			name: "Organizational Units",
			register: func() error {
				return orgunit_tools.Register(reg, clients, readOnly)
			},
		},
		{
			name: "Devices",
			register: func() error {
				return device_tools.Register(reg, clients, readOnly)
			},
		},
		{
			name: "Security",
			register: func() error {
				return security_tools.Register(reg, clients, readOnly)
			},
		},
		{
			name: "Domains",
			register: func() error {
				return domain_tools.Register(reg, clients)
			},
		},
		{
			name: "Reports",
			register: func() error {
				return report_tools.Register(reg, clients)
			},
		},
	}

	for _, r := range registrations {
		if err := r.register(); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", r.name, err)
		}
	}

	return nil
}
