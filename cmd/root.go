package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// Persistent configuration shared by all subcommands.
var (
	gauthFile      string
	accountsFile   string
	credentialsDir string
	debugMode      bool
)

// rootCmd represents the base command for the gsuite-admin-mcp application
var rootCmd = &cobra.Command{
	Use:   "gsuite-admin-mcp",
	Short: "MCP server for Google Workspace administration",
	Long: `gsuite-admin-mcp exposes Google Workspace Admin SDK operations as MCP
(Model Context Protocol) tools for AI assistants: user, group, organizational
unit, device, and domain management plus audit and usage reporting.

Each tool call runs under the OAuth2 credential of the requesting admin
account. Use the auth subcommands to authorize accounts before serving.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gsuite-admin-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&gauthFile, "gauth-file", "",
		"Path to the OAuth2 client configuration JSON. Can also use GSUITE_GAUTH_FILE env var. Default: ~/.config/gsuite-admin-mcp/gauth.json")
	rootCmd.PersistentFlags().StringVar(&accountsFile, "accounts-file", "",
		"Path to the accounts roster JSON. Can also use GSUITE_ACCOUNTS_FILE env var. Default: ~/.config/gsuite-admin-mcp/accounts.json")
	rootCmd.PersistentFlags().StringVar(&credentialsDir, "credentials-dir", "",
		"Directory for stored per-user OAuth tokens. Can also use GSUITE_OAUTH_DIR env var. Default: ~/.config/gsuite-admin-mcp/credentials")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}

// resolveGauthFile applies the flag, env var, default precedence for
// the OAuth client configuration path.
func resolveGauthFile() string {
	if gauthFile != "" {
		return gauthFile
	}
	if env := os.Getenv("GSUITE_GAUTH_FILE"); env != "" {
		return env
	}
	return filepath.Join(configDir(), "gauth.json")
}

func resolveAccountsFile() string {
	if accountsFile != "" {
		return accountsFile
	}
	if env := os.Getenv("GSUITE_ACCOUNTS_FILE"); env != "" {
		return env
	}
	return filepath.Join(configDir(), "accounts.json")
}

func resolveCredentialsDir() string {
	if credentialsDir != "" {
		return credentialsDir
	}
	if env := os.Getenv("GSUITE_OAUTH_DIR"); env != "" {
		return env
	}
	return filepath.Join(configDir(), "credentials")
}

func configDir() string {
	return filepath.Join(homeDir(), ".config", "gsuite-admin-mcp")
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	// Windows fallback
	return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
}
