// Package cmd implements the command-line interface for gsuite-admin-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide Workspace admin tools for AI assistants
//   - auth: Manage OAuth2 authorization for admin accounts (url, exchange, revoke)
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
