package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/auth"
)

const authCommandTimeout = 60 * time.Second

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage OAuth2 authorization for admin accounts",
		Long: `Manage the per-account OAuth2 credentials used by the MCP server.

A typical authorization flow:
  1. gsuite-admin-mcp auth url
     Open the printed URL in a browser and grant access.
  2. gsuite-admin-mcp auth exchange --user admin@example.com --code <code>
     Exchange the authorization code for tokens stored on disk.

Use 'auth revoke' to remove an account's stored credential and revoke
the grant with Google.`,
	}

	cmd.AddCommand(newAuthURLCmd())
	cmd.AddCommand(newAuthExchangeCmd())
	cmd.AddCommand(newAuthRevokeCmd())

	return cmd
}

// newAuthManager builds a credential manager from the persistent
// configuration flags. Shared by all auth subcommands.
func newAuthManager() (*auth.Manager, error) {
	oauthConfig, err := auth.LoadClientConfig(resolveGauthFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client configuration: %w", err)
	}
	store := auth.NewStore(resolveCredentialsDir())
	return auth.NewManager(oauthConfig, store), nil
}

func newAuthURLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the authorization URL for granting access",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newAuthManager()
			if err != nil {
				return err
			}

			state, err := randomState()
			if err != nil {
				return fmt.Errorf("failed to generate state parameter: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), manager.AuthCodeURL(state))
			return nil
		},
	}
	return cmd
}

func newAuthExchangeCmd() *cobra.Command {
	var user, code string

	cmd := &cobra.Command{
		Use:   "exchange",
		Short: "Exchange an authorization code for stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newAuthManager()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), authCommandTimeout)
			defer cancel()

			if _, err := manager.ExchangeCode(ctx, user, code); err != nil {
				return fmt.Errorf("failed to exchange authorization code: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Credential stored for %s\n", user)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Email address of the account being authorized")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code from the consent redirect")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}

func newAuthRevokeCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke and delete an account's stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newAuthManager()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), authCommandTimeout)
			defer cancel()

			removed, err := manager.Revoke(ctx, user)
			if err != nil {
				return fmt.Errorf("failed to revoke credential: %w", err)
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "No stored credential for %s\n", user)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Credential revoked for %s\n", user)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Email address of the account to revoke")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
