package admin

import (
	"context"
	"fmt"

	datatransfer "google.golang.org/api/admin/datatransfer/v1"
	directory "google.golang.org/api/admin/directory/v1"
	reports "google.golang.org/api/admin/reports/v1"
	"google.golang.org/api/option"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/auth"
)

// Clients bundles the Admin SDK services built for one acting user's
// credential. Services are cheap wrappers over an HTTP client, so a
// Clients value can be cached per user and rebuilt when the access
// token changes.
type Clients struct {
	Directory    *directory.Service
	Reports      *reports.Service
	DataTransfer *datatransfer.Service

	// AccessToken the services were built with, used to detect when a
	// cached Clients is stale after a refresh.
	AccessToken string
}

// NewClients builds Directory and Reports services authenticated as
// the credential's user.
func NewClients(ctx context.Context, cred *auth.Credential) (*Clients, error) {
	ts := cred.TokenSource()

	dir, err := directory.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Directory service: %w", err)
	}

	rep, err := reports.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Reports service: %w", err)
	}

	dt, err := datatransfer.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create DataTransfer service: %w", err)
	}

	return &Clients{
		Directory:    dir,
		Reports:      rep,
		DataTransfer: dt,
		AccessToken:  cred.AccessToken,
	}, nil
}
