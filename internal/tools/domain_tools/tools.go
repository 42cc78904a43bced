package domain_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/admin"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/dispatch"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/tools/common"
)

// Register adds the domain tools to the registry.
func Register(reg *dispatch.Registry, clients *admin.ClientCache) error {
	aliasesTool := mcp.NewTool("mcp__gsuite_admin__list_domain_aliases",
		mcp.WithDescription("List all domain aliases configured for the Google Workspace domain."),
		common.UserIDOption(),
		mcp.WithString("customer_id",
			mcp.Description("Customer ID (defaults to my_customer)"),
		),
	)
	return reg.Register(common.NewHandler(aliasesTool, clients, handleListDomainAliases))
}

func handleListDomainAliases(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	customer := admin.OrDefault(common.OptionalString(args, "customer_id"), "my_customer")

	result, err := clients.Directory.DomainAliases.List(customer).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if len(result.DomainAliases) == 0 {
		return mcp.NewToolResultText("No domain aliases found for this domain."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Domain Aliases (%d found):\n\n", len(result.DomainAliases))
	for i, alias := range result.DomainAliases {
		fmt.Fprintf(&b, "%d. %s\n", i+1, admin.OrDefault(alias.DomainAliasName, "Unknown"))
		fmt.Fprintf(&b, "   Parent Domain: %s\n", admin.OrDefault(alias.ParentDomainName, "Unknown"))
		fmt.Fprintf(&b, "   Verified: %s\n", admin.YesNo(alias.Verified))
		fmt.Fprintf(&b, "   Created: %s\n\n", admin.MillisTimestamp(alias.CreationTime))
	}
	return mcp.NewToolResultText(b.String()), nil
}
