package user_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/admin"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/dispatch"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/tools/common"
)

// Register adds the user administration tools to the registry. Write
// operations are omitted in read-only mode.
func Register(reg *dispatch.Registry, clients *admin.ClientCache, readOnly bool) error {
	listUsersTool := mcp.NewTool("mcp__gsuite_admin__list_users",
		mcp.WithDescription("List Google Workspace users with optional filtering by domain, organizational unit or search query. Returns name, email, status and last login per user."),
		common.UserIDOption(),
		mcp.WithString("domain",
			mcp.Description("Domain to list users from (defaults to the whole customer)"),
		),
		mcp.WithString("org_unit_path",
			mcp.Description("Organizational unit path to filter by (optional)"),
		),
		mcp.WithString("query",
			mcp.Description("Search query (name, email, etc.) (optional)"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results (default: 100, max: 500)"),
		),
		mcp.WithString("order_by",
			mcp.Description("Sort field (email, givenName, familyName)"),
		),
		mcp.WithBoolean("show_suspended",
			mcp.Description("Include suspended users (default: true)"),
		),
	)
	if err := reg.Register(common.NewHandler(listUsersTool, clients, handleListUsers)); err != nil {
		return err
	}

	getUserTool := mcp.NewTool("mcp__gsuite_admin__get_user",
		mcp.WithDescription("Get detailed information about a specific Google Workspace user, including profile, status, organization and aliases."),
		common.UserIDOption(),
		mcp.WithString("target_user",
			mcp.Required(),
			mcp.Description("Email or user ID of the user to retrieve"),
		),
	)
	if err := reg.Register(common.NewHandler(getUserTool, clients, handleGetUser)); err != nil {
		return err
	}

	if readOnly {
		return nil
	}
	return registerWriteTools(reg, clients)
}

func handleListUsers(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	call := clients.Directory.Users.List()

	if domain := common.OptionalString(args, "domain"); domain != "" {
		if err := admin.ValidateDomain(domain); err != nil {
			return nil, err
		}
		call = call.Domain(domain)
	} else {
		call = call.Customer("my_customer")
	}

	query := common.OptionalString(args, "query")

	// The list endpoint filters org unit and suspension state through
	// the query string.
	if path := common.OptionalString(args, "org_unit_path"); path != "" {
		if err := admin.ValidateOrgUnitPath(path); err != nil {
			return nil, err
		}
		query = appendQuery(query, fmt.Sprintf("orgUnitPath='%s'", path))
	}
	if !common.OptionalBool(args, "show_suspended", true) {
		query = appendQuery(query, "isSuspended=false")
	}
	if query != "" {
		call = call.Query(query)
	}

	if orderBy := common.OptionalString(args, "order_by"); orderBy != "" {
		call = call.OrderBy(orderBy)
	}

	maxResults := common.ClampInt(common.OptionalInt(args, "max_results", 100), 500)
	call = call.MaxResults(maxResults)

	result, err := call.Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if len(result.Users) == 0 {
		return mcp.NewToolResultText("No users found matching the criteria."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d user(s):\n\n", len(result.Users))
	for i, user := range result.Users {
		fullName := "Unknown"
		if user.Name != nil && user.Name.FullName != "" {
			fullName = user.Name.FullName
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, fullName)
		fmt.Fprintf(&b, "   Email: %s\n", admin.OrDefault(user.PrimaryEmail, "No email"))
		fmt.Fprintf(&b, "   Status: %s\n", admin.UserStatus(user.Suspended))
		fmt.Fprintf(&b, "   Org Unit: %s\n", admin.OrDefault(user.OrgUnitPath, "/"))
		fmt.Fprintf(&b, "   Last Login: %s\n\n", admin.Timestamp(user.LastLoginTime))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleGetUser(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	targetUser, err := common.RequireString(args, "target_user")
	if err != nil {
		return nil, err
	}
	if err := admin.ValidateEmail(targetUser, "target_user"); err != nil {
		return nil, err
	}

	user, err := clients.Directory.Users.Get(targetUser).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	fullName := "Unknown"
	givenName, familyName := "N/A", "N/A"
	if user.Name != nil {
		fullName = admin.OrDefault(user.Name.FullName, "Unknown")
		givenName = admin.OrDefault(user.Name.GivenName, "N/A")
		familyName = admin.OrDefault(user.Name.FamilyName, "N/A")
	}

	d := admin.NewDetail("User Details: " + fullName).
		Section("Basic Information").
		Field("Full Name", fullName).
		Field("First Name", givenName).
		Field("Last Name", familyName).
		Field("Primary Email", admin.OrDefault(user.PrimaryEmail, "N/A")).
		Field("User ID", admin.OrDefault(user.Id, "N/A")).
		Blank().
		Section("Status").
		Field("Account Status", admin.UserStatus(user.Suspended))
	if user.Suspended {
		d.Field("Suspension Reason", admin.OrDefault(user.SuspensionReason, "N/A"))
	}
	d.Field("Account Created", admin.Timestamp(user.CreationTime)).
		Field("Last Login", admin.Timestamp(user.LastLoginTime)).
		Blank().
		Section("Organization").
		Field("Org Unit", admin.OrDefault(user.OrgUnitPath, "/")).
		Field("Admin", admin.YesNo(user.IsAdmin)).
		Field("Delegated Admin", admin.YesNo(user.IsDelegatedAdmin)).
		Blank().
		Section(fmt.Sprintf("Email Aliases (%d)", len(user.Aliases)))
	if len(user.Aliases) == 0 {
		d.Item("No aliases")
	}
	for _, alias := range user.Aliases {
		d.Item(alias)
	}

	if user.RecoveryEmail != "" {
		d.Blank().Field("Recovery Email", user.RecoveryEmail)
	}
	if user.RecoveryPhone != "" {
		d.Field("Recovery Phone", user.RecoveryPhone)
	}

	return mcp.NewToolResultText(d.String()), nil
}

// appendQuery joins Directory list query terms with a space.
func appendQuery(query, term string) string {
	if query == "" {
		return term
	}
	return query + " " + term
}
