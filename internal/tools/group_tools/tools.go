package group_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	directory "google.golang.org/api/admin/directory/v1"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/admin"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/dispatch"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/tools/common"
)

// Register adds the group administration tools to the registry. Group
// creation and deletion are omitted in read-only mode.
func Register(reg *dispatch.Registry, clients *admin.ClientCache, readOnly bool) error {
	listGroupsTool := mcp.NewTool("mcp__gsuite_admin__list_groups",
		mcp.WithDescription("List groups in a Google Workspace domain"),
		common.UserIDOption(),
		mcp.WithString("domain",
			mcp.Required(),
			mcp.Description("Domain to list groups from"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of groups to return (default: 100, max: 500)"),
		),
		mcp.WithString("query",
			mcp.Description("Search query to filter groups (optional)"),
		),
	)
	if err := reg.Register(common.NewHandler(listGroupsTool, clients, handleListGroups)); err != nil {
		return err
	}

	getGroupTool := mcp.NewTool("mcp__gsuite_admin__get_group",
		mcp.WithDescription("Get detailed information about a specific Google Workspace group"),
		common.UserIDOption(),
		mcp.WithString("group_email",
			mcp.Required(),
			mcp.Description("Email address of the group to retrieve"),
		),
	)
	if err := reg.Register(common.NewHandler(getGroupTool, clients, handleGetGroup)); err != nil {
		return err
	}

	listMembersTool := mcp.NewTool("mcp__gsuite_admin__list_group_members",
		mcp.WithDescription("List members of a Google Workspace group"),
		common.UserIDOption(),
		mcp.WithString("group_email",
			mcp.Required(),
			mcp.Description("Email address of the group"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of members to return (default: 100, max: 500)"),
		),
	)
	if err := reg.Register(common.NewHandler(listMembersTool, clients, handleListGroupMembers)); err != nil {
		return err
	}

	if readOnly {
		return nil
	}

	createGroupTool := mcp.NewTool("mcp__gsuite_admin__create_group",
		mcp.WithDescription("Create a new Google Workspace group"),
		common.UserIDOption(),
		mcp.WithString("group_email",
			mcp.Required(),
			mcp.Description("Email address for the new group"),
		),
		mcp.WithString("group_name",
			mcp.Required(),
			mcp.Description("Display name for the new group"),
		),
		mcp.WithString("description",
			mcp.Description("Description of the group (optional)"),
		),
	)
	if err := reg.Register(common.NewHandler(createGroupTool, clients, handleCreateGroup)); err != nil {
		return err
	}

	deleteGroupTool := mcp.NewTool("mcp__gsuite_admin__delete_group",
		mcp.WithDescription("Delete a Google Workspace group"),
		common.UserIDOption(),
		mcp.WithString("group_email",
			mcp.Required(),
			mcp.Description("Email address of the group to delete"),
		),
		mcp.WithBoolean("confirm",
			mcp.Required(),
			mcp.Description("Confirmation that you want to delete the group"),
		),
	)
	return reg.Register(common.NewHandler(deleteGroupTool, clients, handleDeleteGroup))
}

func handleListGroups(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	domain, err := common.RequireString(args, "domain")
	if err != nil {
		return nil, err
	}
	if err := admin.ValidateDomain(domain); err != nil {
		return nil, err
	}

	call := clients.Directory.Groups.List().
		Domain(domain).
		MaxResults(common.ClampInt(common.OptionalInt(args, "max_results", 100), 500))
	if query := common.OptionalString(args, "query"); query != "" {
		call = call.Query(query)
	}

	result, err := call.Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if len(result.Groups) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No groups found in domain '%s'", domain)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d group(s) in '%s':\n\n", len(result.Groups), domain)
	for i, group := range result.Groups {
		fmt.Fprintf(&b, "%d. %s\n", i+1, admin.OrDefault(group.Name, "Unknown"))
		fmt.Fprintf(&b, "   Email: %s\n", admin.OrDefault(group.Email, "No email"))
		fmt.Fprintf(&b, "   Description: %s\n", admin.OrDefault(group.Description, "No description"))
		fmt.Fprintf(&b, "   Members: %d\n", group.DirectMembersCount)
		fmt.Fprintf(&b, "   ID: %s\n\n", admin.OrDefault(group.Id, "Unknown"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleGetGroup(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	groupEmail, err := common.RequireString(args, "group_email")
	if err != nil {
		return nil, err
	}
	if err := admin.ValidateEmail(groupEmail, "group_email"); err != nil {
		return nil, err
	}

	group, err := clients.Directory.Groups.Get(groupEmail).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Group Details for '%s':\n\n", groupEmail)
	fmt.Fprintf(&b, "Name: %s\n", admin.OrDefault(group.Name, "Unknown"))
	fmt.Fprintf(&b, "Email: %s\n", admin.OrDefault(group.Email, "Unknown"))
	fmt.Fprintf(&b, "Description: %s\n", admin.OrDefault(group.Description, "No description"))
	fmt.Fprintf(&b, "Direct Members: %d\n", group.DirectMembersCount)
	fmt.Fprintf(&b, "Group ID: %s\n", admin.OrDefault(group.Id, "Unknown"))
	fmt.Fprintf(&b, "Admin Created: %s\n", admin.YesNo(group.AdminCreated))

	if len(group.Aliases) > 0 || len(group.NonEditableAliases) > 0 {
		b.WriteString("\nAliases:\n")
		for _, alias := range group.Aliases {
			fmt.Fprintf(&b, "   - %s\n", alias)
		}
		for _, alias := range group.NonEditableAliases {
			fmt.Fprintf(&b, "   - %s (non-editable)\n", alias)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleCreateGroup(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	groupEmail, err := common.RequireString(args, "group_email")
	if err != nil {
		return nil, err
	}
	if err := admin.ValidateEmail(groupEmail, "group_email"); err != nil {
		return nil, err
	}
	groupName, err := common.RequireString(args, "group_name")
	if err != nil {
		return nil, err
	}

	created, err := clients.Directory.Groups.Insert(&directory.Group{
		Email:       groupEmail,
		Name:        groupName,
		Description: common.OptionalString(args, "description"),
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("Successfully created group:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", created.Name)
	fmt.Fprintf(&b, "Email: %s\n", created.Email)
	fmt.Fprintf(&b, "Description: %s\n", admin.OrDefault(created.Description, "No description"))
	fmt.Fprintf(&b, "Group ID: %s\n", created.Id)
	return mcp.NewToolResultText(b.String()), nil
}

func handleDeleteGroup(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	groupEmail, err := common.RequireString(args, "group_email")
	if err != nil {
		return nil, err
	}
	if err := admin.ValidateEmail(groupEmail, "group_email"); err != nil {
		return nil, err
	}
	confirm, err := common.RequireBool(args, "confirm")
	if err != nil {
		return nil, err
	}
	if !confirm {
		return nil, dispatch.NewError(dispatch.CodeValidation,
			"group deletion requires explicit confirmation (confirm: true)")
	}

	if err := clients.Directory.Groups.Delete(groupEmail).Context(ctx).Do(); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText("Successfully deleted group: " + groupEmail), nil
}

func handleListGroupMembers(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	groupEmail, err := common.RequireString(args, "group_email")
	if err != nil {
		return nil, err
	}
	if err := admin.ValidateEmail(groupEmail, "group_email"); err != nil {
		return nil, err
	}

	result, err := clients.Directory.Members.List(groupEmail).
		MaxResults(common.ClampInt(common.OptionalInt(args, "max_results", 100), 500)).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if len(result.Members) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No members found in group '%s'", groupEmail)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d member(s) in group '%s':\n\n", len(result.Members), groupEmail)
	for i, member := range result.Members {
		fmt.Fprintf(&b, "%d. %s\n", i+1, admin.OrDefault(member.Email, "Unknown"))
		fmt.Fprintf(&b, "   Role: %s\n", admin.OrDefault(member.Role, "MEMBER"))
		fmt.Fprintf(&b, "   Type: %s\n", admin.OrDefault(member.Type, "USER"))
		fmt.Fprintf(&b, "   Status: %s\n\n", admin.OrDefault(member.Status, "ACTIVE"))
	}
	return mcp.NewToolResultText(b.String()), nil
}
