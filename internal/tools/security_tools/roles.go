package security_tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	directory "google.golang.org/api/admin/directory/v1"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/admin"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/dispatch"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/tools/common"
)

func handleManageRoleAssignments(ctx context.Context, args map[string]interface{}, clients *admin.Clients, readOnly bool) (*mcp.CallToolResult, error) {
	action, err := common.RequireString(args, "action")
	if err != nil {
		return nil, err
	}
	customer := admin.OrDefault(common.OptionalString(args, "customer_id"), "my_customer")

	switch action {
	case "list_roles":
		return listRoles(ctx, clients, customer)
	case "list_assignments":
		return listAssignments(ctx, clients, customer)
	case "assign_role", "remove_role":
		if readOnly {
			return nil, readOnlyErr(action)
		}
		target, err := common.RequireString(args, "target_user")
		if err != nil {
			return nil, dispatch.NewError(dispatch.CodeValidation,
				"target_user and role_id are required for %s", action)
		}
		if err := admin.ValidateEmail(target, "target_user"); err != nil {
			return nil, err
		}
		roleArg, err := common.RequireString(args, "role_id")
		if err != nil {
			return nil, dispatch.NewError(dispatch.CodeValidation,
				"target_user and role_id are required for %s", action)
		}
		roleID, err := strconv.ParseInt(roleArg, 10, 64)
		if err != nil {
			return nil, dispatch.NewError(dispatch.CodeValidation,
				"role_id must be numeric, got %q", roleArg)
		}
		if action == "assign_role" {
			return assignRole(ctx, clients, customer, target, roleID)
		}
		return removeRole(ctx, clients, customer, target, roleID)
	default:
		return nil, dispatch.NewError(dispatch.CodeValidation,
			"unknown action %q, must be one of: list_roles, list_assignments, assign_role, remove_role", action)
	}
}

func listRoles(ctx context.Context, clients *admin.Clients, customer string) (*mcp.CallToolResult, error) {
	result, err := clients.Directory.Roles.List(customer).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return mcp.NewToolResultText("No admin roles found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available Admin Roles (%d found):\n\n", len(result.Items))
	for i, role := range result.Items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, admin.OrDefault(role.RoleName, "Unknown"))
		fmt.Fprintf(&b, "   ID: %d\n", role.RoleId)
		fmt.Fprintf(&b, "   Description: %s\n", admin.OrDefault(role.RoleDescription, "No description"))
		fmt.Fprintf(&b, "   System Role: %s\n\n", admin.YesNo(role.IsSystemRole))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func listAssignments(ctx context.Context, clients *admin.Clients, customer string) (*mcp.CallToolResult, error) {
	result, err := clients.Directory.RoleAssignments.List(customer).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return mcp.NewToolResultText("No role assignments found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current Role Assignments (%d found):\n\n", len(result.Items))
	for i, assignment := range result.Items {
		fmt.Fprintf(&b, "%d. User: %s\n", i+1, admin.OrDefault(assignment.AssignedTo, "Unknown"))
		fmt.Fprintf(&b, "   Role ID: %d\n", assignment.RoleId)
		fmt.Fprintf(&b, "   Scope: %s\n\n", admin.OrDefault(assignment.ScopeType, "Unknown"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func assignRole(ctx context.Context, clients *admin.Clients, customer, target string, roleID int64) (*mcp.CallToolResult, error) {
	// Role assignments bind to the directory profile ID, not the
	// email address.
	user, err := clients.Directory.Users.Get(target).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if _, err := clients.Directory.RoleAssignments.Insert(customer, &directory.RoleAssignment{
		AssignedTo: user.Id,
		RoleId:     roleID,
		ScopeType:  "CUSTOMER",
	}).Context(ctx).Do(); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully assigned role %d to %s", roleID, target)), nil
}

func removeRole(ctx context.Context, clients *admin.Clients, customer, target string, roleID int64) (*mcp.CallToolResult, error) {
	result, err := clients.Directory.RoleAssignments.List(customer).
		UserKey(target).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	var assignmentID int64
	for _, assignment := range result.Items {
		if assignment.RoleId == roleID {
			assignmentID = assignment.RoleAssignmentId
			break
		}
	}
	if assignmentID == 0 {
		return nil, dispatch.NewError(dispatch.CodeValidation,
			"role assignment not found for %s with role %d", target, roleID)
	}

	if err := clients.Directory.RoleAssignments.Delete(customer, strconv.FormatInt(assignmentID, 10)).
		Context(ctx).Do(); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully removed role %d from %s", roleID, target)), nil
}
