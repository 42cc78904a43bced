package security_tools

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

// Register adds the security tools to the registry. In read-only mode
// the tools still register but mutating actions are rejected when
// invoked.
func Register(reg *dispatch.Registry, clients *admin.ClientCache, readOnly bool) error {
	securityTool := mcp.NewTool("mcp__gsuite_admin__manage_user_security",
		mcp.WithDescription("Manage user security settings: inspect security state, enforce or relax 2-step verification, grant or revoke admin, reset sign-in cookies."),
		common.UserIDOption(),
		mcp.WithString("target_user",
			mcp.Required(),
			mcp.Description("Email address of the user to manage"),
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("One of: get_security_info, require_2sv, disable_2sv, make_admin, remove_admin, reset_signin_cookies, generate_app_password"),
		),
	)
	if err := reg.Register(common.NewHandler(securityTool, clients,
		func(ctx context.Context, args map[string]interface{}, c *admin.Clients) (*mcp.CallToolResult, error) {
			return handleManageUserSecurity(ctx, args, c, readOnly)
		})); err != nil {
		return err
	}

	tokensTool := mcp.NewTool("mcp__gsuite_admin__list_tokens",
		mcp.WithDescription("List OAuth tokens and app-specific passwords issued for a user."),
		common.UserIDOption(),
		mcp.WithString("target_user",
			mcp.Required(),
			mcp.Description("Email address of the user whose tokens to list"),
		),
		mcp.WithString("token_type",
			mcp.Description("Which tokens to list: all, oauth or app_passwords (default: all)"),
		),
	)
	if err := reg.Register(common.NewHandler(tokensTool, clients, handleListTokens)); err != nil {
		return err
	}

	rolesTool := mcp.NewTool("mcp__gsuite_admin__manage_role_assignments",
		mcp.WithDescription("Manage admin role assignments: list roles, list assignments, assign or remove a role for a user."),
		common.UserIDOption(),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("One of: list_roles, list_assignments, assign_role, remove_role"),
		),
		mcp.WithString("target_user",
			mcp.Description("Email address of the user (required for assign_role and remove_role)"),
		),
		mcp.WithString("role_id",
			mcp.Description("Role ID to assign or remove (required for assign_role and remove_role)"),
		),
		mcp.WithString("customer_id",
			mcp.Description("Customer ID (defaults to my_customer)"),
		),
	)
	if err := reg.Register(common.NewHandler(rolesTool, clients,
		func(ctx context.Context, args map[string]interface{}, c *admin.Clients) (*mcp.CallToolResult, error) {
			return handleManageRoleAssignments(ctx, args, c, readOnly)
		})); err != nil {
		return err
	}

	transferTool := mcp.NewTool("mcp__gsuite_admin__manage_data_transfer",
		mcp.WithDescription("Manage data transfers for users leaving the organization: list transfers, check status or start a transfer between users."),
		common.UserIDOption(),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("One of: list_transfers, get_transfer_status, create_transfer"),
		),
		mcp.WithString("old_owner_id",
			mcp.Description("Email of the user whose data to transfer (for create_transfer)"),
		),
		mcp.WithString("new_owner_id",
			mcp.Description("Email of the user receiving the data (for create_transfer)"),
		),
		mcp.WithString("transfer_id",
			mcp.Description("Transfer ID to check (for get_transfer_status)"),
		),
	)
	return reg.Register(common.NewHandler(transferTool, clients,
		func(ctx context.Context, args map[string]interface{}, c *admin.Clients) (*mcp.CallToolResult, error) {
			return handleManageDataTransfer(ctx, args, c, readOnly)
		}))
}

func readOnlyErr(action string) error {
	return dispatch.NewError(dispatch.CodeReadOnly,
		"action '%s' is disabled in read-only mode", action)
}

func handleManageUserSecurity(ctx context.Context, args map[string]interface{}, clients *admin.Clients, readOnly bool) (*mcp.CallToolResult, error) {
	target, err := common.RequireString(args, "target_user")
	if err != nil {
		return nil, err
	}
	if err := admin.ValidateEmail(target, "target_user"); err != nil {
		return nil, err
	}
	action, err := common.RequireString(args, "action")
	if err != nil {
		return nil, err
	}
	if action != "get_security_info" && readOnly {
		return nil, readOnlyErr(action)
	}

	switch action {
	case "get_security_info":
		user, err := clients.Directory.Users.Get(target).Projection("full").
			Context(ctx).Do()
		if err != nil {
			return nil, err
		}
		adminStatus := "Regular User"
		if user.IsAdmin {
			adminStatus = "Super Admin"
		} else if user.IsDelegatedAdmin {
			adminStatus = "Delegated Admin"
		}
		d := admin.NewDetail(fmt.Sprintf("Security Information for %s", target))
		d.Field("Admin Status", adminStatus)
		d.Field("Account Status", admin.UserStatus(user.Suspended))
		d.Field("2SV Enrolled", admin.YesNo(user.IsEnrolledIn2Sv))
		d.Field("2SV Enforced", admin.YesNo(user.IsEnforcedIn2Sv))
		d.Field("Password Change Required", admin.YesNo(user.ChangePasswordAtNextLogin))
		return mcp.NewToolResultText(d.String()), nil

	case "require_2sv", "disable_2sv":
		enforce := action == "require_2sv"
		update := &directory.User{
			IsEnforcedIn2Sv: enforce,
			ForceSendFields: []string{"IsEnforcedIn2Sv"},
		}
		if _, err := clients.Directory.Users.Update(target, update).
			Context(ctx).Do(); err != nil {
			return nil, err
		}
		verb := "enabled"
		if !enforce {
			verb = "disabled"
		}
		return mcp.NewToolResultText(fmt.Sprintf("Successfully %s 2SV requirement for %s", verb, target)), nil

	case "make_admin", "remove_admin":
		grant := action == "make_admin"
		if err := clients.Directory.Users.MakeAdmin(target, &directory.UserMakeAdmin{
			Status:          grant,
			ForceSendFields: []string{"Status"},
		}).Context(ctx).Do(); err != nil {
			return nil, err
		}
		if grant {
			return mcp.NewToolResultText(fmt.Sprintf("Successfully granted super admin to %s", target)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Successfully revoked super admin from %s", target)), nil

	case "reset_signin_cookies":
		if err := clients.Directory.Users.SignOut(target).Context(ctx).Do(); err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(fmt.Sprintf("Successfully signed out %s from all sessions", target)), nil

	case "generate_app_password":
		// The Admin SDK can list and revoke app passwords but not
		// mint them; users create their own in account settings.
		return mcp.NewToolResultText("App passwords cannot be generated through the Admin API. The user must create one at https://myaccount.google.com/apppasswords"), nil

	default:
		return nil, dispatch.NewError(dispatch.CodeValidation,
			"unknown action %q, must be one of: get_security_info, require_2sv, disable_2sv, make_admin, remove_admin, reset_signin_cookies, generate_app_password", action)
	}
}

func handleListTokens(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	target, err := common.RequireString(args, "target_user")
	if err != nil {
		return nil, err
	}
	if err := admin.ValidateEmail(target, "target_user"); err != nil {
		return nil, err
	}
	tokenType := admin.OrDefault(common.OptionalString(args, "token_type"), "all")
	if tokenType != "all" && tokenType != "oauth" && tokenType != "app_passwords" {
		return nil, dispatch.NewError(dispatch.CodeValidation,
			"token_type must be one of: all, oauth, app_passwords")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tokens for %s:\n\n", target)

	// Each section tolerates its own API failure so a partial listing
	// still renders.
	if tokenType == "all" || tokenType == "oauth" {
		result, err := clients.Directory.Tokens.List(target).Context(ctx).Do()
		switch {
		case err != nil:
			fmt.Fprintf(&b, "Could not retrieve OAuth tokens: %v\n\n", err)
		case len(result.Items) == 0:
			b.WriteString("OAuth Tokens: None found\n\n")
		default:
			fmt.Fprintf(&b, "OAuth Tokens (%d found):\n", len(result.Items))
			for i, token := range result.Items {
				fmt.Fprintf(&b, "%d. %s\n", i+1, admin.OrDefault(token.DisplayText, "Unknown App"))
				fmt.Fprintf(&b, "   Client ID: %s\n", admin.OrDefault(token.ClientId, "Unknown"))
				fmt.Fprintf(&b, "   Anonymous: %s\n", admin.YesNo(token.Anonymous))
				if len(token.Scopes) > 0 {
					fmt.Fprintf(&b, "   Scopes: %d permissions\n", len(token.Scopes))
				}
				b.WriteString("\n")
			}
		}
	}

	if tokenType == "all" || tokenType == "app_passwords" {
		result, err := clients.Directory.Asps.List(target).Context(ctx).Do()
		switch {
		case err != nil:
			fmt.Fprintf(&b, "Could not retrieve app passwords: %v\n", err)
		case len(result.Items) == 0:
			b.WriteString("App Passwords: None found\n")
		default:
			fmt.Fprintf(&b, "App Passwords (%d found):\n", len(result.Items))
			for i, asp := range result.Items {
				fmt.Fprintf(&b, "%d. %s\n", i+1, admin.OrDefault(asp.Name, "Unknown"))
				fmt.Fprintf(&b, "   Code ID: %d\n", asp.CodeId)
				fmt.Fprintf(&b, "   Created: %s\n", admin.MillisTimestamp(asp.CreationTime))
				fmt.Fprintf(&b, "   Last Used: %s\n\n", admin.MillisTimestamp(asp.LastTimeUsed))
			}
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}
