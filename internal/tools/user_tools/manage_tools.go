package user_tools

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

// registerWriteTools adds the account mutation tools. These are only
// available outside read-only mode.
func registerWriteTools(reg *dispatch.Registry, clients *admin.ClientCache) error {
	createUserTool := mcp.NewTool("mcp__gsuite_admin__create_user",
		mcp.WithDescription("Create a new Google Workspace user account. Requires email, first name and last name; a secure random password is generated when none is provided."),
		common.UserIDOption(),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Primary email address for the new user"),
		),
		mcp.WithString("first_name",
			mcp.Required(),
			mcp.Description("First name"),
		),
		mcp.WithString("last_name",
			mcp.Required(),
			mcp.Description("Last name"),
		),
		mcp.WithString("password",
			mcp.Description("Password (optional, will generate if not provided)"),
		),
		mcp.WithString("org_unit_path",
			mcp.Description("Organizational unit path (default: /)"),
		),
		mcp.WithBoolean("change_password_next_login",
			mcp.Description("Force password change on next login (default: true)"),
		),
		mcp.WithBoolean("suspended",
			mcp.Description("Create account as suspended (default: false)"),
		),
	)
	if err := reg.Register(common.NewHandler(createUserTool, clients, handleCreateUser)); err != nil {
		return err
	}

	updateUserTool := mcp.NewTool("mcp__gsuite_admin__update_user",
		mcp.WithDescription("Update properties of an existing Google Workspace user: name, organizational unit or suspension status."),
		common.UserIDOption(),
		mcp.WithString("target_user",
			mcp.Required(),
			mcp.Description("Email or user ID of the user to update"),
		),
		mcp.WithString("first_name",
			mcp.Description("New first name (optional)"),
		),
		mcp.WithString("last_name",
			mcp.Description("New last name (optional)"),
		),
		mcp.WithString("org_unit_path",
			mcp.Description("New organizational unit path (optional)"),
		),
		mcp.WithBoolean("suspended",
			mcp.Description("Suspend or unsuspend user (optional)"),
		),
		mcp.WithString("suspension_reason",
			mcp.Description("Reason for suspension (used when suspending)"),
		),
	)
	if err := reg.Register(common.NewHandler(updateUserTool, clients, handleUpdateUser)); err != nil {
		return err
	}

	suspendUserTool := mcp.NewTool("mcp__gsuite_admin__suspend_user",
		mcp.WithDescription("Suspend or unsuspend a Google Workspace user account. Suspended users cannot sign in."),
		common.UserIDOption(),
		mcp.WithString("target_user",
			mcp.Required(),
			mcp.Description("Email or user ID of the user to suspend/unsuspend"),
		),
		mcp.WithBoolean("suspend",
			mcp.Required(),
			mcp.Description("True to suspend, false to unsuspend"),
		),
		mcp.WithString("reason",
			mcp.Description("Reason for suspension (required when suspending)"),
		),
	)
	if err := reg.Register(common.NewHandler(suspendUserTool, clients, handleSuspendUser)); err != nil {
		return err
	}

	resetPasswordTool := mcp.NewTool("mcp__gsuite_admin__reset_password",
		mcp.WithDescription("Reset a Google Workspace user's password. Generates a secure random password when none is provided."),
		common.UserIDOption(),
		mcp.WithString("target_user",
			mcp.Required(),
			mcp.Description("Email or user ID of the user whose password to reset"),
		),
		mcp.WithString("new_password",
			mcp.Description("New password (optional, will generate if not provided)"),
		),
		mcp.WithBoolean("force_change_next_login",
			mcp.Description("Force password change on next login (default: true)"),
		),
	)
	if err := reg.Register(common.NewHandler(resetPasswordTool, clients, handleResetPassword)); err != nil {
		return err
	}

	deleteUserTool := mcp.NewTool("mcp__gsuite_admin__delete_user",
		mcp.WithDescription("Delete a Google Workspace user account. WARNING: irreversible, permanently deletes the user and all associated data."),
		common.UserIDOption(),
		mcp.WithString("target_user",
			mcp.Required(),
			mcp.Description("Email or user ID of the user to delete"),
		),
		mcp.WithBoolean("confirm",
			mcp.Required(),
			mcp.Description("Confirmation that you want to permanently delete this user"),
		),
	)
	return reg.Register(common.NewHandler(deleteUserTool, clients, handleDeleteUser))
}

func handleCreateUser(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	email, err := common.RequireString(args, "email")
	if err != nil {
		return nil, err
	}
	if err := admin.ValidateEmail(email, "email"); err != nil {
		return nil, err
	}

	firstName, err := common.RequireString(args, "first_name")
	if err != nil {
		return nil, err
	}
	lastName, err := common.RequireString(args, "last_name")
	if err != nil {
		return nil, err
	}
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, dispatch.NewError(dispatch.CodeValidation, "first name and last name cannot be empty")
	}

	password := common.OptionalString(args, "password")
	generated := false
	if password == "" {
		password = admin.GeneratePassword(12)
		generated = true
	}

	orgUnitPath := common.OptionalString(args, "org_unit_path")
	if orgUnitPath == "" {
		orgUnitPath = "/"
	}
	if err := admin.ValidateOrgUnitPath(orgUnitPath); err != nil {
		return nil, err
	}
	changeNextLogin := common.OptionalBool(args, "change_password_next_login", true)

	user := &directory.User{
		PrimaryEmail: email,
		Name: &directory.UserName{
			GivenName:  firstName,
			FamilyName: lastName,
		},
		Password:                  password,
		ChangePasswordAtNextLogin: changeNextLogin,
		Suspended:                 common.OptionalBool(args, "suspended", false),
		OrgUnitPath:               orgUnitPath,
		ForceSendFields:           []string{"ChangePasswordAtNextLogin", "Suspended"},
	}

	created, err := clients.Directory.Users.Insert(user).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Successfully created user: %s\n\n", email)
	fmt.Fprintf(&b, "Name: %s %s\n", firstName, lastName)
	fmt.Fprintf(&b, "Email: %s\n", email)
	fmt.Fprintf(&b, "Org Unit: %s\n", orgUnitPath)
	fmt.Fprintf(&b, "Change Password Next Login: %s\n", admin.YesNo(changeNextLogin))
	if generated {
		fmt.Fprintf(&b, "\nGenerated Password: %s\n", password)
		b.WriteString("Please provide this password to the user securely.\n")
	}
	fmt.Fprintf(&b, "\nUser ID: %s", admin.OrDefault(created.Id, "N/A"))
	return mcp.NewToolResultText(b.String()), nil
}

func handleUpdateUser(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	targetUser, err := common.RequireString(args, "target_user")
	if err != nil {
		return nil, err
	}
	if err := admin.ValidateEmail(targetUser, "target_user"); err != nil {
		return nil, err
	}

	update := &directory.User{}
	var changes []string

	firstName := strings.TrimSpace(common.OptionalString(args, "first_name"))
	lastName := strings.TrimSpace(common.OptionalString(args, "last_name"))
	if firstName != "" || lastName != "" {
		update.Name = &directory.UserName{}
		if firstName != "" {
			update.Name.GivenName = firstName
			changes = append(changes, "First name: "+firstName)
		}
		if lastName != "" {
			update.Name.FamilyName = lastName
			changes = append(changes, "Last name: "+lastName)
		}
	}

	if path, ok := args["org_unit_path"].(string); ok && path != "" {
		if err := admin.ValidateOrgUnitPath(path); err != nil {
			return nil, err
		}
		update.OrgUnitPath = path
		changes = append(changes, "Org Unit: "+path)
	}

	if suspended, ok := args["suspended"].(bool); ok {
		update.Suspended = suspended
		update.ForceSendFields = append(update.ForceSendFields, "Suspended")
		if suspended {
			reason := common.OptionalString(args, "suspension_reason")
			if reason == "" {
				reason = "Administrative action"
			}
			update.SuspensionReason = reason
			changes = append(changes, "Suspended: "+reason)
		} else {
			changes = append(changes, "Unsuspended")
		}
	}

	if len(changes) == 0 {
		return nil, dispatch.NewError(dispatch.CodeValidation, "no update fields provided")
	}

	if _, err := clients.Directory.Users.Update(targetUser, update).Context(ctx).Do(); err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Successfully updated user: %s\n\n", targetUser)
	b.WriteString("Changes made:\n")
	for _, change := range changes {
		fmt.Fprintf(&b, "  - %s\n", change)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleSuspendUser(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	targetUser, err := common.RequireString(args, "target_user")
	if err != nil {
		return nil, err
	}
	if err := admin.ValidateEmail(targetUser, "target_user"); err != nil {
		return nil, err
	}
	suspend, err := common.RequireBool(args, "suspend")
	if err != nil {
		return nil, err
	}
	reason := common.OptionalString(args, "reason")
	if suspend && reason == "" {
		return nil, dispatch.NewError(dispatch.CodeValidation, "reason is required when suspending a user")
	}

	update := &directory.User{
		Suspended:       suspend,
		ForceSendFields: []string{"Suspended"},
	}
	if suspend {
		update.SuspensionReason = reason
	}

	if _, err := clients.Directory.Users.Update(targetUser, update).Context(ctx).Do(); err != nil {
		return nil, err
	}

	var b strings.Builder
	if suspend {
		fmt.Fprintf(&b, "Successfully suspended user: %s\n", targetUser)
		fmt.Fprintf(&b, "\nReason: %s\n", reason)
		b.WriteString("\nUser will not be able to sign in to Google Workspace services.")
	} else {
		fmt.Fprintf(&b, "Successfully unsuspended user: %s\n", targetUser)
		b.WriteString("\nUser can now sign in to Google Workspace services.")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleResetPassword(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	targetUser, err := common.RequireString(args, "target_user")
	if err != nil {
		return nil, err
	}
	if err := admin.ValidateEmail(targetUser, "target_user"); err != nil {
		return nil, err
	}

	password := common.OptionalString(args, "new_password")
	generated := false
	if password == "" {
		password = admin.GeneratePassword(12)
		generated = true
	}
	forceChange := common.OptionalBool(args, "force_change_next_login", true)

	update := &directory.User{
		Password:                  password,
		ChangePasswordAtNextLogin: forceChange,
		ForceSendFields:           []string{"ChangePasswordAtNextLogin"},
	}
	if _, err := clients.Directory.Users.Update(targetUser, update).Context(ctx).Do(); err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Successfully reset password for user: %s\n\n", targetUser)
	if generated {
		fmt.Fprintf(&b, "New Password: %s\n", password)
		b.WriteString("Please provide this password to the user securely.\n\n")
	}
	if forceChange {
		b.WriteString("User will be required to change password on next login.")
	} else {
		b.WriteString("User can use this password immediately.")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleDeleteUser(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	targetUser, err := common.RequireString(args, "target_user")
	if err != nil {
		return nil, err
	}
	if err := admin.ValidateEmail(targetUser, "target_user"); err != nil {
		return nil, err
	}
	confirm, err := common.RequireBool(args, "confirm")
	if err != nil {
		return nil, err
	}
	if !confirm {
		return nil, dispatch.NewError(dispatch.CodeValidation,
			"user deletion requires explicit confirmation (confirm: true)")
	}

	if err := clients.Directory.Users.Delete(targetUser).Context(ctx).Do(); err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Successfully deleted user: %s\n\n", targetUser)
	b.WriteString("WARNING: This action is permanent and cannot be undone.\n")
	b.WriteString("  - All user data has been permanently deleted\n")
	b.WriteString("  - Email messages and files are no longer accessible\n")
	b.WriteString("  - The user cannot sign in to Google Workspace services")
	return mcp.NewToolResultText(b.String()), nil
}
