package orgunit_tools

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

// Register adds the organizational unit tools to the registry. The
// create, update and delete tools are omitted in read-only mode.
func Register(reg *dispatch.Registry, clients *admin.ClientCache, readOnly bool) error {
	listTool := mcp.NewTool("mcp__gsuite_admin__list_org_units",
		mcp.WithDescription("List organizational units in a Google Workspace domain."),
		common.UserIDOption(),
		mcp.WithString("customer_id",
			mcp.Description("Customer ID (defaults to my_customer)"),
		),
		mcp.WithString("org_unit_path",
			mcp.Description("Organizational unit path to search within (default: /)"),
		),
		mcp.WithString("type",
			mcp.Description("Which units to list: all, children or all_including_parent (default: all)"),
		),
	)
	if err := reg.Register(common.NewHandler(listTool, clients, handleListOrgUnits)); err != nil {
		return err
	}

	getTool := mcp.NewTool("mcp__gsuite_admin__get_org_unit",
		mcp.WithDescription("Get detailed information about a specific organizational unit."),
		common.UserIDOption(),
		mcp.WithString("org_unit_path",
			mcp.Required(),
			mcp.Description("Path of the organizational unit to retrieve"),
		),
		mcp.WithString("customer_id",
			mcp.Description("Customer ID (defaults to my_customer)"),
		),
	)
	if err := reg.Register(common.NewHandler(getTool, clients, handleGetOrgUnit)); err != nil {
		return err
	}

	if readOnly {
		return nil
	}

	createTool := mcp.NewTool("mcp__gsuite_admin__create_org_unit",
		mcp.WithDescription("Create a new organizational unit."),
		common.UserIDOption(),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the new organizational unit"),
		),
		mcp.WithString("parent_org_unit_path",
			mcp.Description("Parent organizational unit path (default: /)"),
		),
		mcp.WithString("description",
			mcp.Description("Description of the organizational unit (optional)"),
		),
		mcp.WithBoolean("block_inheritance",
			mcp.Description("Block policy inheritance from the parent unit (default: false)"),
		),
		mcp.WithString("customer_id",
			mcp.Description("Customer ID (defaults to my_customer)"),
		),
	)
	if err := reg.Register(common.NewHandler(createTool, clients, handleCreateOrgUnit)); err != nil {
		return err
	}

	updateTool := mcp.NewTool("mcp__gsuite_admin__update_org_unit",
		mcp.WithDescription("Update an existing organizational unit (rename, re-describe or move it)."),
		common.UserIDOption(),
		mcp.WithString("org_unit_path",
			mcp.Required(),
			mcp.Description("Current path of the organizational unit to update"),
		),
		mcp.WithString("name",
			mcp.Description("New name for the organizational unit (optional)"),
		),
		mcp.WithString("description",
			mcp.Description("New description (optional)"),
		),
		mcp.WithString("parent_org_unit_path",
			mcp.Description("New parent path, for moving the unit (optional)"),
		),
		mcp.WithBoolean("block_inheritance",
			mcp.Description("Block policy inheritance from the parent unit (optional)"),
		),
		mcp.WithString("customer_id",
			mcp.Description("Customer ID (defaults to my_customer)"),
		),
	)
	if err := reg.Register(common.NewHandler(updateTool, clients, handleUpdateOrgUnit)); err != nil {
		return err
	}

	deleteTool := mcp.NewTool("mcp__gsuite_admin__delete_org_unit",
		mcp.WithDescription("Delete an organizational unit. Requires confirm:true."),
		common.UserIDOption(),
		mcp.WithString("org_unit_path",
			mcp.Required(),
			mcp.Description("Path of the organizational unit to delete"),
		),
		mcp.WithBoolean("confirm",
			mcp.Required(),
			mcp.Description("Must be true to actually delete the unit"),
		),
		mcp.WithString("customer_id",
			mcp.Description("Customer ID (defaults to my_customer)"),
		),
	)
	return reg.Register(common.NewHandler(deleteTool, clients, handleDeleteOrgUnit))
}

func customerID(args map[string]interface{}) string {
	return admin.OrDefault(common.OptionalString(args, "customer_id"), "my_customer")
}

// listTypes maps the tool's type argument onto the API enum.
var listTypes = map[string]string{
	"all":                  "all",
	"children":             "children",
	"all_including_parent": "allIncludingParent",
}

func handleListOrgUnits(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	path := admin.OrDefault(common.OptionalString(args, "org_unit_path"), "/")
	if err := admin.ValidateOrgUnitPath(path); err != nil {
		return nil, err
	}

	listType := admin.OrDefault(common.OptionalString(args, "type"), "all")
	apiType, ok := listTypes[listType]
	if !ok {
		return nil, dispatch.NewError(dispatch.CodeValidation,
			"type must be one of: all, children, all_including_parent")
	}

	result, err := clients.Directory.Orgunits.List(customerID(args)).
		OrgUnitPath(path).
		Type(apiType).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if len(result.OrganizationUnits) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No organizational units found under '%s'", path)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d organizational unit(s):\n\n", len(result.OrganizationUnits))
	for i, ou := range result.OrganizationUnits {
		fmt.Fprintf(&b, "%d. %s\n", i+1, admin.OrDefault(ou.Name, "Unknown"))
		fmt.Fprintf(&b, "   Path: %s\n", admin.OrDefault(ou.OrgUnitPath, "Unknown"))
		fmt.Fprintf(&b, "   Description: %s\n", admin.OrDefault(ou.Description, "No description"))
		fmt.Fprintf(&b, "   Parent: %s\n", admin.OrDefault(ou.ParentOrgUnitPath, "No parent"))
		fmt.Fprintf(&b, "   Block Inheritance: %s\n", admin.YesNo(ou.BlockInheritance))
		fmt.Fprintf(&b, "   ID: %s\n\n", admin.OrDefault(ou.OrgUnitId, "Unknown"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleGetOrgUnit(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	path, err := common.RequireString(args, "org_unit_path")
	if err != nil {
		return nil, err
	}
	if err := admin.ValidateOrgUnitPath(path); err != nil {
		return nil, err
	}

	ou, err := clients.Directory.Orgunits.Get(customerID(args), apiOrgUnitPath(path)).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	d := admin.NewDetail(fmt.Sprintf("Organizational Unit Details for '%s'", path))
	d.Field("Name", admin.OrDefault(ou.Name, "Unknown"))
	d.Field("Path", admin.OrDefault(ou.OrgUnitPath, "Unknown"))
	d.Field("Description", admin.OrDefault(ou.Description, "No description"))
	d.Field("Parent Path", admin.OrDefault(ou.ParentOrgUnitPath, "No parent"))
	d.Field("Organization Unit ID", admin.OrDefault(ou.OrgUnitId, "Unknown"))
	d.Field("Block Inheritance", admin.YesNo(ou.BlockInheritance))
	return mcp.NewToolResultText(d.String()), nil
}

func handleCreateOrgUnit(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	name, err := common.RequireString(args, "name")
	if err != nil {
		return nil, err
	}
	parentPath := admin.OrDefault(common.OptionalString(args, "parent_org_unit_path"), "/")
	if err := admin.ValidateOrgUnitPath(parentPath); err != nil {
		return nil, err
	}

	ou := &directory.OrgUnit{
		Name:              name,
		ParentOrgUnitPath: parentPath,
		Description:       common.OptionalString(args, "description"),
		BlockInheritance:  common.OptionalBool(args, "block_inheritance", false),
	}

	created, err := clients.Directory.Orgunits.Insert(customerID(args), ou).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	d := admin.NewDetail("Successfully created organizational unit")
	d.Field("Name", created.Name)
	d.Field("Path", created.OrgUnitPath)
	d.Field("Description", admin.OrDefault(created.Description, "No description"))
	d.Field("Parent Path", created.ParentOrgUnitPath)
	d.Field("Organization Unit ID", created.OrgUnitId)
	d.Field("Block Inheritance", admin.YesNo(created.BlockInheritance))
	return mcp.NewToolResultText(d.String()), nil
}

func handleUpdateOrgUnit(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	path, err := common.RequireString(args, "org_unit_path")
	if err != nil {
		return nil, err
	}
	if err := admin.ValidateOrgUnitPath(path); err != nil {
		return nil, err
	}

	update := &directory.OrgUnit{}
	var changed bool
	if name := common.OptionalString(args, "name"); name != "" {
		update.Name = name
		changed = true
	}
	if _, present := args["description"]; present {
		update.Description = common.OptionalString(args, "description")
		update.ForceSendFields = append(update.ForceSendFields, "Description")
		changed = true
	}
	if parent := common.OptionalString(args, "parent_org_unit_path"); parent != "" {
		if err := admin.ValidateOrgUnitPath(parent); err != nil {
			return nil, err
		}
		update.ParentOrgUnitPath = parent
		changed = true
	}
	if _, present := args["block_inheritance"]; present {
		update.BlockInheritance = common.OptionalBool(args, "block_inheritance", false)
		update.ForceSendFields = append(update.ForceSendFields, "BlockInheritance")
		changed = true
	}
	if !changed {
		return nil, dispatch.NewError(dispatch.CodeValidation,
			"no update fields provided, specify at least one of name, description, parent_org_unit_path or block_inheritance")
	}

	updated, err := clients.Directory.Orgunits.Update(customerID(args), apiOrgUnitPath(path), update).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	d := admin.NewDetail("Successfully updated organizational unit")
	d.Field("Name", updated.Name)
	d.Field("Path", updated.OrgUnitPath)
	d.Field("Description", admin.OrDefault(updated.Description, "No description"))
	d.Field("Parent Path", updated.ParentOrgUnitPath)
	d.Field("Organization Unit ID", updated.OrgUnitId)
	d.Field("Block Inheritance", admin.YesNo(updated.BlockInheritance))
	return mcp.NewToolResultText(d.String()), nil
}

func handleDeleteOrgUnit(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	path, err := common.RequireString(args, "org_unit_path")
	if err != nil {
		return nil, err
	}
	if err := admin.ValidateOrgUnitPath(path); err != nil {
		return nil, err
	}
	confirm, err := common.RequireBool(args, "confirm")
	if err != nil {
		return nil, err
	}
	if !confirm {
		return nil, dispatch.NewError(dispatch.CodeValidation,
			"organizational unit deletion requires confirm:true")
	}

	if err := clients.Directory.Orgunits.Delete(customerID(args), apiOrgUnitPath(path)).
		Context(ctx).Do(); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully deleted organizational unit: %s", path)), nil
}

// apiOrgUnitPath strips the leading slash; the get, update and delete
// endpoints take the path relative to the customer root.
func apiOrgUnitPath(path string) string {
	return strings.TrimPrefix(path, "/")
}
