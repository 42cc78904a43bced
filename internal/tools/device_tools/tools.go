package device_tools

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

// Register adds the device management tools to the registry. The
// manage tool is omitted in read-only mode since every action it
// offers mutates device state.
func Register(reg *dispatch.Registry, clients *admin.ClientCache, readOnly bool) error {
	listMobileTool := mcp.NewTool("mcp__gsuite_admin__list_mobile_devices",
		mcp.WithDescription("List mobile devices in a Google Workspace domain."),
		common.UserIDOption(),
		mcp.WithString("customer_id",
			mcp.Description("Customer ID (defaults to my_customer)"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of devices to return (default: 100, max: 500)"),
		),
		mcp.WithString("query",
			mcp.Description("Search query to filter devices (optional)"),
		),
		mcp.WithString("order_by",
			mcp.Description("Sort field (deviceId, email, lastSync, model, name, os, status, type)"),
		),
	)
	if err := reg.Register(common.NewHandler(listMobileTool, clients, handleListMobileDevices)); err != nil {
		return err
	}

	getMobileTool := mcp.NewTool("mcp__gsuite_admin__get_mobile_device",
		mcp.WithDescription("Get detailed information about a specific mobile device, including security state."),
		common.UserIDOption(),
		mcp.WithString("device_id",
			mcp.Required(),
			mcp.Description("Resource ID of the mobile device"),
		),
		mcp.WithString("customer_id",
			mcp.Description("Customer ID (defaults to my_customer)"),
		),
	)
	if err := reg.Register(common.NewHandler(getMobileTool, clients, handleGetMobileDevice)); err != nil {
		return err
	}

	listChromeTool := mcp.NewTool("mcp__gsuite_admin__list_chrome_devices",
		mcp.WithDescription("List Chrome OS devices in a Google Workspace domain."),
		common.UserIDOption(),
		mcp.WithString("customer_id",
			mcp.Description("Customer ID (defaults to my_customer)"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of devices to return (default: 100, max: 500)"),
		),
		mcp.WithString("query",
			mcp.Description("Search query to filter devices (optional)"),
		),
		mcp.WithString("order_by",
			mcp.Description("Sort field (annotatedLocation, annotatedUser, lastSync, notes, serialNumber, status, supportEndDate)"),
		),
		mcp.WithString("org_unit_path",
			mcp.Description("Organizational unit path to filter devices (optional)"),
		),
	)
	if err := reg.Register(common.NewHandler(listChromeTool, clients, handleListChromeDevices)); err != nil {
		return err
	}

	getChromeTool := mcp.NewTool("mcp__gsuite_admin__get_chrome_device",
		mcp.WithDescription("Get detailed information about a specific Chrome OS device."),
		common.UserIDOption(),
		mcp.WithString("device_id",
			mcp.Required(),
			mcp.Description("Device ID of the Chrome OS device"),
		),
		mcp.WithString("customer_id",
			mcp.Description("Customer ID (defaults to my_customer)"),
		),
	)
	if err := reg.Register(common.NewHandler(getChromeTool, clients, handleGetChromeDevice)); err != nil {
		return err
	}

	if readOnly {
		return nil
	}

	manageTool := mcp.NewTool("mcp__gsuite_admin__manage_mobile_device",
		mcp.WithDescription("Perform a management action on a mobile device (approve, block, wipe, delete). Wipe and delete require confirm:true."),
		common.UserIDOption(),
		mcp.WithString("device_id",
			mcp.Required(),
			mcp.Description("Resource ID of the mobile device"),
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("One of: approve, block, cancel_remote_wipe_then_activate, cancel_remote_wipe_then_block, admin_remote_wipe, admin_account_wipe, delete"),
		),
		mcp.WithBoolean("confirm",
			mcp.Description("Required true for admin_remote_wipe, admin_account_wipe and delete"),
		),
		mcp.WithString("customer_id",
			mcp.Description("Customer ID (defaults to my_customer)"),
		),
	)
	return reg.Register(common.NewHandler(manageTool, clients, handleManageMobileDevice))
}

func customerID(args map[string]interface{}) string {
	return admin.OrDefault(common.OptionalString(args, "customer_id"), "my_customer")
}

// firstOr returns the first element of a multi-valued device field.
func firstOr(values []string, fallback string) string {
	if len(values) == 0 || values[0] == "" {
		return fallback
	}
	return values[0]
}

func handleListMobileDevices(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	call := clients.Directory.Mobiledevices.List(customerID(args)).
		MaxResults(common.ClampInt(common.OptionalInt(args, "max_results", 100), 500)).
		OrderBy(admin.OrDefault(common.OptionalString(args, "order_by"), "email"))
	if query := common.OptionalString(args, "query"); query != "" {
		call = call.Query(query)
	}

	result, err := call.Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if len(result.Mobiledevices) == 0 {
		return mcp.NewToolResultText("No mobile devices found in the domain"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d mobile device(s):\n\n", len(result.Mobiledevices))
	for i, device := range result.Mobiledevices {
		fmt.Fprintf(&b, "%d. %s\n", i+1, firstOr(device.Name, "Unknown"))
		fmt.Fprintf(&b, "   User: %s\n", firstOr(device.Email, "Unknown"))
		fmt.Fprintf(&b, "   Model: %s\n", admin.OrDefault(device.Model, "Unknown"))
		fmt.Fprintf(&b, "   OS: %s\n", admin.OrDefault(device.Os, "Unknown"))
		fmt.Fprintf(&b, "   Status: %s\n", admin.OrDefault(device.Status, "Unknown"))
		fmt.Fprintf(&b, "   Last Sync: %s\n", admin.Timestamp(device.LastSync))
		fmt.Fprintf(&b, "   Device ID: %s\n\n", admin.OrDefault(device.ResourceId, "Unknown"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleGetMobileDevice(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	deviceID, err := common.RequireString(args, "device_id")
	if err != nil {
		return nil, err
	}

	device, err := clients.Directory.Mobiledevices.Get(customerID(args), deviceID).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	d := admin.NewDetail(fmt.Sprintf("Mobile Device Details for '%s'", deviceID))
	d.Field("Name", firstOr(device.Name, "Unknown"))
	d.Field("User", firstOr(device.Email, "Unknown"))
	d.Field("Model", admin.OrDefault(device.Model, "Unknown"))
	d.Field("OS", admin.OrDefault(device.Os, "Unknown"))
	d.Field("Status", admin.OrDefault(device.Status, "Unknown"))
	d.Field("Last Sync", admin.Timestamp(device.LastSync))
	d.Field("Device ID", admin.OrDefault(device.ResourceId, "Unknown"))
	d.Field("IMEI", admin.OrDefault(device.Imei, "Unknown"))
	d.Field("Network", admin.OrDefault(device.NetworkOperator, "Unknown"))
	d.Field("Type", admin.OrDefault(device.Type, "Unknown"))
	d.Blank()
	d.Section("Security")
	d.Item(fmt.Sprintf("Managed Account on Owner Profile: %s", admin.YesNo(device.ManagedAccountIsOnOwnerProfile)))
	d.Item(fmt.Sprintf("Device Password Status: %s", admin.OrDefault(device.DevicePasswordStatus, "Unknown")))
	d.Item(fmt.Sprintf("Encryption Status: %s", admin.OrDefault(device.EncryptionStatus, "Unknown")))
	return mcp.NewToolResultText(d.String()), nil
}

// actionMessages phrases the success line for each device action.
var actionMessages = map[string]string{
	"approve":                          "approved",
	"block":                            "blocked",
	"cancel_remote_wipe_then_activate": "cancelled remote wipe and activated",
	"cancel_remote_wipe_then_block":    "cancelled remote wipe and blocked",
	"admin_remote_wipe":                "initiated admin remote wipe on",
	"admin_account_wipe":               "initiated admin account wipe on",
}

// destructiveActions cannot be undone and require explicit confirmation.
var destructiveActions = map[string]bool{
	"admin_remote_wipe":  true,
	"admin_account_wipe": true,
	"delete":             true,
}

func handleManageMobileDevice(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	deviceID, err := common.RequireString(args, "device_id")
	if err != nil {
		return nil, err
	}
	action, err := common.RequireString(args, "action")
	if err != nil {
		return nil, err
	}
	if action != "delete" {
		if _, ok := actionMessages[action]; !ok {
			return nil, dispatch.NewError(dispatch.CodeValidation,
				"unknown action %q, must be one of: approve, block, cancel_remote_wipe_then_activate, cancel_remote_wipe_then_block, admin_remote_wipe, admin_account_wipe, delete", action)
		}
	}
	if destructiveActions[action] && !common.OptionalBool(args, "confirm", false) {
		return nil, dispatch.NewError(dispatch.CodeValidation,
			"action '%s' requires confirm:true", action)
	}

	customer := customerID(args)
	if action == "delete" {
		if err := clients.Directory.Mobiledevices.Delete(customer, deviceID).
			Context(ctx).Do(); err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(fmt.Sprintf("Successfully deleted mobile device: %s", deviceID)), nil
	}

	if err := clients.Directory.Mobiledevices.Action(customer, deviceID, &directory.MobileDeviceAction{
		Action: action,
	}).Context(ctx).Do(); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully %s device: %s", actionMessages[action], deviceID)), nil
}

func handleListChromeDevices(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	path := common.OptionalString(args, "org_unit_path")
	if path != "" {
		if err := admin.ValidateOrgUnitPath(path); err != nil {
			return nil, err
		}
	}

	call := clients.Directory.Chromeosdevices.List(customerID(args)).
		MaxResults(common.ClampInt(common.OptionalInt(args, "max_results", 100), 500)).
		OrderBy(admin.OrDefault(common.OptionalString(args, "order_by"), "lastSync"))
	if query := common.OptionalString(args, "query"); query != "" {
		call = call.Query(query)
	}
	if path != "" {
		call = call.OrgUnitPath(path)
	}

	result, err := call.Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if len(result.Chromeosdevices) == 0 {
		return mcp.NewToolResultText("No Chrome OS devices found in the domain"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d Chrome OS device(s):\n\n", len(result.Chromeosdevices))
	for i, device := range result.Chromeosdevices {
		fmt.Fprintf(&b, "%d. %s\n", i+1, admin.OrDefault(device.SerialNumber, "Chrome Device"))
		fmt.Fprintf(&b, "   Device ID: %s\n", admin.OrDefault(device.DeviceId, "Unknown"))
		fmt.Fprintf(&b, "   Model: %s\n", admin.OrDefault(device.Model, "Unknown"))
		fmt.Fprintf(&b, "   OS Version: %s\n", admin.OrDefault(device.OsVersion, "Unknown"))
		fmt.Fprintf(&b, "   User: %s\n", admin.OrDefault(device.AnnotatedUser, "Unknown"))
		fmt.Fprintf(&b, "   Location: %s\n", admin.OrDefault(device.AnnotatedLocation, "Unknown"))
		fmt.Fprintf(&b, "   Status: %s\n", admin.OrDefault(device.Status, "Unknown"))
		fmt.Fprintf(&b, "   Last Sync: %s\n\n", admin.Timestamp(device.LastSync))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleGetChromeDevice(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	deviceID, err := common.RequireString(args, "device_id")
	if err != nil {
		return nil, err
	}

	device, err := clients.Directory.Chromeosdevices.Get(customerID(args), deviceID).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	d := admin.NewDetail(fmt.Sprintf("Chrome OS Device Details for '%s'", deviceID))
	d.Field("Device ID", admin.OrDefault(device.DeviceId, "Unknown"))
	d.Field("Serial Number", admin.OrDefault(device.SerialNumber, "Unknown"))
	d.Field("Model", admin.OrDefault(device.Model, "Unknown"))
	d.Field("OS Version", admin.OrDefault(device.OsVersion, "Unknown"))
	d.Field("Platform Version", admin.OrDefault(device.PlatformVersion, "Unknown"))
	d.Field("Firmware Version", admin.OrDefault(device.FirmwareVersion, "Unknown"))
	d.Field("Annotated User", admin.OrDefault(device.AnnotatedUser, "Unknown"))
	d.Field("Annotated Location", admin.OrDefault(device.AnnotatedLocation, "Unknown"))
	d.Field("Status", admin.OrDefault(device.Status, "Unknown"))
	d.Field("Last Sync", admin.Timestamp(device.LastSync))
	d.Field("Org Unit Path", admin.OrDefault(device.OrgUnitPath, "Unknown"))
	d.Field("Notes", admin.OrDefault(device.Notes, "No notes"))
	d.Field("Support End Date", admin.Timestamp(device.SupportEndDate))
	if device.MacAddress != "" {
		d.Field("MAC Address", device.MacAddress)
	}
	if device.EthernetMacAddress != "" {
		d.Field("Ethernet MAC", device.EthernetMacAddress)
	}
	return mcp.NewToolResultText(d.String()), nil
}
