package security_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	datatransfer "google.golang.org/api/admin/datatransfer/v1"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/admin"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/dispatch"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/tools/common"
)

func handleManageDataTransfer(ctx context.Context, args map[string]interface{}, clients *admin.Clients, readOnly bool) (*mcp.CallToolResult, error) {
	action, err := common.RequireString(args, "action")
	if err != nil {
		return nil, err
	}

	switch action {
	case "list_transfers":
		return listTransfers(ctx, clients)
	case "get_transfer_status":
		transferID, err := common.RequireString(args, "transfer_id")
		if err != nil {
			return nil, dispatch.NewError(dispatch.CodeValidation,
				"transfer_id is required for get_transfer_status")
		}
		return getTransferStatus(ctx, clients, transferID)
	case "create_transfer":
		if readOnly {
			return nil, readOnlyErr(action)
		}
		return createTransfer(ctx, clients, args)
	default:
		return nil, dispatch.NewError(dispatch.CodeValidation,
			"unknown action %q, must be one of: list_transfers, get_transfer_status, create_transfer", action)
	}
}

func listTransfers(ctx context.Context, clients *admin.Clients) (*mcp.CallToolResult, error) {
	result, err := clients.DataTransfer.Transfers.List().Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(result.DataTransfers) == 0 {
		return mcp.NewToolResultText("No data transfers found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Data Transfers (%d found):\n\n", len(result.DataTransfers))
	for i, transfer := range result.DataTransfers {
		fmt.Fprintf(&b, "%d. Transfer ID: %s\n", i+1, admin.OrDefault(transfer.Id, "Unknown"))
		fmt.Fprintf(&b, "   From: %s\n", admin.OrDefault(transfer.OldOwnerUserId, "Unknown"))
		fmt.Fprintf(&b, "   To: %s\n", admin.OrDefault(transfer.NewOwnerUserId, "Unknown"))
		fmt.Fprintf(&b, "   Status: %s\n", admin.OrDefault(transfer.OverallTransferStatusCode, "Unknown"))
		fmt.Fprintf(&b, "   Requested: %s\n\n", admin.Timestamp(transfer.RequestTime))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func getTransferStatus(ctx context.Context, clients *admin.Clients, transferID string) (*mcp.CallToolResult, error) {
	transfer, err := clients.DataTransfer.Transfers.Get(transferID).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Data Transfer Status - ID: %s\n\n", admin.OrDefault(transfer.Id, "Unknown"))
	fmt.Fprintf(&b, "From: %s\n", admin.OrDefault(transfer.OldOwnerUserId, "Unknown"))
	fmt.Fprintf(&b, "To: %s\n", admin.OrDefault(transfer.NewOwnerUserId, "Unknown"))
	fmt.Fprintf(&b, "Overall Status: %s\n", admin.OrDefault(transfer.OverallTransferStatusCode, "Unknown"))
	fmt.Fprintf(&b, "Request Time: %s\n\n", admin.Timestamp(transfer.RequestTime))

	if len(transfer.ApplicationDataTransfers) > 0 {
		b.WriteString("Application Transfer Details:\n")
		for _, app := range transfer.ApplicationDataTransfers {
			fmt.Fprintf(&b, "  Application: %d (%s)\n", app.ApplicationId,
				admin.OrDefault(app.ApplicationTransferStatus, "Unknown"))
			for _, param := range app.ApplicationTransferParams {
				fmt.Fprintf(&b, "    - %s: %s\n", param.Key, strings.Join(param.Value, ", "))
			}
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func createTransfer(ctx context.Context, clients *admin.Clients, args map[string]interface{}) (*mcp.CallToolResult, error) {
	oldOwner, err := common.RequireString(args, "old_owner_id")
	if err != nil {
		return nil, dispatch.NewError(dispatch.CodeValidation,
			"old_owner_id and new_owner_id are required for create_transfer")
	}
	newOwner, err := common.RequireString(args, "new_owner_id")
	if err != nil {
		return nil, dispatch.NewError(dispatch.CodeValidation,
			"old_owner_id and new_owner_id are required for create_transfer")
	}
	if err := admin.ValidateEmail(oldOwner, "old_owner_id"); err != nil {
		return nil, err
	}
	if err := admin.ValidateEmail(newOwner, "new_owner_id"); err != nil {
		return nil, err
	}

	// The transfer API works on directory profile IDs.
	oldUser, err := clients.Directory.Users.Get(oldOwner).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	newUser, err := clients.Directory.Users.Get(newOwner).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	apps, err := clients.DataTransfer.Applications.List().
		CustomerId("my_customer").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(apps.Applications) == 0 {
		return nil, dispatch.NewError(dispatch.CodeValidation,
			"no transferable applications available for this customer")
	}

	var appTransfers []*datatransfer.ApplicationDataTransfer
	for _, app := range apps.Applications {
		appTransfers = append(appTransfers, &datatransfer.ApplicationDataTransfer{
			ApplicationId:             app.Id,
			ApplicationTransferParams: app.TransferParams,
		})
	}

	created, err := clients.DataTransfer.Transfers.Insert(&datatransfer.DataTransfer{
		OldOwnerUserId:           oldUser.Id,
		NewOwnerUserId:           newUser.Id,
		ApplicationDataTransfers: appTransfers,
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("Successfully started data transfer:\n\n")
	fmt.Fprintf(&b, "Transfer ID: %s\n", created.Id)
	fmt.Fprintf(&b, "From: %s\n", oldOwner)
	fmt.Fprintf(&b, "To: %s\n", newOwner)
	fmt.Fprintf(&b, "Applications: %d\n", len(appTransfers))
	fmt.Fprintf(&b, "Status: %s\n", admin.OrDefault(created.OverallTransferStatusCode, "inProgress"))
	return mcp.NewToolResultText(b.String()), nil
}
