// Package group_tools implements the Workspace group administration
// tools: listing and inspecting groups, group creation and deletion,
// and membership listings.
package group_tools
