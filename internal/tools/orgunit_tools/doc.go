// Package orgunit_tools provides tools for managing Google Workspace
// organizational units: listing the OU tree, inspecting single units
// and creating, moving or deleting them.
package orgunit_tools
