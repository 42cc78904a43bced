// Package user_tools implements the Workspace user administration
// tools: listing and inspecting users, account creation, profile
// updates, suspension, password resets and deletion.
package user_tools
