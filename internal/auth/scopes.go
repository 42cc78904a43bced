package auth

// AdminScopes are the Google Workspace Admin API scopes requested
// during authorization. They cover every tool the server exposes.
var AdminScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// User management
	"https://www.googleapis.com/auth/admin.directory.user",
	"https://www.googleapis.com/auth/admin.directory.user.alias",
	"https://www.googleapis.com/auth/admin.directory.user.security",

	// Group management
	"https://www.googleapis.com/auth/admin.directory.group",
	"https://www.googleapis.com/auth/admin.directory.group.member",
	"https://www.googleapis.com/auth/apps.groups.settings",

	// Organizational units
	"https://www.googleapis.com/auth/admin.directory.orgunit",

	// Device management
	"https://www.googleapis.com/auth/admin.directory.device.mobile",
	"https://www.googleapis.com/auth/admin.directory.device.chromeos",

	// Domain management
	"https://www.googleapis.com/auth/admin.directory.domain",

	// Reports and auditing
	"https://www.googleapis.com/auth/admin.reports.audit.readonly",
	"https://www.googleapis.com/auth/admin.reports.usage.readonly",

	// Customer and role management
	"https://www.googleapis.com/auth/admin.directory.customer",
	"https://www.googleapis.com/auth/admin.directory.rolemanagement",

	// Data transfers for offboarding
	"https://www.googleapis.com/auth/admin.datatransfer",

	// Resource calendars and notifications
	"https://www.googleapis.com/auth/admin.directory.resource.calendar",
	"https://www.googleapis.com/auth/admin.directory.notifications",
}
