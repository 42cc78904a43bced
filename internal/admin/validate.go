package admin

import (
	"regexp"
	"strings"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/dispatch"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	domainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*[a-zA-Z0-9]*\.?[a-zA-Z]{2,}$`)

	orgUnitPattern = regexp.MustCompile(`^(/[a-zA-Z0-9\s\-_.]+)*/?$`)
)

// ValidateEmail checks an email address format. The returned error is
// already classified as a validation failure.
func ValidateEmail(email, fieldName string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return dispatch.NewError(dispatch.CodeValidation, "%s must be a non-empty string", fieldName)
	}
	if !emailPattern.MatchString(email) {
		return dispatch.NewError(dispatch.CodeValidation, "invalid email format for %s: %s", fieldName, email)
	}
	return nil
}

// ValidateDomain checks a domain name format.
func ValidateDomain(domain string) error {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return dispatch.NewError(dispatch.CodeValidation, "domain must be a non-empty string")
	}
	if !domainPattern.MatchString(domain) {
		return dispatch.NewError(dispatch.CodeValidation, "invalid domain format: %s", domain)
	}
	return nil
}

// ValidateOrgUnitPath checks an organizational unit path. The root
// path "/" is valid.
func ValidateOrgUnitPath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return dispatch.NewError(dispatch.CodeValidation, "org_unit_path must be a non-empty string")
	}
	if path == "/" {
		return nil
	}
	if !strings.HasPrefix(path, "/") || !orgUnitPattern.MatchString(path) {
		return dispatch.NewError(dispatch.CodeValidation, "invalid organizational unit path: %s", path)
	}
	return nil
}
