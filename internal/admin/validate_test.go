package admin

import (
	"errors"
	"testing"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/dispatch"
)

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("want validation error, got nil")
	}
	var de *dispatch.Error
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want *dispatch.Error", err)
	}
	if de.Code != dispatch.CodeValidation {
		t.Errorf("error code = %s, want %s", de.Code, dispatch.CodeValidation)
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"jane@example.com", "j.doe+test@sub.example.co"}
	for _, email := range valid {
		if err := ValidateEmail(email, "email"); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", email, err)
		}
	}

	invalid := []string{"", "not-an-email", "a@b", "@example.com", "user@"}
	for _, email := range invalid {
		t.Run(email, func(t *testing.T) {
			assertValidationError(t, ValidateEmail(email, "email"))
		})
	}
}

func TestValidateDomain(t *testing.T) {
	if err := ValidateDomain("example.com"); err != nil {
		t.Errorf("ValidateDomain(example.com) = %v", err)
	}
	if err := ValidateDomain("EXAMPLE.COM"); err != nil {
		t.Errorf("ValidateDomain should lowercase before matching, got %v", err)
	}
	assertValidationError(t, ValidateDomain(""))
	assertValidationError(t, ValidateDomain("-bad.example"))
}

func TestValidateOrgUnitPath(t *testing.T) {
	valid := []string{"/", "/Engineering", "/Engineering/Platform Team", "/Sales/EMEA/"}
	for _, path := range valid {
		if err := ValidateOrgUnitPath(path); err != nil {
			t.Errorf("ValidateOrgUnitPath(%q) = %v, want nil", path, err)
		}
	}

	invalid := []string{"", "Engineering", "/bad|chars"}
	for _, path := range invalid {
		t.Run(path, func(t *testing.T) {
			assertValidationError(t, ValidateOrgUnitPath(path))
		})
	}
}
