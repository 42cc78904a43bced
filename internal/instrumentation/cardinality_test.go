package instrumentation

import "testing"

func TestExtractUserDomain(t *testing.T) {
	tests := []struct {
		email    string
		expected string
	}{
		{"jane@example.com", "example.com"},
		{"user@gmail.com", "gmail.com"},
		{"admin@company.org", "company.org"},
		{"test@subdomain.example.com", "subdomain.example.com"},
		{"invalid", "unknown"},
		{"", "unknown"},
		{"@", "unknown"},
		{"user@", "unknown"},
		{"@domain.com", "domain.com"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			result := ExtractUserDomain(tt.email)
			if result != tt.expected {
				t.Errorf("ExtractUserDomain(%q) = %q, want %q", tt.email, result, tt.expected)
			}
		})
	}
}

func TestHashUserEmail(t *testing.T) {
	if HashUserEmail("") != "unknown" {
		t.Errorf("HashUserEmail(\"\") = %q, want %q", HashUserEmail(""), "unknown")
	}

	h := HashUserEmail("jane@example.com")
	if len(h) != 16 {
		t.Errorf("expected 16 hex characters, got %d (%q)", len(h), h)
	}
	if h == "jane@example.com" {
		t.Error("hash must not equal the input email")
	}

	// Stable and case-insensitive
	if HashUserEmail("jane@example.com") != h {
		t.Error("hash should be stable across calls")
	}
	if HashUserEmail("Jane@Example.com") != h {
		t.Error("hash should be case-insensitive")
	}

	// Distinct inputs should produce distinct labels
	if HashUserEmail("bob@example.com") == h {
		t.Error("different emails should not collide")
	}
}

func TestOperationConstants(t *testing.T) {
	operations := map[string]string{
		OperationList:   "list",
		OperationGet:    "get",
		OperationCreate: "create",
		OperationUpdate: "update",
		OperationDelete: "delete",
		OperationAction: "action",
		OperationSearch: "search",
	}

	for constant, expected := range operations {
		if constant != expected {
			t.Errorf("Operation constant = %q, want %q", constant, expected)
		}
	}
}
