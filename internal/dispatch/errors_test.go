package dispatch

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/api/googleapi"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/auth"
)

func TestErrorText(t *testing.T) {
	e := NewError(CodeValidation, "user_id argument is required")
	want := "Error (VALIDATION_ERROR): user_id argument is required"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil", nil, ""},
		{"passthrough", NewError(CodeConfig, "bad flag"), CodeConfig},
		{"wrapped passthrough", fmt.Errorf("outer: %w", NewError(CodeValidation, "bad arg")), CodeValidation},
		{"no credential", auth.ErrNoCredential, CodeAuthFailed},
		{"wrapped no credential", fmt.Errorf("for admin@example.com: %w", auth.ErrNoCredential), CodeAuthFailed},
		{"corrupt record", &auth.CorruptRecordError{UserID: "admin@example.com", Path: "/tmp/x", Err: errors.New("bad json")}, CodeCorruptRecord},
		{"exchange failure", &auth.ExchangeError{UserID: "admin@example.com", Err: errors.New("invalid_grant")}, CodeExchangeFailed},
		{"api 400", &googleapi.Error{Code: 400, Message: "invalid input"}, "GOOGLE_API_400"},
		{"api 403", &googleapi.Error{Code: 403, Message: "forbidden"}, "GOOGLE_API_403"},
		{"api 404", &googleapi.Error{Code: 404, Message: "not found"}, "GOOGLE_API_404"},
		{"api 429", &googleapi.Error{Code: 429, Message: "rate limited"}, "GOOGLE_API_429"},
		{"api 500", &googleapi.Error{Code: 500, Message: "backend error"}, "GOOGLE_API_500"},
		{"api other status", &googleapi.Error{Code: 418, Message: "teapot"}, CodeGoogleAPI},
		{"rate limit by reason string", errors.New("rateLimitExceeded: too many requests"), "GOOGLE_API_429"},
		{"quota by reason string", errors.New("quotaExceeded for user"), "GOOGLE_API_429"},
		{"untyped googleapi", errors.New("googleapi: got HTTP response code 502"), CodeGoogleAPI},
		{"unknown", errors.New("something odd"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if tt.wantCode == "" {
				if got != nil {
					t.Fatalf("Classify(nil) = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Classify() = nil, want code %s", tt.wantCode)
			}
			if got.Code != tt.wantCode {
				t.Errorf("Classify() code = %s, want %s", got.Code, tt.wantCode)
			}
		})
	}
}

func TestClassifyKeepsClassifiedMessage(t *testing.T) {
	orig := NewError(CodeUnknownTool, "unknown tool")
	got := Classify(orig)
	if got != orig {
		t.Error("Classify() should return already-classified errors unchanged")
	}
}
