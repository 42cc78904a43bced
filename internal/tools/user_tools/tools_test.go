package user_tools

import (
	"context"
	"errors"
	"testing"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/dispatch"
)

func registeredNames(t *testing.T, readOnly bool) []string {
	t.Helper()
	reg := dispatch.NewRegistry()
	if err := Register(reg, nil, readOnly); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return reg.Names()
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	var de *dispatch.Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *dispatch.Error, got %T: %v", err, err)
	}
	if de.Code != dispatch.CodeValidation {
		t.Errorf("Code = %s, want %s", de.Code, dispatch.CodeValidation)
	}
}

func TestRegisterReadOnly(t *testing.T) {
	names := registeredNames(t, true)
	want := []string{
		"mcp__gsuite_admin__list_users",
		"mcp__gsuite_admin__get_user",
	}
	if len(names) != len(want) {
		t.Fatalf("registered %d tools, want %d: %v", len(names), len(want), names)
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("names[%d] = %s, want %s", i, names[i], name)
		}
	}
}

func TestRegisterFull(t *testing.T) {
	names := registeredNames(t, false)
	want := []string{
		"mcp__gsuite_admin__list_users",
		"mcp__gsuite_admin__get_user",
		"mcp__gsuite_admin__create_user",
		"mcp__gsuite_admin__update_user",
		"mcp__gsuite_admin__suspend_user",
		"mcp__gsuite_admin__reset_password",
		"mcp__gsuite_admin__delete_user",
	}
	if len(names) != len(want) {
		t.Fatalf("registered %d tools, want %d: %v", len(names), len(want), names)
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("names[%d] = %s, want %s", i, names[i], name)
		}
	}
}

func TestHandleGetUserValidation(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing target_user", map[string]interface{}{}},
		{"empty target_user", map[string]interface{}{"target_user": ""}},
		{"wrong type", map[string]interface{}{"target_user": 42}},
		{"not an email", map[string]interface{}{"target_user": "not-an-email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handleGetUser(context.Background(), tt.args, nil)
			assertValidationError(t, err)
		})
	}
}

func TestHandleCreateUserValidation(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing email", map[string]interface{}{
			"first_name": "Ada", "last_name": "Lovelace",
		}},
		{"invalid email", map[string]interface{}{
			"email": "nope", "first_name": "Ada", "last_name": "Lovelace",
		}},
		{"missing first_name", map[string]interface{}{
			"email": "ada@example.com", "last_name": "Lovelace",
		}},
		{"missing last_name", map[string]interface{}{
			"email": "ada@example.com", "first_name": "Ada",
		}},
		{"bad org unit", map[string]interface{}{
			"email": "ada@example.com", "first_name": "Ada", "last_name": "Lovelace",
			"org_unit_path": "engineering",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handleCreateUser(context.Background(), tt.args, nil)
			assertValidationError(t, err)
		})
	}
}

func TestHandleSuspendUserValidation(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing suspend flag", map[string]interface{}{
			"target_user": "ada@example.com",
		}},
		{"suspend without reason", map[string]interface{}{
			"target_user": "ada@example.com", "suspend": true,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handleSuspendUser(context.Background(), tt.args, nil)
			assertValidationError(t, err)
		})
	}
}

func TestHandleDeleteUserRequiresConfirmation(t *testing.T) {
	_, err := handleDeleteUser(context.Background(), map[string]interface{}{
		"target_user": "ada@example.com",
		"confirm":     false,
	}, nil)
	assertValidationError(t, err)
}

func TestHandleUpdateUserNoFields(t *testing.T) {
	_, err := handleUpdateUser(context.Background(), map[string]interface{}{
		"target_user": "ada@example.com",
	}, nil)
	assertValidationError(t, err)
}
