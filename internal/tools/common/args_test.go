package common

import (
	"errors"
	"testing"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/dispatch"
)

func TestRequireString(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]interface{}
		want    string
		wantErr bool
	}{
		{"present", map[string]interface{}{"email": "ada@example.com"}, "ada@example.com", false},
		{"absent", map[string]interface{}{}, "", true},
		{"empty", map[string]interface{}{"email": ""}, "", true},
		{"wrong type", map[string]interface{}{"email": 7}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RequireString(tt.args, "email")
			if (err != nil) != tt.wantErr {
				t.Fatalf("RequireString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("RequireString() = %q, want %q", got, tt.want)
			}
			if err != nil {
				var de *dispatch.Error
				if !errors.As(err, &de) || de.Code != dispatch.CodeValidation {
					t.Errorf("expected a validation error, got %v", err)
				}
			}
		})
	}
}

func TestOptionalBool(t *testing.T) {
	args := map[string]interface{}{
		"enabled":  true,
		"disabled": false,
		"number":   1.0,
	}
	if !OptionalBool(args, "enabled", false) {
		t.Error("enabled should be true")
	}
	if OptionalBool(args, "disabled", true) {
		t.Error("disabled should be false")
	}
	if !OptionalBool(args, "missing", true) {
		t.Error("missing should fall back to default")
	}
	if !OptionalBool(args, "number", true) {
		t.Error("wrong type should fall back to default")
	}
}

func TestRequireBool(t *testing.T) {
	if _, err := RequireBool(map[string]interface{}{}, "confirm"); err == nil {
		t.Error("expected error when absent")
	}
	got, err := RequireBool(map[string]interface{}{"confirm": false}, "confirm")
	if err != nil {
		t.Fatalf("RequireBool() error = %v", err)
	}
	if got {
		t.Error("RequireBool() = true, want false")
	}
}

func TestOptionalInt(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want int64
	}{
		{"json number", map[string]interface{}{"n": 42.0}, 42},
		{"int", map[string]interface{}{"n": 7}, 7},
		{"int64", map[string]interface{}{"n": int64(9)}, 9},
		{"absent", map[string]interface{}{}, 100},
		{"wrong type", map[string]interface{}{"n": "42"}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OptionalInt(tt.args, "n", 100); got != tt.want {
				t.Errorf("OptionalInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClampInt(t *testing.T) {
	tests := []struct {
		v, max, want int64
	}{
		{0, 500, 1},
		{-5, 500, 1},
		{100, 500, 100},
		{500, 500, 500},
		{501, 500, 500},
	}
	for _, tt := range tests {
		if got := ClampInt(tt.v, tt.max); got != tt.want {
			t.Errorf("ClampInt(%d, %d) = %d, want %d", tt.v, tt.max, got, tt.want)
		}
	}
}
