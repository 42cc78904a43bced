package common

import (
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/dispatch"
)

// RequireString returns a required string argument, or a classified
// validation error when it is absent, empty or the wrong type.
func RequireString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", dispatch.NewError(dispatch.CodeValidation, "%s is required", key)
	}
	return v, nil
}

// OptionalString returns a string argument, or "" when absent.
func OptionalString(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

// OptionalBool returns a boolean argument, or def when absent.
func OptionalBool(args map[string]interface{}, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

// RequireBool returns a required boolean argument.
func RequireBool(args map[string]interface{}, key string) (bool, error) {
	v, ok := args[key].(bool)
	if !ok {
		return false, dispatch.NewError(dispatch.CodeValidation, "%s is required", key)
	}
	return v, nil
}

// OptionalInt returns an integer argument, or def when absent. JSON
// numbers arrive as float64.
func OptionalInt(args map[string]interface{}, key string, def int64) int64 {
	switch v := args[key].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	}
	return def
}

// ClampInt bounds v to [1, max].
func ClampInt(v, max int64) int64 {
	if v < 1 {
		return 1
	}
	if v > max {
		return max
	}
	return v
}
