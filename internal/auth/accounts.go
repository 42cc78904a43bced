package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// AccountType classifies a configured Workspace account.
type AccountType string

const (
	AccountTypeAdmin     AccountType = "admin"
	AccountTypeDelegated AccountType = "delegated"
	AccountTypeOther     AccountType = "other"
)

// AccountRecord describes one known Workspace account from the
// accounts configuration file. Records are read-only at runtime.
type AccountRecord struct {
	Email       string      `json:"email"`
	AccountType AccountType `json:"account_type"`
	ExtraInfo   string      `json:"extra_info,omitempty"`
}

// Description returns a human-readable description of the account.
func (a AccountRecord) Description() string {
	desc := fmt.Sprintf("Account for email: %s of type: %s.", a.Email, a.AccountType)
	if a.ExtraInfo != "" {
		desc += " Extra info: " + a.ExtraInfo
	}
	return desc
}

type accountsFile struct {
	Accounts []AccountRecord `json:"accounts"`
}

// LoadAccounts reads the accounts configuration file. A missing or
// invalid file is a startup-time configuration error, not something
// to be reported per call.
func LoadAccounts(path string) ([]AccountRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("accounts configuration file not found: %s: %w", path, err)
	}

	var f accountsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid accounts configuration in %s: %w", path, err)
	}

	for i, acc := range f.Accounts {
		if acc.Email == "" {
			return nil, fmt.Errorf("accounts configuration entry %d has no email", i)
		}
		switch acc.AccountType {
		case AccountTypeAdmin, AccountTypeDelegated, AccountTypeOther:
		default:
			return nil, fmt.Errorf("account %s has unknown account_type %q", acc.Email, acc.AccountType)
		}
	}
	return f.Accounts, nil
}

// DescribeAccounts formats the roster for help and error text shown
// to callers that have not authorized yet.
func DescribeAccounts(accounts []AccountRecord) string {
	if len(accounts) == 0 {
		return "No accounts configured."
	}

	var b strings.Builder
	b.WriteString("Configured accounts:\n")
	for _, acc := range accounts {
		fmt.Fprintf(&b, "- %s (%s)\n", acc.Email, acc.AccountType)
		if acc.ExtraInfo != "" {
			fmt.Fprintf(&b, "  %s\n", acc.ExtraInfo)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
