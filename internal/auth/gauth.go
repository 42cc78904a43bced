package auth

import (
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultRedirectURL receives the authorization code during the
// local bootstrap flow.
const DefaultRedirectURL = "http://localhost:4100/code"

// LoadClientConfig reads a Google OAuth client secrets file (the
// `.gauth.json` downloaded from the Cloud console, in either
// "installed" or "web" form) and returns an oauth2 config requesting
// the Workspace Admin scopes.
func LoadClientConfig(path string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("OAuth configuration file not found: %s: %w", path, err)
	}

	conf, err := google.ConfigFromJSON(data, AdminScopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid OAuth configuration in %s: %w", path, err)
	}

	if conf.RedirectURL == "" {
		conf.RedirectURL = DefaultRedirectURL
	}
	return conf, nil
}
