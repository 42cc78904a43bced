package auth

import (
	"time"

	"golang.org/x/oauth2"
)

// expiryThreshold is how close to expiry an access token may get
// before it is treated as expired. Refreshing slightly early avoids
// handing out tokens that die mid-request.
const expiryThreshold = 5 * time.Minute

// Credential is one user's authorization grant: an access/refresh
// token pair plus the metadata needed to use and renew it.
type Credential struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
	Scopes       []string  `json:"scopes"`
}

// Expired reports whether the access token is expired or will expire
// within the refresh threshold. A zero expiry means the token does
// not expire.
func (c *Credential) Expired() bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Now().Add(expiryThreshold).After(c.Expiry)
}

// Usable reports whether the credential can still authorize API
// calls, either directly or after a refresh. A credential with an
// expired access token and no refresh token is dead weight and must
// be treated as absent.
func (c *Credential) Usable() bool {
	return !c.Expired() || c.RefreshToken != ""
}

// Token converts the credential to an oauth2 token.
func (c *Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry,
	}
}

// TokenSource returns a static token source for the credential. The
// Manager guarantees freshness before handing a credential out, so
// API clients do not need a refreshing source of their own.
func (c *Credential) TokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(c.Token())
}

// newCredential builds a Credential from an oauth2 token.
func newCredential(userID string, tok *oauth2.Token, scopes []string) *Credential {
	return &Credential{
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		Scopes:       scopes,
	}
}
