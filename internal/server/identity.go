package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/giantswarm/mcp-oauth/providers"
	"github.com/giantswarm/mcp-oauth/storage"
	"golang.org/x/oauth2"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/logging"
)

// UserInfo is the identity record attached to authenticated requests.
type UserInfo = providers.UserInfo

const (
	// GoogleUserinfoEndpoint validates forwarded access tokens by
	// resolving them to an identity.
	GoogleUserinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

	// AccessTokenHeader optionally carries the user's Google access
	// token when an upstream gateway terminates OAuth and forwards the
	// token alongside the Authorization header.
	AccessTokenHeader = "X-Google-Access-Token"

	// RefreshTokenHeader optionally carries a refresh token so
	// long-running sessions survive access token expiry.
	RefreshTokenHeader = "X-Google-Refresh-Token"

	// TokenExpiryHeader optionally carries the access token expiry in
	// RFC 3339. Without it a 1 hour lifetime is assumed.
	TokenExpiryHeader = "X-Google-Token-Expiry"

	// defaultTokenExpiry matches the typical Google access token
	// lifetime.
	defaultTokenExpiry = 1 * time.Hour

	// tokenStoreTimeout bounds writes into the session token store.
	tokenStoreTimeout = 5 * time.Second
)

type contextKey string

const userContextKey contextKey = "workspace_user"

// ContextWithUserInfo attaches an authenticated identity to ctx.
func ContextWithUserInfo(ctx context.Context, info *UserInfo) context.Context {
	return context.WithValue(ctx, userContextKey, info)
}

// UserFromContext retrieves the authenticated identity, if any.
func UserFromContext(ctx context.Context) (*UserInfo, bool) {
	info, ok := ctx.Value(userContextKey).(*UserInfo)
	return info, ok
}

// IdentityFromContext adapts UserFromContext to the dispatcher's
// identity hook: an authenticated email overrides the user_id
// argument of a tool call.
func IdentityFromContext(ctx context.Context) (string, bool) {
	info, ok := UserFromContext(ctx)
	if !ok || info == nil || info.Email == "" {
		return "", false
	}
	return info.Email, true
}

// IdentityMiddlewareConfig configures the forwarded-identity
// middleware for the HTTP transport.
type IdentityMiddlewareConfig struct {
	// Store receives forwarded Google tokens keyed by user email. The
	// credential manager consults it as a session overlay.
	Store storage.TokenStore

	// UserinfoEndpoint overrides the Google userinfo endpoint,
	// primarily for tests.
	UserinfoEndpoint string

	// HTTPClient overrides the client used for userinfo calls.
	HTTPClient *http.Client

	// Logger for audit logging. Defaults to slog.Default.
	Logger *slog.Logger
}

// IdentityMiddleware authenticates requests by resolving the bearer
// token to a Google identity, stores any forwarded tokens in the
// session store, and attaches the identity to the request context.
//
// A request without an Authorization header passes through
// unauthenticated; tool calls then fall back to the user_id argument
// and on-disk credentials.
func IdentityMiddleware(config IdentityMiddlewareConfig) func(http.Handler) http.Handler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	endpoint := config.UserinfoEndpoint
	if endpoint == "" {
		endpoint = GoogleUserinfoEndpoint
	}
	client := config.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearer, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			info, err := fetchUserInfo(r.Context(), client, endpoint, bearer)
			if err != nil {
				logger.Warn("bearer token validation failed", logging.Err(err))
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				writeUnauthorized(w, "invalid_token", "bearer token could not be validated")
				return
			}

			ctx := ContextWithUserInfo(r.Context(), info)

			// An upstream gateway may forward the user's Google tokens
			// in dedicated headers; make them available to the
			// credential manager for API calls on this user's behalf.
			if token := forwardedToken(r, bearer); token != nil && config.Store != nil {
				storeCtx, cancel := context.WithTimeout(ctx, tokenStoreTimeout)
				err := config.Store.SaveToken(storeCtx, info.Email, token)
				cancel()
				if err != nil {
					logger.Error("failed to store forwarded token",
						logging.UserHash(info.Email), logging.Err(err))
				} else {
					logger.Debug("stored forwarded token",
						logging.UserHash(info.Email),
						slog.Bool("has_refresh_token", token.RefreshToken != ""))
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the bearer token from the Authorization
// header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// fetchUserInfo resolves an access token to an identity via the
// userinfo endpoint.
func fetchUserInfo(ctx context.Context, client *http.Client, endpoint, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request returned status %d", resp.StatusCode)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("userinfo response has no email")
	}
	return &info, nil
}

// forwardedToken builds an oauth2 token from the forwarded-token
// headers. When no dedicated access token header is present the
// bearer token itself is used; gateways that forward raw Google
// access tokens need no extra headers.
func forwardedToken(r *http.Request, bearer string) *oauth2.Token {
	accessToken := r.Header.Get(AccessTokenHeader)
	if accessToken == "" {
		accessToken = bearer
	}
	return &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: r.Header.Get(RefreshTokenHeader),
		TokenType:    "Bearer",
		Expiry:       parseTokenExpiry(r.Header.Get(TokenExpiryHeader)),
	}
}

// parseTokenExpiry parses the expiry header, assuming the default
// lifetime when absent or invalid.
func parseTokenExpiry(value string) time.Time {
	if value == "" {
		return time.Now().Add(defaultTokenExpiry)
	}
	expiry, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Now().Add(defaultTokenExpiry)
	}
	return expiry
}

func writeUnauthorized(w http.ResponseWriter, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": description,
	})
}
