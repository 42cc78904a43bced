package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/giantswarm/mcp-oauth/storage"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// RevokeEndpoint is Google's OAuth2 token revocation endpoint.
const RevokeEndpoint = "https://oauth2.googleapis.com/revoke"

// defaultTimeout bounds every network call the Manager makes (token
// refresh, code exchange, revocation).
const defaultTimeout = 30 * time.Second

// MetricsRecorder records credential lifecycle operations. The
// instrumentation package provides the real implementation; a nil
// recorder disables recording.
type MetricsRecorder interface {
	RecordCredentialOp(ctx context.Context, op, outcome string)
}

// Manager is the single source callers use to obtain a usable
// credential for a user. It keeps a read-through in-memory cache in
// front of a Store and transparently refreshes expired access tokens.
type Manager struct {
	config *oauth2.Config
	store  *Store

	mu    sync.RWMutex
	cache map[string]*Credential

	// group collapses concurrent refresh/exchange work per user so a
	// token is never rotated twice by racing callers.
	group singleflight.Group

	// sessions is an optional overlay consulted before disk. The HTTP
	// transport's forwarded-identity middleware stores per-user Google
	// tokens here for users that never ran the local bootstrap flow.
	sessions storage.TokenStore

	httpClient     *http.Client
	timeout        time.Duration
	revokeEndpoint string
	logger         *slog.Logger
	metrics        MetricsRecorder
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used by the manager.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithHTTPClient sets a custom HTTP client for token endpoint calls.
func WithHTTPClient(c *http.Client) ManagerOption {
	return func(m *Manager) { m.httpClient = c }
}

// WithTimeout bounds each network call the manager makes.
func WithTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) { m.timeout = d }
}

// WithSessionTokens attaches a session token overlay, typically an
// mcp-oauth token store populated by the HTTP transport middleware.
func WithSessionTokens(s storage.TokenStore) ManagerOption {
	return func(m *Manager) { m.sessions = s }
}

// WithMetrics attaches a credential metrics recorder.
func WithMetrics(rec MetricsRecorder) ManagerOption {
	return func(m *Manager) { m.metrics = rec }
}

// WithRevokeEndpoint overrides the token revocation endpoint.
func WithRevokeEndpoint(url string) ManagerOption {
	return func(m *Manager) { m.revokeEndpoint = url }
}

// NewManager creates a credential manager backed by store, using
// config for refresh, exchange and revocation.
func NewManager(config *oauth2.Config, store *Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		config:         config,
		store:          store,
		cache:          make(map[string]*Credential),
		timeout:        defaultTimeout,
		revokeEndpoint: RevokeEndpoint,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AuthCodeURL returns the URL the user must visit to authorize the
// application. Offline access is requested so a refresh token is
// issued; consent is forced so re-authorization rotates it.
func (m *Manager) AuthCodeURL(state string) string {
	return m.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Credential returns a usable (non-expired) credential for userID.
// It returns ErrNoCredential when the user has never authorized, the
// grant is unrecoverable, or the refresh failed; it returns a
// *CorruptRecordError when the persisted record is unreadable.
func (m *Manager) Credential(ctx context.Context, userID string) (*Credential, error) {
	if userID == "" {
		return nil, errors.New("user id cannot be empty")
	}

	m.mu.RLock()
	cred, ok := m.cache[userID]
	m.mu.RUnlock()
	if ok && !cred.Expired() {
		return cred, nil
	}

	// Slow path: load and possibly refresh. Collapsed per user so
	// concurrent callers share one token-endpoint call.
	v, err, _ := m.group.Do("cred:"+userID, func() (interface{}, error) {
		return m.loadOrRefresh(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Credential), nil
}

// loadOrRefresh resolves a credential from cache, session overlay or
// store, refreshing it when expired. Runs under the single-flight
// group; exactly one instance executes per user at a time.
func (m *Manager) loadOrRefresh(ctx context.Context, userID string) (*Credential, error) {
	// Re-check the cache: a racing caller may have refreshed while
	// this one waited on the group.
	m.mu.RLock()
	cred, ok := m.cache[userID]
	m.mu.RUnlock()

	if !ok || cred.Expired() {
		loaded, err := m.load(ctx, userID)
		if err != nil {
			return nil, err
		}
		cred = loaded
	}

	if !cred.Expired() {
		m.put(userID, cred)
		return cred, nil
	}

	if cred.RefreshToken == "" {
		// Expired with no recovery path: treat as absent and make
		// sure the stale entry is not served again.
		m.evict(userID)
		m.record(ctx, "refresh", "unrecoverable")
		return nil, ErrNoCredential
	}

	refreshed, err := m.refresh(ctx, cred)
	if err != nil {
		m.evict(userID)
		m.record(ctx, "refresh", "error")
		m.logger.Warn("credential refresh failed", "user_id", userID, "error", err)
		return nil, ErrNoCredential
	}

	if err := m.store.Save(userID, refreshed); err != nil {
		// The refreshed token is still good for this process; losing
		// the write only costs a refresh after restart.
		m.logger.Warn("failed to persist refreshed credential", "user_id", userID, "error", err)
	}
	m.put(userID, refreshed)
	m.record(ctx, "refresh", "success")
	return refreshed, nil
}

// load fetches a credential from the session overlay or the store.
func (m *Manager) load(ctx context.Context, userID string) (*Credential, error) {
	if m.sessions != nil {
		if tok, err := m.sessions.GetToken(ctx, userID); err == nil && tok != nil && tok.AccessToken != "" {
			cred := newCredential(userID, tok, m.config.Scopes)
			// A dead session token must not shadow a refreshable
			// on-disk grant.
			if cred.Usable() {
				return cred, nil
			}
		}
	}

	cred, err := m.store.Load(userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNoCredential
		}
		return nil, err
	}
	return cred, nil
}

// refresh obtains a new access token using the credential's refresh
// token. The call is bounded by the manager's timeout.
func (m *Manager) refresh(ctx context.Context, cred *Credential) (*Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if m.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
	}

	// Hand the source only the refresh token: a near-expired access
	// token would otherwise be considered still valid and returned
	// unchanged.
	tok, err := m.config.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	// Google does not always return the refresh token again; keep the
	// one we have.
	if tok.RefreshToken == "" {
		tok.RefreshToken = cred.RefreshToken
	}
	return newCredential(cred.UserID, tok, cred.Scopes), nil
}

// ExchangeCode performs the one-time authorization-code-for-tokens
// exchange, persists the result and populates the cache. Codes are
// single-use, so a failed exchange is never retried.
func (m *Manager) ExchangeCode(ctx context.Context, userID, code string) (*Credential, error) {
	if userID == "" {
		return nil, errors.New("user id cannot be empty")
	}
	if code == "" {
		return nil, &ExchangeError{UserID: userID, Err: errors.New("authorization code cannot be empty")}
	}

	v, err, _ := m.group.Do("exchange:"+userID, func() (interface{}, error) {
		exCtx, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()
		if m.httpClient != nil {
			exCtx = context.WithValue(exCtx, oauth2.HTTPClient, m.httpClient)
		}

		tok, err := m.config.Exchange(exCtx, code)
		if err != nil {
			m.record(ctx, "exchange", "error")
			return nil, &ExchangeError{UserID: userID, Err: err}
		}

		cred := newCredential(userID, tok, m.config.Scopes)
		if err := m.store.Save(userID, cred); err != nil {
			return nil, fmt.Errorf("failed to persist exchanged credential: %w", err)
		}
		m.put(userID, cred)
		m.record(ctx, "exchange", "success")
		m.logger.Info("exchanged authorization code", "user_id", userID, "expiry", cred.Expiry)
		return cred, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Credential), nil
}

// Revoke revokes the user's grant at the provider and removes the
// credential from cache and store. Local state is cleared even when
// the remote revocation fails: the caller believes the credential is
// gone, so it must not linger here. Returns whether anything was
// removed.
func (m *Manager) Revoke(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, errors.New("user id cannot be empty")
	}

	m.mu.RLock()
	cred, cached := m.cache[userID]
	m.mu.RUnlock()

	if !cached {
		loaded, err := m.store.Load(userID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				m.record(ctx, "revoke", "absent")
				return false, nil
			}
			// A corrupt record still needs deleting; revoke remotely
			// is impossible without a token.
			removed, derr := m.store.Delete(userID)
			if derr != nil {
				return false, derr
			}
			m.record(ctx, "revoke", "corrupt")
			return removed, nil
		}
		cred = loaded
	}

	if err := m.revokeRemote(ctx, cred); err != nil {
		m.logger.Warn("remote revocation failed, clearing local state anyway",
			"user_id", userID, "error", err)
		m.record(ctx, "revoke", "remote_error")
	} else {
		m.record(ctx, "revoke", "success")
	}

	m.evict(userID)
	if _, err := m.store.Delete(userID); err != nil {
		return true, err
	}
	m.logger.Info("revoked credential", "user_id", userID)
	return true, nil
}

// revokeRemote calls the provider's revocation endpoint. Revoking the
// refresh token invalidates the whole grant; fall back to the access
// token when no refresh token exists.
func (m *Manager) revokeRemote(ctx context.Context, cred *Credential) error {
	token := cred.RefreshToken
	if token == "" {
		token = cred.AccessToken
	}
	if token == "" {
		return errors.New("credential has no token to revoke")
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.revokeEndpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := m.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revocation endpoint returned %s", resp.Status)
	}
	return nil
}

// CacheSize reports how many credentials are currently cached.
func (m *Manager) CacheSize() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cache)
}

func (m *Manager) put(userID string, cred *Credential) {
	m.mu.Lock()
	m.cache[userID] = cred
	m.mu.Unlock()
}

func (m *Manager) evict(userID string) {
	m.mu.Lock()
	delete(m.cache, userID)
	m.mu.Unlock()
}

func (m *Manager) record(ctx context.Context, op, outcome string) {
	if m.metrics != nil {
		m.metrics.RecordCredentialOp(ctx, op, outcome)
	}
}
