// Package auth manages per-user Google OAuth2 credentials for the
// Workspace Admin tools.
//
// It provides three layers:
//
//   - Store: durable one-file-per-user persistence of credentials,
//     with atomic writes and a hard distinction between "never
//     authorized" and "authorization data damaged"
//   - Manager: a read-through in-memory cache over the Store that
//     transparently refreshes expired access tokens, exchanges
//     authorization codes, and revokes grants
//   - account roster: the static list of known Workspace accounts
//     loaded from the accounts configuration file
//
// The Manager guarantees single-flight refresh per user: concurrent
// callers racing an expired credential share one token-endpoint call
// instead of issuing redundant refreshes that would invalidate each
// other's access tokens.
package auth
