// Package security_tools provides tools for user security management:
// 2-step verification, admin privileges, sign-in cookies, OAuth tokens
// and app passwords, admin role assignments and offboarding data
// transfers.
//
// The manage tools mix read and write actions, so they register in
// read-only mode too and reject mutating actions at call time.
package security_tools
