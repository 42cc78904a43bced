// Package domain_tools provides domain-level tools, currently the
// domain alias listing.
package domain_tools
