// Package admin wraps the Google Admin SDK services used by the tool
// handlers: Directory for users, groups, org units, devices and
// domains, and Reports for audit and usage data. It also carries the
// input validators and output formatting helpers shared across tools.
package admin
