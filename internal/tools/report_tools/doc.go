// Package report_tools provides tools over the Admin SDK Reports API:
// per-user and customer usage reports, audit activity logs and
// aggregated domain insights.
package report_tools
