package report_tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	reports "google.golang.org/api/admin/reports/v1"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/admin"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/dispatch"
	"github.com/workspaceadmin/gsuite-admin-mcp/internal/tools/common"
)

// Register adds the reporting and auditing tools to the registry. All
// of them are read-only, so the read-only flag does not apply here.
func Register(reg *dispatch.Registry, clients *admin.ClientCache) error {
	usageTool := mcp.NewTool("mcp__gsuite_admin__get_usage_reports",
		mcp.WithDescription("Get usage reports for Google Workspace applications and services, per user or domain-wide."),
		common.UserIDOption(),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Report date (YYYY-MM-DD, or 'today' for the most recent available day)"),
		),
		mcp.WithString("user_key",
			mcp.Description("User email, or 'all' for domain-wide reports (default: all)"),
		),
		mcp.WithString("parameters",
			mcp.Description("Comma-separated report parameters (e.g. 'gmail:num_emails_sent,gmail:num_emails_received')"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results (default: 1000, max: 1000)"),
		),
	)
	if err := reg.Register(common.NewHandler(usageTool, clients, handleGetUsageReports)); err != nil {
		return err
	}

	auditTool := mcp.NewTool("mcp__gsuite_admin__get_audit_activities",
		mcp.WithDescription("Get audit activity logs for a Google Workspace application."),
		common.UserIDOption(),
		mcp.WithString("start_time",
			mcp.Required(),
			mcp.Description("Start time (RFC 3339, or relative: today, 1d, 7d, 30d)"),
		),
		mcp.WithString("application_name",
			mcp.Description("Application to audit (admin, calendar, chat, drive, gcp, gplus, groups, groups_enterprise, jamboard, login, meet, mobile, rules, saml, token, user_accounts; default: admin)"),
		),
		mcp.WithString("end_time",
			mcp.Description("End time (RFC 3339, optional)"),
		),
		mcp.WithString("actor_email",
			mcp.Description("Filter to activities performed by this user (optional)"),
		),
		mcp.WithString("event_name",
			mcp.Description("Filter by event name (optional)"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of activities (default: 1000, max: 1000)"),
		),
		mcp.WithString("customer_id",
			mcp.Description("Customer ID (defaults to my_customer)"),
		),
	)
	if err := reg.Register(common.NewHandler(auditTool, clients, handleGetAuditActivities)); err != nil {
		return err
	}

	customerTool := mcp.NewTool("mcp__gsuite_admin__get_customer_usage_reports",
		mcp.WithDescription("Get customer-level usage reports for the Google Workspace domain."),
		common.UserIDOption(),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Report date (YYYY-MM-DD, or 'today' for the most recent available day)"),
		),
		mcp.WithString("parameters",
			mcp.Description("Comma-separated report parameters (default: account totals and quota)"),
		),
		mcp.WithString("customer_id",
			mcp.Description("Customer ID (defaults to my_customer)"),
		),
	)
	if err := reg.Register(common.NewHandler(customerTool, clients, handleGetCustomerUsageReports)); err != nil {
		return err
	}

	insightsTool := mcp.NewTool("mcp__gsuite_admin__get_domain_insights",
		mcp.WithDescription("Get domain insights: a security summary from login audit logs, or a usage summary from customer reports."),
		common.UserIDOption(),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Date for the insights (YYYY-MM-DD, or 'today')"),
		),
		mcp.WithString("insight_type",
			mcp.Description("Which report to build: security or usage (default: security)"),
		),
	)
	return reg.Register(common.NewHandler(insightsTool, clients, handleGetDomainInsights))
}

// reportDate resolves the date argument. The Reports API lags real
// time, so 'today' means the most recent finished day.
func reportDate(date string) string {
	if date == "today" {
		return time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	}
	return date
}

// auditStartTime resolves relative start times to RFC 3339.
func auditStartTime(start string) string {
	switch start {
	case "today", "1d":
		return time.Now().AddDate(0, 0, -1).UTC().Format(time.RFC3339)
	case "7d":
		return time.Now().AddDate(0, 0, -7).UTC().Format(time.RFC3339)
	case "30d":
		return time.Now().AddDate(0, 0, -30).UTC().Format(time.RFC3339)
	}
	return start
}

// paramValue renders the one populated value variant of a usage report
// parameter.
func paramValue(p *reports.UsageReportParameters) string {
	switch {
	case p.StringValue != "":
		return p.StringValue
	case p.DatetimeValue != "":
		return p.DatetimeValue
	case p.BoolValue:
		return "true"
	default:
		return strconv.FormatInt(p.IntValue, 10)
	}
}

// quotaValue renders storage metrics human-readably.
func quotaValue(name string, p *reports.UsageReportParameters) string {
	if !strings.Contains(name, "quota") {
		return paramValue(p)
	}
	v := p.IntValue
	switch {
	case v > 1<<30:
		return fmt.Sprintf("%.2f GB", float64(v)/float64(1<<30))
	case v > 1<<20:
		return fmt.Sprintf("%.2f MB", float64(v)/float64(1<<20))
	default:
		return fmt.Sprintf("%d bytes", v)
	}
}

func handleGetUsageReports(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	date, err := common.RequireString(args, "date")
	if err != nil {
		return nil, err
	}
	date = reportDate(date)
	userKey := admin.OrDefault(common.OptionalString(args, "user_key"), "all")
	parameters := admin.OrDefault(common.OptionalString(args, "parameters"),
		"accounts:num_users,accounts:used_quota_in_mb")

	result, err := clients.Reports.UserUsageReport.Get(userKey, date).
		Parameters(parameters).
		MaxResults(common.ClampInt(common.OptionalInt(args, "max_results", 1000), 1000)).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if len(result.UsageReports) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No usage reports found for %s on %s", parameters, date)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Usage Report for %s on %s:\n\n", parameters, date)
	if userKey == "all" {
		fmt.Fprintf(&b, "Found %d user reports:\n\n", len(result.UsageReports))
	} else {
		fmt.Fprintf(&b, "Usage report for %s:\n\n", userKey)
	}

	for i, report := range result.UsageReports {
		if userKey == "all" {
			email, profileID := "Unknown", "Unknown"
			if report.Entity != nil {
				email = admin.OrDefault(report.Entity.UserEmail, "Unknown")
				profileID = admin.OrDefault(report.Entity.ProfileId, "Unknown")
			}
			fmt.Fprintf(&b, "%d. User: %s\n", i+1, email)
			fmt.Fprintf(&b, "   Profile ID: %s\n", profileID)
		}
		if len(report.Parameters) > 0 {
			b.WriteString("   Usage Data:\n")
			for j, param := range report.Parameters {
				if j >= 10 {
					break
				}
				fmt.Fprintf(&b, "     - %s: %s\n", param.Name, paramValue(param))
			}
		}
		if userKey == "all" {
			b.WriteString("\n")
		}
		// Cap domain-wide output for readability.
		if userKey == "all" && i+1 >= 10 {
			if remaining := len(result.UsageReports) - 10; remaining > 0 {
				fmt.Fprintf(&b, "... and %d more users\n", remaining)
			}
			break
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

var auditApplications = map[string]bool{
	"admin": true, "calendar": true, "chat": true, "drive": true,
	"gcp": true, "gplus": true, "groups": true, "groups_enterprise": true,
	"jamboard": true, "login": true, "meet": true, "mobile": true,
	"rules": true, "saml": true, "token": true, "user_accounts": true,
}

func handleGetAuditActivities(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	start, err := common.RequireString(args, "start_time")
	if err != nil {
		return nil, err
	}
	start = auditStartTime(start)
	application := admin.OrDefault(common.OptionalString(args, "application_name"), "admin")
	if !auditApplications[application] {
		return nil, dispatch.NewError(dispatch.CodeValidation,
			"unsupported application_name %q", application)
	}

	// The activities endpoint filters by actor through the userKey
	// path parameter.
	userKey := "all"
	if actor := common.OptionalString(args, "actor_email"); actor != "" {
		if err := admin.ValidateEmail(actor, "actor_email"); err != nil {
			return nil, err
		}
		userKey = actor
	}

	call := clients.Reports.Activities.List(userKey, application).
		StartTime(start).
		CustomerId(admin.OrDefault(common.OptionalString(args, "customer_id"), "my_customer")).
		MaxResults(common.ClampInt(common.OptionalInt(args, "max_results", 1000), 1000))
	if end := common.OptionalString(args, "end_time"); end != "" {
		call = call.EndTime(end)
	}
	if event := common.OptionalString(args, "event_name"); event != "" {
		call = call.EventName(event)
	}

	result, err := call.Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if len(result.Items) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No audit activities found for %s since %s", application, start)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Audit Activities for %s since %s:\n\n", application, start)
	fmt.Fprintf(&b, "Found %d activities:\n\n", len(result.Items))

	for i, activity := range result.Items {
		actorEmail, actorProfile := "Unknown", "Unknown"
		if activity.Actor != nil {
			actorEmail = admin.OrDefault(activity.Actor.Email, "Unknown")
			actorProfile = admin.OrDefault(activity.Actor.ProfileId, "Unknown")
		}
		eventTime, qualifier := "Unknown", "Unknown"
		if activity.Id != nil {
			eventTime = admin.OrDefault(activity.Id.Time, "Unknown")
			if activity.Id.UniqueQualifier != 0 {
				qualifier = strconv.FormatInt(activity.Id.UniqueQualifier, 10)
			}
		}

		fmt.Fprintf(&b, "%d. Activity at %s\n", i+1, eventTime)
		fmt.Fprintf(&b, "   Actor: %s (ID: %s)\n", actorEmail, actorProfile)
		fmt.Fprintf(&b, "   Qualifier: %s\n", qualifier)

		if len(activity.Events) > 0 {
			b.WriteString("   Events:\n")
			for j, event := range activity.Events {
				if j >= 3 {
					break
				}
				fmt.Fprintf(&b, "     - %s: %s\n",
					admin.OrDefault(event.Type, "Unknown"),
					admin.OrDefault(event.Name, "Unknown"))
				for k, param := range event.Parameters {
					if k >= 2 {
						break
					}
					fmt.Fprintf(&b, "       * %s: %s\n", param.Name, admin.OrDefault(param.Value, "Unknown"))
				}
			}
		}
		b.WriteString("\n")

		// Cap output for readability.
		if i+1 >= 20 {
			if remaining := len(result.Items) - 20; remaining > 0 {
				fmt.Fprintf(&b, "... and %d more activities\n", remaining)
			}
			break
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleGetCustomerUsageReports(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	date, err := common.RequireString(args, "date")
	if err != nil {
		return nil, err
	}
	date = reportDate(date)
	parameters := admin.OrDefault(common.OptionalString(args, "parameters"),
		"accounts:total_quota_in_mb,accounts:used_quota_in_mb,accounts:num_users")

	result, err := clients.Reports.CustomerUsageReports.Get(date).
		CustomerId(admin.OrDefault(common.OptionalString(args, "customer_id"), "my_customer")).
		Parameters(parameters).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if len(result.UsageReports) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No customer usage reports found for %s", date)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Customer Usage Report for %s:\n\n", date)
	for _, report := range result.UsageReports {
		entityType, customer := "Unknown", "Unknown"
		if report.Entity != nil {
			entityType = admin.OrDefault(report.Entity.Type, "Unknown")
			customer = admin.OrDefault(report.Entity.CustomerId, "Unknown")
		}
		fmt.Fprintf(&b, "Customer: %s (Type: %s)\n", customer, entityType)
		if len(report.Parameters) > 0 {
			b.WriteString("Usage Metrics:\n")
			for _, param := range report.Parameters {
				fmt.Fprintf(&b, "   - %s: %s\n", param.Name, quotaValue(param.Name, param))
			}
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleGetDomainInsights(ctx context.Context, args map[string]interface{}, clients *admin.Clients) (*mcp.CallToolResult, error) {
	date, err := common.RequireString(args, "date")
	if err != nil {
		return nil, err
	}
	date = reportDate(date)
	insightType := admin.OrDefault(common.OptionalString(args, "insight_type"), "security")

	var b strings.Builder
	switch insightType {
	case "security":
		fmt.Fprintf(&b, "Domain Insights for %s - Security Report:\n\n", date)
		securityInsights(ctx, clients, date, &b)
	case "usage":
		fmt.Fprintf(&b, "Domain Insights for %s - Usage Report:\n\n", date)
		usageInsights(ctx, clients, date, &b)
	default:
		return nil, dispatch.NewError(dispatch.CodeValidation,
			"insight_type must be security or usage")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// securityInsights summarizes the day's login audit log. Errors from
// the Reports API are reported inline so a partial insight still
// renders.
func securityInsights(ctx context.Context, clients *admin.Clients, date string, b *strings.Builder) {
	result, err := clients.Reports.Activities.List("all", "login").
		CustomerId("my_customer").
		StartTime(date + "T00:00:00Z").
		MaxResults(100).
		Context(ctx).Do()
	if err != nil {
		fmt.Fprintf(b, "Could not retrieve detailed security data: %v\n", err)
		return
	}
	if len(result.Items) == 0 {
		b.WriteString("No security activities found for this date.\n")
		return
	}

	b.WriteString("Security Activity Summary:\n")
	fmt.Fprintf(b, "   Total login events: %d\n\n", len(result.Items))

	loginTypes := map[string]int{}
	var typeOrder []string
	failedLogins, suspicious := 0, 0
	for i, activity := range result.Items {
		if i >= 20 {
			break
		}
		for _, event := range activity.Events {
			name := admin.OrDefault(event.Name, "unknown")
			if _, seen := loginTypes[name]; !seen {
				typeOrder = append(typeOrder, name)
			}
			loginTypes[name]++
			lower := strings.ToLower(name)
			if strings.Contains(lower, "fail") {
				failedLogins++
			}
			if strings.Contains(lower, "suspicious") {
				suspicious++
			}
		}
	}

	b.WriteString("Login Event Breakdown:\n")
	for i, name := range typeOrder {
		if i >= 5 {
			break
		}
		fmt.Fprintf(b, "   - %s: %d\n", name, loginTypes[name])
	}
	if failedLogins > 0 || suspicious > 0 {
		b.WriteString("\nSecurity Alerts:\n")
		if failedLogins > 0 {
			fmt.Fprintf(b, "   - Failed logins: %d\n", failedLogins)
		}
		if suspicious > 0 {
			fmt.Fprintf(b, "   - Suspicious activities: %d\n", suspicious)
		}
	}
}

func usageInsights(ctx context.Context, clients *admin.Clients, date string, b *strings.Builder) {
	result, err := clients.Reports.CustomerUsageReports.Get(date).
		CustomerId("my_customer").
		Parameters("accounts:num_users,accounts:total_quota_in_mb,accounts:used_quota_in_mb").
		Context(ctx).Do()
	if err != nil {
		fmt.Fprintf(b, "Could not retrieve usage data: %v\n", err)
		return
	}
	if len(result.UsageReports) == 0 {
		b.WriteString("No usage data available for this date.\n")
		return
	}

	b.WriteString("Domain Usage Summary:\n")
	for _, report := range result.UsageReports {
		for _, param := range report.Parameters {
			fmt.Fprintf(b, "   - %s: %s\n", param.Name, quotaValue(param.Name, param))
		}
	}
}
