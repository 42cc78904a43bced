package admin

import (
	"fmt"
	"strings"
	"time"
)

// YesNo renders a boolean the way the summaries display it.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// UserStatus renders an account's suspension state.
func UserStatus(suspended bool) string {
	if suspended {
		return "SUSPENDED"
	}
	return "ACTIVE"
}

// OrDefault returns s, or fallback when s is empty.
func OrDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Timestamp reformats an RFC 3339 timestamp from the Admin SDK into a
// compact UTC form. Unparseable input is returned unchanged.
func Timestamp(s string) string {
	if s == "" {
		return "Never"
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.UTC().Format("2006-01-02 15:04 UTC")
}

// MillisTimestamp renders a Unix-milliseconds field, which the
// Directory API uses for token and alias creation times.
func MillisTimestamp(ms int64) string {
	if ms == 0 {
		return "Never"
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04 UTC")
}

// Detail accumulates a key/value detail block for a single resource.
type Detail struct {
	b strings.Builder
}

// NewDetail starts a detail block with a title and underline.
func NewDetail(title string) *Detail {
	d := &Detail{}
	d.b.WriteString(title + "\n")
	d.b.WriteString(strings.Repeat("=", 50) + "\n\n")
	return d
}

// Section writes a section heading.
func (d *Detail) Section(name string) *Detail {
	d.b.WriteString(name + ":\n")
	return d
}

// Field writes one indented key/value line.
func (d *Detail) Field(key, value string) *Detail {
	fmt.Fprintf(&d.b, "   %s: %s\n", key, value)
	return d
}

// Item writes one indented bullet line.
func (d *Detail) Item(value string) *Detail {
	fmt.Fprintf(&d.b, "   - %s\n", value)
	return d
}

// Line writes a raw line.
func (d *Detail) Line(s string) *Detail {
	d.b.WriteString(s + "\n")
	return d
}

// Blank writes an empty line between sections.
func (d *Detail) Blank() *Detail {
	d.b.WriteString("\n")
	return d
}

func (d *Detail) String() string {
	return d.b.String()
}
