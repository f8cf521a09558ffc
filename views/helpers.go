package views

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// PathEscape wraps url.PathEscape for use in templates.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// FormatGenerated renders an RFC3339 timestamp for the dashboard. Values
// that do not parse are shown as-is.
func FormatGenerated(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.UTC().Format("2 Jan 2006 15:04")
}

// Summary is the one-line description of an invite.
func Summary(inv Invite) string {
	parts := []string{inv.ChildName}
	if inv.Age != "" {
		parts = append(parts, "turning "+inv.Age)
	}
	if inv.Date != "" {
		parts = append(parts, inv.Date)
	}
	return strings.Join(nonEmpty(parts), ", ")
}

// Dimensions formats a pixel size as "848×1216".
func Dimensions(w, h int) string {
	return fmt.Sprintf("%d×%d", w, h)
}

func nonEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
