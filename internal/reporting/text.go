package reporting

import (
	"fmt"
	"strings"
)

// RenderText renders report for a terminal.
func RenderText(r *Report) string {
	var sb strings.Builder

	if r.Status == StatusFailure {
		sb.WriteString(fmt.Sprintf("Token creation failed: %s\n", r.Failure))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("Token created: %s (%s) on %s\n\n", r.Token.Name, r.Token.Symbol, r.Cluster))
	for _, l := range r.Links {
		sb.WriteString(fmt.Sprintf("  %-22s %s\n", l.Label+":", l.Value))
		if l.URL != "" && l.URL != l.Value {
			sb.WriteString(fmt.Sprintf("  %-22s %s\n", "", l.URL))
		}
	}

	if len(r.Revocations) > 0 {
		sb.WriteString("\nAuthorities:\n")
		for _, rev := range r.Revocations {
			line := fmt.Sprintf("  %-8s %s", rev.Authority, rev.Status)
			if rev.Signature != "" {
				line += "  " + rev.URL
			}
			if rev.Error != "" {
				line += "  (" + rev.Error + ")"
			}
			sb.WriteString(line + "\n")
		}
	}

	for _, w := range r.Warnings {
		sb.WriteString("warning: " + w + "\n")
	}
	return sb.String()
}
