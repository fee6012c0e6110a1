package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	if r.Status == StatusSuccess {
		sb.WriteString(fmt.Sprintf("# Token Created: %s (%s)\n\n", r.Token.Name, r.Token.Symbol))
	} else {
		sb.WriteString(fmt.Sprintf("# Token Creation Failed: %s (%s)\n\n", r.Token.Name, r.Token.Symbol))
	}
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Cluster: %s | Decimals: %d | Supply: %d\n\n", r.Cluster, r.Token.Decimals, r.Token.Supply))

	if r.Status == StatusFailure {
		sb.WriteString("## Error\n\n")
		sb.WriteString(fmt.Sprintf("```\n%s\n```\n\n", r.Failure))
		sb.WriteString("The form is unchanged. Fix the problem and submit again.\n")
		return sb.String()
	}

	// Links
	sb.WriteString("## Details\n\n")
	sb.WriteString("| Item | Value |\n")
	sb.WriteString("|------|-------|\n")
	for _, l := range r.Links {
		value := "`" + l.Value + "`"
		if l.URL != "" {
			value = fmt.Sprintf("[`%s`](%s)", l.Value, l.URL)
		}
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", l.Label, value))
	}
	sb.WriteString("\n")
	if r.BackendUsed != "" {
		sb.WriteString(fmt.Sprintf("Storage tier: %s\n\n", r.BackendUsed))
	}

	// Authorities
	sb.WriteString("## Authorities\n\n")
	if len(r.Revocations) > 0 {
		sb.WriteString("| Authority | Status | Transaction |\n")
		sb.WriteString("|-----------|--------|-------------|\n")
		for _, rev := range r.Revocations {
			tx := "-"
			if rev.Signature != "" {
				tx = fmt.Sprintf("[%s](%s)", shorten(rev.Signature), rev.URL)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", rev.Authority, rev.Status, tx))
		}
	} else {
		sb.WriteString("No authority changes.\n")
	}
	sb.WriteString("\n")

	// Warnings
	if len(r.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", w))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func shorten(s string) string {
	if len(s) <= 16 {
		return s
	}
	return s[:8] + "…" + s[len(s)-8:]
}
