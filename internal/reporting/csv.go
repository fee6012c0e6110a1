package reporting

import (
	"bytes"
	"encoding/csv"
)

// RenderCSV renders every copyable value of a successful report as CSV.
func RenderCSV(r *Report) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	// Header
	records := [][]string{{"item", "value", "explorer_url"}}
	for _, l := range r.Links {
		records = append(records, []string{l.Label, l.Value, l.URL})
	}
	for _, rev := range r.Revocations {
		if rev.Signature != "" {
			records = append(records, []string{rev.Authority + " authority revocation", rev.Signature, rev.URL})
		}
	}

	if err := w.WriteAll(records); err != nil {
		return "", err
	}
	return buf.String(), nil
}
