package export

import (
	"time"

	"github.com/danielolaszy/jira-export/internal/issue"
)

// Jira emits "2024-01-05T16:45:00.000-0300"; fractional seconds are accepted
// by every layout without being spelled out.
var timestampLayouts = []string{
	"2006-01-02T15:04:05Z0700",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// formatTimestamp renders the timestamp at path in DisplayDateLayout. Values
// that are missing, not strings or unparsable return false. A nil loc keeps
// the source offset.
func formatTimestamp(fields map[string]any, path string, loc *time.Location) (string, bool) {
	raw, ok := issue.LookupString(fields, path)
	if !ok {
		return "", false
	}
	t, ok := parseTimestamp(raw)
	if !ok {
		return "", false
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DisplayDateLayout), true
}
