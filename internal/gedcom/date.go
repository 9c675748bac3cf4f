// internal/gedcom/date.go
package gedcom

import (
	"strings"
	"time"
)

// dateLayouts are the input forms accepted for person dates, tried in
// order. Dates are user-entered free text, so entries outside this list
// simply fail to parse and the DATE line is omitted on encode.
var dateLayouts = []string{
	"2006-01-02",
	"20060102",
	"2006/01/02",
	"02 Jan 2006",
}

// parseDate parses a user-entered date down to day precision.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// gedcomDate renders a parsed date in the YYYYMMDD form used on DATE
// lines. The empty string means the input was unparsable and the line
// must be omitted.
func gedcomDate(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return ""
	}
	return t.Format("20060102")
}

// isoDate renders a parsed date in ISO form for graph fields. Returns
// the empty string when the input cannot be parsed.
func isoDate(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}
