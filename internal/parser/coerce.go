package parser

import (
	"strconv"
	"strings"
	"time"
)

// Ordered list of accepted date layouts. First match wins.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"1-2-2006",
	"2006/01/02",
}

const isoLayout = "2006-01-02T15:04:05Z"

// parseDate normalizes a date string to ISO-8601 UTC. Unparseable or
// empty values fall back to the current time; this is a deliberate lossy
// default carried over from the historical importer, not a failure.
func parseDate(value string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t.UTC().Format(isoLayout)
			}
		}
	}
	return time.Now().UTC().Format(isoLayout)
}

// safeFloat parses permissively: empty or malformed input yields nil,
// never an error.
func safeFloat(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &f
}

// safeInt parses permissively, accepting float-like strings ("3.0" -> 3).
func safeInt(value string) *int {
	f := safeFloat(value)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}
