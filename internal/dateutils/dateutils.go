// Package dateutils parses the date formats observed in BAC Credomatic and
// Banco Popular notifications and statements.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// BankFormats is the ordered list of date layouts the banks have used over
// time. Parsing tries each in order; the first match wins. The list is the
// historical corpus; a date that matches none of these is a parse failure,
// not something to guess at.
var BankFormats = []string{
	"Jan 2, 2006, 15:04",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006",
	"02-01-2006 15:04",
	"02-01-2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// spanishMonths maps Spanish month abbreviations (as printed by the banks)
// to the English ones time.Parse understands.
var spanishMonths = map[string]string{
	"Ene": "Jan", "Abr": "Apr", "Ago": "Aug", "Set": "Sep", "Dic": "Dec",
}

var whitespace = regexp.MustCompile(`\s+`)

// ParseBankDate parses a date string against the known bank templates.
func ParseBankDate(dateStr string) (time.Time, error) {
	dateStr = Clean(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	for es, en := range spanishMonths {
		dateStr = strings.ReplaceAll(dateStr, es, en)
		dateStr = strings.ReplaceAll(dateStr, strings.ToLower(es), en)
	}

	for _, layout := range BankFormats {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// Clean trims and collapses whitespace in a date string.
func Clean(dateStr string) string {
	dateStr = strings.TrimSpace(dateStr)
	return whitespace.ReplaceAllString(dateStr, " ")
}

// ToISODate formats a time as YYYY-MM-DD.
func ToISODate(date time.Time) string {
	return date.Format("2006-01-02")
}
