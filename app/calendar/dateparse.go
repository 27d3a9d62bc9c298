package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Format directives accepted in the dateFormat option. Each maps to a
// fragment of a Go reference-time layout.
var dateDirectives = map[rune]string{
	'j': "2",       // day of month without leading zero
	'd': "02",      // day of month, zero-padded
	'n': "1",       // month number without leading zero
	'm': "01",      // month number, zero-padded
	'F': "January", // full month name
	',': ",",
	'_': " ", // configured escape of spaces in page titles
	' ': " ",
}

// DateParser parses date tokens extracted from page titles. The token
// never carries a year; the caller supplies a reference year.
type DateParser struct {
	layout string
}

func NewDateParser(format string) (*DateParser, error) {
	if format == "" {
		return nil, fmt.Errorf("dateFormat is empty")
	}

	var layout strings.Builder
	for _, r := range format {
		fragment, ok := dateDirectives[r]
		if !ok {
			return nil, fmt.Errorf("unsupported dateFormat directive %q", string(r))
		}
		layout.WriteString(fragment)
	}

	return &DateParser{layout: layout.String()}, nil
}

// Parse converts a date token into a calendar date in the given year.
// The entire token must be consumed by the format; partial matches fail.
// Dates that do not exist in the reference year (e.g. February 29 in a
// non-leap year) are rejected.
func (p *DateParser) Parse(token string, year int) (time.Time, bool) {
	parsed, err := time.Parse(p.layout, token)
	if err != nil {
		return time.Time{}, false
	}

	date := time.Date(year, parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	if date.Month() != parsed.Month() || date.Day() != parsed.Day() {
		return time.Time{}, false
	}

	return date, true
}
