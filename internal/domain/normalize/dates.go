package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BrazilianDateLayout is the dd/mm/yyyy display format.
const BrazilianDateLayout = "02/01/2006"

var dayFirstLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"02/01/06",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// spreadsheet serial day 0
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ParseDayFirst parses a date written day-first (dd/mm/yyyy and friends),
// ISO dates, or a spreadsheet serial day number.
func ParseDayFirst(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if d, err := decimal.NewFromString(s); err == nil {
		days := d.Truncate(0).IntPart()
		if days > 0 && days < 2958466 {
			return serialEpoch.AddDate(0, 0, int(days)), true
		}
	}
	return time.Time{}, false
}

// FormatDayFirst re-renders a parseable date as dd/mm/yyyy, or "" when it cannot be parsed.
func FormatDayFirst(raw string) string {
	t, ok := ParseDayFirst(raw)
	if !ok {
		return ""
	}
	return t.Format(BrazilianDateLayout)
}
