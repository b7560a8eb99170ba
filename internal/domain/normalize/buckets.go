package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EmployeeBucket maps a headcount to its range label. Negative counts have no bucket.
func EmployeeBucket(n int64) string {
	switch {
	case n == 0:
		return "0"
	case n >= 1 && n <= 5:
		return "1 a 5"
	case n >= 6 && n <= 10:
		return "6 a 10"
	case n >= 11 && n <= 50:
		return "11 a 50"
	case n >= 51 && n <= 100:
		return "51 a 100"
	case n >= 101 && n <= 500:
		return "101 a 500"
	case n > 500:
		return "Acima de 501"
	default:
		return ""
	}
}

// EmployeeBucketText parses a headcount cell ("12", "12.0", " 7 ") and buckets
// it. Non-numeric input yields "".
func EmployeeBucketText(raw string) string {
	n, ok := ParseCount(raw)
	if !ok {
		return ""
	}
	return EmployeeBucket(n)
}

// ParseCount parses an integer count, truncating any fractional part.
func ParseCount(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.Truncate(0).IntPart(), true
}

// CompanyAge describes how long ago a company was founded relative to now.
// The founding date is read day-first; unparseable dates yield "".
func CompanyAge(founded string, now time.Time) string {
	d, ok := ParseDayFirst(founded)
	if !ok {
		return ""
	}
	return AgeLabel(YearsBetween(d, now))
}

// YearsBetween counts whole years from since to now.
func YearsBetween(since, now time.Time) int {
	years := now.Year() - since.Year()
	if now.Month() < since.Month() || (now.Month() == since.Month() && now.Day() < since.Day()) {
		years--
	}
	return years
}

// AgeLabel renders a whole-year age.
func AgeLabel(years int) string {
	switch {
	case years < 1:
		return "menos de 1 ano"
	case years == 1:
		return "1 ano"
	default:
		return fmt.Sprintf("mais de %d anos", years)
	}
}
