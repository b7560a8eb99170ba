package normalize

import "strings"

// CountryCode is the Brazilian dialing code enforced on partner phone numbers.
const CountryCode = "55"

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "\t", "", "\u00a0", "")

// Phone strips separators from a phone number and makes sure it starts with
// the bare country code. A leading "+" is dropped, so "+55 11 9999-0000" and
// "11 9999-0000" both become "5511999990000". Empty input stays empty.
func Phone(raw string) string {
	s := phoneSeparators.Replace(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, CountryCode) {
		s = CountryCode + s
	}
	return s
}

// FirstPhone formats the first non-blank candidate, e.g. a primary mobile
// falling back to a secondary one.
func FirstPhone(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return Phone(c)
		}
	}
	return ""
}

// Digits keeps only the digits of a value. A trailing ".0", left behind when a
// spreadsheet stored the number as a float, is dropped first.
func Digits(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, ".0")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
