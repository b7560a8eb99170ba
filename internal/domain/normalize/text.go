package normalize

import "strings"

// Clean trims a cell and blanks the placeholder strings spreadsheet tools
// emit for missing values.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	switch s {
	case "nan", "NaN", "None", "False", "NaT":
		return ""
	}
	return s
}

// IsEmail is the loose check used for contact extraction: the value must
// contain both "@" and ".".
func IsEmail(raw string) bool {
	return strings.Contains(raw, "@") && strings.Contains(raw, ".")
}
