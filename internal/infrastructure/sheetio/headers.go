package sheetio

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upper = cases.Upper(language.BrazilianPortuguese)

// UpperHeader trims and upper-cases a header, accents included
// ("Gravação " becomes "GRAVAÇÃO").
func UpperHeader(h string) string {
	return upper.String(strings.TrimSpace(h))
}

// uniqueHeaders trims header names, names blank ones by position and
// suffixes repeated ones with ".1", ".2", ... so every column stays addressable.
func uniqueHeaders(raw []string) []string {
	out := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", h, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
