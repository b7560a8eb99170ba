package normalize

import "strings"

const maxAddressNumberDigits = 15

// AddressNumber reduces a street number to its digits. Values with no digits,
// or more than 15 of them, become "0".
func AddressNumber(raw string) string {
	d := Digits(strings.ToUpper(strings.TrimSpace(raw)))
	if d == "" || len(d) > maxAddressNumberDigits {
		return "0"
	}
	return d
}
