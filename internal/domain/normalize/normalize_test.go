package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"local number gets country code", "11987654321", "5511987654321"},
		{"already prefixed", "5511987654321", "5511987654321"},
		{"plus prefix dropped", "+5511987654321", "5511987654321"},
		{"plus without country code", "+11987654321", "5511987654321"},
		{"separators removed", "11 9876-5432", "551198765432"},
		{"prefixed with separators", "55 11 98765-4321", "5511987654321"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"hyphens only", "--", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Phone(tt.in)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, " ")
			assert.NotContains(t, got, "-")
		})
	}
}

func TestFirstPhone(t *testing.T) {
	assert.Equal(t, "5511999990000", FirstPhone("11999990000", "21888880000"))
	assert.Equal(t, "5521888880000", FirstPhone("  ", "21888880000"))
	assert.Equal(t, "", FirstPhone("", ""))
	assert.Equal(t, "", FirstPhone())
}

func TestDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"11987654321.0", "11987654321"},
		{"(11) 3333-4444", "1133334444"},
		{"abc", ""},
		{"", ""},
		{" 12.5 ", "125"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Digits(tt.in))
		})
	}
}

func TestAddressNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "0"},
		{"letters only", "S/N", "0"},
		{"too long", "12345678901234567", "0"},
		{"exactly fifteen digits", "123456789012345", "123456789012345"},
		{"apartment", "Apto 12B", "12"},
		{"plain", " 742 ", "742"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddressNumber(tt.in))
		})
	}
}

func TestEmployeeBucket(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{1, "1 a 5"},
		{5, "1 a 5"},
		{6, "6 a 10"},
		{10, "6 a 10"},
		{11, "11 a 50"},
		{50, "11 a 50"},
		{51, "51 a 100"},
		{100, "51 a 100"},
		{101, "101 a 500"},
		{500, "101 a 500"},
		{501, "Acima de 501"},
		{10000, "Acima de 501"},
		{-1, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EmployeeBucket(tt.n), "count %d", tt.n)
	}
}

func TestEmployeeBucketText(t *testing.T) {
	assert.Equal(t, "0", EmployeeBucketText("0"))
	assert.Equal(t, "1 a 5", EmployeeBucketText("5"))
	assert.Equal(t, "11 a 50", EmployeeBucketText("12.0"))
	assert.Equal(t, "Acima de 501", EmployeeBucketText(" 501 "))
	assert.Equal(t, "", EmployeeBucketText("abc"))
	assert.Equal(t, "", EmployeeBucketText(""))
}

func TestCompanyAge(t *testing.T) {
	now := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		founded string
		want    string
	}{
		{"founded this year", "01/02/2024", "menos de 1 ano"},
		{"one day short of a year", "16/06/2023", "menos de 1 ano"},
		{"exactly one year", "15/06/2023", "1 ano"},
		{"day first, not month first", "03/07/2022", "1 ano"},
		{"many years", "01/01/2000", "mais de 24 anos"},
		{"iso date", "2010-06-16", "mais de 13 anos"},
		{"future date", "01/01/2030", "menos de 1 ano"},
		{"garbage", "not a date", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompanyAge(tt.founded, now))
		})
	}
}

func TestFormatDayFirst(t *testing.T) {
	assert.Equal(t, "05/03/2019", FormatDayFirst("5/3/2019"))
	assert.Equal(t, "05/03/2019", FormatDayFirst("2019-03-05"))
	assert.Equal(t, "01/01/2020", FormatDayFirst("43831"))
	assert.Equal(t, "", FormatDayFirst("31/02/2019"))
	assert.Equal(t, "", FormatDayFirst(""))
}

func TestSocialLinks(t *testing.T) {
	tests := []struct {
		name          string
		in            string
		wantFacebook  string
		wantInstagram string
	}{
		{
			name:          "instagram inside free text",
			in:            "see instagram.com/acme, more text",
			wantInstagram: "http://instagram.com/acme",
		},
		{
			name:          "both kinds lowercased",
			in:            "https://www.Facebook.com/Acme, https://Instagram.com/ACME_br",
			wantFacebook:  "http://facebook.com/acme",
			wantInstagram: "http://instagram.com/acme_br",
		},
		{
			name:          "first match wins",
			in:            "instagram.com/first, instagram.com/second",
			wantInstagram: "http://instagram.com/first",
		},
		{
			name: "nothing",
			in:   "www.acme.com.br",
		},
		{
			name: "empty",
			in:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb, ig := SocialLinks(tt.in)
			assert.Equal(t, tt.wantFacebook, fb)
			assert.Equal(t, tt.wantInstagram, ig)
		})
	}
}

func TestFacebookAndInstagramField(t *testing.T) {
	tests := []struct {
		in            string
		wantFacebook  string
		wantInstagram string
	}{
		{"facebook.com/acme", "facebook.com/acme", ""},
		{"@acme", "", "@acme"},
		{"instagram.com/acme", "", "instagram.com/acme"},
		{"facebook.com/acme @acme", "facebook.com/acme @acme", ""},
		{"www.acme.com", "", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.wantFacebook, FacebookField(tt.in))
			assert.Equal(t, tt.wantInstagram, InstagramField(tt.in))
		})
	}
}

func TestClean(t *testing.T) {
	for _, in := range []string{"nan", "False", " None ", ""} {
		assert.Equal(t, "", Clean(in), in)
	}
	assert.Equal(t, "Comércio varejista", Clean(" Comércio varejista "))
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("jane@acme.com"))
	assert.False(t, IsEmail("jane@acme"))
	assert.False(t, IsEmail(strings.Repeat(".", 3)))
}
