package normalize

import (
	"regexp"
	"strings"
)

var (
	instagramPattern = regexp.MustCompile(`(?i)(instagram\.com/[^\s,]+)`)
	facebookPattern  = regexp.MustCompile(`(?i)(facebook\.com/[^\s,]+)`)
)

// SocialLinks scans a comma-separated free-text field and returns the first
// Facebook and the first Instagram profile link found, lowercased and
// prefixed with "http://". A kind that is not found is "".
func SocialLinks(raw string) (facebook, instagram string) {
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if instagram == "" {
			if m := instagramPattern.FindStringSubmatch(part); m != nil {
				instagram = "http://" + strings.ToLower(m[1])
			}
		}
		if facebook == "" {
			if m := facebookPattern.FindStringSubmatch(part); m != nil {
				facebook = "http://" + strings.ToLower(m[1])
			}
		}
		if instagram != "" && facebook != "" {
			break
		}
	}
	return facebook, instagram
}

// FacebookField returns the whole value when it mentions facebook.com.
func FacebookField(raw string) string {
	if strings.Contains(strings.ToLower(raw), "facebook.com") {
		return raw
	}
	return ""
}

// InstagramField returns the whole value when it looks like an Instagram
// handle ("@handle") or link and does not mention facebook.com.
func InstagramField(raw string) string {
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "facebook.com") {
		return ""
	}
	if strings.Contains(lower, "instagram.com") || strings.Contains(lower, "@") {
		return raw
	}
	return ""
}
