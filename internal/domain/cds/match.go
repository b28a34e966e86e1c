package cds

import "strings"

// normalizeToken lowercases a display name and strips everything but
// letters and digits, so "Aspirin 81 MG Oral Tablet" and "aspirin" can be
// compared by substring.
func normalizeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// tokensOverlap reports a substring match in either direction between two
// normalized tokens. Empty tokens never match.
func tokensOverlap(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// codePrefix returns the 3-character prefix of a diagnosis code, upper-cased.
func codePrefix(code string) string {
	if len(code) < 3 {
		return strings.ToUpper(code)
	}
	return strings.ToUpper(code[:3])
}
