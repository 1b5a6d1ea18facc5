// Package phone normalizes recipient numbers for the messaging adapter.
package phone

import "strings"

const DefaultCountryPrefix = "+966"

// Normalize applies the dispatch rules:
//   - a number starting with "+" is kept as-is
//   - a leading "0" is replaced with the country prefix
//   - anything else gets the prefix prepended
//
// Spaces and dashes are stripped first. An empty input stays empty.
func Normalize(number, countryPrefix string) string {
	n := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(number))
	if n == "" {
		return ""
	}
	if countryPrefix == "" {
		countryPrefix = DefaultCountryPrefix
	}

	switch {
	case strings.HasPrefix(n, "+"):
		return n
	case strings.HasPrefix(n, "0"):
		return countryPrefix + n[1:]
	default:
		return countryPrefix + n
	}
}

// Digits strips everything but digits; share links expect "966501234567".
func Digits(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
