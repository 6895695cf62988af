package core

import (
	"regexp"
)

// addressPattern is a shallow syntactic check, no DNS or mailbox verification.
var addressPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// ExtractAddress returns the first email address found in the prompt.
// Only the first match is returned; any later addresses are ignored.
func ExtractAddress(prompt string) (string, bool) {
	match := addressPattern.FindString(prompt)
	if match == "" {
		return "", false
	}
	return match, true
}

// IsAddress reports whether s is exactly one email address
func IsAddress(s string) bool {
	loc := addressPattern.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}
