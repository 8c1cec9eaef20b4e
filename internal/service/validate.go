package service

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// cleanText trims s and checks it against a rune limit. It returns a
// ValidationError for field when s is blank, too long, or contains control
// characters.
func cleanText(field, label, s string, maxLen int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", validation(field, label+" is required.")
	}
	if utf8.RuneCountInString(s) > maxLen {
		return "", validation(field, label+" is too long.")
	}
	if strings.ContainsFunc(s, unicode.IsControl) {
		return "", validation(field, label+" contains invalid characters.")
	}
	return s, nil
}
