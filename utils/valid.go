// utils/valid.go
package utils

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode"
)

var scriptRegex = regexp.MustCompile(`<script[^>]*>.*?</script>`)

// SanitizeInput sanitizes free-text user input before storage so stored
// values are inert when rendered downstream (stored-XSS neutralization).
func SanitizeInput(input string) string {
	// Trim spaces
	input = strings.TrimSpace(input)

	// HTML escape
	input = html.EscapeString(input)

	// Remove control characters
	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)

	// Remove any potential script tags
	input = scriptRegex.ReplaceAllString(input, "")

	return input
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// SanitizeEmail sanitizes and validates an email address.
func SanitizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	if !emailRegex.MatchString(email) {
		return "", errors.New("invalid email format")
	}

	return email, nil
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidUsername reports whether the username uses only the allowed charset.
func ValidUsername(username string) bool {
	return usernameRegex.MatchString(username)
}
