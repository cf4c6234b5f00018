package utils

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	scriptTagRegex = regexp.MustCompile(`(?i)<script[^>]*>.*?</script>`)
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex     = regexp.MustCompile(`[^\d+]`)
)

// SanitizeInput trims free text (names, notes, descriptions) and strips
// script tags and control characters before it is stored. The text is kept
// unescaped; responses are JSON encoded on the way out.
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)

	// Remove any potential script tags
	input = scriptTagRegex.ReplaceAllString(input, "")

	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, input)

	return input
}

// SanitizeEmail sanitizes and validates an email address
func SanitizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return "", errors.New("invalid email format")
	}
	return email, nil
}

// SanitizePhone sanitizes and validates a phone number. An empty phone is
// allowed and returned as "".
func SanitizePhone(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", nil
	}

	// Remove all non-numeric characters except +
	phone = phoneRegex.ReplaceAllString(phone, "")
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}

	if len(phone) < 8 || len(phone) > 16 {
		return "", errors.New("invalid phone number length")
	}
	return phone, nil
}
