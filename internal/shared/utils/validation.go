package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxIDLength bounds identifiers such as provider names.
const MaxIDLength = 128

// SafeIDPattern allows alphanumeric, hyphens, underscores and dots
var SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateString validates string length and UTF-8 encoding
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if !required && value == "" {
		return nil
	}
	if !utf8.ValidString(value) {
		return fmt.Errorf("%s contains invalid UTF-8", fieldName)
	}
	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if maxLen > 0 && length > maxLen {
		return fmt.Errorf("%s exceeds maximum length of %d characters", fieldName, maxLen)
	}
	return nil
}

// ValidateID validates an identifier
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}
	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, dots, hyphens, underscores allowed)", fieldName)
	}
	return nil
}
