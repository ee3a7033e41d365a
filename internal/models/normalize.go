package models

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	courseRe = regexp.MustCompile(`^\d{1,3}$`)
	termRe   = regexp.MustCompile(`^\d{2}[A-Z]$`)
	phoneRe  = regexp.MustCompile(`^\+?[1-9]\d{7,14}$`)
	emailRe  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// NormalizeCourseNumber strips an optional COM SCI prefix and validates the
// bare numeric course number (e.g. "31", "003").
func NormalizeCourseNumber(value string) (string, error) {
	normalized := strings.TrimSpace(strings.ReplaceAll(strings.ToUpper(value), "COM SCI", ""))
	if !courseRe.MatchString(normalized) {
		return "", fmt.Errorf("course_number must be COM SCI numeric format (e.g. 31)")
	}
	return normalized, nil
}

// NormalizeTerm validates the NNX term form (e.g. "26S").
func NormalizeTerm(value string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	if !termRe.MatchString(normalized) {
		return "", fmt.Errorf("term must be format like 26S")
	}
	return normalized, nil
}

// NormalizeTarget validates a delivery target as either an E.164 phone number
// or an email address. Empty input means "use the service fallback".
func NormalizeTarget(value string) (string, error) {
	normalized := strings.TrimSpace(value)
	if normalized == "" {
		return "", nil
	}
	if phoneRe.MatchString(normalized) || emailRe.MatchString(normalized) {
		return normalized, nil
	}
	return "", fmt.Errorf("phone_to must be E.164 phone or email address")
}

// IsEmailTarget classifies a delivery target by shape. This is the single
// source of truth for email-versus-phone: anything that does not look like an
// email address is treated as a phone number.
func IsEmailTarget(target string) bool {
	return emailRe.MatchString(strings.TrimSpace(target))
}
