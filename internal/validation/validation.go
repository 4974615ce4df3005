// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"fittlyfans/internal/models"
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
	maxNameLength     = 100
	maxEmailLength    = 254
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9\-]+(\.[a-zA-Z0-9\-]+)*\.[a-zA-Z]{2,}$`)

// invalid builds the VALIDATION_ERROR returned by every check here.
func invalid(format string, args ...any) error {
	return models.NewValidationError(fmt.Sprintf(format, args...))
}

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return invalid("password must be at least %d characters long", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return invalid("password must not exceed %d bytes", maxPasswordLength)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter {
		return invalid("password must contain at least one letter")
	}
	if !hasDigit {
		return invalid("password must contain at least one digit")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > maxEmailLength {
		return invalid("email must not exceed %d characters", maxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return invalid("invalid email format")
	}
	return nil
}

// ValidateName checks a display name.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return invalid("name is required")
	}
	if utf8.RuneCountInString(trimmed) > maxNameLength {
		return invalid("name must not exceed %d characters", maxNameLength)
	}
	return nil
}

// Required returns an error naming the first empty field. Pairs are given as
// field name followed by value.
func Required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return invalid("%s is required", pairs[i])
		}
	}
	return nil
}

// OneOf checks that value is a member of allowed.
func OneOf[T ~string](field string, value T, allowed ...T) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return invalid("%s must be one of: %s", field, strings.Join(names, ", "))
}
