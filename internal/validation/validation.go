package validation

import (
	"fmt"
	"regexp"
)

// emailPattern accepts local@domain.tld: one @, no whitespace, and at least
// one dot after the @.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Error reports a field-level validation failure.
type Error struct {
	Field   string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsEmail reports whether value looks like an email address. The value is
// not trimmed; surrounding whitespace makes it invalid.
func IsEmail(value string) bool {
	return emailPattern.MatchString(value)
}
