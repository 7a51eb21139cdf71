// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"regexp"
)

var (
	ErrEmailEmpty   = errors.New("no email address provided")
	ErrEmailInvalid = errors.New("invalid email format")
)

// local@domain.tld, no whitespace and a single @
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsValidEmail(e string) bool {
	return emailRegex.MatchString(e)
}

func EmailValidator(e string) error {
	if e == "" {
		return ErrEmailEmpty
	}

	if !IsValidEmail(e) {
		return ErrEmailInvalid
	}

	return nil
}
