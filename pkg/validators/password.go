package validators

import (
	"errors"
	"regexp"
)

var (
	ErrPasswordEmpty   = errors.New("no password provided")
	ErrPasswordInvalid = errors.New("password must have at least 8 letters or digits with one uppercase, one lowercase and one digit")
)

var (
	passwordCharset = regexp.MustCompile(`^[0-9a-zA-Z]{8,}$`)
	hasDigit        = regexp.MustCompile(`[0-9]`)
	hasLower        = regexp.MustCompile(`[a-z]`)
	hasUpper        = regexp.MustCompile(`[A-Z]`)
)

// IsValidPassword reports whether p has at least 8 alphanumeric characters
// with at least one digit, one lowercase and one uppercase letter.
// Symbols are rejected.
func IsValidPassword(p string) bool {
	return passwordCharset.MatchString(p) &&
		hasDigit.MatchString(p) &&
		hasLower.MatchString(p) &&
		hasUpper.MatchString(p)
}

func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if !IsValidPassword(p) {
		return ErrPasswordInvalid
	}

	return nil
}
