package validators

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrPartyFieldsMissing = errors.New("title, description and party date are required")
	ErrPartyDateInvalid   = errors.New("party date must be YYYY-MM-DD or RFC3339")
)

// PartyFieldsValidator checks the fields every party write requires
func PartyFieldsValidator(title, description, partyDate string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" || strings.TrimSpace(partyDate) == "" {
		return ErrPartyFieldsMissing
	}

	return nil
}

// ParsePartyDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates
func ParsePartyDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, ErrPartyDateInvalid
	}

	return t, nil
}
