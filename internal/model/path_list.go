package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PathList is an ordered list of stored file references kept in a
// single JSON encoded column. It always serializes as an array, never null.
type PathList []string

// Value implements the driver.Valuer interface.
func (p PathList) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}

	b, err := json.Marshal([]string(p))
	if err != nil {
		return nil, fmt.Errorf("failed to encode path list, %w", err)
	}

	return string(b), nil
}

// Scan implements the sql.Scanner interface.
func (p *PathList) Scan(value any) error {
	var raw []byte

	switch v := value.(type) {
	case nil:
		*p = PathList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("failed to scan PathList, %v", value)
	}

	if len(raw) == 0 {
		*p = PathList{}
		return nil
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode path list, %w", err)
	}

	if out == nil {
		out = []string{}
	}

	*p = out
	return nil
}

func (p PathList) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}

	return json.Marshal([]string(p))
}
