// Package security contains everything related to the security of user data
package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const DefaultCost = 12

// bcrypt only looks at the first 72 bytes and refuses longer input
const maxPasswordBytes = 72

type Hasher struct {
	Cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}

	return &Hasher{Cost: cost}
}

// GenerateFromPassword returns a salted bcrypt digest of p
func (h *Hasher) GenerateFromPassword(p string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(truncate(p), h.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password, %w", err)
	}

	return string(b), nil
}

// VerifyPasswd compares a password p with the stored digest e. A mismatch
// is reported as ok == false, not as an error.
func (h *Hasher) VerifyPasswd(p, e string) (ok bool, err error) {
	err = bcrypt.CompareHashAndPassword([]byte(e), truncate(p))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	return false, err
}

func truncate(p string) []byte {
	b := []byte(p)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}

	return b
}
