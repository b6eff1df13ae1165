package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned when a password does not match its hash.
var ErrPasswordMismatch = errors.New("password mismatch")

// dummyHash is compared against when no account matches, so unknown emails
// cost the same bcrypt work as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dragon-timing-equalizer"), bcrypt.DefaultCost)

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	Cost int
}

func NewHasher() *Hasher { return &Hasher{Cost: bcrypt.DefaultCost} }

func (h *Hasher) Hash(raw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(raw), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare returns ErrPasswordMismatch when raw does not match hash. An empty
// hash burns a comparison against dummyHash before failing.
func (h *Hasher) Compare(hash, raw string) error {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(raw))
		return ErrPasswordMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}
