package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/sentinel/internal/errors"
)

const tokenBytes = 32

type linkSecrets struct {
	hasher *pwdhash.PasswordHasher
	random io.Reader
}

func (s *linkSecrets) GenerateToken() (string, []byte, error) {
	raw := make([]byte, tokenBytes)
	if _, err := io.ReadFull(s.random, raw); err != nil {
		return "", nil, apperrors.Wrap(err, "failed to generate sharing link token")
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	return token, s.HashToken(token), nil
}

// HashToken uses a plain digest since tokens carry full entropy and must be looked up by hash.
func (s *linkSecrets) HashToken(plainToken string) []byte {
	sum := sha256.Sum256([]byte(plainToken))
	return sum[:]
}

func (s *linkSecrets) HashPassword(password string) (string, error) {
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash sharing link password")
	}
	return hashed, nil
}

func (s *linkSecrets) ComparePassword(password, hashed string) bool {
	ok, err := s.hasher.Verify([]byte(password), hashed)
	if err != nil {
		return false
	}
	return ok
}

// NewLinkSecrets creates a LinkSecrets reading randomness from crypto/rand and hashing
// passwords with the Moderate Argon2id policy.
func NewLinkSecrets() LinkSecrets {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}
	return &linkSecrets{hasher: hasher, random: rand.Reader}
}
