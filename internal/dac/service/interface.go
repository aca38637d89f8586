// Package service provides sharing-link token minting and password hashing.
package service

// LinkSecrets mints link tokens and protects link passwords.
type LinkSecrets interface {
	// GenerateToken returns a 256-bit URL-safe token and the hash stored in its place.
	GenerateToken() (plainToken string, tokenHash []byte, err error)

	// HashToken returns the lookup hash of a presented token.
	HashToken(plainToken string) []byte

	// HashPassword hashes a link password with Argon2id.
	HashPassword(password string) (string, error)

	// ComparePassword reports whether password matches hashed in constant time.
	ComparePassword(password, hashed string) bool
}
