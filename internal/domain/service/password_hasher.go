// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher defines the interface for password hashing and verification.
// It is used for user passwords and OAuth client secrets alike.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password []byte) (string, error)

	// Check compares a plaintext password with a hash to see if they match.
	Check(password []byte, hash string) bool
}
