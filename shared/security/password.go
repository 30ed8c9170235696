// Package security hashes and verifies user passwords with argon2id.
//
// Hashing is always an explicit call made by the operation that writes a password;
// nothing hashes implicitly on save.
package security

import (
	"errors"

	"github.com/matthewhartstonge/argon2"
)

var ErrEmptyPassword = errors.New("password must not be empty")

// HashPassword returns the PHC-encoded argon2id hash of password. A fresh random salt is used per call.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	argon := argon2.DefaultConfig()

	encoded, err := argon.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword reports whether password matches the encoded hash.
// A malformed hash is returned as an error rather than a mismatch.
func VerifyPassword(password, encodedHash string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
}
