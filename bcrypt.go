package identity

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// BcryptAuthenticator implements PasswordAuthenticator on top of the
// package-level helpers. The salt lives inside the bcrypt output and the
// comparison is constant time, both courtesy of the primitive.
type BcryptAuthenticator struct{}

var _ PasswordAuthenticator = BcryptAuthenticator{}

func (BcryptAuthenticator) HashPassword(password string) (string, error) {
	return HashPassword(password)
}

func (BcryptAuthenticator) ComparePasswordAndHash(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}
