package identity

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// SecretHashCost is the bcrypt cost for client secrets. Client secrets get
// verified on every token request, so they use the default cost while user
// passwords use the heavier PasswordHashCost.
var SecretHashCost = bcrypt.DefaultCost

// PasswordHashCost is the bcrypt cost for user passwords.
var PasswordHashCost = 14

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	return string(h), err
}

// HashSecret will generate a client secret hash
func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(secret), SecretHashCost)
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
