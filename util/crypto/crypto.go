// Package crypto provides cryptographic utilities for password hashing and verification.
package crypto

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// dummyHash is compared against when the account does not exist, so a failed
// login costs the same whether or not the user name is known.
var dummyHash = sync.OnceValues(func() ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte("daily-diet-dummy-password"), bcrypt.DefaultCost)
})

// HashPasswordAsBcrypt generates a bcrypt hash of the given password.
func HashPasswordAsBcrypt(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPasswordHash verifies if the given password matches the bcrypt hash.
func CheckPasswordHash(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// BurnPasswordCheck performs a comparison against a fixed hash and discards
// the result. The hash is generated on first use.
func BurnPasswordCheck(password string) error {
	hash, err := dummyHash()
	if err != nil {
		return err
	}
	_ = bcrypt.CompareHashAndPassword(hash, []byte(password))
	return nil
}
